package mcpservice

import "fmt"

// AliasTable maps alternate method spellings to canonical names. Resolution
// is a single substitution: no alias may point at another alias.
type AliasTable struct {
	m map[string]string
}

// NewAliasTable validates and copies aliases. A nil or empty map yields an
// empty table.
func NewAliasTable(aliases map[string]string) (*AliasTable, error) {
	t := &AliasTable{m: make(map[string]string, len(aliases))}
	for alias, target := range aliases {
		if alias == "" || target == "" {
			return nil, fmt.Errorf("alias table: empty name in %q -> %q", alias, target)
		}
		if alias == target {
			return nil, fmt.Errorf("alias table: %q maps to itself", alias)
		}
		if _, chained := aliases[target]; chained {
			return nil, fmt.Errorf("alias table: %q -> %q is not single-hop", alias, target)
		}
		t.m[alias] = target
	}
	return t, nil
}

// Resolve returns the canonical name for method and whether a substitution
// happened. Unknown names are returned unchanged.
func (t *AliasTable) Resolve(method string) (string, bool) {
	if t == nil {
		return method, false
	}
	if canonical, ok := t.m[method]; ok {
		return canonical, true
	}
	return method, false
}

// Aliases returns a copy of the table.
func (t *AliasTable) Aliases() map[string]string {
	out := make(map[string]string)
	if t == nil {
		return out
	}
	for k, v := range t.m {
		out[k] = v
	}
	return out
}
