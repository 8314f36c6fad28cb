package mcpservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ggoodman/mcp-stdio-go/mcp"
)

// Handler is the capability bound to one canonical method name. Validate is
// always called before Execute with the same raw params; either may fail with
// an error that is reported to the caller as an application error.
type Handler interface {
	Validate(params json.RawMessage) error
	Execute(ctx context.Context, params json.RawMessage) (any, error)
}

// MethodEntry binds a canonical method name to its handler.
type MethodEntry struct {
	Name    string
	Handler Handler
}

// NewHandler builds a Handler over a typed params struct P. Absent or null
// params decode to the zero P. validate may be nil.
func NewHandler[P any](validate func(P) error, execute func(ctx context.Context, p P) (any, error)) Handler {
	return typedHandler[P]{validate: validate, execute: execute}
}

// Static returns a Handler that ignores params and always yields fn().
func Static(fn func(ctx context.Context) (any, error)) Handler {
	return NewHandler[json.RawMessage](nil, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return fn(ctx)
	})
}

type typedHandler[P any] struct {
	validate func(P) error
	execute  func(ctx context.Context, p P) (any, error)
}

func (h typedHandler[P]) decode(raw json.RawMessage) (P, error) {
	var p P
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, &InvalidParamsError{Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return p, nil
}

func (h typedHandler[P]) Validate(raw json.RawMessage) error {
	p, err := h.decode(raw)
	if err != nil {
		return err
	}
	if h.validate == nil {
		return nil
	}
	return h.validate(p)
}

func (h typedHandler[P]) Execute(ctx context.Context, raw json.RawMessage) (any, error) {
	p, err := h.decode(raw)
	if err != nil {
		return nil, err
	}
	return h.execute(ctx, p)
}

// Registry is an immutable table of canonical method names to handlers. It
// is built once with NewRegistry and only read afterwards, so it may be
// shared freely.
type Registry struct {
	handlers map[string]Handler
	names    []string
}

// NewRegistry builds a Registry. Empty names, nil handlers, duplicate names
// and the reserved lifecycle names are rejected.
func NewRegistry(entries ...MethodEntry) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(entries))}
	for _, e := range entries {
		switch {
		case e.Name == "":
			return nil, fmt.Errorf("registry: empty method name")
		case e.Handler == nil:
			return nil, fmt.Errorf("registry: nil handler for %q", e.Name)
		case mcp.IsReserved(e.Name):
			return nil, fmt.Errorf("registry: %q is reserved", e.Name)
		}
		if _, dup := r.handlers[e.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate method %q", e.Name)
		}
		r.handlers[e.Name] = e.Handler
		r.names = append(r.names, e.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the handler registered under the canonical name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	h, ok := r.handlers[name]
	return h, ok
}

// Methods returns the registered canonical names in sorted order.
func (r *Registry) Methods() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered methods.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.names)
}
