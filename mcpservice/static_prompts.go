package mcpservice

import (
	"context"
	"strings"

	"github.com/ggoodman/mcp-stdio-go/mcp"
)

// StaticPrompts owns a fixed set of prompt templates and exposes them as the
// prompts.list / prompts.get method group.
type StaticPrompts struct {
	prompts []mcp.Prompt
	byName  map[string]int
}

var _ CapabilityProvider = (*StaticPrompts)(nil)

// NewStaticPrompts constructs a StaticPrompts container. Prompts without a
// name are ignored; on duplicate names the last definition wins.
func NewStaticPrompts(defs ...mcp.Prompt) *StaticPrompts {
	sp := &StaticPrompts{byName: make(map[string]int, len(defs))}
	for _, d := range defs {
		if d.Name == "" {
			continue
		}
		if i, dup := sp.byName[d.Name]; dup {
			sp.prompts[i] = d
			continue
		}
		sp.byName[d.Name] = len(sp.prompts)
		sp.prompts = append(sp.prompts, d)
	}
	return sp
}

// List returns the prompt summaries (name, description, arguments) without
// their messages.
func (sp *StaticPrompts) List() []mcp.Prompt {
	out := make([]mcp.Prompt, 0, len(sp.prompts))
	for _, p := range sp.prompts {
		out = append(out, mcp.Prompt{
			Name:        p.Name,
			Description: p.Description,
			Arguments:   append([]mcp.PromptArgument{}, p.Arguments...),
		})
	}
	return out
}

// Get returns the full prompt. When args is non-empty every {{key}}
// placeholder in the message contents is replaced by its value; unknown
// placeholders are left as they are.
func (sp *StaticPrompts) Get(name string, args map[string]string) (*mcp.Prompt, error) {
	i, ok := sp.byName[name]
	if !ok {
		return nil, &NotFoundError{Type: "prompt", Name: name}
	}
	p := sp.prompts[i]
	out := p
	out.Arguments = append([]mcp.PromptArgument(nil), p.Arguments...)
	out.Messages = make([]mcp.PromptMessage, len(p.Messages))
	for j, m := range p.Messages {
		out.Messages[j] = mcp.PromptMessage{Role: m.Role, Content: render(m.Content, args)}
	}
	return &out, nil
}

func render(tmpl string, args map[string]string) string {
	if len(args) == 0 || !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	pairs := make([]string, 0, len(args)*2)
	for _, k := range sortedKeys(args) {
		pairs = append(pairs, "{{"+k+"}}", args[k])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Capabilities implements CapabilityProvider.
func (sp *StaticPrompts) Capabilities() mcp.CapabilityDescriptor {
	return describe("prompts",
		"list", "List available prompt templates",
		"get", "Get a prompt by name",
	)
}

// Methods implements CapabilityProvider.
func (sp *StaticPrompts) Methods() []MethodEntry {
	return []MethodEntry{
		{
			Name: string(mcp.PromptsListMethod),
			Handler: Static(func(context.Context) (any, error) {
				return sp.List(), nil
			}),
		},
		{
			Name: string(mcp.PromptsGetMethod),
			Handler: NewHandler(
				func(req mcp.GetPromptRequest) error {
					if req.Name == "" {
						return MissingParam("name")
					}
					if _, ok := sp.byName[req.Name]; !ok {
						return &NotFoundError{Type: "prompt", Name: req.Name}
					}
					return nil
				},
				func(_ context.Context, req mcp.GetPromptRequest) (any, error) {
					return sp.Get(req.Name, req.Arguments)
				},
			),
		},
	}
}
