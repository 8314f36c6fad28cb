package mcpservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ggoodman/mcp-stdio-go/mcp"
	"github.com/invopop/jsonschema"
)

// ToolHandler is the function signature used to handle a tool invocation.
// args is the raw "arguments" object, never nil.
type ToolHandler func(ctx context.Context, args json.RawMessage) (*mcp.CallToolResult, error)

// StaticTool pairs a tool descriptor with its handler.
type StaticTool struct {
	Descriptor mcp.Tool
	Handler    ToolHandler
}

// ToolOption configures NewTool behavior.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description               string
	allowAdditionalProperties bool // default false (strict)
}

// WithToolDescription sets the tool description used in listings.
func WithToolDescription(desc string) ToolOption {
	return func(c *toolConfig) { c.description = desc }
}

// WithToolAllowAdditionalProperties controls whether unknown fields are allowed.
// When false (default), the generated schema sets additionalProperties=false and
// runtime decoding rejects unknown fields.
func WithToolAllowAdditionalProperties(allow bool) ToolOption {
	return func(c *toolConfig) { c.allowAdditionalProperties = allow }
}

// NewTool constructs a StaticTool from a typed args struct A. It:
//   - reflects a JSON Schema from A using invopop/jsonschema
//   - down-converts it to the simplified ToolInputSchema
//   - wraps fn with required-argument checks and JSON decoding
func NewTool[A any](name string, fn func(ctx context.Context, args A) (*mcp.CallToolResult, error), opts ...ToolOption) StaticTool {
	cfg := toolConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	input := InputSchemaFor[A](cfg.allowAdditionalProperties)
	desc := mcp.Tool{
		Name:             name,
		Description:      cfg.description,
		InputSchema:      input,
		InputSchemaSnake: input,
	}

	handler := func(ctx context.Context, raw json.RawMessage) (*mcp.CallToolResult, error) {
		var present map[string]json.RawMessage
		if err := json.Unmarshal(raw, &present); err != nil {
			return nil, &InvalidParamsError{Field: "arguments", Message: fmt.Sprintf("invalid arguments: %v", err)}
		}
		for _, req := range input.Required {
			if _, ok := present[req]; !ok {
				return nil, MissingArgument(req)
			}
		}

		var a A
		dec := json.NewDecoder(bytes.NewReader(raw))
		if !cfg.allowAdditionalProperties {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(&a); err != nil {
			return nil, &InvalidParamsError{Field: "arguments", Message: fmt.Sprintf("invalid arguments: %v", err)}
		}
		return fn(ctx, a)
	}

	return StaticTool{Descriptor: desc, Handler: handler}
}

// InputSchemaFor reflects a Go type A into a jsonschema.Schema, and
// converts it to the simplified mcp.ToolInputSchema. Unknown field policy is
// surfaced via the AdditionalProperties flag on the returned schema.
func InputSchemaFor[A any](allowAdditional bool) mcp.ToolInputSchema {
	r := &jsonschema.Reflector{
		DoNotReference:            true, // inline defs
		ExpandedStruct:            true, // put struct at root
		AllowAdditionalProperties: allowAdditional,
	}
	s := r.Reflect(new(A))

	// Only object schemas map cleanly to ToolInputSchema. If not an object,
	// expose an empty object with the configured additionalProperties policy.
	if s == nil || s.Type != "object" {
		return mcp.ToolInputSchema{
			Type:                 "object",
			Properties:           map[string]mcp.SchemaProperty{},
			AdditionalProperties: allowAdditional,
		}
	}

	props := make(map[string]mcp.SchemaProperty)
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			props[el.Key] = toSchemaProperty(el.Value)
		}
	}
	var required []string
	if len(s.Required) > 0 {
		required = append(required, s.Required...)
	}

	return mcp.ToolInputSchema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: allowAdditional,
	}
}

// toSchemaProperty recursively maps a jsonschema.Schema to a SchemaProperty.
func toSchemaProperty(s *jsonschema.Schema) mcp.SchemaProperty {
	if s == nil {
		return mcp.SchemaProperty{}
	}
	p := mcp.SchemaProperty{
		Type:        s.Type,
		Description: s.Description,
	}
	if len(s.Enum) > 0 {
		p.Enum = s.Enum
	}
	if s.Type == "array" && s.Items != nil {
		item := toSchemaProperty(s.Items)
		p.Items = &item
	}
	if s.Type == "object" && s.Properties != nil {
		m := make(map[string]mcp.SchemaProperty, s.Properties.Len())
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			m[el.Key] = toSchemaProperty(el.Value)
		}
		p.Properties = m
	}
	return p
}

// ToolsContainer owns a fixed set of tool descriptors and handlers and
// exposes them as the tools.list / tools.call method group. Listing order is
// registration order.
type ToolsContainer struct {
	tools    []mcp.Tool
	handlers map[string]ToolHandler
}

var _ CapabilityProvider = (*ToolsContainer)(nil)

// NewToolsContainer constructs a ToolsContainer. On duplicate names the last
// definition wins.
func NewToolsContainer(defs ...StaticTool) *ToolsContainer {
	tc := &ToolsContainer{handlers: make(map[string]ToolHandler, len(defs))}
	for _, d := range defs {
		name := d.Descriptor.Name
		if _, dup := tc.handlers[name]; dup {
			for i := range tc.tools {
				if tc.tools[i].Name == name {
					tc.tools[i] = d.Descriptor
				}
			}
		} else {
			tc.tools = append(tc.tools, d.Descriptor)
		}
		tc.handlers[name] = d.Handler
	}
	return tc
}

// Snapshot returns a copy of the tool descriptors.
func (tc *ToolsContainer) Snapshot() []mcp.Tool {
	out := make([]mcp.Tool, len(tc.tools))
	copy(out, tc.tools)
	return out
}

// Has reports whether a tool is registered under name.
func (tc *ToolsContainer) Has(name string) bool {
	h, ok := tc.handlers[name]
	return ok && h != nil
}

// Call dispatches a request to the named tool. Absent arguments are treated
// as an empty object.
func (tc *ToolsContainer) Call(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req == nil || !tc.Has(req.Name) {
		name := ""
		if req != nil {
			name = req.Name
		}
		return nil, &NotFoundError{Type: "tool", Name: name}
	}
	args := bytes.TrimSpace(req.Arguments)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = json.RawMessage("{}")
	}
	return tc.handlers[req.Name](ctx, args)
}

// Capabilities implements CapabilityProvider.
func (tc *ToolsContainer) Capabilities() mcp.CapabilityDescriptor {
	return describe("tools",
		"list", "List available tools",
		"call", "Invoke a tool by name",
	)
}

// Methods implements CapabilityProvider.
func (tc *ToolsContainer) Methods() []MethodEntry {
	return []MethodEntry{
		{
			Name: string(mcp.ToolsListMethod),
			Handler: Static(func(context.Context) (any, error) {
				return tc.Snapshot(), nil
			}),
		},
		{
			Name: string(mcp.ToolsCallMethod),
			Handler: NewHandler(
				func(req mcp.CallToolRequest) error {
					if req.Name == "" {
						return MissingParam("name")
					}
					if !tc.Has(req.Name) {
						return &NotFoundError{Type: "tool", Name: req.Name}
					}
					return nil
				},
				func(ctx context.Context, req mcp.CallToolRequest) (any, error) {
					return tc.Call(ctx, &req)
				},
			),
		},
	}
}

// TextResult is a small helper to build a text CallToolResult.
func TextResult(s string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.ContentBlock{{Type: "text", Text: s}}}
}
