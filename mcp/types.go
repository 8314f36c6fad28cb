package mcp

// Role indicates the role of a prompt message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Capabilities

// CapabilityDescriptor maps a method group (e.g. "resources") to the
// operations it exposes (e.g. "list", "read").
type CapabilityDescriptor map[string]map[string]MethodDescription

// MethodDescription is the human-readable note attached to one operation.
type MethodDescription struct {
	Description string `json:"description"`
}

// Merge copies every group of other into d, replacing groups of the same name.
func (d CapabilityDescriptor) Merge(other CapabilityDescriptor) {
	for group, ops := range other {
		d[group] = ops
	}
}

// ImplementationInfo describes the implementation name and version.
type ImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Content types

// ContentBlock is a typed content part of a tool result.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Tools

// Tool describes a callable tool and its input schema. The schema is
// published under both the camelCase and snake_case keys.
type Tool struct {
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	InputSchema      ToolInputSchema `json:"inputSchema"`
	InputSchemaSnake ToolInputSchema `json:"input_schema"`
}

// ToolInputSchema is a JSON-schema-like description of tool input.
type ToolInputSchema struct {
	Type                 string                    `json:"type"`
	Properties           map[string]SchemaProperty `json:"properties,omitempty"`
	Required             []string                  `json:"required,omitempty"`
	AdditionalProperties bool                      `json:"additionalProperties,omitzero"`
}

// SchemaProperty is a simplified schema node used in tool schemas.
type SchemaProperty struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitzero"`
	Items       *SchemaProperty           `json:"items,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	Enum        []any                     `json:"enum,omitempty"`
}

// Resources

// Resource is the metadata of one named resource document.
type Resource struct {
	Name        string `json:"name"`
	Mime        string `json:"mime"`
	Size        int64  `json:"size"`
	Description string `json:"description,omitzero"`
}

// Prompts

// Prompt describes a named prompt template and its messages.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitzero"`
	Arguments   []PromptArgument `json:"arguments"`
	Messages    []PromptMessage  `json:"messages,omitempty"`
}

// PromptArgument describes a single prompt argument.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	Required    bool   `json:"required"`
}

// PromptMessage is one templated message of a prompt.
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
