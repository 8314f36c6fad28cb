package mcp

import "encoding/json"

// Method is a method identifier used in JSON-RPC messages.
type Method string

// Method names served by the example servers.
const (
	// Lifecycle (reserved; served by the stdio loop, never by a registry)
	InitializeMethod Method = "initialize"
	ShutdownMethod   Method = "shutdown"

	// Capability listing. Servers pick one spelling as canonical and alias
	// the other.
	CapabilityListMethod   Method = "capability.list"
	CapabilitiesListMethod Method = "capabilities.list"

	// Tools
	ToolsListMethod Method = "tools.list"
	ToolsCallMethod Method = "tools.call"
	// ToolCallMethod is the singular spelling used by the minimal demo server.
	ToolCallMethod Method = "tool.call"

	// Resources
	ResourcesListMethod Method = "resources.list"
	ResourcesReadMethod Method = "resources.read"
	ResourcesGetMethod  Method = "resources.get"

	// Prompts
	PromptsListMethod Method = "prompts.list"
	PromptsGetMethod  Method = "prompts.get"
)

// IsReserved reports whether name is one of the lifecycle methods that no
// registry may claim.
func IsReserved(name string) bool {
	return name == string(InitializeMethod) || name == string(ShutdownMethod)
}

// InitializeResult describes the server in answer to initialize.
type InitializeResult struct {
	Name            string               `json:"name"`
	Version         string               `json:"version"`
	ProtocolVersion string               `json:"protocolVersion,omitzero"`
	Capabilities    CapabilityDescriptor `json:"capabilities"`
}

// ShutdownResult is the fixed answer to shutdown.
type ShutdownResult struct {
	OK bool `json:"ok"`
}

// Tools

// CallToolRequest invokes a tool by name with free-form arguments.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult carries the content produced by a tool.
type CallToolResult struct {
	Content []ContentBlock `json:"content"`
}

// Resources

// NamedRequest addresses a single resource or prompt by name.
type NamedRequest struct {
	Name string `json:"name"`
}

// ReadResourceResult holds the full text of a resource.
type ReadResourceResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Prompts

// GetPromptRequest retrieves a prompt, optionally rendering {{key}}
// placeholders from Arguments.
type GetPromptRequest struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// Diagnostics

// Notice is the startup banner shape some servers write to stdout.
type Notice struct {
	Notice string `json:"notice"`
}

// DebugEcho is the optional per-request diagnostic line.
type DebugEcho struct {
	Debug DebugInfo `json:"debug"`
}

// DebugInfo records how a method name was normalized.
type DebugInfo struct {
	Received   string `json:"received"`
	Normalized string `json:"normalized"`
}
