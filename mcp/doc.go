// Package mcp contains protocol data types and constants shared by the
// line-framed stdio servers and their subprocess client. It mirrors the wire
// representation used on the pipe while keeping the surface Go-friendly
// (exported structs with json tags, string constants for method names).
//
// The package is intentionally free of transport logic: the stdio server
// loop and the client session import these types but implement their own
// framing and process handling. Higher-level packages (e.g. mcpservice)
// construct results using these concrete types and hand them to the loop for
// JSON-RPC serialization.
//
// # Method Names
//
// Method names are enumerated as Method constants (e.g. ToolsCallMethod).
// The dotted spelling is canonical; alternate spellings such as
// "tools/call" are resolved by an alias table before dispatch and never
// appear here.
//
// # Capabilities
//
// CapabilityDescriptor advertises which method groups a server implements.
// It is returned by initialize and by the capability listing method and is
// purely informational: dispatch never consults it.
//
// Example (tool result construction):
//
//	res := &mcp.CallToolResult{
//	    Content: []mcp.ContentBlock{{Type: "text", Text: "cba"}},
//	}
package mcp
