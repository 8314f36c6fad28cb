// Package mcpservice holds the transport-independent half of a stdio
// JSON-RPC server: the method registry, the alias table, and a Server that
// resolves a method name through both and runs the matching handler.
//
// Handlers are grouped into capability providers. Three static providers
// ship with the package:
//
//   - ToolsContainer: named tools with reflected input schemas
//   - StaticPrompts: prompt templates with {{name}} placeholders
//   - ResourcesContainer: read-only text documents behind a ResourceStore
//     (FSResources for a directory, storage/memory for a map, storage/redis
//     for a Redis hash)
//
// Quick start:
//
//	type EchoArgs struct {
//	    Message string `json:"message" jsonschema:"required"`
//	}
//	tools := mcpservice.NewToolsContainer(
//	    mcpservice.NewTool("echo", func(ctx context.Context, a EchoArgs) (*mcp.CallToolResult, error) {
//	        return mcpservice.TextResult(a.Message), nil
//	    }),
//	)
//	srv, err := mcpservice.NewServer(
//	    mcpservice.WithServerInfo(mcp.ImplementationInfo{Name: "example", Version: "1.0.0"}),
//	    mcpservice.WithCapability(tools),
//	    mcpservice.WithAliases(map[string]string{"tools/list": "tools.list"}),
//	)
//
// Dispatch never produces a wire message. It returns an Outcome which the
// stdio package translates into a JSON-RPC response.
package mcpservice
