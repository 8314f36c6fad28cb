package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ggoodman/mcp-stdio-go/mcp"
)

// Each helper below runs one full session.

func callInto[T any](ctx context.Context, c *Client, method mcp.Method, params any) (T, error) {
	var out T
	raw, err := c.Call(ctx, string(method), params)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s result: %w", method, err)
	}
	return out, nil
}

// Capabilities returns the server's capability descriptor.
func (c *Client) Capabilities(ctx context.Context) (mcp.CapabilityDescriptor, error) {
	return callInto[mcp.CapabilityDescriptor](ctx, c, mcp.CapabilityListMethod, nil)
}

// ListTools returns the server's tool descriptors.
func (c *Client) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	return callInto[[]mcp.Tool](ctx, c, mcp.ToolsListMethod, nil)
}

// CallTool invokes a tool. args is marshalled as the arguments object.
func (c *Client) CallTool(ctx context.Context, name string, args any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{Name: name}
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode arguments: %w", err)
		}
		req.Arguments = b
	}
	res, err := callInto[mcp.CallToolResult](ctx, c, mcp.ToolsCallMethod, req)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListResources returns the server's resource metadata.
func (c *Client) ListResources(ctx context.Context) ([]mcp.Resource, error) {
	return callInto[[]mcp.Resource](ctx, c, mcp.ResourcesListMethod, nil)
}

// ReadResource returns the full text of a resource.
func (c *Client) ReadResource(ctx context.Context, name string) (*mcp.ReadResourceResult, error) {
	res, err := callInto[mcp.ReadResourceResult](ctx, c, mcp.ResourcesReadMethod, mcp.NamedRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetResource returns the metadata of one resource.
func (c *Client) GetResource(ctx context.Context, name string) (*mcp.Resource, error) {
	res, err := callInto[mcp.Resource](ctx, c, mcp.ResourcesGetMethod, mcp.NamedRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListPrompts returns the prompt summaries.
func (c *Client) ListPrompts(ctx context.Context) ([]mcp.Prompt, error) {
	return callInto[[]mcp.Prompt](ctx, c, mcp.PromptsListMethod, nil)
}

// GetPrompt returns one prompt, rendering {{key}} placeholders from args
// when given.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.Prompt, error) {
	res, err := callInto[mcp.Prompt](ctx, c, mcp.PromptsGetMethod, mcp.GetPromptRequest{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
