package mcpservice

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/ggoodman/mcp-stdio-go/mcp"
)

type reverseArgs struct {
	Text string `json:"text" jsonschema:"description=Input text"`
}

type optionalArgs struct {
	Text  string `json:"text"`
	Times int    `json:"times,omitempty"`
}

func reverseTool(opts ...ToolOption) StaticTool {
	return NewTool("reverse", func(_ context.Context, a reverseArgs) (*mcp.CallToolResult, error) {
		r := []rune(a.Text)
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return TextResult(string(r)), nil
	}, opts...)
}

func TestNewTool_ReflectsInputSchema(t *testing.T) {
	t.Parallel()
	tool := NewTool("opt", func(context.Context, optionalArgs) (*mcp.CallToolResult, error) {
		return TextResult(""), nil
	}, WithToolDescription("optional args"))

	d := tool.Descriptor
	if d.Name != "opt" || d.Description != "optional args" {
		t.Fatalf("unexpected descriptor %+v", d)
	}
	s := d.InputSchema
	if s.Type != "object" || s.AdditionalProperties {
		t.Fatalf("unexpected schema %+v", s)
	}
	if s.Properties["text"].Type != "string" || s.Properties["times"].Type != "integer" {
		t.Fatalf("unexpected properties %+v", s.Properties)
	}
	if !reflect.DeepEqual(s.Required, []string{"text"}) {
		t.Fatalf("Required = %v", s.Required)
	}
	if !reflect.DeepEqual(d.InputSchema, d.InputSchemaSnake) {
		t.Fatalf("snake_case schema must mirror inputSchema")
	}

	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["inputSchema"]; !ok {
		t.Fatalf("missing inputSchema key: %s", raw)
	}
	if _, ok := m["input_schema"]; !ok {
		t.Fatalf("missing input_schema key: %s", raw)
	}
}

func TestToolsContainer_Call(t *testing.T) {
	t.Parallel()
	tc := NewToolsContainer(reverseTool())
	ctx := context.Background()

	res, err := tc.Call(ctx, &mcp.CallToolRequest{Name: "reverse", Arguments: json.RawMessage(`{"text":"abc"}`)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	want := []mcp.ContentBlock{{Type: "text", Text: "cba"}}
	if !reflect.DeepEqual(res.Content, want) {
		t.Fatalf("Content = %+v", res.Content)
	}

	_, err = tc.Call(ctx, &mcp.CallToolRequest{Name: "reverse"})
	if err == nil || err.Error() != "Missing required argument: 'text'" {
		t.Fatalf("expected missing argument error, got %v", err)
	}

	_, err = tc.Call(ctx, &mcp.CallToolRequest{Name: "reverse", Arguments: json.RawMessage(`{"text":"a","extra":1}`)})
	var ip *InvalidParamsError
	if !errors.As(err, &ip) {
		t.Fatalf("expected strict decoding to reject unknown fields, got %v", err)
	}

	_, err = tc.Call(ctx, &mcp.CallToolRequest{Name: "nope"})
	var nf *NotFoundError
	if !errors.As(err, &nf) || err.Error() != "Unknown tool: nope" {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestToolsContainer_LenientArguments(t *testing.T) {
	t.Parallel()
	tc := NewToolsContainer(reverseTool(WithToolAllowAdditionalProperties(true)))
	res, err := tc.Call(context.Background(), &mcp.CallToolRequest{Name: "reverse", Arguments: json.RawMessage(`{"text":"ab","extra":1}`)})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Content[0].Text != "ba" {
		t.Fatalf("unexpected text %q", res.Content[0].Text)
	}
}

func TestToolsContainer_LastDefinitionWins(t *testing.T) {
	t.Parallel()
	first := NewTool("x", func(context.Context, reverseArgs) (*mcp.CallToolResult, error) { return TextResult("1"), nil })
	second := NewTool("x", func(context.Context, reverseArgs) (*mcp.CallToolResult, error) { return TextResult("2"), nil },
		WithToolDescription("second"))
	tc := NewToolsContainer(first, reverseTool(), second)

	snap := tc.Snapshot()
	if len(snap) != 2 || snap[0].Name != "x" || snap[0].Description != "second" || snap[1].Name != "reverse" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	res, err := tc.Call(context.Background(), &mcp.CallToolRequest{Name: "x", Arguments: json.RawMessage(`{"text":""}`)})
	if err != nil || res.Content[0].Text != "2" {
		t.Fatalf("Call = %+v, %v", res, err)
	}
}

func TestToolsContainer_Methods(t *testing.T) {
	t.Parallel()
	srv, err := NewServer(WithCapability(NewToolsContainer(reverseTool())))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ctx := context.Background()

	out := srv.Dispatch(ctx, "tools.list", nil)
	tools, ok := out.Result.([]mcp.Tool)
	if !out.OK() || !ok || len(tools) != 1 || tools[0].Name != "reverse" {
		t.Fatalf("tools.list = %+v", out)
	}

	out = srv.Dispatch(ctx, "tools.call", json.RawMessage(`{"name":"reverse","arguments":{"text":"abc"}}`))
	res, ok := out.Result.(*mcp.CallToolResult)
	if !out.OK() || !ok || res.Content[0].Text != "cba" {
		t.Fatalf("tools.call = %+v", out)
	}

	out = srv.Dispatch(ctx, "tools.call", json.RawMessage(`{"name":"ghost"}`))
	if out.Kind != OutcomeApplicationError || out.Message != "Unknown tool: ghost" {
		t.Fatalf("unknown tool = %+v", out)
	}

	out = srv.Dispatch(ctx, "tools.call", json.RawMessage(`{}`))
	if out.Kind != OutcomeApplicationError || out.Message != "Missing 'name'" {
		t.Fatalf("missing name = %+v", out)
	}
}
