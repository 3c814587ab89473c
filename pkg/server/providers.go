package server

import (
	"context"
	"encoding/json"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
)

// ToolHandler is the capability of the tools group: invoke with arguments.
//
// A returned error becomes a protocol error. Business failures the client
// should see as tool output belong in a result built with
// protocol.NewToolErrorResult instead.
type ToolHandler interface {
	Call(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error)
}

// ResourceHandler is the capability of the resources group: read by URI.
type ResourceHandler interface {
	Read(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)
}

// PromptHandler is the capability of the prompts group: get by arguments.
// Arguments are nil when the request carried none.
type PromptHandler interface {
	Get(ctx context.Context, arguments json.RawMessage) (*protocol.GetPromptResult, error)
}

// ToolDescriber is implemented by tool handlers that describe themselves in
// tools/list.
type ToolDescriber interface {
	Tool() protocol.Tool
}

// ResourceLister is implemented by resource handlers that enumerate the
// resources they serve in resources/list.
type ResourceLister interface {
	ListResources(ctx context.Context) ([]protocol.Resource, error)
}

// PromptDescriber is implemented by prompt handlers that describe themselves
// in prompts/list.
type PromptDescriber interface {
	Prompt() protocol.Prompt
}

// ToolFunc adapts a function to ToolHandler.
type ToolFunc func(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error)

// Call calls f.
func (f ToolFunc) Call(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error) {
	return f(ctx, arguments)
}

// ResourceFunc adapts a function to ResourceHandler.
type ResourceFunc func(ctx context.Context, uri string) (*protocol.ReadResourceResult, error)

// Read calls f.
func (f ResourceFunc) Read(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
	return f(ctx, uri)
}

// PromptFunc adapts a function to PromptHandler.
type PromptFunc func(ctx context.Context, arguments json.RawMessage) (*protocol.GetPromptResult, error)

// Get calls f.
func (f PromptFunc) Get(ctx context.Context, arguments json.RawMessage) (*protocol.GetPromptResult, error) {
	return f(ctx, arguments)
}

// DescribedTool pairs a descriptor with a handler. It is the simplest way to
// register a listed tool built from a ToolFunc.
type DescribedTool struct {
	Descriptor protocol.Tool
	Handler    ToolHandler
}

// Call delegates to the wrapped handler.
func (d DescribedTool) Call(ctx context.Context, arguments json.RawMessage) (*protocol.CallToolResult, error) {
	return d.Handler.Call(ctx, arguments)
}

// Tool returns the descriptor.
func (d DescribedTool) Tool() protocol.Tool {
	return d.Descriptor
}
