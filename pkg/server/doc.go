// Package server implements the request side of a Model Context Protocol
// server that talks to one client over a line-delimited stream.
//
// The package provides:
//
//   - Server: reads messages from a transport, dispatches them and writes responses
//   - Registry: named tool, prompt and resource handlers grouped by capability
//   - Middleware: wrappers around dispatch, with logging always outermost
//
// # Dispatch
//
// Each JSON value read from the transport is validated as a JSON-RPC 2.0
// envelope. Requests are answered with exactly one response carrying the
// original id; notifications are never answered, even when they fail.
// Messages are handled strictly in order: the next line is not read until
// the response to the previous one has been written.
//
// Built-in methods are initialize, initialized, ping and the list, call,
// read and get methods of the three handler groups. Any other method gets
// a -32601 error.
//
// # Creating a Server
//
//	registry := server.NewRegistry()
//	registry.RegisterTool("echo", server.ToolFunc(func(ctx context.Context, args json.RawMessage) (*protocol.CallToolResult, error) {
//	    return protocol.NewToolResult(protocol.NewTextContent(string(args))), nil
//	}))
//
//	srv := server.New(
//	    server.WithRegistry(registry),
//	    server.WithLogger(logging.New(os.Stderr, logging.NewTextFormatter())),
//	)
//	err := srv.Serve(ctx, transport.NewStdioTransport(os.Stdin, os.Stdout))
//
// # Handlers
//
// A handler only has to implement ToolHandler, ResourceHandler or
// PromptHandler. Implementing ToolDescriber, PromptDescriber or
// ResourceLister in addition controls what the list methods report.
// Resource handlers are looked up by exact URI first and then by the
// longest registered prefix, so one handler can serve a whole scheme.
//
// A handler error becomes a -32603 response whose message is the error
// text, unless it already is an MCPError from pkg/errors, in which case
// its code is kept. Panics are recovered the same way.
package server
