// Package mcp is the root of mcp-stdio-server, a Model Context Protocol
// server that talks JSON-RPC 2.0 over standard input and output.
//
// The root package re-exports the pieces needed to embed the server:
//
//   - pkg/protocol: envelope, response and payload types
//   - pkg/errors: structured errors and their mapping to JSON-RPC error objects
//   - pkg/logging: leveled structured logging to standard error
//   - pkg/transport: the line-delimited stdio transport
//   - pkg/server: registry, dispatcher and serve loop
//   - pkg/handlers: the reference tools, resources and prompt
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing middleware
//   - pkg/config: configuration from the environment
//
// The command in cmd/mcp-stdio-server wires all of them together.
//
// # Embedding the Server
//
//	registry := mcp.NewRegistry()
//	if err := mcp.RegisterBuiltins(registry, handlers.Options{DataDir: "./data"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := mcp.NewServer(
//	    mcp.WithServerName("my-server"),
//	    mcp.WithRegistry(registry),
//	)
//	if err := srv.Serve(ctx, mcp.NewStdioTransport(os.Stdin, os.Stdout)); err != nil {
//	    log.Fatal(err)
//	}
//
// Serve returns nil when standard input ends and ctx.Err() when ctx is
// cancelled. Everything the server logs goes to standard error so that
// standard output carries protocol messages only.
package mcp
