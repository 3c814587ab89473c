package mcp_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	mcp "github.com/ajitpratap0/mcp-stdio-server"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/handlers"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
)

func Example() {
	registry := mcp.NewRegistry()
	if err := mcp.RegisterBuiltins(registry, handlers.Options{}); err != nil {
		panic(err)
	}

	srv := mcp.NewServer(
		mcp.WithServerName("example"),
		mcp.WithRegistry(registry),
		mcp.WithLogger(logging.Discard()),
	)

	input := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"greet","arguments":{"name":"Gopher"}}}` + "\n")
	var output bytes.Buffer
	if err := srv.Serve(context.Background(), mcp.NewStdioTransport(input, &output)); err != nil {
		panic(err)
	}

	fmt.Print(output.String())
	// Output:
	// {"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"Hello, Gopher! Welcome to MCP."}],"isError":false}}
}
