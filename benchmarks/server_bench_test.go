package benchmarks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/handlers"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/observability"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/transport"
)

// BenchmarkServerOperations benchmarks various server operations
func BenchmarkServerOperations(b *testing.B) {
	b.Run("Dispatch/ping", func(b *testing.B) {
		benchmarkDispatch(b, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	})

	b.Run("Dispatch/tools/call", func(b *testing.B) {
		benchmarkDispatch(b, `{"jsonrpc":"2.0","id":"123","method":"tools/call","params":{"name":"calculate-bmi","arguments":{"weightKg":70,"heightM":1.75}}}`)
	})

	b.Run("Dispatch/tools/list", func(b *testing.B) {
		benchmarkDispatch(b, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	})

	b.Run("Dispatch/invalid", func(b *testing.B) {
		benchmarkDispatch(b, `{"jsonrpc":"1.0","id":1,"method":"ping"}`)
	})

	b.Run("Serve/100", func(b *testing.B) {
		benchmarkServe(b, 100)
	})

	b.Run("WithMetrics", func(b *testing.B) {
		m, err := observability.NewMetrics(observability.MetricsConfig{})
		if err != nil {
			b.Fatal(err)
		}
		benchmarkDispatch(b, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, server.WithMiddleware(m.Middleware()))
	})

	b.Run("RegistryLookup/parallel", benchmarkRegistryLookup)
}

func createTestServer(b *testing.B, options ...server.ServerOption) *server.Server {
	b.Helper()
	reg := server.NewRegistry()
	if err := handlers.RegisterBuiltins(reg, handlers.Options{DataDir: b.TempDir()}); err != nil {
		b.Fatal(err)
	}
	opts := append([]server.ServerOption{
		server.WithRegistry(reg),
		server.WithLogger(logging.Discard()),
	}, options...)
	return server.New(opts...)
}

func benchmarkDispatch(b *testing.B, msg string, options ...server.ServerOption) {
	s := createTestServer(b, options...)
	ctx := context.Background()
	raw := json.RawMessage(msg)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if resp := s.Dispatch(ctx, raw); resp == nil {
			b.Fatal("expected a response")
		}
	}
}

// benchmarkServe measures a whole session of n requests over the stdio transport.
func benchmarkServe(b *testing.B, n int) {
	s := createTestServer(b)

	var input strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&input, `{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"greet","arguments":{"name":"bench"}}}`+"\n", i)
	}
	session := input.String()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		var out bytes.Buffer
		t := transport.NewStdioTransport(strings.NewReader(session), &out)
		if err := s.Serve(context.Background(), t); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkRegistryLookup(b *testing.B) {
	empty := server.ResourceFunc(func(ctx context.Context, uri string) (*protocol.ReadResourceResult, error) {
		return &protocol.ReadResourceResult{}, nil
	})

	reg := server.NewRegistry()
	for i := 0; i < 100; i++ {
		reg.RegisterResource(fmt.Sprintf("mem://bucket-%d/", i), empty)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, ok := reg.Resource("mem://bucket-42/object"); !ok {
				b.Error("lookup failed")
				return
			}
		}
	})
}
