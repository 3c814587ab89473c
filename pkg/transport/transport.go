// Package transport moves JSON values between the server and its peer.
//
// A transport is line oriented: every value occupies exactly one line. The
// server drives it in a strict receive, dispatch, send cycle, so a transport
// never has more than one message in flight in each direction.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
)

// ErrClosed is returned by Receive at end of input and by every operation on
// a transport that has been closed.
var ErrClosed = errors.New("transport closed")

// Transport defines the interface the server loop reads from and writes to.
type Transport interface {
	// Receive reads the next line. It returns the raw JSON value, or
	// (nil, nil) for a blank line, or ErrClosed at end of input. A line that
	// is not valid JSON yields an error with code CodeParseError; the
	// transport remains usable after it.
	Receive(ctx context.Context) (json.RawMessage, error)

	// Send writes v as one line of compact JSON and flushes it.
	Send(ctx context.Context, v interface{}) error

	// Close releases the transport. It is idempotent.
	Close() error
}

// TransportType names a transport implementation.
type TransportType string

const (
	TransportTypeStdio TransportType = "stdio"
)

// TransportConfig configures NewTransport.
type TransportConfig struct {
	Type TransportType

	// StdioReader and StdioWriter override standard input and output.
	StdioReader io.Reader
	StdioWriter io.Writer

	// Logger, if set, receives a debug line for every message moved.
	Logger logging.Logger

	// Middleware is applied after the logging middleware, outermost first.
	Middleware []Middleware
}

// DefaultTransportConfig returns a config for the given transport type.
func DefaultTransportConfig(transportType TransportType) TransportConfig {
	return TransportConfig{Type: transportType}
}

// NewTransport builds a transport from config and wraps it in the configured
// middleware.
func NewTransport(config TransportConfig) (Transport, error) {
	var t Transport
	switch config.Type {
	case TransportTypeStdio, "":
		t = NewStdioTransport(config.StdioReader, config.StdioWriter)
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", config.Type)
	}

	var mw []Middleware
	if config.Logger != nil {
		mw = append(mw, LoggingMiddleware(config.Logger))
	}
	mw = append(mw, config.Middleware...)
	return Chain(mw...)(t), nil
}
