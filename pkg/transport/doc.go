// Package transport carries newline-delimited JSON between the server and
// its client.
//
// # StdioTransport
//
// StdioTransport reads requests from standard input and writes responses to
// standard output, one JSON value per line:
//
//	t := transport.NewStdioTransport(os.Stdin, os.Stdout)
//	defer t.Close()
//
//	for {
//		msg, err := t.Receive(ctx)
//		if errors.Is(err, transport.ErrClosed) {
//			return nil
//		}
//		...
//	}
//
// Receive reports three outcomes beyond a message: a blank line yields
// (nil, nil) and the caller reads again; end of input yields ErrClosed; a
// line that is not JSON yields a parse error and the stream stays usable.
// Any other read or write error is fatal to the stream.
//
// Standard output is reserved for protocol traffic. Diagnostics go to the
// logging package, which writes to standard error.
//
// # Middleware
//
// Middleware wraps a Transport. LoggingMiddleware records every message at
// debug level:
//
//	t, err := transport.NewTransport(transport.TransportConfig{
//		Type:   transport.TransportTypeStdio,
//		Logger: logger,
//	})
package transport
