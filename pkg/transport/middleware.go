package transport

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
)

// Middleware wraps a Transport with additional behavior.
type Middleware func(Transport) Transport

// Chain composes middleware so that the first one is outermost.
func Chain(middleware ...Middleware) Middleware {
	return func(t Transport) Transport {
		for i := len(middleware) - 1; i >= 0; i-- {
			t = middleware[i](t)
		}
		return t
	}
}

// LoggingMiddleware logs every message moved at debug level, and every
// unparseable line at warn level.
func LoggingMiddleware(logger logging.Logger) Middleware {
	logger = logger.WithFields(logging.String("component", "transport"))
	return func(next Transport) Transport {
		return &loggingTransport{next: next, logger: logger}
	}
}

type loggingTransport struct {
	next   Transport
	logger logging.Logger
}

func (l *loggingTransport) Receive(ctx context.Context) (json.RawMessage, error) {
	msg, err := l.next.Receive(ctx)
	switch {
	case err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, context.Canceled):
		l.logger.WithError(err).Warn("receive failed")
	case msg != nil:
		l.logger.Debug("received", logging.Int("bytes", len(msg)), logging.String("message", string(msg)))
	}
	return msg, err
}

func (l *loggingTransport) Send(ctx context.Context, v interface{}) error {
	if err := l.next.Send(ctx, v); err != nil {
		l.logger.WithError(err).Error("send failed")
		return err
	}
	if l.logger.GetLevel() <= logging.DebugLevel {
		if data, err := json.Marshal(v); err == nil {
			l.logger.Debug("sent", logging.Int("bytes", len(data)), logging.String("message", string(data)))
		}
	}
	return nil
}

func (l *loggingTransport) Close() error {
	l.logger.Debug("closing")
	return l.next.Close()
}
