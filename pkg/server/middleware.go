package server

import (
	"context"
	"encoding/json"
	"time"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
)

// Call is a validated envelope on its way through the middleware chain.
type Call struct {
	Method string
	// ID is the raw request id, nil for notifications.
	ID     json.RawMessage
	Params json.RawMessage
	// RequestID is the correlation id assigned to this dispatch. It is also
	// available from the context via logging.RequestIDFromContext.
	RequestID string
}

// IsNotification reports whether the call expects no response.
func (c *Call) IsNotification() bool {
	return c.ID == nil
}

// HandleFunc routes a call and produces its result.
type HandleFunc func(ctx context.Context, call *Call) (interface{}, error)

// Middleware wraps a HandleFunc.
type Middleware func(next HandleFunc) HandleFunc

// Chain composes middleware so that the first one is outermost.
func Chain(middleware ...Middleware) Middleware {
	return func(next HandleFunc) HandleFunc {
		for i := len(middleware) - 1; i >= 0; i-- {
			next = middleware[i](next)
		}
		return next
	}
}

// LoggingMiddleware logs every dispatch with its correlation id, method and
// duration. Internal failures (-32603) are logged at error level; failures
// caused by the client are logged at warn level.
func LoggingMiddleware(logger logging.Logger) Middleware {
	return func(next HandleFunc) HandleFunc {
		return func(ctx context.Context, call *Call) (interface{}, error) {
			log := logger.WithContext(ctx).WithFields(
				logging.String("method", call.Method),
				logging.Bool("notification", call.IsNotification()),
			)
			if call.ID != nil {
				log = log.WithFields(logging.String("id", string(call.ID)))
			}

			log.Debug("Dispatch started")
			start := time.Now()

			result, err := next(ctx, call)

			duration := time.Since(start)
			if err != nil {
				rpcErr := mcperrors.ToJSONRPCError(err)
				failed := log.WithError(err).WithFields(
					logging.Int("code", int(rpcErr.Code)),
					logging.String("error_name", errorName(err)),
					logging.Duration("duration", duration),
				)
				if rpcErr.Code == protocol.InternalError {
					failed.Error("Dispatch failed")
				} else {
					failed.Warn("Dispatch failed")
				}
			} else {
				log.WithFields(logging.Duration("duration", duration)).Debug("Dispatch completed")
			}

			return result, err
		}
	}
}

// errorName names the code an error was raised with, before folding to wire
// codes, so that panics and transport failures stay distinguishable in logs.
func errorName(err error) string {
	if mcpErr, ok := mcperrors.AsMCPError(err); ok {
		return mcperrors.GetErrorCodeName(mcpErr.Code())
	}
	return mcperrors.GetErrorCodeName(mcperrors.CodeInternalError)
}
