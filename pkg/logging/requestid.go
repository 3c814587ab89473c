package logging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const requestIDField = "request_id"

type contextKey string

const requestIDKey contextKey = "request_id"

// ContextWithRequestID returns a context carrying a correlation id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the correlation id from a context
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// RequestIDGenerator generates correlation ids for dispatched messages.
type RequestIDGenerator interface {
	Generate() string
}

// UUIDGenerator generates UUID request IDs
type UUIDGenerator struct{}

// Generate generates a new UUID
func (g *UUIDGenerator) Generate() string {
	return uuid.New().String()
}

// PrefixedGenerator generates prefixed request IDs
type PrefixedGenerator struct {
	Prefix    string
	Generator RequestIDGenerator
}

// Generate generates a new prefixed ID
func (g *PrefixedGenerator) Generate() string {
	return fmt.Sprintf("%s-%s", g.Prefix, g.Generator.Generate())
}

// EnsureRequestID returns ctx unchanged if it already carries a correlation
// id, otherwise a child context with a freshly generated one.
func EnsureRequestID(ctx context.Context, generator RequestIDGenerator) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	if generator == nil {
		generator = &UUIDGenerator{}
	}
	id := generator.Generate()
	return ContextWithRequestID(ctx, id), id
}
