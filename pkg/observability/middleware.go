package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
)

// ObservabilityConfig selects and configures the observability components.
type ObservabilityConfig struct {
	// Tracing configuration
	EnableTracing bool
	TracingConfig TracingConfig

	// Metrics configuration
	EnableMetrics bool
	MetricsConfig MetricsConfig
}

// Observability bundles the enabled components. Disabled components are nil.
type Observability struct {
	Tracing *TracingProvider
	Metrics *Metrics
}

// New builds the components enabled in config.
func New(ctx context.Context, config ObservabilityConfig) (*Observability, error) {
	o := &Observability{}

	if config.EnableTracing && config.TracingConfig.ExporterType != ExporterTypeNone {
		t, err := NewTracingProvider(ctx, config.TracingConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracing provider: %w", err)
		}
		o.Tracing = t
	}

	if config.EnableMetrics {
		m, err := NewMetrics(config.MetricsConfig)
		if err != nil {
			if o.Tracing != nil {
				_ = o.Tracing.Shutdown(ctx)
			}
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		o.Metrics = m
	}

	return o, nil
}

// Middleware returns the server middleware of the enabled components.
// Tracing comes first so that the span covers the recorded duration.
func (o *Observability) Middleware() []server.Middleware {
	var mw []server.Middleware
	if o.Tracing != nil {
		mw = append(mw, o.Tracing.Middleware())
	}
	if o.Metrics != nil {
		mw = append(mw, o.Metrics.Middleware())
	}
	return mw
}

// Shutdown flushes and stops the tracing provider.
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.Tracing != nil {
		if err := o.Tracing.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
