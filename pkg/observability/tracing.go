// Package observability exposes dispatch metrics and traces for the server.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
)

const tracerName = "github.com/ajitpratap0/mcp-stdio-server"

// TracingConfig configures OpenTelemetry tracing
type TracingConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Exporter configuration
	ExporterType ExporterType
	Endpoint     string // OTLP endpoint
	Headers      map[string]string
	Insecure     bool // Use insecure connection (for development)

	// Exporter, when set, is used instead of building one from ExporterType.
	Exporter sdktrace.SpanExporter

	// Sampling configuration
	SampleRate   float64  // 0.0 to 1.0, zero means 1.0
	AlwaysSample []string // Method names to always sample
	NeverSample  []string // Method names to never sample

	// Additional attributes
	ResourceAttributes map[string]string

	// SetGlobal installs the provider and propagator as the otel globals.
	SetGlobal bool
}

// ExporterType defines the type of trace exporter
type ExporterType string

const (
	// ExporterTypeNone disables tracing altogether
	ExporterTypeNone ExporterType = "none"

	// ExporterTypeOTLPGRPC exports traces via OTLP over gRPC
	ExporterTypeOTLPGRPC ExporterType = "otlp-grpc"

	// ExporterTypeOTLPHTTP exports traces via OTLP over HTTP
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"

	// ExporterTypeNoop records spans but exports nothing
	ExporterTypeNoop ExporterType = "noop"
)

// TracingProvider manages OpenTelemetry tracing
type TracingProvider struct {
	config         TracingConfig
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	mu             sync.Mutex
	shutdown       bool
}

// NewTracingProvider creates a new tracing provider
func NewTracingProvider(ctx context.Context, config TracingConfig) (*TracingProvider, error) {
	// Set defaults
	if config.ServiceName == "" {
		config.ServiceName = "mcp-stdio-server"
	}
	if config.ServiceVersion == "" {
		config.ServiceVersion = "unknown"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}
	if config.SampleRate == 0 {
		config.SampleRate = 1.0
	}

	exporter := config.Exporter
	if exporter == nil {
		var err error
		exporter, err = createExporter(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter: %w", err)
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(createResource(config)),
		sdktrace.WithSampler(sdktrace.ParentBased(createSampler(config))),
	)

	if config.SetGlobal {
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return &TracingProvider{
		config:         config,
		tracerProvider: tp,
		tracer:         tp.Tracer(tracerName),
	}, nil
}

// createResource creates the OpenTelemetry resource
func createResource(config TracingConfig) *resource.Resource {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		semconv.DeploymentEnvironment(config.Environment),
	}

	for k, v := range config.ResourceAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

// createExporter creates the configured trace exporter
func createExporter(ctx context.Context, config TracingConfig) (sdktrace.SpanExporter, error) {
	switch config.ExporterType {
	case ExporterTypeOTLPGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithHeaders(config.Headers)}
		if config.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(config.Endpoint))
		}
		if config.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case ExporterTypeOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithHeaders(config.Headers)}
		if config.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint))
		}
		if config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	case ExporterTypeNoop, "":
		return &noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.ExporterType)
	}
}

// createSampler creates a sampler based on configuration
func createSampler(config TracingConfig) sdktrace.Sampler {
	if len(config.AlwaysSample) > 0 || len(config.NeverSample) > 0 {
		return &methodSampler{
			defaultRate:  config.SampleRate,
			alwaysSample: makeStringSet(config.AlwaysSample),
			neverSample:  makeStringSet(config.NeverSample),
		}
	}
	return rateSampler(config.SampleRate)
}

func rateSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0.0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

// Tracer returns the tracer used for dispatch spans.
func (tp *TracingProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// StartMethodSpan starts a server span named mcp.<method>.
func (tp *TracingProvider) StartMethodSpan(ctx context.Context, method string) (context.Context, trace.Span) {
	return tp.tracer.Start(ctx, "mcp."+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("mcp.method", method),
			semconv.RPCSystemKey.String("jsonrpc"),
			semconv.RPCMethod(method),
			semconv.RPCService(tp.config.ServiceName),
		),
	)
}

// Middleware returns a server middleware that wraps every dispatch in a
// span. A dispatch error sets the error status and the mapped wire code.
func (tp *TracingProvider) Middleware() server.Middleware {
	return func(next server.HandleFunc) server.HandleFunc {
		return func(ctx context.Context, call *server.Call) (interface{}, error) {
			ctx, span := tp.StartMethodSpan(ctx, call.Method)
			defer span.End()

			attrs := []attribute.KeyValue{
				attribute.String("mcp.request_id", call.RequestID),
				attribute.Bool("mcp.notification", call.IsNotification()),
			}
			if call.ID != nil {
				attrs = append(attrs, semconv.RPCJsonrpcRequestID(string(call.ID)))
			}
			if target := callTarget(call); target != "" {
				attrs = append(attrs, attribute.String("mcp.target", target))
			}
			span.SetAttributes(attrs...)

			result, err := next(ctx, call)
			if err != nil {
				rpcErr := mcperrors.ToJSONRPCError(err)
				span.SetAttributes(
					semconv.RPCJsonrpcErrorCode(int(rpcErr.Code)),
					semconv.RPCJsonrpcErrorMessage(rpcErr.Message),
					attribute.String("mcp.error.type", errorType(err)),
				)
				span.RecordError(err)
				span.SetStatus(codes.Error, rpcErr.Message)
				return result, err
			}

			if r, ok := result.(*protocol.CallToolResult); ok && r.Failed() {
				span.SetAttributes(attribute.Bool("mcp.tool.is_error", true))
			}
			span.SetStatus(codes.Ok, "")
			return result, nil
		}
	}
}

// ForceFlush exports all finished spans.
func (tp *TracingProvider) ForceFlush(ctx context.Context) error {
	return tp.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes pending spans and stops the provider. Later calls are no-ops.
func (tp *TracingProvider) Shutdown(ctx context.Context) error {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if tp.shutdown {
		return nil
	}
	tp.shutdown = true
	return tp.tracerProvider.Shutdown(ctx)
}

// callTarget returns the tool or prompt name, or resource URI, a call addresses.
func callTarget(call *server.Call) string {
	switch call.Method {
	case protocol.MethodCallTool, protocol.MethodGetPrompt:
		var p struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(call.Params, &p) == nil {
			return p.Name
		}
	case protocol.MethodReadResource:
		var p protocol.ReadResourceParams
		if json.Unmarshal(call.Params, &p) == nil {
			return p.URI
		}
	}
	return ""
}

// errorType classifies an error for span attributes.
func errorType(err error) string {
	if mcpErr, ok := mcperrors.AsMCPError(err); ok {
		return string(mcpErr.Category())
	}
	return "unknown"
}

// methodSampler samples based on method name
type methodSampler struct {
	defaultRate  float64
	alwaysSample map[string]struct{}
	neverSample  map[string]struct{}
}

func (ms *methodSampler) ShouldSample(params sdktrace.SamplingParameters) sdktrace.SamplingResult {
	method := params.Name
	for _, attr := range params.Attributes {
		if attr.Key == "mcp.method" {
			method = attr.Value.AsString()
			break
		}
	}

	if _, ok := ms.alwaysSample[method]; ok {
		return sdktrace.AlwaysSample().ShouldSample(params)
	}
	if _, ok := ms.neverSample[method]; ok {
		return sdktrace.NeverSample().ShouldSample(params)
	}
	return rateSampler(ms.defaultRate).ShouldSample(params)
}

func (ms *methodSampler) Description() string {
	return fmt.Sprintf("MethodSampler{defaultRate=%.2f}", ms.defaultRate)
}

// noopExporter drops every span
type noopExporter struct{}

func (n *noopExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (n *noopExporter) Shutdown(ctx context.Context) error {
	return nil
}

func makeStringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
