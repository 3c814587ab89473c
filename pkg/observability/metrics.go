package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Prometheus configuration
	Addr        string // listen address of the metrics endpoint, e.g. ":9090"
	MetricsPath string // HTTP path for metrics endpoint (default: /metrics)

	// Metric options
	Namespace        string    // Prometheus namespace (default: mcp)
	Subsystem        string    // Prometheus subsystem
	HistogramBuckets []float64 // Custom histogram buckets for dispatch latency, in seconds

	// Labels to add to all metrics
	ConstLabels prometheus.Labels

	// Logger receives errors from the HTTP server
	Logger logging.Logger
}

// Metrics records dispatch metrics into its own Prometheus registry.
type Metrics struct {
	config   MetricsConfig
	registry *prometheus.Registry

	messagesTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	inFlight         prometheus.Gauge
}

// Message kinds used as the "kind" label.
const (
	KindRequest      = "request"
	KindNotification = "notification"
)

// otherMethod labels methods outside the built-in set so that arbitrary
// client input cannot grow label cardinality.
const otherMethod = "other"

var knownMethods = map[string]struct{}{
	protocol.MethodInitialize:              {},
	protocol.MethodInitialized:             {},
	protocol.MethodInitializedNotification: {},
	protocol.MethodPing:                    {},
	protocol.MethodListTools:               {},
	protocol.MethodCallTool:                {},
	protocol.MethodListResources:           {},
	protocol.MethodReadResource:            {},
	protocol.MethodListPrompts:             {},
	protocol.MethodGetPrompt:               {},
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime and process collectors, in a fresh registry.
func NewMetrics(config MetricsConfig) (*Metrics, error) {
	// Set defaults
	if config.Namespace == "" {
		config.Namespace = "mcp"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.HistogramBuckets == nil {
		config.HistogramBuckets = prometheus.ExponentialBuckets(0.0005, 2, 14)
	}
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}

	constLabels := prometheus.Labels{}
	for k, v := range config.ConstLabels {
		constLabels[k] = v
	}
	if config.ServiceName != "" {
		constLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		constLabels["version"] = config.ServiceVersion
	}
	if config.Environment != "" {
		constLabels["environment"] = config.Environment
	}

	m := &Metrics{
		config:   config,
		registry: prometheus.NewRegistry(),
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "messages_total",
				Help:        "Total number of dispatched messages by method, kind and JSON-RPC error code (0 on success)",
				ConstLabels: constLabels,
			},
			[]string{"method", "kind", "code"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "dispatch_duration_seconds",
				Help:        "Time spent dispatching a message",
				Buckets:     config.HistogramBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace:   config.Namespace,
				Subsystem:   config.Subsystem,
				Name:        "in_flight",
				Help:        "Messages currently being dispatched",
				ConstLabels: constLabels,
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.messagesTotal,
		m.dispatchDuration,
		m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return m, nil
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog: logging.StdLogger(m.config.Logger, logging.ErrorLevel),
		Registry: m.registry,
	})
}

// RecordDispatch records one finished dispatch.
func (m *Metrics) RecordDispatch(method, kind string, code int, duration time.Duration) {
	method = methodLabel(method)
	m.messagesTotal.WithLabelValues(method, kind, strconv.Itoa(code)).Inc()
	m.dispatchDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Middleware returns a server middleware recording every dispatch.
func (m *Metrics) Middleware() server.Middleware {
	return func(next server.HandleFunc) server.HandleFunc {
		return func(ctx context.Context, call *server.Call) (interface{}, error) {
			m.inFlight.Inc()
			defer m.inFlight.Dec()

			start := time.Now()
			result, err := next(ctx, call)

			kind := KindRequest
			if call.IsNotification() {
				kind = KindNotification
			}
			m.RecordDispatch(call.Method, kind, resultCode(err), time.Since(start))
			return result, err
		}
	}
}

// ListenAndServe serves the metrics endpoint on the configured address until
// ctx is cancelled.
func (m *Metrics) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", m.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.config.Addr, err)
	}
	return m.Serve(ctx, ln)
}

// Serve serves the metrics endpoint on ln until ctx is cancelled. A
// cancelled context is a clean shutdown and returns nil.
func (m *Metrics) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle(m.config.MetricsPath, m.Handler())

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          logging.StdLogger(m.config.Logger, logging.ErrorLevel),
	}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				m.config.Logger.WithError(err).Warn("Metrics server shutdown failed")
			}
		case <-stopped:
		}
	}()

	m.config.Logger.Info("Serving metrics",
		logging.String("addr", ln.Addr().String()),
		logging.String("path", m.config.MetricsPath))

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}

func methodLabel(method string) string {
	if _, ok := knownMethods[method]; ok {
		return method
	}
	return otherMethod
}

// resultCode is the wire code a dispatch error maps to, 0 on success.
func resultCode(err error) int {
	if err == nil {
		return 0
	}
	return int(mcperrors.ToJSONRPCError(err).Code)
}
