// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/pagination"
)

// DefaultEnvFile is loaded by Load when no files are named. It is optional.
const DefaultEnvFile = ".env"

// Config is the process configuration.
type Config struct {
	ServerName    string `env:"MCP_SERVER_NAME" envDefault:"mcp-stdio-server"`
	ServerVersion string `env:"MCP_SERVER_VERSION" envDefault:"1.0.0"`
	Environment   string `env:"MCP_ENVIRONMENT" envDefault:"development"`

	LogLevel  string `env:"MCP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MCP_LOG_FORMAT" envDefault:"text"`

	DataDir  string `env:"MCP_DATA_DIR" envDefault:"./data"`
	PageSize int    `env:"MCP_PAGE_SIZE" envDefault:"50"`

	// WatchDataDir caches the file listing and refreshes it on change.
	WatchDataDir bool `env:"MCP_WATCH_DATA_DIR" envDefault:"true"`

	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9090".
	MetricsAddr string `env:"MCP_METRICS_ADDR"`

	Tracing TracingConfig `envPrefix:"MCP_TRACING_"`
}

// TracingConfig selects the span exporter.
type TracingConfig struct {
	// Exporter is one of none, noop, otlp-grpc and otlp-http.
	Exporter   string            `env:"EXPORTER" envDefault:"none"`
	Endpoint   string            `env:"ENDPOINT"`
	Insecure   bool              `env:"INSECURE"`
	Headers    map[string]string `env:"HEADERS"`
	SampleRate float64           `env:"SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads the named dotenv files, or DefaultEnvFile when none are named,
// and then parses the environment. Variables already set in the environment
// win over dotenv values. A missing default file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Tracing.Exporter = strings.ToLower(strings.TrimSpace(cfg.Tracing.Exporter))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env parsing cannot. Load lowercases the
// exporter name before validating.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("MCP_LOG_LEVEL: %w", err))
	}
	if _, err := logging.NewFormatter(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("MCP_LOG_FORMAT: %w", err))
	}
	if err := pagination.ValidateLimit(c.PageSize); err != nil {
		errs = append(errs, fmt.Errorf("MCP_PAGE_SIZE: %w", err))
	}

	switch c.Tracing.Exporter {
	case "none", "noop", "otlp-grpc", "otlp-http":
	default:
		errs = append(errs, fmt.Errorf("MCP_TRACING_EXPORTER: unknown exporter %q", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("MCP_TRACING_SAMPLE_RATE: %v is outside [0, 1]", c.Tracing.SampleRate))
	}

	return errors.Join(errs...)
}

// TracingEnabled reports whether spans are recorded.
func (c *Config) TracingEnabled() bool {
	return c.Tracing.Exporter != "none"
}

// MetricsEnabled reports whether the metrics endpoint is served.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsAddr != ""
}
