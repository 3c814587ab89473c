package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{
		ServerName:    "mcp-stdio-server",
		ServerVersion: "1.0.0",
		Environment:   "development",
		LogLevel:      "info",
		LogFormat:     "text",
		DataDir:       "./data",
		PageSize:      50,
		WatchDataDir:  true,
		Tracing: TracingConfig{
			Exporter:   "none",
			SampleRate: 1.0,
		},
	}, cfg)
	assert.False(t, cfg.TracingEnabled())
	assert.False(t, cfg.MetricsEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MCP_SERVER_NAME", "custom")
	t.Setenv("MCP_LOG_LEVEL", "debug")
	t.Setenv("MCP_LOG_FORMAT", "json")
	t.Setenv("MCP_METRICS_ADDR", ":9100")
	t.Setenv("MCP_PAGE_SIZE", "10")
	t.Setenv("MCP_WATCH_DATA_DIR", "false")
	t.Setenv("MCP_TRACING_EXPORTER", "otlp-http")
	t.Setenv("MCP_TRACING_ENDPOINT", "collector:4318")
	t.Setenv("MCP_TRACING_INSECURE", "true")
	t.Setenv("MCP_TRACING_HEADERS", "x-token:abc,x-team:core")
	t.Setenv("MCP_TRACING_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom", cfg.ServerName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10, cfg.PageSize)
	assert.False(t, cfg.WatchDataDir)
	assert.True(t, cfg.MetricsEnabled())
	assert.True(t, cfg.TracingEnabled())
	assert.Equal(t, TracingConfig{
		Exporter:   "otlp-http",
		Endpoint:   "collector:4318",
		Insecure:   true,
		Headers:    map[string]string{"x-token": "abc", "x-team": "core"},
		SampleRate: 0.25,
	}, cfg.Tracing)
}

func TestLoadNormalizesExporter(t *testing.T) {
	for _, value := range []string{"NOOP", " Otlp-GRPC ", "None"} {
		t.Run(value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("MCP_TRACING_EXPORTER", value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(value)), cfg.Tracing.Exporter)
		})
	}
}

func TestValidateExporterIsCaseSensitive(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Tracing.Exporter = "NOOP"
	assert.ErrorContains(t, cfg.Validate(), "MCP_TRACING_EXPORTER")
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MCP_ENVIRONMENT=staging\nMCP_DATA_DIR=/srv/data\n"), 0o600))
	t.Setenv("MCP_DATA_DIR", "/override")
	t.Cleanup(func() { os.Unsetenv("MCP_ENVIRONMENT") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "/override", cfg.DataDir, "the environment wins over the file")
}

func TestLoadNamedFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load("does-not-exist.env")
	assert.ErrorContains(t, err, "load env files")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad page size type", "MCP_PAGE_SIZE", "many", "parse env:"},
		{"page size too large", "MCP_PAGE_SIZE", "500", "MCP_PAGE_SIZE"},
		{"bad level", "MCP_LOG_LEVEL", "loud", "MCP_LOG_LEVEL"},
		{"bad format", "MCP_LOG_FORMAT", "xml", "MCP_LOG_FORMAT"},
		{"bad exporter", "MCP_TRACING_EXPORTER", "jaeger", "MCP_TRACING_EXPORTER"},
		{"bad sample rate", "MCP_TRACING_SAMPLE_RATE", "2", "MCP_TRACING_SAMPLE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
