// Command mcp-stdio-server serves the Model Context Protocol over standard
// input and output. Logs go to standard error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/config"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/handlers"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/observability"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/transport"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "mcp-stdio-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mcp-stdio-server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var envFiles stringList
	fs.Var(&envFiles, "env-file", "dotenv file to load before reading the environment (repeatable, default .env if present)")
	showVersion := fs.Bool("version", false, "print the server name and version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *showVersion {
		_, err := fmt.Fprintf(stdout, "%s %s\n", cfg.ServerName, cfg.ServerVersion)
		return err
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	obs, err := observability.New(ctx, observability.ObservabilityConfig{
		EnableTracing: cfg.TracingEnabled(),
		TracingConfig: observability.TracingConfig{
			ServiceName:    cfg.ServerName,
			ServiceVersion: cfg.ServerVersion,
			Environment:    cfg.Environment,
			ExporterType:   observability.ExporterType(cfg.Tracing.Exporter),
			Endpoint:       cfg.Tracing.Endpoint,
			Headers:        cfg.Tracing.Headers,
			Insecure:       cfg.Tracing.Insecure,
			SampleRate:     cfg.Tracing.SampleRate,
			SetGlobal:      true,
		},
		EnableMetrics: cfg.MetricsEnabled(),
		MetricsConfig: observability.MetricsConfig{
			ServiceName:    cfg.ServerName,
			ServiceVersion: cfg.ServerVersion,
			Environment:    cfg.Environment,
			Addr:           cfg.MetricsAddr,
			Logger:         logger.WithFields(logging.String("component", "metrics")),
		},
	})
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("Observability shutdown failed")
		}
	}()

	registry := server.NewRegistry()
	builtins := handlers.NewBuiltins(handlers.Options{
		AppName:     cfg.ServerName,
		Version:     cfg.ServerVersion,
		Environment: cfg.Environment,
		DataDir:     cfg.DataDir,
		Logger:      logger,
	})
	if err := builtins.Register(registry); err != nil {
		return err
	}

	srv := server.New(
		server.WithName(cfg.ServerName),
		server.WithVersion(cfg.ServerVersion),
		server.WithRegistry(registry),
		server.WithLogger(logger),
		server.WithPageSize(cfg.PageSize),
		server.WithMiddleware(obs.Middleware()...),
	)

	tcfg := transport.DefaultTransportConfig(transport.TransportTypeStdio)
	tcfg.StdioReader = stdin
	tcfg.StdioWriter = stdout
	tcfg.Logger = logger.WithFields(logging.String("component", "transport"))
	t, err := transport.NewTransport(tcfg)
	if err != nil {
		return err
	}
	defer t.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// End of input stops the metrics endpoint too.
		defer cancel()
		err := srv.Serve(gctx, t)
		if errors.Is(err, context.Canceled) {
			logger.Info("Shutting down")
			return nil
		}
		return err
	})

	if cfg.WatchDataDir {
		g.Go(func() error {
			return builtins.Files.Watch(gctx)
		})
	}

	if obs.Metrics != nil {
		g.Go(func() error {
			return obs.Metrics.ListenAndServe(gctx)
		})
	}

	return g.Wait()
}

func newLogger(cfg *config.Config, out io.Writer) (logging.Logger, error) {
	formatter, err := logging.NewFormatter(cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logger := logging.New(out, formatter)
	logger.SetLevel(level)
	return logger.WithFields(
		logging.String("service", cfg.ServerName),
		logging.String("environment", cfg.Environment),
	), nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint(*s)
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
