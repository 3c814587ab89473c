package server

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	mcperrors "github.com/ajitpratap0/mcp-stdio-server/pkg/errors"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/logging"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/pagination"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/transport"
)

// Server answers JSON-RPC requests for the built-in methods and the three
// handler groups.
type Server struct {
	name     string
	version  string
	registry *Registry
	logger   logging.Logger
	idGen    logging.RequestIDGenerator
	pageSize int

	middleware []Middleware
	handler    HandleFunc

	// Server state
	initialized     bool
	initializedLock sync.RWMutex
	clientInfo      *protocol.ClientInfo
}

// ServerOption defines options for creating a server
type ServerOption func(*Server)

// WithName sets the server name
func WithName(name string) ServerOption {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the server version
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		s.version = version
	}
}

// WithRegistry makes the server dispatch to an existing registry.
func WithRegistry(registry *Registry) ServerOption {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMiddleware appends middleware to the dispatch chain. The built-in
// logging middleware is always outermost.
func WithMiddleware(middleware ...Middleware) ServerOption {
	return func(s *Server) {
		s.middleware = append(s.middleware, middleware...)
	}
}

// WithRequestIDGenerator sets the generator of per-dispatch correlation ids.
func WithRequestIDGenerator(generator logging.RequestIDGenerator) ServerOption {
	return func(s *Server) {
		s.idGen = generator
	}
}

// WithPageSize sets the maximum number of items per list page.
func WithPageSize(size int) ServerOption {
	return func(s *Server) {
		s.pageSize = size
	}
}

// New creates a new server
func New(options ...ServerOption) *Server {
	s := &Server{
		name:     "mcp-stdio-server",
		version:  "1.0.0",
		idGen:    &logging.UUIDGenerator{},
		pageSize: pagination.DefaultLimit,
	}

	for _, option := range options {
		option(s)
	}

	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.logger == nil {
		s.logger = logging.New(nil, logging.NewTextFormatter())
	}
	s.logger = s.logger.WithFields(logging.String("component", "server"))

	chain := append([]Middleware{LoggingMiddleware(s.logger)}, s.middleware...)
	s.handler = Chain(chain...)(s.route)

	return s
}

// Registry returns the registry the server dispatches to.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Register binds a handler in the server's registry.
func (s *Server) Register(group Group, name string, handler interface{}) error {
	return s.registry.Register(group, name, handler)
}

// Initialized reports whether an initialize request has been handled.
func (s *Server) Initialized() bool {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.initialized
}

// ClientInfo returns the client info sent with initialize, if any.
func (s *Server) ClientInfo() *protocol.ClientInfo {
	s.initializedLock.RLock()
	defer s.initializedLock.RUnlock()
	return s.clientInfo
}

// Serve runs the read, dispatch, write cycle on t until the input ends, a
// fatal transport error occurs or ctx is cancelled. End of input returns
// nil. Cancellation closes t and returns ctx.Err().
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	g, gctx := errgroup.WithContext(ctx)
	loopDone := make(chan struct{})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			// Unblocks a pending Receive.
			if err := t.Close(); err != nil {
				s.logger.WithError(err).Warn("Closing transport failed")
			}
		case <-loopDone:
		}
		return nil
	})

	g.Go(func() error {
		defer close(loopDone)
		return s.serveLoop(gctx, t)
	})

	return g.Wait()
}

func (s *Server) serveLoop(ctx context.Context, t transport.Transport) error {
	s.logger.Info("Serving", logging.String("name", s.name), logging.String("version", s.version))

	for {
		raw, err := t.Receive(ctx)
		switch {
		case errors.Is(err, transport.ErrClosed):
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Info("Input closed")
			return nil
		case mcperrors.IsCode(err, mcperrors.CodeParseError):
			log := s.logger.WithError(err)
			if mcpErr, ok := mcperrors.AsMCPError(err); ok && mcpErr.Data() != nil {
				log = log.WithFields(logging.Any("line", mcpErr.Data()))
			}
			log.Warn("Dropping line that is not JSON")
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WithError(err).Error("Receive failed")
			return err
		case raw == nil:
			continue
		}

		resp := s.Dispatch(ctx, raw)
		if resp == nil {
			continue
		}
		if err := t.Send(ctx, resp); err != nil {
			s.logger.WithError(err).Error("Send failed")
			return err
		}
	}
}
