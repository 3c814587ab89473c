package mcp

import (
	"github.com/ajitpratap0/mcp-stdio-server/pkg/handlers"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/server"
	"github.com/ajitpratap0/mcp-stdio-server/pkg/transport"
)

// Version represents the current version of the server
const Version = "1.0.0"

// ProtocolRevision is the protocol revision reported by initialize.
const ProtocolRevision = protocol.ProtocolRevision

// These exports provide direct access to the core components
var (
	// NewServer creates a new MCP server
	NewServer = server.New

	// NewRegistry creates an empty handler registry
	NewRegistry = server.NewRegistry

	// NewStdioTransport creates a new stdio transport
	NewStdioTransport = transport.NewStdioTransport

	// RegisterBuiltins registers the reference tools, resources and prompt
	RegisterBuiltins = handlers.RegisterBuiltins
)

// Handler groups
const (
	GroupTools     = server.GroupTools
	GroupResources = server.GroupResources
	GroupPrompts   = server.GroupPrompts
)

// Server options
var (
	WithServerName         = server.WithName
	WithServerVersion      = server.WithVersion
	WithRegistry           = server.WithRegistry
	WithLogger             = server.WithLogger
	WithMiddleware         = server.WithMiddleware
	WithPageSize           = server.WithPageSize
	WithRequestIDGenerator = server.WithRequestIDGenerator
)
