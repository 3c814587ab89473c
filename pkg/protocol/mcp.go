package protocol

const (
	// ProtocolRevision is the protocol version reported by initialize
	ProtocolRevision = "2024-11-05"

	// Methods for lifecycle management
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	// MethodInitializedNotification is the namespaced form newer clients send.
	MethodInitializedNotification = "notifications/initialized"

	// Methods for server features
	MethodListTools     = "tools/list"
	MethodCallTool      = "tools/call"
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"
	MethodListPrompts   = "prompts/list"
	MethodGetPrompt     = "prompts/get"

	// Methods for utilities
	MethodPing = "ping"
)

// CapabilityType defines the types of capabilities in MCP
type CapabilityType string

const (
	// CapabilityTools indicates the server supports tools
	CapabilityTools CapabilityType = "tools"

	// CapabilityResources indicates the server supports resources
	CapabilityResources CapabilityType = "resources"

	// CapabilityPrompts indicates the server supports prompts
	CapabilityPrompts CapabilityType = "prompts"
)

// InitializeParams defines the parameters for the initialize request
type InitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion,omitempty"`
	Capabilities    map[string]interface{} `json:"capabilities,omitempty"`
	ClientInfo      *ClientInfo            `json:"clientInfo,omitempty"`
}

// ClientInfo provides additional information about the client
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities advertises the handler groups the server answers for.
// Each present member is an empty object.
type ServerCapabilities struct {
	Tools     *struct{} `json:"tools,omitempty"`
	Resources *struct{} `json:"resources,omitempty"`
	Prompts   *struct{} `json:"prompts,omitempty"`
}

// AllCapabilities returns capabilities with tools, resources and prompts enabled.
func AllCapabilities() ServerCapabilities {
	return ServerCapabilities{
		Tools:     &struct{}{},
		Resources: &struct{}{},
		Prompts:   &struct{}{},
	}
}

// InitializeResult defines the response for the initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// ServerInfo provides additional information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// EmptyResult is the result of initialized and ping.
type EmptyResult struct{}

// PaginatedParams is accepted by every list method.
type PaginatedParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// PaginatedResult is embedded by every list result.
type PaginatedResult struct {
	NextCursor string `json:"nextCursor,omitempty"`
}
