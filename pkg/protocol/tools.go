package protocol

import (
	"encoding/json"
)

// ContentTypeText is the only content type produced by this server.
const ContentTypeText = "text"

// Tool represents a tool in the MCP protocol
type Tool struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	InputSchema json.RawMessage  `json:"inputSchema,omitempty"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// ToolAnnotations provides hints about tool behavior
type ToolAnnotations struct {
	Title         string `json:"title,omitempty"`
	ReadOnlyHint  bool   `json:"readOnlyHint,omitempty"`
	OpenWorldHint bool   `json:"openWorldHint,omitempty"`
}

// TextContent is a text content item
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextContent creates a text content item
func NewTextContent(text string) TextContent {
	return TextContent{Type: ContentTypeText, Text: text}
}

// ListToolsParams defines parameters for listing tools
type ListToolsParams struct {
	PaginatedParams
}

// ListToolsResult defines the response for listing tools
type ListToolsResult struct {
	Tools []Tool `json:"tools"`
	PaginatedResult
}

// CallToolParams defines parameters for calling a tool
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult defines the response for tool calls. IsError reports a
// tool-level failure inside an otherwise successful response.
type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError *bool         `json:"isError,omitempty"`
}

// NewToolResult creates a successful tool result
func NewToolResult(content ...TextContent) *CallToolResult {
	isError := false
	if content == nil {
		content = []TextContent{}
	}
	return &CallToolResult{Content: content, IsError: &isError}
}

// NewToolErrorResult creates a tool result flagged as a tool-level failure
func NewToolErrorResult(message string) *CallToolResult {
	isError := true
	return &CallToolResult{Content: []TextContent{NewTextContent(message)}, IsError: &isError}
}

// Failed reports whether the result carries the tool-level error flag.
func (r *CallToolResult) Failed() bool {
	return r.IsError != nil && *r.IsError
}
