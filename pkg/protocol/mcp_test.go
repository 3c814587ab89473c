package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeResultShape(t *testing.T) {
	result := InitializeResult{
		ProtocolVersion: ProtocolRevision,
		Capabilities:    AllCapabilities(),
		ServerInfo:      ServerInfo{Name: "srv", Version: "1.0.0"},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"protocolVersion": "2024-11-05",
		"capabilities": {"tools": {}, "resources": {}, "prompts": {}},
		"serverInfo": {"name": "srv", "version": "1.0.0"}
	}`, string(data))
}

func TestToolResults(t *testing.T) {
	ok := NewToolResult(NewTextContent("hello"))
	assert.False(t, ok.Failed())

	data, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"hello"}],"isError":false}`, string(data))

	failed := NewToolErrorResult("Height must be positive")
	assert.True(t, failed.Failed())
	assert.Equal(t, "Height must be positive", failed.Content[0].Text)

	empty := NewToolResult()
	data, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[],"isError":false}`, string(data))

	assert.False(t, (&CallToolResult{}).Failed())
}

func TestResourceContentsJSON(t *testing.T) {
	contents := NewTextResourceContents("config://app", "application/json", `{"appName":"x"}`)

	data, err := json.Marshal(ReadResourceResult{Contents: []ResourceContents{contents}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"contents":[{"uri":"config://app","mimeType":"application/json","text":"{\"appName\":\"x\"}"}]}`, string(data))
}

func TestListResultsOmitEmptyCursor(t *testing.T) {
	data, err := json.Marshal(ListPromptsResult{Prompts: []Prompt{{Name: "review-code"}}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompts":[{"name":"review-code"}]}`, string(data))

	data, err = json.Marshal(ListToolsResult{Tools: []Tool{}, PaginatedResult: PaginatedResult{NextCursor: "abc"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"tools":[],"nextCursor":"abc"}`, string(data))
}
