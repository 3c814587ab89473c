package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	// Test with nil params
	req, err := NewRequest("req-1", "test.method", nil)
	require.NoError(t, err)

	assert.Equal(t, JSONRPCVersion, req.JSONRPC)
	assert.Equal(t, `"req-1"`, string(req.ID))
	assert.Equal(t, "test.method", req.Method)
	assert.Empty(t, req.Params)
	assert.False(t, req.IsNotification())

	// Test with params
	params := map[string]interface{}{
		"key": "value",
		"num": 42,
	}

	req, err = NewRequest(7, "test.method", params)
	require.NoError(t, err)
	assert.Equal(t, "7", string(req.ID))

	var decodedParams map[string]interface{}
	require.NoError(t, json.Unmarshal(req.Params, &decodedParams))
	assert.Equal(t, "value", decodedParams["key"])
	assert.Equal(t, float64(42), decodedParams["num"])
}

func TestNewRequestNullID(t *testing.T) {
	req, err := NewRequest(nil, "ping", nil)
	require.NoError(t, err)

	assert.Equal(t, "null", string(req.ID))
	assert.False(t, req.IsNotification(), "an explicit null id is still a request")

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"method":"ping"}`, string(data))
}

func TestNewNotification(t *testing.T) {
	n, err := NewNotification("initialized", nil)
	require.NoError(t, err)

	assert.True(t, n.IsNotification())

	data, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"initialized"}`, string(data))
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantErr      bool
		wantID       string
		wantNotify   bool
		wantMethod   string
		wantParams   string
		wantEnvelope bool
	}{
		{
			name:         "request with numeric id",
			input:        `{"jsonrpc":"2.0","id":1,"method":"ping"}`,
			wantID:       "1",
			wantMethod:   "ping",
			wantEnvelope: true,
		},
		{
			name:         "request with string id and params",
			input:        `{"jsonrpc":"2.0","id":"abc","method":"tools/call","params":{"name":"greet"}}`,
			wantID:       `"abc"`,
			wantMethod:   "tools/call",
			wantParams:   `{"name":"greet"}`,
			wantEnvelope: true,
		},
		{
			name:         "request with null id",
			input:        `{"jsonrpc":"2.0","id":null,"method":"ping"}`,
			wantID:       "null",
			wantMethod:   "ping",
			wantEnvelope: true,
		},
		{
			name:         "notification",
			input:        `{"jsonrpc":"2.0","method":"initialized"}`,
			wantNotify:   true,
			wantMethod:   "initialized",
			wantEnvelope: true,
		},
		{
			name:         "null params are dropped",
			input:        `{"jsonrpc":"2.0","id":2,"method":"ping","params":null}`,
			wantID:       "2",
			wantMethod:   "ping",
			wantEnvelope: true,
		},
		{
			name:         "wrong version keeps id",
			input:        `{"jsonrpc":"1.0","id":3,"method":"ping"}`,
			wantErr:      true,
			wantID:       "3",
			wantEnvelope: true,
		},
		{
			name:         "missing version",
			input:        `{"id":4,"method":"ping"}`,
			wantErr:      true,
			wantID:       "4",
			wantEnvelope: true,
		},
		{
			name:         "numeric version",
			input:        `{"jsonrpc":2.0,"id":4,"method":"ping"}`,
			wantErr:      true,
			wantID:       "4",
			wantEnvelope: true,
		},
		{
			name:         "missing method",
			input:        `{"jsonrpc":"2.0","id":5}`,
			wantErr:      true,
			wantID:       "5",
			wantEnvelope: true,
		},
		{
			name:         "non-string method",
			input:        `{"jsonrpc":"2.0","id":6,"method":42}`,
			wantErr:      true,
			wantID:       "6",
			wantEnvelope: true,
		},
		{
			name:         "null method",
			input:        `{"jsonrpc":"2.0","id":6,"method":null}`,
			wantErr:      true,
			wantID:       "6",
			wantEnvelope: true,
		},
		{
			name:         "object id is replaced by null",
			input:        `{"jsonrpc":"2.0","id":{"a":1},"method":"ping"}`,
			wantErr:      true,
			wantID:       "null",
			wantEnvelope: true,
		},
		{
			name:         "invalid notification",
			input:        `{"jsonrpc":"1.0","method":"ping"}`,
			wantErr:      true,
			wantNotify:   true,
			wantEnvelope: true,
		},
		{
			name:    "array is not an envelope",
			input:   `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`,
			wantErr: true,
		},
		{
			name:    "scalar is not an envelope",
			input:   `42`,
			wantErr: true,
		},
		{
			name:    "null is not an envelope",
			input:   `null`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidEnvelope))
			} else {
				require.NoError(t, err)
			}

			if !tt.wantEnvelope {
				assert.Nil(t, env)
				return
			}
			require.NotNil(t, env)
			assert.Equal(t, tt.wantNotify, env.IsNotification())
			if !tt.wantNotify {
				assert.Equal(t, tt.wantID, string(env.ID))
			}
			if !tt.wantErr {
				assert.Equal(t, tt.wantMethod, env.Method)
				assert.Equal(t, tt.wantParams, string(env.Params))
			}
		})
	}
}

func TestDecodeEnvelopeInvalidUTF8ID(t *testing.T) {
	env, err := DecodeEnvelope([]byte("{\"jsonrpc\":\"2.0\",\"id\":\"a\xffb\",\"method\":\"ping\"}"))
	require.NoError(t, err)
	assert.True(t, utf8.Valid(env.ID))

	var id string
	require.NoError(t, json.Unmarshal(env.ID, &id))
	assert.Equal(t, "a\uFFFDb", id)

	resp, err := NewResponse(env.ID, struct{}{})
	require.NoError(t, err)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(data))
}

func TestNewResponse(t *testing.T) {
	// Test with nil result
	resp, err := NewResponse(json.RawMessage("1"), nil)
	require.NoError(t, err)

	assert.Equal(t, JSONRPCVersion, resp.JSONRPC)
	assert.Equal(t, "1", string(resp.ID))
	assert.Equal(t, "{}", string(resp.Result))
	assert.Nil(t, resp.Error)

	// Test with result
	resp, err = NewResponse(json.RawMessage(`"a"`), map[string]string{"status": "ok"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(resp.Result))

	// Test with unmarshalable result
	_, err = NewResponse(json.RawMessage("1"), make(chan int))
	assert.Error(t, err)
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(json.RawMessage("9"), MethodNotFound, "Method not found: x", nil)

	assert.Equal(t, "9", string(resp.ID))
	assert.Nil(t, resp.Result)
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFound, resp.Error.Code)
	assert.Equal(t, "rpc error: code = -32601 desc = Method not found: x", resp.Error.Error())

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":9,"error":{"code":-32601,"message":"Method not found: x"}}`, string(data))
}

func TestResponseNilIDIsNull(t *testing.T) {
	resp := NewErrorResponse(nil, InvalidRequest, "Invalid request", nil)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid request"}}`, string(data))
}

func TestResponseRoundTrip(t *testing.T) {
	success, err := NewResponse(json.RawMessage(`"req-1"`), &CallToolResult{
		Content: []TextContent{NewTextContent("BMI: 22.86")},
	})
	require.NoError(t, err)

	responses := []*Response{
		success,
		NewErrorResponse(json.RawMessage("42"), InternalError, "boom", "boom"),
		NewErrorResponse(json.RawMessage("null"), InvalidParams, "Missing params", nil),
	}

	for _, original := range responses {
		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded Response
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, original, &decoded)
	}
}
