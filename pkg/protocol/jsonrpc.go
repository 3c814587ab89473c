package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// JSONRPCVersion is the supported JSON-RPC version
	JSONRPCVersion = "2.0"
)

// ErrorCode represents standard JSON-RPC 2.0 error codes
type ErrorCode int

// Standard error codes as per JSON-RPC 2.0 specification
const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
)

// ErrInvalidEnvelope is wrapped by every envelope validation failure.
var ErrInvalidEnvelope = errors.New("invalid envelope")

// nullID is the wire form of an explicit null id.
var nullID = json.RawMessage("null")

// Envelope is an incoming JSON-RPC 2.0 message: either a request (id present,
// possibly null) or a notification (id absent).
//
// ID holds the raw id bytes so a response can echo them unchanged. A nil ID
// means the member was absent.
type Envelope struct {
	JSONRPC string
	ID      json.RawMessage
	Method  string
	Params  json.RawMessage
}

// IsNotification reports whether the envelope carries no id.
func (e *Envelope) IsNotification() bool {
	return e.ID == nil
}

// MarshalJSON writes the envelope, omitting id for notifications.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	type wire struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id,omitempty"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}
	return json.Marshal(wire{JSONRPC: e.JSONRPC, ID: e.ID, Method: e.Method, Params: e.Params})
}

// NewRequest creates a new JSON-RPC 2.0 request. A nil id produces an
// explicit null id.
func NewRequest(id interface{}, method string, params interface{}) (*Envelope, error) {
	idJSON, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal id: %w", err)
	}
	paramsJSON, err := marshalOptional(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &Envelope{
		JSONRPC: JSONRPCVersion,
		ID:      idJSON,
		Method:  method,
		Params:  paramsJSON,
	}, nil
}

// NewNotification creates a new JSON-RPC 2.0 notification
func NewNotification(method string, params interface{}) (*Envelope, error) {
	paramsJSON, err := marshalOptional(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &Envelope{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  paramsJSON,
	}, nil
}

// DecodeEnvelope decodes and validates a single JSON value as an envelope.
//
// On a validation failure the returned envelope is still non-nil whenever the
// value was a JSON object, with ID set to whatever id could be recovered, so
// the caller can decide whether the failure is reportable. The error wraps
// ErrInvalidEnvelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%w: message must be a JSON object", ErrInvalidEnvelope)
	}

	env := &Envelope{}
	if rawID, ok := fields["id"]; ok {
		if !validID(rawID) {
			env.ID = nullID
			return env, fmt.Errorf("%w: id must be a string, number or null", ErrInvalidEnvelope)
		}
		env.ID = canonicalID(rawID)
	}

	rawVersion, ok := fields["jsonrpc"]
	if !ok {
		return env, fmt.Errorf("%w: missing jsonrpc field", ErrInvalidEnvelope)
	}
	if err := json.Unmarshal(rawVersion, &env.JSONRPC); err != nil || env.JSONRPC != JSONRPCVersion {
		return env, fmt.Errorf("%w: invalid jsonrpc version", ErrInvalidEnvelope)
	}

	rawMethod, ok := fields["method"]
	if !ok {
		return env, fmt.Errorf("%w: missing method", ErrInvalidEnvelope)
	}
	if err := json.Unmarshal(rawMethod, &env.Method); err != nil || isNull(rawMethod) {
		return env, fmt.Errorf("%w: method must be a string", ErrInvalidEnvelope)
	}

	if rawParams, ok := fields["params"]; ok && !isNull(rawParams) {
		env.Params = rawParams
	}

	return env, nil
}

// validID accepts string, number and null ids.
func validID(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch c := trimmed[0]; {
	case c == '"', c == '-', c >= '0' && c <= '9':
		return true
	default:
		return isNull(trimmed)
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), nullID)
}

// canonicalID compacts an id for echoing. A string id holding invalid UTF-8
// is re-encoded with U+FFFD so that the response stays valid UTF-8.
func canonicalID(raw json.RawMessage) json.RawMessage {
	if utf8.Valid(raw) {
		return compact(raw)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return compact(raw)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return compact(raw)
	}
	return data
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

func marshalOptional(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Response represents a JSON-RPC 2.0 response. Exactly one of Result and
// Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a new JSON-RPC 2.0 success response. A nil result is
// encoded as an empty object so the result member is always present.
func NewResponse(id json.RawMessage, result interface{}) (*Response, error) {
	resultJSON := json.RawMessage("{}")
	if result != nil {
		var err error
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal result: %w", err)
		}
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      echoID(id),
		Result:  resultJSON,
	}, nil
}

// NewErrorResponse creates a new JSON-RPC 2.0 error response
func NewErrorResponse(id json.RawMessage, code ErrorCode, message string, data interface{}) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      echoID(id),
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func echoID(id json.RawMessage) json.RawMessage {
	if id == nil {
		return nullID
	}
	return id
}

// Error represents a JSON-RPC 2.0 error object
type Error struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error returns a string representation of the error object.
func (e *Error) Error() string {
	return fmt.Sprintf("rpc error: code = %d desc = %s", e.Code, e.Message)
}
