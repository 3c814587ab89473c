package errors

import (
	"encoding/json"
	stderrors "errors"

	"github.com/ajitpratap0/mcp-stdio-server/pkg/protocol"
)

// ToJSONRPCError maps any error onto the wire error object.
//
// The code is taken from the first MCPError in the chain and folded into
// CodeInternalError unless it is one of the four wire codes. Data is only
// carried for internal failures, where it holds the error text. A decode
// failure of argument JSON maps to CodeInvalidParams.
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}

	code := CodeInternalError
	message := err.Error()
	if mcpErr, ok := AsMCPError(err); ok {
		code = mcpErr.Code()
		message = mcpErr.Error()
	} else if isDecodeError(err) {
		code = CodeInvalidParams
	}

	if !IsWireCode(code) {
		code = CodeInternalError
	}

	rpcErr := &protocol.Error{
		Code:    protocol.ErrorCode(code),
		Message: message,
	}
	if code == CodeInternalError {
		rpcErr.Data = err.Error()
	}
	return rpcErr
}

// ToJSONRPCResponse converts any error to an error response echoing id.
func ToJSONRPCResponse(err error, id json.RawMessage) *protocol.Response {
	rpcErr := ToJSONRPCError(err)
	if rpcErr == nil {
		rpcErr = &protocol.Error{Code: protocol.InternalError, Message: "unknown error"}
	}
	return protocol.NewErrorResponse(id, rpcErr.Code, rpcErr.Message, rpcErr.Data)
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return stderrors.As(err, &syntaxErr) || stderrors.As(err, &typeErr)
}
