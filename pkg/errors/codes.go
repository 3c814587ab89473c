package errors

// JSON-RPC 2.0 standard error codes. The last four are the only codes that
// ever appear on the wire.
const (
	// CodeParseError marks a line that is not valid JSON. It is never sent:
	// a line that cannot be parsed carries no id to answer.
	CodeParseError int = -32700

	// CodeInvalidRequest indicates the JSON sent is not a valid request envelope
	CodeInvalidRequest int = -32600

	// CodeMethodNotFound indicates an unknown method or an unregistered handler
	CodeMethodNotFound int = -32601

	// CodeInvalidParams indicates missing or malformed arguments
	CodeInvalidParams int = -32602

	// CodeInternalError covers every other handler or server failure
	CodeInternalError int = -32603
)

// Server-internal codes. They classify failures for logging and are folded
// into CodeInternalError before they reach a client.
const (
	CodeTransportError  int = -32500 // Stream read or write failure
	CodeTransportClosed int = -32501 // Stream closed
	CodeHandlerPanic    int = -32502 // Handler panicked during dispatch
)

var errorCodeNames = map[int]string{
	CodeParseError:     "ParseError",
	CodeInvalidRequest: "InvalidRequest",
	CodeMethodNotFound: "MethodNotFound",
	CodeInvalidParams:  "InvalidParams",
	CodeInternalError:  "InternalError",

	CodeTransportError:  "TransportError",
	CodeTransportClosed: "TransportClosed",
	CodeHandlerPanic:    "HandlerPanic",
}

// GetErrorCodeName returns the name of an error code
func GetErrorCodeName(code int) string {
	if name, exists := errorCodeNames[code]; exists {
		return name
	}
	return "UnknownError"
}

// IsWireCode reports whether code may be sent to a client as is.
func IsWireCode(code int) bool {
	switch code {
	case CodeInvalidRequest, CodeMethodNotFound, CodeInvalidParams, CodeInternalError:
		return true
	}
	return false
}
