package errors

import (
	"fmt"
)

// TransportErrorData contains structured data for transport-related errors
type TransportErrorData struct {
	Transport string `json:"transport"`
	Operation string `json:"operation,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// StdioTransportError wraps a fatal read or write failure on the stdio stream.
func StdioTransportError(operation string, cause error) MCPError {
	message := fmt.Sprintf("stdio transport error during %s", operation)
	reason := ""
	if cause != nil {
		reason = cause.Error()
		message = fmt.Sprintf("%s: %s", message, reason)
	}

	return WrapError(
		cause,
		CodeTransportError,
		message,
		CategoryTransport,
		SeverityCritical,
	).WithData(&TransportErrorData{
		Transport: "stdio",
		Operation: operation,
		Reason:    reason,
	})
}

// TransportClosed reports an operation on a closed transport.
func TransportClosed(operation string) MCPError {
	return NewError(
		CodeTransportClosed,
		fmt.Sprintf("transport closed during %s", operation),
		CategoryTransport,
		SeverityWarning,
	)
}

// ParseError reports a line that is not valid JSON.
func ParseError(cause error) MCPError {
	err := WrapError(cause, CodeParseError, "Parse error", CategoryProtocol, SeverityWarning)
	if cause != nil {
		err = err.WithDetail(cause.Error())
	}
	return err
}
