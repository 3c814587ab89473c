package errors

import (
	"fmt"
)

// InvalidRequest reports an envelope that failed validation.
func InvalidRequest(reason string) MCPError {
	err := NewError(CodeInvalidRequest, "Invalid Request", CategoryProtocol, SeverityError)
	if reason != "" {
		err = err.WithDetail(reason)
	}
	return err
}

// MethodNotFound reports a method with no route.
func MethodNotFound(method string) MCPError {
	return NewError(
		CodeMethodNotFound,
		fmt.Sprintf("Method not found: %s", method),
		CategoryNotFound,
		SeverityError,
	).WithContext(&Context{Method: method})
}

// HandlerNotFound reports a name with no binding in a registry group.
func HandlerNotFound(group, name string) MCPError {
	return NewError(
		CodeMethodNotFound,
		fmt.Sprintf("%s not found: %s", group, name),
		CategoryNotFound,
		SeverityError,
	).WithContext(&Context{Handler: name, Component: group})
}

// InternalError reports a server failure outside any handler, such as a
// result that cannot be encoded. The cause's text becomes the message.
func InternalError(operation string, cause error) MCPError {
	return WrapError(cause, CodeInternalError, cause.Error(), CategoryInternal, SeverityError).
		WithContext(&Context{Operation: operation})
}

// HandlerError wraps a failure returned by a handler. The cause's text
// becomes the message.
func HandlerError(name string, cause error) MCPError {
	return WrapError(cause, CodeInternalError, cause.Error(), CategoryHandler, SeverityError).
		WithContext(&Context{Handler: name})
}

// HandlerPanic reports a recovered panic.
func HandlerPanic(method string, recovered interface{}) MCPError {
	return NewErrorf(CodeHandlerPanic, CategoryHandler, SeverityCritical, "panic handling %s: %v", method, recovered).
		WithContext(&Context{Method: method})
}
