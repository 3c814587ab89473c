package errors

import (
	"fmt"
)

// ParameterErrorData contains structured data for parameter-related errors.
// It is logged, never sent.
type ParameterErrorData struct {
	Parameter string `json:"parameter"`
	Expected  string `json:"expected,omitempty"`
	Required  bool   `json:"required,omitempty"`
}

// InvalidParams creates a generic argument extraction error
func InvalidParams(message string) MCPError {
	return NewError(CodeInvalidParams, message, CategoryValidation, SeverityError)
}

// InvalidParamsf creates a generic argument extraction error with formatting
func InvalidParamsf(format string, args ...interface{}) MCPError {
	return NewErrorf(CodeInvalidParams, CategoryValidation, SeverityError, format, args...)
}

// MissingParameter creates an error for a missing required argument
func MissingParameter(param string) MCPError {
	return NewError(
		CodeInvalidParams,
		fmt.Sprintf("Missing required parameter: %s", param),
		CategoryValidation,
		SeverityError,
	).WithData(&ParameterErrorData{
		Parameter: param,
		Required:  true,
	})
}

// InvalidParameter creates an error for an argument of the wrong type or value
func InvalidParameter(param string, expected string) MCPError {
	return NewError(
		CodeInvalidParams,
		fmt.Sprintf("Invalid parameter '%s': expected %s", param, expected),
		CategoryValidation,
		SeverityError,
	).WithData(&ParameterErrorData{
		Parameter: param,
		Expected:  expected,
	})
}

// MalformedArguments wraps a decode failure of a handler's argument object.
func MalformedArguments(cause error) MCPError {
	return WrapError(cause, CodeInvalidParams, "Invalid arguments", CategoryValidation, SeverityError).
		WithDetail(cause.Error())
}

// InvalidCursor reports a list cursor that was not issued by this server.
func InvalidCursor(cursor string) MCPError {
	return NewError(CodeInvalidParams, "Invalid cursor", CategoryValidation, SeverityError).
		WithData(&ParameterErrorData{Parameter: "cursor", Expected: "cursor from a previous list result"}).
		WithDetail(cursor)
}
