// Package apperr defines the typed error taxonomy shared by the service and
// API layers. Every business or validation failure maps to a stable code and
// an HTTP status; anything else is surfaced as INTERNAL_SERVER_ERROR.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnsupportedChain = "UNSUPPORTED_CHAIN"
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeInvalidAddress   = "INVALID_ADDRESS"
	CodeMissingSignature = "MISSING_SIGNATURE"
	CodeInvalidSignature = "INVALID_SIGNATURE"
	CodeNoTokensFound    = "NO_TOKENS_FOUND"
	CodeIntentNotFound   = "INTENT_NOT_FOUND"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeCannotCancel     = "CANNOT_CANCEL"
	CodeNoRoutes         = "NO_ROUTES_AVAILABLE"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
)

// Error is a typed application error carrying the HTTP status and stable code
// the boundary needs to build the uniform error envelope.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates an Error with the given HTTP status, code and message.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// WithDetails attaches a details map and returns the error for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// BadRequest creates a 400 Error.
func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// NotFound creates a 404 Error.
func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

// Internal wraps an unclassified failure. The underlying cause is logged by
// the caller, never leaked to the client.
func Internal() *Error {
	return New(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred")
}

// From classifies err: a typed *Error passes through, anything else becomes a
// generic internal error.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal()
}

// Is reports whether err is a typed *Error with the given code.
func Is(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
