// Package errors defines custom error types and error handling utilities for the
// UEBA Scoring Service. Errors carry a stable code, an HTTP status, and a
// client-safe description; internal causes stay server-side.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ================================================================================
// Error Codes
// ================================================================================

// Code identifies the class of an application error.
type Code string

const (
	// CodeValidation indicates a malformed or incomplete client request
	CodeValidation Code = "validation_error"

	// CodeNotFound indicates a requested entity does not exist
	CodeNotFound Code = "not_found"

	// CodeInternal indicates an unexpected server-side failure
	CodeInternal Code = "internal_error"

	// CodeUnavailable indicates the service cannot serve requests yet
	CodeUnavailable Code = "service_unavailable"
)

// ================================================================================
// AppError
// ================================================================================

// AppError is a structured error with a code, HTTP status, and metadata.
// The Message field is safe to return to callers; the wrapped cause is not.
type AppError struct {
	code       Code
	httpStatus int
	message    string
	cause      error
	metadata   map[string]interface{}
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the error class code.
func (e *AppError) Code() Code {
	return e.code
}

// HTTPStatus returns the HTTP status code mapped to this error.
func (e *AppError) HTTPStatus() int {
	return e.httpStatus
}

// Message returns the client-safe description.
func (e *AppError) Message() string {
	return e.message
}

// Unwrap returns the underlying cause for error chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error to the chain.
func (e *AppError) WithCause(cause error) *AppError {
	e.cause = cause
	return e
}

// WithMetadata attaches additional context to the error.
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.metadata == nil {
		e.metadata = make(map[string]interface{})
	}
	e.metadata[key] = value
	return e
}

// Metadata returns all attached metadata.
func (e *AppError) Metadata() map[string]interface{} {
	return e.metadata
}

// ================================================================================
// Constructors
// ================================================================================

// New creates an AppError with an explicit code and status.
func New(code Code, httpStatus int, message string) *AppError {
	return &AppError{
		code:       code,
		httpStatus: httpStatus,
		message:    message,
	}
}

// ErrValidation creates a validation error (HTTP 400).
func ErrValidation(message string) *AppError {
	return New(CodeValidation, http.StatusBadRequest, message)
}

// ErrMissingField creates a validation error for an absent required field.
func ErrMissingField(field string) *AppError {
	return ErrValidation(fmt.Sprintf("missing required field: %s", field)).
		WithMetadata("field", field)
}

// ErrNotFound creates a not-found error (HTTP 404).
func ErrNotFound(entity string, id string) *AppError {
	return New(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found: %s", entity, id)).
		WithMetadata("entity", entity).
		WithMetadata("id", id)
}

// ErrInternal creates an internal error (HTTP 500). The message is logged
// server-side; callers receive an opaque description.
func ErrInternal(message string) *AppError {
	return New(CodeInternal, http.StatusInternalServerError, message)
}

// ErrUnavailable creates a service-unavailable error (HTTP 503).
func ErrUnavailable(message string) *AppError {
	return New(CodeUnavailable, http.StatusServiceUnavailable, message)
}

// ================================================================================
// Inspection Helpers
// ================================================================================

// AsAppError attempts to extract an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsValidation reports whether the error is a validation error.
func IsValidation(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.code == CodeValidation
}

// IsNotFound reports whether the error is a not-found error.
func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.code == CodeNotFound
}

// ================================================================================
// Error Response Builder
// ================================================================================

// ErrorResponse is the JSON structure returned for failed requests.
type ErrorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts an error to its client-facing representation.
// Validation and not-found errors keep their descriptions; everything else is
// reported opaquely so that internals never leak to callers.
func ToErrorResponse(err error) *ErrorResponse {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.code {
		case CodeValidation, CodeNotFound, CodeUnavailable:
			return &ErrorResponse{
				Error:            string(appErr.code),
				ErrorDescription: appErr.message,
				Metadata:         appErr.metadata,
			}
		}
	}

	return &ErrorResponse{
		Error:            string(CodeInternal),
		ErrorDescription: "An unexpected error occurred",
	}
}
