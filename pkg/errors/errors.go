package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Domain errors
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"

	// Graph invariant violations
	ErrorTypeDanglingReference ErrorType = "DANGLING_REFERENCE"

	// Application errors
	ErrorTypeInternal ErrorType = "INTERNAL"
	ErrorTypeTimeout  ErrorType = "TIMEOUT"

	// Infrastructure errors
	ErrorTypeUnavailable ErrorType = "SOURCE_UNAVAILABLE"
	ErrorTypeDatabase    ErrorType = "DATABASE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Constructor functions for common error types

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFoundError creates a not found error.
// Used both for missing articles at the data source and missing local resources.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewSourceUnavailableError signals a transient failure of the external
// article source. The graph is left untouched and no retry happens here;
// retry policy belongs to the caller.
func NewSourceUnavailableError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
	}
}

// NewDanglingReferenceError signals an edge insertion against a missing node
// id. This is a caller ordering bug (nodes must be upserted before edges),
// not a recoverable runtime condition.
func NewDanglingReferenceError(sourceID, targetID string) *AppError {
	return &AppError{
		Type:       ErrorTypeDanglingReference,
		Message:    fmt.Sprintf("edge %s->%s references a missing node", sourceID, targetID),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    fmt.Sprintf("database operation failed: %s", operation),
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// Type predicates used by callers to branch on failure kinds

// IsNotFound checks whether err is a not-found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsSourceUnavailable checks whether err is a transient source failure
func IsSourceUnavailable(err error) bool {
	return isType(err, ErrorTypeUnavailable)
}

// IsDanglingReference checks whether err is a graph invariant violation
func IsDanglingReference(err error) bool {
	return isType(err, ErrorTypeDanglingReference)
}

// IsValidation checks whether err is a validation error
func IsValidation(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsConflict checks whether err is a conflict error
func IsConflict(err error) bool {
	return isType(err, ErrorTypeConflict)
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// HTTPStatusFor maps an error to the HTTP status it should produce
func HTTPStatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
