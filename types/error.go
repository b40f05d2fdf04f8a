package types

import "fmt"

// ErrorCode represents a unified error code across the store.
type ErrorCode string

const (
	ErrArtifactNotFound  ErrorCode = "ARTIFACT_NOT_FOUND"
	ErrValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrStorageFailure    ErrorCode = "STORAGE_FAILURE"
	ErrInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	ErrContentUnresolved ErrorCode = "CONTENT_UNRESOLVED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	ArtifactID string    `json:"artifact_id,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithArtifactID tags the error with the artifact it concerns.
func (e *Error) WithArtifactID(id string) *Error {
	e.ArtifactID = id
	return e
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
