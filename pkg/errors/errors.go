package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeBackend represents AI backend errors
	ErrorTypeBackend ErrorType = "backend"
	// ErrorTypeAnnotation represents annotation parsing/validation errors
	ErrorTypeAnnotation ErrorType = "annotation"
	// ErrorTypeStore represents database errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeNotFound represents missing-record errors
	ErrorTypeNotFound ErrorType = "notfound"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// typedError is satisfied by BaseError and every error embedding it.
type typedError interface {
	errorType() ErrorType
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Backend Errors

// ErrBackendUnavailable is returned when the AI backend cannot be reached
// or answers with a non-success response.
type ErrBackendUnavailable struct {
	*BaseError
	Endpoint string
}

func NewBackendUnavailable(endpoint string, err error) *ErrBackendUnavailable {
	return &ErrBackendUnavailable{
		BaseError: NewBaseError(ErrorTypeBackend, fmt.Sprintf("AI backend unavailable: %s", endpoint), err),
		Endpoint:  endpoint,
	}
}

// Annotation Errors

// ErrMalformedResponse is returned when model output cannot be parsed into
// an annotation record even after markup stripping.
type ErrMalformedResponse struct {
	*BaseError
	Raw string // head of the raw model output, for diagnostics
}

func NewMalformedResponse(raw string, err error) *ErrMalformedResponse {
	const maxRaw = 200
	if len(raw) > maxRaw {
		raw = raw[:maxRaw]
	}
	return &ErrMalformedResponse{
		BaseError: NewBaseError(ErrorTypeAnnotation, "malformed model response", err),
		Raw:       raw,
	}
}

// ErrInvalidConnectionReference is returned when a proposed connection names
// an entry id that does not exist among the known entries.
type ErrInvalidConnectionReference struct {
	*BaseError
	TargetID int64
}

func NewInvalidConnectionReference(targetID int64) *ErrInvalidConnectionReference {
	return &ErrInvalidConnectionReference{
		BaseError: NewBaseError(ErrorTypeAnnotation, fmt.Sprintf("connection references unknown entry: %d", targetID), nil),
		TargetID:  targetID,
	}
}

// Store Errors

// ErrEntryNotFound is returned when an entry id does not exist
type ErrEntryNotFound struct {
	*BaseError
	EntryID int64
}

func NewEntryNotFound(entryID int64) *ErrEntryNotFound {
	return &ErrEntryNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("entry not found: %d", entryID), nil),
		EntryID:   entryID,
	}
}

// ErrStoreFailure is returned when a database operation fails
type ErrStoreFailure struct {
	*BaseError
	Op string
}

func NewStoreFailure(op string, err error) *ErrStoreFailure {
	return &ErrStoreFailure{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("store operation failed: %s", op), err),
		Op:        op,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if te, ok := err.(typedError); ok {
			return te.errorType() == errType
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsNotFound reports whether err is a missing-record error
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}
