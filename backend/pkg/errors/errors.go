package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeFirestore represents change-payload or Firestore API errors
	ErrorTypeFirestore ErrorType = "firestore"
	// ErrorTypeSync represents mapper/handler errors
	ErrorTypeSync ErrorType = "sync"
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

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Config Errors

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

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j connection or probe fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphWriteFailed is returned when a write statement exhausts its retries
type ErrGraphWriteFailed struct {
	*BaseError
	Attempts int
}

func NewGraphWriteFailed(attempts int, err error) *ErrGraphWriteFailed {
	return &ErrGraphWriteFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("write failed after %d attempts", attempts), err),
		Attempts:  attempts,
	}
}

// Firestore Errors

// ErrInvalidChangePayload is returned when a change event body cannot be decoded
type ErrInvalidChangePayload struct {
	*BaseError
	Collection string
}

func NewInvalidChangePayload(collection string, err error) *ErrInvalidChangePayload {
	return &ErrInvalidChangePayload{
		BaseError:  NewBaseError(ErrorTypeFirestore, fmt.Sprintf("invalid change payload for %s", collection), err),
		Collection: collection,
	}
}

// ErrFirestoreQueryFailed is returned when the backfill query fails
type ErrFirestoreQueryFailed struct {
	*BaseError
	Collection string
	StatusCode int
}

func NewFirestoreQueryFailed(collection string, statusCode int, err error) *ErrFirestoreQueryFailed {
	return &ErrFirestoreQueryFailed{
		BaseError:  NewBaseError(ErrorTypeFirestore, fmt.Sprintf("query failed for %s (status %d)", collection, statusCode), err),
		Collection: collection,
		StatusCode: statusCode,
	}
}

// Sync Errors

// ErrMissingDocumentID is returned when a change event carries no natural key
type ErrMissingDocumentID struct {
	*BaseError
	Param string
}

func NewMissingDocumentID(param string) *ErrMissingDocumentID {
	return &ErrMissingDocumentID{
		BaseError: NewBaseError(ErrorTypeSync, fmt.Sprintf("missing document id param: %s", param), nil),
		Param:     param,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	if baseErr, ok := err.(*BaseError); ok {
		return baseErr.Type == errType
	}
	// Check wrapped errors
	if wrapper, ok := err.(interface{ Unwrap() error }); ok {
		return IsErrorType(wrapper.Unwrap(), errType)
	}
	return false
}

// IsRetryable checks if an error is worth retrying at the write-executor level
func IsRetryable(err error) bool {
	// Config and payload errors never get better on retry
	if IsErrorType(err, ErrorTypeConfig) || IsErrorType(err, ErrorTypeFirestore) {
		return false
	}
	// Graph connectivity and write errors are retryable
	return true
}
