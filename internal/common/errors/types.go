// Package errors provides typed errors for the cache service. The type
// distinguishes transient infrastructure failures, which the cache layer
// recovers from locally, from caller programming errors, which propagate.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the kind of a cache error
type ErrorType string

const (
	// ErrTypeBackendUnavailable represents backend connectivity failures.
	// These are always recovered locally and surfaced only as misses/no-ops.
	ErrTypeBackendUnavailable ErrorType = "backend_unavailable"
	// ErrTypeSerialization represents values not representable in the
	// current storage format
	ErrTypeSerialization ErrorType = "serialization"
	// ErrTypeInvalidArgument represents caller programming errors, which
	// propagate normally instead of being masked
	ErrTypeInvalidArgument ErrorType = "invalid_argument"
)

// CacheError is a structured error carrying its kind and an optional cause
type CacheError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *CacheError) Unwrap() error {
	return e.Cause
}

// NewBackendUnavailable creates a backend connectivity error
func NewBackendUnavailable(message string, cause error) *CacheError {
	return &CacheError{Type: ErrTypeBackendUnavailable, Message: message, Cause: cause}
}

// NewSerializationError creates a serialization failure error
func NewSerializationError(message string, cause error) *CacheError {
	return &CacheError{Type: ErrTypeSerialization, Message: message, Cause: cause}
}

// NewInvalidArgument creates a programming-error error
func NewInvalidArgument(message string) *CacheError {
	return &CacheError{Type: ErrTypeInvalidArgument, Message: message}
}

// IsType reports whether err is a CacheError of the given type
func IsType(err error, errType ErrorType) bool {
	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		return cacheErr.Type == errType
	}
	return false
}
