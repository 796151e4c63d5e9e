package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheError_Error(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		err := NewBackendUnavailable("ping failed", stderrors.New("connection refused"))
		assert.Contains(t, err.Error(), "backend_unavailable")
		assert.Contains(t, err.Error(), "ping failed")
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewInvalidArgument("max size must be positive")
		assert.Equal(t, "invalid_argument: max size must be positive", err.Error())
	})
}

func TestCacheError_Unwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewBackendUnavailable("probe failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestIsType(t *testing.T) {
	err := NewSerializationError("value not representable", nil)

	assert.True(t, IsType(err, ErrTypeSerialization))
	assert.False(t, IsType(err, ErrTypeBackendUnavailable))
	assert.False(t, IsType(stderrors.New("plain"), ErrTypeSerialization))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeSerialization))
}
