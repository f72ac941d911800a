package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	err := Validationf("bucket name cannot be empty")
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(err, KindNotFound))
	assert.Equal(t, "bucket name cannot be empty", err.Error())
}

func TestIsKind_Wrapped(t *testing.T) {
	err := fmt.Errorf("while closing: %w", Conflictf("bucket is already closed"))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(errors.New("plain"), KindConflict))
	assert.False(t, IsKind(nil, KindConflict))
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := StorageError("failed to commit unit of work", cause)

	assert.True(t, IsKind(err, KindStorage))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}
