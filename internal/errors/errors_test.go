package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFound_Wrapped(t *testing.T) {
	err := fmt.Errorf("quote q1: %w", ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(ErrDisabled))
}

func TestAsValidation(t *testing.T) {
	err := fmt.Errorf("create quote: %w", NewValidationError("contact.phone", "is required"))

	v, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "contact.phone", v.Field)
	assert.Equal(t, map[string]string{"contact.phone": "is required"}, v.Details)
	assert.Equal(t, "validation failed on contact.phone: is required", v.Error())

	_, ok = AsValidation(ErrNotFound)
	assert.False(t, ok)
}
