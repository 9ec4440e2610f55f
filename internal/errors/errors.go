// Package errors holds the error values shared by handlers, services and
// repositories.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrNotFound is returned when a product, quote or route-level resource does not exist.
var ErrNotFound = stderrors.New("not found")

// ErrDisabled is returned when a feature flag turns an operation off.
var ErrDisabled = stderrors.New("feature disabled")

// ValidationError describes a rejected request field.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for one field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// AsValidation unwraps a ValidationError, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if stderrors.As(err, &v) {
		return v, true
	}
	return nil, false
}
