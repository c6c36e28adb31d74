package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a referenced record does not exist in the store.
var ErrNotFound = errors.New("record not found")

// ErrStoreUnavailable indicates that the backing store could not be read or
// written. CRUD callers surface it; the display path swallows it.
var ErrStoreUnavailable = errors.New("store unavailable")

// ValidationError reports a single malformed field on create or update.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidation builds a field-level validation error.
func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
