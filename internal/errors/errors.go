// Package errors carries the shared error taxonomy. Validation failures and
// not-found outcomes propagate to synchronous callers; everything else is an
// internal failure that gets wrapped with context and logged at the point
// where it is absorbed.
package errors

import (
	stderrors "errors"
	"fmt"
)

// New returns an error with the given text.
func New(text string) error { return stderrors.New(text) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain matching target.
func As(err error, target any) bool { return stderrors.As(err, target) }

// ValidationError reports caller input that is missing or malformed. It is
// surfaced to the caller as a rejection, never logged as a system fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NewValidation returns a ValidationError for the given field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}
