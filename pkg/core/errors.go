package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound is returned when a record does not exist in the store.
	ErrNotFound = errors.New("record not found")

	// ErrReadOnly is returned by write operations on a read-only store.
	ErrReadOnly = errors.New("store is in read-only mode")

	// ErrUnsupportedOrder is returned by Subscribe when the store cannot serve
	// the requested ordering. Callers are expected to fall back to an
	// unordered subscription and sort locally. No other error triggers the
	// fallback.
	ErrUnsupportedOrder = errors.New("store cannot order by requested key")

	// ErrClosed is returned by operations on a closed component.
	ErrClosed = errors.New("closed")
)

// ValidationError reports a locally recoverable input problem.
// No write is attempted when validation fails.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
