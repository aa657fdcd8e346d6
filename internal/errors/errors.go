// Package errors provides the domain error kinds shared across modules.
// Domain packages import it in place of the standard library errors package,
// so it re-exports New, Is, and As alongside the wrapping helpers.
package errors

import (
	"errors"
	"fmt"
)

// Error kinds callers branch on. Concrete domain errors wrap one of these so
// use cases can classify failures without knowing their origin.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGone indicates the resource existed but has been irreversibly removed.
	// Unlike ErrNotFound, retrying can never succeed.
	ErrGone = errors.New("gone")
)

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to an error while preserving the chain for Is and As.
// Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
