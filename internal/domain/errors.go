package domain

import (
	"errors"
	"fmt"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure: no infrastructure dependency.

var (
	// ErrValidation is returned when input is rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an operation references an unknown task.
	ErrNotFound = errors.New("task not found")
)

// ValidationError names the offending field. It unwraps to ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError carries the unknown task ID. It unwraps to ErrNotFound.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// invalid is shorthand for building a *ValidationError.
func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
