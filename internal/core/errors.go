package core

import (
	"errors"
	"fmt"
)

// Categories of failure. Typed errors below match them through errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence error")
	ErrUnavailable = errors.New("unavailable")
)

var (
	ErrInvalidDate        = &ValidationError{Field: "date", Reason: "is required"}
	ErrInvalidAmount      = &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	ErrInvalidType        = &ValidationError{Field: "type", Reason: "must be income or expense"}
	ErrDescriptionTooLong = &ValidationError{Field: "description", Reason: "is too long (max 200 characters)"}
	ErrEmptyCategory      = &ValidationError{Field: "category", Reason: "is required"}
	ErrEmptyName          = &ValidationError{Field: "name", Reason: "is required"}
	ErrInvalidMonth       = &ValidationError{Field: "month", Reason: "is not a month of the tracked year"}
)

// ValidationError reports malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an id absent from the current ledger.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a violated uniqueness or in-use constraint.
type ConflictError struct {
	Kind   string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Kind, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PersistenceError reports a store failure. The in-memory change it accompanies
// has already been committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// UnavailableError reports that no ledger has been loaded yet.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	return "ledger unavailable: " + e.Reason
}

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Notification turns an error from the mutation API into the short message shown to the user.
func Notification(err error) string {
	var (
		verr *ValidationError
		nerr *NotFoundError
		cerr *ConflictError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return fmt.Sprintf("The %s %s", verr.Field, verr.Reason)
	case errors.As(err, &nerr):
		return fmt.Sprintf("That %s no longer exists", nerr.Kind)
	case errors.As(err, &cerr):
		return capitalize(cerr.Reason)
	case errors.Is(err, ErrUnavailable):
		return "Your data is still loading; please try again in a moment"
	case errors.Is(err, ErrPersistence):
		return "Your change was applied but could not be saved; it may be lost after a reload"
	default:
		return "Something went wrong"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
