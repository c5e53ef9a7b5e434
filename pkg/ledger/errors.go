package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports malformed or out-of-range input with field-level
// detail. Always recoverable by the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError is the uniform denial: the caller cannot tell a missing
// entity from one owned by someone else.
type AuthorizationError struct{}

func (e *AuthorizationError) Error() string { return "unauthorized" }

// ErrUnauthorized is returned for every ownership denial.
var ErrUnauthorized = &AuthorizationError{}

// NotFoundError reports a missing entity where no ownership ambiguity exists
// (lookups already scoped to the acting user).
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ConflictError reports an invariant violation: deleting the last default
// book, deleting a wallet or category with dependent transactions, or a
// referential mismatch between stated parents.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnauthorized reports whether err is an AuthorizationError.
func IsUnauthorized(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// isUniqueViolation detects a unique-constraint failure from the driver.
// Idempotent creates catch this and re-fetch by natural identity; everywhere
// else it surfaces as a conflict.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "SQLSTATE 23505")
}
