package services

import (
	"fmt"
	"strings"

	"todo-manager/internal/validation"
)

// ValidationError reports caller-supplied data that violates a field rule
// or request-shape guard. It carries every failed rule and never wraps an
// underlying cause; the fix is always on the caller's side.
type ValidationError struct {
	Errors []validation.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []validation.FieldError{{Field: field, Message: message}}}
}

// NotFoundError reports that a referenced record did not exist when the
// operation ran.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}
