package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no todo matches both the id and the owner.
var ErrNotFound = errors.New("todo not found")

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
