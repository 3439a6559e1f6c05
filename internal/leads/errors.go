package leads

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingNameEmail is returned when name or email is empty.
	ErrMissingNameEmail = errors.New("leads: name and email are required")

	// ErrEmailExists is returned when a lead with the same email is stored.
	ErrEmailExists = errors.New("leads: email already exists")

	// ErrInvalidField is matched by every *FieldError.
	ErrInvalidField = errors.New("leads: invalid field")
)

// FieldError reports a validation rule other than presence.
type FieldError struct {
	Field string
	Rule  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Rule)
}

func (e *FieldError) Is(target error) bool { return target == ErrInvalidField }
