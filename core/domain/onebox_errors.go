package domain

import "fmt"

// FieldError reports a missing or invalid field on a domain object.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

func ErrMissingAccountField(field string) error {
	return &FieldError{Field: field, Reason: "required"}
}

func ErrInvalidAccountField(field string) error {
	return &FieldError{Field: field, Reason: "invalid"}
}
