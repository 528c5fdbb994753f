package domain

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single field that failed validation.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError collects every field violation found in one validation pass.
// It unwraps to the sentinel it was created with (ErrValidation or ErrInvalidID),
// so callers can branch with errors.Is.
type ValidationError struct {
	Violations []FieldViolation
	Err        error
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Violations: []FieldViolation{{Field: field, Rule: "invalid", Message: message}},
		Err:        err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return e.sentinel().Error()
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s %s", v.Field, v.Message))
	}
	return fmt.Sprintf("%v: %s", e.sentinel(), strings.Join(parts, "; "))
}

// Unwrap returns the wrapped sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.sentinel()
}

func (e *ValidationError) sentinel() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}
