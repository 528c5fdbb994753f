package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or request payload fails validation.
	// This is usually wrapped by a *ValidationError carrying the field-level details.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed for the configured store.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidPage is returned when a page number is not a positive integer.
	ErrInvalidPage = errors.New("invalid page")

	// ErrUnauthorized is returned when an operation requires an authenticated user.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when the authenticated user does not own the resource.
	ErrForbidden = errors.New("forbidden operation")
)
