package service

import (
	"fmt"

	"github.com/phrazzld/blog-api/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is(); the API layer maps them to HTTP status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// It wraps domain.ErrForbidden so the API layer maps it to HTTP 403 Forbidden.
	ErrNotOwned = fmt.Errorf("%w: resource is owned by another user", domain.ErrForbidden)
)

// postValidationError converts a domain post validation error into a field-level
// ValidationError. Other errors are returned unchanged.
func postValidationError(err error) error {
	switch err {
	case domain.ErrEmptyPostTitle:
		return domain.NewValidationError("title", "is required", domain.ErrValidation)
	case domain.ErrEmptyPostBody:
		return domain.NewValidationError("body", "is required", domain.ErrValidation)
	case domain.ErrEmptyPostTag:
		return domain.NewValidationError("tags", "must not contain empty strings", domain.ErrValidation)
	default:
		return err
	}
}
