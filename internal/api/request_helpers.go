package api

import (
	"net/http"
	"strconv"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/domain"
)

// decodeAndValidate decodes the JSON body into v and validates it.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "")
		return false
	}
	return true
}

// pageFromQuery parses the optional page query parameter, defaulting to 1.
// Range checks are left to the post service.
func pageFromQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("page", "must be a positive integer", domain.ErrInvalidPage)
	}
	return page, nil
}

// requireIdentity returns the caller's identity or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (shared.Identity, bool) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return shared.Identity{}, false
	}
	return identity, true
}
