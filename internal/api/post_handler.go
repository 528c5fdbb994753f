package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/service"
)

// LastPageHeader carries the number of the final list page.
const LastPageHeader = "Last-Page"

// PostIDParam is the chi path parameter holding a post id.
const PostIDParam = "id"

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	posts  service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts service.PostService, logger *slog.Logger) *PostHandler {
	if posts == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("post service cannot be nil for PostHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PostHandler")
	}
	return &PostHandler{
		posts:  posts,
		logger: logger.With(slog.String("component", "post_handler")),
	}
}

// List handles GET /posts?page=N.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.posts.List(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list posts")
		return
	}

	w.Header().Set(LastPageHeader, strconv.FormatInt(result.LastPage, 10))
	shared.RespondWithJSON(w, r, http.StatusOK, postsToResponse(result.Posts))
}

// Write handles POST /posts.
func (h *PostHandler) Write(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req WritePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), identity.UserID, req.Title, req.Body, req.Tags)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create post")
		return
	}

	log.Debug("post written", slog.String("post_id", post.ID), slog.String("user_id", identity.UserID))
	shared.RespondWithJSON(w, r, http.StatusOK, postToResponse(post))
}

// PostByID loads the post named by the id path parameter and attaches it to
// the request context. Malformed ids are rejected with 400 before any lookup.
func (h *PostHandler) PostByID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, PostIDParam)

		post, err := h.posts.Get(r.Context(), id)
		if err != nil {
			HandleAPIError(w, r, err, "Failed to get post")
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithPost(r.Context(), post)))
	})
}

// RequireOwnPost rejects callers who did not author the attached post.
// It must run after RequireAuth and PostByID.
func (h *PostHandler) RequireOwnPost(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), h.logger)

		identity, ok := requireIdentity(w, r)
		if !ok {
			return
		}
		post, ok := shared.PostFromContext(r.Context())
		if !ok {
			log.Error("RequireOwnPost used without PostByID")
			shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}

		if err := h.posts.CheckOwnership(post, identity.UserID); err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Read handles GET /posts/{id}.
func (h *PostHandler) Read(w http.ResponseWriter, r *http.Request) {
	post, ok := shared.PostFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, postToResponse(post))
}

// Update handles PATCH /posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.posts.Update(r.Context(), chi.URLParam(r, PostIDParam), req.Patch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update post")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, postToResponse(updated))
}

// Remove handles DELETE /posts/{id}.
func (h *PostHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, PostIDParam)); err != nil {
		HandleAPIError(w, r, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
