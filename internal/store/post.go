package store

import (
	"context"

	"github.com/phrazzld/blog-api/internal/domain"
)

// PostStore defines the interface for post persistence.
type PostStore interface {
	// ValidID reports whether id is well formed for this store's identifier
	// format. Callers check it before passing an id to any other method.
	ValidID(id string) bool

	// Create saves a new post and returns the stored record with its
	// store-assigned ID.
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)

	// GetByID retrieves a post by ID.
	// Returns ErrPostNotFound if the post does not exist.
	GetByID(ctx context.Context, id string) (*domain.Post, error)

	// List returns up to limit posts, newest first, skipping offset posts.
	List(ctx context.Context, limit, offset int) ([]*domain.Post, error)

	// Count returns the total number of posts.
	Count(ctx context.Context) (int64, error)

	// Update merges patch into the stored post and returns the updated record.
	// Returns ErrPostNotFound if the post does not exist.
	Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error)

	// Delete removes a post by ID.
	// Returns ErrPostNotFound if the post does not exist.
	Delete(ctx context.Context, id string) error
}
