package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/store"
)

// PageSize is the number of posts returned per list page.
const PageSize = 10

// maxPageIndex is the largest zero-based page index whose offset fits in an int.
const maxPageIndex = (math.MaxInt - PageSize) / PageSize

// PostPage is one page of the post listing.
type PostPage struct {
	// Posts holds previews: bodies are truncated to domain.BodyPreviewLength.
	Posts []*domain.Post
	// LastPage is ceil(total/PageSize); zero when there are no posts.
	LastPage int64
}

// PostService provides post-related operations.
type PostService interface {
	// ValidID reports whether id is well formed for the configured store.
	ValidID(id string) bool

	// List returns the page-th page (1-based) of posts, newest first.
	// Returns domain.ErrInvalidPage for page < 1 without touching the store.
	List(ctx context.Context, page int) (*PostPage, error)

	// Create stores a new post authored by authorID.
	Create(ctx context.Context, authorID, title, body string, tags []string) (*domain.Post, error)

	// Get retrieves a post by ID.
	Get(ctx context.Context, id string) (*domain.Post, error)

	// CheckOwnership returns ErrNotOwned unless userID authored post.
	CheckOwnership(post *domain.Post, userID string) error

	// Update merges patch into the post and returns the updated record.
	Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error)

	// Delete removes a post.
	Delete(ctx context.Context, id string) error
}

type postServiceImpl struct {
	posts  store.PostStore
	logger *slog.Logger
}

var _ PostService = (*postServiceImpl)(nil)

// NewPostService creates a PostService. It panics if posts or logger is nil.
func NewPostService(posts store.PostStore, logger *slog.Logger) PostService {
	if posts == nil {
		panic("posts store cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &postServiceImpl{
		posts:  posts,
		logger: logger.With(slog.String("component", "post_service")),
	}
}

func (s *postServiceImpl) ValidID(id string) bool {
	return s.posts.ValidID(id)
}

func (s *postServiceImpl) List(ctx context.Context, page int) (*PostPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if page < 1 {
		return nil, domain.NewValidationError("page", "must be a positive integer", domain.ErrInvalidPage)
	}

	// Pages past maxPageIndex are necessarily empty; only the count is needed.
	var posts []*domain.Post
	if page-1 <= maxPageIndex {
		var err error
		posts, err = s.posts.List(ctx, PageSize, (page-1)*PageSize)
		if err != nil {
			log.Error("failed to list posts", slog.String("error", err.Error()), slog.Int("page", page))
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		log.Error("failed to count posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	previews := make([]*domain.Post, 0, len(posts))
	for _, post := range posts {
		previews = append(previews, post.Preview())
	}

	return &PostPage{
		Posts:    previews,
		LastPage: LastPage(total),
	}, nil
}

// LastPage returns the number of pages needed for total posts.
func LastPage(total int64) int64 {
	return (total + PageSize - 1) / PageSize
}

func (s *postServiceImpl) Create(
	ctx context.Context,
	authorID, title, body string,
	tags []string,
) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if authorID == "" {
		return nil, domain.ErrUnauthorized
	}

	post, err := domain.NewPost(authorID, title, body, tags)
	if err != nil {
		return nil, postValidationError(err)
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		log.Error("failed to save post", slog.String("error", err.Error()), slog.String("author_id", authorID))
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	log.Info("post created", slog.String("post_id", created.ID), slog.String("author_id", authorID))
	return created, nil
}

func (s *postServiceImpl) Get(ctx context.Context, id string) (*domain.Post, error) {
	if !s.posts.ValidID(id) {
		return nil, domain.NewValidationError("id", "is not a valid post id", domain.ErrInvalidID)
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *postServiceImpl) CheckOwnership(post *domain.Post, userID string) error {
	if post == nil || !post.IsOwnedBy(userID) {
		return ErrNotOwned
	}
	return nil
}

func (s *postServiceImpl) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.posts.ValidID(id) {
		return nil, domain.NewValidationError("id", "is not a valid post id", domain.ErrInvalidID)
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	updated, err := s.posts.Update(ctx, id, patch)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update post", slog.String("error", err.Error()), slog.String("post_id", id))
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	log.Info("post updated", slog.String("post_id", id))
	return updated, nil
}

func (s *postServiceImpl) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.posts.ValidID(id) {
		return domain.NewValidationError("id", "is not a valid post id", domain.ErrInvalidID)
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete post", slog.String("error", err.Error()), slog.String("post_id", id))
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	log.Info("post deleted", slog.String("post_id", id))
	return nil
}

// validatePatch applies the creation rules to the fields present in patch.
func validatePatch(patch domain.PostPatch) error {
	var violations []domain.FieldViolation
	if patch.Title != nil && *patch.Title == "" {
		violations = append(violations, domain.FieldViolation{Field: "title", Rule: "min", Message: "must not be empty"})
	}
	if patch.Body != nil && *patch.Body == "" {
		violations = append(violations, domain.FieldViolation{Field: "body", Rule: "min", Message: "must not be empty"})
	}
	if patch.SetTags {
		for _, tag := range patch.Tags {
			if tag == "" {
				violations = append(violations, domain.FieldViolation{
					Field: "tags", Rule: "min", Message: "must not contain empty strings",
				})
				break
			}
		}
	}
	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations, Err: domain.ErrValidation}
	}
	return nil
}
