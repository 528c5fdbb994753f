package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/store"
)

const postColumns = `id::text, title, body, tags, published_date, COALESCE(author_id::text, '')`

// PostgresPostStore implements the store.PostStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPostStore struct {
	db     DBTX
	logger *slog.Logger
}

// NewPostgresPostStore creates a new PostgreSQL implementation of the PostStore interface.
// It accepts a pool or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresPostStore(db DBTX, logger *slog.Logger) *PostgresPostStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPostStore{
		db:     db,
		logger: logger.With(slog.String("component", "post_store")),
	}
}

// Ensure PostgresPostStore implements store.PostStore interface
var _ store.PostStore = (*PostgresPostStore)(nil)

// ValidID implements store.PostStore.ValidID. Post IDs are UUIDs.
func (s *PostgresPostStore) ValidID(id string) bool {
	return validUUID(id)
}

// Create implements store.PostStore.Create
func (s *PostgresPostStore) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		log.Warn("post validation failed during create", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	created := *post
	created.ID = uuid.New().String()
	created.Tags = append([]string{}, post.Tags...)
	if created.PublishedDate.IsZero() {
		created.PublishedDate = time.Now().UTC()
	}
	// timestamptz keeps microseconds; match what a later read returns.
	created.PublishedDate = created.PublishedDate.Truncate(time.Microsecond)

	query := `
		INSERT INTO posts (id, title, body, tags, published_date, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.Exec(ctx, query,
		created.ID,
		created.Title,
		created.Body,
		created.Tags,
		created.PublishedDate,
		nullableID(created.AuthorID),
	)
	if err != nil {
		log.Error("failed to create post",
			slog.String("error", err.Error()),
			slog.String("author_id", created.AuthorID))
		return nil, store.NewStoreError("post", "create", "insert failed", MapError(err))
	}

	log.Info("post created successfully",
		slog.String("post_id", created.ID),
		slog.String("author_id", created.AuthorID))
	return &created, nil
}

// GetByID implements store.PostStore.GetByID
func (s *PostgresPostStore) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !validUUID(id) {
		return nil, store.ErrPostNotFound
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug("post not found", slog.String("post_id", id))
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to get post by ID",
			slog.String("error", err.Error()),
			slog.String("post_id", id))
		return nil, store.NewStoreError("post", "get", "query failed", MapError(err))
	}

	return post, nil
}

// List implements store.PostStore.List. Posts are returned newest first.
func (s *PostgresPostStore) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + postColumns + `
		FROM posts
		ORDER BY published_date DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, store.NewStoreError("post", "list", "query failed", MapError(err))
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			log.Error("failed to scan post row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("post", "list", "scan failed", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating post rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("post", "list", "row iteration failed", MapError(err))
	}

	log.Debug("posts listed",
		slog.Int("limit", limit),
		slog.Int("offset", offset),
		slog.Int("count", len(posts)))
	return posts, nil
}

// Count implements store.PostStore.Count
func (s *PostgresPostStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count posts",
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("post", "count", "query failed", MapError(err))
	}
	return count, nil
}

// Update implements store.PostStore.Update. Only the fields set in patch are
// written; the statement returns the post-update row.
func (s *PostgresPostStore) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !validUUID(id) {
		return nil, store.ErrPostNotFound
	}
	if patch.IsEmpty() {
		return s.GetByID(ctx, id)
	}

	var sets []string
	var args []any
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Body != nil {
		args = append(args, *patch.Body)
		sets = append(sets, fmt.Sprintf("body = $%d", len(args)))
	}
	if patch.SetTags {
		args = append(args, append([]string{}, patch.Tags...))
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), postColumns)

	post, err := scanPost(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug("post not found for update", slog.String("post_id", id))
			return nil, store.ErrPostNotFound
		}
		log.Error("failed to update post",
			slog.String("error", err.Error()),
			slog.String("post_id", id))
		return nil, store.NewStoreError("post", "update", "update failed", MapError(err))
	}

	log.Info("post updated successfully", slog.String("post_id", id))
	return post, nil
}

// Delete implements store.PostStore.Delete
func (s *PostgresPostStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !validUUID(id) {
		return store.ErrPostNotFound
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete post",
			slog.String("error", err.Error()),
			slog.String("post_id", id))
		return store.NewStoreError("post", "delete", "delete failed", MapError(err))
	}
	if err := CheckRowsAffected(tag, store.ErrPostNotFound); err != nil {
		log.Debug("post not found for delete", slog.String("post_id", id))
		return err
	}

	log.Info("post deleted successfully", slog.String("post_id", id))
	return nil
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Body,
		&post.Tags,
		&post.PublishedDate,
		&post.AuthorID,
	); err != nil {
		return nil, err
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	return &post, nil
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

// nullableID maps an empty reference to SQL NULL.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
