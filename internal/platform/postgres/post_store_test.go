package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/postgres"
	"github.com/phrazzld/blog-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postRowColumns = []string{"id", "title", "body", "tags", "published_date", "author_id"}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func TestPostStore_ValidID(t *testing.T) {
	t.Parallel()
	s := postgres.NewPostgresPostStore(newMockPool(t), nil)

	assert.True(t, s.ValidID(uuid.NewString()))
	assert.False(t, s.ValidID("123"))
	assert.False(t, s.ValidID("507f1f77bcf86cd799439011"))
	assert.False(t, s.ValidID(""))
}

func TestPostStore_Create(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	s := postgres.NewPostgresPostStore(mock, nil)
	authorID := uuid.NewString()

	mock.ExpectExec(`INSERT INTO posts \(id, title, body, tags, published_date, author_id\)`).
		WithArgs(pgxmock.AnyArg(), "Hello", "World", []string{"go", "blog"}, pgxmock.AnyArg(), authorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	post, err := domain.NewPost(authorID, "Hello", "World", []string{"go", "blog"})
	require.NoError(t, err)

	created, err := s.Create(context.Background(), post)

	require.NoError(t, err)
	assert.True(t, s.ValidID(created.ID))
	assert.Equal(t, authorID, created.AuthorID)
	assert.Equal(t, []string{"go", "blog"}, created.Tags)
	assert.Empty(t, post.ID, "input should not be mutated")
}

func TestPostStore_Create_TruncatesToMicroseconds(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	s := postgres.NewPostgresPostStore(mock, nil)
	published := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	stored := published.Truncate(time.Microsecond)
	authorID := uuid.NewString()

	mock.ExpectExec(`INSERT INTO posts`).
		WithArgs(pgxmock.AnyArg(), "Hello", "World", []string{}, stored, authorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	created, err := s.Create(context.Background(), &domain.Post{
		Title:         "Hello",
		Body:          "World",
		Tags:          []string{},
		PublishedDate: published,
		AuthorID:      authorID,
	})

	require.NoError(t, err)
	assert.True(t, stored.Equal(created.PublishedDate))
	assert.Equal(t, 0, created.PublishedDate.Nanosecond()%1000)
}

func TestPostStore_Create_Invalid(t *testing.T) {
	t.Parallel()
	s := postgres.NewPostgresPostStore(newMockPool(t), nil)

	_, err := s.Create(context.Background(), &domain.Post{Body: "no title"})

	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestPostStore_Create_DatabaseError(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	s := postgres.NewPostgresPostStore(mock, nil)

	mock.ExpectExec(`INSERT INTO posts`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "posts_author_id_fkey"})

	_, err := s.Create(context.Background(), &domain.Post{Title: "t", Body: "b", AuthorID: uuid.NewString()})

	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	var storeErr *store.StoreError
	assert.True(t, errors.As(err, &storeErr))
}

func TestPostStore_GetByID(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectQuery(`SELECT id::text, title, body, tags, published_date, COALESCE\(author_id::text, ''\) FROM posts WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(postRowColumns).
				AddRow(id, "Title", "Body", []string{"a"}, published, "author"))

		post, err := s.GetByID(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, &domain.Post{
			ID:            id,
			Title:         "Title",
			Body:          "Body",
			Tags:          []string{"a"},
			PublishedDate: published,
			AuthorID:      "author",
		}, post)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectQuery(`FROM posts WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		_, err := s.GetByID(context.Background(), id)

		assert.ErrorIs(t, err, store.ErrPostNotFound)
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		t.Parallel()
		s := postgres.NewPostgresPostStore(newMockPool(t), nil)

		_, err := s.GetByID(context.Background(), "not-a-uuid")

		assert.ErrorIs(t, err, store.ErrPostNotFound)
	})

	t.Run("database error is not a not-found", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectQuery(`FROM posts WHERE id = \$1`).
			WithArgs(id).
			WillReturnError(errors.New("connection reset"))

		_, err := s.GetByID(context.Background(), id)

		require.Error(t, err)
		assert.False(t, store.IsNotFoundError(err))
	})
}

func TestPostStore_List(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	s := postgres.NewPostgresPostStore(mock, nil)

	now := time.Now().UTC()
	mock.ExpectQuery(`ORDER BY published_date DESC, id DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 20).
		WillReturnRows(pgxmock.NewRows(postRowColumns).
			AddRow("b", "second", "body", []string{}, now, "").
			AddRow("a", "first", "body", []string(nil), now.Add(-time.Hour), "u1"))

	posts, err := s.List(context.Background(), 10, 20)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Title)
	assert.Equal(t, "first", posts[1].Title)
	assert.NotNil(t, posts[1].Tags, "nil tags should decode to an empty slice")
}

func TestPostStore_Count(t *testing.T) {
	t.Parallel()
	mock := newMockPool(t)
	s := postgres.NewPostgresPostStore(mock, nil)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM posts`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(21)))

	count, err := s.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(21), count)
}

func TestPostStore_Update(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()
	now := time.Now().UTC()
	title := "New title"

	t.Run("partial update writes only the given fields", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectQuery(`UPDATE posts SET title = \$1, tags = \$2 WHERE id = \$3 RETURNING`).
			WithArgs(title, []string{}, id).
			WillReturnRows(pgxmock.NewRows(postRowColumns).
				AddRow(id, title, "old body", []string{}, now, "u1"))

		post, err := s.Update(context.Background(), id, domain.PostPatch{Title: &title, SetTags: true})

		require.NoError(t, err)
		assert.Equal(t, title, post.Title)
		assert.Equal(t, "old body", post.Body)
		assert.Empty(t, post.Tags)
	})

	t.Run("vanished record", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectQuery(`UPDATE posts SET title = \$1 WHERE id = \$2`).
			WithArgs(title, id).
			WillReturnError(pgx.ErrNoRows)

		_, err := s.Update(context.Background(), id, domain.PostPatch{Title: &title})

		assert.ErrorIs(t, err, store.ErrPostNotFound)
	})

	t.Run("empty patch reads the current record", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectQuery(`FROM posts WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows(postRowColumns).
				AddRow(id, "t", "b", []string{"x"}, now, "u1"))

		post, err := s.Update(context.Background(), id, domain.PostPatch{})

		require.NoError(t, err)
		assert.Equal(t, "t", post.Title)
	})
}

func TestPostStore_Delete(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, s.Delete(context.Background(), id))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mock := newMockPool(t)
		s := postgres.NewPostgresPostStore(mock, nil)

		mock.ExpectExec(`DELETE FROM posts WHERE id = \$1`).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, s.Delete(context.Background(), id), store.ErrPostNotFound)
	})
}

func TestNewPostgresPostStore_NilDB(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { postgres.NewPostgresPostStore(nil, nil) })
}
