package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/store"
)

type postRecord struct {
	post *domain.Post
	seq  uint64
}

// PostStore implements store.PostStore with an in-process map.
// Records are copied on the way in and out so callers never share state.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]postRecord
	seq   uint64
}

// NewPostStore creates an empty PostStore.
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[string]postRecord)}
}

var _ store.PostStore = (*PostStore)(nil)

// ValidID reports whether id is a canonical UUID.
func (s *PostStore) ValidID(id string) bool {
	return validUUID(id)
}

// Create implements store.PostStore.Create
func (s *PostStore) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	created := clonePost(post)
	created.ID = uuid.NewString()
	if created.PublishedDate.IsZero() {
		created.PublishedDate = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.posts[created.ID] = postRecord{post: created, seq: s.seq}

	return clonePost(created), nil
}

// GetByID implements store.PostStore.GetByID
func (s *PostStore) GetByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.posts[id]
	if !ok {
		return nil, store.ErrPostNotFound
	}
	return clonePost(rec.post), nil
}

// List implements store.PostStore.List in reverse insertion order.
func (s *PostStore) List(_ context.Context, limit, offset int) ([]*domain.Post, error) {
	if offset < 0 {
		return nil, fmt.Errorf("invalid offset %d: must not be negative", offset)
	}

	s.mu.RLock()
	records := make([]postRecord, 0, len(s.posts))
	for _, rec := range s.posts {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	if offset >= len(records) {
		return []*domain.Post{}, nil
	}
	end := len(records)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}

	posts := make([]*domain.Post, 0, end-offset)
	for _, rec := range records[offset:end] {
		posts = append(posts, clonePost(rec.post))
	}
	return posts, nil
}

// Count implements store.PostStore.Count
func (s *PostStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.posts)), nil
}

// Update implements store.PostStore.Update
func (s *PostStore) Update(_ context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.posts[id]
	if !ok {
		return nil, store.ErrPostNotFound
	}
	updated := clonePost(rec.post)
	updated.Apply(patch)
	s.posts[id] = postRecord{post: updated, seq: rec.seq}

	return clonePost(updated), nil
}

// Delete implements store.PostStore.Delete
func (s *PostStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return store.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	return &c
}

func validUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
