package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/memory"
	"github.com/phrazzld/blog-api/internal/store"
)

// MockPostStore implements store.PostStore for testing.
// Unset function fields delegate to an in-memory store.
type MockPostStore struct {
	ValidIDFn func(id string) bool
	CreateFn  func(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetByIDFn func(ctx context.Context, id string) (*domain.Post, error)
	ListFn    func(ctx context.Context, limit, offset int) ([]*domain.Post, error)
	CountFn   func(ctx context.Context) (int64, error)
	UpdateFn  func(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error)
	DeleteFn  func(ctx context.Context, id string) error

	backing *memory.PostStore

	mu    sync.Mutex
	calls []string
}

// NewMockPostStore creates a MockPostStore backed by an empty in-memory store.
func NewMockPostStore() *MockPostStore {
	return &MockPostStore{backing: memory.NewPostStore()}
}

var _ store.PostStore = (*MockPostStore)(nil)

func (m *MockPostStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

// Calls returns the names of the storage methods invoked so far, in order.
// ValidID is not recorded; it never touches storage.
func (m *MockPostStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

// ValidID implements store.PostStore.ValidID
func (m *MockPostStore) ValidID(id string) bool {
	if m.ValidIDFn != nil {
		return m.ValidIDFn(id)
	}
	return m.backing.ValidID(id)
}

// Create implements store.PostStore.Create
func (m *MockPostStore) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	m.record("Create")
	if m.CreateFn != nil {
		return m.CreateFn(ctx, post)
	}
	return m.backing.Create(ctx, post)
}

// GetByID implements store.PostStore.GetByID
func (m *MockPostStore) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	m.record("GetByID")
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.backing.GetByID(ctx, id)
}

// List implements store.PostStore.List
func (m *MockPostStore) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	m.record("List")
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}
	return m.backing.List(ctx, limit, offset)
}

// Count implements store.PostStore.Count
func (m *MockPostStore) Count(ctx context.Context) (int64, error) {
	m.record("Count")
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return m.backing.Count(ctx)
}

// Update implements store.PostStore.Update
func (m *MockPostStore) Update(ctx context.Context, id string, patch domain.PostPatch) (*domain.Post, error) {
	m.record("Update")
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, patch)
	}
	return m.backing.Update(ctx, id, patch)
}

// Delete implements store.PostStore.Delete
func (m *MockPostStore) Delete(ctx context.Context, id string) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.backing.Delete(ctx, id)
}
