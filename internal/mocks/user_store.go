package mocks

import (
	"context"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/memory"
	"github.com/phrazzld/blog-api/internal/store"
)

// MockUserStore implements store.UserStore for testing.
// Unset function fields delegate to an in-memory store.
type MockUserStore struct {
	CreateFn        func(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByIDFn       func(ctx context.Context, id string) (*domain.User, error)
	GetByUsernameFn func(ctx context.Context, username string) (*domain.User, error)

	backing *memory.UserStore
}

// NewMockUserStore creates a MockUserStore backed by an empty in-memory store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{backing: memory.NewUserStore()}
}

var _ store.UserStore = (*MockUserStore)(nil)

// Create implements store.UserStore.Create
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	return m.backing.Create(ctx, user)
}

// GetByID implements store.UserStore.GetByID
func (m *MockUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.backing.GetByID(ctx, id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}
	return m.backing.GetByUsername(ctx, username)
}
