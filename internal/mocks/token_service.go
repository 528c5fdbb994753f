package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing.
type MockTokenService struct {
	IssueTokenFn  func(ctx context.Context, user *domain.User) (string, time.Time, error)
	VerifyTokenFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Defaults used when the function fields are nil.
	Token     string
	ExpiresAt time.Time
	Claims    *auth.Claims
	Err       error
}

var _ auth.TokenService = (*MockTokenService)(nil)

// IssueToken implements auth.TokenService.IssueToken
func (m *MockTokenService) IssueToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	if m.IssueTokenFn != nil {
		return m.IssueTokenFn(ctx, user)
	}
	if m.Err != nil {
		return "", time.Time{}, m.Err
	}
	return m.Token, m.ExpiresAt, nil
}

// VerifyToken implements auth.TokenService.VerifyToken
func (m *MockTokenService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, token)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Claims == nil {
		return nil, auth.ErrInvalidToken
	}
	return m.Claims, nil
}
