package auth

import (
	"context"
	"time"

	"github.com/phrazzld/blog-api/internal/domain"
)

// TokenService issues and verifies signed authentication tokens.
type TokenService interface {
	// IssueToken creates a signed token for user and returns it with its expiry.
	IssueToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// VerifyToken checks signature, algorithm and validity window and returns
	// the embedded claims. Every failure wraps ErrInvalidToken.
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}

// Claims is the verified content of a token.
type Claims struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Remaining returns how long the token stays valid after now.
func (c *Claims) Remaining(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// User returns the identity carried by the claims as a domain user, for
// reissuing a token without a store lookup.
func (c *Claims) User() *domain.User {
	return &domain.User{ID: c.UserID, Username: c.Username}
}
