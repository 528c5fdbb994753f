package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/mocks"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/platform/metrics"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthConfig = config.AuthConfig{
	TokenLifetime:  7 * 24 * time.Hour,
	RenewThreshold: 84 * time.Hour,
}

// identityRecorder captures the identity seen by the downstream handler.
func identityRecorder(got *shared.Identity, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *seen = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := &auth.Claims{UserID: "u-1", Username: "alice", ExpiresAt: now.Add(6 * 24 * time.Hour)}

	tests := []struct {
		name         string
		cookie       string
		authHeader   string
		verify       func(ctx context.Context, token string) (*auth.Claims, error)
		wantIdentity bool
	}{
		{
			name:         "cookie token",
			cookie:       "good",
			wantIdentity: true,
		},
		{
			name:         "bearer token",
			authHeader:   "Bearer good",
			wantIdentity: true,
		},
		{
			name:         "lowercase bearer scheme",
			authHeader:   "bearer good",
			wantIdentity: true,
		},
		{
			name:         "cookie wins over header",
			cookie:       "good",
			authHeader:   "Bearer bad",
			wantIdentity: true,
		},
		{
			name:         "stale cookie falls back to header",
			cookie:       "bad",
			authHeader:   "Bearer good",
			wantIdentity: true,
		},
		{
			name:       "stale cookie and bad header",
			cookie:     "bad",
			authHeader: "Bearer bad",
		},
		{
			name: "no token continues unauthenticated",
		},
		{
			name:       "wrong scheme",
			authHeader: "Basic good",
		},
		{
			name:       "invalid token continues unauthenticated",
			authHeader: "Bearer bad",
		},
		{
			name:   "expired token continues unauthenticated",
			cookie: "expired",
			verify: func(context.Context, string) (*auth.Claims, error) {
				return nil, errors.Join(auth.ErrInvalidToken, auth.ErrExpiredToken)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verify := tt.verify
			if verify == nil {
				verify = func(_ context.Context, token string) (*auth.Claims, error) {
					if token == "good" {
						return fresh, nil
					}
					return nil, auth.ErrInvalidToken
				}
			}
			tokens := &mocks.MockTokenService{VerifyTokenFn: verify}
			log, _ := logger.NewTestLogger(t)
			mw := NewAuthMiddleware(tokens, testAuthConfig, log, WithClock(func() time.Time { return now }))

			req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: shared.AccessTokenCookie, Value: tt.cookie})
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			var identity shared.Identity
			var seen bool
			mw.Authenticate(identityRecorder(&identity, &seen)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, "Authenticate never rejects on its own")
			assert.Equal(t, tt.wantIdentity, seen)
			if tt.wantIdentity {
				assert.Equal(t, shared.Identity{UserID: "u-1", Username: "alice"}, identity)
			}
			assert.Empty(t, rec.Header().Get(shared.AccessTokenHeader), "fresh tokens are not reissued")
		})
	}
}

func TestAuthMiddleware_CookieTakesPrecedence(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var verified []string
	tokens := &mocks.MockTokenService{
		VerifyTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			verified = append(verified, token)
			return &auth.Claims{UserID: token, Username: token, ExpiresAt: now.Add(6 * 24 * time.Hour)}, nil
		},
	}
	log, _ := logger.NewTestLogger(t)
	mw := NewAuthMiddleware(tokens, testAuthConfig, log, WithClock(func() time.Time { return now }))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.AddCookie(&http.Cookie{Name: shared.AccessTokenCookie, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")

	var identity shared.Identity
	var seen bool
	mw.Authenticate(identityRecorder(&identity, &seen)).ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, seen)
	assert.Equal(t, "from-cookie", identity.UserID)
	assert.Equal(t, []string{"from-cookie"}, verified)
}

func TestAuthMiddleware_RefreshesNearExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	claims := &auth.Claims{UserID: "u-1", Username: "alice", ExpiresAt: now.Add(time.Hour)}

	var issuedFor *domain.User
	tokens := &mocks.MockTokenService{
		Claims: claims,
		IssueTokenFn: func(_ context.Context, user *domain.User) (string, time.Time, error) {
			issuedFor = user
			return "renewed", now.Add(7 * 24 * time.Hour), nil
		},
	}
	m := metrics.New()
	log, _ := logger.NewTestLogger(t)
	mw := NewAuthMiddleware(tokens, testAuthConfig, log,
		WithClock(func() time.Time { return now }), WithAuthMetrics(m))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer old")
	rec := httptest.NewRecorder()

	var identity shared.Identity
	var seen bool
	mw.Authenticate(identityRecorder(&identity, &seen)).ServeHTTP(rec, req)

	require.True(t, seen)
	require.NotNil(t, issuedFor)
	assert.Equal(t, "u-1", issuedFor.ID)
	assert.Equal(t, "alice", issuedFor.Username)
	assert.Equal(t, "renewed", rec.Header().Get(shared.AccessTokenHeader))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "renewed", cookies[0].Value)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEventsTotal.WithLabelValues(metrics.EventTokenRefresh)))
}

func TestAuthMiddleware_RefreshFailureDoesNotFailRequest(t *testing.T) {
	now := time.Now()
	tokens := &mocks.MockTokenService{
		Claims: &auth.Claims{UserID: "u-1", Username: "alice", ExpiresAt: now.Add(time.Minute)},
		IssueTokenFn: func(context.Context, *domain.User) (string, time.Time, error) {
			return "", time.Time{}, errors.New("signing failed")
		},
	}
	log, buf := logger.NewTestLogger(t)
	mw := NewAuthMiddleware(tokens, testAuthConfig, log, WithClock(func() time.Time { return now }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer old")
	rec := httptest.NewRecorder()

	var identity shared.Identity
	var seen bool
	mw.Authenticate(identityRecorder(&identity, &seen)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen, "identity still attached after a failed refresh")
	assert.Empty(t, rec.Header().Get(shared.AccessTokenHeader))
	assert.Contains(t, buf.String(), "failed to refresh token")
}

func TestNewAuthMiddlewarePanicsOnNilDeps(t *testing.T) {
	log, _ := logger.NewTestLogger(t)
	assert.Panics(t, func() { NewAuthMiddleware(nil, testAuthConfig, log) })
	assert.Panics(t, func() { NewAuthMiddleware(&mocks.MockTokenService{}, testAuthConfig, nil) })
}

func TestRequireAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("without identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authentication required")
	})

	t.Run("with identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
		req = req.WithContext(shared.WithIdentity(req.Context(), shared.Identity{UserID: "u-1"}))
		rec := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
