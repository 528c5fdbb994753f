package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/middleware"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/mocks"
	"github.com/phrazzld/blog-api/internal/platform/metrics"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users   *mocks.MockUserStore
	tokens  *mocks.MockTokenService
	metrics *metrics.Metrics
	router  http.Handler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	log := nopLogger(t)
	users := mocks.NewMockUserStore()
	tokens := &mocks.MockTokenService{Token: "signed-token", ExpiresAt: time.Now().Add(time.Hour)}
	m := metrics.New()
	svc := service.NewUserService(users, auth.NewBcryptHasher(4), log)
	h := NewAuthHandler(svc, tokens, config.AuthConfig{CookieSecure: true}, m, log)

	r := chi.NewRouter()
	r.Use(fakeIdentity)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.RequireAuth).Get("/check", h.Check)
		r.Post("/logout", h.Logout)
	})

	return &authFixture{users: users, tokens: tokens, metrics: m, router: r}
}

func (f *authFixture) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	pf := &postFixture{router: f.router}
	return pf.do(t, method, path, user, body)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == shared.AccessTokenCookie {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates the user and starts a session", func(t *testing.T) {
		f := newAuthFixture(t)
		rec := f.do(t, http.MethodPost, "/api/auth/register", "",
			map[string]string{"username": "alice", "password": "secret1"})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		got := decodeBody[map[string]interface{}](t, rec)
		assert.Equal(t, "alice", got["username"])
		assert.NotEmpty(t, got["id"])
		assert.Len(t, got, 2, "only public fields are serialized")
		assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)

		stored, err := f.users.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", stored.HashedPassword)
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthEventsTotal.WithLabelValues(metrics.EventRegister)))
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		f := newAuthFixture(t)
		body := map[string]string{"username": "alice", "password": "secret1"}
		require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/auth/register", "", body).Code)

		rec := f.do(t, http.MethodPost, "/api/auth/register", "", body)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Username already exists", decodeBody[shared.ErrorResponse](t, rec).Error)
	})

	invalid := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"short username", map[string]string{"username": "al", "password": "secret1"}, "username"},
		{"long username", map[string]string{"username": strings.Repeat("a", 21), "password": "secret1"}, "username"},
		{"non-alphanumeric username", map[string]string{"username": "al ice", "password": "secret1"}, "username"},
		{"short password", map[string]string{"username": "alice", "password": "12345"}, "password"},
		{"long password", map[string]string{"username": "alice", "password": strings.Repeat("p", 73)}, "password"},
		{"missing password", map[string]string{"username": "alice"}, "password"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			rec := f.do(t, http.MethodPost, "/api/auth/register", "", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody[shared.ErrorResponse](t, rec)
			require.NotEmpty(t, body.Details)
			assert.Equal(t, tt.field, body.Details[0].Field)
			assert.Nil(t, sessionCookie(t, rec))
		})
	}

	t.Run("token failure is a 500", func(t *testing.T) {
		f := newAuthFixture(t)
		f.tokens.Err = errors.New("signer unavailable")
		rec := f.do(t, http.MethodPost, "/api/auth/register", "",
			map[string]string{"username": "alice", "password": "secret1"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate authentication token", decodeBody[shared.ErrorResponse](t, rec).Error)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	f := newAuthFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "alice", "password": "secret1"}).Code)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"correct credentials", map[string]string{"username": "alice", "password": "secret1"}, http.StatusOK},
		{"wrong password", map[string]string{"username": "alice", "password": "secret2"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "bob", "password": "secret1"}, http.StatusUnauthorized},
		{"missing fields", map[string]string{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "alice", decodeBody[auth.PublicUser](t, rec).Username)
				assert.NotNil(t, sessionCookie(t, rec))
				return
			}
			assert.Nil(t, sessionCookie(t, rec))
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Invalid username or password", decodeBody[shared.ErrorResponse](t, rec).Error)
			}
		})
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AuthEventsTotal.WithLabelValues(metrics.EventLogin)))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.AuthEventsTotal.WithLabelValues(metrics.EventLoginFailed)))
}

func TestAuthHandler_LoginStorageFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.users.GetByUsernameFn = func(context.Context, string) (*domain.User, error) {
		return nil, errors.New("mongo: no reachable servers")
	}

	rec := f.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "secret1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo")
}

func TestAuthHandler_Check(t *testing.T) {
	f := newAuthFixture(t)

	rec := f.do(t, http.MethodGet, "/api/auth/check", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/auth/check", "u-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, auth.PublicUser{ID: "u-1", Username: "user-u-1"}, decodeBody[auth.PublicUser](t, rec))
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture(t)
	rec := f.do(t, http.MethodPost, "/api/auth/logout", "", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestNewAuthHandlerPanicsOnNilDeps(t *testing.T) {
	log := nopLogger(t)
	svc := service.NewUserService(mocks.NewMockUserStore(), auth.NewBcryptHasher(4), log)
	tokens := &mocks.MockTokenService{}

	assert.Panics(t, func() { NewAuthHandler(nil, tokens, config.AuthConfig{}, nil, log) })
	assert.Panics(t, func() { NewAuthHandler(svc, nil, config.AuthConfig{}, nil, log) })
	assert.Panics(t, func() { NewAuthHandler(svc, tokens, config.AuthConfig{}, nil, nil) })
	assert.NotPanics(t, func() { NewAuthHandler(svc, tokens, config.AuthConfig{}, nil, log) })
}
