package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/blog-api/internal/api/middleware"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/mocks"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/stretchr/testify/require"
)

// testUserHeader stands in for a verified token in handler tests.
const testUserHeader = "X-Test-User"

func fakeIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(testUserHeader); id != "" {
			r = r.WithContext(shared.WithIdentity(r.Context(), shared.Identity{UserID: id, Username: "user-" + id}))
		}
		next.ServeHTTP(w, r)
	})
}

type postFixture struct {
	store   *mocks.MockPostStore
	service service.PostService
	router  http.Handler
	logs    *logger.TestLogBuffer
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()

	log, buf := logger.NewTestLogger(t)
	posts := mocks.NewMockPostStore()
	svc := service.NewPostService(posts, log)
	h := NewPostHandler(svc, log)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))
		})
	})
	r.Use(fakeIdentity)
	r.Route("/api/posts", func(r chi.Router) {
		r.Get("/", h.List)
		r.With(middleware.RequireAuth).Post("/", h.Write)
		r.Route("/{id}", func(r chi.Router) {
			r.With(h.PostByID).Get("/", h.Read)
			r.With(middleware.RequireAuth, h.PostByID, h.RequireOwnPost).Delete("/", h.Remove)
			r.With(middleware.RequireAuth, h.PostByID, h.RequireOwnPost).Patch("/", h.Update)
		})
	})

	return &postFixture{store: posts, service: svc, router: r, logs: buf}
}

func (f *postFixture) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func nopLogger(t *testing.T) *slog.Logger {
	log, _ := logger.NewTestLogger(t)
	return log
}

func newRequestWithIdentity(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(shared.WithIdentity(req.Context(), shared.Identity{UserID: userID}))
}

func recorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
