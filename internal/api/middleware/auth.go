package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/platform/metrics"
	"github.com/phrazzld/blog-api/internal/redact"
	"github.com/phrazzld/blog-api/internal/service/auth"
)

// AuthMiddleware resolves the caller's identity from a session token.
type AuthMiddleware struct {
	tokens         auth.TokenService
	renewThreshold time.Duration
	cookieSecure   bool
	now            func() time.Time
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// AuthOption customizes an AuthMiddleware.
type AuthOption func(*AuthMiddleware)

// WithClock overrides the clock used for the renewal decision.
func WithClock(now func() time.Time) AuthOption {
	return func(m *AuthMiddleware) { m.now = now }
}

// WithAuthMetrics records token refreshes on m.
func WithAuthMetrics(m *metrics.Metrics) AuthOption {
	return func(a *AuthMiddleware) { a.metrics = m }
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(
	tokens auth.TokenService,
	cfg config.AuthConfig,
	logger *slog.Logger,
	opts ...AuthOption,
) *AuthMiddleware {
	if tokens == nil {
		panic("token service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	m := &AuthMiddleware{
		tokens:         tokens,
		renewThreshold: cfg.RenewThreshold,
		cookieSecure:   cfg.CookieSecure,
		now:            time.Now,
		logger:         logger.With(slog.String("component", "auth_middleware")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authenticate attaches the caller's identity to the request context when a
// valid token is presented. Requests without a usable token pass through
// unauthenticated; RequireAuth decides whether that is acceptable.
//
// Tokens close to expiry are reissued and written back to the response.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContextOrDefault(ctx, m.logger)

		var claims *auth.Claims
		for _, token := range tokensFromRequest(r) {
			c, err := m.tokens.VerifyToken(ctx, token)
			if err != nil {
				log.Debug("ignoring unusable token", slog.String("error", redact.Error(err)))
				continue
			}
			claims = c
			break
		}
		if claims == nil {
			next.ServeHTTP(w, r)
			return
		}

		if claims.Remaining(m.now()) < m.renewThreshold {
			m.refresh(w, r, claims)
		}

		ctx = shared.WithIdentity(ctx, shared.Identity{
			UserID:   claims.UserID,
			Username: claims.Username,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// refresh reissues the token from the verified claims. Failures are logged only.
func (m *AuthMiddleware) refresh(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	log := logger.FromContextOrDefault(r.Context(), m.logger)

	token, expiresAt, err := m.tokens.IssueToken(r.Context(), claims.User())
	if err != nil {
		log.Error("failed to refresh token",
			slog.String("user_id", claims.UserID),
			slog.String("error", redact.Error(err)))
		return
	}

	shared.SetAccessToken(w, token, expiresAt, m.cookieSecure)
	m.metrics.RecordAuthEvent(metrics.EventTokenRefresh)
	log.Debug("token refreshed", slog.String("user_id", claims.UserID))
}

// tokensFromRequest returns the presented tokens in the order they are tried:
// the session cookie first, then the Authorization bearer token.
func tokensFromRequest(r *http.Request) []string {
	var tokens []string
	if c, err := r.Cookie(shared.AccessTokenCookie); err == nil && c.Value != "" {
		tokens = append(tokens, c.Value)
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// RequireAuth rejects requests that carry no identity with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.IdentityFromContext(r.Context()); !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
