package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/platform/metrics"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	users        service.UserService
	tokens       auth.TokenService
	cookieSecure bool
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// m may be nil, in which case no auth events are recorded.
func NewAuthHandler(
	users service.UserService,
	tokens auth.TokenService,
	cfg config.AuthConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AuthHandler {
	if users == nil || tokens == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("user service and token service cannot be nil for AuthHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}
	return &AuthHandler{
		users:        users,
		tokens:       tokens,
		cookieSecure: cfg.CookieSecure,
		metrics:      m,
		logger:       logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventRegister)
	log.Info("user registered", slog.String("user_id", user.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, auth.SerializeUser(user))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.RecordAuthEvent(metrics.EventLoginFailed)
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventLogin)
	shared.RespondWithJSON(w, r, http.StatusOK, auth.SerializeUser(user))
}

// Check handles GET /auth/check and returns the caller's public identity.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, auth.SerializeUser(&domain.User{
		ID:       identity.UserID,
		Username: identity.Username,
	}))
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	shared.ClearAccessToken(w, h.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

// startSession issues a token for user and sets the session cookie.
// On failure it writes a 500 and returns false.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *domain.User) bool {
	token, expiresAt, err := h.tokens.IssueToken(r.Context(), user)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return false
	}
	shared.SetAccessToken(w, token, expiresAt, h.cookieSecure)
	return true
}
