package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/api/middleware"
	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/platform/metrics"
	"github.com/phrazzld/blog-api/internal/service"
	"github.com/phrazzld/blog-api/internal/service/auth"
)

// application holds the wired dependencies of a running server.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	backend *backend

	tokens      auth.TokenService
	postService service.PostService
	userService service.UserService

	// loginLimiter is nil when login rate limiting is disabled.
	loginLimiter *middleware.RateLimiter
}

// newApplication wires services on top of an opened backend.
func newApplication(cfg *config.Config, logger *slog.Logger, b *backend) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
		backend: b,
	}

	var err error
	app.tokens, err = auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime", cfg.Auth.TokenLifetime.String(),
		"renew_threshold", cfg.Auth.RenewThreshold.String())

	app.postService = service.NewPostService(b.posts, logger)
	app.userService = service.NewUserService(b.users, auth.NewBcryptHasher(cfg.Auth.BcryptCost), logger)

	if cfg.Server.LoginRateLimit > 0 {
		app.loginLimiter = middleware.NewRateLimiter(cfg.Server.LoginRateLimit, cfg.Server.LoginRateWindow, app.metrics)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	if app.loginLimiter != nil {
		go app.loginLimiter.Run(ctx)
	}

	app.metrics.SetServiceHealth(true)
	defer app.metrics.SetServiceHealth(false)
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.backend != nil {
		if err := app.backend.Close(context.Background()); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
