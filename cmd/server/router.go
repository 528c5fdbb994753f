package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/blog-api/internal/api"
	apiMiddleware "github.com/phrazzld/blog-api/internal/api/middleware"
	"github.com/phrazzld/blog-api/internal/api/shared"
	"github.com/phrazzld/blog-api/internal/redact"
)

// readinessTimeout bounds the backend ping behind /health?ready=1.
const readinessTimeout = 2 * time.Second

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Metrics(app.metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{api.LastPageHeader, shared.AccessTokenHeader},
		AllowCredentials: !allowsAnyOrigin(app.config.Server.CORSAllowedOrigins),
		MaxAge:           300,
	}))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokens, app.config.Auth, app.logger,
		apiMiddleware.WithAuthMetrics(app.metrics))
	postHandler := api.NewPostHandler(app.postService, app.logger)
	authHandler := api.NewAuthHandler(app.userService, app.tokens, app.config.Auth, app.metrics, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if app.loginLimiter != nil {
					r.Use(app.loginLimiter.Limit)
				}
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})
			r.Get("/check", authHandler.Check)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.List)
			r.With(apiMiddleware.RequireAuth).Post("/", postHandler.Write)

			r.Route("/{"+api.PostIDParam+"}", func(r chi.Router) {
				r.With(postHandler.PostByID).Get("/", postHandler.Read)
				r.With(apiMiddleware.RequireAuth, postHandler.PostByID, postHandler.RequireOwnPost).
					Delete("/", postHandler.Remove)
				r.With(apiMiddleware.RequireAuth, postHandler.PostByID, postHandler.RequireOwnPost).
					Patch("/", postHandler.Update)
			})
		})
	})

	r.Get("/health", app.handleHealth)
	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())

	return r
}

// handleHealth answers liveness probes. With ready=1 it also pings the
// backend and reports 503 while the database is unreachable.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, body := http.StatusOK, "OK"
	if r.URL.Query().Get("ready") == "1" {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := app.backend.Ping(ctx); err != nil {
			app.logger.Warn("readiness check failed", slog.String("error", redact.Error(err)))
			status, body = http.StatusServiceUnavailable, "UNAVAILABLE"
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		app.logger.Error("Failed to write health check response", "error", err)
	}
}

// allowsAnyOrigin reports whether origins contains the "*" wildcard.
// Browsers refuse credentialed requests against a wildcard origin.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
