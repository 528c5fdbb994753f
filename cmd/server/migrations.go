package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/platform/postgres"
)

// handleMigrations runs a single goose command against the configured
// PostgreSQL database.
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if cfg.Database.Driver != driverPostgres {
		return fmt.Errorf("migrations are only supported for the %s driver, got %q", driverPostgres, cfg.Database.Driver)
	}

	pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.ConnectTimeout)
	if err != nil {
		return err
	}
	defer pool.Close()

	logger.Info("Executing migrations", "command", command)
	return postgres.Migrate(ctx, pool, command, logger)
}
