package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/blog-api/internal/config"
	"github.com/phrazzld/blog-api/internal/platform/memory"
	"github.com/phrazzld/blog-api/internal/platform/mongodb"
	"github.com/phrazzld/blog-api/internal/platform/postgres"
	"github.com/phrazzld/blog-api/internal/store"
)

const (
	driverPostgres = "postgres"
	driverMongo    = "mongo"
	driverMemory   = "memory"
)

// backend bundles the stores of one persistence driver with its lifecycle hooks.
type backend struct {
	posts store.PostStore
	users store.UserStore

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping checks that the backing database is reachable.
func (b *backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

// Close releases the driver's connections.
func (b *backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// openBackend connects to the database selected by cfg.Database.Driver.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Database.Driver {
	case driverPostgres:
		return openPostgres(ctx, cfg.Database, logger)
	case driverMongo:
		return openMongo(ctx, cfg.Database, logger)
	case driverMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return newMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func newMemoryBackend() *backend {
	return &backend{
		posts: memory.NewPostStore(),
		users: memory.NewUserStore(),
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	pool, err := postgres.Connect(ctx, cfg.URL, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, "up", logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	logger.Info("Database connection established", "driver", driverPostgres)
	return &backend{
		posts: postgres.NewPostgresPostStore(pool, logger),
		users: postgres.NewPostgresUserStore(pool, logger),
		ping:  pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*backend, error) {
	client, err := mongodb.Connect(ctx, cfg.URL, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Name)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Database connection established", "driver", driverMongo, "database", cfg.Name)
	return &backend{
		posts: mongodb.NewPostStore(db, logger),
		users: mongodb.NewUserStore(db, logger),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: client.Disconnect,
	}, nil
}
