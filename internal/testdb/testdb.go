//go:build integration

package testdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/blog-api/internal/ciutil"
	"github.com/phrazzld/blog-api/internal/platform/postgres"
	"github.com/phrazzld/blog-api/internal/redact"
)

const (
	connectTimeout = 10 * time.Second
	txTimeout      = 30 * time.Second
)

// Open returns a migrated connection pool closed at the end of the test.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := ciutil.TestDatabaseURL(nil)
	if url == "" {
		if ciutil.IsCI() {
			t.Fatalf("%s must be set in CI", ciutil.EnvTestDatabaseURL)
		}
		t.Skipf("%s not set, skipping integration test", ciutil.EnvTestDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, url, connectTimeout)
	if err != nil {
		t.Fatalf("failed to connect to test database %s: %s", redact.String(url), redact.Error(err))
	}
	t.Cleanup(pool.Close)

	if err := postgres.Migrate(ctx, pool, "up", nil); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return pool
}

// WithTx runs fn inside a transaction that is rolled back afterwards.
func WithTx(t *testing.T, pool *pgxpool.Pool, fn func(t *testing.T, tx pgx.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)
	defer cancel()

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
