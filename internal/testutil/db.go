//go:build integration

package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	pgdb "github.com/alanyang/promptshelf/internal/adapter/postgres"
	pglocker "github.com/alanyang/promptshelf/internal/adapter/postgres/locker"
)

// SetupTestDB connects to the test database and applies the embedded migrations.
// It skips the test if TEST_DATABASE_URL is not set.
// Every call shares one database; tests isolate themselves with fresh principal ids.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgdb.Connect(ctx, url)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}

	err = pglocker.New(pool).WithLock(ctx, pgdb.MigrationLockKey, func(ctx context.Context) error {
		return pgdb.Migrate(ctx, pool)
	})
	if err != nil {
		pool.Close()
		t.Fatalf("migrate test DB: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}
