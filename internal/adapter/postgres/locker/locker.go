package locker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	portlocker "github.com/alanyang/promptshelf/internal/port/locker"
)

var _ portlocker.AdvisoryLocker = (*Locker)(nil)

// Locker implements port/locker.AdvisoryLocker with pg_advisory_lock.
// Lock and unlock run on one acquired connection; an unlock issued on any other
// connection would be a no-op.
type Locker struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Locker {
	return &Locker{pool: pool}
}

// WithLock blocks until the lock for key is held, runs fn, then releases the lock.
func (l *Locker) WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for advisory lock: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", key); err != nil {
		return fmt.Errorf("acquire advisory lock %d: %w", key, err)
	}
	defer func() {
		// Background context: the unlock must run even if ctx was cancelled inside fn.
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", key); err != nil {
			slog.Error("advisory unlock failed", "key", key, "error", err)
		}
	}()

	return fn(ctx)
}
