package locker

import "context"

// AdvisoryLocker serialises critical sections across replicas using Postgres session
// advisory locks. Lock and unlock happen on the same DB connection, as required by
// session-level pg_advisory_lock.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
