package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("cache: miss")

// Store is a key-addressed byte cache for query results.
// Values written with Set never expire on their own; they live until invalidated.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// SetTransient stores a value that is dropped after ttl even if never
	// invalidated. Stores may bound the number of transient entries and evict
	// the oldest first.
	SetTransient(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Invalidate(ctx context.Context, keys ...string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}
