package session

import (
	"context"
	"time"
)

// Revoker remembers signed-out sessions until their tokens would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, sessionID string, until time.Time) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
