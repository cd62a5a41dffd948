package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	portsession "github.com/alanyang/promptshelf/internal/port/session"
)

var _ portsession.Revoker = (*Revoker)(nil)

// Revoker stores signed-out session ids with a TTL matching the token's remaining life.
type Revoker struct {
	client    goredis.UniversalClient
	namespace string
}

func NewRevoker(client goredis.UniversalClient, namespace string) *Revoker {
	return &Revoker{client: client, namespace: namespace + ":revoked:"}
}

func (r *Revoker) Revoke(ctx context.Context, sessionID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.namespace+sessionID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke session: %w", err)
	}
	return nil
}

func (r *Revoker) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.namespace+sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("redis check session: %w", err)
	}
	return n > 0, nil
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := goredis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}
