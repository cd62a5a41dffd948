package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisadapter "github.com/alanyang/promptshelf/internal/adapter/redis"
	portcache "github.com/alanyang/promptshelf/internal/port/cache"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCache_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	c := redisadapter.NewCache(client, "test")

	_, err := c.Get(ctx, "items:u1")
	assert.ErrorIs(t, err, portcache.ErrMiss)

	require.NoError(t, c.Set(ctx, "items:u1", []byte(`[]`)))
	got, err := c.Get(ctx, "items:u1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, c.Invalidate(ctx, "items:u1"))
	_, err = c.Get(ctx, "items:u1")
	assert.ErrorIs(t, err, portcache.ErrMiss)

	assert.NoError(t, c.Invalidate(ctx), "no keys is a no-op")
}

func TestCache_SetTransientExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	c := redisadapter.NewCache(client, "test")

	require.NoError(t, c.SetTransient(ctx, "users:search:al", []byte(`[]`), time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("test:cache:users:search:al"))

	mr.FastForward(2 * time.Minute)
	_, err := c.Get(ctx, "users:search:al")
	assert.ErrorIs(t, err, portcache.ErrMiss)
}

func TestCache_NamespacedKeys(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	c := redisadapter.NewCache(client, "shelf")

	require.NoError(t, c.Set(ctx, "items:u1", []byte("x")))
	assert.True(t, mr.Exists("shelf:cache:items:u1"))
}

func TestCache_InvalidatePrefix_EscapesGlob(t *testing.T) {
	ctx := context.Background()
	_, client := newClient(t)
	c := redisadapter.NewCache(client, "test")

	require.NoError(t, c.Set(ctx, "users:search:a*", []byte("1")))
	require.NoError(t, c.Set(ctx, "users:search:a*b", []byte("2")))
	require.NoError(t, c.Set(ctx, "users:search:ab", []byte("3")))
	require.NoError(t, c.Set(ctx, "items:u1", []byte("4")))

	require.NoError(t, c.InvalidatePrefix(ctx, "users:search:a*"))

	_, err := c.Get(ctx, "users:search:ab")
	assert.NoError(t, err, "literal * in prefix must not act as a wildcard")
	_, err = c.Get(ctx, "users:search:a*b")
	assert.ErrorIs(t, err, portcache.ErrMiss)

	require.NoError(t, c.InvalidatePrefix(ctx, "users:"))
	_, err = c.Get(ctx, "users:search:ab")
	assert.ErrorIs(t, err, portcache.ErrMiss)
	_, err = c.Get(ctx, "items:u1")
	assert.NoError(t, err)
}

func TestRevoker(t *testing.T) {
	ctx := context.Background()
	mr, client := newClient(t)
	r := redisadapter.NewRevoker(client, "test")

	revoked, err := r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "sess-1", time.Now().Add(time.Minute)))
	revoked, err = r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation lapses with the token")

	require.NoError(t, r.Revoke(ctx, "sess-2", time.Now().Add(-time.Second)))
	revoked, err = r.IsRevoked(ctx, "sess-2")
	require.NoError(t, err)
	assert.False(t, revoked, "already-expired tokens need no entry")
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := redisadapter.Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	client.Close()

	_, err = redisadapter.Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
