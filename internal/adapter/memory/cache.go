package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	portcache "github.com/alanyang/promptshelf/internal/port/cache"
)

var _ portcache.Store = (*Cache)(nil)

// DefaultTransientEntries caps transient entries when NewCache is used.
const DefaultTransientEntries = 1024

// Cache is a process-local query cache. It starts empty and holds values set
// with Set until they are invalidated. Transient values live in a bounded LRU
// and also expire on their TTL.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte

	transientCap int
	transientMu  sync.Mutex
	transient    map[time.Duration]*expirable.LRU[string, []byte]
}

func NewCache() *Cache {
	return NewCacheWithLimit(DefaultTransientEntries)
}

// NewCacheWithLimit caps transient entries per TTL at limit.
func NewCacheWithLimit(limit int) *Cache {
	return &Cache{
		entries:      make(map[string][]byte),
		transientCap: limit,
		transient:    make(map[time.Duration]*expirable.LRU[string, []byte]),
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return value, nil
	}

	for _, lru := range c.lrus() {
		if value, ok := lru.Get(key); ok {
			return value, nil
		}
	}
	return nil, portcache.ErrMiss
}

func (c *Cache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
	return nil
}

func (c *Cache) SetTransient(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.transientMu.Lock()
	lru, ok := c.transient[ttl]
	if !ok {
		lru = expirable.NewLRU[string, []byte](c.transientCap, nil, ttl)
		c.transient[ttl] = lru
	}
	c.transientMu.Unlock()

	lru.Add(key, value)
	return nil
}

func (c *Cache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	for _, lru := range c.lrus() {
		for _, key := range keys {
			lru.Remove(key)
		}
	}
	return nil
}

func (c *Cache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.mu.Unlock()

	for _, lru := range c.lrus() {
		for _, key := range lru.Keys() {
			if strings.HasPrefix(key, prefix) {
				lru.Remove(key)
			}
		}
	}
	return nil
}

// Len reports the number of cached keys, transient ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()

	for _, lru := range c.lrus() {
		n += lru.Len()
	}
	return n
}

func (c *Cache) lrus() []*expirable.LRU[string, []byte] {
	c.transientMu.Lock()
	defer c.transientMu.Unlock()
	out := make([]*expirable.LRU[string, []byte], 0, len(c.transient))
	for _, lru := range c.transient {
		out = append(out, lru)
	}
	return out
}
