package cache

import (
	"context"
	"time"
)

// TTLCache overrides the TTL of every Set on the wrapped cache.
type TTLCache struct {
	Cache
	ttl time.Duration
}

// WithTTL returns c with every write expiring after ttl. A ttl ≤ 0 returns
// c unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &TTLCache{Cache: c, ttl: ttl}
}

// Set stores data with the overriding TTL.
func (c *TTLCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}

// Clear forwards to the wrapped cache when it supports clearing.
func (c *TTLCache) Clear(ctx context.Context) error {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return nil
}

var (
	_ Cache   = (*TTLCache)(nil)
	_ Clearer = (*TTLCache)(nil)
)
