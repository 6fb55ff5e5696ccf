package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// TargetCache remembers the last portfolio owner that was loaded so a
// returning visitor without a username or session still lands on a page.
type TargetCache struct {
	rdb *redis.Client
}

// NewTargetCache wraps the given Redis client. A nil client yields a cache
// whose reads miss and whose writes are no-ops.
func NewTargetCache(rdb *redis.Client) *TargetCache {
	return &TargetCache{rdb: rdb}
}

// RememberOwner records userID as the most recently loaded portfolio owner.
func (c *TargetCache) RememberOwner(ctx context.Context, userID string) {
	if c == nil || c.rdb == nil || userID == "" {
		return
	}
	c.rdb.Set(ctx, LastOwnerKey, userID, LastOwnerTTL)
}

// LastOwner returns the most recently remembered owner, or "" on a miss.
func (c *TargetCache) LastOwner(ctx context.Context) string {
	if c == nil || c.rdb == nil {
		return ""
	}
	val, err := c.rdb.Get(ctx, LastOwnerKey).Result()
	if err != nil {
		// A backend failure reads like a miss; the caller falls back to
		// its own target resolution.
		return ""
	}
	return val
}

// Forget clears the remembered owner.
func (c *TargetCache) Forget(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, LastOwnerKey)
}
