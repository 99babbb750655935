package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type MemoryTokenCache struct {
	cache *cache.Cache
}

func NewMemoryTokenCache(defaultTTL time.Duration) *MemoryTokenCache {
	// purge expired entries twice per TTL window
	return &MemoryTokenCache{
		cache: cache.New(defaultTTL, defaultTTL/2),
	}
}

func (c *MemoryTokenCache) Get(_ context.Context, tokenHash string) (uuid.UUID, bool) {
	if x, found := c.cache.Get(tokenHash); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

func (c *MemoryTokenCache) Set(_ context.Context, tokenHash string, userId uuid.UUID, ttl time.Duration) {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	c.cache.Set(tokenHash, userId, ttl)
}

func (c *MemoryTokenCache) Delete(_ context.Context, tokenHash string) {
	c.cache.Delete(tokenHash)
}
