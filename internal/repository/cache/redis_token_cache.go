package cache

import (
	"context"
	"errors"
	"time"

	"lumina-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "auth:token:"

// RedisTokenCache shares resolved tokens between server instances. Redis
// failures degrade to cache misses; the database stays authoritative.
type RedisTokenCache struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	log        logger.ILogger
}

func NewRedisTokenCache(rdb *redis.Client, defaultTTL time.Duration, log logger.ILogger) *RedisTokenCache {
	return &RedisTokenCache{
		rdb:        rdb,
		defaultTTL: defaultTTL,
		log:        log,
	}
}

func (c *RedisTokenCache) Get(ctx context.Context, tokenHash string) (uuid.UUID, bool) {
	val, err := c.rdb.Get(ctx, tokenKeyPrefix+tokenHash).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("TOKEN_CACHE", "redis get failed", map[string]interface{}{"error": err.Error()})
		}
		return uuid.Nil, false
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (c *RedisTokenCache) Set(ctx context.Context, tokenHash string, userId uuid.UUID, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.rdb.Set(ctx, tokenKeyPrefix+tokenHash, userId.String(), ttl).Err(); err != nil {
		c.log.Warn("TOKEN_CACHE", "redis set failed", map[string]interface{}{"error": err.Error()})
	}
}

func (c *RedisTokenCache) Delete(ctx context.Context, tokenHash string) {
	if err := c.rdb.Del(ctx, tokenKeyPrefix+tokenHash).Err(); err != nil {
		c.log.Warn("TOKEN_CACHE", "redis del failed", map[string]interface{}{"error": err.Error()})
	}
}
