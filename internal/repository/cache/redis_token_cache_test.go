package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lumina-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisTokenCache(t *testing.T) {
	rdb := newRedisClient(t)
	ctx := context.Background()
	c := NewRedisTokenCache(rdb, time.Minute, logger.NewNopLogger())
	userId := uuid.New()

	_, found := c.Get(ctx, "missing")
	assert.False(t, found)

	c.Set(ctx, "hash", userId, 0)
	got, found := c.Get(ctx, "hash")
	require.True(t, found)
	assert.Equal(t, userId, got)

	ttl, err := rdb.TTL(ctx, tokenKeyPrefix+"hash").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	c.Delete(ctx, "hash")
	_, found = c.Get(ctx, "hash")
	assert.False(t, found)
}

func TestRedisTokenCache_DownIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	c := NewRedisTokenCache(rdb, time.Minute, logger.NewNopLogger())

	c.Set(context.Background(), "hash", uuid.New(), time.Minute)
	_, found := c.Get(context.Background(), "hash")
	assert.False(t, found)
}
