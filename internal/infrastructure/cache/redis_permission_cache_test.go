package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Caisse-api/internal/application/authz"
	"github.com/jhoicas/Caisse-api/internal/infrastructure/cache"
)

// redisAddr devuelve TEST_REDIS_ADDR o levanta un contenedor redis efímero.
func redisAddr(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con Redis omitida en modo -short")
	}
	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return addr
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Redis no disponible: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })
	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedisPermissionCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: redisAddr(t)})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewRedisPermissionCacheWithClient(client, "test:perms:", time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	set := &authz.PermissionSet{Granted: []string{"caisse.sales.*"}, Revoked: []string{"caisse.sales.cancel"}}
	require.NoError(t, c.Set(ctx, "u1", set))

	got, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, set.Granted, got.Granted)
	assert.False(t, got.Allows("caisse.sales.cancel"))

	ttl, err := client.TTL(ctx, "test:perms:u1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, "u1"))
	got, err = c.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, client.Set(ctx, "test:perms:u2", "{roto", time.Minute).Err())
	got, err = c.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, got, "una entrada corrupta se trata como ausente")
}
