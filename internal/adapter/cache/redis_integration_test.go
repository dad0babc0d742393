//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/adapter/cache"
	"github.com/seu-repo/jarvis/internal/domain"
)

func TestRedisCache_AgainstRealRedis(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	c, err := cache.NewRedisCache(url, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	ok, err := c.SetNX(ctx, "telegram:update:1", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Append(ctx, "jarvis:memory:it", "note"))
	got, err := c.Range(ctx, "jarvis:memory:it")
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, got)

	_, err = c.Get(ctx, "absent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
