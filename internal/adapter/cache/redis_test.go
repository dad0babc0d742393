package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/adapter/cache"
	"github.com/seu-repo/jarvis/internal/domain"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *cache.RedisCache) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return mr, cache.NewRedisCacheFromClient(client, zap.NewNop())
}

func TestRedisCache_GetMissIsNotFound(t *testing.T) {
	_, c := newRedis(t)

	_, err := c.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	mr, c := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "revoked:abc", "1", time.Minute))
	val, err := c.Get(ctx, "revoked:abc")
	assert.NoError(t, err)
	assert.Equal(t, "1", val)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "revoked:abc")
	assert.ErrorIs(t, err, domain.ErrNotFound, "key should expire")

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisCache_SetNXDedupes(t *testing.T) {
	_, c := newRedis(t)
	ctx := context.Background()

	first, err := c.SetNX(ctx, "telegram:update:10", "1", time.Hour)
	require.NoError(t, err)
	second, err := c.SetNX(ctx, "telegram:update:10", "1", time.Hour)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second, "duplicate update should be rejected")
}

func TestRedisCache_AppendRange(t *testing.T) {
	_, c := newRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, "jarvis:memory:s1", "first"))
	require.NoError(t, c.Append(ctx, "jarvis:memory:s1", "second"))

	got, err := c.Range(ctx, "jarvis:memory:s1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)

	empty, err := c.Range(ctx, "jarvis:memory:none")
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisCache_Ping(t *testing.T) {
	_, c := newRedis(t)

	assert.NoError(t, c.Ping())
}
