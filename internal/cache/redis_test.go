package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdata/internal/model"
)

// newTestRedis connects to REDIS_ADDR or skips. Run a local redis and
// `REDIS_ADDR=localhost:6379 go test ./internal/cache/` to exercise these.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewRedisCache(newTestRedis(t), time.Minute)

	require.NoError(t, c.StoreBars(ctx, "aapl", diskBars(), model.Timeframe1Day, diskStart, diskEnd))

	got, ok := c.GetBars(ctx, "AAPL", diskStart, diskEnd, model.Timeframe1Day)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, 187.87, got[0].Close)
	assert.True(t, c.HasData(ctx, "AAPL", model.Timeframe1Day, diskStart, diskEnd))

	_, ok = c.GetBars(ctx, "MSFT", diskStart, diskEnd, model.Timeframe1Day)
	assert.False(t, ok)
}

func TestRedisCacheEmptyStoreIsNoop(t *testing.T) {
	ctx := context.Background()
	c := NewRedisCache(newTestRedis(t), time.Minute)

	require.NoError(t, c.StoreBars(ctx, "AAPL", nil, model.Timeframe1Day, diskStart, diskEnd))
	assert.False(t, c.HasData(ctx, "AAPL", model.Timeframe1Day, diskStart, diskEnd))
}

func TestRedisCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewRedisCache(newTestRedis(t), time.Minute)

	require.NoError(t, c.StoreBars(ctx, "AAPL", diskBars(), model.Timeframe1Day, diskStart, diskEnd))
	require.NoError(t, c.StoreBars(ctx, "AAPL", diskBars(), model.Timeframe1Min, diskStart, diskEnd))
	require.NoError(t, c.StoreBars(ctx, "MSFT", diskBars(), model.Timeframe1Day, diskStart, diskEnd))

	require.NoError(t, c.Clear(ctx, "aapl"))
	assert.False(t, c.HasData(ctx, "AAPL", model.Timeframe1Day, diskStart, diskEnd))
	assert.True(t, c.HasData(ctx, "MSFT", model.Timeframe1Day, diskStart, diskEnd))

	require.NoError(t, c.ClearAll(ctx))
	assert.False(t, c.HasData(ctx, "MSFT", model.Timeframe1Day, diskStart, diskEnd))
}
