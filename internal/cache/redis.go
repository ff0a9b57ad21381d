package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"marketdata/internal/model"
)

// redisKeyPrefix namespaces bar entries in a shared redis.
const redisKeyPrefix = "bars:"

// RedisCache keeps bar series in redis as JSON values with redis-enforced
// expiry (non-positive TTL stores without expiry). Network and decode
// failures degrade to cache misses, never to request failures.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(symbol string, timeframe model.Timeframe, start, end time.Time) string {
	return redisKeyPrefix + Key(symbol, timeframe, start, end)
}

func (c *RedisCache) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, bool) {
	data, err := c.client.Get(ctx, c.key(symbol, timeframe, start, end)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("redis get failed", "symbol", symbol, "error", err)
		}
		return nil, false
	}
	var bars []model.Bar
	if err := json.Unmarshal(data, &bars); err != nil {
		slog.Debug("redis entry undecodable", "symbol", symbol, "error", err)
		return nil, false
	}
	return bars, true
}

func (c *RedisCache) StoreBars(ctx context.Context, symbol string, bars []model.Bar, timeframe model.Timeframe, start, end time.Time) error {
	if len(bars) == 0 {
		return nil
	}
	data, err := json.Marshal(bars)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, c.key(symbol, timeframe, start, end), data, ttl).Err()
}

func (c *RedisCache) HasData(ctx context.Context, symbol string, timeframe model.Timeframe, start, end time.Time) bool {
	n, err := c.client.Exists(ctx, c.key(symbol, timeframe, start, end)).Result()
	return err == nil && n > 0
}

func (c *RedisCache) Clear(ctx context.Context, symbol string) error {
	return c.deleteMatching(ctx, redisKeyPrefix+strings.ToUpper(symbol)+"|*")
}

func (c *RedisCache) ClearAll(ctx context.Context) error {
	return c.deleteMatching(ctx, redisKeyPrefix+"*")
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
