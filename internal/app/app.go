// Package app wires configuration into a ready Manager. Every Provide
// function is consumed by Wire in cmd/marketdata.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"marketdata/internal/cache"
	"marketdata/internal/cache/codec"
	"marketdata/internal/config"
	"marketdata/internal/manager"
	"marketdata/internal/provider"
	"marketdata/internal/provider/finnhub"
	"marketdata/internal/provider/mock"
	"marketdata/internal/provider/polygon"
	"marketdata/internal/provider/tiingo"
	"marketdata/internal/provider/yahoo"
)

const redisPingTimeout = 5 * time.Second

// App holds the dependencies built by Wire.
type App struct {
	Config    *config.Config
	Manager   *manager.Manager
	Cache     cache.Backend
	Providers []provider.Provider
}

// EarningsProvider returns the first configured provider that serves
// earnings, or nil.
func (a *App) EarningsProvider() provider.Provider {
	for _, p := range a.Providers {
		if p.Capabilities().Has(provider.CapEarnings) {
			return p
		}
	}
	return nil
}

// Close shuts down providers and any closable cache backend.
func (a *App) Close() {
	if err := a.Manager.Close(); err != nil {
		slog.Warn("provider close", "error", err)
	}
	if c, ok := a.Cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			slog.Warn("cache close", "error", err)
		}
	}
}

// ProvideConfig loads config from the environment (for Wire).
func ProvideConfig() (*config.Config, error) {
	return config.Load()
}

// ProvideCodec creates the disk-cache codec from config (for Wire).
func ProvideCodec(cfg *config.Config) (codec.Codec, error) {
	c := codec.New(cfg.CacheFormat)
	if c == nil {
		return nil, fmt.Errorf("unsupported MARKET_DATA_CACHE_FORMAT %q (use: csv, parquet, json)", cfg.CacheFormat)
	}
	return c, nil
}

// ProvideCache creates the configured cache backend (for Wire).
func ProvideCache(cfg *config.Config, c codec.Codec) (cache.Backend, error) {
	switch cfg.Cache {
	case "parquet":
		return cache.NewDiskCache(cfg.CacheDir, c), nil
	case "memory":
		return cache.NewMemoryCache(cfg.CacheTTL, cfg.CacheMaxEntries), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return cache.NewRedisCache(client, cfg.CacheTTL), nil
	case "none":
		return cache.NewNopCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (options: parquet, memory, redis, none)", cfg.Cache)
	}
}

// ProvideProviders creates the provider chain in configured order (for
// Wire).
func ProvideProviders(cfg *config.Config) ([]provider.Provider, error) {
	providers := make([]provider.Provider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		p, err := buildProvider(cfg, name)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func buildProvider(cfg *config.Config, name string) (provider.Provider, error) {
	switch strings.ToLower(name) {
	case "polygon":
		return polygon.New(cfg.PolygonAPIKey)
	case "tiingo":
		return tiingo.New(cfg.TiingoAPIKey)
	case "finnhub":
		return finnhub.New(cfg.FinnhubAPIKey)
	case "yahoo":
		return yahoo.New(), nil
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s (options: polygon, tiingo, finnhub, yahoo, mock)", name)
	}
}

// ProvideManager assembles the orchestrator (for Wire).
func ProvideManager(cfg *config.Config, providers []provider.Provider, backend cache.Backend) *manager.Manager {
	return manager.New(providers, backend, cfg.Validate)
}
