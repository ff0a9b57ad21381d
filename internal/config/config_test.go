package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads, restoring them afterwards.
// t.Setenv registers the restore; Unsetenv removes the empty value, which
// envconfig would otherwise treat as set.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"MARKET_DATA_PROVIDERS", "MARKET_DATA_CACHE", "MARKET_DATA_CACHE_DIR",
		"MARKET_DATA_CACHE_FORMAT", "MARKET_DATA_CACHE_TTL", "MARKET_DATA_CACHE_MAX_ENTRIES",
		"MARKET_DATA_VALIDATE", "LOG_LEVEL", "PROFILE",
		"POLYGON_API_KEY", "TIINGO_API_KEY", "FINNHUB_API_KEY",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"polygon"}, cfg.Providers)
	assert.Equal(t, "parquet", cfg.Cache)
	assert.Equal(t, "data/cache", cfg.CacheDir)
	assert.Equal(t, "parquet", cfg.CacheFormat)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 1000, cfg.CacheMaxEntries)
	assert.True(t, cfg.Validate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadDevProfilePicksCSV(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROFILE", "dev")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.CacheFormat)

	t.Setenv("PROFILE", "development")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.CacheFormat)

	// An explicit format wins over the profile.
	t.Setenv("MARKET_DATA_CACHE_FORMAT", "json")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.CacheFormat)
}

func TestLoadProviderChain(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKET_DATA_PROVIDERS", "polygon,tiingo,yahoo")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"polygon", "tiingo", "yahoo"}, cfg.Providers)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKET_DATA_PROVIDERS", "polygon,alpaca")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadRejectsUnknownCache(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKET_DATA_CACHE", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsNegativeTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKET_DATA_CACHE_TTL", "-5s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnparsableTTL(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKET_DATA_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read env config")
}

func TestLoadReadsKeysAndRedis(t *testing.T) {
	clearEnv(t)
	t.Setenv("POLYGON_API_KEY", "pk")
	t.Setenv("TIINGO_API_KEY", "tk")
	t.Setenv("FINNHUB_API_KEY", "fk")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pk", cfg.PolygonAPIKey)
	assert.Equal(t, "tk", cfg.TiingoAPIKey)
	assert.Equal(t, "fk", cfg.FinnhubAPIKey)
	assert.Equal(t, "redis:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestWarmPaths(t *testing.T) {
	cfg := &Config{CacheDir: "data/cache"}
	assert.Equal(t, "data/cache", cfg.WarmReportDir())
	assert.Equal(t, filepath.Join("data", "cache", ".warm.progress.json"), cfg.WarmProgressPath())
}
