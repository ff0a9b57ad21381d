// Package config reads application settings from the environment, with a
// .env file overlay for development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full application configuration. Providers are ordered by
// fallback priority.
type Config struct {
	Providers       []string      `envconfig:"MARKET_DATA_PROVIDERS" default:"polygon" validate:"min=1,dive,oneof=polygon tiingo finnhub yahoo mock"`
	Cache           string        `envconfig:"MARKET_DATA_CACHE" default:"parquet" validate:"oneof=parquet memory redis none"`
	CacheDir        string        `envconfig:"MARKET_DATA_CACHE_DIR" default:"data/cache"`
	CacheFormat     string        `envconfig:"MARKET_DATA_CACHE_FORMAT" validate:"omitempty,oneof=parquet csv json"`
	CacheTTL        time.Duration `envconfig:"MARKET_DATA_CACHE_TTL" default:"60s" validate:"min=0"`
	CacheMaxEntries int           `envconfig:"MARKET_DATA_CACHE_MAX_ENTRIES" default:"1000" validate:"min=0"`
	Validate        bool          `envconfig:"MARKET_DATA_VALIDATE" default:"true"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`

	PolygonAPIKey string `envconfig:"POLYGON_API_KEY"`
	TiingoAPIKey  string `envconfig:"TIINGO_API_KEY"`
	FinnhubAPIKey string `envconfig:"FINNHUB_API_KEY"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Load reads the environment into a validated Config. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	if cfg.CacheFormat == "" {
		cfg.CacheFormat = defaultCacheFormat()
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// defaultCacheFormat picks the disk codec from PROFILE: csv reads easier in
// dev, parquet is the production default.
func defaultCacheFormat() string {
	switch os.Getenv("PROFILE") {
	case "dev", "development":
		return "csv"
	default:
		return "parquet"
	}
}

// WarmReportDir is where warm runs drop their .lastrun reports.
func (c *Config) WarmReportDir() string {
	return c.CacheDir
}

// WarmProgressPath is the warm progress file tracking per-symbol coverage.
func (c *Config) WarmProgressPath() string {
	return filepath.Join(c.CacheDir, ".warm.progress.json")
}
