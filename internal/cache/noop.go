package cache

import (
	"context"
	"time"

	"marketdata/internal/model"
)

// NopCache misses every read and drops every write. Used when caching is
// disabled in config.
type NopCache struct{}

func NewNopCache() NopCache { return NopCache{} }

func (NopCache) GetBars(context.Context, string, time.Time, time.Time, model.Timeframe) ([]model.Bar, bool) {
	return nil, false
}

func (NopCache) StoreBars(context.Context, string, []model.Bar, model.Timeframe, time.Time, time.Time) error {
	return nil
}

func (NopCache) HasData(context.Context, string, model.Timeframe, time.Time, time.Time) bool {
	return false
}

func (NopCache) Clear(context.Context, string) error { return nil }

func (NopCache) ClearAll(context.Context) error { return nil }
