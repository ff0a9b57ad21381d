// Package cache provides the pluggable bar-cache backends consulted by the
// manager before any provider call: a no-op backend, an in-memory TTL+LRU
// backend, a disk backend with pluggable codecs, and a redis backend.
package cache

import (
	"context"
	"strings"
	"time"

	"marketdata/internal/model"
)

const dateLayout = "2006-01-02"

// Backend is the cache contract. All backends key on the exact request
// range; there are no partial-range or subset lookups. Storing an empty
// series is a no-op on every backend so absence of data is never cached.
type Backend interface {
	// GetBars returns the cached series for the exact range, or ok=false on
	// absence, expiry or unreadable data. A miss has no side effects beyond
	// backend-internal expiry housekeeping.
	GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, bool)
	// StoreBars records the series under the exact range. Empty series are
	// dropped silently.
	StoreBars(ctx context.Context, symbol string, bars []model.Bar, timeframe model.Timeframe, start, end time.Time) error
	// HasData reports whether a live entry exists for the exact range.
	HasData(ctx context.Context, symbol string, timeframe model.Timeframe, start, end time.Time) bool
	// Clear drops every entry for one symbol; ClearAll drops everything.
	Clear(ctx context.Context, symbol string) error
	ClearAll(ctx context.Context) error
}

// Key builds the canonical cache key: SYMBOL|timeframe|start|end with
// day-resolution dates. Symbols are upper-cased so lookups are
// case-insensitive.
func Key(symbol string, timeframe model.Timeframe, start, end time.Time) string {
	return strings.ToUpper(symbol) + "|" + string(timeframe) + "|" +
		start.Format(dateLayout) + "|" + end.Format(dateLayout)
}
