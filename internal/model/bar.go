package model

import "time"

// Bar represents one OHLCV bar (minute/daily etc.).
// Shared across providers, cache and serialization.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	VWAP      *float64  `json:"vwap,omitempty"`       // Volume weighted average price
	NumTrades *int64    `json:"num_trades,omitempty"` // Number of trades in the bar
}

// Float64Ptr and Int64Ptr build optional fields in place.
func Float64Ptr(v float64) *float64 { return &v }
func Int64Ptr(v int64) *int64       { return &v }
