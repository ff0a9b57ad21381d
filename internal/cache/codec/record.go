package codec

import (
	"time"

	"marketdata/internal/model"
)

// barRecord is the flat on-disk row shared by all codecs. Timestamps are
// Unix milliseconds so the round trip is exact; vwap and num_trades stay
// nullable.
type barRecord struct {
	Timestamp int64    `json:"t" parquet:"timestamp"`
	Open      float64  `json:"o" parquet:"open"`
	High      float64  `json:"h" parquet:"high"`
	Low       float64  `json:"l" parquet:"low"`
	Close     float64  `json:"c" parquet:"close"`
	Volume    float64  `json:"v" parquet:"volume"`
	VWAP      *float64 `json:"vw,omitempty" parquet:"vwap,optional"`
	NumTrades *int64   `json:"n,omitempty" parquet:"num_trades,optional"`
}

func toRecords(bars []model.Bar) []barRecord {
	recs := make([]barRecord, len(bars))
	for i, b := range bars {
		recs[i] = barRecord{
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
			VWAP:      b.VWAP,
			NumTrades: b.NumTrades,
		}
	}
	return recs
}

func fromRecords(recs []barRecord) []model.Bar {
	bars := make([]model.Bar, len(recs))
	for i, r := range recs {
		bars[i] = model.Bar{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
			VWAP:      r.VWAP,
			NumTrades: r.NumTrades,
		}
	}
	return bars
}
