package model

import "time"

// Quote is a point-in-time bid/ask with an optional last trade.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	BidPrice  float64   `json:"bid_price"`
	BidSize   float64   `json:"bid_size"`
	AskPrice  float64   `json:"ask_price"`
	AskSize   float64   `json:"ask_size"`
	LastPrice *float64  `json:"last_price,omitempty"`
	LastSize  *float64  `json:"last_size,omitempty"`
}

// Spread returns the bid-ask spread in dollars.
func (q Quote) Spread() float64 { return q.AskPrice - q.BidPrice }

// Mid returns the midpoint price.
func (q Quote) Mid() float64 { return (q.BidPrice + q.AskPrice) / 2 }
