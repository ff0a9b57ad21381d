// Package provider defines the data-source contract the manager walks.
// Implementations serve only the endpoints they support and advertise them
// via Capabilities; everything except bar fetching may be unsupported.
package provider

import (
	"context"
	"errors"
	"time"

	"marketdata/internal/model"
)

// ErrNotSupported is returned by operations a provider does not implement.
// The manager skips such providers without recording a failure.
var ErrNotSupported = errors.New("operation not supported by provider")

// Capability names one operation family a provider can serve.
type Capability string

const (
	CapBars             Capability = "bars"
	CapQuotes           Capability = "quotes"
	CapSnapshots        Capability = "snapshots"
	CapTickerInfo       Capability = "ticker_info"
	CapEarnings         Capability = "earnings"
	CapDividends        Capability = "dividends"
	CapCorporateActions Capability = "corporate_actions"
	CapCalendar         Capability = "calendar"
)

// CapabilitySet is the set of capabilities a provider advertises.
type CapabilitySet map[Capability]bool

// NewCapabilitySet builds a set from the given capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = true
	}
	return s
}

// Has reports whether the set contains c.
func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// Provider is the abstraction used when accessing a market data source.
// GetBars is mandatory; embed Unsupported to default the rest. Returned
// bars are ordered by timestamp ascending, ranges are inclusive dates.
type Provider interface {
	Name() string
	Capabilities() CapabilitySet

	GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error)

	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetSnapshot(ctx context.Context, symbol string) (model.Snapshot, error)

	GetTickerInfo(ctx context.Context, symbol string) (model.TickerInfo, error)
	GetEarnings(ctx context.Context, symbol string, limit int) ([]model.EarningsEvent, error)
	GetDividends(ctx context.Context, symbol string, limit int) ([]model.DividendEvent, error)
	GetCorporateActions(ctx context.Context, symbol string) ([]model.CorporateAction, error)

	GetTradingDates(ctx context.Context, start, end time.Time) ([]time.Time, error)

	Close() error
}

// Unsupported defaults every optional operation to ErrNotSupported.
// Adapters embed it and override what they actually serve; GetBars stays a
// compile-time obligation.
type Unsupported struct{}

func (Unsupported) GetQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, ErrNotSupported
}

func (Unsupported) GetSnapshot(context.Context, string) (model.Snapshot, error) {
	return model.Snapshot{}, ErrNotSupported
}

func (Unsupported) GetTickerInfo(context.Context, string) (model.TickerInfo, error) {
	return model.TickerInfo{}, ErrNotSupported
}

func (Unsupported) GetEarnings(context.Context, string, int) ([]model.EarningsEvent, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetDividends(context.Context, string, int) ([]model.DividendEvent, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetCorporateActions(context.Context, string) ([]model.CorporateAction, error) {
	return nil, ErrNotSupported
}

func (Unsupported) GetTradingDates(context.Context, time.Time, time.Time) ([]time.Time, error) {
	return nil, ErrNotSupported
}

func (Unsupported) Close() error { return nil }
