// Package mock is an in-memory provider for tests and CI, no API keys
// required. Pre-load data with the Set helpers or rely on deterministic
// synthetic bars.
package mock

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// Provider serves configurable static data and synthesizes the rest.
// Safe for concurrent use.
type Provider struct {
	provider.Unsupported

	mu        sync.RWMutex
	bars      map[string][]model.Bar
	quotes    map[string]model.Quote
	snapshots map[string]model.Snapshot
	infos     map[string]model.TickerInfo
	earnings  map[string][]model.EarningsEvent
	dividends map[string][]model.DividendEvent
	actions   map[string][]model.CorporateAction
}

func New() *Provider {
	return &Provider{
		bars:      make(map[string][]model.Bar),
		quotes:    make(map[string]model.Quote),
		snapshots: make(map[string]model.Snapshot),
		infos:     make(map[string]model.TickerInfo),
		earnings:  make(map[string][]model.EarningsEvent),
		dividends: make(map[string][]model.DividendEvent),
		actions:   make(map[string][]model.CorporateAction),
	}
}

func (p *Provider) Name() string { return "mock" }

func (p *Provider) Capabilities() provider.CapabilitySet {
	return provider.NewCapabilitySet(
		provider.CapBars, provider.CapQuotes, provider.CapSnapshots,
		provider.CapTickerInfo, provider.CapEarnings, provider.CapDividends,
		provider.CapCorporateActions, provider.CapCalendar,
	)
}

// Pre-load helpers. Symbols are normalized upper-case.

func (p *Provider) SetBars(symbol string, bars []model.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bars[upper(symbol)] = bars
}

func (p *Provider) SetQuote(symbol string, q model.Quote) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotes[upper(symbol)] = q
}

func (p *Provider) SetSnapshot(symbol string, s model.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots[upper(symbol)] = s
}

func (p *Provider) SetTickerInfo(symbol string, info model.TickerInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.infos[upper(symbol)] = info
}

func (p *Provider) SetEarnings(symbol string, events []model.EarningsEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.earnings[upper(symbol)] = events
}

func (p *Provider) SetDividends(symbol string, events []model.DividendEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dividends[upper(symbol)] = events
}

func (p *Provider) SetCorporateActions(symbol string, actions []model.CorporateAction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions[upper(symbol)] = actions
}

// Provider implementation.

func (p *Provider) GetBars(_ context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error) {
	p.mu.RLock()
	preset, ok := p.bars[upper(symbol)]
	p.mu.RUnlock()

	if ok {
		var out []model.Bar
		for _, b := range preset {
			if !dayOf(b.Timestamp).Before(dayOf(start)) && !dayOf(b.Timestamp).After(dayOf(end)) {
				out = append(out, b)
			}
		}
		return out, nil
	}
	return generateBars(start, end, timeframe), nil
}

func (p *Provider) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	key := upper(symbol)
	p.mu.RLock()
	q, ok := p.quotes[key]
	p.mu.RUnlock()
	if ok {
		return q, nil
	}
	return model.Quote{
		Symbol:    key,
		Timestamp: time.Now().UTC(),
		BidPrice:  149.99,
		BidSize:   100,
		AskPrice:  150.01,
		AskSize:   200,
		LastPrice: model.Float64Ptr(150.00),
		LastSize:  model.Float64Ptr(50),
	}, nil
}

func (p *Provider) GetSnapshot(ctx context.Context, symbol string) (model.Snapshot, error) {
	key := upper(symbol)
	p.mu.RLock()
	s, ok := p.snapshots[key]
	p.mu.RUnlock()
	if ok {
		return s, nil
	}
	q, err := p.GetQuote(ctx, symbol)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Symbol: key, Quote: q}, nil
}

func (p *Provider) GetTickerInfo(_ context.Context, symbol string) (model.TickerInfo, error) {
	key := upper(symbol)
	p.mu.RLock()
	info, ok := p.infos[key]
	p.mu.RUnlock()
	if ok {
		return info, nil
	}
	return model.TickerInfo{Symbol: key, Name: key + " Inc.", Type: "CS"}, nil
}

func (p *Provider) GetEarnings(_ context.Context, symbol string, limit int) ([]model.EarningsEvent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return truncate(p.earnings[upper(symbol)], limit), nil
}

func (p *Provider) GetDividends(_ context.Context, symbol string, limit int) ([]model.DividendEvent, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return truncate(p.dividends[upper(symbol)], limit), nil
}

func (p *Provider) GetCorporateActions(_ context.Context, symbol string) ([]model.CorporateAction, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.actions[upper(symbol)], nil
}

// GetTradingDates returns plain weekdays, deliberately ignoring holidays.
func (p *Provider) GetTradingDates(_ context.Context, start, end time.Time) ([]time.Time, error) {
	var dates []time.Time
	for cur, last := dayOf(start), dayOf(end); !cur.After(last); cur = cur.AddDate(0, 0, 1) {
		if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates = append(dates, cur)
		}
	}
	return dates, nil
}

// generateBars synthesizes a deterministic series: weekdays only, sessions
// from 09:30 UTC, prices cycling around 150.
func generateBars(start, end time.Time, timeframe model.Timeframe) []model.Bar {
	const basePrice = 150.0

	minutes := timeframe.Minutes()
	if minutes <= 0 {
		minutes = 1
	}
	barsPerDay := 390 / minutes // 6.5 hours of trading

	var bars []model.Bar
	for cur, last := dayOf(start), dayOf(end); !cur.After(last); cur = cur.AddDate(0, 0, 1) {
		if wd := cur.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		y, m, d := cur.Date()
		marketOpen := time.Date(y, m, d, 9, 30, 0, 0, time.UTC)

		for i := 0; i < barsPerDay; i++ {
			o := basePrice + float64(i%5)*0.10
			h := o + 0.25
			l := o - 0.15
			c := o + 0.05
			bars = append(bars, model.Bar{
				Timestamp: marketOpen.Add(time.Duration(i*minutes) * time.Minute),
				Open:      round2(o),
				High:      round2(h),
				Low:       round2(l),
				Close:     round2(c),
				Volume:    10000.0 + float64(i)*100,
				VWAP:      model.Float64Ptr(round4((o + h + l + c) / 4)),
				NumTrades: model.Int64Ptr(int64(50 + i)),
			})
		}
	}
	return bars
}

func truncate[T any](events []T, limit int) []T {
	if limit >= 0 && len(events) > limit {
		return events[:limit]
	}
	return events
}

func upper(s string) string { return strings.ToUpper(s) }

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
