package earnings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// DefaultCachePath is where FetchAndCache writes when no path is given.
const DefaultCachePath = "data/reference/earnings_calendar.json"

const (
	fetchLimit    = 20
	lookbackDays  = 730
	lookaheadDays = 90
)

// Fetcher builds earnings calendars from any earnings-capable provider.
type Fetcher struct {
	provider provider.Provider
}

// NewFetcher wraps p, which must advertise the earnings capability.
func NewFetcher(p provider.Provider) (*Fetcher, error) {
	if !p.Capabilities().Has(provider.CapEarnings) {
		return nil, errs.Newf(errs.CodeProviderError, "provider %s does not serve earnings", p.Name())
	}
	return &Fetcher{provider: p}, nil
}

// FetchEarnings collects events for the symbols inside [start, end]. Zero
// times default to two years back and ninety days ahead. A symbol whose
// fetch fails is skipped, not fatal.
func (f *Fetcher) FetchEarnings(ctx context.Context, symbols []string, start, end time.Time) (*Calendar, error) {
	now := time.Now().UTC()
	if start.IsZero() {
		start = now.AddDate(0, 0, -lookbackDays)
	}
	if end.IsZero() {
		end = now.AddDate(0, 0, lookaheadDays)
	}
	s, e := dateOf(start), dateOf(end)

	cal := NewCalendar()
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return cal, err
		}
		events, err := f.provider.GetEarnings(ctx, sym, fetchLimit)
		if err != nil {
			slog.Warn("earnings fetch failed, skipping symbol", "symbol", sym, "provider", f.provider.Name(), "error", err)
			continue
		}
		for _, ev := range events {
			d := dateOf(ev.ReportDate)
			if d.Before(s) || d.After(e) {
				continue
			}
			cal.AddEvent(eventFromModel(ev))
		}
	}
	return cal, nil
}

// FetchAndCache fetches and persists the calendar. An empty path uses
// DefaultCachePath.
func (f *Fetcher) FetchAndCache(ctx context.Context, symbols []string, path string, start, end time.Time) (*Calendar, error) {
	if path == "" {
		path = DefaultCachePath
	}
	cal, err := f.FetchEarnings(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	if err := cal.Save(path); err != nil {
		return nil, err
	}
	return cal, nil
}

func eventFromModel(ev model.EarningsEvent) Event {
	out := Event{
		Symbol:       ev.Symbol,
		EarningsDate: dateOf(ev.ReportDate),
		CallTime:     Unknown,
	}
	if ev.CallTime != nil {
		out.CallTime = ParseCallTime(*ev.CallTime)
	}
	if ev.FiscalQuarter != nil {
		out.FiscalQuarter = fmt.Sprintf("Q%d", *ev.FiscalQuarter)
	}
	if ev.FiscalYear != nil {
		out.FiscalYear = *ev.FiscalYear
	}
	return out
}
