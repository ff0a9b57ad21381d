// Package manager is the central orchestrator: cache lookup, provider
// fallback, quality gating and write-through, behind one façade.
package manager

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"marketdata/internal/cache"
	"marketdata/internal/calendar"
	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
	"marketdata/internal/quality"
)

// fanOutLimit bounds concurrent per-symbol requests in the multi-symbol
// operations. Fallback within one request stays sequential.
const fanOutLimit = 8

// Manager walks an ordered provider chain with a cache in front.
// Retryable provider errors advance the chain, non-retryable ones abort it.
type Manager struct {
	providers []provider.Provider
	cache     cache.Backend
	validate  bool
}

// New builds a Manager. A nil backend disables caching.
func New(providers []provider.Provider, backend cache.Backend, validate bool) *Manager {
	if backend == nil {
		backend = cache.NewNopCache()
	}
	return &Manager{providers: providers, cache: backend, validate: validate}
}

// GetBars serves bars from cache or the first provider that succeeds.
// When validation is on, a failing quality gate counts as a retryable
// provider failure and the next provider is tried.
func (m *Manager) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error) {
	rid := uuid.NewString()
	sym := strings.ToUpper(symbol)

	if bars, ok := m.cache.GetBars(ctx, sym, start, end, timeframe); ok {
		slog.Debug("cache hit", "request_id", rid, "symbol", sym, "timeframe", string(timeframe))
		return bars, nil
	}

	var lastErr error
	for _, p := range m.providers {
		if !p.Capabilities().Has(provider.CapBars) {
			continue
		}

		bars, err := p.GetBars(ctx, sym, start, end, timeframe)
		if err == nil && m.validate {
			if res := quality.ValidateBars(bars); !res.Passed() {
				err = validationError(res)
			}
		}
		if err != nil {
			if errors.Is(err, provider.ErrNotSupported) {
				continue
			}
			if !errs.IsRetryable(err) {
				slog.Warn("provider failed, aborting", "request_id", rid, "provider", p.Name(), "symbol", sym, "error", err)
				return nil, err
			}
			slog.Debug("provider failed, trying next", "request_id", rid, "provider", p.Name(), "symbol", sym, "error", err)
			lastErr = err
			continue
		}

		if err := m.cache.StoreBars(ctx, sym, bars, timeframe, start, end); err != nil {
			slog.Warn("cache store failed", "request_id", rid, "symbol", sym, "error", err)
		}
		slog.Debug("bars fetched", "request_id", rid, "provider", p.Name(), "symbol", sym, "timeframe", string(timeframe), "bars", len(bars))
		return bars, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errs.New(errs.CodeNoData, "all providers failed")
}

// firstCapable walks the chain for one capability. ErrNotSupported skips a
// provider without recording a failure; unclassified errors abort like
// non-retryable ones.
func firstCapable[T any](m *Manager, cap provider.Capability, call func(provider.Provider) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for _, p := range m.providers {
		if !p.Capabilities().Has(cap) {
			continue
		}
		out, err := call(p)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, provider.ErrNotSupported) {
			continue
		}
		if !errs.IsRetryable(err) {
			return zero, err
		}
		slog.Debug("provider failed, trying next", "provider", p.Name(), "capability", string(cap), "error", err)
		lastErr = err
	}
	if lastErr != nil {
		return zero, lastErr
	}
	return zero, errs.Newf(errs.CodeNoData, "no provider supports %q", cap)
}

// GetQuote returns a quote from the first capable provider.
func (m *Manager) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	return firstCapable(m, provider.CapQuotes, func(p provider.Provider) (model.Quote, error) {
		return p.GetQuote(ctx, symbol)
	})
}

// GetSnapshot returns a snapshot from the first capable provider.
func (m *Manager) GetSnapshot(ctx context.Context, symbol string) (model.Snapshot, error) {
	return firstCapable(m, provider.CapSnapshots, func(p provider.Provider) (model.Snapshot, error) {
		return p.GetSnapshot(ctx, symbol)
	})
}

// GetQuotes fans out over symbols with bounded concurrency, results in
// input order. One failing symbol fails the batch.
func (m *Manager) GetQuotes(ctx context.Context, symbols []string) ([]model.Quote, error) {
	out := make([]model.Quote, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			q, err := m.GetQuote(gctx, sym)
			if err != nil {
				return err
			}
			out[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSnapshots fans out over symbols with bounded concurrency, results in
// input order.
func (m *Manager) GetSnapshots(ctx context.Context, symbols []string) ([]model.Snapshot, error) {
	out := make([]model.Snapshot, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			s, err := m.GetSnapshot(gctx, sym)
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTickerInfo merges reference data across every capable provider in
// priority order. The first non-nil value per field wins; a provider error
// skips that provider entirely. Best effort, never fails.
func (m *Manager) GetTickerInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	sym := strings.ToUpper(symbol)
	merged := model.TickerInfo{Symbol: sym}

	for _, p := range m.providers {
		if !p.Capabilities().Has(provider.CapTickerInfo) {
			continue
		}
		info, err := p.GetTickerInfo(ctx, sym)
		if err != nil {
			slog.Debug("ticker info provider skipped", "provider", p.Name(), "symbol", sym, "error", err)
			continue
		}
		mergeTickerInfo(&merged, info)
	}

	if merged.Name == "" {
		merged.Name = sym
	}
	if merged.Type == "" {
		merged.Type = "CS"
	}
	return merged, nil
}

func mergeTickerInfo(dst *model.TickerInfo, src model.TickerInfo) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	if dst.Type == "" {
		dst.Type = src.Type
	}
	if dst.Exchange == nil {
		dst.Exchange = src.Exchange
	}
	if dst.Cusip == nil {
		dst.Cusip = src.Cusip
	}
	if dst.Isin == nil {
		dst.Isin = src.Isin
	}
	if dst.Cik == nil {
		dst.Cik = src.Cik
	}
	if dst.CompositeFigi == nil {
		dst.CompositeFigi = src.CompositeFigi
	}
	if dst.ShareClassFigi == nil {
		dst.ShareClassFigi = src.ShareClassFigi
	}
	if dst.Sector == nil {
		dst.Sector = src.Sector
	}
	if dst.Industry == nil {
		dst.Industry = src.Industry
	}
	if dst.Subcategory == nil {
		dst.Subcategory = src.Subcategory
	}
	if dst.MarketCap == nil {
		dst.MarketCap = src.MarketCap
	}
	if dst.SharesOutstanding == nil {
		dst.SharesOutstanding = src.SharesOutstanding
	}
	if dst.TradingHours == nil {
		dst.TradingHours = src.TradingHours
	}
	if dst.MinTick == nil {
		dst.MinTick = src.MinTick
	}
	if dst.Shortable == nil {
		dst.Shortable = src.Shortable
	}
}

// GetEarnings returns earnings from the first capable provider.
func (m *Manager) GetEarnings(ctx context.Context, symbol string, limit int) ([]model.EarningsEvent, error) {
	return firstCapable(m, provider.CapEarnings, func(p provider.Provider) ([]model.EarningsEvent, error) {
		return p.GetEarnings(ctx, symbol, limit)
	})
}

// GetDividends returns dividends from the first capable provider.
func (m *Manager) GetDividends(ctx context.Context, symbol string, limit int) ([]model.DividendEvent, error) {
	return firstCapable(m, provider.CapDividends, func(p provider.Provider) ([]model.DividendEvent, error) {
		return p.GetDividends(ctx, symbol, limit)
	})
}

// GetCorporateActions returns corporate actions from the first capable
// provider.
func (m *Manager) GetCorporateActions(ctx context.Context, symbol string) ([]model.CorporateAction, error) {
	return firstCapable(m, provider.CapCorporateActions, func(p provider.Provider) ([]model.CorporateAction, error) {
		return p.GetCorporateActions(ctx, symbol)
	})
}

// GetTradingDates asks the first calendar-capable provider, falling back
// to the local NYSE calendar when none is.
func (m *Manager) GetTradingDates(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	for _, p := range m.providers {
		if p.Capabilities().Has(provider.CapCalendar) {
			return p.GetTradingDates(ctx, start, end)
		}
	}
	return calendar.TradingDates(start, end), nil
}

// ClearCache drops cached bars for one symbol.
func (m *Manager) ClearCache(ctx context.Context, symbol string) error {
	return m.cache.Clear(ctx, strings.ToUpper(symbol))
}

// ClearAllCache drops the whole cache.
func (m *Manager) ClearAllCache(ctx context.Context) error {
	return m.cache.ClearAll(ctx)
}

// Close shuts down every provider.
func (m *Manager) Close() error {
	var errList []error
	for _, p := range m.providers {
		if err := p.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

func validationError(res quality.Result) error {
	failed := res.Failed()
	msgs := make([]string, 0, len(failed))
	for _, c := range failed {
		msgs = append(msgs, c.Message)
	}
	return errs.Retryablef(errs.CodeValidationFailed, "validation failed: %s", strings.Join(msgs, "; "))
}
