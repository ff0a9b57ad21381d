// Package yahoo implements the Yahoo Finance adapter on top of
// piquette/finance-go. It needs no API key, which makes it the usual
// fallback at the end of the provider chain.
package yahoo

import (
	"context"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

// intervals maps timeframes to Yahoo chart intervals.
var intervals = map[model.Timeframe]datetime.Interval{
	model.Timeframe1Min:  datetime.OneMin,
	model.Timeframe5Min:  datetime.FiveMins,
	model.Timeframe15Min: datetime.FifteenMins,
	model.Timeframe1Hour: datetime.OneHour,
	model.Timeframe1Day:  datetime.OneDay,
}

// Provider fetches market data from Yahoo Finance.
type Provider struct {
	provider.Unsupported
}

// New builds a Yahoo provider.
func New() *Provider { return &Provider{} }

func (p *Provider) Name() string { return "yahoo" }

func (p *Provider) Capabilities() provider.CapabilitySet {
	return provider.NewCapabilitySet(
		provider.CapBars,
		provider.CapQuotes,
		provider.CapSnapshots,
	)
}

// GetBars fetches chart bars for the inclusive date range. The chart API
// treats the end as exclusive, so the range extends one day past it.
func (p *Provider) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error) {
	interval, ok := intervals[timeframe]
	if !ok {
		return nil, errs.Newf(errs.CodeProviderError, "invalid timeframe %q", timeframe)
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeTimeout, false, err, "yahoo request cancelled")
	}

	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	iter := chart.Get(&chart.Params{
		Symbol:   strings.ToUpper(symbol),
		Start:    datetime.New(&from),
		End:      datetime.New(&to),
		Interval: interval,
	})

	var bars []model.Bar
	for iter.Next() {
		bars = append(bars, chartBarToBar(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeProviderError, true, err, "yahoo chart failed")
	}
	return bars, nil
}

// GetQuote reads the regular-market quote.
func (p *Provider) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	q, err := p.fetchQuote(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}
	return quoteToModel(symbol, q), nil
}

// GetSnapshot assembles a snapshot from the regular-market quote fields.
func (p *Provider) GetSnapshot(ctx context.Context, symbol string) (model.Snapshot, error) {
	q, err := p.fetchQuote(ctx, symbol)
	if err != nil {
		return model.Snapshot{}, err
	}
	return snapshotFromQuote(symbol, q), nil
}

func (p *Provider) fetchQuote(ctx context.Context, symbol string) (*finance.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeTimeout, false, err, "yahoo request cancelled")
	}
	q, err := quote.Get(strings.ToUpper(symbol))
	if err != nil {
		return nil, errs.Wrap(errs.CodeProviderError, true, err, "yahoo quote failed")
	}
	if q == nil {
		return nil, errs.Newf(errs.CodeNotFound, "no quote for %s", strings.ToUpper(symbol))
	}
	return q, nil
}

func (p *Provider) Close() error { return nil }

func chartBarToBar(cb *finance.ChartBar) model.Bar {
	return model.Bar{
		Timestamp: time.Unix(int64(cb.Timestamp), 0).UTC(),
		Open:      cb.Open.InexactFloat64(),
		High:      cb.High.InexactFloat64(),
		Low:       cb.Low.InexactFloat64(),
		Close:     cb.Close.InexactFloat64(),
		Volume:    float64(cb.Volume),
	}
}

func quoteToModel(symbol string, q *finance.Quote) model.Quote {
	out := model.Quote{
		Symbol:    strings.ToUpper(symbol),
		Timestamp: time.Now().UTC(),
		BidPrice:  q.Bid,
		BidSize:   float64(q.BidSize),
		AskPrice:  q.Ask,
		AskSize:   float64(q.AskSize),
	}
	if q.RegularMarketTime != 0 {
		out.Timestamp = time.Unix(int64(q.RegularMarketTime), 0).UTC()
	}
	if q.RegularMarketPrice != 0 {
		out.LastPrice = model.Float64Ptr(q.RegularMarketPrice)
	}
	return out
}

func snapshotFromQuote(symbol string, q *finance.Quote) model.Snapshot {
	out := model.Snapshot{
		Symbol: strings.ToUpper(symbol),
		Quote:  quoteToModel(symbol, q),
	}
	if q.RegularMarketOpen != 0 || q.RegularMarketVolume != 0 {
		ts := out.Quote.Timestamp
		out.DailyBar = &model.Bar{
			Timestamp: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Open:      q.RegularMarketOpen,
			High:      q.RegularMarketDayHigh,
			Low:       q.RegularMarketDayLow,
			Close:     q.RegularMarketPrice,
			Volume:    float64(q.RegularMarketVolume),
		}
	}
	if q.RegularMarketChange != 0 {
		out.Change = model.Float64Ptr(q.RegularMarketChange)
	}
	if q.RegularMarketChangePercent != 0 {
		out.ChangePct = model.Float64Ptr(q.RegularMarketChangePercent)
	}
	return out
}
