// Package polygon implements the Polygon.io REST adapter. It serves bars,
// quotes, snapshots, ticker reference, earnings and dividends; trading
// dates come from the local calendar since the free tier has no calendar
// endpoint.
package polygon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"marketdata/internal/calendar"
	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

const (
	defaultBaseURL = "https://api.polygon.io"
	maxLimit       = 50000
	pageInterval   = 250 * time.Millisecond
	dateLayout     = "2006-01-02"
)

// tfSpans maps a timeframe to Polygon's multiplier/timespan pair.
var tfSpans = map[model.Timeframe]struct {
	mult int
	span string
}{
	model.Timeframe1Min:  {1, "minute"},
	model.Timeframe5Min:  {5, "minute"},
	model.Timeframe15Min: {15, "minute"},
	model.Timeframe1Hour: {1, "hour"},
	model.Timeframe1Day:  {1, "day"},
}

// Provider fetches market data from the Polygon.io REST API.
type Provider struct {
	provider.Unsupported

	apiKey  string
	baseURL string
	client  *http.Client
	pace    *pacer
}

// New builds a Polygon provider. An empty apiKey falls back to the
// POLYGON_API_KEY environment variable.
func New(apiKey string) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("POLYGON_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.CodeAuthFailed, "polygon API key required, set POLYGON_API_KEY or pass a key")
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  newHTTPClient(),
		pace:    newPacer(pageInterval),
	}, nil
}

func (p *Provider) Name() string { return "polygon" }

func (p *Provider) Capabilities() provider.CapabilitySet {
	return provider.NewCapabilitySet(
		provider.CapBars,
		provider.CapQuotes,
		provider.CapSnapshots,
		provider.CapTickerInfo,
		provider.CapEarnings,
		provider.CapDividends,
		provider.CapCalendar,
	)
}

// GetBars fetches aggregates for the inclusive date range, following
// next_url pagination until the range is complete.
func (p *Provider) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error) {
	tf, ok := tfSpans[timeframe]
	if !ok {
		return nil, errs.Newf(errs.CodeProviderError, "invalid timeframe %q", timeframe)
	}

	sym := strings.ToUpper(symbol)
	u := p.baseURL + "/v2/aggs/ticker/" + url.PathEscape(sym) +
		"/range/" + strconv.Itoa(tf.mult) + "/" + tf.span +
		"/" + start.Format(dateLayout) + "/" + end.Format(dateLayout)
	params := url.Values{
		"adjusted": {"true"},
		"sort":     {"asc"},
		"limit":    {strconv.Itoa(maxLimit)},
	}

	var bars []model.Bar
	for u != "" {
		var page aggregatesResponse
		if err := p.getJSON(ctx, u, params, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			bars = append(bars, r.toBar())
		}
		u = page.NextURL
		params = nil // next_url already carries the query
	}
	return bars, nil
}

// GetQuote reads the last quote and trade from the stocks snapshot.
func (p *Provider) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	snap, err := p.fetchSnapshot(ctx, symbol)
	if err != nil {
		return model.Quote{}, err
	}
	return snapToQuote(symbol, snap), nil
}

// GetSnapshot reads the full stocks snapshot including today's change.
func (p *Provider) GetSnapshot(ctx context.Context, symbol string) (model.Snapshot, error) {
	snap, err := p.fetchSnapshot(ctx, symbol)
	if err != nil {
		return model.Snapshot{}, err
	}
	out := model.Snapshot{
		Symbol: strings.ToUpper(symbol),
		Quote:  snapToQuote(symbol, snap),
	}
	if snap.TodaysChange != 0 {
		out.Change = model.Float64Ptr(snap.TodaysChange)
	}
	if snap.TodaysChangePerc != 0 {
		out.ChangePct = model.Float64Ptr(snap.TodaysChangePerc)
	}
	return out, nil
}

func (p *Provider) fetchSnapshot(ctx context.Context, symbol string) (snapshotTicker, error) {
	u := p.baseURL + "/v2/snapshot/locale/us/markets/stocks/tickers/" + url.PathEscape(strings.ToUpper(symbol))
	var resp snapshotResponse
	if err := p.getJSON(ctx, u, nil, &resp); err != nil {
		return snapshotTicker{}, err
	}
	return resp.Ticker, nil
}

func snapToQuote(symbol string, snap snapshotTicker) model.Quote {
	q := model.Quote{
		Symbol:    strings.ToUpper(symbol),
		Timestamp: time.Now().UTC(),
		BidPrice:  snap.LastQuote.BidPrice,
		BidSize:   snap.LastQuote.BidSize,
		AskPrice:  snap.LastQuote.AskPrice,
		AskSize:   snap.LastQuote.AskSize,
	}
	if snap.LastTrade.Price != 0 {
		q.LastPrice = model.Float64Ptr(snap.LastTrade.Price)
		q.LastSize = model.Float64Ptr(snap.LastTrade.Size)
	}
	return q
}

// GetTickerInfo reads reference data from the v3 tickers endpoint.
func (p *Provider) GetTickerInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	sym := strings.ToUpper(symbol)
	u := p.baseURL + "/v3/reference/tickers/" + url.PathEscape(sym)
	var resp tickerDetailsResponse
	if err := p.getJSON(ctx, u, nil, &resp); err != nil {
		return model.TickerInfo{}, err
	}
	r := resp.Results

	info := model.TickerInfo{
		Symbol: sym,
		Name:   r.Name,
		Type:   r.Type,
	}
	if info.Name == "" {
		info.Name = sym
	}
	if info.Type == "" {
		info.Type = "CS"
	}
	if r.PrimaryExchange != "" {
		info.Exchange = model.StringPtr(r.PrimaryExchange)
	}
	if r.Cik != "" {
		info.Cik = model.StringPtr(string(r.Cik))
	}
	if r.CompositeFigi != "" {
		info.CompositeFigi = model.StringPtr(r.CompositeFigi)
	}
	if r.ShareClassFigi != "" {
		info.ShareClassFigi = model.StringPtr(r.ShareClassFigi)
	}
	if r.SicDescription != "" {
		info.Sector = model.StringPtr(r.SicDescription)
	}
	if r.MarketCap != 0 {
		info.MarketCap = model.Float64Ptr(r.MarketCap)
	}
	if r.ShareClassSharesOutstanding != 0 {
		info.SharesOutstanding = model.Float64Ptr(r.ShareClassSharesOutstanding)
	}
	return info, nil
}

// GetEarnings derives report dates from quarterly financial filings.
// Polygon has no dedicated earnings calendar, so filing_date stands in for
// the report date and the call time is assumed after close.
func (p *Provider) GetEarnings(ctx context.Context, symbol string, limit int) ([]model.EarningsEvent, error) {
	sym := strings.ToUpper(symbol)
	u := p.baseURL + "/vX/reference/financials"
	params := url.Values{
		"ticker": {sym},
		"limit":  {strconv.Itoa(limit)},
	}
	var resp financialsResponse
	if err := p.getJSON(ctx, u, params, &resp); err != nil {
		return nil, err
	}

	var events []model.EarningsEvent
	for _, r := range resp.Results {
		if r.FilingDate == "" {
			continue
		}
		reportDate, err := time.Parse(dateLayout, r.FilingDate)
		if err != nil {
			continue
		}
		ev := model.EarningsEvent{
			Symbol:     sym,
			ReportDate: reportDate.UTC(),
			CallTime:   model.StringPtr("AMC"),
		}
		if fp := r.FiscalPeriod; strings.HasPrefix(fp, "Q") && len(fp) > 1 {
			if q, err := strconv.Atoi(fp[1:2]); err == nil {
				ev.FiscalQuarter = model.IntPtr(q)
			}
		}
		if fy := string(r.FiscalYear); fy != "" {
			if y, err := strconv.Atoi(fy); err == nil {
				ev.FiscalYear = model.IntPtr(y)
			}
		}
		events = append(events, ev)
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// GetDividends reads cash dividends from the v3 reference endpoint.
func (p *Provider) GetDividends(ctx context.Context, symbol string, limit int) ([]model.DividendEvent, error) {
	sym := strings.ToUpper(symbol)
	u := p.baseURL + "/v3/reference/dividends"
	params := url.Values{
		"ticker": {sym},
		"limit":  {strconv.Itoa(limit)},
	}
	var resp dividendsResponse
	if err := p.getJSON(ctx, u, params, &resp); err != nil {
		return nil, err
	}

	var events []model.DividendEvent
	for _, r := range resp.Results {
		ev := model.DividendEvent{
			Symbol:       sym,
			ExDate:       parseDateOr(r.ExDividendDate, time.Now().UTC()),
			Amount:       r.CashAmount,
			DividendType: r.DividendType,
			Currency:     "USD",
		}
		if ev.DividendType == "" {
			ev.DividendType = "regular"
		}
		if d, ok := parseDate(r.RecordDate); ok {
			ev.RecordDate = model.TimePtr(d)
		}
		if d, ok := parseDate(r.PayDate); ok {
			ev.PayDate = model.TimePtr(d)
		}
		if d, ok := parseDate(r.DeclarationDate); ok {
			ev.DeclarationDate = model.TimePtr(d)
		}
		if r.Frequency != 0 {
			ev.Frequency = model.IntPtr(r.Frequency)
		}
		events = append(events, ev)
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// GetTradingDates serves the NYSE calendar locally.
func (p *Provider) GetTradingDates(_ context.Context, start, end time.Time) ([]time.Time, error) {
	return calendar.TradingDates(start, end), nil
}

func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// getJSON performs one paced GET with the API key attached and decodes the
// JSON body into out.
func (p *Provider) getJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if err := p.pace.wait(ctx); err != nil {
		return errs.Wrap(errs.CodeTimeout, false, err, "polygon request cancelled")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errs.Wrap(errs.CodeProviderError, false, err, "polygon request build failed")
	}
	q := req.URL.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("apiKey", p.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := p.client.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.CodeProviderError, true, err, "polygon response read failed")
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.Wrap(errs.CodeProviderError, true, err, "polygon response decode failed")
	}
	return nil
}

func checkStatus(status int) error {
	switch {
	case status == http.StatusTooManyRequests:
		return errs.Retryable(errs.CodeRateLimited, "polygon rate limited")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errs.New(errs.CodeAuthFailed, "polygon authentication failed")
	case status == http.StatusNotFound:
		return errs.New(errs.CodeNotFound, "symbol not found on polygon")
	case status < 200 || status > 299:
		return errs.Retryablef(errs.CodeProviderError, "polygon returned status %d", status)
	}
	return nil
}

func classifyTransport(err error) error {
	var ne interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return errs.Wrap(errs.CodeTimeout, true, err, "polygon request timed out")
	}
	return errs.Wrap(errs.CodeProviderError, true, err, "polygon request failed")
}

func msToTime(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d.UTC(), true
}

func parseDateOr(s string, fallback time.Time) time.Time {
	if d, ok := parseDate(s); ok {
		return d
	}
	return fallback
}
