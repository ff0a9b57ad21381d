// Package tiingo implements the Tiingo adapter. Daily bars come from the
// EOD endpoint, intraday bars and quotes from IEX, reference data from the
// daily metadata endpoint.
package tiingo

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

const (
	defaultBaseURL = "https://api.tiingo.com"
	dateLayout     = "2006-01-02"
)

// resampleFreqs maps intraday timeframes to the IEX resample frequency.
var resampleFreqs = map[model.Timeframe]string{
	model.Timeframe1Min:  "1min",
	model.Timeframe5Min:  "5min",
	model.Timeframe15Min: "15min",
	model.Timeframe1Hour: "60min",
}

// Provider fetches market data from the Tiingo REST API.
type Provider struct {
	provider.Unsupported

	client *resty.Client
}

// New builds a Tiingo provider. An empty apiKey falls back to the
// TIINGO_API_KEY environment variable.
func New(apiKey string) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("TIINGO_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.CodeAuthFailed, "tiingo API key required, set TIINGO_API_KEY or pass a key")
	}

	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Authorization", "Token "+apiKey).
		SetHeader("Content-Type", "application/json")
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &Provider{client: client}, nil
}

func (p *Provider) Name() string { return "tiingo" }

func (p *Provider) Capabilities() provider.CapabilitySet {
	return provider.NewCapabilitySet(
		provider.CapBars,
		provider.CapQuotes,
		provider.CapTickerInfo,
	)
}

type priceRow struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// GetBars routes 1day to the EOD endpoint and intraday timeframes to IEX.
func (p *Provider) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error) {
	sym := strings.ToLower(symbol)
	req := p.client.R().
		SetContext(ctx).
		SetQueryParam("startDate", start.Format(dateLayout)).
		SetQueryParam("endDate", end.Format(dateLayout)).
		SetResult(&[]priceRow{})

	var resp *resty.Response
	var err error
	switch {
	case timeframe == model.Timeframe1Day:
		resp, err = req.Get("/tiingo/daily/" + sym + "/prices")
	case resampleFreqs[timeframe] != "":
		req.SetQueryParam("resampleFreq", resampleFreqs[timeframe]).
			SetQueryParam("columns", "open,high,low,close,volume")
		resp, err = req.Get("/iex/" + sym + "/prices")
	default:
		return nil, errs.Newf(errs.CodeProviderError, "invalid timeframe %q", timeframe)
	}
	if err != nil {
		return nil, classifyTransport(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return nil, err
	}

	rows := *resp.Result().(*[]priceRow)
	bars := make([]model.Bar, 0, len(rows))
	for _, r := range rows {
		ts, err := parseTimestamp(r.Date)
		if err != nil {
			return nil, errs.Wrap(errs.CodeProviderError, true, err, "tiingo timestamp decode failed")
		}
		bars = append(bars, model.Bar{
			Timestamp: ts,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return bars, nil
}

type iexQuote struct {
	Ticker    string   `json:"ticker"`
	Timestamp string   `json:"timestamp"`
	BidPrice  *float64 `json:"bidPrice"`
	BidSize   *float64 `json:"bidSize"`
	AskPrice  *float64 `json:"askPrice"`
	AskSize   *float64 `json:"askSize"`
	Last      *float64 `json:"last"`
	LastSize  *float64 `json:"lastSize"`
}

// GetQuote reads the IEX top-of-book for a single ticker.
func (p *Provider) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("tickers", strings.ToLower(symbol)).
		SetResult(&[]iexQuote{}).
		Get("/iex/")
	if err != nil {
		return model.Quote{}, classifyTransport(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return model.Quote{}, err
	}

	rows := *resp.Result().(*[]iexQuote)
	if len(rows) == 0 {
		return model.Quote{}, errs.Newf(errs.CodeNotFound, "no IEX quote for %s", strings.ToUpper(symbol))
	}
	r := rows[0]

	q := model.Quote{
		Symbol:    strings.ToUpper(symbol),
		Timestamp: time.Now().UTC(),
	}
	if ts, err := parseTimestamp(r.Timestamp); err == nil {
		q.Timestamp = ts
	}
	if r.BidPrice != nil {
		q.BidPrice = *r.BidPrice
	}
	if r.BidSize != nil {
		q.BidSize = *r.BidSize
	}
	if r.AskPrice != nil {
		q.AskPrice = *r.AskPrice
	}
	if r.AskSize != nil {
		q.AskSize = *r.AskSize
	}
	if r.Last != nil {
		q.LastPrice = model.Float64Ptr(*r.Last)
	}
	if r.LastSize != nil {
		q.LastSize = model.Float64Ptr(*r.LastSize)
	}
	return q, nil
}

type dailyMeta struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ExchangeCode string `json:"exchangeCode"`
}

// GetTickerInfo reads the EOD metadata for a ticker.
func (p *Provider) GetTickerInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	sym := strings.ToUpper(symbol)
	resp, err := p.client.R().
		SetContext(ctx).
		SetResult(&dailyMeta{}).
		Get("/tiingo/daily/" + strings.ToLower(symbol))
	if err != nil {
		return model.TickerInfo{}, classifyTransport(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return model.TickerInfo{}, err
	}

	m := resp.Result().(*dailyMeta)
	info := model.TickerInfo{
		Symbol: sym,
		Name:   m.Name,
		Type:   "CS",
	}
	if info.Name == "" {
		info.Name = sym
	}
	if m.ExchangeCode != "" {
		info.Exchange = model.StringPtr(m.ExchangeCode)
	}
	if m.Description != "" {
		info.Subcategory = model.StringPtr(m.Description)
	}
	return info, nil
}

func (p *Provider) Close() error { return nil }

func checkStatus(status int) error {
	switch {
	case status == 429:
		return errs.Retryable(errs.CodeRateLimited, "tiingo rate limited")
	case status == 401 || status == 403:
		return errs.New(errs.CodeAuthFailed, "tiingo authentication failed")
	case status == 404:
		return errs.New(errs.CodeNotFound, "symbol not found on tiingo")
	case status < 200 || status > 299:
		return errs.Retryablef(errs.CodeProviderError, "tiingo returned status %d", status)
	}
	return nil
}

func classifyTransport(err error) error {
	var ne interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return errs.Wrap(errs.CodeTimeout, true, err, "tiingo request timed out")
	}
	return errs.Wrap(errs.CodeProviderError, true, err, "tiingo request failed")
}

// parseTimestamp accepts the formats Tiingo emits: RFC 3339 (EOD rows carry
// milliseconds, IEX rows a zone offset) and bare dates.
func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		ts, err = time.Parse(dateLayout, s)
	}
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
