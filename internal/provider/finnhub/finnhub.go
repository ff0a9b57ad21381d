// Package finnhub implements the Finnhub adapter. Its profile endpoint is
// the best standalone source for identifiers (CUSIP, ISIN), so it mostly
// serves reference data and earnings; candles exist but the free tier has
// little history.
package finnhub

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"

	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// resolutions maps timeframes to the candle resolution parameter.
var resolutions = map[model.Timeframe]string{
	model.Timeframe1Min:  "1",
	model.Timeframe5Min:  "5",
	model.Timeframe15Min: "15",
	model.Timeframe1Hour: "60",
	model.Timeframe1Day:  "D",
}

// Provider fetches market data from the Finnhub REST API.
type Provider struct {
	provider.Unsupported

	client *resty.Client
}

// New builds a Finnhub provider. An empty apiKey falls back to the
// FINNHUB_API_KEY environment variable.
func New(apiKey string) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("FINNHUB_API_KEY")
	}
	if apiKey == "" {
		return nil, errs.New(errs.CodeAuthFailed, "finnhub API key required, set FINNHUB_API_KEY or pass a key")
	}

	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(30 * time.Second).
		SetHeader("X-Finnhub-Token", apiKey)
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal

	return &Provider{client: client}, nil
}

func (p *Provider) Name() string { return "finnhub" }

func (p *Provider) Capabilities() provider.CapabilitySet {
	return provider.NewCapabilitySet(
		provider.CapBars,
		provider.CapTickerInfo,
		provider.CapEarnings,
	)
}

// candleResponse is Finnhub's column-oriented candle payload. Status "ok"
// means data present, "no_data" means an empty range.
type candleResponse struct {
	Open      []float64 `json:"o"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Close     []float64 `json:"c"`
	Volume    []float64 `json:"v"`
	Timestamp []int64   `json:"t"`
	Status    string    `json:"s"`
}

// GetBars fetches candles for the inclusive date range. A non-ok status is
// an empty result, not an error.
func (p *Provider) GetBars(ctx context.Context, symbol string, start, end time.Time, timeframe model.Timeframe) ([]model.Bar, error) {
	res, ok := resolutions[timeframe]
	if !ok {
		return nil, errs.Newf(errs.CodeProviderError, "invalid timeframe %q", timeframe)
	}

	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC).Unix()
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC).Unix()

	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     strings.ToUpper(symbol),
			"resolution": res,
			"from":       strconv.FormatInt(from, 10),
			"to":         strconv.FormatInt(to, 10),
		}).
		SetResult(&candleResponse{}).
		Get("/stock/candle")
	if err != nil {
		return nil, classifyTransport(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return nil, err
	}

	c := resp.Result().(*candleResponse)
	if c.Status != "ok" {
		return nil, nil
	}

	bars := make([]model.Bar, 0, len(c.Timestamp))
	for i := range c.Timestamp {
		if i >= len(c.Open) || i >= len(c.High) || i >= len(c.Low) || i >= len(c.Close) || i >= len(c.Volume) {
			break
		}
		bars = append(bars, model.Bar{
			Timestamp: time.Unix(c.Timestamp[i], 0).UTC(),
			Open:      c.Open[i],
			High:      c.High[i],
			Low:       c.Low[i],
			Close:     c.Close[i],
			Volume:    c.Volume[i],
		})
	}
	return bars, nil
}

type companyProfile struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	Exchange             string  `json:"exchange"`
	Cusip                string  `json:"cusip"`
	Isin                 string  `json:"isin"`
	FinnhubIndustry      string  `json:"finnhubIndustry"`
	MarketCapitalization float64 `json:"marketCapitalization"` // millions
	ShareOutstanding     float64 `json:"shareOutstanding"`     // millions
}

// GetTickerInfo reads the company profile. An empty profile means the
// symbol is unknown.
func (p *Provider) GetTickerInfo(ctx context.Context, symbol string) (model.TickerInfo, error) {
	sym := strings.ToUpper(symbol)
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", sym).
		SetResult(&companyProfile{}).
		Get("/stock/profile2")
	if err != nil {
		return model.TickerInfo{}, classifyTransport(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return model.TickerInfo{}, err
	}

	pr := resp.Result().(*companyProfile)
	if pr.Name == "" && pr.Ticker == "" {
		return model.TickerInfo{}, errs.Newf(errs.CodeNotFound, "no profile for %s", sym)
	}

	info := model.TickerInfo{
		Symbol: sym,
		Name:   pr.Name,
		Type:   "CS",
	}
	if info.Name == "" {
		info.Name = sym
	}
	if pr.Exchange != "" {
		info.Exchange = model.StringPtr(pr.Exchange)
	}
	if pr.Cusip != "" {
		info.Cusip = model.StringPtr(pr.Cusip)
	}
	if pr.Isin != "" {
		info.Isin = model.StringPtr(pr.Isin)
	}
	if pr.FinnhubIndustry != "" {
		info.Sector = model.StringPtr(pr.FinnhubIndustry)
		info.Industry = model.StringPtr(pr.FinnhubIndustry)
	}
	if pr.MarketCapitalization != 0 {
		info.MarketCap = model.Float64Ptr(pr.MarketCapitalization * 1e6)
	}
	if pr.ShareOutstanding != 0 {
		info.SharesOutstanding = model.Float64Ptr(pr.ShareOutstanding * 1e6)
	}
	return info, nil
}

type earningsRow struct {
	Period   string   `json:"period"`
	Quarter  *int     `json:"quarter"`
	Year     *int     `json:"year"`
	Estimate *float64 `json:"estimate"`
	Actual   *float64 `json:"actual"`
}

// GetEarnings reads reported quarterly EPS surprises.
func (p *Provider) GetEarnings(ctx context.Context, symbol string, limit int) ([]model.EarningsEvent, error) {
	sym := strings.ToUpper(symbol)
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": sym,
			"limit":  strconv.Itoa(limit),
		}).
		SetResult(&[]earningsRow{}).
		Get("/stock/earnings")
	if err != nil {
		return nil, classifyTransport(err)
	}
	if err := checkStatus(resp.StatusCode()); err != nil {
		return nil, err
	}

	rows := *resp.Result().(*[]earningsRow)
	var events []model.EarningsEvent
	for _, r := range rows {
		if r.Period == "" {
			continue
		}
		reportDate, err := time.Parse("2006-01-02", r.Period)
		if err != nil {
			continue
		}
		ev := model.EarningsEvent{
			Symbol:        sym,
			ReportDate:    reportDate.UTC(),
			FiscalQuarter: r.Quarter,
			FiscalYear:    r.Year,
			EpsEstimate:   r.Estimate,
			EpsActual:     r.Actual,
		}
		events = append(events, ev)
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (p *Provider) Close() error { return nil }

func checkStatus(status int) error {
	switch {
	case status == 429:
		return errs.Retryable(errs.CodeRateLimited, "finnhub rate limited")
	case status == 401 || status == 403:
		return errs.New(errs.CodeAuthFailed, "finnhub authentication failed")
	case status == 404:
		return errs.New(errs.CodeNotFound, "symbol not found on finnhub")
	case status < 200 || status > 299:
		return errs.Retryablef(errs.CodeProviderError, "finnhub returned status %d", status)
	}
	return nil
}

func classifyTransport(err error) error {
	var ne interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return errs.Wrap(errs.CodeTimeout, true, err, "finnhub request timed out")
	}
	return errs.Wrap(errs.CodeProviderError, true, err, "finnhub request failed")
}
