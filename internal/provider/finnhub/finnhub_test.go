package finnhub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdata/internal/errs"
	"marketdata/internal/model"
)

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := resty.New().SetBaseURL(srv.URL)
	client.JSONMarshal = json.Marshal
	client.JSONUnmarshal = json.Unmarshal
	return &Provider{client: client}
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "")
	_, err := New("")
	require.Error(t, err)
	assert.Equal(t, errs.CodeAuthFailed, errs.CodeOf(err))

	p, err := New("secret")
	require.NoError(t, err)
	assert.Equal(t, "finnhub", p.Name())
	assert.Equal(t, "secret", p.client.Header.Get("X-Finnhub-Token"))
}

func TestGetBarsColumnCandles(t *testing.T) {
	var query map[string][]string
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/candle", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"o": [185.1, 185.7],
			"h": [186.0, 186.2],
			"l": [184.5, 185.0],
			"c": [185.6, 186.1],
			"v": [1000000, 950000],
			"t": [1704205800, 1704292200],
			"s": "ok"
		}`)
	})
	p := newTestProvider(t, mux)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	bars, err := p.GetBars(context.Background(), "aapl", start, end, model.Timeframe1Day)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, []string{"AAPL"}, query["symbol"])
	assert.Equal(t, []string{"D"}, query["resolution"])
	// from is the start of the first day, to the end of the last.
	assert.Equal(t, []string{strconv.FormatInt(start.Unix(), 10)}, query["from"])
	assert.Equal(t, []string{strconv.FormatInt(end.Unix()+86399, 10)}, query["to"])

	assert.True(t, bars[0].Timestamp.Equal(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)))
	assert.Equal(t, 185.6, bars[0].Close)
	assert.Equal(t, 186.1, bars[1].Close)
}

func TestGetBarsNoDataStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/candle", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"s": "no_data"}`)
	})
	p := newTestProvider(t, mux)

	bars, err := p.GetBars(context.Background(), "AAPL", time.Now(), time.Now(), model.Timeframe1Day)
	require.NoError(t, err)
	assert.Nil(t, bars)
}

func TestGetBarsRaggedColumnsTruncate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/candle", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"o": [1, 2], "h": [1, 2], "l": [1, 2], "c": [1],
			"v": [10, 20], "t": [1704205800, 1704292200], "s": "ok"
		}`)
	})
	p := newTestProvider(t, mux)

	bars, err := p.GetBars(context.Background(), "AAPL", time.Now(), time.Now(), model.Timeframe1Min)
	require.NoError(t, err)
	assert.Len(t, bars, 1)
}

func TestGetBarsRejectsUnknownTimeframe(t *testing.T) {
	p := newTestProvider(t, http.NotFoundHandler())
	_, err := p.GetBars(context.Background(), "AAPL", time.Now(), time.Now(), model.Timeframe("3week"))
	require.Error(t, err)
	assert.Equal(t, errs.CodeProviderError, errs.CodeOf(err))
}

func TestGetTickerInfoScalesMillions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/profile2", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"name": "Apple Inc",
			"ticker": "AAPL",
			"exchange": "NASDAQ NMS - GLOBAL MARKET",
			"cusip": "037833100",
			"isin": "US0378331005",
			"finnhubIndustry": "Technology",
			"marketCapitalization": 2800000,
			"shareOutstanding": 15600
		}`)
	})
	p := newTestProvider(t, mux)

	info, err := p.GetTickerInfo(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Symbol)
	assert.Equal(t, "Apple Inc", info.Name)
	require.NotNil(t, info.Cusip)
	assert.Equal(t, "037833100", *info.Cusip)
	require.NotNil(t, info.Isin)
	assert.Equal(t, "US0378331005", *info.Isin)
	require.NotNil(t, info.Sector)
	assert.Equal(t, "Technology", *info.Sector)
	// Profile reports millions; the model carries absolute values.
	require.NotNil(t, info.MarketCap)
	assert.Equal(t, 2.8e12, *info.MarketCap)
	require.NotNil(t, info.SharesOutstanding)
	assert.Equal(t, 1.56e10, *info.SharesOutstanding)
}

func TestGetTickerInfoEmptyProfileIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/profile2", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	})
	p := newTestProvider(t, mux)

	_, err := p.GetTickerInfo(context.Background(), "ZZZZ")
	require.Error(t, err)
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
}

func TestGetEarnings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/earnings", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"period": "2024-03-31", "quarter": 2, "year": 2024, "estimate": 1.5, "actual": 1.53},
			{"period": "2023-12-31", "quarter": 1, "year": 2024},
			{"period": "", "quarter": 4, "year": 2023},
			{"period": "Q3", "quarter": 3, "year": 2023}
		]`)
	})
	p := newTestProvider(t, mux)

	events, err := p.GetEarnings(context.Background(), "aapl", 10)
	require.NoError(t, err)
	require.Len(t, events, 2) // blank and unparseable periods dropped

	ev := events[0]
	assert.Equal(t, "AAPL", ev.Symbol)
	assert.True(t, ev.ReportDate.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, ev.FiscalQuarter)
	assert.Equal(t, 2, *ev.FiscalQuarter)
	require.NotNil(t, ev.EpsEstimate)
	assert.Equal(t, 1.5, *ev.EpsEstimate)
	require.NotNil(t, ev.EpsActual)
	assert.Equal(t, 1.53, *ev.EpsActual)

	assert.Nil(t, events[1].EpsEstimate)

	events, err = p.GetEarnings(context.Background(), "AAPL", 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      errs.Code
		retryable bool
	}{
		{429, errs.CodeRateLimited, true},
		{401, errs.CodeAuthFailed, false},
		{403, errs.CodeAuthFailed, false},
		{404, errs.CodeNotFound, false},
		{503, errs.CodeProviderError, true},
	}
	for _, tt := range tests {
		err := checkStatus(tt.status)
		require.Error(t, err, "status %d", tt.status)
		assert.Equal(t, tt.code, errs.CodeOf(err), "status %d", tt.status)
		assert.Equal(t, tt.retryable, errs.IsRetryable(err), "status %d", tt.status)
	}
	assert.NoError(t, checkStatus(200))
}

func TestRateLimitSurfacesRetryable(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	_, err := p.GetTickerInfo(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, errs.CodeRateLimited, errs.CodeOf(err))
	assert.True(t, errs.IsRetryable(err))
}
