package manager

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdata/internal/cache"
	"marketdata/internal/errs"
	"marketdata/internal/model"
	"marketdata/internal/provider"
)

var (
	testStart = time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)
)

// stubProvider is a scriptable chain member. Zero value serves nothing;
// set caps plus the matching fields.
type stubProvider struct {
	provider.Unsupported

	name string
	caps provider.CapabilitySet

	bars      []model.Bar
	barsErr   error
	barsCalls atomic.Int32

	quoteErr error

	info    model.TickerInfo
	infoErr error

	dates    []time.Time
	datesErr error

	closeErr error
	closed   bool
}

func (s *stubProvider) Name() string                         { return s.name }
func (s *stubProvider) Capabilities() provider.CapabilitySet { return s.caps }

func (s *stubProvider) GetBars(_ context.Context, _ string, _, _ time.Time, _ model.Timeframe) ([]model.Bar, error) {
	s.barsCalls.Add(1)
	if s.barsErr != nil {
		return nil, s.barsErr
	}
	return s.bars, nil
}

func (s *stubProvider) GetQuote(_ context.Context, symbol string) (model.Quote, error) {
	if s.quoteErr != nil {
		return model.Quote{}, s.quoteErr
	}
	return model.Quote{Symbol: strings.ToUpper(symbol), BidPrice: 99.9, AskPrice: 100.1}, nil
}

func (s *stubProvider) GetSnapshot(ctx context.Context, symbol string) (model.Snapshot, error) {
	q, err := s.GetQuote(ctx, symbol)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Symbol: q.Symbol, Quote: q}, nil
}

func (s *stubProvider) GetTickerInfo(_ context.Context, _ string) (model.TickerInfo, error) {
	if s.infoErr != nil {
		return model.TickerInfo{}, s.infoErr
	}
	return s.info, nil
}

func (s *stubProvider) GetTradingDates(_ context.Context, _, _ time.Time) ([]time.Time, error) {
	return s.dates, s.datesErr
}

func (s *stubProvider) Close() error {
	s.closed = true
	return s.closeErr
}

// goodBars builds a series that passes every quality check.
func goodBars(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Timestamp: testStart.Add(time.Duration(i) * time.Minute),
			Open:      100, High: 100.5, Low: 99.5, Close: 100,
			Volume: 1000,
		}
	}
	return bars
}

func barsOnly(name string) *stubProvider {
	return &stubProvider{name: name, caps: provider.NewCapabilitySet(provider.CapBars)}
}

func TestGetBarsCacheHit(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Hour, 10)
	require.NoError(t, mem.StoreBars(ctx, "AAPL", goodBars(5), model.Timeframe1Day, testStart, testEnd))

	p := barsOnly("stub")
	m := New([]provider.Provider{p}, mem, true)

	bars, err := m.GetBars(ctx, "aapl", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Len(t, bars, 5)
	assert.Equal(t, int32(0), p.barsCalls.Load(), "cache hit must not touch providers")
}

func TestGetBarsWriteThrough(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Hour, 10)

	p := barsOnly("stub")
	p.bars = goodBars(5)
	m := New([]provider.Provider{p}, mem, true)

	_, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.True(t, mem.HasData(ctx, "AAPL", model.Timeframe1Day, testStart, testEnd))

	// Second call is served from cache.
	_, err = m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.barsCalls.Load())
}

func TestGetBarsFallbackOnRetryable(t *testing.T) {
	ctx := context.Background()

	p1 := barsOnly("limited")
	p1.barsErr = errs.Retryable(errs.CodeRateLimited, "429 from provider")
	p2 := barsOnly("backup")
	p2.bars = goodBars(3)

	m := New([]provider.Provider{p1, p2}, nil, true)

	bars, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Len(t, bars, 3)
	assert.Equal(t, int32(1), p1.barsCalls.Load())
	assert.Equal(t, int32(1), p2.barsCalls.Load())
}

func TestGetBarsNonRetryableAborts(t *testing.T) {
	ctx := context.Background()

	p1 := barsOnly("primary")
	p1.barsErr = errs.New(errs.CodeAuthFailed, "bad API key")
	p2 := barsOnly("backup")
	p2.bars = goodBars(3)

	m := New([]provider.Provider{p1, p2}, nil, true)

	_, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.Error(t, err)
	assert.Equal(t, errs.CodeAuthFailed, errs.CodeOf(err))
	assert.Equal(t, int32(0), p2.barsCalls.Load(), "auth failure must not leak to the next provider")
}

func TestGetBarsUnclassifiedErrorAborts(t *testing.T) {
	ctx := context.Background()

	p1 := barsOnly("primary")
	p1.barsErr = errors.New("mystery failure")
	p2 := barsOnly("backup")
	p2.bars = goodBars(3)

	m := New([]provider.Provider{p1, p2}, nil, true)

	_, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.Error(t, err)
	assert.Equal(t, int32(0), p2.barsCalls.Load())
}

func TestGetBarsAllProvidersFail(t *testing.T) {
	ctx := context.Background()

	p1 := barsOnly("first")
	p1.barsErr = errs.Retryable(errs.CodeRateLimited, "429")
	p2 := barsOnly("second")
	p2.barsErr = errs.Retryable(errs.CodeTimeout, "deadline")

	m := New([]provider.Provider{p1, p2}, nil, true)

	_, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.Error(t, err)
	// The last provider's error surfaces.
	assert.Equal(t, errs.CodeTimeout, errs.CodeOf(err))
}

func TestGetBarsNoCapableProvider(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{name: "quotes-only", caps: provider.NewCapabilitySet(provider.CapQuotes)}

	m := New([]provider.Provider{p}, nil, true)

	_, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.Error(t, err)
	assert.Equal(t, errs.CodeNoData, errs.CodeOf(err))
	assert.Equal(t, int32(0), p.barsCalls.Load())
}

func TestGetBarsNotSupportedSkipsSilently(t *testing.T) {
	ctx := context.Background()

	p1 := barsOnly("claims-but-cannot")
	p1.barsErr = provider.ErrNotSupported
	p2 := barsOnly("backup")
	p2.bars = goodBars(2)

	m := New([]provider.Provider{p1, p2}, nil, true)

	bars, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestGetBarsValidationGate(t *testing.T) {
	ctx := context.Background()

	bad := goodBars(3)
	bad[1].High = 90 // below low, fails ohlc_consistency

	p1 := barsOnly("dirty")
	p1.bars = bad
	p2 := barsOnly("clean")
	p2.bars = goodBars(3)

	m := New([]provider.Provider{p1, p2}, nil, true)
	bars, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Equal(t, 100.5, bars[1].High, "clean provider's data wins")

	// Single dirty provider: the validation error surfaces.
	m = New([]provider.Provider{p1}, nil, true)
	_, err = m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.Error(t, err)
	assert.Equal(t, errs.CodeValidationFailed, errs.CodeOf(err))
	assert.True(t, errs.IsRetryable(err))

	// With validation off, dirty data passes through.
	m = New([]provider.Provider{p1}, nil, false)
	bars, err = m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Equal(t, 90.0, bars[1].High)
}

func TestGetBarsEmptySeriesNotCached(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Hour, 10)

	p := barsOnly("empty")
	m := New([]provider.Provider{p}, mem, false)

	bars, err := m.GetBars(ctx, "NODATA", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Empty(t, bars)
	assert.False(t, mem.HasData(ctx, "NODATA", model.Timeframe1Day, testStart, testEnd),
		"absence of data must not be cached")
}

func TestGetQuoteWalksToCapableProvider(t *testing.T) {
	ctx := context.Background()

	p1 := barsOnly("bars-only")
	p2 := &stubProvider{name: "quoter", caps: provider.NewCapabilitySet(provider.CapQuotes)}

	m := New([]provider.Provider{p1, p2}, nil, true)

	q, err := m.GetQuote(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
}

func TestGetQuoteNoCapableProvider(t *testing.T) {
	m := New([]provider.Provider{barsOnly("bars-only")}, nil, true)

	_, err := m.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Equal(t, errs.CodeNoData, errs.CodeOf(err))
}

func TestGetQuotesPreservesOrder(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{name: "quoter", caps: provider.NewCapabilitySet(provider.CapQuotes)}
	m := New([]provider.Provider{p}, nil, true)

	symbols := []string{"aapl", "msft", "goog", "amzn", "meta", "nvda", "tsla", "nflx", "amd", "intc"}
	quotes, err := m.GetQuotes(ctx, symbols)
	require.NoError(t, err)
	require.Len(t, quotes, len(symbols))
	for i, sym := range symbols {
		assert.Equal(t, strings.ToUpper(sym), quotes[i].Symbol)
	}
}

func TestGetQuotesOneFailureFailsBatch(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{
		name:     "flaky",
		caps:     provider.NewCapabilitySet(provider.CapQuotes),
		quoteErr: errs.New(errs.CodeNotFound, "unknown symbol"),
	}
	m := New([]provider.Provider{p}, nil, true)

	quotes, err := m.GetQuotes(ctx, []string{"AAPL", "MSFT"})
	require.Error(t, err)
	assert.Nil(t, quotes)
}

func TestGetSnapshotsPreservesOrder(t *testing.T) {
	ctx := context.Background()
	p := &stubProvider{name: "snapper", caps: provider.NewCapabilitySet(provider.CapSnapshots)}
	m := New([]provider.Provider{p}, nil, true)

	snaps, err := m.GetSnapshots(ctx, []string{"spy", "qqq"})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "SPY", snaps[0].Symbol)
	assert.Equal(t, "QQQ", snaps[1].Symbol)
}

func TestGetTickerInfoMergesAcrossProviders(t *testing.T) {
	ctx := context.Background()

	p1 := &stubProvider{
		name: "primary",
		caps: provider.NewCapabilitySet(provider.CapTickerInfo),
		info: model.TickerInfo{
			Symbol: "AAPL",
			Name:   "Apple Inc.",
			Cusip:  model.StringPtr("037833100"),
		},
	}
	p2 := &stubProvider{
		name: "secondary",
		caps: provider.NewCapabilitySet(provider.CapTickerInfo),
		info: model.TickerInfo{
			Symbol:    "AAPL",
			Name:      "APPLE INC",
			Sector:    model.StringPtr("Technology"),
			MarketCap: model.Float64Ptr(2.8e12),
		},
	}

	m := New([]provider.Provider{p1, p2}, nil, true)

	info, err := m.GetTickerInfo(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Symbol)
	assert.Equal(t, "Apple Inc.", info.Name, "higher-priority name wins")
	require.NotNil(t, info.Cusip)
	assert.Equal(t, "037833100", *info.Cusip)
	require.NotNil(t, info.Sector)
	assert.Equal(t, "Technology", *info.Sector)
	require.NotNil(t, info.MarketCap)
	assert.Equal(t, "CS", info.Type, "unset type defaults to common stock")
}

func TestGetTickerInfoSurvivesProviderErrors(t *testing.T) {
	ctx := context.Background()

	p1 := &stubProvider{
		name:    "broken",
		caps:    provider.NewCapabilitySet(provider.CapTickerInfo),
		infoErr: errs.Retryable(errs.CodeProviderError, "500"),
	}
	p2 := &stubProvider{
		name: "working",
		caps: provider.NewCapabilitySet(provider.CapTickerInfo),
		info: model.TickerInfo{Symbol: "MSFT", Name: "Microsoft Corporation"},
	}

	m := New([]provider.Provider{p1, p2}, nil, true)
	info, err := m.GetTickerInfo(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "Microsoft Corporation", info.Name)

	// Every provider failing still yields defaults, not an error.
	m = New([]provider.Provider{p1}, nil, true)
	info, err = m.GetTickerInfo(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", info.Name)
	assert.Equal(t, "CS", info.Type)
}

func TestGetTradingDatesLocalFallback(t *testing.T) {
	m := New([]provider.Provider{barsOnly("no-calendar")}, nil, true)

	dates, err := m.GetTradingDates(context.Background(), testStart, testEnd)
	require.NoError(t, err)
	assert.Len(t, dates, 5, "plain Mon-Fri week")
}

func TestGetTradingDatesPrefersProvider(t *testing.T) {
	want := []time.Time{testStart}
	p := &stubProvider{
		name:  "exchange-calendar",
		caps:  provider.NewCapabilitySet(provider.CapCalendar),
		dates: want,
	}
	m := New([]provider.Provider{p}, nil, true)

	dates, err := m.GetTradingDates(context.Background(), testStart, testEnd)
	require.NoError(t, err)
	assert.Equal(t, want, dates)

	p.datesErr = errs.Retryable(errs.CodeProviderError, "down")
	_, err = m.GetTradingDates(context.Background(), testStart, testEnd)
	assert.Error(t, err, "calendar provider errors propagate, no silent fallback")
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(time.Hour, 10)

	p := barsOnly("stub")
	p.bars = goodBars(2)
	m := New([]provider.Provider{p}, mem, true)

	_, err := m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	require.True(t, mem.HasData(ctx, "AAPL", model.Timeframe1Day, testStart, testEnd))

	require.NoError(t, m.ClearCache(ctx, "aapl"))
	assert.False(t, mem.HasData(ctx, "AAPL", model.Timeframe1Day, testStart, testEnd))

	// Refetch hits the provider again.
	_, err = m.GetBars(ctx, "AAPL", testStart, testEnd, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Equal(t, int32(2), p.barsCalls.Load())
}

func TestCloseCollectsErrors(t *testing.T) {
	p1 := barsOnly("ok")
	p2 := barsOnly("broken")
	p2.closeErr = errors.New("connection leak")

	m := New([]provider.Provider{p1, p2}, nil, true)
	err := m.Close()
	require.Error(t, err)
	assert.True(t, p1.closed)
	assert.True(t, p2.closed)
	assert.Contains(t, err.Error(), "connection leak")
}
