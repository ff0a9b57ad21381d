package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketdata/internal/model"
	"marketdata/internal/provider"
)

var (
	monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	friday = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
)

func TestCapabilitiesCoverEverything(t *testing.T) {
	caps := New().Capabilities()
	for _, c := range []provider.Capability{
		provider.CapBars, provider.CapQuotes, provider.CapSnapshots,
		provider.CapTickerInfo, provider.CapEarnings, provider.CapDividends,
		provider.CapCorporateActions, provider.CapCalendar,
	} {
		assert.True(t, caps.Has(c), string(c))
	}
}

func TestGetBarsSynthetic(t *testing.T) {
	ctx := context.Background()
	p := New()

	daily, err := p.GetBars(ctx, "AAPL", monday, friday, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Len(t, daily, 5, "one daily bar per weekday")

	minute, err := p.GetBars(ctx, "AAPL", monday, monday, model.Timeframe1Min)
	require.NoError(t, err)
	assert.Len(t, minute, 390, "full session of minute bars")
	assert.True(t, minute[1].Timestamp.After(minute[0].Timestamp))

	five, err := p.GetBars(ctx, "AAPL", monday, monday, model.Timeframe5Min)
	require.NoError(t, err)
	assert.Len(t, five, 78)
}

func TestGetBarsSkipsWeekends(t *testing.T) {
	ctx := context.Background()
	saturday := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	sunday := saturday.AddDate(0, 0, 1)

	bars, err := New().GetBars(ctx, "AAPL", saturday, sunday, model.Timeframe1Day)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestGetBarsPresetFiltersRange(t *testing.T) {
	ctx := context.Background()
	p := New()
	p.SetBars("aapl", []model.Bar{
		{Timestamp: monday, Close: 1},
		{Timestamp: monday.AddDate(0, 0, 1), Close: 2},
		{Timestamp: monday.AddDate(0, 0, 9), Close: 3}, // outside range
	})

	bars, err := p.GetBars(ctx, "AAPL", monday, friday, model.Timeframe1Day)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 2.0, bars[1].Close)
}

func TestGetQuoteDefaults(t *testing.T) {
	q, err := New().GetQuote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 149.99, q.BidPrice)
	assert.Equal(t, 150.01, q.AskPrice)
	require.NotNil(t, q.LastPrice)
	assert.Equal(t, 150.00, *q.LastPrice)
}

func TestGetQuotePreset(t *testing.T) {
	p := New()
	p.SetQuote("MSFT", model.Quote{Symbol: "MSFT", BidPrice: 401.5, AskPrice: 401.7})

	q, err := p.GetQuote(context.Background(), "msft")
	require.NoError(t, err)
	assert.Equal(t, 401.5, q.BidPrice)
}

func TestGetSnapshotWrapsQuote(t *testing.T) {
	s, err := New().GetSnapshot(context.Background(), "spy")
	require.NoError(t, err)
	assert.Equal(t, "SPY", s.Symbol)
	assert.Equal(t, "SPY", s.Quote.Symbol)
	assert.Nil(t, s.DailyBar)
}

func TestGetTickerInfoDefaults(t *testing.T) {
	info, err := New().GetTickerInfo(context.Background(), "tsla")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", info.Symbol)
	assert.Equal(t, "TSLA Inc.", info.Name)
	assert.Equal(t, "CS", info.Type)
}

func TestGetEarningsLimit(t *testing.T) {
	ctx := context.Background()
	p := New()
	events := []model.EarningsEvent{
		{Symbol: "AAPL", ReportDate: monday},
		{Symbol: "AAPL", ReportDate: monday.AddDate(0, -3, 0)},
		{Symbol: "AAPL", ReportDate: monday.AddDate(0, -6, 0)},
	}
	p.SetEarnings("AAPL", events)

	got, err := p.GetEarnings(ctx, "AAPL", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	all, err := p.GetEarnings(ctx, "AAPL", -1)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := p.GetEarnings(ctx, "UNSET", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetTradingDatesWeekdaysOnly(t *testing.T) {
	// Jan 15 2024 is MLK Day; the mock deliberately ignores holidays.
	dates, err := New().GetTradingDates(context.Background(),
		time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, dates, 5)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), dates[0])
}
