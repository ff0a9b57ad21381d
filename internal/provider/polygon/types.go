package polygon

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"

	"marketdata/internal/model"
)

// barRaw is a raw aggregate row. Volume arrives as int, float or
// scientific-notation string depending on the endpoint, so it needs a
// flexible decoder; vw and n are absent on some rows.
type barRaw struct {
	Timestamp int64           `json:"t"` // Unix milliseconds
	Open      float64         `json:"o"`
	High      float64         `json:"h"`
	Low       float64         `json:"l"`
	Close     float64         `json:"c"`
	Volume    FlexibleFloat64 `json:"v"`
	VWAP      *float64        `json:"vw"`
	NumTrades *FlexibleInt64  `json:"n"`
}

func (br barRaw) toBar() model.Bar {
	b := model.Bar{
		Timestamp: msToTime(br.Timestamp),
		Open:      br.Open,
		High:      br.High,
		Low:       br.Low,
		Close:     br.Close,
		Volume:    float64(br.Volume),
	}
	if br.VWAP != nil {
		b.VWAP = model.Float64Ptr(*br.VWAP)
	}
	if br.NumTrades != nil {
		b.NumTrades = model.Int64Ptr(int64(*br.NumTrades))
	}
	return b
}

// aggregatesResponse is the paginated bars payload; NextURL drives the
// pagination loop.
type aggregatesResponse struct {
	Ticker       string   `json:"ticker"`
	QueryCount   int      `json:"queryCount"`
	ResultsCount int      `json:"resultsCount"`
	Adjusted     bool     `json:"adjusted"`
	Results      []barRaw `json:"results"`
	Status       string   `json:"status"`
	RequestID    string   `json:"request_id"`
	Count        int      `json:"count"`
	NextURL      string   `json:"next_url"`
}

type snapshotResponse struct {
	Ticker snapshotTicker `json:"ticker"`
}

type snapshotTicker struct {
	LastQuote        lastQuote `json:"lastQuote"`
	LastTrade        lastTrade `json:"lastTrade"`
	TodaysChange     float64   `json:"todaysChange"`
	TodaysChangePerc float64   `json:"todaysChangePerc"`
}

type lastQuote struct {
	BidPrice float64 `json:"p"`
	BidSize  float64 `json:"s"`
	AskPrice float64 `json:"P"`
	AskSize  float64 `json:"S"`
}

type lastTrade struct {
	Price float64 `json:"p"`
	Size  float64 `json:"s"`
}

type tickerDetailsResponse struct {
	Results tickerDetails `json:"results"`
}

type tickerDetails struct {
	Name                        string         `json:"name"`
	Type                        string         `json:"type"`
	PrimaryExchange             string         `json:"primary_exchange"`
	Cik                         FlexibleString `json:"cik"`
	CompositeFigi               string         `json:"composite_figi"`
	ShareClassFigi              string         `json:"share_class_figi"`
	SicDescription              string         `json:"sic_description"`
	MarketCap                   float64        `json:"market_cap"`
	ShareClassSharesOutstanding float64        `json:"share_class_shares_outstanding"`
}

type financialsResponse struct {
	Results []financialResult `json:"results"`
}

type financialResult struct {
	FilingDate   string         `json:"filing_date"`
	FiscalPeriod string         `json:"fiscal_period"`
	FiscalYear   FlexibleString `json:"fiscal_year"`
}

type dividendsResponse struct {
	Results []dividendResult `json:"results"`
}

type dividendResult struct {
	ExDividendDate  string  `json:"ex_dividend_date"`
	CashAmount      float64 `json:"cash_amount"`
	RecordDate      string  `json:"record_date"`
	PayDate         string  `json:"pay_date"`
	DeclarationDate string  `json:"declaration_date"`
	DividendType    string  `json:"dividend_type"`
	Frequency       int     `json:"frequency"`
}

// FlexibleInt64 parses int, float (scientific notation) or numeric string
// to int64.
type FlexibleInt64 int64

func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	var intVal int64
	if err := json.Unmarshal(data, &intVal); err == nil {
		*f = FlexibleInt64(intVal)
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// FlexibleFloat64 parses a float or a numeric string to float64.
type FlexibleFloat64 float64

func (f *FlexibleFloat64) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleFloat64(val)
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleFloat64(floatVal)
		return nil
	}

	return fmt.Errorf("cannot parse as float64: %s", string(data))
}

// FlexibleString parses a string or a bare number to string (cik and
// fiscal_year flip between the two across API versions).
type FlexibleString string

func (f *FlexibleString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = FlexibleString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexibleString(num.String())
		return nil
	}

	return fmt.Errorf("cannot parse as string: %s", string(data))
}
