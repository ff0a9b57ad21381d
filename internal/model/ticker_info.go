package model

// TickerInfo is reference data for a ticker, merged across providers.
// Pointer fields are optional: nil means "not supplied yet", so a merge can
// tell an absent value from a zero one.
type TickerInfo struct {
	Symbol            string   `json:"symbol"`
	Name              string   `json:"name"`
	Type              string   `json:"type"` // CS, ETF, ADR, ...
	Exchange          *string  `json:"exchange,omitempty"`
	Cusip             *string  `json:"cusip,omitempty"`
	Isin              *string  `json:"isin,omitempty"`
	Cik               *string  `json:"cik,omitempty"`
	CompositeFigi     *string  `json:"composite_figi,omitempty"`
	ShareClassFigi    *string  `json:"share_class_figi,omitempty"`
	Sector            *string  `json:"sector,omitempty"`
	Industry          *string  `json:"industry,omitempty"`
	Subcategory       *string  `json:"subcategory,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	SharesOutstanding *float64 `json:"shares_outstanding,omitempty"`
	TradingHours      *string  `json:"trading_hours,omitempty"`
	MinTick           *float64 `json:"min_tick,omitempty"`
	Shortable         *bool    `json:"shortable,omitempty"`
}

// StringPtr and BoolPtr build optional fields in place.
func StringPtr(v string) *string { return &v }
func BoolPtr(v bool) *bool       { return &v }
