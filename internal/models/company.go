package models

import "time"

// CompanySnapshot holds point-in-time market facts for a ticker as of a
// date. Identity key is (ticker, as_of_date); a snapshot is immutable
// once persisted — a new as_of_date creates a new record.
//
// Numeric fields the pipeline depends on are pointers: nil distinguishes
// "never fetched / unavailable" from a genuine zero.
type CompanySnapshot struct {
	Ticker   string `json:"ticker"`
	AsOfDate string `json:"as_of_date"` // YYYY-MM-DD

	SharesOutstanding *float64 `json:"shares_outstanding"`
	MarketCap         *float64 `json:"market_cap"`
	Currency          string   `json:"currency"`
	FXRate            float64  `json:"fx_rate"`
	FreeFloatPct      *float64 `json:"free_float_pct"` // optional: may be nil in a complete record
	AvgVolume3MShares *float64 `json:"avg_daily_volume_3m_shares"`
	AvgVolume3MUSD    *float64 `json:"avg_daily_volume_3m_usd"`
	Volatility90D     *float64 `json:"volatility_90d"`
	High52W           *float64 `json:"52w_high"`
	Low52W            *float64 `json:"52w_low"`
	PrimaryIndexName  string   `json:"primary_index_name"`

	AnalystRatingCounts map[string]int `json:"analyst_rating_counts"`
	ConsensusRating     string         `json:"consensus_rating"`
	NumAnalysts         int            `json:"num_analysts"`

	CreatedAt time.Time `json:"created_at"`
}

// CurrentPrice estimates the share price from market cap and shares
// outstanding. Returns 0 when either input is missing.
func (s *CompanySnapshot) CurrentPrice() float64 {
	if s.MarketCap == nil || s.SharesOutstanding == nil || *s.SharesOutstanding <= 0 {
		return 0
	}
	return *s.MarketCap / *s.SharesOutstanding
}

// PricePoint is one observation in a rebased price series.
type PricePoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	Close        float64 `json:"close"`
	RebasedClose float64 `json:"rebased_close"` // close / firstClose * 100
}

// PricePerformanceSeries holds parallel subject and benchmark series for
// a (ticker, start, end) window. Each series is rebased on its own first
// observation independently.
type PricePerformanceSeries struct {
	Ticker    string       `json:"ticker"`
	BaseIndex string       `json:"base_index"`
	StartDate string       `json:"start_date"`
	EndDate   string       `json:"end_date"`
	StockData []PricePoint `json:"stock_data"`
	IndexData []PricePoint `json:"index_data"`
	CreatedAt time.Time    `json:"created_at"`
}

// TotalReturn returns the subject series' simple return over the window
// as a percentage, or 0 when the series is empty or starts at zero.
func (s *PricePerformanceSeries) TotalReturn() float64 {
	if len(s.StockData) == 0 {
		return 0
	}
	first := s.StockData[0].Close
	last := s.StockData[len(s.StockData)-1].Close
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}
