package models

// Raw per-endpoint shapes returned by the market-data client. The
// research service merges these into a CompanySnapshot.

// PriceBar is one end-of-day observation from the price history endpoint.
type PriceBar struct {
	Date          string  `json:"date"`
	Close         float64 `json:"close"`
	ChangePercent float64 `json:"changePercent"`
	Volume        float64 `json:"volume"`
}

// CompanyProfile holds the profile-endpoint fields the pipeline uses.
type CompanyProfile struct {
	Ticker    string  `json:"symbol"`
	MarketCap float64 `json:"mktCap"`
	Currency  string  `json:"currency"`
	Exchange  string  `json:"exchangeShortName"`
}

// SharesFloat holds share count and free float from the float endpoint.
type SharesFloat struct {
	SharesOutstanding float64 `json:"sharesOutstanding"`
	FreeFloatPct      float64 `json:"freeFloat"`
}

// Quote holds the quote-endpoint fields the pipeline uses.
type Quote struct {
	Price     float64 `json:"price"`
	YearHigh  float64 `json:"yearHigh"`
	YearLow   float64 `json:"yearLow"`
	AvgVolume float64 `json:"avgVolume"`
}

// GradesConsensus holds analyst rating counts and the consensus label.
type GradesConsensus struct {
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
	Consensus  string `json:"consensus"`
	Total      int    `json:"total"`
}

// RatingCounts returns the per-grade counts as a map for snapshot storage.
func (g *GradesConsensus) RatingCounts() map[string]int {
	return map[string]int{
		"strongBuy":  g.StrongBuy,
		"buy":        g.Buy,
		"hold":       g.Hold,
		"sell":       g.Sell,
		"strongSell": g.StrongSell,
	}
}
