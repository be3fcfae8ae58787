// Package models defines data structures for Equitas
package models

import (
	"sort"
	"strconv"
	"time"
)

// Provenance values for forecast-year metrics. Actual years carry no
// source tag; serialization omits the field so downstream consumers that
// ignore provenance see actual and forecast rows in the same shape.
const (
	MetricSourceGenerated = "generated"
	MetricSourceFallback  = "fallback"
)

// FiscalYearMetrics is one fiscal year's derived panel row.
//
// Currency values are in millions. Margins, growth rates, tax rate, ROCE
// and ROE are percentages and default to 0 when the denominator is not
// strictly positive. Ratio fields that require market data are nil when
// not computable — nil means "not computable", 0 means "computed as zero".
type FiscalYearMetrics struct {
	Revenue      float64 `json:"revenue"`
	AdjEBITDA    float64 `json:"adj_ebitda"`
	AdjEBIT      float64 `json:"adj_ebit"`
	AdjNetIncome float64 `json:"adj_net_income"`
	NetMargin    float64 `json:"net_margin"`
	AdjEPS       float64 `json:"adj_eps"`
	CFO          float64 `json:"cfo"`
	FCFF         float64 `json:"fcff"`

	RevenueGrowth float64 `json:"revenue_growth"`
	EBITDAMargin  float64 `json:"ebitda_margin"`
	EBITDAGrowth  float64 `json:"ebitda_growth"`
	EBITMargin    float64 `json:"ebit_margin"`
	AdjEPSGrowth  float64 `json:"adj_eps_growth"`
	AdjTaxRate    float64 `json:"adj_tax_rate"`
	ROCE          float64 `json:"roce"`
	ROE           float64 `json:"roe"`

	InterestCover   *float64 `json:"interest_cover"`
	NetDebtToEquity *float64 `json:"net_debt_equity"`
	NetDebtToEBITDA *float64 `json:"net_debt_ebitda"`
	FCFFYield       *float64 `json:"fcff_yield"`
	DividendYield   *float64 `json:"dividend_yield"`
	EVToEBITDA      *float64 `json:"ev_ebitda"`
	EVToRevenue     *float64 `json:"ev_revenue"`
	AdjPE           *float64 `json:"adj_pe"`

	Source string `json:"source,omitempty"` // "", "generated" or "fallback"
}

// MetricsPanel maps fiscal-year labels (4-digit strings) to derived
// metrics. Actual vs forecast membership is not stored: it is re-derived
// against the latest statement year each run, because a new filing can
// turn a cached forecast year into an actual year.
type MetricsPanel struct {
	Ticker        string                        `json:"ticker"`
	FiscalYearEnd string                        `json:"fiscal_year_end"` // month label, default "Dec"
	Metrics       map[string]*FiscalYearMetrics `json:"metrics"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// NewMetricsPanel creates an empty panel for a ticker.
func NewMetricsPanel(ticker string) *MetricsPanel {
	return &MetricsPanel{
		Ticker:        ticker,
		FiscalYearEnd: "Dec",
		Metrics:       make(map[string]*FiscalYearMetrics),
	}
}

// Years returns all panel years sorted ascending.
func (p *MetricsPanel) Years() []string {
	years := make([]string, 0, len(p.Metrics))
	for y := range p.Metrics {
		years = append(years, y)
	}
	sort.Slice(years, func(i, j int) bool { return yearNum(years[i]) < yearNum(years[j]) })
	return years
}

// ActualYears returns panel years at or before latestActual, ascending.
func (p *MetricsPanel) ActualYears(latestActual string) []string {
	cutoff := yearNum(latestActual)
	var years []string
	for _, y := range p.Years() {
		if yearNum(y) <= cutoff {
			years = append(years, y)
		}
	}
	return years
}

// ForecastYears returns panel years after latestActual, ascending.
func (p *MetricsPanel) ForecastYears(latestActual string) []string {
	cutoff := yearNum(latestActual)
	var years []string
	for _, y := range p.Years() {
		if yearNum(y) > cutoff {
			years = append(years, y)
		}
	}
	return years
}

// LatestYear returns the highest year label in the panel, or "".
func (p *MetricsPanel) LatestYear() string {
	years := p.Years()
	if len(years) == 0 {
		return ""
	}
	return years[len(years)-1]
}

func yearNum(y string) int {
	n, _ := strconv.Atoi(y)
	return n
}

// Float64Ptr returns a pointer to v. Helper for nullable ratio fields.
func Float64Ptr(v float64) *float64 {
	return &v
}
