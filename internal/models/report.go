package models

import (
	"time"

	"github.com/google/uuid"
)

// EquityReport is the assembled payload handed to presentation: metrics
// panel, company snapshot, price performance, and narrative. The
// pipeline produces it; rendering consumes it.
type EquityReport struct {
	ID               string                  `json:"id"`
	Ticker           string                  `json:"ticker"`
	GeneratedAt      time.Time               `json:"generated_at"`
	LatestActualYear string                  `json:"latest_actual_year"`
	Snapshot         *CompanySnapshot        `json:"snapshot,omitempty"`
	PricePerformance *PricePerformanceSeries `json:"price_performance,omitempty"`
	Panel            *MetricsPanel           `json:"panel,omitempty"`
	News             *CompanyNews            `json:"news,omitempty"`
	Narrative        string                  `json:"narrative,omitempty"`
	ChartKey         string                  `json:"chart_key,omitempty"` // stored chart PNG key
}

// NewEquityReport creates a report shell for a ticker.
func NewEquityReport(ticker string) *EquityReport {
	return &EquityReport{
		ID:          uuid.NewString(),
		Ticker:      ticker,
		GeneratedAt: time.Now(),
	}
}
