package research

import (
	"testing"

	"github.com/bobmcallan/equitas/internal/models"
)

func completeSnapshot() *models.CompanySnapshot {
	return &models.CompanySnapshot{
		Ticker:            "TEST",
		AsOfDate:          "2025-06-30",
		SharesOutstanding: models.Float64Ptr(100e6),
		MarketCap:         models.Float64Ptr(3000e6),
		Currency:          "USD",
		AvgVolume3MShares: models.Float64Ptr(1e6),
		AvgVolume3MUSD:    models.Float64Ptr(30e6),
		Volatility90D:     models.Float64Ptr(22.5),
		High52W:           models.Float64Ptr(35),
		Low52W:            models.Float64Ptr(20),
	}
}

func TestSnapshotComplete(t *testing.T) {
	if !SnapshotComplete(completeSnapshot()) {
		t.Error("fully populated snapshot should pass the gate")
	}
	if SnapshotComplete(nil) {
		t.Error("nil snapshot should fail the gate")
	}
}

func TestSnapshotCompleteMissingRequired(t *testing.T) {
	cases := map[string]func(*models.CompanySnapshot){
		"shares outstanding": func(s *models.CompanySnapshot) { s.SharesOutstanding = nil },
		"market cap":         func(s *models.CompanySnapshot) { s.MarketCap = nil },
		"currency":           func(s *models.CompanySnapshot) { s.Currency = "" },
		"avg volume shares":  func(s *models.CompanySnapshot) { s.AvgVolume3MShares = nil },
		"avg volume usd":     func(s *models.CompanySnapshot) { s.AvgVolume3MUSD = nil },
		"volatility":         func(s *models.CompanySnapshot) { s.Volatility90D = nil },
		"52w high":           func(s *models.CompanySnapshot) { s.High52W = nil },
		"52w low":            func(s *models.CompanySnapshot) { s.Low52W = nil },
	}
	for name, clear := range cases {
		s := completeSnapshot()
		clear(s)
		if SnapshotComplete(s) {
			t.Errorf("snapshot missing %s should fail the gate", name)
		}
	}
}

func TestSnapshotCompleteFreeFloatOptional(t *testing.T) {
	s := completeSnapshot()
	s.FreeFloatPct = nil
	if !SnapshotComplete(s) {
		t.Error("missing free float must not fail the gate")
	}
}

func TestPriceSeriesComplete(t *testing.T) {
	series := &models.PricePerformanceSeries{
		StockData: []models.PricePoint{{Date: "2025-01-01", Close: 50, RebasedClose: 100}},
		IndexData: []models.PricePoint{{Date: "2025-01-01", Close: 400, RebasedClose: 100}},
	}
	if !PriceSeriesComplete(series) {
		t.Error("series with both legs should pass")
	}

	series.IndexData = nil
	if PriceSeriesComplete(series) {
		t.Error("series missing the benchmark leg should fail")
	}
	if PriceSeriesComplete(nil) {
		t.Error("nil series should fail")
	}
}

func TestPanelComplete(t *testing.T) {
	panel := models.NewMetricsPanel("TEST")
	if PanelComplete(panel) {
		t.Error("empty panel should fail")
	}
	panel.Metrics["2024"] = &models.FiscalYearMetrics{Revenue: 1200}
	if !PanelComplete(panel) {
		t.Error("populated panel should pass")
	}
	if PanelComplete(nil) {
		t.Error("nil panel should fail")
	}
}
