package research

import (
	"github.com/bobmcallan/equitas/internal/models"
)

// Completeness gates decide cache sufficiency per record kind. Pass
// means serve the cached record without touching the network; fail
// means re-fetch. A record is either sufficient or it is not — there is
// no partial reuse and no TTL.

// SnapshotComplete reports whether a cached snapshot can be served.
// Every pipeline-critical field must be present; free float is reported
// only for some listings, so its absence does not fail the gate.
func SnapshotComplete(s *models.CompanySnapshot) bool {
	if s == nil {
		return false
	}
	required := []*float64{
		s.SharesOutstanding,
		s.MarketCap,
		s.AvgVolume3MShares,
		s.AvgVolume3MUSD,
		s.Volatility90D,
		s.High52W,
		s.Low52W,
	}
	for _, f := range required {
		if f == nil {
			return false
		}
	}
	return s.Currency != ""
}

// PriceSeriesComplete reports whether a cached price-performance series
// can be served: both the subject and benchmark series must be non-empty.
func PriceSeriesComplete(s *models.PricePerformanceSeries) bool {
	return s != nil && len(s.StockData) > 0 && len(s.IndexData) > 0
}

// PanelComplete reports whether a cached metrics panel can be served.
// The stored blob either decodes into a non-empty panel or it doesn't.
func PanelComplete(p *models.MetricsPanel) bool {
	return p != nil && len(p.Metrics) > 0
}
