package interfaces

import (
	"context"

	"github.com/bobmcallan/equitas/internal/models"
)

// ReportOptions configures a report pipeline run.
type ReportOptions struct {
	ForceRefresh      bool // bypass completeness gates and re-fetch
	IncludeNarrative  bool // generate analyst narrative via the capability
	RenderChart       bool // render and store the price-performance chart
	ForceRegenerate   bool // regenerate forecast years even when cached
	BenchmarkOverride string
}

// ResearchService runs the per-ticker collection pipeline and assembles
// the report payload.
type ResearchService interface {
	// CollectPricePerformance returns the rebased subject+benchmark
	// series for the configured window, fetching only when the cached
	// record fails the completeness gate.
	CollectPricePerformance(ctx context.Context, ticker string, force bool) (*models.PricePerformanceSeries, error)

	// CollectCompanySnapshot returns the snapshot for today's date,
	// fetching only when the cached record fails the completeness gate.
	CollectCompanySnapshot(ctx context.Context, ticker string, force bool) (*models.CompanySnapshot, error)

	// CollectCompanyNews returns the accumulated news for a ticker,
	// fetching the lookback window and merging new articles by URL when
	// the cached record fails the gate. A nil result with nil error means
	// no news source is configured.
	CollectCompanyNews(ctx context.Context, ticker string, force bool) (*models.CompanyNews, error)

	// CollectKeyMetrics returns the actual-years metrics panel, deriving
	// from fresh statements when the cached panel fails the gate.
	CollectKeyMetrics(ctx context.Context, ticker string, market models.MarketInputs, force bool) (*models.MetricsPanel, error)

	// BuildReport runs the full pipeline and assembles the payload.
	BuildReport(ctx context.Context, ticker string, options ReportOptions) (*models.EquityReport, error)
}

// ForecastService populates forecast years on a ticker's panel.
type ForecastService interface {
	// EnsureForecastYears guarantees the panel holds horizon forecast
	// years beyond the latest actual year, generating or falling back as
	// needed, and returns the updated panel with the latest actual year
	// label. Statement-fetch failure is fatal; per-year capability
	// failure is not.
	EnsureForecastYears(ctx context.Context, ticker string, horizon int, force bool) (*models.MetricsPanel, string, error)
}
