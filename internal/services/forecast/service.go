// Package forecast populates forecast years on a ticker's metrics panel
// via the generation capability, with a deterministic carry-forward
// fallback.
package forecast

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/models"
	"github.com/bobmcallan/equitas/internal/services/metrics"
)

// Service implements the forecast orchestrator.
type Service struct {
	client     interfaces.MarketDataClient
	capability interfaces.ForecastClient
	storage    interfaces.StorageManager
	config     *common.Config
	logger     *common.Logger
}

// NewService creates the forecast service.
func NewService(
	client interfaces.MarketDataClient,
	capability interfaces.ForecastClient,
	storage interfaces.StorageManager,
	config *common.Config,
	logger *common.Logger,
) *Service {
	return &Service{
		client:     client,
		capability: capability,
		storage:    storage,
		config:     config,
		logger:     logger,
	}
}

// EnsureForecastYears guarantees the panel holds horizon forecast years
// beyond the latest actual year and returns the updated panel with the
// latest actual year label.
//
// The latest actual year is always re-established from a fresh statement
// fetch, never trusted from the cache: a new filing can turn a cached
// forecast year into an actual year, and the actual row must win. The
// statement fetch failing is fatal. A capability failure on an
// individual year is not — that year falls back to a carry-forward row.
// The panel is persisted after every generated year so progress survives
// a later failure.
func (s *Service) EnsureForecastYears(ctx context.Context, ticker string, horizon int, force bool) (*models.MetricsPanel, string, error) {
	stmts, err := s.client.GetStatements(ctx, ticker, "annual", s.config.Report.StatementYears)
	if err != nil {
		return nil, "", fmt.Errorf("fetch statements for %s: %w", ticker, err)
	}
	latestActual := stmts.LatestYear()
	if latestActual == "" {
		return nil, "", fmt.Errorf("no statement years for %s: %w", ticker, common.ErrDataUnavailable)
	}

	market := s.marketInputs(ctx, ticker)
	fresh := metrics.Derive(ticker, stmts, market)

	panel, err := s.storage.ResearchStore().GetPanel(ctx, ticker)
	if err != nil {
		panel = models.NewMetricsPanel(ticker)
	}
	// Actual rows from fresh statements overwrite whatever the cache
	// holds for those years, including superseded forecast rows.
	for year, row := range fresh.Metrics {
		panel.Metrics[year] = row
	}

	snapshot, _ := s.storage.ResearchStore().GetLatestSnapshot(ctx, ticker)
	priceReturn := s.priceTotalReturn(ctx, ticker)

	latest, err := strconv.Atoi(latestActual)
	if err != nil {
		return nil, "", fmt.Errorf("bad fiscal year label %q for %s", latestActual, ticker)
	}

	for offset := 1; offset <= horizon; offset++ {
		year := strconv.Itoa(latest + offset)

		if existing := panel.Metrics[year]; existing != nil && existing.Source != "" && !force {
			s.logger.Debug().Str("ticker", ticker).Str("year", year).
				Str("source", existing.Source).Msg("Reusing cached forecast year")
			continue
		}

		prompt := buildForecastPrompt(ticker, year, panel, latestActual, snapshot, priceReturn)

		row, genErr := s.capability.GenerateForecast(ctx, prompt)
		if genErr != nil {
			s.logger.Warn().Str("ticker", ticker).Str("year", year).Err(genErr).
				Msg("Forecast generation failed, carrying forward")
			prev := panel.Metrics[previousYear(panel, year)]
			if prev == nil {
				return nil, "", fmt.Errorf("no base year to carry forward for %s FY%s: %w",
					ticker, year, common.ErrDataUnavailable)
			}
			row = metrics.CarryForward(prev)
		}
		panel.Metrics[year] = row

		if err := s.storage.ResearchStore().SavePanel(ctx, panel); err != nil {
			return nil, "", err
		}
		s.logger.Info().Str("ticker", ticker).Str("year", year).
			Str("source", row.Source).Msg("Forecast year persisted")
	}

	if err := s.storage.ResearchStore().SavePanel(ctx, panel); err != nil {
		return nil, "", err
	}
	return panel, latestActual, nil
}

// marketInputs loads the latest snapshot's market scalars, zero when no
// snapshot has been collected yet.
func (s *Service) marketInputs(ctx context.Context, ticker string) models.MarketInputs {
	snapshot, err := s.storage.ResearchStore().GetLatestSnapshot(ctx, ticker)
	if err != nil {
		return models.MarketInputs{}
	}
	inputs := models.MarketInputs{CurrentPrice: snapshot.CurrentPrice()}
	if snapshot.MarketCap != nil {
		inputs.MarketCap = *snapshot.MarketCap
	}
	if snapshot.SharesOutstanding != nil {
		inputs.SharesOutstanding = *snapshot.SharesOutstanding
	}
	return inputs
}

// priceTotalReturn returns the cached price window's total return, 0
// when no series has been collected.
func (s *Service) priceTotalReturn(ctx context.Context, ticker string) float64 {
	series, err := s.storage.ResearchStore().GetLatestPriceSeries(ctx, ticker)
	if err != nil {
		return 0
	}
	return series.TotalReturn()
}

// previousYear returns the panel year immediately before year, or "".
func previousYear(panel *models.MetricsPanel, year string) string {
	target, _ := strconv.Atoi(year)
	best := ""
	for _, y := range panel.Years() {
		if n, _ := strconv.Atoi(y); n < target {
			best = y
		}
	}
	return best
}

// Ensure Service implements ForecastService
var _ interfaces.ForecastService = (*Service)(nil)
