// Package research runs the per-ticker collection pipeline: price
// performance, company snapshot, metrics panel, and report assembly.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/models"
	"github.com/bobmcallan/equitas/internal/services/metrics"
)

const dateLayout = "2006-01-02"

// Service implements the research pipeline against a market-data client
// and blob storage. Every collect operation follows the same shape:
// check the cached record against its completeness gate, serve it when
// sufficient, otherwise fetch, assemble and persist.
type Service struct {
	client     interfaces.MarketDataClient
	news       interfaces.NewsClient
	capability interfaces.ForecastClient
	forecast   interfaces.ForecastService
	storage    interfaces.StorageManager
	config     *common.Config
	logger     *common.Logger
}

// NewService creates the research service. news may be nil when no news
// source is configured; news collection is then skipped.
func NewService(
	client interfaces.MarketDataClient,
	news interfaces.NewsClient,
	capability interfaces.ForecastClient,
	forecast interfaces.ForecastService,
	storage interfaces.StorageManager,
	config *common.Config,
	logger *common.Logger,
) *Service {
	return &Service{
		client:     client,
		news:       news,
		capability: capability,
		forecast:   forecast,
		storage:    storage,
		config:     config,
		logger:     logger,
	}
}

// CollectPricePerformance returns the rebased subject+benchmark series
// for the configured lookback window against the configured benchmark.
func (s *Service) CollectPricePerformance(ctx context.Context, ticker string, force bool) (*models.PricePerformanceSeries, error) {
	return s.collectPricePerformance(ctx, ticker, s.config.Report.BenchmarkIndex, force)
}

func (s *Service) collectPricePerformance(ctx context.Context, ticker, benchmark string, force bool) (*models.PricePerformanceSeries, error) {
	end := time.Now().Format(dateLayout)
	start := time.Now().AddDate(0, 0, -s.config.Report.LookbackDays).Format(dateLayout)

	if !force {
		cached, err := s.storage.ResearchStore().GetPriceSeries(ctx, ticker, start, end)
		if err == nil && PriceSeriesComplete(cached) {
			s.logger.Debug().Str("ticker", ticker).Msg("Serving cached price performance")
			return cached, nil
		}
	}

	stockBars, err := s.client.GetHistoricalPrices(ctx, ticker, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch prices for %s: %w", ticker, err)
	}
	indexBars, err := s.client.GetHistoricalPrices(ctx, benchmark, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch benchmark prices for %s: %w", benchmark, err)
	}

	series := &models.PricePerformanceSeries{
		Ticker:    ticker,
		BaseIndex: benchmark,
		StartDate: start,
		EndDate:   end,
		StockData: rebaseSeries(stockBars),
		IndexData: rebaseSeries(indexBars),
		CreatedAt: time.Now(),
	}
	if !PriceSeriesComplete(series) {
		return nil, fmt.Errorf("price series for %s vs %s: %w", ticker, benchmark, common.ErrDataUnavailable)
	}

	if err := s.storage.ResearchStore().SavePriceSeries(ctx, series); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Str("benchmark", benchmark).
		Int("stock_points", len(series.StockData)).
		Msg("Collected price performance")
	return series, nil
}

// CollectCompanySnapshot returns today's snapshot for a ticker, merging
// profile, float, quote, consensus and price-history facts.
func (s *Service) CollectCompanySnapshot(ctx context.Context, ticker string, force bool) (*models.CompanySnapshot, error) {
	asOf := time.Now().Format(dateLayout)

	if !force {
		cached, err := s.storage.ResearchStore().GetSnapshot(ctx, ticker, asOf)
		if err == nil && SnapshotComplete(cached) {
			s.logger.Debug().Str("ticker", ticker).Msg("Serving cached snapshot")
			return cached, nil
		}
	}

	profile, err := s.client.GetProfile(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %s: %w", ticker, err)
	}
	quote, err := s.client.GetQuote(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", ticker, err)
	}

	// 180 calendar days comfortably covers 90 trading bars.
	from := time.Now().AddDate(0, 0, -180).Format(dateLayout)
	bars, err := s.client.GetHistoricalPrices(ctx, ticker, from, asOf)
	if err != nil {
		return nil, fmt.Errorf("fetch price history for %s: %w", ticker, err)
	}

	snapshot := &models.CompanySnapshot{
		Ticker:           ticker,
		AsOfDate:         asOf,
		MarketCap:        models.Float64Ptr(profile.MarketCap),
		Currency:         profile.Currency,
		FXRate:           1.0,
		High52W:          models.Float64Ptr(quote.YearHigh),
		Low52W:           models.Float64Ptr(quote.YearLow),
		Volatility90D:    models.Float64Ptr(volatility90D(bars)),
		PrimaryIndexName: profile.Exchange,
		CreatedAt:        time.Now(),
	}

	// Float endpoint is patchy for some listings; fall back to deriving
	// shares from market cap and price.
	if float, err := s.client.GetSharesFloat(ctx, ticker); err == nil && float.SharesOutstanding > 0 {
		snapshot.SharesOutstanding = models.Float64Ptr(float.SharesOutstanding)
		if float.FreeFloatPct > 0 {
			snapshot.FreeFloatPct = models.Float64Ptr(float.FreeFloatPct)
		}
	} else if profile.MarketCap > 0 && quote.Price > 0 {
		snapshot.SharesOutstanding = models.Float64Ptr(profile.MarketCap / quote.Price)
	}

	// Average 3-month volume: quote field when present, computed from
	// bars otherwise. 63 trading days per quarter.
	avgShares := quote.AvgVolume
	if avgShares <= 0 {
		avgShares = avgDailyVolume(bars, 63)
	}
	snapshot.AvgVolume3MShares = models.Float64Ptr(avgShares)
	snapshot.AvgVolume3MUSD = models.Float64Ptr(avgShares * quote.Price)

	// Analyst consensus is enrichment, never a gate.
	if grades, err := s.client.GetGradesConsensus(ctx, ticker); err == nil {
		snapshot.AnalystRatingCounts = grades.RatingCounts()
		snapshot.ConsensusRating = grades.Consensus
		snapshot.NumAnalysts = grades.Total
	} else {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Analyst consensus unavailable")
	}

	if !SnapshotComplete(snapshot) {
		return nil, fmt.Errorf("snapshot for %s incomplete after fetch: %w", ticker, common.ErrDataUnavailable)
	}

	if err := s.storage.ResearchStore().SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Str("as_of", asOf).Msg("Collected company snapshot")
	return snapshot, nil
}

// CollectCompanyNews returns the accumulated news for a ticker. The
// gate is a same-day window: a cached record whose end date is today is
// served as-is. Otherwise the lookback window is fetched and merged
// into the cached record by article URL, first write wins. Returns
// (nil, nil) when no news source is configured.
func (s *Service) CollectCompanyNews(ctx context.Context, ticker string, force bool) (*models.CompanyNews, error) {
	if s.news == nil {
		return nil, nil
	}

	today := time.Now().Format(dateLayout)
	cached, cacheErr := s.storage.ResearchStore().GetNews(ctx, ticker)
	if !force && cacheErr == nil && cached.EndDate == today && len(cached.Articles) > 0 {
		s.logger.Debug().Str("ticker", ticker).Msg("Serving cached company news")
		return cached, nil
	}

	from := time.Now().AddDate(0, 0, -s.config.Report.NewsLookbackDays).Format(dateLayout)
	articles, err := s.news.GetCompanyNews(ctx, ticker, from, today)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", ticker, err)
	}
	if limit := s.config.Report.NewsLimit; limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}

	news := cached
	if cacheErr != nil {
		news = &models.CompanyNews{Ticker: ticker, StartDate: from, CreatedAt: time.Now()}
	}
	added := news.Merge(articles)
	news.EndDate = today

	if err := s.storage.ResearchStore().SaveNews(ctx, news); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Int("added", added).
		Int("total", len(news.Articles)).Msg("Collected company news")
	return news, nil
}

// CollectKeyMetrics returns the ticker's metrics panel, deriving actual
// years from fresh statements when the cached panel fails the gate.
// Cached forecast-year rows beyond the new latest actual survive the
// re-derivation; a forecast year superseded by a new filing is replaced
// by its actual row.
func (s *Service) CollectKeyMetrics(ctx context.Context, ticker string, market models.MarketInputs, force bool) (*models.MetricsPanel, error) {
	cached, cacheErr := s.storage.ResearchStore().GetPanel(ctx, ticker)
	if !force && cacheErr == nil && PanelComplete(cached) {
		s.logger.Debug().Str("ticker", ticker).Msg("Serving cached metrics panel")
		return cached, nil
	}

	stmts, err := s.client.GetStatements(ctx, ticker, "annual", s.config.Report.StatementYears)
	if err != nil {
		return nil, fmt.Errorf("fetch statements for %s: %w", ticker, err)
	}

	panel := metrics.Derive(ticker, stmts, market)
	if len(panel.Metrics) == 0 {
		return nil, fmt.Errorf("no derivable metrics for %s: %w", ticker, common.ErrDataUnavailable)
	}

	if cacheErr == nil && cached != nil {
		latestActual := stmts.LatestYear()
		for _, year := range cached.ForecastYears(latestActual) {
			if row := cached.Metrics[year]; row != nil && row.Source != "" {
				panel.Metrics[year] = row
			}
		}
	}

	if err := s.storage.ResearchStore().SavePanel(ctx, panel); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Int("years", len(panel.Metrics)).Msg("Derived metrics panel")
	return panel, nil
}

// BuildReport runs the full pipeline and assembles the report payload.
// Snapshot, price performance and panel are required; narrative and
// chart are enrichment and their failures degrade the report instead of
// failing it.
func (s *Service) BuildReport(ctx context.Context, ticker string, options interfaces.ReportOptions) (*models.EquityReport, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	snapshot, err := s.CollectCompanySnapshot(ctx, ticker, options.ForceRefresh)
	if err != nil {
		return nil, err
	}

	benchmark := s.config.Report.BenchmarkIndex
	if options.BenchmarkOverride != "" {
		benchmark = strings.ToUpper(options.BenchmarkOverride)
	}
	series, err := s.collectPricePerformance(ctx, ticker, benchmark, options.ForceRefresh)
	if err != nil {
		return nil, err
	}

	market := models.MarketInputs{
		MarketCap:         derefOrZero(snapshot.MarketCap),
		SharesOutstanding: derefOrZero(snapshot.SharesOutstanding),
		CurrentPrice:      snapshot.CurrentPrice(),
	}
	if _, err := s.CollectKeyMetrics(ctx, ticker, market, options.ForceRefresh); err != nil {
		return nil, err
	}

	panel, latestActual, err := s.forecast.EnsureForecastYears(ctx, ticker, s.config.Report.HorizonYears, options.ForceRegenerate)
	if err != nil {
		return nil, err
	}

	report := models.NewEquityReport(ticker)
	report.LatestActualYear = latestActual
	report.Snapshot = snapshot
	report.PricePerformance = series
	report.Panel = panel

	// News is enrichment: collection failure degrades the report.
	news, err := s.CollectCompanyNews(ctx, ticker, options.ForceRefresh)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("News collection failed, continuing without")
	} else {
		report.News = news
	}

	if options.IncludeNarrative {
		narrative, err := s.capability.GenerateNarrative(ctx, buildNarrativePrompt(report))
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Narrative generation failed, continuing without")
		} else {
			report.Narrative = narrative
		}
	}

	if options.RenderChart {
		png, err := renderPerformanceChart(series)
		if err != nil {
			s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Chart render failed, continuing without")
		} else {
			key := fmt.Sprintf("%s_performance.png", ticker)
			if err := s.storage.FileStore().SaveFile(ctx, "charts", key, png, "image/png"); err != nil {
				s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Chart save failed")
			} else {
				report.ChartKey = key
			}
		}
	}

	if err := s.storage.ResearchStore().SaveReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info().Str("ticker", ticker).Str("report_id", report.ID).
		Str("latest_actual", latestActual).
		Msg("Report assembled")
	return report, nil
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Ensure Service implements ResearchService
var _ interfaces.ResearchService = (*Service)(nil)
