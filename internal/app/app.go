// Package app wires configuration, storage, clients and services into a
// runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/bobmcallan/equitas/internal/clients/finnhub"
	"github.com/bobmcallan/equitas/internal/clients/fmp"
	"github.com/bobmcallan/equitas/internal/clients/gemini"
	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/services/forecast"
	"github.com/bobmcallan/equitas/internal/services/render"
	"github.com/bobmcallan/equitas/internal/services/research"
	"github.com/bobmcallan/equitas/internal/storage/badger"
)

// App holds the wired application components.
type App struct {
	Config   *common.Config
	Logger   *common.Logger
	Storage  interfaces.StorageManager
	Research interfaces.ResearchService
	Forecast interfaces.ForecastService
	Render   *render.Service
}

// New loads configuration, opens storage and wires the services.
func New(ctx context.Context, configPaths ...string) (*App, error) {
	config, err := common.LoadConfig(configPaths...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)
	logger.Info().Str("version", common.Version).Str("environment", config.Environment).Msg("Starting equitas")

	storage, err := badger.NewManager(logger, config.Storage.Research.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	fmpKey, err := common.ResolveAPIKey("fmp_api_key", config.Clients.FMP.APIKey)
	if err != nil {
		storage.Close()
		return nil, err
	}
	marketClient := fmp.NewClient(fmpKey,
		fmp.WithBaseURL(config.Clients.FMP.BaseURL),
		fmp.WithRateLimit(config.Clients.FMP.RateLimit),
		fmp.WithTimeout(config.Clients.FMP.GetTimeout()),
		fmp.WithLogger(logger),
	)

	// News is optional: a missing Finnhub key skips collection rather
	// than failing startup.
	var newsClient interfaces.NewsClient
	if finnhubKey, err := common.ResolveAPIKey("finnhub_api_key", config.Clients.Finnhub.APIKey); err != nil {
		logger.Warn().Msg("Finnhub API key not configured, news collection disabled")
	} else {
		newsClient = finnhub.NewClient(finnhubKey,
			finnhub.WithBaseURL(config.Clients.Finnhub.BaseURL),
			finnhub.WithRateLimit(config.Clients.Finnhub.RateLimit),
			finnhub.WithTimeout(config.Clients.Finnhub.GetTimeout()),
			finnhub.WithLogger(logger),
		)
	}

	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		storage.Close()
		return nil, err
	}
	capability, err := gemini.NewClient(ctx, geminiKey,
		gemini.WithModel(config.Clients.Gemini.Model),
		gemini.WithTemperature(config.Clients.Gemini.Temperature),
		gemini.WithLogger(logger),
	)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	forecastSvc := forecast.NewService(marketClient, capability, storage, config, logger)
	researchSvc := research.NewService(marketClient, newsClient, capability, forecastSvc, storage, config, logger)

	return &App{
		Config:   config,
		Logger:   logger,
		Storage:  storage,
		Research: researchSvc,
		Forecast: forecastSvc,
		Render:   render.NewService(logger),
	}, nil
}

// Close releases application resources.
func (a *App) Close() error {
	return a.Storage.Close()
}
