package interfaces

import (
	"context"

	"github.com/bobmcallan/equitas/internal/models"
)

// StorageManager coordinates the storage backends.
type StorageManager interface {
	ResearchStore() ResearchStore
	FileStore() FileStore
	Close() error
}

// ResearchStore persists the pipeline's JSON blobs keyed by deterministic
// composite strings. All saves are whole-record upserts: replace on
// conflict, last writer wins, no versioning and no TTL. Staleness is the
// completeness gate's concern, not the store's.
type ResearchStore interface {
	// Company snapshots, keyed {ticker}_{asOfDate}.
	GetSnapshot(ctx context.Context, ticker, asOfDate string) (*models.CompanySnapshot, error)
	GetLatestSnapshot(ctx context.Context, ticker string) (*models.CompanySnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.CompanySnapshot) error

	// Price performance series, keyed {ticker}_{startDate}_{endDate}.
	GetPriceSeries(ctx context.Context, ticker, startDate, endDate string) (*models.PricePerformanceSeries, error)
	GetLatestPriceSeries(ctx context.Context, ticker string) (*models.PricePerformanceSeries, error)
	SavePriceSeries(ctx context.Context, series *models.PricePerformanceSeries) error

	// Metrics panels, keyed {ticker}_key_metrics.
	GetPanel(ctx context.Context, ticker string) (*models.MetricsPanel, error)
	SavePanel(ctx context.Context, panel *models.MetricsPanel) error

	// Company news, keyed {ticker}_news. Saves merge by article URL.
	GetNews(ctx context.Context, ticker string) (*models.CompanyNews, error)
	SaveNews(ctx context.Context, news *models.CompanyNews) error

	// Assembled reports, keyed {ticker}_report.
	GetReport(ctx context.Context, ticker string) (*models.EquityReport, error)
	SaveReport(ctx context.Context, report *models.EquityReport) error
}

// FileStore provides binary file storage in the database.
type FileStore interface {
	SaveFile(ctx context.Context, category, key string, data []byte, contentType string) error
	GetFile(ctx context.Context, category, key string) ([]byte, string, error) // data, contentType, error
	HasFile(ctx context.Context, category, key string) (bool, error)
}
