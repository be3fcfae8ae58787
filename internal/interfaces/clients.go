// Package interfaces defines service contracts for Equitas
package interfaces

import (
	"context"

	"github.com/bobmcallan/equitas/internal/models"
)

// MarketDataClient fetches statements and market facts from the
// financial data provider. All calls block until completion or timeout;
// a timeout is an ordinary failure.
type MarketDataClient interface {
	// GetStatements returns income, balance-sheet and cash-flow lists for
	// a ticker, each most-recent-year first. period is "annual" or
	// "quarter"; limit caps the number of periods requested.
	GetStatements(ctx context.Context, ticker, period string, limit int) (*models.StatementSet, error)

	// GetHistoricalPrices returns end-of-day bars for a symbol within
	// [from, to], in the provider's native order.
	GetHistoricalPrices(ctx context.Context, symbol, from, to string) ([]models.PriceBar, error)

	GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error)
	GetSharesFloat(ctx context.Context, ticker string) (*models.SharesFloat, error)
	GetQuote(ctx context.Context, ticker string) (*models.Quote, error)
	GetGradesConsensus(ctx context.Context, ticker string) (*models.GradesConsensus, error)
}

// NewsClient fetches company news from the news provider. Like the
// market-data source it is a black box returning JSON; failures degrade
// the report rather than failing it.
type NewsClient interface {
	// GetCompanyNews returns news articles for a ticker within [from, to].
	GetCompanyNews(ctx context.Context, ticker, from, to string) ([]models.NewsArticle, error)
}

// ForecastClient is the text-generation capability. The pipeline only
// owns the contract: a structured prompt goes in, a structured result
// comes back. Any malformed response surfaces as an error and is
// absorbed by the caller's fallback.
type ForecastClient interface {
	// GenerateForecast returns one forecast-year row parsed from the
	// capability's JSON response.
	GenerateForecast(ctx context.Context, prompt string) (*models.FiscalYearMetrics, error)

	// GenerateNarrative returns free-text analyst narrative.
	GenerateNarrative(ctx context.Context, prompt string) (string, error)
}
