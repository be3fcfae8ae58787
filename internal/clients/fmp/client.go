// Package fmp provides a client for the Financial Modeling Prep API
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/models"
)

const (
	DefaultBaseURL   = "https://financialmodelingprep.com/stable"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new FMP client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FMP API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("FMP API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetStatements retrieves income, balance-sheet and cash-flow statements
// for a ticker, each most-recent-year first.
func (c *Client) GetStatements(ctx context.Context, ticker, period string, limit int) (*models.StatementSet, error) {
	params := func() url.Values {
		p := url.Values{}
		p.Set("symbol", ticker)
		p.Set("period", period)
		p.Set("limit", strconv.Itoa(limit))
		return p
	}

	set := &models.StatementSet{}

	if err := c.get(ctx, "/income-statement", params(), &set.Income); err != nil {
		return nil, fmt.Errorf("fetch income statements: %w", err)
	}
	if err := c.get(ctx, "/balance-sheet-statement", params(), &set.Balance); err != nil {
		return nil, fmt.Errorf("fetch balance sheets: %w", err)
	}
	if err := c.get(ctx, "/cash-flow-statement", params(), &set.CashFlow); err != nil {
		return nil, fmt.Errorf("fetch cash flow statements: %w", err)
	}

	if set.AlignedYears() == 0 {
		return nil, fmt.Errorf("no statements for %s: %w", ticker, common.ErrDataUnavailable)
	}

	return set, nil
}

// historicalResponse accepts both payload shapes the price endpoint
// returns: an object wrapping a "historical" array, or the array itself.
type historicalResponse struct {
	Historical []models.PriceBar
}

func (h *historicalResponse) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Historical []models.PriceBar `json:"historical"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Historical != nil {
		h.Historical = wrapped.Historical
		return nil
	}
	var bars []models.PriceBar
	if err := json.Unmarshal(data, &bars); err != nil {
		return fmt.Errorf("cannot unmarshal historical prices: %w", err)
	}
	h.Historical = bars
	return nil
}

// GetHistoricalPrices retrieves end-of-day bars for a symbol within
// [from, to], sorted oldest first.
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol, from, to string) ([]models.PriceBar, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", from)
	params.Set("to", to)

	var resp historicalResponse
	if err := c.get(ctx, "/historical-price-eod/full", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch historical prices for %s: %w", symbol, err)
	}

	bars := resp.Historical
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	return bars, nil
}

// GetProfile retrieves the company profile
func (c *Client) GetProfile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var profiles []models.CompanyProfile
	if err := c.get(ctx, "/profile", params, &profiles); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("no profile for %s: %w", ticker, common.ErrDataUnavailable)
	}

	return &profiles[0], nil
}

// GetSharesFloat retrieves share count and free float
func (c *Client) GetSharesFloat(ctx context.Context, ticker string) (*models.SharesFloat, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var floats []models.SharesFloat
	if err := c.get(ctx, "/shares-float", params, &floats); err != nil {
		return nil, fmt.Errorf("fetch shares float: %w", err)
	}
	if len(floats) == 0 {
		return nil, fmt.Errorf("no shares float for %s: %w", ticker, common.ErrDataUnavailable)
	}

	return &floats[0], nil
}

// GetQuote retrieves the current quote
func (c *Client) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var quotes []models.Quote
	if err := c.get(ctx, "/quote", params, &quotes); err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no quote for %s: %w", ticker, common.ErrDataUnavailable)
	}

	return &quotes[0], nil
}

// GetGradesConsensus retrieves analyst rating counts and consensus
func (c *Client) GetGradesConsensus(ctx context.Context, ticker string) (*models.GradesConsensus, error) {
	params := url.Values{}
	params.Set("symbol", ticker)

	var grades []models.GradesConsensus
	if err := c.get(ctx, "/grades-consensus", params, &grades); err != nil {
		return nil, fmt.Errorf("fetch grades consensus: %w", err)
	}
	if len(grades) == 0 {
		return nil, fmt.Errorf("no grades consensus for %s: %w", ticker, common.ErrDataUnavailable)
	}

	return &grades[0], nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
