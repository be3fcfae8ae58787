// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"google.golang.org/genai"

	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
	"github.com/bobmcallan/equitas/internal/models"
)

const (
	DefaultModel       = "gemini-2.0-flash"
	DefaultTemperature = 0.3
)

// Client implements the ForecastClient interface
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float64) ClientOption {
	return func(c *Client) {
		c.temperature = float32(temperature)
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:      genaiClient,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		logger:      common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// generate runs one generation call and returns the response text.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Int("prompt_chars", len(prompt)).Msg("Generating content")

	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// GenerateForecast asks the model for one forecast-year row and parses
// its JSON response. Model output is repaired before decoding; anything
// still unparseable is a capability failure.
func (c *Client) GenerateForecast(ctx context.Context, prompt string) (*models.FiscalYearMetrics, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCapabilityFailure, err)
	}

	return ParseForecastResponse(text)
}

// GenerateNarrative asks the model for free-text analyst narrative.
func (c *Client) GenerateNarrative(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrCapabilityFailure, err)
	}
	return strings.TrimSpace(text), nil
}

// ParseForecastResponse decodes model output into a metrics row. Markdown
// fences and sloppy JSON are tolerated via repair.
func ParseForecastResponse(text string) (*models.FiscalYearMetrics, error) {
	cleaned := stripCodeFences(text)

	repaired, err := jsonrepair.RepairJSON(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: repair forecast JSON: %v", common.ErrCapabilityFailure, err)
	}

	var row models.FiscalYearMetrics
	if err := json.Unmarshal([]byte(repaired), &row); err != nil {
		return nil, fmt.Errorf("%w: decode forecast JSON: %v", common.ErrCapabilityFailure, err)
	}

	// An all-empty object means the model returned nothing usable.
	if row.Revenue == 0 && row.AdjEBITDA == 0 && row.AdjNetIncome == 0 && row.AdjEPS == 0 {
		return nil, fmt.Errorf("%w: forecast response carried no metrics", common.ErrCapabilityFailure)
	}

	row.Source = models.MetricSourceGenerated
	return &row, nil
}

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	return text, nil
}

// Ensure Client implements ForecastClient
var _ interfaces.ForecastClient = (*Client)(nil)
