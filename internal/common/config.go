// Package common provides shared utilities for Equitas
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Equitas
type Config struct {
	Environment string        `toml:"environment"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Report      ReportConfig  `toml:"report"`
	Logging     LoggingConfig `toml:"logging"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Research AreaConfig `toml:"research"` // Cached research data (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FMP     FMPConfig     `toml:"fmp"`
	Finnhub FinnhubConfig `toml:"finnhub"`
	Gemini  GeminiConfig  `toml:"gemini"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FMPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FinnhubConfig holds Finnhub API configuration
type FinnhubConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinnhubConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
}

// ReportConfig holds report pipeline defaults.
type ReportConfig struct {
	BenchmarkIndex   string `toml:"benchmark_index"`    // rebasing benchmark (default "SPY")
	HorizonYears     int    `toml:"horizon_years"`      // forecast years beyond latest actual
	LookbackDays     int    `toml:"lookback_days"`      // price performance window
	StatementYears   int    `toml:"statement_years"`    // annual statements to request
	NewsLookbackDays int    `toml:"news_lookback_days"` // company news window
	NewsLimit        int    `toml:"news_limit"`         // max articles merged per collection
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Research: AreaConfig{Path: "data/research"},
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL:   "https://financialmodelingprep.com/stable",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Finnhub: FinnhubConfig{
				BaseURL:   "https://finnhub.io/api/v1",
				RateLimit: 1,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model:       "gemini-2.0-flash",
				Temperature: 0.3,
			},
		},
		Report: ReportConfig{
			BenchmarkIndex:   "SPY",
			HorizonYears:     2,
			LookbackDays:     365,
			StatementYears:   3,
			NewsLookbackDays: 30,
			NewsLimit:        100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("EQUITAS_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("EQUITAS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("EQUITAS_DATA_PATH"); path != "" {
		config.Storage.Research.Path = path
	}

	if idx := os.Getenv("EQUITAS_BENCHMARK_INDEX"); idx != "" {
		config.Report.BenchmarkIndex = strings.ToUpper(idx)
	}

	if h := os.Getenv("EQUITAS_HORIZON_YEARS"); h != "" {
		if n, err := strconv.Atoi(h); err == nil && n > 0 {
			config.Report.HorizonYears = n
		}
	}
}

// ResolveAPIKey resolves an API key from environment or config fallback.
// Environment variables take priority over config file values.
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"fmp_api_key":     {"FMP_API_KEY", "EQUITAS_FMP_API_KEY"},
		"finnhub_api_key": {"FINNHUB_API_KEY", "EQUITAS_FINNHUB_API_KEY"},
		"gemini_api_key":  {"GEMINI_API_KEY", "EQUITAS_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
