// Package common provides shared utilities for Rebal
package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Rebal
type Config struct {
	Environment   string        `toml:"environment"`
	PortfolioFile string        `toml:"portfolio_file"` // asset catalog JSON
	Storage       StorageConfig `toml:"storage"`
	Pricing       PricingConfig `toml:"pricing"`
	Clients       ClientsConfig `toml:"clients"`
	Logging       LoggingConfig `toml:"logging"`
}

// StorageConfig holds paths for the persisted session files.
type StorageConfig struct {
	Path      string `toml:"path"`       // directory for state and cache files
	StateFile string `toml:"state_file"` // trade journal + holdings + analysis
	CacheFile string `toml:"cache_file"` // prices + exchange rates
}

// PricingConfig holds freshness windows for cached market data.
type PricingConfig struct {
	PriceTTL string `toml:"price_ttl"`
	RateTTL  string `toml:"rate_ttl"`
}

// GetPriceTTL parses and returns the price cache TTL.
func (c *PricingConfig) GetPriceTTL() time.Duration {
	d, err := time.ParseDuration(c.PriceTTL)
	if err != nil {
		return FreshnessPrice
	}
	return d
}

// GetRateTTL parses and returns the exchange rate TTL.
func (c *PricingConfig) GetRateTTL() time.Duration {
	d, err := time.ParseDuration(c.RateTTL)
	if err != nil {
		return FreshnessExchangeRate
	}
	return d
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Polygon PolygonConfig `toml:"polygon"`
	Brave   BraveConfig   `toml:"brave"`
}

// PolygonConfig holds Polygon API configuration
type PolygonConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PolygonConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// BraveConfig holds Brave Search API configuration
type BraveConfig struct {
	BaseURL     string `toml:"base_url"`
	APIKey      string `toml:"api_key"`
	RateLimit   int    `toml:"rate_limit"`
	Timeout     string `toml:"timeout"`
	ResultCount int    `toml:"result_count"`
}

// GetTimeout parses and returns the timeout duration
func (c *BraveConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:   "development",
		PortfolioFile: "portfolio.json",
		Storage: StorageConfig{
			Path:      "data",
			StateFile: ".portfolio_state.json",
			CacheFile: ".price_cache.json",
		},
		Pricing: PricingConfig{
			PriceTTL: "15m",
			RateTTL:  "60m",
		},
		Clients: ClientsConfig{
			Polygon: PolygonConfig{
				BaseURL:   "https://api.polygon.io",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Brave: BraveConfig{
				BaseURL:     "https://api.search.brave.com/res/v1",
				RateLimit:   1,
				Timeout:     "30s",
				ResultCount: 5,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
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

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("REBAL_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("REBAL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("REBAL_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if pf := os.Getenv("REBAL_PORTFOLIO_FILE"); pf != "" {
		config.PortfolioFile = pf
	}

	if key := os.Getenv("POLYGON_API_KEY"); key != "" {
		config.Clients.Polygon.APIKey = key
	}

	if key := os.Getenv("BRAVE_SEARCH_API_KEY"); key != "" {
		config.Clients.Brave.APIKey = key
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
