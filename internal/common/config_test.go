package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if cfg.PortfolioFile != "portfolio.json" {
		t.Errorf("PortfolioFile default = %q, want %q", cfg.PortfolioFile, "portfolio.json")
	}
	if cfg.Storage.StateFile != ".portfolio_state.json" {
		t.Errorf("StateFile default = %q, want %q", cfg.Storage.StateFile, ".portfolio_state.json")
	}
	if cfg.Storage.CacheFile != ".price_cache.json" {
		t.Errorf("CacheFile default = %q, want %q", cfg.Storage.CacheFile, ".price_cache.json")
	}
}

func TestConfig_PricingTTLDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if got := cfg.Pricing.GetPriceTTL(); got != 15*time.Minute {
		t.Errorf("GetPriceTTL() = %v, want 15m", got)
	}
	if got := cfg.Pricing.GetRateTTL(); got != 60*time.Minute {
		t.Errorf("GetRateTTL() = %v, want 60m", got)
	}
}

func TestConfig_PricingTTLInvalidFallsBack(t *testing.T) {
	p := PricingConfig{PriceTTL: "not-a-duration", RateTTL: ""}
	if got := p.GetPriceTTL(); got != FreshnessPrice {
		t.Errorf("GetPriceTTL() = %v, want %v", got, FreshnessPrice)
	}
	if got := p.GetRateTTL(); got != FreshnessExchangeRate {
		t.Errorf("GetRateTTL() = %v, want %v", got, FreshnessExchangeRate)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REBAL_ENV", "production")
	t.Setenv("REBAL_LOG_LEVEL", "debug")
	t.Setenv("REBAL_DATA_PATH", "/tmp/rebal-data")
	t.Setenv("POLYGON_API_KEY", "poly-from-env")
	t.Setenv("BRAVE_SEARCH_API_KEY", "brave-from-env")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Storage.Path != "/tmp/rebal-data" {
		t.Errorf("Storage.Path = %q, want /tmp/rebal-data", cfg.Storage.Path)
	}
	if cfg.Clients.Polygon.APIKey != "poly-from-env" {
		t.Errorf("Polygon.APIKey = %q, want poly-from-env", cfg.Clients.Polygon.APIKey)
	}
	if cfg.Clients.Brave.APIKey != "brave-from-env" {
		t.Errorf("Brave.APIKey = %q, want brave-from-env", cfg.Clients.Brave.APIKey)
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PortfolioFile != "portfolio.json" {
		t.Errorf("expected defaults when config file missing, got %q", cfg.PortfolioFile)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rebal.toml")
	content := []byte(`
portfolio_file = "my-assets.json"

[storage]
path = "session-data"

[clients.polygon]
api_key = "poly-from-file"
timeout = "10s"
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PortfolioFile != "my-assets.json" {
		t.Errorf("PortfolioFile = %q, want my-assets.json", cfg.PortfolioFile)
	}
	if cfg.Storage.Path != "session-data" {
		t.Errorf("Storage.Path = %q, want session-data", cfg.Storage.Path)
	}
	if cfg.Clients.Polygon.APIKey != "poly-from-file" {
		t.Errorf("Polygon.APIKey = %q, want poly-from-file", cfg.Clients.Polygon.APIKey)
	}
	if got := cfg.Clients.Polygon.GetTimeout(); got != 10*time.Second {
		t.Errorf("Polygon.GetTimeout() = %v, want 10s", got)
	}
	// Untouched sections keep their defaults
	if cfg.Storage.StateFile != ".portfolio_state.json" {
		t.Errorf("StateFile = %q, want default", cfg.Storage.StateFile)
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error for invalid toml")
	}
}

func TestIsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{" Production ", true},
		{"development", false},
		{"", false},
	}
	for _, tt := range tests {
		cfg := &Config{Environment: tt.env}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction(%q) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestIsFreshAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	if !IsFreshAt(now.Add(-10*time.Minute), 15*time.Minute, now) {
		t.Error("10 minute old entry should be fresh within 15m TTL")
	}
	if IsFreshAt(now.Add(-20*time.Minute), 15*time.Minute, now) {
		t.Error("20 minute old entry should be stale for 15m TTL")
	}
	if IsFreshAt(time.Time{}, 15*time.Minute, now) {
		t.Error("zero timestamp is never fresh")
	}
}
