package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/rebal/internal/clients/brave"
	"github.com/bobmcallan/rebal/internal/clients/polygon"
	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/portfolio"
	"github.com/bobmcallan/rebal/internal/pricing"
	"github.com/bobmcallan/rebal/internal/storage"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configFile := "rebal.toml"
	if cf := os.Getenv("REBAL_CONFIG"); cf != "" {
		configFile = cf
	}

	config, err := common.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	common.LoadVersionFromFile()

	logger := common.NewLogger(config.Logging.Level)
	common.PrintBanner(config, logger)

	catalog, err := portfolio.LoadCatalog(config.PortfolioFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", config.PortfolioFile).Msg("Failed to load portfolio definition")
	}

	fileStore, err := storage.NewFileStore(logger, config.Storage.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", config.Storage.Path).Msg("Failed to initialize storage")
	}
	stateStore := storage.NewStateFile(fileStore, config.Storage.StateFile, logger)
	cacheStore := storage.NewCacheFile(fileStore, config.Storage.CacheFile, logger)

	marketClient := polygon.NewClient(config.Clients.Polygon.APIKey,
		polygon.WithBaseURL(config.Clients.Polygon.BaseURL),
		polygon.WithRateLimit(config.Clients.Polygon.RateLimit),
		polygon.WithTimeout(config.Clients.Polygon.GetTimeout()),
		polygon.WithLogger(logger),
	)
	searchClient := brave.NewClient(config.Clients.Brave.APIKey,
		brave.WithBaseURL(config.Clients.Brave.BaseURL),
		brave.WithRateLimit(config.Clients.Brave.RateLimit),
		brave.WithTimeout(config.Clients.Brave.GetTimeout()),
		brave.WithLogger(logger),
	)

	if config.Clients.Polygon.APIKey == "" {
		logger.Warn().Msg("POLYGON_API_KEY not set, live market prices unavailable")
	}
	if config.Clients.Brave.APIKey == "" {
		logger.Warn().Msg("BRAVE_SEARCH_API_KEY not set, search fallback unavailable")
	}

	ctx := context.Background()

	cache := pricing.NewCache(cacheStore, logger, config.Pricing.GetPriceTTL(), config.Pricing.GetRateTTL())
	cache.Load(ctx)

	resolver := pricing.NewResolver(catalog, marketClient, searchClient, cache, logger)

	engine := portfolio.NewEngine(catalog, resolver, stateStore, logger)
	if err := engine.Open(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to open session state")
	}

	mcpServer := server.NewMCPServer(
		"Rebal",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)
	registerTools(mcpServer, engine, logger)

	logger.Info().
		Str("portfolio", filepath.Base(config.PortfolioFile)).
		Str("version", common.GetVersion()).
		Msg("Serving MCP on stdio")

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
		os.Exit(1)
	}

	common.PrintShutdownBanner(logger)
}
