package main

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/portfolio"
)

// registerTools wires every tool definition to its handler.
func registerTools(s *server.MCPServer, engine *portfolio.Engine, logger *common.Logger) {
	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createGetPortfolioStateTool(), handleGetPortfolioState(engine, logger))
	s.AddTool(createGetAssetPriceTool(), handleGetAssetPrice(engine, logger))
	s.AddTool(createSimulateTradeTool(), handleSimulateTrade(engine, logger))
	s.AddTool(createGetTradeHistoryTool(), handleGetTradeHistory(engine))
	s.AddTool(createCalculatePerformanceTool(), handleCalculatePerformance(engine, logger))
	s.AddTool(createListTradeableAssetsTool(), handleListTradeableAssets(engine, logger))
	s.AddTool(createGenerateAnalysisTool(), handleGenerateAnalysis(engine, logger))
	s.AddTool(createSaveAnalysisTool(), handleSaveAnalysis(engine, logger))
	s.AddTool(createResetPortfolioTool(), handleResetPortfolio(engine, logger))
}

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Rebal MCP server version and status. Use this to verify connectivity."),
	)
}

// createGetPortfolioStateTool returns the get_portfolio_state tool definition
func createGetPortfolioStateTool() mcp.Tool {
	return mcp.NewTool("get_portfolio_state",
		mcp.WithDescription("Get the current portfolio: holdings valued at resolved prices with per-asset price sources, allocation percentages by category, total value, cost basis, and performance."),
	)
}

// createGetAssetPriceTool returns the get_asset_price tool definition
func createGetAssetPriceTool() mcp.Tool {
	return mcp.NewTool("get_asset_price",
		mcp.WithDescription("Resolve the current price of a single asset through the fallback chain. Returns the price, where it came from, and whether the asset can be traded at that price."),
		mcp.WithString("asset_id",
			mcp.Required(),
			mcp.Description("Asset id from the portfolio definition (e.g., 'apple-stock')"),
		),
	)
}

// createSimulateTradeTool returns the simulate_trade tool definition
func createSimulateTradeTool() mcp.Tool {
	return mcp.NewTool("simulate_trade",
		mcp.WithDescription("Execute a simulated buy or sell. The trade is priced at the asset's resolved market price, charged the portfolio's trading fee, journaled, and applied to the holdings ledger. Assets without a reliable market price are refused."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Trade direction: 'buy' or 'sell'"),
		),
		mcp.WithString("asset_id",
			mcp.Required(),
			mcp.Description("Asset id from the portfolio definition"),
		),
		mcp.WithNumber("quantity",
			mcp.Required(),
			mcp.Description("Number of units to trade (must be positive)"),
		),
		mcp.WithString("rationale",
			mcp.Description("Why this trade is being made; recorded in the trade journal"),
		),
	)
}

// createGetTradeHistoryTool returns the get_trade_history tool definition
func createGetTradeHistoryTool() mcp.Tool {
	return mcp.NewTool("get_trade_history",
		mcp.WithDescription("List all simulated trades executed this session, in execution order, with prices, fees, and rationales."),
	)
}

// createCalculatePerformanceTool returns the calculate_performance tool definition
func createCalculatePerformanceTool() mcp.Tool {
	return mcp.NewTool("calculate_performance",
		mcp.WithDescription("Compare the current portfolio value against its value at inception: net change, percentage change, total fees paid, and trade count."),
	)
}

// createListTradeableAssetsTool returns the list_tradeable_assets tool definition
func createListTradeableAssetsTool() mcp.Tool {
	return mcp.NewTool("list_tradeable_assets",
		mcp.WithDescription("List portfolio assets whose current price comes from a reliable market source and can therefore be traded."),
	)
}

// createGenerateAnalysisTool returns the generate_portfolio_analysis tool definition
func createGenerateAnalysisTool() mcp.Tool {
	return mcp.NewTool("generate_portfolio_analysis",
		mcp.WithDescription("Recompute the portfolio valuation with fresh prices. Returns the inception snapshot and the current snapshot side by side for comparison."),
	)
}

// createSaveAnalysisTool returns the save_analysis tool definition
func createSaveAnalysisTool() mcp.Tool {
	return mcp.NewTool("save_analysis",
		mcp.WithDescription("Persist analysis commentary alongside the current computed snapshot. Two slots are available: 'portfolio_analysis' and 'target_allocation'."),
		mcp.WithString("slot",
			mcp.Required(),
			mcp.Description("Which analysis to save: 'portfolio_analysis' or 'target_allocation'"),
		),
		mcp.WithString("commentary",
			mcp.Required(),
			mcp.Description("The analysis text to persist"),
		),
	)
}

// createResetPortfolioTool returns the reset_portfolio tool definition
func createResetPortfolioTool() mcp.Tool {
	return mcp.NewTool("reset_portfolio",
		mcp.WithDescription("Reset the session to inception: clears the trade journal and saved analysis, reloads the portfolio definition, reseeds holdings, and wipes the price cache."),
	)
}
