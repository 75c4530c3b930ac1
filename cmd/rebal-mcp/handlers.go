package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/rebal/internal/common"
	"github.com/bobmcallan/rebal/internal/models"
	"github.com/bobmcallan/rebal/internal/portfolio"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Rebal MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleGetPortfolioState implements the get_portfolio_state tool
func handleGetPortfolioState(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		view, err := engine.State(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Portfolio state failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(view)
	}
}

// handleGetAssetPrice implements the get_asset_price tool
func handleGetAssetPrice(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assetID, err := request.RequireString("asset_id")
		if err != nil || assetID == "" {
			return errorResult("Error: asset_id parameter is required"), nil
		}

		price, err := engine.Price(ctx, assetID)
		if err != nil {
			logger.Error().Err(err).Str("asset", assetID).Msg("Price resolution failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(price)
	}
}

// handleSimulateTrade implements the simulate_trade tool
func handleSimulateTrade(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		action, err := request.RequireString("action")
		if err != nil || action == "" {
			return errorResult("Error: action parameter is required ('buy' or 'sell')"), nil
		}
		assetID, err := request.RequireString("asset_id")
		if err != nil || assetID == "" {
			return errorResult("Error: asset_id parameter is required"), nil
		}
		quantity, err := request.RequireFloat("quantity")
		if err != nil {
			return errorResult("Error: quantity parameter is required"), nil
		}
		rationale := request.GetString("rationale", "")

		trade, err := engine.ExecuteTrade(ctx, portfolio.TradeRequest{
			Action:    models.TradeAction(action),
			AssetID:   assetID,
			Quantity:  quantity,
			Rationale: rationale,
		})
		if err != nil {
			logger.Error().Err(err).Str("asset", assetID).Str("action", action).Msg("Trade refused")
			return errorResult(fmt.Sprintf("Trade error: %v", err)), nil
		}
		return jsonResult(trade)
	}
}

// handleGetTradeHistory implements the get_trade_history tool
func handleGetTradeHistory(engine *portfolio.Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		trades := engine.Trades()
		if len(trades) == 0 {
			return textResult("No trades executed this session."), nil
		}
		return jsonResult(trades)
	}
}

// handleCalculatePerformance implements the calculate_performance tool
func handleCalculatePerformance(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		report, err := engine.Performance(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Performance calculation failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return jsonResult(report)
	}
}

// handleListTradeableAssets implements the list_tradeable_assets tool
func handleListTradeableAssets(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		assets, err := engine.TradeableAssets(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Tradeable asset listing failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if len(assets) == 0 {
			return textResult("No assets currently have a tradeable price source."), nil
		}
		return jsonResult(assets)
	}
}

// handleGenerateAnalysis implements the generate_portfolio_analysis tool
func handleGenerateAnalysis(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		inception, err := engine.PreTradeSnapshot(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Inception snapshot failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		current, err := engine.RegenerateAnalysis(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Analysis generation failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(map[string]*models.AnalysisSnapshot{
			"inception": inception,
			"current":   current,
		})
	}
}

// handleSaveAnalysis implements the save_analysis tool
func handleSaveAnalysis(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		slot, err := request.RequireString("slot")
		if err != nil || slot == "" {
			return errorResult("Error: slot parameter is required ('portfolio_analysis' or 'target_allocation')"), nil
		}
		commentary, err := request.RequireString("commentary")
		if err != nil || commentary == "" {
			return errorResult("Error: commentary parameter is required"), nil
		}

		if err := engine.SaveAnalysis(ctx, slot, commentary); err != nil {
			logger.Error().Err(err).Str("slot", slot).Msg("Analysis save failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Analysis saved to '%s'.", slot)), nil
	}
}

// handleResetPortfolio implements the reset_portfolio tool
func handleResetPortfolio(engine *portfolio.Engine, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := engine.Reset(ctx); err != nil {
			logger.Error().Err(err).Msg("Session reset failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult("Portfolio reset to inception. Trade journal cleared, price cache wiped."), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult marshals a payload to indented JSON as the tool's text content.
func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Error: failed to encode response: %v", err)), nil
	}
	return textResult(string(data)), nil
}
