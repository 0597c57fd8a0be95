package mcp

import (
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools adds every OptiMaxx tool to s and returns how many were added.
func RegisterTools(s *server.MCPServer, service Service, logger *common.Logger) int {
	tools := []server.ServerTool{
		{Tool: createVersionTool(), Handler: handleVersion},
		{Tool: createListInstrumentsTool(), Handler: handleListInstruments()},
		{Tool: createListPeriodsTool(), Handler: handleListPeriods()},
		{Tool: createComputeReturnRiskTool(), Handler: handleComputeReturnRisk(service, logger)},
		{Tool: createCalculatePortfolioTool(), Handler: handleCalculatePortfolio(service, logger)},
	}
	s.AddTools(tools...)
	return len(tools)
}

func createVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the OptiMaxx portal build information. Useful as a connectivity check."),
	)
}

func createListInstrumentsTool() mcp.Tool {
	return mcp.NewTool("list_instruments",
		mcp.WithDescription("List the ETFs available for portfolio construction, with currency and dividend policy."),
	)
}

func createListPeriodsTool() mcp.Tool {
	return mcp.NewTool("list_periods",
		mcp.WithDescription("List the supported lookback periods (1mo, 3mo, 6mo, 1y, ytd, 3y, 5y, 10y)."),
	)
}

func createComputeReturnRiskTool() mcp.Tool {
	return mcp.NewTool("compute_return_risk",
		mcp.WithDescription("Compute the historical return and risk (standard deviation of daily changes) for each ETF over each period. Cells without data are shown as '-'."),
		mcp.WithArray("symbols",
			mcp.WithStringItems(),
			mcp.Required(),
			mcp.Description("ETF symbols, e.g. [\"SPY\", \"QQQ\"]"),
		),
		mcp.WithArray("periods",
			mcp.WithStringItems(),
			mcp.Description("Period codes; all periods when omitted"),
		),
	)
}

func createCalculatePortfolioTool() mcp.Tool {
	return mcp.NewTool("calculate_portfolio",
		mcp.WithDescription("Calculate a weighted ETF portfolio: return/risk table plus the expected return in percent and in capital for every period. Weights are whole percentages that must sum to 100."),
		mcp.WithArray("symbols",
			mcp.WithStringItems(),
			mcp.Required(),
			mcp.Description("ETF symbols in the portfolio"),
		),
		mcp.WithObject("weights",
			mcp.Description("Percentage per symbol, e.g. {\"SPY\": 60, \"QQQ\": 40}. Optional for a single symbol."),
		),
		mcp.WithNumber("capital",
			mcp.Required(),
			mcp.Description("Capital to invest"),
		),
		mcp.WithString("period",
			mcp.Required(),
			mcp.Description("Reference period code"),
			mcp.Enum("1mo", "3mo", "6mo", "1y", "ytd", "3y", "5y", "10y"),
		),
	)
}
