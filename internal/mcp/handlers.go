package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
	"github.com/bobmcallan/optimaxx-portal/internal/report"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Service computes portfolio statistics.
type Service interface {
	Calculate(ctx context.Context, sel models.Selection) (models.Report, error)
	ComputeReturnRisk(ctx context.Context, symbols []string, periods []models.PeriodCode) (models.ReturnRisk, error)
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}

// computeErrorResult turns an engine error into a tool error. Validation
// problems are reported to the caller verbatim.
func computeErrorResult(logger *common.Logger, tool string, err error) *mcp.CallToolResult {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return errorResult("Error: " + ve.Error())
	}
	logger.Error().Str("tool", tool).Err(err).Msg("tool call failed")
	return errorResult("Error: statistics computation failed")
}

func handleListInstruments() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult("# Instrumentos Financieros\n\n" + report.CatalogTable(catalog.All())), nil
	}
}

func handleVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(config.Version())
	if err != nil {
		return errorResult("Error: " + err.Error()), nil
	}
	return textResult(string(out)), nil
}

func handleListPeriods() server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		sb.WriteString("| Código | Periodo |\n| --- | --- |\n")
		for _, p := range models.AllPeriods {
			fmt.Fprintf(&sb, "| %s | %s |\n", p, p.Label())
		}
		return textResult(sb.String()), nil
	}
}

func handleComputeReturnRisk(service Service, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := r.GetArguments()

		symbols := stringList(args["symbols"])
		if len(symbols) == 0 {
			return errorResult("Error: symbols parameter is required"), nil
		}
		periods, err := models.ParsePeriods(stringList(args["periods"]))
		if err != nil {
			return computeErrorResult(logger, "compute_return_risk", err), nil
		}

		rr, err := service.ComputeReturnRisk(ctx, symbols, periods)
		if err != nil {
			return computeErrorResult(logger, "compute_return_risk", err), nil
		}
		return textResult("## Rendimiento y Riesgo\n\n" + report.MetricsTable(rr)), nil
	}
}

func handleCalculatePortfolio(service Service, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := r.GetArguments()

		sel, err := selectionFromArgs(args)
		if err != nil {
			return computeErrorResult(logger, "calculate_portfolio", err), nil
		}

		rep, err := service.Calculate(ctx, sel)
		if err != nil {
			return computeErrorResult(logger, "calculate_portfolio", err), nil
		}
		return textResult(report.Markdown(rep)), nil
	}
}

// selectionFromArgs reads calculate_portfolio arguments. Clients send
// weights as an object or as "SYM=60,SYM=40".
func selectionFromArgs(args map[string]interface{}) (models.Selection, error) {
	sel := models.Selection{
		Symbols: stringList(args["symbols"]),
		Weights: map[string]int{},
	}

	switch w := args["weights"].(type) {
	case map[string]interface{}:
		for sym, v := range w {
			n, ok := wholeNumber(v)
			if !ok {
				return sel, &models.ValidationError{Field: "weights", Message: fmt.Sprintf("weight for %s must be a whole number", sym)}
			}
			sel.Weights[sym] = n
		}
	case string:
		for _, part := range strings.Split(w, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			sym, num, ok := strings.Cut(part, "=")
			if !ok {
				sym, num, ok = strings.Cut(part, ":")
			}
			n, err := strconv.Atoi(strings.TrimSpace(num))
			if !ok || err != nil {
				return sel, &models.ValidationError{Field: "weights", Message: fmt.Sprintf("expected SYMBOL=PERCENT, got %q", part)}
			}
			sel.Weights[strings.TrimSpace(sym)] = n
		}
	case nil:
	default:
		return sel, &models.ValidationError{Field: "weights", Message: "weights must be an object of percentages"}
	}

	switch c := args["capital"].(type) {
	case float64:
		sel.Capital = c
	case string:
		v, err := strconv.ParseFloat(strings.ReplaceAll(c, ",", ""), 64)
		if err != nil {
			return sel, &models.ValidationError{Field: "capital", Message: fmt.Sprintf("invalid amount %q", c)}
		}
		sel.Capital = v
	}

	if p, _ := args["period"].(string); p != "" {
		period, err := models.ParsePeriod(p)
		if err != nil {
			return sel, err
		}
		sel.Period = period
	}

	return sel, nil
}

// stringList accepts a JSON array of strings or a comma-separated string.
func stringList(v interface{}) []string {
	var out []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	case string:
		out = strings.Split(t, ",")
	}
	kept := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return kept
}

func wholeNumber(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}
