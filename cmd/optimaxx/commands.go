package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/subcommands"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/mcp"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
	"github.com/bobmcallan/optimaxx-portal/internal/report"
)

// exitFor maps a computation error to an exit status, printing it.
func exitFor(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if models.IsValidationError(err) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}

// catalogCmd lists the instrument catalog.
type catalogCmd struct{}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "list the available ETFs" }
func (*catalogCmd) Usage() string {
	return `optimaxx catalog

  Lists every ETF that can be added to a portfolio.
`
}
func (*catalogCmd) SetFlags(*flag.FlagSet) {}

func (*catalogCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	printMarkdown("# Instrumentos Financieros\n\n" + report.CatalogTable(catalog.All()))
	return subcommands.ExitSuccess
}

// periodsCmd lists the supported periods.
type periodsCmd struct{}

func (*periodsCmd) Name() string     { return "periods" }
func (*periodsCmd) Synopsis() string { return "list the supported lookback periods" }
func (*periodsCmd) Usage() string {
	return `optimaxx periods
`
}
func (*periodsCmd) SetFlags(*flag.FlagSet) {}

func (*periodsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var sb strings.Builder
	sb.WriteString("| Código | Periodo |\n|--------|---------|\n")
	for _, p := range models.AllPeriods {
		fmt.Fprintf(&sb, "| %s | %s |\n", p, p.Label())
	}
	printMarkdown(sb.String())
	return subcommands.ExitSuccess
}

// statsCmd prints the return/risk table.
type statsCmd struct {
	symbols string
	names   string
	periods string
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show return and risk per ETF and period" }
func (*statsCmd) Usage() string {
	return `optimaxx stats -s <SYM,SYM> [-n <name;name>] [-p <1mo,1y,...>]

  Prints the historical return and risk of each ETF. Cells without data
  are shown as '-'.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "s", "", "Comma-separated ETF symbols")
	f.StringVar(&c.names, "n", "", "Semicolon-separated ETF display names")
	f.StringVar(&c.periods, "p", "", "Comma-separated period codes (default all)")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbols, err := selectedSymbols(c.symbols, c.names)
	if err != nil {
		return exitFor(err)
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -s or -n is required")
		return subcommands.ExitUsageError
	}
	periods, err := models.ParsePeriods(splitList(c.periods))
	if err != nil {
		return exitFor(err)
	}

	core, _, err := openCore()
	if err != nil {
		return exitFor(err)
	}
	defer core.Close()

	rr, err := core.Engine.ComputeReturnRisk(ctx, symbols, periods)
	if err != nil {
		return exitFor(err)
	}
	printMarkdown("## Rendimiento y Riesgo\n\n" + report.MetricsTable(rr))
	return subcommands.ExitSuccess
}

// calculateCmd runs a full portfolio calculation.
type calculateCmd struct {
	symbols string
	names   string
	weights string
	capital float64
	period  string
}

func (*calculateCmd) Name() string     { return "calculate" }
func (*calculateCmd) Synopsis() string { return "calculate the expected return of a weighted portfolio" }
func (*calculateCmd) Usage() string {
	return `optimaxx calculate -s <SYM,SYM> -w <SYM=60,SYM=40> -c <capital> -p <period>

  Weights are whole percentages summing to 100; a single ETF gets 100%
  automatically. Capital must be at least the configured minimum.
`
}

func (c *calculateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbols, "s", "", "Comma-separated ETF symbols")
	f.StringVar(&c.names, "n", "", "Semicolon-separated ETF display names")
	f.StringVar(&c.weights, "w", "", "Weights as SYM=PERCENT, comma-separated")
	f.Float64Var(&c.capital, "c", 0, "Capital to invest (default from configuration)")
	f.StringVar(&c.period, "p", string(models.Period1Y), "Reference period")
}

func (c *calculateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	sel, err := c.selection()
	if err != nil {
		return exitFor(err)
	}

	core, cfg, err := openCore()
	if err != nil {
		return exitFor(err)
	}
	defer core.Close()

	if sel.Capital == 0 {
		sel.Capital = cfg.Portfolio.DefaultCapital
	}

	rep, err := core.Engine.Calculate(ctx, sel)
	if err != nil {
		return exitFor(err)
	}
	printMarkdown(report.Markdown(rep))
	return subcommands.ExitSuccess
}

func (c *calculateCmd) selection() (models.Selection, error) {
	weights, err := parseWeights(c.weights)
	if err != nil {
		return models.Selection{}, err
	}
	period, err := models.ParsePeriod(c.period)
	if err != nil {
		return models.Selection{}, err
	}
	symbols, err := selectedSymbols(c.symbols, c.names)
	if err != nil {
		return models.Selection{}, err
	}
	return models.Selection{
		Symbols: symbols,
		Weights: weights,
		Capital: c.capital,
		Period:  period,
	}, nil
}

// warmCmd fetches every catalog series once, or lists past runs.
type warmCmd struct {
	history int
}

func (*warmCmd) Name() string     { return "warm" }
func (*warmCmd) Synopsis() string { return "prefetch price history for the whole catalog" }
func (*warmCmd) Usage() string {
	return `optimaxx warm [-history N]

  Fetches every ETF and period into the price store so later calculations
  start warm. With -history, lists the last N recorded runs instead.
`
}

func (c *warmCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.history, "history", 0, "List the last N warm runs and exit")
}

func (c *warmCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, cfg, err := openCore()
	if err != nil {
		return exitFor(err)
	}
	defer core.Close()

	if c.history > 0 {
		if core.Storage == nil {
			fmt.Fprintln(os.Stderr, "warm history needs a configured price store")
			return subcommands.ExitFailure
		}
		runs, err := core.Storage.WarmLog().Recent(ctx, c.history)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		printMarkdown(warmHistoryMarkdown(runs))
		return subcommands.ExitSuccess
	}

	run, err := warmer(core, cfg).RunContext(ctx)
	fmt.Fprintf(stdout, "warmed %d series, %d failed in %s\n", run.Fetched, run.Failed, run.Duration().Round(time.Millisecond))
	if err != nil {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func warmHistoryMarkdown(runs []models.WarmRun) string {
	if len(runs) == 0 {
		return "No warm runs recorded.\n"
	}
	var b strings.Builder
	b.WriteString("| Started | Took | Fetched | Failed |\n|---|---|---|---|\n")
	for _, r := range runs {
		fmt.Fprintf(&b, "| %s | %s | %d | %d |\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Duration().Round(time.Second), r.Fetched, r.Failed)
	}
	return b.String()
}

// mcpCmd serves the MCP tools on stdin/stdout.
type mcpCmd struct{}

func (*mcpCmd) Name() string     { return "mcp" }
func (*mcpCmd) Synopsis() string { return "serve the OptiMaxx MCP tools over stdio" }
func (*mcpCmd) Usage() string {
	return `optimaxx mcp

  Runs an MCP server on stdin/stdout for desktop assistants.
`
}
func (*mcpCmd) SetFlags(*flag.FlagSet) {}

func (*mcpCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	core, _, err := openCore()
	if err != nil {
		return exitFor(err)
	}
	defer core.Close()

	if err := mcpserver.ServeStdio(mcp.NewServer(core.Engine, newLogger())); err != nil {
		fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// versionCmd prints build information.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print version information" }
func (*versionCmd) Usage() string          { return "optimaxx version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(stdout, "optimaxx version %s\n", config.Version())
	return subcommands.ExitSuccess
}

func splitList(s string) []string {
	return splitOn(s, ",")
}

func splitOn(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// selectedSymbols merges -s symbols with the catalog symbols of -n display
// names. Names are separated by ';' since some contain commas.
func selectedSymbols(symbols, names string) ([]string, error) {
	out := splitList(symbols)
	if names == "" {
		return out, nil
	}
	resolved, err := catalog.ResolveNames(splitOn(names, ";"))
	if err != nil {
		return nil, err
	}
	return append(out, resolved...), nil
}

// parseWeights reads "SPY=60,QQQ=40". SYM:60 is accepted as well.
func parseWeights(s string) (map[string]int, error) {
	weights := map[string]int{}
	for _, part := range splitList(s) {
		sym, num, ok := strings.Cut(part, "=")
		if !ok {
			sym, num, ok = strings.Cut(part, ":")
		}
		if !ok {
			return nil, &models.ValidationError{Field: "weights", Message: fmt.Sprintf("expected SYMBOL=PERCENT, got %q", part)}
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(num), "%"))
		if err != nil {
			return nil, &models.ValidationError{Field: "weights", Message: fmt.Sprintf("invalid weight for %s: %q", sym, num)}
		}
		weights[strings.TrimSpace(sym)] = n
	}
	if len(weights) == 0 {
		return nil, nil
	}
	return weights, nil
}
