package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/bobmcallan/optimaxx-portal/internal/app"
	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/market"
)

type configPaths []string

func (c *configPaths) String() string { return strings.Join(*c, ",") }

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	logLevel    = flag.String("log-level", "warn", "Log level written to stderr")
	rawOutput   = flag.Bool("raw", false, "Print Markdown without terminal styling")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
}

// stdout receives command output. Diagnostics go to stderr.
var stdout io.Writer = os.Stdout

// openCore loads configuration and builds the statistics stack.
var openCore = func() (*app.Core, *config.Config, error) {
	cfg, err := config.LoadFromFiles(configFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, nil, fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}
	core, err := app.NewCore(cfg, newLogger())
	if err != nil {
		return nil, nil, err
	}
	return core, cfg, nil
}

func newLogger() *common.Logger {
	return common.NewLoggerWithOutput(*logLevel, os.Stderr)
}

// printMarkdown renders md for the terminal, or prints it as is with -raw.
func printMarkdown(md string) {
	if *rawOutput {
		fmt.Fprint(stdout, md)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, out)
}

// warmer builds a catalog warmer over core, recording runs in the store
// when one is configured.
func warmer(core *app.Core, cfg *config.Config) *market.Warmer {
	var opts []market.WarmerOption
	if core.Storage != nil {
		opts = append(opts, market.WithHistory(core.Storage.WarmLog()))
	}
	return market.NewWarmer(core.Fetcher, catalog.Symbols, cfg.Market.MaxConcurrency, newLogger(), opts...)
}
