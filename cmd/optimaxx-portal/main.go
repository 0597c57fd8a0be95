// Command optimaxx-portal serves the OptiMaxx ETF statistics site and API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/optimaxx-portal/internal/app"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/server"
)

const (
	configName      = "optimaxx-portal.toml"
	shutdownTimeout = 10 * time.Second
)

type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }

func (l *fileList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type options struct {
	configs fileList
	port    int
	host    string
	version bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.Var(&o.configs, "config", "Configuration file; repeat to layer files")
	fs.Var(&o.configs, "c", "Shorthand for -config")
	fs.IntVar(&o.port, "port", 0, "Listen port, overrides config")
	fs.IntVar(&o.port, "p", 0, "Shorthand for -port")
	fs.StringVar(&o.host, "host", "", "Listen host, overrides config")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if opts.version {
		fmt.Printf("optimaxx-portal version %s\n", config.Version())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "optimaxx-portal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	files := []string(opts.configs)
	if len(files) == 0 {
		if path, ok := findConfig(searchDirs()); ok {
			files = append(files, path)
		}
	}

	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	config.ApplyFlagOverrides(cfg, opts.port, opts.host)
	if issues := cfg.Validate(); len(issues) > 0 {
		return fmt.Errorf("invalid configuration (set via TOML, OPTIMAXX_* env or flags):\n  - %s",
			strings.Join(issues, "\n  - "))
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("environment", cfg.Environment).
		Strs("config_files", files).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error().Err(err).Msg("application close failed")
		}
	}()

	srv := server.New(application)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	logger.Info().Msg("server ready")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// searchDirs lists where a config file is looked for: next to the binary
// first, then the working directory.
func searchDirs() []string {
	dirs := []string{".", "config", "docker"}
	if exe, err := os.Executable(); err == nil {
		bin := filepath.Dir(exe)
		dirs = append([]string{bin, filepath.Join(bin, "config")}, dirs...)
	}
	return dirs
}

// findConfig returns the first configName found in dirs.
func findConfig(dirs []string) (string, bool) {
	for _, dir := range dirs {
		path := filepath.Join(dir, configName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
