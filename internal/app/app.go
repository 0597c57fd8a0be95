package app

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/cache"
	"github.com/bobmcallan/optimaxx-portal/internal/catalog"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/config"
	"github.com/bobmcallan/optimaxx-portal/internal/handlers"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
	"github.com/bobmcallan/optimaxx-portal/internal/market"
	"github.com/bobmcallan/optimaxx-portal/internal/mcp"
	"github.com/bobmcallan/optimaxx-portal/internal/scheduler"
	"github.com/bobmcallan/optimaxx-portal/internal/stats"
	"github.com/bobmcallan/optimaxx-portal/internal/storage"
)

// Core is the market data and statistics stack shared by the portal and
// the CLI.
type Core struct {
	Storage interfaces.StorageManager
	Cache   *cache.SeriesCache
	Fetcher *market.CachingFetcher
	Engine  *stats.Engine
}

// App holds all application components and dependencies.
type App struct {
	*Core

	Config *config.Config
	Logger *common.Logger

	Warmer    *market.Warmer
	Scheduler *scheduler.Scheduler

	// HTTP handlers
	LandingHandler    *handlers.LandingHandler
	HealthHandler     *handlers.HealthHandler
	CatalogHandler    *handlers.CatalogHandler
	StatisticsHandler *handlers.StatisticsHandler
	ChartHandler      *handlers.ChartHandler
	ReportHandler     *handlers.ReportHandler
	MCPHandler        *mcp.Handler
}

type options struct {
	upstream market.Fetcher
}

// Option customises construction.
type Option func(*options)

// WithUpstream replaces the Yahoo Finance fetcher. Caching and persistence
// still wrap it.
func WithUpstream(f market.Fetcher) Option {
	return func(o *options) { o.upstream = f }
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("running in dev mode, templates show build details")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	core, err := NewCore(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}
	a.Core = core
	a.initHandlers()

	if err := a.initScheduler(); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info().Msg("application initialization complete")

	return a, nil
}

// NewCore builds the fetch chain: memory cache, then the persistent store,
// then the upstream provider, with the statistics engine on top.
func NewCore(cfg *config.Config, logger *common.Logger, opts ...Option) (*Core, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	store, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open price store: %w", err)
	}
	c := &Core{Storage: store}

	upstream := o.upstream
	if upstream == nil {
		upstream = market.NewYahooFetcher(cfg.Market.MaxRetries, logger)
	}

	var series interfaces.SeriesStorage
	if c.Storage != nil {
		series = c.Storage.SeriesStorage()
	}

	c.Cache = cache.New(cfg.Market.CacheTTLDuration(), cfg.Market.CacheMaxEntries)
	c.Fetcher = market.NewCachingFetcher(upstream, c.Cache, series, cfg.Market.StoreTTLDuration(), logger)

	c.Engine = stats.New(c.Fetcher, stats.Config{
		MinCapital:     cfg.Portfolio.MinCapital,
		MaxConcurrency: cfg.Market.MaxConcurrency,
		Currency:       cfg.Portfolio.Currency,
	}, logger)

	logger.Debug().
		Str("provider", cfg.Market.Provider).
		Bool("persistent", c.Storage != nil).
		Msg("market data initialized")
	return c, nil
}

// Close releases the price store.
func (c *Core) Close() error {
	if c == nil || c.Storage == nil {
		return nil
	}
	err := c.Storage.Close()
	c.Storage = nil
	if err != nil {
		return fmt.Errorf("failed to close price store: %w", err)
	}
	return nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	devMode := a.Config.IsDevMode()

	templates := handlers.LoadTemplates()
	a.LandingHandler = handlers.NewLandingHandler(a.Logger, templates, devMode)

	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.HealthHandler.SetStoreStatus(a.storeStatus)
	if a.Storage != nil {
		a.HealthHandler.SetWarmHistory(a.Storage.WarmLog())
	}

	a.CatalogHandler = handlers.NewCatalogHandler(a.Logger, templates, devMode)
	a.StatisticsHandler = handlers.NewStatisticsHandler(a.Logger, templates, devMode, a.Engine)
	a.StatisticsHandler.SetCapitalDefaults(a.Config.Portfolio.DefaultCapital, a.Config.Portfolio.CapitalStep)
	a.ChartHandler = handlers.NewChartHandler(a.Logger, a.Engine)
	a.ReportHandler = handlers.NewReportHandler(a.Logger, templates, devMode, a.Engine)

	a.MCPHandler = mcp.NewHandler(a.Engine, a.Logger)

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// initScheduler registers the cache warmer when a schedule is configured.
func (a *App) initScheduler() error {
	var opts []market.WarmerOption
	if a.Storage != nil {
		opts = append(opts,
			market.WithHistory(a.Storage.WarmLog()),
			market.WithRetention(a.Storage.SeriesStorage(), a.Config.Market.StoreTTLDuration()*4),
		)
	}
	a.Warmer = market.NewWarmer(a.Fetcher, catalog.Symbols, a.Config.Market.MaxConcurrency, a.Logger, opts...)

	schedule := strings.TrimSpace(a.Config.Market.WarmSchedule)
	if schedule == "" {
		return nil
	}

	a.Scheduler = scheduler.New(a.Logger)
	if err := a.Scheduler.AddJob(schedule, a.Warmer); err != nil {
		return fmt.Errorf("invalid warm_schedule %q: %w", schedule, err)
	}
	a.Scheduler.Start()
	return nil
}

func (a *App) storeStatus() string {
	if a.Core == nil || a.Storage == nil {
		return "disabled"
	}
	return "ok"
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	return a.Core.Close()
}
