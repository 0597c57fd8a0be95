package market

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// Warmer prefetches every catalog symbol for every period so user requests
// hit the cache. It satisfies scheduler.Job.
type Warmer struct {
	fetcher     Fetcher
	symbols     func() []string
	concurrency int
	timeout     time.Duration
	history     interfaces.WarmLog
	store       interfaces.SeriesStorage
	retention   time.Duration
	logger      *common.Logger
}

// WarmerOption configures a Warmer.
type WarmerOption func(*Warmer)

// WithHistory records every completed run in log.
func WithHistory(log interfaces.WarmLog) WarmerOption {
	return func(w *Warmer) { w.history = log }
}

// WithRetention purges stored series older than retention after each run.
func WithRetention(store interfaces.SeriesStorage, retention time.Duration) WarmerOption {
	return func(w *Warmer) {
		w.store = store
		w.retention = retention
	}
}

// NewWarmer creates a warmer over the symbols returned by symbols.
func NewWarmer(fetcher Fetcher, symbols func() []string, concurrency int, logger *common.Logger, opts ...WarmerOption) *Warmer {
	if concurrency < 1 {
		concurrency = 1
	}
	w := &Warmer{
		fetcher:     fetcher,
		symbols:     symbols,
		concurrency: concurrency,
		timeout:     10 * time.Minute,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements scheduler.Job.
func (w *Warmer) Name() string { return "market-warm" }

// Run implements scheduler.Job.
func (w *Warmer) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	_, err := w.RunContext(ctx)
	return err
}

// RunContext warms the catalog, records the run and purges expired stored
// series. It fails only when every fetch failed.
func (w *Warmer) RunContext(ctx context.Context) (models.WarmRun, error) {
	run := models.WarmRun{StartedAt: time.Now().UTC()}
	run.Fetched, run.Failed = w.Warm(ctx)
	run.FinishedAt = time.Now().UTC()

	w.logger.Info().
		Int("fetched", run.Fetched).
		Int("failed", run.Failed).
		Dur("took", run.Duration()).
		Msg("market cache warmed")

	if w.history != nil {
		if err := w.history.Record(ctx, run); err != nil {
			w.logger.Warn().Err(err).Msg("failed to record warm run")
		}
	}
	if w.store != nil && w.retention > 0 {
		if _, err := w.store.PurgeOlderThan(ctx, time.Now().Add(-w.retention)); err != nil {
			w.logger.Warn().Err(err).Msg("failed to purge stored series")
		}
	}

	if run.Fetched == 0 && run.Failed > 0 {
		return run, fmt.Errorf("all %d fetches failed", run.Failed)
	}
	return run, nil
}

// Warm fetches every symbol/period pair and reports successes and failures.
func (w *Warmer) Warm(ctx context.Context) (ok, failed int) {
	symbols := w.symbols()
	results := make([]bool, len(symbols)*len(models.AllPeriods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for i, sym := range symbols {
		for j, p := range models.AllPeriods {
			idx := i*len(models.AllPeriods) + j
			sym, p := sym, p
			g.Go(func() error {
				if _, err := w.fetcher.Fetch(gctx, sym, p); err != nil {
					w.logger.Debug().Err(err).Str("symbol", sym).Str("period", string(p)).Msg("warm fetch failed")
					return nil
				}
				results[idx] = true
				return nil
			})
		}
	}
	_ = g.Wait()

	for _, r := range results {
		if r {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}
