// Package stats computes per-instrument return and risk and the weighted
// expected return of a portfolio.
package stats

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/market"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// Config holds the engine settings.
type Config struct {
	MinCapital     float64
	MaxConcurrency int
	Currency       string
}

// Engine computes statistics over prices obtained from a market.Fetcher.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	fetcher market.Fetcher
	cfg     Config
	logger  *common.Logger
	now     func() time.Time
}

// New creates an Engine.
func New(fetcher market.Fetcher, cfg Config, logger *common.Logger) *Engine {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &Engine{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// MinCapital returns the smallest capital accepted by Calculate.
func (e *Engine) MinCapital() float64 {
	return e.cfg.MinCapital
}

// Currency returns the currency capital amounts are expressed in.
func (e *Engine) Currency() string {
	return e.cfg.Currency
}

// ComputeReturnRisk fetches every symbol/period pair and computes its return
// and risk. Symbols keep the caller's order (duplicates dropped); periods
// are returned in canonical order. An empty periods list means all periods.
// A failed fetch leaves only that cell absent.
func (e *Engine) ComputeReturnRisk(ctx context.Context, symbols []string, periods []models.PeriodCode) (models.ReturnRisk, error) {
	symbols = models.NormalizeSymbols(symbols)
	if len(symbols) == 0 {
		return models.ReturnRisk{}, &models.ValidationError{Field: "symbols", Message: "select at least one instrument"}
	}
	if len(periods) == 0 {
		periods = models.AllPeriods
	}
	periods, err := models.CanonicalPeriods(periods)
	if err != nil {
		return models.ReturnRisk{}, err
	}

	rr := models.ReturnRisk{
		Periods: periods,
		Symbols: make([]models.SymbolMetrics, len(symbols)),
	}
	for i, sym := range symbols {
		rr.Symbols[i] = models.SymbolMetrics{
			Symbol:  sym,
			Periods: make([]models.PeriodMetric, len(periods)),
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.MaxConcurrency)

	for i, sym := range symbols {
		for j, p := range periods {
			g.Go(func() error {
				rr.Symbols[i].Periods[j] = models.PeriodMetric{
					Period:       p,
					MetricResult: e.metric(gctx, sym, p),
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return models.ReturnRisk{}, err
	}

	e.logger.Debug().Strs("symbols", symbols).Int("periods", len(periods)).Msg("return/risk computed")
	return rr, nil
}

func (e *Engine) metric(ctx context.Context, symbol string, period models.PeriodCode) models.MetricResult {
	series, err := e.fetcher.Fetch(ctx, symbol, period)
	if err != nil {
		e.logger.Warn().Err(err).Str("symbol", symbol).Str("period", string(period)).Msg("price data unavailable")
		return models.MetricResult{}
	}
	closes := series.Closes()
	return models.MetricResult{
		Return: Return(closes),
		Risk:   Risk(closes),
	}
}

// ExpectedReturnOption configures ComputeExpectedReturn.
type ExpectedReturnOption func(*expectedReturnOptions)

type expectedReturnOptions struct {
	reference models.PeriodCode
}

// WithReferencePeriod restricts the result to the row for p.
func WithReferencePeriod(p models.PeriodCode) ExpectedReturnOption {
	return func(o *expectedReturnOptions) { o.reference = p }
}

// ComputeExpectedReturn weights each symbol's return by its allocation for
// every period in rr. Absent returns contribute nothing. Weights must sum
// to exactly 100 and capital must meet the engine minimum.
func (e *Engine) ComputeExpectedReturn(rr models.ReturnRisk, weights map[string]int, capital float64, opts ...ExpectedReturnOption) ([]models.ExpectedReturn, error) {
	var o expectedReturnOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := models.ValidateWeights(weights); err != nil {
		return nil, err
	}
	if err := models.ValidateCapital(capital, e.cfg.MinCapital); err != nil {
		return nil, err
	}

	periods := rr.Periods
	if o.reference != "" {
		if !containsPeriod(rr.Periods, o.reference) {
			return nil, &models.ValidationError{Field: "period", Message: fmt.Sprintf("period %q is not in the computed metrics", o.reference)}
		}
		periods = []models.PeriodCode{o.reference}
	}

	return ExpectedReturns(rr, periods, weights, capital), nil
}

// ExpectedReturns is the unvalidated weighted sum behind
// ComputeExpectedReturn.
func ExpectedReturns(rr models.ReturnRisk, periods []models.PeriodCode, weights map[string]int, capital float64) []models.ExpectedReturn {
	rows := make([]models.ExpectedReturn, 0, len(periods))
	for _, p := range periods {
		var pct float64
		for _, s := range rr.Symbols {
			w, ok := weights[s.Symbol]
			if !ok || w == 0 {
				continue
			}
			m, _ := s.Get(p)
			if m.Return == nil {
				continue
			}
			pct += float64(w) / 100 * *m.Return
		}
		rows = append(rows, models.ExpectedReturn{
			Period:  p,
			Percent: pct,
			Capital: capital * pct / 100,
		})
	}
	return rows
}

// Calculate validates sel, computes the full return/risk table and the
// expected return for every period, and marks the selected period. A
// ValidationError is returned before any price is fetched.
func (e *Engine) Calculate(ctx context.Context, sel models.Selection) (models.Report, error) {
	sel = sel.Normalized()
	if err := sel.Validate(e.cfg.MinCapital); err != nil {
		return models.Report{}, err
	}

	rr, err := e.ComputeReturnRisk(ctx, sel.Symbols, models.AllPeriods)
	if err != nil {
		return models.Report{}, err
	}

	rows, err := e.ComputeExpectedReturn(rr, sel.Weights, sel.Capital)
	if err != nil {
		return models.Report{}, err
	}
	for i := range rows {
		rows[i].Selected = rows[i].Period == sel.Period
	}

	e.logger.Info().
		Strs("symbols", sel.Symbols).
		Str("period", string(sel.Period)).
		Float64("capital", sel.Capital).
		Msg("portfolio calculated")

	return models.Report{
		Selection:       sel,
		Metrics:         rr,
		ExpectedReturns: rows,
		Currency:        e.cfg.Currency,
		GeneratedAt:     e.now(),
	}, nil
}

func containsPeriod(periods []models.PeriodCode, p models.PeriodCode) bool {
	for _, q := range periods {
		if q == p {
			return true
		}
	}
	return false
}
