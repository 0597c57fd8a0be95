package market

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	yfmodels "github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// historyFunc loads daily bars for a symbol.
type historyFunc func(symbol string, params yfmodels.HistoryParams) ([]yfmodels.Bar, error)

// YahooFetcher fetches daily closes from Yahoo Finance.
type YahooFetcher struct {
	maxRetries int
	logger     *common.Logger
	history    historyFunc
	now        func() time.Time
	backoff    func(attempt int) time.Duration
}

// NewYahooFetcher creates a fetcher that retries failed requests up to
// maxRetries times.
func NewYahooFetcher(maxRetries int, logger *common.Logger) *YahooFetcher {
	if maxRetries <= 0 {
		maxRetries = 3 // default
	}
	return &YahooFetcher{
		maxRetries: maxRetries,
		logger:     logger,
		history:    tickerHistory,
		now:        time.Now,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
	}
}

func tickerHistory(symbol string, params yfmodels.HistoryParams) ([]yfmodels.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}
	return bars, nil
}

// yahooRange maps a period to the provider range to request and the
// earliest point to keep. Yahoo has no 3y range so 5y is trimmed.
func yahooRange(period models.PeriodCode, now time.Time) (string, time.Time) {
	if period == models.Period3Y {
		return "5y", now.AddDate(-3, 0, 0)
	}
	return string(period), time.Time{}
}

// Fetch implements Fetcher.
func (f *YahooFetcher) Fetch(ctx context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !period.Valid() {
		return models.PriceSeries{}, &FetchError{Symbol: symbol, Period: period, Err: fmt.Errorf("unsupported period %q", period)}
	}

	rng, since := yahooRange(period, f.now())
	params := yfmodels.HistoryParams{
		Period:     rng,
		Interval:   "1d",
		AutoAdjust: true,
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.PriceSeries{}, &FetchError{Symbol: symbol, Period: period, Err: err}
		}

		bars, err := f.history(symbol, params)
		if err == nil {
			series := toSeries(symbol, period, bars, since, f.now())
			if series.Len() == 0 {
				return models.PriceSeries{}, &FetchError{Symbol: symbol, Period: period, Err: ErrNoData}
			}
			f.logger.Debug().Str("symbol", symbol).Str("period", string(period)).Int("points", series.Len()).Msg("fetched price history")
			return series, nil
		}
		lastErr = err

		if attempt < f.maxRetries-1 {
			wait := f.backoff(attempt)
			f.logger.Warn().Err(err).Str("symbol", symbol).Str("period", string(period)).Int("attempt", attempt+1).Dur("wait", wait).Msg("Retrying")
			select {
			case <-ctx.Done():
				return models.PriceSeries{}, &FetchError{Symbol: symbol, Period: period, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}
	}

	return models.PriceSeries{}, &FetchError{
		Symbol: symbol,
		Period: period,
		Err:    fmt.Errorf("failed after %d attempts: %w", f.maxRetries, lastErr),
	}
}

// toSeries converts bars into an ordered series, dropping non-positive
// closes and anything before since.
func toSeries(symbol string, period models.PeriodCode, bars []yfmodels.Bar, since, fetched time.Time) models.PriceSeries {
	series := models.PriceSeries{
		Symbol:    symbol,
		Period:    period,
		FetchedAt: fetched,
		Points:    make([]models.PricePoint, 0, len(bars)),
	}
	for _, bar := range bars {
		if bar.Close <= 0 {
			continue
		}
		if !since.IsZero() && bar.Date.Before(since) {
			continue
		}
		series.Points = append(series.Points, models.PricePoint{Time: bar.Date, Close: bar.Close})
	}
	sort.SliceStable(series.Points, func(i, j int) bool {
		return series.Points[i].Time.Before(series.Points[j].Time)
	})
	return series
}
