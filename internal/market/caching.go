package market

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/optimaxx-portal/internal/cache"
	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// CachingFetcher layers an in-memory cache and an optional persistent store
// over another Fetcher. Concurrent requests for the same series share one
// upstream call. When upstream fails, a stored copy is served even if stale.
type CachingFetcher struct {
	next     Fetcher
	cache    *cache.SeriesCache
	store    interfaces.SeriesStorage
	storeTTL time.Duration
	logger   *common.Logger
	group    singleflight.Group
}

// NewCachingFetcher wraps next. store may be nil.
func NewCachingFetcher(next Fetcher, c *cache.SeriesCache, store interfaces.SeriesStorage, storeTTL time.Duration, logger *common.Logger) *CachingFetcher {
	return &CachingFetcher{
		next:     next,
		cache:    c,
		store:    store,
		storeTTL: storeTTL,
		logger:   logger,
	}
}

// Fetch implements Fetcher.
func (f *CachingFetcher) Fetch(ctx context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error) {
	if s, ok := f.cache.Get(symbol, period); ok {
		return s, nil
	}

	key := models.SeriesKey(symbol, period)
	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		return f.load(ctx, symbol, period)
	})
	if err != nil {
		return models.PriceSeries{}, err
	}
	return v.(models.PriceSeries), nil
}

func (f *CachingFetcher) load(ctx context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error) {
	var stored *models.PriceSeries
	if f.store != nil {
		s, err := f.store.Get(ctx, symbol, period)
		switch {
		case err == nil:
			stored = s
			if !s.IsStale(f.storeTTL) {
				f.cache.Set(*s)
				return *s, nil
			}
		case !errors.Is(err, interfaces.ErrNotFound):
			f.logger.Warn().Err(err).Str("symbol", symbol).Str("period", string(period)).Msg("series store read failed")
		}
	}

	series, err := f.next.Fetch(ctx, symbol, period)
	if err != nil {
		if stored != nil && stored.Len() > 0 {
			f.logger.Warn().Err(err).
				Str("symbol", symbol).
				Str("period", string(period)).
				Str("fetched_at", stored.FetchedAt.Format(time.RFC3339)).
				Msg("upstream fetch failed, serving stored series")
			return *stored, nil
		}
		return models.PriceSeries{}, err
	}

	f.cache.Set(series)
	if f.store != nil {
		if err := f.store.Put(ctx, &series); err != nil {
			f.logger.Warn().Err(err).Str("symbol", symbol).Str("period", string(period)).Msg("series store write failed")
		}
	}
	return series, nil
}

// Invalidate drops every cached period for symbol from memory. Stored
// copies remain as the fallback.
func (f *CachingFetcher) Invalidate(symbol string) {
	f.cache.InvalidateSymbol(symbol)
}
