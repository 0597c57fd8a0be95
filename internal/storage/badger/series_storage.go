package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/interfaces"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// SeriesStorage implements interfaces.SeriesStorage using BadgerDB.
type SeriesStorage struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewSeriesStorage creates a price series store backed by BadgerDB.
func NewSeriesStorage(db *badgerhold.Store, logger *common.Logger) *SeriesStorage {
	return &SeriesStorage{
		db:     db,
		logger: logger,
	}
}

// Get returns the stored series for symbol and period, or an error
// wrapping interfaces.ErrNotFound.
func (s *SeriesStorage) Get(_ context.Context, symbol string, period models.PeriodCode) (*models.PriceSeries, error) {
	key := models.SeriesKey(symbol, period)

	var series models.PriceSeries
	if err := s.db.Get(key, &series); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("series %s: %w", key, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get series %s: %w", key, err)
	}
	return &series, nil
}

// Put upserts a series under its symbol/period key.
func (s *SeriesStorage) Put(_ context.Context, series *models.PriceSeries) error {
	if series == nil {
		return errors.New("series is nil")
	}
	series.Symbol = strings.ToUpper(strings.TrimSpace(series.Symbol))
	series.Key = models.SeriesKey(series.Symbol, series.Period)
	if series.FetchedAt.IsZero() {
		series.FetchedAt = time.Now()
	}

	if err := s.db.Upsert(series.Key, series); err != nil {
		return fmt.Errorf("failed to store series %s: %w", series.Key, err)
	}

	s.logger.Trace().Str("key", series.Key).Int("points", series.Len()).Msg("series stored")
	return nil
}

// Delete removes a stored series. Deleting a missing series is not an error.
func (s *SeriesStorage) Delete(_ context.Context, symbol string, period models.PeriodCode) error {
	key := models.SeriesKey(symbol, period)
	if err := s.db.Delete(key, models.PriceSeries{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete series %s: %w", key, err)
	}
	return nil
}

// ListBySymbol returns every stored period for symbol.
func (s *SeriesStorage) ListBySymbol(_ context.Context, symbol string) ([]models.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var out []models.PriceSeries
	if err := s.db.Find(&out, badgerhold.Where("Symbol").Eq(symbol)); err != nil {
		return nil, fmt.Errorf("failed to list series for %s: %w", symbol, err)
	}
	return out, nil
}

// PurgeOlderThan deletes series fetched before cutoff and returns how many
// were removed.
func (s *SeriesStorage) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	query := badgerhold.Where("FetchedAt").Lt(cutoff)

	n, err := s.db.Count(&models.PriceSeries{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count stale series: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.db.DeleteMatching(&models.PriceSeries{}, query); err != nil {
		return 0, fmt.Errorf("failed to purge stale series: %w", err)
	}

	s.logger.Debug().Int("removed", int(n)).Msg("purged stale series")
	return int(n), nil
}
