package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// ErrNotFound is returned by storage lookups that match nothing.
var ErrNotFound = errors.New("not found")

// StorageManager provides access to domain-specific storage interfaces.
type StorageManager interface {
	SeriesStorage() SeriesStorage
	WarmLog() WarmLog
	Close() error
}

// SeriesStorage persists fetched price series so a restart or an upstream
// outage does not leave the statistics page empty.
type SeriesStorage interface {
	Get(ctx context.Context, symbol string, period models.PeriodCode) (*models.PriceSeries, error)
	Put(ctx context.Context, series *models.PriceSeries) error
	Delete(ctx context.Context, symbol string, period models.PeriodCode) error
	ListBySymbol(ctx context.Context, symbol string) ([]models.PriceSeries, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// WarmLog keeps a short history of warmer runs.
type WarmLog interface {
	Record(ctx context.Context, run models.WarmRun) error
	// Recent returns up to n runs, newest first.
	Recent(ctx context.Context, n int) ([]models.WarmRun, error)
}
