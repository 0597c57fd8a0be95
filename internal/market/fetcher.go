// Package market retrieves historical closing prices for catalog symbols.
package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// ErrNoData is returned when the provider answers but has no usable prices.
var ErrNoData = errors.New("no price data")

// Fetcher retrieves the closing price series for one symbol over one period.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, symbol string, period models.PeriodCode) (models.PriceSeries, error) {
	return f(ctx, symbol, period)
}

// FetchError describes a failed fetch for one symbol/period pair.
type FetchError struct {
	Symbol string
	Period models.PeriodCode
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Symbol, e.Period, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
