package models

import (
	"math"
	"strings"
	"time"
)

// PricePoint is a single closing price observation.
type PricePoint struct {
	Time  time.Time `json:"time" msgpack:"t"`
	Close float64   `json:"close" msgpack:"c"`
}

// PriceSeries holds the closing prices for one symbol over one period,
// oldest first.
type PriceSeries struct {
	Key       string       `json:"-" badgerhold:"key" msgpack:"k"`
	Symbol    string       `json:"symbol" msgpack:"s"`
	Period    PeriodCode   `json:"period" msgpack:"p"`
	Points    []PricePoint `json:"points" msgpack:"pts"`
	FetchedAt time.Time    `json:"fetched_at" msgpack:"f"`
}

// SeriesKey builds the cache/storage key for a symbol and period.
func SeriesKey(symbol string, period PeriodCode) string {
	return strings.ToUpper(strings.TrimSpace(symbol)) + ":" + string(period)
}

// Closes returns the finite closing prices in order.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		closes = append(closes, p.Close)
	}
	return closes
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// IsStale returns true if the series was fetched longer than ttl ago.
func (s PriceSeries) IsStale(ttl time.Duration) bool {
	if s.FetchedAt.IsZero() {
		return true
	}
	return time.Since(s.FetchedAt) >= ttl
}
