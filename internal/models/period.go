package models

import (
	"fmt"
	"strings"
)

// PeriodCode is a supported lookback window. The string value is the
// provider range parameter.
type PeriodCode string

const (
	Period1M  PeriodCode = "1mo"
	Period3M  PeriodCode = "3mo"
	Period6M  PeriodCode = "6mo"
	Period1Y  PeriodCode = "1y"
	PeriodYTD PeriodCode = "ytd"
	Period3Y  PeriodCode = "3y"
	Period5Y  PeriodCode = "5y"
	Period10Y PeriodCode = "10y"
)

// AllPeriods lists every period in canonical display order.
var AllPeriods = []PeriodCode{
	Period1M, Period3M, Period6M, Period1Y, PeriodYTD, Period3Y, Period5Y, Period10Y,
}

var periodLabels = map[PeriodCode]string{
	Period1M:  "1 mes",
	Period3M:  "3 meses",
	Period6M:  "6 meses",
	Period1Y:  "1 año",
	PeriodYTD: "YTD",
	Period3Y:  "3 años",
	Period5Y:  "5 años",
	Period10Y: "10 años",
}

// Label returns the Spanish display label (e.g. "3 meses").
func (p PeriodCode) Label() string {
	if l, ok := periodLabels[p]; ok {
		return l
	}
	return string(p)
}

// Header returns the upper-case code used in table headers (e.g. "3MO").
func (p PeriodCode) Header() string {
	return strings.ToUpper(string(p))
}

// Index returns the canonical position of p, or -1 if p is unknown.
func (p PeriodCode) Index() int {
	for i, q := range AllPeriods {
		if q == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the supported periods.
func (p PeriodCode) Valid() bool {
	return p.Index() >= 0
}

// ParsePeriod accepts a period code ("1y", "YTD") or a display label ("1 año").
func ParsePeriod(s string) (PeriodCode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, p := range AllPeriods {
		if v == string(p) || v == strings.ToLower(p.Label()) {
			return p, nil
		}
	}
	return "", &ValidationError{Field: "period", Message: fmt.Sprintf("unknown period %q", s)}
}

// ParsePeriods parses a list of period codes, skipping blanks.
func ParsePeriods(values []string) ([]PeriodCode, error) {
	out := make([]PeriodCode, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		p, err := ParsePeriod(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// CanonicalPeriods deduplicates periods and sorts them into canonical order.
// Unknown periods are returned as an error.
func CanonicalPeriods(periods []PeriodCode) ([]PeriodCode, error) {
	seen := make(map[PeriodCode]bool, len(periods))
	for _, p := range periods {
		if !p.Valid() {
			return nil, &ValidationError{Field: "periods", Message: fmt.Sprintf("unknown period %q", p)}
		}
		seen[p] = true
	}
	out := make([]PeriodCode, 0, len(seen))
	for _, p := range AllPeriods {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out, nil
}
