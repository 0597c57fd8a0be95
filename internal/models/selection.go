package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Selection is the user's portfolio choice for one Calculate action.
type Selection struct {
	Symbols []string       `json:"symbols"`
	Weights map[string]int `json:"weights"`
	Capital float64        `json:"capital"`
	Period  PeriodCode     `json:"period"`
}

// NormalizeSymbols trims, upper-cases and deduplicates symbols, keeping
// first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Normalized returns a copy with normalized symbols and weight keys. A
// single selected symbol is assigned 100% automatically.
func (s Selection) Normalized() Selection {
	out := Selection{
		Symbols: NormalizeSymbols(s.Symbols),
		Weights: make(map[string]int, len(s.Weights)),
		Capital: s.Capital,
		Period:  s.Period,
	}
	for k, v := range s.Weights {
		out.Weights[strings.ToUpper(strings.TrimSpace(k))] += v
	}
	if len(out.Symbols) == 1 {
		out.Weights = map[string]int{out.Symbols[0]: 100}
	}
	return out
}

// Validate checks the selection against the capital minimum. It expects a
// normalized selection.
func (s Selection) Validate(minCapital float64) error {
	if len(s.Symbols) == 0 {
		return &ValidationError{Field: "symbols", Message: "select at least one instrument"}
	}
	if !s.Period.Valid() {
		return &ValidationError{Field: "period", Message: fmt.Sprintf("unknown period %q", s.Period)}
	}
	selected := make(map[string]bool, len(s.Symbols))
	for _, sym := range s.Symbols {
		selected[sym] = true
	}
	var extra []string
	for sym := range s.Weights {
		if !selected[sym] {
			extra = append(extra, sym)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return &ValidationError{Field: "weights", Message: fmt.Sprintf("weights given for unselected instruments: %s", strings.Join(extra, ", "))}
	}
	if err := ValidateWeights(s.Weights); err != nil {
		return err
	}
	return ValidateCapital(s.Capital, minCapital)
}

// ValidateWeights requires every weight in 0..100 and a total of exactly 100.
func ValidateWeights(weights map[string]int) error {
	total := 0
	for sym, w := range weights {
		if w < 0 || w > 100 {
			return &ValidationError{Field: "weights", Message: fmt.Sprintf("weight for %s must be between 0 and 100, got %d", sym, w)}
		}
		total += w
	}
	if total != 100 {
		return &ValidationError{Field: "weights", Message: fmt.Sprintf("weights must sum to exactly 100%%, got %d%%", total)}
	}
	return nil
}

// MaxCapital is the largest capital accepted. Larger amounts no longer fit
// in int64 minor units once expected returns are formatted.
const MaxCapital = 1e15

// ValidateCapital requires capital to be a finite number between minCapital
// and MaxCapital.
func ValidateCapital(capital, minCapital float64) error {
	if math.IsNaN(capital) || math.IsInf(capital, 0) {
		return &ValidationError{Field: "capital", Message: fmt.Sprintf("capital must be a finite number, got %v", capital)}
	}
	if capital <= 0 || capital < minCapital {
		return &ValidationError{Field: "capital", Message: fmt.Sprintf("capital must be at least %.0f, got %.2f", minCapital, capital)}
	}
	if capital > MaxCapital {
		return &ValidationError{Field: "capital", Message: fmt.Sprintf("capital must be at most %.0f, got %.0f", MaxCapital, capital)}
	}
	return nil
}
