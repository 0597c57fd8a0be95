package models

import "time"

// MetricResult holds the return and risk of one symbol over one period,
// both in percent. A nil field means the value could not be computed.
type MetricResult struct {
	Return *float64 `json:"return_percent"`
	Risk   *float64 `json:"risk_percent"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// PeriodMetric is a MetricResult tagged with its period.
type PeriodMetric struct {
	Period PeriodCode `json:"period"`
	MetricResult
}

// SymbolMetrics holds one row of the return/risk table.
type SymbolMetrics struct {
	Symbol  string         `json:"symbol"`
	Periods []PeriodMetric `json:"periods"`
}

// Get returns the metric for period p.
func (s SymbolMetrics) Get(p PeriodCode) (MetricResult, bool) {
	for _, pm := range s.Periods {
		if pm.Period == p {
			return pm.MetricResult, true
		}
	}
	return MetricResult{}, false
}

// ReturnRisk is the output of the return/risk computation: symbols in
// caller order, periods in canonical order.
type ReturnRisk struct {
	Periods []PeriodCode    `json:"periods"`
	Symbols []SymbolMetrics `json:"symbols"`
}

// Metric returns the cell for symbol and period. Missing cells are absent.
func (rr ReturnRisk) Metric(symbol string, p PeriodCode) MetricResult {
	for _, s := range rr.Symbols {
		if s.Symbol == symbol {
			m, _ := s.Get(p)
			return m
		}
	}
	return MetricResult{}
}

// SymbolList returns the symbols in table order.
func (rr ReturnRisk) SymbolList() []string {
	out := make([]string, len(rr.Symbols))
	for i, s := range rr.Symbols {
		out[i] = s.Symbol
	}
	return out
}

// ExpectedReturn is one row of the expected-return table.
type ExpectedReturn struct {
	Period   PeriodCode `json:"period"`
	Percent  float64    `json:"expected_return_percent"`
	Capital  float64    `json:"expected_return_capital"`
	Selected bool       `json:"selected,omitempty"`
}

// Report is the full result of a Calculate action.
type Report struct {
	Selection       Selection        `json:"selection"`
	Metrics         ReturnRisk       `json:"metrics"`
	ExpectedReturns []ExpectedReturn `json:"expected_returns"`
	Currency        string           `json:"currency"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// SelectedRow returns the expected-return row of the selected period.
func (r Report) SelectedRow() (ExpectedReturn, bool) {
	for _, row := range r.ExpectedReturns {
		if row.Selected {
			return row, true
		}
	}
	return ExpectedReturn{}, false
}
