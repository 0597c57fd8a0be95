// Package charts renders the return, risk and expected-return charts as PNG.
package charts

import (
	"errors"
	"fmt"

	gocharts "github.com/vicanso/go-charts/v2"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

const (
	ReturnTitle   = "Evolución del Rendimiento por Periodo"
	RiskTitle     = "Evolución del Riesgo por Periodo"
	ExpectedTitle = "Retorno Esperado por Periodo"

	width  = 900
	height = 450
)

// ErrNoValues is returned when there is nothing to plot.
var ErrNoValues = errors.New("no values to plot")

// ReturnChart plots each symbol's return across the periods of rr.
func ReturnChart(rr models.ReturnRisk) ([]byte, error) {
	return metricChart(rr, ReturnTitle, func(m models.MetricResult) *float64 { return m.Return })
}

// RiskChart plots each symbol's risk across the periods of rr.
func RiskChart(rr models.ReturnRisk) ([]byte, error) {
	return metricChart(rr, RiskTitle, func(m models.MetricResult) *float64 { return m.Risk })
}

// ExpectedReturnChart plots the expected return percent of every row.
func ExpectedReturnChart(rows []models.ExpectedReturn) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrNoValues
	}

	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Period.Header()
		values[i] = r.Percent
	}

	p, err := gocharts.BarRender(
		[][]float64{values},
		gocharts.TitleTextOptionFunc(ExpectedTitle),
		gocharts.XAxisDataOptionFunc(labels),
		gocharts.YAxisOptionFunc(gocharts.YAxisOption{Formatter: "{value}%"}),
		gocharts.LegendLabelsOptionFunc([]string{"Portafolio"}),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
		gocharts.WidthOptionFunc(width),
		gocharts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}

// metricChart draws one line per symbol. Absent cells leave a gap.
func metricChart(rr models.ReturnRisk, title string, pick func(models.MetricResult) *float64) ([]byte, error) {
	if len(rr.Symbols) == 0 || len(rr.Periods) == 0 {
		return nil, ErrNoValues
	}

	labels := make([]string, len(rr.Periods))
	for i, p := range rr.Periods {
		labels[i] = p.Header()
	}

	values := make([][]float64, len(rr.Symbols))
	names := make([]string, len(rr.Symbols))
	plotted := 0
	for i, s := range rr.Symbols {
		names[i] = s.Symbol
		values[i] = make([]float64, len(rr.Periods))
		for j, p := range rr.Periods {
			m, _ := s.Get(p)
			if v := pick(m); v != nil {
				values[i][j] = *v
				plotted++
			} else {
				values[i][j] = gocharts.GetNullValue()
			}
		}
	}
	if plotted == 0 {
		return nil, ErrNoValues
	}

	p, err := gocharts.LineRender(
		values,
		gocharts.TitleTextOptionFunc(title),
		gocharts.XAxisOptionFunc(gocharts.XAxisOption{
			Data:        labels,
			BoundaryGap: gocharts.FalseFlag(),
		}),
		gocharts.YAxisOptionFunc(gocharts.YAxisOption{Formatter: "{value}%"}),
		gocharts.LegendOptionFunc(gocharts.LegendOption{
			Data: names,
			Top:  gocharts.PositionTop,
			Left: gocharts.PositionRight,
		}),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
		gocharts.WidthOptionFunc(width),
		gocharts.HeightOptionFunc(height),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
