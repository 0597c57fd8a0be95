// Package report renders statistics as Markdown tables and HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/bobmcallan/optimaxx-portal/internal/common"
	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MetricsTable renders the return/risk table: one row per symbol, a
// return and a risk column per period. Absent cells show "-".
func MetricsTable(rr models.ReturnRisk) string {
	var sb strings.Builder

	sb.WriteString("| ETF |")
	for _, p := range rr.Periods {
		fmt.Fprintf(&sb, " Rendimiento %s | Riesgo %s |", p.Header(), p.Header())
	}
	sb.WriteString("\n|-----|")
	for range rr.Periods {
		sb.WriteString("------:|------:|")
	}
	sb.WriteString("\n")

	for _, s := range rr.Symbols {
		fmt.Fprintf(&sb, "| %s |", s.Symbol)
		for _, p := range rr.Periods {
			m, _ := s.Get(p)
			fmt.Fprintf(&sb, " %s | %s |", common.FormatOptionalPct(m.Return), common.FormatOptionalPct(m.Risk))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ExpectedReturnTable renders one row per period. The selected period is
// shown in bold.
func ExpectedReturnTable(rows []models.ExpectedReturn, currency string) string {
	var sb strings.Builder
	sb.WriteString("| Periodo | Retorno Esperado (%) | Retorno Esperado (Capital) |\n")
	sb.WriteString("|---------|---------------------:|---------------------------:|\n")
	for _, r := range rows {
		period := r.Period.Label()
		pct := common.FormatPct(r.Percent)
		capital := common.FormatMoneyWithCurrency(r.Capital, currency)
		if r.Selected {
			period, pct, capital = "**"+period+"**", "**"+pct+"**", "**"+capital+"**"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", period, pct, capital)
	}
	return sb.String()
}

// CatalogTable renders the instrument catalog.
func CatalogTable(instruments []models.Instrument) string {
	var sb strings.Builder
	sb.WriteString("| Símbolo | Instrumento | Moneda | Paga Dividendos |\n")
	sb.WriteString("|---------|-------------|--------|-----------------|\n")
	for _, inst := range instruments {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", inst.Symbol, escapeCell(inst.Name), inst.Currency, inst.DividendLabel())
	}
	return sb.String()
}

// Markdown renders a full calculation report.
func Markdown(r models.Report) string {
	var sb strings.Builder

	sb.WriteString("# Portafolio de Inversión\n\n")
	fmt.Fprintf(&sb, "**Fecha:** %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "**Capital:** %s\n", common.FormatMoneyWithCurrency(r.Selection.Capital, r.Currency))
	fmt.Fprintf(&sb, "**Periodo:** %s\n\n", r.Selection.Period.Label())

	sb.WriteString("## Asignación de Pesos\n\n")
	sb.WriteString("| ETF | Peso |\n|-----|-----:|\n")
	for _, sym := range r.Selection.Symbols {
		fmt.Fprintf(&sb, "| %s | %d%% |\n", sym, r.Selection.Weights[sym])
	}

	sb.WriteString("\n## Rendimiento y Riesgo\n\n")
	sb.WriteString(MetricsTable(r.Metrics))

	sb.WriteString("\n## Retornos esperados\n\n")
	sb.WriteString(ExpectedReturnTable(r.ExpectedReturns, r.Currency))

	if row, ok := r.SelectedRow(); ok {
		fmt.Fprintf(&sb, "\nRetorno esperado a %s: **%s** (%s)\n",
			row.Period.Label(),
			common.FormatMoneyWithCurrency(row.Capital, r.Currency),
			common.FormatSignedPct(row.Percent))
	}
	return sb.String()
}

// HTML converts Markdown to HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
