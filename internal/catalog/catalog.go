// Package catalog holds the static list of instruments offered by the portal.
package catalog

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

var instruments = []models.Instrument{
	{
		Name:          "iShares MSCI All Country Asia ex Japan",
		Description:   "Replica el índice MSCI AC Asia ex Japan: acciones de gran y mediana capitalización de Asia, excluyendo Japón.",
		Symbol:        "AAXJ",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares MSCI ACWI",
		Description:   "Exposición a acciones de mercados desarrollados y emergentes de todo el mundo.",
		Symbol:        "ACWI",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares MSCI Emerging Markets",
		Description:   "Acciones de gran y mediana capitalización de mercados emergentes.",
		Symbol:        "EEM",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares MSCI Mexico",
		Description:   "Sigue el desempeño de empresas mexicanas de gran y mediana capitalización.",
		Symbol:        "EWW",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares MSCI Brazil",
		Description:   "Acciones de empresas brasileñas de gran y mediana capitalización.",
		Symbol:        "EWZ",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares MSCI Japan",
		Description:   "Exposición al mercado accionario japonés.",
		Symbol:        "EWJ",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares China Large-Cap",
		Description:   "Las 50 empresas chinas más grandes que cotizan en la Bolsa de Hong Kong.",
		Symbol:        "FXI",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "SPDR S&P 500 ETF Trust",
		Description:   "Replica el índice S&P 500 de las 500 principales empresas de Estados Unidos.",
		Symbol:        "SPY",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "Invesco QQQ Trust",
		Description:   "Sigue el índice Nasdaq-100, concentrado en empresas tecnológicas no financieras.",
		Symbol:        "QQQ",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "iShares 20+ Year Treasury Bond",
		Description:   "Bonos del Tesoro de Estados Unidos con vencimiento mayor a 20 años.",
		Symbol:        "TLT",
		Currency:      "USD",
		PaysDividends: true,
	},
	{
		Name:          "SPDR Gold Shares",
		Description:   "Refleja el precio del oro en barras, neto de gastos del fondo.",
		Symbol:        "GLD",
		Currency:      "USD",
		PaysDividends: false,
	},
	{
		Name:          "ARK Innovation ETF",
		Description:   "Gestión activa en empresas de innovación disruptiva.",
		Symbol:        "ARKK",
		Currency:      "USD",
		PaysDividends: false,
	},
}

// All returns a copy of the catalog in display order.
func All() []models.Instrument {
	out := make([]models.Instrument, len(instruments))
	copy(out, instruments)
	return out
}

// Symbols returns every ticker in catalog order.
func Symbols() []string {
	out := make([]string, len(instruments))
	for i, inst := range instruments {
		out[i] = inst.Symbol
	}
	return out
}

// BySymbol looks up an instrument by ticker, case-insensitively.
func BySymbol(symbol string) (models.Instrument, bool) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, inst := range instruments {
		if inst.Symbol == symbol {
			return inst, true
		}
	}
	return models.Instrument{}, false
}

// ByName looks up an instrument by its display name, case-insensitively.
func ByName(name string) (models.Instrument, bool) {
	name = strings.TrimSpace(name)
	for _, inst := range instruments {
		if strings.EqualFold(inst.Name, name) {
			return inst, true
		}
	}
	return models.Instrument{}, false
}

// ResolveNames maps display names to symbols. The result follows catalog
// order, not the order of names.
func ResolveNames(names []string) ([]string, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		inst, ok := ByName(n)
		if !ok {
			return nil, &models.ValidationError{Field: "symbols", Message: fmt.Sprintf("unknown instrument %q", n)}
		}
		wanted[inst.Symbol] = true
	}

	var out []string
	for _, inst := range instruments {
		if wanted[inst.Symbol] {
			out = append(out, inst.Symbol)
		}
	}
	return out, nil
}

// Filter returns the instruments for the given symbols, in the order given.
// Unknown symbols are skipped.
func Filter(symbols []string) []models.Instrument {
	var out []models.Instrument
	for _, s := range symbols {
		if inst, ok := BySymbol(s); ok {
			out = append(out, inst)
		}
	}
	return out
}
