// Package common provides shared utilities for the OptiMaxx portal.
package common

import (
	"fmt"
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// AbsentValue is the placeholder rendered for a metric that could not be computed.
const AbsentValue = "-"

// currencyOrDefault returns the go-money currency for code, falling back to USD.
func currencyOrDefault(code string) *money.Currency {
	if c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code))); c != nil {
		return c
	}
	return money.GetCurrency(money.USD)
}

// FormatMoney formats a float as a dollar amount with comma separators.
func FormatMoney(v float64) string {
	return FormatMoneyWithCurrency(v, money.USD)
}

// FormatMoneyWithCurrency formats v in the given ISO currency, rounded to the
// currency's minor unit. MXN and USD -> "$1,234.56", EUR -> "€1.234,56".
// Unknown codes are formatted as USD. NaN and infinities render as
// AbsentValue; amounts beyond int64 minor units keep full precision but
// lose thousands separators.
func FormatMoneyWithCurrency(v float64, currency string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return AbsentValue
	}
	cur := currencyOrDefault(currency)
	minor := decimal.NewFromFloat(v).Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().GreaterThan(maxMinorUnits) {
		return cur.Grapheme + minor.Shift(-int32(cur.Fraction)).StringFixed(int32(cur.Fraction))
	}
	return money.New(minor.IntPart(), cur.Code).Display()
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// FormatPct formats a percentage with two decimals ("10.00%").
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatOptionalPct formats a possibly-absent percentage, rendering nil as "-".
func FormatOptionalPct(v *float64) string {
	if v == nil {
		return AbsentValue
	}
	return FormatPct(*v)
}

// FormatSignedPct formats a percentage with +/- prefix
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}
