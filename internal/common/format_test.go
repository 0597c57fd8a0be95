package common

import (
	"math"
	"testing"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{1234.56, "$1,234.56"},
		{0, "$0.00"},
		{-500.00, "-$500.00"},
		{1000000.99, "$1,000,000.99"},
		{50000, "$50,000.00"},
		{0.005, "$0.01"},
	}

	for _, tt := range tests {
		got := FormatMoney(tt.value)
		if got != tt.want {
			t.Errorf("FormatMoney(%.3f) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatMoneyWithCurrency_UnknownFallsBackToUSD(t *testing.T) {
	if got := FormatMoneyWithCurrency(1234.5, "???"); got != "$1,234.50" {
		t.Errorf("expected $1,234.50, got %q", got)
	}
}

func TestFormatMoneyWithCurrency_NonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := FormatMoneyWithCurrency(v, "MXN"); got != "-" {
			t.Errorf("FormatMoneyWithCurrency(%v) = %q, want -", v, got)
		}
	}
}

func TestFormatMoneyWithCurrency_BeyondInt64(t *testing.T) {
	got := FormatMoneyWithCurrency(1e20, "USD")
	if got != "$100000000000000000000.00" {
		t.Errorf("unexpected large amount formatting: %q", got)
	}
}

func TestFormatOptionalPct(t *testing.T) {
	if got := FormatOptionalPct(nil); got != "-" {
		t.Errorf("expected - for absent value, got %q", got)
	}
	if got := FormatOptionalPct(models.Float(0)); got != "0.00%" {
		t.Errorf("expected 0.00%% for computed zero, got %q", got)
	}
	if got := FormatOptionalPct(models.Float(10)); got != "10.00%" {
		t.Errorf("expected 10.00%%, got %q", got)
	}
}

func TestFormatSignedPct(t *testing.T) {
	if got := FormatSignedPct(1.5); got != "+1.50%" {
		t.Errorf("expected +1.50%%, got %q", got)
	}
	if got := FormatSignedPct(-2.25); got != "-2.25%" {
		t.Errorf("expected -2.25%%, got %q", got)
	}
}
