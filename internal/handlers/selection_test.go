package handlers

import (
	"net/url"
	"testing"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

func TestSelectionFromValues_CompactForm(t *testing.T) {
	v, _ := url.ParseQuery("symbols=spy,qqq&weights=SPY:60,QQQ=40&capital=600,000&period=1y")

	sel, err := selectionFromValues(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.Symbols) != 2 || sel.Symbols[0] != "SPY" || sel.Symbols[1] != "QQQ" {
		t.Errorf("unexpected symbols: %v", sel.Symbols)
	}
	if sel.Weights["SPY"] != 60 || sel.Weights["QQQ"] != 40 {
		t.Errorf("unexpected weights: %v", sel.Weights)
	}
	if sel.Capital != 600000 {
		t.Errorf("expected capital 600000, got %v", sel.Capital)
	}
	if sel.Period != models.Period1Y {
		t.Errorf("expected 1y, got %s", sel.Period)
	}
}

func TestSelectionFromValues_FormFields(t *testing.T) {
	v := url.Values{
		"symbols": {"SPY", "GLD"},
		"w_SPY":   {"70%"},
		"w_gld":   {""},
		"period":  {"3 meses"},
	}

	sel, err := selectionFromValues(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Weights["SPY"] != 70 {
		t.Errorf("expected SPY weight 70, got %d", sel.Weights["SPY"])
	}
	if w, ok := sel.Weights["GLD"]; !ok || w != 0 {
		t.Errorf("expected blank GLD weight to parse as 0, got %d (present=%v)", w, ok)
	}
	if sel.Period != models.Period3M {
		t.Errorf("expected period label to resolve to 3mo, got %s", sel.Period)
	}
}

func TestSelectionFromValues_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"weight without separator", "symbols=SPY&weights=SPY60", "weights"},
		{"non numeric weight", "symbols=SPY&weights=SPY:abc", "weights"},
		{"non numeric capital", "symbols=SPY&capital=lots", "capital"},
		{"unknown period", "symbols=SPY&period=2w", "period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := url.ParseQuery(tt.query)
			_, err := selectionFromValues(v)
			ve, ok := err.(*models.ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, ve.Field)
			}
		})
	}
}

func TestSelectionQuery_RoundTrips(t *testing.T) {
	sel := models.Selection{
		Symbols: []string{"QQQ", "SPY"},
		Weights: map[string]int{"SPY": 25, "QQQ": 75},
		Capital: 750000,
		Period:  models.Period5Y,
	}

	q := selectionQuery(sel)
	if got := q.Get("weights"); got != "QQQ:75,SPY:25" {
		t.Errorf("expected weights in selection order, got %q", got)
	}

	back, err := selectionFromValues(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Symbols[0] != "QQQ" || back.Weights["SPY"] != 25 || back.Capital != 750000 || back.Period != models.Period5Y {
		t.Errorf("selection did not survive the query: %+v", back)
	}
}
