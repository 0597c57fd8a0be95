package handlers

import (
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/bobmcallan/optimaxx-portal/internal/models"
)

// Query parameters carrying a Selection between pages:
//
//	symbols=SPY,QQQ&weights=SPY:60,QQQ:40&capital=500000&period=1y
//
// Pages also accept one w_SYMBOL field per weight from the statistics form.
const weightFieldPrefix = "w_"

// symbolsFromValues reads every "symbols" value, splitting on commas.
func symbolsFromValues(v url.Values) []string {
	var out []string
	for _, raw := range v["symbols"] {
		out = append(out, strings.Split(raw, ",")...)
	}
	return models.NormalizeSymbols(out)
}

// selectionFromValues parses a Selection from query or form values. It only
// reports malformed input; business rules are checked by Selection.Validate.
func selectionFromValues(v url.Values) (models.Selection, error) {
	sel := models.Selection{
		Symbols: symbolsFromValues(v),
		Weights: map[string]int{},
	}

	for _, raw := range v["weights"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			sym, num, ok := strings.Cut(part, ":")
			if !ok {
				sym, num, ok = strings.Cut(part, "=")
			}
			if !ok {
				return sel, &models.ValidationError{Field: "weights", Message: fmt.Sprintf("expected SYMBOL:PERCENT, got %q", part)}
			}
			if err := addWeight(sel.Weights, sym, num); err != nil {
				return sel, err
			}
		}
	}
	for key, vals := range v {
		if !strings.HasPrefix(key, weightFieldPrefix) || len(vals) == 0 {
			continue
		}
		if err := addWeight(sel.Weights, strings.TrimPrefix(key, weightFieldPrefix), vals[0]); err != nil {
			return sel, err
		}
	}

	if raw := strings.TrimSpace(v.Get("capital")); raw != "" {
		capital, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			return sel, &models.ValidationError{Field: "capital", Message: fmt.Sprintf("invalid amount %q", raw)}
		}
		sel.Capital = capital
	}

	if raw := strings.TrimSpace(v.Get("period")); raw != "" {
		p, err := models.ParsePeriod(raw)
		if err != nil {
			return sel, err
		}
		sel.Period = p
	}

	return sel, nil
}

func addWeight(weights map[string]int, sym, num string) error {
	sym = strings.ToUpper(strings.TrimSpace(sym))
	num = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(num), "%"))
	if num == "" {
		num = "0"
	}
	w, err := strconv.Atoi(num)
	if err != nil {
		return &models.ValidationError{Field: "weights", Message: fmt.Sprintf("invalid weight for %s: %q", sym, num)}
	}
	weights[sym] = w
	return nil
}

// selectionQuery encodes a Selection in the compact query form.
func selectionQuery(sel models.Selection) url.Values {
	v := url.Values{}
	v.Set("symbols", strings.Join(sel.Symbols, ","))

	if len(sel.Weights) > 0 {
		syms := make([]string, 0, len(sel.Weights))
		for s := range sel.Weights {
			syms = append(syms, s)
		}
		// Selection order first, then anything else alphabetically.
		order := make(map[string]int, len(sel.Symbols))
		for i, s := range sel.Symbols {
			order[s] = i
		}
		sort.SliceStable(syms, func(i, j int) bool {
			oi, iok := order[syms[i]]
			oj, jok := order[syms[j]]
			switch {
			case iok && jok:
				return oi < oj
			case iok != jok:
				return iok
			default:
				return syms[i] < syms[j]
			}
		})
		parts := make([]string, len(syms))
		for i, s := range syms {
			parts[i] = fmt.Sprintf("%s:%d", s, sel.Weights[s])
		}
		v.Set("weights", strings.Join(parts, ","))
	}
	if sel.Capital > 0 {
		v.Set("capital", strconv.FormatFloat(sel.Capital, 'f', -1, 64))
	}
	if sel.Period != "" {
		v.Set("period", string(sel.Period))
	}
	return v
}

// trustedQuery marks an encoded query string as safe for URL attributes.
func trustedQuery(v url.Values) template.URL {
	return template.URL(v.Encode())
}
