package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Return is the simple holding-period return of closes in percent:
// (last - first) / first * 100. It is nil for fewer than two prices or a
// zero first price.
func Return(closes []float64) *float64 {
	if len(closes) < 2 {
		return nil
	}
	first, last := closes[0], closes[len(closes)-1]
	if first == 0 {
		return nil
	}
	v := (last - first) / first * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Changes returns the period-over-period fractional changes of closes.
// Steps from a zero price are skipped.
func Changes(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		out = append(out, (closes[i]-prev)/prev)
	}
	return out
}

// Risk is the sample standard deviation of the period-over-period changes
// of closes, in percent. It is not annualized. It is nil when fewer than
// two changes are available.
func Risk(closes []float64) *float64 {
	changes := Changes(closes)
	if len(changes) < 2 {
		return nil
	}
	v := stat.StdDev(changes, nil) * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
