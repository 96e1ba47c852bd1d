package core

import "math"

// SafeRatio divides num by den, returning 0 when den is 0.
// Every rate in the engine goes through SafeRatio so that no NaN or Inf escapes.
func SafeRatio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	r := num / den
	if math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Percent returns num/den as a percentage, or 0 when den is 0.
func Percent(num, den float64) float64 {
	return SafeRatio(num, den) * 100
}

// ClampPercent caps a percentage to [0, 100].
func ClampPercent(v float64) float64 {
	return clamp(v, 0, 100)
}

// clamp restricts v to [lo, hi]. NaN maps to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
