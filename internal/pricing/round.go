package pricing

import "math"

// RoundTo99 applies the house rounding rule: the raw price is floored to the
// whole currency unit, the fractional part is forced to .99, and the result
// is clamped up to the configured minimum. Prices are always rounded down
// first, never half-up or up.
func RoundTo99(raw, minimumPrice float64) int64 {
	cents := int64(math.Floor(raw))*100 + 99
	if min := Cents(minimumPrice); cents < min {
		return min
	}
	return cents
}

// Cents converts a currency amount to integer cents, rounding to the nearest
// cent.
func Cents(v float64) int64 {
	return int64(math.Round(v * 100))
}
