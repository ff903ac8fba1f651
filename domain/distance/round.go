package distance

import (
	"github.com/montanaflynn/stats"
)

// DefaultPrecision is the number of decimal digits phi values are compared at.
const DefaultPrecision = 6

// Round rounds x half-up to precision decimal digits. Every phi and distance
// that feeds a comparison passes through here.
func Round(x float64, precision int) float64 {
	r, err := stats.Round(x, precision)
	if err != nil {
		return x
	}
	return r
}

// Eq reports whether a and b agree to precision digits.
func Eq(a, b float64, precision int) bool {
	return Round(a, precision) == Round(b, precision)
}

// IsZero reports whether x rounds to zero.
func IsZero(x float64, precision int) bool {
	return Round(x, precision) == 0
}
