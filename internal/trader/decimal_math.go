package trader

import (
	"math"

	"github.com/shopspring/decimal"
)

// Threshold comparisons go through decimal so that a position sitting exactly
// on a configured boundary is classified the same way regardless of how the
// float64 arithmetic rounded.

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}

func decimalGTE(a, b float64) bool {
	return decFromFloat(a).Cmp(decFromFloat(b)) >= 0
}

func decimalLTE(a, b float64) bool {
	return decFromFloat(a).Cmp(decFromFloat(b)) <= 0
}

// round2 rounds to two decimal places, used for the equity log fields.
func round2(val float64) float64 {
	return decFromFloat(val).Round(2).InexactFloat64()
}
