// Package money provides the fixed-precision monetary primitives shared by
// all claim calculators. Single currency (USD); two-decimal cents semantics.
package money

import "github.com/shopspring/decimal"

// half is the tie-breaking offset for half-up rounding at cent precision.
var half = decimal.New(5, -3) // 0.005

// Round rounds to 2 decimal places with ties resolved half-up (toward +inf).
// Every monetary output leaves the calculators through this function.
// Idempotent: Round(Round(x)) == Round(x).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).RoundFloor(2)
}

// FromFloat converts a raw float input to a decimal without rounding.
// Rounding happens once, on output.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Percent converts a part/whole pair into a percentage in [0, 100] space.
// whole must be non-zero; callers guard the degenerate case.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

// Mean returns the arithmetic mean of vals, or zero for an empty slice.
func Mean(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, v := range vals {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(vals))))
}
