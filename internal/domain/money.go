package domain

import "math"

// MulCents returns a*b for non-negative operands, or false when the product
// does not fit in int64.
func MulCents(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// AddCents returns a+b, or false when the sum leaves the int64 range.
func AddCents(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// RequisitionTotal is quantity times the unit price. It reports false for a
// quantity below one, a negative price or a total beyond int64.
func RequisitionTotal(quantity, pricePerUnitCents int64) (int64, bool) {
	if quantity < 1 || pricePerUnitCents < 0 {
		return 0, false
	}
	return MulCents(quantity, pricePerUnitCents)
}
