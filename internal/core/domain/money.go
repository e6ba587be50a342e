package domain

import "math/bits"

// All monetary values are held in the smallest currency unit as int64 and
// are never negative. Arithmetic on them must fail instead of wrapping.

// addAmount returns a+b or ErrArithmeticOverflow. Both operands must be
// non-negative.
func addAmount(a, b int64) (int64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// mulDiv computes a*b/den without intermediate overflow, using a 128-bit
// product. All operands must be non-negative and den > 0. Whenever b <= den
// the quotient is bounded by a, so it always fits; the error covers misuse.
func mulDiv(a, b, den int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi >= uint64(den) {
		return 0, ErrArithmeticOverflow
	}
	quot, _ := bits.Div64(hi, lo, uint64(den))
	if quot > 1<<63-1 {
		return 0, ErrArithmeticOverflow
	}
	return int64(quot), nil
}
