package decimal

import "math/bits"

// mulDiv computes (a*b)/c with a full-width intermediate product, returning
// the quotient, remainder, and whether the result fits in 64 bits.
func mulDiv(a, b, c uint64) (q, r uint64, ok bool) {
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, 0, false
	}
	q, r = bits.Div64(hi, lo, c)
	return q, r, true
}
