// Package decimal implements the fixed-point numeric type used for every
// price and quantity in the engine: a uint64 scaled by 10^7.
package decimal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Scale is the number of representable fractional decimal digits.
const Scale = 10_000_000 // 10^7

// Decimal is a non-negative fixed-point number, stored as the real value
// multiplied by Scale. The zero value is zero.
type Decimal struct {
	v uint64
}

// Identity is the fixed point for 1.0 (i.e. Scale itself).
var Identity = Decimal{v: Scale}

// Zero is the fixed point for 0.
var Zero = Decimal{}

// ErrOverflow is returned when an operation's true result does not fit in
// the representable range.
var ErrOverflow = errors.New("decimal: overflow")

// ErrDivideByZero is returned by Div when the divisor is zero.
var ErrDivideByZero = errors.New("decimal: division by zero")

// FromScaled constructs a Decimal from an already-scaled integer (i.e. the
// real value times Scale). This is the wire/storage representation.
func FromScaled(v uint64) Decimal { return Decimal{v: v} }

// Scaled returns the underlying scaled integer.
func (d Decimal) Scaled() uint64 { return d.v }

// FromInt64 constructs a Decimal from a whole number of units.
func FromInt64(units uint64) (Decimal, error) {
	v, ok := checkedMul64(units, Scale)
	if !ok {
		return Zero, ErrOverflow
	}
	return Decimal{v: v}, nil
}

// Parse reads a decimal string such as "50000.1234567" into a Decimal.
// It never uses floating point.
func Parse(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("decimal: empty string")
	}
	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if len(fracPart) > 7 {
		return Zero, fmt.Errorf("decimal: %q has more than 7 fractional digits", s)
	}
	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("decimal: invalid integer part %q: %w", intPart, err)
	}
	frac := fracPart + strings.Repeat("0", 7-len(fracPart))
	fracVal, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return Zero, fmt.Errorf("decimal: invalid fractional part %q: %w", fracPart, err)
	}
	scaled, ok := checkedMul64(whole, Scale)
	if !ok {
		return Zero, ErrOverflow
	}
	total, ok := checkedAdd64(scaled, fracVal)
	if !ok {
		return Zero, ErrOverflow
	}
	return Decimal{v: total}, nil
}

// String prints the value with trailing zeros trimmed, keeping at least one
// fractional digit when the value is not an integer.
func (d Decimal) String() string {
	whole := d.v / Scale
	frac := d.v % Scale
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}
	fracStr := fmt.Sprintf("%07d", frac)
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}
	return strconv.FormatUint(whole, 10) + "." + fracStr
}

// IsZero reports whether d is the zero value.
func (d Decimal) IsZero() bool { return d.v == 0 }

// Cmp compares two decimals: -1 if d<o, 0 if equal, 1 if d>o.
func (d Decimal) Cmp(o Decimal) int {
	switch {
	case d.v < o.v:
		return -1
	case d.v > o.v:
		return 1
	default:
		return 0
	}
}

// Add returns d+o, failing on overflow.
func (d Decimal) Add(o Decimal) (Decimal, error) {
	v, ok := checkedAdd64(d.v, o.v)
	if !ok {
		return Zero, ErrOverflow
	}
	return Decimal{v: v}, nil
}

// Sub returns d-o, failing if the result would be negative (the type is
// unsigned) or on underflow.
func (d Decimal) Sub(o Decimal) (Decimal, error) {
	if o.v > d.v {
		return Zero, ErrOverflow
	}
	return Decimal{v: d.v - o.v}, nil
}

// Min returns the smaller of d and o.
func Min(d, o Decimal) Decimal {
	if d.v < o.v {
		return d
	}
	return o
}

// Mul multiplies two decimals exactly, using polynomial decomposition around
// the type's own scale (radix R = Scale) instead of a 128-bit intermediate.
//
// Each operand is split into a high/low pair around Scale:
//
//	a = ah*Scale + al   (ah = a/Scale, al = a%Scale, al < Scale)
//	b = bh*Scale + bl
//
// so that
//
//	a*b/Scale = ah*bh*Scale + ah*bl + al*bh + al*bl/Scale
//
// Each term on the right is evaluated in 64 bits and checked for overflow
// individually; al*bl never exceeds Scale^2 (10^14) so it never needs a
// check. This mirrors original_source/src/order.rs's calculate_value, which
// decomposes around each asset's own decimal count instead of a shared
// radix; here there is one universal scale so both operands split around it.
func Mul(a, b Decimal) (Decimal, error) {
	ah, al := a.v/Scale, a.v%Scale
	bh, bl := b.v/Scale, b.v%Scale

	hh, ok := checkedMul64(ah, bh)
	if !ok {
		return Zero, ErrOverflow
	}
	term1, ok := checkedMul64(hh, Scale)
	if !ok {
		return Zero, ErrOverflow
	}
	term2, ok := checkedMul64(ah, bl)
	if !ok {
		return Zero, ErrOverflow
	}
	term3, ok := checkedMul64(al, bh)
	if !ok {
		return Zero, ErrOverflow
	}
	// al, bl < Scale (10^7), so al*bl < 10^14, which fits comfortably in a
	// uint64 and cannot itself overflow.
	term4 := (al * bl) / Scale

	sum, ok := checkedAdd64(term1, term2)
	if !ok {
		return Zero, ErrOverflow
	}
	sum, ok = checkedAdd64(sum, term3)
	if !ok {
		return Zero, ErrOverflow
	}
	sum, ok = checkedAdd64(sum, term4)
	if !ok {
		return Zero, ErrOverflow
	}
	return Decimal{v: sum}, nil
}

// Div computes a/b with full fixed-point precision: (a*Scale)/b rounded
// toward zero. The intermediate a*Scale is computed as a 128-bit product via
// bits.Mul64/Div64 (a hardware-width widening multiply, not an arbitrary
// 128-bit integer type) because, unlike Mul, the spec does not require
// avoiding that here and it is the straightforward way to keep full
// precision without losing digits to an intermediate truncation.
func Div(a, b Decimal) (Decimal, error) {
	if b.v == 0 {
		return Zero, ErrDivideByZero
	}
	q, r, ok := mulDiv(a.v, Scale, b.v)
	_ = r
	if !ok {
		return Zero, ErrOverflow
	}
	return Decimal{v: q}, nil
}

func checkedMul64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	v := a * b
	if v/b != a {
		return 0, false
	}
	return v, true
}

func checkedAdd64(a, b uint64) (uint64, bool) {
	v := a + b
	if v < a {
		return 0, false
	}
	return v, true
}
