package decimal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Decimal {
	d, err := Parse(s)
	require.NoError(t, err)
	return d
}

func TestParseAndString(t *testing.T) {
	cases := map[string]string{
		"0":             "0",
		"1":             "1",
		"1.5":           "1.5",
		"50000.1234567": "50000.1234567",
		"12.5":          "12.5",
		"0.0000001":     "0.0000001",
		"100.0":         "100",
	}
	for in, want := range cases {
		d := mustParse(t, in)
		assert.Equal(t, want, d.String(), "round trip of %q", in)
	}
}

func TestMulIdentity(t *testing.T) {
	values := []string{"0", "1", "50000.1234567", "0.0000001", "12.5"}
	for _, v := range values {
		d := mustParse(t, v)
		got, err := Mul(d, Identity)
		require.NoError(t, err)
		assert.Equal(t, d, got, "mul(%s, identity) must be identity", v)
	}
}

func TestMulZero(t *testing.T) {
	d := mustParse(t, "12345.6789")
	got, err := Mul(d, Zero)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestMulExact(t *testing.T) {
	// 0.5 * 12.5 = 6.25, a realistic price*qty style case.
	a := mustParse(t, "0.5")
	b := mustParse(t, "12.5")
	got, err := Mul(a, b)
	require.NoError(t, err)
	assert.Equal(t, "6.25", got.String())
}

func TestMulMatchesScaledIntegerTruth(t *testing.T) {
	// For values small enough that a*b/Scale fits in a uint64 directly,
	// Mul must match that integer truth exactly (property 6).
	cases := []struct {
		a, b uint64
	}{
		{1_0000000, 1_0000000},
		{5_0000000, 2_5000000},
		{123_4567890, 9_8765432},
		{7, 7},
	}
	for _, c := range cases {
		a := FromScaled(c.a)
		b := FromScaled(c.b)
		want := mulUint64Truth(c.a, c.b)
		got, err := Mul(a, b)
		require.NoError(t, err)
		assert.Equal(t, want, got.Scaled())
	}
}

// mulUint64Truth computes (a*b)/Scale using a 128-bit-width intermediate,
// standing in for "the integer truth" referenced by the decimal round-trip
// property, independent of the polynomial-decomposition implementation
// under test.
func mulUint64Truth(a, b uint64) uint64 {
	q, _, ok := mulDiv(a, b, Scale)
	if !ok {
		panic("overflow in test oracle")
	}
	return q
}

func TestMulOverflow(t *testing.T) {
	huge := FromScaled(1<<63 + 1)
	_, err := Mul(huge, huge)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAddSub(t *testing.T) {
	a := mustParse(t, "10.5")
	b := mustParse(t, "2.25")
	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "12.75", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "8.25", diff.String())

	_, err = b.Sub(a)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestAddOverflow(t *testing.T) {
	max := FromScaled(^uint64(0))
	_, err := max.Add(FromScaled(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestDiv(t *testing.T) {
	a := mustParse(t, "10")
	b := mustParse(t, "4")
	got, err := Div(a, b)
	require.NoError(t, err)
	assert.Equal(t, "2.5", got.String())

	_, err = Div(a, Zero)
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestCmp(t *testing.T) {
	a := mustParse(t, "1.0")
	b := mustParse(t, "1.0000001")
	assert.Equal(t, -1, a.Cmp(b))
	assert.Equal(t, 1, b.Cmp(a))
	assert.Equal(t, 0, a.Cmp(a))
}

func TestMin(t *testing.T) {
	a := mustParse(t, "3")
	b := mustParse(t, "5")
	assert.Equal(t, a, Min(a, b))
	assert.Equal(t, a, Min(b, a))
}
