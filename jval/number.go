package jval

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)
)

// Number is a JSON number held as an arbitrary-precision decimal. No
// precision is lost between parsing and rendering, whatever the magnitude.
//
// Numbers compare by numeric value, not by source text:
//
//	a := jval.NewNumber(123)
//	b, _ := jval.NewNumberFromString("1.23e2")
//	fmt.Println(a.Equal(b)) // Output: true
type Number struct {
	dec decimal.Decimal
}

// NewNumber returns a Number holding v exactly.
//
// It panics when v is a NaN or an infinity; JSON has no representation for
// them.
func NewNumber[V int | int64 | float64](v V) Number {
	switch n := any(v).(type) {
	case int:
		return Number{dec: decimal.NewFromInt(int64(n))}
	case int64:
		return Number{dec: decimal.NewFromInt(n)}
	case float64:
		return Number{dec: decimal.NewFromFloat(n)}
	default:
		panic("jval: unreachable")
	}
}

// NewNumberFromString parses s as a decimal number without precision loss.
// It fails with an error wrapping [ErrNumberSyntax] for malformed text.
func NewNumberFromString(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("%w: %q", ErrNumberSyntax, s)
	}

	return Number{dec: d}, nil
}

// NewNumberFromDecimal returns a Number holding d.
func NewNumberFromDecimal(d decimal.Decimal) Number {
	return Number{dec: d}
}

// NewNumberFromBigInt returns a Number holding i. A nil i is treated as
// zero.
func NewNumberFromBigInt(i *big.Int) Number {
	if i == nil {
		return Number{}
	}

	return Number{dec: decimal.NewFromBigInt(i, 0)}
}

func (Number) Kind() Kind { return KindNumber }

// Equal reports whether v is a number with the same numeric value.
func (n Number) Equal(v Value) bool {
	o, ok := v.(Number)

	return ok && n.dec.Equal(o.dec)
}

func (n Number) JSON() string { return n.dec.String() }

// MarshalJSON implements [encoding/json.Marshaler].
func (n Number) MarshalJSON() ([]byte, error) { return []byte(n.dec.String()), nil }

func (Number) value() {}

// Decimal returns the underlying arbitrary-precision value.
func (n Number) Decimal() decimal.Decimal { return n.dec }

// Float64 returns the nearest float64. The conversion may lose precision;
// use the exact accessors when that matters.
func (n Number) Float64() float64 {
	f, _ := n.dec.Float64()

	return f
}

// IsInt reports whether n has no fractional component.
func (n Number) IsInt() bool { return n.dec.IsInteger() }

// Cmp compares numeric values, returning -1 when n < o, 0 when equal and
// +1 when n > o.
func (n Number) Cmp(o Number) int { return n.dec.Cmp(o.dec) }

// Int64Exact converts n to an int64. It fails with a [*RangeError] when n
// has a fractional component or does not fit in an int64.
func (n Number) Int64Exact() (int64, error) {
	if !n.dec.IsInteger() || n.dec.Cmp(minInt64) < 0 || n.dec.Cmp(maxInt64) > 0 {
		return 0, &RangeError{Target: "int64", Value: n}
	}

	return n.dec.IntPart(), nil
}

// Int32Exact converts n to an int32. It fails with a [*RangeError] when n
// has a fractional component or does not fit in an int32.
func (n Number) Int32Exact() (int32, error) {
	if !n.dec.IsInteger() || n.dec.Cmp(minInt32) < 0 || n.dec.Cmp(maxInt32) > 0 {
		return 0, &RangeError{Target: "int32", Value: n}
	}

	return int32(n.dec.IntPart()), nil
}

// BigIntExact converts n to a [big.Int]. It fails with a [*RangeError]
// when n has a fractional component.
func (n Number) BigIntExact() (*big.Int, error) {
	if !n.dec.IsInteger() {
		return nil, &RangeError{Target: "big.Int", Value: n}
	}

	return n.dec.BigInt(), nil
}
