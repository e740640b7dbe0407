package jval

import (
	"math/big"
	"slices"

	"github.com/shopspring/decimal"
)

// Writer converts Go values of type T into JSON values.
//
// Writers are total: every input maps to a value. The lone exception is
// the float writer, which panics on NaN and infinities because JSON
// cannot carry them.
type Writer[T any] interface {
	WriteValue(T) Value
}

// WriterFunc adapts a function to the [Writer] interface.
type WriterFunc[T any] func(T) Value

// WriteValue calls f.
func (f WriterFunc[T]) WriteValue(t T) Value { return f(t) }

// BoolWriter returns a writer for bool.
func BoolWriter() Writer[bool] {
	return WriterFunc[bool](func(b bool) Value { return Bool(b) })
}

// StringWriter returns a writer for string.
func StringWriter() Writer[string] {
	return WriterFunc[string](func(s string) Value { return String(s) })
}

// IntWriter returns a writer for int.
func IntWriter() Writer[int] {
	return WriterFunc[int](func(i int) Value { return NewNumber(int64(i)) })
}

// Int32Writer returns a writer for int32.
func Int32Writer() Writer[int32] {
	return WriterFunc[int32](func(i int32) Value { return NewNumber(int64(i)) })
}

// Int64Writer returns a writer for int64.
func Int64Writer() Writer[int64] {
	return WriterFunc[int64](func(i int64) Value { return NewNumber(i) })
}

// Float64Writer returns a writer for float64. It panics on NaN and
// infinities.
func Float64Writer() Writer[float64] {
	return WriterFunc[float64](func(f float64) Value { return NewNumber(f) })
}

// BigIntWriter returns a writer for [*big.Int]. A nil pointer writes as
// null.
func BigIntWriter() Writer[*big.Int] {
	return WriterFunc[*big.Int](func(i *big.Int) Value {
		if i == nil {
			return Null{}
		}

		return NewNumberFromBigInt(i)
	})
}

// DecimalWriter returns a writer for [decimal.Decimal].
func DecimalWriter() Writer[decimal.Decimal] {
	return WriterFunc[decimal.Decimal](func(d decimal.Decimal) Value {
		return NewNumberFromDecimal(d)
	})
}

// NumberWriter returns the identity writer for [Number].
func NumberWriter() Writer[Number] {
	return WriterFunc[Number](func(n Number) Value { return n })
}

// ValueWriter returns the identity writer. A nil value writes as [Null].
func ValueWriter() Writer[Value] {
	return WriterFunc[Value](func(v Value) Value {
		if v == nil {
			return Null{}
		}

		return v
	})
}

// PtrWriter writes nil as JSON null and otherwise defers to elem.
func PtrWriter[T any](elem Writer[T]) Writer[*T] {
	return WriterFunc[*T](func(p *T) Value {
		if p == nil {
			return Null{}
		}

		return elem.WriteValue(*p)
	})
}

// SliceWriter writes a slice element-wise with elem. A nil slice writes as
// the empty array.
func SliceWriter[T any](elem Writer[T]) Writer[[]T] {
	return WriterFunc[[]T](func(ts []T) Value {
		items := make([]Value, len(ts))
		for i, t := range ts {
			items[i] = norm(elem.WriteValue(t))
		}

		return Array{items: items}
	})
}

// MapWriter writes a map member-wise with elem. Fields are ordered by key
// so output is deterministic.
func MapWriter[T any](elem Writer[T]) Writer[map[string]T] {
	return WriterFunc[map[string]T](func(m map[string]T) Value {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		members := make([]Member, 0, len(m))
		for _, k := range keys {
			members = append(members, Member{Name: k, Value: elem.WriteValue(m[k])})
		}

		return NewObject(members...)
	})
}

// EitherWriter writes whichever alternative the [Either] holds.
func EitherWriter[L, R any](left Writer[L], right Writer[R]) Writer[Either[L, R]] {
	return WriterFunc[Either[L, R]](func(e Either[L, R]) Value {
		if e.isRight {
			return right.WriteValue(e.right)
		}

		return left.WriteValue(e.left)
	})
}
