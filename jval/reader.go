package jval

import (
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Reader converts JSON values into Go values of type T.
//
// Readers are strict: a value of the wrong shape fails with a typed error
// ([*KindError], [*RangeError]) and nothing is silently coerced. The
// combinators [MaybeReader], [OrElseReader] and [EitherReader] are the
// only defaulting paths, and each must be chosen explicitly.
type Reader[T any] interface {
	ReadValue(Value) (T, error)
}

// ReaderFunc adapts a function to the [Reader] interface.
type ReaderFunc[T any] func(Value) (T, error)

// ReadValue calls f.
func (f ReaderFunc[T]) ReadValue(v Value) (T, error) { return f(v) }

// BoolReader returns a reader for bool.
func BoolReader() Reader[bool] {
	return ReaderFunc[bool](func(v Value) (bool, error) {
		b, err := AsBool(v)

		return bool(b), err
	})
}

// StringReader returns a reader for string.
func StringReader() Reader[string] {
	return ReaderFunc[string](func(v Value) (string, error) {
		s, err := AsString(v)

		return string(s), err
	})
}

// NumberReader returns a reader for [Number].
func NumberReader() Reader[Number] {
	return ReaderFunc[Number](AsNumber)
}

// ArrayReader returns a reader for [Array].
func ArrayReader() Reader[Array] {
	return ReaderFunc[Array](AsArray)
}

// ObjectReader returns a reader for [Object].
func ObjectReader() Reader[Object] {
	return ReaderFunc[Object](AsObject)
}

// ValueReader returns the identity reader. A nil value reads as [Null].
func ValueReader() Reader[Value] {
	return ReaderFunc[Value](func(v Value) (Value, error) {
		if v == nil {
			return Null{}, nil
		}

		return v, nil
	})
}

// IntReader returns a reader for int. The number must be integral and fit;
// anything else fails with a [*RangeError].
func IntReader() Reader[int] {
	return ReaderFunc[int](func(v Value) (int, error) {
		n, err := AsNumber(v)
		if err != nil {
			return 0, err
		}

		i, err := n.Int64Exact()
		if err != nil {
			return 0, err
		}

		if i < math.MinInt || i > math.MaxInt {
			return 0, &RangeError{Target: "int", Value: n}
		}

		return int(i), nil
	})
}

// Int32Reader returns a reader for int32 with exact conversion semantics.
func Int32Reader() Reader[int32] {
	return ReaderFunc[int32](func(v Value) (int32, error) {
		n, err := AsNumber(v)
		if err != nil {
			return 0, err
		}

		return n.Int32Exact()
	})
}

// Int64Reader returns a reader for int64 with exact conversion semantics.
func Int64Reader() Reader[int64] {
	return ReaderFunc[int64](func(v Value) (int64, error) {
		n, err := AsNumber(v)
		if err != nil {
			return 0, err
		}

		return n.Int64Exact()
	})
}

// Float64Reader returns a reader for float64. Any number is accepted; the
// conversion takes the nearest float64.
func Float64Reader() Reader[float64] {
	return ReaderFunc[float64](func(v Value) (float64, error) {
		n, err := AsNumber(v)
		if err != nil {
			return 0, err
		}

		return n.Float64(), nil
	})
}

// BigIntReader returns a reader for [*big.Int] with exact conversion
// semantics: fractional numbers fail.
func BigIntReader() Reader[*big.Int] {
	return ReaderFunc[*big.Int](func(v Value) (*big.Int, error) {
		n, err := AsNumber(v)
		if err != nil {
			return nil, err
		}

		return n.BigIntExact()
	})
}

// DecimalReader returns a reader for [decimal.Decimal].
func DecimalReader() Reader[decimal.Decimal] {
	return ReaderFunc[decimal.Decimal](func(v Value) (decimal.Decimal, error) {
		n, err := AsNumber(v)
		if err != nil {
			return decimal.Decimal{}, err
		}

		return n.Decimal(), nil
	})
}

// PtrReader reads JSON null as nil and otherwise defers to elem. A failure
// of elem propagates; use [MaybeReader] when failures should read as
// absence instead.
func PtrReader[T any](elem Reader[T]) Reader[*T] {
	return ReaderFunc[*T](func(v Value) (*T, error) {
		if isNull(v) {
			return nil, nil
		}

		t, err := elem.ReadValue(v)
		if err != nil {
			return nil, err
		}

		return &t, nil
	})
}

// MaybeReader reads JSON null as nil like [PtrReader], but also converts
// any failure of elem into nil. The two are deliberately distinct: a
// MaybeReader never fails, a PtrReader fails on everything but null.
func MaybeReader[T any](elem Reader[T]) Reader[*T] {
	return ReaderFunc[*T](func(v Value) (*T, error) {
		if isNull(v) {
			return nil, nil
		}

		t, err := elem.ReadValue(v)
		if err != nil {
			return nil, nil //nolint:nilerr // failure reads as absence here
		}

		return &t, nil
	})
}

// OrElseReader returns fallback whenever elem fails.
func OrElseReader[T any](elem Reader[T], fallback T) Reader[T] {
	return ReaderFunc[T](func(v Value) (T, error) {
		t, err := elem.ReadValue(v)
		if err != nil {
			return fallback, nil //nolint:nilerr // the fallback consumes the failure
		}

		return t, nil
	})
}

// EitherReader tries right first, then left. When both fail, the left
// failure is reported.
func EitherReader[L, R any](left Reader[L], right Reader[R]) Reader[Either[L, R]] {
	return ReaderFunc[Either[L, R]](func(v Value) (Either[L, R], error) {
		if r, err := right.ReadValue(v); err == nil {
			return Right[L](r), nil
		}

		l, err := left.ReadValue(v)
		if err != nil {
			return Either[L, R]{}, err
		}

		return Left[L, R](l), nil
	})
}

// SliceReader reads a JSON array element-wise with elem. Objects and
// scalars fail with a [*KindError].
func SliceReader[T any](elem Reader[T]) Reader[[]T] {
	return ReaderFunc[[]T](func(v Value) ([]T, error) {
		arr, err := AsArray(v)
		if err != nil {
			return nil, err
		}

		out := make([]T, 0, arr.Len())

		for i, item := range arr.items {
			t, terr := elem.ReadValue(item)
			if terr != nil {
				return nil, fmt.Errorf("element %d: %w", i, terr)
			}

			out = append(out, t)
		}

		return out, nil
	})
}

// MapReader reads a JSON object member-wise with elem.
func MapReader[T any](elem Reader[T]) Reader[map[string]T] {
	return ReaderFunc[map[string]T](func(v Value) (map[string]T, error) {
		obj, err := AsObject(v)
		if err != nil {
			return nil, err
		}

		out := make(map[string]T, obj.Len())

		for p := obj.pairs(); p != nil; p = p.Next() {
			t, terr := elem.ReadValue(p.Value)
			if terr != nil {
				return nil, fmt.Errorf("field %q: %w", p.Key, terr)
			}

			out[p.Key] = t
		}

		return out, nil
	})
}
