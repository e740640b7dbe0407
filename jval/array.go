package jval

import "fmt"

// Array is an immutable JSON array. The zero value is the empty array.
type Array struct {
	items []Value
}

// NewArray returns an Array holding items in order. The argument slice is
// copied, with nil values stored as [Null].
func NewArray(items ...Value) Array {
	if len(items) == 0 {
		return Array{}
	}

	cp := make([]Value, len(items))
	for i, item := range items {
		cp[i] = norm(item)
	}

	return Array{items: cp}
}

func (Array) Kind() Kind { return KindArray }

// Equal reports whether v is an array of the same length with pairwise
// equal elements.
func (a Array) Equal(v Value) bool {
	o, ok := v.(Array)
	if !ok || len(o.items) != len(a.items) {
		return false
	}

	for i, item := range a.items {
		if !item.Equal(o.items[i]) {
			return false
		}
	}

	return true
}

func (a Array) JSON() string { return Render(a) }

// MarshalJSON implements [encoding/json.Marshaler].
func (a Array) MarshalJSON() ([]byte, error) { return []byte(Render(a)), nil }

func (Array) value() {}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.items) }

// At returns the element at index i, failing with an error wrapping
// [ErrIndexRange] when i is outside the array.
func (a Array) At(i int) (Value, error) {
	if i < 0 || i >= len(a.items) {
		return nil, fmt.Errorf("%w: index %d, length %d", ErrIndexRange, i, len(a.items))
	}

	return a.items[i], nil
}

// Items returns a copy of the elements in order.
func (a Array) Items() []Value {
	if len(a.items) == 0 {
		return nil
	}

	cp := make([]Value, len(a.items))
	copy(cp, a.items)

	return cp
}

// Concat returns a new array holding a's elements followed by o's.
func (a Array) Concat(o Array) Array {
	if len(o.items) == 0 {
		return a
	}

	if len(a.items) == 0 {
		return o
	}

	items := make([]Value, 0, len(a.items)+len(o.items))
	items = append(items, a.items...)
	items = append(items, o.items...)

	return Array{items: items}
}

// Append returns a new array with items added after a's elements.
func (a Array) Append(items ...Value) Array {
	return a.Concat(NewArray(items...))
}

// Prepend returns a new array with items placed before a's elements.
func (a Array) Prepend(items ...Value) Array {
	return NewArray(items...).Concat(a)
}
