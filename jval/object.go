package jval

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Member is a single object field.
type Member struct {
	Value Value
	Name  string
}

// Field is shorthand for constructing a [Member]:
//
//	jval.NewObject(jval.Field("name", jval.String("ok")))
func Field(name string, v Value) Member {
	return Member{Name: name, Value: v}
}

// Object is an immutable JSON object. Fields keep their insertion order,
// so rendering is deterministic. The zero value is the empty object.
type Object struct {
	fields *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an Object with the given members. A repeated name
// keeps the position of its first occurrence and takes its last value.
// Nil values are stored as [Null].
func NewObject(members ...Member) Object {
	if len(members) == 0 {
		return Object{}
	}

	om := orderedmap.New[string, Value](len(members))
	for _, m := range members {
		om.Set(m.Name, norm(m.Value))
	}

	return Object{fields: om}
}

func (Object) Kind() Kind { return KindObject }

// Equal reports whether v is an object with the same field set and equal
// values, whatever the field order.
func (o Object) Equal(v Value) bool {
	ov, ok := v.(Object)
	if !ok || ov.Len() != o.Len() {
		return false
	}

	for p := o.pairs(); p != nil; p = p.Next() {
		got, found := ov.Get(p.Key)
		if !found || !p.Value.Equal(got) {
			return false
		}
	}

	return true
}

func (o Object) JSON() string { return Render(o) }

// MarshalJSON implements [encoding/json.Marshaler].
func (o Object) MarshalJSON() ([]byte, error) { return []byte(Render(o)), nil }

func (Object) value() {}

func (o Object) pairs() *orderedmap.Pair[string, Value] {
	if o.fields == nil {
		return nil
	}

	return o.fields.Oldest()
}

// clone copies the fields into a fresh map sized for extra more entries.
func (o Object) clone(extra int) *orderedmap.OrderedMap[string, Value] {
	om := orderedmap.New[string, Value](o.Len() + extra)
	for p := o.pairs(); p != nil; p = p.Next() {
		om.Set(p.Key, p.Value)
	}

	return om
}

// Len returns the number of fields.
func (o Object) Len() int {
	if o.fields == nil {
		return 0
	}

	return o.fields.Len()
}

// Get returns the value of the named field and whether it exists.
func (o Object) Get(name string) (Value, bool) {
	if o.fields == nil {
		return nil, false
	}

	return o.fields.Get(name)
}

// At returns the value of the named field, failing with an error wrapping
// [ErrFieldMissing] when the field is absent.
func (o Object) At(name string) (Value, error) {
	if v, ok := o.Get(name); ok {
		return v, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrFieldMissing, name)
}

// Members returns a copy of the fields in insertion order.
func (o Object) Members() []Member {
	if o.Len() == 0 {
		return nil
	}

	ms := make([]Member, 0, o.Len())
	for p := o.pairs(); p != nil; p = p.Next() {
		ms = append(ms, Member{Name: p.Key, Value: p.Value})
	}

	return ms
}

// With returns a new object with the field set. An existing field keeps
// its position; a new field is appended. A nil value is stored as [Null].
func (o Object) With(name string, v Value) Object {
	om := o.clone(1)
	om.Set(name, norm(v))

	return Object{fields: om}
}

// Without returns a new object with the named field removed, or o itself
// when the field is absent.
func (o Object) Without(name string) Object {
	if _, ok := o.Get(name); !ok {
		return o
	}

	om := o.clone(0)
	om.Delete(name)

	return Object{fields: om}
}

// Merge returns a new object combining o with other. Fields of o keep
// their positions, with values from other winning on shared names; fields
// only in other are appended in other's order.
//
//	left := jval.NewObject(jval.Field("a", jval.String("a")), jval.Field("b", jval.NewNumber(2)))
//	right := jval.NewObject(jval.Field("a", jval.String("x")), jval.Field("z", jval.NewNumber(99)))
//	fmt.Println(jval.Render(left.Merge(right)))
//	// Output: {"a":"x","b":2,"z":99}
func (o Object) Merge(other Object) Object {
	if other.Len() == 0 {
		return o
	}

	if o.Len() == 0 {
		return other
	}

	om := o.clone(other.Len())
	for p := other.pairs(); p != nil; p = p.Next() {
		om.Set(p.Key, p.Value)
	}

	return Object{fields: om}
}
