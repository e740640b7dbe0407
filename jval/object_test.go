package jval

import (
	"errors"
	"testing"
)

func TestNewObject_DuplicateNames(t *testing.T) {
	// A repeated name keeps its first position and takes its last value.
	o := NewObject(
		Field("a", NewNumber(1)),
		Field("b", NewNumber(2)),
		Field("a", NewNumber(3)),
	)

	if o.Len() != 2 {
		t.Fatalf("Len() = %v, want 2", o.Len())
	}

	if got := Render(o); got != `{"a":3,"b":2}` {
		t.Errorf("Render() = %v, want {\"a\":3,\"b\":2}", got)
	}
}

func TestObject_GetAt(t *testing.T) {
	o := NewObject(Field("a", String("x")))

	if v, ok := o.Get("a"); !ok || !v.Equal(String("x")) {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}

	if _, ok := o.Get("nope"); ok {
		t.Error("Get(nope) ok = true, want false")
	}

	if _, err := o.At("nope"); !errors.Is(err, ErrFieldMissing) {
		t.Errorf("At(nope) error = %v, want ErrFieldMissing", err)
	}
}

func TestObject_With(t *testing.T) {
	base := NewObject(Field("a", NewNumber(1)), Field("b", NewNumber(2)))

	// Updating an existing field keeps its position.
	updated := base.With("a", NewNumber(10))
	if got := Render(updated); got != `{"a":10,"b":2}` {
		t.Errorf("With(existing) = %v, want {\"a\":10,\"b\":2}", got)
	}

	// A new field appends.
	extended := base.With("c", NewNumber(3))
	if got := Render(extended); got != `{"a":1,"b":2,"c":3}` {
		t.Errorf("With(new) = %v, want {\"a\":1,\"b\":2,\"c\":3}", got)
	}

	// The receiver is untouched.
	if got := Render(base); got != `{"a":1,"b":2}` {
		t.Errorf("base changed: %v", got)
	}
}

func TestObject_Without(t *testing.T) {
	base := NewObject(Field("a", NewNumber(1)), Field("b", NewNumber(2)))

	if got := Render(base.Without("a")); got != `{"b":2}` {
		t.Errorf("Without(a) = %v, want {\"b\":2}", got)
	}

	if got := base.Without("zzz"); !got.Equal(base) {
		t.Errorf("Without(absent) = %v, want the original", Render(got))
	}

	if base.Len() != 2 {
		t.Errorf("base changed: %v", Render(base))
	}
}

func TestObject_Merge(t *testing.T) {
	left := NewObject(Field("a", String("a")), Field("b", NewNumber(2)))
	right := NewObject(Field("a", String("x")), Field("z", NewNumber(99)))

	got := left.Merge(right)

	// Shared names take the right value in the left position; right-only
	// names append in the right's order.
	if rendered := Render(got); rendered != `{"a":"x","b":2,"z":99}` {
		t.Errorf("Merge() = %v, want {\"a\":\"x\",\"b\":2,\"z\":99}", rendered)
	}

	// Operands untouched.
	if Render(left) != `{"a":"a","b":2}` || Render(right) != `{"a":"x","z":99}` {
		t.Errorf("operands changed: %v, %v", Render(left), Render(right))
	}

	if !left.Merge(Object{}).Equal(left) || !(Object{}).Merge(right).Equal(right) {
		t.Error("merge with the empty object should be the identity")
	}
}

func TestObject_Members(t *testing.T) {
	o := NewObject(Field("one", NewNumber(1)), Field("two", NewNumber(2)))

	ms := o.Members()
	if len(ms) != 2 || ms[0].Name != "one" || ms[1].Name != "two" {
		t.Fatalf("Members() = %+v", ms)
	}

	// The copy does not alias the object.
	ms[0].Value = String("mutated")

	if v, _ := o.Get("one"); !v.Equal(NewNumber(1)) {
		t.Errorf("Members() exposes internal state: %v", Render(o))
	}
}
