package jval

import (
	"errors"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"null", KindNull},
		{"boolean", KindBool},
		{"number", KindNumber},
		{"string", KindString},
		{"array", KindArray},
		{"object", KindObject},
		{"invalid", Kind(42)},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind.String() = %v, want %v", got, tt.want)
		}
	}
}

func TestValue_Kind(t *testing.T) {
	//nolint:govet //Dont shift order
	tests := []struct {
		name string
		v    Value
		want Kind
	}{
		{"null", Null{}, KindNull},
		{"bool", Bool(true), KindBool},
		{"number", NewNumber(1), KindNumber},
		{"string", String("x"), KindString},
		{"array", NewArray(), KindArray},
		{"object", NewObject(), KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_Equal(t *testing.T) {
	//nolint:govet //Dont shift order
	tests := []struct {
		name string
		a    Value
		b    Value
		want bool
	}{
		{"null == null", Null{}, Null{}, true},
		{"null != false", Null{}, Bool(false), false},
		{"bool same", Bool(true), Bool(true), true},
		{"bool diff", Bool(true), Bool(false), false},
		{"string same", String("a"), String("a"), true},
		{"string diff", String("a"), String("b"), false},
		{"string != number", String("1"), NewNumber(1), false},
		{"int == int", NewNumber(123), NewNumber(123), true},
		{"int == float form", NewNumber(123), NewNumber(123.0), true},
		{"number text forms", mustNumber(t, "123"), mustNumber(t, "123.0"), true},
		{"number exponent form", mustNumber(t, "1.23e2"), NewNumber(123), true},
		{"number diff", NewNumber(1), NewNumber(2), false},
		{"array same", NewArray(NewNumber(1), String("a")), NewArray(NewNumber(1), String("a")), true},
		{"array order matters", NewArray(NewNumber(1), NewNumber(2)), NewArray(NewNumber(2), NewNumber(1)), false},
		{"array length", NewArray(NewNumber(1)), NewArray(NewNumber(1), NewNumber(1)), false},
		{"array numeric elements", NewArray(NewNumber(1)), NewArray(mustNumber(t, "1.0")), true},
		{
			"object order ignored",
			NewObject(Field("a", NewNumber(1)), Field("b", NewNumber(2))),
			NewObject(Field("b", NewNumber(2)), Field("a", NewNumber(1))),
			true,
		},
		{
			"object value diff",
			NewObject(Field("a", NewNumber(1))),
			NewObject(Field("a", NewNumber(2))),
			false,
		},
		{
			"object key diff",
			NewObject(Field("a", NewNumber(1))),
			NewObject(Field("b", NewNumber(1))),
			false,
		},
		{"empty object == zero object", NewObject(), Object{}, true},
		{"empty array == zero array", NewArray(), Array{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			// Equality is symmetric.
			if got := tt.b.Equal(tt.a); got != tt.want {
				t.Errorf("Equal() [symmetric] = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs_Success(t *testing.T) {
	if b, err := AsBool(Bool(true)); err != nil || !bool(b) {
		t.Errorf("AsBool() = %v, %v", b, err)
	}

	if s, err := AsString(String("ok")); err != nil || s != "ok" {
		t.Errorf("AsString() = %v, %v", s, err)
	}

	if n, err := AsNumber(NewNumber(5)); err != nil || !n.Equal(NewNumber(5)) {
		t.Errorf("AsNumber() = %v, %v", n, err)
	}

	if a, err := AsArray(NewArray(Null{})); err != nil || a.Len() != 1 {
		t.Errorf("AsArray() = %v, %v", a, err)
	}

	if o, err := AsObject(NewObject(Field("a", Null{}))); err != nil || o.Len() != 1 {
		t.Errorf("AsObject() = %v, %v", o, err)
	}
}

func TestAs_KindError(t *testing.T) {
	//nolint:govet //Dont shift order
	tests := []struct {
		name     string
		err      error
		wantWant Kind
		wantGot  Kind
	}{
		{"bool from string", errOf(AsBool(String("x"))), KindBool, KindString},
		{"string from number", errOf(AsString(NewNumber(1))), KindString, KindNumber},
		{"number from null", errOf(AsNumber(Null{})), KindNumber, KindNull},
		{"array from object", errOf(AsArray(NewObject())), KindArray, KindObject},
		{"object from array", errOf(AsObject(NewArray())), KindObject, KindArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ke *KindError
			if !errors.As(tt.err, &ke) {
				t.Fatalf("error = %v, want *KindError", tt.err)
			}

			if ke.Want != tt.wantWant || ke.Got != tt.wantGot {
				t.Errorf("KindError = {Want: %v, Got: %v}, want {Want: %v, Got: %v}", ke.Want, ke.Got, tt.wantWant, tt.wantGot)
			}
		})
	}
}

func TestValue_JSON(t *testing.T) {
	//nolint:govet //Dont shift order
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null{}, "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"number", NewNumber(42), "42"},
		{"string", String("hi"), `"hi"`},
		{"string escaped", String("a\"b\\c\nd"), `"a\"b\\c\nd"`},
		{"string control", String("\x01"), `"\u0001"`},
		{"array", NewArray(NewNumber(1), String("a"), Null{}), `[1,"a",null]`},
		{"object", NewObject(Field("b", NewNumber(2)), Field("a", NewNumber(1))), `{"b":2,"a":1}`},
		{"empty array", NewArray(), "[]"},
		{"empty object", NewObject(), "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.JSON(); got != tt.want {
				t.Errorf("JSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

// errOf discards the value of a two-value call, keeping the error.
func errOf[T any](_ T, err error) error { return err }

func mustNumber(t *testing.T, s string) Number {
	t.Helper()

	n, err := NewNumberFromString(s)
	if err != nil {
		t.Fatalf("NewNumberFromString(%q) error = %v", s, err)
	}

	return n
}
