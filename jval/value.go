package jval

// Kind identifies the variant held by a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "boolean", "number", "string", "array", "object"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}

	return kindNames[k]
}

// Value is an immutable JSON value: one of [Null], [Bool], [Number],
// [String], [Array] or [Object]. The set of implementations is closed.
type Value interface {
	// Kind returns the variant of the value.
	Kind() Kind
	// Equal reports whether v represents the same JSON value. Numbers
	// compare numerically and objects compare regardless of field order.
	Equal(v Value) bool
	// JSON returns the compact JSON text of the value.
	JSON() string

	value() // closes the implementation set
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}

	return v.Kind()
}

// norm maps a nil interface to [Null] so stored values always accept
// method calls.
func norm(v Value) Value {
	if v == nil {
		return Null{}
	}

	return v
}

func isNull(v Value) bool {
	return v == nil || v.Kind() == KindNull
}

// Null is the JSON null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }

func (Null) Equal(v Value) bool { return v != nil && v.Kind() == KindNull }

func (Null) JSON() string { return "null" }

// MarshalJSON implements [encoding/json.Marshaler].
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

func (Null) value() {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }

func (b Bool) Equal(v Value) bool {
	o, ok := v.(Bool)

	return ok && o == b
}

func (b Bool) JSON() string {
	if b {
		return "true"
	}

	return "false"
}

// MarshalJSON implements [encoding/json.Marshaler].
func (b Bool) MarshalJSON() ([]byte, error) { return []byte(b.JSON()), nil }

func (Bool) value() {}

// String is a JSON string. Its Go value is the decoded text; [String.JSON]
// returns the quoted, escaped form.
type String string

func (String) Kind() Kind { return KindString }

func (s String) Equal(v Value) bool {
	o, ok := v.(String)

	return ok && o == s
}

func (s String) JSON() string { return string(appendQuoted(nil, string(s))) }

// MarshalJSON implements [encoding/json.Marshaler].
func (s String) MarshalJSON() ([]byte, error) { return appendQuoted(nil, string(s)), nil }

func (String) value() {}

// AsBool returns v as a [Bool], failing with a [*KindError] when v is any
// other variant.
func AsBool(v Value) (Bool, error) {
	if b, ok := v.(Bool); ok {
		return b, nil
	}

	return false, &KindError{Want: KindBool, Got: kindOf(v)}
}

// AsString returns v as a [String], failing with a [*KindError] when v is
// any other variant.
func AsString(v Value) (String, error) {
	if s, ok := v.(String); ok {
		return s, nil
	}

	return "", &KindError{Want: KindString, Got: kindOf(v)}
}

// AsNumber returns v as a [Number], failing with a [*KindError] when v is
// any other variant.
func AsNumber(v Value) (Number, error) {
	if n, ok := v.(Number); ok {
		return n, nil
	}

	return Number{}, &KindError{Want: KindNumber, Got: kindOf(v)}
}

// AsArray returns v as an [Array], failing with a [*KindError] when v is
// any other variant.
func AsArray(v Value) (Array, error) {
	if a, ok := v.(Array); ok {
		return a, nil
	}

	return Array{}, &KindError{Want: KindArray, Got: kindOf(v)}
}

// AsObject returns v as an [Object], failing with a [*KindError] when v is
// any other variant.
func AsObject(v Value) (Object, error) {
	if o, ok := v.(Object); ok {
		return o, nil
	}

	return Object{}, &KindError{Want: KindObject, Got: kindOf(v)}
}
