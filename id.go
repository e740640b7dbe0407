package jsonrpc2

import (
	"errors"
	"fmt"

	"github.com/wireval/jsonrpc2/jval"
)

// ErrIDNotANumber is returned by [ID.Int64] when the underlying ID value is
// not an int64.
var ErrIDNotANumber = errors.New("ID is not a number")

// ID represents a JSON-RPC 2.0 request ID.
//
// According to the specification, an ID should be a String, a Number
// (integral; fractional numbers are rejected by the codec), or Null
// (discouraged). This type enforces these requirements.
//
// Use the constructor functions [NewID] (for string or int64) and [NewNullID]
// (for null) to create ID instances programmatically. Avoid creating ID
// structs directly: the zero value means "no ID at all" and marks a request
// as a notification.
//
// See: https://www.jsonrpc.org/specification#request_object
type ID struct {
	value   any  // string, int64, or nil for null.
	present bool // Distinguishes an explicit null from the zero value.
}

// NewID creates a new ID with the given value.
// The type parameter V can be int64 or string.
//
// Example:
//
//	idInt := jsonrpc2.NewID(int64(123))
//	idStr := jsonrpc2.NewID("request-5")
func NewID[V int64 | string](v V) ID {
	return ID{present: true, value: v}
}

// NewNullID creates an ID representing the JSON `null` value.
// This is distinct from a zero-value [ID] struct (where [ID.IsZero] is true).
// Null IDs are primarily used in responses to requests whose original ID
// could not be determined.
func NewNullID() ID {
	return ID{present: true} // value is implicitly nil
}

// Equal compares two IDs for equivalence according to JSON-RPC rules.
//
// Rules:
//   - Zero-value IDs ([ID.IsZero] is true) are never equal to any other ID,
//     including another zero-value ID.
//   - Two null IDs ([ID.IsNull] is true) are equal.
//   - A null ID is never equal to a non-null ID.
//   - Two string IDs are equal if their string values are identical.
//   - Two numeric IDs are equal if their int64 values are identical.
//   - String IDs are never equal to numeric IDs: NewID("1") != NewID(int64(1)).
func (id *ID) Equal(t ID) bool {
	// Zero-value (uninitialized) IDs are never equal to anything.
	if id.IsZero() || t.IsZero() {
		return false
	}

	if id.IsNull() {
		return t.IsNull()
	}

	// string and int64 never compare equal to each other here.
	return id.value == t.value
}

// IsZero returns true if the ID struct is the zero value (i.e., absent).
// This is distinct from an ID that has been explicitly set to `null` using
// [NewNullID]. A request with a zero ID is a notification.
func (id *ID) IsZero() bool {
	return !id.present
}

// IsNull returns true if the ID represents the JSON `null` value.
func (id *ID) IsNull() bool {
	// Check present first to distinguish from the zero value.
	return id.present && id.value == nil
}

// Value returns the underlying Go value of the ID.
// The returned type will be one of: string, int64, or nil.
// Returns nil if the ID is the zero value ([ID.IsZero] is true).
func (id *ID) Value() any {
	if !id.present {
		return nil
	}

	return id.value
}

// String attempts to return the ID value as a string.
// It returns the string and `true` only if the underlying value is a string.
func (id *ID) String() (string, bool) {
	if !id.present {
		return "", false
	}

	s, ok := id.value.(string)

	return s, ok
}

// Int64 attempts to return the ID value as an int64.
// It returns [ErrIDNotANumber] if the underlying value is a string, null, or
// absent.
func (id *ID) Int64() (int64, error) {
	if v, ok := id.value.(int64); ok {
		return v, nil
	}

	return 0, ErrIDNotANumber
}

// UnmarshalJSON implements the [json.Unmarshaler] interface.
// It decodes JSON strings, integral numbers, and null into the ID.
// It returns an error for other JSON types and for fractional numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	v, err := jval.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	decoded, err := decodeID(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	*id = decoded

	return nil
}

// MarshalJSON implements the [json.Marshaler] interface.
// It serializes the ID into the appropriate JSON representation (string,
// number, or null). A zero-value ID ([ID.IsZero] is true) marshals as JSON
// `null`.
func (id *ID) MarshalJSON() ([]byte, error) {
	return []byte(encodeID(*id).JSON()), nil
}
