package jsonrpc2

import (
	"errors"

	"github.com/wireval/jsonrpc2/jval"
)

// The reserved protocol errors, carrying their standard codes and messages.
// They compare by code under [errors.Is], so a decoded wire error with code
// -32602 matches ErrInvalidParams regardless of its message or data.
var (
	ErrParse            = NewError(-32700, "Parse error")
	ErrInvalidRequest   = NewError(-32600, "Invalid Request")
	ErrMethodNotFound   = NewError(-32601, "Method not found")
	ErrInvalidParams    = NewError(-32602, "Invalid params")
	ErrInternal         = NewError(-32603, "Internal error")
	ErrServerOverloaded = NewError(-32000, "Server overloaded")
)

// The server-error range reserved for implementation-defined errors.
const (
	serverErrorMin = -32099
	serverErrorMax = -32000
)

// Error represents a jsonrpc2 error object: an integer code, a short
// message, and optional structured data.
//
// Error supports the go error interface and may be used as a normal error.
// A zero Error ([Error.IsZero] is true) represents "no error" and is how
// [Response] distinguishes success from failure.
type Error struct {
	data    jval.Value // nil when absent
	message string
	code    int64
	present bool
}

// NewError returns a new [Error] with its code and message fields assigned
// to the given values.
func NewError(code int64, msg string) Error {
	return Error{present: true, code: code, message: msg}
}

// NewErrorWithData is the same as [NewError] but also sets the data member.
func NewErrorWithData(code int64, msg string, data jval.Value) Error {
	return Error{present: true, code: code, message: msg, data: data}
}

// FromCode builds an [Error] for an arbitrary code. Reserved codes yield the
// corresponding standard error; msg overrides the standard message when
// non-empty. Codes in the server-error range with an empty msg get the
// generic "Server error" message.
func FromCode(code int64, msg string) Error {
	var e Error

	switch code {
	case ErrParse.code:
		e = ErrParse
	case ErrInvalidRequest.code:
		e = ErrInvalidRequest
	case ErrMethodNotFound.code:
		e = ErrMethodNotFound
	case ErrInvalidParams.code:
		e = ErrInvalidParams
	case ErrInternal.code:
		e = ErrInternal
	default:
		if msg == "" && code >= serverErrorMin && code <= serverErrorMax {
			msg = "Server error"
		}

		return NewError(code, msg)
	}

	if msg != "" {
		e.message = msg
	}

	return e
}

// asError converts any error into an [Error] suitable for the wire.
// If e is, or wraps, an [Error] it is used directly. Anything else becomes
// [ErrInternal] with the error text as data.
func asError(e error) Error {
	var je Error

	if errors.As(e, &je) {
		return je
	}

	return ErrInternal.WithData(jval.String(e.Error()))
}

// Code returns the code present in the error.
func (e *Error) Code() int64 {
	return e.code
}

// Message returns the message present in the error.
func (e *Error) Message() string {
	return e.message
}

// Data returns the data member and whether it was present.
func (e *Error) Data() (jval.Value, bool) {
	return e.data, e.data != nil
}

// WithData returns a copy of the current [Error] with its data member set.
func (e *Error) WithData(data jval.Value) Error {
	return Error{present: true, code: e.code, message: e.message, data: data}
}

// Is reports whether t is an [Error] with a matching code.
func (e Error) Is(t error) bool {
	if jerr, ok := t.(Error); ok {
		return e.code == jerr.code
	}

	if jerr, ok := t.(*Error); ok {
		return e.code == jerr.code
	}

	return false
}

// IsZero returns true if the error is empty.
func (e *Error) IsZero() bool {
	return !e.present
}

// IsParseError reports whether the code is the reserved -32700.
func (e *Error) IsParseError() bool {
	return e.code == ErrParse.code
}

// IsInvalidRequest reports whether the code is the reserved -32600.
func (e *Error) IsInvalidRequest() bool {
	return e.code == ErrInvalidRequest.code
}

// IsMethodNotFound reports whether the code is the reserved -32601.
func (e *Error) IsMethodNotFound() bool {
	return e.code == ErrMethodNotFound.code
}

// IsInvalidParams reports whether the code is the reserved -32602.
func (e *Error) IsInvalidParams() bool {
	return e.code == ErrInvalidParams.code
}

// IsInternalError reports whether the code is the reserved -32603.
func (e *Error) IsInternalError() bool {
	return e.code == ErrInternal.code
}

// IsServerError reports whether the code lies in the implementation-defined
// server error range -32099..-32000.
func (e *Error) IsServerError() bool {
	return e.code >= serverErrorMin && e.code <= serverErrorMax
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.message
}

// UnmarshalJSON implements [json.Unmarshaler].
func (e *Error) UnmarshalJSON(b []byte) error {
	v, err := jval.ParseBytes(b)
	if err != nil {
		return err
	}

	decoded, err := DecodeError(v)
	if err != nil {
		return err
	}

	*e = decoded

	return nil
}

// MarshalJSON implements [json.Marshaler].
func (e *Error) MarshalJSON() ([]byte, error) {
	return []byte(EncodeError(*e).JSON()), nil
}
