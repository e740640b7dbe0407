package jsonrpc2

import (
	"github.com/wireval/jsonrpc2/jval"
)

// Response represents a JSON-RPC 2.0 response object.
//
// A response carries either a result or an error, never both, and always an
// id mirroring the request it answers (null when the request id could not
// be determined). Responses are immutable; construct them with the
// convenience constructors, [Request.ResponseWithResult],
// [Request.ResponseWithError], or a [ResponseBuilder].
//
// See: https://www.jsonrpc.org/specification#response_object
type Response struct {
	result  jval.Value // nil unless the result member is set
	attrs   attrs
	version string
	err     Error
	id      ID
}

// NewResponseWithResult creates a successful response for a given request id
// and result value.
//
// Example:
//
//	resp := jsonrpc2.NewResponseWithResult(int64(1), jval.String("pong"))
//	// Encodes to: {"jsonrpc":"2.0","id":1,"result":"pong"}
func NewResponseWithResult[I int64 | string](id I, result jval.Value) *Response {
	if result == nil {
		result = jval.Null{}
	}

	return &Response{version: ProtocolVersion, id: NewID(id), result: result}
}

// NewResponseWithError creates an error response for a given request id.
//
// If e is, or wraps, an [Error] it is used directly. Any other error is
// converted to [ErrInternal] with its text as the data member.
//
// Example:
//
//	resp := jsonrpc2.NewResponseWithError("req-01", jsonrpc2.ErrMethodNotFound)
//	// Encodes to: {"jsonrpc":"2.0","id":"req-01","error":{"code":-32601,"message":"Method not found"}}
func NewResponseWithError[I int64 | string](id I, e error) *Response {
	return &Response{version: ProtocolVersion, id: NewID(id), err: asError(e)}
}

// NewResponseError creates an error response with a null id. This is used
// when a request is malformed and its id cannot be determined. For errors
// related to valid requests, use [NewResponseWithError] or
// [Request.ResponseWithError].
func NewResponseError(e error) *Response {
	return &Response{version: ProtocolVersion, id: NewNullID(), err: asError(e)}
}

// Version returns the protocol version of the response, normally "2.0".
func (r *Response) Version() string {
	if r.version == "" {
		return ProtocolVersion
	}

	return r.version
}

// ID returns the response id. It mirrors the id of the request the response
// answers and is never absent, though it may be null.
func (r *Response) ID() ID {
	return r.id
}

// IsError returns true if the response carries an error member.
func (r *Response) IsError() bool {
	return !r.err.IsZero()
}

// IsResult returns true if the response carries a result member.
func (r *Response) IsResult() bool {
	return r.result != nil
}

// Result returns the result member and whether it was present.
func (r *Response) Result() (jval.Value, bool) {
	return r.result, r.result != nil
}

// Err returns the error member and whether it was present.
func (r *Response) Err() (Error, bool) {
	return r.err, !r.err.IsZero()
}

// Attr returns the attribute stored under key, if any.
func (r *Response) Attr(key string) (any, bool) {
	return r.attrs.get(key)
}

// WithAttr returns a copy of the response with the attribute key set to
// value. The receiver is untouched.
func (r *Response) WithAttr(key string, value any) *Response {
	next := *r
	next.attrs = r.attrs.with(key, value)

	return &next
}

// WithoutAttr returns a copy of the response with the attribute key removed.
func (r *Response) WithoutAttr(key string) *Response {
	next := *r
	next.attrs = r.attrs.without(key)

	return &next
}

// msgID implements the batch message interface.
func (r *Response) msgID() ID {
	return r.id
}

// UnmarshalJSON implements [json.Unmarshaler] by delegating to
// [ParseResponse].
func (r *Response) UnmarshalJSON(data []byte) error {
	resp, err := ParseResponse(data)
	if err != nil {
		return err
	}

	*r = *resp

	return nil
}

// MarshalJSON implements [json.Marshaler] by rendering [EncodeResponse].
func (r *Response) MarshalJSON() ([]byte, error) {
	return []byte(EncodeResponse(r).JSON()), nil
}
