package jsonrpc2

import (
	"errors"
	"fmt"

	"github.com/wireval/jsonrpc2/jval"
)

var (
	// ErrNoID is returned by [Request.ID] when the request is a
	// notification and carries no id member.
	ErrNoID = errors.New("request has no id")

	// ErrParamsType is returned when params are set to anything other than
	// an array or object value.
	ErrParamsType = errors.New("params must be an array or object value")
)

// structured reports whether v may appear as a params member.
func structured(v jval.Value) bool {
	return v.Kind() == jval.KindArray || v.Kind() == jval.KindObject
}

// checkParams validates a caller-supplied params value, treating nil as
// null rather than dereferencing it.
func checkParams(params jval.Value) error {
	if params == nil || !structured(params) {
		kind := jval.KindNull
		if params != nil {
			kind = params.Kind()
		}

		return fmt.Errorf("%w, got %s", ErrParamsType, kind)
	}

	return nil
}

// Request represents a jsonrpc2 request or notification.
//
// Requests are immutable: accessors never expose mutable state and the With*
// methods return modified copies. Construct requests with [NewRequest],
// [NewNotification], their *WithParams variants, or a [RequestBuilder];
// decoded requests come from [DecodeRequest] or [ParseRequest].
//
// A request without an id member is a notification and expects no response.
//
// See: https://www.jsonrpc.org/specification#request_object
type Request struct {
	params  jval.Value // nil when absent
	attrs   attrs
	version string
	method  string
	id      ID
}

// NewRequest builds a new request for method with the given id.
func NewRequest[I int64 | string](id I, method string) *Request {
	return &Request{version: ProtocolVersion, method: method, id: NewID(id)}
}

// NewRequestWithParams builds a new request for method with the given id and
// params. It fails with an error wrapping [ErrParamsType] if params is not
// an array or object value.
func NewRequestWithParams[I int64 | string](id I, method string, params jval.Value) (*Request, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}

	return &Request{version: ProtocolVersion, method: method, id: NewID(id), params: params}, nil
}

// NewNotification builds a new notification for method. Notifications carry
// no id and expect no response.
func NewNotification(method string) *Request {
	return &Request{version: ProtocolVersion, method: method}
}

// NewNotificationWithParams builds a new notification for method with the
// given params. It fails with an error wrapping [ErrParamsType] if params is
// not an array or object value.
func NewNotificationWithParams(method string, params jval.Value) (*Request, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}

	return &Request{version: ProtocolVersion, method: method, params: params}, nil
}

// Version returns the protocol version of the request, normally "2.0".
func (r *Request) Version() string {
	if r.version == "" {
		return ProtocolVersion
	}

	return r.version
}

// Method returns the method name of the request.
func (r *Request) Method() string {
	return r.method
}

// ID returns the request id. It fails with an error wrapping [ErrNoID] when
// the request is a notification: callers that need to respond must not
// silently invent an id for a message that has none.
func (r *Request) ID() (ID, error) {
	if r.id.IsZero() {
		return ID{}, fmt.Errorf("method %q: %w", r.method, ErrNoID)
	}

	return r.id, nil
}

// RawID returns the id as stored, without the notification check. The
// returned ID is the zero value for notifications.
func (r *Request) RawID() ID {
	return r.id
}

// Params returns the params member and whether it was present.
func (r *Request) Params() (jval.Value, bool) {
	return r.params, r.params != nil
}

// IsNotification returns true if this request is a notification (no id
// member present).
func (r *Request) IsNotification() bool {
	return r.id.IsZero()
}

// Attr returns the attribute stored under key, if any. Attributes are local
// metadata attached by transports or middleware; they are never encoded.
func (r *Request) Attr(key string) (any, bool) {
	return r.attrs.get(key)
}

// WithAttr returns a copy of the request with the attribute key set to
// value. The receiver is untouched.
func (r *Request) WithAttr(key string, value any) *Request {
	next := *r
	next.attrs = r.attrs.with(key, value)

	return &next
}

// WithoutAttr returns a copy of the request with the attribute key removed.
func (r *Request) WithoutAttr(key string) *Request {
	next := *r
	next.attrs = r.attrs.without(key)

	return &next
}

// replyID returns the id a response to this request should carry. Responses
// to requests whose id could not be used echo null.
func (r *Request) replyID() ID {
	if r.id.IsZero() {
		return NewNullID()
	}

	return r.id
}

// ResponseWithResult constructs a response to the current request with its
// result member set. A nil result encodes as JSON null.
func (r *Request) ResponseWithResult(result jval.Value) *Response {
	if result == nil {
		result = jval.Null{}
	}

	return &Response{version: ProtocolVersion, id: r.replyID(), result: result}
}

// ResponseWithError constructs a response to the current request with its
// error member populated. If e is, or wraps, an [Error] it is used directly;
// any other error is converted to [ErrInternal] with the error text as data.
func (r *Request) ResponseWithError(e error) *Response {
	return &Response{version: ProtocolVersion, id: r.replyID(), err: asError(e)}
}

// msgID implements the batch message interface.
func (r *Request) msgID() ID {
	return r.id
}

// UnmarshalJSON implements [json.Unmarshaler] by delegating to
// [ParseRequest].
func (r *Request) UnmarshalJSON(data []byte) error {
	req, err := ParseRequest(data)
	if err != nil {
		return err
	}

	*r = *req

	return nil
}

// MarshalJSON implements [json.Marshaler] by rendering [EncodeRequest].
func (r *Request) MarshalJSON() ([]byte, error) {
	return []byte(EncodeRequest(r).JSON()), nil
}
