package jsonrpc2

import (
	"errors"
	"fmt"

	"github.com/wireval/jsonrpc2/jval"
)

// ErrMethodNotSet is returned by [RequestBuilder.Build] when no method name
// was supplied.
var ErrMethodNotSet = errors.New("request builder: method not set")

// RequestBuilder assembles a [Request] step by step. Setters chain and
// validate eagerly: the first failure is recorded and surfaces from
// [RequestBuilder.Build], so call sites check a single error.
//
// A builder is single-owner and not safe for concurrent use. The zero value
// is not usable; create builders with [NewRequestBuilder].
//
// Example:
//
//	req, err := jsonrpc2.NewRequestBuilder().
//		ID(jsonrpc2.NewID(int64(7))).
//		Method("subtract").
//		Params(jval.NewArray(jval.NewNumber(42), jval.NewNumber(23))).
//		Build()
type RequestBuilder struct {
	params  jval.Value
	attrs   attrs
	err     error
	version string
	method  string
	id      ID
}

// NewRequestBuilder returns a builder with the version preset to
// [ProtocolVersion] and no id, so an unmodified build yields a notification
// once a method is set.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{version: ProtocolVersion}
}

func (b *RequestBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Version sets the protocol version. Only [ProtocolVersion] is accepted;
// anything else records an error wrapping [ErrWrongProtocolVersion].
func (b *RequestBuilder) Version(v string) *RequestBuilder {
	if v != ProtocolVersion {
		b.fail(fmt.Errorf("%w %q", ErrWrongProtocolVersion, v))
		return b
	}

	b.version = v

	return b
}

// ID sets the request id. Leaving the id unset builds a notification.
func (b *RequestBuilder) ID(id ID) *RequestBuilder {
	b.id = id
	return b
}

// Method sets the method name.
func (b *RequestBuilder) Method(method string) *RequestBuilder {
	b.method = method
	return b
}

// Params sets the params member. Only array and object values are accepted;
// anything else records an error wrapping [ErrParamsType].
func (b *RequestBuilder) Params(params jval.Value) *RequestBuilder {
	if err := checkParams(params); err != nil {
		b.fail(err)
		return b
	}

	b.params = params

	return b
}

// Attr attaches a local attribute to the built request.
func (b *RequestBuilder) Attr(key string, value any) *RequestBuilder {
	b.attrs = b.attrs.with(key, value)
	return b
}

// Build finalizes the request. It fails with any error recorded by a setter,
// or with [ErrMethodNotSet] when no method was supplied. The builder may be
// reused after a successful build; the built request is independent of it.
func (b *RequestBuilder) Build() (*Request, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.method == "" {
		return nil, ErrMethodNotSet
	}

	return &Request{
		version: b.version,
		method:  b.method,
		id:      b.id,
		params:  b.params,
		attrs:   b.attrs,
	}, nil
}
