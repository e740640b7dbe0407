package jsonrpc2

import (
	"errors"
	"fmt"

	"github.com/wireval/jsonrpc2/jval"
)

var (
	// ErrIDNotSet is returned by [ResponseBuilder.Build] when no id was
	// supplied. Every response must echo the id of the request it answers.
	ErrIDNotSet = errors.New("response builder: id not set")

	// ErrContentNotSet is returned by [ResponseBuilder.Build] when neither
	// a result nor an error was supplied.
	ErrContentNotSet = errors.New("response builder: neither result nor error set")
)

// ResponseBuilder assembles a [Response] step by step. Result and Error
// overwrite each other, so the last setter wins; this supports handler
// patterns that default to an error and overwrite it with a result on
// success. Setter failures are recorded and surface from
// [ResponseBuilder.Build].
//
// A builder is single-owner and not safe for concurrent use. The zero value
// is not usable; create builders with [NewResponseBuilder].
type ResponseBuilder struct {
	result  jval.Value
	attrs   attrs
	err     error
	version string
	rpcErr  Error
	id      ID
}

// NewResponseBuilder returns a builder with the version preset to
// [ProtocolVersion].
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{version: ProtocolVersion}
}

func (b *ResponseBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Version sets the protocol version. Only [ProtocolVersion] is accepted;
// anything else records an error wrapping [ErrWrongProtocolVersion].
func (b *ResponseBuilder) Version(v string) *ResponseBuilder {
	if v != ProtocolVersion {
		b.fail(fmt.Errorf("%w %q", ErrWrongProtocolVersion, v))
		return b
	}

	b.version = v

	return b
}

// ID sets the response id. Use [NewNullID] when the request id could not be
// determined.
func (b *ResponseBuilder) ID(id ID) *ResponseBuilder {
	b.id = id
	return b
}

// Result sets the result member, clearing any previously set error.
// A nil result encodes as JSON null.
func (b *ResponseBuilder) Result(result jval.Value) *ResponseBuilder {
	if result == nil {
		result = jval.Null{}
	}

	b.result = result
	b.rpcErr = Error{}

	return b
}

// Error sets the error member, clearing any previously set result. If e is,
// or wraps, an [Error] it is used directly; any other error is converted to
// [ErrInternal] with the error text as data.
func (b *ResponseBuilder) Error(e error) *ResponseBuilder {
	b.rpcErr = asError(e)
	b.result = nil

	return b
}

// TryResult evaluates fn and sets the result on success. On failure the
// error is converted with the default mapping: [Error] values pass through
// unchanged, anything else becomes [ErrInternal] with the error text as
// data. See [ResponseBuilder.TryResultWith] for custom mappings.
func (b *ResponseBuilder) TryResult(fn func() (jval.Value, error)) *ResponseBuilder {
	return b.TryResultWith(fn, func(err error) (Error, bool) {
		return asError(err), true
	})
}

// TryResultWith evaluates fn and sets the result on success. On failure,
// mapErr decides how to proceed: when it returns an [Error] and true, that
// error becomes the response's error member; when it returns false, the
// original failure is left unmapped and propagates from
// [ResponseBuilder.Build].
func (b *ResponseBuilder) TryResultWith(fn func() (jval.Value, error), mapErr func(error) (Error, bool)) *ResponseBuilder {
	v, err := fn()
	if err == nil {
		return b.Result(v)
	}

	if mapErr != nil {
		if e, ok := mapErr(err); ok {
			return b.Error(e)
		}
	}

	b.fail(err)

	return b
}

// Attr attaches a local attribute to the built response.
func (b *ResponseBuilder) Attr(key string, value any) *ResponseBuilder {
	b.attrs = b.attrs.with(key, value)
	return b
}

// Build finalizes the response. It fails with any error recorded by a
// setter, with [ErrIDNotSet] when no id was supplied, or with
// [ErrContentNotSet] when neither a result nor an error was set.
func (b *ResponseBuilder) Build() (*Response, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.id.IsZero() {
		return nil, ErrIDNotSet
	}

	if b.result == nil && b.rpcErr.IsZero() {
		return nil, ErrContentNotSet
	}

	return &Response{
		version: b.version,
		id:      b.id,
		result:  b.result,
		err:     b.rpcErr,
		attrs:   b.attrs,
	}, nil
}
