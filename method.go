package jsonrpc2

import (
	"context"

	"github.com/wireval/jsonrpc2/jval"
)

// NewMethod builds a [Handler] from a typed method implementation: params
// decodes the request parameters into P, result encodes the return value
// R, and fn is the method body.
//
// Absent params are presented to the reader as [jval.Null]; wrap the
// reader with [jval.MaybeReader] or [jval.OrElseReader] when the method
// accepts calls without parameters. A failed decode never invokes fn and
// is reported as [ErrInvalidParams] carrying the reader's error text as
// data, per [DecodeParams].
//
// Example:
//
//	sum := jsonrpc2.NewMethod(
//		jval.SliceReader(jval.Int64Reader()),
//		jval.Int64Writer(),
//		func(_ context.Context, terms []int64) (int64, error) {
//			var total int64
//			for _, t := range terms {
//				total += t
//			}
//			return total, nil
//		},
//	)
//	mux.Register("sum", sum)
func NewMethod[P, R any](params jval.Reader[P], result jval.Writer[R], fn func(context.Context, P) (R, error)) Handler {
	return HandlerFunc(func(ctx context.Context, req *Request) (jval.Value, error) {
		p, err := DecodeParams(req, params)
		if err != nil {
			return nil, err
		}

		r, err := fn(ctx, p)
		if err != nil {
			return nil, err
		}

		return result.WriteValue(r), nil
	})
}
