package jsonrpc2

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wireval/jsonrpc2/jval"
)

// ErrMethodAlreadyExists is returned by [MethodMux.Register] and
// [MethodMux.RegisterFunc] when a handler is already registered for the
// method name.
var ErrMethodAlreadyExists = errors.New("method already exists in mux")

// Handler processes jsonrpc2 requests.
//
// Handle returns the result value for the response on success, or an
// error on failure. A nil result encodes as JSON null.
//
// Error handling:
//   - If the returned error is, or wraps, an [Error], it is sent to the
//     peer unchanged.
//   - Any other error becomes [ErrInternal] with the error text attached
//     as error data.
//
// If the incoming request is a notification ([Request.IsNotification] is
// true), both return values are discarded.
//
// Implementations must be safe for concurrent use; servers call Handle
// from multiple goroutines.
type Handler interface {
	Handle(ctx context.Context, req *Request) (jval.Value, error)
}

// HandlerFunc adapts a plain function to the [Handler] interface.
//
// Example:
//
//	ping := jsonrpc2.HandlerFunc(func(_ context.Context, _ *jsonrpc2.Request) (jval.Value, error) {
//		return jval.String("pong"), nil
//	})
type HandlerFunc func(context.Context, *Request) (jval.Value, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) (jval.Value, error) {
	return f(ctx, req)
}

// MethodMux routes requests to [Handler] implementations by method name.
// Method names are case-sensitive.
//
// A MethodMux is itself a [Handler], so it can serve as the root handler
// of a server or be nested inside another mux. When no handler matches,
// the default handler (see [MethodMux.SetDefault]) is consulted; without
// one the mux fails with [ErrMethodNotFound].
//
// MethodMux is safe for concurrent use. Lookups and registrations may
// happen at any time, including while the mux is serving requests.
type MethodMux struct {
	defaultHandler atomic.Pointer[Handler]
	mux            sync.Map // method name -> Handler
}

// NewMethodMux returns a new, empty [*MethodMux].
func NewMethodMux() *MethodMux {
	return &MethodMux{}
}

// Register associates handler with a method name. It returns
// [ErrMethodAlreadyExists] if the name is already taken; use
// [MethodMux.Replace] to overwrite.
//
// Example:
//
//	mux := jsonrpc2.NewMethodMux()
//	if err := mux.Register("arith.add", addHandler); err != nil {
//		// method name collision
//	}
func (mm *MethodMux) Register(method string, handler Handler) error {
	if _, loaded := mm.mux.LoadOrStore(method, handler); loaded {
		return fmt.Errorf("method '%s': %w", method, ErrMethodAlreadyExists)
	}

	return nil
}

// Replace registers or replaces the handler for the given method name.
func (mm *MethodMux) Replace(method string, handler Handler) {
	mm.mux.Store(method, handler)
}

// RegisterFunc associates a handler function with a method name. It
// returns [ErrMethodAlreadyExists] if the name is already taken; use
// [MethodMux.ReplaceFunc] to overwrite.
//
// Example:
//
//	err := mux.RegisterFunc("utils.echo", func(_ context.Context, req *jsonrpc2.Request) (jval.Value, error) {
//		params, _ := req.Params()
//		return params, nil
//	})
func (mm *MethodMux) RegisterFunc(method string, f func(context.Context, *Request) (jval.Value, error)) error {
	return mm.Register(method, HandlerFunc(f))
}

// ReplaceFunc registers or replaces the handler function for the given
// method name.
func (mm *MethodMux) ReplaceFunc(method string, f func(context.Context, *Request) (jval.Value, error)) {
	mm.Replace(method, HandlerFunc(f))
}

// Methods returns the names of all registered methods in no particular
// order.
func (mm *MethodMux) Methods() []string {
	methods := make([]string, 0)

	//nolint:forcetypeassert // Keys are only ever registered as strings.
	mm.mux.Range(func(key, _ any) bool { methods = append(methods, key.(string)); return true })

	return methods
}

// Delete removes the handler for the given method name. Unknown names are
// a no-op.
func (mm *MethodMux) Delete(method string) {
	mm.mux.Delete(method)
}

// SetDefault sets the [Handler] consulted when no registered method
// matches. Passing nil removes the default handler.
func (mm *MethodMux) SetDefault(handler Handler) {
	if handler == nil {
		mm.defaultHandler.Store(nil)

		return
	}

	mm.defaultHandler.Store(&handler)
}

// SetDefaultFunc sets the default handler function consulted when no
// registered method matches. Passing nil removes the default handler.
//
// Example:
//
//	mux.SetDefaultFunc(func(_ context.Context, req *jsonrpc2.Request) (jval.Value, error) {
//		log.Warn().Str("method", req.Method()).Msg("unhandled method")
//		return nil, jsonrpc2.ErrMethodNotFound
//	})
func (mm *MethodMux) SetDefaultFunc(f func(context.Context, *Request) (jval.Value, error)) {
	if f == nil {
		mm.SetDefault(nil)

		return
	}

	mm.SetDefault(HandlerFunc(f))
}

// Handle implements [Handler]. It delegates to the handler registered for
// the request's method, falling back to the default handler, and failing
// with [ErrMethodNotFound] when neither exists.
func (mm *MethodMux) Handle(ctx context.Context, req *Request) (jval.Value, error) {
	if value, ok := mm.mux.Load(req.Method()); ok {
		//nolint:forcetypeassert // Values are only ever registered as Handlers.
		return value.(Handler).Handle(ctx, req)
	}

	if h := mm.defaultHandler.Load(); h != nil && *h != nil {
		return (*h).Handle(ctx, req)
	}

	return nil, ErrMethodNotFound
}
