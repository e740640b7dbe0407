package jsonrpc2

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// DefaultOnHandlerPanic logs recovered handler panics through the global
// zerolog logger. It is assigned to [Callbacks.OnHandlerPanic] by
// [NewDispatcher], so panics are recorded even when no custom callbacks
// are configured.
var DefaultOnHandlerPanic = func(_ context.Context, req *Request, rec any) {
	id := req.RawID()

	var params string
	if p, ok := req.Params(); ok {
		params = p.JSON()
	}

	log.Error().
		Str("method", req.Method()).
		Any("id", id.Value()).
		Str("params", params).
		Any("panic", rec).
		Msg("panic recovered in rpc handler")
}

// Callbacks are hooks into the lifecycle of a [Dispatcher] or
// [StreamServer], for custom logging, error reporting, or cleanup.
//
// Callbacks are typically assigned before the server starts, often inside
// a [Binder]. They must be safe for concurrent use when requests are
// processed concurrently. Callbacks must not mutate the server they are
// attached to.
//
// Example (using a Binder to set callbacks):
//
//	server.Binder = jsonrpc2.NewFuncBinder(func(_ context.Context, ss *jsonrpc2.StreamServer, _ context.CancelCauseFunc) {
//		ss.Callbacks.OnExit = func(_ context.Context, err error) {
//			log.Info().Err(err).Msg("stream closed")
//		}
//	})
type Callbacks struct {
	// OnExit is called when [StreamServer.Run] is about to return. err is
	// the reason for exiting: nil on graceful shutdown, or an error such
	// as [io.EOF], [context.Canceled], or a connection failure.
	OnExit func(ctx context.Context, err error)

	// OnDecodingError is called when the stream fails to yield a JSON
	// document: malformed framing, oversized payloads, or I/O failures.
	// raw holds whatever partial input was read, possibly nil.
	//
	// Invalid but well-formed requests do not reach this hook; they are
	// answered on the wire per [DecodeRequest].
	OnDecodingError func(ctx context.Context, raw json.RawMessage, err error)

	// OnEncodingError is called when a response value cannot be written
	// back to the peer. value is the response that failed to encode.
	OnEncodingError func(ctx context.Context, value any, err error)

	// OnHandlerPanic is called after a panic inside a [Handler] has been
	// recovered. req is the request being handled and rec the recovered
	// value. Defaults to [DefaultOnHandlerPanic].
	OnHandlerPanic func(ctx context.Context, req *Request, rec any)
}

func (c *Callbacks) runOnExit(ctx context.Context, e error) {
	if c.OnExit != nil {
		c.OnExit(ctx, e)
	}
}

func (c *Callbacks) runOnDecodingError(ctx context.Context, m json.RawMessage, e error) {
	if c.OnDecodingError != nil {
		c.OnDecodingError(ctx, m, e)
	}
}

func (c *Callbacks) runOnEncodingError(ctx context.Context, d any, e error) {
	if c.OnEncodingError != nil {
		c.OnEncodingError(ctx, d, e)
	}
}

func (c *Callbacks) runOnHandlerPanic(ctx context.Context, r *Request, recovery any) {
	if c.OnHandlerPanic != nil {
		c.OnHandlerPanic(ctx, r, recovery)
	}
}
