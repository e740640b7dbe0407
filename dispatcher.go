package jsonrpc2

import (
	"context"
	"sync"

	"github.com/wireval/jsonrpc2/jval"
)

// Dispatcher executes decoded jsonrpc2 payloads against a [Handler],
// implementing the single-call and batch semantics of the protocol. It is
// transport independent: [StreamServer], [HTTPHandler] and [WSHandler]
// all feed it the payloads they read off their connections.
type Dispatcher struct {
	Handler   Handler
	Callbacks Callbacks
	// SerialBatch runs batch entries one after another instead of fanning
	// out to a goroutine per entry.
	SerialBatch bool
}

// NewDispatcher returns a [*Dispatcher] executing requests against
// handler, with [Callbacks.OnHandlerPanic] preset to
// [DefaultOnHandlerPanic].
func NewDispatcher(handler Handler) *Dispatcher {
	d := &Dispatcher{Handler: handler}
	d.Callbacks.OnHandlerPanic = DefaultOnHandlerPanic

	return d
}

// Dispatch executes one decoded payload: an object runs as a single call
// and an array as a batch. The returned value is the payload to send back
// to the peer, or nil when nothing may be sent (notifications).
//
// Payloads of any other kind earn an [ErrInvalidRequest] response, as does
// the empty batch.
func (d *Dispatcher) Dispatch(ctx context.Context, payload jval.Value) jval.Value {
	switch p := payload.(type) {
	case jval.Object:
		if resp := d.dispatchOne(ctx, p); resp != nil {
			return EncodeResponse(resp)
		}

		return nil
	case jval.Array:
		return d.dispatchBatch(ctx, p)
	default:
		resp := NewResponseError(ErrInvalidRequest.WithData(jval.String("object or array value expected")))

		return EncodeResponse(resp)
	}
}

// dispatchOne runs a single request value and returns its response, nil
// for notifications. Handler panics are recovered here; the peer sees
// [ErrInternal] and the panic is reported through the callbacks.
func (d *Dispatcher) dispatchOne(ctx context.Context, v jval.Value) (resp *Response) {
	req, err := DecodeRequest(v)
	if err != nil {
		return NewResponseError(err)
	}

	defer func() {
		if r := recover(); r != nil {
			d.Callbacks.runOnHandlerPanic(ctx, req, r)

			if req.IsNotification() {
				resp = nil
			} else {
				resp = req.ResponseWithError(ErrInternal)
			}
		}
	}()

	result, err := d.Handler.Handle(ctx, req)

	if req.IsNotification() {
		return nil
	}

	if err != nil {
		return req.ResponseWithError(err)
	}

	return req.ResponseWithResult(result)
}

func (d *Dispatcher) dispatchBatch(ctx context.Context, batch jval.Array) jval.Value {
	if batch.Len() == 0 {
		return EncodeResponse(NewResponseError(ErrInvalidRequest))
	}

	items := batch.Items()
	resps := make([]jval.Value, 0, len(items))

	if len(items) == 1 || d.SerialBatch {
		for _, item := range items {
			if resp := d.dispatchOne(ctx, item); resp != nil {
				resps = append(resps, EncodeResponse(resp))
			}
		}
	} else {
		var wg sync.WaitGroup

		var respMu sync.Mutex

		for _, item := range items {
			item := item

			wg.Add(1)

			go func() {
				defer wg.Done()

				resp := d.dispatchOne(ctx, item)
				if resp == nil {
					return
				}

				respMu.Lock()
				defer respMu.Unlock()

				resps = append(resps, EncodeResponse(resp))
			}()
		}

		wg.Wait()
	}

	// A batch of nothing but notifications gets no reply at all.
	if len(resps) == 0 {
		return nil
	}

	return jval.NewArray(resps...)
}
