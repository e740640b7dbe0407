package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/wireval/jsonrpc2/jval"
)

// ErrNotNotification is returned by [TransportClient.Notify] and
// [TransportClient.NotifyBatch] for requests that carry an id. Sending
// one as a notification would leave its response stranded on the stream,
// corrupting the reply of the next call.
var ErrNotNotification = errors.New("request is not a notification")

// TransportClient makes jsonrpc2 calls to a remote server over a single
// underlying connection or stream.
//
// A TransportClient is goroutine safe: multiple goroutines may call
// concurrently, with calls serialized over the single underlying
// transport. For pooling across connections use [ClientPool] or the
// higher level [Client].
//
// Use [DialTransport], [NewTransportClient], or [NewTransportClientIO] to
// create instances.
type TransportClient struct {
	e  Encoder
	d  Decoder
	mu sync.Mutex // Serializes the encode/decode round trip on the shared stream.
}

// NewTransportClient creates a new [*TransportClient] from the provided
// [Encoder] and [Decoder], for custom transports.
func NewTransportClient(e Encoder, d Decoder) *TransportClient {
	return &TransportClient{e: e, d: d}
}

// NewTransportClientIO creates a new [*TransportClient] over the given
// [io.ReadWriter], wrapped with the default [NewEncoder] and
// [NewDecoder]. This is the convenient constructor for [net.Conn] and
// other stream transports.
func NewTransportClientIO(rw io.ReadWriter) *TransportClient {
	return &TransportClient{e: NewEncoder(rw), d: NewDecoder(rw)}
}

// Close closes the underlying [Encoder] and [Decoder] if they implement
// [io.Closer], joining their errors. The client must not be used after
// Close.
func (c *TransportClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error

	if ec, ok := c.e.(io.Closer); ok {
		err = ec.Close()
	}

	if dc, ok := c.d.(io.Closer); ok {
		return errors.Join(err, dc.Close())
	}

	return err
}

// call sends one payload and, unless it is a notification, reads back the
// raw reply. The mutex keeps the request/response pairing intact on the
// shared stream.
func (c *TransportClient) call(ctx context.Context, payload any, isNotify bool) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.e.Encode(ctx, payload); err != nil {
		return nil, err
	}

	if isNotify {
		return nil, nil
	}

	var resp json.RawMessage
	if err := c.d.Decode(ctx, &resp); err != nil {
		return nil, err
	}

	return resp, nil
}

// Call sends a request and waits for its response.
//
// Example:
//
//	client := jsonrpc2.NewTransportClientIO(conn)
//	defer client.Close()
//
//	req, _ := jsonrpc2.NewRequestWithParams(int64(1), "arith.add", jval.NewArray(jval.NewNumber(2), jval.NewNumber(3)))
//	resp, err := client.Call(context.Background(), req)
//	if err != nil {
//		log.Fatal().Err(err).Msg("call failed")
//	}
//	if result, ok := resp.Result(); ok {
//		sum, _ := jval.Int64Reader().ReadValue(result)
//		fmt.Println(sum) // 5
//	}
func (c *TransportClient) Call(ctx context.Context, r *Request) (*Response, error) {
	raw, err := c.call(ctx, EncodeRequest(r), false)
	if err != nil {
		return nil, err
	}

	return ParseResponse(raw)
}

// CallBatch sends a batch of requests and waits for the batch response.
// Responses may arrive in any order and notifications inside the batch
// get none, so pair them up with [BatchCorrelate]. A batch consisting
// only of notifications gets no reply at all; send it with
// [TransportClient.NotifyBatch] instead.
//
// A server that rejects the whole batch answers with a single error
// object rather than an array; that reply is returned as a batch of
// length 1.
func (c *TransportClient) CallBatch(ctx context.Context, r Batch[*Request]) (Batch[*Response], error) {
	raw, err := c.call(ctx, EncodeRequestBatch(r), false)
	if err != nil {
		return nil, err
	}

	payload, err := jval.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	if obj, ok := payload.(jval.Object); ok {
		resp, err := DecodeResponse(obj)
		if err != nil {
			return nil, err
		}

		single := NewBatch[*Response](1)
		single.Add(resp)

		return single, nil
	}

	return DecodeResponseBatch(payload)
}

// CallWithTimeout calls [TransportClient.Call] with a derived context
// carrying the given timeout.
func (c *TransportClient) CallWithTimeout(ctx context.Context, timeout time.Duration, r *Request) (*Response, error) {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return c.Call(tctx, r)
}

// CallBatchWithTimeout calls [TransportClient.CallBatch] with a derived
// context carrying the given timeout.
func (c *TransportClient) CallBatchWithTimeout(ctx context.Context, timeout time.Duration, r Batch[*Request]) (Batch[*Response], error) {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return c.CallBatch(tctx, r)
}

// Notify sends a notification and returns without waiting for any reply.
// The request must satisfy [Request.IsNotification]; anything else fails
// with [ErrNotNotification] before touching the wire.
func (c *TransportClient) Notify(ctx context.Context, n *Request) error {
	if !n.IsNotification() {
		return fmt.Errorf("method %q: %w", n.Method(), ErrNotNotification)
	}

	_, err := c.call(ctx, EncodeRequest(n), true)

	return err
}

// NotifyBatch sends a batch of notifications and returns without waiting
// for any reply. Every entry must satisfy [Request.IsNotification];
// anything else fails with [ErrNotNotification] before touching the wire.
func (c *TransportClient) NotifyBatch(ctx context.Context, batch Batch[*Request]) error {
	for _, n := range batch {
		if !n.IsNotification() {
			return fmt.Errorf("method %q: %w", n.Method(), ErrNotNotification)
		}
	}

	_, err := c.call(ctx, EncodeRequestBatch(batch), true)

	return err
}

// NotifyWithTimeout calls [TransportClient.Notify] with a derived context
// carrying the given timeout.
func (c *TransportClient) NotifyWithTimeout(ctx context.Context, timeout time.Duration, n *Request) error {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return c.Notify(tctx, n)
}

// NotifyBatchWithTimeout calls [TransportClient.NotifyBatch] with a
// derived context carrying the given timeout.
func (c *TransportClient) NotifyBatchWithTimeout(ctx context.Context, timeout time.Duration, batch Batch[*Request]) error {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return c.NotifyBatch(tctx, batch)
}
