package jsonrpc2

import (
	"context"
	"time"

	"github.com/wireval/jsonrpc2/jval"
)

// poolClient is the subset of [ClientPool] used by [Client], split out so
// tests can substitute a fake pool.
type poolClient interface {
	Call(ctx context.Context, req *Request) (*Response, error)
	CallWithTimeout(ctx context.Context, timeout time.Duration, req *Request) (*Response, error)
	CallBatch(ctx context.Context, batch Batch[*Request]) (Batch[*Response], error)
	CallBatchWithTimeout(ctx context.Context, timeout time.Duration, batch Batch[*Request]) (Batch[*Response], error)
	Notify(ctx context.Context, notify *Request) error
	NotifyWithTimeout(ctx context.Context, timeout time.Duration, notify *Request) error
	NotifyBatch(ctx context.Context, batch Batch[*Request]) error
	NotifyBatchWithTimeout(ctx context.Context, timeout time.Duration, batch Batch[*Request]) error
	Close()
}

// Client provides a simplified interface for making jsonrpc2 calls to a
// server. It wraps a [ClientPool] to manage connections and assigns request
// ids automatically from an [IDSource].
//
// Use [Dial] to create instances connected to a server URI.
//
// Client is goroutine safe once configured. [Client.SetIDSource] and
// [Client.SetDefaultTimeout] must be called before the client is shared.
type Client struct {
	pool           poolClient
	ids            IDSource
	defaultTimeout time.Duration
}

// NewClient wraps an existing pool in a [*Client] with a fresh
// [CounterSource] assigning ids.
func NewClient(pool *ClientPool) *Client {
	return &Client{pool: pool, ids: NewCounterSource()}
}

// SetIDSource replaces the source of request ids, e.g. with a [UUIDSource]
// when sequential ids would repeat across clients.
func (c *Client) SetIDSource(ids IDSource) {
	c.ids = ids
}

// SetDefaultTimeout sets a timeout applied to every subsequent Call and
// Notify made through this Client. Zero or negative disables it, leaving
// deadlines to the caller's context.
func (c *Client) SetDefaultTimeout(d time.Duration) {
	c.defaultTimeout = d
}

// Close closes the underlying connection pool. The client must not be used
// after Close.
func (c *Client) Close() {
	c.pool.Close()
}

// newRequest assembles a request with the next id from the source, or a
// notification when withID is false. A nil params means omitted.
func (c *Client) newRequest(method string, params jval.Value, withID bool) (*Request, error) {
	b := NewRequestBuilder().Method(method)

	if withID {
		b.ID(c.ids.NextID())
	}

	if params != nil {
		b.Params(params)
	}

	return b.Build()
}

// Call sends a request for the given method and waits for the response. The
// id is assigned automatically. Params may be a [jval.Object], a
// [jval.Array], or nil to omit them; any other value fails with an error
// wrapping [ErrParamsType]. Use a [jval.Writer] to produce params from Go
// values.
//
// Example:
//
//	params := jval.NewObject(
//	    jval.Field("name", jval.String("svc-7")),
//	    jval.Field("level", jval.NewNumber(3)),
//	)
//	resp, err := client.Call(ctx, "node.configure", params)
func (c *Client) Call(ctx context.Context, method string, params jval.Value) (*Response, error) {
	req, err := c.newRequest(method, params, true)
	if err != nil {
		return nil, err
	}

	if c.defaultTimeout > 0 {
		return c.pool.CallWithTimeout(ctx, c.defaultTimeout, req)
	}

	return c.pool.Call(ctx, req)
}

// Notify sends a notification for the given method without waiting for any
// response. Params follow the same rules as in [Client.Call]. An error is
// returned only when building or sending fails.
func (c *Client) Notify(ctx context.Context, method string, params jval.Value) error {
	notif, err := c.newRequest(method, params, false)
	if err != nil {
		return err
	}

	if c.defaultTimeout > 0 {
		return c.pool.NotifyWithTimeout(ctx, c.defaultTimeout, notif)
	}

	return c.pool.Notify(ctx, notif)
}

// NewBatch creates a [BatchBuilder] for assembling a batch of calls and
// notifications sent in one round trip. Calls added via [BatchBuilder.Add]
// receive ids automatically. The size parameter is a capacity hint.
func (c *Client) NewBatch(size int) *BatchBuilder {
	return &BatchBuilder{parent: c, batch: NewBatch[*Request](size)}
}

// callBatch sends a request batch through the pool, applying the default
// timeout if one is set.
func (c *Client) callBatch(ctx context.Context, batch Batch[*Request]) (Batch[*Response], error) {
	if c.defaultTimeout > 0 {
		return c.pool.CallBatchWithTimeout(ctx, c.defaultTimeout, batch)
	}

	return c.pool.CallBatch(ctx, batch)
}

// notifyBatch sends a notification-only batch through the pool, applying
// the default timeout if one is set.
func (c *Client) notifyBatch(ctx context.Context, batch Batch[*Request]) error {
	if c.defaultTimeout > 0 {
		return c.pool.NotifyBatchWithTimeout(ctx, c.defaultTimeout, batch)
	}

	return c.pool.NotifyBatch(ctx, batch)
}
