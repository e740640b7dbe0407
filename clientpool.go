package jsonrpc2

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/jackc/puddle/v2"
)

const (
	// DefaultPoolDialTimeout specifies the default timeout (30 seconds) used
	// when establishing a new client connection within the pool. See
	// [ClientPoolConfig.DialTimeout].
	DefaultPoolDialTimeout = 30
	// DefaultPoolIdleTimeout specifies the default timeout (300 seconds) after
	// which idle client connections in the pool are closed. See
	// [ClientPoolConfig.IdleTimeout].
	DefaultPoolIdleTimeout = 300
)

// ErrRetriesExceeded is returned by [ClientPool] methods (Call*, Notify*)
// when an operation fails repeatedly with retryable errors (broken
// connections and the like) and the configured number of retries
// ([ClientPoolConfig.Retries]) is exhausted. The last underlying error is
// joined with this one.
var ErrRetriesExceeded = errors.New("retries exceeded")

// ClientPoolConfig holds configuration parameters for creating a [ClientPool].
type ClientPoolConfig struct {
	// URI specifies the target server address (e.g. "tcp:localhost:9090",
	// "http://api.example.com/rpc"). It is passed to the dialer whenever the
	// pool needs a new connection. See [Dial] for supported schemes.
	URI string

	// IdleTimeout defines how long a connection may sit idle in the pool
	// before being closed. Defaults to [DefaultPoolIdleTimeout] seconds if
	// zero. A negative value disables idle sweeping. Because the sweep runs
	// at this same interval, a connection may survive up to twice the
	// configured duration.
	IdleTimeout time.Duration

	// DialTimeout specifies the maximum time allowed for establishing a new
	// client connection. Defaults to [DefaultPoolDialTimeout] seconds if zero
	// or negative.
	DialTimeout time.Duration

	// Retries specifies how many times an operation is retried on a fresh
	// connection after a retryable failure. The minimum effective value is 1.
	Retries int

	// MaxSize defines the maximum number of connections in the pool, idle and
	// in-use combined. If zero or negative it defaults to
	// min(runtime.NumCPU(), runtime.GOMAXPROCS(-1)) * 2. Acquiring from a
	// full pool blocks until a connection frees up or the context ends.
	MaxSize int32

	// AcquireOnCreate, if true, establishes one connection when the pool is
	// created, verifying the URI and dialer early. [NewClientPool] and
	// [NewClientPoolWithDialer] fail if that connection cannot be made.
	AcquireOnCreate bool
}

// ClientPool manages a pool of reusable [*TransportClient] connections to a
// single server. Multiple goroutines can issue calls concurrently over
// pooled connections, broken connections are discarded and retried, and
// idle connections are swept periodically.
//
// Use [NewClientPool] or [NewClientPoolWithDialer] to create instances, or
// [Dial] for the pool wrapped in a [*Client].
type ClientPool struct {
	pool    *puddle.Pool[*TransportClient]
	idle    *time.Timer
	retries int // Total attempts, initial try included.
	closed  bool
	mu      sync.Mutex // Protects closed and the idle timer.
}

// NewClientPool creates a new [ClientPool] that connects to
// [ClientPoolConfig.URI] using [DialTransport].
//
// Example:
//
//	config := jsonrpc2.ClientPoolConfig{
//	    URI:         "tcp:localhost:5000",
//	    MaxSize:     10,
//	    IdleTimeout: 5 * time.Minute,
//	    Retries:     2,
//	}
//	pool, err := jsonrpc2.NewClientPool(context.Background(), config)
//	if err != nil {
//	    log.Fatal().Err(err).Msg("pool setup failed")
//	}
//	defer pool.Close()
func NewClientPool(nctx context.Context, config ClientPoolConfig) (*ClientPool, error) {
	return NewClientPoolWithDialer(nctx, config, DialTransport)
}

// NewClientPoolWithDialer creates a new [ClientPool] using a custom dialer,
// for non-standard transports or custom connection setup (client
// certificates, proxies). The dialer receives [ClientPoolConfig.URI] and
// must return a connected [*TransportClient].
func NewClientPoolWithDialer(nctx context.Context, config ClientPoolConfig, dialFunc func(ctx context.Context, uri string) (*TransportClient, error)) (*ClientPool, error) {
	if config.IdleTimeout == 0 {
		config.IdleTimeout = time.Duration(DefaultPoolIdleTimeout) * time.Second
	}

	if config.DialTimeout <= 0 {
		config.DialTimeout = time.Duration(DefaultPoolDialTimeout) * time.Second
	}

	if config.MaxSize <= 0 {
		//nolint:gosec,mnd // How many cpus do you think we have? Puddle requires int32.
		config.MaxSize = int32(min(runtime.NumCPU(), runtime.GOMAXPROCS(-1)) * 2)
	}

	pool, err := puddle.NewPool(&puddle.Config[*TransportClient]{
		Constructor: func(ctx context.Context) (*TransportClient, error) {
			dialCtx, stop := context.WithTimeout(ctx, config.DialTimeout)
			defer stop()

			return dialFunc(dialCtx, config.URI)
		},
		Destructor: func(client *TransportClient) { _ = client.Close() },
		MaxSize:    config.MaxSize,
	})
	if err != nil {
		return nil, err
	}

	if config.AcquireOnCreate {
		res, err := pool.Acquire(nctx)
		if err != nil {
			defer pool.Close()
			return nil, err
		}

		defer res.Release()
	}

	cpool := &ClientPool{pool: pool}
	// One initial try plus at least one retry. Retries=2 means 3 attempts.
	cpool.retries = max(config.Retries, 1) + 1

	if config.IdleTimeout > 0 {
		cpool.idle = time.AfterFunc(config.IdleTimeout, func() {
			cpool.mu.Lock()
			defer cpool.mu.Unlock()

			// Close may have raced the timer.
			if cpool.closed {
				return
			}

			for _, res := range cpool.pool.AcquireAllIdle() {
				if res.IdleDuration() >= config.IdleTimeout {
					res.Destroy()
					continue
				}

				// Survivors must go back or they stay acquired forever.
				res.Release()
			}

			cpool.idle.Reset(config.IdleTimeout)
		})
	}

	return cpool, nil
}

// Close shuts down the pool: it stops the idle sweeper, closes all idle
// connections, and closes acquired connections as they are released. The
// pool must not be used after Close. Close may be called multiple times.
func (cp *ClientPool) Close() {
	cp.mu.Lock()
	if cp.closed {
		cp.mu.Unlock()
		return
	}

	cp.closed = true

	if cp.idle != nil {
		cp.idle.Stop()
	}
	// Unlock before closing the pool, Close blocks on acquired resources.
	cp.mu.Unlock()

	cp.pool.Close()
}

// Reset closes all idle connections and marks acquired ones to be closed on
// release. Subsequent calls dial fresh connections. Useful after a network
// change or a suspected bad server state.
func (cp *ClientPool) Reset() {
	cp.pool.Reset()
}

// releaseMaybeRetry settles a pool resource after a call attempt. Any error
// destroys the connection so a possibly corrupted stream is never reused;
// only errors that look like a broken connection are worth retrying.
func releaseMaybeRetry(res *puddle.Resource[*TransportClient], err error) (needsRetry bool) {
	if err != nil {
		res.Destroy()

		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return false
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed), errors.Is(err, os.ErrClosed):
			return true
		}

		return false
	}

	res.Release()

	return false
}

// Call acquires a connection from the pool, performs
// [TransportClient.Call], and returns the response. Retryable failures are
// retried on a fresh connection up to the configured attempt count; when
// those run out the last error is joined with [ErrRetriesExceeded].
//
// Example:
//
//	req := jsonrpc2.NewRequest(int64(1), "status")
//	resp, err := pool.Call(context.Background(), req)
//	if errors.Is(err, jsonrpc2.ErrRetriesExceeded) {
//	    log.Error().Err(err).Msg("server unreachable")
//	}
func (cp *ClientPool) Call(ctx context.Context, req *Request) (resp *Response, err error) {
	for i := 0; i < cp.retries; i++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		client, cerr := cp.pool.Acquire(ctx)
		if cerr != nil {
			return nil, cerr
		}

		resp, err = client.Value().Call(ctx, req)

		if needsRetry := releaseMaybeRetry(client, err); needsRetry {
			continue
		}

		return resp, err
	}

	return nil, errors.Join(ErrRetriesExceeded, err)
}

// CallBatch acquires a connection from the pool, performs
// [TransportClient.CallBatch], and returns the batch response. Retries work
// as in [ClientPool.Call].
func (cp *ClientPool) CallBatch(ctx context.Context, req Batch[*Request]) (resp Batch[*Response], err error) {
	for i := 0; i < cp.retries; i++ {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}

		client, cerr := cp.pool.Acquire(ctx)
		if cerr != nil {
			return nil, cerr
		}

		resp, err = client.Value().CallBatch(ctx, req)

		if needsRetry := releaseMaybeRetry(client, err); needsRetry {
			continue
		}

		return resp, err
	}

	return nil, errors.Join(ErrRetriesExceeded, err)
}

// CallWithTimeout calls [ClientPool.Call] with a derived context carrying
// the given timeout.
func (cp *ClientPool) CallWithTimeout(ctx context.Context, timeout time.Duration, r *Request) (*Response, error) {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return cp.Call(tctx, r)
}

// CallBatchWithTimeout calls [ClientPool.CallBatch] with a derived context
// carrying the given timeout.
func (cp *ClientPool) CallBatchWithTimeout(ctx context.Context, timeout time.Duration, r Batch[*Request]) (Batch[*Response], error) {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return cp.CallBatch(tctx, r)
}

// Notify acquires a connection from the pool and performs
// [TransportClient.Notify]. No response is read. Retries work as in
// [ClientPool.Call].
func (cp *ClientPool) Notify(ctx context.Context, notify *Request) (err error) {
	for i := 0; i < cp.retries; i++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		client, cerr := cp.pool.Acquire(ctx)
		if cerr != nil {
			return cerr
		}

		err = client.Value().Notify(ctx, notify)

		if needsRetry := releaseMaybeRetry(client, err); needsRetry {
			continue
		}

		return err
	}

	return errors.Join(ErrRetriesExceeded, err)
}

// NotifyBatch acquires a connection from the pool and performs
// [TransportClient.NotifyBatch]. Retries work as in [ClientPool.Call].
func (cp *ClientPool) NotifyBatch(ctx context.Context, notify Batch[*Request]) (err error) {
	for i := 0; i < cp.retries; i++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		client, cerr := cp.pool.Acquire(ctx)
		if cerr != nil {
			return cerr
		}

		err = client.Value().NotifyBatch(ctx, notify)

		if needsRetry := releaseMaybeRetry(client, err); needsRetry {
			continue
		}

		return err
	}

	return errors.Join(ErrRetriesExceeded, err)
}

// NotifyWithTimeout calls [ClientPool.Notify] with a derived context
// carrying the given timeout.
func (cp *ClientPool) NotifyWithTimeout(ctx context.Context, timeout time.Duration, n *Request) error {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return cp.Notify(tctx, n)
}

// NotifyBatchWithTimeout calls [ClientPool.NotifyBatch] with a derived
// context carrying the given timeout.
func (cp *ClientPool) NotifyBatchWithTimeout(ctx context.Context, timeout time.Duration, n Batch[*Request]) error {
	tctx, stop := context.WithTimeout(ctx, timeout)
	defer stop()

	return cp.NotifyBatch(tctx, n)
}
