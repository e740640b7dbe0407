package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

var ErrEncoding = errors.New("jsonrpc2: encoding error")

// DeadlineWriter is an [io.WriteCloser] that supports write deadlines, as
// implemented by [net.Conn].
type DeadlineWriter interface {
	io.WriteCloser
	SetWriteDeadline(time.Time) error
}

// Encoder writes JSON payloads onto a transport for [StreamServer] and
// [TransportClient]. The values passed to Encode are wire payloads that
// marshal themselves, so implementations only need [encoding/json]
// semantics.
//
// Implementations are encouraged to support [io.Closer] and
// [DeadlineWriter] where the transport allows.
type Encoder interface {
	Encode(context.Context, any) error
}

// NewEncoderFunc defines a function returning a new [Encoder], allowing
// [Server] and [Dial] to be configured with custom encoders.
type NewEncoderFunc func(io.Writer) Encoder

// StreamEncoder is a stream-based [Encoder] supporting idle timeouts.
// Encode calls are serialized internally, so documents never interleave
// when handlers write concurrently.
type StreamEncoder struct {
	w  io.Writer
	e  *json.Encoder
	mu sync.Mutex
	t  time.Duration
}

// NewEncoder returns a new [Encoder] writing to w. It is the default
// [NewEncoderFunc] used by [Server].
//
//nolint:ireturn // Implements NewEncoderFunc.
func NewEncoder(w io.Writer) Encoder {
	return NewStreamEncoder(w)
}

// NewStreamEncoder returns a new [*StreamEncoder] writing to w.
func NewStreamEncoder(w io.Writer) *StreamEncoder {
	return &StreamEncoder{w: w, e: json.NewEncoder(w)}
}

// SetIdleTimeout sets an idle timeout for encoding.
//
// If the underlying [io.Writer] supports [DeadlineWriter], the deadline
// is used to interrupt a stalled write without closing the writer. An
// [io.Closer] without deadlines is closed when the timeout is reached.
// If neither is supported, timeouts are not enforced.
//
// A duration of 0 or less disables the idle timeout.
func (i *StreamEncoder) SetIdleTimeout(d time.Duration) {
	i.t = d
}

func (i *StreamEncoder) deadlineEncode(ctx context.Context, dWriter DeadlineWriter, v any) error {
	dctx, stop := context.WithCancel(ctx)
	defer stop()

	// Clear any deadline left over from a previous interrupted call.
	timeout := time.Time{}

	if i.t > 0 {
		timeout = time.Now().Add(i.t)
	}

	if err := dWriter.SetWriteDeadline(timeout); err != nil {
		return err
	}

	after := context.AfterFunc(dctx, func() {
		_ = dWriter.SetWriteDeadline(time.Now())
	})

	dErr := i.e.Encode(v)

	if !after() {
		return errors.Join(dErr, ctx.Err())
	}

	return dErr
}

func (i *StreamEncoder) closeEncode(ctx context.Context, cWriter io.Closer, v any) error {
	var dctx context.Context

	var stop context.CancelFunc

	if i.t > 0 {
		dctx, stop = context.WithTimeout(ctx, i.t)
	} else {
		dctx, stop = context.WithCancel(ctx)
	}

	defer stop()

	after := context.AfterFunc(dctx, func() {
		_ = cWriter.Close()
	})

	err := i.e.Encode(v)

	if !after() {
		return errors.Join(err, dctx.Err())
	}

	return err
}

// Encode writes v to the underlying writer as one JSON document followed
// by a newline. It respects the configured idle timeout and uses ctx for
// cancellation.
func (i *StreamEncoder) Encode(ctx context.Context, v any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if d, ok := i.w.(DeadlineWriter); ok {
		return i.deadlineEncode(ctx, d, v)
	}

	if c, ok := i.w.(io.Closer); ok {
		return i.closeEncode(ctx, c, v)
	}

	// No deadline and no close, no way to cancel.
	return i.e.Encode(v)
}

// Close closes the underlying writer if it implements [io.Closer].
func (i *StreamEncoder) Close() error {
	if c, ok := i.w.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
