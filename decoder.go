package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

var (
	ErrDecoding     = errors.New("jsonrpc2: decoding error")
	ErrJSONTooLarge = errors.New("jsonrpc2: JSON payload larger than configured read limit")
)

// DeadlineReader is an [io.ReadCloser] that supports read deadlines, as
// implemented by [net.Conn].
type DeadlineReader interface {
	io.ReadCloser
	SetReadDeadline(time.Time) error
}

// Decoder reads JSON documents off a transport for [StreamServer] and
// [TransportClient].
//
// Decode stores the next document in the value pointed to by v, a
// [*json.RawMessage] in this package: decoders only frame payloads, and
// all protocol interpretation happens on the framed bytes afterwards.
//
// Implementations are encouraged to support [io.Closer] for resource
// cleanup and [DeadlineReader] for timeout handling where the transport
// allows.
type Decoder interface {
	Decode(ctx context.Context, v any) error
}

// NewDecoderFunc defines the signature for functions that create a new
// [Decoder], allowing [Server] and [Dial] to be configured with custom
// decoders.
type NewDecoderFunc func(r io.Reader) Decoder

// StreamDecoder is a stream-based [Decoder]. It reads JSON documents
// sequentially from an [io.Reader], with optional per-document read
// limits via [StreamDecoder.SetLimit] and idle timeouts via
// [StreamDecoder.SetIdleTimeout].
type StreamDecoder struct {
	r  io.Reader
	lr *io.LimitedReader
	d  *json.Decoder
	n  int64
	t  time.Duration
}

// NewDecoder returns a new [Decoder] reading from r. It is the default
// [NewDecoderFunc] used by [Server].
//
//nolint:ireturn // Implements NewDecoderFunc.
func NewDecoder(r io.Reader) Decoder {
	return NewStreamDecoder(r)
}

// NewStreamDecoder returns a new [*StreamDecoder] reading from r.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{r: r, d: json.NewDecoder(r)}
}

// SetLimit configures the maximum size in bytes of a single JSON document.
// A document exceeding the limit fails the [StreamDecoder.Decode] call
// with [ErrJSONTooLarge]. A limit of 0 or less disables the read limit.
//
// SetLimit must be called before the first Decode; it resets the internal
// buffering.
//
// Example:
//
//	dec := NewStreamDecoder(conn)
//	dec.SetLimit(1024 * 1024) // 1 MiB per document
func (i *StreamDecoder) SetLimit(n int64) {
	i.n = n

	if n > 0 {
		i.lr = &io.LimitedReader{R: i.r, N: i.n}
		i.d = json.NewDecoder(i.lr)
	} else {
		i.lr = nil
		i.d = json.NewDecoder(i.r)
	}
}

// SetIdleTimeout configures an idle timeout for [StreamDecoder.Decode].
// If no document arrives within d, the ongoing Decode call is interrupted.
//
// The mechanism depends on the underlying [io.Reader]:
//   - A [DeadlineReader] (like [net.Conn]) is interrupted with
//     SetReadDeadline, without closing the connection.
//   - An [io.Closer] without deadlines is closed outright.
//   - Anything else cannot be interrupted, and the timeout is not
//     enforced.
//
// An interrupted Decode poisons the JSON stream; treat the decoder as
// dead and tear down its transport.
//
// A duration of 0 or less disables the idle timeout.
func (i *StreamDecoder) SetIdleTimeout(d time.Duration) {
	i.t = d
}

// ioErr translates the io errors the json decoder reports when it runs
// into the read limit mid-document into [ErrJSONTooLarge].
func (i *StreamDecoder) ioErr(e error) error {
	if i.lr != nil && i.lr.N <= 0 {
		if errors.Is(e, io.EOF) || errors.Is(e, io.ErrUnexpectedEOF) {
			return ErrJSONTooLarge
		}
	}

	return e
}

// cancelDecode decodes with cancellation support, interrupting the
// blocking read through a [DeadlineReader] when available and falling
// back to closing the reader.
func (i *StreamDecoder) cancelDecode(ctx context.Context, cReader io.Closer, v any) error {
	var dctx context.Context

	var stop context.CancelFunc

	deadLiner, haveDeadline := cReader.(DeadlineReader)

	// Clear any deadline left over from a previous interrupted call.
	if haveDeadline {
		if err := deadLiner.SetReadDeadline(time.Time{}); err != nil {
			return err
		}
	}

	if i.t > 0 {
		dctx, stop = context.WithTimeout(ctx, i.t)
	} else {
		dctx, stop = context.WithCancel(ctx)
	}

	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)

	after := context.AfterFunc(dctx, func() {
		defer wg.Done()

		if haveDeadline {
			_ = deadLiner.SetReadDeadline(time.Now())

			return
		}

		_ = cReader.Close()
	})

	decodeErr := i.ioErr(i.d.Decode(v))

	if !after() {
		// The interrupt fired; wait for it to finish before touching the
		// reader again.
		wg.Wait()
	}

	contextErr := dctx.Err()

	if decodeErr != nil {
		return errors.Join(decodeErr, contextErr)
	}

	return contextErr
}

// Decode reads the next JSON document from the stream into v. It respects
// the configured read limit and idle timeout, and uses ctx for
// cancellation.
func (i *StreamDecoder) Decode(ctx context.Context, v any) error {
	// A fresh document gets the full limit again.
	if i.lr != nil {
		i.lr.N = i.n
	}

	if c, ok := i.r.(io.Closer); ok {
		return i.cancelDecode(ctx, c, v)
	}

	// No Closer, no way to interrupt a blocking read.
	return i.ioErr(i.d.Decode(v))
}

// Close closes the underlying [io.Reader] if it implements [io.Closer].
func (i *StreamDecoder) Close() error {
	if c, ok := i.r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
