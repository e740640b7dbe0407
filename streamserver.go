package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/wireval/jsonrpc2/jval"
)

// StreamServer serves jsonrpc2 over a single bidirectional stream,
// reading documents from a [Decoder] and writing replies to an [Encoder].
//
// Requests handled by a StreamServer carry the context key
// [CtxStreamServer] holding the current [*StreamServer].
type StreamServer struct {
	// Dispatcher executes the decoded payloads. It is created by
	// [NewStreamServer] and may be reconfigured before Run.
	Dispatcher *Dispatcher
	Callbacks  Callbacks
	decoder    Decoder
	encoder    Encoder
	// NoRoutines handles payloads inline on the read loop instead of in a
	// goroutine per payload.
	NoRoutines bool
	// WaitOnClose waits for pending payloads to finish instead of
	// cancelling them when Run is about to return.
	WaitOnClose bool
}

// NewStreamServer returns a [*StreamServer] reading requests from d and
// writing responses to e, dispatching each request to handler.
func NewStreamServer(d Decoder, e Encoder, handler Handler) *StreamServer {
	return &StreamServer{Dispatcher: NewDispatcher(handler), decoder: d, encoder: e}
}

// NewStreamServerFromIO returns a [*StreamServer] over rw, wrapped with
// the default encoder and decoder per [NewDecoder] and [NewEncoder].
func NewStreamServerFromIO(rw io.ReadWriter, handler Handler) *StreamServer {
	return NewStreamServer(NewDecoder(rw), NewEncoder(rw), handler)
}

// handlePayload interprets one framed document and writes back whatever
// the dispatch produces.
func (s *StreamServer) handlePayload(ctx context.Context, buf json.RawMessage) {
	payload, err := jval.ParseBytes(buf)
	if err != nil {
		s.Callbacks.runOnDecodingError(ctx, buf, err)

		resp := EncodeResponse(NewResponseError(ErrParse.WithData(jval.String(syntaxDetail(err)))))
		if err := s.encoder.Encode(ctx, resp); err != nil {
			s.Callbacks.runOnEncodingError(ctx, resp, err)
		}

		return
	}

	if out := s.Dispatcher.Dispatch(ctx, payload); out != nil {
		if err := s.encoder.Encode(ctx, out); err != nil {
			s.Callbacks.runOnEncodingError(ctx, out, err)
		}
	}
}

// Close closes the decoder and encoder if they implement [io.Closer].
func (s *StreamServer) Close() error {
	var err error

	if dc, ok := s.decoder.(io.Closer); ok {
		err = dc.Close()
	}

	if ec, ok := s.encoder.(io.Closer); ok {
		return errors.Join(err, ec.Close())
	}

	return err
}

// Run serves the stream until ctx is cancelled or the connection fails.
//
// Input that fails JSON framing is answered with a parse error and then
// ends the stream: the decoder cannot resynchronize once the byte stream
// has diverged from JSON. Oversized documents (see
// [StreamDecoder.SetLimit]) are answered the same way.
func (s *StreamServer) Run(ctx context.Context) (err error) {
	var wg sync.WaitGroup

	sctx, stop := context.WithCancel(context.WithValue(ctx, CtxStreamServer, s))

	defer func() {
		if s.WaitOnClose {
			wg.Wait()
			stop()
		} else {
			stop()
			wg.Wait()
		}

		err = errors.Join(err, ctx.Err(), s.Close())

		s.Callbacks.runOnExit(ctx, err)
	}()

	for {
		var buf json.RawMessage

		err = s.decoder.Decode(sctx, &buf)
		if err != nil {
			var syntaxErr *json.SyntaxError

			if errors.As(err, &syntaxErr) || errors.Is(err, ErrJSONTooLarge) {
				s.Callbacks.runOnDecodingError(sctx, buf, err)

				resp := EncodeResponse(NewResponseError(ErrParse.WithData(jval.String(err.Error()))))
				_ = s.encoder.Encode(ctx, resp)
			}

			return
		}

		if len(buf) == 0 {
			continue
		}

		if s.NoRoutines {
			s.handlePayload(sctx, buf)
		} else {
			wg.Add(1)

			go func() {
				defer wg.Done()
				s.handlePayload(sctx, buf)
			}()
		}
	}
}
