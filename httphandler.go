package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
)

var maxBytesError = &http.MaxBytesError{}

// HTTPHandler serves jsonrpc2 over HTTP as an [http.Handler]. Each
// request body is treated as a stream of documents and everything they
// produce is answered in the response body.
//
// Binder may be set before the first use of the handler.
//
// Requests carry the context key [CtxHTTPRequest] with the current
// [*http.Request].
type HTTPHandler struct {
	handler    Handler
	Binder     Binder
	NewEncoder NewEncoderFunc
	NewDecoder NewDecoderFunc
	// MaxBytes caps the request body size when > 0. Oversized bodies are
	// answered with 413 Request Entity Too Large.
	MaxBytes int64
}

// NewHTTPHandler returns an [*HTTPHandler] dispatching to handler.
func NewHTTPHandler(handler Handler) *HTTPHandler {
	return &HTTPHandler{handler: handler, NewEncoder: NewEncoder, NewDecoder: NewDecoder}
}

// ServeHTTP implements [http.Handler].
func (h *HTTPHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	ct, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil || ct != "application/json" {
		resp.WriteHeader(http.StatusUnsupportedMediaType)

		return
	}

	resp.Header().Set("Content-Type", "application/json")

	body := req.Body

	if h.MaxBytes > 0 {
		body = http.MaxBytesReader(resp, body, h.MaxBytes)
	}

	// Writing to the ResponseWriter while the body is still being read
	// breaks the request (see the [http.ResponseWriter] docs), so replies
	// collect in an intermediate buffer.
	var buffer bytes.Buffer

	ss := NewStreamServer(h.NewDecoder(body), h.NewEncoder(&buffer), h.handler)
	ss.NoRoutines = true
	ss.WaitOnClose = true
	ss.Dispatcher.SerialBatch = true

	sctx, stop := context.WithCancelCause(context.WithValue(req.Context(), CtxHTTPRequest, req))
	defer stop(nil)

	if h.Binder != nil {
		h.Binder.Bind(sctx, ss, stop)
	}

	err = ss.Run(sctx)

	var syntaxErr *json.SyntaxError

	switch {
	case err == nil || errors.Is(err, io.EOF):
		// Clean end of body.
	case errors.As(err, &syntaxErr), errors.Is(err, ErrJSONTooLarge):
		// Run already answered these on the stream.
	case errors.As(err, &maxBytesError):
		resp.WriteHeader(http.StatusRequestEntityTooLarge)

		return
	case errors.Is(err, io.ErrUnexpectedEOF):
		// The body ended mid-document and never reached the dispatcher.
		_, _ = buffer.WriteString(EncodeResponse(NewResponseError(ErrParse)).JSON())
	default:
		resp.WriteHeader(http.StatusInternalServerError)

		return
	}

	if buffer.Len() > 0 {
		_, _ = buffer.WriteTo(resp)
	} else {
		resp.WriteHeader(http.StatusNoContent)
	}
}
