package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
)

var (
	ErrHTTPEmptyResponse = errors.New("http: empty response body")
	ErrHTTPResponse      = errors.New("http: response error")
	ErrHTTPNoJSON        = errors.New("http: response did not contain application/json")
)

// HTTPBridge implements an [Encoder] and [Decoder] over an [http.Client]:
// Encode posts the payload to the configured url and records the HTTP
// response, Decode interprets whatever the last Encode received.
//
// HTTPBridge is NOT goroutine safe, but is safe for use with
// [*TransportClient] and [*ClientPool], which serialize access.
type HTTPBridge struct {
	client     *http.Client
	url        string
	respStatus string
	respBuffer bytes.Buffer
	respCode   int
	closed     bool
	respJSON   bool
}

// NewHTTPBridge builds a new [*HTTPBridge] that sends requests to url.
func NewHTTPBridge(url string) *HTTPBridge {
	return &HTTPBridge{url: url, client: new(http.Client)}
}

// NewHTTPBridgeWithClient builds a new [*HTTPBridge] around an existing
// [http.Client], for custom transports, TLS settings, or timeouts.
func NewHTTPBridgeWithClient(url string, client *http.Client) *HTTPBridge {
	return &HTTPBridge{url: url, client: client}
}

// Close closes any idle connections held by the underlying client and
// closes the bridge. Any call to the bridge after Close immediately
// returns [io.EOF].
func (h *HTTPBridge) Close() error {
	h.client.CloseIdleConnections()
	h.closed = true

	return nil
}

// Encode implements [Encoder]. It posts v to the bridge url and records
// the HTTP response for the following Decode. A payload that cannot be
// marshalled is reported as [ErrEncoding].
func (h *HTTPBridge) Encode(ctx context.Context, v any) error {
	if h.closed {
		return io.EOF
	}

	h.respBuffer.Reset()
	h.respStatus = ""
	h.respCode = 0
	h.respJSON = false

	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(buf))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	h.respCode = resp.StatusCode
	h.respStatus = resp.Status

	if ct, _, ctErr := mime.ParseMediaType(resp.Header.Get("Content-Type")); ctErr == nil && ct == "application/json" {
		h.respJSON = true

		// ReadFrom reporting io.EOF just means an empty body here.
		if _, err := h.respBuffer.ReadFrom(resp.Body); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("http: failed to read response body: %w", err)
		}
	}

	// The request itself went through; Decode sorts out the rest.
	return nil
}

// Decode implements [Decoder]. It yields the payload recorded by the last
// Encode, or a transport error describing why there is none.
func (h *HTTPBridge) Decode(ctx context.Context, v any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if h.closed {
		return io.EOF
	}

	if h.respJSON {
		if h.respBuffer.Len() > 0 {
			return json.Unmarshal(h.respBuffer.Bytes(), v)
		}

		return fmt.Errorf("%w (status: %s)", ErrHTTPEmptyResponse, h.respStatus)
	}

	if h.respCode >= 200 && h.respCode < 300 {
		return fmt.Errorf("%w (status: %s)", ErrHTTPNoJSON, h.respStatus)
	}

	return fmt.Errorf("%w (status: %s)", ErrHTTPResponse, h.respStatus)
}
