package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSBridge implements an [Encoder] and [Decoder] over a WebSocket
// connection, framing every payload as one text message.
//
// Reads follow the gorilla single-reader rule and must come from one
// goroutine. Writes are serialized internally and may come from many, so
// a [StreamServer] can fan handlers out while sharing the bridge.
type WSBridge struct {
	conn *websocket.Conn
	wmu  sync.Mutex
	t    time.Duration
}

// NewWSBridge returns a [*WSBridge] over an established connection.
func NewWSBridge(conn *websocket.Conn) *WSBridge {
	return &WSBridge{conn: conn}
}

// SetIdleTimeout bounds how long a single Decode waits for the next
// message and how long a single Encode may take. A duration of 0 or less
// disables the timeout.
func (b *WSBridge) SetIdleTimeout(d time.Duration) {
	b.t = d
}

// Decode implements [Decoder]. It blocks until the next data message and
// stores its payload in v. A peer that closed normally is reported as
// [io.EOF].
func (b *WSBridge) Decode(ctx context.Context, v any) error {
	deadline := time.Time{}
	if b.t > 0 {
		deadline = time.Now().Add(b.t)
	}

	if err := b.conn.SetReadDeadline(deadline); err != nil {
		return err
	}

	dctx, stop := context.WithCancel(ctx)
	defer stop()

	after := context.AfterFunc(dctx, func() {
		_ = b.conn.SetReadDeadline(time.Now())
	})

	_, data, err := b.conn.ReadMessage()

	if !after() {
		err = errors.Join(err, ctx.Err())
	}

	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return io.EOF
		}

		return err
	}

	if rm, ok := v.(*json.RawMessage); ok {
		*rm = data

		return nil
	}

	return json.Unmarshal(data, v)
}

// Encode implements [Encoder]. It writes v as a single text message.
// A payload that cannot be marshalled is reported as [ErrEncoding].
func (b *WSBridge) Encode(ctx context.Context, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	b.wmu.Lock()
	defer b.wmu.Unlock()

	deadline := time.Time{}
	if b.t > 0 {
		deadline = time.Now().Add(b.t)
	}

	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	if err := b.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	return b.conn.WriteMessage(websocket.TextMessage, buf)
}

// Close sends a close frame, best effort, and closes the underlying
// connection.
func (b *WSBridge) Close() error {
	b.wmu.Lock()

	_ = b.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)

	b.wmu.Unlock()

	return b.conn.Close()
}
