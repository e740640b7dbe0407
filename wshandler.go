package jsonrpc2

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSHandler upgrades HTTP requests to WebSocket connections and serves
// jsonrpc2 over them as an [http.Handler]. Every upgraded connection gets
// its own [*StreamServer] over a [*WSBridge].
//
// Binder may be set before the first use of the handler.
//
// Requests carry the context key [CtxHTTPRequest] with the upgrade
// request.
type WSHandler struct {
	handler Handler
	Binder  Binder
	// Upgrader performs the protocol upgrade. The zero value rejects
	// cross-origin browser requests per [websocket.Upgrader]; set
	// CheckOrigin to change that.
	Upgrader websocket.Upgrader
}

// NewWSHandler returns a [*WSHandler] dispatching to handler.
func NewWSHandler(handler Handler) *WSHandler {
	return &WSHandler{handler: handler}
}

// ServeHTTP implements [http.Handler].
func (h *WSHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	conn, err := h.Upgrader.Upgrade(resp, req, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		log.Error().Err(err).Msg("websocket upgrade failed")

		return
	}

	bridge := NewWSBridge(conn)
	ss := NewStreamServer(bridge, bridge, h.handler)

	sctx, stop := context.WithCancelCause(context.WithValue(req.Context(), CtxHTTPRequest, req))
	defer stop(nil)

	if h.Binder != nil {
		h.Binder.Bind(sctx, ss, stop)
	}

	_ = ss.Run(sctx)
}
