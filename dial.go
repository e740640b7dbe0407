package jsonrpc2

import (
	"context"
	"crypto/tls"
	"net"
	"net/url"

	"github.com/gorilla/websocket"
)

// hostAddr extracts the dial or listen address from a parsed URI, accepting
// both the opaque form "tcp:host:port" and the authority form
// "tcp://host:port".
func hostAddr(uri *url.URL) string {
	if uri.Opaque != "" {
		return uri.Opaque
	}

	return uri.Host
}

// DialTransport establishes a single connection to the destination URI and
// returns a [*TransportClient] speaking jsonrpc2 over it.
//
// The destURI format is scheme:address or a URL.
//
// Supported schemes:
//   - tcp, tcp4, tcp6: plain TCP, address is host:port.
//   - tls, tls4, tls6: TLS over TCP with default settings, address is
//     host:port. For custom TLS configs dial manually and wrap the
//     connection with [NewTransportClientIO].
//   - unix: unix domain stream socket, address is the socket path.
//   - http, https: HTTP POST transport via [HTTPBridge], using the full URL.
//   - ws, wss: websocket transport via [WSBridge], using the full URL.
//
// Examples:
//   - tcp:127.0.0.1:9090
//   - tcp://localhost:9090
//   - tls:api.internal:9443
//   - unix:///tmp/service.sock
//   - http://127.0.0.1:8080/rpc
//   - wss://api.example.com/rpc
//
// Returns [ErrUnknownScheme] for unsupported schemes.
func DialTransport(ctx context.Context, destURI string) (*TransportClient, error) {
	uri, err := url.Parse(destURI)
	if err != nil {
		return nil, err
	}

	switch uri.Scheme {
	case "tcp", "tcp4", "tcp6":
		return dialStream(ctx, uri.Scheme, hostAddr(uri))
	case "tls", "tls4", "tls6":
		return dialTLS(ctx, uri.Scheme, hostAddr(uri))
	case "unix":
		return dialStream(ctx, "unix", uri.Path)
	case "http", "https":
		return dialHTTP(ctx, destURI)
	case "ws", "wss":
		return dialWS(ctx, destURI)
	}

	return nil, ErrUnknownScheme
}

// dialStream connects stream sockets (TCP, unix) with a default
// [net.Dialer].
func dialStream(ctx context.Context, network, addr string) (*TransportClient, error) {
	conn, err := new(net.Dialer).DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	return NewTransportClientIO(conn), nil
}

// dialTLS connects over TLS with default settings. The tls4 and tls6
// variants pin the underlying TCP network.
func dialTLS(ctx context.Context, network, addr string) (*TransportClient, error) {
	tcpNetwork := "tcp"

	switch network {
	case "tls4":
		tcpNetwork = "tcp4"
	case "tls6":
		tcpNetwork = "tcp6"
	}

	conn, err := new(tls.Dialer).DialContext(ctx, tcpNetwork, addr)
	if err != nil {
		return nil, err
	}

	return NewTransportClientIO(conn), nil
}

// dialHTTP wires an [HTTPBridge] as both encoder and decoder. No connection
// is made until the first call.
func dialHTTP(ctx context.Context, uri string) (*TransportClient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bridge := NewHTTPBridge(uri)

	return NewTransportClient(bridge, bridge), nil
}

// dialWS performs the websocket handshake and wires a [WSBridge] as both
// encoder and decoder.
func dialWS(ctx context.Context, uri string) (*TransportClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, uri, nil)
	if err != nil {
		return nil, err
	}

	bridge := NewWSBridge(conn)

	return NewTransportClient(bridge, bridge), nil
}

// Dial connects to the destination URI and returns a [*Client] ready for
// making calls. The client is backed by a [ClientPool] with default
// settings; one connection is established immediately so configuration
// errors surface here rather than on the first call.
//
// See [DialTransport] for supported URI schemes. For pool tuning create the
// pool with [NewClientPool] and wrap it with [NewClient].
//
// Example:
//
//	client, err := jsonrpc2.Dial(context.Background(), "tcp://localhost:9090")
//	if err != nil {
//	    log.Fatal().Err(err).Msg("dial failed")
//	}
//	defer client.Close()
//
//	resp, err := client.Call(context.Background(), "ping", nil)
func Dial(ctx context.Context, destURI string) (*Client, error) {
	pool, err := NewClientPool(ctx, ClientPoolConfig{URI: destURI, AcquireOnCreate: true})
	if err != nil {
		return nil, err
	}

	return NewClient(pool), nil
}
