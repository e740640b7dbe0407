package jsonrpc2

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ContextKey is the type of the context keys this package attaches to
// request contexts.
type ContextKey int

const (
	// CtxNetConn carries the accepted [net.Conn] on socket servers.
	CtxNetConn ContextKey = iota
	// CtxHTTPRequest carries the originating [*http.Request] on HTTP and
	// WebSocket servers.
	CtxHTTPRequest
	// CtxStreamServer carries the [*StreamServer] serving the request.
	CtxStreamServer
)

const (
	// DefaultHTTPReadTimeout is the header read timeout in seconds when
	// listening on an [http.Server].
	DefaultHTTPReadTimeout = 5
	// DefaultHTTPShutdownTimeout is the graceful shutdown timeout in
	// seconds when shutting down an [http.Server].
	DefaultHTTPShutdownTimeout = 30
)

var (
	ErrUnknownScheme    = errors.New("unknown scheme in uri")
	ErrMissingTLSConfig = errors.New("missing TLS config for uri scheme")
)

// Server listens for new connections and serves them with the given
// handler. Each connection runs in its own [*StreamServer] and goroutine.
//
// Connections accepted from a listener carry the context key [CtxNetConn]
// with the accepted [net.Conn]; requests arriving over HTTP or WebSocket
// carry [CtxHTTPRequest] instead.
type Server struct {
	handler    Handler
	Binder     Binder
	NewEncoder NewEncoderFunc
	NewDecoder NewDecoderFunc
	// TLSConfig enables the tls, https and wss listen schemes.
	TLSConfig *tls.Config
	// Read header timeout if serving HTTP.
	HTTPReadTimeout time.Duration
	// Graceful shutdown timeout if serving HTTP.
	HTTPShutdownTimeout time.Duration
}

// NewServer returns a new [*Server] that serves handler.
func NewServer(handler Handler) *Server {
	var server Server

	server.handler = handler
	server.NewEncoder = NewEncoder
	server.NewDecoder = NewDecoder
	server.HTTPReadTimeout = time.Duration(DefaultHTTPReadTimeout) * time.Second
	server.HTTPShutdownTimeout = time.Duration(DefaultHTTPShutdownTimeout) * time.Second

	return &server
}

// ListenAndServe listens on the given uri, serving until the context is
// cancelled.
//
// Supported schemes: tcp, tcp4, tcp6, tls, unix, http, https, ws, wss.
//
// The tls, https and wss schemes require [Server.TLSConfig] to be set.
// For http-like schemes an [http.Server] is started on the uri host,
// serving the uri path with an [HTTPHandler] or [WSHandler].
//
// Example uris: 'tcp:127.0.0.1:9090', 'tls::9443',
// 'http://127.0.0.1:8080/rpc', 'ws://127.0.0.1:8080/rpc',
// 'unix:///tmp/mysocket'
func (s *Server) ListenAndServe(ctx context.Context, listenURI string) error {
	uri, err := url.Parse(listenURI)
	if err != nil {
		return err
	}

	switch uri.Scheme {
	case "tcp", "tcp4", "tcp6":
		return s.listenAndServe(ctx, uri.Scheme, hostAddr(uri))
	case "tls":
		return s.listenAndServeTLS(ctx, "tcp", hostAddr(uri))
	case "unix":
		return s.listenAndServe(ctx, uri.Scheme, uri.Path)
	case "http", "https":
		handler := NewHTTPHandler(s.handler)
		handler.Binder = s.Binder
		handler.NewDecoder = s.NewDecoder
		handler.NewEncoder = s.NewEncoder

		return s.listenAndServeHTTP(ctx, uri, handler)
	case "ws", "wss":
		handler := NewWSHandler(s.handler)
		handler.Binder = s.Binder

		return s.listenAndServeHTTP(ctx, uri, handler)
	}

	return ErrUnknownScheme
}

// listenAndServe listens on the given network and address, serving
// connections until the context is cancelled.
func (s *Server) listenAndServe(ctx context.Context, network, addr string) error {
	ln, err := net.Listen(network, addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// listenAndServeTLS is listenAndServe wrapped with [Server.TLSConfig].
func (s *Server) listenAndServeTLS(ctx context.Context, network, addr string) error {
	if s.TLSConfig == nil {
		return ErrMissingTLSConfig
	}

	ln, err := tls.Listen(network, addr, s.TLSConfig)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// listenAndServeHTTP starts an HTTP server on the host:port of the uri
// and serves the uri path with handler.
func (s *Server) listenAndServeHTTP(ctx context.Context, uri *url.URL, handler http.Handler) error {
	shutdownCtx, stop := context.WithCancel(ctx)
	defer stop()

	path := uri.Path
	if path == "" {
		path = "/"
	}

	httpMux := http.NewServeMux()
	httpMux.Handle(path, handler)

	httpServer := &http.Server{
		Addr:              uri.Host,
		Handler:           httpMux,
		ReadHeaderTimeout: s.HTTPReadTimeout,
		TLSConfig:         s.TLSConfig,
	}

	// Shut the server down when the context ends.
	go func() {
		<-shutdownCtx.Done()

		sctx, sStop := context.WithTimeout(context.Background(), s.HTTPShutdownTimeout)
		defer sStop()

		//nolint:contextcheck // The shutdown deadline must outlive the cancelled parent.
		if err := httpServer.Shutdown(sctx); err != nil {
			_ = httpServer.Close()
		}
	}()

	if uri.Scheme == "https" || uri.Scheme == "wss" {
		if s.TLSConfig == nil {
			return ErrMissingTLSConfig
		}

		return httpServer.ListenAndServeTLS("", "")
	}

	return httpServer.ListenAndServe()
}

// Serve accepts connections from ln until the context is cancelled. The
// listener is closed when the context ends.
//
// It is safe to call Serve multiple times with different listeners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	sctx, stop := context.WithCancel(ctx)
	defer stop()

	// Unblock Accept when the context ends.
	context.AfterFunc(sctx, func() { _ = ln.Close() })

	for {
		newConn, err := ln.Accept()
		if err != nil {
			return errors.Join(err, ctx.Err())
		}

		wg.Add(1)

		go func(conn net.Conn) {
			defer wg.Done()

			ss := NewStreamServer(s.NewDecoder(conn), s.NewEncoder(conn), s.handler)

			cctx, nstop := context.WithCancelCause(context.WithValue(sctx, CtxNetConn, conn))
			defer nstop(nil)

			if s.Binder != nil {
				s.Binder.Bind(cctx, ss, nstop)
			}

			_ = ss.Run(cctx)
		}(newConn)
	}
}
