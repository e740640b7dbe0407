// Package jsonrpc2 implements the JSON-RPC 2.0 protocol on top of the
// [github.com/wireval/jsonrpc2/jval] value model.
//
// # Overview
//
// The package is organized in three layers:
//
//   - A message model: [ID], [Error], [Request] and [Response] are immutable
//     value types constructed through [RequestBuilder] and [ResponseBuilder]
//     or the convenience constructors. Params, results and error data are
//     [jval.Value] trees, so numbers keep arbitrary precision end to end.
//   - A codec: [EncodeRequest], [DecodeRequest] and friends translate between
//     messages and jval values, enforcing the validation rules of the
//     protocol. [ParseRequest] and [ParseResponse] work directly on text.
//     Request-phase failures are [Error] values ready to be sent back over
//     the wire; response-phase failures are ordinary errors wrapping
//     [ErrDecoding], since a malformed response is a local integration bug.
//   - Dispatch and transports: [Dispatcher] routes decoded requests to a
//     [Handler] (usually a [MethodMux]), [StreamServer] serves a single
//     connection, [Server] accepts many, and [Client]/[ClientPool] make
//     calls over TCP, Unix sockets, TLS, HTTP(S) or WebSockets.
//
// It adheres strictly to the 2.0 specification and is not compatible with
// JSON-RPC 1.0. Bi-directional use (a server issuing requests to its client)
// is not supported.
//
// # Server
//
//	mux := jsonrpc2.NewMethodMux()
//	mux.Replace("sum", jsonrpc2.NewMethod(
//		jval.SliceReader(jval.IntReader()),
//		jval.IntWriter(),
//		func(ctx context.Context, nums []int) (int, error) {
//			total := 0
//			for _, n := range nums {
//				total += n
//			}
//			return total, nil
//		},
//	))
//
//	server := jsonrpc2.NewServer(mux)
//	if err := server.ListenAndServe(ctx, "tcp::9090"); err != nil {
//		log.Err(err).Msg("server stopped")
//	}
//
// # Client
//
//	client, err := jsonrpc2.Dial(ctx, "tcp:localhost:9090")
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	resp, err := client.Call(ctx, "sum", jval.NewArray(jval.NewNumber(2), jval.NewNumber(3)))
//	if err != nil {
//		return err
//	}
//
//	if result, ok := resp.Result(); ok {
//		total, err := jval.IntReader().ReadValue(result)
//		// ...
//	}
//
// See: https://www.jsonrpc.org/specification
package jsonrpc2

// ProtocolVersion is the only protocol version this package speaks. Every
// encoded message carries it and every decoded message must carry it.
const ProtocolVersion = "2.0"
