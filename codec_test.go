package jsonrpc2

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wireval/jsonrpc2/jval"
)

func TestEncodeRequest_MemberOrder(t *testing.T) {
	t.Parallel()

	req, err := NewRequestWithParams(int64(1), "sum", jval.NewArray(jval.NewNumber(1), jval.NewNumber(2)))
	require.NoError(t, err)

	// Member order is part of the wire format, so compare raw strings.
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"method":"sum","params":[1,2]}`, EncodeRequest(req).JSON())

	strID, err := NewRequestWithParams("abc", "update", jval.NewObject(jval.Field("key", jval.String("v"))))
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc":"2.0","id":"abc","method":"update","params":{"key":"v"}}`, EncodeRequest(strID).JSON())

	notif := NewNotification("heartbeat")
	assert.Equal(t, `{"jsonrpc":"2.0","method":"heartbeat"}`, EncodeRequest(notif).JSON(),
		"Notifications omit the id member entirely")

	bare := NewRequest(int64(9), "status")
	assert.Equal(t, `{"jsonrpc":"2.0","id":9,"method":"status"}`, EncodeRequest(bare).JSON(),
		"Requests without params omit the params member")
}

func TestDecodeRequest_Valid(t *testing.T) {
	t.Parallel()

	parse := func(s string) jval.Value {
		v, err := jval.ParseBytes([]byte(s))
		require.NoError(t, err)

		return v
	}

	req, err := DecodeRequest(parse(`{"jsonrpc":"2.0","method":"sum","params":[1,2],"id":1}`))
	require.NoError(t, err)
	assert.Equal(t, "sum", req.Method())
	assert.False(t, req.IsNotification())

	id := req.RawID()
	assert.Equal(t, int64(1), id.Value())

	params, ok := req.Params()
	require.True(t, ok)
	assert.Equal(t, jval.KindArray, params.Kind())

	// String id.
	req, err = DecodeRequest(parse(`{"jsonrpc":"2.0","id":"r-7","method":"get"}`))
	require.NoError(t, err)
	id = req.RawID()
	assert.Equal(t, "r-7", id.Value())

	// Explicit null id is allowed, though discouraged.
	req, err = DecodeRequest(parse(`{"jsonrpc":"2.0","id":null,"method":"get"}`))
	require.NoError(t, err)
	id = req.RawID()
	assert.True(t, id.IsNull())
	assert.False(t, req.IsNotification(), "A null id is still an id")

	// No id at all makes a notification.
	req, err = DecodeRequest(parse(`{"jsonrpc":"2.0","method":"notify","params":{"a":1}}`))
	require.NoError(t, err)
	assert.True(t, req.IsNotification())

	// Unknown members are ignored.
	req, err = DecodeRequest(parse(`{"jsonrpc":"2.0","method":"m","id":3,"extra":true,"meta":{"x":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "m", req.Method())
}

func TestDecodeRequest_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantData string
	}{
		{"not an object", `[1,2,3]`, "object value expected"},
		{"scalar", `42`, "object value expected"},
		{"missing jsonrpc", `{"method":"m","id":1}`, "missing jsonrpc member"},
		{"jsonrpc wrong type", `{"jsonrpc":2.0,"method":"m","id":1}`, "string value expected for jsonrpc"},
		{"jsonrpc wrong version", `{"jsonrpc":"1.0","method":"m","id":1}`, `unsupported protocol version "1.0"`},
		{"fractional id", `{"jsonrpc":"2.0","id":1.5,"method":"m"}`, "integer value expected for id"},
		{"boolean id", `{"jsonrpc":"2.0","id":true,"method":"m"}`, "string or integer value expected for id"},
		{"array id", `{"jsonrpc":"2.0","id":[1],"method":"m"}`, "string or integer value expected for id"},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, "missing method member"},
		{"method wrong type", `{"jsonrpc":"2.0","id":1,"method":42}`, "string value expected for method"},
		{"scalar params", `{"jsonrpc":"2.0","id":1,"method":"m","params":1}`, "array or object value expected for params"},
		{"string params", `{"jsonrpc":"2.0","id":1,"method":"m","params":"x"}`, "array or object value expected for params"},
		{"null params", `{"jsonrpc":"2.0","id":1,"method":"m","params":null}`, "array or object value expected for params"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v, err := jval.ParseBytes([]byte(tc.input))
			require.NoError(t, err)

			_, err = DecodeRequest(v)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest, "Failures must carry the Invalid Request code")

			var rpcErr Error

			require.ErrorAs(t, err, &rpcErr)

			data, ok := rpcErr.Data()
			require.True(t, ok, "The offending detail must be attached as error data")
			assert.Equal(t, jval.String(tc.wantData), data)
		})
	}
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	req, err := ParseRequest([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, "ping", req.Method())

	// Malformed JSON reports Parse error with the input position as data.
	_, err = ParseRequest([]byte(`{"jsonrpc":`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var rpcErr Error

	require.ErrorAs(t, err, &rpcErr)

	data, ok := rpcErr.Data()
	require.True(t, ok)

	detail, ok := data.(jval.String)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(detail), "Invalid JSON at offset="), "got %q", string(detail))

	// Trailing data after a complete document is also a parse failure.
	_, err = ParseRequest([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"} trailing`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	// Well-formed JSON that is not a valid request reports Invalid Request.
	_, err = ParseRequest([]byte(`{"jsonrpc":"2.0","id":1}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEncodeResponse_MemberOrder(t *testing.T) {
	t.Parallel()

	res := NewResponseWithResult(int64(1), jval.String("ok"))
	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":"ok"}`, EncodeResponse(res).JSON())

	res = NewResponseWithResult(int64(2), nil)
	assert.Equal(t, `{"jsonrpc":"2.0","id":2,"result":null}`, EncodeResponse(res).JSON(),
		"A nil result encodes as JSON null")

	res = NewResponseWithError("r", ErrMethodNotFound)
	assert.Equal(t, `{"jsonrpc":"2.0","id":"r","error":{"code":-32601,"message":"Method not found"}}`, EncodeResponse(res).JSON())

	res = NewResponseError(ErrParse.WithData(jval.String("bad input")))
	assert.Equal(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error","data":"bad input"}}`, EncodeResponse(res).JSON(),
		"Responses without a known id carry a null id")
}

func TestDecodeResponse_Valid(t *testing.T) {
	t.Parallel()

	res, err := ParseResponse([]byte(`{"jsonrpc":"2.0","id":1,"result":[1,2,3]}`))
	require.NoError(t, err)
	assert.True(t, res.IsResult())
	assert.False(t, res.IsError())

	result, ok := res.Result()
	require.True(t, ok)
	assert.Equal(t, jval.KindArray, result.Kind())

	// Null result is still a result.
	res, err = ParseResponse([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	require.NoError(t, err)
	assert.True(t, res.IsResult())

	// Error response.
	res, err = ParseResponse([]byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`))
	require.NoError(t, err)
	assert.True(t, res.IsError())

	rpcErr, ok := res.Err()
	require.True(t, ok)
	assert.True(t, rpcErr.IsParseError())

	id := res.ID()
	assert.True(t, id.IsNull())
}

func TestDecodeResponse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"not an object", `[1]`, "object value expected"},
		{"missing jsonrpc", `{"id":1,"result":true}`, "missing jsonrpc member"},
		{"missing id", `{"jsonrpc":"2.0","result":true}`, "missing id member"},
		{"fractional id", `{"jsonrpc":"2.0","id":0.5,"result":true}`, "integer value expected for id"},
		{"result and error", `{"jsonrpc":"2.0","id":1,"result":true,"error":{"code":1,"message":"m"}}`, "result and error are exclusive"},
		{"neither result nor error", `{"jsonrpc":"2.0","id":1}`, "missing result or error member"},
		{"error not object", `{"jsonrpc":"2.0","id":1,"error":"boom"}`, "object value expected for error"},
		{"error missing code", `{"jsonrpc":"2.0","id":1,"error":{"message":"m"}}`, "missing code member in error"},
		{"error code not number", `{"jsonrpc":"2.0","id":1,"error":{"code":"x","message":"m"}}`, "number value expected for error code"},
		{"error fractional code", `{"jsonrpc":"2.0","id":1,"error":{"code":1.5,"message":"m"}}`, "integer value expected for error code"},
		{"error missing message", `{"jsonrpc":"2.0","id":1,"error":{"code":1}}`, "missing message member in error"},
		{"error message not string", `{"jsonrpc":"2.0","id":1,"error":{"code":1,"message":2}}`, "string value expected for error message"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseResponse([]byte(tc.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecoding, "Response defects are local errors, not wire errors")
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestEncodeError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"code":-32603,"message":"Internal error"}`, EncodeError(ErrInternal).JSON())

	withData := NewErrorWithData(-32000, "Server overloaded", jval.NewObject(jval.Field("retryAfter", jval.NewNumber(30))))
	assert.Equal(t, `{"code":-32000,"message":"Server overloaded","data":{"retryAfter":30}}`, EncodeError(withData).JSON())
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	v, err := jval.ParseBytes([]byte(`{"code":-32601,"message":"Method not found","data":["a"]}`))
	require.NoError(t, err)

	rpcErr, err := DecodeError(v)
	require.NoError(t, err)
	assert.Equal(t, int64(-32601), rpcErr.Code())
	assert.Equal(t, "Method not found", rpcErr.Message())
	assert.True(t, rpcErr.IsMethodNotFound())

	data, ok := rpcErr.Data()
	require.True(t, ok)
	assert.Equal(t, jval.KindArray, data.Kind())

	// Unknown members inside the error object are ignored.
	v, err = jval.ParseBytes([]byte(`{"code":1,"message":"m","hint":"x"}`))
	require.NoError(t, err)

	rpcErr, err = DecodeError(v)
	require.NoError(t, err)
	_, ok = rpcErr.Data()
	assert.False(t, ok)
}

func TestEncodeRequestBatch(t *testing.T) {
	t.Parallel()

	batch := NewBatch[*Request](2)
	batch.Add(NewRequest(int64(1), "a"), NewNotification("b"))

	assert.Equal(t, `[{"jsonrpc":"2.0","id":1,"method":"a"},{"jsonrpc":"2.0","method":"b"}]`, EncodeRequestBatch(batch).JSON())

	empty := NewBatch[*Request](0)
	assert.Equal(t, `[]`, EncodeRequestBatch(empty).JSON())
}

func TestDecodeResponseBatch(t *testing.T) {
	t.Parallel()

	v, err := jval.ParseBytes([]byte(`[
		{"jsonrpc":"2.0","id":1,"result":"one"},
		{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"Method not found"}}
	]`))
	require.NoError(t, err)

	batch, err := DecodeResponseBatch(v)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.True(t, batch[0].IsResult())
	assert.True(t, batch[1].IsError())

	// Not an array.
	v, err = jval.ParseBytes([]byte(`{"jsonrpc":"2.0","id":1,"result":"one"}`))
	require.NoError(t, err)

	_, err = DecodeResponseBatch(v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecoding)
	assert.Contains(t, err.Error(), "array value expected")

	// A bad entry reports its index.
	v, err = jval.ParseBytes([]byte(`[{"jsonrpc":"2.0","id":1,"result":"one"},{"jsonrpc":"2.0","id":2}]`))
	require.NoError(t, err)

	_, err = DecodeResponseBatch(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch index 1")
}

func TestDecodeParams(t *testing.T) {
	t.Parallel()

	req, err := NewRequestWithParams(int64(1), "sum", jval.NewArray(jval.NewNumber(40), jval.NewNumber(2)))
	require.NoError(t, err)

	nums, err := DecodeParams(req, jval.SliceReader(jval.Int64Reader()))
	require.NoError(t, err)
	assert.Equal(t, []int64{40, 2}, nums)

	// A reader mismatch reports Invalid params with the reader's message.
	_, err = DecodeParams(req, jval.ObjectReader())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParams)

	var rpcErr Error

	require.ErrorAs(t, err, &rpcErr)
	_, ok := rpcErr.Data()
	assert.True(t, ok, "Reader failure text should be attached as data")

	// Absent params read as null, so optional readers can tolerate them.
	bare := NewRequest(int64(2), "noargs")

	maybe, err := DecodeParams(bare, jval.MaybeReader(jval.ArrayReader()))
	require.NoError(t, err)
	assert.Nil(t, maybe)

	_, err = DecodeParams(bare, jval.ArrayReader())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestCodecReadersWriters(t *testing.T) {
	t.Parallel()

	req, err := NewRequestWithParams(int64(7), "echo", jval.NewArray(jval.String("x")))
	require.NoError(t, err)

	v := RequestWriter().WriteValue(req)

	decoded, err := RequestReader().ReadValue(v)
	require.NoError(t, err)
	assert.Equal(t, "echo", decoded.Method())

	res := NewResponseWithResult(int64(7), jval.String("x"))
	rv := ResponseWriter().WriteValue(res)

	decodedRes, err := ResponseReader().ReadValue(rv)
	require.NoError(t, err)
	assert.True(t, decodedRes.IsResult())

	ev := ErrorWriter().WriteValue(ErrServerOverloaded)

	decodedErr, err := ErrorReader().ReadValue(ev)
	require.NoError(t, err)
	assert.True(t, decodedErr.IsServerError())

	// Writers compose with jval combinators for whole batches.
	batch := []*Request{NewRequest(int64(1), "a"), NewRequest(int64(2), "b")}
	arr := jval.SliceWriter(RequestWriter()).WriteValue(batch)
	assert.Equal(t, `[{"jsonrpc":"2.0","id":1,"method":"a"},{"jsonrpc":"2.0","id":2,"method":"b"}]`, arr.JSON())

	roundTripped, err := jval.SliceReader(RequestReader()).ReadValue(arr)
	require.NoError(t, err)
	require.Len(t, roundTripped, 2)
	assert.Equal(t, "b", roundTripped[1].Method())
}

func TestFromCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrParse, FromCode(-32700, ""))
	assert.Equal(t, ErrInvalidRequest, FromCode(-32600, ""))
	assert.Equal(t, ErrMethodNotFound, FromCode(-32601, ""))
	assert.Equal(t, ErrInvalidParams, FromCode(-32602, ""))
	assert.Equal(t, ErrInternal, FromCode(-32603, ""))

	custom := FromCode(-32700, "tokenizer gave up")
	assert.Equal(t, int64(-32700), custom.Code())
	assert.Equal(t, "tokenizer gave up", custom.Message())
	assert.True(t, errors.Is(custom, ErrParse), "Reserved errors compare by code")

	server := FromCode(-32050, "")
	assert.Equal(t, "Server error", server.Message(), "Server-range codes default to the generic message")
	assert.True(t, server.IsServerError())

	app := FromCode(1234, "")
	assert.Equal(t, "", app.Message(), "Codes outside all reserved ranges keep an empty message")
	assert.False(t, app.IsServerError())
}
