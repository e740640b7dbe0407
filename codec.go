package jsonrpc2

import (
	"errors"
	"fmt"

	"github.com/wireval/jsonrpc2/jval"
)

// Wire member names shared by the encode and decode paths.
const (
	memberVersion = "jsonrpc"
	memberID      = "id"
	memberMethod  = "method"
	memberParams  = "params"
	memberResult  = "result"
	memberError   = "error"
	memberCode    = "code"
	memberMessage = "message"
	memberData    = "data"
)

// ErrWrongProtocolVersion is returned for messages whose jsonrpc member is
// present but not [ProtocolVersion].
var ErrWrongProtocolVersion = errors.New("unsupported protocol version")

// versionOf extracts and validates the jsonrpc member of a decoded message
// object. The member is mandatory on every message.
func versionOf(obj jval.Object) (string, error) {
	v, found := obj.Get(memberVersion)
	if !found {
		return "", errors.New("missing jsonrpc member")
	}

	s, ok := v.(jval.String)
	if !ok {
		return "", errors.New("string value expected for jsonrpc")
	}

	if string(s) != ProtocolVersion {
		return "", fmt.Errorf("%w %q", ErrWrongProtocolVersion, string(s))
	}

	return string(s), nil
}

// encodeID renders id as its wire value. Zero and null IDs both encode as
// JSON null.
func encodeID(id ID) jval.Value {
	switch v := id.value.(type) {
	case string:
		return jval.String(v)
	case int64:
		return jval.NewNumber(v)
	default:
		return jval.Null{}
	}
}

// decodeID converts a wire value into an [ID]. Strings, integral numbers
// and null are accepted; everything else, including fractional numbers, is
// an error.
func decodeID(v jval.Value) (ID, error) {
	switch t := v.(type) {
	case jval.Null:
		return NewNullID(), nil
	case jval.String:
		return NewID(string(t)), nil
	case jval.Number:
		i, err := t.Int64Exact()
		if err != nil {
			return ID{}, errors.New("integer value expected for id")
		}

		return NewID(i), nil
	default:
		return ID{}, errors.New("string or integer value expected for id")
	}
}

// EncodeRequest converts r into its wire value. Members are emitted in the
// canonical order jsonrpc, id, method, params. Notifications omit id and
// requests without parameters omit params.
func EncodeRequest(r *Request) jval.Value {
	members := make([]jval.Member, 0, 4)
	members = append(members, jval.Field(memberVersion, jval.String(r.Version())))

	if !r.id.IsZero() {
		members = append(members, jval.Field(memberID, encodeID(r.id)))
	}

	members = append(members, jval.Field(memberMethod, jval.String(r.method)))

	if r.params != nil {
		members = append(members, jval.Field(memberParams, r.params))
	}

	return jval.NewObject(members...)
}

// DecodeRequest validates v as a jsonrpc2 request object and converts it
// into a [*Request].
//
// Validation failures are reported as [ErrInvalidRequest] with the
// offending detail attached as error data, ready to be sent back to the
// peer. An absent id member makes the request a notification; members
// beyond the four the protocol defines are ignored.
func DecodeRequest(v jval.Value) (*Request, error) {
	obj, ok := v.(jval.Object)
	if !ok {
		return nil, ErrInvalidRequest.WithData(jval.String("object value expected"))
	}

	version, err := versionOf(obj)
	if err != nil {
		return nil, ErrInvalidRequest.WithData(jval.String(err.Error()))
	}

	req := Request{version: version}

	if idv, found := obj.Get(memberID); found {
		id, err := decodeID(idv)
		if err != nil {
			return nil, ErrInvalidRequest.WithData(jval.String(err.Error()))
		}

		req.id = id
	}

	mv, found := obj.Get(memberMethod)
	if !found {
		return nil, ErrInvalidRequest.WithData(jval.String("missing method member"))
	}

	method, ok := mv.(jval.String)
	if !ok {
		return nil, ErrInvalidRequest.WithData(jval.String("string value expected for method"))
	}

	req.method = string(method)

	if pv, found := obj.Get(memberParams); found {
		if !structured(pv) {
			return nil, ErrInvalidRequest.WithData(jval.String("array or object value expected for params"))
		}

		req.params = pv
	}

	return &req, nil
}

// ParseRequest parses data as a single jsonrpc2 request.
//
// Malformed JSON is reported as [ErrParse] carrying the input position as
// error data; well-formed JSON that is not a valid request is reported as
// [ErrInvalidRequest] per [DecodeRequest].
func ParseRequest(data []byte) (*Request, error) {
	v, err := jval.ParseBytes(data)
	if err != nil {
		return nil, ErrParse.WithData(jval.String(syntaxDetail(err)))
	}

	return DecodeRequest(v)
}

// syntaxDetail renders a parse failure as a short location description
// suitable as wire error data.
func syntaxDetail(err error) string {
	var se *jval.SyntaxError
	if errors.As(err, &se) {
		return fmt.Sprintf("Invalid JSON at offset=%d (line=%d, column=%d)", se.Offset, se.Line, se.Column)
	}

	return err.Error()
}

// EncodeResponse converts r into its wire value. Members are emitted in
// the canonical order jsonrpc, id, then result or error. A response that
// carries neither encodes a null result.
func EncodeResponse(r *Response) jval.Value {
	members := make([]jval.Member, 0, 3)
	members = append(members,
		jval.Field(memberVersion, jval.String(r.Version())),
		jval.Field(memberID, encodeID(r.id)),
	)

	if !r.err.IsZero() {
		members = append(members, jval.Field(memberError, EncodeError(r.err)))

		return jval.NewObject(members...)
	}

	result := r.result
	if result == nil {
		result = jval.Null{}
	}

	members = append(members, jval.Field(memberResult, result))

	return jval.NewObject(members...)
}

// DecodeResponse validates v as a jsonrpc2 response object and converts it
// into a [*Response].
//
// Unlike [DecodeRequest], failures here are not wire errors: an invalid
// response is a defect of the peer reported to the local caller, so every
// failure wraps [ErrDecoding]. The id member is mandatory, and exactly one
// of result and error must be present.
func DecodeResponse(v jval.Value) (*Response, error) {
	obj, ok := v.(jval.Object)
	if !ok {
		return nil, fmt.Errorf("%w: object value expected", ErrDecoding)
	}

	version, err := versionOf(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	resp := Response{version: version}

	idv, found := obj.Get(memberID)
	if !found {
		return nil, fmt.Errorf("%w: missing id member", ErrDecoding)
	}

	id, err := decodeID(idv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	resp.id = id

	rv, hasResult := obj.Get(memberResult)
	ev, hasError := obj.Get(memberError)

	switch {
	case hasResult && hasError:
		return nil, fmt.Errorf("%w: result and error are exclusive", ErrDecoding)
	case hasError:
		rpcErr, err := DecodeError(ev)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
		}

		resp.err = rpcErr
	case hasResult:
		resp.result = rv
	default:
		return nil, fmt.Errorf("%w: missing result or error member", ErrDecoding)
	}

	return &resp, nil
}

// ParseResponse parses data as a single jsonrpc2 response. All failures
// wrap [ErrDecoding].
func ParseResponse(data []byte) (*Response, error) {
	v, err := jval.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	return DecodeResponse(v)
}

// EncodeError converts e into its wire value: code, message, and data when
// present.
func EncodeError(e Error) jval.Value {
	members := make([]jval.Member, 0, 3)
	members = append(members,
		jval.Field(memberCode, jval.NewNumber(e.code)),
		jval.Field(memberMessage, jval.String(e.message)),
	)

	if e.data != nil {
		members = append(members, jval.Field(memberData, e.data))
	}

	return jval.NewObject(members...)
}

// DecodeError converts a wire error object into an [Error]. The code must
// be an integral number and the message a string; data, when present, is
// kept verbatim.
func DecodeError(v jval.Value) (Error, error) {
	obj, ok := v.(jval.Object)
	if !ok {
		return Error{}, errors.New("object value expected for error")
	}

	cv, found := obj.Get(memberCode)
	if !found {
		return Error{}, errors.New("missing code member in error")
	}

	num, ok := cv.(jval.Number)
	if !ok {
		return Error{}, errors.New("number value expected for error code")
	}

	code, err := num.Int64Exact()
	if err != nil {
		return Error{}, errors.New("integer value expected for error code")
	}

	mv, found := obj.Get(memberMessage)
	if !found {
		return Error{}, errors.New("missing message member in error")
	}

	msg, ok := mv.(jval.String)
	if !ok {
		return Error{}, errors.New("string value expected for error message")
	}

	e := NewError(code, string(msg))

	if data, found := obj.Get(memberData); found {
		e = e.WithData(data)
	}

	return e, nil
}

// EncodeRequestBatch converts a batch of requests into a wire array.
func EncodeRequestBatch(batch Batch[*Request]) jval.Value {
	items := make([]jval.Value, 0, len(batch))

	for _, r := range batch {
		items = append(items, EncodeRequest(r))
	}

	return jval.NewArray(items...)
}

// DecodeResponseBatch validates v as an array of response objects. All
// failures wrap [ErrDecoding].
func DecodeResponseBatch(v jval.Value) (Batch[*Response], error) {
	arr, ok := v.(jval.Array)
	if !ok {
		return nil, fmt.Errorf("%w: array value expected", ErrDecoding)
	}

	batch := NewBatch[*Response](arr.Len())

	for i, item := range arr.Items() {
		resp, err := DecodeResponse(item)
		if err != nil {
			return nil, fmt.Errorf("batch index %d: %w", i, err)
		}

		batch.Add(resp)
	}

	return batch, nil
}

// RequestReader returns a [jval.Reader] decoding requests, for composing
// wire messages with the jval conversion combinators.
func RequestReader() jval.Reader[*Request] {
	return jval.ReaderFunc[*Request](DecodeRequest)
}

// RequestWriter returns a [jval.Writer] encoding requests.
func RequestWriter() jval.Writer[*Request] {
	return jval.WriterFunc[*Request](EncodeRequest)
}

// ResponseReader returns a [jval.Reader] decoding responses.
func ResponseReader() jval.Reader[*Response] {
	return jval.ReaderFunc[*Response](DecodeResponse)
}

// ResponseWriter returns a [jval.Writer] encoding responses.
func ResponseWriter() jval.Writer[*Response] {
	return jval.WriterFunc[*Response](EncodeResponse)
}

// ErrorReader returns a [jval.Reader] decoding wire error objects.
func ErrorReader() jval.Reader[Error] {
	return jval.ReaderFunc[Error](DecodeError)
}

// ErrorWriter returns a [jval.Writer] encoding wire error objects.
func ErrorWriter() jval.Writer[Error] {
	return jval.WriterFunc[Error](EncodeError)
}

// DecodeParams reads the params of r through reader. Absent params read as
// [jval.Null]; handlers that tolerate absence should wrap their reader
// with [jval.MaybeReader] or [jval.OrElseReader]. A failed read is
// reported as [ErrInvalidParams] with the reader's error text attached as
// data.
func DecodeParams[T any](r *Request, reader jval.Reader[T]) (T, error) {
	params, ok := r.Params()
	if !ok {
		params = jval.Null{}
	}

	t, err := reader.ReadValue(params)
	if err != nil {
		var zero T

		return zero, ErrInvalidParams.WithData(jval.String(err.Error()))
	}

	return t, nil
}
