package jsonrpc2

import (
	"context"
	"errors"

	"github.com/wireval/jsonrpc2/jval"
)

// ErrEmptyBatch is returned by [BatchBuilder.Call] when nothing was added.
// Empty batches are invalid on the wire, so they are rejected locally.
var ErrEmptyBatch = errors.New("batch builder: empty batch")

// BatchBuilder assembles a mixed batch of calls and notifications for a
// [Client]. Entries added with [BatchBuilder.Add] get ids from the client's
// [IDSource]; entries added with [BatchBuilder.Notify] get none. Setters
// chain and record the first failure, which surfaces from
// [BatchBuilder.Call].
//
// A builder is single-owner and not safe for concurrent use.
//
// Example:
//
//	batch := client.NewBatch(3).
//		Add("state.get", jval.NewArray(jval.String("cpu"))).
//		Add("state.get", jval.NewArray(jval.String("mem"))).
//		Notify("audit.touch", nil)
//
//	resps, err := batch.Call(ctx)
type BatchBuilder struct {
	parent *Client
	err    error
	batch  Batch[*Request]
}

func (b *BatchBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *BatchBuilder) add(method string, params jval.Value, withID bool) *BatchBuilder {
	if b.err != nil {
		return b
	}

	req, err := b.parent.newRequest(method, params, withID)
	if err != nil {
		b.fail(err)
		return b
	}

	b.batch.Add(req)

	return b
}

// Add appends a call for the given method, assigning it the next id from
// the client's [IDSource]. Params may be a [jval.Object], a [jval.Array],
// or nil to omit them.
func (b *BatchBuilder) Add(method string, params jval.Value) *BatchBuilder {
	return b.add(method, params, true)
}

// Notify appends a notification for the given method. It gets no id and no
// entry in the batch response.
func (b *BatchBuilder) Notify(method string, params jval.Value) *BatchBuilder {
	return b.add(method, params, false)
}

// Len returns the number of entries added so far.
func (b *BatchBuilder) Len() int {
	return len(b.batch)
}

// Requests returns the assembled batch, for correlating its entries against
// the responses with [BatchCorrelate].
func (b *BatchBuilder) Requests() Batch[*Request] {
	return b.batch
}

// Call sends the batch over the parent client and returns the batch
// response. It fails with any error recorded while adding entries, or with
// [ErrEmptyBatch] when nothing was added.
//
// Responses may arrive in any order; match them to requests with
// [BatchCorrelate]. A batch holding only notifications is sent without
// waiting for a reply and yields a nil response batch.
func (b *BatchBuilder) Call(ctx context.Context) (Batch[*Response], error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.batch) == 0 {
		return nil, ErrEmptyBatch
	}

	notifyOnly := true

	for _, req := range b.batch {
		if !req.IsNotification() {
			notifyOnly = false
			break
		}
	}

	if notifyOnly {
		return nil, b.parent.notifyBatch(ctx, b.batch)
	}

	return b.parent.callBatch(ctx, b.batch)
}

// Reset clears the builder for reuse, dropping all entries and any recorded
// error.
func (b *BatchBuilder) Reset() {
	b.batch = b.batch[:0]
	b.err = nil
}
