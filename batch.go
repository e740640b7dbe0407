package jsonrpc2

import (
	"slices"
)

// identified provides uniform access to the message id inside a [Batch].
type identified interface {
	msgID() ID
}

// Message constrains the types a [Batch] may hold.
type Message interface {
	*Request | *Response
	identified
}

// Batch represents a collection of jsonrpc2 messages ([*Request] or
// [*Response]) sent or received together.
//
// See: https://www.jsonrpc.org/specification#batch
type Batch[M Message] []M

// NewBatch creates an empty [Batch] with capacity for size messages.
//
// Example:
//
//	batch := jsonrpc2.NewBatch[*jsonrpc2.Request](10)
func NewBatch[M Message](size int) Batch[M] {
	return make(Batch[M], 0, size)
}

// BatchCorrelate matches requests and responses from two batches by id.
//
// correlated is called once per pairing:
//   - (req, res) for a request with a matching response.
//   - (req, nil) for a request with no matching response. Notifications
//     are always reported this way.
//   - (nil, res) for a response matching no request.
//
// Returning false from correlated stops the correlation immediately.
// Duplicate ids within a batch pair with their first match only.
func BatchCorrelate(requests Batch[*Request], responses Batch[*Response], correlated func(req *Request, res *Response) bool) {
	matched := make([]bool, len(responses))

	for _, req := range requests {
		if req.IsNotification() {
			if !correlated(req, nil) {
				return
			}

			continue
		}

		i := responses.Index(req.msgID())
		if i < 0 {
			if !correlated(req, nil) {
				return
			}

			continue
		}

		matched[i] = true

		if !correlated(req, responses[i]) {
			return
		}
	}

	for i, res := range responses {
		if matched[i] {
			continue
		}

		if !correlated(nil, res) {
			return
		}
	}
}

// Add appends messages to the batch.
func (b *Batch[M]) Add(v ...M) {
	*b = append(*b, v...)
}

// Grow increases the batch's capacity, if necessary, to guarantee space
// for another n messages. See [slices.Grow].
func (b *Batch[M]) Grow(n int) {
	*b = slices.Grow(*b, n)
}

// Contains reports whether the batch holds a message with the given id.
// Zero and null ids are not searchable and never match.
func (b *Batch[M]) Contains(id ID) bool {
	return b.Index(id) >= 0
}

// Index returns the position of the first message matching id, or -1 when
// there is no match or id is zero or null.
func (b *Batch[M]) Index(id ID) int {
	if id.IsZero() || id.IsNull() {
		return -1
	}

	for i, v := range *b {
		if id.Equal(v.msgID()) {
			return i
		}
	}

	return -1
}

// Get retrieves the first message matching id. It returns the zero value
// of the message type and false when there is no match.
func (b *Batch[M]) Get(id ID) (M, bool) {
	i := b.Index(id)
	if i < 0 {
		var zero M

		return zero, false
	}

	return (*b)[i], true
}

// Delete removes and returns the first message matching id. The remaining
// messages keep their order.
func (b *Batch[M]) Delete(id ID) (M, bool) {
	i := b.Index(id)
	if i < 0 {
		var zero M

		return zero, false
	}

	deleted := (*b)[i]
	*b = slices.Delete(*b, i, i+1)

	return deleted, true
}
