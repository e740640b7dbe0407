package jsonrpc2

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource yields request ids for [Client] and [BatchBuilder].
// Implementations must be safe for concurrent use.
type IDSource interface {
	NextID() ID
}

// CounterSource yields sequential int64 ids starting at 1. The zero value
// is ready to use and is the default source for clients created by [Dial].
type CounterSource struct {
	n atomic.Int64
}

// NewCounterSource creates a new [*CounterSource].
func NewCounterSource() *CounterSource {
	return &CounterSource{}
}

// NextID implements [IDSource].
func (s *CounterSource) NextID() ID {
	return NewID(s.n.Add(1))
}

// UUIDSource yields random version 4 UUID string ids. Prefer it over
// [CounterSource] when requests from many short-lived clients are
// multiplexed onto shared infrastructure and sequential ids would repeat.
type UUIDSource struct{}

// NewUUIDSource creates a new [UUIDSource].
func NewUUIDSource() UUIDSource {
	return UUIDSource{}
}

// NextID implements [IDSource].
func (UUIDSource) NextID() ID {
	return NewID(uuid.NewString())
}
