package jsonrpc2

import (
	"context"
)

// Binder configures a [*StreamServer] before it starts serving. It is
// called once per new connection or upgraded request, giving the
// application a hook to set callbacks, limits, or per-connection state.
//
// The cancel function stops the bound [*StreamServer].
type Binder interface {
	Bind(context.Context, *StreamServer, context.CancelCauseFunc)
}

// NewFuncBinder returns a [Binder] that runs the given function on bind.
//
//nolint:ireturn // Helper function.
func NewFuncBinder(binder func(context.Context, *StreamServer, context.CancelCauseFunc)) Binder {
	return &funcBinder{funcBind: binder}
}

// funcBinder wraps a function into a [Binder].
type funcBinder struct {
	funcBind func(context.Context, *StreamServer, context.CancelCauseFunc)
}

// Bind implements [Binder].
func (fh *funcBinder) Bind(ctx context.Context, ss *StreamServer, stop context.CancelCauseFunc) {
	fh.funcBind(ctx, ss, stop)
}
