package jsonrpc2

import "maps"

// attrs is the copy-on-write attribute bag carried by [Request] and
// [Response]. Attributes are local metadata (routing hints, trace ids,
// transport details) and are never encoded onto the wire.
//
// A nil map is the empty bag; mutating operations always return a fresh map
// so messages stay immutable.
type attrs map[string]any

func (a attrs) get(key string) (any, bool) {
	v, ok := a[key]
	return v, ok
}

func (a attrs) with(key string, value any) attrs {
	next := make(attrs, len(a)+1)
	maps.Copy(next, a)
	next[key] = value

	return next
}

func (a attrs) without(key string) attrs {
	if _, ok := a[key]; !ok {
		return a
	}

	if len(a) == 1 {
		return nil
	}

	next := make(attrs, len(a)-1)

	for k, v := range a {
		if k != key {
			next[k] = v
		}
	}

	return next
}
