// Package jval models JSON documents as immutable algebraic values.
//
// A document is a [Value]: one of [Null], [Bool], [Number], [String],
// [Array] or [Object]. Values never change after construction; every
// update operation ([Object.With], [Object.Merge], [Array.Append], ...)
// returns a new value and leaves the receiver untouched, so values may be
// shared freely between goroutines.
//
// Numbers carry arbitrary-precision decimals and compare by numeric value:
//
//	a := jval.NewNumber(123)
//	b, _ := jval.NewNumberFromString("123.0")
//	fmt.Println(a.Equal(b)) // Output: true
//
// Objects preserve field insertion order, which makes rendering
// deterministic. Parsing and rendering are exposed both as document-level
// helpers ([Parse], [Render]) and as a streaming event contract ([Parser],
// [Generator]) for callers that work with token streams directly.
//
// The package also provides a typed conversion layer ([Reader], [Writer])
// for moving between JSON values and Go values without reflection.
package jval
