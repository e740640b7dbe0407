package jval

import (
	"errors"
	"fmt"
)

var (
	// ErrNumberSyntax is returned by [NewNumberFromString] for text that is
	// not a decimal number.
	ErrNumberSyntax = errors.New("invalid number syntax")

	// ErrIndexRange is returned by [Array.At] for an index outside the
	// array.
	ErrIndexRange = errors.New("array index out of range")

	// ErrFieldMissing is returned by [Object.At] when the object has no
	// field of the requested name.
	ErrFieldMissing = errors.New("object field missing")

	// ErrGeneratorState is returned by [Generator] writes that are not
	// valid in the current document position.
	ErrGeneratorState = errors.New("write not permitted by generator state")

	// ErrTrailingData is returned by [Parse] when input remains after the
	// document.
	ErrTrailingData = errors.New("unexpected data after top-level value")
)

// KindError reports a value of the wrong [Kind], such as a number where a
// string was required.
type KindError struct {
	Want Kind
	Got  Kind
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s value expected, found %s", e.Want, e.Got)
}

// RangeError reports an exact numeric conversion whose target type cannot
// represent the value, either because the value has a fractional component
// or because it overflows the target.
type RangeError struct {
	Target string
	Value  Number
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("number %s does not fit in %s", e.Value.JSON(), e.Target)
}

// SyntaxError reports malformed JSON text. Offset is the 0-based byte
// position of the offending input; Line and Column are 1-based.
type SyntaxError struct {
	msg    string
	Offset int64
	Line   int64
	Column int64
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid JSON at offset=%d (line=%d, column=%d): %s", e.Offset, e.Line, e.Column, e.msg)
}
