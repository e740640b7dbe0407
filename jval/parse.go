package jval

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// Parse reads exactly one JSON document from r and returns its value.
//
// Malformed input fails with a [*SyntaxError]; input remaining after the
// document fails with an error wrapping [ErrTrailingData]. The reader is
// left positioned wherever the tokenizer stopped; callers streaming many
// documents should use a [Parser] directly.
func Parse(r io.Reader) (Value, error) {
	p := NewParser(r)

	v, err := p.ReadValue()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, p.posError("unexpected end of input")
		}

		return nil, err
	}

	// Anything after the document is an error, well-formed or not.
	if _, err := p.Next(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}

		return nil, ErrTrailingData
	}

	return v, nil
}

// ParseBytes parses b as one JSON document.
func ParseBytes(b []byte) (Value, error) {
	return Parse(bytes.NewReader(b))
}

// ParseString parses s as one JSON document.
func ParseString(s string) (Value, error) {
	return Parse(strings.NewReader(s))
}
