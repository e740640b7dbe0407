package jval

import (
	"bufio"
	"fmt"
	"io"
)

type genFrame struct {
	items     int
	inObject  bool
	awaitName bool
}

// Generator writes a JSON token stream onto an [io.Writer], validating
// document structure as it goes.
//
// The top level accepts only containers: documents on a stream are objects
// or arrays, never bare scalars, and successive documents are separated by
// a newline. Within a document, a field name is required before every
// object member and forbidden anywhere else. Writes that violate the
// structure fail with an error wrapping [ErrGeneratorState] and leave the
// generator usable for valid continuations.
//
// Output is buffered; call [Generator.Close] (or [Generator.Flush]) to
// push it to the writer. A Generator is not safe for concurrent use.
type Generator struct {
	w       *bufio.Writer
	indent  string
	scratch []byte
	stack   []genFrame
	docs    int
}

// NewGenerator returns a Generator writing to w.
func NewGenerator(w io.Writer) *Generator {
	return &Generator{w: bufio.NewWriter(w)}
}

// SetIndent switches the generator to pretty output, indenting each
// nesting level by indent. The empty string selects compact output.
func (g *Generator) SetIndent(indent string) {
	g.indent = indent
}

func (g *Generator) pretty() bool { return g.indent != "" }

func (g *Generator) top() *genFrame {
	if len(g.stack) == 0 {
		return nil
	}

	return &g.stack[len(g.stack)-1]
}

func (g *Generator) newlineIndent(depth int) {
	_ = g.w.WriteByte('\n')
	for i := 0; i < depth; i++ {
		_, _ = g.w.WriteString(g.indent)
	}
}

// beginValue emits the separators for the next value slot. Callers have
// already validated the state.
func (g *Generator) beginValue(f *genFrame) {
	if f == nil {
		if g.docs > 0 {
			_ = g.w.WriteByte('\n')
		}

		return
	}

	if f.inObject {
		// The separator was written with the field name.
		f.awaitName = true
		f.items++

		return
	}

	if f.items > 0 {
		_ = g.w.WriteByte(',')
	}

	if g.pretty() {
		g.newlineIndent(len(g.stack))
	}

	f.items++
}

// WriteValue writes a scalar into the current slot. Containers are written
// with the start and end calls, and scalars cannot stand alone at the top
// level.
func (g *Generator) WriteValue(v Value) error {
	switch v.(type) {
	case Array, Object:
		return fmt.Errorf("%w: containers are written with start and end calls", ErrGeneratorState)
	}

	f := g.top()
	if f == nil {
		return fmt.Errorf("%w: bare scalar at top level", ErrGeneratorState)
	}

	if f.inObject && f.awaitName {
		return fmt.Errorf("%w: value lacks a field name", ErrGeneratorState)
	}

	g.beginValue(f)
	g.scratch = appendScalar(g.scratch[:0], v)
	_, err := g.w.Write(g.scratch)

	return err
}

// WriteNull writes a JSON null into the current slot.
func (g *Generator) WriteNull() error { return g.WriteValue(Null{}) }

// WriteBool writes a JSON boolean into the current slot.
func (g *Generator) WriteBool(b bool) error { return g.WriteValue(Bool(b)) }

// WriteString writes a JSON string into the current slot.
func (g *Generator) WriteString(s string) error { return g.WriteValue(String(s)) }

// WriteNumber writes a JSON number into the current slot.
func (g *Generator) WriteNumber(n Number) error { return g.WriteValue(n) }

// WriteName writes the field name for the next object member. It is valid
// only directly inside an object with no name pending.
func (g *Generator) WriteName(name string) error {
	f := g.top()
	if f == nil || !f.inObject {
		return fmt.Errorf("%w: field name outside an object", ErrGeneratorState)
	}

	if !f.awaitName {
		return fmt.Errorf("%w: field name %q follows an unfilled name", ErrGeneratorState, name)
	}

	if f.items > 0 {
		_ = g.w.WriteByte(',')
	}

	if g.pretty() {
		g.newlineIndent(len(g.stack))
	}

	g.scratch = appendQuoted(g.scratch[:0], name)
	g.scratch = append(g.scratch, ':')

	if g.pretty() {
		g.scratch = append(g.scratch, ' ')
	}

	f.awaitName = false
	_, err := g.w.Write(g.scratch)

	return err
}

// WriteStartObject opens an object in the current slot.
func (g *Generator) WriteStartObject() error { return g.start(true, '{') }

// WriteStartArray opens an array in the current slot.
func (g *Generator) WriteStartArray() error { return g.start(false, '[') }

func (g *Generator) start(inObject bool, open byte) error {
	f := g.top()
	if f != nil && f.inObject && f.awaitName {
		return fmt.Errorf("%w: value lacks a field name", ErrGeneratorState)
	}

	g.beginValue(f)
	g.stack = append(g.stack, genFrame{inObject: inObject, awaitName: inObject})

	return g.w.WriteByte(open)
}

// WriteEndObject closes the innermost object.
func (g *Generator) WriteEndObject() error { return g.end(true, '}') }

// WriteEndArray closes the innermost array.
func (g *Generator) WriteEndArray() error { return g.end(false, ']') }

func (g *Generator) end(inObject bool, close byte) error {
	f := g.top()
	if f == nil || f.inObject != inObject {
		if inObject {
			return fmt.Errorf("%w: no object open", ErrGeneratorState)
		}

		return fmt.Errorf("%w: no array open", ErrGeneratorState)
	}

	if f.inObject && !f.awaitName {
		return fmt.Errorf("%w: field name lacks a value", ErrGeneratorState)
	}

	items := f.items
	g.stack = g.stack[:len(g.stack)-1]

	if g.pretty() && items > 0 {
		g.newlineIndent(len(g.stack))
	}

	if len(g.stack) == 0 {
		g.docs++
	}

	return g.w.WriteByte(close)
}

// Flush pushes buffered output to the writer.
func (g *Generator) Flush() error { return g.w.Flush() }

// Close flushes buffered output and verifies the document is complete. The
// underlying writer stays open; the caller owns it.
func (g *Generator) Close() error {
	if err := g.w.Flush(); err != nil {
		return err
	}

	if n := len(g.stack); n > 0 {
		return fmt.Errorf("%w: document has %d open containers", ErrGeneratorState, n)
	}

	return nil
}
