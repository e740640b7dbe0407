package jval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Parser is a pull parser producing the [Token] stream of one or more JSON
// documents read from an [io.Reader].
//
// The low-level tokenizing is done by [encoding/json]; the Parser layers
// field-name classification, arbitrary-precision numbers and positioned
// syntax errors on top. A Parser is not safe for concurrent use.
type Parser struct {
	dec   *json.Decoder
	src   *lineReader
	err   error
	stack []parseFrame
}

type parseFrame struct {
	inObject   bool
	expectName bool
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	lr := &lineReader{r: r}
	dec := json.NewDecoder(lr)
	dec.UseNumber()

	return &Parser{dec: dec, src: lr}
}

// Next returns the next event in the stream.
//
// It returns [io.EOF] at a clean end of input. Any other failure is
// sticky: every later call reports it again. Malformed input is reported
// as a [*SyntaxError].
func (p *Parser) Next() (Token, error) {
	if p.err != nil {
		return Token{}, p.err
	}

	tok, err := p.dec.Token()
	if err != nil {
		p.err = p.wrap(err)

		return Token{}, p.err
	}

	switch t := tok.(type) {
	case json.Delim:
		return p.delim(t), nil
	case string:
		if f := p.top(); f != nil && f.inObject && f.expectName {
			f.expectName = false

			return Token{Kind: TokenName, Name: t}, nil
		}

		p.afterValue()

		return Token{Kind: TokenValue, Value: String(t)}, nil
	case json.Number:
		n, nerr := NewNumberFromString(string(t))
		if nerr != nil {
			p.err = nerr

			return Token{}, p.err
		}

		p.afterValue()

		return Token{Kind: TokenValue, Value: n}, nil
	case bool:
		p.afterValue()

		return Token{Kind: TokenValue, Value: Bool(t)}, nil
	case nil:
		p.afterValue()

		return Token{Kind: TokenValue, Value: Null{}}, nil
	default:
		// Unreachable: UseNumber leaves no other token types.
		p.err = fmt.Errorf("unsupported token %v", tok)

		return Token{}, p.err
	}
}

func (p *Parser) delim(d json.Delim) Token {
	switch d {
	case '{':
		p.stack = append(p.stack, parseFrame{inObject: true, expectName: true})

		return Token{Kind: TokenStartObject}
	case '[':
		p.stack = append(p.stack, parseFrame{})

		return Token{Kind: TokenStartArray}
	case '}':
		p.stack = p.stack[:len(p.stack)-1]
		p.afterValue()

		return Token{Kind: TokenEndObject}
	default: // ']'
		p.stack = p.stack[:len(p.stack)-1]
		p.afterValue()

		return Token{Kind: TokenEndArray}
	}
}

func (p *Parser) top() *parseFrame {
	if len(p.stack) == 0 {
		return nil
	}

	return &p.stack[len(p.stack)-1]
}

// afterValue records that the enclosing object, if any, expects a field
// name next.
func (p *Parser) afterValue() {
	if f := p.top(); f != nil && f.inObject {
		f.expectName = true
	}
}

// ReadValue consumes the events of one complete value and returns it.
func (p *Parser) ReadValue() (Value, error) {
	tok, err := p.Next()
	if err != nil {
		return nil, err
	}

	return p.readFrom(tok)
}

func (p *Parser) readFrom(tok Token) (Value, error) {
	switch tok.Kind {
	case TokenValue:
		return tok.Value, nil
	case TokenStartArray:
		var items []Value

		for {
			t, err := p.Next()
			if err != nil {
				return nil, err
			}

			if t.Kind == TokenEndArray {
				return Array{items: items}, nil
			}

			v, err := p.readFrom(t)
			if err != nil {
				return nil, err
			}

			items = append(items, v)
		}
	case TokenStartObject:
		om := orderedmap.New[string, Value]()

		for {
			t, err := p.Next()
			if err != nil {
				return nil, err
			}

			if t.Kind == TokenEndObject {
				return Object{fields: om}, nil
			}

			v, err := p.ReadValue()
			if err != nil {
				return nil, err
			}

			// Repeated names take the last value, first position.
			om.Set(t.Name, v)
		}
	default:
		return nil, fmt.Errorf("value cannot start at a %s event", tok.Kind)
	}
}

// More reports whether the stream holds another element or document.
func (p *Parser) More() bool {
	return p.err == nil && p.dec.More()
}

// Close releases the parser, closing the underlying reader when it
// implements [io.Closer].
func (p *Parser) Close() error {
	if c, ok := p.src.r.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// wrap converts tokenizer failures into positioned syntax errors.
func (p *Parser) wrap(err error) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}

	var jse *json.SyntaxError
	if errors.As(err, &jse) {
		off := jse.Offset
		if off > 0 {
			off-- // the tokenizer reports the position after the bad byte
		}

		return p.src.syntaxError(off, jse.Error())
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return p.src.syntaxError(p.src.offset, "unexpected end of input")
	}

	return err
}

// posError reports a syntax error at the current read position.
func (p *Parser) posError(msg string) *SyntaxError {
	return p.src.syntaxError(p.src.offset, msg)
}

// lineReader counts newline offsets as they stream past so byte offsets
// can be mapped back to line and column.
type lineReader struct {
	r        io.Reader
	offset   int64
	newlines []int64
}

func (lr *lineReader) Read(p []byte) (int, error) {
	n, err := lr.r.Read(p)
	for i := 0; i < n; i++ {
		if p[i] == '\n' {
			lr.newlines = append(lr.newlines, lr.offset+int64(i))
		}
	}

	lr.offset += int64(n)

	return n, err
}

// position maps a byte offset to 1-based line and column. Columns count
// bytes, not runes.
func (lr *lineReader) position(off int64) (line, col int64) {
	i := sort.Search(len(lr.newlines), func(i int) bool { return lr.newlines[i] >= off })

	line = int64(i) + 1
	if i == 0 {
		return line, off + 1
	}

	return line, off - lr.newlines[i-1]
}

func (lr *lineReader) syntaxError(off int64, msg string) *SyntaxError {
	line, col := lr.position(off)

	return &SyntaxError{msg: msg, Offset: off, Line: line, Column: col}
}
