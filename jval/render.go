package jval

import (
	"io"
	"strings"
)

// Render returns the compact JSON text of v.
func Render(v Value) string {
	var sb strings.Builder

	// strings.Builder never fails.
	_ = render(&sb, v, "")

	return sb.String()
}

// RenderIndent returns the JSON text of v pretty-printed with indent per
// nesting level.
func RenderIndent(v Value, indent string) string {
	var sb strings.Builder

	_ = render(&sb, v, indent)

	return sb.String()
}

// Write renders v compactly onto w.
func Write(w io.Writer, v Value) error {
	return render(w, v, "")
}

// WriteIndent renders v onto w pretty-printed with indent per nesting
// level.
func WriteIndent(w io.Writer, v Value, indent string) error {
	return render(w, v, indent)
}

func render(w io.Writer, v Value, indent string) error {
	switch v.(type) {
	case Array, Object:
		g := NewGenerator(w)
		g.SetIndent(indent)

		if err := writeValue(g, v); err != nil {
			return err
		}

		return g.Close()
	default:
		// The generator reserves the top level for containers; whole-scalar
		// documents are emitted directly.
		_, err := io.WriteString(w, scalarJSON(v))

		return err
	}
}

// writeValue drives g with the event sequence of v.
func writeValue(g *Generator, v Value) error {
	switch t := v.(type) {
	case Array:
		if err := g.WriteStartArray(); err != nil {
			return err
		}

		for _, item := range t.items {
			if err := writeValue(g, item); err != nil {
				return err
			}
		}

		return g.WriteEndArray()
	case Object:
		if err := g.WriteStartObject(); err != nil {
			return err
		}

		for p := t.pairs(); p != nil; p = p.Next() {
			if err := g.WriteName(p.Key); err != nil {
				return err
			}

			if err := writeValue(g, p.Value); err != nil {
				return err
			}
		}

		return g.WriteEndObject()
	default:
		return g.WriteValue(v)
	}
}

func scalarJSON(v Value) string {
	return string(appendScalar(nil, v))
}

func appendScalar(dst []byte, v Value) []byte {
	switch t := v.(type) {
	case nil, Null:
		return append(dst, "null"...)
	case Bool:
		if t {
			return append(dst, "true"...)
		}

		return append(dst, "false"...)
	case Number:
		return append(dst, t.dec.String()...)
	case String:
		return appendQuoted(dst, string(t))
	default:
		panic("jval: appendScalar on a container")
	}
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a quoted JSON string. Valid UTF-8 passes
// through unescaped; only the characters JSON requires escaping for are
// escaped.
func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0

	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 0x20 && b != '"' && b != '\\' {
			continue
		}

		dst = append(dst, s[start:i]...)

		switch b {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
		}

		start = i + 1
	}

	dst = append(dst, s[start:]...)

	return append(dst, '"')
}
