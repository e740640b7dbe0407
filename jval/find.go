package jval

// FindAll returns every value held by a field called name anywhere within
// v, in document order.
//
// An object contributes its own matching field first, then the matches
// found inside each of its field values, including inside the match
// itself. Arrays are searched element by element. Scalars contribute
// nothing.
func FindAll(v Value, name string) []Value {
	return findAll(v, name, nil)
}

func findAll(v Value, name string, out []Value) []Value {
	switch t := v.(type) {
	case Object:
		if m, ok := t.Get(name); ok {
			out = append(out, m)
		}

		for p := t.pairs(); p != nil; p = p.Next() {
			out = findAll(p.Value, name, out)
		}
	case Array:
		for _, item := range t.items {
			out = findAll(item, name, out)
		}
	}

	return out
}
