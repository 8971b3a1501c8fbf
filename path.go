package govalid

import (
	"fmt"
	"strings"
)

// pathSegment is one element of a property path: a property name plus an
// optional index or map key.
type pathSegment struct {
	name    string
	index   string
	indexed bool
}

// parsePath resolves a dotted/indexed property-path expression such as
// "orders[2].lineItems[id].amount" into segments. The grammar is
// name("["index"]")? joined by ".".
func parsePath(expr string) ([]pathSegment, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidPath)
	}
	parts := strings.Split(expr, ".")
	segs := make([]pathSegment, 0, len(parts))
	for _, p := range parts {
		seg, err := parseSegment(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %s", ErrInvalidPath, expr, err)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

func parseSegment(s string) (pathSegment, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if s == "" {
			return pathSegment{}, fmt.Errorf("empty segment")
		}
		if strings.IndexByte(s, ']') >= 0 {
			return pathSegment{}, fmt.Errorf("stray ']'")
		}
		return pathSegment{name: s}, nil
	}
	name := s[:open]
	if name == "" {
		return pathSegment{}, fmt.Errorf("missing property name before '['")
	}
	rest := s[open:]
	if !strings.HasSuffix(rest, "]") || len(rest) < 2 {
		return pathSegment{}, fmt.Errorf("unterminated index")
	}
	idx := rest[1 : len(rest)-1]
	if idx == "" {
		return pathSegment{}, fmt.Errorf("empty index")
	}
	if strings.ContainsAny(idx, "[]") {
		return pathSegment{}, fmt.Errorf("nested index")
	}
	return pathSegment{name: name, index: idx, indexed: true}, nil
}

// renderPath joins segments with "." and attaches "[index]" to indexed ones.
// Segments with an empty name (type-level constraints) contribute no name
// and no separator of their own.
func renderPath(segs []pathSegment) string {
	b := &strings.Builder{}
	for _, s := range segs {
		if s.name != "" {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.name)
		}
		if s.indexed {
			b.WriteByte('[')
			b.WriteString(s.index)
			b.WriteByte(']')
		}
	}
	return b.String()
}
