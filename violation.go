package govalid

import (
	"errors"
	"fmt"
	"strings"
)

// Violation codes produced by the default rules evaluator (exported consts
// for IDE completion and type safety by convention). Custom evaluators may
// emit their own codes.
const (
	CodeRequired = "required"
	CodeMin      = "min"
	CodeMax      = "max"
	CodeLen      = "len"
	CodeGT       = "gt"
	CodeGTE      = "gte"
	CodeLT       = "lt"
	CodeLTE      = "lte"
	CodeEmail    = "email"
	CodeUUID     = "uuid"
	CodeURL      = "url"
	CodeOneOf    = "oneof"
)

// Violation represents a single failed constraint.
type Violation struct {
	Path    string // dotted/indexed property path (for example: orders[2].amount).
	Code    string // usually the failed rule's name.
	Message string
	Rule    string // Optional: the full rule expression that produced this violation.
	Group   Group  // the group under which the constraint was enforced.
	// Params carries structured parameters (e.g., {"param":"2"}) for i18n and
	// observability.
	Params map[string]any
	// Value is the offending value, when the evaluator captured it.
	Value any
}

// Violations is a collection of failed constraints that implements error.
type Violations []Violation

// Error summarizes the first few violations.
func (vs Violations) Error() string {
	if len(vs) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(vs)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		v := vs[i]
		// e.g. required at items[0].sku
		fmt.Fprintf(b, "%s at %s", v.Code, v.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendViolations appends violations to the destination, initializing the
// slice when needed.
func AppendViolations(dst Violations, more ...Violation) Violations {
	if dst == nil {
		dst = Violations{}
	}
	dst = append(dst, more...)
	return dst
}

// AsViolations extracts Violations from an error using errors.As internally.
func AsViolations(err error) (Violations, bool) {
	if err == nil {
		return nil, false
	}
	var vs Violations
	if errors.As(err, &vs) {
		return vs, true
	}
	return nil, false
}

// violationKey identifies a violation for set semantics. Two violations with
// the same key are the same finding, even when reached through different
// edges of the object graph.
type violationKey struct {
	path    string
	code    string
	rule    string
	message string
	group   Group
}

// dedupeViolations keeps the first occurrence of each distinct violation,
// preserving insertion order.
func dedupeViolations(vs Violations) Violations {
	if len(vs) == 0 {
		return Violations{}
	}
	seen := make(map[violationKey]struct{}, len(vs))
	out := make(Violations, 0, len(vs))
	for _, v := range vs {
		k := violationKey{path: v.Path, code: v.Code, rule: v.Rule, message: v.Message, group: v.Group}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
