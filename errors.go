package govalid

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmer misuse. They are detected before any
// constraint evaluation begins; a call that returns one produced no
// violations at all.
var (
	// ErrNilRoot reports validation of a nil root object.
	ErrNilRoot = errors.New("govalid: validation of a nil root object")
	// ErrNilType reports a nil root type where one is required.
	ErrNilType = errors.New("govalid: validation of a nil type")
	// ErrNilEvaluator reports construction of a Validator without an Evaluator.
	ErrNilEvaluator = errors.New("govalid: validator requires a constraint evaluator")
	// ErrInvalidPath reports a property-path expression that cannot be parsed.
	ErrInvalidPath = errors.New("govalid: invalid property path")
)

// GroupDefinitionError reports an unresolvable group identifier or a cyclic
// sequence composition. Like the sentinel errors it is raised before any
// constraint evaluation; no partial violation set accompanies it.
type GroupDefinitionError struct {
	Group  Group  // the offending identifier
	Reason string // what made it invalid
}

func (e *GroupDefinitionError) Error() string {
	return fmt.Sprintf("govalid: group definition for %q: %s", string(e.Group), e.Reason)
}
