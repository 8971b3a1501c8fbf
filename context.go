package govalid

import "reflect"

// Execution is the mutable state of one validation call: the stack of
// objects being validated, the current group, the property path under
// construction, the per-group processed record, and the violations
// accumulated so far. An Execution is created per top-level call, owned by
// one goroutine, and discarded at the end of the call.
//
// Evaluators receive the Execution to read the current position (Path,
// Group, CurrentObject) and to record findings (AddViolation). The engine
// alone mutates the stacks.
type Execution struct {
	root     any
	rootType reflect.Type
	group    Group

	stack     []stackEntry
	path      []pathSegment
	fixedPath string // set for path-targeted validation; overrides path rendering

	processed map[Group]map[identKey]struct{}
	found     Violations
}

type stackEntry struct {
	obj any
	typ reflect.Type
}

// newExecution builds the state for a full-graph validation rooted at root.
func newExecution(root any) *Execution {
	t := indirectType(reflect.TypeOf(root))
	return &Execution{
		root:      root,
		rootType:  t,
		stack:     []stackEntry{{obj: root, typ: t}},
		processed: map[Group]map[identKey]struct{}{},
	}
}

// newTargetExecution builds the state for path-targeted validation: every
// violation carries the requested expression as its path and no object
// stack is maintained beyond the root.
func newTargetExecution(root any, rootType reflect.Type, expr string) *Execution {
	e := &Execution{
		root:      root,
		rootType:  rootType,
		fixedPath: expr,
		processed: map[Group]map[identKey]struct{}{},
	}
	if root != nil {
		e.stack = []stackEntry{{obj: root, typ: rootType}}
	}
	return e
}

// Root returns the object the validation call started from (nil for
// ValidateValue).
func (e *Execution) Root() any { return e.root }

// RootType returns the root object's type with pointers stripped.
func (e *Execution) RootType() reflect.Type { return e.rootType }

// Group returns the group currently being enforced.
func (e *Execution) Group() Group { return e.group }

// Path renders the property path of the value currently under validation.
func (e *Execution) Path() string {
	if e.fixedPath != "" {
		return e.fixedPath
	}
	return renderPath(e.path)
}

// CurrentObject returns the object on top of the validated-object stack.
func (e *Execution) CurrentObject() any {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1].obj
}

// CurrentType returns the type of the object on top of the stack.
func (e *Execution) CurrentType() reflect.Type {
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1].typ
}

// AddViolation records a finding. An empty Path or Group is filled in from
// the current position, so evaluators only set what they know better.
func (e *Execution) AddViolation(v Violation) {
	if v.Path == "" {
		v.Path = e.Path()
	}
	if v.Group == "" {
		v.Group = e.group
	}
	e.found = append(e.found, v)
}

// Violations returns the findings accumulated so far. The slice is not a
// copy; callers must not retain it across further validation.
func (e *Execution) Violations() Violations { return e.found }

func (e *Execution) setGroup(g Group) { e.group = g }

func (e *Execution) violationCount() int { return len(e.found) }

// pushProperty appends a path segment. Every push must be matched by a
// popProperty on all exit paths, including evaluator error returns.
func (e *Execution) pushProperty(name string) {
	e.path = append(e.path, pathSegment{name: name})
}

func (e *Execution) popProperty() {
	e.path = e.path[:len(e.path)-1]
}

// markIndexed marks the deepest segment as indexed; the concrete index is
// supplied later through replaceIndex, once per element.
func (e *Execution) markIndexed() {
	e.path[len(e.path)-1].indexed = true
}

func (e *Execution) replaceIndex(text string) {
	e.path[len(e.path)-1].index = text
}

// pushObject makes obj the current validation target. The captured type is
// the runtime type with pointers stripped, which is where its metadata
// lives.
func (e *Execution) pushObject(obj any) {
	e.stack = append(e.stack, stackEntry{obj: obj, typ: indirectType(reflect.TypeOf(obj))})
}

func (e *Execution) popObject() {
	e.stack = e.stack[:len(e.stack)-1]
}

// isProcessed reports whether obj was already validated under the current
// group. Only reference kinds are tracked; value kinds cannot cycle.
func (e *Execution) isProcessed(obj any) bool {
	k, ok := identityOf(obj)
	if !ok {
		return false
	}
	_, done := e.processed[e.group][k]
	return done
}

// markProcessed records the current top-of-stack object as validated under
// the current group. Paired with isProcessed this bounds traversal to one
// visit per (object identity, group), which is what terminates cyclic
// graphs.
func (e *Execution) markProcessed() {
	k, ok := identityOf(e.CurrentObject())
	if !ok {
		return
	}
	set := e.processed[e.group]
	if set == nil {
		set = map[identKey]struct{}{}
		e.processed[e.group] = set
	}
	set[k] = struct{}{}
}
