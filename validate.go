package govalid

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// validateInChain drives the group plan over the execution state, applying
// the sequence short-circuit: a group that records violations while tagged
// with a sequence suppresses the remaining groups of that sequence's
// contiguous run. Plain groups are never skipped.
func (v *Validator) validateInChain(ctx context.Context, exec *Execution, chain *groupChain) error {
	for chain.hasNext() {
		entry := chain.next()
		exec.setGroup(entry.group)
		before := exec.violationCount()
		if err := v.validateCurrentGroup(ctx, exec); err != nil {
			return err
		}
		if entry.inSequence() && exec.violationCount() > before {
			chain.skipSequence(entry.sequence)
		}
	}
	return nil
}

// validateCurrentGroup validates the top-of-stack object's direct
// constraints for the current group, then cascades into its members.
// Cascade recursion re-enters here, so a nested object is validated under
// exactly the group its parent was being validated under.
func (v *Validator) validateCurrentGroup(ctx context.Context, exec *Execution) error {
	if err := v.validateConstraints(ctx, exec); err != nil {
		return err
	}
	return v.validateCascades(ctx, exec)
}

// validateConstraints runs the current object's own constraint bindings.
// Property pushes stay balanced on every exit, including evaluator errors.
func (v *Validator) validateConstraints(ctx context.Context, exec *Execution) error {
	meta, err := v.metadataFor(exec.CurrentType())
	if err != nil {
		return err
	}
	for _, c := range meta.Constraints {
		scoped := c.Property != ""
		if scoped {
			exec.pushProperty(c.Property)
		}
		if !c.appliesTo(exec.group) {
			if scoped {
				exec.popProperty()
			}
			continue
		}
		value, verr := c.ValueFrom(exec.CurrentObject())
		if verr != nil {
			verr = fmt.Errorf("govalid: constraint at %s: %w", exec.Path(), verr)
		} else {
			verr = v.eval.Evaluate(ctx, c, meta.Type, value, exec)
		}
		if scoped {
			exec.popProperty()
		}
		if verr != nil {
			return verr
		}
	}
	exec.markProcessed()
	return nil
}

// validateCascades walks the current object's cascade-eligible members.
// Absent values are skipped without touching the path: a nil target is a
// nullability constraint's concern, not a cascade's.
func (v *Validator) validateCascades(ctx context.Context, exec *Execution) error {
	meta, err := v.metadataFor(exec.CurrentType())
	if err != nil {
		return err
	}
	for _, m := range meta.Cascades {
		value, err := m.ValueFrom(exec.CurrentObject())
		if err != nil {
			return fmt.Errorf("govalid: cascade %s: %w", m.Property, err)
		}
		if isNilAny(value) {
			continue
		}
		exec.pushProperty(m.Property)
		err = v.cascadeInto(ctx, exec, m.Type, value)
		exec.popProperty()
		if err != nil {
			return err
		}
	}
	return nil
}

// cascadeInto validates every element reached through one cascade member.
// Elements already processed under the current group are skipped entirely,
// which both avoids redundant work and terminates cyclic graphs.
func (v *Validator) cascadeInto(ctx context.Context, exec *Execution, declared reflect.Type, value any) error {
	elems, indexed := elementsOf(declared, value)
	if indexed {
		exec.markIndexed()
	}
	for _, el := range elems {
		if isNilAny(el.value) {
			continue
		}
		if exec.isProcessed(el.value) {
			continue
		}
		if indexed {
			exec.replaceIndex(el.index)
		}
		exec.pushObject(el.value)
		err := v.validateCurrentGroup(ctx, exec)
		exec.popObject()
		if err != nil {
			return err
		}
	}
	return nil
}

// element is one cascade target plus the index text it renders under.
type element struct {
	value any
	index string
}

// elementsOf classifies a cascade value by its declared type (a declared
// interface defers to the runtime type) and lists its elements. Maps,
// slices, and arrays iterate per element with indexed paths; anything else
// is a single scalar target.
func elementsOf(declared reflect.Type, value any) ([]element, bool) {
	rv := indirectValue(reflect.ValueOf(value))
	if !rv.IsValid() {
		return nil, false
	}
	t := indirectType(declared)
	if t == nil || t.Kind() == reflect.Interface {
		t = rv.Type()
	}
	switch {
	case t.Kind() == reflect.Map && rv.Kind() == reflect.Map:
		return mapElements(rv), true
	case (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) &&
		(rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array):
		out := make([]element, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, element{value: rv.Index(i).Interface(), index: strconv.Itoa(i)})
		}
		return out, true
	}
	return []element{{value: value}}, false
}

// mapElements lists map values keyed for path rendering. Entries are sorted
// by rendered key text so repeated runs see identical paths regardless of
// map iteration order.
func mapElements(rv reflect.Value) []element {
	type entry struct {
		value   any
		text    string
		literal bool
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface && !k.IsNil() {
			k = k.Elem()
		}
		text, literal := renderMapKey(k)
		entries = append(entries, entry{value: iter.Value().Interface(), text: text, literal: literal})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].text < entries[j].text })
	out := make([]element, 0, len(entries))
	for i, en := range entries {
		idx := en.text
		if !en.literal {
			// non-primitive keys cannot be re-rendered as a path segment;
			// fall back to the position in the sorted enumeration
			idx = strconv.Itoa(i)
		}
		out = append(out, element{value: en.value, index: idx})
	}
	return out
}

// renderMapKey renders an index-safe key (string or integer kinds) in its
// literal textual form. Other kinds only contribute sort text.
func renderMapKey(k reflect.Value) (string, bool) {
	if !k.IsValid() {
		return "<nil>", false
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(k.Uint(), 10), true
	}
	return fmt.Sprint(k.Interface()), false
}

// pathTarget is the result of descending the metadata graph along a path:
// the bindings matching the final segment, the type declaring them, and,
// for live-object validation, the host object whose property they read.
type pathTarget struct {
	constraints []Constraint
	owner       reflect.Type
	host        any
	hostOK      bool
}

// resolveTarget descends the metadata graph along segs, carrying the live
// host value alongside when one is available (hostOK). Unreachable paths
// return an empty target, never an error: naming a property no metadata
// knows, or indexing into a non-indexable type, simply matches nothing.
func (v *Validator) resolveTarget(t reflect.Type, host any, hostOK bool, segs []pathSegment) (pathTarget, error) {
	if t == nil || t.Kind() == reflect.Interface {
		return pathTarget{}, nil
	}
	meta, err := v.metadataFor(t)
	if err != nil {
		return pathTarget{}, err
	}
	head := segs[0]
	if len(segs) == 1 && !head.indexed {
		var cs []Constraint
		for _, c := range meta.Constraints {
			if c.Property == head.name {
				cs = append(cs, c)
			}
		}
		return pathTarget{constraints: cs, owner: meta.Type, host: host, hostOK: hostOK}, nil
	}
	for _, m := range meta.Cascades {
		if m.Property != head.name {
			continue
		}
		next, nextOK, err := stepValue(m, host, hostOK, head)
		if err != nil {
			return pathTarget{}, err
		}
		nt := indirectType(m.Type)
		if head.indexed {
			nt = indirectType(elementTypeOf(nt))
			if nt == nil && m.Type != nil && m.Type.Kind() != reflect.Interface {
				return pathTarget{}, nil
			}
		}
		if nt == nil || nt.Kind() == reflect.Interface {
			// declared interface: only a live value can tell us where to go
			if !nextOK || next == nil {
				return pathTarget{}, nil
			}
			nt = indirectType(reflect.TypeOf(next))
		}
		if len(segs) == 1 {
			// indexed leaf: the target is the element itself, bound by the
			// element type's type-level constraints
			return v.typeLevelTarget(nt, next, nextOK)
		}
		return v.resolveTarget(nt, next, nextOK, segs[1:])
	}
	return pathTarget{}, nil
}

// typeLevelTarget binds the type-level constraints of t (empty Property) for
// an element addressed directly by an indexed leaf segment.
func (v *Validator) typeLevelTarget(t reflect.Type, host any, hostOK bool) (pathTarget, error) {
	meta, err := v.metadataFor(t)
	if err != nil {
		return pathTarget{}, err
	}
	var cs []Constraint
	for _, c := range meta.Constraints {
		if c.Property == "" {
			cs = append(cs, c)
		}
	}
	return pathTarget{constraints: cs, owner: meta.Type, host: host, hostOK: hostOK}, nil
}

// stepValue advances the live host along one path segment; hostOK=false
// keeps the descent metadata-only.
func stepValue(m Cascade, host any, hostOK bool, seg pathSegment) (any, bool, error) {
	if !hostOK || isNilAny(host) {
		return nil, false, nil
	}
	val, err := m.ValueFrom(host)
	if err != nil {
		return nil, false, err
	}
	if isNilAny(val) {
		return nil, false, nil
	}
	if !seg.indexed {
		return val, true, nil
	}
	next, ok := elementAt(val, seg.index)
	return next, ok, nil
}

// elementAt dereferences one index step into a live slice, array, or map.
// Anything out of range or unconvertible makes the step miss, not fail.
func elementAt(value any, index string) (any, bool) {
	rv := indirectValue(reflect.ValueOf(value))
	if !rv.IsValid() {
		return nil, false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	case reflect.Map:
		k, ok := mapKeyFor(rv.Type().Key(), index)
		if !ok {
			return nil, false
		}
		mv := rv.MapIndex(k)
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	}
	return nil, false
}

// mapKeyFor converts index text into a key value for index-safe key types.
func mapKeyFor(kt reflect.Type, index string) (reflect.Value, bool) {
	switch kt.Kind() {
	case reflect.String:
		return reflect.ValueOf(index).Convert(kt), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(index, 10, 64)
		if err != nil || reflect.Zero(kt).OverflowInt(n) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(kt), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(index, 10, 64)
		if err != nil || reflect.Zero(kt).OverflowUint(n) {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(n).Convert(kt), true
	}
	return reflect.Value{}, false
}

// validateTarget enforces resolved bindings under the group plan, with the
// same sequence short-circuit policy as full-graph validation. valueOf
// supplies the candidate value per constraint (host property read, or the
// standalone value).
func (v *Validator) validateTarget(ctx context.Context, exec *Execution, chain *groupChain, tgt pathTarget, valueOf func(Constraint) (any, error)) error {
	for chain.hasNext() {
		entry := chain.next()
		exec.setGroup(entry.group)
		before := exec.violationCount()
		for _, c := range tgt.constraints {
			if !c.appliesTo(entry.group) {
				continue
			}
			value, err := valueOf(c)
			if err != nil {
				return err
			}
			if err := v.eval.Evaluate(ctx, c, tgt.owner, value, exec); err != nil {
				return err
			}
		}
		if entry.inSequence() && exec.violationCount() > before {
			chain.skipSequence(entry.sequence)
		}
	}
	return nil
}
