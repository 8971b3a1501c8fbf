package govalid

import (
	"context"
	"fmt"
	"reflect"
)

// Constraint binds one rule expression to a property under a set of groups.
// A Constraint with an empty Property is type-level: it receives the owning
// object itself as the value and adds no path segment.
type Constraint struct {
	Property string
	Rule     string
	Groups   []Group // empty means the Default group only
	// ValueFrom extracts the constrained value from an owner instance.
	ValueFrom func(owner any) (any, error)
}

// appliesTo reports whether the constraint is enforced under group g.
func (c Constraint) appliesTo(g Group) bool {
	if len(c.Groups) == 0 {
		return g == Default
	}
	for _, cg := range c.Groups {
		if cg == g {
			return true
		}
	}
	return false
}

// Cascade marks a property whose value, when present, is itself walked
// during validation. Type is the property's declared static type; element
// classification (map/slice/array/scalar) happens against it.
type Cascade struct {
	Property string
	Type     reflect.Type
	// ValueFrom extracts the property value from an owner instance.
	ValueFrom func(owner any) (any, error)
}

// TypeMetadata is a type's complete constraint description as produced by a
// MetadataProvider. It must be immutable once returned: the Validator caches
// and shares it across goroutines.
type TypeMetadata struct {
	Type        reflect.Type
	Constraints []Constraint
	Cascades    []Cascade
}

// MetadataProvider discovers constraint metadata for a type. Implementations
// must be deterministic per type and safe to call redundantly from racing
// goroutines; the Validator may compute the same type's metadata more than
// once before one result wins the cache.
type MetadataProvider interface {
	MetadataFor(t reflect.Type) (*TypeMetadata, error)
}

// Evaluator executes a single constraint against an extracted value,
// appending any resulting violations to the Execution. A returned error is
// an evaluation defect and aborts the traversal; "the value is invalid" is
// never an error.
type Evaluator interface {
	Evaluate(ctx context.Context, c Constraint, owner reflect.Type, value any, exec *Execution) error
}

// NewFieldConstraint builds a property constraint for a struct field,
// resolving property by its external name (see ResolvePropertyName) or its
// Go field name.
func NewFieldConstraint(t reflect.Type, property, rule string, groups ...Group) (Constraint, error) {
	sf, idx, err := structField(t, property)
	if err != nil {
		return Constraint{}, err
	}
	return Constraint{
		Property:  ResolvePropertyName(sf),
		Rule:      rule,
		Groups:    groups,
		ValueFrom: fieldValueFunc(indirectType(t), idx),
	}, nil
}

// NewTypeConstraint builds a type-level constraint: the rule receives the
// owning object itself, and violations carry the owner's path.
func NewTypeConstraint(rule string, groups ...Group) Constraint {
	return Constraint{
		Rule:      rule,
		Groups:    groups,
		ValueFrom: func(owner any) (any, error) { return owner, nil },
	}
}

// NewFieldCascade marks a struct field as cascade-eligible.
func NewFieldCascade(t reflect.Type, property string) (Cascade, error) {
	sf, idx, err := structField(t, property)
	if err != nil {
		return Cascade{}, err
	}
	return Cascade{
		Property:  ResolvePropertyName(sf),
		Type:      sf.Type,
		ValueFrom: fieldValueFunc(indirectType(t), idx),
	}, nil
}

// structField finds an exported field by external property name or Go field
// name.
func structField(t reflect.Type, property string) (reflect.StructField, int, error) {
	st := indirectType(t)
	if st == nil || st.Kind() != reflect.Struct {
		return reflect.StructField{}, 0, fmt.Errorf("govalid: %v is not a struct type", t)
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" {
			continue
		}
		if ResolvePropertyName(f) == property || f.Name == property {
			return f, i, nil
		}
	}
	return reflect.StructField{}, 0, fmt.Errorf("govalid: no property %q on %s", property, st)
}

// fieldValueFunc builds an accessor reading field index idx from an owner of
// the given struct type, dereferencing pointers first.
func fieldValueFunc(owner reflect.Type, idx int) func(any) (any, error) {
	return func(o any) (any, error) {
		rv := indirectValue(reflect.ValueOf(o))
		if !rv.IsValid() || rv.Kind() != reflect.Struct || rv.Type() != owner {
			return nil, fmt.Errorf("govalid: cannot read field of %T: not a %s", o, owner)
		}
		return rv.Field(idx).Interface(), nil
	}
}
