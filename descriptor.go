package govalid

import (
	"reflect"
	"sort"
)

// TypeDescriptor is a read-only view of a type's resolved constraint
// metadata, for tooling and diagnostics. Properties are sorted by name.
type TypeDescriptor struct {
	Type       reflect.Type
	Properties []PropertyDescriptor
}

// Constrained reports whether the type carries any constraint or cascade.
func (d *TypeDescriptor) Constrained() bool { return len(d.Properties) > 0 }

// PropertyDescriptor describes one property's constraints. An empty Name
// holds the type-level constraints.
type PropertyDescriptor struct {
	Name        string
	Constraints []ConstraintDescriptor
	Cascaded    bool
}

// ConstraintDescriptor is one rule plus the groups it applies to.
type ConstraintDescriptor struct {
	Rule   string
	Groups []Group
}

// Descriptor resolves and describes the constraint metadata for a type
// through the validator's provider and cache.
func (v *Validator) Descriptor(t reflect.Type) (*TypeDescriptor, error) {
	meta, err := v.metadataFor(t)
	if err != nil {
		return nil, err
	}
	byName := map[string]*PropertyDescriptor{}
	for _, c := range meta.Constraints {
		pd := byName[c.Property]
		if pd == nil {
			pd = &PropertyDescriptor{Name: c.Property}
			byName[c.Property] = pd
		}
		pd.Constraints = append(pd.Constraints, ConstraintDescriptor{
			Rule:   c.Rule,
			Groups: append([]Group(nil), c.Groups...),
		})
	}
	for _, m := range meta.Cascades {
		pd := byName[m.Property]
		if pd == nil {
			pd = &PropertyDescriptor{Name: m.Property}
			byName[m.Property] = pd
		}
		pd.Cascaded = true
	}
	d := &TypeDescriptor{Type: meta.Type}
	for _, pd := range byName {
		d.Properties = append(d.Properties, *pd)
	}
	sort.Slice(d.Properties, func(i, j int) bool { return d.Properties[i].Name < d.Properties[j].Name })
	return d, nil
}
