// Package mapping loads declarative constraint-mapping documents: YAML or
// JSON files declaring group sequences and per-type constraints/cascades,
// for types that cannot carry struct tags (generated code, third-party
// types) or for teams that keep validation rules out of source.
package mapping

import (
	"fmt"
	"io"
	"reflect"
	"sort"

	json "github.com/goccy/go-json"
	govalid "github.com/reoring/govalid"
	"gopkg.in/yaml.v3"
)

// File is the root of a constraint-mapping document:
//
//	sequences:
//	  checkout: [default, payment]
//	types:
//	  - name: billing.Order
//	    constraints:
//	      - property: amount
//	        rule: required,gt=0
//	        groups: [payment]
//	    cascades: [items]
type File struct {
	Sequences map[string][]string `yaml:"sequences" json:"sequences"`
	Types     []Type              `yaml:"types" json:"types"`
}

// Type declares the constraints and cascade members of one mapped type.
type Type struct {
	Name        string       `yaml:"name" json:"name"`
	Constraints []Constraint `yaml:"constraints" json:"constraints"`
	Cascades    []string     `yaml:"cascades" json:"cascades"`
}

// Constraint is one rule declaration. An empty property means a type-level
// constraint: the rule receives the mapped object itself.
type Constraint struct {
	Property string   `yaml:"property" json:"property"`
	Rule     string   `yaml:"rule" json:"rule"`
	Groups   []string `yaml:"groups" json:"groups"`
}

// Decode parses a YAML mapping document. Unknown fields are errors.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("mapping: decode yaml: %w", err)
	}
	return &f, nil
}

// DecodeJSON parses a JSON mapping document. Unknown fields are errors.
func DecodeJSON(r io.Reader) (*File, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("mapping: decode json: %w", err)
	}
	return &f, nil
}

// Problem is one structural finding from Check.
type Problem struct {
	Where  string `json:"where"`
	Reason string `json:"reason"`
}

func (p Problem) String() string { return p.Where + ": " + p.Reason }

// Check reports structural problems detectable without Go types: missing
// names, empty rules, duplicate declarations. Sequence cycles and
// unresolvable members are the chain generator's concern; resolve each
// sequence through Validator.GroupPlan for those.
func (f *File) Check() []Problem {
	var out []Problem
	names := make([]string, 0, len(f.Sequences))
	for name := range f.Sequences {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		where := "sequences." + name
		if name == "" {
			out = append(out, Problem{Where: "sequences", Reason: "empty sequence name"})
			continue
		}
		members := f.Sequences[name]
		if len(members) == 0 {
			out = append(out, Problem{Where: where, Reason: "sequence has no members"})
		}
		for i, m := range members {
			if m == "" {
				out = append(out, Problem{Where: fmt.Sprintf("%s[%d]", where, i), Reason: "empty group identifier"})
			}
		}
	}
	seenTypes := map[string]bool{}
	for i, t := range f.Types {
		where := fmt.Sprintf("types[%d]", i)
		if t.Name == "" {
			out = append(out, Problem{Where: where, Reason: "missing type name"})
		} else if seenTypes[t.Name] {
			out = append(out, Problem{Where: where, Reason: fmt.Sprintf("duplicate type %q", t.Name)})
		}
		seenTypes[t.Name] = true
		for j, c := range t.Constraints {
			if c.Rule == "" {
				out = append(out, Problem{
					Where:  fmt.Sprintf("%s.constraints[%d]", where, j),
					Reason: "empty rule",
				})
			}
		}
		seenCascades := map[string]bool{}
		for j, prop := range t.Cascades {
			cw := fmt.Sprintf("%s.cascades[%d]", where, j)
			if prop == "" {
				out = append(out, Problem{Where: cw, Reason: "empty property"})
				continue
			}
			if seenCascades[prop] {
				out = append(out, Problem{Where: cw, Reason: fmt.Sprintf("duplicate cascade %q", prop)})
			}
			seenCascades[prop] = true
		}
	}
	return out
}

// GroupSequences converts the document's sequences for govalid.WithSequences.
func (f *File) GroupSequences() map[govalid.Group][]govalid.Group {
	out := make(map[govalid.Group][]govalid.Group, len(f.Sequences))
	for name, members := range f.Sequences {
		ms := make([]govalid.Group, 0, len(members))
		for _, m := range members {
			ms = append(ms, govalid.Group(m))
		}
		out[govalid.Group(name)] = ms
	}
	return out
}

// Provider implements govalid.MetadataProvider from a mapping file. Types
// are matched by registered name first, then by their Go type string; types
// the mapping does not cover defer to the fallback when one is set and
// otherwise report no constraints.
type Provider struct {
	decls    map[string]*Type
	names    map[reflect.Type]string
	fallback govalid.MetadataProvider
}

// NewProvider indexes a decoded mapping file.
func NewProvider(f *File) *Provider {
	p := &Provider{decls: map[string]*Type{}, names: map[reflect.Type]string{}}
	for i := range f.Types {
		t := &f.Types[i]
		p.decls[t.Name] = t
	}
	return p
}

// WithFallback chains another provider for types the mapping does not cover.
func (p *Provider) WithFallback(mp govalid.MetadataProvider) *Provider {
	p.fallback = mp
	return p
}

// Register binds a Go type to a mapping name.
func (p *Provider) Register(name string, t reflect.Type) *Provider {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil {
		p.names[t] = name
	}
	return p
}

// RegisterType binds T to a mapping name.
func RegisterType[T any](p *Provider, name string) *Provider {
	return p.Register(name, reflect.TypeOf((*T)(nil)).Elem())
}

func (p *Provider) MetadataFor(t reflect.Type) (*govalid.TypeMetadata, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, fmt.Errorf("mapping: metadata for nil type")
	}
	name, ok := p.names[t]
	if !ok {
		name = t.String()
	}
	decl, ok := p.decls[name]
	if !ok {
		if p.fallback != nil {
			return p.fallback.MetadataFor(t)
		}
		return &govalid.TypeMetadata{Type: t}, nil
	}
	meta := &govalid.TypeMetadata{Type: t}
	for _, c := range decl.Constraints {
		groups := make([]govalid.Group, 0, len(c.Groups))
		for _, g := range c.Groups {
			groups = append(groups, govalid.Group(g))
		}
		if c.Property == "" {
			meta.Constraints = append(meta.Constraints, govalid.NewTypeConstraint(c.Rule, groups...))
			continue
		}
		fc, err := govalid.NewFieldConstraint(t, c.Property, c.Rule, groups...)
		if err != nil {
			return nil, fmt.Errorf("mapping: type %q: %w", name, err)
		}
		meta.Constraints = append(meta.Constraints, fc)
	}
	for _, prop := range decl.Cascades {
		mc, err := govalid.NewFieldCascade(t, prop)
		if err != nil {
			return nil, fmt.Errorf("mapping: type %q: %w", name, err)
		}
		meta.Cascades = append(meta.Cascades, mc)
	}
	return meta, nil
}
