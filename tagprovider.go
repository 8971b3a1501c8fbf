package govalid

import (
	"reflect"
	"strings"
)

// TagProvider discovers constraint metadata from struct tags. The rule tag
// (default "valid") holds a comma-separated rule expression understood by
// the configured Evaluator, with two special tokens: "cascade" marks the
// field cascade-eligible and is removed from the expression, and "-" skips
// the field entirely. The groups tag (default "groups") lists the groups
// the field's constraint applies to; absent means Default.
//
//	type Order struct {
//		Amount   int        `valid:"required,gt=0" groups:"basic"`
//		Items    []LineItem `valid:"required,cascade"`
//		Customer *Customer  `valid:"cascade"`
//	}
type TagProvider struct {
	Tag       string // rule tag name; "valid" when empty
	GroupsTag string // groups tag name; "groups" when empty
}

func (p *TagProvider) MetadataFor(t reflect.Type) (*TypeMetadata, error) {
	st := indirectType(t)
	if st == nil {
		return nil, ErrNilType
	}
	meta := &TypeMetadata{Type: st}
	if st.Kind() != reflect.Struct {
		return meta, nil
	}
	ruleTag := p.Tag
	if ruleTag == "" {
		ruleTag = "valid"
	}
	groupsTag := p.GroupsTag
	if groupsTag == "" {
		groupsTag = "groups"
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		raw, ok := f.Tag.Lookup(ruleTag)
		if !ok || raw == "" || raw == "-" {
			continue
		}
		name := ResolvePropertyName(f)
		if name == "-" {
			continue
		}
		rule, cascade := splitRule(raw)
		groups := parseGroups(f.Tag.Get(groupsTag))
		if rule != "" {
			meta.Constraints = append(meta.Constraints, Constraint{
				Property:  name,
				Rule:      rule,
				Groups:    groups,
				ValueFrom: fieldValueFunc(st, i),
			})
		}
		if cascade {
			meta.Cascades = append(meta.Cascades, Cascade{
				Property:  name,
				Type:      f.Type,
				ValueFrom: fieldValueFunc(st, i),
			})
		}
	}
	return meta, nil
}

// splitRule strips the cascade token from a rule expression.
func splitRule(raw string) (rule string, cascade bool) {
	parts := strings.Split(raw, ",")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "cascade" {
			cascade = true
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ","), cascade
}

func parseGroups(raw string) []Group {
	if raw == "" {
		return nil
	}
	out := make([]Group, 0, 2)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, Group(p))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
