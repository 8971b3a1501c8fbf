package govalid_test

import (
	"reflect"
	"testing"

	govalid "github.com/reoring/govalid"
)

func TestTagProvider_Metadata(t *testing.T) {
	type address struct {
		City string `json:"city" valid:"required"`
	}
	type account struct {
		ID      string   `json:"id" valid:"required,len=8"`
		Email   string   `json:"email" valid:"required,email" groups:"signup,profile"`
		Home    *address `json:"home" valid:"cascade"`
		Aliases []string `json:"aliases" valid:"required,cascade"`
		Skip    string   `json:"skip" valid:"-"`
		NoTag   string   `json:"noTag"`
		hidden  string   `valid:"required"`
	}

	p := &govalid.TagProvider{}
	meta, err := p.MetadataFor(reflect.TypeOf(&account{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.Constraints) != 3 {
		t.Fatalf("expected 3 constraints, got: %+v", meta.Constraints)
	}
	byProp := map[string]govalid.Constraint{}
	for _, c := range meta.Constraints {
		byProp[c.Property] = c
	}
	if c := byProp["id"]; c.Rule != "required,len=8" || len(c.Groups) != 0 {
		t.Fatalf("unexpected id constraint: %+v", c)
	}
	if c := byProp["email"]; c.Rule != "required,email" || len(c.Groups) != 2 || c.Groups[0] != "signup" {
		t.Fatalf("unexpected email constraint: %+v", c)
	}
	if c := byProp["aliases"]; c.Rule != "required" {
		t.Fatalf("expected the cascade token to be stripped, got: %+v", c)
	}
	if len(meta.Cascades) != 2 {
		t.Fatalf("expected 2 cascades, got: %+v", meta.Cascades)
	}
	if meta.Cascades[0].Property != "home" || meta.Cascades[0].Type != reflect.TypeOf(&address{}) {
		t.Fatalf("expected home cascade with its declared type, got: %+v", meta.Cascades[0])
	}
}

func TestTagProvider_ValueExtraction(t *testing.T) {
	type account struct {
		ID string `json:"id" valid:"required"`
	}
	p := &govalid.TagProvider{}
	meta, err := p.MetadataFor(reflect.TypeOf(account{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := meta.Constraints[0].ValueFrom(&account{ID: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc" {
		t.Fatalf("expected field read through a pointer owner, got %v", got)
	}
	if _, err := meta.Constraints[0].ValueFrom("not an account"); err == nil {
		t.Fatalf("expected a foreign owner to be rejected")
	}
}

func TestTagProvider_CustomTagNames(t *testing.T) {
	type widget struct {
		Name string `check:"required" scopes:"admin"`
	}
	p := &govalid.TagProvider{Tag: "check", GroupsTag: "scopes"}
	meta, err := p.MetadataFor(reflect.TypeOf(widget{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.Constraints) != 1 || meta.Constraints[0].Rule != "required" || meta.Constraints[0].Groups[0] != "admin" {
		t.Fatalf("unexpected metadata: %+v", meta.Constraints)
	}
}

func TestTagProvider_NonStruct(t *testing.T) {
	p := &govalid.TagProvider{}
	meta, err := p.MetadataFor(reflect.TypeOf(42))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.Constraints) != 0 || len(meta.Cascades) != 0 {
		t.Fatalf("expected empty metadata for a non-struct, got: %+v", meta)
	}
}
