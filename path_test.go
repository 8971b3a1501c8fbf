package govalid

import (
	"errors"
	"testing"
)

func TestParsePath_Valid(t *testing.T) {
	cases := []struct {
		expr string
		want []pathSegment
	}{
		{"id", []pathSegment{{name: "id"}}},
		{"customer.name", []pathSegment{{name: "customer"}, {name: "name"}}},
		{"items[2].sku", []pathSegment{{name: "items", index: "2", indexed: true}, {name: "sku"}}},
		{"tags[primary]", []pathSegment{{name: "tags", index: "primary", indexed: true}}},
		{"a[0].b[k].c", []pathSegment{
			{name: "a", index: "0", indexed: true},
			{name: "b", index: "k", indexed: true},
			{name: "c"},
		}},
	}
	for _, tc := range cases {
		got, err := parsePath(tc.expr)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.expr, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%q: expected %d segments, got %v", tc.expr, len(tc.want), got)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("%q segment %d: expected %+v, got %+v", tc.expr, i, tc.want[i], got[i])
			}
		}
	}
}

func TestParsePath_Invalid(t *testing.T) {
	for _, expr := range []string{
		"",
		"a..b",
		".a",
		"a.",
		"a[",
		"a[]",
		"[0]",
		"a]b",
		"a[0][1]",
		"a[0]x",
	} {
		if _, err := parsePath(expr); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("%q: expected ErrInvalidPath, got: %v", expr, err)
		}
	}
}

func TestRenderPath(t *testing.T) {
	segs := []pathSegment{
		{name: "order"},
		{name: "items", index: "1", indexed: true},
		{name: "sku"},
	}
	if got := renderPath(segs); got != "order.items[1].sku" {
		t.Fatalf("expected order.items[1].sku, got %q", got)
	}
	// type-level segments have no name and contribute no separator
	if got := renderPath([]pathSegment{{name: "items", index: "0", indexed: true}, {}}); got != "items[0]" {
		t.Fatalf("expected items[0], got %q", got)
	}
	if got := renderPath(nil); got != "" {
		t.Fatalf("expected empty path, got %q", got)
	}
}
