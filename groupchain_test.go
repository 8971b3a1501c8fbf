package govalid

import (
	"errors"
	"testing"
)

func TestExpandGroups_PlainOrderAndDedup(t *testing.T) {
	chain, err := expandGroups(nil, []Group{"a", "b", "a", "c", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := chain.entries
	want := []chainEntry{{group: "a"}, {group: "b"}, {group: "c"}}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpandGroups_SequenceExpansion(t *testing.T) {
	seqs := map[Group][]Group{"checkout": {"basic", "payment"}}
	chain, err := expandGroups(seqs, []Group{"checkout", "audit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := chain.entries
	want := []chainEntry{
		{group: "basic", sequence: "checkout"},
		{group: "payment", sequence: "checkout"},
		{group: "audit"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpandGroups_NestedSequence_OuterTag(t *testing.T) {
	// A sequence member that is itself a sequence flattens in place, and the
	// flattened groups keep the outermost tag.
	seqs := map[Group][]Group{
		"all":   {"basic", "extended"},
		"basic": {"syntax", "semantic"},
	}
	chain, err := expandGroups(seqs, []Group{"all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := chain.entries
	want := []chainEntry{
		{group: "syntax", sequence: "all"},
		{group: "semantic", sequence: "all"},
		{group: "extended", sequence: "all"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpandGroups_CyclicComposition(t *testing.T) {
	seqs := map[Group][]Group{
		"a": {"b"},
		"b": {"a"},
	}
	_, err := expandGroups(seqs, []Group{"a"})
	var gde *GroupDefinitionError
	if !errors.As(err, &gde) {
		t.Fatalf("expected GroupDefinitionError, got: %v", err)
	}

	self := map[Group][]Group{"loop": {"loop"}}
	if _, err := expandGroups(self, []Group{"loop"}); !errors.As(err, &gde) {
		t.Fatalf("expected GroupDefinitionError for self-reference, got: %v", err)
	}
}

func TestExpandGroups_SharedMemberIsNotACycle(t *testing.T) {
	// Two branches reaching the same sequence is reuse, not a cycle; the
	// expansion stack unwinds between them.
	seqs := map[Group][]Group{
		"all":    {"left", "right"},
		"left":   {"common"},
		"right":  {"common", "extra"},
		"common": {"base"},
	}
	chain, err := expandGroups(seqs, []Group{"all"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := chain.entries
	want := []chainEntry{
		{group: "base", sequence: "all"},
		{group: "extra", sequence: "all"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestExpandGroups_EmptyIdentifier(t *testing.T) {
	var gde *GroupDefinitionError
	if _, err := expandGroups(nil, []Group{""}); !errors.As(err, &gde) {
		t.Fatalf("expected GroupDefinitionError for empty identifier, got: %v", err)
	}
	seqs := map[Group][]Group{"s": {"a", ""}}
	if _, err := expandGroups(seqs, []Group{"s"}); !errors.As(err, &gde) {
		t.Fatalf("expected GroupDefinitionError for empty member, got: %v", err)
	}
}

func TestGroupChain_SkipSequence(t *testing.T) {
	seqs := map[Group][]Group{
		"first":  {"a", "b"},
		"second": {"c"},
	}
	chain, err := expandGroups(seqs, []Group{"first", "second", "plain"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e := chain.next()
	if e.group != "a" || e.sequence != "first" {
		t.Fatalf("expected (a,first), got %v", e)
	}
	chain.skipSequence("first")
	e = chain.next()
	if e.group != "c" || e.sequence != "second" {
		t.Fatalf("expected skip to land on (c,second), got %v", e)
	}
	// skipping a tag that does not match the cursor position is a no-op
	chain.skipSequence("first")
	e = chain.next()
	if e.group != "plain" || e.sequence != "" {
		t.Fatalf("expected (plain,), got %v", e)
	}
	if chain.hasNext() {
		t.Fatalf("expected exhausted chain")
	}
}
