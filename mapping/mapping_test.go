package mapping_test

import (
	"context"
	"strings"
	"testing"

	govalid "github.com/reoring/govalid"
	"github.com/reoring/govalid/mapping"
	"github.com/reoring/govalid/rules"
)

const orderDoc = `
sequences:
  checkout: [default, payment]
types:
  - name: billing.Order
    constraints:
      - property: id
        rule: required
      - property: amount
        rule: gt=0
        groups: [payment]
    cascades: [items]
  - name: billing.Item
    constraints:
      - property: sku
        rule: required
`

type mapOrder struct {
	ID     string    `json:"id"`
	Amount int       `json:"amount"`
	Items  []mapItem `json:"items"`
}

type mapItem struct {
	SKU string `json:"sku"`
}

func newOrderValidator(t *testing.T) *govalid.Validator {
	t.Helper()
	f, err := mapping.Decode(strings.NewReader(orderDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := mapping.NewProvider(f)
	mapping.RegisterType[mapOrder](p, "billing.Order")
	mapping.RegisterType[mapItem](p, "billing.Item")
	return govalid.MustNew(rules.New(),
		govalid.WithMetadataProvider(p),
		govalid.WithSequences(f.GroupSequences()),
	)
}

func TestDecode_YAML(t *testing.T) {
	f, err := mapping.Decode(strings.NewReader(orderDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Sequences) != 1 || len(f.Types) != 2 {
		t.Fatalf("unexpected document: %+v", f)
	}
	if f.Types[0].Name != "billing.Order" || len(f.Types[0].Constraints) != 2 || f.Types[0].Cascades[0] != "items" {
		t.Fatalf("unexpected type declaration: %+v", f.Types[0])
	}

	if _, err := mapping.Decode(strings.NewReader("types: []\nextra: 1\n")); err == nil {
		t.Fatalf("expected unknown fields to be rejected")
	}
}

func TestDecodeJSON(t *testing.T) {
	doc := `{"sequences":{"all":["default"]},"types":[{"name":"t","constraints":[{"property":"x","rule":"required"}]}]}`
	f, err := mapping.DecodeJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Sequences["all"]) != 1 || f.Types[0].Constraints[0].Rule != "required" {
		t.Fatalf("unexpected document: %+v", f)
	}

	if _, err := mapping.DecodeJSON(strings.NewReader(`{"bogus":true}`)); err == nil {
		t.Fatalf("expected unknown fields to be rejected")
	}
}

func TestCheck_Problems(t *testing.T) {
	f := &mapping.File{
		Sequences: map[string][]string{
			"empty":  {},
			"broken": {"a", ""},
		},
		Types: []mapping.Type{
			{Name: "dup", Constraints: []mapping.Constraint{{Property: "x", Rule: ""}}},
			{Name: "dup"},
			{Name: "", Cascades: []string{"items", "items", ""}},
		},
	}
	problems := f.Check()
	var reasons []string
	for _, p := range problems {
		reasons = append(reasons, p.String())
	}
	joined := strings.Join(reasons, "\n")
	for _, want := range []string{
		"sequence has no members",
		"empty group identifier",
		"empty rule",
		`duplicate type "dup"`,
		"missing type name",
		`duplicate cascade "items"`,
		"empty property",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected a finding containing %q, got:\n%s", want, joined)
		}
	}

	clean := &mapping.File{Sequences: map[string][]string{"all": {"default"}}, Types: []mapping.Type{{Name: "t"}}}
	if problems := clean.Check(); len(problems) != 0 {
		t.Fatalf("expected no findings, got: %v", problems)
	}
}

func TestProvider_EndToEnd(t *testing.T) {
	v := newOrderValidator(t)

	vs, err := v.Validate(context.Background(), &mapOrder{Items: []mapItem{{SKU: ""}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := map[string]bool{}
	for _, vi := range vs {
		got[vi.Path] = true
	}
	if len(vs) != 2 || !got["id"] || !got["items[0].sku"] {
		t.Fatalf("expected id and items[0].sku findings, got: %v", vs)
	}
}

func TestProvider_SequenceFromDocument(t *testing.T) {
	v := newOrderValidator(t)

	// clean default stage, the payment stage reports amount
	vs, err := v.Validate(context.Background(), &mapOrder{ID: "ord-1"}, "checkout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs) != 1 || vs[0].Path != "amount" || vs[0].Group != "payment" {
		t.Fatalf("expected the payment stage finding, got: %v", vs)
	}

	// failing default stage suppresses payment
	vs, err = v.Validate(context.Background(), &mapOrder{}, "checkout")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs) != 1 || vs[0].Path != "id" || vs[0].Group != govalid.Default {
		t.Fatalf("expected only the default stage finding, got: %v", vs)
	}
}

func TestProvider_MatchesByTypeString(t *testing.T) {
	doc := `
types:
  - name: mapping_test.labelRow
    constraints:
      - property: tag
        rule: required
`
	f, err := mapping.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := govalid.MustNew(rules.New(), govalid.WithMetadataProvider(mapping.NewProvider(f)))
	vs, err := v.Validate(context.Background(), &labelRow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs) != 1 || vs[0].Path != "tag" {
		t.Fatalf("expected the unregistered type to match by its type string, got: %v", vs)
	}
}

type labelRow struct {
	Tag string `json:"tag"`
}

func TestProvider_Fallback(t *testing.T) {
	f := &mapping.File{}
	p := mapping.NewProvider(f).WithFallback(&govalid.TagProvider{})
	v := govalid.MustNew(rules.New(), govalid.WithMetadataProvider(p))

	type tagged struct {
		Name string `json:"name" valid:"required"`
	}
	vs, err := v.Validate(context.Background(), &tagged{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs) != 1 || vs[0].Path != "name" {
		t.Fatalf("expected the fallback provider's metadata, got: %v", vs)
	}
}

func TestProvider_UnknownPropertyFails(t *testing.T) {
	doc := `
types:
  - name: mapping_test.labelRow
    constraints:
      - property: nope
        rule: required
`
	f, err := mapping.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := govalid.MustNew(rules.New(), govalid.WithMetadataProvider(mapping.NewProvider(f)))
	if _, err := v.Validate(context.Background(), &labelRow{}); err == nil || !strings.Contains(err.Error(), "mapping: type") {
		t.Fatalf("expected a metadata error for the unknown property, got: %v", err)
	}
}

func TestGroupSequences(t *testing.T) {
	f := &mapping.File{Sequences: map[string][]string{"checkout": {"default", "payment"}}}
	seqs := f.GroupSequences()
	members := seqs[govalid.Group("checkout")]
	if len(members) != 2 || members[0] != govalid.Default || members[1] != govalid.Group("payment") {
		t.Fatalf("unexpected conversion: %v", seqs)
	}
}
