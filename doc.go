package govalid

// Package govalid provides:
//
// - Group-aware validation of object graphs (Validate/ValidateProperty/ValidateValue)
// - Group sequences with fail-fast short-circuiting between composed groups
// - Cascading into nested structs, slices, arrays, and maps with indexed
//   property paths (for example: orders[2].lineItems[id].amount)
// - A stable error model via Violations (path, code, message, group)
//
// Design policy:
// - Keep the orchestration engine and its collaborator contracts in the root
//   package; plug in discovery and evaluation through MetadataProvider and
//   Evaluator.
// - Place the default rule engine under rules/, declarative mappings under
//   mapping/, message catalogs under i18n/, and the CLI under cmd/govalid.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	v, err := govalid.New(rules.New(), govalid.WithSequence("checkout", "basic", "payment"))
//	vs, err := v.Validate(ctx, order)
//	vs, err = v.Validate(ctx, order, "checkout")
//	vs, err = v.ValidateProperty(ctx, order, "items[0].sku")
