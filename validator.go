package govalid

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Validator orchestrates group-aware validation of object graphs. It is
// immutable after construction and safe for concurrent use; every call gets
// its own traversal state. The only shared mutable state is the type
// metadata cache.
type Validator struct {
	eval      Evaluator
	provider  MetadataProvider
	sequences map[Group][]Group
	metadata  sync.Map // reflect.Type -> *TypeMetadata
}

// Option configures a Validator under construction.
type Option func(*Validator)

// WithMetadataProvider replaces the default TagProvider as the source of
// constraint metadata.
func WithMetadataProvider(p MetadataProvider) Option {
	return func(v *Validator) { v.provider = p }
}

// WithSequence registers a group sequence: requesting name validates the
// members in order, stopping after the first member group that records a
// violation.
func WithSequence(name Group, members ...Group) Option {
	return func(v *Validator) { v.sequences[name] = members }
}

// WithSequences registers several sequences at once.
func WithSequences(seqs map[Group][]Group) Option {
	return func(v *Validator) {
		for name, members := range seqs {
			v.sequences[name] = members
		}
	}
}

// New builds a Validator around the given constraint evaluator. Without a
// WithMetadataProvider option, constraints are discovered from struct tags
// (see TagProvider).
func New(eval Evaluator, opts ...Option) (*Validator, error) {
	if eval == nil {
		return nil, ErrNilEvaluator
	}
	v := &Validator{eval: eval, sequences: map[Group][]Group{}}
	for _, opt := range opts {
		opt(v)
	}
	if v.provider == nil {
		v.provider = &TagProvider{}
	}
	return v, nil
}

// MustNew is New, panicking on error. Intended for wiring at program start.
func MustNew(eval Evaluator, opts ...Option) *Validator {
	v, err := New(eval, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate walks the whole object graph reachable from root through
// cascade-eligible members, enforcing the requested groups in plan order.
// No groups means Default. The returned set is deduplicated; a non-nil
// error means the request itself failed and no violation set was produced.
func (v *Validator) Validate(ctx context.Context, root any, groups ...Group) (Violations, error) {
	if isNilAny(root) {
		return nil, fmt.Errorf("validate: %w", ErrNilRoot)
	}
	chain, err := v.chainFor(groups)
	if err != nil {
		return nil, err
	}
	exec := newExecution(root)
	if err := v.validateInChain(ctx, exec, chain); err != nil {
		return nil, err
	}
	return dedupeViolations(exec.found), nil
}

// ValidateProperty validates the single property named by a dotted/indexed
// path expression against root's current state, under the same group plan
// and short-circuit policy as Validate, without cascading past the resolved
// leaf. Paths that resolve to no binding yield an empty set.
func (v *Validator) ValidateProperty(ctx context.Context, root any, path string, groups ...Group) (Violations, error) {
	if isNilAny(root) {
		return nil, fmt.Errorf("validate property: %w", ErrNilRoot)
	}
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	chain, err := v.chainFor(groups)
	if err != nil {
		return nil, err
	}
	rootType := indirectType(reflect.TypeOf(root))
	tgt, err := v.resolveTarget(rootType, root, true, segs)
	if err != nil {
		return nil, err
	}
	if len(tgt.constraints) == 0 || !tgt.hostOK || isNilAny(tgt.host) {
		return Violations{}, nil
	}
	exec := newTargetExecution(root, rootType, path)
	err = v.validateTarget(ctx, exec, chain, tgt, func(c Constraint) (any, error) {
		return c.ValueFrom(tgt.host)
	})
	if err != nil {
		return nil, err
	}
	return dedupeViolations(exec.found), nil
}

// ValidateValue validates a standalone candidate value as if it were stored
// at the given property path of rootType, without any containing instance.
func (v *Validator) ValidateValue(ctx context.Context, rootType reflect.Type, path string, value any, groups ...Group) (Violations, error) {
	if rootType == nil {
		return nil, fmt.Errorf("validate value: %w", ErrNilType)
	}
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	chain, err := v.chainFor(groups)
	if err != nil {
		return nil, err
	}
	tgt, err := v.resolveTarget(indirectType(rootType), nil, false, segs)
	if err != nil {
		return nil, err
	}
	if len(tgt.constraints) == 0 {
		return Violations{}, nil
	}
	exec := newTargetExecution(nil, indirectType(rootType), path)
	err = v.validateTarget(ctx, exec, chain, tgt, func(Constraint) (any, error) {
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return dedupeViolations(exec.found), nil
}

// ValidateValueFor is ValidateValue with the root type taken from T.
func ValidateValueFor[T any](ctx context.Context, v *Validator, path string, value any, groups ...Group) (Violations, error) {
	return v.ValidateValue(ctx, reflect.TypeOf((*T)(nil)).Elem(), path, value, groups...)
}

// GroupPlan resolves the requested groups into the execution plan Validate
// would follow, for introspection and tooling. No groups means Default.
func (v *Validator) GroupPlan(groups ...Group) ([]PlannedGroup, error) {
	chain, err := v.chainFor(groups)
	if err != nil {
		return nil, err
	}
	out := make([]PlannedGroup, 0, len(chain.entries))
	for _, e := range chain.entries {
		out = append(out, PlannedGroup{Group: e.group, Sequence: e.sequence})
	}
	return out, nil
}

func (v *Validator) chainFor(groups []Group) (*groupChain, error) {
	if len(groups) == 0 {
		groups = []Group{Default}
	}
	return expandGroups(v.sequences, groups)
}

// metadataFor returns the cached metadata for a type, asking the provider on
// first sight. Racing goroutines may both compute; the first store wins and
// the redundant result is discarded, which is safe because providers are
// deterministic and metadata is immutable.
func (v *Validator) metadataFor(t reflect.Type) (*TypeMetadata, error) {
	if t == nil {
		return nil, ErrNilType
	}
	key := indirectType(t)
	if cached, ok := v.metadata.Load(key); ok {
		return cached.(*TypeMetadata), nil
	}
	meta, err := v.provider.MetadataFor(key)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = &TypeMetadata{Type: key}
	}
	actual, _ := v.metadata.LoadOrStore(key, meta)
	return actual.(*TypeMetadata), nil
}
