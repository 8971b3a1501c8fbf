// Package rules provides the default constraint evaluator, backed by
// go-playground/validator's tag syntax: rule expressions such as
// "required,min=2" or "gt=0" are evaluated against single values, and each
// failed rule becomes one Violation with a translated message.
package rules

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	govalid "github.com/reoring/govalid"
	"github.com/reoring/govalid/i18n"
)

// Evaluator runs rule expressions with go-playground/validator. It is safe
// for concurrent use once constructed and registered.
type Evaluator struct {
	engine *validator.Validate
}

// Option configures an Evaluator under construction.
type Option func(*Evaluator)

// WithEngine replaces the playground engine, for callers that already carry
// a configured *validator.Validate.
func WithEngine(engine *validator.Validate) Option {
	return func(e *Evaluator) {
		if engine != nil {
			e.engine = engine
		}
	}
}

// New builds the default evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{engine: validator.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a custom rule usable in expressions alongside the built-in
// ones.
func (e *Evaluator) Register(tag string, fn validator.Func, callEvenIfNull ...bool) error {
	return e.engine.RegisterValidation(tag, fn, callEvenIfNull...)
}

// Evaluate runs one constraint's rule expression against the extracted
// value. Failed rules append Violations; a defect (malformed expression,
// undefined rule) is returned as an error, which aborts the traversal.
func (e *Evaluator) Evaluate(ctx context.Context, c govalid.Constraint, owner reflect.Type, value any, exec *govalid.Execution) (err error) {
	if c.Rule == "" {
		return nil
	}
	// the playground engine panics on undefined or malformed rules; surface
	// that as an evaluation error instead of unwinding through the traversal
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rules: rule %q at %s: %v", c.Rule, exec.Path(), r)
		}
	}()
	verr := e.engine.VarCtx(ctx, value, c.Rule)
	if verr == nil {
		return nil
	}
	var ferrs validator.ValidationErrors
	if !errors.As(verr, &ferrs) {
		return fmt.Errorf("rules: rule %q at %s: %w", c.Rule, exec.Path(), verr)
	}
	for _, fe := range ferrs {
		v := govalid.Violation{
			Code:    fe.Tag(),
			Message: i18n.T(fe.Tag(), map[string]string{"param": fe.Param(), "rule": fe.Tag()}),
			Rule:    c.Rule,
			Value:   value,
		}
		if fe.Param() != "" {
			v.Params = map[string]any{"param": fe.Param()}
		}
		exec.AddViolation(v)
	}
	return nil
}
