package middleware

import (
	"context"

	govalid "github.com/reoring/govalid"
)

// ctxKeyValidated is a typed context key for storing a validated T.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyValidated[T any] struct{}

// ContextWithValidated attaches a validated value to the context.
func ContextWithValidated[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyValidated[T]{}, v)
}

// ValidatedFromContext retrieves a validated T from context.
func ValidatedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyValidated[T]{}).(T)
	return v, ok
}

// ErrorPayload shapes Violations for JSON responses.
func ErrorPayload(vs govalid.Violations) map[string]any {
	return map[string]any{"violations": vs}
}
