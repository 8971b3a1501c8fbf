package govalid

import (
	"reflect"
	"strings"
)

// ResolvePropertyName applies the repository-wide rule to resolve a struct
// field's external property name, used for violation paths and path-targeted
// validation.
// Priority: json tag name > field name; "-" disables the field.
func ResolvePropertyName(sf reflect.StructField) string {
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// indirectType strips pointer layers from a type. Returns nil for nil.
func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// indirectValue strips pointer and interface layers from a value. The zero
// Value passes through, as does a nil pointer (callers check validity).
func indirectValue(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return rv
		}
		rv = rv.Elem()
	}
	return rv
}

// isNilAny reports whether v is nil, either as an untyped nil interface or
// as a nil value of a reference kind.
func isNilAny(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// identKey identifies an object for processed-set tracking. ptr is the
// referent address; aux disambiguates slices sharing a backing array.
type identKey struct {
	ptr uintptr
	aux int
}

// identityOf derives an identity key for reference-kind values. Value kinds
// report ok=false: they cannot form reference cycles, and a copied value has
// no stable address to key on.
func identityOf(v any) (identKey, bool) {
	if v == nil {
		return identKey{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if rv.IsNil() {
			return identKey{}, false
		}
		return identKey{ptr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.IsNil() {
			return identKey{}, false
		}
		return identKey{ptr: rv.Pointer(), aux: rv.Len()}, true
	}
	return identKey{}, false
}

// elementTypeOf returns the declared element type reached by indexing into
// t: the value type for maps, the element type for slices and arrays, nil
// for anything else.
func elementTypeOf(t reflect.Type) reflect.Type {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Map:
		return t.Elem()
	case reflect.Slice, reflect.Array:
		return t.Elem()
	}
	return nil
}
