package foundation

import "reflect"

// Value is a closed, runtime-typed value bag modeled on the OpenHarmony
// Plugin::Any: the dynamic type is recorded at Set time and Get fails
// (rather than panics or silently coerces) on a type mismatch. Meta and
// Capability both store their per-tag values as Value.
//
// Unlike a raw `any`, Value exposes Type() so callers can discriminate
// without a type switch, mirroring Meta::GetData<T>'s typeid comparison.
type Value struct {
	v reflect.Type
	x any
}

// NewValue records v's dynamic type alongside the value itself.
func NewValue(x any) Value {
	return Value{v: reflect.TypeOf(x), x: x}
}

// Type returns the reflect.Type recorded at construction, or nil for the
// zero Value.
func (v Value) Type() reflect.Type { return v.v }

// Raw returns the underlying value without a type check.
func (v Value) Raw() any { return v.x }

// Valid reports whether the Value was constructed via NewValue.
func (v Value) Valid() bool { return v.v != nil }

// ValueAs extracts a typed value from v, succeeding only if the stored
// dynamic type is exactly T (no numeric widening, no interface coercion) —
// the same fail-closed contract as Meta::GetData<T>.
func ValueAs[T any](v Value) (T, bool) {
	var zero T
	if !v.Valid() {
		return zero, false
	}
	t, ok := v.x.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
