package meta

import "github.com/chicogong/histreamer/foundation"

// Meta is a mapping from Tag to a runtime-typed value describing a stream
// or frame (spec.md §3). Meta values are cloneable and immutable once
// attached to a stream description — Clone() is the only supported way to
// derive a modified copy.
type Meta struct {
	items map[Tag]foundation.Value
}

// New returns an empty Meta.
func New() *Meta {
	return &Meta{items: make(map[Tag]foundation.Value)}
}

// Get[T] returns the value stored under tag iff the stored dynamic type is
// exactly T; otherwise it reports absent (Get itself never panics or
// coerces types).
func Get[T any](m *Meta, tag Tag) (T, bool) {
	var zero T
	v, ok := m.items[tag]
	if !ok {
		return zero, false
	}
	return foundation.ValueAs[T](v)
}

// Set records v's dynamic type alongside the value under tag.
func Set[T any](m *Meta, tag Tag, v T) {
	m.items[tag] = foundation.NewValue(v)
}

// Has reports whether tag is present in m, regardless of its type.
func (m *Meta) Has(tag Tag) bool {
	_, ok := m.items[tag]
	return ok
}

// Remove deletes tag from m, reporting whether it was present.
func (m *Meta) Remove(tag Tag) bool {
	if _, ok := m.items[tag]; !ok {
		return false
	}
	delete(m.items, tag)
	return true
}

// Empty reports whether m has no entries.
func (m *Meta) Empty() bool { return len(m.items) == 0 }

// Update merges other over m key-wise: last writer wins per key.
func (m *Meta) Update(other *Meta) {
	for k, v := range other.items {
		m.items[k] = v
	}
}

// Clone returns a shallow copy: safe because Value's contents are treated
// as immutable once attached (spec.md §3).
func (m *Meta) Clone() *Meta {
	out := New()
	for k, v := range m.items {
		out.items[k] = v
	}
	return out
}

// Mime is a convenience accessor for the ubiquitous MIME tag.
func (m *Meta) Mime() (string, bool) {
	return Get[string](m, TagMime)
}
