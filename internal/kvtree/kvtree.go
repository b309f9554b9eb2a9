// Package kvtree is the in-memory shape of the externally supplied
// key/value tree format: nested ordered string-keyed mappings with
// string-valued leaves. It has no text I/O of its own; see
// internal/kvtext for a concrete YAML-backed codec.
package kvtree

// Value is either a nested *Map or a string leaf, never both.
type Value struct {
	child *Map
	leaf  string
	isMap bool
}

// Str wraps a string as a leaf Value.
func Str(s string) Value {
	return Value{leaf: s}
}

// Nested wraps a *Map as a mapping Value.
func Nested(m *Map) Value {
	return Value{child: m, isMap: true}
}

// IsMap reports whether v holds a nested mapping.
func (v Value) IsMap() bool { return v.isMap }

// AsString returns v's leaf string and true, or "" and false if v is
// a mapping.
func (v Value) AsString() (string, bool) {
	if v.isMap {
		return "", false
	}
	return v.leaf, true
}

// AsMap returns v's nested mapping and true, or nil and false if v is
// a leaf.
func (v Value) AsMap() (*Map, bool) {
	if !v.isMap {
		return nil, false
	}
	return v.child, true
}

// Map is an ordered string-keyed mapping: iteration order follows
// insertion order, matching the source format's OrderedDict shape.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty ordered mapping.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set inserts or overwrites the value at key, preserving key's
// original position if it already existed.
func (m *Map) Set(key string, v Value) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// SetString is a convenience for Set(key, Str(s)).
func (m *Map) SetString(key, s string) {
	m.Set(key, Str(s))
}

// SetMap is a convenience for Set(key, Nested(child)).
func (m *Map) SetMap(key string, child *Map) {
	m.Set(key, Nested(child))
}

// Get looks up key, reporting false if absent.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// GetString looks up key and requires it to be a leaf.
func (m *Map) GetString(key string) (string, bool) {
	v, ok := m.values[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetMap looks up key and requires it to be a mapping.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.values[key]
	if !ok {
		return nil, false
	}
	return v.AsMap()
}

// Keys returns the mapping's keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries in the mapping.
func (m *Map) Len() int {
	return len(m.keys)
}
