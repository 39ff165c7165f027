package grh

import "fmt"

// AttrKind tags which alternative of Attr is populated.
type AttrKind int

const (
	AttrBool AttrKind = iota
	AttrInt64
	AttrString
	AttrBoolVec
	AttrInt64Vec
	AttrStringVec
)

// Attr is a tagged variant over the scalar/vector attribute types spec.md §3
// requires: {bool, int64, string} and their homogeneous vector forms. It is
// the only shape attribute values may take; constructors below are the sole
// entry points so a graph can never hold an attribute of an unsupported
// runtime type.
type Attr struct {
	kind     AttrKind
	b        bool
	i        int64
	s        string
	bVec     []bool
	iVec     []int64
	sVec     []string
}

func Bool(v bool) Attr        { return Attr{kind: AttrBool, b: v} }
func Int64(v int64) Attr      { return Attr{kind: AttrInt64, i: v} }
func String(v string) Attr    { return Attr{kind: AttrString, s: v} }
func BoolVec(v []bool) Attr   { return Attr{kind: AttrBoolVec, bVec: append([]bool(nil), v...)} }
func Int64Vec(v []int64) Attr { return Attr{kind: AttrInt64Vec, iVec: append([]int64(nil), v...)} }
func StringVec(v []string) Attr {
	return Attr{kind: AttrStringVec, sVec: append([]string(nil), v...)}
}

func (a Attr) Kind() AttrKind { return a.kind }

func (a Attr) Bool() (bool, bool)       { return a.b, a.kind == AttrBool }
func (a Attr) Int64() (int64, bool)     { return a.i, a.kind == AttrInt64 }
func (a Attr) String() (string, bool)   { return a.s, a.kind == AttrString }
func (a Attr) BoolVec() ([]bool, bool)  { return a.bVec, a.kind == AttrBoolVec }
func (a Attr) Int64Vec() ([]int64, bool) {
	return a.iVec, a.kind == AttrInt64Vec
}
func (a Attr) StringVec() ([]string, bool) {
	return a.sVec, a.kind == AttrStringVec
}

// GoString renders the attribute deterministically, used by the JSON debug
// dump (spec.md §6) and by diagnostic messages.
func (a Attr) GoString() string {
	switch a.kind {
	case AttrBool:
		return fmt.Sprintf("%v", a.b)
	case AttrInt64:
		return fmt.Sprintf("%d", a.i)
	case AttrString:
		return a.s
	case AttrBoolVec:
		return fmt.Sprintf("%v", a.bVec)
	case AttrInt64Vec:
		return fmt.Sprintf("%v", a.iVec)
	case AttrStringVec:
		return fmt.Sprintf("%v", a.sVec)
	default:
		return "<invalid attr>"
	}
}

// AttrMap is an insertion-order-preserving map from short attribute keys to
// Attr values, matching spec.md §3's "map from short string keys to typed
// scalars or vectors" with deterministic serialization.
type AttrMap struct {
	keys   []string
	values map[string]Attr
}

// NewAttrMap creates an empty AttrMap.
func NewAttrMap() *AttrMap {
	return &AttrMap{values: make(map[string]Attr)}
}

// Set inserts or overwrites key's value, preserving key's original
// insertion position if it already existed.
func (m *AttrMap) Set(key string, v Attr) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns key's value and whether it was present.
func (m *AttrMap) Get(key string) (Attr, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the attribute keys in insertion order.
func (m *AttrMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len reports the number of attributes set.
func (m *AttrMap) Len() int { return len(m.keys) }
