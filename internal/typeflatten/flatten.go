// Package typeflatten canonicalizes an astiface.TypeRef into
// (totalWidth, isSigned, flattened fields), per spec.md §4.2. Packed
// arrays recurse element-by-element, structs/unions iterate members in
// declaration order, and unpacked arrays / multi-dimensional packed arrays
// produce composite path strings like "sig.parts_hi[3][0]".
package typeflatten

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/diag"
)

// Field is one leaf bit-range, packed-MSB-first.
type Field struct {
	Path     string
	MSB, LSB int
	IsSigned bool
}

// Result is a flattened type: the canonical (width, signed) pair plus the
// ordered leaf fields spanning it.
type Result struct {
	TotalWidth int
	IsSigned   bool
	Fields     []Field
}

// Flattener caches per-(TypeRef, origin) analyses within one elaboration,
// per spec.md §9 ("A TypeFlattener that caches analyses per-type is local to
// one elaboration"). TypeRef values that are not comparable are not cached.
type Flattener struct {
	d     *diag.Diagnostics
	cache map[cacheKey]Result
}

type cacheKey struct {
	t      astiface.TypeRef
	origin string
}

// New creates a Flattener that appends diagnostics to d.
func New(d *diag.Diagnostics) *Flattener {
	return &Flattener{d: d, cache: make(map[cacheKey]Result)}
}

// Flatten canonicalizes t, using origin as the root path segment for any
// leaf fields (e.g. the declared signal name).
func (f *Flattener) Flatten(t astiface.TypeRef, origin string) Result {
	if t == nil || !reflect.ValueOf(t).Comparable() {
		return f.flatten(t, origin)
	}
	key := cacheKey{t: t, origin: origin}
	if cached, ok := f.cache[key]; ok {
		return cached
	}
	r := f.flatten(t, origin)
	f.cache[key] = r
	return r
}

func (f *Flattener) flatten(t astiface.TypeRef, origin string) Result {
	if t == nil {
		f.d.NotYetImplementedf(origin, "nil type, falling back to a 1-bit placeholder")
		return Result{TotalWidth: 1, Fields: []Field{{Path: origin, MSB: 0, LSB: 0}}}
	}

	switch t.Kind() {
	case astiface.KindScalar:
		return f.flattenScalar(t, origin)
	case astiface.KindPackedArray, astiface.KindUnpackedArray:
		return f.flattenArray(t, origin)
	case astiface.KindStruct:
		return f.flattenStruct(t, origin)
	case astiface.KindUnion:
		return f.flattenUnion(t, origin)
	default:
		f.d.NotYetImplementedf(origin, "unrecognized type kind %v, falling back to a single <origin> leaf", t.Kind())
		return Result{TotalWidth: 1, Fields: []Field{{Path: origin, MSB: 0, LSB: 0}}}
	}
}

func (f *Flattener) flattenScalar(t astiface.TypeRef, origin string) Result {
	width := t.Width()
	if width < 1 {
		f.d.Warnf(origin, "zero-width placeholder")
		width = 1
	}
	return Result{
		TotalWidth: width,
		IsSigned:   t.IsSigned(),
		Fields:     []Field{{Path: origin, MSB: width - 1, LSB: 0, IsSigned: t.IsSigned()}},
	}
}

// flattenArray recurses element-by-element. Packed-MSB-first ordering
// means the highest array index occupies the highest bits (SystemVerilog's
// `elem [N-1:0]` packed-array convention).
func (f *Flattener) flattenArray(t astiface.TypeRef, origin string) Result {
	n := t.Len()
	if n < 1 {
		f.d.Warnf(origin, "zero-length array coerced to a single element")
		n = 1
	}
	elemResult := f.flatten(t.Elem(), fmt.Sprintf("%s[0]", origin))
	elemWidth := elemResult.TotalWidth

	var fields []Field
	offset := elemWidth * n
	for idx := n - 1; idx >= 0; idx-- {
		offset -= elemWidth
		elemPath := fmt.Sprintf("%s[%d]", origin, idx)
		er := f.flatten(t.Elem(), elemPath)
		for _, ef := range er.Fields {
			fields = append(fields, Field{
				Path:     rebase(ef.Path, elemPath),
				MSB:      ef.MSB + offset,
				LSB:      ef.LSB + offset,
				IsSigned: ef.IsSigned,
			})
		}
	}
	return Result{TotalWidth: elemWidth * n, IsSigned: false, Fields: fields}
}

// rebase keeps a recursively-flattened child field's own path (it was
// already computed relative to elemPath), so this is a no-op pass-through
// kept as a named step for readability at call sites that may need to
// re-root paths in the future.
func rebase(childPath, _ string) string { return childPath }

// flattenStruct iterates members in declaration order; the first declared
// member occupies the highest bits, matching SystemVerilog packed-struct
// semantics.
func (f *Flattener) flattenStruct(t astiface.TypeRef, origin string) Result {
	members := t.Fields()
	if len(members) == 0 {
		f.d.Warnf(origin, "struct with no members, falling back to a 1-bit placeholder")
		return Result{TotalWidth: 1, Fields: []Field{{Path: origin, MSB: 0, LSB: 0}}}
	}

	type memberResult struct {
		r Result
	}
	results := make([]memberResult, len(members))
	total := 0
	for i, m := range members {
		mr := f.flatten(m.Type, origin+"."+m.Name)
		results[i] = memberResult{r: mr}
		total += mr.TotalWidth
	}

	var fields []Field
	offset := total
	for _, mr := range results {
		offset -= mr.r.TotalWidth
		for _, mf := range mr.r.Fields {
			fields = append(fields, Field{
				Path:     mf.Path,
				MSB:      mf.MSB + offset,
				LSB:      mf.LSB + offset,
				IsSigned: mf.IsSigned,
			})
		}
	}
	return Result{TotalWidth: total, Fields: fields}
}

// flattenUnion overlays every member on bits [width-1:0]; spec.md §4.2's
// "every bit appears in exactly one field" invariant only makes sense for
// disjoint (struct/array) layouts, so a union is canonicalized down to its
// single widest member — see DESIGN.md's Open Question decision.
func (f *Flattener) flattenUnion(t astiface.TypeRef, origin string) Result {
	members := t.Fields()
	if len(members) == 0 {
		f.d.Warnf(origin, "union with no members, falling back to a 1-bit placeholder")
		return Result{TotalWidth: 1, Fields: []Field{{Path: origin, MSB: 0, LSB: 0}}}
	}

	var widest Result
	widestName := ""
	for _, m := range members {
		mr := f.flatten(m.Type, origin+"."+m.Name)
		if mr.TotalWidth > widest.TotalWidth {
			widest = mr
			widestName = m.Name
		}
	}
	_ = widestName
	return widest
}
