package typeflatten

import (
	"testing"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/astiface/astfixture"
	"github.com/sarchlab/grhc/internal/diag"
)

func checkContiguous(t *testing.T, r Result) {
	t.Helper()
	if r.TotalWidth < 1 {
		t.Fatalf("total width must be >= 1, got %d", r.TotalWidth)
	}
	if len(r.Fields) == 0 {
		t.Fatalf("expected at least one field")
	}
	seen := make([]bool, r.TotalWidth)
	highest := -1
	for _, f := range r.Fields {
		if f.MSB < f.LSB {
			t.Fatalf("field %q has msb %d < lsb %d", f.Path, f.MSB, f.LSB)
		}
		if f.MSB > highest {
			highest = f.MSB
		}
		for b := f.LSB; b <= f.MSB; b++ {
			if seen[b] {
				t.Fatalf("bit %d covered by more than one field", b)
			}
			seen[b] = true
		}
	}
	if highest != r.TotalWidth-1 {
		t.Fatalf("highest msb %d != totalWidth-1 %d", highest, r.TotalWidth-1)
	}
	for b, ok := range seen {
		if !ok {
			t.Fatalf("bit %d not covered by any field", b)
		}
	}
}

func TestFlattenScalar(t *testing.T) {
	d := diag.New()
	f := New(d)
	r := f.Flatten(astfixture.Scalar{W: 8, Signed: true}, "sig")
	if r.TotalWidth != 8 || !r.IsSigned {
		t.Fatalf("got %+v", r)
	}
	checkContiguous(t, r)
	if r.Fields[0].Path != "sig" {
		t.Fatalf("expected leaf path 'sig', got %q", r.Fields[0].Path)
	}
}

func TestFlattenScalarZeroWidthCoerced(t *testing.T) {
	d := diag.New()
	f := New(d)
	r := f.Flatten(astfixture.Scalar{W: 0}, "sig")
	if r.TotalWidth != 1 {
		t.Fatalf("expected width coerced to 1, got %d", r.TotalWidth)
	}
	if !d.HasErrors() && d.Len() == 0 {
		t.Fatalf("expected a diagnostic for the zero-width coercion")
	}
}

func TestFlattenPackedArray(t *testing.T) {
	d := diag.New()
	f := New(d)
	arr := astfixture.PackedArray{ElemType: astfixture.Scalar{W: 4}, N: 3}
	r := f.Flatten(arr, "sig")
	if r.TotalWidth != 12 {
		t.Fatalf("expected width 12, got %d", r.TotalWidth)
	}
	checkContiguous(t, r)

	// Highest index occupies the highest bits (packed-MSB-first).
	top := r.Fields[0]
	if top.Path != "sig[2]" || top.MSB != 11 || top.LSB != 8 {
		t.Fatalf("expected sig[2] at [11:8], got %+v", top)
	}
	bottom := r.Fields[len(r.Fields)-1]
	if bottom.Path != "sig[0]" || bottom.MSB != 3 || bottom.LSB != 0 {
		t.Fatalf("expected sig[0] at [3:0], got %+v", bottom)
	}
}

func TestFlattenStructFirstMemberAtMSB(t *testing.T) {
	d := diag.New()
	f := New(d)
	st := astfixture.Struct{Members: []astiface.FieldDecl{
		{Name: "hi", Type: astfixture.Scalar{W: 4}},
		{Name: "lo", Type: astfixture.Scalar{W: 4}},
	}}
	r := f.Flatten(st, "sig")
	if r.TotalWidth != 8 {
		t.Fatalf("expected width 8, got %d", r.TotalWidth)
	}
	checkContiguous(t, r)

	if r.Fields[0].Path != "sig.hi" || r.Fields[0].MSB != 7 || r.Fields[0].LSB != 4 {
		t.Fatalf("expected sig.hi at [7:4], got %+v", r.Fields[0])
	}
	if r.Fields[1].Path != "sig.lo" || r.Fields[1].MSB != 3 || r.Fields[1].LSB != 0 {
		t.Fatalf("expected sig.lo at [3:0], got %+v", r.Fields[1])
	}
}

func TestFlattenNestedArrayOfStructs(t *testing.T) {
	d := diag.New()
	f := New(d)
	elem := astfixture.Struct{Members: []astiface.FieldDecl{
		{Name: "a", Type: astfixture.Scalar{W: 2}},
		{Name: "b", Type: astfixture.Scalar{W: 2}},
	}}
	arr := astfixture.PackedArray{ElemType: elem, N: 2}
	r := f.Flatten(arr, "sig")
	if r.TotalWidth != 8 {
		t.Fatalf("expected width 8, got %d", r.TotalWidth)
	}
	checkContiguous(t, r)

	if r.Fields[0].Path != "sig[1].a" {
		t.Fatalf("expected composite path sig[1].a, got %q", r.Fields[0].Path)
	}
}

func TestFlattenUnionPicksWidestMember(t *testing.T) {
	d := diag.New()
	f := New(d)
	un := astfixture.Struct{Union: true, Members: []astiface.FieldDecl{
		{Name: "byte", Type: astfixture.Scalar{W: 8}},
		{Name: "word", Type: astfixture.Scalar{W: 16}},
	}}
	r := f.Flatten(un, "sig")
	if r.TotalWidth != 16 {
		t.Fatalf("expected widest member width 16, got %d", r.TotalWidth)
	}
	checkContiguous(t, r)
}

func TestFlattenUnrecognizedKindFallsBackToOriginLeaf(t *testing.T) {
	d := diag.New()
	f := New(d)
	r := f.Flatten(unknownType{}, "sig")
	if r.TotalWidth != 1 || len(r.Fields) != 1 || r.Fields[0].Path != "sig" {
		t.Fatalf("expected single <origin> leaf fallback, got %+v", r)
	}
	if d.Len() == 0 {
		t.Fatalf("expected a NotYetImplemented diagnostic")
	}
}

func TestFlattenCachesPerType(t *testing.T) {
	d := diag.New()
	f := New(d)
	ty := astfixture.Scalar{W: 4}
	r1 := f.Flatten(ty, "sig")
	r2 := f.Flatten(ty, "sig")
	if r1.TotalWidth != r2.TotalWidth {
		t.Fatalf("expected stable cached result")
	}
}

// unknownType implements astiface.TypeRef with a Kind outside the closed
// set the flattener recognizes, exercising the NotYetImplemented fallback.
type unknownType struct{}

func (unknownType) Kind() astiface.TypeKind      { return astiface.TypeKind(99) }
func (unknownType) Width() int                   { return 0 }
func (unknownType) IsSigned() bool               { return false }
func (unknownType) Elem() astiface.TypeRef       { return nil }
func (unknownType) Len() int                     { return 0 }
func (unknownType) Fields() []astiface.FieldDecl { return nil }
