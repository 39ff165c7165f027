// Package astfixture provides minimal concrete implementations of
// astiface's interfaces, for building test inputs without a real front
// end. Production code never imports this package; it exists purely as
// elaborator test scaffolding, the way the teacher's mock*_test.go files
// exist purely to drive api.Driver tests without a real akita simulation.
package astfixture

import "github.com/sarchlab/grhc/internal/astiface"

// Unit is a plain-slice astiface.Unit.
type Unit struct {
	Mods []astiface.Module
}

func (u Unit) Modules() []astiface.Module { return u.Mods }

// Module is a plain-struct astiface.Module.
type Module struct {
	ModName   string
	ModParams []astiface.ParamBinding
	ModPorts  []astiface.PortDecl
	ModItems  []astiface.Item
}

func (m Module) Name() string                      { return m.ModName }
func (m Module) Params() []astiface.ParamBinding    { return m.ModParams }
func (m Module) Ports() []astiface.PortDecl         { return m.ModPorts }
func (m Module) Items() []astiface.Item             { return m.ModItems }

// Scalar is a flat logic/bit TypeRef leaf.
type Scalar struct {
	W        int
	Signed   bool
}

func (s Scalar) Kind() astiface.TypeKind       { return astiface.KindScalar }
func (s Scalar) Width() int                    { return s.W }
func (s Scalar) IsSigned() bool                { return s.Signed }
func (s Scalar) Elem() astiface.TypeRef        { return nil }
func (s Scalar) Len() int                      { return 0 }
func (s Scalar) Fields() []astiface.FieldDecl  { return nil }

// Bit is a 1-bit unsigned scalar, the common case.
var Bit = Scalar{W: 1}

// PackedArray is `ElemType[N-1:0]` (or `[N]` for unpacked, selected by
// kind).
type PackedArray struct {
	ElemType astiface.TypeRef
	N        int
	Unpacked bool
}

func (p PackedArray) Kind() astiface.TypeKind {
	if p.Unpacked {
		return astiface.KindUnpackedArray
	}
	return astiface.KindPackedArray
}
func (p PackedArray) Width() int                   { return 0 }
func (p PackedArray) IsSigned() bool                { return false }
func (p PackedArray) Elem() astiface.TypeRef        { return p.ElemType }
func (p PackedArray) Len() int                      { return p.N }
func (p PackedArray) Fields() []astiface.FieldDecl  { return nil }

// Struct is a packed struct/union TypeRef.
type Struct struct {
	Members []astiface.FieldDecl
	Union   bool
}

func (s Struct) Kind() astiface.TypeKind {
	if s.Union {
		return astiface.KindUnion
	}
	return astiface.KindStruct
}
func (s Struct) Width() int                   { return 0 }
func (s Struct) IsSigned() bool                { return false }
func (s Struct) Elem() astiface.TypeRef        { return nil }
func (s Struct) Len() int                      { return 0 }
func (s Struct) Fields() []astiface.FieldDecl  { return s.Members }
