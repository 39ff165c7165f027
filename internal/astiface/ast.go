// Package astiface is the narrow contract the Elaborator consumes. The
// SystemVerilog front end (lexer/parser/name-binding/type-checking) is out
// of scope for this core (spec.md §1); astiface is the interface surface
// that front end is expected to hand an already-elaborated design through,
// grounded on how the teacher's api.Driver interface isolates itself from
// the concerns it doesn't own (api/driver.go).
package astiface

// Unit is one compilation unit: an ordered list of modules, in the order
// they should be elaborated (instances typically precede their users, but
// the Elaborator does not require that).
type Unit interface {
	Modules() []Module
}

// Direction is a port or DPI formal's direction.
type Direction int

const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

// ParamBinding is one elaborated parameter's final value, already resolved
// by the front end's elaboration (spec.md §4.7: "parameters sorted by
// declaration order, value rendered as a decimal integer or the literal
// text").
type ParamBinding struct {
	Name  string
	Value string
}

// PortDecl is one module-boundary port in declaration order.
type PortDecl struct {
	Name      string
	Direction Direction
	Type      TypeRef
}

// Module is one elaborated module body (already parametrically specialized
// by the front end if it came from a generate/parameterized instantiation
// — the Elaborator additionally tracks specialization identity itself,
// spec.md §4.7, in case the front end hands back a shared template).
type Module interface {
	Name() string
	Params() []ParamBinding
	Ports() []PortDecl
	Items() []Item
}

// Item is one top-level module-body construct. The closed set is
// ContinuousAssign, ProceduralBlock, InstanceItem, DpiImportItem.
type Item interface {
	itemNode()
}

// ContinuousAssign is `assign LHS = RHS;`.
type ContinuousAssign struct {
	LHS Expr
	RHS Expr
}

func (ContinuousAssign) itemNode() {}

// ProcKind distinguishes the procedural-block shapes: the three always
// forms spec.md §4.5 lowers differently, plus initial and final.
type ProcKind int

const (
	ProcAlwaysComb ProcKind = iota
	ProcAlwaysLatch
	ProcAlwaysFF
	ProcInitial
	ProcFinal
)

// EdgeKind is an edge-sensitivity qualifier in a block's event control.
type EdgeKind int

const (
	EdgeNone EdgeKind = iota // level-sensitive (always_latch, always @*)
	EdgePos
	EdgeNeg
)

// EdgeSignal is one (edge, signal) pair in a block's event control; the
// ordered list of these is the block's "seq key" (spec.md §4.5, GLOSSARY).
type EdgeSignal struct {
	Edge   EdgeKind
	Signal Expr
	// AsyncReset marks this edge as an asynchronous-reset edge rather than
	// a clock edge, letting the procedural lowerer identify the reset
	// inference shape (spec.md §4.5).
	AsyncReset bool
}

// ProceduralBlock is one `always`/`always_comb`/`always_latch`/`initial`/
// `final` block.
type ProceduralBlock struct {
	Kind        ProcKind
	Sensitivity []EdgeSignal
	Body        []Stmt
}

func (ProceduralBlock) itemNode() {}

// PortConn is one named port connection at an instantiation site.
type PortConn struct {
	FormalName string
	Actual     Expr
}

// InstanceItem is one module instantiation.
type InstanceItem struct {
	InstanceName string
	ModuleName   string
	Params       []ParamBinding
	PortConns    []PortConn
}

func (InstanceItem) itemNode() {}

// DpiArg is one DPI import formal.
type DpiArg struct {
	Name      string
	Direction Direction
	Type      TypeRef
}

// DpiImportItem is one `import "DPI-C" function ...` declaration.
type DpiImportItem struct {
	Name    string
	Args    []DpiArg
	HasReturn bool
	ReturnType TypeRef
}

func (DpiImportItem) itemNode() {}

// TypeRef is the opaque type handle the type flattener (spec.md §4.2)
// knows how to walk: scalar bit vectors, packed arrays (recursing
// element-by-element), unpacked arrays, and structs/unions (iterating
// members in declaration order).
type TypeRef interface {
	Kind() TypeKind
	// Width is the bit width of a Scalar leaf; 0 for composite kinds.
	Width() int
	IsSigned() bool
	// Elem is the element type of a PackedArray/UnpackedArray.
	Elem() TypeRef
	// Len is the array length of a PackedArray/UnpackedArray.
	Len() int
	// Fields enumerates a Struct/Union's members in declaration order.
	Fields() []FieldDecl
}

// TypeKind is the closed set of type shapes the flattener recognizes.
type TypeKind int

const (
	KindScalar TypeKind = iota
	KindPackedArray
	KindUnpackedArray
	KindStruct
	KindUnion
)

// FieldDecl is one struct/union member.
type FieldDecl struct {
	Name string
	Type TypeRef
}
