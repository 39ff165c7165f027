package astiface

// Expr is the closed set of expression-level AST nodes the RHS converter
// (spec.md §4.4) matches with a type switch — "a recursive variant match
// (no inheritance)" per spec.md §9's expression-visitor design note.
type Expr interface {
	exprNode()
}

// BinOp is a binary operator tag.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpXnor
	OpLogicAnd
	OpLogicOr
	OpShl
	OpLShr
	OpAShr
	OpEq
	OpNe
	OpCaseEq
	OpCaseNe
	OpWildcardEq
	OpWildcardNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// UnOp is a unary/reduction operator tag.
type UnOp int

const (
	OpNot UnOp = iota
	OpLogicNot
	OpReduceAnd
	OpReduceOr
	OpReduceXor
	OpReduceNor
	OpReduceNand
	OpReduceXnor
)

// IdentExpr references a declared signal by name; the Elaborator resolves
// it through the signal memo (spec.md §4.4).
type IdentExpr struct{ Name string }

func (IdentExpr) exprNode() {}

// ConstExpr is a literal, preserved verbatim including its original radix
// prefix (spec.md §4.4, §9's constValue open question): "10" (unsized) or
// "8'h0a" (sized).
type ConstExpr struct{ Literal string }

func (ConstExpr) exprNode() {}

// BinaryExpr is a two-operand operator application.
type BinaryExpr struct {
	Op          BinOp
	LHS, RHS    Expr
}

func (BinaryExpr) exprNode() {}

// UnaryExpr is a one-operand operator application (bitwise not, logical
// not, or a reduction).
type UnaryExpr struct {
	Op      UnOp
	Operand Expr
}

func (UnaryExpr) exprNode() {}

// CondExpr is `cond ? then : else`.
type CondExpr struct{ Cond, Then, Else Expr }

func (CondExpr) exprNode() {}

// ConcatExpr is `{e0, e1, ...}`, MSB-first.
type ConcatExpr struct{ Elems []Expr }

func (ConcatExpr) exprNode() {}

// ReplicateExpr is `{N{e}}`.
type ReplicateExpr struct {
	Count   int
	Operand Expr
}

func (ReplicateExpr) exprNode() {}

// SliceExpr is a static bit- or part-select `base[msb:lsb]` (msb==lsb for
// a bit-select).
type SliceExpr struct {
	Base     Expr
	MSB, LSB int
}

func (SliceExpr) exprNode() {}

// IndexedSliceExpr is an indexed part-select `base[start +: width]`.
type IndexedSliceExpr struct {
	Base  Expr
	Start Expr
	Width int
}

func (IndexedSliceExpr) exprNode() {}

// ArraySelectExpr is `base[index]` selecting one element of an unpacked
// array of packed elements.
type ArraySelectExpr struct {
	Base  Expr
	Index Expr
}

func (ArraySelectExpr) exprNode() {}

// HierRefExpr is a hierarchical (cross-module) reference, lowered to a
// transient kXMRRead until the xmr-resolve pass substitutes it (spec.md
// §4.4, §4.8).
type HierRefExpr struct{ Path string }

func (HierRefExpr) exprNode() {}

// DpiCallExpr is a call to a DPI-imported function appearing in RHS
// position (spec.md §4.6).
type DpiCallExpr struct {
	ImportName string
	Args       []Expr
}

func (DpiCallExpr) exprNode() {}

// SystemFuncCallExpr is a call to a builtin system function (e.g.
// `$signed`, `$bits`) appearing in RHS position.
type SystemFuncCallExpr struct {
	Name string
	Args []Expr
}

func (SystemFuncCallExpr) exprNode() {}
