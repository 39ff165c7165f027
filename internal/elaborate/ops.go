package elaborate

import (
	"fmt"

	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/symtab"
)

// builder is a thin helper over a Graph that creates the small combinational
// operations the RHS converter and write-back memo assemble repeatedly,
// keeping each call site down to the GRH shape it wants rather than the
// three-call CreateOperation/AddOperand/AddResult dance.
type builder struct {
	g      *grh.Graph
	syms   *symtab.Interner
	tmpSeq int
}

func newBuilder(g *grh.Graph, syms *symtab.Interner) *builder {
	return &builder{g: g, syms: syms}
}

func (b *builder) freshSymbol(prefix string) grh.SymbolID {
	b.tmpSeq++
	return b.syms.Intern(fmt.Sprintf("__%s_%d", prefix, b.tmpSeq))
}

func (b *builder) newValue(prefix string, width int, signed bool, typ grh.ValueType) grh.ValueID {
	sym := b.freshSymbol(prefix)
	v, err := b.g.CreateValue(sym, width, signed, typ)
	if err != nil {
		// freshSymbol always mints a unique name, so this can only fail on a
		// width/type invariant the caller is responsible for upholding.
		panic(fmt.Sprintf("elaborate: newValue(%s): %v", prefix, err))
	}
	return v
}

// oneResult wires a freshly created operation's result to a single fresh
// Value and returns that Value.
func (b *builder) oneResult(kind grh.Kind, prefix string, width int, signed bool) (grh.OperationID, grh.ValueID) {
	op, err := b.g.CreateOperation(kind, grh.InvalidSymbol)
	if err != nil {
		panic(fmt.Sprintf("elaborate: CreateOperation(%v): %v", kind, err))
	}
	res := b.newValue(prefix, width, signed, grh.Logic)
	if err := b.g.AddResult(op, res); err != nil {
		panic(fmt.Sprintf("elaborate: AddResult: %v", err))
	}
	return op, res
}

func (b *builder) addOperand(op grh.OperationID, v grh.ValueID) {
	if err := b.g.AddOperand(op, v); err != nil {
		panic(fmt.Sprintf("elaborate: AddOperand: %v", err))
	}
}

// constZero builds a kConstant of the given width whose value is zero, used
// to zero-fill gaps in the write-back memo and as a default "no prior
// value" seed for signals read before they are ever written.
func (b *builder) constZero(width int) grh.ValueID {
	op, res := b.oneResult(grh.KindConstant, "zero", width, false)
	b.setAttr(op, "constValue", grh.Int64(0))
	return res
}

// setAttr sets an attribute on op, so ops.go doesn't need to repeat
// g.Operation(op).SetAttr(...) at every call site.
func (b *builder) setAttr(op grh.OperationID, key string, v grh.Attr) {
	o := b.g.Operation(op)
	if o == nil {
		panic("elaborate: setAttr on unknown operation")
	}
	o.SetAttr(key, v)
}

// constFromLiteral builds a kConstant preserving the literal's original text
// verbatim (spec.md §4.4, §9: never strip the radix prefix).
func (b *builder) constFromLiteral(literal string, width int, signed bool) grh.ValueID {
	op, res := b.oneResult(grh.KindConstant, "const", width, signed)
	b.setAttr(op, "constValue", grh.String(literal))
	return res
}

func (b *builder) binary(kind grh.Kind, lhs, rhs grh.ValueID, width int, signed bool) grh.ValueID {
	op, res := b.oneResult(kind, "t", width, signed)
	b.addOperand(op, lhs)
	b.addOperand(op, rhs)
	return res
}

func (b *builder) unary(kind grh.Kind, operand grh.ValueID, width int, signed bool) grh.ValueID {
	op, res := b.oneResult(kind, "t", width, signed)
	b.addOperand(op, operand)
	return res
}

func (b *builder) mux(cond, then, els grh.ValueID, width int, signed bool) grh.ValueID {
	op, res := b.oneResult(grh.KindMux, "mux", width, signed)
	b.addOperand(op, cond)
	b.addOperand(op, then)
	b.addOperand(op, els)
	return res
}

// sliceStatic extracts base[msb:lsb] relative to base's own zero-based
// numbering (base is itself already a properly sized Value).
func (b *builder) sliceStatic(base grh.ValueID, msb, lsb int) grh.ValueID {
	width := msb - lsb + 1
	op, res := b.oneResult(grh.KindSliceStatic, "slice", width, false)
	b.addOperand(op, base)
	b.setAttr(op, "sliceStart", grh.Int64(int64(msb)))
	b.setAttr(op, "sliceEnd", grh.Int64(int64(lsb)))
	return res
}

func (b *builder) sliceDynamic(base, start grh.ValueID, width int) grh.ValueID {
	op, res := b.oneResult(grh.KindSliceDynamic, "dslice", width, false)
	b.addOperand(op, base)
	b.addOperand(op, start)
	b.setAttr(op, "sliceWidth", grh.Int64(int64(width)))
	return res
}

func (b *builder) sliceArray(base, index grh.ValueID, elemWidth int, elemSigned bool) grh.ValueID {
	op, res := b.oneResult(grh.KindSliceArray, "aslice", elemWidth, elemSigned)
	b.addOperand(op, base)
	b.addOperand(op, index)
	return res
}

// concat builds a kConcat from parts given MSB-first (parts[0] is the most
// significant). A single part collapses to itself (spec.md §4.4: "unary
// concat collapses to the operand").
func (b *builder) concat(parts []grh.ValueID, width int) grh.ValueID {
	if len(parts) == 1 {
		return parts[0]
	}
	op, res := b.oneResult(grh.KindConcat, "concat", width, false)
	for _, p := range parts {
		b.addOperand(op, p)
	}
	return res
}

func (b *builder) replicate(count int, operand grh.ValueID, width int) grh.ValueID {
	op, res := b.oneResult(grh.KindReplicate, "rep", width, false)
	b.addOperand(op, operand)
	b.setAttr(op, "rep", grh.Int64(int64(count)))
	return res
}

// assign wires source as target's sole driver via a kAssign operation.
// target must not already have a definingOp.
func (b *builder) assign(target, source grh.ValueID) grh.OperationID {
	op, err := b.g.CreateOperation(grh.KindAssign, grh.InvalidSymbol)
	if err != nil {
		panic(fmt.Sprintf("elaborate: CreateOperation(Assign): %v", err))
	}
	b.addOperand(op, source)
	if err := b.g.AddResult(op, target); err != nil {
		panic(fmt.Sprintf("elaborate: assign AddResult: %v", err))
	}
	return op
}

// extend widens v to width (sign-extending when signed is true, otherwise
// zero-extending) or truncates it to width, whichever the widths call for.
// No-op when v is already exactly width wide.
func (b *builder) extend(v grh.ValueID, fromWidth, width int, signed bool) grh.ValueID {
	if fromWidth == width {
		return v
	}
	if fromWidth > width {
		if width == 1 {
			return b.sliceStatic(v, 0, 0)
		}
		return b.sliceStatic(v, width-1, 0)
	}
	padWidth := width - fromWidth
	var pad grh.ValueID
	if signed {
		pad = b.replicate(padWidth, b.sliceStatic(v, fromWidth-1, fromWidth-1), padWidth)
	} else {
		pad = b.constZero(padWidth)
	}
	return b.concat([]grh.ValueID{pad, v}, width)
}
