package emit_test

import (
	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/netlist"
	"github.com/sarchlab/grhc/internal/symtab"
)

// testGraph bundles a fresh single-graph Netlist with its symbol interner,
// so each emitter test can build whatever GRH shape it needs directly
// against the grh API without going through the Elaborator.
type testGraph struct {
	syms *symtab.Interner
	g    *grh.Graph
	nl   *netlist.Netlist
}

func newTestGraph(moduleName string) *testGraph {
	syms := symtab.New()
	modSym := syms.Intern(moduleName)
	g := grh.New(syms, modSym)
	nl := netlist.New(syms)
	nl.AddGraph(g)
	nl.MarkTop(modSym)
	return &testGraph{syms: syms, g: g, nl: nl}
}

func (t *testGraph) sym(name string) grh.SymbolID { return t.syms.Intern(name) }

func (t *testGraph) inputPort(name string, width int) grh.ValueID {
	v, err := t.g.AddInputPort(t.sym(name), width, false, grh.Logic)
	if err != nil {
		panic(err)
	}
	return v
}

func (t *testGraph) outputPort(name string, width int) grh.ValueID {
	v, err := t.g.AddOutputPort(t.sym(name), width, false, grh.Logic)
	if err != nil {
		panic(err)
	}
	return v
}

func (t *testGraph) constant(name string, width int, literal string) grh.ValueID {
	op, err := t.g.CreateOperation(grh.KindConstant, grh.InvalidSymbol)
	if err != nil {
		panic(err)
	}
	val, err := t.g.CreateValue(t.sym(name), width, false, grh.Logic)
	if err != nil {
		panic(err)
	}
	if err := t.g.AddResult(op, val); err != nil {
		panic(err)
	}
	t.g.Operation(op).SetAttr("constValue", grh.String(literal))
	return val
}

func (t *testGraph) binary(kind grh.Kind, name string, lhs, rhs grh.ValueID, width int) grh.ValueID {
	op, err := t.g.CreateOperation(kind, grh.InvalidSymbol)
	if err != nil {
		panic(err)
	}
	if err := t.g.AddOperand(op, lhs); err != nil {
		panic(err)
	}
	if err := t.g.AddOperand(op, rhs); err != nil {
		panic(err)
	}
	val, err := t.g.CreateValue(t.sym(name), width, false, grh.Logic)
	if err != nil {
		panic(err)
	}
	if err := t.g.AddResult(op, val); err != nil {
		panic(err)
	}
	return val
}

func (t *testGraph) assign(name string, operand grh.ValueID, width int) grh.ValueID {
	op, err := t.g.CreateOperation(grh.KindAssign, grh.InvalidSymbol)
	if err != nil {
		panic(err)
	}
	if err := t.g.AddOperand(op, operand); err != nil {
		panic(err)
	}
	val, err := t.g.CreateValue(t.sym(name), width, false, grh.Logic)
	if err != nil {
		panic(err)
	}
	if err := t.g.AddResult(op, val); err != nil {
		panic(err)
	}
	return val
}

func (t *testGraph) redirectResult(v grh.ValueID, port grh.ValueID) {
	val := t.g.Value(v)
	if val == nil || !val.HasDefiningOp() {
		panic("redirectResult: value has no defining op")
	}
	if err := t.g.ReplaceResult(val.DefiningOp(), 0, port); err != nil {
		panic(err)
	}
}

// registerBackingPort builds a kRegister declaration whose Q value is an
// already-existing Value (typically an output port), mirroring
// getOrCreateSequential's in-place upgrade of a bare output-port net entry
// into a register — no second Value is minted under the same name.
func (t *testGraph) registerBackingPort(name string, width int, q grh.ValueID) grh.OperationID {
	op, err := t.g.CreateOperation(grh.KindRegister, t.sym("reg_"+name))
	if err != nil {
		panic(err)
	}
	t.g.Operation(op).SetAttr("width", grh.Int64(int64(width)))
	t.g.Operation(op).SetAttr("isSigned", grh.Bool(false))
	t.g.Operation(op).SetAttr("regSymbol", grh.String(t.syms.Text(t.g.Operation(op).Symbol())))
	t.g.Operation(op).SetAttr("qSymbol", grh.String(t.syms.Text(t.g.Value(q).Symbol())))
	return op
}

func (t *testGraph) registerWritePort(name string, regOp grh.OperationID, updateCond, next, mask grh.ValueID, edgeSig grh.ValueID, polarity string) grh.OperationID {
	op, err := t.g.CreateOperation(grh.KindRegisterWritePort, t.sym("regwr_"+name))
	if err != nil {
		panic(err)
	}
	for _, v := range []grh.ValueID{updateCond, next, mask, edgeSig} {
		if err := t.g.AddOperand(op, v); err != nil {
			panic(err)
		}
	}
	o := t.g.Operation(op)
	o.SetAttr("eventEdge", grh.StringVec([]string{polarity}))
	o.SetAttr("regSymbol", grh.String(t.syms.Text(t.g.Operation(regOp).Symbol())))
	return op
}
