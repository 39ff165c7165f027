package pass_test

import (
	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/netlist"
	"github.com/sarchlab/grhc/internal/symtab"
)

// testGraph bundles a fresh single-graph Netlist with its symbol interner,
// so each pass test can build whatever operation shape it needs directly
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

func (t *testGraph) constant(name string, width int, literal string) (grh.OperationID, grh.ValueID) {
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
	return op, val
}

func (t *testGraph) outputPort(name string, width int) grh.ValueID {
	v, err := t.g.AddOutputPort(t.sym(name), width, false, grh.Logic)
	if err != nil {
		panic(err)
	}
	return v
}

func (t *testGraph) assign(name string, operand grh.ValueID, width int) (grh.OperationID, grh.ValueID) {
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
	return op, val
}

// redirectResult rewires an already-built operation to produce port
// directly, used to set up "this op drives an output port" test fixtures
// without duplicating the Elaborator's own write-back plumbing.
func (t *testGraph) redirectResult(op grh.OperationID, port grh.ValueID) {
	if err := t.g.ReplaceResult(op, 0, port); err != nil {
		panic(err)
	}
}
