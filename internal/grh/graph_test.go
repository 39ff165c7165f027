package grh_test

import (
	"testing"

	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/symtab"
)

func newTestGraph(t *testing.T) (*grh.Graph, *symtab.Interner) {
	t.Helper()
	syms := symtab.New()
	g := grh.New(syms, syms.Intern("top"))
	return g, syms
}

func TestCreateValueRejectsDuplicateSymbol(t *testing.T) {
	g, syms := newTestGraph(t)
	sym := syms.Intern("a")
	if _, err := g.CreateValue(sym, 8, false, grh.Logic); err != nil {
		t.Fatalf("first CreateValue failed: %v", err)
	}
	if _, err := g.CreateValue(sym, 8, false, grh.Logic); err == nil {
		t.Fatalf("expected duplicate symbol to be rejected")
	}
}

func TestZeroWidthCoercedToOne(t *testing.T) {
	g, syms := newTestGraph(t)
	id, err := g.CreateValue(syms.Intern("z"), 0, false, grh.Logic)
	if err != nil {
		t.Fatalf("CreateValue failed: %v", err)
	}
	if g.Value(id).Width() != 1 {
		t.Fatalf("zero width should coerce to 1, got %d", g.Value(id).Width())
	}
}

func TestAddOperandRecordsUser(t *testing.T) {
	g, syms := newTestGraph(t)
	a, _ := g.CreateValue(syms.Intern("a"), 8, false, grh.Logic)
	op, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)

	if err := g.AddOperand(op, a); err != nil {
		t.Fatalf("AddOperand failed: %v", err)
	}

	av := g.Value(a)
	if av.NumUsers() != 1 {
		t.Fatalf("expected 1 user, got %d", av.NumUsers())
	}
	users := av.Users()
	if users[0].Op != op || users[0].Index != 0 {
		t.Fatalf("user entry mismatch: %+v", users[0])
	}
}

func TestAddResultSetsDefiningOp(t *testing.T) {
	g, syms := newTestGraph(t)
	r, _ := g.CreateValue(syms.Intern("r"), 8, false, grh.Logic)
	op, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)

	if err := g.AddResult(op, r); err != nil {
		t.Fatalf("AddResult failed: %v", err)
	}
	if g.Value(r).DefiningOp() != op {
		t.Fatalf("result's definingOp was not set to the operation")
	}
}

func TestAddResultRejectsDoubleDefine(t *testing.T) {
	g, syms := newTestGraph(t)
	r, _ := g.CreateValue(syms.Intern("r"), 8, false, grh.Logic)
	op1, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)
	op2, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)

	if err := g.AddResult(op1, r); err != nil {
		t.Fatalf("first AddResult failed: %v", err)
	}
	if err := g.AddResult(op2, r); err == nil {
		t.Fatalf("expected second AddResult to fail: value already defined")
	}
}

func TestEraseOpClearsUsersAndDefiningOp(t *testing.T) {
	g, syms := newTestGraph(t)
	a, _ := g.CreateValue(syms.Intern("a"), 8, false, grh.Logic)
	r, _ := g.CreateValue(syms.Intern("r"), 8, false, grh.Logic)
	op, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)
	_ = g.AddOperand(op, a)
	_ = g.AddResult(op, r)

	if !g.EraseOp(op) {
		t.Fatalf("EraseOp returned false for a live operation")
	}
	if g.Value(a).NumUsers() != 0 {
		t.Fatalf("erasing op should clear operand's users")
	}
	if g.Value(r).HasDefiningOp() {
		t.Fatalf("erasing op should invalidate result's definingOp")
	}
	// the result Value itself remains present, per spec.md §4.1.
	if g.Value(r) == nil {
		t.Fatalf("result value should still be present after erasing its defining op")
	}
}

func TestEraseValueRequiresNoUsersAndNoResultReference(t *testing.T) {
	g, syms := newTestGraph(t)
	a, _ := g.CreateValue(syms.Intern("a"), 8, false, grh.Logic)
	op, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)
	_ = g.AddOperand(op, a)

	if g.EraseValue(a) {
		t.Fatalf("EraseValue should fail while users remain")
	}

	o := g.Operation(op)
	_ = o
	g.EraseOp(op)

	if !g.EraseValue(a) {
		t.Fatalf("EraseValue should succeed once users are empty")
	}
	if g.Value(a) != nil {
		t.Fatalf("erased value should no longer resolve")
	}
}

func TestCrossGraphOperandRejected(t *testing.T) {
	g1, syms := newTestGraph(t)
	g2 := grh.New(syms, syms.Intern("other"))

	v, _ := g2.CreateValue(syms.Intern("v"), 8, false, grh.Logic)
	op, _ := g1.CreateOperation(grh.KindNot, grh.InvalidSymbol)

	if err := g1.AddOperand(op, v); err == nil {
		t.Fatalf("expected cross-graph AddOperand to fail")
	}
}

func TestInoutPortCreatesTriple(t *testing.T) {
	g, syms := newTestGraph(t)
	p, err := g.AddInoutPort(syms.Intern("io"), 4, false)
	if err != nil {
		t.Fatalf("AddInoutPort failed: %v", err)
	}
	for _, v := range []grh.ValueID{p.In, p.Out, p.OE} {
		val := g.Value(v)
		if val == nil {
			t.Fatalf("inout triple member missing")
		}
		if val.Role() != grh.PortInout {
			t.Fatalf("inout triple member should be flagged PortInout, got %v", val.Role())
		}
	}
	if len(g.InoutPorts()) != 1 {
		t.Fatalf("expected 1 inout port entry, got %d", len(g.InoutPorts()))
	}
}

func TestPortNameUniqueAcrossTables(t *testing.T) {
	g, syms := newTestGraph(t)
	name := syms.Intern("p")
	if _, err := g.AddInputPort(name, 1, false, grh.Logic); err != nil {
		t.Fatalf("AddInputPort failed: %v", err)
	}
	if _, err := g.AddOutputPort(name, 1, false, grh.Logic); err == nil {
		t.Fatalf("expected duplicate port name across tables to fail")
	}
}

func TestOperationsIterateInInsertionOrder(t *testing.T) {
	g, _ := newTestGraph(t)
	var ids []grh.OperationID
	for i := 0; i < 5; i++ {
		id, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)
		ids = append(ids, id)
	}
	ops := g.Operations()
	if len(ops) != 5 {
		t.Fatalf("expected 5 operations, got %d", len(ops))
	}
	for i, op := range ops {
		if op.ID() != ids[i] {
			t.Fatalf("operations not in insertion order at index %d", i)
		}
	}
}

func TestCheckInvariantsCleanGraph(t *testing.T) {
	g, syms := newTestGraph(t)
	a, _ := g.CreateValue(syms.Intern("a"), 8, false, grh.Logic)
	r, _ := g.CreateValue(syms.Intern("r"), 8, false, grh.Logic)
	op, _ := g.CreateOperation(grh.KindNot, grh.InvalidSymbol)
	_ = g.AddOperand(op, a)
	_ = g.AddResult(op, r)

	if errs := g.CheckInvariants(); len(errs) != 0 {
		t.Fatalf("expected no invariant violations, got %v", errs)
	}
}

func TestHasUnresolvedXMR(t *testing.T) {
	g, _ := newTestGraph(t)
	if g.HasUnresolvedXMR() {
		t.Fatalf("empty graph should not report unresolved XMRs")
	}
	_, _ = g.CreateOperation(grh.KindXMRRead, grh.InvalidSymbol)
	if !g.HasUnresolvedXMR() {
		t.Fatalf("expected HasUnresolvedXMR to report true")
	}
}
