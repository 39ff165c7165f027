package pass_test

import (
	"testing"

	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/pass"
)

func TestRedundantElimFoldsAssignChain(t *testing.T) {
	tg := newTestGraph("m")
	in, err := tg.g.AddInputPort(tg.sym("a"), 4, false, grh.Logic)
	if err != nil {
		t.Fatal(err)
	}
	innerOp, inner := tg.assign("inner", in, 4)
	port := tg.outputPort("y", 4)
	outer, _ := tg.assign("outer", inner, 4)
	tg.redirectResult(outer, port)

	res := runSinglePass(t, tg, pass.RedundantElim{})
	if !res.Changed {
		t.Fatal("expected Changed=true")
	}

	portVal := tg.g.Value(port)
	if !portVal.HasDefiningOp() {
		t.Fatal("port should still have a defining op")
	}
	if portVal.DefiningOp() != innerOp {
		t.Error("expected the outer assign to be folded away, leaving the inner assign as the port's defining op")
	}
	remaining := 0
	for _, op := range tg.g.Operations() {
		if op.Kind() == grh.KindAssign {
			remaining++
		}
	}
	if remaining != 1 {
		t.Errorf("expected exactly one surviving Assign, got %d", remaining)
	}
}

func TestRedundantElimDoesNotFoldMultiUseInner(t *testing.T) {
	tg := newTestGraph("m")
	in, err := tg.g.AddInputPort(tg.sym("a"), 4, false, grh.Logic)
	if err != nil {
		t.Fatal(err)
	}
	_, inner := tg.assign("inner", in, 4)
	port := tg.outputPort("y", 4)
	outer, _ := tg.assign("outer", inner, 4)
	tg.redirectResult(outer, port)
	// second reader of inner blocks the fold.
	tg.assign("other", inner, 4)

	res := runSinglePass(t, tg, pass.RedundantElim{})
	if res.Changed {
		t.Error("expected no fold: inner has more than one user")
	}
}

func TestRedundantElimCollapsesIdentitySlice(t *testing.T) {
	tg := newTestGraph("m")
	in, err := tg.g.AddInputPort(tg.sym("a"), 4, false, grh.Logic)
	if err != nil {
		t.Fatal(err)
	}
	innerOp, innerVal := tg.assign("inner", in, 4)

	sliceOp, err := tg.g.CreateOperation(grh.KindSliceStatic, grh.InvalidSymbol)
	if err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddOperand(sliceOp, innerVal); err != nil {
		t.Fatal(err)
	}
	sliceVal, err := tg.g.CreateValue(tg.sym("s"), 4, false, grh.Logic)
	if err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddResult(sliceOp, sliceVal); err != nil {
		t.Fatal(err)
	}
	tg.g.Operation(sliceOp).SetAttr("sliceStart", grh.Int64(3))
	tg.g.Operation(sliceOp).SetAttr("sliceEnd", grh.Int64(0))

	port := tg.outputPort("y", 4)
	tg.redirectResult(sliceOp, port)

	res := runSinglePass(t, tg, pass.RedundantElim{})
	if !res.Changed {
		t.Fatal("expected Changed=true")
	}
	portVal := tg.g.Value(port)
	if !portVal.HasDefiningOp() {
		t.Fatal("port should still have a defining op")
	}
	if portVal.DefiningOp() != innerOp {
		t.Error("expected the slice to be folded away, leaving the inner assign as the port's defining op")
	}
}

func TestRedundantElimDedupesUnusedConstants(t *testing.T) {
	tg := newTestGraph("m")
	tg.constant("c1", 4, "4'h5")
	tg.constant("c2", 4, "4'h5")

	res := runSinglePass(t, tg, pass.RedundantElim{})
	if !res.Changed {
		t.Fatal("expected Changed=true")
	}
	remaining := 0
	for _, op := range tg.g.Operations() {
		if op.Kind() == grh.KindConstant {
			remaining++
		}
	}
	if remaining != 1 {
		t.Errorf("expected exactly one surviving Constant, got %d", remaining)
	}
}

func TestRedundantElimKeepsDistinctConstants(t *testing.T) {
	tg := newTestGraph("m")
	tg.constant("c1", 4, "4'h5")
	tg.constant("c2", 4, "4'h6")

	res := runSinglePass(t, tg, pass.RedundantElim{})
	if res.Changed {
		t.Error("expected no change: constants carry distinct literals")
	}
}
