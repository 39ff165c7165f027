package emit_test

import (
	"strings"
	"testing"

	"github.com/sarchlab/grhc/internal/emit"
	"github.com/sarchlab/grhc/internal/grh"
)

func TestEmitRendersCombinationalAssign(t *testing.T) {
	tg := newTestGraph("adder")
	a := tg.inputPort("a", 4)
	b := tg.inputPort("b", 4)
	sum := tg.binary(grh.KindAdd, "sum_t", a, b, 4)
	port := tg.outputPort("y", 4)
	tg.redirectResult(sum, port)

	var sb strings.Builder
	res := emit.New().Emit(&sb, tg.nl, emit.Options{})
	if !res.Success {
		t.Fatalf("emit failed: %v", res.Errors)
	}
	out := sb.String()
	if !strings.Contains(out, "module adder (") {
		t.Errorf("missing module header:\n%s", out)
	}
	if !strings.Contains(out, "assign y = a + b;") {
		t.Errorf("missing combinational assign:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimRight(out, "\n"), "endmodule") {
		t.Errorf("missing endmodule:\n%s", out)
	}
}

func TestEmitPromotesRegisterBackedOutputPort(t *testing.T) {
	tg := newTestGraph("counter")
	clk := tg.inputPort("clk", 1)
	port := tg.outputPort("cnt", 8)
	regDeclOp := tg.registerBackingPort("cnt", 8, port)

	one := tg.constant("one", 1, "1'b1")
	next := tg.constant("next_val", 8, "8'h01")
	allOnes := tg.constant("mask_all1", 8, "8'b11111111")
	tg.registerWritePort("cnt", regDeclOp, one, next, allOnes, clk, "posedge")

	var sb strings.Builder
	res := emit.New().Emit(&sb, tg.nl, emit.Options{})
	if !res.Success {
		t.Fatalf("emit failed: %v", res.Errors)
	}
	out := sb.String()
	if !strings.Contains(out, "output reg") {
		t.Errorf("expected register-backed output port to render as output reg:\n%s", out)
	}
	if !strings.Contains(out, "always @(posedge clk) begin") {
		t.Errorf("missing sequential block:\n%s", out)
	}
	if !strings.Contains(out, "cnt <= next_val;") {
		t.Errorf("missing all-ones mask write:\n%s", out)
	}
}

func TestEmitMultipleModulesSeparatedByBlankLine(t *testing.T) {
	tg := newTestGraph("leaf")
	a := tg.inputPort("a", 1)
	port := tg.outputPort("y", 1)
	wire := tg.assign("y_drv", a, 1)
	tg.redirectResult(wire, port)

	syms := tg.syms
	topSym := syms.Intern("top")
	topGraph := grh.New(syms, topSym)
	tg.nl.AddGraph(topGraph)
	tg.nl.MarkTop(topSym)

	var sb strings.Builder
	res := emit.New().Emit(&sb, tg.nl, emit.Options{})
	if !res.Success {
		t.Fatalf("emit failed: %v", res.Errors)
	}
	out := sb.String()
	if !strings.Contains(out, "module leaf (") || !strings.Contains(out, "module top (") {
		t.Fatalf("expected both modules emitted:\n%s", out)
	}
	if !strings.Contains(out, "endmodule\n\nmodule top") {
		t.Errorf("expected a blank line separating modules:\n%s", out)
	}
}

func TestEmitRendersSliceAndConcatExpressions(t *testing.T) {
	tg := newTestGraph("slicer")
	a := tg.inputPort("a", 8)

	sliceOp, err := tg.g.CreateOperation(grh.KindSliceStatic, grh.InvalidSymbol)
	if err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddOperand(sliceOp, a); err != nil {
		t.Fatal(err)
	}
	hi, err := tg.g.CreateValue(tg.sym("hi"), 4, false, grh.Logic)
	if err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddResult(sliceOp, hi); err != nil {
		t.Fatal(err)
	}
	tg.g.Operation(sliceOp).SetAttr("sliceStart", grh.Int64(7))
	tg.g.Operation(sliceOp).SetAttr("sliceEnd", grh.Int64(4))

	concatOp, err := tg.g.CreateOperation(grh.KindConcat, grh.InvalidSymbol)
	if err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddOperand(concatOp, hi); err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddOperand(concatOp, hi); err != nil {
		t.Fatal(err)
	}
	cv, err := tg.g.CreateValue(tg.sym("doubled"), 8, false, grh.Logic)
	if err != nil {
		t.Fatal(err)
	}
	if err := tg.g.AddResult(concatOp, cv); err != nil {
		t.Fatal(err)
	}
	port := tg.outputPort("y", 8)
	tg.redirectResult(cv, port)

	var sb strings.Builder
	res := emit.New().Emit(&sb, tg.nl, emit.Options{})
	if !res.Success {
		t.Fatalf("emit failed: %v", res.Errors)
	}
	out := sb.String()
	if !strings.Contains(out, "assign hi = a[7:4];") {
		t.Errorf("missing static slice assign:\n%s", out)
	}
	if !strings.Contains(out, "assign y = {hi, hi};") {
		t.Errorf("missing concat assign:\n%s", out)
	}
}

func TestEmitLatchDegradesToCombinationalWhenUnconditional(t *testing.T) {
	tg := newTestGraph("latchmod")
	port := tg.outputPort("q", 4)
	latchOp, err := tg.g.CreateOperation(grh.KindLatch, tg.sym("latch_q"))
	if err != nil {
		t.Fatal(err)
	}
	tg.g.Operation(latchOp).SetAttr("width", grh.Int64(4))
	tg.g.Operation(latchOp).SetAttr("isSigned", grh.Bool(false))
	tg.g.Operation(latchOp).SetAttr("qSymbol", grh.String(tg.syms.Text(tg.g.Value(port).Symbol())))

	one := tg.constant("one", 1, "1'b1")
	next := tg.constant("nextv", 4, "4'hA")
	allOnes := tg.constant("mall", 4, "4'b1111")

	wrOp, err := tg.g.CreateOperation(grh.KindLatchWritePort, grh.InvalidSymbol)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []grh.ValueID{one, next, allOnes} {
		if err := tg.g.AddOperand(wrOp, v); err != nil {
			t.Fatal(err)
		}
	}
	tg.g.Operation(wrOp).SetAttr("latchSymbol", grh.String(tg.syms.Text(tg.g.Operation(latchOp).Symbol())))

	var sb strings.Builder
	res := emit.New().Emit(&sb, tg.nl, emit.Options{})
	if !res.Success {
		t.Fatalf("emit failed: %v", res.Errors)
	}
	out := sb.String()
	if strings.Contains(out, "always_latch") {
		t.Errorf("expected combinational degrade, got always_latch block:\n%s", out)
	}
	if !strings.Contains(out, "assign q = nextv;") {
		t.Errorf("missing degraded combinational assign:\n%s", out)
	}
}

func TestEmitTopFilterRestrictsOutput(t *testing.T) {
	tg := newTestGraph("leaf")
	a := tg.inputPort("a", 1)
	port := tg.outputPort("y", 1)
	wire := tg.assign("y_drv", a, 1)
	tg.redirectResult(wire, port)

	syms := tg.syms
	topSym := syms.Intern("top")
	topGraph := grh.New(syms, topSym)
	tg.nl.AddGraph(topGraph)
	tg.nl.MarkTop(topSym)

	var sb strings.Builder
	res := emit.New().Emit(&sb, tg.nl, emit.Options{Top: []string{"top"}})
	if !res.Success {
		t.Fatalf("emit failed: %v", res.Errors)
	}
	out := sb.String()
	if strings.Contains(out, "module leaf") {
		t.Errorf("leaf should have been filtered out:\n%s", out)
	}
	if !strings.Contains(out, "module top") {
		t.Errorf("top should be emitted:\n%s", out)
	}
}
