package elaborate_test

import (
	"testing"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/astiface/astfixture"
	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/elaborate"
	"github.com/sarchlab/grhc/internal/grh"
)

// TestElaborateInoutTristate covers spec.md §8 scenario 1: an inout driven
// by a conditional mux between a real value and a high-impedance literal.
func TestElaborateInoutTristate(t *testing.T) {
	mod := astfixture.Module{
		ModName: "tristate",
		ModPorts: []astiface.PortDecl{
			{Name: "en", Direction: astiface.DirInput, Type: astfixture.Bit},
			{Name: "data", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 4}},
			{Name: "io", Direction: astiface.DirInout, Type: astfixture.Scalar{W: 4}},
		},
		ModItems: []astiface.Item{
			astiface.ContinuousAssign{
				LHS: astiface.IdentExpr{Name: "io"},
				RHS: astiface.CondExpr{
					Cond: astiface.IdentExpr{Name: "en"},
					Then: astiface.IdentExpr{Name: "data"},
					Else: astiface.ConstExpr{Literal: "4'bz"},
				},
			},
		},
	}
	g, d := mustElaborate(t, astfixture.Unit{Mods: []astiface.Module{mod}})
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", d.All())
	}

	inouts := g.InoutPorts()
	if len(inouts) != 1 {
		t.Fatalf("expected 1 inout port, got %d", len(inouts))
	}
	io := inouts[0]
	if g.Symbols().Text(io.Name) != "io" {
		t.Fatalf("inout name = %q, want io", g.Symbols().Text(io.Name))
	}
	for _, leg := range []struct {
		name string
		v    grh.ValueID
	}{
		{"io__in", io.In}, {"io__out", io.Out}, {"io__oe", io.OE},
	} {
		v := g.Value(leg.v)
		if v == nil {
			t.Fatalf("%s wire not declared", leg.name)
		}
		if got := g.Symbols().Text(v.Symbol()); got != leg.name {
			t.Errorf("%s symbol = %q, want %s", leg.name, got, leg.name)
		}
	}

	out := g.Value(io.Out)
	if !out.HasDefiningOp() {
		t.Fatal("expected io__out to be driven by an assign")
	}
	driver := g.Operation(out.DefiningOp())
	if driver.Kind() != grh.KindAssign {
		t.Errorf("io__out driver kind = %v, want KindAssign", driver.Kind())
	}
	mux := g.Value(driver.Operand(0))
	if !mux.HasDefiningOp() || g.Operation(mux.DefiningOp()).Kind() != grh.KindMux {
		t.Error("expected io__out to be driven by the en ? data : 4'bz mux")
	}
}

// TestElaborateMaskedMemoryWrite covers spec.md §8 scenario 3: a per-bit
// masked memory write built from an enclosing write-enable guard and a
// per-bit enable vector indexed by an unrolled for-loop variable.
func TestElaborateMaskedMemoryWrite(t *testing.T) {
	// always_ff @(posedge clk)
	//   if (we)
	//     for (i = 0; i < 8; i++)
	//       if (be[i])
	//         mem[addr][i] <= din[i];
	innerWrite := astiface.NonBlockingAssignStmt{
		LHS: astiface.IndexedSliceExpr{
			Base: astiface.ArraySelectExpr{
				Base:  astiface.IdentExpr{Name: "mem"},
				Index: astiface.IdentExpr{Name: "addr"},
			},
			Start: astiface.IdentExpr{Name: "i"},
			Width: 1,
		},
		RHS: astiface.IndexedSliceExpr{
			Base:  astiface.IdentExpr{Name: "din"},
			Start: astiface.IdentExpr{Name: "i"},
			Width: 1,
		},
	}
	body := []astiface.Stmt{
		astiface.IfStmt{
			Cond: astiface.IdentExpr{Name: "we"},
			Then: []astiface.Stmt{
				astiface.ForStmt{
					InitVar: "i",
					InitVal: 0,
					Limit:   8,
					Step:    1,
					Body: []astiface.Stmt{
						astiface.IfStmt{
							Cond: astiface.IndexedSliceExpr{
								Base:  astiface.IdentExpr{Name: "be"},
								Start: astiface.IdentExpr{Name: "i"},
								Width: 1,
							},
							Then: []astiface.Stmt{innerWrite},
						},
					},
				},
			},
		},
	}
	mod := astfixture.Module{
		ModName: "maskedmem",
		ModPorts: []astiface.PortDecl{
			{Name: "clk", Direction: astiface.DirInput, Type: astfixture.Bit},
			{Name: "we", Direction: astiface.DirInput, Type: astfixture.Bit},
			{Name: "addr", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 5}},
			{Name: "din", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
			{Name: "be", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
		},
		ModItems: []astiface.Item{
			astiface.ProceduralBlock{
				Kind: astiface.ProcAlwaysFF,
				Sensitivity: []astiface.EdgeSignal{
					{Edge: astiface.EdgePos, Signal: astiface.IdentExpr{Name: "clk"}},
				},
				Body: body,
			},
		},
	}
	g, d := mustElaborate(t, astfixture.Unit{Mods: []astiface.Module{mod}})
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", d.All())
	}

	var memOp, wrOp *grh.Operation
	for _, op := range g.Operations() {
		switch op.Kind() {
		case grh.KindMemory:
			memOp = op
		case grh.KindMemoryWritePort:
			wrOp = op
		}
	}
	if memOp == nil {
		t.Fatal("expected a kMemory operation")
	}
	if wrOp == nil {
		t.Fatal("expected exactly one kMemoryWritePort operation")
	}
	widthAttr, ok := memOp.GetAttr("width")
	if !ok {
		t.Fatal("expected a width attribute on the memory")
	}
	if w, _ := widthAttr.Int64(); w != 8 {
		t.Errorf("memory elemWidth = %d, want 8", w)
	}

	// operand layout: updateCond, addr, data, mask, [event...]
	if wrOp.NumOperands() < 4 {
		t.Fatalf("expected at least 4 operands on the write port, got %d", wrOp.NumOperands())
	}
	updateCond := g.Value(wrOp.Operand(0))
	wePort := findInputPort(g, "we")
	if updateCond.ID() != wePort {
		t.Error("expected updateCond to be the we input directly, not a hardcoded constant")
	}

	mask := g.Value(wrOp.Operand(3))
	if !mask.HasDefiningOp() {
		t.Fatal("expected mask to be a composed value, not a bare constant")
	}
	maskDef := g.Operation(mask.DefiningOp())
	if maskDef.Kind() == grh.KindConstant {
		t.Error("mask is a hardcoded all-ones constant; expected it to be composed from be[i]")
	}

	data := g.Value(wrOp.Operand(2))
	if data.Width() != 8 {
		t.Errorf("composed data width = %d, want 8", data.Width())
	}
}

func findInputPort(g *grh.Graph, name string) grh.ValueID {
	for _, p := range g.InputPorts() {
		if g.Symbols().Text(p.Name) == name {
			return p.Value
		}
	}
	return grh.InvalidValue
}

// TestElaborateParametricGenerateSpecializesPerBinding covers spec.md §8
// scenario 4: distinct parameter bindings at separate instantiation sites
// specialize into distinct graphs, while repeated bindings across several
// instances (as a generate loop would produce, already unrolled by the
// front end into one InstanceItem per iteration) share one graph.
func TestElaborateParametricGenerateSpecializesPerBinding(t *testing.T) {
	leaf := astfixture.Module{
		ModName: "leaf",
		ModPorts: []astiface.PortDecl{
			{Name: "in", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 4}},
			{Name: "out", Direction: astiface.DirOutput, Type: astfixture.Scalar{W: 4}},
		},
		ModItems: []astiface.Item{
			astiface.ContinuousAssign{
				LHS: astiface.IdentExpr{Name: "out"},
				RHS: astiface.IdentExpr{Name: "in"},
			},
		},
	}

	instances := []astiface.Item{
		astiface.InstanceItem{
			InstanceName: "u0", ModuleName: "leaf",
			Params: []astiface.ParamBinding{{Name: "WIDTH", Value: "4"}},
			PortConns: []astiface.PortConn{
				{FormalName: "in", Actual: astiface.IdentExpr{Name: "x"}},
				{FormalName: "out", Actual: astiface.IdentExpr{Name: "y"}},
			},
		},
		astiface.InstanceItem{
			InstanceName: "u1", ModuleName: "leaf",
			Params: []astiface.ParamBinding{{Name: "WIDTH", Value: "8"}},
			PortConns: []astiface.PortConn{
				{FormalName: "in", Actual: astiface.IdentExpr{Name: "x"}},
				{FormalName: "out", Actual: astiface.IdentExpr{Name: "y"}},
			},
		},
	}
	for i := 0; i < 4; i++ {
		instances = append(instances, astiface.InstanceItem{
			InstanceName: instanceName(i), ModuleName: "leaf",
			Params: []astiface.ParamBinding{{Name: "WIDTH", Value: "4"}},
			PortConns: []astiface.PortConn{
				{FormalName: "in", Actual: astiface.IdentExpr{Name: "x"}},
				{FormalName: "out", Actual: astiface.IdentExpr{Name: "y"}},
			},
		})
	}

	top := astfixture.Module{
		ModName: "top",
		ModPorts: []astiface.PortDecl{
			{Name: "x", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 4}},
			{Name: "y", Direction: astiface.DirOutput, Type: astfixture.Scalar{W: 4}},
		},
		ModItems: instances,
	}

	d := diag.New()
	e := elaborate.New(d)
	nl, err := e.Elaborate(astfixture.Unit{Mods: []astiface.Module{top, leaf}})
	if err != nil {
		t.Fatalf("Elaborate: %v", err)
	}
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", d.All())
	}

	sym4, ok := nl.Symbols().Lookup("leaf$WIDTH_4")
	if !ok {
		t.Fatal("expected a leaf$WIDTH_4 specialization symbol")
	}
	if _, ok := nl.Graph(sym4); !ok {
		t.Fatal("expected a leaf$WIDTH_4 graph registered in the netlist")
	}
	sym8, ok := nl.Symbols().Lookup("leaf$WIDTH_8")
	if !ok {
		t.Fatal("expected a leaf$WIDTH_8 specialization symbol")
	}
	if _, ok := nl.Graph(sym8); !ok {
		t.Fatal("expected a leaf$WIDTH_8 graph registered in the netlist")
	}
	if nl.NumGraphs() != 3 {
		t.Errorf("expected 3 graphs (top, leaf$WIDTH_4, leaf$WIDTH_8), got %d", nl.NumGraphs())
	}

	tops := nl.TopGraphs()
	if len(tops) != 1 {
		t.Fatalf("expected 1 top graph, got %d", len(tops))
	}
	topGraph, _ := nl.Graph(tops[0])

	var n4, n8 int
	var total int
	for _, op := range topGraph.Operations() {
		if op.Kind() != grh.KindInstance {
			continue
		}
		total++
		mn, _ := op.GetAttr("moduleName")
		name, _ := mn.String()
		switch name {
		case "leaf$WIDTH_4":
			n4++
		case "leaf$WIDTH_8":
			n8++
		}
	}
	if total != 6 {
		t.Errorf("expected 6 kInstance operations in top, got %d", total)
	}
	if n4 != 5 {
		t.Errorf("expected 5 instances referencing leaf$WIDTH_4, got %d", n4)
	}
	if n8 != 1 {
		t.Errorf("expected 1 instance referencing leaf$WIDTH_8, got %d", n8)
	}
}

func instanceName(i int) string {
	return "gu" + string(rune('0'+i))
}

// TestElaborateDpiInlineReturn covers spec.md §8 scenario 5: a DPI call's
// single return value feeds a register write port's data operand directly,
// with no intermediate temp, and the call is marked eligible for the
// emitter's inline fold.
func TestElaborateDpiInlineReturn(t *testing.T) {
	// import "DPI-C" function bit [15:0] calc(input bit [15:0] a, input bit [7:0] b);
	// always @(posedge clk) sum <= calc(a, b);
	mod := astfixture.Module{
		ModName: "dpicalc",
		ModPorts: []astiface.PortDecl{
			{Name: "clk", Direction: astiface.DirInput, Type: astfixture.Bit},
			{Name: "a", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 16}},
			{Name: "b", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
			{Name: "sum", Direction: astiface.DirOutput, Type: astfixture.Scalar{W: 16}},
		},
		ModItems: []astiface.Item{
			astiface.DpiImportItem{
				Name: "calc",
				Args: []astiface.DpiArg{
					{Name: "a", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 16}},
					{Name: "b", Direction: astiface.DirInput, Type: astfixture.Scalar{W: 8}},
				},
				HasReturn:  true,
				ReturnType: astfixture.Scalar{W: 16},
			},
			astiface.ProceduralBlock{
				Kind: astiface.ProcAlwaysFF,
				Sensitivity: []astiface.EdgeSignal{
					{Edge: astiface.EdgePos, Signal: astiface.IdentExpr{Name: "clk"}},
				},
				Body: []astiface.Stmt{
					astiface.NonBlockingAssignStmt{
						LHS: astiface.IdentExpr{Name: "sum"},
						RHS: astiface.DpiCallExpr{
							ImportName: "calc",
							Args: []astiface.Expr{
								astiface.IdentExpr{Name: "a"},
								astiface.IdentExpr{Name: "b"},
							},
						},
					},
				},
			},
		},
	}
	g, d := mustElaborate(t, astfixture.Unit{Mods: []astiface.Module{mod}})
	if d.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", d.All())
	}

	var importOp, callOp, wrOp *grh.Operation
	for _, op := range g.Operations() {
		switch op.Kind() {
		case grh.KindDpicImport:
			importOp = op
		case grh.KindDpicCall:
			callOp = op
		case grh.KindRegisterWritePort:
			wrOp = op
		}
	}
	if importOp == nil {
		t.Fatal("expected exactly one kDpicImport operation")
	}
	if callOp == nil {
		t.Fatal("expected a kDpicCall operation")
	}
	if wrOp == nil {
		t.Fatal("expected a kRegisterWritePort operation")
	}

	if callOp.NumResults() != 1 {
		t.Fatalf("expected kDpicCall to have exactly 1 result, got %d", callOp.NumResults())
	}
	callResult := callOp.Result(0)
	if wrOp.Operand(1) != callResult {
		t.Error("expected the kDpicCall result to feed the write port's data operand directly, with no intermediate temp")
	}

	inlineSink, ok := callOp.GetAttr("inlineSink")
	if !ok {
		t.Fatal("expected the kDpicCall to carry an inlineSink attribute")
	}
	sinkName, _ := inlineSink.String()
	if sinkName == "" {
		t.Error("expected a non-empty inlineSink attribute value")
	}
}
