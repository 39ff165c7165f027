package netlist_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/netlist"
	"github.com/sarchlab/grhc/internal/symtab"
)

func TestAddGraphRejectsDuplicateSymbol(t *testing.T) {
	syms := symtab.New()
	nl := netlist.New(syms)
	sym := syms.Intern("leaf")

	if !nl.AddGraph(grh.New(syms, sym)) {
		t.Fatalf("first AddGraph should succeed")
	}
	if nl.AddGraph(grh.New(syms, sym)) {
		t.Fatalf("duplicate module symbol should be rejected")
	}
}

func TestGraphOrderIsInsertionOrder(t *testing.T) {
	syms := symtab.New()
	nl := netlist.New(syms)
	names := []string{"a", "b", "c"}
	for _, name := range names {
		nl.AddGraph(grh.New(syms, syms.Intern(name)))
	}
	order := nl.GraphOrder()
	if len(order) != 3 {
		t.Fatalf("expected 3 graphs, got %d", len(order))
	}
	for i, name := range names {
		if syms.Text(order[i]) != name {
			t.Fatalf("graph order mismatch at %d: got %q want %q", i, syms.Text(order[i]), name)
		}
	}
}

func TestMarkTopRequiresRegisteredGraph(t *testing.T) {
	syms := symtab.New()
	nl := netlist.New(syms)
	sym := syms.Intern("top")
	if nl.MarkTop(sym) {
		t.Fatalf("MarkTop should fail for an unregistered symbol")
	}
	nl.AddGraph(grh.New(syms, sym))
	if !nl.MarkTop(sym) {
		t.Fatalf("MarkTop should succeed once the graph is registered")
	}
}

func TestDumpJSONRendersPortsAndOperations(t *testing.T) {
	syms := symtab.New()
	nl := netlist.New(syms)
	sym := syms.Intern("leaf")
	g := grh.New(syms, sym)
	nl.AddGraph(g)
	nl.MarkTop(sym)

	in, _ := g.AddInputPort(syms.Intern("a"), 8, false, grh.Logic)
	out, _ := g.AddOutputPort(syms.Intern("y"), 8, false, grh.Logic)
	op, _ := g.CreateOperation(grh.KindAssign, grh.InvalidSymbol)
	_ = g.AddOperand(op, in)
	_ = g.AddResult(op, out)
	op2 := g.Operation(op)
	op2.SetAttr("note", grh.String("pass-through"))

	var buf bytes.Buffer
	if err := nl.DumpJSON(&buf); err != nil {
		t.Fatalf("DumpJSON failed: %v", err)
	}
	s := buf.String()
	for _, want := range []string{`"symbol": "leaf"`, `"isTop": true`, `"kind": "Assign"`, `"str": "pass-through"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected JSON dump to contain %q, got:\n%s", want, s)
		}
	}
}
