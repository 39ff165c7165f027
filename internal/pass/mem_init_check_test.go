package pass_test

import (
	"testing"

	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/pass"
)

func newMemory(tg *testGraph, name string, rows int64, kinds, files, values []string, addrs []int64) grh.OperationID {
	op, err := tg.g.CreateOperation(grh.KindMemory, grh.InvalidSymbol)
	if err != nil {
		panic(err)
	}
	o := tg.g.Operation(op)
	o.SetAttr("memSymbol", grh.String(name))
	o.SetAttr("row", grh.Int64(rows))
	if kinds != nil {
		o.SetAttr("initKind", grh.StringVec(kinds))
	}
	if files != nil {
		o.SetAttr("initFile", grh.StringVec(files))
	}
	if values != nil {
		o.SetAttr("initValue", grh.StringVec(values))
	}
	if addrs != nil {
		o.SetAttr("initAddress", grh.Int64Vec(addrs))
	}
	return op
}

func runMemCheck(tg *testGraph) (pass.Result, *diag.Diagnostics) {
	d := diag.New()
	ctx := &pass.Context{Netlist: tg.nl, Diagnostics: d.WithPass("mem-init-check")}
	res := pass.MemInitCheck{}.Run(ctx)
	return res, d
}

func TestMemInitCheckAcceptsValidVectors(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4,
		[]string{"literal", "readmemh"},
		[]string{"", "init.hex"},
		[]string{"4'h0", ""},
		[]int64{0, 1})

	res, d := runMemCheck(tg)
	if res.Failed {
		t.Errorf("unexpected failure: %v", d.All())
	}
}

func TestMemInitCheckSkipsMemoryWithNoInitAttrs(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4, nil, nil, nil, nil)

	res, _ := runMemCheck(tg)
	if res.Failed {
		t.Error("expected no failure for a memory with no init attributes")
	}
}

func TestMemInitCheckRejectsMismatchedLengths(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4,
		[]string{"literal", "literal"},
		[]string{"", ""},
		[]string{"4'h0", "4'h1"},
		[]int64{0})

	res, d := runMemCheck(tg)
	if !res.Failed {
		t.Fatal("expected failure: initAddress is shorter than initKind")
	}
	if !d.HasErrors() {
		t.Error("expected an Error diagnostic")
	}
}

func TestMemInitCheckRejectsOutOfRangeAddress(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4,
		[]string{"literal"},
		[]string{""},
		[]string{"4'h0"},
		[]int64{9})

	res, _ := runMemCheck(tg)
	if !res.Failed {
		t.Fatal("expected failure: address 9 is out of range for a 4-row memory")
	}
}

func TestMemInitCheckRejectsInvalidKind(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4,
		[]string{"bogus"},
		[]string{""},
		[]string{"4'h0"},
		[]int64{0})

	res, _ := runMemCheck(tg)
	if !res.Failed {
		t.Fatal("expected failure: \"bogus\" is not a readable init kind")
	}
}

func TestMemInitCheckRequiresFileForReadmem(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4,
		[]string{"readmemh"},
		[]string{""},
		[]string{""},
		[]int64{0})

	res, _ := runMemCheck(tg)
	if !res.Failed {
		t.Fatal("expected failure: readmemh requires a non-empty initFile")
	}
}

func TestMemInitCheckForbidsFileForLiteral(t *testing.T) {
	tg := newTestGraph("m")
	newMemory(tg, "mem0", 4,
		[]string{"literal"},
		[]string{"init.hex"},
		[]string{"4'h0"},
		[]int64{0})

	res, _ := runMemCheck(tg)
	if !res.Failed {
		t.Fatal("expected failure: literal must not carry an initFile")
	}
}
