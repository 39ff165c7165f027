package pass

import "github.com/sarchlab/grhc/internal/grh"

var validInitKinds = map[string]bool{
	"literal":  true,
	"random":   true,
	"readmemh": true,
	"readmemb": true,
}

// MemInitCheck validates every kMemory's optional init* attribute vectors
// (spec.md §4.8): identical lengths, nonnegative addresses within the
// memory's row count, and readable kinds in
// {literal, random, readmemh, readmemb}. Supplemented per
// original_source's memory_init_check.hpp: readmemh/readmemb entries must
// carry a non-empty initFile, and literal/random entries must not also
// carry one. This pass never mutates the graph; a failing check is
// reported and Run returns Failed.
type MemInitCheck struct{}

func (MemInitCheck) Id() string          { return "mem-init-check" }
func (MemInitCheck) Name() string        { return "Memory initializer validation" }
func (MemInitCheck) Description() string { return "Validate kMemory init* attribute vectors." }

func (p MemInitCheck) Run(ctx *Context) Result {
	failed := false
	for _, sym := range ctx.Netlist.GraphOrder() {
		g, ok := ctx.Netlist.Graph(sym)
		if !ok {
			continue
		}
		graphName := g.Symbols().Text(sym)
		for _, op := range g.Operations() {
			if op.Kind() != grh.KindMemory {
				continue
			}
			if !checkMemory(ctx, graphName, op) {
				failed = true
			}
		}
	}
	return Result{Failed: failed}
}

func checkMemory(ctx *Context, graphName string, op *grh.Operation) bool {
	kinds, hasKinds := stringVecAttr(op, "initKind")
	files, hasFiles := stringVecAttr(op, "initFile")
	values, hasValues := stringVecAttr(op, "initValue")
	addrs, hasAddrs := int64VecAttr(op, "initAddress")

	if !hasKinds && !hasFiles && !hasValues && !hasAddrs {
		return true
	}

	ok := true
	n := len(kinds)
	for _, vec := range [][]string{files, values} {
		if len(vec) != n {
			ctx.Diagnostics.Errorf(graphName, "memory %q: init* vectors have mismatched lengths", memName(op))
			ok = false
		}
	}
	if len(addrs) != n {
		ctx.Diagnostics.Errorf(graphName, "memory %q: init* vectors have mismatched lengths", memName(op))
		ok = false
	}

	rows := int64(-1)
	if a, found := op.GetAttr("row"); found {
		rows, _ = a.Int64()
	}

	for i := 0; i < n; i++ {
		kind := kinds[i]
		if !validInitKinds[kind] {
			ctx.Diagnostics.Errorf(graphName, "memory %q: init entry %d has unreadable kind %q", memName(op), i, kind)
			ok = false
		}
		if i < len(addrs) {
			if addrs[i] < 0 || (rows >= 0 && addrs[i] >= rows) {
				ctx.Diagnostics.Errorf(graphName, "memory %q: init entry %d address %d out of range [0,%d)", memName(op), i, addrs[i], rows)
				ok = false
			}
		}
		if i >= len(files) {
			continue
		}
		file := files[i]
		switch kind {
		case "readmemh", "readmemb":
			if file == "" {
				ctx.Diagnostics.Errorf(graphName, "memory %q: init entry %d (%s) requires a non-empty initFile", memName(op), i, kind)
				ok = false
			}
		case "literal", "random":
			if file != "" {
				ctx.Diagnostics.Errorf(graphName, "memory %q: init entry %d (%s) must not carry an initFile", memName(op), i, kind)
				ok = false
			}
		}
	}
	return ok
}

func memName(op *grh.Operation) string {
	if a, ok := op.GetAttr("memSymbol"); ok {
		if s, ok := a.String(); ok {
			return s
		}
	}
	return "<memory>"
}

func stringVecAttr(op *grh.Operation, key string) ([]string, bool) {
	a, ok := op.GetAttr(key)
	if !ok {
		return nil, false
	}
	v, ok := a.StringVec()
	return v, ok
}

func int64VecAttr(op *grh.Operation, key string) ([]int64, bool) {
	a, ok := op.GetAttr(key)
	if !ok {
		return nil, false
	}
	v, ok := a.Int64Vec()
	return v, ok
}
