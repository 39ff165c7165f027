package emit

import "github.com/sarchlab/grhc/internal/grh"

// declKind is which declaration section a named Value falls into (spec.md
// §4.9's pre-scan: "classify every named value into one of: input port,
// output port, inout port, wire, reg, or variable").
type declKind int

const (
	declWire declKind = iota
	declReg
	declVar
)

// stateInfo records that a Value is the Q output of a Register or Latch
// declaration, resolved via the declaration op's qSymbol attribute (see
// internal/elaborate/memo.go).
type stateInfo struct {
	stateOp grh.OperationID
	isLatch bool
}

// memInfo records one kMemory declaration: its own op (the array's
// declared name) plus the attributes the emitter needs to size it.
type memInfo struct {
	op        grh.OperationID
	width     int
	row       int
	isSigned  bool
}

// graphInfo is the one pre-scan pass over a Graph's operations that every
// later rendering step consults, avoiding repeated linear scans per
// declaration category.
type graphInfo struct {
	g *grh.Graph

	stateByValue map[grh.ValueID]*stateInfo
	memBySymbol  map[grh.SymbolID]*memInfo
	mems         []*memInfo

	// dpiInlineSink maps a kDpicCall op to the write-port op whose
	// assignment it is inlined into (spec.md §4.6), resolved from the
	// call's inlineSink attribute via Graph.OperationBySymbol.
	dpiInlineSink map[grh.OperationID]grh.OperationID

	// dpiInlined is the inverse index: a write-port op to the call op
	// inlined into it, used when rendering that write port's next-value
	// expression.
	dpiInlined map[grh.OperationID]grh.OperationID
}

func analyzeGraph(g *grh.Graph) *graphInfo {
	info := &graphInfo{
		g:             g,
		stateByValue:  map[grh.ValueID]*stateInfo{},
		memBySymbol:   map[grh.SymbolID]*memInfo{},
		dpiInlineSink: map[grh.OperationID]grh.OperationID{},
		dpiInlined:    map[grh.OperationID]grh.OperationID{},
	}

	for _, op := range g.Operations() {
		switch op.Kind() {
		case grh.KindRegister, grh.KindLatch:
			qSym, ok := op.GetAttr("qSymbol")
			if !ok {
				continue
			}
			qText, _ := qSym.String()
			if qText == "" {
				continue
			}
			qID, ok := g.ValueBySymbol(g.Symbols().Intern(qText))
			if !ok {
				continue
			}
			info.stateByValue[qID] = &stateInfo{stateOp: op.ID(), isLatch: op.Kind() == grh.KindLatch}
		case grh.KindMemory:
			width := int64(0)
			row := int64(1)
			signed := false
			if a, ok := op.GetAttr("width"); ok {
				width, _ = a.Int64()
			}
			if a, ok := op.GetAttr("row"); ok {
				row, _ = a.Int64()
			}
			if a, ok := op.GetAttr("isSigned"); ok {
				signed, _ = a.Bool()
			}
			mi := &memInfo{op: op.ID(), width: int(width), row: int(row), isSigned: signed}
			info.memBySymbol[op.Symbol()] = mi
			info.mems = append(info.mems, mi)
		}
	}

	for _, op := range g.Operations() {
		if op.Kind() != grh.KindDpicCall {
			continue
		}
		sinkAttr, ok := op.GetAttr("inlineSink")
		if !ok {
			continue
		}
		sinkText, _ := sinkAttr.String()
		if sinkText == "" {
			continue
		}
		sinkOp, ok := g.OperationBySymbol(g.Symbols().Intern(sinkText))
		if !ok {
			continue
		}
		info.dpiInlineSink[op.ID()] = sinkOp
		info.dpiInlined[sinkOp] = op.ID()
	}

	return info
}

// declKindOf classifies a non-port Value for its declaration statement.
func (gi *graphInfo) declKindOf(v *grh.Value) declKind {
	if v.Type() != grh.Logic {
		return declVar
	}
	if _, ok := gi.stateByValue[v.ID()]; ok {
		return declReg
	}
	return declWire
}

// isInlinedDpiCall reports whether op is a kDpicCall folded directly into
// its sink's expression, and so must be skipped by the generic per-op
// wire/assign pass.
func (gi *graphInfo) isInlinedDpiCall(op grh.OperationID) bool {
	_, ok := gi.dpiInlineSink[op]
	return ok
}
