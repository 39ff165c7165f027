package elaborate

import (
	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/grh"
)

// signalKind is which of the three per-module memos (spec.md §4.3) a
// user-declared signal ended up classified into.
type signalKind int

const (
	sigNet signalKind = iota
	sigReg
	sigLatch
	sigMem
)

// signalEntry is one memoized signal: its flattened type plus its
// materialized GRH realization.
type signalEntry struct {
	kind   signalKind
	width  int
	signed bool

	// value is the flat Value read by downstream expressions: the net's
	// driven wire, or the reg/latch's Q output. For memories this is unset;
	// use memOp/row/elemWidth instead.
	value grh.ValueID

	// stateOp is the Register/Latch operation backing a reg/latch entry.
	stateOp grh.OperationID

	// memOp is the Memory declaration operation backing a mem entry.
	memOp     grh.OperationID
	row       int
	elemWidth int

	// writerEstablished records whether a real writer (not just a port
	// declaration) has targeted this entry yet, letting a bare output-port
	// net entry be upgraded in place to a reg the first time a clocked
	// block writes it (spec.md §4.9: "output ports backed by a register").
	writerEstablished bool
	isOutputPort      bool
}

// signalTable is the net/reg/mem memo set for one module elaboration, plus
// the conflict set spec.md §4.3 rule 4 requires ("a signal observed as both
// net-driven and reg-driven is a conflict: it is not memoized at all").
type signalTable struct {
	g     *grh.Graph
	b     *builder
	d     *diag.Diagnostics
	graph string // module symbol text, for diagnostic context

	entries   map[string]*signalEntry
	conflicts map[string]bool
}

func newSignalTable(g *grh.Graph, b *builder, d *diag.Diagnostics, graphName string) *signalTable {
	return &signalTable{
		g: g, b: b, d: d, graph: graphName,
		entries:   make(map[string]*signalEntry),
		conflicts: make(map[string]bool),
	}
}

func (t *signalTable) ctx(name string) string { return t.graph + "::" + name }

// declarePort pre-populates the table from a module port, so references to
// it before any procedural write still resolve correctly.
func (t *signalTable) declarePort(name string, value grh.ValueID, width int, signed bool, isOutput bool) {
	t.entries[name] = &signalEntry{
		kind: sigNet, value: value, width: width, signed: signed,
		isOutputPort: isOutput,
	}
}

// lookup resolves a read of name, without establishing a write. Returns
// false if the signal was never declared/written (caller falls back to an
// implicit 1-bit wire) or was flagged as a net/reg conflict.
func (t *signalTable) lookup(name string) (*signalEntry, bool) {
	if t.conflicts[name] {
		return nil, false
	}
	e, ok := t.entries[name]
	return e, ok
}

// getOrCreateCombinational resolves (creating if necessary) a
// continuous-assign or always_comb/always_latch(-comb-shaped) write target
// as a net, the classification spec.md §4.3 rule 1 describes.
func (t *signalTable) getOrCreateCombinational(name string, width int, signed bool) (*signalEntry, bool) {
	e, ok := t.entries[name]
	if !ok {
		sym := t.b.syms.Intern(name)
		v, err := t.g.CreateValue(sym, width, signed, grh.Logic)
		if err != nil {
			t.d.Conflictf(t.ctx(name), "could not materialize net: %v", err)
			return nil, false
		}
		e = &signalEntry{kind: sigNet, value: v, width: width, signed: signed}
		t.entries[name] = e
		e.writerEstablished = true
		return e, true
	}
	if t.conflicts[name] {
		return nil, false
	}
	if e.kind != sigNet {
		t.flagConflict(name)
		return nil, false
	}
	e.writerEstablished = true
	return e, true
}

// getOrCreateSequential resolves a clocked-block write target as a
// register, upgrading a bare output-port net entry in place when this is
// its first real writer (spec.md §4.9).
func (t *signalTable) getOrCreateSequential(name string, width int, signed bool) (*signalEntry, bool) {
	e, ok := t.entries[name]
	if !ok {
		e = &signalEntry{kind: sigReg, width: width, signed: signed}
		t.entries[name] = e
		t.materializeRegister(name, e)
		return e, true
	}
	if t.conflicts[name] {
		return nil, false
	}
	if e.kind == sigNet && e.isOutputPort && !e.writerEstablished {
		e.kind = sigReg
		t.materializeRegister(name, e)
		return e, true
	}
	if e.kind != sigReg {
		t.flagConflict(name)
		return nil, false
	}
	e.writerEstablished = true
	return e, true
}

func (t *signalTable) materializeRegister(name string, e *signalEntry) {
	op, err := t.g.CreateOperation(grh.KindRegister, t.b.freshSymbol("reg_"+name))
	if err != nil {
		t.d.Conflictf(t.ctx(name), "could not materialize register: %v", err)
		return
	}
	t.g.Operation(op).SetAttr("width", grh.Int64(int64(e.width)))
	t.g.Operation(op).SetAttr("isSigned", grh.Bool(e.signed))
	e.stateOp = op
	e.writerEstablished = true

	if e.value == grh.InvalidValue {
		sym := t.b.syms.Intern(name)
		v, err := t.g.CreateValue(sym, e.width, e.signed, grh.Logic)
		if err != nil {
			t.d.Conflictf(t.ctx(name), "could not materialize register Q: %v", err)
			return
		}
		e.value = v
	}
	op2 := t.g.Operation(op)
	op2.SetAttr("regSymbol", grh.String(t.g.Symbols().Text(op2.Symbol())))
	op2.SetAttr("qSymbol", grh.String(t.g.Symbols().Text(t.g.Value(e.value).Symbol())))
}

// getOrCreateLatch is the level-sensitive counterpart of
// getOrCreateSequential.
func (t *signalTable) getOrCreateLatch(name string, width int, signed bool) (*signalEntry, bool) {
	e, ok := t.entries[name]
	if !ok {
		e = &signalEntry{kind: sigLatch, width: width, signed: signed}
		t.entries[name] = e
		t.materializeLatch(name, e)
		return e, true
	}
	if t.conflicts[name] {
		return nil, false
	}
	if e.kind == sigNet && e.isOutputPort && !e.writerEstablished {
		e.kind = sigLatch
		t.materializeLatch(name, e)
		return e, true
	}
	if e.kind != sigLatch {
		t.flagConflict(name)
		return nil, false
	}
	e.writerEstablished = true
	return e, true
}

func (t *signalTable) materializeLatch(name string, e *signalEntry) {
	op, err := t.g.CreateOperation(grh.KindLatch, t.b.freshSymbol("latch_"+name))
	if err != nil {
		t.d.Conflictf(t.ctx(name), "could not materialize latch: %v", err)
		return
	}
	t.g.Operation(op).SetAttr("width", grh.Int64(int64(e.width)))
	t.g.Operation(op).SetAttr("isSigned", grh.Bool(e.signed))
	e.stateOp = op
	e.writerEstablished = true
	if e.value == grh.InvalidValue {
		sym := t.b.syms.Intern(name)
		v, err := t.g.CreateValue(sym, e.width, e.signed, grh.Logic)
		if err != nil {
			t.d.Conflictf(t.ctx(name), "could not materialize latch Q: %v", err)
			return
		}
		e.value = v
	}
	op2 := t.g.Operation(op)
	op2.SetAttr("qSymbol", grh.String(t.g.Symbols().Text(t.g.Value(e.value).Symbol())))
}

// getOrCreateMemory resolves an array-select target/source as a kMemory,
// tracking the highest statically observed address and the widest observed
// element bit position (spec.md §4.3 rule 3). astiface exposes no
// standalone array-declaration item, so both row count and element width
// are inferred opportunistically from literal addresses/bit positions
// rather than read from a declaration: a memory indexed only by a runtime
// signal (never a ConstExpr address) is sized row=1 regardless of its real
// declared depth, since there is no declaration surface for a dynamically
// addressed memory's bound to ever reach here — see DESIGN.md.
func (t *signalTable) getOrCreateMemory(name string, elemWidth int, signed bool, observedAddr int) *signalEntry {
	e, ok := t.entries[name]
	if !ok {
		op, err := t.g.CreateOperation(grh.KindMemory, t.b.freshSymbol("mem_"+name))
		if err != nil {
			t.d.Conflictf(t.ctx(name), "could not materialize memory: %v", err)
			return nil
		}
		row := observedAddr + 1
		if row < 1 {
			row = 1
		}
		t.g.Operation(op).SetAttr("width", grh.Int64(int64(elemWidth)))
		t.g.Operation(op).SetAttr("row", grh.Int64(int64(row)))
		t.g.Operation(op).SetAttr("isSigned", grh.Bool(signed))
		op2 := t.g.Operation(op)
		op2.SetAttr("memSymbol", grh.String(t.g.Symbols().Text(op2.Symbol())))
		e = &signalEntry{kind: sigMem, memOp: op, row: row, elemWidth: elemWidth, signed: signed}
		t.entries[name] = e
		return e
	}
	if e.kind != sigMem {
		t.flagConflict(name)
		return nil
	}
	if observedAddr+1 > e.row {
		e.row = observedAddr + 1
		t.g.Operation(e.memOp).SetAttr("row", grh.Int64(int64(e.row)))
	}
	t.growElemWidth(e, elemWidth)
	return e
}

// growElemWidth widens a memory's element width the same opportunistic way
// row grows: a per-bit/per-slice write only ever proves "this element is at
// least this wide," never the true declared width (see getOrCreateMemory's
// doc comment), so later writes touching a higher bit position widen the
// memo in place rather than leaving it stuck at whatever the first writer
// happened to touch.
func (t *signalTable) growElemWidth(e *signalEntry, observedWidth int) {
	if observedWidth > e.elemWidth {
		e.elemWidth = observedWidth
		t.g.Operation(e.memOp).SetAttr("width", grh.Int64(int64(e.elemWidth)))
	}
}

func (t *signalTable) flagConflict(name string) {
	if t.conflicts[name] {
		return
	}
	t.conflicts[name] = true
	delete(t.entries, name)
	t.d.Conflictf(t.ctx(name), "signal is both net-driven and reg-driven; dropped from memo")
}
