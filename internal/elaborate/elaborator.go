// Package elaborate lowers an already-elaborated astiface AST into the GRH
// graph IR (spec.md §4.2-§4.7): type flattening, signal/write-back memos,
// RHS expression conversion, procedural always-block lowering, hierarchy
// and parametric specialization, and DPI lowering.
package elaborate

import (
	"fmt"
	"strings"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/diag"
	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/netlist"
	"github.com/sarchlab/grhc/internal/symtab"
	"github.com/sarchlab/grhc/internal/typeflatten"
)

// Elaborator lowers one compilation unit into a Netlist. It is not safe for
// concurrent use by multiple goroutines against the same Netlist (spec.md
// §5: "serializes access internally to the netlist-mutation paths" — here
// that serialization is simply "don't call Elaborate concurrently").
type Elaborator struct {
	syms  *symtab.Interner
	diags *diag.Diagnostics
	flat  *typeflatten.Flattener

	moduleByName map[string]astiface.Module
	bodies       map[string]*grh.Graph // specialized module symbol text -> graph
	bodyOrder    []string              // specialization keys, in first-materialized order
	bodyBase     map[string]string     // specialization key -> its base module name
	instantiated map[string]bool       // module names referenced by at least one instance
}

// New creates an Elaborator recording diagnostics into d.
func New(d *diag.Diagnostics) *Elaborator {
	syms := symtab.New()
	return &Elaborator{
		syms:         syms,
		diags:        d,
		flat:         typeflatten.New(d),
		bodies:       make(map[string]*grh.Graph),
		bodyBase:     make(map[string]string),
		instantiated: make(map[string]bool),
	}
}

// Elaborate lowers unit into a freshly built Netlist. Modules never
// referenced by any instance are marked top-level, matching how a
// synthesizable design's top is conventionally identified absent an
// explicit --top override (spec.md §6's driver sketch). A module that is
// only ever referenced through parameterized instances is never elaborated
// under a bare, unparameterized key of its own: every Graph that lands in
// the Netlist came from a specialization actually materialized, either
// directly here (for a module nothing instantiates) or as a side effect of
// lowering the instance that first referenced it (spec.md §4.7).
func (e *Elaborator) Elaborate(unit astiface.Unit) (*netlist.Netlist, error) {
	mods := unit.Modules()
	e.moduleByName = make(map[string]astiface.Module, len(mods))
	for _, m := range mods {
		e.moduleByName[m.Name()] = m
	}
	for _, m := range mods {
		for _, it := range m.Items() {
			if inst, ok := it.(astiface.InstanceItem); ok {
				e.instantiated[inst.ModuleName] = true
			}
		}
	}

	nl := netlist.New(e.syms)
	for _, m := range mods {
		if e.instantiated[m.Name()] {
			continue
		}
		if _, err := e.elaborateSpecialization(m, nil); err != nil {
			return nl, err
		}
	}

	for _, key := range e.bodyOrder {
		g := e.bodies[key]
		if !nl.AddGraph(g) {
			// Two specializations colliding on the same symbol text
			// legitimately collide; keep the first and move on.
			continue
		}
		base := e.bodyBase[key]
		nl.AddAlias(g.ModuleSymbol(), base)
		if !e.instantiated[base] {
			nl.MarkTop(g.ModuleSymbol())
		}
	}
	return nl, nil
}

// specializationSymbol builds "<base>$PARAM_VAL..." from params already in
// declaration order, per spec.md §4.7.
func specializationSymbol(base string, params []astiface.ParamBinding) string {
	if len(params) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	for _, p := range params {
		fmt.Fprintf(&sb, "$%s_%s", p.Name, p.Value)
	}
	return sb.String()
}

// elaborateSpecialization returns the (possibly cached) Graph for module m
// specialized with params, materializing it on first reference (spec.md
// §4.7: "every instance body is materialized once... two instances that
// share a canonical body share the same Graph").
func (e *Elaborator) elaborateSpecialization(m astiface.Module, params []astiface.ParamBinding) (*grh.Graph, error) {
	key := specializationSymbol(m.Name(), params)
	if g, ok := e.bodies[key]; ok {
		return g, nil
	}

	modSym := e.syms.Intern(key)
	g := grh.New(e.syms, modSym)
	e.bodies[key] = g // register before lowering the body so self-recursive hierarchies terminate
	e.bodyOrder = append(e.bodyOrder, key)
	e.bodyBase[key] = m.Name()

	mc := &moduleCtx{
		e:    e,
		g:    g,
		mod:  m,
		b:    newBuilder(g, e.syms),
		diag: e.diags,
		name: key,
	}
	mc.sig = newSignalTable(g, mc.b, e.diags, key)
	mc.wb = newWriteBackMemo(mc.b)

	if err := mc.run(); err != nil {
		return g, err
	}
	return g, nil
}

// moduleCtx holds the elaboration state for one module instance body: the
// signal/write-back memos, the flattener cache, and the live "most recent
// value" environment procedural lowering consults.
type moduleCtx struct {
	e    *Elaborator
	g    *grh.Graph
	mod  astiface.Module
	b    *builder
	diag *diag.Diagnostics
	name string

	sig *signalTable
	wb  *writeBackMemo

	dpiImports map[string]grh.OperationID // DPI import name -> kDpicImport op
	inouts     map[string]grh.InoutPort   // port name -> its (in,out,oe) triple
	entryKeys  map[string][]writeKey      // signal name -> write-back keys targeting it
	memWrites  []memWrite                 // recorded memory writes, finalized after the main pass

	seqKeyEdges map[string][]astiface.EdgeSignal // seq key text -> its sensitivity list

	// curEnv is the procedural lowerer's active local-scope override
	// (loop-variable bindings and in-flight write values), consulted by
	// convertIdent before the signal table. nil outside procedural lowering.
	curEnv *env
}

func (mc *moduleCtx) run() error {
	if err := mc.declarePorts(); err != nil {
		return err
	}
	for _, it := range mc.mod.Items() {
		if err := mc.lowerItem(it); err != nil {
			return err
		}
	}
	mc.finalizeWriteBack()
	return nil
}

func (mc *moduleCtx) declarePorts() error {
	for _, p := range mc.mod.Ports() {
		res := mc.e.flat.Flatten(p.Type, p.Name)
		sym := mc.e.syms.Intern(p.Name)
		switch p.Direction {
		case astiface.DirInput:
			v, err := mc.g.AddInputPort(sym, res.TotalWidth, res.IsSigned, grh.Logic)
			if err != nil {
				return fmt.Errorf("elaborate %s: input port %s: %w", mc.name, p.Name, err)
			}
			mc.sig.declarePort(p.Name, v, res.TotalWidth, res.IsSigned, false)
		case astiface.DirOutput:
			v, err := mc.g.AddOutputPort(sym, res.TotalWidth, res.IsSigned, grh.Logic)
			if err != nil {
				return fmt.Errorf("elaborate %s: output port %s: %w", mc.name, p.Name, err)
			}
			mc.sig.declarePort(p.Name, v, res.TotalWidth, res.IsSigned, true)
		case astiface.DirInout:
			triple, err := mc.g.AddInoutPort(sym, res.TotalWidth, res.IsSigned)
			if err != nil {
				return fmt.Errorf("elaborate %s: inout port %s: %w", mc.name, p.Name, err)
			}
			// The readable value for an inout is its "in" leg; writers
			// target the write-back memo under the same name; at
			// finalization the composed value drives "out" and "oe" is
			// driven all-ones (see finalizeWriteBack below).
			mc.sig.declarePort(p.Name, triple.In, res.TotalWidth, res.IsSigned, false)
			mc.inoutTriples()[p.Name] = triple
		}
	}
	return nil
}

func (mc *moduleCtx) inoutTriples() map[string]grh.InoutPort {
	if mc.inouts == nil {
		mc.inouts = make(map[string]grh.InoutPort)
	}
	return mc.inouts
}

func (mc *moduleCtx) lowerItem(it astiface.Item) error {
	switch v := it.(type) {
	case astiface.ContinuousAssign:
		return mc.lowerContinuousAssign(v)
	case astiface.ProceduralBlock:
		return mc.lowerProceduralBlock(v)
	case astiface.InstanceItem:
		return mc.lowerInstance(v)
	case astiface.DpiImportItem:
		mc.lowerDpiImport(v)
		return nil
	default:
		mc.diag.NotYetImplementedf(mc.name, "unrecognized module item %T", it)
		return nil
	}
}

// targetInfo describes an assignment's LHS after resolving it against the
// signal table: which memo entry it targets and the absolute bit range
// within that entry the RHS should be converted against.
type targetInfo struct {
	name     string
	msb, lsb int
	width    int
	signed   bool
	isMemory bool
	addr     grh.ValueID
	addrConst int
	hasAddrConst bool
}

// resolveTarget walks an LHS expression down to its named root, recording
// any static/dynamic slice so write-back records land on the right bit
// range (spec.md §4.3's write-back memo contract).
func (mc *moduleCtx) resolveTarget(lhs astiface.Expr) (*targetInfo, error) {
	switch v := lhs.(type) {
	case astiface.IdentExpr:
		return &targetInfo{name: v.Name, msb: -1, lsb: 0}, nil
	case astiface.SliceExpr:
		base, err := mc.resolveTarget(v.Base)
		if err != nil {
			return nil, err
		}
		base.msb, base.lsb = v.MSB, v.LSB
		return base, nil
	case astiface.ArraySelectExpr:
		base, err := mc.resolveTarget(v.Base)
		if err != nil {
			return nil, err
		}
		if base.isMemory {
			mc.diag.Unsupportedf(mc.name, "nested array-select assignment target not supported")
			return nil, fmt.Errorf("elaborate %s: nested array-select target", mc.name)
		}
		base.isMemory = true
		if ce, ok := v.Index.(astiface.ConstExpr); ok {
			if n, ok := parseIntLiteral(ce.Literal); ok {
				base.addrConst = n
				base.hasAddrConst = true
			}
		}
		addr, err := mc.convertExpr(v.Index, -1, false)
		if err != nil {
			return nil, err
		}
		base.addr = addr
		return base, nil
	case astiface.IndexedSliceExpr:
		base, err := mc.resolveTarget(v.Base)
		if err != nil {
			return nil, err
		}
		width := v.Width
		if width < 1 {
			width = 1
		}
		if n, ok := mc.foldConstIndex(v.Start); ok {
			base.msb, base.lsb = n+width-1, n
			return base, nil
		}
		mc.diag.Todof(mc.name, "indexed part-select with a non-foldable start is assigned full-width")
		return base, nil
	default:
		mc.diag.Unsupportedf(mc.name, "unsupported assignment target shape %T", lhs)
		return nil, fmt.Errorf("elaborate %s: unsupported assignment target", mc.name)
	}
}

func (mc *moduleCtx) lowerContinuousAssign(a astiface.ContinuousAssign) error {
	tgt, err := mc.resolveTarget(a.LHS)
	if err != nil {
		return nil // diagnostic already recorded; skip this assign
	}
	return mc.lowerWrite(tgt, a.RHS, writeKey{kind: writeContinuous}, sigNet)
}

// lowerWrite converts rhs and records it into the write-back memo under
// tgt, first establishing (or reusing) tgt's memo entry as the requested
// classification.
func (mc *moduleCtx) lowerWrite(tgt *targetInfo, rhs astiface.Expr, key writeKey, classify signalKind) error {
	key.name = tgt.name

	if tgt.isMemory {
		width := 1
		if tgt.msb >= tgt.lsb && tgt.msb >= 0 {
			width = tgt.msb - tgt.lsb + 1
		}
		entry := mc.sig.getOrCreateMemory(tgt.name, memWidthClaim(tgt), false, tgt.addrConst)
		if entry == nil {
			return nil
		}
		val, err := mc.convertExpr(rhs, width, false)
		if err != nil {
			return err
		}
		mc.recordMemoryWrite(entry, tgt, val, key, nil)
		return nil
	}

	var entry *signalEntry
	var ok bool
	switch classify {
	case sigReg:
		entry, ok = mc.sig.getOrCreateSequential(tgt.name, mc.inferWidth(tgt), false)
	case sigLatch:
		entry, ok = mc.sig.getOrCreateLatch(tgt.name, mc.inferWidth(tgt), false)
	default:
		entry, ok = mc.sig.getOrCreateCombinational(tgt.name, mc.inferWidth(tgt), false)
	}
	if !ok || entry == nil {
		return nil
	}

	msb, lsb := tgt.msb, tgt.lsb
	if msb < 0 {
		msb = entry.width - 1
	}
	width := msb - lsb + 1
	val, err := mc.convertExpr(rhs, width, entry.signed)
	if err != nil {
		return err
	}
	mc.wb.Record(key, msb, lsb, val)
	mc.recordEntryKey(entry, key)
	return nil
}

// inferWidth guesses a freshly-seen target's declared width. astiface
// exposes no standalone net/reg declaration item, so a signal seen for the
// first time is sized from its slice range when one was given, else as a
// 1-bit implicit net; the RHS is then converted to that width.
func (mc *moduleCtx) inferWidth(tgt *targetInfo) int {
	if tgt.msb >= tgt.lsb && tgt.msb >= 0 {
		return tgt.msb - tgt.lsb + 1
	}
	return 1
}

// recordEntryKey tracks in mc.entryKeys, per signal name, which write-back
// keys have targeted it.
func (mc *moduleCtx) recordEntryKey(entry *signalEntry, key writeKey) {
	if mc.entryKeys == nil {
		mc.entryKeys = make(map[string][]writeKey)
	}
	name := key.name
	for _, k := range mc.entryKeys[name] {
		if k == key {
			return
		}
	}
	mc.entryKeys[name] = append(mc.entryKeys[name], key)
}

// recordMemoryWrite defers one memory write for later composition.
// condPath is the conjunction of enclosing if/case branch conditions this
// write was reached under (nil for a continuous assign or instance-driven
// write, which are always unconditional); finalizeMemoryWrites groups
// writes to the same memory/address/seq key together and recovers a shared
// updateCond plus a per-bit mask from these per-write guards, the same way
// mergeEnv folds branch conditions into a register's composed next-value.
func (mc *moduleCtx) recordMemoryWrite(entry *signalEntry, tgt *targetInfo, val grh.ValueID, key writeKey, condPath []grh.ValueID) {
	mc.memWrites = append(mc.memWrites, memWrite{entry: entry, tgt: *tgt, value: val, key: key, condPath: condPath})
}

type memWrite struct {
	entry    *signalEntry
	tgt      targetInfo
	value    grh.ValueID
	key      writeKey
	condPath []grh.ValueID
}

// memWidthClaim is how many element bits a memory write's own target proves
// exist: the highest bit position it touches, not the (possibly much
// narrower) width of the slice itself. Used only to grow a memory's
// inferred elemWidth (getOrCreateMemory/growElemWidth), the same
// opportunistic inference row count already relies on.
func memWidthClaim(tgt *targetInfo) int {
	if tgt.msb >= 0 {
		return tgt.msb + 1
	}
	return defaultUnsizedWidth
}

// foldConstIndex resolves e to a compile-time-known bit position: either a
// literal, or an identifier currently bound in the innermost env to a
// constant. The latter is the shape an unrolled for-loop index variable
// takes (lowerFor binds the loop variable to a fresh literal Value each
// iteration before lowering the body), which is how a masked memory write's
// per-bit index (mem[addr][i], din[i], be[i]) actually reaches a target or
// operand: never a literal in the source, but always foldable once the
// loop has been unrolled.
func (mc *moduleCtx) foldConstIndex(e astiface.Expr) (int, bool) {
	switch v := e.(type) {
	case astiface.ConstExpr:
		return parseIntLiteral(v.Literal)
	case astiface.IdentExpr:
		if mc.curEnv == nil {
			return 0, false
		}
		val, ok := (*mc.curEnv)[v.Name]
		if !ok {
			return 0, false
		}
		vv := mc.g.Value(val)
		if vv == nil || !vv.HasDefiningOp() {
			return 0, false
		}
		op := mc.g.Operation(vv.DefiningOp())
		if op == nil || op.Kind() != grh.KindConstant {
			return 0, false
		}
		lit, ok := op.GetAttr("constValue")
		if !ok {
			return 0, false
		}
		if s, ok := lit.String(); ok {
			return parseIntLiteral(s)
		}
		if n, ok := lit.Int64(); ok {
			return int(n), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func parseIntLiteral(lit string) (int, bool) {
	// Handle the common unsized-decimal and sized "<w>'d<N>" shapes; other
	// radixes are left unresolved (dynamic address fallback).
	s := lit
	if i := strings.Index(s, "'"); i >= 0 {
		rest := strings.TrimLeft(s[i+1:], "sS")
		if rest == "" || (rest[0] != 'd' && rest[0] != 'D') {
			return 0, false
		}
		s = rest[1:]
	}
	s = strings.TrimSpace(s)
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return 0, false
	}
	return n, true
}

// finalizeWriteBack composes every write-back memo key and wires the
// result into its sink (net assign, register/latch write port, or memory
// write port), per spec.md §4.3.
func (mc *moduleCtx) finalizeWriteBack() {
	keys := mc.wb.Keys()
	for _, key := range keys {
		entry, ok := mc.sig.lookup(key.name)
		if !ok {
			continue
		}
		composed := mc.wb.Compose(key, entry.width)
		switch entry.kind {
		case sigNet:
			if triple, ok := mc.inoutTriples()[key.name]; ok {
				mc.b.assign(triple.Out, composed)
				mc.b.assign(triple.OE, mc.b.allOnes(mc.g.Value(triple.OE).Width()))
				continue
			}
			if mc.g.Value(entry.value).HasDefiningOp() {
				continue
			}
			mc.b.assign(entry.value, composed)
		case sigReg:
			mc.emitRegisterWritePort(entry, composed, key)
		case sigLatch:
			mc.emitLatchWritePort(entry, composed, key)
		}
	}
	mc.finalizeMemoryWrites()
}

// finalizeMemoryWrites groups every recorded memory write by memory/seq
// key/address and composes each group into one write port (spec.md §4.3
// rule 3), recovering a shared updateCond and a real per-bit mask from the
// condPath each write was recorded under instead of emitting one
// unconditional all-ones write port per write.
func (mc *moduleCtx) finalizeMemoryWrites() {
	order, groups := groupMemoryWrites(mc.memWrites)
	for _, k := range order {
		mc.composeMemoryGroup(k, groups[k])
	}
}
