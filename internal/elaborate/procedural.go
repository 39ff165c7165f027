package elaborate

import (
	"fmt"
	"strings"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/grh"
)

// env is a local override scope consulted before the signal table, used for
// both loop-variable bindings and the accumulating "current value" of a
// procedural block's write targets (spec.md §4.5's last-write-wins
// tracking, approximated here as blocking-style immediate update: a
// non-blocking assignment is visible to later reads in the same block).
type env map[string]grh.ValueID

func (e env) clone() env {
	out := make(env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// seqKeyText renders a block's sensitivity list into a stable string key
// (spec.md §4.5 "seq key"), used both as the write-back memo's grouping key
// and as the emitter's later sensitivity-list grouping key.
func seqKeyText(sens []astiface.EdgeSignal, syms func(astiface.Expr) string) string {
	if len(sens) == 0 {
		return ""
	}
	parts := make([]string, len(sens))
	for i, s := range sens {
		edge := "level"
		switch s.Edge {
		case astiface.EdgePos:
			edge = "posedge"
		case astiface.EdgeNeg:
			edge = "negedge"
		}
		parts[i] = edge + ":" + syms(s.Signal)
	}
	return strings.Join(parts, ",")
}

func exprLabel(e astiface.Expr) string {
	if id, ok := e.(astiface.IdentExpr); ok {
		return id.Name
	}
	return "?"
}

func (mc *moduleCtx) lowerProceduralBlock(p astiface.ProceduralBlock) error {
	switch p.Kind {
	case astiface.ProcInitial, astiface.ProcFinal:
		return mc.lowerSideEffectBlock(p)
	}

	key := seqKeyText(p.Sensitivity, exprLabel)
	if mc.seqKeyEdges == nil {
		mc.seqKeyEdges = make(map[string][]astiface.EdgeSignal)
	}
	mc.seqKeyEdges[key] = p.Sensitivity

	classify := sigNet
	switch p.Kind {
	case astiface.ProcAlwaysFF:
		classify = sigReg
	case astiface.ProcAlwaysLatch:
		classify = sigLatch
	case astiface.ProcAlwaysComb:
		classify = sigNet
	}

	baseline := mc.snapshotBaseline(p.Body)
	written := make(map[string]bool)
	final := mc.lowerStmtList(p.Body, baseline.clone(), written, ctrlCtx{seqKey: key})

	fullCoverage := mc.bodyHasElseForEveryIf(p.Body)
	for name := range written {
		if !fullCoverage && classify == sigNet && p.Kind == astiface.ProcAlwaysComb {
			mc.diag.Warnf(mc.name+"::"+name, "combinational block does not cover every branch; inferring a latch")
			classify = sigLatch
		}
		wk := writeKey{name: name, kind: writeProcedural, seqKey: key}
		rhsVal := final[name]
		width := mc.widthOf(rhsVal)
		mc.lowerWriteValue(name, rhsVal, width, wk, classify)
	}
	return nil
}

// lowerSideEffectBlock handles initial/final blocks: only the
// side-effecting statements (system tasks, DPI calls) are lowered; plain
// assignments inside initial/final are outside synthesizable scope and are
// recorded as a Todo rather than materialized.
func (mc *moduleCtx) lowerSideEffectBlock(p astiface.ProceduralBlock) error {
	for _, s := range p.Body {
		switch v := s.(type) {
		case astiface.SystemTaskStmt:
			mc.lowerSystemTaskStmt(v)
		case astiface.DpiCallStmt:
			mc.lowerDpiCallStmt(v)
		default:
			mc.diag.Todof(mc.name, "statement kind %T inside initial/final is not synthesized", s)
		}
	}
	return nil
}

// snapshotBaseline seeds the env with the current value of every signal the
// body assigns, so reads before a branch's first write see the entry's
// prior value rather than an implicit undeclared-wire placeholder.
func (mc *moduleCtx) snapshotBaseline(body []astiface.Stmt) env {
	e := make(env)
	var walk func([]astiface.Stmt)
	walk = func(stmts []astiface.Stmt) {
		for _, s := range stmts {
			switch v := s.(type) {
			case astiface.IfStmt:
				walk(v.Then)
				walk(v.Else)
			case astiface.CaseStmt:
				for _, c := range v.Cases {
					walk(c.Body)
				}
				walk(v.Default)
			case astiface.ForStmt:
				walk(v.Body)
			case astiface.ForeachStmt:
				walk(v.Body)
			case astiface.BlockingAssignStmt:
				mc.seedBaseline(e, v.LHS)
			case astiface.NonBlockingAssignStmt:
				mc.seedBaseline(e, v.LHS)
			}
		}
	}
	walk(body)
	return e
}

func (mc *moduleCtx) seedBaseline(e env, lhs astiface.Expr) {
	tgt, err := mc.resolveTarget(lhs)
	if err != nil || tgt.isMemory {
		return
	}
	if _, ok := e[tgt.name]; ok {
		return
	}
	if entry, ok := mc.sig.lookup(tgt.name); ok {
		e[tgt.name] = entry.value
	}
}

// bodyHasElseForEveryIf is a shallow, best-effort full-case-coverage check:
// every top-level if carries an else and every case carries a default (or
// is marked FullCase). Only top-level statements are inspected: a nested if
// without an else inside a covered branch is not detected, and a case whose
// labels are exhaustive but which has neither a default nor FullCase (e.g.
// complete casez wildcards) counts as not covering.
func (mc *moduleCtx) bodyHasElseForEveryIf(body []astiface.Stmt) bool {
	for _, s := range body {
		switch v := s.(type) {
		case astiface.IfStmt:
			if v.Else == nil {
				return false
			}
		case astiface.CaseStmt:
			if !v.FullCase && v.Default == nil {
				return false
			}
		}
	}
	return true
}

// ctrlCtx is the control-flow context threaded down through statement
// lowering: the governing seq key (constant for the whole procedural block)
// and condPath, the conjunction of enclosing if/case branch conditions
// (outermost first). A memory write recorded anywhere in a block remembers
// the guard it was reached under, so finalizeMemoryWrites can later compose
// per-bit/per-iteration writes into one write port with a real dynamic mask
// instead of dropping the guard (spec.md §4.3 rule 3's masked write shape).
type ctrlCtx struct {
	seqKey   string
	condPath []grh.ValueID
}

// pushCond returns a copy of cc with extra appended to condPath, never
// aliasing the caller's backing array (the Then and Else branches must
// diverge from the same prefix without clobbering each other).
func (cc ctrlCtx) pushCond(extra grh.ValueID) ctrlCtx {
	path := make([]grh.ValueID, len(cc.condPath)+1)
	copy(path, cc.condPath)
	path[len(cc.condPath)] = extra
	cc.condPath = path
	return cc
}

// lowerStmtList executes stmts against e (already primed with the baseline
// or an enclosing branch's environment) and returns the resulting env,
// tracking every name actually assigned in written.
func (mc *moduleCtx) lowerStmtList(stmts []astiface.Stmt, e env, written map[string]bool, cc ctrlCtx) env {
	cur := e
	for _, s := range stmts {
		cur = mc.lowerStmt(s, cur, written, cc)
	}
	return cur
}

func (mc *moduleCtx) lowerStmt(s astiface.Stmt, e env, written map[string]bool, cc ctrlCtx) env {
	switch v := s.(type) {
	case astiface.IfStmt:
		return mc.lowerIf(v, e, written, cc)
	case astiface.CaseStmt:
		return mc.lowerCase(v, e, written, cc)
	case astiface.ForStmt:
		return mc.lowerFor(v, e, written, cc)
	case astiface.ForeachStmt:
		return mc.lowerForeach(v, e, written, cc)
	case astiface.BlockingAssignStmt:
		return mc.lowerAssignStmt(v.LHS, v.RHS, e, written, cc)
	case astiface.NonBlockingAssignStmt:
		return mc.lowerAssignStmt(v.LHS, v.RHS, e, written, cc)
	case astiface.SystemTaskStmt:
		prev := mc.curEnv
		mc.curEnv = &e
		mc.lowerSystemTaskStmt(v)
		mc.curEnv = prev
		return e
	case astiface.DpiCallStmt:
		prev := mc.curEnv
		mc.curEnv = &e
		mc.lowerDpiCallStmt(v)
		mc.curEnv = prev
		return e
	case astiface.BreakStmt, astiface.ContinueStmt:
		return e
	default:
		mc.diag.NotYetImplementedf(mc.name, "unrecognized statement %T", s)
		return e
	}
}

func (mc *moduleCtx) lowerIf(v astiface.IfStmt, e env, written map[string]bool, cc ctrlCtx) env {
	cond, err := mc.withEnv(e, func() (grh.ValueID, error) { return mc.convertExpr(v.Cond, 1, false) })
	if err != nil {
		return e
	}
	thenEnv := mc.lowerStmtList(v.Then, e.clone(), written, cc.pushCond(cond))
	elseEnv := e
	if v.Else != nil {
		notCond := mc.b.unary(grh.KindLogicNot, cond, 1, false)
		elseEnv = mc.lowerStmtList(v.Else, e.clone(), written, cc.pushCond(notCond))
	}
	return mc.mergeEnv(cond, thenEnv, elseEnv, e)
}

func (mc *moduleCtx) lowerCase(v astiface.CaseStmt, e env, written map[string]bool, cc ctrlCtx) env {
	sel, err := mc.withEnv(e, func() (grh.ValueID, error) { return mc.convertExpr(v.Selector, -1, false) })
	if err != nil {
		return e
	}
	acc := e
	if v.Default != nil {
		acc = mc.lowerStmtList(v.Default, e.clone(), written, cc)
	}
	for i := len(v.Cases) - 1; i >= 0; i-- {
		c := v.Cases[i]
		cond, err := mc.withEnv(e, func() (grh.ValueID, error) { return mc.caseLabelCond(sel, c.Labels) })
		if err != nil {
			continue
		}
		branchEnv := mc.lowerStmtList(c.Body, e.clone(), written, cc.pushCond(cond))
		acc = mc.mergeEnv(cond, branchEnv, acc, e)
	}
	return acc
}

func (mc *moduleCtx) caseLabelCond(sel grh.ValueID, labels []astiface.Expr) (grh.ValueID, error) {
	var acc grh.ValueID
	for i, lbl := range labels {
		v, err := mc.convertExpr(lbl, mc.widthOf(sel), false)
		if err != nil {
			return grh.InvalidValue, err
		}
		eq := mc.b.binary(grh.KindEq, sel, v, 1, false)
		if i == 0 {
			acc = eq
			continue
		}
		acc = mc.b.binary(grh.KindLogicOr, acc, eq, 1, false)
	}
	return acc, nil
}

// mergeEnv folds thenEnv/elseEnv back into a single env, inserting a kMux
// for every name either branch touched relative to base.
func (mc *moduleCtx) mergeEnv(cond grh.ValueID, thenEnv, elseEnv, base env) env {
	out := base.clone()
	seen := make(map[string]bool)
	for name, tv := range thenEnv {
		if bv, ok := base[name]; ok && bv == tv {
			continue
		}
		seen[name] = true
		ev, ok := elseEnv[name]
		if !ok {
			ev = base[name]
		}
		out[name] = mc.muxMerge(cond, tv, ev)
	}
	for name, ev := range elseEnv {
		if seen[name] {
			continue
		}
		if bv, ok := base[name]; ok && bv == ev {
			continue
		}
		tv, ok := thenEnv[name]
		if !ok {
			tv = base[name]
		}
		out[name] = mc.muxMerge(cond, tv, ev)
	}
	return out
}

func (mc *moduleCtx) muxMerge(cond, then, els grh.ValueID) grh.ValueID {
	if then == els {
		return then
	}
	width := maxInt(mc.widthOf(then), mc.widthOf(els))
	signed := mc.isSignedOf(then) && mc.isSignedOf(els)
	then = mc.b.extend(then, mc.widthOf(then), width, signed)
	els = mc.b.extend(els, mc.widthOf(els), width, signed)
	return mc.b.mux(cond, then, els, width, signed)
}

// lowerFor unrolls a compile-time-bounded for-loop (spec.md §4.5).
func (mc *moduleCtx) lowerFor(v astiface.ForStmt, e env, written map[string]bool, cc ctrlCtx) env {
	step := v.Step
	if step == 0 {
		mc.diag.NotYetImplementedf(mc.name, "for-loop with zero step")
		return e
	}
	cur := e
	i := v.InitVal
	for (step > 0 && i < v.Limit) || (step < 0 && i > v.Limit) {
		iter := cur.clone()
		iter[v.InitVar] = mc.b.constFromLiteral(fmt.Sprintf("%d", i), defaultUnsizedWidth, false)
		cur = mc.lowerStmtList(v.Body, iter, written, cc)
		i += step
	}
	if prev, ok := e[v.InitVar]; ok {
		cur[v.InitVar] = prev
	} else {
		delete(cur, v.InitVar)
	}
	return cur
}

func (mc *moduleCtx) lowerForeach(v astiface.ForeachStmt, e env, written map[string]bool, cc ctrlCtx) env {
	cur := e
	for i := 0; i < v.ArrayLen; i++ {
		iter := cur.clone()
		iter[v.IndexVar] = mc.b.constFromLiteral(fmt.Sprintf("%d", i), defaultUnsizedWidth, false)
		cur = mc.lowerStmtList(v.Body, iter, written, cc)
	}
	if prev, ok := e[v.IndexVar]; ok {
		cur[v.IndexVar] = prev
	} else {
		delete(cur, v.IndexVar)
	}
	return cur
}

func (mc *moduleCtx) lowerAssignStmt(lhs, rhs astiface.Expr, e env, written map[string]bool, cc ctrlCtx) env {
	prev := mc.curEnv
	mc.curEnv = &e
	defer func() { mc.curEnv = prev }()

	tgt, err := mc.resolveTarget(lhs)
	if err != nil {
		return e
	}
	if tgt.isMemory {
		width := 1
		if tgt.msb >= tgt.lsb && tgt.msb >= 0 {
			width = tgt.msb - tgt.lsb + 1
		}
		rhsVal, err := mc.convertExpr(rhs, width, false)
		if err != nil {
			return e
		}
		entry := mc.sig.getOrCreateMemory(tgt.name, memWidthClaim(tgt), false, tgt.addrConst)
		if entry != nil {
			key := writeKey{name: tgt.name, kind: writeProcedural, seqKey: cc.seqKey}
			mc.recordMemoryWrite(entry, tgt, rhsVal, key, cc.condPath)
		}
		return e
	}

	prevVal, hasPrev := e[tgt.name]
	if !hasPrev {
		if entry, ok := mc.sig.lookup(tgt.name); ok {
			prevVal = entry.value
			hasPrev = true
		}
	}
	msb, lsb := tgt.msb, tgt.lsb
	var rhsWidth int
	if msb >= 0 {
		rhsWidth = msb - lsb + 1
	} else if hasPrev {
		rhsWidth = mc.widthOf(prevVal)
	} else {
		rhsWidth = defaultUnsizedWidth
	}

	rhsVal, err := mc.convertExpr(rhs, rhsWidth, false)
	if err != nil {
		return e
	}

	var newVal grh.ValueID
	if msb < 0 || !hasPrev {
		newVal = rhsVal
	} else {
		newVal = mc.overlaySlice(prevVal, msb, lsb, rhsVal)
	}
	out := e.clone()
	out[tgt.name] = newVal
	written[tgt.name] = true
	return out
}

// overlaySlice replaces prev[msb:lsb] with newSlice, keeping the
// surrounding bits of prev unchanged.
func (mc *moduleCtx) overlaySlice(prev grh.ValueID, msb, lsb int, newSlice grh.ValueID) grh.ValueID {
	full := mc.widthOf(prev)
	var parts []grh.ValueID
	if msb < full-1 {
		parts = append(parts, mc.b.sliceStatic(prev, full-1, msb+1))
	}
	parts = append(parts, newSlice)
	if lsb > 0 {
		parts = append(parts, mc.b.sliceStatic(prev, lsb-1, 0))
	}
	return mc.b.concat(parts, full)
}

func (mc *moduleCtx) lowerSystemTaskStmt(v astiface.SystemTaskStmt) {
	kind := grh.KindSystemTask
	switch v.Name {
	case "$display", "$write", "$strobe", "$monitor":
		kind = grh.KindDisplay
	case "$assert":
		kind = grh.KindAssert
	}
	op, err := mc.g.CreateOperation(kind, grh.InvalidSymbol)
	if err != nil {
		mc.diag.Conflictf(mc.name, "could not materialize system task %q: %v", v.Name, err)
		return
	}
	mc.b.setAttr(op, "name", grh.String(v.Name))
	for _, a := range v.Args {
		val, err := mc.convertExpr(a, -1, false)
		if err != nil {
			continue
		}
		mc.b.addOperand(op, val)
	}
}

func (mc *moduleCtx) lowerDpiCallStmt(v astiface.DpiCallStmt) {
	_, err := mc.convertDpiCallExpr(astiface.DpiCallExpr{ImportName: v.ImportName, Args: v.Args}, -1)
	if err != nil {
		mc.diag.Conflictf(mc.name, "could not lower DPI call statement to %q: %v", v.ImportName, err)
	}
}

// withEnv runs fn with e installed as the active local-scope override for
// convertIdent, restoring whatever was previously active.
func (mc *moduleCtx) withEnv(e env, fn func() (grh.ValueID, error)) (grh.ValueID, error) {
	prev := mc.curEnv
	mc.curEnv = &e
	defer func() { mc.curEnv = prev }()
	return fn()
}

// lowerWriteValue records one already-converted procedural write value
// into the write-back memo, establishing the target's classification.
func (mc *moduleCtx) lowerWriteValue(name string, val grh.ValueID, width int, key writeKey, classify signalKind) {
	var entry *signalEntry
	var ok bool
	switch classify {
	case sigReg:
		entry, ok = mc.sig.getOrCreateSequential(name, width, mc.isSignedOf(val))
	case sigLatch:
		entry, ok = mc.sig.getOrCreateLatch(name, width, mc.isSignedOf(val))
	default:
		entry, ok = mc.sig.getOrCreateCombinational(name, width, mc.isSignedOf(val))
	}
	if !ok || entry == nil {
		return
	}
	val = mc.b.extend(val, mc.widthOf(val), entry.width, entry.signed)
	mc.wb.Record(key, entry.width-1, 0, val)
	mc.recordEntryKey(entry, key)
}
