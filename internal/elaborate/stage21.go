package elaborate

import "github.com/sarchlab/grhc/internal/grh"

// specializeRegister annotates a freshly built kRegisterWritePort with the
// reset/enable shape its composed data path structurally exhibits, falling
// back to the generic "Register" variant when neither shape is recognized
// (SPEC_FULL.md's stage-21 register specialization, spec.md §4.5). This
// never changes the op's actual operands: composed already encodes full
// reset/enable semantics as a Mux tree; these attributes are descriptive,
// letting the emitter render a narrower always_ff shape when one applies.
func (mc *moduleCtx) specializeRegister(op grh.OperationID, entry *signalEntry, key writeKey) {
	composed := mc.g.Operation(op).Operand(1) // nextValue, per emitRegisterWritePort's operand layout

	resetCond, resetValue, dataPath, async, hasReset := mc.detectReset(composed, key)
	searchIn := composed
	if hasReset {
		searchIn = dataPath
	}
	enableCond, enableData, hasEnable := mc.detectEnable(searchIn, entry)

	variant := "Register"
	switch {
	case hasReset && hasEnable:
		if async {
			variant = "RegisterEnArst"
		} else {
			variant = "RegisterEnRst"
		}
	case hasReset:
		if async {
			variant = "RegisterArst"
		} else {
			variant = "RegisterRst"
		}
	case hasEnable:
		variant = "RegisterEn"
	}

	o := mc.g.Operation(op)
	o.SetAttr("registerVariant", grh.String(variant))
	if hasReset {
		o.SetAttr("resetAsync", grh.Bool(async))
		_ = resetCond
		_ = resetValue
	}
	if hasEnable {
		_ = enableCond
		_ = enableData
		o.SetAttr("hasEnable", grh.Bool(true))
	}
}

// detectReset recognizes `if (rst) q <= resetValue; else q <= dataPath;`,
// which lowerIf's branch merge always shapes as
// kMux(resetCond, resetValue, dataPath) with resetValue a kConstant.
func (mc *moduleCtx) detectReset(composed grh.ValueID, key writeKey) (cond, resetValue, dataPath grh.ValueID, async bool, ok bool) {
	v := mc.g.Value(composed)
	if v == nil || !v.HasDefiningOp() {
		return grh.InvalidValue, grh.InvalidValue, grh.InvalidValue, false, false
	}
	op := mc.g.Operation(v.DefiningOp())
	if op == nil || op.Kind() != grh.KindMux || op.NumOperands() != 3 {
		return grh.InvalidValue, grh.InvalidValue, grh.InvalidValue, false, false
	}
	thenVal := mc.g.Value(op.Operand(1))
	if thenVal == nil || !thenVal.HasDefiningOp() {
		return grh.InvalidValue, grh.InvalidValue, grh.InvalidValue, false, false
	}
	thenOp := mc.g.Operation(thenVal.DefiningOp())
	if thenOp == nil || thenOp.Kind() != grh.KindConstant {
		return grh.InvalidValue, grh.InvalidValue, grh.InvalidValue, false, false
	}
	cond = op.Operand(0)
	isAsync := false
	for _, e := range mc.seqKeyEdges[key.seqKey] {
		if !e.AsyncReset {
			continue
		}
		sigVal, err := mc.convertExpr(e.Signal, 1, false)
		if err == nil && sigVal == cond {
			isAsync = true
			break
		}
	}
	return cond, op.Operand(1), op.Operand(2), isAsync, true
}

// detectEnable recognizes the hold-on-disable shape `if (en) q <= data;
// else q <= q;`, which lowerIf's branch merge shapes as kMux(enableCond,
// data, entry.value) (or the mirrored kMux(enableCond, entry.value, data)
// for `if (!en)`-first source order).
func (mc *moduleCtx) detectEnable(val grh.ValueID, entry *signalEntry) (cond, data grh.ValueID, ok bool) {
	v := mc.g.Value(val)
	if v == nil || !v.HasDefiningOp() {
		return grh.InvalidValue, grh.InvalidValue, false
	}
	op := mc.g.Operation(v.DefiningOp())
	if op == nil || op.Kind() != grh.KindMux || op.NumOperands() != 3 {
		return grh.InvalidValue, grh.InvalidValue, false
	}
	switch entry.value {
	case op.Operand(2):
		return op.Operand(0), op.Operand(1), true
	case op.Operand(1):
		return op.Operand(0), op.Operand(2), true
	default:
		return grh.InvalidValue, grh.InvalidValue, false
	}
}
