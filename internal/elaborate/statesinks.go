package elaborate

import (
	"fmt"
	"strings"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/grh"
)

// allOnes builds a kConstant of the given width whose value is all-ones,
// used as the default (unmasked) write-port mask (spec.md §4.3/§4.5).
func (b *builder) allOnes(width int) grh.ValueID {
	if width <= 0 {
		width = 1
	}
	lit := fmt.Sprintf("%d'b%s", width, strings.Repeat("1", width))
	return b.constFromLiteral(lit, width, false)
}

// markInlineDpiCall tags an inline-eligible kDpicCall feeding this write
// port with its sink, so the emitter can fold the call's guard into the
// sink directly instead of synthesizing an intermediate register (spec.md
// §4.6). The call's own updateCond operand is left at its constant-one
// placeholder; Graph exposes no operand-replacement primitive, so the fold
// is recorded declaratively via the inlineSink attribute rather than by
// rewriting the operand in place.
func (mc *moduleCtx) markInlineDpiCall(composed grh.ValueID, sink grh.OperationID) {
	v := mc.g.Value(composed)
	if v == nil || !v.HasDefiningOp() {
		return
	}
	op := mc.g.Operation(v.DefiningOp())
	if op == nil || op.Kind() != grh.KindDpicCall {
		return
	}
	if _, ok := dpiInlineEligible(mc.g, op.ID()); !ok {
		return
	}
	op.SetAttr("inlineSink", grh.String(mc.g.Symbols().Text(mc.g.Operation(sink).Symbol())))
}

// emitRegisterWritePort materializes the kRegisterWritePort that composed
// write-back memo key resolves into (spec.md §4.5): updateCond defaults to
// constant-one (the conditional structure is already folded into composed's
// Mux tree), nextValue is the composed driver, mask is all-ones, and the
// event operands/attribute mirror the governing seq key.
func (mc *moduleCtx) emitRegisterWritePort(entry *signalEntry, composed grh.ValueID, key writeKey) {
	op, err := mc.g.CreateOperation(grh.KindRegisterWritePort, mc.b.freshSymbol("regwr_"+key.name))
	if err != nil {
		mc.diag.Conflictf(mc.name, "could not materialize register write port for %q: %v", key.name, err)
		return
	}
	one := mc.b.constFromLiteral("1'b1", 1, false)
	mc.b.addOperand(op, one)
	mc.b.addOperand(op, composed)
	mc.b.addOperand(op, mc.b.allOnes(entry.width))
	mc.markInlineDpiCall(composed, op)
	mc.wireEventOperands(op, key.seqKey)
	mc.specializeRegister(op, entry, key)

	o := mc.g.Operation(op)
	if entry.stateOp != grh.InvalidOperation {
		o.SetAttr("regSymbol", grh.String(mc.g.Symbols().Text(mc.g.Operation(entry.stateOp).Symbol())))
	}
}

// emitLatchWritePort is the level-sensitive counterpart of
// emitRegisterWritePort: no event operands, since a latch's update
// condition is folded directly into composed instead of a clock edge.
func (mc *moduleCtx) emitLatchWritePort(entry *signalEntry, composed grh.ValueID, key writeKey) {
	op, err := mc.g.CreateOperation(grh.KindLatchWritePort, mc.b.freshSymbol("latchwr_"+key.name))
	if err != nil {
		mc.diag.Conflictf(mc.name, "could not materialize latch write port for %q: %v", key.name, err)
		return
	}
	one := mc.b.constFromLiteral("1'b1", 1, false)
	mc.b.addOperand(op, one)
	mc.b.addOperand(op, composed)
	mc.b.addOperand(op, mc.b.allOnes(entry.width))
	mc.markInlineDpiCall(composed, op)

	o := mc.g.Operation(op)
	if entry.stateOp != grh.InvalidOperation {
		o.SetAttr("latchSymbol", grh.String(mc.g.Symbols().Text(mc.g.Operation(entry.stateOp).Symbol())))
	}
}

// emitComposedMemoryWritePort materializes one kMemoryWritePort from a
// group of same-address memory writes already composed (by
// composeMemoryGroup) into a single full-element data word, a real per-bit
// mask, and a shared updateCond (spec.md §4.3 rule 3): the masked-write
// shape where individual bit/byte enables gate the write, rather than an
// all-ones mask unconditionally overwriting the whole element.
func (mc *moduleCtx) emitComposedMemoryWritePort(name string, entry *signalEntry, seqKey string, addr, data, mask, updateCond grh.ValueID) {
	op, err := mc.g.CreateOperation(grh.KindMemoryWritePort, mc.b.freshSymbol("memwr_"+name))
	if err != nil {
		mc.diag.Conflictf(mc.name, "could not materialize memory write port for %q: %v", name, err)
		return
	}
	mc.b.addOperand(op, updateCond)
	mc.b.addOperand(op, addr)
	mc.b.addOperand(op, data)
	mc.b.addOperand(op, mask)
	mc.markInlineDpiCall(data, op)
	if seqKey != "" {
		mc.wireEventOperands(op, seqKey)
	}

	o := mc.g.Operation(op)
	o.SetAttr("memSymbol", grh.String(mc.g.Symbols().Text(mc.g.Operation(entry.memOp).Symbol())))
}

// wireEventOperands adds one operand per edge in the seq key this register
// write port is governed by, plus an eventEdge attribute naming each edge's
// polarity (spec.md §4.5's "seq key" groups writes under one event list).
func (mc *moduleCtx) wireEventOperands(op grh.OperationID, seqKey string) {
	edges, ok := mc.seqKeyEdges[seqKey]
	if !ok || len(edges) == 0 {
		return
	}
	var polarities []string
	for _, e := range edges {
		sig, err := mc.convertExpr(e.Signal, 1, false)
		if err != nil {
			continue
		}
		mc.b.addOperand(op, sig)
		switch {
		case e.Edge == astiface.EdgePos:
			polarities = append(polarities, "posedge")
		default:
			polarities = append(polarities, "negedge")
		}
	}
	mc.b.setAttr(op, "eventEdge", grh.StringVec(polarities))
}
