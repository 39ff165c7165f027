package pass

import (
	"strconv"

	"github.com/sarchlab/grhc/internal/grh"
)

// RedundantElim folds the three shapes spec.md §4.8 names: chains like
// kAssign(kAssign(x)), width-preserving identity kSliceStatic, and
// duplicate kConstants.
//
// Graph exposes no operand-replacement primitive (only ReplaceResult,
// which retargets which Value an Operation's result slot names). The
// assign-chain and identity-slice folds are both single-operand,
// single-result "pass-through" shapes, so they collapse by stealing the
// inner operation's result slot — legal only when the inner value has
// exactly one user (this outer op), since nothing else may be left
// reading a now-undriven value. Constant dedup is narrowed to the same
// constraint for the same reason: see DESIGN.md.
type RedundantElim struct{}

func (RedundantElim) Id() string   { return "redundant-elim" }
func (RedundantElim) Name() string { return "Redundant operation elimination" }
func (RedundantElim) Description() string {
	return "Collapse pass-through chains and deduplicate constants."
}

func (p RedundantElim) Run(ctx *Context) Result {
	changed := false
	for _, sym := range ctx.Netlist.GraphOrder() {
		g, ok := ctx.Netlist.Graph(sym)
		if !ok {
			continue
		}
		if foldChains(g) {
			changed = true
		}
		if dedupeConstants(g) {
			changed = true
		}
	}
	return Result{Changed: changed}
}

// foldChains repeatedly collapses kAssign(kAssign(x)) and identity
// kSliceStatic[w-1:0] shapes to a fixed point.
func foldChains(g *grh.Graph) bool {
	changed := false
	for {
		round := false
		for _, outer := range g.Operations() {
			if collapsePassThrough(g, outer) {
				round = true
			}
		}
		if !round {
			break
		}
		changed = true
	}
	return changed
}

func collapsePassThrough(g *grh.Graph, outer *grh.Operation) bool {
	if outer.NumOperands() != 1 || outer.NumResults() != 1 {
		return false
	}
	if !isFoldableChainLink(g, outer) {
		return false
	}

	outerResult := outer.Result(0)
	innerVal := g.Value(outer.Operand(0))
	if innerVal == nil || !innerVal.HasDefiningOp() {
		return false
	}
	if innerVal.NumUsers() != 1 {
		return false
	}
	inner := g.Operation(innerVal.DefiningOp())
	if inner == nil {
		return false
	}
	if outer.Kind() != grh.KindSliceStatic && outer.Kind() != grh.KindAssign {
		return false
	}

	innerIdx := -1
	for i, r := range inner.Results() {
		if r == innerVal.ID() {
			innerIdx = i
			break
		}
	}
	if innerIdx < 0 {
		return false
	}

	g.EraseOp(outer.ID())
	if err := g.ReplaceResult(inner.ID(), innerIdx, outerResult); err != nil {
		return false
	}
	return true
}

// isFoldableChainLink reports whether outer is one of the two
// pass-through shapes this pass collapses: a bare Assign, or a
// SliceStatic whose range is the operand's full width (an identity
// slice, introduced by earlier lowering but never meaningfully narrowing
// anything).
func isFoldableChainLink(g *grh.Graph, op *grh.Operation) bool {
	switch op.Kind() {
	case grh.KindAssign:
		return true
	case grh.KindSliceStatic:
		return isIdentitySlice(g, op)
	default:
		return false
	}
}

func isIdentitySlice(g *grh.Graph, op *grh.Operation) bool {
	msbA, ok := op.GetAttr("sliceStart")
	if !ok {
		return false
	}
	lsbA, ok := op.GetAttr("sliceEnd")
	if !ok {
		return false
	}
	msb, _ := msbA.Int64()
	lsb, _ := lsbA.Int64()
	if lsb != 0 {
		return false
	}
	operand := g.Value(op.Operand(0))
	if operand == nil {
		return false
	}
	return msb == int64(operand.Width()-1)
}

// dedupeConstants removes exact-duplicate kConstants that are already
// unused (e.g. left behind by an earlier const-inline/redundant-elim
// round). Constants that still have users are left as-is: redirecting
// their users onto a canonical duplicate would require an
// operand-replacement primitive Graph does not expose.
func dedupeConstants(g *grh.Graph) bool {
	changed := false
	seen := make(map[string]bool)
	for _, op := range g.Operations() {
		if op.Kind() != grh.KindConstant || op.NumResults() != 1 {
			continue
		}
		key := constantKey(g, op)
		if !seen[key] {
			seen[key] = true
			continue
		}
		v := g.Value(op.Result(0))
		if v == nil || v.NumUsers() != 0 || v.Role() != grh.PortNone {
			continue
		}
		g.EraseOp(op.ID())
		changed = true
	}
	return changed
}

func constantKey(g *grh.Graph, op *grh.Operation) string {
	v := g.Value(op.Result(0))
	width, signed := 0, false
	if v != nil {
		width, signed = v.Width(), v.IsSigned()
	}
	lit := ""
	if a, ok := op.GetAttr("constValue"); ok {
		if s, ok := a.String(); ok {
			lit = s
		} else if i, ok := a.Int64(); ok {
			lit = strconv.FormatInt(i, 10)
		}
	}
	return strconv.Itoa(width) + "|" + strconv.FormatBool(signed) + "|" + lit
}
