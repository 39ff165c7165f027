package pass

import (
	"github.com/sarchlab/grhc/internal/grh"
)

// ConstInline is the const-inline pass (spec.md §4.8): for every kAssign
// whose operand is a kConstant and whose result is a module output port
// with no other users, replace the output binding with the constant
// directly.
type ConstInline struct{}

func (ConstInline) Id() string          { return "const-inline" }
func (ConstInline) Name() string        { return "Constant inlining" }
func (ConstInline) Description() string { return "Fold assign-of-constant output ports directly onto their constant." }

func (p ConstInline) Run(ctx *Context) Result {
	changed := false
	for _, sym := range ctx.Netlist.GraphOrder() {
		g, ok := ctx.Netlist.Graph(sym)
		if !ok {
			continue
		}
		if runConstInline(g) {
			changed = true
		}
	}
	return Result{Changed: changed}
}

func runConstInline(g *grh.Graph) bool {
	changed := false
	for _, op := range g.Operations() {
		if op.Kind() != grh.KindAssign || op.NumOperands() != 1 || op.NumResults() != 1 {
			continue
		}
		port := g.Value(op.Result(0))
		if port == nil || port.Role() != grh.PortOutput || port.NumUsers() != 0 {
			continue
		}
		operand := g.Value(op.Operand(0))
		if operand == nil || !operand.HasDefiningOp() {
			continue
		}
		constOp := g.Operation(operand.DefiningOp())
		if constOp == nil || constOp.Kind() != grh.KindConstant {
			continue
		}

		resultIdx := -1
		for i, r := range constOp.Results() {
			if r == operand.ID() {
				resultIdx = i
				break
			}
		}
		if resultIdx < 0 {
			continue
		}

		if operand.NumUsers() == 1 && operand.Role() == grh.PortNone {
			// Single use, not itself a port: steal the constant's own
			// result slot so it produces the output port directly.
			g.EraseOp(op.ID())
			if err := g.ReplaceResult(constOp.ID(), resultIdx, port.ID()); err != nil {
				continue
			}
			changed = true
			continue
		}

		// Multiple consumers (or the constant is itself a port): clone
		// the constant instead of stealing its result slot, so existing
		// readers of operand keep seeing it unaffected.
		clone, err := g.CreateOperation(grh.KindConstant, grh.InvalidSymbol)
		if err != nil {
			continue
		}
		cloneOp := g.Operation(clone)
		for _, k := range constOp.Attrs().Keys() {
			v, _ := constOp.Attrs().Get(k)
			cloneOp.SetAttr(k, v)
		}
		g.EraseOp(op.ID())
		if err := g.AddResult(clone, port.ID()); err != nil {
			continue
		}
		changed = true
	}
	return changed
}
