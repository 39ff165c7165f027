package pass

import "github.com/sarchlab/grhc/internal/grh"

// DeadCodeElim removes operations whose every result is unused, repeating
// until a fixed point (spec.md §4.8): removing one dead op can orphan its
// own operands' defining ops. Effectful kinds (grh.Kind.IsEffectful) and
// any operation defining a port value are never removed.
type DeadCodeElim struct{}

func (DeadCodeElim) Id() string          { return "dead-code-elim" }
func (DeadCodeElim) Name() string        { return "Dead code elimination" }
func (DeadCodeElim) Description() string { return "Remove operations whose results are never read." }

func (p DeadCodeElim) Run(ctx *Context) Result {
	changed := false
	for _, sym := range ctx.Netlist.GraphOrder() {
		g, ok := ctx.Netlist.Graph(sym)
		if !ok {
			continue
		}
		if runDeadCodeElim(g) {
			changed = true
		}
	}
	return Result{Changed: changed}
}

func runDeadCodeElim(g *grh.Graph) bool {
	changed := false
	for {
		round := false
		for _, op := range g.Operations() {
			if op.Kind().IsEffectful() {
				continue
			}
			if isDead(g, op) {
				g.EraseOp(op.ID())
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

func isDead(g *grh.Graph, op *grh.Operation) bool {
	if op.NumResults() == 0 {
		// A side-effect-free op with no results at all (shouldn't occur
		// for any non-effectful kind in the taxonomy, but treat as dead
		// rather than panic on an unexpected shape).
		return true
	}
	for _, r := range op.Results() {
		v := g.Value(r)
		if v == nil {
			continue
		}
		if v.Role() != grh.PortNone {
			return false
		}
		if v.NumUsers() > 0 {
			return false
		}
	}
	return true
}
