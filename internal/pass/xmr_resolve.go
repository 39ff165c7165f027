package pass

import (
	"strings"

	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/netlist"
)

// XMRResolve replaces every kXMRRead/kXMRWrite with a concrete reference
// after all graphs are built (spec.md §4.8); any reference still
// unresolved afterward is fatal.
//
// Path resolution is scoped to "<moduleName>.<signal>", where moduleName
// is resolved against the Netlist's registered module symbols (or an
// alias). A ValueID is tagged to the graph arena that minted it and
// Graph.AddOperand refuses operands from any other arena, so a genuine
// cross-graph reference cannot be wired as an operand at all — only the
// same-graph case (a reference that happens to resolve back into the
// referencing module, e.g. via a generate-block alias) can be folded.
// Truly cross-module reads and all cross-module writes are reported as
// errors rather than silently dropped or unsoundly wired.
type XMRResolve struct{}

func (XMRResolve) Id() string          { return "xmr-resolve" }
func (XMRResolve) Name() string        { return "Cross-module reference resolution" }
func (XMRResolve) Description() string { return "Resolve hierarchical references to concrete signals." }

func (p XMRResolve) Run(ctx *Context) Result {
	changed := false
	for _, sym := range ctx.Netlist.GraphOrder() {
		g, ok := ctx.Netlist.Graph(sym)
		if !ok {
			continue
		}
		graphName := g.Symbols().Text(sym)
		for _, op := range g.Operations() {
			switch op.Kind() {
			case grh.KindXMRRead:
				if resolveXMRRead(ctx, g, graphName, op) {
					changed = true
				}
			case grh.KindXMRWrite:
				ctx.Diagnostics.Errorf(graphName, "cross-module write %q is unsupported: no facility to drive a foreign graph", pathOf(op))
			}
		}
	}
	return Result{Changed: changed}
}

func pathOf(op *grh.Operation) string {
	if a, ok := op.GetAttr("path"); ok {
		if s, ok := a.String(); ok {
			return s
		}
	}
	return "<unknown>"
}

func resolveXMRRead(ctx *Context, g *grh.Graph, graphName string, op *grh.Operation) bool {
	if _, already := op.GetAttr("resolved"); already {
		return false
	}
	path := pathOf(op)
	parts := strings.SplitN(path, ".", 2)
	if len(parts) != 2 {
		ctx.Diagnostics.Errorf(graphName, "malformed hierarchical reference %q: expected <module>.<signal>", path)
		return false
	}
	target, ok := findGraphByName(ctx.Netlist, parts[0])
	if !ok {
		ctx.Diagnostics.Errorf(graphName, "hierarchical reference %q: no module named %q", path, parts[0])
		return false
	}
	sig := g.Symbols().Intern(parts[1])
	val, ok := target.ValueBySymbol(sig)
	if !ok {
		ctx.Diagnostics.Errorf(graphName, "hierarchical reference %q: %q has no signal named %q", path, parts[0], parts[1])
		return false
	}
	if target != g {
		ctx.Diagnostics.Errorf(graphName, "hierarchical reference %q: resolving across distinct graphs requires a shared Value identity, which Graph's per-module arena does not provide", path)
		return false
	}

	if err := g.AddOperand(op.ID(), val); err != nil {
		ctx.Diagnostics.Errorf(graphName, "hierarchical reference %q: %v", path, err)
		return false
	}
	op.SetAttr("resolved", grh.Bool(true))
	return true
}

func findGraphByName(nl *netlist.Netlist, name string) (*grh.Graph, bool) {
	for _, sym := range nl.GraphOrder() {
		g, ok := nl.Graph(sym)
		if !ok {
			continue
		}
		if g.Symbols().Text(sym) == name {
			return g, true
		}
		for _, alias := range nl.Aliases(sym) {
			if alias == name {
				return g, true
			}
		}
	}
	return nil, false
}
