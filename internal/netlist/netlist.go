// Package netlist implements the top-level container of graphs for a whole
// compilation (spec.md §3): an insertion-ordered collection of module
// graphs, the top-level markers, an alias map for emission naming, and the
// deterministic emission order.
package netlist

import (
	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/symtab"
)

// Netlist owns every Graph produced by elaborating one compilation unit.
type Netlist struct {
	syms *symtab.Interner

	order  []grh.SymbolID
	graphs map[grh.SymbolID]*grh.Graph

	topGraphs []grh.SymbolID

	aliases map[grh.SymbolID][]string
}

// New creates an empty Netlist sharing syms with its graphs.
func New(syms *symtab.Interner) *Netlist {
	return &Netlist{
		syms:    syms,
		graphs:  make(map[grh.SymbolID]*grh.Graph),
		aliases: make(map[grh.SymbolID][]string),
	}
}

// Symbols returns the shared symbol interner.
func (n *Netlist) Symbols() *symtab.Interner { return n.syms }

// AddGraph registers g under its own module symbol, in insertion order.
// Fails (returns false) if a graph is already registered under that
// symbol.
func (n *Netlist) AddGraph(g *grh.Graph) bool {
	sym := g.ModuleSymbol()
	if _, ok := n.graphs[sym]; ok {
		return false
	}
	n.graphs[sym] = g
	n.order = append(n.order, sym)
	return true
}

// Graph resolves a module symbol to its Graph.
func (n *Netlist) Graph(sym grh.SymbolID) (*grh.Graph, bool) {
	g, ok := n.graphs[sym]
	return g, ok
}

// GraphOrder returns the deterministic emission order: insertion order of
// AddGraph calls.
func (n *Netlist) GraphOrder() []grh.SymbolID { return append([]grh.SymbolID(nil), n.order...) }

// MarkTop appends sym to the ordered top-graph markers. No-op (but still
// reported via ok=false) if sym isn't a registered graph.
func (n *Netlist) MarkTop(sym grh.SymbolID) bool {
	if _, ok := n.graphs[sym]; !ok {
		return false
	}
	for _, t := range n.topGraphs {
		if t == sym {
			return true
		}
	}
	n.topGraphs = append(n.topGraphs, sym)
	return true
}

// TopGraphs returns the ordered list of module symbols marked top-level.
func (n *Netlist) TopGraphs() []grh.SymbolID { return append([]grh.SymbolID(nil), n.topGraphs...) }

// AddAlias records an alternative emission name for sym, used by the
// emitter to prefer a human-readable name when free of collisions
// (spec.md §3, §4.9).
func (n *Netlist) AddAlias(sym grh.SymbolID, alias string) {
	n.aliases[sym] = append(n.aliases[sym], alias)
}

// Aliases returns the alternative emission names recorded for sym, in the
// order they were added.
func (n *Netlist) Aliases(sym grh.SymbolID) []string {
	return append([]string(nil), n.aliases[sym]...)
}

// NumGraphs reports how many graphs are registered.
func (n *Netlist) NumGraphs() int { return len(n.order) }
