// Package emit implements the SystemVerilog emitter spec.md §4.9/§6
// describes: it consumes a Netlist and renders every graph as one text
// file, module declarations separated by a blank line in netlist order.
package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/grhc/internal/grh"
	"github.com/sarchlab/grhc/internal/netlist"
)

// Options configures one Emit call. A non-empty Top restricts emission to
// the named modules; an empty Top emits every graph. The Netlist's own
// TopGraphs markers are not consulted.
type Options struct {
	Top []string
}

// Result is what one Emit call reports back to its caller. Per spec.md §7,
// "the emitter surfaces any error by setting result.success=false and
// returning whatever partial text was flushed" — callers should still use
// the bytes already written to w even when Success is false.
type Result struct {
	Success  bool
	Warnings []string
	Errors   []string
}

// Emitter renders a Netlist as SystemVerilog. It carries no state of its
// own between calls.
type Emitter struct{}

// New creates an Emitter.
func New() *Emitter { return &Emitter{} }

// Emit writes one module per graph in nl.GraphOrder(), each separated by a
// blank line (spec.md §6).
func (e *Emitter) Emit(w io.Writer, nl *netlist.Netlist, opts Options) Result {
	res := Result{Success: true}
	names := moduleNames(nl)

	var sb strings.Builder
	order := nl.GraphOrder()
	emitted := 0
	for _, sym := range order {
		g, ok := nl.Graph(sym)
		if !ok {
			continue
		}
		if len(opts.Top) > 0 && !contains(opts.Top, names[sym]) && !contains(opts.Top, g.Symbols().Text(sym)) {
			continue
		}
		if emitted > 0 {
			sb.WriteString("\n")
		}
		emitted++

		mr := newModuleRenderer(g, names[sym])
		mr.render(&sb)
		res.Warnings = append(res.Warnings, mr.warnings...)
		if len(mr.errors) > 0 {
			res.Success = false
			res.Errors = append(res.Errors, mr.errors...)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		res.Success = false
		res.Errors = append(res.Errors, fmt.Sprintf("write output: %v", err))
	}
	return res
}

func contains(hay []string, needle string) bool {
	for _, h := range hay {
		if h == needle {
			return true
		}
	}
	return false
}

// moduleNames resolves each graph's emitted module name: prefer an unused
// alias over the module's own symbol, then uniquify any collision with a
// "_<suffix>" counter (spec.md §4.9).
func moduleNames(nl *netlist.Netlist) map[grh.SymbolID]string {
	used := map[string]bool{}
	names := map[grh.SymbolID]string{}
	for _, sym := range nl.GraphOrder() {
		g, ok := nl.Graph(sym)
		if !ok {
			continue
		}
		base := g.Symbols().Text(sym)
		for _, alias := range nl.Aliases(sym) {
			if !used[alias] {
				base = alias
				break
			}
		}
		name := base
		for suffix := 1; used[name]; suffix++ {
			name = fmt.Sprintf("%s_%d", base, suffix)
		}
		used[name] = true
		names[sym] = name
	}
	return names
}
