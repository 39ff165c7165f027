package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/grhc/internal/grh"
)

// moduleRenderer renders one Graph as a single SystemVerilog module body.
// It is built fresh per graph (no state survives across modules), matching
// the Emitter's own statelessness.
type moduleRenderer struct {
	g    *grh.Graph
	name string
	info *graphInfo

	warnings []string
	errors   []string
}

func newModuleRenderer(g *grh.Graph, name string) *moduleRenderer {
	return &moduleRenderer{g: g, name: name, info: analyzeGraph(g)}
}

func (mr *moduleRenderer) warnf(format string, args ...any) {
	mr.warnings = append(mr.warnings, fmt.Sprintf("%s: "+format, append([]any{mr.name}, args...)...))
}

func (mr *moduleRenderer) errf(format string, args ...any) {
	mr.errors = append(mr.errors, fmt.Sprintf("%s: "+format, append([]any{mr.name}, args...)...))
}

// render writes the full "module ... endmodule" text for this graph,
// following the fixed declaration order spec.md §6 gives: header, wires,
// regs, vars, memory arrays, instances, DPI imports, assigns, latch
// blocks, then sequential always blocks.
func (mr *moduleRenderer) render(sb *strings.Builder) {
	mr.renderHeader(sb)

	ops := mr.g.Operations()

	mr.renderDeclarations(sb)
	mr.renderMemoryArrays(sb)
	mr.renderInstances(sb, ops)
	mr.renderDpiImports(sb, ops)
	mr.renderAssigns(sb, ops)
	mr.renderLatchBlocks(sb, ops)
	mr.renderSequentialBlocks(sb, ops)

	sb.WriteString("endmodule\n")
}

func (mr *moduleRenderer) renderHeader(sb *strings.Builder) {
	fmt.Fprintf(sb, "module %s (\n", mr.name)

	var lines []string
	for _, p := range mr.g.InputPorts() {
		v := mr.g.Value(p.Value)
		lines = append(lines, "  input "+mr.portDecl(v))
	}
	for _, p := range mr.g.OutputPorts() {
		v := mr.g.Value(p.Value)
		lines = append(lines, "  output "+mr.outputPortDecl(v))
	}
	for _, p := range mr.g.InoutPorts() {
		v := mr.g.Value(p.In)
		lines = append(lines, fmt.Sprintf("  inout logic%s %s", widthSuffix(v.Width()), mr.g.Symbols().Text(p.Name)))
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\n")

	for _, p := range mr.g.InoutPorts() {
		name := mr.g.Symbols().Text(p.Name)
		fmt.Fprintf(sb, "  assign %s = %s;\n", mr.valueRef(p.In), name)
		fmt.Fprintf(sb, "  assign %s = %s ? %s : 'z;\n", name, mr.valueRef(p.OE), mr.valueRef(p.Out))
	}
}

func (mr *moduleRenderer) portDecl(v *grh.Value) string {
	return fmt.Sprintf("logic%s %s", widthSuffix(v.Width()), mr.g.Symbols().Text(v.Symbol()))
}

// outputPortDecl renders an output port, promoting it to "reg" when it is
// backed by a Register/Latch of the same symbol (spec.md §4.9).
func (mr *moduleRenderer) outputPortDecl(v *grh.Value) string {
	kind := "logic"
	if _, ok := mr.info.stateByValue[v.ID()]; ok {
		kind = "reg"
	}
	return fmt.Sprintf("%s%s %s", kind, widthSuffix(v.Width()), mr.g.Symbols().Text(v.Symbol()))
}

func widthSuffix(w int) string {
	if w <= 1 {
		return ""
	}
	return fmt.Sprintf(" [%d:0]", w-1)
}

func (mr *moduleRenderer) isPort(v *grh.Value) bool {
	return v.Role() != grh.PortNone
}

// renderDeclarations emits the wire/reg/var sections: every named Value not
// already a port, grouped by declKind and sorted by symbol text for
// deterministic output (spec.md §9 notes operation order is insertion
// order; declarations additionally need a stable textual order since
// Values are visited via the arena, not a dedicated declaration list).
func (mr *moduleRenderer) renderDeclarations(sb *strings.Builder) {
	var wires, regs, vars []*grh.Value
	for _, v := range mr.g.Values() {
		if mr.isPort(v) {
			continue
		}
		switch mr.info.declKindOf(v) {
		case declReg:
			regs = append(regs, v)
		case declVar:
			vars = append(vars, v)
		default:
			wires = append(wires, v)
		}
	}
	sortValuesBySymbol(mr.g, wires)
	sortValuesBySymbol(mr.g, regs)
	sortValuesBySymbol(mr.g, vars)

	for _, v := range wires {
		fmt.Fprintf(sb, "  logic%s %s;\n", widthSuffix(v.Width()), mr.g.Symbols().Text(v.Symbol()))
	}
	for _, v := range regs {
		fmt.Fprintf(sb, "  reg%s %s;\n", widthSuffix(v.Width()), mr.g.Symbols().Text(v.Symbol()))
	}
	for _, v := range vars {
		fmt.Fprintf(sb, "  %s %s;\n", varTypeName(v), mr.g.Symbols().Text(v.Symbol()))
	}
}

func varTypeName(v *grh.Value) string {
	switch v.Type() {
	case grh.Real:
		return "real"
	case grh.StringType:
		return "string"
	default:
		return "logic"
	}
}

func sortValuesBySymbol(g *grh.Graph, vs []*grh.Value) {
	sort.Slice(vs, func(i, j int) bool {
		return g.Symbols().Text(vs[i].Symbol()) < g.Symbols().Text(vs[j].Symbol())
	})
}

// renderMemoryArrays declares every kMemory, in textual symbol order.
func (mr *moduleRenderer) renderMemoryArrays(sb *strings.Builder) {
	mems := append([]*memInfo(nil), mr.info.mems...)
	sort.Slice(mems, func(i, j int) bool {
		return mr.nameOfOp(mems[i].op) < mr.nameOfOp(mems[j].op)
	})
	for _, m := range mems {
		name := mr.nameOfOp(m.op)
		fmt.Fprintf(sb, "  logic%s %s [0:%d];\n", widthSuffix(m.width), name, m.row-1)
	}
}

func (mr *moduleRenderer) nameOfOp(id grh.OperationID) string {
	op := mr.g.Operation(id)
	if op == nil {
		return ""
	}
	return mr.g.Symbols().Text(op.Symbol())
}
