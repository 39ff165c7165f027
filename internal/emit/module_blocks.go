package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/grhc/internal/grh"
)

// renderInstances emits one named-connection instantiation per kInstance,
// plus a parameter block for any kBlackbox that carries parameterNames/
// parameterValues (spec.md §4.9).
func (mr *moduleRenderer) renderInstances(sb *strings.Builder, ops []*grh.Operation) {
	var insts []*grh.Operation
	for _, op := range ops {
		if op.Kind() == grh.KindInstance || op.Kind() == grh.KindBlackbox {
			insts = append(insts, op)
		}
	}
	sort.Slice(insts, func(i, j int) bool {
		return mr.g.Symbols().Text(insts[i].Symbol()) < mr.g.Symbols().Text(insts[j].Symbol())
	})

	for _, op := range insts {
		mr.renderSrcLocComment(sb, op.SrcLoc())
		moduleName := attrStr(op, "moduleName")
		if moduleName == "" {
			moduleName = attrStr(op, "blackboxName")
		}
		instName := mr.g.Symbols().Text(op.Symbol())

		paramNames := attrStrVec(op, "parameterNames")
		paramValues := attrStrVec(op, "parameterValues")
		if len(paramNames) > 0 {
			fmt.Fprintf(sb, "  %s #(\n", moduleName)
			var parts []string
			for i, pn := range paramNames {
				val := ""
				if i < len(paramValues) {
					val = paramValues[i]
				}
				parts = append(parts, fmt.Sprintf("    .%s(%s)", pn, val))
			}
			sb.WriteString(strings.Join(parts, ",\n"))
			fmt.Fprintf(sb, "\n  ) %s (\n", instName)
		} else {
			fmt.Fprintf(sb, "  %s %s (\n", moduleName, instName)
		}

		inputNames := attrStrVec(op, "inputPortName")
		outputNames := attrStrVec(op, "outputPortName")
		inoutNames := attrStrVec(op, "inoutPortName")
		operands := op.Operands()
		results := op.Results()

		var conns []string
		idx := 0
		for _, name := range inputNames {
			if idx < len(operands) {
				conns = append(conns, fmt.Sprintf("    .%s(%s)", name, mr.valueRef(operands[idx])))
			}
			idx++
		}
		idx += len(inoutNames) // driver operands, bound via the read-side results below
		idx += len(inoutNames) // output-enable constant operands
		ridx := 0
		for _, name := range outputNames {
			if ridx < len(results) {
				conns = append(conns, fmt.Sprintf("    .%s(%s)", name, mr.valueRef(results[ridx])))
			}
			ridx++
		}
		for _, name := range inoutNames {
			if ridx < len(results) {
				conns = append(conns, fmt.Sprintf("    .%s(%s)", name, mr.valueRef(results[ridx])))
			}
			ridx++
		}
		sb.WriteString(strings.Join(conns, ",\n"))
		sb.WriteString("\n  );\n")
	}
}

// renderDpiImports emits one `import "DPI-C" function ...;` declaration per
// kDpicImport (spec.md §4.9).
func (mr *moduleRenderer) renderDpiImports(sb *strings.Builder, ops []*grh.Operation) {
	var imports []*grh.Operation
	for _, op := range ops {
		if op.Kind() == grh.KindDpicImport {
			imports = append(imports, op)
		}
	}
	sort.Slice(imports, func(i, j int) bool {
		return mr.g.Symbols().Text(imports[i].Symbol()) < mr.g.Symbols().Text(imports[j].Symbol())
	})

	for _, op := range imports {
		name := mr.g.Symbols().Text(op.Symbol())
		argNames := attrStrVec(op, "argsName")
		argDirs := attrStrVec(op, "argsDirection")
		argWidthsAttr, _ := op.GetAttr("argsWidth")
		argWidths, _ := argWidthsAttr.Int64Vec()

		ret := "void"
		if attrBool(op, "hasReturn") {
			w := attrInt(op, "returnWidth", 1)
			ret = "logic" + widthSuffix(w)
		}

		var parts []string
		for i, an := range argNames {
			dir := "input"
			if i < len(argDirs) {
				dir = argDirs[i]
			}
			w := 1
			if i < len(argWidths) {
				w = int(argWidths[i])
			}
			parts = append(parts, fmt.Sprintf("%s logic%s %s", dir, widthSuffix(w), an))
		}
		fmt.Fprintf(sb, "  import \"DPI-C\" function %s %s (%s);\n", ret, name, strings.Join(parts, ", "))
	}
}

// renderAssigns emits one continuous assign per pure/combinational
// operation's single result (spec.md §6's "port-binding assigns, other
// assigns" categories are unified here: the graph does not preserve which
// assigns originated from a port binding versus a plain continuous-assign
// statement, so both render identically).
func (mr *moduleRenderer) renderAssigns(sb *strings.Builder, ops []*grh.Operation) {
	var assigns []*grh.Operation
	for _, op := range ops {
		if !mr.isAssignable(op) {
			continue
		}
		assigns = append(assigns, op)
	}
	sort.Slice(assigns, func(i, j int) bool {
		return mr.valueRef(assigns[i].Result(0)) < mr.valueRef(assigns[j].Result(0))
	})
	for _, op := range assigns {
		mr.renderSrcLocComment(sb, op.SrcLoc())
		res := mr.valueRef(op.Result(0))
		fmt.Fprintf(sb, "  assign %s = %s;\n", res, mr.renderExpr(op))
	}
	mr.renderNonInlineDpiCalls(sb, ops)
	mr.renderMemoryReads(sb, ops)
	mr.renderSystemTasks(sb, ops)
}

func (mr *moduleRenderer) isAssignable(op *grh.Operation) bool {
	if op.NumResults() != 1 {
		return false
	}
	switch op.Kind() {
	case grh.KindConstant, grh.KindAssign,
		grh.KindAdd, grh.KindSub, grh.KindMul, grh.KindDiv, grh.KindMod,
		grh.KindAnd, grh.KindOr, grh.KindXor, grh.KindXnor, grh.KindNot,
		grh.KindLogicAnd, grh.KindLogicOr, grh.KindLogicNot,
		grh.KindShl, grh.KindLShr, grh.KindAShr,
		grh.KindEq, grh.KindNe, grh.KindCaseEq, grh.KindCaseNe, grh.KindWildcardEq, grh.KindWildcardNe,
		grh.KindLt, grh.KindLe, grh.KindGt, grh.KindGe,
		grh.KindReduceAnd, grh.KindReduceOr, grh.KindReduceXor, grh.KindReduceNor, grh.KindReduceNand, grh.KindReduceXnor,
		grh.KindMux, grh.KindConcat, grh.KindReplicate,
		grh.KindSliceStatic, grh.KindSliceDynamic, grh.KindSliceArray:
		return true
	default:
		return false
	}
}

// renderMemoryReads emits `assign <result> = <mem>[<addr>];` for every
// MemoryReadPort (spec.md §4.9).
func (mr *moduleRenderer) renderMemoryReads(sb *strings.Builder, ops []*grh.Operation) {
	var reads []*grh.Operation
	for _, op := range ops {
		if op.Kind() == grh.KindMemoryReadPort {
			reads = append(reads, op)
		}
	}
	sort.Slice(reads, func(i, j int) bool {
		return mr.g.Symbols().Text(reads[i].Symbol()) < mr.g.Symbols().Text(reads[j].Symbol())
	})
	for _, op := range reads {
		if op.NumResults() != 1 || op.NumOperands() < 1 {
			continue
		}
		memSym := attrStr(op, "memSymbol")
		addr := mr.valueRef(op.Operand(0))
		fmt.Fprintf(sb, "  assign %s = %s[%s];\n", mr.valueRef(op.Result(0)), memSym, addr)
	}
}

// renderNonInlineDpiCalls emits the `*_intm` register plus an `always @(*)`
// call-site statement for every kDpicCall not folded into a
// write-port sink (spec.md §4.9). Since the graph gives no seqKey for a
// freestanding call, each renders inside its own always block gated on its
// own updateCond, rather than being grouped with unrelated sequential logic.
func (mr *moduleRenderer) renderNonInlineDpiCalls(sb *strings.Builder, ops []*grh.Operation) {
	var calls []*grh.Operation
	for _, op := range ops {
		if op.Kind() != grh.KindDpicCall {
			continue
		}
		if mr.info.isInlinedDpiCall(op.ID()) {
			continue
		}
		calls = append(calls, op)
	}
	for _, op := range calls {
		if op.NumResults() != 1 {
			continue
		}
		res := mr.valueRef(op.Result(0))
		intm := res + "_intm"
		fmt.Fprintf(sb, "  reg%s %s;\n", widthSuffix(mr.g.Value(op.Result(0)).Width()), intm)
		fmt.Fprintf(sb, "  assign %s = %s;\n", res, intm)
		call := mr.renderDpiCallExpr(op)
		if mr.isAlwaysTrue(op.Operand(0)) {
			fmt.Fprintf(sb, "  always @(*) %s <= %s;\n", intm, call)
		} else {
			fmt.Fprintf(sb, "  always @(*) if (%s) %s <= %s;\n", mr.valueRef(op.Operand(0)), intm, call)
		}
	}
}

func (mr *moduleRenderer) renderDpiCallExpr(op *grh.Operation) string {
	target := attrStr(op, "targetImportSymbol")
	args := op.Operands()
	var parts []string
	for i := 1; i < len(args); i++ {
		parts = append(parts, mr.valueRef(args[i]))
	}
	return fmt.Sprintf("%s(%s)", target, strings.Join(parts, ", "))
}

// renderSystemTasks emits each kDisplay/kAssert/kSystemTask as its own
// initial block; $display-family statements have no synthesis meaning and
// this core does not attempt to place them inside the originating
// procedural block's sensitivity (see DESIGN.md).
func (mr *moduleRenderer) renderSystemTasks(sb *strings.Builder, ops []*grh.Operation) {
	for _, op := range ops {
		switch op.Kind() {
		case grh.KindDisplay, grh.KindAssert, grh.KindSystemTask:
		default:
			continue
		}
		name := attrStr(op, "name")
		if name == "" {
			name = "$display"
		}
		var parts []string
		for _, v := range op.Operands() {
			parts = append(parts, mr.valueRef(v))
		}
		fmt.Fprintf(sb, "  initial %s(%s);\n", name, strings.Join(parts, ", "))
	}
}

func (mr *moduleRenderer) renderSrcLocComment(sb *strings.Builder, loc *grh.SrcLoc) {
	if loc == nil {
		return
	}
	fmt.Fprintf(sb, "  /* src: %s:%d.%d-%d.%d */\n",
		defangComment(loc.File), loc.StartLine, loc.StartCol, loc.EndLine, loc.EndCol)
}
