package emit

import (
	"fmt"
	"strings"

	"github.com/sarchlab/grhc/internal/grh"
)

// binaryTok and unaryTok map the pure-combinational arithmetic/bitwise/
// logical/comparison kinds spec.md §3 enumerates onto their SystemVerilog
// infix/prefix spelling. Shifts, reductions, mux, concat, replicate and
// slices need their own structural rendering and are handled directly in
// renderExpr.
var binaryTok = map[grh.Kind]string{
	grh.KindAdd:        "+",
	grh.KindSub:        "-",
	grh.KindMul:        "*",
	grh.KindDiv:        "/",
	grh.KindMod:        "%",
	grh.KindAnd:        "&",
	grh.KindOr:         "|",
	grh.KindXor:        "^",
	grh.KindXnor:       "~^",
	grh.KindLogicAnd:   "&&",
	grh.KindLogicOr:    "||",
	grh.KindShl:        "<<",
	grh.KindLShr:       ">>",
	grh.KindAShr:       ">>>",
	grh.KindEq:         "==",
	grh.KindNe:         "!=",
	grh.KindCaseEq:     "===",
	grh.KindCaseNe:     "!==",
	grh.KindWildcardEq: "==?",
	grh.KindWildcardNe: "!=?",
	grh.KindLt:         "<",
	grh.KindLe:         "<=",
	grh.KindGt:         ">",
	grh.KindGe:         ">=",
}

var unaryTok = map[grh.Kind]string{
	grh.KindNot:      "~",
	grh.KindLogicNot: "!",
	grh.KindReduceAnd:  "&",
	grh.KindReduceOr:   "|",
	grh.KindReduceXor:  "^",
	grh.KindReduceNand: "~&",
	grh.KindReduceNor:  "~|",
	grh.KindReduceXnor: "~^",
}

// valueRef names a Value as a SystemVerilog expression atom. Every Value
// carries its own symbol text, so referencing it is always just that text:
// the flat netlist model means no operand ever needs to be rendered as a
// nested sub-expression keyed off someone else's name.
func (mr *moduleRenderer) valueRef(id grh.ValueID) string {
	v := mr.g.Value(id)
	if v == nil {
		return "/*invalid*/"
	}
	return mr.g.Symbols().Text(v.Symbol())
}

// renderExpr renders the right-hand side of op's single result as a
// SystemVerilog expression, per the one-op-per-assign model (spec.md §6):
// every operand is already a named Value, so this never recurses into an
// operand's own defining operation.
func (mr *moduleRenderer) renderExpr(op *grh.Operation) string {
	ops := op.Operands()
	ref := func(i int) string { return mr.valueRef(ops[i]) }

	if tok, ok := binaryTok[op.Kind()]; ok && len(ops) == 2 {
		return fmt.Sprintf("%s %s %s", ref(0), tok, ref(1))
	}
	if tok, ok := unaryTok[op.Kind()]; ok && len(ops) == 1 {
		return fmt.Sprintf("%s%s", tok, ref(0))
	}

	switch op.Kind() {
	case grh.KindConstant:
		return mr.renderConstant(op)

	case grh.KindAssign:
		return ref(0)

	case grh.KindMux:
		return fmt.Sprintf("%s ? %s : %s", ref(0), ref(1), ref(2))

	case grh.KindConcat:
		parts := make([]string, len(ops))
		for i := range ops {
			parts[i] = ref(i)
		}
		return "{" + strings.Join(parts, ", ") + "}"

	case grh.KindReplicate:
		rep := attrInt(op, "rep", 1)
		return fmt.Sprintf("{%d{%s}}", rep, ref(0))

	case grh.KindSliceStatic:
		msb := attrInt(op, "sliceStart", 0)
		lsb := attrInt(op, "sliceEnd", 0)
		if msb == lsb {
			return fmt.Sprintf("%s[%d]", ref(0), msb)
		}
		return fmt.Sprintf("%s[%d:%d]", ref(0), msb, lsb)

	case grh.KindSliceDynamic:
		width := attrInt(op, "sliceWidth", 1)
		return fmt.Sprintf("%s[%s +: %d]", ref(0), ref(1), width)

	case grh.KindSliceArray:
		return fmt.Sprintf("%s[%s]", ref(0), ref(1))

	default:
		mr.errors = append(mr.errors, fmt.Sprintf("%s: no expression rendering for %s", mr.name, op.Kind()))
		return "'x"
	}
}

// renderConstant renders a kConstant's value, preferring the preserved
// literal text (constFromLiteral keeps the source radix/width prefix
// verbatim) and falling back to a plain decimal for synthesized zeros.
func (mr *moduleRenderer) renderConstant(op *grh.Operation) string {
	a, ok := op.GetAttr("constValue")
	if !ok {
		return "'0"
	}
	if s, isStr := a.String(); isStr {
		return s
	}
	if i, isInt := a.Int64(); isInt {
		return fmt.Sprintf("%d", i)
	}
	return "'0"
}

func attrInt(op *grh.Operation, key string, def int) int {
	a, ok := op.GetAttr(key)
	if !ok {
		return def
	}
	i, ok := a.Int64()
	if !ok {
		return def
	}
	return int(i)
}

func attrStr(op *grh.Operation, key string) string {
	a, ok := op.GetAttr(key)
	if !ok {
		return ""
	}
	s, _ := a.String()
	return s
}

func attrBool(op *grh.Operation, key string) bool {
	a, ok := op.GetAttr(key)
	if !ok {
		return false
	}
	b, _ := a.Bool()
	return b
}

func attrStrVec(op *grh.Operation, key string) []string {
	a, ok := op.GetAttr(key)
	if !ok {
		return nil
	}
	v, _ := a.StringVec()
	return v
}

// defangComment flattens a srcLoc's path so it renders safely inside a
// trailing `// ...` comment: block-comment terminators and newlines in a
// pathological file path must never be able to close the comment early.
func defangComment(s string) string {
	s = strings.ReplaceAll(s, "*/", "* /")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
