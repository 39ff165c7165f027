package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/grhc/internal/grh"
)

// writePortShape is the decoded view of a Register/Latch/Memory write port
// this package's rendering logic shares, so the seq-grouping and
// mask-handling code does not need to branch on Kind at every step.
type writePortShape struct {
	op         *grh.Operation
	updateCond grh.ValueID
	nextValue  grh.ValueID
	mask       grh.ValueID
	target     string // <reg>, <latch Q>, or <mem>[<addr>]
	eventKey   string
	edges      []string // "posedge clk" style tokens, in operand order
}

func (mr *moduleRenderer) decodeRegisterWrite(op *grh.Operation) *writePortShape {
	ops := op.Operands()
	if len(ops) < 3 {
		return nil
	}
	regSym := attrStr(op, "regSymbol")
	polarities := attrStrVec(op, "eventEdge")
	var edges []string
	for i := 3; i < len(ops); i++ {
		p := "posedge"
		if idx := i - 3; idx < len(polarities) {
			p = polarities[idx]
		}
		edges = append(edges, fmt.Sprintf("%s %s", p, mr.valueRef(ops[i])))
	}
	return &writePortShape{
		op: op, updateCond: ops[0], nextValue: ops[1], mask: ops[2],
		target: mr.symbolRef(regSym), eventKey: strings.Join(edges, " or "), edges: edges,
	}
}

func (mr *moduleRenderer) decodeLatchWrite(op *grh.Operation) *writePortShape {
	ops := op.Operands()
	if len(ops) < 3 {
		return nil
	}
	latchSym := attrStr(op, "latchSymbol")
	return &writePortShape{
		op: op, updateCond: ops[0], nextValue: ops[1], mask: ops[2],
		target: mr.symbolRef(latchSym),
	}
}

func (mr *moduleRenderer) decodeMemoryWrite(op *grh.Operation) *writePortShape {
	ops := op.Operands()
	if len(ops) < 4 {
		return nil
	}
	memSym := attrStr(op, "memSymbol")
	target := fmt.Sprintf("%s[%s]", mr.symbolRef(memSym), mr.valueRef(ops[1]))
	polarities := attrStrVec(op, "eventEdge")
	var edges []string
	for i := 4; i < len(ops); i++ {
		p := "posedge"
		if idx := i - 4; idx < len(polarities) {
			p = polarities[idx]
		}
		edges = append(edges, fmt.Sprintf("%s %s", p, mr.valueRef(ops[i])))
	}
	return &writePortShape{
		op: op, updateCond: ops[0], nextValue: ops[2], mask: ops[3],
		target: target, eventKey: strings.Join(edges, " or "), edges: edges,
	}
}

// symbolRef resolves a declaration op's own symbol text back to its Q
// value's rendered name via qSymbol, falling back to the declaration
// symbol itself (e.g. for a memory array, whose own symbol is the array
// name directly).
func (mr *moduleRenderer) symbolRef(declSymbolText string) string {
	if declSymbolText == "" {
		return ""
	}
	sym, ok := mr.g.Symbols().Lookup(declSymbolText)
	if !ok {
		return declSymbolText
	}
	if op, ok := mr.g.OperationBySymbol(sym); ok {
		if q, ok := mr.g.Operation(op).GetAttr("qSymbol"); ok {
			if s, isStr := q.String(); isStr && s != "" {
				return s
			}
		}
	}
	return declSymbolText
}

// renderSequentialBlocks groups every RegisterWritePort and clocked
// MemoryWritePort by its edge-sensitivity list into one `always @(...)`
// block each (spec.md §4.9).
func (mr *moduleRenderer) renderSequentialBlocks(sb *strings.Builder, ops []*grh.Operation) {
	groups := map[string][]*writePortShape{}
	var order []string

	for _, op := range ops {
		var shape *writePortShape
		switch op.Kind() {
		case grh.KindRegisterWritePort:
			shape = mr.decodeRegisterWrite(op)
		case grh.KindMemoryWritePort:
			shape = mr.decodeMemoryWrite(op)
			if shape != nil && shape.eventKey == "" {
				mr.renderCombinationalMemoryWrite(sb, shape)
				continue
			}
		default:
			continue
		}
		if shape == nil {
			mr.errf("malformed write port %s", mr.g.Symbols().Text(op.Symbol()))
			continue
		}
		if _, ok := groups[shape.eventKey]; !ok {
			order = append(order, shape.eventKey)
		}
		groups[shape.eventKey] = append(groups[shape.eventKey], shape)
	}
	sort.Strings(order)

	for _, key := range order {
		shapes := groups[key]
		sort.Slice(shapes, func(i, j int) bool { return shapes[i].target < shapes[j].target })
		fmt.Fprintf(sb, "  always @(%s) begin\n", key)
		for _, s := range shapes {
			mr.renderWriteBody(sb, s, "    ", true)
		}
		sb.WriteString("  end\n")
	}
}

// renderLatchBlocks emits one always_latch block per latch target, or
// degrades to a combinational assign when the write is unconditional and
// fully masked (spec.md §4.9).
func (mr *moduleRenderer) renderLatchBlocks(sb *strings.Builder, ops []*grh.Operation) {
	var shapes []*writePortShape
	for _, op := range ops {
		if op.Kind() != grh.KindLatchWritePort {
			continue
		}
		if s := mr.decodeLatchWrite(op); s != nil {
			shapes = append(shapes, s)
		}
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i].target < shapes[j].target })

	for _, s := range shapes {
		if mr.isAlwaysTrue(s.updateCond) && mr.isAllOnesMask(s.mask) {
			fmt.Fprintf(sb, "  assign %s = %s;\n", s.target, mr.valueRef(s.nextValue))
			continue
		}
		sb.WriteString("  always_latch begin\n")
		mr.renderWriteBody(sb, s, "    ", false)
		sb.WriteString("  end\n")
	}
}

func (mr *moduleRenderer) renderCombinationalMemoryWrite(sb *strings.Builder, s *writePortShape) {
	sb.WriteString("  always_comb begin\n")
	mr.renderWriteBody(sb, s, "    ", false)
	sb.WriteString("  end\n")
}

// renderWriteBody renders one write port's guarded body, following spec.md
// §4.9's mask-path rules. nonBlocking selects `<=` (sequential) versus `=`
// (latch/comb).
func (mr *moduleRenderer) renderWriteBody(sb *strings.Builder, s *writePortShape, indent string, nonBlocking bool) {
	asn := "="
	if nonBlocking {
		asn = "<="
	}

	guarded := !mr.isAlwaysTrue(s.updateCond)
	bodyIndent := indent
	if guarded {
		fmt.Fprintf(sb, "%sif (%s) begin\n", indent, mr.valueRef(s.updateCond))
		bodyIndent = indent + "  "
	}

	switch {
	case mr.isAllZeroMask(s.mask):
		// elided: no-op write.
	case mr.isAllOnesMask(s.mask):
		fmt.Fprintf(sb, "%s%s %s %s;\n", bodyIndent, s.target, asn, mr.valueRef(s.nextValue))
	case mr.constantMaskBits(s.mask) != nil:
		bits := mr.constantMaskBits(s.mask)
		for _, i := range bits {
			fmt.Fprintf(sb, "%s%s[%d] %s %s[%d];\n", bodyIndent, s.target, i, asn, mr.valueRef(s.nextValue), i)
		}
	default:
		w := mr.widthOfMask(s.mask)
		fmt.Fprintf(sb, "%sif (%s == {%d{1'b1}}) %s %s %s;\n", bodyIndent, mr.valueRef(s.mask), w, s.target, asn, mr.valueRef(s.nextValue))
		fmt.Fprintf(sb, "%selse begin\n", bodyIndent)
		fmt.Fprintf(sb, "%s  integer i;\n", bodyIndent)
		fmt.Fprintf(sb, "%s  for (i=0;i<%d;i=i+1) if (%s[i]) %s[i] %s %s[i];\n",
			bodyIndent, w, mr.valueRef(s.mask), s.target, asn, mr.valueRef(s.nextValue))
		fmt.Fprintf(sb, "%send\n", bodyIndent)
	}

	if guarded {
		fmt.Fprintf(sb, "%send\n", indent)
	}
}

func (mr *moduleRenderer) maskConstOp(mask grh.ValueID) *grh.Operation {
	v := mr.g.Value(mask)
	if v == nil || !v.HasDefiningOp() {
		return nil
	}
	op := mr.g.Operation(v.DefiningOp())
	if op == nil || op.Kind() != grh.KindConstant {
		return nil
	}
	return op
}

func (mr *moduleRenderer) isAlwaysTrue(cond grh.ValueID) bool {
	op := mr.maskConstOp(cond)
	if op == nil {
		return false
	}
	bits := literalBits(mr.renderConstant(op))
	return len(bits) > 0 && allBitsEqual(bits, '1')
}

func (mr *moduleRenderer) isAllOnesMask(mask grh.ValueID) bool {
	op := mr.maskConstOp(mask)
	if op == nil {
		return false
	}
	bits := literalBits(mr.renderConstant(op))
	return len(bits) > 0 && allBitsEqual(bits, '1')
}

func (mr *moduleRenderer) isAllZeroMask(mask grh.ValueID) bool {
	op := mr.maskConstOp(mask)
	if op == nil {
		return false
	}
	bits := literalBits(mr.renderConstant(op))
	return len(bits) > 0 && allBitsEqual(bits, '0')
}

// constantMaskBits returns the set-bit indices of a constant, mixed
// (neither all-zero nor all-ones) mask, or nil if mask is not a resolvable
// binary-literal constant.
func (mr *moduleRenderer) constantMaskBits(mask grh.ValueID) []int {
	op := mr.maskConstOp(mask)
	if op == nil {
		return nil
	}
	bits := literalBits(mr.renderConstant(op))
	if len(bits) == 0 {
		return nil
	}
	var set []int
	for i, b := range bits {
		if b == '1' {
			set = append(set, len(bits)-1-i)
		}
	}
	return set
}

func (mr *moduleRenderer) widthOfMask(mask grh.ValueID) int {
	v := mr.g.Value(mask)
	if v == nil {
		return 1
	}
	return v.Width()
}

// literalBits extracts the raw bit characters from a preserved binary
// literal ("<w>'b1010"); any other radix is not statically decidable here
// and returns the empty string, sending the mask down the dynamic path.
func literalBits(lit string) string {
	q := strings.IndexByte(lit, '\'')
	if q < 0 {
		return ""
	}
	rest := strings.TrimLeft(lit[q+1:], "sS")
	if rest == "" || (rest[0] != 'b' && rest[0] != 'B') {
		return ""
	}
	body := rest[1:]
	for _, c := range body {
		if c != '0' && c != '1' {
			return ""
		}
	}
	return body
}

func allBitsEqual(bits string, c byte) bool {
	for i := 0; i < len(bits); i++ {
		if bits[i] != c {
			return false
		}
	}
	return true
}
