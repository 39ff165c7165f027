package elaborate

import (
	"strconv"
	"strings"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/grh"
)

// defaultUnsizedWidth is what an unsized literal or an undeclared
// identifier is given when nothing in the surrounding context pins a
// width — SystemVerilog's own default integer width.
const defaultUnsizedWidth = 32

// convertExpr lowers expr into a GRH subgraph producing exactly one Value
// (spec.md §4.4). contextWidth <= 0 means "no statically known target
// width"; the natural per-operator width rule applies instead.
func (mc *moduleCtx) convertExpr(expr astiface.Expr, contextWidth int, contextSigned bool) (grh.ValueID, error) {
	switch v := expr.(type) {
	case astiface.IdentExpr:
		return mc.convertIdent(v, contextWidth, contextSigned)
	case astiface.ConstExpr:
		return mc.convertConst(v, contextWidth, contextSigned), nil
	case astiface.BinaryExpr:
		return mc.convertBinary(v, contextWidth)
	case astiface.UnaryExpr:
		return mc.convertUnary(v)
	case astiface.CondExpr:
		return mc.convertCond(v, contextWidth, contextSigned)
	case astiface.ConcatExpr:
		return mc.convertConcat(v)
	case astiface.ReplicateExpr:
		return mc.convertReplicate(v)
	case astiface.SliceExpr:
		return mc.convertSlice(v)
	case astiface.IndexedSliceExpr:
		return mc.convertIndexedSlice(v)
	case astiface.ArraySelectExpr:
		return mc.convertArraySelect(v, contextWidth, contextSigned)
	case astiface.HierRefExpr:
		return mc.convertHierRef(v, contextWidth), nil
	case astiface.DpiCallExpr:
		return mc.convertDpiCallExpr(v, contextWidth)
	case astiface.SystemFuncCallExpr:
		return mc.convertSystemFuncCall(v, contextWidth)
	default:
		mc.diag.NotYetImplementedf(mc.name, "unrecognized expression %T, substituting a 1-bit placeholder", expr)
		return mc.b.constZero(1), nil
	}
}

func (mc *moduleCtx) convertIdent(v astiface.IdentExpr, contextWidth int, contextSigned bool) (grh.ValueID, error) {
	if mc.curEnv != nil {
		if val, ok := (*mc.curEnv)[v.Name]; ok {
			return val, nil
		}
	}
	entry, ok := mc.sig.lookup(v.Name)
	if !ok {
		width := contextWidth
		if width <= 0 {
			width = defaultUnsizedWidth
		}
		mc.diag.Todof(mc.name+"::"+v.Name, "signal read before any write established its width; treating as a %d-bit wire", width)
		e, created := mc.sig.getOrCreateCombinational(v.Name, width, contextSigned)
		if !created {
			return mc.b.constZero(1), nil
		}
		return e.value, nil
	}
	if entry.kind == sigMem {
		mc.diag.Unsupportedf(mc.name+"::"+v.Name, "memory referenced without an array index")
		return mc.b.constZero(1), nil
	}
	return entry.value, nil
}

func (mc *moduleCtx) convertConst(v astiface.ConstExpr, contextWidth int, contextSigned bool) grh.ValueID {
	width, signed, ok := parseSizedLiteral(v.Literal)
	if !ok {
		width = contextWidth
		if width <= 0 {
			width = defaultUnsizedWidth
		}
		signed = contextSigned
	}
	return mc.b.constFromLiteral(v.Literal, width, signed)
}

// parseSizedLiteral extracts the declared width/signedness from a sized
// SystemVerilog literal like "8'sh0a" or "4'b1010". ok is false for an
// unsized literal ("10"), letting the caller fall back to context.
func parseSizedLiteral(lit string) (width int, signed bool, ok bool) {
	i := strings.IndexByte(lit, '\'')
	if i < 0 {
		return 0, false, false
	}
	widthPart := strings.TrimSpace(lit[:i])
	n, err := strconv.Atoi(widthPart)
	if err != nil || n < 1 {
		return 0, false, false
	}
	rest := lit[i+1:]
	signed = strings.HasPrefix(rest, "s") || strings.HasPrefix(rest, "S")
	return n, signed, true
}

func (mc *moduleCtx) widthOf(v grh.ValueID) int {
	val := mc.g.Value(v)
	if val == nil {
		return 1
	}
	return val.Width()
}

func (mc *moduleCtx) isSignedOf(v grh.ValueID) bool {
	val := mc.g.Value(v)
	if val == nil {
		return false
	}
	return val.IsSigned()
}

var binKind = map[astiface.BinOp]grh.Kind{
	astiface.OpAdd: grh.KindAdd, astiface.OpSub: grh.KindSub, astiface.OpMul: grh.KindMul,
	astiface.OpDiv: grh.KindDiv, astiface.OpMod: grh.KindMod,
	astiface.OpAnd: grh.KindAnd, astiface.OpOr: grh.KindOr, astiface.OpXor: grh.KindXor,
	astiface.OpLogicAnd: grh.KindLogicAnd, astiface.OpLogicOr: grh.KindLogicOr,
	astiface.OpShl: grh.KindShl, astiface.OpLShr: grh.KindLShr, astiface.OpAShr: grh.KindAShr,
	astiface.OpEq: grh.KindEq, astiface.OpNe: grh.KindNe,
	astiface.OpCaseEq: grh.KindCaseEq, astiface.OpCaseNe: grh.KindCaseNe,
	astiface.OpWildcardEq: grh.KindWildcardEq, astiface.OpWildcardNe: grh.KindWildcardNe,
	astiface.OpLt: grh.KindLt, astiface.OpLe: grh.KindLe, astiface.OpGt: grh.KindGt, astiface.OpGe: grh.KindGe,
}

func isCompareOrLogical(op astiface.BinOp) bool {
	switch op {
	case astiface.OpEq, astiface.OpNe, astiface.OpCaseEq, astiface.OpCaseNe,
		astiface.OpWildcardEq, astiface.OpWildcardNe, astiface.OpLt, astiface.OpLe, astiface.OpGt, astiface.OpGe,
		astiface.OpLogicAnd, astiface.OpLogicOr:
		return true
	}
	return false
}

func isShift(op astiface.BinOp) bool {
	return op == astiface.OpShl || op == astiface.OpLShr || op == astiface.OpAShr
}

// convertBinary implements spec.md §4.4/§9's width-widening rule: operands
// are resized to the result width when it is statically known (from
// context), otherwise to the larger operand's width.
func (mc *moduleCtx) convertBinary(v astiface.BinaryExpr, contextWidth int) (grh.ValueID, error) {
	kind, ok := binKind[v.Op]
	if !ok {
		mc.diag.NotYetImplementedf(mc.name, "unrecognized binary operator %v", v.Op)
		return mc.b.constZero(1), nil
	}

	if isShift(v.Op) {
		resultWidth := contextWidth
		lhs, err := mc.convertExpr(v.LHS, resultWidth, false)
		if err != nil {
			return grh.InvalidValue, err
		}
		if resultWidth <= 0 {
			resultWidth = mc.widthOf(lhs)
		}
		lhs = mc.b.extend(lhs, mc.widthOf(lhs), resultWidth, mc.isSignedOf(lhs) && v.Op == astiface.OpAShr)
		rhs, err := mc.convertExpr(v.RHS, -1, false)
		if err != nil {
			return grh.InvalidValue, err
		}
		return mc.b.binary(kind, lhs, rhs, resultWidth, false), nil
	}

	lhs, err := mc.convertExpr(v.LHS, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	rhs, err := mc.convertExpr(v.RHS, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}

	opWidth := contextWidth
	if opWidth <= 0 || isCompareOrLogical(v.Op) {
		opWidth = maxInt(mc.widthOf(lhs), mc.widthOf(rhs))
	}
	signed := mc.isSignedOf(lhs) || mc.isSignedOf(rhs)
	lhs = mc.b.extend(lhs, mc.widthOf(lhs), opWidth, signed)
	rhs = mc.b.extend(rhs, mc.widthOf(rhs), opWidth, signed)

	resultWidth := opWidth
	if isCompareOrLogical(v.Op) {
		resultWidth = 1
		signed = false
	}
	return mc.b.binary(kind, lhs, rhs, resultWidth, signed), nil
}

var unaryKind = map[astiface.UnOp]grh.Kind{
	astiface.OpNot: grh.KindNot, astiface.OpLogicNot: grh.KindLogicNot,
	astiface.OpReduceAnd: grh.KindReduceAnd, astiface.OpReduceOr: grh.KindReduceOr,
	astiface.OpReduceXor: grh.KindReduceXor, astiface.OpReduceNor: grh.KindReduceNor,
	astiface.OpReduceNand: grh.KindReduceNand, astiface.OpReduceXnor: grh.KindReduceXnor,
}

func (mc *moduleCtx) convertUnary(v astiface.UnaryExpr) (grh.ValueID, error) {
	kind, ok := unaryKind[v.Op]
	if !ok {
		mc.diag.NotYetImplementedf(mc.name, "unrecognized unary operator %v", v.Op)
		return mc.b.constZero(1), nil
	}
	operand, err := mc.convertExpr(v.Operand, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	width := mc.widthOf(operand)
	if v.Op != astiface.OpNot {
		width = 1
	}
	return mc.b.unary(kind, operand, width, false), nil
}

func (mc *moduleCtx) convertCond(v astiface.CondExpr, contextWidth int, contextSigned bool) (grh.ValueID, error) {
	cond, err := mc.convertExpr(v.Cond, 1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	then, err := mc.convertExpr(v.Then, contextWidth, contextSigned)
	if err != nil {
		return grh.InvalidValue, err
	}
	els, err := mc.convertExpr(v.Else, contextWidth, contextSigned)
	if err != nil {
		return grh.InvalidValue, err
	}
	width := contextWidth
	if width <= 0 {
		width = maxInt(mc.widthOf(then), mc.widthOf(els))
	}
	signed := contextSigned || (mc.isSignedOf(then) && mc.isSignedOf(els))
	then = mc.b.extend(then, mc.widthOf(then), width, signed)
	els = mc.b.extend(els, mc.widthOf(els), width, signed)
	return mc.b.mux(cond, then, els, width, signed), nil
}

func (mc *moduleCtx) convertConcat(v astiface.ConcatExpr) (grh.ValueID, error) {
	parts := make([]grh.ValueID, 0, len(v.Elems))
	total := 0
	for _, e := range v.Elems {
		val, err := mc.convertExpr(e, -1, false)
		if err != nil {
			return grh.InvalidValue, err
		}
		parts = append(parts, val)
		total += mc.widthOf(val)
	}
	if len(parts) == 0 {
		mc.diag.Unsupportedf(mc.name, "empty concatenation")
		return mc.b.constZero(1), nil
	}
	return mc.b.concat(parts, total), nil
}

func (mc *moduleCtx) convertReplicate(v astiface.ReplicateExpr) (grh.ValueID, error) {
	operand, err := mc.convertExpr(v.Operand, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	count := v.Count
	if count < 1 {
		count = 1
	}
	width := count * mc.widthOf(operand)
	return mc.b.replicate(count, operand, width), nil
}

func (mc *moduleCtx) convertSlice(v astiface.SliceExpr) (grh.ValueID, error) {
	base, err := mc.convertExpr(v.Base, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	baseWidth := mc.widthOf(base)
	if v.LSB == 0 && v.MSB == baseWidth-1 {
		return base, nil
	}
	return mc.b.sliceStatic(base, v.MSB, v.LSB), nil
}

func (mc *moduleCtx) convertIndexedSlice(v astiface.IndexedSliceExpr) (grh.ValueID, error) {
	base, err := mc.convertExpr(v.Base, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	start, err := mc.convertExpr(v.Start, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	width := v.Width
	if width < 1 {
		width = 1
	}
	return mc.b.sliceDynamic(base, start, width), nil
}

func (mc *moduleCtx) convertArraySelect(v astiface.ArraySelectExpr, contextWidth int, contextSigned bool) (grh.ValueID, error) {
	name, ok := identName(v.Base)
	if !ok {
		mc.diag.Unsupportedf(mc.name, "array select base is not a plain identifier")
		return mc.b.constZero(1), nil
	}
	width := contextWidth
	if width <= 0 {
		width = defaultUnsizedWidth
	}
	addr := 0
	if ce, ok := v.Index.(astiface.ConstExpr); ok {
		if n, ok := parseIntLiteral(ce.Literal); ok {
			addr = n
		}
	}
	entry := mc.sig.getOrCreateMemory(name, width, contextSigned, addr)
	if entry == nil {
		return mc.b.constZero(1), nil
	}
	idx, err := mc.convertExpr(v.Index, -1, false)
	if err != nil {
		return grh.InvalidValue, err
	}
	op, res := mc.b.oneResult(grh.KindMemoryReadPort, "memrd", entry.elemWidth, entry.signed)
	mc.b.addOperand(op, idx)
	memOp := mc.g.Operation(entry.memOp)
	mc.g.Operation(op).SetAttr("memSymbol", grh.String(mc.g.Symbols().Text(memOp.Symbol())))
	return res, nil
}

func identName(e astiface.Expr) (string, bool) {
	if id, ok := e.(astiface.IdentExpr); ok {
		return id.Name, true
	}
	return "", false
}

func (mc *moduleCtx) convertHierRef(v astiface.HierRefExpr, contextWidth int) grh.ValueID {
	width := contextWidth
	if width <= 0 {
		width = 1
	}
	op, res := mc.b.oneResult(grh.KindXMRRead, "xmr", width, false)
	mc.b.setAttr(op, "path", grh.String(v.Path))
	mc.diag.Todof(mc.name, "hierarchical reference %q left for xmr-resolve", v.Path)
	return res
}

func (mc *moduleCtx) convertSystemFuncCall(v astiface.SystemFuncCallExpr, contextWidth int) (grh.ValueID, error) {
	width := contextWidth
	if width <= 0 {
		width = defaultUnsizedWidth
	}
	op, res := mc.b.oneResult(grh.KindSystemFunction, "sysf", width, false)
	mc.b.setAttr(op, "name", grh.String(v.Name))
	for _, a := range v.Args {
		val, err := mc.convertExpr(a, -1, false)
		if err != nil {
			return grh.InvalidValue, err
		}
		mc.b.addOperand(op, val)
	}
	return res, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
