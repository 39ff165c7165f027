package elaborate

import (
	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/grh"
)

// lowerDpiImport emits a kDpicImport once per imported function (spec.md
// §4.6).
func (mc *moduleCtx) lowerDpiImport(v astiface.DpiImportItem) {
	if mc.dpiImports == nil {
		mc.dpiImports = make(map[string]grh.OperationID)
	}
	if _, ok := mc.dpiImports[v.Name]; ok {
		return
	}
	op, err := mc.g.CreateOperation(grh.KindDpicImport, mc.e.syms.Intern(v.Name))
	if err != nil {
		mc.diag.Conflictf(mc.name, "duplicate DPI import %q: %v", v.Name, err)
		return
	}
	var argNames, argDirs, argTypes []string
	var argWidths []int64
	var argSigned []bool
	for _, a := range v.Args {
		argNames = append(argNames, a.Name)
		argDirs = append(argDirs, directionName(a.Direction))
		res := mc.e.flat.Flatten(a.Type, a.Name)
		argWidths = append(argWidths, int64(res.TotalWidth))
		argSigned = append(argSigned, res.IsSigned)
		argTypes = append(argTypes, "logic")
	}
	o := mc.g.Operation(op)
	o.SetAttr("argsName", grh.StringVec(argNames))
	o.SetAttr("argsDirection", grh.StringVec(argDirs))
	o.SetAttr("argsWidth", grh.Int64Vec(argWidths))
	o.SetAttr("argsType", grh.StringVec(argTypes))
	o.SetAttr("argsSigned", grh.BoolVec(argSigned))
	o.SetAttr("hasReturn", grh.Bool(v.HasReturn))
	if v.HasReturn {
		res := mc.e.flat.Flatten(v.ReturnType, v.Name+"__ret")
		o.SetAttr("returnWidth", grh.Int64(int64(res.TotalWidth)))
		o.SetAttr("returnSigned", grh.Bool(res.IsSigned))
		o.SetAttr("returnType", grh.String("logic"))
	}
	mc.dpiImports[v.Name] = op
}

func directionName(d astiface.Direction) string {
	switch d {
	case astiface.DirOutput:
		return "output"
	case astiface.DirInout:
		return "inout"
	default:
		return "input"
	}
}

// convertDpiCallExpr lowers a DPI call appearing in RHS position to a
// kDpicCall whose return Value is this expression's result (spec.md §4.6).
// updateCond is constant-one and stays so; when this call sits directly at
// a write-port's data operand, emitRegisterWritePort/emitLatchWritePort
// record the fold through the sink's inlineSink attribute instead.
func (mc *moduleCtx) convertDpiCallExpr(v astiface.DpiCallExpr, contextWidth int) (grh.ValueID, error) {
	importOp, ok := mc.dpiImports[v.ImportName]
	if !ok {
		mc.diag.Unsupportedf(mc.name, "DPI call to unimported function %q", v.ImportName)
		return mc.b.constZero(1), nil
	}
	width := contextWidth
	if width <= 0 {
		if retW, ok := mc.g.Operation(importOp).GetAttr("returnWidth"); ok {
			if w, ok := retW.Int64(); ok {
				width = int(w)
			}
		}
	}
	if width <= 0 {
		width = defaultUnsizedWidth
	}

	op, err := mc.g.CreateOperation(grh.KindDpicCall, grh.InvalidSymbol)
	if err != nil {
		return grh.InvalidValue, err
	}
	one := mc.b.constFromLiteral("1'b1", 1, false)
	mc.b.addOperand(op, one) // updateCond, left at constant-one

	var inNames []string
	for i, a := range v.Args {
		val, err := mc.convertExpr(a, -1, false)
		if err != nil {
			return grh.InvalidValue, err
		}
		mc.b.addOperand(op, val)
		inNames = append(inNames, argLabel(i))
	}
	o := mc.g.Operation(op)
	o.SetAttr("targetImportSymbol", grh.String(mc.g.Symbols().Text(mc.g.Operation(importOp).Symbol())))
	o.SetAttr("inArgName", grh.StringVec(inNames))
	o.SetAttr("hasReturn", grh.Bool(true))

	res := mc.b.newValue("dpicall", width, false, grh.Logic)
	if err := mc.g.AddResult(op, res); err != nil {
		return grh.InvalidValue, err
	}
	return res, nil
}

func argLabel(i int) string {
	names := [...]string{"a", "b", "c", "d", "e", "f", "g", "h"}
	if i < len(names) {
		return names[i]
	}
	return "arg"
}

// dpiInlineEligible decides whether a call folds into its sink: the call
// must have a return value whose single result feeds exactly one consumer,
// and that consumer must be a register, latch or memory port. The sink's
// updateCond and event operands are not compared with the call's.
func dpiInlineEligible(g *grh.Graph, callOp grh.OperationID) (sinkOp grh.OperationID, ok bool) {
	o := g.Operation(callOp)
	if o == nil || o.NumResults() != 1 {
		return grh.InvalidOperation, false
	}
	hasReturn, _ := o.GetAttr("hasReturn")
	if hr, _ := hasReturn.Bool(); !hr {
		return grh.InvalidOperation, false
	}
	res := g.Value(o.Result(0))
	if res == nil || res.NumUsers() != 1 {
		return grh.InvalidOperation, false
	}
	u := res.Users()[0]
	sink := g.Operation(u.Op)
	if sink == nil {
		return grh.InvalidOperation, false
	}
	switch sink.Kind() {
	case grh.KindRegisterWritePort, grh.KindLatchWritePort, grh.KindMemoryWritePort, grh.KindMemoryReadPort:
		return u.Op, true
	default:
		return grh.InvalidOperation, false
	}
}
