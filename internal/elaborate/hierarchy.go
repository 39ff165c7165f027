package elaborate

import (
	"fmt"

	"github.com/sarchlab/grhc/internal/astiface"
	"github.com/sarchlab/grhc/internal/grh"
)

// lowerInstance materializes one module instantiation as a kInstance
// operation, recursing into elaborateSpecialization for the callee's body
// (spec.md §4.7). Port connections are resolved against the callee's own
// Ports() so the operand/result layout matches "the exact declaration order
// of the target module" regardless of the order PortConns lists them in.
func (mc *moduleCtx) lowerInstance(v astiface.InstanceItem) error {
	callee, ok := mc.e.moduleByName[v.ModuleName]
	if !ok {
		mc.diag.Unsupportedf(mc.name, "instance %q references unknown module %q", v.InstanceName, v.ModuleName)
		return nil
	}
	childGraph, err := mc.e.elaborateSpecialization(callee, v.Params)
	if err != nil {
		return fmt.Errorf("elaborate %s: instance %s: %w", mc.name, v.InstanceName, err)
	}

	actuals := make(map[string]astiface.Expr, len(v.PortConns))
	for _, pc := range v.PortConns {
		actuals[pc.FormalName] = pc.Actual
	}

	var inputs, outputs, inouts []astiface.PortDecl
	for _, p := range callee.Ports() {
		switch p.Direction {
		case astiface.DirInput:
			inputs = append(inputs, p)
		case astiface.DirOutput:
			outputs = append(outputs, p)
		case astiface.DirInout:
			inouts = append(inouts, p)
		}
	}

	sym := mc.e.syms.Intern(v.InstanceName)
	op, err := mc.g.CreateOperation(grh.KindInstance, sym)
	if err != nil {
		mc.diag.Conflictf(mc.name, "duplicate instance name %q: %v", v.InstanceName, err)
		return nil
	}
	o := mc.g.Operation(op)
	o.SetAttr("moduleName", grh.String(mc.g.Symbols().Text(childGraph.ModuleSymbol())))
	o.SetAttr("instanceName", grh.String(v.InstanceName))
	o.SetAttr("inputPortName", grh.StringVec(portNames(inputs)))
	o.SetAttr("outputPortName", grh.StringVec(portNames(outputs)))
	o.SetAttr("inoutPortName", grh.StringVec(portNames(inouts)))

	for _, p := range inputs {
		res := mc.e.flat.Flatten(p.Type, v.InstanceName+"."+p.Name)
		actual, ok := actuals[p.Name]
		var val grh.ValueID
		if !ok {
			mc.diag.Todof(mc.name, "instance %q input %q left unconnected; tying to zero", v.InstanceName, p.Name)
			val = mc.b.constZero(res.TotalWidth)
		} else {
			val, err = mc.convertExpr(actual, res.TotalWidth, res.IsSigned)
			if err != nil {
				return err
			}
		}
		mc.b.addOperand(op, val)
	}

	// Inout driver operands, one per inout port (spec.md §4.7's operand
	// layout). This core models an inout connection as a plain wire
	// pass-through rather than a full tri-state bus: the instance always
	// drives (constant output-enable) and the actual's current read value
	// is fed straight in as the driver, since astiface surfaces no separate
	// driver/enable split at the call site.
	for _, p := range inouts {
		actual, ok := actuals[p.Name]
		res := mc.e.flat.Flatten(p.Type, v.InstanceName+"."+p.Name)
		var val grh.ValueID
		if !ok {
			val = mc.b.constZero(res.TotalWidth)
		} else {
			val, err = mc.convertExpr(actual, res.TotalWidth, res.IsSigned)
			if err != nil {
				return err
			}
		}
		mc.b.addOperand(op, val)
	}
	for range inouts {
		mc.b.addOperand(op, mc.b.constFromLiteral("1'b1", 1, false))
	}

	for _, p := range outputs {
		res := mc.e.flat.Flatten(p.Type, v.InstanceName+"."+p.Name)
		out := mc.b.newValue("inst_"+p.Name, res.TotalWidth, res.IsSigned, grh.Logic)
		if err := mc.g.AddResult(op, out); err != nil {
			return err
		}
		if actual, ok := actuals[p.Name]; ok {
			mc.wireInstanceResult(actual, out, res.TotalWidth, res.IsSigned)
		}
	}
	for _, p := range inouts {
		res := mc.e.flat.Flatten(p.Type, v.InstanceName+"."+p.Name)
		out := mc.b.newValue("instio_"+p.Name, res.TotalWidth, res.IsSigned, grh.Logic)
		if err := mc.g.AddResult(op, out); err != nil {
			return err
		}
		if actual, ok := actuals[p.Name]; ok {
			mc.wireInstanceResult(actual, out, res.TotalWidth, res.IsSigned)
		}
	}
	return nil
}

func portNames(ps []astiface.PortDecl) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// wireInstanceResult records val (an instance output/inout-in result) as
// the sole driver of actual's resolved write-back target, the same path a
// continuous assign takes.
func (mc *moduleCtx) wireInstanceResult(actual astiface.Expr, val grh.ValueID, width int, signed bool) {
	tgt, err := mc.resolveTarget(actual)
	if err != nil {
		return
	}
	if tgt.isMemory {
		entry := mc.sig.getOrCreateMemory(tgt.name, width, signed, tgt.addrConst)
		if entry != nil {
			mc.recordMemoryWrite(entry, tgt, val, writeKey{name: tgt.name, kind: writeContinuous}, nil)
		}
		return
	}
	entry, ok := mc.sig.getOrCreateCombinational(tgt.name, mc.inferWidth(tgt), signed)
	if !ok {
		return
	}
	msb, lsb := tgt.msb, tgt.lsb
	if msb < 0 {
		msb = entry.width - 1
	}
	val = mc.b.extend(val, width, msb-lsb+1, signed)
	mc.wb.Record(writeKey{name: tgt.name, kind: writeContinuous}, msb, lsb, val)
	mc.recordEntryKey(entry, writeKey{name: tgt.name, kind: writeContinuous})
}
