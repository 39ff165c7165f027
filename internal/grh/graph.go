// Package grh implements the hardware graph IR: the typed dataflow/control
// graph described in spec.md §3-4.1. A Graph is the sole owner of every
// Value and Operation belonging to one module instance body; all
// cross-references go through ValueID/OperationID rather than pointers, so
// the deliberately cyclic Operation<->Value ownership never needs a real
// reference cycle in memory (spec.md §9).
package grh

import (
	"fmt"

	"github.com/sarchlab/grhc/internal/symtab"
)

var nextGraphTag graphTag = 1

// Graph owns a dense arena of Values and Operations for one module
// instance body, plus the three port tables and the symbol lookups
// spec.md §3 describes.
type Graph struct {
	tag graphTag

	moduleSymbol SymbolID
	syms         *symtab.Interner

	values     []*Value
	operations []*Operation

	valueBySymbol     map[SymbolID]ValueID
	operationBySymbol map[SymbolID]OperationID

	inputPorts  []InputPort
	outputPorts []OutputPort
	inoutPorts  []InoutPort
}

// InputPort names an input-port Value in declaration order.
type InputPort struct {
	Name  SymbolID
	Value ValueID
}

// OutputPort names an output-port Value in declaration order.
type OutputPort struct {
	Name  SymbolID
	Value ValueID
}

// InoutPort models a bidirectional pin as the triple (in, out, oe): reader,
// driver, and output-enable, each its own Value flagged PortInout rather
// than PortInput/PortOutput (spec.md §3, §9 "Inout-port modeling").
type InoutPort struct {
	Name SymbolID
	In   ValueID
	Out  ValueID
	OE   ValueID
}

// New creates an empty Graph for the module symbol moduleSym, using syms as
// the shared symbol interner for this module body.
func New(syms *symtab.Interner, moduleSym SymbolID) *Graph {
	g := &Graph{
		tag:               nextGraphTag,
		moduleSymbol:      moduleSym,
		syms:              syms,
		valueBySymbol:     make(map[SymbolID]ValueID),
		operationBySymbol: make(map[SymbolID]OperationID),
	}
	nextGraphTag++
	return g
}

// ModuleSymbol returns the specialization-key symbol naming this graph
// (e.g. "foo$WIDTH_4"), not necessarily its human-readable alias.
func (g *Graph) ModuleSymbol() SymbolID { return g.moduleSymbol }

// Symbols returns the interner backing this graph's SymbolIDs.
func (g *Graph) Symbols() *symtab.Interner { return g.syms }

func (g *Graph) owns(gt graphTag) bool { return gt == g.tag }

func (g *Graph) value(id ValueID) *Value {
	if !g.owns(id.graph) || int(id.index) >= len(g.values) {
		return nil
	}
	return g.values[id.index]
}

func (g *Graph) operation(id OperationID) *Operation {
	if !g.owns(id.graph) || int(id.index) >= len(g.operations) {
		return nil
	}
	return g.operations[id.index]
}

// Value resolves id to its Value, or nil if id does not belong to this
// graph or has been erased.
func (g *Graph) Value(id ValueID) *Value {
	v := g.value(id)
	if v == nil || v.erased {
		return nil
	}
	return v
}

// Operation resolves id to its Operation, or nil if id does not belong to
// this graph or has been erased.
func (g *Graph) Operation(id OperationID) *Operation {
	o := g.operation(id)
	if o == nil || o.erased {
		return nil
	}
	return o
}

// Values iterates live values in arena (creation) order.
func (g *Graph) Values() []*Value {
	out := make([]*Value, 0, len(g.values))
	for _, v := range g.values {
		if !v.erased {
			out = append(out, v)
		}
	}
	return out
}

// Operations iterates live operations in insertion order — the topological
// order the emitter relies on for tie-breaking (spec.md §3).
func (g *Graph) Operations() []*Operation {
	out := make([]*Operation, 0, len(g.operations))
	for _, o := range g.operations {
		if !o.erased {
			out = append(out, o)
		}
	}
	return out
}

func (g *Graph) symbolTaken(sym SymbolID) bool {
	if sym == InvalidSymbol {
		return false
	}
	_, vok := g.valueBySymbol[sym]
	_, ook := g.operationBySymbol[sym]
	return vok || ook
}

// CreateValue creates a fresh Value with no users, no definingOp, and no
// port role. Fails (returns InvalidValue, error) if symbol is empty or
// already resolves to a value or operation in this graph.
func (g *Graph) CreateValue(symbol SymbolID, width int, isSigned bool, typ ValueType) (ValueID, error) {
	if symbol == InvalidSymbol {
		return InvalidValue, fmt.Errorf("grh: value symbol must be non-empty")
	}
	if g.symbolTaken(symbol) {
		return InvalidValue, fmt.Errorf("grh: symbol %q already in use", g.syms.Text(symbol))
	}
	if width < 1 {
		width = 1
	}
	id := ValueID{graph: g.tag, index: int32(len(g.values))}
	v := &Value{
		id:         id,
		symbol:     symbol,
		typ:        typ,
		width:      width,
		isSigned:   isSigned,
		role:       PortNone,
		definingOp: InvalidOperation,
	}
	g.values = append(g.values, v)
	g.valueBySymbol[symbol] = id
	return id, nil
}

// createPortValue is the shared path for CreateValue variants that also
// bind a port role at creation, bypassing the Created->Defined transition
// (spec.md §4.1's Value state machine: "Ports bypass Defined at creation").
func (g *Graph) createPortValue(symbol SymbolID, width int, isSigned bool, typ ValueType, role PortRole) (ValueID, error) {
	id, err := g.CreateValue(symbol, width, isSigned, typ)
	if err != nil {
		return InvalidValue, err
	}
	g.values[id.index].role = role
	return id, nil
}

// CreateOperation creates a fresh Operation of the given kind. symbol may
// be InvalidSymbol; if provided it must be unique among operations (and
// not already a value symbol).
func (g *Graph) CreateOperation(kind Kind, symbol SymbolID) (OperationID, error) {
	if symbol != InvalidSymbol && g.symbolTaken(symbol) {
		return InvalidOperation, fmt.Errorf("grh: symbol %q already in use", g.syms.Text(symbol))
	}
	id := OperationID{graph: g.tag, index: int32(len(g.operations))}
	op := &Operation{
		id:     id,
		kind:   kind,
		symbol: symbol,
		attrs:  NewAttrMap(),
	}
	g.operations = append(g.operations, op)
	if symbol != InvalidSymbol {
		g.operationBySymbol[symbol] = id
	}
	return id, nil
}

// AddOperand appends value to op's operand list and records the matching
// user entry on value. Fails if op/value don't belong to this graph, are
// erased, or value is not live.
func (g *Graph) AddOperand(op OperationID, value ValueID) error {
	o := g.Operation(op)
	if o == nil {
		return fmt.Errorf("grh: AddOperand: unknown operation")
	}
	v := g.Value(value)
	if v == nil {
		return fmt.Errorf("grh: AddOperand: unknown value (possibly from a different graph)")
	}
	if !g.owns(value.graph) {
		return fmt.Errorf("grh: AddOperand: value belongs to a different graph")
	}
	idx := len(o.operands)
	o.operands = append(o.operands, value)
	v.users = append(v.users, userRef{op: op, index: idx})
	return nil
}

// AddResult appends value to op's result list and sets value.definingOp to
// op. Fails if value already has a definingOp.
func (g *Graph) AddResult(op OperationID, value ValueID) error {
	o := g.Operation(op)
	if o == nil {
		return fmt.Errorf("grh: AddResult: unknown operation")
	}
	v := g.Value(value)
	if v == nil {
		return fmt.Errorf("grh: AddResult: unknown value")
	}
	if v.definingOp.Valid() {
		return fmt.Errorf("grh: AddResult: value already has a defining operation")
	}
	o.results = append(o.results, value)
	v.definingOp = op
	return nil
}

// ReplaceResult transfers the definingOp pointer for op.results[index] to
// newValue, without touching any other consumer's users list.
func (g *Graph) ReplaceResult(op OperationID, index int, newValue ValueID) error {
	o := g.Operation(op)
	if o == nil {
		return fmt.Errorf("grh: ReplaceResult: unknown operation")
	}
	if index < 0 || index >= len(o.results) {
		return fmt.Errorf("grh: ReplaceResult: index %d out of range", index)
	}
	nv := g.Value(newValue)
	if nv == nil {
		return fmt.Errorf("grh: ReplaceResult: unknown new value")
	}
	old := g.value(o.results[index])
	if old != nil {
		old.definingOp = InvalidOperation
	}
	o.results[index] = newValue
	nv.definingOp = op
	return nil
}

// SetValueSymbol renames value's symbol, preserving injectivity.
func (g *Graph) SetValueSymbol(value ValueID, newSymbol SymbolID) error {
	v := g.Value(value)
	if v == nil {
		return fmt.Errorf("grh: SetValueSymbol: unknown value")
	}
	if newSymbol == InvalidSymbol {
		return fmt.Errorf("grh: SetValueSymbol: new symbol must be non-empty")
	}
	if existing, ok := g.valueBySymbol[newSymbol]; ok && existing != value {
		return fmt.Errorf("grh: SetValueSymbol: symbol %q already in use", g.syms.Text(newSymbol))
	}
	if _, ok := g.operationBySymbol[newSymbol]; ok {
		return fmt.Errorf("grh: SetValueSymbol: symbol %q already in use by an operation", g.syms.Text(newSymbol))
	}
	delete(g.valueBySymbol, v.symbol)
	v.symbol = newSymbol
	g.valueBySymbol[newSymbol] = value
	return nil
}

// EraseOp removes op from every operand's users list, invalidates the
// definingOp pointer of each of its results (the result Values themselves
// remain present), and marks op erased. Returns false if op is not present.
func (g *Graph) EraseOp(op OperationID) bool {
	o := g.Operation(op)
	if o == nil {
		return false
	}
	for _, operand := range o.operands {
		v := g.value(operand)
		if v == nil {
			continue
		}
		filtered := v.users[:0]
		for _, u := range v.users {
			if u.op != op {
				filtered = append(filtered, u)
			}
		}
		v.users = filtered
	}
	for _, result := range o.results {
		v := g.value(result)
		if v != nil {
			v.definingOp = InvalidOperation
		}
	}
	if o.symbol != InvalidSymbol {
		delete(g.operationBySymbol, o.symbol)
	}
	o.erased = true
	return true
}

// EraseValue removes value from the arena. Legal only if its users set is
// empty and no live operation's results still reference it.
func (g *Graph) EraseValue(value ValueID) bool {
	v := g.Value(value)
	if v == nil {
		return false
	}
	if len(v.users) != 0 {
		return false
	}
	if v.definingOp.Valid() {
		if owner := g.Operation(v.definingOp); owner != nil {
			for _, r := range owner.results {
				if r == value {
					return false
				}
			}
		}
	}
	if v.symbol != InvalidSymbol {
		delete(g.valueBySymbol, v.symbol)
	}
	v.erased = true
	return true
}

// ValueBySymbol looks up a live value by its symbol.
func (g *Graph) ValueBySymbol(sym SymbolID) (ValueID, bool) {
	id, ok := g.valueBySymbol[sym]
	if !ok {
		return InvalidValue, false
	}
	if v := g.value(id); v == nil || v.erased {
		return InvalidValue, false
	}
	return id, true
}

// OperationBySymbol looks up a live operation by its symbol.
func (g *Graph) OperationBySymbol(sym SymbolID) (OperationID, bool) {
	id, ok := g.operationBySymbol[sym]
	if !ok {
		return InvalidOperation, false
	}
	if o := g.operation(id); o == nil || o.erased {
		return InvalidOperation, false
	}
	return id, true
}

// --- Ports ---

// AddInputPort creates a Value flagged PortInput and appends it
// to the input port table. Fails if the name is already used by any of the
// three port tables.
func (g *Graph) AddInputPort(name SymbolID, width int, isSigned bool, typ ValueType) (ValueID, error) {
	if g.portNameTaken(name) {
		return InvalidValue, fmt.Errorf("grh: port name %q already declared", g.syms.Text(name))
	}
	v, err := g.createPortValue(name, width, isSigned, typ, PortInput)
	if err != nil {
		return InvalidValue, err
	}
	g.inputPorts = append(g.inputPorts, InputPort{Name: name, Value: v})
	return v, nil
}

// AddOutputPort creates a Value flagged PortOutput and appends it to the
// output port table.
func (g *Graph) AddOutputPort(name SymbolID, width int, isSigned bool, typ ValueType) (ValueID, error) {
	if g.portNameTaken(name) {
		return InvalidValue, fmt.Errorf("grh: port name %q already declared", g.syms.Text(name))
	}
	v, err := g.createPortValue(name, width, isSigned, typ, PortOutput)
	if err != nil {
		return InvalidValue, err
	}
	g.outputPorts = append(g.outputPorts, OutputPort{Name: name, Value: v})
	return v, nil
}

// AddInoutPort creates the three internal Values (in, out, oe) for a
// bidirectional pin, each flagged PortInout (spec.md §3 "port triple").
func (g *Graph) AddInoutPort(name SymbolID, width int, isSigned bool) (InoutPort, error) {
	if g.portNameTaken(name) {
		return InoutPort{}, fmt.Errorf("grh: port name %q already declared", g.syms.Text(name))
	}
	inSym := g.deriveSuffixedSymbol(name, "__in")
	outSym := g.deriveSuffixedSymbol(name, "__out")
	oeSym := g.deriveSuffixedSymbol(name, "__oe")

	in, err := g.createPortValue(inSym, width, isSigned, Logic, PortInout)
	if err != nil {
		return InoutPort{}, err
	}
	out, err := g.createPortValue(outSym, width, isSigned, Logic, PortInout)
	if err != nil {
		return InoutPort{}, err
	}
	oe, err := g.createPortValue(oeSym, width, false, Logic, PortInout)
	if err != nil {
		return InoutPort{}, err
	}
	p := InoutPort{Name: name, In: in, Out: out, OE: oe}
	g.inoutPorts = append(g.inoutPorts, p)
	return p, nil
}

func (g *Graph) deriveSuffixedSymbol(base SymbolID, suffix string) SymbolID {
	return g.syms.Intern(g.syms.Text(base) + suffix)
}

func (g *Graph) portNameTaken(name SymbolID) bool {
	for _, p := range g.inputPorts {
		if p.Name == name {
			return true
		}
	}
	for _, p := range g.outputPorts {
		if p.Name == name {
			return true
		}
	}
	for _, p := range g.inoutPorts {
		if p.Name == name {
			return true
		}
	}
	return false
}

func (g *Graph) InputPorts() []InputPort   { return append([]InputPort(nil), g.inputPorts...) }
func (g *Graph) OutputPorts() []OutputPort { return append([]OutputPort(nil), g.outputPorts...) }
func (g *Graph) InoutPorts() []InoutPort   { return append([]InoutPort(nil), g.inoutPorts...) }
