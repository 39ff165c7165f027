package grh

import "fmt"

// CheckInvariants verifies the universal properties spec.md §8 requires to
// hold after every pass. It is intended for tests and for passes that want
// to assert their own output rather than as a hot-path runtime check.
func (g *Graph) CheckInvariants() []error {
	var errs []error

	seenValueSym := make(map[SymbolID]ValueID)
	seenOpSym := make(map[SymbolID]OperationID)

	for _, v := range g.Values() {
		if v.symbol != InvalidSymbol {
			if prev, ok := seenValueSym[v.symbol]; ok && prev != v.id {
				errs = append(errs, fmt.Errorf("duplicate value symbol %q", g.syms.Text(v.symbol)))
			}
			seenValueSym[v.symbol] = v.id
		}
		if v.definingOp.Valid() {
			op := g.Operation(v.definingOp)
			if op == nil {
				errs = append(errs, fmt.Errorf("value %q defines-op points to erased/unknown operation", g.syms.Text(v.symbol)))
				continue
			}
			found := false
			for _, r := range op.results {
				if r == v.id {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("value %q's definingOp does not list it as a result", g.syms.Text(v.symbol)))
			}
		}
		for _, u := range v.users {
			op := g.Operation(u.op)
			if op == nil {
				errs = append(errs, fmt.Errorf("value %q has a user referencing an erased/unknown operation", g.syms.Text(v.symbol)))
				continue
			}
			if u.index < 0 || u.index >= len(op.operands) || op.operands[u.index] != v.id {
				errs = append(errs, fmt.Errorf("value %q's user entry does not match operand at recorded index", g.syms.Text(v.symbol)))
			}
		}
	}

	for _, o := range g.Operations() {
		if o.symbol != InvalidSymbol {
			if prev, ok := seenOpSym[o.symbol]; ok && prev != o.id {
				errs = append(errs, fmt.Errorf("duplicate operation symbol %q", g.syms.Text(o.symbol)))
			}
			seenOpSym[o.symbol] = o.id
		}
		for _, r := range o.results {
			v := g.Value(r)
			if v == nil {
				errs = append(errs, fmt.Errorf("operation %s result references erased/unknown value", o.kind))
				continue
			}
			if v.definingOp != o.id {
				errs = append(errs, fmt.Errorf("operation %s result %q's definingOp != this operation", o.kind, g.syms.Text(v.symbol)))
			}
		}
		for i, opnd := range o.operands {
			v := g.Value(opnd)
			if v == nil {
				errs = append(errs, fmt.Errorf("operation %s operand %d references erased/unknown value", o.kind, i))
				continue
			}
			found := false
			for _, u := range v.users {
				if u.op == o.id && u.index == i {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("operation %s operand %d not recorded in value's users", o.kind, i))
			}
		}
	}

	return errs
}

// HasUnresolvedXMR reports whether any live XMRRead/XMRWrite operation
// remains. The xmr-resolve pass (spec.md §4.8) must leave this false;
// its presence at emission time is a hard error (spec.md §3).
func (g *Graph) HasUnresolvedXMR() bool {
	for _, o := range g.Operations() {
		if o.kind == KindXMRRead || o.kind == KindXMRWrite {
			return true
		}
	}
	return false
}
