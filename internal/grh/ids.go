package grh

import "github.com/sarchlab/grhc/internal/symtab"

// SymbolID is an interned name scoped to a single Graph; it is never
// portable across graphs (spec.md §3).
type SymbolID = symtab.ID

// InvalidSymbol is the sentinel symbol id.
const InvalidSymbol = symtab.Invalid

// graphTag identifies the owning Graph so cross-graph id misuse is
// detectable without a back-pointer dereference on every access.
type graphTag uint64

// ValueID is an opaque index into one Graph's value arena, scoped to that
// graph's identity.
type ValueID struct {
	graph graphTag
	index int32
}

// InvalidValue compares unequal to any real ValueID.
var InvalidValue = ValueID{}

// Valid reports whether v was returned by a live Graph (not the zero value).
func (v ValueID) Valid() bool { return v.graph != 0 }

// SameGraph reports whether v and o were minted by the same Graph.
func (v ValueID) SameGraph(o ValueID) bool { return v.graph == o.graph }

// OperationID is an opaque index into one Graph's operation arena.
type OperationID struct {
	graph graphTag
	index int32
}

// InvalidOperation compares unequal to any real OperationID.
var InvalidOperation = OperationID{}

func (o OperationID) Valid() bool { return o.graph != 0 }

func (o OperationID) SameGraph(other OperationID) bool { return o.graph == other.graph }
