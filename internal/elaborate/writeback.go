package elaborate

import "github.com/sarchlab/grhc/internal/grh"

// writeKind distinguishes a continuous-assign driver from a procedural one,
// part of the write-back memo's key (spec.md §4.3).
type writeKind int

const (
	writeContinuous writeKind = iota
	writeProcedural
)

// sliceRecord is one writer's contribution to a target, in program order.
type sliceRecord struct {
	msb, lsb int
	source   grh.ValueID
}

// writeKey identifies one write-back memo bucket: a target signal, the kind
// of driver, and (for procedural writes) the governing seq key, so writes
// under different clocks/edges to the same signal never get merged
// together (spec.md §4.3, §4.5 "seq key").
type writeKey struct {
	name   string
	kind   writeKind
	seqKey string
}

// writeBackMemo aggregates per-signal slice assignments into a single
// composed driver per key, resolving overlapping bits by last-write-wins
// (spec.md §4.3).
type writeBackMemo struct {
	b       *builder
	records map[writeKey][]sliceRecord
	order   []writeKey
}

func newWriteBackMemo(b *builder) *writeBackMemo {
	return &writeBackMemo{b: b, records: make(map[writeKey][]sliceRecord)}
}

// Record appends one writer's slice [lsb,msb] for key, in program order.
func (w *writeBackMemo) Record(key writeKey, msb, lsb int, source grh.ValueID) {
	if _, ok := w.records[key]; !ok {
		w.order = append(w.order, key)
	}
	w.records[key] = append(w.records[key], sliceRecord{msb: msb, lsb: lsb, source: source})
}

// Keys returns every recorded key in first-write order.
func (w *writeBackMemo) Keys() []writeKey { return append([]writeKey(nil), w.order...) }

// Compose resolves key's records into a single Value spanning [0, width-1],
// zero-filling any bit no writer ever touched and keeping, for each bit,
// only the last (highest program-order) writer that covered it.
func (w *writeBackMemo) Compose(key writeKey, width int) grh.ValueID {
	recs := w.records[key]
	if len(recs) == 1 && recs[0].msb == width-1 && recs[0].lsb == 0 {
		// Full-width single slice: skip the concat (spec.md §4.3).
		return recs[0].source
	}

	type owner struct {
		rec   int
		local int
		valid bool
	}
	bits := make([]owner, width)
	for ri, r := range recs {
		lo, hi := r.lsb, r.msb
		if lo < 0 {
			lo = 0
		}
		if hi > width-1 {
			hi = width - 1
		}
		for abs := lo; abs <= hi; abs++ {
			bits[abs] = owner{rec: ri, local: abs - r.lsb, valid: true}
		}
	}

	var parts []grh.ValueID
	abs := width - 1
	for abs >= 0 {
		cur := bits[abs]
		lo := abs
		for lo-1 >= 0 {
			prev := bits[lo-1]
			if prev.valid != cur.valid {
				break
			}
			if cur.valid && (prev.rec != cur.rec || prev.local != cur.local-(abs-(lo-1))) {
				break
			}
			lo--
		}
		runWidth := abs - lo + 1
		if !cur.valid {
			parts = append(parts, w.b.constZero(runWidth))
		} else {
			r := recs[cur.rec]
			full := r.msb - r.lsb + 1
			startLocal := lo - r.lsb
			endLocal := abs - r.lsb
			if startLocal == 0 && endLocal == full-1 {
				parts = append(parts, r.source)
			} else {
				parts = append(parts, w.b.sliceStatic(r.source, endLocal, startLocal))
			}
		}
		abs = lo - 1
	}
	return w.b.concat(parts, width)
}
