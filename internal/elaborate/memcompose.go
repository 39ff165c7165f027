package elaborate

import (
	"fmt"

	"github.com/sarchlab/grhc/internal/grh"
)

// memGroupKey identifies one memory write port's worth of recorded writes:
// the same memory, the same governing seq key, and the same address
// (dynamic Value identity when the address is runtime-computed, else the
// observed constant). Every if(be[i]) mem[addr][i] <= din[i] iteration of a
// masked write targets the same addr, so they must land in one write port
// with a real mask rather than one all-ones port each (spec.md §4.3 rule
// 3's masked-write shape).
type memGroupKey struct {
	name      string
	seqKey    string
	addrDyn   grh.ValueID
	addrConst int
}

func memoryGroupKeyFor(w memWrite) memGroupKey {
	if !w.tgt.hasAddrConst {
		return memGroupKey{name: w.tgt.name, seqKey: w.key.seqKey, addrDyn: w.tgt.addr}
	}
	return memGroupKey{name: w.tgt.name, seqKey: w.key.seqKey, addrConst: w.tgt.addrConst}
}

// groupMemoryWrites buckets recorded memory writes sharing a memory/seq
// key/address together, in first-occurrence order, so the emitted write
// ports come out in a stable, deterministic sequence.
func groupMemoryWrites(writes []memWrite) ([]memGroupKey, map[memGroupKey][]memWrite) {
	groups := make(map[memGroupKey][]memWrite)
	var order []memGroupKey
	for _, w := range writes {
		k := memoryGroupKeyFor(w)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], w)
	}
	return order, groups
}

// commonPrefixLen returns how many leading condPath entries every path in
// paths shares, comparing by ValueID equality. The shared prefix is a
// group's updateCond (e.g. the enclosing if(we)); each write's condPath
// beyond it is what actually distinguishes it from its group-mates (e.g.
// the per-bit if(be[i]) guard).
func commonPrefixLen(paths [][]grh.ValueID) int {
	if len(paths) == 0 {
		return 0
	}
	n := len(paths[0])
	for _, p := range paths[1:] {
		if len(p) < n {
			n = len(p)
		}
	}
	for i := 0; i < n; i++ {
		for _, p := range paths[1:] {
			if p[i] != paths[0][i] {
				return i
			}
		}
	}
	return n
}

// andAll AND-reduces vals left to right, returning grh.InvalidValue for an
// empty list; callers substitute the usual constant-one in that case.
func (mc *moduleCtx) andAll(vals []grh.ValueID) grh.ValueID {
	if len(vals) == 0 {
		return grh.InvalidValue
	}
	acc := vals[0]
	for _, v := range vals[1:] {
		acc = mc.b.binary(grh.KindLogicAnd, acc, v, 1, false)
	}
	return acc
}

// bitRange returns the absolute [msb,lsb] a memory write's target claims
// within its memory's element, defaulting to the full element when the
// write carries no slice (tgt.msb < 0: a whole-word write).
func bitRange(tgt targetInfo, elemWidth int) (msb, lsb int) {
	if tgt.msb < 0 {
		return elemWidth - 1, 0
	}
	return tgt.msb, tgt.lsb
}

// composeMemoryGroup merges one group's per-write records into a single
// write port's operands, the same way finalizeWriteBack composes a
// register or net's driver: a shared updateCond (the group's common
// condPath prefix), a full-element data word, and a per-bit mask recovered
// from each write's own trailing condition, composed bit-by-bit with the
// write-back memo's existing last-write-wins/zero-fill algorithm.
func (mc *moduleCtx) composeMemoryGroup(key memGroupKey, members []memWrite) {
	entry := members[0].entry
	elemWidth := entry.elemWidth
	if elemWidth <= 0 {
		elemWidth = 1
	}

	paths := make([][]grh.ValueID, len(members))
	for i, m := range members {
		paths[i] = m.condPath
	}
	prefixLen := commonPrefixLen(paths)
	updateCond := mc.andAll(paths[0][:prefixLen])

	data := newWriteBackMemo(mc.b)
	mask := newWriteBackMemo(mc.b)
	dataKey := writeKey{name: key.name, kind: writeProcedural, seqKey: "data"}
	maskKey := writeKey{name: key.name, kind: writeProcedural, seqKey: "mask"}
	for _, m := range members {
		msb, lsb := bitRange(m.tgt, elemWidth)
		data.Record(dataKey, msb, lsb, m.value)

		width := msb - lsb + 1
		bitCond := mc.andAll(m.condPath[prefixLen:])
		bitVal := mc.b.allOnes(width)
		if bitCond != grh.InvalidValue {
			if width == 1 {
				bitVal = bitCond
			} else {
				bitVal = mc.b.replicate(width, bitCond, width)
			}
		}
		mask.Record(maskKey, msb, lsb, bitVal)
	}

	dataVal := data.Compose(dataKey, elemWidth)
	maskVal := mask.Compose(maskKey, elemWidth)

	addr := members[0].tgt.addr
	if addr == grh.InvalidValue {
		addr = mc.b.constFromLiteral(fmt.Sprintf("%d", key.addrConst), defaultUnsizedWidth, false)
	}
	if updateCond == grh.InvalidValue {
		updateCond = mc.b.constFromLiteral("1'b1", 1, false)
	}

	mc.emitComposedMemoryWritePort(key.name, entry, key.seqKey, addr, dataVal, maskVal, updateCond)
}
