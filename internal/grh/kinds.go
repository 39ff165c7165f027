package grh

// Kind is the closed-set tag identifying what an Operation does. The set is
// exactly the taxonomy in spec.md §3.
type Kind int

const (
	KindInvalid Kind = iota

	// Data producers.
	KindConstant

	// Pure combinational: arithmetic.
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMod

	// Pure combinational: bitwise.
	KindAnd
	KindOr
	KindXor
	KindXnor
	KindNot

	// Pure combinational: logical.
	KindLogicAnd
	KindLogicOr
	KindLogicNot

	// Pure combinational: shifts.
	KindShl
	KindLShr
	KindAShr

	// Pure combinational: comparisons.
	KindEq
	KindNe
	KindCaseEq
	KindCaseNe
	KindWildcardEq
	KindWildcardNe
	KindLt
	KindLe
	KindGt
	KindGe

	// Pure combinational: reductions.
	KindReduceAnd
	KindReduceOr
	KindReduceXor
	KindReduceNor
	KindReduceNand
	KindReduceXnor

	// Pure combinational: selection.
	KindMux

	// Pure combinational: structural.
	KindAssign
	KindConcat
	KindReplicate
	KindSliceStatic
	KindSliceDynamic
	KindSliceArray

	// State declarations.
	KindRegister
	KindLatch
	KindMemory

	// State ports.
	KindRegisterReadPort
	KindRegisterWritePort
	KindLatchReadPort
	KindLatchWritePort
	KindMemoryReadPort
	KindMemoryWritePort

	// Hierarchy.
	KindInstance
	KindBlackbox

	// Observer/effect nodes.
	KindDisplay
	KindAssert
	KindSystemTask
	KindSystemFunction

	// DPI.
	KindDpicImport
	KindDpicCall

	// Hierarchical references (transient; must not survive xmr-resolve).
	KindXMRRead
	KindXMRWrite
)

var kindNames = map[Kind]string{
	KindInvalid:           "Invalid",
	KindConstant:          "Constant",
	KindAdd:               "Add",
	KindSub:               "Sub",
	KindMul:               "Mul",
	KindDiv:               "Div",
	KindMod:               "Mod",
	KindAnd:               "And",
	KindOr:                "Or",
	KindXor:               "Xor",
	KindXnor:              "Xnor",
	KindNot:               "Not",
	KindLogicAnd:          "LogicAnd",
	KindLogicOr:           "LogicOr",
	KindLogicNot:          "LogicNot",
	KindShl:               "Shl",
	KindLShr:              "LShr",
	KindAShr:              "AShr",
	KindEq:                "Eq",
	KindNe:                "Ne",
	KindCaseEq:            "CaseEq",
	KindCaseNe:            "CaseNe",
	KindWildcardEq:        "WildcardEq",
	KindWildcardNe:        "WildcardNe",
	KindLt:                "Lt",
	KindLe:                "Le",
	KindGt:                "Gt",
	KindGe:                "Ge",
	KindReduceAnd:         "ReduceAnd",
	KindReduceOr:          "ReduceOr",
	KindReduceXor:         "ReduceXor",
	KindReduceNor:         "ReduceNor",
	KindReduceNand:        "ReduceNand",
	KindReduceXnor:        "ReduceXnor",
	KindMux:               "Mux",
	KindAssign:            "Assign",
	KindConcat:            "Concat",
	KindReplicate:         "Replicate",
	KindSliceStatic:       "SliceStatic",
	KindSliceDynamic:      "SliceDynamic",
	KindSliceArray:        "SliceArray",
	KindRegister:          "Register",
	KindLatch:             "Latch",
	KindMemory:            "Memory",
	KindRegisterReadPort:  "RegisterReadPort",
	KindRegisterWritePort: "RegisterWritePort",
	KindLatchReadPort:     "LatchReadPort",
	KindLatchWritePort:    "LatchWritePort",
	KindMemoryReadPort:    "MemoryReadPort",
	KindMemoryWritePort:   "MemoryWritePort",
	KindInstance:          "Instance",
	KindBlackbox:          "Blackbox",
	KindDisplay:           "Display",
	KindAssert:            "Assert",
	KindSystemTask:        "SystemTask",
	KindSystemFunction:    "SystemFunction",
	KindDpicImport:        "DpicImport",
	KindDpicCall:          "DpicCall",
	KindXMRRead:           "XMRRead",
	KindXMRWrite:          "XMRWrite",
}

// String renders the kind's taxonomy name, used by diagnostics and the JSON
// debug dump.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// IsEffectful reports whether an operation of this kind must never be
// removed by dead-code-elim even when all its results are unused
// (spec.md §4.8).
func (k Kind) IsEffectful() bool {
	switch k {
	case KindDisplay, KindAssert, KindSystemTask, KindSystemFunction,
		KindDpicImport, KindDpicCall,
		KindRegisterWritePort, KindLatchWritePort, KindMemoryWritePort, KindMemoryReadPort,
		KindRegisterReadPort, KindLatchReadPort,
		KindMemory, KindRegister, KindLatch,
		KindInstance, KindBlackbox:
		return true
	default:
		return false
	}
}
