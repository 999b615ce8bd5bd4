package vm

import (
	"sync"

	"github.com/eth2030/evmcore/params"
)

// OpMetadata holds the fork-invariant shape of one opcode: how many
// stack items it pops and pushes, how many immediate bytes follow it in
// the bytecode, whether it is a PUSH, and whether it alters control
// flow. An opcode's arity and immediate-byte count are fixed the moment
// the opcode is introduced and never revised by a later fork — only its
// availability and gas cost vary by fork, which is what the per-fork
// JumpTable tracks instead (see jumptable.go). Bytecode analysis that
// only needs an opcode's shape, not its cost, can use this table without
// building (or picking) a fork-specific JumpTable at all.
type OpMetadata struct {
	Pops           int
	Pushes         int
	ImmediateBytes int
	IsPush         bool
	IsControlFlow  bool
}

var (
	opMetaOnce  sync.Once
	opMetaTable [256]OpMetadata
)

// OpMeta returns op's fork-invariant metadata, building the 256-entry
// table on first use. An opcode unassigned under every fork this module
// implements reports the zero value.
func OpMeta(op OpCode) OpMetadata {
	opMetaOnce.Do(buildOpMetaTable)
	return opMetaTable[op]
}

// buildOpMetaTable derives the table once from the newest fork's
// JumpTable. The newest fork knows about every opcode this module ever
// assigns, and an opcode's pop/push arity does not change between the
// fork that introduces it and any later fork, so reading minStack/
// maxStack off params.Latest's table is as good as reading them off the
// opcode's introducing fork.
func buildOpMetaTable() {
	jt := BuildJumpTable(params.Latest)
	for i := 0; i < 256; i++ {
		op := jt[i]
		if op == nil {
			continue
		}
		code := OpCode(i)
		pops := op.minStack
		pushes := stackLimit + pops - op.maxStack
		opMetaTable[i] = OpMetadata{
			Pops:           pops,
			Pushes:         pushes,
			ImmediateBytes: immediateByteCount(code),
			IsPush:         code.IsPush(),
			IsControlFlow:  op.jumps || op.halts,
		}
	}
}

// immediateByteCount returns how many bytecode bytes follow op as
// immediate data: PUSH1..PUSH32's operand width, 0 for every other
// opcode (including PUSH0, which carries no immediate).
func immediateByteCount(op OpCode) int {
	if op.IsPush() {
		return op.PushSize()
	}
	return 0
}
