package vm

import (
	"testing"

	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/u256"
)

func TestBuildJumpTableForkGating(t *testing.T) {
	frontier := BuildJumpTable(params.Frontier)
	if frontier[PUSH0] != nil {
		t.Fatalf("PUSH0 should not exist under Frontier")
	}
	if frontier[SHL] != nil {
		t.Fatalf("SHL should not exist under Frontier (added by Constantinople)")
	}
	if frontier[REVERT] != nil {
		t.Fatalf("REVERT should not exist under Frontier (added by Byzantium)")
	}
	if frontier[STOP] == nil {
		t.Fatalf("STOP must exist under every fork")
	}

	shanghai := BuildJumpTable(params.Shanghai)
	if shanghai[PUSH0] == nil {
		t.Fatalf("PUSH0 should exist from Shanghai onward")
	}

	cancun := BuildJumpTable(params.Cancun)
	if cancun[TLOAD] == nil || cancun[TSTORE] == nil || cancun[MCOPY] == nil {
		t.Fatalf("TLOAD/TSTORE/MCOPY should exist from Cancun onward")
	}
}

func TestBuildJumpTableUnassignedByteIsNil(t *testing.T) {
	jt := BuildJumpTable(params.Latest)
	if jt[0x0c] != nil {
		t.Fatalf("byte 0x0c has never been assigned an opcode and must stay nil")
	}
}

func TestBuildJumpTableWriteFlags(t *testing.T) {
	jt := BuildJumpTable(params.Latest)

	if jt[CALL].writes {
		t.Fatalf("CALL must not carry writes: true; EIP-214 checks the popped value at runtime instead")
	}
	for _, op := range []OpCode{SSTORE, TSTORE, LOG0, LOG1, LOG2, LOG3, LOG4, CREATE, CREATE2, SELFDESTRUCT} {
		if !jt[op].writes {
			t.Fatalf("%s must carry writes: true", op)
		}
	}
	for _, op := range []OpCode{MSTORE, MSTORE8, MCOPY, CALLDATACOPY, CODECOPY, EXTCODECOPY, RETURNDATACOPY} {
		if jt[op].writes {
			t.Fatalf("%s touches only frame-local memory and must not carry writes: true", op)
		}
	}
}

func TestBuildJumpTableStackBounds(t *testing.T) {
	jt := BuildJumpTable(params.Latest)

	if jt[ADD].minStack != 2 {
		t.Fatalf("ADD minStack = %d, want 2", jt[ADD].minStack)
	}
	if jt[ADD].maxStack != stackLimit+2-1 {
		t.Fatalf("ADD maxStack = %d, want %d", jt[ADD].maxStack, stackLimit+2-1)
	}
	if jt[DUP1].minStack != 1 {
		t.Fatalf("DUP1 minStack = %d, want 1", jt[DUP1].minStack)
	}
	if jt[SWAP16].minStack != 17 {
		t.Fatalf("SWAP16 minStack = %d, want 17", jt[SWAP16].minStack)
	}
}

func TestMemSizeForRangeZeroSizeIsAlwaysZero(t *testing.T) {
	st := NewStack()
	// A huge offset next to a zero size must not overflow: size=0 is
	// never itself a memory access.
	st.Push(u256.Max)
	st.Push(u256.Zero)
	size, overflow := memSizeForRange(st, 1, 0)
	if overflow {
		t.Fatalf("a zero-size range must never report overflow")
	}
	if size != 0 {
		t.Fatalf("a zero-size range must report size 0, got %d", size)
	}
}
