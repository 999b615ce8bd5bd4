package vm

import (
	"testing"

	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// newTestFrame wires up a fresh interpreter, stack, memory and contract for
// exercising a single opcode function in isolation, the same granularity the
// teacher's instructions_test.go works at.
func newTestFrame(t *testing.T) (*Interpreter, *Contract, *Memory, *Stack) {
	t.Helper()
	ip, h := newTestInterpreter(params.Latest)
	self := types.HexToAddress("0x01")
	h.CreateAccount(self)
	contract := NewContract(types.HexToAddress("0x02"), self, nil, u256.Zero, NewGasMeter(1_000_000), 0)
	return ip, contract, NewMemory(), NewStack()
}

func TestOpAdd(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(3))
	st.Push(u256.FromU64(4))
	if _, err := opAdd(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(7)) {
		t.Fatalf("ADD result = %s, want 7", got.String())
	}
}

func TestOpSubUnderflowWraps(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(1))
	st.Push(u256.Zero)
	if _, err := opSub(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.Max) {
		t.Fatalf("0 - 1 should wrap to u256.Max, got %s", got.String())
	}
}

func TestOpDivByZeroIsZero(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.Zero)
	st.Push(u256.FromU64(10))
	if _, err := opDiv(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.IsZero() {
		t.Fatalf("10 / 0 must be 0 per the EVM convention, got %s", got.String())
	}
}

func TestOpLtGt(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	// LT pops a then b and pushes a<b; pushing 5 then 3 makes a=3, b=5.
	st.Push(u256.FromU64(5))
	st.Push(u256.FromU64(3))
	if _, err := opLt(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.One) {
		t.Fatalf("LT(3, 5) = %s, want 1", got.String())
	}

	st.Push(u256.FromU64(5))
	st.Push(u256.FromU64(3))
	if _, err := opGt(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.IsZero() {
		t.Fatalf("GT(3, 5) = %s, want 0", got.String())
	}
}

func TestOpIsZero(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.Zero)
	if _, err := opIsZero(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.One) {
		t.Fatalf("ISZERO(0) = %s, want 1", got.String())
	}
}

func TestOpAndOrXorNot(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(0xf0))
	st.Push(u256.FromU64(0x0f))
	if _, err := opAnd(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.IsZero() {
		t.Fatalf("0xf0 & 0x0f = %s, want 0", got.String())
	}

	st.Push(u256.FromU64(0xf0))
	st.Push(u256.FromU64(0x0f))
	if _, err := opOr(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(0xff)) {
		t.Fatalf("0xf0 | 0x0f = %s, want 0xff", got.String())
	}

	st.Push(u256.FromU64(0xff))
	st.Push(u256.FromU64(0x0f))
	if _, err := opXor(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(0xf0)) {
		t.Fatalf("0xff ^ 0x0f = %s, want 0xf0", got.String())
	}

	st.Push(u256.Zero)
	if _, err := opNot(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.Max) {
		t.Fatalf("NOT(0) = %s, want u256.Max", got.String())
	}
}

func TestOpShlShr(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(1))
	st.Push(u256.FromU64(4))
	if _, err := opShl(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(16)) {
		t.Fatalf("1 << 4 = %s, want 16", got.String())
	}

	st.Push(u256.FromU64(16))
	st.Push(u256.FromU64(4))
	if _, err := opShr(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(1)) {
		t.Fatalf("16 >> 4 = %s, want 1", got.String())
	}
}

func TestOpByte(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(0x1122))
	st.Push(u256.FromU64(31)) // the lowest-order byte is index 31
	if _, err := opByte(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(0x22)) {
		t.Fatalf("BYTE(31, 0x1122) = %s, want 0x22", got.String())
	}
}

func TestOpKeccak256OfEmptyInput(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.Zero)
	st.Push(u256.Zero)
	if _, err := opKeccak256(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := st.Pop()
	want := u256.FromBigEndian(types.EmptyCodeHash[:])
	if !got.Eq(want) {
		t.Fatalf("KECCAK256(\"\") = %s, want the empty-input hash %s", got.String(), want.String())
	}
}

func TestOpAddressCallerCallValue(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	c.Value = u256.FromU64(42)

	if _, err := opAddress(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(addressWord(c.Self)) {
		t.Fatalf("ADDRESS pushed %s, want %s", got.String(), addressWord(c.Self).String())
	}

	if _, err := opCaller(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(addressWord(c.Caller)) {
		t.Fatalf("CALLER pushed %s, want %s", got.String(), addressWord(c.Caller).String())
	}

	if _, err := opCallValue(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(42)) {
		t.Fatalf("CALLVALUE pushed %s, want 42", got.String())
	}
}

func TestOpBalance(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	target := types.HexToAddress("0x03")
	h := newTestHostFromInterpreter(t, ip)
	h.CreateAccount(target)
	h.AddBalance(target, u256.FromU64(777))

	st.Push(addressWord(target))
	if _, err := opBalance(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(777)) {
		t.Fatalf("BALANCE = %s, want 777", got.String())
	}
}

func TestOpCalldataLoadPastEndIsZeroPadded(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	c.Input = []byte{0x01, 0x02}
	st.Push(u256.FromU64(0))
	if _, err := opCalldataLoad(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := st.Pop()
	// A read past the end of calldata zero-fills on the right (the
	// high-order bytes come from the input, the low-order bytes are zero),
	// not the left-padding FromBigEndianPadded would apply to a short slice.
	var buf [32]byte
	copy(buf[:], c.Input)
	want := u256.FromBigEndian(buf[:])
	if !got.Eq(want) {
		t.Fatalf("CALLDATALOAD(0) = %s, want %s", got.String(), want.String())
	}
}

func TestOpCalldataCopyZeroFillsPastInput(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	c.Input = []byte{0xaa}
	st.Push(u256.FromU64(4)) // size
	st.Push(u256.FromU64(0)) // offset
	st.Push(u256.FromU64(0)) // destOffset
	mem.EnsureCapacity(0, 4)
	if _, err := opCalldataCopy(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := mem.GetSlice(0, 4)
	want := []byte{0xaa, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CALLDATACOPY result = %x, want %x", got, want)
		}
	}
}

func TestOpMstoreMload(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	mem.EnsureCapacity(0, 32)
	st.Push(u256.FromU64(123))
	st.Push(u256.Zero)
	if _, err := opMstore(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st.Push(u256.Zero)
	if _, err := opMload(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(123)) {
		t.Fatalf("MLOAD after MSTORE = %s, want 123", got.String())
	}
}

func TestOpMstore8OnlyWritesLowByte(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	mem.EnsureCapacity(0, 32)
	st.Push(u256.FromU64(0x1234))
	st.Push(u256.Zero)
	if _, err := opMstore8(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mem.GetSlice(0, 1); got[0] != 0x34 {
		t.Fatalf("MSTORE8 wrote %x, want 0x34", got[0])
	}
}

func TestOpSloadSstoreRoundTrip(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(99)) // value
	st.Push(u256.FromU64(1))  // key
	if _, err := opSstore(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st.Push(u256.FromU64(1))
	if _, err := opSload(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(99)) {
		t.Fatalf("SLOAD after SSTORE = %s, want 99", got.String())
	}
}

func TestOpTloadTstoreIsolatedFromStorage(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(7)) // value
	st.Push(u256.FromU64(1)) // key
	if _, err := opTstore(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st.Push(u256.FromU64(1))
	if _, err := opSload(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.IsZero() {
		t.Fatalf("persistent SLOAD must not see a TSTORE write, got %s", got.String())
	}
	st.Push(u256.FromU64(1))
	if _, err := opTload(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(7)) {
		t.Fatalf("TLOAD = %s, want 7", got.String())
	}
}

func TestOpJumpToValidDest(t *testing.T) {
	ip, _, mem, st := newTestFrame(t)
	code := []byte{byte(PUSH1), 3, byte(JUMP), byte(JUMPDEST), byte(STOP)}
	c := NewContract(types.Address{}, types.HexToAddress("0x01"), code, u256.Zero, NewGasMeter(1_000_000), 0)
	st.Push(u256.FromU64(3))
	pc := uint64(0)
	if _, err := opJump(&pc, ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc != 3 {
		t.Fatalf("pc after JUMP = %d, want 3", pc)
	}
}

func TestOpJumpToInvalidDestFails(t *testing.T) {
	ip, _, mem, st := newTestFrame(t)
	code := []byte{byte(STOP)}
	c := NewContract(types.Address{}, types.HexToAddress("0x01"), code, u256.Zero, NewGasMeter(1_000_000), 0)
	st.Push(u256.FromU64(5)) // past the end of code, and not a JUMPDEST anyway
	pc := uint64(0)
	if _, err := opJump(&pc, ip, c, mem, st); err != ErrInvalidJump {
		t.Fatalf("err = %v, want ErrInvalidJump", err)
	}
}

func TestOpJumpiFalseConditionFallsThrough(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.Zero)       // cond = false
	st.Push(u256.FromU64(9)) // dest, should be ignored
	pc := uint64(2)
	if _, err := opJumpi(&pc, ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc != 3 {
		t.Fatalf("pc after a falsy JUMPI = %d, want 3 (pc+1)", pc)
	}
}

func TestMakePush(t *testing.T) {
	ip, _, mem, st := newTestFrame(t)
	code := []byte{byte(PUSH2), 0x01, 0x02, byte(STOP)}
	c := NewContract(types.Address{}, types.HexToAddress("0x01"), code, u256.Zero, NewGasMeter(1_000_000), 0)
	pc := uint64(0)
	push2 := makePush(2)
	if _, err := push2(&pc, ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(0x0102)) {
		t.Fatalf("PUSH2 pushed %s, want 0x0102", got.String())
	}
	if pc != 2 {
		t.Fatalf("pc after PUSH2 = %d, want 2 (advanced past the immediate)", pc)
	}
}

func TestMakeDupAndSwap(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	st.Push(u256.FromU64(1))
	st.Push(u256.FromU64(2))

	makeDup(1)(new(uint64), ip, c, mem, st)
	if got := st.Pop(); !got.Eq(u256.FromU64(2)) {
		t.Fatalf("DUP1 pushed %s, want 2", got.String())
	}

	makeSwap(1)(new(uint64), ip, c, mem, st)
	if got := st.Pop(); !got.Eq(u256.FromU64(1)) {
		t.Fatalf("top after SWAP1 = %s, want 1", got.String())
	}
	if got := st.Pop(); !got.Eq(u256.FromU64(2)) {
		t.Fatalf("second-from-top after SWAP1 = %s, want 2", got.String())
	}
}

func TestMakeLogRecordsTopicsAndData(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	mem.EnsureCapacity(0, 32)
	mem.MStore(0, u256.FromU64(0xdead))

	st.Push(u256.FromU64(0xbeef)) // topic1
	st.Push(u256.FromU64(32))     // size
	st.Push(u256.Zero)            // offset
	log1 := makeLog(1)
	if _, err := log1(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := newTestHostFromInterpreter(t, ip)
	logs := h.logs
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	got := logs[0]
	if got.Address != c.Self {
		t.Fatalf("log address = %s, want %s", got.Address.Hex(), c.Self.Hex())
	}
	if len(got.Topics) != 1 || fromB256(got.Topics[0]).ToBig().Int64() != 0xbeef {
		t.Fatalf("log topics = %v, want [0xbeef]", got.Topics)
	}
	if len(got.Data) != 32 || !u256.FromBigEndian(got.Data).Eq(u256.FromU64(0xdead)) {
		t.Fatalf("log data = %x, want the 32-byte word 0xdead", got.Data)
	}
}

func TestOpStopReturnRevertOutputs(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	if _, err := opStop(new(uint64), ip, c, mem, st); err != nil {
		t.Fatalf("STOP must never itself error: %v", err)
	}

	mem.EnsureCapacity(0, 32)
	mem.MStore(0, u256.FromU64(55))
	st.Push(u256.FromU64(32))
	st.Push(u256.Zero)
	ret, err := opReturn(new(uint64), ip, c, mem, st)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := u256.FromBigEndian(ret); !got.Eq(u256.FromU64(55)) {
		t.Fatalf("RETURN output = %s, want 55", got.String())
	}

	mem.MStore(0, u256.FromU64(66))
	st.Push(u256.FromU64(32))
	st.Push(u256.Zero)
	ret, err = opRevert(new(uint64), ip, c, mem, st)
	if err != ErrExecutionReverted {
		t.Fatalf("err = %v, want ErrExecutionReverted", err)
	}
	if got := u256.FromBigEndian(ret); !got.Eq(u256.FromU64(66)) {
		t.Fatalf("REVERT output = %s, want 66", got.String())
	}
}

func TestOpInvalidAlwaysFails(t *testing.T) {
	ip, c, mem, st := newTestFrame(t)
	if _, err := opInvalid(new(uint64), ip, c, mem, st); err != ErrInvalidOpCode {
		t.Fatalf("err = %v, want ErrInvalidOpCode", err)
	}
}

// newTestHostFromInterpreter recovers the *testHost backing ip, since the
// opcode-level tests above only have access to the Interpreter and Contract
// a jump table entry would see, not the host that built them.
func newTestHostFromInterpreter(t *testing.T, ip *Interpreter) *testHost {
	t.Helper()
	h, ok := ip.host.(*testHost)
	if !ok {
		t.Fatalf("interpreter host is not a *testHost")
	}
	return h
}
