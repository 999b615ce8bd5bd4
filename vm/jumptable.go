package vm

import (
	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// executionFunc runs one opcode against the current frame. pc is advanced
// by the Run loop, not by the execute function itself, except for PUSHn,
// which advances *pc past its immediate bytes before the loop's own +1,
// and JUMP and JUMPI, which set *pc directly and signal that via
// operation.jumps.
type executionFunc func(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error)

// dynamicGasFunc computes an opcode's variable gas component, given the
// already-resolved memory size its memorySizeFunc reported. It runs after
// constantGas has been charged but before memory is actually resized, so
// it may still return ErrOutOfGas to abort before the expansion happens.
type dynamicGasFunc func(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error)

// memorySizeFunc reports the highest memory address (in bytes, unaligned)
// an opcode's operands will touch, or overflow=true if computing that from
// the stack operands overflows a uint64. Opcodes that don't touch memory
// leave this nil.
type memorySizeFunc func(stack *Stack) (size uint64, overflow bool)

// operation is one entry of the jump table: everything the Run loop needs
// to validate, charge for, and execute a single opcode.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int
	maxStack    int
	memorySize  memorySizeFunc

	halts  bool // STOP/RETURN/REVERT/SELFDESTRUCT: execution ends after this op
	jumps  bool // JUMP/JUMPI: this op sets *pc itself
	writes bool // mutates state; forbidden inside a read-only (STATICCALL) frame
}

// JumpTable maps every opcode byte to its operation, nil for opcodes not
// assigned under the Spec the table was built for.
type JumpTable [256]*operation

func minStack(pops, pushes int) int { return pops }
func maxStack(pops, pushes int) int { return stackLimit + pops - pushes }

// memSizeForRange returns the byte length implied by a (offset, size) pair
// read from stack positions offIdx/sizeIdx (0-indexed from the top), the
// shape every COPY/LOG/CALL/CREATE memory-touching opcode shares. A
// zero-length access never expands memory, matching the EVM's convention
// that offset is irrelevant when size is 0 (so a huge, otherwise
// overflowing offset next to size=0 is not itself an error).
func memSizeForRange(stack *Stack, offIdx, sizeIdx int) (uint64, bool) {
	size := stack.Back(sizeIdx)
	if size.IsZero() {
		return 0, false
	}
	offset := stack.Back(offIdx)
	off64, ok := offset.ToU64()
	if !ok {
		return 0, true
	}
	sz64, ok := size.ToU64()
	if !ok {
		return 0, true
	}
	end := off64 + sz64
	if end < off64 {
		return 0, true
	}
	return end, false
}

func memSizeSingleRange(offIdx int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		return memSizeForRange(stack, offIdx, offIdx+1)
	}
}

// memSizeRange builds a memorySizeFunc from explicit offset/size stack
// indices, for opcodes where the size operand isn't simply offIdx+1 (the
// three-operand COPY opcodes and EXTCODECOPY).
func memSizeRange(offIdx, sizeIdx int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		return memSizeForRange(stack, offIdx, sizeIdx)
	}
}

func memorySizeMload(stack *Stack) (uint64, bool) {
	offset, ok := stack.Back(0).ToU64()
	if !ok {
		return 0, true
	}
	end := offset + 32
	if end < offset {
		return 0, true
	}
	return end, false
}

func memorySizeMstore(stack *Stack) (uint64, bool) {
	offset, ok := stack.Back(0).ToU64()
	if !ok {
		return 0, true
	}
	end := offset + 32
	if end < offset {
		return 0, true
	}
	return end, false
}

func memorySizeMstore8(stack *Stack) (uint64, bool) {
	offset, ok := stack.Back(0).ToU64()
	if !ok {
		return 0, true
	}
	end := offset + 1
	if end < offset {
		return 0, true
	}
	return end, false
}

func memorySizeTwoRanges(offA, sizeA, offB, sizeB int) memorySizeFunc {
	return func(stack *Stack) (uint64, bool) {
		a, overflow := memSizeForRange(stack, offA, sizeA)
		if overflow {
			return 0, true
		}
		b, overflow := memSizeForRange(stack, offB, sizeB)
		if overflow {
			return 0, true
		}
		if a > b {
			return a, false
		}
		return b, false
	}
}

func memorySizeCall(stack *Stack) (uint64, bool) {
	return memorySizeTwoRanges(3, 4, 5, 6)(stack)
}

func memorySizeDelegateOrStaticCall(stack *Stack) (uint64, bool) {
	return memorySizeTwoRanges(2, 3, 4, 5)(stack)
}

func memorySizeCreate(stack *Stack) (uint64, bool) {
	return memSizeForRange(stack, 1, 2)
}

func memorySizeCreate2(stack *Stack) (uint64, bool) {
	return memSizeForRange(stack, 1, 2)
}

func memorySizeMcopy(stack *Stack) (uint64, bool) {
	return memorySizeTwoRanges(0, 2, 1, 2)(stack)
}

// gasMemExpansion is the dynamicGas component every memory-touching
// opcode includes: the incremental cost of growing memory from its
// current length to memSize (rounded up to a whole word), 0 if memSize
// does not exceed what's already allocated.
func gasMemExpansion(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	if memSize <= uint64(mem.Len()) {
		return 0, nil
	}
	newWords := ToWordSize(memSize)
	oldWords := ToWordSize(uint64(mem.Len()))
	return MemoryExpansionGas(oldWords*32, newWords*32), nil
}

// accessAddress warms addr in the access list, returning whether it was
// cold (and so must be charged the cold surcharge by the caller). Under
// forks without EIP-2929, every address is reported warm (no surcharge).
func accessAddress(ip *Interpreter, addr types.Address) bool {
	if !ip.spec.Flags.HasAccessLists {
		return false
	}
	if ip.host.AddressInAccessList(addr) {
		return false
	}
	ip.host.AddAddressToAccessList(addr)
	return true
}

// accessSlot warms (addr, key), returning whether it was cold.
func accessSlot(ip *Interpreter, addr types.Address, key types.B256) bool {
	if !ip.spec.Flags.HasAccessLists {
		return false
	}
	_, slotWarm := ip.host.SlotInAccessList(addr, key)
	if slotWarm {
		return false
	}
	ip.host.AddSlotToAccessList(addr, key)
	return true
}

func addressFromWord(w u256.U256) types.Address {
	b := w.Bytes32()
	return types.BytesToB160(b[12:])
}

func gasKeccak256(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	size, _ := stack.Back(1).ToU64()
	gas := safeAdd(Sha3Gas(size), 0)
	mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
	if err != nil {
		return 0, err
	}
	return safeAdd(gas, mgas), nil
}

func gasCopy(sizeIdx int) dynamicGasFunc {
	return func(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
		size, _ := stack.Back(sizeIdx).ToU64()
		gas := CopyGas(size)
		mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
		if err != nil {
			return 0, err
		}
		return safeAdd(gas, mgas), nil
	}
}

func gasExtCodeCopy(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	addr := addressFromWord(stack.Back(0))
	var gas uint64
	if ip.spec.Flags.HasAccessLists {
		if accessAddress(ip, addr) {
			gas = ip.spec.Gas.ColdAccountAccessCostEIP2929
		} else {
			gas = ip.spec.Gas.WarmStorageReadCostEIP2929
		}
	} else {
		gas = ip.spec.Gas.ExtcodeCopyBaseGas
	}
	size, _ := stack.Back(3).ToU64()
	gas = safeAdd(gas, CopyGas(size))
	mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
	if err != nil {
		return 0, err
	}
	return safeAdd(gas, mgas), nil
}

func gasExp(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	exp := stack.Back(1)
	return ExpGas(exp.ByteLen()), nil
}

func makeGasLog(n uint64) dynamicGasFunc {
	return func(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
		size, _ := stack.Back(1).ToU64()
		gas := LogGas(n, size)
		mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
		if err != nil {
			return 0, err
		}
		return safeAdd(gas, mgas), nil
	}
}

// gasAccountAccess is the shared shape for BALANCE/EXTCODESIZE/EXTCODEHASH:
// flat pre-Berlin, cold/warm surcharge from Berlin on.
func gasAccountAccess(flatCost func(*params.Spec) uint64) dynamicGasFunc {
	return func(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
		addr := addressFromWord(stack.Back(0))
		if !ip.spec.Flags.HasAccessLists {
			return flatCost(ip.spec), nil
		}
		if accessAddress(ip, addr) {
			return ip.spec.Gas.ColdAccountAccessCostEIP2929, nil
		}
		return ip.spec.Gas.WarmStorageReadCostEIP2929, nil
	}
}

func gasSload(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	if !ip.spec.Flags.HasAccessLists {
		return ip.spec.Gas.SloadGas, nil
	}
	key := types.BytesToB256(stack.Back(0).Bytes32()[:])
	if accessSlot(ip, contract.Self, key) {
		return ip.spec.Gas.ColdSloadCostEIP2929, nil
	}
	return ip.spec.Gas.WarmStorageReadCostEIP2929, nil
}

func gasSstore(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	key := types.BytesToB256(stack.Back(0).Bytes32()[:])
	newWord := stack.Back(1).Bytes32()
	newVal := u256.FromBigEndian(newWord[:])

	currentHash := ip.host.SLoad(contract.Self, key)
	current := u256.FromBigEndian(currentHash.Bytes())
	if !SstoreSentryOK(ip.spec, contract.Gas.Remaining(), current, newVal) {
		return 0, ErrOutOfGas
	}

	cold := accessSlot(ip, contract.Self, key)
	originalHash := ip.host.CommittedSLoad(contract.Self, key)
	original := u256.FromBigEndian(originalHash.Bytes())

	gas, refund := SstoreGas(ip.spec, cold, original, current, newVal)
	if refund > 0 {
		contract.Gas.AddRefund(uint64(refund))
	} else if refund < 0 {
		contract.Gas.SubRefund(uint64(-refund))
	}
	return gas, nil
}

// gasCallFamily builds the dynamic gas function shared by CALL, CALLCODE,
// DELEGATECALL and STATICCALL: a cold/warm (or flat, pre-Berlin) address
// surcharge, an optional value-transfer surcharge (CALL and CALLCODE),
// a new-account surcharge (CALL only), memory expansion, and finally the EIP-150 63/64-capped amount
// forwarded to the callee, stashed on the interpreter for the opcode's
// execute function to read back as ip.callGasTemp.
func gasCallFamily(hasValue, chargesNewAccount bool, addrIdx, gasIdx int) dynamicGasFunc {
	return func(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
		addr := addressFromWord(stack.Back(addrIdx))

		var gas uint64
		if ip.spec.Flags.HasAccessLists {
			if accessAddress(ip, addr) {
				gas = ip.spec.Gas.ColdAccountAccessCostEIP2929
			} else {
				gas = ip.spec.Gas.WarmStorageReadCostEIP2929
			}
		} else {
			gas = ip.spec.Gas.CallGasEIP150
		}

		var transfersValue bool
		if hasValue {
			transfersValue = !stack.Back(2).IsZero()
			if transfersValue {
				gas = safeAdd(gas, GasCallValueTransfer)
				if chargesNewAccount && !ip.host.Exists(addr) {
					gas = safeAdd(gas, GasCallNewAccount)
				}
			}
		}

		mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
		if err != nil {
			return 0, err
		}
		gas = safeAdd(gas, mgas)

		if cost := gas; cost > contract.Gas.Remaining() {
			return 0, ErrOutOfGas
		}
		available := contract.Gas.Remaining() - gas
		requested := stack.Back(gasIdx)
		var requestedGas uint64
		if v, ok := requested.ToU64(); ok {
			requestedGas = v
		} else {
			requestedGas = available
		}
		callGas := CallGas(available, requestedGas)
		if transfersValue {
			callGas = safeAdd(callGas, GasCallStipend)
		}
		ip.callGasTemp = callGas
		return safeAdd(gas, callGas), nil
	}
}

// gasCreateDynamic charges CREATE's EIP-3860 initcode-word surcharge (0
// before Shanghai) plus memory expansion.
func gasCreateDynamic(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	var gas uint64
	if ip.spec.Flags.HasMaxInitcodeSize {
		size, _ := stack.Back(2).ToU64()
		gas = InitcodeGas(size)
	}
	mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
	if err != nil {
		return 0, err
	}
	return safeAdd(gas, mgas), nil
}

// gasCreate2Dynamic charges CREATE2's per-word keccak cost (it hashes the
// full initcode to derive the address) plus the same EIP-3860 surcharge
// and memory expansion as CREATE.
func gasCreate2Dynamic(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	size, _ := stack.Back(2).ToU64()
	gas := Sha3Gas(size)
	if ip.spec.Flags.HasMaxInitcodeSize {
		gas = safeAdd(gas, InitcodeGas(size))
	}
	mgas, err := gasMemExpansion(ip, contract, stack, mem, memSize)
	if err != nil {
		return 0, err
	}
	return safeAdd(gas, mgas), nil
}

// gasSelfdestruct charges the EIP-2929 cold-address surcharge (Berlin+)
// and the new-account surcharge levied when the beneficiary doesn't yet
// exist and the self-destructing contract holds a nonzero balance to
// transfer it.
func gasSelfdestruct(ip *Interpreter, contract *Contract, stack *Stack, mem *Memory, memSize uint64) (uint64, error) {
	addr := addressFromWord(stack.Back(0))
	var gas uint64
	if accessAddress(ip, addr) {
		gas = ip.spec.Gas.ColdAccountAccessCostEIP2929
	}
	if !ip.host.Exists(addr) && !ip.host.Balance(contract.Self).IsZero() {
		gas = safeAdd(gas, GasSelfdestructNewAccount)
	}
	return gas, nil
}

// BuildJumpTable constructs the JumpTable for spec, gating each opcode's
// presence and cost on the feature flags and gas schedule that fork
// carries, rather than walking a chain of per-fork constructors: every
// opcode this module implements is listed once, with its gas/behavior
// computed from spec directly.
func BuildJumpTable(spec *params.Spec) JumpTable {
	var jt JumpTable

	set := func(op OpCode, o operation) { jt[op] = &o }

	set(STOP, operation{execute: opStop, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true})

	set(ADD, operation{execute: opAdd, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(MUL, operation{execute: opMul, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SUB, operation{execute: opSub, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(DIV, operation{execute: opDiv, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SDIV, operation{execute: opSdiv, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(MOD, operation{execute: opMod, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SMOD, operation{execute: opSmod, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(ADDMOD, operation{execute: opAddmod, constantGas: GasMid, minStack: minStack(3, 1), maxStack: maxStack(3, 1)})
	set(MULMOD, operation{execute: opMulmod, constantGas: GasMid, minStack: minStack(3, 1), maxStack: maxStack(3, 1)})
	set(EXP, operation{execute: opExp, constantGas: GasHigh, dynamicGas: gasExp, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SIGNEXTEND, operation{execute: opSignExtend, constantGas: GasLow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})

	set(LT, operation{execute: opLt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(GT, operation{execute: opGt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SLT, operation{execute: opSlt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(SGT, operation{execute: opSgt, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(EQ, operation{execute: opEq, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(ISZERO, operation{execute: opIsZero, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(AND, operation{execute: opAnd, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(OR, operation{execute: opOr, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(XOR, operation{execute: opXor, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	set(NOT, operation{execute: opNot, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(BYTE, operation{execute: opByte, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})

	set(KECCAK256, operation{execute: opKeccak256, constantGas: GasKeccak256, dynamicGas: gasKeccak256, memorySize: memSizeSingleRange(0), minStack: minStack(2, 1), maxStack: maxStack(2, 1)})

	set(ADDRESS, operation{execute: opAddress, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(ORIGIN, operation{execute: opOrigin, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLER, operation{execute: opCaller, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLVALUE, operation{execute: opCallValue, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLDATALOAD, operation{execute: opCalldataLoad, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(CALLDATASIZE, operation{execute: opCalldataSize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CALLDATACOPY, operation{execute: opCalldataCopy, constantGas: GasVerylow, dynamicGas: gasCopy(2), memorySize: memSizeRange(0, 2), minStack: minStack(3, 0), maxStack: maxStack(3, 0)})
	set(CODESIZE, operation{execute: opCodeSize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(CODECOPY, operation{execute: opCodeCopy, constantGas: GasVerylow, dynamicGas: gasCopy(2), memorySize: memSizeRange(0, 2), minStack: minStack(3, 0), maxStack: maxStack(3, 0)})
	set(GASPRICE, operation{execute: opGasPrice, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})

	extcodesizeGas := func(s *params.Spec) uint64 { return s.Gas.ExtcodeSizeGas }
	set(EXTCODESIZE, operation{execute: opExtcodesize, dynamicGas: gasAccountAccess(extcodesizeGas), minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(EXTCODECOPY, operation{execute: opExtcodecopy, dynamicGas: gasExtCodeCopy, memorySize: memSizeRange(1, 3), minStack: minStack(4, 0), maxStack: maxStack(4, 0)})

	set(BLOCKHASH, operation{execute: opBlockhash, constantGas: GasExt, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(COINBASE, operation{execute: opCoinbase, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(TIMESTAMP, operation{execute: opTimestamp, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(NUMBER, operation{execute: opNumber, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(PREVRANDAO, operation{execute: opPrevRandao, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(GASLIMIT, operation{execute: opGasLimit, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})

	set(POP, operation{execute: opPop, constantGas: GasBase, minStack: minStack(1, 0), maxStack: maxStack(1, 0)})
	set(MLOAD, operation{execute: opMload, constantGas: GasVerylow, dynamicGas: func(ip *Interpreter, c *Contract, s *Stack, m *Memory, sz uint64) (uint64, error) { return gasMemExpansion(ip, c, s, m, sz) }, memorySize: memorySizeMload, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(MSTORE, operation{execute: opMstore, constantGas: GasVerylow, dynamicGas: func(ip *Interpreter, c *Contract, s *Stack, m *Memory, sz uint64) (uint64, error) { return gasMemExpansion(ip, c, s, m, sz) }, memorySize: memorySizeMstore, minStack: minStack(2, 0), maxStack: maxStack(2, 0)})
	set(MSTORE8, operation{execute: opMstore8, constantGas: GasVerylow, dynamicGas: func(ip *Interpreter, c *Contract, s *Stack, m *Memory, sz uint64) (uint64, error) { return gasMemExpansion(ip, c, s, m, sz) }, memorySize: memorySizeMstore8, minStack: minStack(2, 0), maxStack: maxStack(2, 0)})
	set(SLOAD, operation{execute: opSload, dynamicGas: gasSload, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	set(SSTORE, operation{execute: opSstore, dynamicGas: gasSstore, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true})
	set(JUMP, operation{execute: opJump, constantGas: GasMid, minStack: minStack(1, 0), maxStack: maxStack(1, 0), jumps: true})
	set(JUMPI, operation{execute: opJumpi, constantGas: GasHigh, minStack: minStack(2, 0), maxStack: maxStack(2, 0), jumps: true})
	set(PC, operation{execute: opPc, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(MSIZE, operation{execute: opMsize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(GAS, operation{execute: opGas, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	set(JUMPDEST, operation{execute: opJumpdest, constantGas: GasJumpDest, minStack: minStack(0, 0), maxStack: maxStack(0, 0)})

	for i := 0; i < 32; i++ {
		op := PUSH1 + OpCode(i)
		set(op, operation{execute: makePush(i + 1), constantGas: GasVerylow, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}
	for i := 1; i <= 16; i++ {
		op := DUP1 + OpCode(i-1)
		set(op, operation{execute: makeDup(i), constantGas: GasVerylow, minStack: minStack(i, i+1), maxStack: maxStack(i, i+1)})
	}
	for i := 1; i <= 16; i++ {
		op := SWAP1 + OpCode(i-1)
		set(op, operation{execute: makeSwap(i), constantGas: GasVerylow, minStack: minStack(i+1, i+1), maxStack: maxStack(i+1, i+1)})
	}

	for i := 0; i < 5; i++ {
		op := LOG0 + OpCode(i)
		set(op, operation{
			execute:    makeLog(i),
			constantGas: GasLogBase,
			dynamicGas: makeGasLog(uint64(i)),
			memorySize: memSizeSingleRange(0),
			minStack:   minStack(2+i, 0),
			maxStack:   maxStack(2+i, 0),
			writes:     true,
		})
	}

	set(CREATE, operation{execute: opCreate, constantGas: GasCreate, dynamicGas: gasCreateDynamic, memorySize: memorySizeCreate, minStack: minStack(3, 1), maxStack: maxStack(3, 1), writes: true})
	// CALL is not unconditionally a write: EIP-214 only forbids a
	// value-transferring CALL inside a STATICCALL frame, so that check is
	// made in Interpreter.Call against the actual popped value, not here
	// against the opcode itself (a zero-value CALL is a normal read from
	// inside a static frame).
	set(CALL, operation{execute: opCall, dynamicGas: gasCallFamily(true, true, 1, 0), memorySize: memorySizeCall, minStack: minStack(7, 1), maxStack: maxStack(7, 1)})
	set(CALLCODE, operation{execute: opCallCode, dynamicGas: gasCallFamily(true, false, 1, 0), memorySize: memorySizeCall, minStack: minStack(7, 1), maxStack: maxStack(7, 1)})
	set(RETURN, operation{execute: opReturn, memorySize: memSizeSingleRange(0), dynamicGas: func(ip *Interpreter, c *Contract, s *Stack, m *Memory, sz uint64) (uint64, error) { return gasMemExpansion(ip, c, s, m, sz) }, minStack: minStack(2, 0), maxStack: maxStack(2, 0), halts: true})
	set(INVALID, operation{execute: opInvalid, minStack: minStack(0, 0), maxStack: maxStack(0, 0), halts: true})
	set(SELFDESTRUCT, operation{execute: opSelfdestruct, constantGas: spec.Gas.SelfdestructGas, dynamicGas: gasSelfdestruct, minStack: minStack(1, 0), maxStack: maxStack(1, 0), halts: true, writes: true})

	// --- Fork-gated additions ---

	if spec.Flags.HasDelegateCall {
		set(DELEGATECALL, operation{execute: opDelegateCall, dynamicGas: gasCallFamily(false, false, 1, 0), memorySize: memorySizeDelegateOrStaticCall, minStack: minStack(6, 1), maxStack: maxStack(6, 1)})
	}

	if spec.Flags.HasRevert {
		set(REVERT, operation{execute: opRevert, memorySize: memSizeSingleRange(0), dynamicGas: func(ip *Interpreter, c *Contract, s *Stack, m *Memory, sz uint64) (uint64, error) { return gasMemExpansion(ip, c, s, m, sz) }, minStack: minStack(2, 0), maxStack: maxStack(2, 0), halts: true})
		set(RETURNDATASIZE, operation{execute: opReturndataSize, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
		set(RETURNDATACOPY, operation{execute: opReturndataCopy, constantGas: GasVerylow, dynamicGas: gasCopy(2), memorySize: memSizeRange(0, 2), minStack: minStack(3, 0), maxStack: maxStack(3, 0)})
	}
	if spec.Flags.HasStaticCall {
		set(STATICCALL, operation{execute: opStaticCall, dynamicGas: gasCallFamily(false, false, 1, 0), memorySize: memorySizeDelegateOrStaticCall, minStack: minStack(6, 1), maxStack: maxStack(6, 1)})
	}

	if spec.Flags.HasBitwiseShifts {
		set(SHL, operation{execute: opShl, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
		set(SHR, operation{execute: opShr, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
		set(SAR, operation{execute: opSar, constantGas: GasVerylow, minStack: minStack(2, 1), maxStack: maxStack(2, 1)})
	}
	if spec.Flags.HasExtCodeHash {
		extcodehashGas := func(s *params.Spec) uint64 { return s.Gas.ExtcodeHashGas }
		set(EXTCODEHASH, operation{execute: opExtcodehash, dynamicGas: gasAccountAccess(extcodehashGas), minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
	}
	if spec.Flags.HasCreate2 {
		set(CREATE2, operation{execute: opCreate2, constantGas: GasCreate, dynamicGas: gasCreate2Dynamic, memorySize: memorySizeCreate2, minStack: minStack(4, 1), maxStack: maxStack(4, 1), writes: true})
	}

	if spec.Flags.HasChainID {
		set(CHAINID, operation{execute: opChainID, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}
	if spec.Flags.HasSelfBalance {
		set(SELFBALANCE, operation{execute: opSelfBalance, constantGas: GasLow, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}

	balanceGas := func(s *params.Spec) uint64 { return s.Gas.BalanceGas }
	set(BALANCE, operation{execute: opBalance, dynamicGas: gasAccountAccess(balanceGas), minStack: minStack(1, 1), maxStack: maxStack(1, 1)})

	if spec.Flags.HasBaseFee {
		set(BASEFEE, operation{execute: opBaseFee, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}

	if spec.Flags.HasPush0 {
		set(PUSH0, operation{execute: opPush0, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}
	if spec.Flags.HasMaxInitcodeSize {
		// CREATE/CREATE2 dynamic gas functions already consult
		// spec.Flags.HasMaxInitcodeSize themselves (via InitcodeGas), so
		// no jump-table change is needed here beyond the size check the
		// interpreter applies in its create() helper.
	}

	if spec.Flags.HasTransientStorage {
		set(TLOAD, operation{execute: opTload, constantGas: spec.Gas.WarmStorageReadCostEIP2929, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
		set(TSTORE, operation{execute: opTstore, constantGas: spec.Gas.WarmStorageReadCostEIP2929, minStack: minStack(2, 0), maxStack: maxStack(2, 0), writes: true})
	}
	if spec.Flags.HasMCopy {
		set(MCOPY, operation{execute: opMcopy, constantGas: GasVerylow, dynamicGas: gasCopy(2), memorySize: memorySizeMcopy, minStack: minStack(3, 0), maxStack: maxStack(3, 0)})
	}
	if spec.Flags.HasBlobOpcodes {
		set(BLOBHASH, operation{execute: opBlobHash, constantGas: GasVerylow, minStack: minStack(1, 1), maxStack: maxStack(1, 1)})
		set(BLOBBASEFEE, operation{execute: opBlobBaseFee, constantGas: GasBase, minStack: minStack(0, 1), maxStack: maxStack(0, 1)})
	}

	return jt
}
