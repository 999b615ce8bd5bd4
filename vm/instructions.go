package vm

import (
	"github.com/eth2030/evmcore/crypto"
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// shiftAmount clamps a popped shift amount to a native uint, treating
// anything that doesn't fit in 64 bits as "more than 256" (SHL/SHR/SAR all
// define a shift of 256 or more as producing an all-zero or sign-filled
// result, never as an error).
func shiftAmount(x u256.U256) uint {
	v, ok := x.ToU64()
	if !ok || v >= 256 {
		return 256
	}
	return uint(v)
}

func toB256(x u256.U256) types.B256 {
	w := x.Bytes32()
	return w
}

func fromB256(h types.B256) u256.U256 {
	return u256.FromBigEndian(h[:])
}

func addressWord(addr types.Address) u256.U256 {
	return u256.FromBigEndianPadded(addr.Bytes())
}

// getDataBounded returns size bytes from data starting at offset,
// zero-filling whatever lies past the end of data. This is the shared
// convention of CALLDATALOAD/CALLDATACOPY/CODECOPY/EXTCODECOPY/PUSH: a
// read that runs off the end of its source never errors.
func getDataBounded(data []byte, offset, size uint64) []byte {
	out := make([]byte, size)
	if size == 0 || offset >= uint64(len(data)) {
		return out
	}
	end := offset + size
	if end < offset || end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(out, data[offset:end])
	return out
}

// memBytes reads the (offset, size) region popped by an opcode, returning
// nil for a zero or unrepresentable size rather than reading memory (the
// offset is meaningless when nothing is read, matching the EVM convention
// already applied in the jump table's memorySizeFunc helpers).
func memBytes(mem *Memory, offsetW, sizeW u256.U256) []byte {
	size, ok := sizeW.ToU64()
	if !ok || size == 0 {
		return nil
	}
	offset, _ := offsetW.ToU64()
	return mem.GetSlice(offset, size)
}

// writeMemoryRegion writes data into the (offset, size) region a CALL's
// return-data or a CREATE's result would land in, zero-filling past the
// end of data and writing nothing for a zero or unrepresentable size.
func writeMemoryRegion(mem *Memory, offsetW, sizeW u256.U256, data []byte) {
	size, ok := sizeW.ToU64()
	if !ok || size == 0 {
		return
	}
	offset, _ := offsetW.ToU64()
	mem.Set(offset, size, data)
}

// --- Arithmetic ---

func opAdd(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Add(a, b))
	return nil, nil
}

func opMul(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Mul(a, b))
	return nil, nil
}

func opSub(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Sub(a, b))
	return nil, nil
}

func opDiv(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Div(a, b))
	return nil, nil
}

func opSdiv(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.SDiv(a, b))
	return nil, nil
}

func opMod(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Mod(a, b))
	return nil, nil
}

func opSmod(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.SMod(a, b))
	return nil, nil
}

func opAddmod(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b, n := stack.Pop(), stack.Pop(), stack.Pop()
	stack.Push(u256.AddMod(a, b, n))
	return nil, nil
}

func opMulmod(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b, n := stack.Pop(), stack.Pop(), stack.Pop()
	stack.Push(u256.MulMod(a, b, n))
	return nil, nil
}

func opExp(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	base, exponent := stack.Pop(), stack.Pop()
	stack.Push(u256.Exp(base, exponent))
	return nil, nil
}

func opSignExtend(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	b, x := stack.Pop(), stack.Pop()
	stack.Push(u256.SignExtend(b, x))
	return nil, nil
}

// --- Comparison ---

func opLt(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.FromBool(a.Lt(b)))
	return nil, nil
}

func opGt(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.FromBool(a.Gt(b)))
	return nil, nil
}

func opSlt(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.FromBool(a.SLt(b)))
	return nil, nil
}

func opSgt(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.FromBool(a.SGt(b)))
	return nil, nil
}

func opEq(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.FromBool(a.Eq(b)))
	return nil, nil
}

func opIsZero(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	stack.Push(u256.FromBool(x.IsZero()))
	return nil, nil
}

// --- Bitwise ---

func opAnd(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.And(a, b))
	return nil, nil
}

func opOr(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Or(a, b))
	return nil, nil
}

func opXor(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a, b := stack.Pop(), stack.Pop()
	stack.Push(u256.Xor(a, b))
	return nil, nil
}

func opNot(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	stack.Push(u256.Not(x))
	return nil, nil
}

func opByte(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	i, x := stack.Pop(), stack.Pop()
	stack.Push(u256.Byte(i, x))
	return nil, nil
}

func opShl(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift, val := stack.Pop(), stack.Pop()
	stack.Push(u256.Lsh(val, shiftAmount(shift)))
	return nil, nil
}

func opShr(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift, val := stack.Pop(), stack.Pop()
	stack.Push(u256.Rsh(val, shiftAmount(shift)))
	return nil, nil
}

func opSar(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift, val := stack.Pop(), stack.Pop()
	stack.Push(u256.Sar(val, shiftAmount(shift)))
	return nil, nil
}

// --- Hash ---

func opKeccak256(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	data := memBytes(mem, offset, size)
	stack.Push(u256.FromBigEndian(crypto.Keccak256(data)))
	return nil, nil
}

// --- Environment ---

func opAddress(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressWord(contract.Self))
	return nil, nil
}

func opBalance(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addr := addressFromWord(stack.Pop())
	stack.Push(ip.host.Balance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressWord(ip.txCtx.Origin))
	return nil, nil
}

func opCaller(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressWord(contract.Caller))
	return nil, nil
}

func opCallValue(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(contract.Value)
	return nil, nil
}

func opCalldataLoad(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	off := stack.Pop()
	offset, ok := off.ToU64()
	if !ok {
		stack.Push(u256.Zero)
		return nil, nil
	}
	stack.Push(u256.FromBigEndianPadded(getDataBounded(contract.Input, offset, 32)))
	return nil, nil
}

func opCalldataSize(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(uint64(len(contract.Input))))
	return nil, nil
}

func opCalldataCopy(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	sz, ok := size.ToU64()
	if !ok || sz == 0 {
		return nil, nil
	}
	off, _ := offset.ToU64()
	data := getDataBounded(contract.Input, off, sz)
	dst, _ := destOffset.ToU64()
	mem.Set(dst, sz, data)
	return nil, nil
}

func opCodeSize(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(uint64(len(contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	sz, ok := size.ToU64()
	if !ok || sz == 0 {
		return nil, nil
	}
	off, _ := offset.ToU64()
	data := getDataBounded(contract.Code, off, sz)
	dst, _ := destOffset.ToU64()
	mem.Set(dst, sz, data)
	return nil, nil
}

func opGasPrice(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(ip.txCtx.GasPrice)
	return nil, nil
}

func opExtcodesize(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addr := addressFromWord(stack.Pop())
	stack.Push(u256.FromU64(uint64(ip.host.CodeSize(addr))))
	return nil, nil
}

func opExtcodecopy(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addrW, destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	sz, ok := size.ToU64()
	if !ok || sz == 0 {
		return nil, nil
	}
	addr := addressFromWord(addrW)
	off, _ := offset.ToU64()
	data := getDataBounded(ip.host.Code(addr), off, sz)
	dst, _ := destOffset.ToU64()
	mem.Set(dst, sz, data)
	return nil, nil
}

func opReturndataSize(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(uint64(len(ip.returnData))))
	return nil, nil
}

func opReturndataCopy(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	destOffset, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	sz, ok := size.ToU64()
	if !ok {
		return nil, ErrReturnDataOutOfBounds
	}
	off, ok := offset.ToU64()
	if !ok {
		return nil, ErrReturnDataOutOfBounds
	}
	end := off + sz
	if end < off || end > uint64(len(ip.returnData)) {
		return nil, ErrReturnDataOutOfBounds
	}
	if sz == 0 {
		return nil, nil
	}
	dst, _ := destOffset.ToU64()
	mem.Set(dst, sz, ip.returnData[off:end])
	return nil, nil
}

func opExtcodehash(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	addr := addressFromWord(stack.Pop())
	if !ip.host.Exists(addr) {
		stack.Push(u256.Zero)
		return nil, nil
	}
	stack.Push(fromB256(ip.host.CodeHash(addr)))
	return nil, nil
}

// --- Block ---

func opBlockhash(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	num := stack.Pop()
	n, ok := num.ToU64()
	if !ok || ip.blockCtx.GetHash == nil {
		stack.Push(u256.Zero)
		return nil, nil
	}
	stack.Push(fromB256(ip.blockCtx.GetHash(n)))
	return nil, nil
}

func opCoinbase(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(addressWord(ip.blockCtx.Coinbase))
	return nil, nil
}

func opTimestamp(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(ip.blockCtx.Time))
	return nil, nil
}

func opNumber(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(ip.blockCtx.BlockNumber))
	return nil, nil
}

func opPrevRandao(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(fromB256(ip.blockCtx.PrevRandao))
	return nil, nil
}

func opGasLimit(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(ip.blockCtx.GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(ip.chainID)
	return nil, nil
}

func opSelfBalance(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(ip.host.Balance(contract.Self))
	return nil, nil
}

func opBaseFee(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(ip.blockCtx.BaseFee)
	return nil, nil
}

func opBlobHash(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	idx := stack.Pop()
	i, ok := idx.ToU64()
	if !ok || i >= uint64(len(ip.txCtx.BlobHashes)) {
		stack.Push(u256.Zero)
		return nil, nil
	}
	stack.Push(fromB256(ip.txCtx.BlobHashes[i]))
	return nil, nil
}

func opBlobBaseFee(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(ip.blockCtx.BlobBaseFee)
	return nil, nil
}

// --- Stack / memory / flow ---

func opPop(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, _ := stack.Pop().ToU64()
	stack.Push(mem.MLoad(offset))
	return nil, nil
}

func opMstore(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, val := stack.Pop(), stack.Pop()
	off, _ := offset.ToU64()
	mem.MStore(off, val)
	return nil, nil
}

func opMstore8(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, val := stack.Pop(), stack.Pop()
	off, _ := offset.ToU64()
	mem.MStore8(off, val)
	return nil, nil
}

func opSload(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	key := stack.Pop()
	val := ip.host.SLoad(contract.Self, toB256(key))
	stack.Push(fromB256(val))
	return nil, nil
}

func opSstore(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	key, val := stack.Pop(), stack.Pop()
	ip.host.SStore(contract.Self, toB256(key), toB256(val))
	return nil, nil
}

func opJump(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dest := stack.Pop()
	d, ok := dest.ToU64()
	if !ok || !contract.ValidJumpdest(d) {
		return nil, ErrInvalidJump
	}
	*pc = d
	return nil, nil
}

func opJumpi(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dest, cond := stack.Pop(), stack.Pop()
	if cond.IsZero() {
		*pc++
		return nil, nil
	}
	d, ok := dest.ToU64()
	if !ok || !contract.ValidJumpdest(d) {
		return nil, ErrInvalidJump
	}
	*pc = d
	return nil, nil
}

func opPc(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(uint64(mem.Len())))
	return nil, nil
}

func opGas(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.FromU64(contract.Gas.Remaining()))
	return nil, nil
}

func opJumpdest(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opTload(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	key := stack.Pop()
	stack.Push(fromB256(ip.host.TLoad(contract.Self, toB256(key))))
	return nil, nil
}

func opTstore(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	key, val := stack.Pop(), stack.Pop()
	ip.host.TStore(contract.Self, toB256(key), toB256(val))
	return nil, nil
}

func opMcopy(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dst, src, size := stack.Pop(), stack.Pop(), stack.Pop()
	sz, ok := size.ToU64()
	if !ok || sz == 0 {
		return nil, nil
	}
	d, _ := dst.ToU64()
	s, _ := src.ToU64()
	mem.MCopy(d, s, sz)
	return nil, nil
}

func opPush0(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(u256.Zero)
	return nil, nil
}

func makePush(n int) executionFunc {
	return func(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		start := *pc + 1
		data := getDataBounded(contract.Code, start, uint64(n))
		stack.Push(u256.FromBigEndianPadded(data))
		*pc += uint64(n)
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		stack.Dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		stack.Swap(n)
		return nil, nil
	}
}

// --- Logs ---

func makeLog(n int) executionFunc {
	return func(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		offset, size := stack.Pop(), stack.Pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			topics[i] = toB256(stack.Pop())
		}
		data := memBytes(mem, offset, size)
		ip.host.AddLog(&types.Log{
			Address: contract.Self,
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}

// --- System ---

func opStop(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opReturn(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	return memBytes(mem, offset, size), nil
}

func opRevert(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	return memBytes(mem, offset, size), ErrExecutionReverted
}

func opInvalid(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

// --- Calls ---

func opCall(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop() // gas, already resolved into ip.callGasTemp by the dynamic gas function
	addr := addressFromWord(stack.Pop())
	value := stack.Pop()
	argsOffset, argsSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memBytes(mem, argsOffset, argsSize)
	gas := ip.callGasTemp

	ret, leftover, err := ip.Call(contract, addr, args, gas, value)
	contract.Gas.Credit(leftover)
	ip.returnData = ret
	writeMemoryRegion(mem, retOffset, retSize, ret)
	if err != nil {
		stack.Push(u256.Zero)
	} else {
		stack.Push(u256.One)
	}
	return nil, nil
}

func opCallCode(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	addr := addressFromWord(stack.Pop())
	value := stack.Pop()
	argsOffset, argsSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memBytes(mem, argsOffset, argsSize)
	gas := ip.callGasTemp

	ret, leftover, err := ip.CallCode(contract, addr, args, gas, value)
	contract.Gas.Credit(leftover)
	ip.returnData = ret
	writeMemoryRegion(mem, retOffset, retSize, ret)
	if err != nil {
		stack.Push(u256.Zero)
	} else {
		stack.Push(u256.One)
	}
	return nil, nil
}

func opDelegateCall(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	addr := addressFromWord(stack.Pop())
	argsOffset, argsSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memBytes(mem, argsOffset, argsSize)
	gas := ip.callGasTemp

	ret, leftover, err := ip.DelegateCall(contract, addr, args, gas)
	contract.Gas.Credit(leftover)
	ip.returnData = ret
	writeMemoryRegion(mem, retOffset, retSize, ret)
	if err != nil {
		stack.Push(u256.Zero)
	} else {
		stack.Push(u256.One)
	}
	return nil, nil
}

func opStaticCall(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	addr := addressFromWord(stack.Pop())
	argsOffset, argsSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memBytes(mem, argsOffset, argsSize)
	gas := ip.callGasTemp

	ret, leftover, err := ip.StaticCall(contract, addr, args, gas)
	contract.Gas.Credit(leftover)
	ip.returnData = ret
	writeMemoryRegion(mem, retOffset, retSize, ret)
	if err != nil {
		stack.Push(u256.Zero)
	} else {
		stack.Push(u256.One)
	}
	return nil, nil
}

// --- Create ---

func opCreate(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	value, offset, size := stack.Pop(), stack.Pop(), stack.Pop()
	initcode := memBytes(mem, offset, size)

	available := contract.Gas.Remaining()
	gas := CallGas(available, available)
	contract.Gas.Consume(gas)
	addr, ret, leftover, err := ip.Create(contract, initcode, gas, value)
	contract.Gas.Credit(leftover)
	ip.returnData = ret
	if err != nil {
		stack.Push(u256.Zero)
	} else {
		stack.Push(addressWord(addr))
	}
	return nil, nil
}

func opCreate2(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	value, offset, size, salt := stack.Pop(), stack.Pop(), stack.Pop(), stack.Pop()
	initcode := memBytes(mem, offset, size)

	available := contract.Gas.Remaining()
	gas := CallGas(available, available)
	contract.Gas.Consume(gas)
	addr, ret, leftover, err := ip.Create2(contract, initcode, gas, value, salt)
	contract.Gas.Credit(leftover)
	ip.returnData = ret
	if err != nil {
		stack.Push(u256.Zero)
	} else {
		stack.Push(addressWord(addr))
	}
	return nil, nil
}

// --- Selfdestruct ---

func opSelfdestruct(pc *uint64, ip *Interpreter, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	beneficiary := addressFromWord(stack.Pop())

	if !ip.spec.Flags.HasSelfdestructRefundRemoved {
		if !ip.host.HasSelfDestructed(contract.Self) {
			contract.Gas.AddRefund(ip.spec.Gas.SelfdestructRefund)
		}
	}

	ip.host.SelfDestruct(contract.Self, beneficiary)
	return nil, nil
}
