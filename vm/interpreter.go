package vm

import (
	"encoding/binary"

	"github.com/eth2030/evmcore/crypto"
	"github.com/eth2030/evmcore/params"
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// Interpreter runs EVM bytecode against a Host under a single Spec. One
// Interpreter is built per block (or per transaction, if callers want a
// fresh access-list lifecycle); it is reused across every call frame of
// that scope via Call/CallCode/DelegateCall/StaticCall/Create/Create2,
// which is what lets a nested CALL share the jump table and chain
// parameters with its caller without rebuilding either.
type Interpreter struct {
	host     Host
	spec     *params.Spec
	blockCtx BlockContext
	txCtx    TxContext
	chainID  u256.U256

	jumpTable JumpTable

	// returnData is the most recent subcall's or CREATE's output, backing
	// RETURNDATASIZE/RETURNDATACOPY. It is interpreter-wide rather than
	// per-frame because those opcodes only ever look at the immediately
	// preceding child call, never an ancestor's.
	returnData []byte

	// callGasTemp carries the EIP-150-capped gas a CALL-family opcode's
	// dynamicGas function computed through to that opcode's execute
	// function, which cannot recompute it (the computation needs the gas
	// remaining after the opcode's own cost, which only the dynamicGas
	// pass has charged for by the time it runs).
	callGasTemp uint64
}

// NewInterpreter builds an Interpreter for spec, deriving its jump table
// once up front.
func NewInterpreter(host Host, spec *params.Spec, blockCtx BlockContext, txCtx TxContext, chainID u256.U256) *Interpreter {
	return &Interpreter{
		host:      host,
		spec:      spec,
		blockCtx:  blockCtx,
		txCtx:     txCtx,
		chainID:   chainID,
		jumpTable: BuildJumpTable(spec),
	}
}

// Run executes contract's code from pc 0 until it halts, reverts, or
// errors. The write-protection check lives here, once, rather than
// scattered across individual opcodes: any operation.writes op inside a
// ReadOnly frame fails immediately with ErrWriteProtection, before it
// charges gas or touches the stack.
func (ip *Interpreter) Run(contract *Contract) ([]byte, error) {
	var (
		pc    uint64
		stack = NewStack()
		mem   = NewMemory()
	)

	for {
		op := contract.codeAt(pc)
		opDef := ip.jumpTable[op]
		if opDef == nil {
			return nil, ip.fail(contract, ErrInvalidOpCode)
		}
		if stack.Len() < opDef.minStack {
			return nil, ip.fail(contract, ErrStackUnderflow)
		}
		if stack.Len() > opDef.maxStack {
			return nil, ip.fail(contract, ErrStackOverflow)
		}
		if opDef.writes && contract.ReadOnly {
			return nil, ip.fail(contract, ErrWriteProtection)
		}

		if err := contract.Gas.Consume(opDef.constantGas); err != nil {
			return nil, ip.fail(contract, err)
		}

		var memSize uint64
		if opDef.memorySize != nil {
			sz, overflow := opDef.memorySize(stack)
			if overflow {
				return nil, ip.fail(contract, ErrGasUintOverflow)
			}
			memSize = sz
		}

		if opDef.dynamicGas != nil {
			cost, err := opDef.dynamicGas(ip, contract, stack, mem, memSize)
			if err != nil {
				return nil, ip.fail(contract, err)
			}
			if err := contract.Gas.Consume(cost); err != nil {
				return nil, ip.fail(contract, err)
			}
		}

		if memSize > uint64(mem.Len()) {
			if err := mem.EnsureCapacity(0, memSize); err != nil {
				return nil, ip.fail(contract, err)
			}
		}

		ret, err := opDef.execute(&pc, ip, contract, mem, stack)
		if err != nil {
			if err == ErrExecutionReverted {
				return ret, err
			}
			return nil, ip.fail(contract, err)
		}

		if opDef.halts {
			return ret, nil
		}
		if !opDef.jumps {
			pc++
		}
	}
}

// fail consumes whatever gas remains in the frame and returns err
// unchanged, centralizing the "exceptional halts burn the whole gas
// budget" rule so every error path in Run doesn't have to repeat it.
func (ip *Interpreter) fail(contract *Contract, err error) error {
	contract.Gas.Consume(contract.Gas.Remaining())
	return err
}

// resolveCode returns the code the interpreter actually executes for
// addr: addr's own code, unless EIP-7702 is active and addr's code is a
// delegation designator, in which case it's the delegate's code (or no
// code at all, for a designator pointing at the zero address, which
// marks a cleared delegation).
func (ip *Interpreter) resolveCode(addr types.Address) []byte {
	code := ip.host.Code(addr)
	if !ip.spec.Flags.HasEIP7702 {
		return code
	}
	target, ok := ParseDelegation(code)
	if !ok {
		return code
	}
	if target.IsZero() {
		return nil
	}
	return ip.host.Code(target)
}

func (ip *Interpreter) transfer(from, to types.Address, value u256.U256) {
	if value.IsZero() {
		return
	}
	ip.host.SubBalance(from, value)
	ip.host.AddBalance(to, value)
}

// finishSubcall applies the shared post-execution bookkeeping every
// Call/CallCode/DelegateCall/StaticCall needs: revert the frame's state
// changes on any error, and zero out the leftover gas on every error
// except ErrExecutionReverted (which, unlike the others, hands unused gas
// back to the caller along with its revert reason).
func (ip *Interpreter) finishSubcall(contract *Contract, snapshot int, ret []byte, err error) ([]byte, uint64, error) {
	leftOverGas := contract.Gas.Remaining()
	if err != nil {
		ip.host.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			leftOverGas = 0
			ret = nil
		}
	}
	return ret, leftOverGas, err
}

// AccessTuple is one entry of an EIP-2930 access list: an address plus
// the storage slots under it that the transaction declares up front.
type AccessTuple struct {
	Address     types.Address
	StorageKeys []types.B256
}

// PrewarmAccessList marks origin, recipient, every active precompile
// address, and the entries of an EIP-2930 access list as warm before a
// transaction's top-level Call/Create frame runs. It is a separate,
// explicitly-invoked step rather than logic folded into Call/Create
// themselves, because those methods are also how a CALL-family opcode
// dispatches a nested frame, and nested frames must never re-warm the
// transaction's own origin/recipient or re-run the precompile scan.
// Callers that don't model a transaction boundary (e.g. exercising a
// single frame in isolation) can skip calling it; every opcode still
// falls back to charging the cold surcharge on first touch via
// accessAddress/accessSlot.
//
// recipient is the zero address for a contract-creation transaction,
// which has no "initial recipient" to warm.
func (ip *Interpreter) PrewarmAccessList(origin, recipient types.Address, accessList []AccessTuple) {
	if !ip.spec.Flags.HasAccessLists {
		return
	}
	ip.host.AddAddressToAccessList(origin)
	if recipient != (types.Address{}) {
		ip.host.AddAddressToAccessList(recipient)
	}
	for _, addr := range params.PrecompileAddresses(ip.spec) {
		ip.host.AddAddressToAccessList(addr)
	}
	for _, tuple := range accessList {
		ip.host.AddAddressToAccessList(tuple.Address)
		for _, key := range tuple.StorageKeys {
			ip.host.AddSlotToAccessList(tuple.Address, key)
		}
	}
}

// Call executes addr's code as a new frame, transferring value from
// caller's account to addr's first.
func (ip *Interpreter) Call(caller *Contract, addr types.Address, input []byte, gas uint64, value u256.U256) ([]byte, uint64, error) {
	if caller.Depth+1 > int(ip.spec.Gas.MaxCallDepth) {
		return nil, gas, ErrDepthLimitExceeded
	}
	if caller.ReadOnly && !value.IsZero() {
		return nil, gas, ErrWriteProtection
	}
	if !value.IsZero() && ip.host.Balance(caller.Self).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := ip.host.Snapshot()
	if !ip.host.Exists(addr) {
		ip.host.CreateAccount(addr)
	}
	ip.transfer(caller.Self, addr, value)

	code := ip.resolveCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller.Self, addr, code, value, NewGasMeter(gas), caller.Depth+1)
	contract.Input = input
	contract.ReadOnly = caller.ReadOnly
	contract.CodeHash = ip.host.CodeHash(addr)

	ret, err := ip.Run(contract)
	return ip.finishSubcall(contract, snapshot, ret, err)
}

// CallCode executes addr's code in a new frame, but against the caller's
// own storage and balance: value moves from caller to itself (a no-op
// transfer, but still subject to the balance check), and every SLOAD/
// SSTORE the borrowed code performs touches caller.Self's storage.
func (ip *Interpreter) CallCode(caller *Contract, addr types.Address, input []byte, gas uint64, value u256.U256) ([]byte, uint64, error) {
	if caller.Depth+1 > int(ip.spec.Gas.MaxCallDepth) {
		return nil, gas, ErrDepthLimitExceeded
	}
	if !value.IsZero() && ip.host.Balance(caller.Self).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := ip.host.Snapshot()
	ip.transfer(caller.Self, caller.Self, value)

	code := ip.resolveCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller.Self, caller.Self, code, value, NewGasMeter(gas), caller.Depth+1)
	contract.Input = input
	contract.ReadOnly = caller.ReadOnly
	contract.CodeHash = ip.host.CodeHash(addr)

	ret, err := ip.Run(contract)
	return ip.finishSubcall(contract, snapshot, ret, err)
}

// DelegateCall executes addr's code in the caller's own frame context: no
// value moves, and Caller/Self/Value are all inherited unchanged from the
// calling frame, so the borrowed code runs with its caller's identity and
// balance as if it had been inlined.
func (ip *Interpreter) DelegateCall(caller *Contract, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if caller.Depth+1 > int(ip.spec.Gas.MaxCallDepth) {
		return nil, gas, ErrDepthLimitExceeded
	}

	snapshot := ip.host.Snapshot()

	code := ip.resolveCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller.Caller, caller.Self, code, caller.Value, NewGasMeter(gas), caller.Depth+1)
	contract.Input = input
	contract.ReadOnly = caller.ReadOnly
	contract.CodeHash = ip.host.CodeHash(addr)

	ret, err := ip.Run(contract)
	return ip.finishSubcall(contract, snapshot, ret, err)
}

// StaticCall executes addr's code in a read-only frame: no value
// transfer, and every operation.writes opcode it reaches fails with
// ErrWriteProtection.
func (ip *Interpreter) StaticCall(caller *Contract, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if caller.Depth+1 > int(ip.spec.Gas.MaxCallDepth) {
		return nil, gas, ErrDepthLimitExceeded
	}

	snapshot := ip.host.Snapshot()

	code := ip.resolveCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller.Self, addr, code, u256.Zero, NewGasMeter(gas), caller.Depth+1)
	contract.Input = input
	contract.ReadOnly = true
	contract.CodeHash = ip.host.CodeHash(addr)

	ret, err := ip.Run(contract)
	return ip.finishSubcall(contract, snapshot, ret, err)
}

// Create derives its target address from caller's account nonce (classic
// CREATE), then runs create.
func (ip *Interpreter) Create(caller *Contract, initcode []byte, gas uint64, value u256.U256) (types.Address, []byte, uint64, error) {
	nonce := ip.host.Nonce(caller.Self)
	addr := createAddress(caller.Self, nonce)
	return ip.create(caller, addr, initcode, gas, value)
}

// Create2 derives its target address from caller, salt, and the initcode
// hash (EIP-1014), making the deployed address predictable before the
// initcode even runs.
func (ip *Interpreter) Create2(caller *Contract, initcode []byte, gas uint64, value u256.U256, salt u256.U256) (types.Address, []byte, uint64, error) {
	addr := create2Address(caller.Self, salt, initcode)
	return ip.create(caller, addr, initcode, gas, value)
}

// create is the shared CREATE/CREATE2 body: nonce bump, collision check,
// initcode-size check, running the initcode as a frame of its own, and
// (on success) charging the per-byte code-deposit cost and installing the
// returned code at addr.
func (ip *Interpreter) create(caller *Contract, addr types.Address, initcode []byte, gas uint64, value u256.U256) (types.Address, []byte, uint64, error) {
	if caller.ReadOnly {
		return types.Address{}, nil, gas, ErrWriteProtection
	}
	if caller.Depth+1 > int(ip.spec.Gas.MaxCallDepth) {
		return types.Address{}, nil, gas, ErrDepthLimitExceeded
	}
	if !value.IsZero() && ip.host.Balance(caller.Self).Lt(value) {
		return types.Address{}, nil, gas, ErrInsufficientBalance
	}
	if ip.spec.Flags.HasMaxInitcodeSize && ip.spec.Gas.MaxInitcodeSize > 0 && uint64(len(initcode)) > ip.spec.Gas.MaxInitcodeSize {
		return types.Address{}, nil, gas, ErrMaxInitCodeSizeExceeded
	}

	callerNonce := ip.host.Nonce(caller.Self)
	if callerNonce+1 == 0 {
		return types.Address{}, nil, gas, ErrNonceUintOverflow
	}
	ip.host.SetNonce(caller.Self, callerNonce+1)

	if ip.spec.Flags.HasAccessLists {
		ip.host.AddAddressToAccessList(addr)
	}

	if ip.host.Exists(addr) && (ip.host.Nonce(addr) != 0 || ip.host.CodeSize(addr) != 0 || IsDelegationDesignator(ip.host.Code(addr))) {
		return types.Address{}, nil, gas, ErrContractAddressCollision
	}

	snapshot := ip.host.Snapshot()
	if !ip.host.Exists(addr) {
		ip.host.CreateAccount(addr)
	}
	ip.host.SetNonce(addr, 1)
	ip.transfer(caller.Self, addr, value)

	contract := NewContract(caller.Self, addr, initcode, value, NewGasMeter(gas), caller.Depth+1)

	code, err := ip.Run(contract)
	if err == nil {
		err = ip.installCode(contract, addr, code)
	}

	leftOverGas := contract.Gas.Remaining()
	if err != nil {
		ip.host.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			leftOverGas = 0
			code = nil
		}
		return types.Address{}, code, leftOverGas, err
	}
	return addr, nil, leftOverGas, nil
}

// installCode validates and charges for the code a CREATE/CREATE2's
// initcode returned, then writes it to addr. It never touches the
// snapshot or leftover-gas bookkeeping; the caller (create) handles that
// uniformly whether the failure came from here or from Run itself.
func (ip *Interpreter) installCode(contract *Contract, addr types.Address, code []byte) error {
	if len(code) > 0 && code[0] == 0xef {
		// EIP-3541: no newly deployed code may begin with the reserved
		// 0xEF prefix byte (that range is set aside for future EOF
		// formats).
		return ErrInvalidOpCode
	}
	if ip.spec.Gas.MaxCodeSize > 0 && uint64(len(code)) > ip.spec.Gas.MaxCodeSize {
		return ErrMaxCodeSizeExceeded
	}
	if err := contract.Gas.Consume(safeMul(GasCodeDeposit, uint64(len(code)))); err != nil {
		return err
	}
	ip.host.SetCode(addr, code)
	return nil
}

// --- CREATE/CREATE2 address derivation ---

func createAddress(from types.Address, nonce uint64) types.Address {
	enc := rlpEncodeList(rlpEncodeBytes(from.Bytes()), rlpEncodeUint(nonce))
	hash := crypto.Keccak256(enc)
	return types.BytesToB160(hash[12:])
}

func create2Address(from types.Address, salt u256.U256, initcode []byte) types.Address {
	initHash := crypto.Keccak256(initcode)
	saltBytes := salt.Bytes32()
	hash := crypto.Keccak256([]byte{0xff}, from.Bytes(), saltBytes[:], initHash)
	return types.BytesToB160(hash[12:])
}

// A minimal RLP encoder covering exactly the shape CREATE's address
// derivation needs: a two-element list of byte strings. Nothing here
// needs to decode RLP or encode arbitrary Go values, so this doesn't
// reach for a general-purpose RLP library.
func rlpEncodeBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	return append(rlpEncodeLength(len(b), 0x80), b...)
}

func rlpEncodeLength(l int, offset byte) []byte {
	if l < 56 {
		return []byte{offset + byte(l)}
	}
	lenBytes := minimalBigEndian(uint64(l))
	return append([]byte{offset + 55 + byte(len(lenBytes))}, lenBytes...)
}

func rlpEncodeUint(v uint64) []byte {
	return rlpEncodeBytes(minimalBigEndian(v))
}

func rlpEncodeList(items ...[]byte) []byte {
	var body []byte
	for _, it := range items {
		body = append(body, it...)
	}
	return append(rlpEncodeLength(len(body), 0xc0), body...)
}

func minimalBigEndian(v uint64) []byte {
	if v == 0 {
		return nil
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	i := 0
	for i < 8 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}
