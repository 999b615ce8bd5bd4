package vm

import (
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// Contract is the running state of a single call frame: the code being
// executed, the value/input it was invoked with, and the lazily computed
// jumpdest analysis for that code. One Contract exists per frame of the
// call stack; CALL/DELEGATECALL/STATICCALL/CREATE* each push a fresh one.
type Contract struct {
	Caller types.Address
	Self   types.Address

	Code     []byte
	CodeHash types.Hash
	analysis *codeAnalysis

	Input []byte
	Value u256.U256
	Gas   *GasMeter

	// DelegateTo is the address whose code a 7702-delegated EOA
	// ultimately executes. The Interpreter in this package does not set
	// it; EIP-7702 delegation is resolved by Interpreter.resolveCode, and
	// DelegateTo stays nil on every frame the Interpreter builds.
	DelegateTo *types.Address

	// ReadOnly marks a frame entered via STATICCALL, or inherited
	// read-only from a caller already in a static context: any state
	// mutation (SSTORE, LOG*, CREATE*, SELFDESTRUCT, value-transferring
	// CALL) must fail with ErrWriteProtection while set.
	ReadOnly bool

	// Depth is this frame's position in the call stack, 0 for the
	// top-level call. CALL/CREATE-family opcodes refuse to push past
	// params.GasSchedule.MaxCallDepth.
	Depth int
}

// NewContract builds a fresh call frame. code's jumpdest analysis is
// computed lazily on first use via ensureAnalysis, not here, so a frame
// that never executes a JUMP/JUMPI never pays the analysis cost.
func NewContract(caller, self types.Address, code []byte, value u256.U256, gas *GasMeter, depth int) *Contract {
	return &Contract{
		Caller: caller,
		Self:   self,
		Code:   code,
		Value:  value,
		Gas:    gas,
		Depth:  depth,
	}
}

// codeAt returns code[n] or 0 past the end, matching the EVM convention
// that execution "falls off the end" of code into implicit STOPs.
func (c *Contract) codeAt(n uint64) OpCode {
	if n >= uint64(len(c.Code)) {
		return STOP
	}
	return OpCode(c.Code[n])
}

func (c *Contract) ensureAnalysis() *codeAnalysis {
	if c.analysis == nil {
		c.analysis = analyze(c.Code)
	}
	return c.analysis
}

// ValidJumpdest reports whether dest is a JUMPDEST lying outside any
// PUSH immediate.
func (c *Contract) ValidJumpdest(dest uint64) bool {
	return c.ensureAnalysis().ValidJumpdest(dest, c.Code)
}
