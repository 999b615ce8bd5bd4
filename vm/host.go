package vm

import (
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// GetHashFunc resolves a recent block number to its hash, backing the
// BLOCKHASH opcode (which only answers for the 256 most recent blocks;
// anything else is the caller's responsibility to return types.B256{}
// for).
type GetHashFunc func(blockNumber uint64) types.B256

// BlockContext carries the per-block values the interpreter needs but
// cannot derive from the running contract itself.
type BlockContext struct {
	GetHash     GetHashFunc
	BlockNumber uint64
	Time        uint64
	Coinbase    types.Address
	GasLimit    uint64
	BaseFee     u256.U256
	PrevRandao  types.B256
	BlobBaseFee u256.U256
}

// TxContext carries the per-transaction values.
type TxContext struct {
	Origin     types.Address
	GasPrice   u256.U256
	BlobHashes []types.B256
}

// Host is the narrow seam between the interpreter and the account/storage
// state it reads and mutates. It plays the role the teacher's StateDB
// interface plays, generalized to the U256 word type this module uses
// throughout instead of math/big, and extended with the transaction
// control operations (Snapshot/RevertToSnapshot/ClearTransactionState)
// a call frame needs to implement CALL/CREATE atomically.
type Host interface {
	// Account state.
	CreateAccount(addr types.Address)
	Balance(addr types.Address) u256.U256
	AddBalance(addr types.Address, amount u256.U256)
	SubBalance(addr types.Address, amount u256.U256)
	Nonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)
	Code(addr types.Address) []byte
	SetCode(addr types.Address, code []byte)
	CodeHash(addr types.Address) types.B256
	CodeSize(addr types.Address) int
	Exists(addr types.Address) bool
	Empty(addr types.Address) bool

	// Persistent storage.
	SLoad(addr types.Address, key types.B256) types.B256
	SStore(addr types.Address, key, value types.B256)
	CommittedSLoad(addr types.Address, key types.B256) types.B256

	// Transient storage (EIP-1153): cleared at the end of the
	// transaction, not persisted, and not subject to gas refunds.
	TLoad(addr types.Address, key types.B256) types.B256
	TStore(addr types.Address, key, value types.B256)

	// Self-destruct bookkeeping.
	SelfDestruct(addr types.Address, beneficiary types.Address)
	HasSelfDestructed(addr types.Address) bool

	// Snapshot/revert: every CALL/CREATE frame snapshots before
	// mutating and reverts on failure, undoing exactly the state
	// changes (including logs, refunds and self-destructs) the failed
	// frame made, per the interpreter's call/create lifecycle.
	Snapshot() int
	RevertToSnapshot(id int)

	// Logs.
	AddLog(log *types.Log)

	// Refund counter (subject to the EIP-3529 cap at the end of a
	// transaction, applied by the caller via GasMeter.CappedRefund, not
	// accumulated here).
	AddRefund(amount uint64)
	SubRefund(amount uint64)
	Refund() uint64

	// EIP-2929 access list (warm/cold tracking), journaled so a reverted
	// frame's warm-ups are undone along with everything else.
	AddAddressToAccessList(addr types.Address)
	AddSlotToAccessList(addr types.Address, slot types.B256)
	AddressInAccessList(addr types.Address) bool
	SlotInAccessList(addr types.Address, slot types.B256) (addressWarm, slotWarm bool)

	// ClearTransactionState resets transient storage and any other
	// per-transaction-only bookkeeping; called once between
	// transactions, never mid-call.
	ClearTransactionState()
}
