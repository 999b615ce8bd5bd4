package evmtest

import (
	"github.com/eth2030/evmcore/crypto"
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
	"github.com/eth2030/evmcore/vm"
)

// account holds one address's full state: balance, nonce, code, and its
// persistent/transient storage. committed mirrors storage's contents at
// the start of the current transaction, so SStore's original/current/new
// three-way comparison (vm.SstoreGas) has something to read even after
// several SSTOREs in the same frame have each moved storage away from it.
type account struct {
	balance        u256.U256
	nonce          uint64
	code           []byte
	codeHash       types.B256
	storage        map[types.B256]types.B256
	committed      map[types.B256]types.B256
	transient      map[types.B256]types.B256
	selfDestructed bool
}

func newAccount() *account {
	return &account{
		storage:   make(map[types.B256]types.B256),
		committed: make(map[types.B256]types.B256),
		transient: make(map[types.B256]types.B256),
	}
}

// MemoryHost is an in-memory vm.Host: no trie, no persistence, just maps
// plus a journal so Snapshot/RevertToSnapshot behave exactly as the
// interpreter's Call/Create lifecycle expects. It exists to let
// instructions.go and interpreter.go be exercised by plain table tests
// without dragging in a real state backend.
type MemoryHost struct {
	accounts map[types.Address]*account
	journal  *journal

	logs   []*types.Log
	refund uint64

	accessAddrs map[types.Address]bool
	accessSlots map[types.Address]map[types.B256]bool

	getHash vm.GetHashFunc
}

// NewMemoryHost returns an empty host. getHash answers GetHash; pass nil
// if the scenario under test never queries it. The interpreter's BLOCKHASH
// opcode reads vm.BlockContext.GetHash, not this host.
func NewMemoryHost(getHash vm.GetHashFunc) *MemoryHost {
	return &MemoryHost{
		accounts:    make(map[types.Address]*account),
		journal:     newJournal(),
		accessAddrs: make(map[types.Address]bool),
		accessSlots: make(map[types.Address]map[types.B256]bool),
		getHash:     getHash,
	}
}

func (h *MemoryHost) GetHash(blockNumber uint64) types.B256 {
	if h.getHash == nil {
		return types.B256{}
	}
	return h.getHash(blockNumber)
}

func (h *MemoryHost) get(addr types.Address) *account {
	return h.accounts[addr]
}

func (h *MemoryHost) getOrCreate(addr types.Address) *account {
	if obj := h.accounts[addr]; obj != nil {
		return obj
	}
	obj := newAccount()
	h.accounts[addr] = obj
	return obj
}

// SeedAccount installs balance/nonce/code directly, bypassing the journal
// (this is genesis/pre-state setup, not a reversible in-transaction
// mutation). It does not touch storage; SeedStorage seeds slots.
func (h *MemoryHost) SeedAccount(addr types.Address, balance u256.U256, nonce uint64, code []byte) {
	obj := h.getOrCreate(addr)
	obj.balance = balance
	obj.nonce = nonce
	obj.code = code
	if len(code) > 0 {
		obj.codeHash = types.BytesToB256(crypto.Keccak256(code))
	} else {
		obj.codeHash = types.EmptyCodeHash
	}
}

// SeedStorage sets a slot in both current and committed storage, the way
// a slot loaded from a real trie before any transaction has touched it
// would read for both SLoad and CommittedSLoad.
func (h *MemoryHost) SeedStorage(addr types.Address, key, value types.B256) {
	obj := h.getOrCreate(addr)
	obj.storage[key] = value
	obj.committed[key] = value
}

// --- Account state ---

func (h *MemoryHost) CreateAccount(addr types.Address) {
	prev := h.accounts[addr]
	h.journal.append(createAccountChange{addr: addr, prev: prev})
	h.accounts[addr] = newAccount()
}

func (h *MemoryHost) Balance(addr types.Address) u256.U256 {
	if obj := h.get(addr); obj != nil {
		return obj.balance
	}
	return u256.Zero
}

func (h *MemoryHost) AddBalance(addr types.Address, amount u256.U256) {
	obj := h.getOrCreate(addr)
	h.journal.append(balanceChange{addr: addr, prev: obj.balance})
	obj.balance = u256.Add(obj.balance, amount)
}

func (h *MemoryHost) SubBalance(addr types.Address, amount u256.U256) {
	obj := h.getOrCreate(addr)
	h.journal.append(balanceChange{addr: addr, prev: obj.balance})
	obj.balance = u256.Sub(obj.balance, amount)
}

func (h *MemoryHost) Nonce(addr types.Address) uint64 {
	if obj := h.get(addr); obj != nil {
		return obj.nonce
	}
	return 0
}

func (h *MemoryHost) SetNonce(addr types.Address, nonce uint64) {
	obj := h.getOrCreate(addr)
	h.journal.append(nonceChange{addr: addr, prev: obj.nonce})
	obj.nonce = nonce
}

func (h *MemoryHost) Code(addr types.Address) []byte {
	if obj := h.get(addr); obj != nil {
		return obj.code
	}
	return nil
}

func (h *MemoryHost) SetCode(addr types.Address, code []byte) {
	obj := h.getOrCreate(addr)
	h.journal.append(codeChange{addr: addr, prevCode: obj.code, prevHash: obj.codeHash})
	obj.code = code
	obj.codeHash = types.BytesToB256(crypto.Keccak256(code))
}

func (h *MemoryHost) CodeHash(addr types.Address) types.B256 {
	obj := h.get(addr)
	if obj == nil {
		return types.B256{}
	}
	if len(obj.code) == 0 {
		return types.EmptyCodeHash
	}
	return obj.codeHash
}

func (h *MemoryHost) CodeSize(addr types.Address) int {
	if obj := h.get(addr); obj != nil {
		return len(obj.code)
	}
	return 0
}

func (h *MemoryHost) Exists(addr types.Address) bool {
	return h.accounts[addr] != nil
}

func (h *MemoryHost) Empty(addr types.Address) bool {
	obj := h.get(addr)
	if obj == nil {
		return true
	}
	return obj.nonce == 0 && obj.balance.IsZero() && len(obj.code) == 0
}

// --- Persistent storage ---

func (h *MemoryHost) SLoad(addr types.Address, key types.B256) types.B256 {
	if obj := h.get(addr); obj != nil {
		return obj.storage[key]
	}
	return types.B256{}
}

func (h *MemoryHost) SStore(addr types.Address, key, value types.B256) {
	obj := h.getOrCreate(addr)
	prev, ok := obj.storage[key]
	h.journal.append(storageChange{addr: addr, key: key, prev: prev, prevExists: ok})
	obj.storage[key] = value
}

func (h *MemoryHost) CommittedSLoad(addr types.Address, key types.B256) types.B256 {
	if obj := h.get(addr); obj != nil {
		return obj.committed[key]
	}
	return types.B256{}
}

// --- Transient storage ---

func (h *MemoryHost) TLoad(addr types.Address, key types.B256) types.B256 {
	if obj := h.get(addr); obj != nil {
		return obj.transient[key]
	}
	return types.B256{}
}

func (h *MemoryHost) TStore(addr types.Address, key, value types.B256) {
	obj := h.getOrCreate(addr)
	prev, ok := obj.transient[key]
	h.journal.append(transientChange{addr: addr, key: key, prev: prev, prevExists: ok})
	obj.transient[key] = value
}

// --- Self-destruct ---

func (h *MemoryHost) SelfDestruct(addr types.Address, beneficiary types.Address) {
	obj := h.get(addr)
	if obj == nil {
		return
	}
	h.journal.append(selfDestructChange{addr: addr, prevDestructed: obj.selfDestructed, prevBalance: obj.balance})
	bal := obj.balance
	obj.selfDestructed = true
	obj.balance = u256.Zero
	if !bal.IsZero() && addr != beneficiary {
		h.AddBalance(beneficiary, bal)
	}
}

func (h *MemoryHost) HasSelfDestructed(addr types.Address) bool {
	if obj := h.get(addr); obj != nil {
		return obj.selfDestructed
	}
	return false
}

// --- Snapshot/revert ---

func (h *MemoryHost) Snapshot() int { return h.journal.snapshot() }

func (h *MemoryHost) RevertToSnapshot(id int) { h.journal.revertToSnapshot(id, h) }

// --- Logs ---

func (h *MemoryHost) AddLog(log *types.Log) {
	h.journal.append(logChange{prevLen: len(h.logs)})
	h.logs = append(h.logs, log)
}

// Logs returns every log recorded so far, in emission order.
func (h *MemoryHost) Logs() []*types.Log { return h.logs }

// --- Refund counter ---

func (h *MemoryHost) AddRefund(amount uint64) {
	h.journal.append(refundChange{prev: h.refund})
	h.refund += amount
}

func (h *MemoryHost) SubRefund(amount uint64) {
	h.journal.append(refundChange{prev: h.refund})
	if amount > h.refund {
		h.refund = 0
		return
	}
	h.refund -= amount
}

func (h *MemoryHost) Refund() uint64 { return h.refund }

// --- EIP-2929 access list ---

func (h *MemoryHost) AddAddressToAccessList(addr types.Address) {
	if h.accessAddrs[addr] {
		return
	}
	h.journal.append(accessListAddAddressChange{addr: addr})
	h.accessAddrs[addr] = true
}

func (h *MemoryHost) AddSlotToAccessList(addr types.Address, slot types.B256) {
	if !h.accessAddrs[addr] {
		h.journal.append(accessListAddAddressChange{addr: addr})
		h.accessAddrs[addr] = true
	}
	slots := h.accessSlots[addr]
	if slots == nil {
		slots = make(map[types.B256]bool)
		h.accessSlots[addr] = slots
	}
	if slots[slot] {
		return
	}
	h.journal.append(accessListAddSlotChange{addr: addr, slot: slot})
	slots[slot] = true
}

func (h *MemoryHost) AddressInAccessList(addr types.Address) bool {
	return h.accessAddrs[addr]
}

func (h *MemoryHost) SlotInAccessList(addr types.Address, slot types.B256) (addressWarm, slotWarm bool) {
	addressWarm = h.accessAddrs[addr]
	if slots, ok := h.accessSlots[addr]; ok {
		slotWarm = slots[slot]
	}
	return addressWarm, slotWarm
}

// --- Transaction boundary ---

// ClearTransactionState clears transient storage and the warm access
// list, and folds current storage into committed storage so the next
// transaction's SSTOREs see this one's final values as their baseline.
func (h *MemoryHost) ClearTransactionState() {
	h.accessAddrs = make(map[types.Address]bool)
	h.accessSlots = make(map[types.Address]map[types.B256]bool)
	for _, obj := range h.accounts {
		obj.transient = make(map[types.B256]types.B256)
		for k, v := range obj.storage {
			obj.committed[k] = v
		}
	}
}

var _ vm.Host = (*MemoryHost)(nil)
