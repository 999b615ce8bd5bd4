// Package evmtest provides an in-memory vm.Host reference implementation
// and test helpers for exercising the interpreter without a real trie or
// database backing it.
package evmtest

import (
	"github.com/eth2030/evmcore/types"
	"github.com/eth2030/evmcore/u256"
)

// journalEntry is a revertible state change recorded against MemoryHost.
type journalEntry interface {
	revert(h *MemoryHost)
}

// journal tracks mutations since the start of the outermost call so a
// failed CALL/CREATE frame can undo exactly the changes it made, the same
// snapshot/revert contract vm.Host promises its caller.
type journal struct {
	entries   []journalEntry
	snapshots map[int]int
	nextID    int
}

func newJournal() *journal {
	return &journal{snapshots: make(map[int]int)}
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

func (j *journal) snapshot() int {
	id := j.nextID
	j.nextID++
	j.snapshots[id] = len(j.entries)
	return id
}

func (j *journal) revertToSnapshot(id int, h *MemoryHost) {
	idx, ok := j.snapshots[id]
	if !ok {
		return
	}
	for i := len(j.entries) - 1; i >= idx; i-- {
		j.entries[i].revert(h)
	}
	j.entries = j.entries[:idx]
	for sid := range j.snapshots {
		if sid >= id {
			delete(j.snapshots, sid)
		}
	}
}

type createAccountChange struct {
	addr types.Address
	prev *account // nil if the address had no account object before
}

func (ch createAccountChange) revert(h *MemoryHost) {
	if ch.prev == nil {
		delete(h.accounts, ch.addr)
	} else {
		h.accounts[ch.addr] = ch.prev
	}
}

type balanceChange struct {
	addr types.Address
	prev u256.U256
}

func (ch balanceChange) revert(h *MemoryHost) {
	if obj := h.accounts[ch.addr]; obj != nil {
		obj.balance = ch.prev
	}
}

type nonceChange struct {
	addr types.Address
	prev uint64
}

func (ch nonceChange) revert(h *MemoryHost) {
	if obj := h.accounts[ch.addr]; obj != nil {
		obj.nonce = ch.prev
	}
}

type codeChange struct {
	addr     types.Address
	prevCode []byte
	prevHash types.B256
}

func (ch codeChange) revert(h *MemoryHost) {
	if obj := h.accounts[ch.addr]; obj != nil {
		obj.code = ch.prevCode
		obj.codeHash = ch.prevHash
	}
}

type storageChange struct {
	addr       types.Address
	key        types.B256
	prev       types.B256
	prevExists bool
}

func (ch storageChange) revert(h *MemoryHost) {
	obj := h.accounts[ch.addr]
	if obj == nil {
		return
	}
	if ch.prevExists {
		obj.storage[ch.key] = ch.prev
	} else {
		delete(obj.storage, ch.key)
	}
}

type transientChange struct {
	addr       types.Address
	key        types.B256
	prev       types.B256
	prevExists bool
}

func (ch transientChange) revert(h *MemoryHost) {
	obj := h.accounts[ch.addr]
	if obj == nil {
		return
	}
	if ch.prevExists {
		obj.transient[ch.key] = ch.prev
	} else {
		delete(obj.transient, ch.key)
	}
}

type selfDestructChange struct {
	addr           types.Address
	prevDestructed bool
	prevBalance    u256.U256
}

func (ch selfDestructChange) revert(h *MemoryHost) {
	obj := h.accounts[ch.addr]
	if obj == nil {
		return
	}
	obj.selfDestructed = ch.prevDestructed
	obj.balance = ch.prevBalance
}

type logChange struct {
	prevLen int
}

func (ch logChange) revert(h *MemoryHost) {
	h.logs = h.logs[:ch.prevLen]
}

type refundChange struct {
	prev uint64
}

func (ch refundChange) revert(h *MemoryHost) {
	h.refund = ch.prev
}

type accessListAddAddressChange struct {
	addr types.Address
}

func (ch accessListAddAddressChange) revert(h *MemoryHost) {
	delete(h.accessAddrs, ch.addr)
}

type accessListAddSlotChange struct {
	addr types.Address
	slot types.B256
}

func (ch accessListAddSlotChange) revert(h *MemoryHost) {
	if slots, ok := h.accessSlots[ch.addr]; ok {
		delete(slots, ch.slot)
	}
}
