package vm

import "github.com/eth2030/evmcore/u256"

// maxMemorySize is an implementation ceiling on top of the protocol's
// implicit gas-based limit (quadratic expansion cost makes growing much
// past this practically unaffordable anyway, but a hard cap keeps a
// pathological offset/size pair from allocating unbounded memory before
// the gas check has a chance to reject it).
const maxMemorySize = 128 * 1024 * 1024 // 128 MiB

// Memory is the EVM's byte-addressable, word-aligned volatile memory.
// It always grows in 32-byte-word increments and never shrinks within a
// call frame.
type Memory struct {
	store []byte
}

// NewMemory returns a new, empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// ToWordSize returns the number of 32-byte words needed to hold size
// bytes (size rounded up to a whole word, divided by 32); the word is the
// unit memory always expands in.
func ToWordSize(size uint64) uint64 {
	if size > (1<<64-1)-31 {
		return (1<<64 - 1) / 32
	}
	return (size + 31) / 32
}

// EnsureCapacity grows memory so that [offset, offset+size) is
// addressable, rounding the new length up to a whole number of words.
// A zero size is always a no-op, matching the EVM convention that a
// zero-length memory access never touches memory at all (so an
// offset that would otherwise overflow is never itself an error).
func (m *Memory) EnsureCapacity(offset, size uint64) error {
	if size == 0 {
		return nil
	}
	end := offset + size
	if end < offset {
		return ErrGasUintOverflow
	}
	if end > maxMemorySize {
		return ErrMemoryLimitExceeded
	}
	words := ToWordSize(end)
	newLen := words * 32
	if uint64(len(m.store)) < newLen {
		m.store = append(m.store, make([]byte, newLen-uint64(len(m.store)))...)
	}
	return nil
}

// MStore writes a full 32-byte word at offset, big-endian. The caller
// must have already grown memory to cover the write (via EnsureCapacity
// plus the corresponding gas charge); an out-of-range offset here
// indicates an interpreter bug, not a user error, so it panics rather
// than returning an error.
func (m *Memory) MStore(offset uint64, val u256.U256) {
	word := val.Bytes32()
	copy(m.store[offset:offset+32], word[:])
}

// MStore8 writes the low-order byte of val at offset.
func (m *Memory) MStore8(offset uint64, val u256.U256) {
	b, _ := val.ToU64()
	m.store[offset] = byte(b)
}

// MLoad reads a full 32-byte word at offset, big-endian, zero-padding
// past the end of memory (a read is never itself an expansion trigger;
// callers charge for and perform expansion before reading, same as for
// writes, but a load that lands exactly at the current boundary is legal
// and must not panic).
func (m *Memory) MLoad(offset uint64) u256.U256 {
	var buf [32]byte
	if offset < uint64(len(m.store)) {
		end := offset + 32
		if end > uint64(len(m.store)) {
			end = uint64(len(m.store))
		}
		copy(buf[:], m.store[offset:end])
	}
	return u256.FromBigEndian(buf[:])
}

// GetSlice returns a copy of memory at [offset, offset+size).
func (m *Memory) GetSlice(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetPtr returns a direct slice reference to memory at
// [offset, offset+size). Callers must treat it as read-only and must not
// retain it across a call that may grow (and so reallocate) memory.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Set copies value into memory at offset, truncating or zero-filling to
// exactly size bytes (the EXTCODECOPY/CALLDATACOPY/CODECOPY convention:
// reading past the end of the source yields zero bytes, not an error).
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	dst := m.store[offset : offset+size]
	n := copy(dst, value)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// MCopy implements the Cancun MCOPY opcode: a same-buffer copy that is
// correct even when the source and destination ranges overlap (a plain
// forward `copy` is only safe because Go's builtin copy already handles
// overlap like memmove; this method exists as the named, gas-accounted
// entry point instructions.go calls).
func (m *Memory) MCopy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}

// Len returns the current length of memory in bytes (always a multiple
// of 32).
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the full backing slice.
func (m *Memory) Data() []byte {
	return m.store
}

// reset empties memory for reuse, keeping its backing array.
func (m *Memory) reset() {
	m.store = m.store[:0]
}
