package vm

import "github.com/eth2030/evmcore/types"

// bitmap is a packed bitset, one bit per code byte, marking which byte
// offsets are the start of an instruction (as opposed to PUSH immediate
// data). It lets jump-destination validation after analysis cost a single
// bit test instead of a distance-to-last-push recomputation.
type bitmap []byte

func newBitmap(n int) bitmap {
	return make(bitmap, (n+7)/8)
}

func (b bitmap) set(pos uint64) {
	b[pos/8] |= 1 << (pos % 8)
}

func (b bitmap) isSet(pos uint64) bool {
	if pos/8 >= uint64(len(b)) {
		return false
	}
	return b[pos/8]&(1<<(pos%8)) != 0
}

// codeAnalysis is the cached result of scanning a contract's code once:
// which byte offsets are real instruction starts (as opposed to PUSH
// immediate data), which of those are JUMPDEST, and whether the code is
// an EIP-7702 delegation designator.
type codeAnalysis struct {
	isCode     bitmap
	jumpdests  bitmap
	delegation types.Address
	isDelegate bool
}

// analyze scans code once, building the is-code bitmap (so PUSH
// immediates are never mistaken for opcodes) and the JUMPDEST bitmap in
// the same pass.
func analyze(code []byte) *codeAnalysis {
	a := &codeAnalysis{
		isCode:    newBitmap(len(code)),
		jumpdests: newBitmap(len(code)),
	}
	for i := 0; i < len(code); {
		op := OpCode(code[i])
		a.isCode.set(uint64(i))
		if op == JUMPDEST {
			a.jumpdests.set(uint64(i))
		}
		if op.IsPush() {
			i += 1 + op.PushSize()
			continue
		}
		i++
	}
	if addr, ok := ParseDelegation(code); ok {
		a.isDelegate = true
		a.delegation = addr
	}
	return a
}

// ValidJumpdest reports whether dest is both within code bounds, the
// start of a real instruction (not PUSH data), and that instruction is
// JUMPDEST.
func (a *codeAnalysis) ValidJumpdest(dest uint64, code []byte) bool {
	if dest >= uint64(len(code)) {
		return false
	}
	if OpCode(code[dest]) != JUMPDEST {
		return false
	}
	return a.isCode.isSet(dest)
}

// delegationPrefix and delegationLength define the EIP-7702 delegation
// designator: an account whose code is exactly these 3 bytes followed by
// a 20-byte address has "set code" to delegate execution to that address.
var delegationPrefix = [3]byte{0xef, 0x01, 0x00}

const delegationLength = 3 + types.B160Length

// ParseDelegation reports whether code is an EIP-7702 delegation
// designator and, if so, the delegated-to address. A designator
// delegating to the zero address marks a cleared delegation; callers
// that need to distinguish "no delegation" from "delegation cleared"
// must inspect the returned address themselves, since both report ok.
func ParseDelegation(code []byte) (types.Address, bool) {
	if len(code) != delegationLength {
		return types.Address{}, false
	}
	if code[0] != delegationPrefix[0] || code[1] != delegationPrefix[1] || code[2] != delegationPrefix[2] {
		return types.Address{}, false
	}
	return types.BytesToB160(code[3:]), true
}

// IsDelegationDesignator reports whether code is shaped like an EIP-7702
// delegation designator, without returning the target.
func IsDelegationDesignator(code []byte) bool {
	_, ok := ParseDelegation(code)
	return ok
}
