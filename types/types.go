// Package types defines the fixed-size byte primitives shared by the
// interpreter: 32-byte words (B256), 20-byte addresses (B160), and the
// EIP-55/EIP-1191 checksum forms of an address.
package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

const (
	B256Length = 32
	B160Length = 20
)

// B256 is a 32-byte word: a hash, a storage key, a storage value, a topic.
type B256 [B256Length]byte

// B160 is a 20-byte account address.
type B160 [B160Length]byte

// Address is the address type used throughout the interpreter and host
// interface; it is an alias of B160 so the two names are interchangeable
// at call sites that prefer the domain name over the size name.
type Address = B160

// Hash is an alias of B256 used where the 32-byte value is a content hash
// rather than a raw storage word.
type Hash = B256

var (
	// EmptyCodeHash is keccak256 of the empty byte string: the CodeHash of
	// every externally-owned account and of any account with no code.
	EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
)

// MaxLogTopics is the most topics a single LOGn can carry (LOG0..LOG4).
const MaxLogTopics = 4

// Log is the consensus event a LOGn opcode appends to the receipt of the
// transaction it runs in. BlockNumber/TxHash/TxIndex/BlockHash/Index are
// filled in by whatever assembles the receipt, not by the interpreter
// itself, which only ever sets Address/Topics/Data.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte

	BlockNumber uint64
	TxHash      Hash
	TxIndex     uint
	BlockHash   Hash
	Index       uint
	Removed     bool
}

// BytesToB256 left-pads or truncates b to 32 bytes.
func BytesToB256(b []byte) B256 {
	var h B256
	h.SetBytes(b)
	return h
}

// HexToHash decodes a (optionally 0x-prefixed) hex string into a B256.
func HexToHash(s string) B256 {
	return BytesToB256(fromHex(s))
}

// Bytes returns the raw 32 bytes.
func (h B256) Bytes() []byte { return h[:] }

// Hex renders the 0x-prefixed hex encoding.
func (h B256) Hex() string { return hexutil.Encode(h[:]) }

// SetBytes copies b into h, left-padding with zeros if b is shorter than
// 32 bytes and truncating the high-order bytes if it is longer.
func (h *B256) SetBytes(b []byte) {
	if len(b) > B256Length {
		b = b[len(b)-B256Length:]
	}
	copy(h[B256Length-len(b):], b)
}

// IsZero reports whether every byte is zero.
func (h B256) IsZero() bool { return h == B256{} }

// String implements fmt.Stringer.
func (h B256) String() string { return h.Hex() }

// BytesToB160 left-pads or truncates b to 20 bytes.
func BytesToB160(b []byte) B160 {
	var a B160
	a.SetBytes(b)
	return a
}

// HexToAddress decodes a (optionally 0x-prefixed) hex string into a B160.
func HexToAddress(s string) B160 {
	return BytesToB160(fromHex(s))
}

// Bytes returns the raw 20 bytes.
func (a B160) Bytes() []byte { return a[:] }

// Hex renders the lowercase 0x-prefixed hex encoding, with no checksum
// capitalization. Use Checksum for the EIP-55 form.
func (a B160) Hex() string { return hexutil.Encode(a[:]) }

// SetBytes copies b into a, left-padding with zeros if b is shorter than
// 20 bytes and truncating the high-order bytes if it is longer.
func (a *B160) SetBytes(b []byte) {
	if len(b) > B160Length {
		b = b[len(b)-B160Length:]
	}
	copy(a[B160Length-len(b):], b)
}

// IsZero reports whether every byte is zero.
func (a B160) IsZero() bool { return a == B160{} }

// String implements fmt.Stringer, rendering the EIP-55 checksummed form so
// addresses are human-verifiable wherever they are logged or printed.
func (a B160) String() string { return a.Checksum() }

// Checksum renders the address using the EIP-55 mixed-case checksum: each
// hex digit that is a letter is capitalized if the corresponding nibble of
// keccak256(lowercase hex) is >= 8.
func (a B160) Checksum() string {
	return checksum(a, nil)
}

// ChecksumWithChainID renders the EIP-1191 chain-specific checksum, which
// folds the chain ID into the hashed preimage so the same address
// checksums differently on different chains (guards against cross-chain
// address confusion).
func (a B160) ChecksumWithChainID(chainID uint64) string {
	return checksum(a, &chainID)
}

func checksum(a B160, chainID *uint64) string {
	lower := fmt.Sprintf("%040x", a[:])
	preimage := lower
	if chainID != nil {
		preimage = fmt.Sprintf("%d0x%s", *chainID, lower)
	}
	d := sha3.NewLegacyKeccak256()
	d.Write([]byte(preimage))
	hashed := d.Sum(nil)

	out := make([]byte, 42)
	out[0], out[1] = '0', 'x'
	for i := 0; i < 40; i++ {
		c := lower[i]
		if c >= '0' && c <= '9' {
			out[2+i] = c
			continue
		}
		// hashed nibble i: high nibble of byte i/2 when i is even, low
		// nibble when i is odd.
		var nibble byte
		if i%2 == 0 {
			nibble = hashed[i/2] >> 4
		} else {
			nibble = hashed[i/2] & 0x0f
		}
		if nibble >= 8 {
			out[2+i] = c - 'a' + 'A'
		} else {
			out[2+i] = c
		}
	}
	return string(out)
}

// ValidChecksum reports whether s is either an all-lowercase/all-uppercase
// address (unchecksummed) or exactly matches the EIP-55 checksum of its
// own bytes. An address with mixed case that does not match the checksum
// is rejected, per EIP-55's validation rule.
func ValidChecksum(s string) bool {
	if !has0xPrefix(s) || len(s) != 42 {
		return false
	}
	body := s[2:]
	lower, upper := true, true
	for _, c := range body {
		if c >= 'a' && c <= 'z' {
			upper = false
		} else if c >= 'A' && c <= 'Z' {
			lower = false
		}
	}
	if lower || upper {
		return true
	}
	addr := HexToAddress(s)
	return addr.Checksum() == s
}

// fromHex decodes a hex string, stripping an optional "0x"/"0X" prefix and
// left-padding an odd-length body with a zero nibble.
func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return nil
	}
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
