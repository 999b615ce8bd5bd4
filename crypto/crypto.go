// Package crypto holds the hash primitives the interpreter needs:
// Keccak-256 for KECCAK256, contract address derivation, and code hashes.
package crypto

import (
	"github.com/eth2030/evmcore/types"
	"golang.org/x/crypto/sha3"
)

// Keccak256 returns the Keccak-256 digest of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash is Keccak256 wrapped as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToB256(Keccak256(data...))
}
