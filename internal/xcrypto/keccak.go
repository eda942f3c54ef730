// Package xcrypto wraps the consensus cryptography: hashing, signatures
// (assumed Ed25519-equivalent, per spec.md §1 non-goals), and a VRF.
package xcrypto

import "golang.org/x/crypto/sha3"

// Keccak256 hashes data with Keccak-256 (not NIST SHA3-256 — the legacy
// padding Ethereum-family chains use, which is what spec.md §3's
// "keccak-256" refers to).
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
