// Package types defines the canonical wire types of the DAG: identifiers,
// headers, bodies, transactions, and their deterministic encodings.
package types

import (
	"bytes"
	"encoding/hex"
)

// HashSize is the width in bytes of every identifier in the system.
const HashSize = 32

// Hash is a 32-byte opaque identifier. The zero value (Hash{}) denotes
// "absent parent" and is used only in genesis' selected-parent slot.
type Hash [HashSize]byte

// ZeroHash is Hash::default — the sentinel used for genesis' missing parent.
var ZeroHash = Hash{}

// IsZero reports whether h is the default/absent hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// Less reports whether h sorts strictly before other, lexicographically.
func (h Hash) Less(other Hash) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// Compare returns -1, 0 or 1, matching bytes.Compare semantics.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// String renders the hash as "0x"-prefixed lowercase hex, the encoding
// spec.md §6 requires for hash fields crossing the RPC boundary.
func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Bytes returns a copy of the underlying bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// HashFromBytes copies b into a Hash, left-padding is not performed: b must
// be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, bool) {
	var h Hash
	if len(b) != HashSize {
		return h, false
	}
	copy(h[:], b)
	return h, true
}
