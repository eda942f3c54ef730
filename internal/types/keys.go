package types

import (
	"encoding/hex"

	"github.com/vireo-chain/vireo/internal/xcrypto"
)

// PublicKeySize is the width of a validator/proposer identity.
const PublicKeySize = 32

// PublicKey identifies a validator, proposer, or transaction sender.
type PublicKey [PublicKeySize]byte

// IsZero reports whether pk is the all-zero key (used by genesis' proposer).
func (pk PublicKey) IsZero() bool {
	return pk == PublicKey{}
}

func (pk PublicKey) String() string {
	return "0x" + hex.EncodeToString(pk[:])
}

// SignatureSize is the width of a signature of the consensus crypto scheme.
const SignatureSize = 64

// Signature is a signature over a canonical byte encoding. A signature whose
// bytes are all zero is invalid by construction (spec.md §3).
type Signature [SignatureSize]byte

// IsZero reports whether the signature is the all-zero placeholder, which
// is never a valid signature.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// VrfOutputSize is the width of the VRF's pseudorandom output.
const VrfOutputSize = 32

// VrfProof is an opaque VRF proof plus its 32-byte deterministic output.
type VrfProof = xcrypto.VrfProof
