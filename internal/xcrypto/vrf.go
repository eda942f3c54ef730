package xcrypto

import "crypto/ed25519"

// VrfProof is a verifiable-random-function proof: an opaque proof value
// plus its deterministic 32-byte output. Per spec.md §1's non-goal on
// primitive design, this wraps Ed25519 rather than a dedicated VRF scheme:
// the proof is a deterministic Ed25519 signature over the seed (Ed25519
// signing is itself deterministic), and the output is that signature's
// hash — giving the uniqueness and verifiability a VRF needs without a
// bespoke construction.
type VrfProof struct {
	Proof  []byte
	Output [32]byte
}

// Evaluate computes a VRF proof over seed using priv.
func Evaluate(priv ed25519.PrivateKey, seed []byte) VrfProof {
	sig := ed25519.Sign(priv, seed)
	out := Keccak256(sig)
	proof := make([]byte, len(sig))
	copy(proof, sig)
	return VrfProof{Proof: proof, Output: out}
}

// VerifyVrf checks that proof is a valid VRF proof by pub over seed.
func VerifyVrf(pub [32]byte, seed []byte, proof VrfProof) bool {
	if len(proof.Proof) != ed25519.SignatureSize {
		return false
	}
	if !ed25519.Verify(pub[:], seed, proof.Proof) {
		return false
	}
	return Keccak256(proof.Proof) == proof.Output
}
