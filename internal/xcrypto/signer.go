package xcrypto

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/pkg/errors"
)

// ErrInvalidSignature is returned when a signature fails verification.
var ErrInvalidSignature = errors.New("xcrypto: invalid signature")

// GenerateKey produces a fresh Ed25519 keypair.
func GenerateKey() (pub [32]byte, priv ed25519.PrivateKey, err error) {
	p, sk, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return pub, nil, err
	}
	copy(pub[:], p)
	return pub, sk, nil
}

// Sign produces a 64-byte Ed25519 signature over msg.
func Sign(priv ed25519.PrivateKey, msg []byte) [64]byte {
	var out [64]byte
	copy(out[:], ed25519.Sign(priv, msg))
	return out
}

// Verify reports whether sig is a valid Ed25519 signature by pub over msg.
// An all-zero signature is rejected outright without running the
// cryptographic check (spec.md §3: invalid by construction).
func Verify(pub [32]byte, msg []byte, sig [64]byte) bool {
	if isZero64(sig) {
		return false
	}
	return ed25519.Verify(pub[:], msg, sig[:])
}

func isZero64(b [64]byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
