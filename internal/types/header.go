package types

import (
	"github.com/holiman/uint256"

	"github.com/vireo-chain/vireo/internal/xcrypto"
)

// Header is the canonical block header of spec.md §3. MergeParents has
// length at most K_max_parents-1 (I3). Height is SelectedParent's height
// + 1 (0 for genesis).
type Header struct {
	Version        uint32
	SelectedParent Hash
	MergeParents   []Hash
	Timestamp      uint64
	Height         uint64
	BlueScore      uint64
	BlueWork       *uint256.Int
	PruningPoint   Hash
	ProposerPubkey PublicKey
	VrfReveal      VrfProof
	GasLimit       uint64
	GasUsed        uint64
	BaseFeePerGas  uint64

	// Root commitments, as produced by the block body. Carried on the
	// header because block_hash (spec.md §3) commits to them.
	StateRoot    Hash
	TxRoot       Hash
	ReceiptRoot  Hash
	ArtifactRoot Hash
}

// hashableBytes returns the canonical encoding block_hash is computed
// over: version, selected_parent, merge_parents (in order), timestamp,
// height, blue_score, and the four roots (spec.md §3).
func (h *Header) hashableBytes() []byte {
	w := newCanonicalWriter()
	w.writeUint32(h.Version)
	w.writeHash(h.SelectedParent)
	w.writeUint16(uint16(len(h.MergeParents)))
	for _, p := range h.MergeParents {
		w.writeHash(p)
	}
	w.writeUint64(h.Timestamp)
	w.writeUint64(h.Height)
	w.writeUint64(h.BlueScore)
	w.writeHash(h.StateRoot)
	w.writeHash(h.TxRoot)
	w.writeHash(h.ReceiptRoot)
	w.writeHash(h.ArtifactRoot)
	return w.bytes()
}

// Hash computes the block id (block_hash): keccak-256 of the canonical
// header encoding. Blocks carry no separate id field; every id is
// recomputed from the header this way, so recomputation always agrees
// with it (R1).
func (h *Header) Hash() Hash {
	return Hash(xcrypto.Keccak256(h.hashableBytes()))
}

// IsGenesis reports whether this header is the genesis header: no
// selected parent, height 0.
func (h *Header) IsGenesis() bool {
	return h.SelectedParent.IsZero() && h.Height == 0
}
