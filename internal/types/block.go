package types

import "github.com/vireo-chain/vireo/internal/xcrypto"

// GhostdagParamsSnapshot records the GHOSTDAG parameters a block was built
// under, so replaying history doesn't depend on the node's live config.
type GhostdagParamsSnapshot struct {
	K                  uint32
	MaxParents         uint32
	MaxBlueScoreDiff   uint64
	PruningWindow      uint64
	FinalityDepth      uint64
}

// Body is the block body of spec.md §3.
type Body struct {
	GhostdagParams GhostdagParamsSnapshot
	Transactions   []*Transaction
	Signature      Signature
}

// Block is a full block: header plus body.
type Block struct {
	Header *Header
	Body   *Body
}

// Hash returns the block's id, recomputed from the header.
func (b *Block) Hash() Hash {
	return b.Header.Hash()
}

// ComputeTxRoot is keccak-256 over the concatenated transaction hashes in
// order (spec.md §4.9 step 3) — no Merkleization required, only
// determinism.
func ComputeTxRoot(txs []*Transaction) Hash {
	hashes := make([][]byte, 0, len(txs))
	for _, tx := range txs {
		h := tx.Hash()
		hashes = append(hashes, h[:])
	}
	return Hash(xcrypto.Keccak256(hashes...))
}

// IsGenesis reports whether b is the genesis block.
func (b *Block) IsGenesis() bool {
	return b.Header.IsGenesis()
}
