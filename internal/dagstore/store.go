package dagstore

import (
	"encoding/binary"
	"encoding/json"
	"sync"

	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/store"
	"github.com/vireo-chain/vireo/internal/types"
)

// Store is the DAG Store of spec.md §4.1. All mutating operations are
// serialized behind mu (the "single-writer per store" contract of
// spec.md §5); reads take the read lock and observe a consistent
// snapshot.
type Store struct {
	mu sync.RWMutex

	kv  store.KVStore
	log logging.Logger

	nodes   []*node // index 0 unused
	byHash  map[types.Hash]nodeIndex
	height  map[uint64][]nodeIndex
	tips    map[nodeIndex]struct{}
	pruning types.Hash
}

// New constructs an empty DAG Store backed by kv.
func New(kv store.KVStore, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		kv:     kv,
		log:    log,
		nodes:  make([]*node, 1), // reserve index 0
		byHash: make(map[types.Hash]nodeIndex),
		height: make(map[uint64][]nodeIndex),
		tips:   make(map[nodeIndex]struct{}),
	}
}

// StoreBlock admits a block into the DAG (spec.md §4.1 store_block).
// Fails BlockExists if already present; checks that the block's id
// equals the header's canonical recomputation (R1; the block carries no
// separate id, so this holds as long as Block.Hash delegates to
// Header.Hash); records children edges for every parent;
// the new block is always a tip on insertion, and its parents are
// removed from the tip set.
func (s *Store) StoreBlock(b *types.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := b.Hash()
	if _, ok := s.byHash[h]; ok {
		return types.ErrBlockExists
	}
	if recomputed := b.Header.Hash(); recomputed != h {
		return types.Wrap(types.ErrHashMismatch, "stored %s recomputed %s", h, recomputed)
	}

	parentIdxs := make([]nodeIndex, 0, 1+len(b.Header.MergeParents))
	if !b.IsGenesis() {
		spIdx, ok := s.byHash[b.Header.SelectedParent]
		if !ok {
			return types.Wrap(types.ErrInvalidParents, "selected parent %s unknown", b.Header.SelectedParent)
		}
		parentIdxs = append(parentIdxs, spIdx)
		for _, mp := range b.Header.MergeParents {
			idx, ok := s.byHash[mp]
			if !ok {
				return types.Wrap(types.ErrInvalidParents, "merge parent %s unknown", mp)
			}
			parentIdxs = append(parentIdxs, idx)
		}
	}

	n := &node{hash: h, block: b, parent: parentIdxs}
	idx := nodeIndex(len(s.nodes))
	s.nodes = append(s.nodes, n)
	s.byHash[h] = idx

	for _, pIdx := range parentIdxs {
		s.nodes[pIdx].children = append(s.nodes[pIdx].children, idx)
		delete(s.tips, pIdx)
	}
	s.tips[idx] = struct{}{}
	s.height[b.Header.Height] = append(s.height[b.Header.Height], idx)

	if s.kv != nil {
		if err := s.persist(n); err != nil {
			s.log.Warnf("failed to persist block %s: %v", h, err)
		}
	}

	s.log.Infof("stored block %s height=%d", h, b.Header.Height)
	return nil
}

// persist writes the block's envelope into the abstract KV contract of
// spec.md §6. The in-memory arena remains authoritative for reads; this
// only demonstrates the durable write path.
func (s *Store) persist(n *node) error {
	data, err := json.Marshal(n.block)
	if err != nil {
		return err
	}
	if err := s.kv.Put(store.NamespaceBlocks, n.hash[:], data); err != nil {
		return err
	}
	var heightKey [8]byte
	binary.BigEndian.PutUint64(heightKey[:], n.block.Header.Height)
	existing, _ := s.kv.Get(store.NamespaceHeightIndex, heightKey[:])
	existing = append(existing, n.hash[:]...)
	return s.kv.Put(store.NamespaceHeightIndex, heightKey[:], existing)
}

// GetBlock returns the block for hash, or ErrBlockNotFound.
func (s *Store) GetBlock(h types.Hash) (*types.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byHash[h]
	if !ok {
		return nil, types.ErrBlockNotFound
	}
	return s.nodes[idx].block, nil
}

// HasBlock reports whether h is known to the store.
func (s *Store) HasBlock(h types.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byHash[h]
	return ok
}

// GetChildren returns the direct children of h.
func (s *Store) GetChildren(h types.Hash) ([]types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byHash[h]
	if !ok {
		return nil, types.ErrBlockNotFound
	}
	return s.hashesOf(s.nodes[idx].children), nil
}

// GetParents returns the parents of h: selected parent first, then merge
// parents in header order.
func (s *Store) GetParents(h types.Hash) ([]types.Hash, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byHash[h]
	if !ok {
		return nil, types.ErrBlockNotFound
	}
	return s.hashesOf(s.nodes[idx].parent), nil
}

// SelectedParent returns h's selected parent, if any (genesis has none).
func (s *Store) SelectedParent(h types.Hash) (types.Hash, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byHash[h]
	if !ok {
		return types.Hash{}, false
	}
	sp := s.nodes[idx].selectedParent()
	if sp == invalidIndex {
		return types.Hash{}, false
	}
	return s.nodes[sp].hash, true
}

// GetBlocksAtHeight returns every known block at the given height.
func (s *Store) GetBlocksAtHeight(height uint64) []types.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hashesOf(s.height[height])
}

// GetTips returns a snapshot of the current tip hashes. Order is
// unspecified — callers must treat it as a set (spec.md §4.1).
func (s *Store) GetTips() []types.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Hash, 0, len(s.tips))
	for idx := range s.tips {
		out = append(out, s.nodes[idx].hash)
	}
	return out
}

// FinalizeBlock marks h finalized. Idempotent (R3).
func (s *Store) FinalizeBlock(h types.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byHash[h]
	if !ok {
		return types.ErrBlockNotFound
	}
	s.nodes[idx].finalized = true
	if s.kv != nil {
		_ = s.kv.Put(store.NamespaceFinalized, h[:], []byte{1})
	}
	return nil
}

// IsFinalized reports h's finality status.
func (s *Store) IsFinalized(h types.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byHash[h]
	if !ok {
		return false
	}
	return s.nodes[idx].finalized
}

// UpdatePruningPoint advances the pruning point. Refuses strict
// decreases (I8, R3) — a pruning point is only "earlier" in the sense
// of chain height, so the caller-observed height must be monotone; since
// the store has no height oracle over an arbitrary hash argument here,
// monotonicity is enforced by height comparison when both blocks are
// known.
func (s *Store) UpdatePruningPoint(h types.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newIdx, ok := s.byHash[h]
	if !ok {
		return types.ErrBlockNotFound
	}
	if !s.pruning.IsZero() {
		curIdx, ok := s.byHash[s.pruning]
		if ok && s.nodes[newIdx].block.Header.Height < s.nodes[curIdx].block.Header.Height {
			return types.Wrap(types.ErrInvalidParents, "pruning point cannot move backward")
		}
	}
	s.pruning = h
	if s.kv != nil {
		_ = s.kv.Put(store.NamespaceMeta, []byte("pruning_point"), h[:])
	}
	return nil
}

// PruningPoint returns the current pruning point (the zero hash before
// any has been set).
func (s *Store) PruningPoint() types.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pruning
}

// BlockCount returns the number of blocks ever admitted.
func (s *Store) BlockCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes) - 1
}

func (s *Store) hashesOf(idxs []nodeIndex) []types.Hash {
	out := make([]types.Hash, len(idxs))
	for i, idx := range idxs {
		out[i] = s.nodes[idx].hash
	}
	return out
}
