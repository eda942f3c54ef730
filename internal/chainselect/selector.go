// Package chainselect tracks the DAG's selected-parent-chain (the
// "virtual" chain of spec.md §4.6) and reports reorgs as add/remove
// diffs, grounded on the teacher's
// consensus/blockdag.virtualBlock.updateSelectedParentSet.
package chainselect

import (
	"sync"

	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/finality"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/metrics"
	"github.com/vireo-chain/vireo/internal/tipselect"
	"github.com/vireo-chain/vireo/internal/types"
)

// ChainUpdate reports how the selected-parent chain moved: blocks
// removed from the old tip's chain down to the fork point, and blocks
// added along the new tip's chain from the fork point up.
type ChainUpdate struct {
	Removed []types.Hash
	Added   []types.Hash
}

// Selector maintains the current selected tip and its chain set/slice.
type Selector struct {
	mu sync.Mutex

	store    *dagstore.Store
	engine   *ghostdag.Engine
	tips     *tipselect.Selector
	finality *finality.Tracker
	log      logging.Logger

	selectedTip  types.Hash
	hasTip       bool
	chainSet     map[types.Hash]struct{}
	chainSlice   []types.Hash // genesis..selectedTip, ascending
}

// New builds a Selector over the given components.
func New(store *dagstore.Store, engine *ghostdag.Engine, tips *tipselect.Selector, ft *finality.Tracker, log logging.Logger) *Selector {
	if log == nil {
		log = logging.Nop()
	}
	return &Selector{
		store:    store,
		engine:   engine,
		tips:     tips,
		finality: ft,
		log:      log,
		chainSet: make(map[types.Hash]struct{}),
	}
}

// SeedGenesis initializes the chain with just the genesis block.
func (s *Selector) SeedGenesis(genesis types.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTip = genesis
	s.hasTip = true
	s.chainSet = map[types.Hash]struct{}{genesis: {}}
	s.chainSlice = []types.Hash{genesis}
}

// SelectedTip returns the current selected tip.
func (s *Selector) SelectedTip() (types.Hash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedTip, s.hasTip
}

// IsInSelectedChain reports whether h is part of the current
// selected-parent chain.
func (s *Selector) IsInSelectedChain(h types.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chainSet[h]
	return ok
}

// OnNewBlock recomputes the virtual selected tip after a block has been
// stored and colored, and reports the resulting chain diff. An empty
// ChainUpdate means the new block did not change the selected tip.
func (s *Selector) OnNewBlock() (*ChainUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newTip, err := s.tips.HighestBlueScore()
	if err != nil {
		return nil, err
	}
	if s.hasTip && newTip == s.selectedTip {
		return &ChainUpdate{}, nil
	}

	oldTip := s.selectedTip
	update, root, err := s.diffTo(newTip)
	if err != nil {
		return nil, err
	}

	if s.finality != nil && len(update.Removed) > 0 {
		if err := s.finality.CheckReorgAllowed(root); err != nil {
			metrics.RejectedReorgs.Inc()
			return nil, types.Wrap(err, "reorg to %s rejected at branch root %s", newTip, root)
		}
	}

	s.applyDiff(update)
	s.selectedTip = newTip
	s.hasTip = true
	s.log.Infof("selected tip moved %s -> %s (removed=%d added=%d)", oldTip, newTip, len(update.Removed), len(update.Added))
	return update, nil
}

// diffTo computes the diff between the current chain and newTip's
// selected-parent chain, along with the branch root (the lowest common
// ancestor of the old and new chains, spec.md §4.6 step 3's R). It does
// not mutate s.chainSet/chainSlice — callers apply the diff via
// applyDiff only once finality has cleared it, since a reorg that would
// remove a finalized block must be rejected before the tracked chain
// changes.
func (s *Selector) diffTo(newTip types.Hash) (*ChainUpdate, types.Hash, error) {
	var toAdd []types.Hash
	current := newTip
	for {
		if _, ok := s.chainSet[current]; ok {
			break
		}
		toAdd = append(toAdd, current)
		data, ok := s.engine.Data(current)
		if !ok {
			return nil, types.ZeroHash, types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", current)
		}
		if data.SelectedParent.IsZero() {
			break
		}
		current = data.SelectedParent
	}
	intersection := current

	var toRemove []types.Hash
	for i := len(s.chainSlice) - 1; i >= 0; i-- {
		h := s.chainSlice[i]
		if h == intersection {
			break
		}
		toRemove = append(toRemove, h)
	}

	// toAdd was collected tip-first; reverse to fork-point-first.
	for l, r := 0, len(toAdd)-1; l < r; l, r = l+1, r-1 {
		toAdd[l], toAdd[r] = toAdd[r], toAdd[l]
	}

	return &ChainUpdate{Removed: toRemove, Added: toAdd}, intersection, nil
}

// applyDiff commits a diff previously computed by diffTo to
// s.chainSet/chainSlice.
func (s *Selector) applyDiff(update *ChainUpdate) {
	newSlice := make([]types.Hash, 0, len(s.chainSlice)-len(update.Removed)+len(update.Added))
	newSlice = append(newSlice, s.chainSlice[:len(s.chainSlice)-len(update.Removed)]...)
	newSlice = append(newSlice, update.Added...)
	s.chainSlice = newSlice

	for _, h := range update.Removed {
		delete(s.chainSet, h)
	}
	for _, h := range update.Added {
		s.chainSet[h] = struct{}{}
	}
}

// ValidateChain walks h's selected-parent chain back to genesis,
// confirming every link has been colored by GHOSTDAG. It does not
// mutate the tracked chain; it's a read-only sanity check usable on
// arbitrary candidate tips before committing to a reorg.
func (s *Selector) ValidateChain(h types.Hash) error {
	current := h
	for {
		block, err := s.store.GetBlock(current)
		if err != nil {
			return err
		}
		if block.IsGenesis() {
			return nil
		}
		data, ok := s.engine.Data(current)
		if !ok {
			return types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", current)
		}
		if data.SelectedParent.IsZero() {
			return types.Wrap(types.ErrInvalidParents, "non-genesis block %s has no selected parent", current)
		}
		current = data.SelectedParent
	}
}
