// Package tipselect picks the virtual selected parent and the parent set
// offered to the block builder (spec.md §4.3), grounded on the teacher's
// consensus/blockdag.virtualBlock tip tracking.
package tipselect

import (
	"sort"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/types"
)

// Selector picks parents for new blocks out of the DAG's current tip set.
type Selector struct {
	store  *dagstore.Store
	engine *ghostdag.Engine
	params config.GhostdagParams
}

// New builds a Selector over store/engine using params.
func New(store *dagstore.Store, engine *ghostdag.Engine, params config.GhostdagParams) *Selector {
	return &Selector{store: store, engine: engine, params: params}
}

// blueScoreOf returns h's cached blue score, or 0 if it hasn't been
// colored yet (callers only ever pass already-colored tips).
func (s *Selector) blueScoreOf(h types.Hash) uint64 {
	d, ok := s.engine.Data(h)
	if !ok {
		return 0
	}
	return d.BlueScore
}

// bluer mirrors the teacher's blockNode.less tie-break: higher blue
// score first, ties broken by the larger hash.
func (s *Selector) bluer(a, b types.Hash) bool {
	sa, sb := s.blueScoreOf(a), s.blueScoreOf(b)
	if sa != sb {
		return sa > sb
	}
	return a.Compare(b) > 0
}

// HighestBlueScore returns the bluest of the DAG's current tips — the
// virtual block's selected parent (spec.md §4.3).
func (s *Selector) HighestBlueScore() (types.Hash, error) {
	tips := s.store.GetTips()
	if len(tips) == 0 {
		return types.Hash{}, types.ErrNoTips
	}
	best := tips[0]
	for _, t := range tips[1:] {
		if s.bluer(t, best) {
			best = t
		}
	}
	return best, nil
}

// ParentSelector returns the parent set a new block should reference:
// the bluest tip as selected parent, followed by up to MaxParents-1
// further tips (merge parents) ordered bluest-first, excluding any tip
// whose blue score trails the selected parent's by more than
// MaxBlueScoreDiff (spec.md §4.3's bound on merging stale tips).
func (s *Selector) ParentSelector() (selectedParent types.Hash, mergeParents []types.Hash, err error) {
	tips := s.store.GetTips()
	if len(tips) == 0 {
		return types.Hash{}, nil, types.ErrNoTips
	}

	sort.Slice(tips, func(i, j int) bool { return s.bluer(tips[i], tips[j]) })
	selectedParent = tips[0]
	selectedScore := s.blueScoreOf(selectedParent)

	maxParents := int(s.params.MaxParents)
	if maxParents < 1 {
		maxParents = 1
	}

	for _, t := range tips[1:] {
		if len(mergeParents) >= maxParents-1 {
			break
		}
		score := s.blueScoreOf(t)
		if selectedScore > score && selectedScore-score > s.params.MaxBlueScoreDiff {
			continue
		}
		mergeParents = append(mergeParents, t)
	}
	return selectedParent, mergeParents, nil
}
