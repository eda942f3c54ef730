// Package ordering computes the deterministic total order over DAG
// blocks from GHOSTDAG coloring (spec.md §4.4): blue-first then red,
// ties broken by blue score then hash. Grounded on the teacher's
// selected-parent-chain walk in consensus/blockdag.virtualBlock, adapted
// from a chain-diffing view to a full recursive total order.
package ordering

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/types"
)

// Orderer produces the total order of every block up to (and including)
// a given tip. Each node's ordering is order(selectedParent) followed by
// its merge set (blues before reds, each bucket sorted by blue score
// then hash) followed by the node itself.
type Orderer struct {
	store  *dagstore.Store
	engine *ghostdag.Engine
	cache  *lru.Cache[types.Hash, []types.Hash]
}

// New builds an Orderer over store/engine, memoizing up to cacheSize
// computed orders (0 selects a sensible default).
func New(store *dagstore.Store, engine *ghostdag.Engine, cacheSize int) *Orderer {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	c, _ := lru.New[types.Hash, []types.Hash](cacheSize)
	return &Orderer{store: store, engine: engine, cache: c}
}

func (o *Orderer) blueScoreOf(h types.Hash) uint64 {
	d, ok := o.engine.Data(h)
	if !ok {
		return 0
	}
	return d.BlueScore
}

// Order returns the total order of every block that is an ancestor of
// (or equal to) tip, ending with tip itself.
func (o *Orderer) Order(tip types.Hash) ([]types.Hash, error) {
	if cached, ok := o.cache.Get(tip); ok {
		return cached, nil
	}

	block, err := o.store.GetBlock(tip)
	if err != nil {
		return nil, err
	}
	if block.IsGenesis() {
		order := []types.Hash{tip}
		o.cache.Add(tip, order)
		return order, nil
	}

	data, ok := o.engine.Data(tip)
	if !ok {
		return nil, types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", tip)
	}

	parentOrder, err := o.Order(data.SelectedParent)
	if err != nil {
		return nil, err
	}

	blueSet := make(map[types.Hash]struct{}, len(data.Blues))
	for _, b := range data.Blues {
		blueSet[b] = struct{}{}
	}

	mergeSet := make([]types.Hash, 0, len(data.Blues)+len(data.Reds)-1)
	for _, b := range data.Blues {
		if b != data.SelectedParent {
			mergeSet = append(mergeSet, b)
		}
	}
	mergeSet = append(mergeSet, data.Reds...)

	sort.Slice(mergeSet, func(i, j int) bool {
		hi, hj := mergeSet[i], mergeSet[j]
		_, biBlue := blueSet[hi]
		_, bjBlue := blueSet[hj]
		if biBlue != bjBlue {
			return biBlue // blue before red
		}
		si, sj := o.blueScoreOf(hi), o.blueScoreOf(hj)
		if si != sj {
			return si < sj
		}
		return hi.Compare(hj) < 0
	})

	order := make([]types.Hash, 0, len(parentOrder)+len(mergeSet)+1)
	order = append(order, parentOrder...)
	order = append(order, mergeSet...)
	order = append(order, tip)

	o.cache.Add(tip, order)
	return order, nil
}

// Position returns target's zero-based index in tip's total order, or
// -1 if target is not an ancestor of tip.
func (o *Orderer) Position(tip, target types.Hash) (int, error) {
	order, err := o.Order(tip)
	if err != nil {
		return -1, err
	}
	for i, h := range order {
		if h == target {
			return i, nil
		}
	}
	return -1, nil
}
