// Package ghostdag implements the GHOSTDAG coloring and scoring engine of
// spec.md §4.2, grounded on the teacher's consensus/ghostdag.GHOSTDAG.Run.
package ghostdag

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/types"
)

// reachability answers ancestor/descendant queries by BFS over parent
// edges (spec.md §4.2: "ancestor reachability is computed by BFS over the
// DAG relations"). The teacher keeps a dedicated reachability tree built
// incrementally; this core instead memoizes each node's full ancestor
// set in an LRU cache, recomputing on eviction.
type reachability struct {
	store *dagstore.Store
	cache *lru.Cache[types.Hash, map[types.Hash]struct{}]
}

func newReachability(store *dagstore.Store, cacheSize int) *reachability {
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	c, _ := lru.New[types.Hash, map[types.Hash]struct{}](cacheSize)
	return &reachability{store: store, cache: c}
}

// ancestors returns the full set of h's ancestors (not including h itself).
func (r *reachability) ancestors(h types.Hash) (map[types.Hash]struct{}, error) {
	if set, ok := r.cache.Get(h); ok {
		return set, nil
	}

	set := make(map[types.Hash]struct{})
	queue, err := r.store.GetParents(h)
	if err != nil {
		return nil, err
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, seen := set[cur]; seen {
			continue
		}
		set[cur] = struct{}{}
		parents, err := r.store.GetParents(cur)
		if err != nil {
			return nil, err
		}
		queue = append(queue, parents...)
	}

	r.cache.Add(h, set)
	return set, nil
}

// isInPast reports whether ancestor is in descendant's past (strict).
func (r *reachability) isInPast(ancestor, descendant types.Hash) (bool, error) {
	if ancestor == descendant {
		return false, nil
	}
	set, err := r.ancestors(descendant)
	if err != nil {
		return false, err
	}
	_, ok := set[ancestor]
	return ok, nil
}
