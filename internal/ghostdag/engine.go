package ghostdag

import (
	"sort"
	"sync"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/types"
)

// BlockData is the GHOSTDAG coloring result for one block (spec.md §4.2):
// its selected parent, its blues (the selected parent followed by the
// blue blocks of the selected parent's anticone, as the teacher's
// blockNode.blues does), the reds of that anticone, the resulting blue
// score, and the anticone-size bookkeeping needed to extend the
// computation to descendants without re-walking the whole DAG.
type BlockData struct {
	SelectedParent types.Hash
	Blues          []types.Hash
	Reds           []types.Hash
	BlueScore      uint64
	AnticoneSizes  map[types.Hash]uint32
}

// Engine computes and caches GHOSTDAG coloring over a Store.
type Engine struct {
	mu     sync.RWMutex
	store  *dagstore.Store
	params config.GhostdagParams
	reach  *reachability
	log    logging.Logger

	data map[types.Hash]*BlockData
}

// New builds a GHOSTDAG engine over store using params.
func New(store *dagstore.Store, params config.GhostdagParams, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		store:  store,
		params: params,
		reach:  newReachability(store, 8192),
		log:    log,
		data:   make(map[types.Hash]*BlockData),
	}
}

// Data returns the cached coloring result for h, if it has been run.
func (e *Engine) Data(h types.Hash) (*BlockData, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.data[h]
	return d, ok
}

// SeedGenesis registers the genesis block's trivial coloring: its own
// singleton blue set, blue score 1, no selected parent.
func (e *Engine) SeedGenesis(h types.Hash) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[h] = &BlockData{
		Blues:         []types.Hash{h},
		BlueScore:     1,
		AnticoneSizes: map[types.Hash]uint32{h: 0},
	}
}

// bluer reports whether a has higher precedence than b under the
// teacher's blockNode.less tie-break: higher blue score wins, ties
// broken by the larger hash.
func (e *Engine) bluer(a, b types.Hash) bool {
	da, _ := e.data[a]
	db, _ := e.data[b]
	if da.BlueScore != db.BlueScore {
		return da.BlueScore > db.BlueScore
	}
	return a.Compare(b) > 0
}

// bluestParent returns the parent with the highest precedence under
// bluer — the teacher's Parents().Bluest().
func (e *Engine) bluestParent(parents []types.Hash) types.Hash {
	best := parents[0]
	for _, p := range parents[1:] {
		if e.bluer(p, best) {
			best = p
		}
	}
	return best
}

// blueAnticoneSize answers "what is |anticone(block) ∩ blues(newNode)|"
// by walking newNode's selected-parent chain until a chain block's own
// AnticoneSizes records block — grounded on the teacher's
// blocknode.BlueAnticoneSize, reconstructed from the ghostdag.go doc
// comment since the teacher snapshot doesn't carry that helper's body.
func (e *Engine) blueAnticoneSize(block, newNode types.Hash) (uint32, error) {
	chain := newNode
	for {
		data, ok := e.data[chain]
		if !ok {
			return 0, types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", chain)
		}
		if sz, ok := data.AnticoneSizes[block]; ok {
			return sz, nil
		}
		if data.SelectedParent.IsZero() {
			return 0, types.Wrap(types.ErrKClusterViolation, "block %s not found on selected parent chain of %s", block, newNode)
		}
		chain = data.SelectedParent
	}
}

// Run computes the GHOSTDAG coloring of h and caches it (spec.md §4.2).
// h must already be stored in the DAG store with all of its parents
// already colored (callers run this in topological, i.e. insertion,
// order). Grounded on the teacher's GHOSTDAG.Run.
func (e *Engine) Run(h types.Hash) (*BlockData, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if d, ok := e.data[h]; ok {
		return d, nil
	}

	block, err := e.store.GetBlock(h)
	if err != nil {
		return nil, err
	}
	if block.IsGenesis() {
		d := &BlockData{Blues: []types.Hash{h}, BlueScore: 1, AnticoneSizes: map[types.Hash]uint32{h: 0}}
		e.data[h] = d
		return d, nil
	}

	parents, err := e.store.GetParents(h)
	if err != nil {
		return nil, err
	}
	if len(parents) == 0 {
		return nil, types.Wrap(types.ErrInvalidParents, "non-genesis block %s has no parents", h)
	}

	selectedParent := e.bluestParent(parents)

	data := &BlockData{
		SelectedParent: selectedParent,
		Blues:          []types.Hash{selectedParent},
		AnticoneSizes:  map[types.Hash]uint32{selectedParent: 0},
	}

	candidates, err := e.selectedParentAnticone(selectedParent, parents)
	if err != nil {
		return nil, err
	}
	sort.Slice(candidates, func(i, j int) bool { return e.bluer(candidates[j], candidates[i]) })

	for _, candidate := range candidates {
		candidateSizes := make(map[types.Hash]uint32)
		var candidateAnticoneSize uint32
		possiblyBlue := true

		chain := h
		for possiblyBlue {
			if chain != h {
				inPast, err := e.reach.isInPast(chain, candidate)
				if err != nil {
					return nil, err
				}
				if inPast {
					break
				}
			}

			var chainBlues []types.Hash
			if chain == h {
				chainBlues = data.Blues
			} else {
				chainData, ok := e.data[chain]
				if !ok {
					return nil, types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", chain)
				}
				chainBlues = chainData.Blues
			}

			for _, blue := range chainBlues {
				inPast, err := e.reach.isInPast(blue, candidate)
				if err != nil {
					return nil, err
				}
				if inPast {
					continue
				}

				sz, ok := data.AnticoneSizes[blue]
				if !ok {
					var err error
					sz, err = e.blueAnticoneSize(blue, selectedParent)
					if err != nil {
						return nil, err
					}
				}
				candidateSizes[blue] = sz
				candidateAnticoneSize++

				if candidateAnticoneSize > e.params.K {
					possiblyBlue = false
					break
				}
				if candidateSizes[blue] == e.params.K {
					possiblyBlue = false
					break
				}
			}

			if !possiblyBlue {
				break
			}
			if chain == h {
				chain = selectedParent
				continue
			}
			chainData := e.data[chain]
			if chainData.SelectedParent.IsZero() {
				break
			}
			chain = chainData.SelectedParent
		}

		if possiblyBlue {
			data.Blues = append(data.Blues, candidate)
			data.AnticoneSizes[candidate] = candidateAnticoneSize
			for blue, sz := range candidateSizes {
				data.AnticoneSizes[blue] = sz + 1
			}
			if uint32(len(data.Blues)) == e.params.K+1 {
				break
			}
		}
	}

	spData, ok := e.data[selectedParent]
	if !ok {
		return nil, types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for selected parent %s", selectedParent)
	}
	data.BlueScore = spData.BlueScore + uint64(len(data.Blues))

	blue := make(map[types.Hash]struct{}, len(data.Blues))
	for _, b := range data.Blues {
		blue[b] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := blue[c]; !ok {
			data.Reds = append(data.Reds, c)
		}
	}

	e.data[h] = data
	e.log.Debugf("ghostdag colored %s blueScore=%d blues=%d selectedParent=%s", h, data.BlueScore, len(data.Blues), selectedParent)
	return data, nil
}
