// Package finality tracks the DAG's finality point and rejects blocks
// and reorgs that would violate it (spec.md §4.5), grounded on the
// teacher's consensus/blockdag checkFinalityViolation/updateFinalityPoint
// pair, adapted from the teacher's FinalityInterval (time-window based)
// to the simpler confirmation-depth bound this core's config carries.
package finality

import (
	"sync"

	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/types"
)

// Tracker owns the DAG's last finality point and performs finality
// checks and advancement.
type Tracker struct {
	mu sync.Mutex

	store  *dagstore.Store
	engine *ghostdag.Engine
	log    logging.Logger

	confirmationDepth uint64
	lastFinalityPoint types.Hash
	hasFinalityPoint  bool
}

// New builds a Tracker with the given confirmation depth (spec.md §8's
// default is 3).
func New(store *dagstore.Store, engine *ghostdag.Engine, confirmationDepth uint64, log logging.Logger) *Tracker {
	if log == nil {
		log = logging.Nop()
	}
	return &Tracker{store: store, engine: engine, confirmationDepth: confirmationDepth, log: log}
}

// LastFinalityPoint returns the current finality point. Its second
// return value is false until SeedGenesis or UpdateFinalityPoint has
// run at least once.
func (t *Tracker) LastFinalityPoint() (types.Hash, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastFinalityPoint, t.hasFinalityPoint
}

// SeedGenesis establishes the genesis block as the initial finality
// point.
func (t *Tracker) SeedGenesis(genesis types.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastFinalityPoint = genesis
	t.hasFinalityPoint = true
}

// CheckFinalityViolation rejects a candidate block whose selected
// parent's chain does not contain the current finality point (spec.md
// §4.5 R-class rule), mirroring the teacher's checkFinalityViolation.
func (t *Tracker) CheckFinalityViolation(newSelectedParent types.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasFinalityPoint || t.lastFinalityPoint == newSelectedParent {
		return nil
	}

	inChain, err := t.isInSelectedParentChain(t.lastFinalityPoint, newSelectedParent)
	if err != nil {
		return err
	}
	if !inChain {
		return types.ErrFinalityViolation
	}
	return nil
}

// CheckReorgAllowed reports whether a reorg whose branch root is root
// may proceed: the current finality point must still be an ancestor of
// root (spec.md §4.6 step 3) — i.e. root sits on the unchanged portion
// of the chain the reorg keeps, so the finalized segment survives.
func (t *Tracker) CheckReorgAllowed(root types.Hash) error {
	return t.CheckFinalityViolation(root)
}

func (t *Tracker) isInSelectedParentChain(ancestor, descendant types.Hash) (bool, error) {
	current := descendant
	for {
		if current == ancestor {
			return true, nil
		}
		data, ok := t.engine.Data(current)
		if !ok {
			return false, types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", current)
		}
		if data.SelectedParent.IsZero() {
			return false, nil
		}
		current = data.SelectedParent
	}
}

// UpdateFinalityPoint advances the finality point along selectedTip's
// selected-parent chain once selectedTip's blue score has outpaced the
// current finality point's by at least 2*confirmationDepth (the
// teacher's "+2" finality-score margin, scaled by our depth parameter),
// then finalizes every block at or below the new finality point. The
// target the walk stops at is measured against the *tip's* blue score
// (tipData.BlueScore - confirmationDepth), not the old finality
// point's — the old finality point only gates whether it's worth
// recomputing at all.
func (t *Tracker) UpdateFinalityPoint(selectedTip types.Hash) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	block, err := t.store.GetBlock(selectedTip)
	if err != nil {
		return err
	}
	if block.IsGenesis() {
		t.lastFinalityPoint = selectedTip
		t.hasFinalityPoint = true
		return t.finalizeBelowLocked(selectedTip)
	}
	if !t.hasFinalityPoint {
		return types.Wrap(types.ErrBlockNotFound, "finality point not seeded")
	}

	tipData, ok := t.engine.Data(selectedTip)
	if !ok {
		return types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", selectedTip)
	}
	fpData, ok := t.engine.Data(t.lastFinalityPoint)
	if !ok {
		return types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for finality point %s", t.lastFinalityPoint)
	}

	if tipData.BlueScore < fpData.BlueScore+2*t.confirmationDepth {
		return nil
	}

	var target uint64
	if tipData.BlueScore > t.confirmationDepth {
		target = tipData.BlueScore - t.confirmationDepth
	}

	current := selectedTip
	for {
		curData, ok := t.engine.Data(current)
		if !ok {
			return types.Wrap(types.ErrBlockNotFound, "ghostdag data missing for %s", current)
		}
		if curData.BlueScore <= target || curData.SelectedParent.IsZero() {
			break
		}
		current = curData.SelectedParent
	}

	t.lastFinalityPoint = current
	t.log.Infof("advanced finality point to %s", current)
	return t.finalizeBelowLocked(current)
}

// finalizeBelowLocked marks h and every ancestor of h as finalized,
// stopping at nodes already finalized (R3 idempotence). Mirrors the
// teacher's finalizeNodesBelowFinalityPoint BFS.
func (t *Tracker) finalizeBelowLocked(h types.Hash) error {
	queue := []types.Hash{h}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if t.store.IsFinalized(cur) {
			continue
		}
		if err := t.store.FinalizeBlock(cur); err != nil {
			return err
		}
		parents, err := t.store.GetParents(cur)
		if err != nil {
			return err
		}
		queue = append(queue, parents...)
	}
	return nil
}
