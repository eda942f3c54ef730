package ghostdag

import "github.com/vireo-chain/vireo/internal/types"

// selectedParentAnticone returns the anticone of the selected parent:
// starting from h's non-selected-parent parents, BFS over parent edges,
// stopping whenever a node is found to already be in the selected
// parent's past. Grounded on the teacher's
// GHOSTDAG.selectedParentAnticone.
func (e *Engine) selectedParentAnticone(selectedParent types.Hash, parents []types.Hash) ([]types.Hash, error) {
	anticoneSet := make(map[types.Hash]struct{})
	selectedParentPast := make(map[types.Hash]struct{})
	var anticone []types.Hash
	var queue []types.Hash

	for _, p := range parents {
		if p == selectedParent {
			continue
		}
		anticoneSet[p] = struct{}{}
		anticone = append(anticone, p)
		queue = append(queue, p)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		currParents, err := e.store.GetParents(cur)
		if err != nil {
			return nil, err
		}
		for _, p := range currParents {
			if _, ok := anticoneSet[p]; ok {
				continue
			}
			if _, ok := selectedParentPast[p]; ok {
				continue
			}
			inPast, err := e.reach.isInPast(p, selectedParent)
			if err != nil {
				return nil, err
			}
			if inPast {
				selectedParentPast[p] = struct{}{}
				continue
			}
			anticoneSet[p] = struct{}{}
			anticone = append(anticone, p)
			queue = append(queue, p)
		}
	}
	return anticone, nil
}
