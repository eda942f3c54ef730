package chainselect

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/finality"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/store"
	"github.com/vireo-chain/vireo/internal/tipselect"
	"github.com/vireo-chain/vireo/internal/types"
)

func mkBlock(selectedParent types.Hash, mergeParents []types.Hash, height uint64, salt byte) *types.Block {
	h := &types.Header{
		SelectedParent: selectedParent,
		MergeParents:   mergeParents,
		Height:         height,
		Timestamp:      uint64(height)*1000 + uint64(salt),
		BlueWork:       uint256.NewInt(0),
		StateRoot:      types.Hash{salt},
	}
	return &types.Block{Header: h, Body: &types.Body{}}
}

func setup(t *testing.T) (*dagstore.Store, *ghostdag.Engine, *Selector) {
	t.Helper()
	s := dagstore.New(store.NewMemStore(), nil)
	params := config.Default().Ghostdag
	e := ghostdag.New(s, params, nil)
	ts := tipselect.New(s, e, params)
	ft := finality.New(s, e, params.FinalityDepth, nil)
	sel := New(s, e, ts, ft, nil)
	return s, e, sel
}

func TestOnNewBlockTracksLongerChain(t *testing.T) {
	s, e, sel := setup(t)

	g := mkBlock(types.Hash{}, nil, 0, 0)
	require.NoError(t, s.StoreBlock(g))
	_, err := e.Run(g.Hash())
	require.NoError(t, err)
	sel.SeedGenesis(g.Hash())

	a := mkBlock(g.Hash(), nil, 1, 1)
	require.NoError(t, s.StoreBlock(a))
	_, err = e.Run(a.Hash())
	require.NoError(t, err)

	update, err := sel.OnNewBlock()
	require.NoError(t, err)
	require.Equal(t, []types.Hash{a.Hash()}, update.Added)
	require.Empty(t, update.Removed)

	tip, ok := sel.SelectedTip()
	require.True(t, ok)
	require.Equal(t, a.Hash(), tip)
	require.True(t, sel.IsInSelectedChain(g.Hash()))
	require.True(t, sel.IsInSelectedChain(a.Hash()))
}

func TestValidateChainDetectsMissingLink(t *testing.T) {
	s, e, sel := setup(t)
	g := mkBlock(types.Hash{}, nil, 0, 0)
	require.NoError(t, s.StoreBlock(g))
	_, err := e.Run(g.Hash())
	require.NoError(t, err)
	sel.SeedGenesis(g.Hash())

	require.NoError(t, sel.ValidateChain(g.Hash()))

	// a is stored but never colored, so its link to genesis is missing.
	a := mkBlock(g.Hash(), nil, 1, 1)
	require.NoError(t, s.StoreBlock(a))
	require.ErrorIs(t, sel.ValidateChain(a.Hash()), types.ErrBlockNotFound)
}
