package ghostdag

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/store"
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

func TestRunGenesisHasBlueScoreOne(t *testing.T) {
	s := dagstore.New(store.NewMemStore(), nil)
	g := mkBlock(types.Hash{}, nil, 0, 0)
	require.NoError(t, s.StoreBlock(g))

	e := New(s, config.Default().Ghostdag, nil)
	data, err := e.Run(g.Hash())
	require.NoError(t, err)
	require.Equal(t, uint64(1), data.BlueScore)
	require.Equal(t, []types.Hash{g.Hash()}, data.Blues)
}

func TestRunDiamondMergesBothParentsAsBlue(t *testing.T) {
	s := dagstore.New(store.NewMemStore(), nil)
	e := New(s, config.Default().Ghostdag, nil)

	g := mkBlock(types.Hash{}, nil, 0, 0)
	require.NoError(t, s.StoreBlock(g))
	_, err := e.Run(g.Hash())
	require.NoError(t, err)

	a1 := mkBlock(g.Hash(), nil, 1, 1)
	require.NoError(t, s.StoreBlock(a1))
	d1, err := e.Run(a1.Hash())
	require.NoError(t, err)
	require.Equal(t, uint64(2), d1.BlueScore)

	a2 := mkBlock(g.Hash(), nil, 1, 2)
	require.NoError(t, s.StoreBlock(a2))
	d2, err := e.Run(a2.Hash())
	require.NoError(t, err)
	require.Equal(t, uint64(2), d2.BlueScore)

	b := mkBlock(a1.Hash(), []types.Hash{a2.Hash()}, 2, 3)
	require.NoError(t, s.StoreBlock(b))
	db, err := e.Run(b.Hash())
	require.NoError(t, err)

	require.Len(t, db.Blues, 2)
	require.Equal(t, uint64(4), db.BlueScore)
	require.Contains(t, db.Blues, a1.Hash())
	require.Contains(t, db.Blues, a2.Hash())
}

func TestRunIsMemoized(t *testing.T) {
	s := dagstore.New(store.NewMemStore(), nil)
	e := New(s, config.Default().Ghostdag, nil)

	g := mkBlock(types.Hash{}, nil, 0, 0)
	require.NoError(t, s.StoreBlock(g))

	d1, err := e.Run(g.Hash())
	require.NoError(t, err)
	d2, err := e.Run(g.Hash())
	require.NoError(t, err)
	require.Same(t, d1, d2)
}
