package dagstore

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/store"
	"github.com/vireo-chain/vireo/internal/types"
)

func genesisBlock() *types.Block {
	h := &types.Header{Height: 0, BlueWork: uint256.NewInt(0)}
	return &types.Block{Header: h, Body: &types.Body{}}
}

func childBlock(parent types.Hash, height uint64) *types.Block {
	h := &types.Header{
		SelectedParent: parent,
		Height:         height,
		Timestamp:      uint64(height),
		BlueWork:       uint256.NewInt(0),
	}
	return &types.Block{Header: h, Body: &types.Body{}}
}

func TestStoreBlockAndRetrieve(t *testing.T) {
	s := New(store.NewMemStore(), nil)

	genesis := genesisBlock()
	require.NoError(t, s.StoreBlock(genesis))
	require.True(t, s.HasBlock(genesis.Hash()))

	got, err := s.GetBlock(genesis.Hash())
	require.NoError(t, err)
	require.Equal(t, genesis.Hash(), got.Hash())

	require.Equal(t, []types.Hash{genesis.Hash()}, s.GetTips())
}

func TestStoreBlockDuplicateRejected(t *testing.T) {
	s := New(store.NewMemStore(), nil)
	genesis := genesisBlock()
	require.NoError(t, s.StoreBlock(genesis))
	require.ErrorIs(t, s.StoreBlock(genesis), types.ErrBlockExists)
}

func TestStoreBlockUnknownParentRejected(t *testing.T) {
	s := New(store.NewMemStore(), nil)
	child := childBlock(types.Hash{0xAA}, 1)
	err := s.StoreBlock(child)
	require.Error(t, err)
}

func TestStoreBlockUpdatesTipsAndChildren(t *testing.T) {
	s := New(store.NewMemStore(), nil)
	genesis := genesisBlock()
	require.NoError(t, s.StoreBlock(genesis))

	child := childBlock(genesis.Hash(), 1)
	require.NoError(t, s.StoreBlock(child))

	tips := s.GetTips()
	require.Equal(t, []types.Hash{child.Hash()}, tips)

	children, err := s.GetChildren(genesis.Hash())
	require.NoError(t, err)
	require.Equal(t, []types.Hash{child.Hash()}, children)

	byHeight := s.GetBlocksAtHeight(1)
	require.Equal(t, []types.Hash{child.Hash()}, byHeight)
}

func TestFinalizeBlockIdempotent(t *testing.T) {
	s := New(store.NewMemStore(), nil)
	genesis := genesisBlock()
	require.NoError(t, s.StoreBlock(genesis))

	require.NoError(t, s.FinalizeBlock(genesis.Hash()))
	require.True(t, s.IsFinalized(genesis.Hash()))
	require.NoError(t, s.FinalizeBlock(genesis.Hash()))
}

func TestUpdatePruningPointRejectsBackwardMove(t *testing.T) {
	s := New(store.NewMemStore(), nil)
	genesis := genesisBlock()
	child := childBlock(genesis.Hash(), 1)
	require.NoError(t, s.StoreBlock(genesis))
	require.NoError(t, s.StoreBlock(child))

	require.NoError(t, s.UpdatePruningPoint(child.Hash()))
	require.Error(t, s.UpdatePruningPoint(genesis.Hash()))
}
