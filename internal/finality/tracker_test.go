package finality

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/store"
	"github.com/vireo-chain/vireo/internal/types"
)

func mkBlock(selectedParent types.Hash, height uint64, salt byte) *types.Block {
	h := &types.Header{
		SelectedParent: selectedParent,
		Height:         height,
		Timestamp:      uint64(height)*1000 + uint64(salt),
		BlueWork:       uint256.NewInt(0),
		StateRoot:      types.Hash{salt},
	}
	return &types.Block{Header: h, Body: &types.Body{}}
}

func buildChain(t *testing.T, s *dagstore.Store, e *ghostdag.Engine, n int) []*types.Block {
	t.Helper()
	blocks := make([]*types.Block, 0, n+1)
	g := mkBlock(types.Hash{}, 0, 0)
	require.NoError(t, s.StoreBlock(g))
	_, err := e.Run(g.Hash())
	require.NoError(t, err)
	blocks = append(blocks, g)

	prev := g
	for i := 1; i <= n; i++ {
		b := mkBlock(prev.Hash(), uint64(i), byte(i))
		require.NoError(t, s.StoreBlock(b))
		_, err := e.Run(b.Hash())
		require.NoError(t, err)
		blocks = append(blocks, b)
		prev = b
	}
	return blocks
}

func TestUpdateFinalityPointAdvancesAndFinalizes(t *testing.T) {
	s := dagstore.New(store.NewMemStore(), nil)
	params := config.Default().Ghostdag
	e := ghostdag.New(s, params, nil)
	chain := buildChain(t, s, e, 10)

	tr := New(s, e, 3, nil)
	tr.SeedGenesis(chain[0].Hash())

	tip := chain[len(chain)-1].Hash()
	require.NoError(t, tr.UpdateFinalityPoint(tip))

	fp, ok := tr.LastFinalityPoint()
	require.True(t, ok)
	require.NotEqual(t, chain[0].Hash(), fp)
	require.True(t, s.IsFinalized(chain[0].Hash()))
}

func TestUpdateFinalityPointAdvancesByConfirmationDepthBelowTip(t *testing.T) {
	s := dagstore.New(store.NewMemStore(), nil)
	params := config.Default().Ghostdag
	e := ghostdag.New(s, params, nil)
	chain := buildChain(t, s, e, 10) // genesis, h1..h10; blue_score(h_i) = i+1

	tr := New(s, e, 3, nil)
	tr.SeedGenesis(chain[0].Hash())

	tip := chain[len(chain)-1].Hash() // h10, blue score 11
	require.NoError(t, tr.UpdateFinalityPoint(tip))

	fp, ok := tr.LastFinalityPoint()
	require.True(t, ok)
	fpData, ok := e.Data(fp)
	require.True(t, ok)
	require.GreaterOrEqual(t, fpData.BlueScore, uint64(8)) // tip score 11 - depth 3

	// h5 sits below the finality point now that it advanced to h7;
	// treating it as a valid selected parent must be rejected, not
	// silently accepted because the walk only reached h1.
	err := tr.CheckFinalityViolation(chain[5].Hash()) // h5, blue score 6
	require.ErrorIs(t, err, types.ErrFinalityViolation)
}

func TestCheckFinalityViolationRejectsDivergentChain(t *testing.T) {
	s := dagstore.New(store.NewMemStore(), nil)
	params := config.Default().Ghostdag
	e := ghostdag.New(s, params, nil)
	chain := buildChain(t, s, e, 10)

	tr := New(s, e, 3, nil)
	tr.SeedGenesis(chain[0].Hash())
	require.NoError(t, tr.UpdateFinalityPoint(chain[len(chain)-1].Hash()))

	fork := mkBlock(chain[0].Hash(), 1, 0xEE)
	require.NoError(t, s.StoreBlock(fork))
	_, err := e.Run(fork.Hash())
	require.NoError(t, err)

	err = tr.CheckFinalityViolation(fork.Hash())
	require.ErrorIs(t, err, types.ErrFinalityViolation)
}
