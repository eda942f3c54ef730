package builder

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/mempool"
	"github.com/vireo-chain/vireo/internal/types"
	"github.com/vireo-chain/vireo/internal/xcrypto"
)

func mkTx(nonce uint64, gasPrice, gasLimit uint64, from byte) *types.Transaction {
	return &types.Transaction{
		Nonce:     nonce,
		From:      types.PublicKey{from},
		Value:     uint256.NewInt(1000),
		GasLimit:  gasLimit,
		GasPrice:  gasPrice,
		Signature: types.Signature{1},
	}
}

func TestBuildBlockEmptyAllowedWhenMinTransactionsZero(t *testing.T) {
	cfg := config.Default().Builder
	cfg.MinTransactions = 0
	pool := mempool.New(config.Default().Mempool, nil)
	pub, _, err := xcrypto.GenerateKey()
	require.NoError(t, err)

	b := New(cfg, pool, pub, nil, nil, nil)
	block, err := b.BuildBlock(types.Hash{0xFF}, nil, 0, 1, types.VrfProof{}, types.Hash{})
	require.NoError(t, err)
	require.Equal(t, uint64(1), block.Header.Height)
	require.Equal(t, types.Hash{0xFF}, block.Header.SelectedParent)
	require.Empty(t, block.Body.Transactions)
}

func TestBuildBlockNoTransactionsErrorsWhenMinRequired(t *testing.T) {
	cfg := config.Default().Builder
	cfg.MinTransactions = 1
	pool := mempool.New(config.Default().Mempool, nil)
	pub, _, err := xcrypto.GenerateKey()
	require.NoError(t, err)

	b := New(cfg, pool, pub, nil, nil, nil)
	_, err = b.BuildBlock(types.Hash{0xFF}, nil, 0, 1, types.VrfProof{}, types.Hash{})
	require.ErrorIs(t, err, types.ErrNoTransactions)
}

func TestBuildBlockIncludesMempoolTransactions(t *testing.T) {
	cfg := config.Default().Builder
	pool := mempool.New(config.Default().Mempool, nil)
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, pool.AddTransaction(mkTx(i, 2_000_000_000, 21000, 1), mempool.ClassStandard))
	}
	pub, _, err := xcrypto.GenerateKey()
	require.NoError(t, err)

	b := New(cfg, pool, pub, nil, nil, nil)
	block, err := b.BuildBlock(types.Hash{0xFF}, nil, 0, 1, types.VrfProof{}, types.Hash{})
	require.NoError(t, err)
	require.Len(t, block.Body.Transactions, 5)
}

func TestBuildBlockRespectsGasCap(t *testing.T) {
	cfg := config.Default().Builder
	cfg.MaxGasPerBlock = 100_000 // room for ~4 txs of 21000 gas
	pool := mempool.New(config.Default().Mempool, nil)
	for i := byte(0); i < 10; i++ {
		require.NoError(t, pool.AddTransaction(mkTx(0, 2_000_000_000, 21000, i+1), mempool.ClassStandard))
	}
	pub, _, err := xcrypto.GenerateKey()
	require.NoError(t, err)

	b := New(cfg, pool, pub, nil, nil, nil)
	block, err := b.BuildBlock(types.Hash{0xFF}, nil, 0, 1, types.VrfProof{}, types.Hash{})
	require.NoError(t, err)

	var totalGas uint64
	for _, tx := range block.Body.Transactions {
		totalGas += tx.GasLimit
	}
	require.LessOrEqual(t, totalGas, cfg.MaxGasPerBlock)
	require.Less(t, len(block.Body.Transactions), 10)
}

func TestBundleTransactionsGroupsByClass(t *testing.T) {
	cfg := config.Default().Builder
	pool := mempool.New(config.Default().Mempool, nil)

	tx1 := mkTx(0, 2_000_000_000, 21000, 1)
	tx1.Data = []byte("inference-call")
	tx2 := mkTx(0, 2_000_000_000, 21000, 2)
	tx2.Data = []byte("inference-call")
	tx3 := mkTx(0, 2_000_000_000, 21000, 3)

	require.NoError(t, pool.AddTransaction(tx1, mempool.ClassInference))
	require.NoError(t, pool.AddTransaction(tx2, mempool.ClassInference))
	require.NoError(t, pool.AddTransaction(tx3, mempool.ClassStandard))

	pub, _, err := xcrypto.GenerateKey()
	require.NoError(t, err)
	b := New(cfg, pool, pub, nil, nil, nil)

	bundles := b.BundleTransactions()
	require.NotEmpty(t, bundles)
	for _, bundle := range bundles {
		for _, tx := range bundle.Transactions {
			require.Equal(t, bundle.Class, classifyTransaction(tx))
		}
	}
}

func TestValidateBlockRejectsTooManyTransactions(t *testing.T) {
	cfg := config.Default().Builder
	cfg.MaxTransactions = 2
	pool := mempool.New(config.Default().Mempool, nil)
	pub, _, err := xcrypto.GenerateKey()
	require.NoError(t, err)
	b := New(cfg, pool, pub, nil, nil, nil)

	txs := []*types.Transaction{
		mkTx(0, 2_000_000_000, 21000, 1),
		mkTx(0, 2_000_000_000, 21000, 2),
		mkTx(0, 2_000_000_000, 21000, 3),
	}
	block := &types.Block{
		Header: &types.Header{},
		Body:   &types.Body{Transactions: txs},
	}
	err = b.ValidateBlock(block)
	require.ErrorIs(t, err, types.ErrBlockSizeExceeded)
}
