package mempool

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/types"
)

func mkTx(nonce uint64, gasPrice uint64, from byte) *types.Transaction {
	return &types.Transaction{
		Nonce:     nonce,
		From:      types.PublicKey{from},
		Value:     uint256.NewInt(1000),
		GasLimit:  21000,
		GasPrice:  gasPrice,
		Signature: types.Signature{1},
	}
}

func TestAddTransactionAndContains(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	tx := mkTx(0, 2_000_000_000, 1)
	require.NoError(t, p.AddTransaction(tx, ClassStandard))
	require.True(t, p.Contains(tx.Hash()))
	require.Equal(t, 1, p.Stats().TotalTransactions)
}

func TestAddTransactionRejectsLowGasPrice(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	tx := mkTx(0, 500_000_000, 1)
	err := p.AddTransaction(tx, ClassStandard)
	require.ErrorIs(t, err, types.ErrGasPriceTooLow)
}

func TestGetBestTransactionsOrdersByGasPrice(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	tx1 := mkTx(0, 1_000_000_000, 1)
	tx2 := mkTx(0, 3_000_000_000, 2)
	tx3 := mkTx(0, 2_000_000_000, 3)

	require.NoError(t, p.AddTransaction(tx1, ClassStandard))
	require.NoError(t, p.AddTransaction(tx2, ClassStandard))
	require.NoError(t, p.AddTransaction(tx3, ClassStandard))

	best := p.GetBestTransactions(10, 1_000_000)
	require.Len(t, best, 3)
	require.Equal(t, tx2.Hash(), best[0].Hash())
	require.Equal(t, tx3.Hash(), best[1].Hash())
	require.Equal(t, tx1.Hash(), best[2].Hash())
}

func TestGetBestTransactionsClassMultiplierBeatsGasPrice(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	tx1 := mkTx(0, 1_000_000_000, 1)
	tx2 := mkTx(0, 1_000_000_000, 2)

	require.NoError(t, p.AddTransaction(tx1, ClassStandard))
	require.NoError(t, p.AddTransaction(tx2, ClassModelUpdate))

	best := p.GetBestTransactions(10, 1_000_000)
	require.Equal(t, tx2.Hash(), best[0].Hash())
	require.Equal(t, tx1.Hash(), best[1].Hash())
}

func TestGetBestTransactionsEnforcesNonceContiguity(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	sender := byte(7)
	tx0 := mkTx(0, 2_000_000_000, sender)
	tx2 := mkTx(2, 2_000_000_000, sender) // gap at nonce 1

	require.NoError(t, p.AddTransaction(tx0, ClassStandard))
	require.NoError(t, p.AddTransaction(tx2, ClassStandard))

	best := p.GetBestTransactions(10, 1_000_000)
	require.Len(t, best, 1)
	require.Equal(t, tx0.Hash(), best[0].Hash())
}

func TestAddTransactionAdmitsOutOfOrderNonces(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	sender := byte(5)
	tx1 := mkTx(1, 2_000_000_000, sender)
	tx0 := mkTx(0, 2_000_000_000, sender)

	require.NoError(t, p.AddTransaction(tx1, ClassStandard))
	require.NoError(t, p.AddTransaction(tx0, ClassStandard))

	require.True(t, p.Contains(tx1.Hash()))
	require.True(t, p.Contains(tx0.Hash()))
	require.Equal(t, 2, p.Stats().TotalTransactions)
}

func TestAddTransactionReplacementRequiresFeeBump(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	sender := byte(9)
	original := mkTx(0, 1_000_000_000, sender)
	require.NoError(t, p.AddTransaction(original, ClassStandard))

	tooLow := mkTx(0, 1_050_000_000, sender) // +5%, needs +10%
	tooLow.Data = []byte("distinguish-hash")
	err := p.AddTransaction(tooLow, ClassStandard)
	require.ErrorIs(t, err, types.ErrReplacementTooLow)

	replacement := mkTx(0, 1_200_000_000, sender)
	replacement.Data = []byte("bump")
	require.NoError(t, p.AddTransaction(replacement, ClassStandard))
	require.False(t, p.Contains(original.Hash()))
	require.True(t, p.Contains(replacement.Hash()))
}

func TestRemoveTransactionPreventsReadmission(t *testing.T) {
	p := New(config.Default().Mempool, nil)
	tx := mkTx(0, 2_000_000_000, 1)
	require.NoError(t, p.AddTransaction(tx, ClassStandard))

	removed, ok := p.RemoveTransaction(tx.Hash())
	require.True(t, ok)
	require.Equal(t, tx.Hash(), removed.Hash())

	err := p.AddTransaction(tx, ClassStandard)
	require.ErrorIs(t, err, types.ErrDuplicateTransaction)
}
