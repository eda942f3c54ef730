package validator

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/types"
	"github.com/vireo-chain/vireo/internal/xcrypto"
)

func mkSignedTx(t *testing.T, nonce uint64, gasPrice uint64, value uint64) (*types.Transaction, types.PublicKey) {
	t.Helper()
	pub, priv, err := xcrypto.GenerateKey()
	require.NoError(t, err)
	tx := &types.Transaction{
		Nonce:    nonce,
		From:     pub,
		Value:    uint256.NewInt(value),
		GasLimit: 21000,
		GasPrice: gasPrice,
	}
	tx.Signature = xcrypto.Sign(priv, tx.SigningBytes())
	return tx, pub
}

func rulesNoRateLimit() config.ValidatorRules {
	r := config.Default().Validator
	r.VerifySignatures = true
	r.RateLimit = 0
	return r
}

func TestValidateAcceptsWellFormedTransaction(t *testing.T) {
	state := NewMemStateProvider()
	tx, pub := mkSignedTx(t, 0, 2_000_000_000, 1000)
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)

	v := New(rulesNoRateLimit(), state, nil)
	require.NoError(t, v.Validate(tx))
}

func TestValidateRejectsLowGasPrice(t *testing.T) {
	state := NewMemStateProvider()
	tx, pub := mkSignedTx(t, 0, 1, 0)
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)

	v := New(rulesNoRateLimit(), state, nil)
	err := v.Validate(tx)
	require.ErrorIs(t, err, types.ErrGasPriceTooLow)
}

func TestValidateRejectsBadSignature(t *testing.T) {
	state := NewMemStateProvider()
	tx, pub := mkSignedTx(t, 0, 2_000_000_000, 0)
	tx.Signature[0] ^= 0xFF
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)

	v := New(rulesNoRateLimit(), state, nil)
	err := v.Validate(tx)
	require.ErrorIs(t, err, types.ErrInvalidSignature)
}

func TestValidateRejectsWrongNonce(t *testing.T) {
	state := NewMemStateProvider()
	tx, pub := mkSignedTx(t, 5, 2_000_000_000, 0)
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)

	v := New(rulesNoRateLimit(), state, nil)
	err := v.Validate(tx)
	require.ErrorIs(t, err, types.ErrInvalidNonce)
}

func TestValidateRejectsInsufficientBalance(t *testing.T) {
	state := NewMemStateProvider()
	tx, pub := mkSignedTx(t, 0, 2_000_000_000, 1_000_000)
	state.SetAccount(pub, uint256.NewInt(1), 0)

	v := New(rulesNoRateLimit(), state, nil)
	err := v.Validate(tx)
	require.ErrorIs(t, err, types.ErrInsufficientBalance)
}

func TestValidateRejectsBlacklistedSender(t *testing.T) {
	state := NewMemStateProvider()
	tx, pub := mkSignedTx(t, 0, 2_000_000_000, 0)
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)

	v := New(rulesNoRateLimit(), state, nil)
	v.BlacklistAddress(pub)
	err := v.Validate(tx)
	require.ErrorIs(t, err, types.ErrBlacklisted)

	v.UnblacklistAddress(pub)
	require.NoError(t, v.Validate(tx))
}

func TestCheckRateLimitRejectsBurst(t *testing.T) {
	state := NewMemStateProvider()
	rules := rulesNoRateLimit()
	rules.RateLimit = 2
	rules.RateLimitWindowSecs = 60
	v := New(rules, state, nil)

	tx1, pub := mkSignedTx(t, 0, 2_000_000_000, 0)
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)
	require.NoError(t, v.Validate(tx1))

	require.NoError(t, v.checkRateLimit(pub))

	err := v.checkRateLimit(pub)
	require.ErrorIs(t, err, types.ErrRateLimited)
}

func TestValidateBatchPartitionsValidAndInvalid(t *testing.T) {
	state := NewMemStateProvider()
	rules := rulesNoRateLimit()
	v := New(rules, state, nil)

	good, pub := mkSignedTx(t, 0, 2_000_000_000, 0)
	state.SetAccount(pub, uint256.NewInt(1_000_000_000_000), 0)
	bad, _ := mkSignedTx(t, 0, 1, 0)

	valid, invalid := v.ValidateBatch([]*types.Transaction{good, bad})
	require.Len(t, valid, 1)
	require.Equal(t, good.Hash(), valid[0].Hash())
	require.Len(t, invalid, 1)
	require.ErrorIs(t, invalid[1], types.ErrGasPriceTooLow)
}
