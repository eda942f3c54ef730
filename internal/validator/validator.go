// Package validator implements the two-phase stateless/stateful
// transaction validation pipeline of spec.md §4.8, grounded on the
// original sequencer's TxValidator (core/sequencer/src/validator.rs):
// blacklist and rate-limit checks first, then cheap stateless checks
// (gas price, gas limit, data size, signature), and only then the
// state-dependent checks (nonce, balance) against a StateProvider.
package validator

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/types"
	"github.com/vireo-chain/vireo/internal/xcrypto"
)

// AccountState is the balance/nonce view a StateProvider exposes for a
// single account, mirroring the original's AccountState.
type AccountState struct {
	Balance *uint256.Int
	Nonce   uint64
}

// StateProvider answers account-state lookups during the stateful
// validation phase. Implementations are expected to reflect the
// virtual/selected chain's state, not a pending or speculative one.
type StateProvider interface {
	GetAccount(pub types.PublicKey) (AccountState, bool)
}

// MemStateProvider is an in-memory StateProvider, grounded on the
// original's MockStateProvider, used by tests and by callers that
// manage account state outside of this package.
type MemStateProvider struct {
	mu       sync.RWMutex
	accounts map[types.PublicKey]AccountState
}

// NewMemStateProvider builds an empty MemStateProvider.
func NewMemStateProvider() *MemStateProvider {
	return &MemStateProvider{accounts: make(map[types.PublicKey]AccountState)}
}

// SetAccount installs or overwrites the account state for pub.
func (m *MemStateProvider) SetAccount(pub types.PublicKey, balance *uint256.Int, nonce uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[pub] = AccountState{Balance: balance, Nonce: nonce}
}

// GetAccount implements StateProvider.
func (m *MemStateProvider) GetAccount(pub types.PublicKey) (AccountState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[pub]
	return acc, ok
}

// rateLimitEntry is a per-sender fixed-window rate-limit counter,
// mirroring the original's RateLimitEntry.
type rateLimitEntry struct {
	count       uint32
	windowStart uint64
}

// Validator runs the two-phase validation pipeline over transactions.
type Validator struct {
	mu    sync.Mutex
	rules config.ValidatorRules
	state StateProvider
	log   logging.Logger

	blacklist   map[types.PublicKey]bool
	rateLimited map[types.PublicKey]*rateLimitEntry
}

// New builds a Validator under rules, answering stateful questions via
// state.
func New(rules config.ValidatorRules, state StateProvider, log logging.Logger) *Validator {
	if log == nil {
		log = logging.Nop()
	}
	return &Validator{
		rules:       rules,
		state:       state,
		log:         log,
		blacklist:   make(map[types.PublicKey]bool),
		rateLimited: make(map[types.PublicKey]*rateLimitEntry),
	}
}

// Validate runs tx through the full pipeline: blacklist, rate limit,
// stateless checks, signature, then state-dependent checks.
func (v *Validator) Validate(tx *types.Transaction) error {
	if v.IsBlacklisted(tx.From) {
		return types.Wrap(types.ErrBlacklisted, "sender %s", tx.From)
	}
	if err := v.checkRateLimit(tx.From); err != nil {
		return err
	}
	if err := v.validateBasic(tx); err != nil {
		return err
	}
	if v.rules.VerifySignatures {
		if err := v.validateSignature(tx); err != nil {
			return err
		}
	}
	if v.rules.CheckNonce || v.rules.CheckBalance {
		if err := v.validateState(tx); err != nil {
			return err
		}
	}
	return nil
}

// validateBasic checks fields that require no chain state: gas price
// floor, gas limit ceiling, and payload size.
func (v *Validator) validateBasic(tx *types.Transaction) error {
	if tx.GasPrice < v.rules.MinGasPrice {
		return types.Wrap(types.ErrGasPriceTooLow, "min %d got %d", v.rules.MinGasPrice, tx.GasPrice)
	}
	if tx.GasLimit > v.rules.MaxGasLimit {
		return types.Wrap(types.ErrGasLimitTooHigh, "max %d got %d", v.rules.MaxGasLimit, tx.GasLimit)
	}
	if len(tx.Data) > v.rules.MaxDataSize {
		return types.Wrap(types.ErrDataTooLarge, "max %d got %d", v.rules.MaxDataSize, len(tx.Data))
	}
	return nil
}

// validateSignature verifies tx's signature against its signing bytes.
func (v *Validator) validateSignature(tx *types.Transaction) error {
	if tx.HasZeroSignature() {
		return types.ErrInvalidSignature
	}
	if !xcrypto.Verify(tx.From, tx.SigningBytes(), tx.Signature) {
		return types.ErrInvalidSignature
	}
	return nil
}

// validateState checks the transaction against its sender's current
// account state: exact nonce match and sufficient balance to cover
// value plus the maximum possible gas fee.
func (v *Validator) validateState(tx *types.Transaction) error {
	if v.state == nil {
		return nil
	}
	acc, ok := v.state.GetAccount(tx.From)
	if !ok {
		acc = AccountState{Balance: new(uint256.Int), Nonce: 0}
	}
	if v.rules.CheckNonce && tx.Nonce != acc.Nonce {
		return types.Wrap(types.ErrInvalidNonce, "expected %d got %d", acc.Nonce, tx.Nonce)
	}
	if v.rules.CheckBalance {
		balance := acc.Balance
		if balance == nil {
			balance = new(uint256.Int)
		}
		cost := tx.Cost()
		if balance.Lt(cost) {
			return types.Wrap(types.ErrInsufficientBalance, "required %s available %s", cost, balance)
		}
	}
	return nil
}

// checkRateLimit enforces a fixed-window cap on admissions per sender:
// the count resets once RateLimitWindowSecs have passed since the
// window started, mirroring the original's check_rate_limit.
func (v *Validator) checkRateLimit(sender types.PublicKey) error {
	if v.rules.RateLimit == 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	now := uint64(time.Now().Unix())
	e, ok := v.rateLimited[sender]
	if !ok {
		v.rateLimited[sender] = &rateLimitEntry{count: 1, windowStart: now}
		return nil
	}
	if now-e.windowStart >= v.rules.RateLimitWindowSecs {
		e.count = 1
		e.windowStart = now
		return nil
	}
	if e.count >= v.rules.RateLimit {
		return types.Wrap(types.ErrRateLimited, "sender %s", sender)
	}
	e.count++
	return nil
}

// IsBlacklisted reports whether pub is currently blacklisted.
func (v *Validator) IsBlacklisted(pub types.PublicKey) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.blacklist[pub]
}

// BlacklistAddress marks pub as blacklisted, rejecting all further
// transactions from it.
func (v *Validator) BlacklistAddress(pub types.PublicKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.blacklist[pub] = true
}

// UnblacklistAddress clears pub's blacklist entry, if any.
func (v *Validator) UnblacklistAddress(pub types.PublicKey) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.blacklist, pub)
}

// ValidateBatch validates each transaction independently, returning
// the partition of valid transactions and the errors for invalid ones
// keyed by their position in txs.
func (v *Validator) ValidateBatch(txs []*types.Transaction) (valid []*types.Transaction, invalid map[int]error) {
	invalid = make(map[int]error)
	for i, tx := range txs {
		if err := v.Validate(tx); err != nil {
			invalid[i] = err
			continue
		}
		valid = append(valid, tx)
	}
	return valid, invalid
}
