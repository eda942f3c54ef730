// Package mempool implements the class-and-nonce-aware prioritized
// transaction pool of spec.md §4.7, grounded on the original
// sequencer's Mempool (core/sequencer/src/mempool.rs): transactions are
// scored by gas_price*class_multiplier, replacement requires a
// configured gas-price bump, and block-inclusion selection enforces
// per-sender nonce contiguity.
package mempool

import (
	"sort"
	"sync"
	"time"

	bloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/types"
)

// entry is a pooled transaction plus the bookkeeping needed to score and
// evict it.
type entry struct {
	tx       *types.Transaction
	class    TxClass
	priority Priority
	addedAt  uint64
	size     int
}

// Stats mirrors the original sequencer's MempoolStats.
type Stats struct {
	TotalTransactions int
	TotalSize         int
	ByClass           map[TxClass]int
	UniqueSenders     int
}

// Pool is the prioritized mempool.
type Pool struct {
	mu  sync.RWMutex
	cfg config.MempoolConfig
	log logging.Logger

	txs      map[types.Hash]*entry
	bySender map[types.PublicKey][]types.Hash
	byNonce  map[types.PublicKey]map[uint64]types.Hash
	evicted  *bloom.BloomFilter

	totalSize int
}

// New builds an empty Pool under cfg.
func New(cfg config.MempoolConfig, log logging.Logger) *Pool {
	if log == nil {
		log = logging.Nop()
	}
	return &Pool{
		cfg:      cfg,
		log:      log,
		txs:      make(map[types.Hash]*entry),
		bySender: make(map[types.PublicKey][]types.Hash),
		byNonce:  make(map[types.PublicKey]map[uint64]types.Hash),
		evicted:  bloom.NewWithEstimates(200_000, 0.01),
	}
}

// AddTransaction admits tx under class, applying the pool's admission
// order: basic sanity, duplicate/evicted checks, replacement check,
// sender limit, size-limit eviction, then insertion. Nonce contiguity
// is not enforced here — a sender may post nonces out of order, and
// every gap-free or gapped nonce is admitted; contiguity is only
// enforced at selection time, by GetBestTransactions.
func (p *Pool) AddTransaction(tx *types.Transaction, class TxClass) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tx.GasPrice < p.cfg.MinGasPrice {
		return types.Wrap(types.ErrGasPriceTooLow, "min %d got %d", p.cfg.MinGasPrice, tx.GasPrice)
	}
	if tx.HasZeroSignature() {
		return types.ErrInvalidSignature
	}

	hash := tx.Hash()
	sender := tx.From

	if _, ok := p.txs[hash]; ok {
		return types.ErrDuplicateTransaction
	}
	if p.evicted.Test(hash[:]) {
		return types.ErrDuplicateTransaction
	}

	if existingHash, replacing := p.byNonce[sender][tx.Nonce]; replacing {
		if !p.cfg.AllowReplacement {
			return types.Wrap(types.ErrReplacementTooLow, "replacement disabled")
		}
		existing := p.txs[existingHash]
		if existing != nil && tx.GasPrice*100 < existing.tx.GasPrice*p.cfg.ReplacementFactor {
			return types.Wrap(types.ErrReplacementTooLow, "need >=%d%% of %d, got %d", p.cfg.ReplacementFactor, existing.tx.GasPrice, tx.GasPrice)
		}
		p.removeLocked(existingHash)
	}

	if len(p.bySender[sender]) >= p.cfg.MaxPerSender {
		return types.ErrSenderLimitExceeded
	}

	if len(p.txs) >= p.cfg.MaxSize {
		if err := p.evictLowestPriorityLocked(); err != nil {
			return err
		}
	}

	now := uint64(time.Now().Unix())
	e := &entry{
		tx:       tx,
		class:    class,
		priority: Priority{GasPrice: tx.GasPrice, Class: class, Timestamp: now},
		addedAt:  now,
		size:     calculateTxSize(tx),
	}

	p.txs[hash] = e
	p.bySender[sender] = append(p.bySender[sender], hash)
	if p.byNonce[sender] == nil {
		p.byNonce[sender] = make(map[uint64]types.Hash)
	}
	p.byNonce[sender][tx.Nonce] = hash
	p.totalSize += e.size

	p.log.Debugf("admitted tx %s from %s class=%s score=%d", hash, sender, class, e.priority.Score())
	return nil
}

// RemoveTransaction evicts hash from the pool, if present, returning the
// removed transaction.
func (p *Pool) RemoveTransaction(hash types.Hash) (*types.Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.txs[hash]
	if !ok {
		return nil, false
	}
	p.removeLocked(hash)
	return e.tx, true
}

// removeLocked removes hash from every index and marks it evicted.
// Callers must hold p.mu.
func (p *Pool) removeLocked(hash types.Hash) {
	e, ok := p.txs[hash]
	if !ok {
		return
	}
	delete(p.txs, hash)
	p.totalSize -= e.size

	sender := e.tx.From
	remaining := p.bySender[sender][:0]
	for _, h := range p.bySender[sender] {
		if h != hash {
			remaining = append(remaining, h)
		}
	}
	if len(remaining) == 0 {
		delete(p.bySender, sender)
	} else {
		p.bySender[sender] = remaining
	}
	if len(p.byNonce[sender]) > 0 {
		delete(p.byNonce[sender], e.tx.Nonce)
	}

	p.evicted.Add(hash[:])
}

// evictLowestPriorityLocked drops the single lowest-scoring transaction
// to make room for a new admission. Callers must hold p.mu.
func (p *Pool) evictLowestPriorityLocked() error {
	var lowest types.Hash
	found := false
	var lowestScore uint64
	for h, e := range p.txs {
		score := e.priority.Score()
		if !found || score < lowestScore {
			lowest, lowestScore, found = h, score, true
		}
	}
	if !found {
		return types.ErrMempoolFull
	}
	p.removeLocked(lowest)
	return nil
}

// GetBestTransactions returns up to maxCount transactions, bounded by
// maxSize total bytes, ordered by priority with per-sender nonce
// contiguity enforced — a transaction is only selected once every lower
// nonce from the same sender has already been selected or none exists
// below it in the pool.
func (p *Pool) GetBestTransactions(maxCount, maxSize int) []*types.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	hashes := make([]types.Hash, 0, len(p.txs))
	for h := range p.txs {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		return higherPriority(p.txs[hashes[i]].priority, p.txs[hashes[j]].priority)
	})

	included := make(map[types.Hash]struct{})
	highestIncludedNonce := make(map[types.PublicKey]uint64)
	hasIncluded := make(map[types.PublicKey]bool)

	result := make([]*types.Transaction, 0, maxCount)
	totalSize := 0
	nonceSkipped := false

	for i := 0; i < len(hashes); i++ {
		h := hashes[i]
		if len(result) >= maxCount {
			break
		}
		if _, done := included[h]; done {
			continue
		}
		e := p.txs[h]
		if totalSize+e.size > maxSize {
			continue
		}
		if !p.isNextNonceLocked(e.tx, hasIncluded, highestIncludedNonce) {
			nonceSkipped = true
			continue
		}

		result = append(result, e.tx)
		included[h] = struct{}{}
		totalSize += e.size
		sender := e.tx.From
		if !hasIncluded[sender] || e.tx.Nonce > highestIncludedNonce[sender] {
			highestIncludedNonce[sender] = e.tx.Nonce
		}
		hasIncluded[sender] = true
		if nonceSkipped {
			// A transaction passed over for nonce order may be next in line now.
			nonceSkipped = false
			i = -1
		}
	}

	return result
}

// isNextNonceLocked ports the original is_next_nonce check. Callers
// must hold at least p.mu.RLock.
func (p *Pool) isNextNonceLocked(tx *types.Transaction, hasIncluded map[types.PublicKey]bool, highest map[types.PublicKey]uint64) bool {
	sender := tx.From
	senderTxs, ok := p.bySender[sender]
	if !ok || len(senderTxs) == 0 {
		return true
	}
	if hasIncluded[sender] {
		return tx.Nonce == highest[sender]+1
	}
	minNonce, found := uint64(0), false
	for _, h := range senderTxs {
		e, ok := p.txs[h]
		if !ok {
			continue
		}
		if !found || e.tx.Nonce < minNonce {
			minNonce, found = e.tx.Nonce, true
		}
	}
	if !found {
		return true
	}
	return tx.Nonce == minNonce
}

// calculateTxSize approximates the wire size of tx, mirroring the
// original's fixed-field-plus-data accounting.
func calculateTxSize(tx *types.Transaction) int {
	return 32 + 8 + 32 + 32 + 16 + 8 + 8 + len(tx.Data) + 64
}

// ClearExpired drops every transaction older than the pool's configured
// expiry, relative to now.
func (p *Pool) ClearExpired(now uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if now < p.cfg.TxExpirySecs {
		return
	}
	expiryBefore := now - p.cfg.TxExpirySecs

	var expired []types.Hash
	for h, e := range p.txs {
		if e.addedAt < expiryBefore {
			expired = append(expired, h)
		}
	}
	for _, h := range expired {
		p.removeLocked(h)
	}
	if len(expired) > 0 {
		p.log.Debugf("cleared %d expired transactions", len(expired))
	}
}

// Stats reports current pool composition.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	byClass := make(map[TxClass]int)
	for _, e := range p.txs {
		byClass[e.class]++
	}
	return Stats{
		TotalTransactions: len(p.txs),
		TotalSize:         p.totalSize,
		ByClass:           byClass,
		UniqueSenders:     len(p.bySender),
	}
}

// GetTransaction returns the pooled transaction for hash, if present.
func (p *Pool) GetTransaction(hash types.Hash) (*types.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.txs[hash]
	if !ok {
		return nil, false
	}
	return e.tx, true
}

// Contains reports whether hash is currently pooled.
func (p *Pool) Contains(hash types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.txs[hash]
	return ok
}

// Clear empties the pool entirely, including nonce and eviction state.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs = make(map[types.Hash]*entry)
	p.bySender = make(map[types.PublicKey][]types.Hash)
	p.byNonce = make(map[types.PublicKey]map[uint64]types.Hash)
	p.evicted = bloom.NewWithEstimates(200_000, 0.01)
	p.totalSize = 0
}
