// Package builder assembles candidate blocks from the mempool and the
// current DAG frontier (spec.md §4.9), grounded on the original
// sequencer's BlockBuilder (core/sequencer/src/block_builder.rs): pull
// a priority-ordered transaction set from the mempool, cap it to the
// block's size/gas/count budget, hand the ordered set to an external
// state executor for the content roots, and assemble+hash the header.
package builder

import (
	"math/bits"
	"time"

	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/executor"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/mempool"
	"github.com/vireo-chain/vireo/internal/types"
	"github.com/vireo-chain/vireo/internal/xcrypto"
)

// TxBundle groups transactions of one class together for informational
// reporting — class grouping never changes selection order, only how
// the selected set is presented (spec.md §4.9 step 6), mirroring the
// original's TxBundle.
type TxBundle struct {
	Class        mempool.TxClass
	Transactions []*types.Transaction
	TotalGas     uint64
	TotalFees    *feeAccumulator
}

// feeAccumulator totals gas_price*gas_limit across a bundle without
// risking uint64 overflow on pathological inputs.
type feeAccumulator struct {
	hi, lo uint64
}

func (f *feeAccumulator) add(gasPrice, gasLimit uint64) {
	hi, lo := bits.Mul64(gasPrice, gasLimit)
	var carry uint64
	f.lo, carry = bits.Add64(f.lo, lo, 0)
	f.hi += hi + carry
}

func newBundle(class mempool.TxClass) *TxBundle {
	return &TxBundle{Class: class, TotalFees: &feeAccumulator{}}
}

func (b *TxBundle) addTransaction(tx *types.Transaction) {
	b.TotalGas += tx.GasLimit
	b.TotalFees.add(tx.GasPrice, tx.GasLimit)
	b.Transactions = append(b.Transactions, tx)
}

func (b *TxBundle) isFull(maxSize int) bool {
	return len(b.Transactions) >= maxSize
}

// Builder assembles candidate blocks.
type Builder struct {
	cfg         config.BuilderConfig
	pool        *mempool.Pool
	proposer    types.PublicKey
	proposerKey ed25519PrivateKey
	exec        executor.StateExecutor
	log         logging.Logger
}

// ed25519PrivateKey avoids importing crypto/ed25519 directly in the
// exported surface; xcrypto.Sign takes this concrete type.
type ed25519PrivateKey = []byte

// New builds a Builder under cfg, selecting from pool and signing
// built blocks as proposer. If exec is nil, NoopExecutor is used.
func New(cfg config.BuilderConfig, pool *mempool.Pool, proposer types.PublicKey, priv ed25519PrivateKey, exec executor.StateExecutor, log logging.Logger) *Builder {
	if log == nil {
		log = logging.Nop()
	}
	if exec == nil {
		exec = executor.NoopExecutor{}
	}
	return &Builder{cfg: cfg, pool: pool, proposer: proposer, proposerKey: priv, exec: exec, log: log}
}

// BuildBlock assembles a new candidate block atop selectedParent,
// merging mergeParents, per spec.md §4.9's build_block.
func (b *Builder) BuildBlock(selectedParent types.Hash, mergeParents []types.Hash, parentHeight, parentBlueScore uint64, vrfProof types.VrfProof, parentStateRoot types.Hash) (*types.Block, error) {
	b.log.Infof("building new block with parent %s", selectedParent)

	txs := b.selectTransactions()
	if len(txs) == 0 && b.cfg.MinTransactions > 0 {
		return nil, types.ErrNoTransactions
	}

	result, err := b.exec.Execute(parentStateRoot, txs)
	if err != nil {
		return nil, types.Wrap(err, "state executor")
	}

	header := &types.Header{
		Version:        1,
		SelectedParent: selectedParent,
		MergeParents:   mergeParents,
		Timestamp:      uint64(time.Now().Unix()),
		Height:         parentHeight + 1,
		BlueScore:      parentBlueScore + 1, // reconciled by GHOSTDAG on insert
		BlueWork:       nil,                 // reconciled by GHOSTDAG on insert
		ProposerPubkey: b.proposer,
		VrfReveal:      vrfProof,
		GasUsed:        result.GasUsed,
		GasLimit:       b.cfg.MaxGasPerBlock,
		StateRoot:      result.StateRoot,
		TxRoot:         types.ComputeTxRoot(txs),
		ReceiptRoot:    result.ReceiptRoot,
		ArtifactRoot:   types.ZeroHash,
	}

	body := &types.Body{
		GhostdagParams: types.GhostdagParamsSnapshot{},
		Transactions:   txs,
	}
	if len(b.proposerKey) > 0 {
		block := &types.Block{Header: header, Body: body}
		body.Signature = xcrypto.Sign(b.proposerKey, block.Hash().Bytes())
	}

	block := &types.Block{Header: header, Body: body}
	b.log.Infof("built block %s at height %d with %d transactions", block.Hash(), header.Height, len(txs))
	return block, nil
}

// selectTransactions pulls a priority-ordered set from the mempool and
// caps it to the configured gas budget, mirroring the original's
// select_transactions (gas checked after the mempool's own size/count
// bound, since GetBestTransactions doesn't know about gas).
func (b *Builder) selectTransactions() []*types.Transaction {
	candidates := b.pool.GetBestTransactions(b.cfg.MaxTransactions, b.cfg.MaxBlockSize)

	selected := make([]*types.Transaction, 0, len(candidates))
	var totalGas uint64
	for _, tx := range candidates {
		if totalGas+tx.GasLimit > b.cfg.MaxGasPerBlock {
			break
		}
		totalGas += tx.GasLimit
		selected = append(selected, tx)
	}
	b.log.Debugf("selected %d transactions with total gas %d", len(selected), totalGas)
	return selected
}

// BundleTransactions groups the currently selectable transactions into
// same-class bundles of at most cfg.BundleSize, preserving each
// transaction's priority order within its bundle (spec.md §4.9 step 6,
// informational only). Returns nil if bundling is disabled.
func (b *Builder) BundleTransactions() []*TxBundle {
	if !b.cfg.EnableBundling {
		return nil
	}
	txs := b.selectTransactions()
	var bundles []*TxBundle
	for _, tx := range txs {
		class := classifyTransaction(tx)
		var target *TxBundle
		for _, bundle := range bundles {
			if bundle.Class == class && !bundle.isFull(b.cfg.BundleSize) {
				target = bundle
				break
			}
		}
		if target == nil {
			target = newBundle(class)
			bundles = append(bundles, target)
		}
		target.addTransaction(tx)
	}
	b.log.Infof("created %d transaction bundles", len(bundles))
	return bundles
}

// classifyTransaction infers a transaction's class from its payload,
// mirroring the original's simplified classify_transaction — a real
// deployment would classify at admission time instead, but bundling
// only needs a best-effort grouping.
func classifyTransaction(tx *types.Transaction) mempool.TxClass {
	switch {
	case len(tx.Data) == 0:
		return mempool.ClassStandard
	case len(tx.Data) > 10_000:
		return mempool.ClassModelUpdate
	case hasPrefix(tx.Data, "inference"):
		return mempool.ClassInference
	case hasPrefix(tx.Data, "training"):
		return mempool.ClassTraining
	case hasPrefix(tx.Data, "storage"):
		return mempool.ClassStorage
	default:
		return mempool.ClassStandard
	}
}

func hasPrefix(data []byte, prefix string) bool {
	return len(data) >= len(prefix) && string(data[:len(prefix)]) == prefix
}

// ValidateBlock checks size, gas, and count invariants before a built
// block is proposed, per spec.md §4.9's validate_block.
func (b *Builder) ValidateBlock(block *types.Block) error {
	size := estimateBlockSize(block)
	if size > b.cfg.MaxBlockSize {
		return types.ErrBlockSizeExceeded
	}
	var totalGas uint64
	for _, tx := range block.Body.Transactions {
		totalGas += tx.GasLimit
	}
	if totalGas > b.cfg.MaxGasPerBlock {
		return types.ErrBuilderGasExceeded
	}
	if len(block.Body.Transactions) > b.cfg.MaxTransactions {
		return types.ErrBlockSizeExceeded
	}
	return nil
}

// estimateBlockSize approximates a block's wire size: a fixed header
// estimate plus each transaction's fixed-field-plus-data accounting,
// mirroring the original's estimate_block_size.
func estimateBlockSize(block *types.Block) int {
	size := 200
	for _, tx := range block.Body.Transactions {
		size += 32 + 8 + 32 + 32 + 16 + 8 + 8 + len(tx.Data) + 64
	}
	return size
}
