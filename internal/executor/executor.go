// Package executor defines the external state-execution boundary the
// block builder depends on (spec.md §6): applying a transaction set to
// a parent state and producing the resulting state/receipt roots.
// Actual state-transition semantics (accounts, contracts, gas
// accounting) are out of this module's scope — this package only
// fixes the interface and ships a deterministic stand-in grounded on
// the original sequencer's block_builder placeholder roots
// (core/sequencer/src/block_builder.rs's calculate_state_root /
// calculate_receipt_root).
package executor

import "github.com/vireo-chain/vireo/internal/types"

// Receipt records the outcome of applying a single transaction.
type Receipt struct {
	TxHash  types.Hash
	Success bool
	GasUsed uint64
}

// Result is the outcome of executing an ordered transaction list
// against a parent state.
type Result struct {
	StateRoot   types.Hash
	ReceiptRoot types.Hash
	GasUsed     uint64
	Receipts    []Receipt
}

// StateExecutor applies txs on top of parentStateRoot and reports the
// resulting roots. Implementations must be deterministic: the same
// (parentStateRoot, txs) pair must always yield the same Result.
type StateExecutor interface {
	Execute(parentStateRoot types.Hash, txs []*types.Transaction) (Result, error)
}

// placeholderStateRoot and placeholderReceiptRoot are fixed stand-ins
// (first byte 1 and 2 respectively, remaining bytes zero) for a
// state-transition function this module doesn't implement.
var (
	placeholderStateRoot   = types.Hash{1}
	placeholderReceiptRoot = types.Hash{2}
)

// NoopExecutor is a deterministic stand-in StateExecutor: it reports
// every transaction as successful, consuming its declared gas limit,
// without actually mutating any account state. Used when no real
// executor is wired, so the builder can still produce well-formed
// blocks in tests and in deployments that execute state elsewhere.
type NoopExecutor struct{}

// Execute implements StateExecutor.
func (NoopExecutor) Execute(_ types.Hash, txs []*types.Transaction) (Result, error) {
	receipts := make([]Receipt, 0, len(txs))
	var gasUsed uint64
	for _, tx := range txs {
		gasUsed += tx.GasLimit
		receipts = append(receipts, Receipt{TxHash: tx.Hash(), Success: true, GasUsed: tx.GasLimit})
	}
	return Result{
		StateRoot:   placeholderStateRoot,
		ReceiptRoot: placeholderReceiptRoot,
		GasUsed:     gasUsed,
		Receipts:    receipts,
	}, nil
}
