// Package node wires every subsystem into a single running instance,
// playing the role the teacher's kaspad struct plays in kaspad.go:
// construct each component in dependency order, seed genesis, and
// expose start/stop with the same atomic-guard idiom.
package node

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/vireo-chain/vireo/internal/builder"
	"github.com/vireo-chain/vireo/internal/chainselect"
	"github.com/vireo-chain/vireo/internal/config"
	"github.com/vireo-chain/vireo/internal/dagstore"
	"github.com/vireo-chain/vireo/internal/executor"
	"github.com/vireo-chain/vireo/internal/finality"
	"github.com/vireo-chain/vireo/internal/ghostdag"
	"github.com/vireo-chain/vireo/internal/logging"
	"github.com/vireo-chain/vireo/internal/mempool"
	"github.com/vireo-chain/vireo/internal/metrics"
	"github.com/vireo-chain/vireo/internal/ordering"
	"github.com/vireo-chain/vireo/internal/store"
	"github.com/vireo-chain/vireo/internal/tipselect"
	"github.com/vireo-chain/vireo/internal/types"
	"github.com/vireo-chain/vireo/internal/validator"
	"github.com/vireo-chain/vireo/internal/xcrypto"
)

const orderingCacheSize = 4096

// Node wires together the DAG store, GHOSTDAG engine, tip/chain
// selection, finality tracking, mempool, validator, and block builder
// into one running instance.
type Node struct {
	cfg config.Config
	log logging.Logger

	KV        store.KVStore
	DAGStore  *dagstore.Store
	Ghostdag  *ghostdag.Engine
	TipSelect *tipselect.Selector
	Ordering  *ordering.Orderer
	Finality  *finality.Tracker
	Chain     *chainselect.Selector
	Mempool   *mempool.Pool
	Validator *validator.Validator
	Builder   *builder.Builder

	genesis types.Hash

	statsInterval time.Duration
	stopStats     chan struct{}

	started, stopped int32
}

// Options configures a Node beyond what config.Config carries.
type Options struct {
	Config        config.Config
	KV            store.KVStore // nil selects an in-memory store
	Executor      executor.StateExecutor
	StateProvider validator.StateProvider
	ProposerPub   types.PublicKey
	ProposerKey   []byte // ed25519 private key, nil disables block signing
	Logger        logging.Logger
	StatsInterval time.Duration // 0 disables periodic metrics push
}

// New constructs a Node and seeds it with a genesis block, mirroring
// newKaspad's role of assembling the DAG, mempool, and the components
// layered on top of it.
func New(opts Options) (*Node, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	kv := opts.KV
	if kv == nil {
		kv = store.NewMemStore()
	}

	dagStore := dagstore.New(kv, log.With("component", "dagstore"))
	engine := ghostdag.New(dagStore, opts.Config.Ghostdag, log.With("component", "ghostdag"))
	tips := tipselect.New(dagStore, engine, opts.Config.Ghostdag)
	order := ordering.New(dagStore, engine, orderingCacheSize)
	ft := finality.New(dagStore, engine, opts.Config.Finality.ConfirmationDepth, log.With("component", "finality"))
	chain := chainselect.New(dagStore, engine, tips, ft, log.With("component", "chainselect"))
	pool := mempool.New(opts.Config.Mempool, log.With("component", "mempool"))

	state := opts.StateProvider
	if state == nil {
		state = validator.NewMemStateProvider()
	}
	val := validator.New(opts.Config.Validator, state, log.With("component", "validator"))

	exec := opts.Executor
	if exec == nil {
		exec = executor.NoopExecutor{}
	}
	bld := builder.New(opts.Config.Builder, pool, opts.ProposerPub, opts.ProposerKey, exec, log.With("component", "builder"))

	n := &Node{
		cfg:           opts.Config,
		log:           log,
		KV:            kv,
		DAGStore:      dagStore,
		Ghostdag:      engine,
		TipSelect:     tips,
		Ordering:      order,
		Finality:      ft,
		Chain:         chain,
		Mempool:       pool,
		Validator:     val,
		Builder:       bld,
		statsInterval: opts.StatsInterval,
		stopStats:     make(chan struct{}),
	}

	genesis := NewGenesisBlock(opts.Config.Ghostdag)
	if err := dagStore.StoreBlock(genesis); err != nil {
		return nil, errors.Wrap(err, "storing genesis")
	}
	n.genesis = genesis.Hash()
	engine.SeedGenesis(n.genesis)
	ft.SeedGenesis(n.genesis)
	chain.SeedGenesis(n.genesis)

	return n, nil
}

// NewGenesisBlock builds the deterministic genesis block for params:
// zero selected-parent, height zero, and placeholder roots — there is
// no prior state to commit to.
func NewGenesisBlock(params config.GhostdagParams) *types.Block {
	header := &types.Header{
		Version:        1,
		SelectedParent: types.ZeroHash,
		Timestamp:      0,
		Height:         0,
		BlueScore:      1,
		StateRoot:      types.ZeroHash,
		TxRoot:         types.ComputeTxRoot(nil),
		ReceiptRoot:    types.ZeroHash,
		ArtifactRoot:   types.ZeroHash,
	}
	body := &types.Body{
		GhostdagParams: types.GhostdagParamsSnapshot{
			K:                params.K,
			MaxParents:       params.MaxParents,
			MaxBlueScoreDiff: params.MaxBlueScoreDiff,
			PruningWindow:    params.PruningWindow,
			FinalityDepth:    params.FinalityDepth,
		},
	}
	return &types.Block{Header: header, Body: body}
}

// Genesis returns the hash of the genesis block this node was seeded
// with.
func (n *Node) Genesis() types.Hash {
	return n.genesis
}

// SubmitBlock validates a remotely or locally produced block's
// structural invariants, admits it to the DAG store, runs GHOSTDAG
// over it, and lets the chain selector react to any tip change.
func (n *Node) SubmitBlock(b *types.Block) (*chainselect.ChainUpdate, error) {
	if err := n.DAGStore.StoreBlock(b); err != nil {
		return nil, err
	}
	if _, err := n.Ghostdag.Run(b.Hash()); err != nil {
		return nil, err
	}
	update, err := n.Chain.OnNewBlock()
	if err != nil {
		return nil, err
	}
	if len(update.Removed) > 0 {
		metrics.ReorgCount.Inc()
	}

	if tip, ok := n.Chain.SelectedTip(); ok {
		if err := n.Finality.UpdateFinalityPoint(tip); err != nil {
			return nil, err
		}
	}

	return update, nil
}

// ProposeBlock selects parents from the current DAG frontier and asks
// the builder to assemble a new block atop them.
func (n *Node) ProposeBlock(vrfProof types.VrfProof) (*types.Block, error) {
	selectedParent, mergeParents, err := n.TipSelect.ParentSelector()
	if err != nil {
		return nil, err
	}
	parentData, ok := n.Ghostdag.Data(selectedParent)
	if !ok {
		return nil, errors.Errorf("missing GHOSTDAG data for selected parent %s", selectedParent)
	}
	parentBlock, err := n.DAGStore.GetBlock(selectedParent)
	if err != nil {
		return nil, err
	}

	block, err := n.Builder.BuildBlock(selectedParent, mergeParents, parentBlock.Header.Height, parentData.BlueScore, vrfProof, parentBlock.Header.StateRoot)
	if err != nil {
		return nil, err
	}
	metrics.BlocksBuilt.Inc()
	return block, nil
}

// Start launches the node's background loops (currently: periodic
// metrics snapshotting). It is idempotent.
func (n *Node) Start() {
	if !atomic.CompareAndSwapInt32(&n.started, 0, 1) {
		return
	}
	n.log.Infof("node started, genesis=%s", n.genesis)
	if n.statsInterval > 0 {
		go n.runStatsLoop()
	}
}

// Stop halts background loops. It is idempotent.
func (n *Node) Stop() {
	if !atomic.CompareAndSwapInt32(&n.stopped, 0, 1) {
		return
	}
	close(n.stopStats)
	n.log.Infof("node stopped")
}

func (n *Node) runStatsLoop() {
	ticker := time.NewTicker(n.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n.pushStats()
		case <-n.stopStats:
			return
		}
	}
}

func (n *Node) pushStats() {
	tips := n.DAGStore.GetTips()
	var maxBlueScore uint64
	for _, tip := range tips {
		if data, ok := n.Ghostdag.Data(tip); ok && data.BlueScore > maxBlueScore {
			maxBlueScore = data.BlueScore
		}
	}

	// Blue/red counts are only meaningful relative to a single
	// viewpoint; the selected tip's own GHOSTDAG data is that
	// viewpoint's anticone coloring.
	var blueCount, redCount int
	if selectedTip, ok := n.Chain.SelectedTip(); ok {
		if data, ok := n.Ghostdag.Data(selectedTip); ok {
			blueCount = len(data.Blues)
			redCount = len(data.Reds)
		}
	}
	metrics.RecordDAGStats(n.DAGStore.BlockCount(), len(tips), maxBlueScore, blueCount, redCount)

	stats := n.Mempool.Stats()
	byClass := make(map[string]int, len(stats.ByClass))
	for class, count := range stats.ByClass {
		byClass[class.String()] = count
	}
	metrics.RecordMempoolStats(stats.TotalTransactions, stats.TotalSize, byClass)
}

// VerifyProposerVrf confirms the VRF proof embedded in a header was
// produced by its proposer over the selected-parent seed, grounded on
// xcrypto.VerifyVrf.
func VerifyProposerVrf(header *types.Header, seed []byte) bool {
	return xcrypto.VerifyVrf(header.ProposerPubkey, seed, header.VrfReveal)
}
