// Package metrics exposes the node's Prometheus gauges and counters,
// grounded on the fork-choice metrics pattern (promauto.NewCounter /
// NewGaugeVec) seen across the retrieval pack's beacon-chain code.
// Values are pushed rather than scraped on demand: the node's periodic
// stats loop pushes the DAG and mempool gauges, and the chain selector
// and node increment the reorg and block counters as events happen.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DAGBlockCount is the total number of blocks the DAG store holds.
	DAGBlockCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "dag",
		Name:      "block_count",
		Help:      "Total number of blocks stored in the DAG.",
	})

	// DAGTipCount is the current number of tips (blocks with no children).
	DAGTipCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "dag",
		Name:      "tip_count",
		Help:      "Current number of DAG tips.",
	})

	// DAGMaxBlueScore is the highest blue score observed across all tips.
	DAGMaxBlueScore = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "dag",
		Name:      "max_blue_score",
		Help:      "Highest blue score observed across all DAG tips.",
	})

	// DAGColorCount reports blocks classified blue vs. red by GHOSTDAG,
	// split by the "color" label.
	DAGColorCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "dag",
		Name:      "colored_block_count",
		Help:      "Number of blocks classified by GHOSTDAG color.",
	}, []string{"color"})

	// ReorgCount counts selected-chain reorganizations observed by the
	// chain selector.
	ReorgCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vireo",
		Subsystem: "chainselect",
		Name:      "reorg_total",
		Help:      "Number of times the selected chain reorganized.",
	})

	// RejectedReorgs counts candidate chain-selector reorgs refused
	// because they would have removed a finalized block.
	RejectedReorgs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vireo",
		Subsystem: "chainselect",
		Name:      "rejected_reorgs_total",
		Help:      "Number of reorgs rejected by the finality tracker.",
	})

	// FinalityDepth is the blue-score distance between the current
	// selected tip and the last tracked finality point.
	FinalityDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "finality",
		Name:      "depth",
		Help:      "Blue-score distance between the selected tip and the finality point.",
	})

	// MempoolSize is the current number of pooled transactions.
	MempoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "mempool",
		Name:      "size",
		Help:      "Current number of transactions held in the mempool.",
	})

	// MempoolQueueBytes is the current total byte size of pooled
	// transactions.
	MempoolQueueBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "mempool",
		Name:      "queue_bytes",
		Help:      "Current total byte size of pooled transactions.",
	})

	// MempoolByClass reports pooled transaction counts split by class.
	MempoolByClass = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "vireo",
		Subsystem: "mempool",
		Name:      "by_class",
		Help:      "Pooled transaction count by priority class.",
	}, []string{"class"})

	// MempoolRejections counts transactions rejected at admission,
	// split by reason.
	MempoolRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vireo",
		Subsystem: "mempool",
		Name:      "rejections_total",
		Help:      "Transactions rejected at mempool admission, by reason.",
	}, []string{"reason"})

	// BlocksBuilt counts blocks assembled by the builder.
	BlocksBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vireo",
		Subsystem: "builder",
		Name:      "blocks_built_total",
		Help:      "Number of blocks assembled by the block builder.",
	})
)

// RecordDAGStats pushes a snapshot of DAG-wide gauges.
func RecordDAGStats(blockCount, tipCount int, maxBlueScore uint64, blueCount, redCount int) {
	DAGBlockCount.Set(float64(blockCount))
	DAGTipCount.Set(float64(tipCount))
	DAGMaxBlueScore.Set(float64(maxBlueScore))
	DAGColorCount.WithLabelValues("blue").Set(float64(blueCount))
	DAGColorCount.WithLabelValues("red").Set(float64(redCount))
}

// RecordMempoolStats pushes a snapshot of mempool gauges, keyed by a
// class name -> count map so callers don't need to depend on the
// mempool package's TxClass type here.
func RecordMempoolStats(total, totalBytes int, byClass map[string]int) {
	MempoolSize.Set(float64(total))
	MempoolQueueBytes.Set(float64(totalBytes))
	for class, count := range byClass {
		MempoolByClass.WithLabelValues(class).Set(float64(count))
	}
}
