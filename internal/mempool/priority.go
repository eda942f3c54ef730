package mempool

// TxClass categorizes a transaction for prioritization purposes
// (spec.md §4.7), grounded on the original sequencer's TxClass enum.
type TxClass int

const (
	ClassStandard TxClass = iota
	ClassModelUpdate
	ClassTraining
	ClassInference
	ClassStorage
	ClassSystem
)

// Multiplier returns the class's priority multiplier.
func (c TxClass) Multiplier() uint64 {
	switch c {
	case ClassSystem:
		return 1000
	case ClassModelUpdate:
		return 100
	case ClassTraining:
		return 50
	case ClassInference:
		return 20
	case ClassStorage:
		return 10
	default:
		return 1
	}
}

func (c TxClass) String() string {
	switch c {
	case ClassSystem:
		return "system"
	case ClassModelUpdate:
		return "model_update"
	case ClassTraining:
		return "training"
	case ClassInference:
		return "inference"
	case ClassStorage:
		return "storage"
	default:
		return "standard"
	}
}

// Priority is a transaction's ordering key: gas price weighted by its
// class multiplier, older transactions winning ties.
type Priority struct {
	GasPrice  uint64
	Class     TxClass
	Timestamp uint64
}

// Score is the effective priority used to rank transactions.
func (p Priority) Score() uint64 {
	return p.GasPrice * p.Class.Multiplier()
}

// higherPriority reports whether a ranks above b: higher score wins,
// ties broken by the older (smaller) timestamp.
func higherPriority(a, b Priority) bool {
	if a.Score() != b.Score() {
		return a.Score() > b.Score()
	}
	return a.Timestamp < b.Timestamp
}
