// Package config holds the parameter structs of every component, loaded
// from YAML — the teacher pack's config format (AKJUS-bsc-erigon,
// karalabe-ssz both depend on gopkg.in/yaml.v3).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// GhostdagParams are the GHOSTDAG/DAG-wide parameters of spec.md §4.2.
type GhostdagParams struct {
	K                 uint32 `yaml:"k"`
	MaxParents        uint32 `yaml:"max_parents"`
	MaxBlueScoreDiff  uint64 `yaml:"max_blue_score_diff"`
	PruningWindow     uint64 `yaml:"pruning_window"`
	FinalityDepth     uint64 `yaml:"finality_depth"`
}

// MempoolConfig is spec.md §4.7's configuration.
type MempoolConfig struct {
	MaxSize             int     `yaml:"max_size"`
	MaxPerSender        int     `yaml:"max_per_sender"`
	MinGasPrice         uint64  `yaml:"min_gas_price"`
	TxExpirySecs        uint64  `yaml:"tx_expiry_secs"`
	AllowReplacement    bool    `yaml:"allow_replacement"`
	ReplacementFactor   uint64  `yaml:"replacement_factor"` // percent, e.g. 110
	RateLimitWindowSecs uint64  `yaml:"rate_limit_window_secs"`
}

// ValidatorRules is spec.md §4.8's two-phase pipeline configuration.
type ValidatorRules struct {
	MinGasPrice         uint64 `yaml:"min_gas_price"`
	MaxGasLimit         uint64 `yaml:"max_gas_limit"`
	MaxDataSize         int    `yaml:"max_data_size"`
	VerifySignatures    bool   `yaml:"verify_signatures"`
	CheckNonce          bool   `yaml:"check_nonce"`
	CheckBalance        bool   `yaml:"check_balance"`
	RateLimit           uint32 `yaml:"rate_limit"`
	RateLimitWindowSecs uint64 `yaml:"rate_limit_window_secs"`
}

// BuilderConfig is spec.md §4.9's configuration.
type BuilderConfig struct {
	MaxBlockSize     int    `yaml:"max_block_size"`
	MaxGasPerBlock   uint64 `yaml:"max_gas_per_block"`
	MinTransactions  int    `yaml:"min_transactions"`
	MaxTransactions  int    `yaml:"max_transactions"`
	BlockTimeTarget  uint64 `yaml:"block_time_target"`
	EnableBundling   bool   `yaml:"enable_bundling"`
	BundleSize       int    `yaml:"bundle_size"`
}

// FinalityConfig is spec.md §4.5's configuration.
type FinalityConfig struct {
	ConfirmationDepth uint64 `yaml:"confirmation_depth"`
	MaxFinalizeBatch  uint64 `yaml:"max_finalize_batch"`
	EmitEvents        bool   `yaml:"emit_events"`
}

// Config is the root configuration of a node.
type Config struct {
	Ghostdag  GhostdagParams  `yaml:"ghostdag"`
	Mempool   MempoolConfig   `yaml:"mempool"`
	Validator ValidatorRules  `yaml:"validator"`
	Builder   BuilderConfig   `yaml:"builder"`
	Finality  FinalityConfig  `yaml:"finality"`
}

// Default returns the configuration used throughout spec.md §8's
// scenarios (K=18, max_parents=10, etc.).
func Default() Config {
	return Config{
		Ghostdag: GhostdagParams{
			K:                18,
			MaxParents:       10,
			MaxBlueScoreDiff: 10_000,
			PruningWindow:    2_000_000,
			FinalityDepth:    3,
		},
		Mempool: MempoolConfig{
			MaxSize:             10_000,
			MaxPerSender:        100,
			MinGasPrice:         1_000_000_000,
			TxExpirySecs:        3_600,
			AllowReplacement:    true,
			ReplacementFactor:   110,
			RateLimitWindowSecs: 60,
		},
		Validator: ValidatorRules{
			MinGasPrice:         1_000_000_000,
			MaxGasLimit:         10_000_000,
			MaxDataSize:         128 * 1024,
			CheckNonce:          true,
			CheckBalance:        true,
			RateLimit:           100,
			RateLimitWindowSecs: 60,
		},
		Builder: BuilderConfig{
			MaxBlockSize:    1_000_000,
			MaxGasPerBlock:  30_000_000,
			MinTransactions: 0,
			MaxTransactions: 5_000,
			BlockTimeTarget: 2,
			EnableBundling:  true,
			BundleSize:      10,
		},
		Finality: FinalityConfig{
			ConfirmationDepth: 3,
			MaxFinalizeBatch:  1_000,
			EmitEvents:        true,
		},
	}
}

// Load reads and parses a YAML config file, falling back to Default()
// fields left unset is not attempted — callers who want layered defaults
// should start from Default() and override explicitly.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
