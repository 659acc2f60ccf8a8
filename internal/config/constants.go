package config

import "time"

// Defaults written to a fresh config.
const (
	DefaultBasePrice     = "0.01"
	DefaultSlope         = "0.001"
	DefaultSeed          = "1"
	DefaultFaucetAmount  = "50"
	DefaultInitialSupply = "10000000"
	DefaultTreasuryShare = uint64(80)
	DefaultQuoteBudget   = "1"
	DefaultWatchInterval = 2
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// EnvPrefix prefixes every environment override, e.g. TADA_LOG_LEVEL.
const EnvPrefix = "TADA"

// DirEnv overrides the config directory.
const DirEnv = "TADA_CONFIG_DIR"

// Timeouts used by cmd.
const (
	StateLockTimeout = 10 * time.Second // waiting for another tada process to release state
	QuoteTimeout     = 5 * time.Second  // concurrent market quotes
)
