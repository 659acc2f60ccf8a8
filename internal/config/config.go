package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/viper"

	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/units"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	configFile   = "config.json"
	accountsFile = "accounts.json"
	stateFile    = "state.json"
	logDir       = "logs"
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Load reads config from dir, layering defaults, config.json and TADA_*
// environment variables. dir defaults to $TADA_CONFIG_DIR, then ~/.tada.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(DirEnv)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".tada")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, configFile))
	v.SetConfigType("json")

	defaults := map[string]interface{}{
		"base_price":      DefaultBasePrice,
		"slope":           DefaultSlope,
		"seed":            DefaultSeed,
		"faucet_amount":   DefaultFaucetAmount,
		"initial_supply":  DefaultInitialSupply,
		"treasury_share":  DefaultTreasuryShare,
		"quote_budget":    DefaultQuoteBudget,
		"watch_interval":  DefaultWatchInterval,
		"log_level":       DefaultLogLevel,
		"log_file":        filepath.Join(dir, logDir, "tada.log"),
		"log_max_size_mb": DefaultLogMaxSizeMB,
		"log_max_backups": DefaultLogMaxBackups,
		"log_max_age":     DefaultLogMaxAgeDays,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.configDir = dir
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Validate checks every field and returns the first problem wrapped in
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if _, err := c.Curve(); err != nil {
		return err
	}
	amounts := []struct{ key, val string }{
		{"seed", c.Seed},
		{"faucet_amount", c.FaucetAmount},
		{"initial_supply", c.InitialSupply},
		{"quote_budget", c.QuoteBudget},
	}
	for _, a := range amounts {
		v, err := units.ParseEther(a.val)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, a.key, err)
		}
		if v.IsZero() {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, a.key)
		}
	}
	if c.TreasuryShare == 0 || c.TreasuryShare > 100 {
		return fmt.Errorf("%w: treasury_share must be between 1 and 100", ErrInvalidConfig)
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("%w: watch_interval must be positive", ErrInvalidConfig)
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q (want one of %s)", ErrInvalidConfig, c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.LogMaxSizeMB <= 0 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("%w: log rotation settings", ErrInvalidConfig)
	}
	return nil
}

// Curve builds the pricing curve from BasePrice and Slope.
func (c *Config) Curve() (*curve.Curve, error) {
	base, err := units.ParseEther(c.BasePrice)
	if err != nil {
		return nil, fmt.Errorf("%w: base_price: %v", ErrInvalidConfig, err)
	}
	slope, err := units.ParseEther(c.Slope)
	if err != nil {
		return nil, fmt.Errorf("%w: slope: %v", ErrInvalidConfig, err)
	}
	cv, err := curve.New(base, slope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cv, nil
}

// Amount parses one of the decimal amount fields into wei.
func (c *Config) Amount(v string) (*uint256.Int, error) {
	return units.ParseEther(v)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// StatePath is where the chain state is persisted.
func (c *Config) StatePath() string {
	return filepath.Join(c.configDir, stateFile)
}

// AccountsPath is where the account address book is kept.
func (c *Config) AccountsPath() string {
	return filepath.Join(c.configDir, accountsFile)
}

// --- helpers ---

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
