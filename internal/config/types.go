package config

// Config holds all tada configuration. Amounts are decimal ShillToken
// strings ("0.01") so the file stays human-editable.
type Config struct {
	// Curve and genesis parameters, only read by `tada init`.
	BasePrice     string `json:"base_price"     mapstructure:"base_price"`
	Slope         string `json:"slope"          mapstructure:"slope"`
	Seed          string `json:"seed"           mapstructure:"seed"`
	FaucetAmount  string `json:"faucet_amount"  mapstructure:"faucet_amount"`
	InitialSupply string `json:"initial_supply" mapstructure:"initial_supply"`
	TreasuryShare uint64 `json:"treasury_share" mapstructure:"treasury_share"` // percent

	QuoteBudget   string `json:"quote_budget"   mapstructure:"quote_budget"`   // budget used for price lists
	WatchInterval int    `json:"watch_interval" mapstructure:"watch_interval"` // seconds

	LogLevel      string `json:"log_level"       mapstructure:"log_level"`
	LogFile       string `json:"log_file"        mapstructure:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age"     mapstructure:"log_max_age"`

	// internal: config dir path used for Save()
	configDir string
}
