package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/config"
	"github.com/marvinkome/tada/internal/logger"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/marvinkome/tada/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir   string
	cfg      *config.Config
	log      = zap.NewNop()
	closeLog func() error
	verbose  bool
	fromFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tada",
	Short: "Creator tokens on a bonding curve",
	Long: `tada runs a local creator-token exchange.

Every creator gets a token priced by a bonding curve and backed by
ShillToken (SHILL). Buying mints new tokens and raises the price,
selling burns them and pays SHILL back out of the reserve.

State lives in ~/.tada (override with --config-dir or TADA_CONFIG_DIR).
Start with: tada init`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, closeLog, err = logger.New(logger.Options{
			File:       cfg.LogFile,
			Level:      cfg.LogLevel,
			MaxSizeMB:  cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAgeDays: cfg.LogMaxAgeDays,
			Verbose:    verbose,
			Console:    cmd.ErrOrStderr(),
		})
		if err != nil {
			return fmt.Errorf("starting logger: %w", err)
		}
		log.Debug("command", zap.String("name", cmd.CommandPath()), zap.Strings("args", args))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if closeLog != nil {
		closeLog() //nolint:errcheck
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config-dir", "", "config directory (default: $TADA_CONFIG_DIR or ~/.tada)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	rootCmd.PersistentFlags().StringVar(&fromFlag, "from", "", "account name or address to act as (default: default account)")

	rootCmd.AddCommand(
		initCmd,
		accountCmd,
		creatorCmd,
		quoteCmd,
		buyCmd,
		sellCmd,
		tokenCmd,
		balanceCmd,
		faucetCmd,
		txsCmd,
		convertCmd,
		callCmd,
		abiCmd,
		watchCmd,
		simulateCmd,
	)
}
