package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/ui"
	"github.com/marvinkome/tada/internal/wallet"
)

var (
	initForce    bool
	initDeployer string
	initCreators []string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Deploy ShillToken and TaDa to a fresh local chain",
	Long: `Create a fresh chain: deploy ShillToken and the TaDa factory from
the deployer account, move the treasury share of SHILL into the faucet
and create any creator tokens passed with --creator.

The deployer account is created if it does not exist. It owns TaDa and
is the only account allowed to hand out faucet SHILL.

Examples:
  tada init
  tada init --creator "Mark Rober:MKR" --creator "Veritasium:VRT"
  tada init --force                # wipe existing state`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		store := newStore()

		unlock, err := store.Lock(cmd.Context())
		if err != nil {
			return err
		}
		defer unlock()

		if store.Exists() && !initForce {
			return errors.New("chain state already exists; pass --force to start over")
		}

		specs, err := parseCreatorSpecs(initCreators)
		if err != nil {
			return err
		}

		mgr := newWalletManager()
		deployer, err := mgr.Get(initDeployer)
		if errors.Is(err, wallet.ErrAccountNotFound) {
			deployer, err = mgr.Create(initDeployer)
		}
		if err != nil {
			return err
		}

		gc, err := genesisConfig(deployer.Address, specs)
		if err != nil {
			return err
		}
		c, err := chain.Genesis(gc)
		if err != nil {
			return err
		}
		if err := store.Save(c); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		log.Info("chain initialised", zap.String("deployer", deployer.Address.Hex()), zap.Bool("force", initForce))

		fmt.Fprintln(out, ui.Banner())
		printBlock(out, "Genesis", [][2]string{
			{"Deployer", accountLabel(mgr, deployer.Address)},
			{"ShillToken", ui.Addr(c.ShillToken().Address().Hex())},
			{"TaDa", ui.Addr(c.TaDa().Address().Hex())},
			{"SHILL supply", fmtAmount(c.ShillToken().TotalSupply())},
			{"Faucet treasury", fmtAmount(c.ShillToken().BalanceOf(c.TaDa().Address()))},
			{"Faucet amount", fmtAmount(c.TaDa().FaucetAmount())},
			{"Creators", fmt.Sprintf("%d", len(specs))},
		})
		fmt.Fprintln(out, ui.Hint("Create a trading account with: tada account create <name>"))
		return nil
	},
}

// genesisConfig builds the deployment parameters from config.
func genesisConfig(deployer common.Address, specs []chain.CreatorSpec) (chain.GenesisConfig, error) {
	cv, err := cfg.Curve()
	if err != nil {
		return chain.GenesisConfig{}, err
	}
	supply, err := cfg.Amount(cfg.InitialSupply)
	if err != nil {
		return chain.GenesisConfig{}, fmt.Errorf("initial_supply: %w", err)
	}
	faucet, err := cfg.Amount(cfg.FaucetAmount)
	if err != nil {
		return chain.GenesisConfig{}, fmt.Errorf("faucet_amount: %w", err)
	}
	seed, err := cfg.Amount(cfg.Seed)
	if err != nil {
		return chain.GenesisConfig{}, fmt.Errorf("seed: %w", err)
	}
	return chain.GenesisConfig{
		Deployer:      deployer,
		InitialSupply: supply,
		TreasuryShare: cfg.TreasuryShare,
		FaucetAmount:  faucet,
		Curve:         cv,
		Seed:          seed,
		Creators:      specs,
		Logger:        log,
	}, nil
}

// parseCreatorSpecs reads "Name:SYMBOL" pairs.
func parseCreatorSpecs(raw []string) ([]chain.CreatorSpec, error) {
	specs := make([]chain.CreatorSpec, 0, len(raw))
	for _, r := range raw {
		idx := strings.LastIndex(r, ":")
		if idx <= 0 || idx == len(r)-1 {
			return nil, fmt.Errorf("invalid creator %q; want \"Name:SYMBOL\"", r)
		}
		specs = append(specs, chain.CreatorSpec{
			Name:   strings.TrimSpace(r[:idx]),
			Symbol: strings.TrimSpace(r[idx+1:]),
		})
	}
	return specs, nil
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace existing chain state")
	initCmd.Flags().StringVar(&initDeployer, "deployer", "relayer", "account that deploys and owns TaDa")
	initCmd.Flags().StringArrayVar(&initCreators, "creator", nil, `creator token to create at genesis, as "Name:SYMBOL" (repeatable)`)
}
