package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/chain"
	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/market"
	"github.com/marvinkome/tada/internal/ui"
)

var (
	simSteps    int
	simSeed     uint64
	simTraders  int
	simCreators int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run random trades on a throwaway chain and check every invariant",
	Long: `Deploy a fresh in-memory chain with the configured curve, fund a set
of traders from the faucet and run random buys and sells against random
creator markets. Every market and ledger invariant is checked after each
step; the run stops at the first violation.

Nothing is written to the persisted chain state. The same --seed always
replays the same run.

Examples:
  tada simulate
  tada simulate --steps 5000 --traders 20 --seed 7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if simSteps <= 0 || simTraders <= 0 || simCreators <= 0 {
			return errors.New("--steps, --traders and --creators must be positive")
		}
		sim, err := newSimulation(cmd.Context(), simSeed, simTraders, simCreators)
		if err != nil {
			return err
		}
		stats, err := sim.run(cmd.Context(), simSteps)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printBlock(out, "Simulation", [][2]string{
			{"Seed", fmt.Sprintf("%d", simSeed)},
			{"Steps", fmt.Sprintf("%d", stats.steps)},
			{"Buys", fmt.Sprintf("%d", stats.buys)},
			{"Sells", fmt.Sprintf("%d", stats.sells)},
			{"Reverted", fmt.Sprintf("%d", stats.failed)},
			{"Final block", fmt.Sprintf("%d", sim.chain.Block())},
		})
		t := ui.NewTable([]ui.Column{
			{Title: "Symbol", Width: 8},
			{Title: "Supply", Width: 16, Right: true},
			{Title: "Reserve", Width: 16, Right: true},
			{Title: "Spot", Width: 14, Right: true},
		})
		for _, m := range sim.chain.TaDa().Markets() {
			spot, _ := m.SpotPrice()
			t.AddRow(ui.Row{ui.Symbol(m.Symbol()), fmtAmount(m.TotalSupply()), fmtAmount(m.ReserveBalance()), fmtAmount(spot)})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Success("all invariants held"))
		return nil
	},
}

type simStats struct {
	steps, buys, sells, failed int
}

type simulation struct {
	chain   *chain.Chain
	traders []common.Address
	rng     *rand.Rand
}

func simAddress(label string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(label)))
}

// newSimulation deploys a chain with n creator markets and funds every
// trader from the faucet.
func newSimulation(ctx context.Context, seed uint64, traders, creators int) (*simulation, error) {
	specs := make([]chain.CreatorSpec, creators)
	for i := range specs {
		specs[i] = chain.CreatorSpec{Name: fmt.Sprintf("Creator %d", i+1), Symbol: fmt.Sprintf("SIM%d", i+1)}
	}
	gc, err := genesisConfig(simAddress("sim-deployer"), specs)
	if err != nil {
		return nil, err
	}
	gc.Logger = zap.NewNop()
	c, err := chain.Genesis(gc)
	if err != nil {
		return nil, err
	}

	s := &simulation{chain: c, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	td := c.TaDa()
	for i := range traders {
		addr := simAddress(fmt.Sprintf("sim-trader-%d", i))
		if _, _, err := c.Transact(ctx, td.Owner(), td.Address(), contract.KindTaDa, "faucetToken", addr, fmt.Sprintf("sim-%d", i)); err != nil {
			return nil, fmt.Errorf("funding trader %d: %w", i, err)
		}
		s.traders = append(s.traders, addr)
	}
	return s, nil
}

func (s *simulation) run(ctx context.Context, steps int) (simStats, error) {
	var st simStats
	markets := s.chain.TaDa().Markets()
	shill := s.chain.ShillToken()

	for st.steps < steps {
		st.steps++
		trader := s.traders[s.rng.IntN(len(s.traders))]
		m := markets[s.rng.IntN(len(markets))]

		var err error
		if held := m.BalanceOf(trader); !held.IsZero() && s.rng.IntN(3) == 0 {
			st.sells++
			amount := new(uint256.Int).Mul(held, uint256.NewInt(s.rng.Uint64N(100)+1))
			amount.Div(amount, uint256.NewInt(100))
			if amount.IsZero() {
				amount = held
			}
			_, _, err = s.chain.Transact(ctx, trader, m.Address(), contract.KindCreatorToken, "sell", amount.ToBig())
		} else {
			st.buys++
			// 0.1 to 5 SHILL
			payment := new(uint256.Int).Mul(uint256.NewInt(s.rng.Uint64N(4901)+100), uint256.NewInt(1e15))
			if _, _, err = s.chain.Transact(ctx, trader, shill.Address(), contract.KindShillToken, "approve", m.Address(), payment.ToBig()); err == nil {
				_, _, err = s.chain.Transact(ctx, trader, m.Address(), contract.KindCreatorToken, "buy", payment.ToBig())
			}
		}
		if err != nil {
			if !errors.Is(err, market.ErrInsufficientBalance) && !errors.Is(err, market.ErrInvalidAmount) {
				return st, fmt.Errorf("step %d: %w", st.steps, err)
			}
			st.failed++
		}

		if err := s.chain.CheckInvariants(); err != nil {
			return st, fmt.Errorf("step %d: %w", st.steps, err)
		}
	}
	log.Info("simulation finished",
		zap.Int("steps", st.steps),
		zap.Int("buys", st.buys),
		zap.Int("sells", st.sells),
		zap.Int("failed", st.failed),
	)
	return st, nil
}

func init() {
	simulateCmd.Flags().IntVar(&simSteps, "steps", 1000, "number of random trades")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 1, "random seed")
	simulateCmd.Flags().IntVar(&simTraders, "traders", 10, "number of faucet-funded traders")
	simulateCmd.Flags().IntVar(&simCreators, "creators", 3, "number of creator markets")
}
