package tada

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

// Price is one market's quote for a fixed budget of ShillToken.
type Price struct {
	Name    string
	Symbol  string
	Address common.Address
	Spot    *uint256.Int
	Supply  *uint256.Int
	Reserve *uint256.Int
	// Tokens is EstimateBuyPrice(budget).
	Tokens *uint256.Int
}

// Prices quotes every market concurrently and returns the results ordered
// by spot price, highest first.
func (t *TaDa) Prices(ctx context.Context, budget *uint256.Int) ([]Price, error) {
	markets := t.Markets()
	out := make([]Price, len(markets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, m := range markets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			spot, err := m.SpotPrice()
			if err != nil {
				return fmt.Errorf("%s spot price: %w", m.Symbol(), err)
			}
			tokens, err := m.EstimateBuyPrice(budget)
			if err != nil {
				return fmt.Errorf("%s estimate: %w", m.Symbol(), err)
			}
			out[i] = Price{
				Name:    m.Name(),
				Symbol:  m.Symbol(),
				Address: m.Address(),
				Spot:    spot,
				Supply:  m.TotalSupply(),
				Reserve: m.ReserveBalance(),
				Tokens:  tokens,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Spot.Gt(out[j].Spot) })
	return out, nil
}
