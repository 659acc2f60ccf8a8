package chain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/ledger"
	"github.com/marvinkome/tada/internal/tada"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the whole world state as persisted between CLI runs.
type Snapshot struct {
	Version  int                       `json:"version"`
	Deployer common.Address            `json:"deployer"`
	Block    uint64                    `json:"block"`
	Nonces   map[common.Address]uint64 `json:"nonces"`
	Shill    ledger.Snapshot           `json:"shill"`
	TaDa     tada.Snapshot             `json:"tada"`
	Receipts []Receipt                 `json:"receipts,omitempty"`
}

func (c *Chain) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nonces := make(map[common.Address]uint64, len(c.nonces))
	for a, n := range c.nonces {
		nonces[a] = n
	}
	return &Snapshot{
		Version:  SnapshotVersion,
		Deployer: c.deployer,
		Block:    c.block,
		Nonces:   nonces,
		Shill:    c.shill.Snapshot(),
		TaDa:     c.tada.Snapshot(),
		Receipts: append([]Receipt(nil), c.receipts...),
	}
}

// Restore rebuilds a chain from s and checks every invariant.
func Restore(s *Snapshot, log *zap.Logger) (*Chain, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("state version %d, want %d", s.Version, SnapshotVersion)
	}
	shill, err := ledger.Restore(s.Shill)
	if err != nil {
		return nil, err
	}
	td, err := tada.Restore(s.TaDa, shill, log)
	if err != nil {
		return nil, err
	}

	c := newChain(s.Deployer, shill, td, log)
	c.block = s.Block
	for a, n := range s.Nonces {
		c.nonces[a] = n
	}
	c.receipts = append(c.receipts, s.Receipts...)

	if err := c.CheckInvariants(); err != nil {
		return nil, err
	}
	return c, nil
}
