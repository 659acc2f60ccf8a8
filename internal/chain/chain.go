// Package chain is the single-writer execution environment the contracts run
// in. Every state-changing call goes through Execute, which serializes it,
// routes it through the ABI dispatcher and records a receipt.
package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/contract"
	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/ledger"
	"github.com/marvinkome/tada/internal/market"
	"github.com/marvinkome/tada/internal/tada"
	"github.com/marvinkome/tada/internal/units"
)

// MaxReceipts is how many receipts are kept, newest last.
const MaxReceipts = 256

// Receipt status values.
const (
	StatusFailed  uint64 = 0
	StatusSuccess uint64 = 1
)

// ErrReceiptNotFound is returned when no kept receipt matches a hash.
var ErrReceiptNotFound = errors.New("receipt not found")

// Receipt records the outcome of one executed transaction.
type Receipt struct {
	Hash   common.Hash    `json:"hash"`
	Block  uint64         `json:"block"`
	From   common.Address `json:"from"`
	To     common.Address `json:"to"`
	Method string         `json:"method"`
	Status uint64         `json:"status"`
	Error  string         `json:"error,omitempty"`
	Output hexutil.Bytes  `json:"output,omitempty"`
}

// Succeeded reports whether the transaction applied.
func (r *Receipt) Succeeded() bool { return r.Status == StatusSuccess }

// CreatorSpec is a creator token deployed at genesis.
type CreatorSpec struct {
	Name   string
	Symbol string
}

// GenesisConfig describes the initial deployment. Nil amounts and a zero
// TreasuryShare fall back to defaults.
type GenesisConfig struct {
	Deployer      common.Address
	InitialSupply *uint256.Int
	// TreasuryShare is the percentage of InitialSupply moved to TaDa for the
	// faucet.
	TreasuryShare uint64
	FaucetAmount  *uint256.Int
	Curve         *curve.Curve
	Seed          *uint256.Int
	Creators      []CreatorSpec
	Logger        *zap.Logger
}

// Defaults for GenesisConfig.
var (
	DefaultInitialSupply        = units.Ether(10_000_000)
	DefaultTreasuryShare uint64 = 80
)

// Chain is safe for concurrent use. Writes are serialized; reads run
// alongside each other.
type Chain struct {
	mu sync.RWMutex

	deployer   common.Address
	shill      *ledger.Ledger
	tada       *tada.TaDa
	dispatcher *contract.Dispatcher

	block    uint64
	nonces   map[common.Address]uint64
	receipts []Receipt

	log *zap.Logger
}

// Genesis deploys ShillToken and TaDa from cfg.Deployer, funds the faucet
// and creates the initial creator tokens.
func Genesis(cfg GenesisConfig) (*Chain, error) {
	if cfg.Deployer == (common.Address{}) {
		return nil, fmt.Errorf("genesis: %w", ledger.ErrZeroAddress)
	}
	if cfg.InitialSupply == nil {
		cfg.InitialSupply = DefaultInitialSupply
	}
	if cfg.TreasuryShare == 0 {
		cfg.TreasuryShare = DefaultTreasuryShare
	}
	if cfg.TreasuryShare > 100 {
		return nil, fmt.Errorf("genesis: treasury share %d%% exceeds 100%%", cfg.TreasuryShare)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	shill := ledger.New("Shill Token", "SHILL", units.Decimals, crypto.CreateAddress(cfg.Deployer, 0))
	if err := shill.Mint(cfg.Deployer, cfg.InitialSupply); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	td, err := tada.New(tada.Config{
		Address:      crypto.CreateAddress(cfg.Deployer, 1),
		Owner:        cfg.Deployer,
		Token:        shill,
		FaucetAmount: cfg.FaucetAmount,
		Curve:        cfg.Curve,
		Seed:         cfg.Seed,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}

	treasury, overflow := new(uint256.Int).MulOverflow(cfg.InitialSupply, uint256.NewInt(cfg.TreasuryShare))
	if overflow {
		return nil, fmt.Errorf("genesis: treasury share of %s: %w", cfg.InitialSupply.Dec(), curve.ErrArithmeticOverflow)
	}
	treasury.Div(treasury, uint256.NewInt(100))
	if err := shill.Transfer(cfg.Deployer, td.Address(), treasury); err != nil {
		return nil, fmt.Errorf("genesis: fund treasury: %w", err)
	}

	c := newChain(cfg.Deployer, shill, td, cfg.Logger)
	c.nonces[cfg.Deployer] = 2

	for _, spec := range cfg.Creators {
		data, err := contract.Pack(contract.KindTaDa, "makeCreatorToken", spec.Name, spec.Symbol)
		if err != nil {
			return nil, err
		}
		if _, err := c.Execute(context.Background(), cfg.Deployer, td.Address(), data); err != nil {
			return nil, fmt.Errorf("genesis: creator %s: %w", spec.Symbol, err)
		}
	}

	c.log.Info("genesis",
		zap.String("deployer", cfg.Deployer.Hex()),
		zap.String("shill", shill.Address().Hex()),
		zap.String("tada", td.Address().Hex()),
		zap.String("treasury", treasury.Dec()),
		zap.Int("creators", len(cfg.Creators)),
	)
	return c, nil
}

func newChain(deployer common.Address, shill *ledger.Ledger, td *tada.TaDa, log *zap.Logger) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chain{
		deployer: deployer,
		shill:    shill,
		tada:     td,
		nonces:   make(map[common.Address]uint64),
		log:      log.Named("chain"),
	}
	c.dispatcher = contract.NewDispatcher(c)
	return c
}

func (c *Chain) ShillToken() *ledger.Ledger { return c.shill }
func (c *Chain) TaDa() *tada.TaDa           { return c.tada }
func (c *Chain) Deployer() common.Address   { return c.deployer }

// Dispatcher returns the ABI dispatcher contracts are reached through.
func (c *Chain) Dispatcher() *contract.Dispatcher { return c.dispatcher }

// Block is the number of the last executed transaction's block.
func (c *Chain) Block() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.block
}

// Nonce is how many transactions from has sent.
func (c *Chain) Nonce(from common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nonces[from]
}

// Execute runs one state-changing transaction. Each transaction gets its own
// block. A failed transaction changes no contract state but still consumes
// the sender's nonce and gets a receipt with StatusFailed; the error is
// returned alongside it.
func (c *Chain) Execute(ctx context.Context, from, to common.Address, data []byte) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	nonce := c.nonces[from]
	r := Receipt{
		Hash:   txHash(from, to, nonce, data),
		Block:  c.block + 1,
		From:   from,
		To:     to,
		Method: methodName(data),
		Status: StatusSuccess,
	}
	res, err := c.dispatcher.Dispatch(contract.Message{From: from, To: to, Data: data})
	if res != nil && res.Method != "" {
		r.Method = res.Method
	}
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
	} else if len(res.Output) > 0 {
		r.Output = res.Output
	}

	c.block++
	c.nonces[from] = nonce + 1
	c.receipts = append(c.receipts, r)
	if len(c.receipts) > MaxReceipts {
		c.receipts = append([]Receipt(nil), c.receipts[len(c.receipts)-MaxReceipts:]...)
	}

	log := c.log.With(
		zap.String("tx", r.Hash.Hex()),
		zap.Uint64("block", r.Block),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("method", r.Method),
	)
	if err != nil {
		log.Warn("transaction failed", zap.Error(err))
		return &r, fmt.Errorf("%s failed: %w", r.Method, err)
	}
	log.Debug("transaction applied")
	return &r, nil
}

// Call runs a read-only call and returns its ABI-encoded result.
func (c *Chain) Call(ctx context.Context, from, to common.Address, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	res, err := c.dispatcher.Dispatch(contract.Message{From: from, To: to, Data: data, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

// Transact packs method of the built-in kind, executes it and unpacks the
// return values.
func (c *Chain) Transact(ctx context.Context, from, to common.Address, kind, method string, args ...interface{}) (*Receipt, []interface{}, error) {
	data, err := contract.Pack(kind, method, args...)
	if err != nil {
		return nil, nil, err
	}
	r, err := c.Execute(ctx, from, to, data)
	if err != nil {
		return r, nil, err
	}
	vals, err := contract.Unpack(kind, method, r.Output)
	return r, vals, err
}

// Query is the read-only counterpart of Transact.
func (c *Chain) Query(ctx context.Context, from, to common.Address, kind, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(kind, method, args...)
	if err != nil {
		return nil, err
	}
	out, err := c.Call(ctx, from, to, data)
	if err != nil {
		return nil, err
	}
	return contract.Unpack(kind, method, out)
}

// Receipts returns up to n of the most recent receipts, newest first.
func (c *Chain) Receipts(n int) []Receipt {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 || n > len(c.receipts) {
		n = len(c.receipts)
	}
	out := make([]Receipt, 0, n)
	for i := len(c.receipts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, c.receipts[i])
	}
	return out
}

// Receipt looks up a kept receipt by transaction hash.
func (c *Chain) Receipt(hash common.Hash) (*Receipt, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.receipts {
		if c.receipts[i].Hash == hash {
			r := c.receipts[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrReceiptNotFound, hash.Hex())
}

// CheckInvariants verifies every ledger and market.
func (c *Chain) CheckInvariants() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.shill.Conserved() {
		return fmt.Errorf("%w: %s balances do not sum to supply", market.ErrInvariant, c.shill.Symbol())
	}
	for _, m := range c.tada.Markets() {
		if err := m.CheckInvariants(); err != nil {
			return err
		}
	}
	return nil
}

// txHash is keccak256(from || to || nonce || data).
func txHash(from, to common.Address, nonce uint64, data []byte) common.Hash {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	return crypto.Keccak256Hash(from.Bytes(), to.Bytes(), n[:], data)
}

// methodName labels calldata whose method could not be resolved.
func methodName(data []byte) string {
	if len(data) < 4 {
		return "call"
	}
	return hexutil.Encode(data[:4])
}
