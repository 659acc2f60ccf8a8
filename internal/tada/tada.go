// Package tada is the platform contract: it deploys creator-token markets
// and runs the one-time ShillToken faucet for new users.
package tada

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/curve"
	"github.com/marvinkome/tada/internal/ledger"
	"github.com/marvinkome/tada/internal/market"
	"github.com/marvinkome/tada/internal/units"
)

// DefaultFaucetAmount is what each new user receives.
var DefaultFaucetAmount = units.Ether(50)

var (
	ErrNotOwner         = errors.New("caller is not the owner")
	ErrAlreadySignedUp  = errors.New("user signed up already")
	ErrInvalidRecipient = errors.New("invalid faucet recipient")
	ErrInvalidName      = errors.New("invalid token name")
	ErrSymbolTaken      = errors.New("symbol already taken")
	ErrUnknownCreator   = errors.New("unknown creator token")
)

// Config describes a TaDa deployment. Token is the ShillToken ledger the
// faucet pays from and every market trades against.
type Config struct {
	Address      common.Address
	Owner        common.Address
	Token        *ledger.Ledger
	FaucetAmount *uint256.Int
	Curve        *curve.Curve
	Seed         *uint256.Int
	Logger       *zap.Logger
}

// CreatorInfo is one entry of the creator-token registry.
type CreatorInfo struct {
	Name    string
	Symbol  string
	Address common.Address
}

type TaDa struct {
	mu sync.RWMutex

	address      common.Address
	owner        common.Address
	token        *ledger.Ledger
	faucetAmount *uint256.Int
	curve        *curve.Curve
	seed         *uint256.Int
	nonce        uint64

	creators  []*market.Market
	bySymbol  map[string]*market.Market
	byAddress map[common.Address]*market.Market

	faucetAddrs map[common.Address]bool
	faucetIDs   map[common.Hash]bool

	log *zap.Logger
}

// New deploys an empty registry.
func New(cfg Config) (*TaDa, error) {
	if cfg.Token == nil {
		return nil, errors.New("tada: backing token is required")
	}
	if cfg.Address == (common.Address{}) || cfg.Owner == (common.Address{}) {
		return nil, fmt.Errorf("tada: %w", ledger.ErrZeroAddress)
	}
	if cfg.FaucetAmount == nil {
		cfg.FaucetAmount = DefaultFaucetAmount
	}
	if cfg.Curve == nil {
		cfg.Curve = curve.Default()
	}
	if cfg.Seed == nil {
		cfg.Seed = market.DefaultSeed
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &TaDa{
		address:      cfg.Address,
		owner:        cfg.Owner,
		token:        cfg.Token,
		faucetAmount: cfg.FaucetAmount.Clone(),
		curve:        cfg.Curve,
		seed:         cfg.Seed.Clone(),
		nonce:        1,
		bySymbol:     make(map[string]*market.Market),
		byAddress:    make(map[common.Address]*market.Market),
		faucetAddrs:  make(map[common.Address]bool),
		faucetIDs:    make(map[common.Hash]bool),
		log:          cfg.Logger.Named("tada"),
	}, nil
}

func (t *TaDa) Address() common.Address { return t.address }
func (t *TaDa) Owner() common.Address   { return t.owner }

// Token returns the ShillToken ledger.
func (t *TaDa) Token() *ledger.Ledger { return t.token }

func (t *TaDa) FaucetAmount() *uint256.Int { return t.faucetAmount.Clone() }

// MakeCreatorToken deploys a new market for a creator. Anyone may call it.
// The market's address is derived from the registry's address and nonce the
// same way the EVM derives CREATE addresses.
func (t *TaDa) MakeCreatorToken(caller common.Address, name, symbol string) (*market.Market, error) {
	name, symbol = strings.TrimSpace(name), strings.TrimSpace(symbol)
	if name == "" || symbol == "" {
		return nil, fmt.Errorf("%w: name and symbol must not be blank", ErrInvalidName)
	}
	if strings.ContainsAny(symbol, " \t\n") {
		return nil, fmt.Errorf("%w: symbol %q contains whitespace", ErrInvalidName, symbol)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := strings.ToUpper(symbol)
	if _, ok := t.bySymbol[key]; ok || key == strings.ToUpper(t.token.Symbol()) {
		return nil, fmt.Errorf("%w: %s", ErrSymbolTaken, symbol)
	}

	addr := crypto.CreateAddress(t.address, t.nonce)
	m, err := market.New(market.Params{
		Name:    name,
		Symbol:  symbol,
		Address: addr,
		Curve:   t.curve,
		Seed:    t.seed,
		Backing: t.token,
		Logger:  t.log,
	})
	if err != nil {
		return nil, err
	}
	t.nonce++
	t.add(m)

	t.log.Info("creator token deployed",
		zap.String("caller", caller.Hex()),
		zap.String("name", name),
		zap.String("symbol", symbol),
		zap.String("address", addr.Hex()),
	)
	return m, nil
}

// FaucetToken sends the faucet amount to recipient. Only the owner (the
// relayer) may call it, and each address and each Google account is served
// once.
func (t *TaDa) FaucetToken(caller, recipient common.Address, googleID string) error {
	if caller != t.owner {
		return fmt.Errorf("faucet: %w", ErrNotOwner)
	}
	googleID = strings.TrimSpace(googleID)
	if recipient == (common.Address{}) || googleID == "" {
		return fmt.Errorf("faucet: %w", ErrInvalidRecipient)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := idHash(googleID)
	if t.faucetAddrs[recipient] || t.faucetIDs[id] {
		return fmt.Errorf("faucet %s: %w", recipient.Hex(), ErrAlreadySignedUp)
	}
	if err := t.token.Transfer(t.address, recipient, t.faucetAmount); err != nil {
		return fmt.Errorf("faucet %s: %w", recipient.Hex(), err)
	}
	t.faucetAddrs[recipient] = true
	t.faucetIDs[id] = true

	t.log.Info("faucet paid", zap.String("recipient", recipient.Hex()), zap.String("amount", t.faucetAmount.Dec()))
	return nil
}

// HasFaucetAddress reports whether addr has already used the faucet.
func (t *TaDa) HasFaucetAddress(addr common.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.faucetAddrs[addr]
}

// HasFaucetID reports whether googleID has already used the faucet.
func (t *TaDa) HasFaucetID(googleID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.faucetIDs[idHash(strings.TrimSpace(googleID))]
}

// CreatorTokens lists every creator token in deployment order.
func (t *TaDa) CreatorTokens() []CreatorInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]CreatorInfo, len(t.creators))
	for i, m := range t.creators {
		out[i] = CreatorInfo{Name: m.Name(), Symbol: m.Symbol(), Address: m.Address()}
	}
	return out
}

// Markets returns the deployed markets in deployment order.
func (t *TaDa) Markets() []*market.Market {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]*market.Market(nil), t.creators...)
}

// Creator returns the market deployed at addr.
func (t *TaDa) Creator(addr common.Address) (*market.Market, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.byAddress[addr]
	return m, ok
}

// Lookup resolves a hex address or a symbol (any case) to a market.
func (t *TaDa) Lookup(ref string) (*market.Market, error) {
	ref = strings.TrimSpace(ref)
	if common.IsHexAddress(ref) {
		if m, ok := t.Creator(common.HexToAddress(ref)); ok {
			return m, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownCreator, ref)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.bySymbol[strings.ToUpper(ref)]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCreator, ref)
}

func (t *TaDa) add(m *market.Market) {
	t.creators = append(t.creators, m)
	t.bySymbol[strings.ToUpper(m.Symbol())] = m
	t.byAddress[m.Address()] = m
}

// Google IDs are only ever compared, so only their hash is kept.
func idHash(googleID string) common.Hash {
	return crypto.Keccak256Hash([]byte(googleID))
}
