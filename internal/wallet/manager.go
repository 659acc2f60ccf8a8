// Package wallet keeps the local address book of trading accounts. Accounts
// hold only an address; the simulated chain does not check signatures.
package wallet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account types.
const (
	TypeBurner = "burner" // freshly generated address
	TypeWatch  = "watch"  // imported address
)

// Errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrInvalidName     = errors.New("invalid account name")
	ErrInvalidAddress  = errors.New("invalid address")
	ErrNoDefault       = errors.New("no default account; pass --from or run `tada account use`")
)

// Account is a named address.
type Account struct {
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	Type      string         `json:"type"`
	IsDefault bool           `json:"is_default"`
	CreatedAt string         `json:"created_at"`
}

// Store is an interface for persisting accounts.
type Store interface {
	Load() ([]*Account, error)
	Save([]*Account) error
}

// Manager handles account CRUD.
type Manager struct {
	store    Store
	accounts map[string]*Account
	loaded   bool
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithInMemoryStore uses an in-memory store.
func WithInMemoryStore() Option {
	return func(m *Manager) {
		m.store = &memStore{}
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// NewManager creates a new account manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		accounts: make(map[string]*Account),
		store:    &memStore{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create generates a burner account. The private key is discarded once the
// address is derived. The first account becomes the default.
func (m *Manager) Create(name string) (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return m.add(name, crypto.PubkeyToAddress(key.PublicKey), TypeBurner)
}

// Add registers an existing hex address under name.
func (m *Manager) Add(name, address string) (*Account, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	addr := common.HexToAddress(address)
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidAddress)
	}
	return m.add(name, addr, TypeWatch)
}

// Get returns an account by name.
func (m *Manager) Get(name string) (*Account, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	a, ok := m.accounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return a, nil
}

// Resolve turns an account name or a hex address into an address. An empty
// ref resolves to the default account.
func (m *Manager) Resolve(ref string) (common.Address, error) {
	if ref == "" {
		a, err := m.Default()
		if err != nil {
			return common.Address{}, err
		}
		return a.Address, nil
	}
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	a, err := m.Get(ref)
	if err != nil {
		return common.Address{}, err
	}
	return a.Address, nil
}

// NameOf returns the account name holding addr, or "".
func (m *Manager) NameOf(addr common.Address) string {
	if err := m.load(); err != nil {
		return ""
	}
	for _, a := range m.accounts {
		if a.Address == addr {
			return a.Name
		}
	}
	return ""
}

// Remove deletes an account by name.
func (m *Manager) Remove(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.accounts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	delete(m.accounts, name)
	return m.persist()
}

// List returns all accounts sorted by name.
func (m *Manager) List() ([]*Account, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	out := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SetDefault marks an account as the default.
func (m *Manager) SetDefault(name string) error {
	if err := m.load(); err != nil {
		return err
	}
	if _, ok := m.accounts[name]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	for _, a := range m.accounts {
		a.IsDefault = a.Name == name
	}
	return m.persist()
}

// Default returns the default account. A lone account is the default even
// when unmarked.
func (m *Manager) Default() (*Account, error) {
	if err := m.load(); err != nil {
		return nil, err
	}
	for _, a := range m.accounts {
		if a.IsDefault {
			return a, nil
		}
	}
	if len(m.accounts) == 1 {
		for _, a := range m.accounts {
			return a, nil
		}
	}
	return nil, ErrNoDefault
}

// --- internal ---

func (m *Manager) add(name string, addr common.Address, typ string) (*Account, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	if _, exists := m.accounts[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, name)
	}
	if other := m.NameOf(addr); other != "" {
		return nil, fmt.Errorf("%w: %s is already saved as %s", ErrAccountExists, addr.Hex(), other)
	}
	a := &Account{
		Name:      name,
		Address:   addr,
		Type:      typ,
		IsDefault: len(m.accounts) == 0,
		CreatedAt: m.now().UTC().Format(time.RFC3339),
	}
	m.accounts[name] = a
	if err := m.persist(); err != nil {
		delete(m.accounts, name)
		return nil, err
	}
	return a, nil
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, " \t\n"):
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidName, name)
	case common.IsHexAddress(name):
		return fmt.Errorf("%w: %q looks like an address", ErrInvalidName, name)
	}
	return nil
}

func (m *Manager) load() error {
	if m.loaded {
		return nil
	}
	accounts, err := m.store.Load()
	if err != nil {
		return err
	}
	for _, a := range accounts {
		m.accounts[a.Name] = a
	}
	m.loaded = true
	return nil
}

func (m *Manager) persist() error {
	accounts := make([]*Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return m.store.Save(accounts)
}
