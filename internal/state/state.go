// Package state persists the chain between CLI runs. A lock file serializes
// concurrent tada processes; saves are atomic.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/marvinkome/tada/internal/chain"
)

var (
	// ErrNoState is returned by Load before `tada init` has run.
	ErrNoState = errors.New("no chain state; run `tada init` first")
	// ErrLocked is returned when the lock could not be taken in time.
	ErrLocked = errors.New("state is locked by another process")
)

const (
	stateFile = "state.json"
	lockFile  = "state.lock"
)

// Store reads and writes state.json in a directory.
type Store struct {
	dir         string
	lockTimeout time.Duration
	log         *zap.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string, lockTimeout time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, lockTimeout: lockTimeout, log: log.Named("state")}
}

// Path returns the state file path.
func (s *Store) Path() string { return filepath.Join(s.dir, stateFile) }

// Exists reports whether a state file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path())
	return err == nil
}

// Lock takes the state lock, retrying with exponential backoff until the
// lock timeout or ctx expires. Call the returned function to release it.
func (s *Store) Lock(ctx context.Context) (func(), error) {
	path := filepath.Join(s.dir, lockFile)

	op := func() (*os.File, error) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, nil
		}
		if errors.Is(err, os.ErrExist) {
			return nil, ErrLocked
		}
		return nil, backoff.Permanent(fmt.Errorf("taking state lock: %w", err))
	}

	notify := func(err error, d time.Duration) {
		s.log.Debug("waiting for state lock", zap.Error(err), zap.Duration("backoff", d))
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond

	f, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(s.lockTimeout),
		backoff.WithNotify(notify),
	)
	if err != nil {
		if errors.Is(err, ErrLocked) {
			return nil, fmt.Errorf("%w (remove %s if no tada process is running)", ErrLocked, path)
		}
		return nil, err
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("releasing state lock", zap.Error(err))
		}
	}, nil
}

// Load reads the snapshot and rebuilds the chain.
func (s *Store) Load() (*chain.Chain, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var snap chain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	c, err := chain.Restore(&snap, s.log)
	if err != nil {
		return nil, fmt.Errorf("restoring state: %w", err)
	}
	s.log.Debug("state loaded", zap.Uint64("block", c.Block()))
	return c, nil
}

// Save writes the chain snapshot through a temp file and rename.
func (s *Store) Save(c *chain.Chain) error {
	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, stateFile+".*")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	s.log.Debug("state saved", zap.Uint64("block", c.Block()))
	return nil
}

// Update loads the chain under the lock, runs fn and saves the chain. The
// chain is saved even when fn fails, since failed transactions still consume
// a nonce and leave a receipt.
func (s *Store) Update(ctx context.Context, fn func(*chain.Chain) error) error {
	unlock, err := s.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	c, err := s.Load()
	if err != nil {
		return err
	}
	fnErr := fn(c)
	if err := s.Save(c); err != nil {
		return err
	}
	return fnErr
}

// View loads the chain under the lock for read-only use.
func (s *Store) View(ctx context.Context, fn func(*chain.Chain) error) error {
	unlock, err := s.Lock(ctx)
	if err != nil {
		return err
	}
	c, err := s.Load()
	unlock()
	if err != nil {
		return err
	}
	return fn(c)
}
