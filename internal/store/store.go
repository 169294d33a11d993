// Package store is the single logical store behind the ledger: account
// balances, the transaction log, and the idempotency cache live in one
// Postgres database so a purchase commits as one transaction.
package store

import (
	"database/sql"
	"sync"
	"sync/atomic"

	"github.com/campuspay/ledger/internal/ledger"
)

// Store wraps the Postgres pool and the commit gate. Purchase commits hold
// the gate shared; an archival sweep holds it exclusive, so a sweep never
// interleaves with ledger-log mutations.
type Store struct {
	db       *sql.DB
	gate     sync.RWMutex
	sweeping atomic.Bool
}

// NewStore creates a Store over an open pool
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying pool for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}

// Begin opens a database transaction
func (s *Store) Begin() (*sql.Tx, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, &ledger.StorageError{Op: "begin", Err: err}
	}
	return tx, nil
}

// AcquireCommit takes the gate shared. Blocks while a sweep is running;
// concurrent purchases proceed together.
func (s *Store) AcquireCommit() {
	s.gate.RLock()
}

// ReleaseCommit releases the shared gate
func (s *Store) ReleaseCommit() {
	s.gate.RUnlock()
}

// BeginSweep claims exclusive log access. A second sweep fails fast with
// ErrSweepInProgress; in-flight purchase commits drain before this returns.
func (s *Store) BeginSweep() error {
	if !s.sweeping.CompareAndSwap(false, true) {
		return ledger.ErrSweepInProgress
	}
	s.gate.Lock()
	return nil
}

// EndSweep releases exclusive log access
func (s *Store) EndSweep() {
	s.gate.Unlock()
	s.sweeping.Store(false)
}
