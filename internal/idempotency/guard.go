// Package idempotency sits in front of the ledger engine. It replays cached
// purchase results for known keys and runs new work inside one database
// transaction that also claims the key, so two simultaneous first arrivals
// of the same key can never both charge.
package idempotency

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campuspay/ledger/internal/events"
	"github.com/campuspay/ledger/internal/ledger"
)

// Store is the slice of the account store the guard needs: the commit gate,
// transactions, and the idempotency rows.
type Store interface {
	Begin() (*sql.Tx, error)
	AcquireCommit()
	ReleaseCommit()
	LookupResult(key string, notBefore time.Time) ([]byte, bool, error)
	ClaimKey(tx *sql.Tx, key string, notBefore time.Time) (bool, error)
	SaveResult(tx *sql.Tx, key string, result []byte) error
}

// Operation is the guarded unit of work, run inside the guard's transaction
type Operation func(tx *sql.Tx) (*ledger.Result, error)

// Guard wraps purchase execution with result caching keyed by client
// idempotency key. Keys expire after the window; an expired key is treated
// as brand new.
type Guard struct {
	store  Store
	sink   events.Sink
	window time.Duration
}

// NewGuard creates a Guard with the given cache window
func NewGuard(store Store, sink events.Sink, window time.Duration) *Guard {
	return &Guard{store: store, sink: sink, window: window}
}

// Execute runs op under the commit gate in a single database transaction.
// An empty key runs the operation without caching. A known unexpired key
// replays the stored receipt without running op; the replayed return is
// true. A new key is claimed inside the transaction before op runs: if the
// claim is lost to a concurrent arrival, that arrival's committed receipt
// is replayed instead. Failed operations roll back the claim, so failures
// are never cached.
func (g *Guard) Execute(key string, op Operation) (*ledger.Result, bool, error) {
	if key != "" {
		result, ok, err := g.replay(key)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return result, true, nil
		}
	}

	g.store.AcquireCommit()
	defer g.store.ReleaseCommit()

	tx, err := g.store.Begin()
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	if key != "" {
		claimed, err := g.store.ClaimKey(tx, key, time.Now().UTC().Add(-g.window))
		if err != nil {
			return nil, false, err
		}
		if !claimed {
			// Lost the first-arrival race. The winner has committed, so its
			// receipt is readable now.
			tx.Rollback()
			result, ok, err := g.replay(key)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, &ledger.StorageError{Op: "replay", Err: errors.New("claimed key has no stored result")}
			}
			return result, true, nil
		}
	}

	result, err := op(tx)
	if err != nil {
		return nil, false, err
	}

	if key != "" {
		data, err := json.Marshal(result.Receipt())
		if err != nil {
			return nil, false, fmt.Errorf("marshal receipt: %w", err)
		}
		if err := g.store.SaveResult(tx, key, data); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, &ledger.StorageError{Op: "commit purchase", Err: err}
	}

	// A zero-unit commit charged nothing; there is nothing to report.
	if result.Units > 0 {
		g.sink.Record(context.Background(), events.Event{
			Kind:   events.KindPurchaseCommitted,
			CardID: result.CardID,
			Total:  result.Total,
			Units:  result.Units,
		})
	}

	return result, false, nil
}

func (g *Guard) replay(key string) (*ledger.Result, bool, error) {
	data, ok, err := g.store.LookupResult(key, time.Now().UTC().Add(-g.window))
	if err != nil || !ok {
		return nil, ok, err
	}

	var receipt ledger.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return &ledger.Result{Total: receipt.Total, Timestamp: receipt.Timestamp}, true, nil
}
