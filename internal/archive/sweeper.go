// Package archive moves old transaction records out of the live log into
// append-only CSV audit files and purges expired idempotency keys.
package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/campuspay/ledger/internal/events"
	"github.com/campuspay/ledger/internal/ledger"
	"github.com/campuspay/ledger/internal/models"
	"github.com/campuspay/ledger/internal/store"
)

// Summary reports one completed sweep
type Summary struct {
	Archived    int64     `json:"archived"`
	PurgedKeys  int64     `json:"purged_keys"`
	ArchivePath string    `json:"archive_path,omitempty"`
	Cutoff      time.Time `json:"cutoff"`
}

// Sweeper runs the archival sweep. A sweep holds the commit gate exclusive,
// so purchases queue behind it and the exported rows cannot change under
// the export.
type Sweeper struct {
	store        *store.Store
	sink         events.Sink
	dir          string
	keyRetention time.Duration
}

// NewSweeper creates a Sweeper writing CSV files under dir
func NewSweeper(st *store.Store, sink events.Sink, dir string, keyRetention time.Duration) *Sweeper {
	return &Sweeper{store: st, sink: sink, dir: dir, keyRetention: keyRetention}
}

// Archive exports records older than the cutoff, deletes them from the live
// log, and purges expired idempotency keys, all in one database
// transaction. A sweep already in progress fails fast with
// ErrSweepInProgress.
func (s *Sweeper) Archive(cutoff time.Time) (*Summary, error) {
	if err := s.store.BeginSweep(); err != nil {
		return nil, err
	}
	defer s.store.EndSweep()

	tx, err := s.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	records, err := s.store.SelectArchivable(tx, cutoff)
	if err != nil {
		return nil, err
	}

	path := ""
	if len(records) > 0 {
		path, err = s.exportCSV(records)
		if err != nil {
			return nil, fmt.Errorf("export archive: %w", err)
		}
	}

	deleted, err := s.store.DeleteArchived(tx, cutoff)
	if err != nil {
		return nil, err
	}
	if deleted != int64(len(records)) {
		return nil, fmt.Errorf("archive drift: exported %d rows, deleted %d", len(records), deleted)
	}

	purged, err := s.store.PurgeExpiredKeys(tx, time.Now().UTC().Add(-s.keyRetention))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, &ledger.StorageError{Op: "commit sweep", Err: err}
	}

	log.Printf("[SWEEP] Archived %d records, purged %d idempotency keys", deleted, purged)
	s.sink.Record(context.Background(), events.Event{
		Kind:     events.KindSweepCompleted,
		Archived: deleted,
		Purged:   purged,
	})

	return &Summary{
		Archived:    deleted,
		PurgedKeys:  purged,
		ArchivePath: path,
		Cutoff:      cutoff,
	}, nil
}

// exportCSV writes the audit file before the delete runs. If the commit
// later fails the file stays behind; the next sweep re-exports the same
// rows to a new file, which auditors tolerate.
func (s *Sweeper) exportCSV(records []models.ArchivedRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("transactions_%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "card_id", "account_name", "item_id", "item_name", "amount", "transaction_time"}); err != nil {
		return "", err
	}
	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.CardID,
			rec.AccountName,
			rec.ItemID,
			rec.ItemName,
			strconv.FormatInt(rec.Amount, 10),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}
