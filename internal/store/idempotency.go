package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/campuspay/ledger/internal/ledger"
)

// LookupResult returns the cached result for a key created after notBefore.
// The second return is false when the key is unknown or expired; expired
// entries are indistinguishable from absent ones.
func (s *Store) LookupResult(key string, notBefore time.Time) ([]byte, bool, error) {
	var result []byte
	err := s.db.QueryRow(`
		SELECT result_json FROM idempotency_keys
		WHERE key = $1 AND created_at > $2`,
		key, notBefore).Scan(&result)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &ledger.StorageError{Op: "lookup idempotency key", Err: err}
	}
	return result, true, nil
}

// ClaimKey inserts the key inside the caller's transaction, returning true
// when this transaction now owns it. A concurrent first arrival blocks on
// the primary key until the owner commits, then sees false here and reads
// the owner's stored result. Entries at or before notBefore are removed
// first so a stale key behaves like a new one.
func (s *Store) ClaimKey(tx *sql.Tx, key string, notBefore time.Time) (bool, error) {
	if _, err := tx.Exec(`
		DELETE FROM idempotency_keys WHERE key = $1 AND created_at <= $2`,
		key, notBefore); err != nil {
		return false, &ledger.StorageError{Op: "expire idempotency key", Err: err}
	}

	res, err := tx.Exec(`
		INSERT INTO idempotency_keys (key) VALUES ($1)
		ON CONFLICT (key) DO NOTHING`, key)
	if err != nil {
		return false, &ledger.StorageError{Op: "claim idempotency key", Err: err}
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, &ledger.StorageError{Op: "claim idempotency key", Err: err}
	}
	return rows > 0, nil
}

// SaveResult stores the serialized result on a key claimed in the same
// transaction
func (s *Store) SaveResult(tx *sql.Tx, key string, result []byte) error {
	if _, err := tx.Exec(`
		UPDATE idempotency_keys SET result_json = $1 WHERE key = $2`,
		result, key); err != nil {
		return &ledger.StorageError{Op: "save idempotency result", Err: err}
	}
	return nil
}

// PurgeExpiredKeys deletes idempotency entries at or before the cutoff
// inside the caller's transaction
func (s *Store) PurgeExpiredKeys(tx *sql.Tx, olderThan time.Time) (int64, error) {
	res, err := tx.Exec(`DELETE FROM idempotency_keys WHERE created_at <= $1`, olderThan)
	if err != nil {
		return 0, &ledger.StorageError{Op: "purge idempotency keys", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &ledger.StorageError{Op: "purge idempotency keys", Err: err}
	}
	return n, nil
}
