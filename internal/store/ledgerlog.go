package store

import (
	"database/sql"
	"time"

	"github.com/campuspay/ledger/internal/ledger"
	"github.com/campuspay/ledger/internal/models"
)

// AppendRecords inserts one row per charged unit inside the caller's
// transaction. Sequence ids come from the log's BIGSERIAL.
func (s *Store) AppendRecords(tx *sql.Tx, records []models.TransactionRecord) error {
	for i := range records {
		err := tx.QueryRow(`
			INSERT INTO transaction_history (card_id, item_id, amount)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			records[i].CardID, records[i].ItemID, records[i].Amount).
			Scan(&records[i].ID, &records[i].CreatedAt)
		if err != nil {
			return &ledger.StorageError{Op: "append record", Err: err}
		}
	}
	return nil
}

// SumAmounts totals the live log for one account
func (s *Store) SumAmounts(cardID string) (int64, error) {
	var total int64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM transaction_history WHERE card_id = $1`,
		cardID).Scan(&total)
	if err != nil {
		return 0, &ledger.StorageError{Op: "sum amounts", Err: err}
	}
	return total, nil
}

// SelectArchivable returns records strictly older than the cutoff joined
// with display names, ordered by sequence id for the CSV export.
func (s *Store) SelectArchivable(tx *sql.Tx, cutoff time.Time) ([]models.ArchivedRecord, error) {
	rows, err := tx.Query(`
		SELECT th.id, th.card_id, a.name, th.item_id, i.name, th.amount, th.created_at
		FROM transaction_history th
		JOIN accounts a ON a.card_id = th.card_id
		JOIN items i ON i.id = th.item_id
		WHERE th.created_at < $1
		ORDER BY th.id`, cutoff)
	if err != nil {
		return nil, &ledger.StorageError{Op: "select archivable", Err: err}
	}
	defer rows.Close()

	var records []models.ArchivedRecord
	for rows.Next() {
		var rec models.ArchivedRecord
		if err := rows.Scan(&rec.ID, &rec.CardID, &rec.AccountName, &rec.ItemID, &rec.ItemName, &rec.Amount, &rec.CreatedAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan archivable", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StorageError{Op: "select archivable", Err: err}
	}
	return records, nil
}

// DeleteArchived removes records strictly older than the cutoff from the
// live log
func (s *Store) DeleteArchived(tx *sql.Tx, cutoff time.Time) (int64, error) {
	res, err := tx.Exec(`DELETE FROM transaction_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, &ledger.StorageError{Op: "delete archived", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &ledger.StorageError{Op: "delete archived", Err: err}
	}
	return n, nil
}
