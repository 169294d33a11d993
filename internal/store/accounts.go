package store

import (
	"database/sql"
	"errors"

	"github.com/campuspay/ledger/internal/ledger"
	"github.com/campuspay/ledger/internal/models"
)

// GetAccount fetches one account by card id
func (s *Store) GetAccount(cardID string) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRow(`
		SELECT card_id, name, balance, active, created_at, updated_at
		FROM accounts WHERE card_id = $1`, cardID).
		Scan(&acct.CardID, &acct.Name, &acct.Balance, &acct.Active, &acct.CreatedAt, &acct.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "get account", Err: err}
	}
	return &acct, nil
}

// UpsertAccount creates the account on first reference or refreshes its
// name and active flag from the card registry. Balance is untouched.
func (s *Store) UpsertAccount(cardID, name string, active bool) (*models.Account, error) {
	var acct models.Account
	err := s.db.QueryRow(`
		INSERT INTO accounts (card_id, name, active)
		VALUES ($1, $2, $3)
		ON CONFLICT (card_id) DO UPDATE
		SET name = EXCLUDED.name, active = EXCLUDED.active, updated_at = NOW()
		RETURNING card_id, name, balance, active, created_at, updated_at`,
		cardID, name, active).
		Scan(&acct.CardID, &acct.Name, &acct.Balance, &acct.Active, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return nil, &ledger.StorageError{Op: "upsert account", Err: err}
	}
	return &acct, nil
}

// Credit unconditionally increases the balance and returns the new value.
// Amount zero is a no-op that still verifies the account exists.
func (s *Store) Credit(cardID string, amount int64) (int64, error) {
	if amount == 0 {
		acct, err := s.GetAccount(cardID)
		if err != nil {
			return 0, err
		}
		return acct.Balance, nil
	}

	var balance int64
	err := s.db.QueryRow(`
		UPDATE accounts SET balance = balance + $1, updated_at = NOW()
		WHERE card_id = $2
		RETURNING balance`, amount, cardID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrAccountNotFound
	}
	if err != nil {
		return 0, &ledger.StorageError{Op: "credit", Err: err}
	}
	return balance, nil
}

// SetActive toggles the active flag. Requesting the state the account is
// already in is an error, not a no-op.
func (s *Store) SetActive(cardID string, active bool) error {
	res, err := s.db.Exec(`
		UPDATE accounts SET active = $1, updated_at = NOW()
		WHERE card_id = $2 AND active <> $1`, active, cardID)
	if err != nil {
		return &ledger.StorageError{Op: "set active", Err: err}
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return &ledger.StorageError{Op: "set active", Err: err}
	}
	if rows > 0 {
		return nil
	}

	// No row changed: either the card is unknown or it was already in the
	// requested state.
	var current bool
	err = s.db.QueryRow(`SELECT active FROM accounts WHERE card_id = $1`, cardID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return &ledger.StorageError{Op: "set active", Err: err}
	}
	return ledger.ErrAlreadyInState
}

// ConditionalDebit applies balance -= amount iff the balance covers it, as
// one atomic statement. Returns the new balance and whether the debit
// applied. Zero rows affected means insufficient funds, never an error.
func (s *Store) ConditionalDebit(tx *sql.Tx, cardID string, amount int64) (int64, bool, error) {
	var balance int64
	err := tx.QueryRow(`
		UPDATE accounts SET balance = balance - $1, updated_at = NOW()
		WHERE card_id = $2 AND balance >= $1
		RETURNING balance`, amount, cardID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &ledger.StorageError{Op: "conditional debit", Err: err}
	}
	return balance, true, nil
}
