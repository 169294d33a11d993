package models

import (
	"time"
)

// TransactionRecord is one charged unit in the ledger log. Amount is the
// unit price locked in at purchase time; it is never re-derived from the
// catalog. IDs are assigned by the store in strictly increasing order.
type TransactionRecord struct {
	ID        int64     `json:"id" db:"id"`
	CardID    string    `json:"card_id" db:"card_id"`
	ItemID    string    `json:"item_id" db:"item_id"`
	Amount    int64     `json:"amount" db:"amount"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ArchivedRecord is a transaction record joined with display names for the
// CSV audit export.
type ArchivedRecord struct {
	ID          int64
	CardID      string
	AccountName string
	ItemID      string
	ItemName    string
	Amount      int64
	CreatedAt   time.Time
}
