package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema statements are idempotent so startup can run them unconditionally.
// transaction_history.id is the monotonic ledger sequence. item_id restricts
// deletion while history rows reference it; card_id cascades because account
// rows are never hard-deleted in practice.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		card_id    TEXT PRIMARY KEY,
		name       TEXT NOT NULL DEFAULT '',
		balance    BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		price      BIGINT NOT NULL CHECK (price >= 0),
		barcode_id TEXT,
		active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_history (
		id         BIGSERIAL PRIMARY KEY,
		card_id    TEXT NOT NULL REFERENCES accounts(card_id) ON DELETE CASCADE,
		item_id    UUID NOT NULL REFERENCES items(id) ON DELETE RESTRICT,
		amount     BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_history_card_id ON transaction_history(card_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_history_item_id ON transaction_history(item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_history_created_at ON transaction_history(created_at)`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key         TEXT PRIMARY KEY,
		result_json JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_idempotency_keys_created_at ON idempotency_keys(created_at)`,
}

// Migrate applies the schema
func Migrate(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	log.Println("Database schema up to date")
	return nil
}
