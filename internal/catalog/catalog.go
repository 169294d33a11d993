// Package catalog serves item lookups for the purchase path and the admin
// CRUD surface. Prices are integer øre.
package catalog

import (
	"database/sql"
	"errors"

	"github.com/campuspay/ledger/internal/ledger"
	"github.com/campuspay/ledger/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Catalog reads and maintains the item table
type Catalog struct {
	db *sql.DB
}

// NewCatalog creates a Catalog over an open pool
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// GetItems resolves a set of item ids to price and active flag. Unknown ids
// are simply absent from the result; the caller decides what a missing item
// means.
func (c *Catalog) GetItems(ids []string) (map[string]models.PricedItem, error) {
	priced := make(map[string]models.PricedItem, len(ids))
	if len(ids) == 0 {
		return priced, nil
	}

	rows, err := c.db.Query(`
		SELECT id, price, active FROM items WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, &ledger.StorageError{Op: "get items", Err: err}
	}
	defer rows.Close()

	for rows.Next() {
		var it models.PricedItem
		if err := rows.Scan(&it.ID, &it.Price, &it.Active); err != nil {
			return nil, &ledger.StorageError{Op: "scan item", Err: err}
		}
		priced[it.ID] = it
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StorageError{Op: "get items", Err: err}
	}
	return priced, nil
}

// GetItem fetches one item by id
func (c *Catalog) GetItem(id string) (*models.Item, error) {
	var it models.Item
	err := c.db.QueryRow(`
		SELECT id, name, price, barcode_id, active, created_at, updated_at
		FROM items WHERE id = $1`, id).
		Scan(&it.ID, &it.Name, &it.Price, &it.BarcodeID, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrItemNotFound
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "get item", Err: err}
	}
	return &it, nil
}

// ListItems returns the catalog, optionally filtered by active flag
func (c *Catalog) ListItems(activeOnly *bool) ([]models.Item, error) {
	query := `
		SELECT id, name, price, barcode_id, active, created_at, updated_at
		FROM items ORDER BY created_at DESC`
	args := []any{}
	if activeOnly != nil {
		query = `
		SELECT id, name, price, barcode_id, active, created_at, updated_at
		FROM items WHERE active = $1 ORDER BY created_at DESC`
		args = append(args, *activeOnly)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, &ledger.StorageError{Op: "list items", Err: err}
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.BarcodeID, &it.Active, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, &ledger.StorageError{Op: "scan item", Err: err}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &ledger.StorageError{Op: "list items", Err: err}
	}
	return items, nil
}

// CreateItem inserts a new catalog entry with a generated id
func (c *Catalog) CreateItem(req *models.CreateItemRequest) (*models.Item, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var it models.Item
	err := c.db.QueryRow(`
		INSERT INTO items (id, name, price, barcode_id, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, price, barcode_id, active, created_at, updated_at`,
		uuid.NewString(), req.Name, req.Price, req.BarcodeID, active).
		Scan(&it.ID, &it.Name, &it.Price, &it.BarcodeID, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, &ledger.StorageError{Op: "create item", Err: err}
	}
	return &it, nil
}

// UpdateItem applies the non-nil fields of the request
func (c *Catalog) UpdateItem(id string, req *models.UpdateItemRequest) (*models.Item, error) {
	var it models.Item
	err := c.db.QueryRow(`
		UPDATE items SET
			name       = COALESCE($1, name),
			price      = COALESCE($2, price),
			barcode_id = COALESCE($3, barcode_id),
			active     = COALESCE($4, active),
			updated_at = NOW()
		WHERE id = $5
		RETURNING id, name, price, barcode_id, active, created_at, updated_at`,
		req.Name, req.Price, req.BarcodeID, req.Active, id).
		Scan(&it.ID, &it.Name, &it.Price, &it.BarcodeID, &it.Active, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrItemNotFound
	}
	if err != nil {
		return nil, &ledger.StorageError{Op: "update item", Err: err}
	}
	return &it, nil
}

// DeleteItem soft-deletes by default. A hard delete is rejected while
// transaction history still references the item (restrict-on-delete).
func (c *Catalog) DeleteItem(id string, hard bool) error {
	if !hard {
		res, err := c.db.Exec(`
			UPDATE items SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return &ledger.StorageError{Op: "soft delete item", Err: err}
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return &ledger.StorageError{Op: "soft delete item", Err: err}
		}
		if rows == 0 {
			return ledger.ErrItemNotFound
		}
		return nil
	}

	res, err := c.db.Exec(`DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ledger.ErrItemReferenced
		}
		return &ledger.StorageError{Op: "delete item", Err: err}
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return &ledger.StorageError{Op: "delete item", Err: err}
	}
	if rows == 0 {
		return ledger.ErrItemNotFound
	}
	return nil
}
