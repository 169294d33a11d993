package models

import (
	"time"
)

// Item represents a purchasable catalog entry. Price is the unit price in
// integer øre.
type Item struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	BarcodeID *string   `json:"barcode_id,omitempty" db:"barcode_id"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PricedItem is the catalog lookup projection used by the purchase path.
// Only price and the active flag matter for pricing.
type PricedItem struct {
	ID     string `json:"id"`
	Price  int64  `json:"price"`
	Active bool   `json:"active"`
}

// CreateItemRequest creates a catalog entry
type CreateItemRequest struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Price     int64   `json:"price" validate:"gte=0"`
	BarcodeID *string `json:"barcode_id" validate:"omitempty,max=100"`
	Active    *bool   `json:"active"`
}

// UpdateItemRequest updates name/price/barcode/active; nil fields untouched
type UpdateItemRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=200"`
	Price     *int64  `json:"price" validate:"omitempty,gte=0"`
	BarcodeID *string `json:"barcode_id" validate:"omitempty,max=100"`
	Active    *bool   `json:"active"`
}
