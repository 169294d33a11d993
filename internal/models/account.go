package models

import (
	"time"
)

// Account represents a campus card balance account. Balances are integer
// øre; no floating point anywhere on the money path.
type Account struct {
	CardID    string    `json:"card_id" db:"card_id"`
	Name      string    `json:"name" db:"name"`
	Balance   int64     `json:"balance" db:"balance"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AccountSyncRequest carries name/status data from the external card registry
type AccountSyncRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Active *bool  `json:"active" validate:"required"`
}

// AccountStatusRequest toggles the active flag
type AccountStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// TopUpRequest credits an account
type TopUpRequest struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

// TopUpResponse returns the balance after crediting
type TopUpResponse struct {
	CardID     string `json:"card_id"`
	NewBalance int64  `json:"new_balance"`
}

// BalanceResponse is the balance enquiry payload
type BalanceResponse struct {
	CardID  string `json:"card_id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// AccountStatus values
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)
