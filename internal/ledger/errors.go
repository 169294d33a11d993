package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for the purchase protocol. Callers match with errors.Is;
// message text is never part of the contract.
var (
	// ErrAccountNotFound is returned when the referenced card has no account.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInactive is returned when the account exists but is disabled.
	ErrAccountInactive = errors.New("account not active")

	// ErrInvalidLine is returned in all-or-nothing mode when any line
	// references a missing or inactive item, or carries a bad quantity.
	ErrInvalidLine = errors.New("invalid line item")

	// ErrInsufficientFunds is returned when the conditional debit matches no
	// row. Nothing has been charged.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrArithmeticOverflow is returned when the order total does not fit in
	// int64. Totals never wrap.
	ErrArithmeticOverflow = errors.New("arithmetic overflow in total")

	// ErrAlreadyInState is returned when a status toggle requests the state
	// the account is already in.
	ErrAlreadyInState = errors.New("account already in requested state")

	// ErrItemNotFound is returned by catalog reads for an unknown item id.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemReferenced is returned when a hard delete would orphan ledger
	// records (restrict-on-delete).
	ErrItemReferenced = errors.New("item referenced by transaction history")

	// ErrStorageUnavailable wraps driver-level failures. Transient; callers
	// may retry with the same idempotency key.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSweepInProgress is returned when an archival sweep is already
	// running. Transient; callers may retry.
	ErrSweepInProgress = errors.New("archival sweep in progress")
)

// InsufficientFundsError carries the shortfall detail for logging and
// client messages.
type InsufficientFundsError struct {
	CardID    string
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on card %s for %d", e.CardID, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// InvalidLineError identifies which line failed pricing and why.
type InvalidLineError struct {
	ItemID string
	Reason string
}

func (e *InvalidLineError) Error() string {
	return fmt.Sprintf("item %s %s", e.ItemID, e.Reason)
}

func (e *InvalidLineError) Unwrap() error {
	return ErrInvalidLine
}

// StorageError wraps an underlying driver error as a transient storage
// failure while keeping the cause for logs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return ErrStorageUnavailable
}

// IsRetryable reports whether the operation might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrSweepInProgress)
}

// IsClientError reports whether the failure was caused by the request
// rather than the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidLine) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrArithmeticOverflow) ||
		errors.Is(err, ErrAlreadyInState)
}

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrItemNotFound)
}
