package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/campuspay/ledger/internal/ledger"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	if validationErr != nil {
		errorResp.Details = make(map[string]string)
		var validationErrors validator.ValidationErrors
		if errors.As(validationErr, &validationErrors) {
			for _, err := range validationErrors {
				errorResp.Details[err.Field()] = fmt.Sprintf("Field Validation Failed on '%s' tag", err.Tag())
			}
		}
	}

	json.NewEncoder(w).Encode(errorResp)
}

// SendJSONResponse writes a JSON payload with the given status
func SendJSONResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// SendLedgerError maps the ledger error taxonomy onto HTTP statuses.
// Transient errors return 503 so callers know to retry with the same
// idempotency key.
func SendLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
	case errors.Is(err, ledger.ErrItemNotFound):
		SendErrorResponse(w, "Item not found", http.StatusNotFound, nil)
	case errors.Is(err, ledger.ErrAccountInactive):
		SendErrorResponse(w, "Account not active", http.StatusForbidden, nil)
	case errors.Is(err, ledger.ErrInsufficientFunds):
		SendErrorResponse(w, "Insufficient funds", http.StatusPaymentRequired, nil)
	case errors.Is(err, ledger.ErrInvalidLine):
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
	case errors.Is(err, ledger.ErrArithmeticOverflow):
		SendErrorResponse(w, "Purchase total overflows", http.StatusBadRequest, nil)
	case errors.Is(err, ledger.ErrAlreadyInState):
		SendErrorResponse(w, "Account already in requested state", http.StatusBadRequest, nil)
	case errors.Is(err, ledger.ErrItemReferenced):
		SendErrorResponse(w, "Item is referenced by transaction history", http.StatusConflict, nil)
	case errors.Is(err, ledger.ErrSweepInProgress):
		SendErrorResponse(w, "Archival sweep in progress, retry later", http.StatusServiceUnavailable, nil)
	case errors.Is(err, ledger.ErrStorageUnavailable):
		SendErrorResponse(w, "Storage unavailable, retry later", http.StatusServiceUnavailable, nil)
	default:
		SendErrorResponse(w, "Internal error", http.StatusInternalServerError, nil)
	}
}
