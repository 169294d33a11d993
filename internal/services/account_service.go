package services

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/campuspay/ledger/internal/events"
	"github.com/campuspay/ledger/internal/models"
	"github.com/campuspay/ledger/internal/store"
	"github.com/go-chi/chi/v5"
)

// AccountService handles account provisioning, top-ups, and enquiries
type AccountService struct {
	store     *store.Store
	sink      events.Sink
	validator *ValidationHelper
}

// NewAccountService creates a new account service
func NewAccountService(st *store.Store, sink events.Sink) *AccountService {
	return &AccountService{
		store:     st,
		sink:      sink,
		validator: NewValidationHelper(),
	}
}

// SyncAccount upserts name and active flag from the card registry. Creates
// the account on first reference; never touches the balance.
// @Summary Sync account from card registry
// @Tags accounts
// @Accept json
// @Produce json
// @Param cardId path string true "Card ID"
// @Param account body models.AccountSyncRequest true "Registry data"
// @Success 200 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Router /accounts/{cardId} [put]
func (as *AccountService) SyncAccount(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")

	var req models.AccountSyncRequest

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	acct, err := as.store.UpsertAccount(cardID, req.Name, *req.Active)
	if err != nil {
		log.Printf("[ACCOUNT] Sync failed for card %s: %v", cardID, err)
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, acct)
}

// TopUp credits the account unconditionally. Amount zero is a no-op.
// @Summary Add balance to an account
// @Tags accounts
// @Accept json
// @Produce json
// @Param cardId path string true "Card ID"
// @Param topup body models.TopUpRequest true "Amount in øre"
// @Success 200 {object} models.TopUpResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{cardId}/balance [patch]
func (as *AccountService) TopUp(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")

	var req models.TopUpRequest

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// A disabled card cannot be topped up, matching the purchase path.
	acct, err := as.store.GetAccount(cardID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}
	if !acct.Active {
		SendErrorResponse(w, "Account not active", http.StatusForbidden, nil)
		return
	}

	newBalance, err := as.store.Credit(cardID, req.Amount)
	if err != nil {
		log.Printf("[ACCOUNT] Top-up failed for card %s: %v", cardID, err)
		SendLedgerError(w, err)
		return
	}

	if req.Amount > 0 {
		as.sink.Record(context.Background(), events.Event{
			Kind:   events.KindTopUpApplied,
			CardID: cardID,
			Total:  req.Amount,
		})
	}

	SendJSONResponse(w, http.StatusOK, models.TopUpResponse{
		CardID:     cardID,
		NewBalance: newBalance,
	})
}

// SetStatus toggles the active flag. Requesting the current state fails.
// @Summary Set account status
// @Tags accounts
// @Accept json
// @Produce json
// @Param cardId path string true "Card ID"
// @Param status body models.AccountStatusRequest true "Target state"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{cardId}/status [post]
func (as *AccountService) SetStatus(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")

	var req models.AccountStatusRequest

	maxBytes := 1_048_576 // 1 MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := as.store.SetActive(cardID, *req.Active); err != nil {
		log.Printf("[ACCOUNT] Status change failed for card %s: %v", cardID, err)
		SendLedgerError(w, err)
		return
	}

	status := models.AccountStatusInactive
	if *req.Active {
		status = models.AccountStatusActive
	}
	SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"card_id": cardID,
		"status":  status,
	})
}

// GetAccount returns the account info
// @Summary Get account info
// @Tags accounts
// @Produce json
// @Param cardId path string true "Card ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{cardId} [get]
func (as *AccountService) GetAccount(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")

	acct, err := as.store.GetAccount(cardID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, acct)
}

// GetBalance returns name and balance for one card
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param cardId path string true "Card ID"
// @Success 200 {object} models.BalanceResponse
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{cardId}/balance [get]
func (as *AccountService) GetBalance(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardId")

	acct, err := as.store.GetAccount(cardID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, models.BalanceResponse{
		CardID:  acct.CardID,
		Name:    acct.Name,
		Balance: acct.Balance,
	})
}
