package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/campuspay/ledger/internal/idempotency"
	"github.com/campuspay/ledger/internal/ledger"
)

// PurchaseLine is one requested item with an optional quantity (default 1)
type PurchaseLine struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity *int64 `json:"quantity" validate:"omitempty,gte=1,lte=10000"`
}

// PurchaseRequest is a basket purchase against one card
type PurchaseRequest struct {
	CardID string         `json:"card_id" validate:"required,max=100"`
	Items  []PurchaseLine `json:"items" validate:"required,min=1,max=100,dive"`
	Mode   string         `json:"mode" validate:"omitempty,oneof=all_or_nothing partial"`
}

// DebitRequest is the single-item debit used by payment terminals
type DebitRequest struct {
	CardID string `json:"card_id" validate:"required,max=100"`
	ItemID string `json:"item_id" validate:"required,uuid"`
}

// PaymentService handles purchase and debit endpoints
type PaymentService struct {
	guard     *idempotency.Guard
	engine    *ledger.Engine
	validator *ValidationHelper
}

// NewPaymentService creates a new payment service
func NewPaymentService(guard *idempotency.Guard, engine *ledger.Engine) *PaymentService {
	return &PaymentService{
		guard:     guard,
		engine:    engine,
		validator: NewValidationHelper(),
	}
}

// CreatePurchase handles a basket purchase
// @Summary Purchase items
// @Description Debits the card balance for a basket of items in one atomic transaction
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay protection key, cached 24h"
// @Param purchase body PurchaseRequest true "Purchase data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /purchases [post]
func (ps *PaymentService) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest

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

	if err := ps.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	engineReq := toEngineRequest(&req)

	// Keys are scoped per card and endpoint so one client's key can never
	// replay another client's result.
	key := r.Header.Get("Idempotency-Key")
	if key != "" {
		key = fmt.Sprintf("%s:purchases:%s", req.CardID, key)
	}

	result, replayed, err := ps.guard.Execute(key, func(tx *sql.Tx) (*ledger.Result, error) {
		return ps.engine.PurchaseInTx(tx, engineReq)
	})
	if err != nil {
		log.Printf("[PAYMENT] Purchase failed for card %s: %v", req.CardID, err)
		SendLedgerError(w, err)
		return
	}

	if replayed {
		log.Printf("[PAYMENT] Idempotent replay for card %s", req.CardID)
		SendJSONResponse(w, http.StatusCreated, map[string]interface{}{
			"idempotent_replay": true,
			"result":            result.Receipt(),
		})
		return
	}

	SendJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"total":   result.Total,
		"summary": result.Receipt(),
	})
}

// Debit charges a single item to a card
// @Summary Debit one item
// @Description Charges the current price of a single item to the card
// @Tags payments
// @Accept json
// @Produce json
// @Param debit body DebitRequest true "Debit data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/debit [post]
func (ps *PaymentService) Debit(w http.ResponseWriter, r *http.Request) {
	var req DebitRequest

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

	if err := ps.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	engineReq := &ledger.Request{
		CardID: req.CardID,
		Lines:  []ledger.Line{{ItemID: req.ItemID, Quantity: 1}},
		Mode:   ledger.AllOrNothing,
	}

	result, _, err := ps.guard.Execute("", func(tx *sql.Tx) (*ledger.Result, error) {
		return ps.engine.PurchaseInTx(tx, engineReq)
	})
	if err != nil {
		log.Printf("[PAYMENT] Debit failed for card %s: %v", req.CardID, err)
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, map[string]interface{}{
		"card_id":     req.CardID,
		"new_balance": result.NewBalance,
	})
}

func toEngineRequest(req *PurchaseRequest) *ledger.Request {
	mode := ledger.AllOrNothing
	if req.Mode != "" {
		mode = ledger.Mode(req.Mode)
	}

	lines := make([]ledger.Line, 0, len(req.Items))
	for _, item := range req.Items {
		qty := int64(1)
		if item.Quantity != nil {
			qty = *item.Quantity
		}
		lines = append(lines, ledger.Line{ItemID: item.ItemID, Quantity: qty})
	}

	return &ledger.Request{CardID: req.CardID, Lines: lines, Mode: mode}
}
