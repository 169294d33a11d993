package services

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/campuspay/ledger/internal/catalog"
	"github.com/campuspay/ledger/internal/models"
	"github.com/go-chi/chi/v5"
)

// ItemService handles the catalog CRUD surface
type ItemService struct {
	catalog   *catalog.Catalog
	validator *ValidationHelper
}

// NewItemService creates a new item service
func NewItemService(cat *catalog.Catalog) *ItemService {
	return &ItemService{
		catalog:   cat,
		validator: NewValidationHelper(),
	}
}

// CreateItem adds a catalog entry
// @Summary Create item
// @Tags items
// @Accept json
// @Produce json
// @Param item body models.CreateItemRequest true "Item data"
// @Success 201 {object} models.Item
// @Failure 400 {object} ErrorResponse
// @Router /items [post]
func (is *ItemService) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest

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

	if err := is.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	item, err := is.catalog.CreateItem(&req)
	if err != nil {
		log.Printf("[ITEM] Create failed: %v", err)
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusCreated, item)
}

// ListItems returns the catalog
// @Summary List items
// @Tags items
// @Produce json
// @Param active query bool false "Filter by active flag"
// @Success 200 {array} models.Item
// @Router /items [get]
func (is *ItemService) ListItems(w http.ResponseWriter, r *http.Request) {
	var activeOnly *bool
	switch r.URL.Query().Get("active") {
	case "true":
		v := true
		activeOnly = &v
	case "false":
		v := false
		activeOnly = &v
	case "":
	default:
		SendErrorResponse(w, "Invalid active filter", http.StatusBadRequest, nil)
		return
	}

	items, err := is.catalog.ListItems(activeOnly)
	if err != nil {
		log.Printf("[ITEM] List failed: %v", err)
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, items)
}

// GetItem returns one item
// @Summary Get item
// @Tags items
// @Produce json
// @Param itemId path string true "Item ID"
// @Success 200 {object} models.Item
// @Failure 404 {object} ErrorResponse
// @Router /items/{itemId} [get]
func (is *ItemService) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	item, err := is.catalog.GetItem(itemID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, item)
}

// UpdateItem applies a partial update
// @Summary Update item
// @Tags items
// @Accept json
// @Produce json
// @Param itemId path string true "Item ID"
// @Param item body models.UpdateItemRequest true "Fields to update"
// @Success 200 {object} models.Item
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /items/{itemId} [put]
func (is *ItemService) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")

	var req models.UpdateItemRequest

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

	if err := is.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	item, err := is.catalog.UpdateItem(itemID, &req)
	if err != nil {
		log.Printf("[ITEM] Update failed for %s: %v", itemID, err)
		SendLedgerError(w, err)
		return
	}

	SendJSONResponse(w, http.StatusOK, item)
}

// DeleteItem soft-deletes by default; hard_delete=true removes the row
// unless transaction history references it
// @Summary Delete item
// @Tags items
// @Produce json
// @Param itemId path string true "Item ID"
// @Param hard_delete query bool false "Remove the row instead of deactivating"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /items/{itemId} [delete]
func (is *ItemService) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	hard := r.URL.Query().Get("hard_delete") == "true"

	if err := is.catalog.DeleteItem(itemID, hard); err != nil {
		log.Printf("[ITEM] Delete failed for %s: %v", itemID, err)
		SendLedgerError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
