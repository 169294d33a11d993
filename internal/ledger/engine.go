// Package ledger implements the balance-debit purchase protocol: pricing
// against the catalog, the conditional debit, and the transaction log
// append, all inside one database transaction.
package ledger

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/campuspay/ledger/internal/events"
	"github.com/campuspay/ledger/internal/models"
)

// Mode selects how line failures are handled
type Mode string

const (
	// AllOrNothing aborts the whole purchase when any line fails
	AllOrNothing Mode = "all_or_nothing"
	// Partial drops failing lines and charges the rest
	Partial Mode = "partial"
)

// Valid reports whether the mode is one of the two known values
func (m Mode) Valid() bool {
	return m == AllOrNothing || m == Partial
}

// Line is one requested item with a quantity
type Line struct {
	ItemID   string
	Quantity int64
}

// Request is a priced-and-debited purchase attempt
type Request struct {
	CardID string
	Lines  []Line
	Mode   Mode
}

// Receipt is the cacheable outcome of a committed purchase
type Receipt struct {
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Result is the full outcome, including data that is not cached
type Result struct {
	CardID     string
	Total      int64
	Timestamp  time.Time
	NewBalance int64
	Units      int
}

// Receipt projects the cacheable pair
func (r *Result) Receipt() Receipt {
	return Receipt{Total: r.Total, Timestamp: r.Timestamp}
}

// Store is the slice of the account store the engine needs
type Store interface {
	GetAccount(cardID string) (*models.Account, error)
	ConditionalDebit(tx *sql.Tx, cardID string, amount int64) (int64, bool, error)
	AppendRecords(tx *sql.Tx, records []models.TransactionRecord) error
}

// Catalog resolves item ids to price and active flag
type Catalog interface {
	GetItems(ids []string) (map[string]models.PricedItem, error)
}

// Engine runs purchase attempts. Each attempt moves through received,
// priced, then either aborts (invalid line), fails the debit (insufficient
// funds), or commits. There is no partially applied state: the debit and
// the log append share the caller's transaction.
type Engine struct {
	store   Store
	catalog Catalog
	sink    events.Sink
}

// NewEngine creates an Engine
func NewEngine(store Store, catalog Catalog, sink events.Sink) *Engine {
	return &Engine{store: store, catalog: catalog, sink: sink}
}

// PurchaseInTx prices and applies one purchase inside the caller's
// transaction. The caller owns commit, rollback, and the commit gate. On
// any error nothing is charged; rollback discards the appended records.
func (e *Engine) PurchaseInTx(tx *sql.Tx, req *Request) (*Result, error) {
	if len(req.Lines) == 0 {
		e.reject(req.CardID, "empty purchase")
		return nil, &InvalidLineError{ItemID: "", Reason: "purchase has no lines"}
	}
	if !req.Mode.Valid() {
		e.reject(req.CardID, "unknown mode")
		return nil, &InvalidLineError{ItemID: "", Reason: "unknown failure mode"}
	}

	acct, err := e.store.GetAccount(req.CardID)
	if err != nil {
		if IsNotFound(err) {
			e.reject(req.CardID, "account not found")
		}
		return nil, err
	}
	if !acct.Active {
		e.reject(req.CardID, "account not active")
		return nil, ErrAccountInactive
	}

	priced, err := e.catalog.GetItems(distinctItemIDs(req.Lines))
	if err != nil {
		return nil, err
	}

	total, charged, err := e.price(req, priced)
	if err != nil {
		e.reject(req.CardID, err.Error())
		return nil, err
	}

	// Partial mode with every line dropped: zero charge, zero records,
	// still a success.
	if len(charged) == 0 {
		return &Result{
			CardID:     req.CardID,
			Total:      0,
			Timestamp:  time.Now().UTC(),
			NewBalance: acct.Balance,
			Units:      0,
		}, nil
	}

	newBalance, applied, err := e.store.ConditionalDebit(tx, req.CardID, total)
	if err != nil {
		return nil, err
	}
	if !applied {
		log.Printf("[LEDGER] Debit rejected for card %s: insufficient funds for %d", req.CardID, total)
		e.reject(req.CardID, "insufficient funds")
		return nil, &InsufficientFundsError{CardID: req.CardID, Requested: total}
	}

	if err := e.store.AppendRecords(tx, charged); err != nil {
		return nil, err
	}

	return &Result{
		CardID:     req.CardID,
		Total:      total,
		Timestamp:  time.Now().UTC(),
		NewBalance: newBalance,
		Units:      len(charged),
	}, nil
}

// price resolves every line and builds one record per charged unit with the
// unit price locked in. Totals use checked int64 arithmetic and never wrap.
func (e *Engine) price(req *Request, priced map[string]models.PricedItem) (int64, []models.TransactionRecord, error) {
	var total int64
	var charged []models.TransactionRecord

	for _, line := range req.Lines {
		if line.Quantity < 1 {
			return 0, nil, &InvalidLineError{ItemID: line.ItemID, Reason: "has invalid quantity"}
		}

		it, ok := priced[line.ItemID]
		if !ok || !it.Active {
			if req.Mode == Partial {
				continue
			}
			reason := "not found"
			if ok {
				reason = "not active"
			}
			return 0, nil, &InvalidLineError{ItemID: line.ItemID, Reason: reason}
		}

		lineTotal, ok := mulInt64(it.Price, line.Quantity)
		if !ok {
			return 0, nil, ErrArithmeticOverflow
		}
		total, ok = addInt64(total, lineTotal)
		if !ok {
			return 0, nil, ErrArithmeticOverflow
		}

		for u := int64(0); u < line.Quantity; u++ {
			charged = append(charged, models.TransactionRecord{
				CardID: req.CardID,
				ItemID: line.ItemID,
				Amount: it.Price,
			})
		}
	}

	return total, charged, nil
}

func (e *Engine) reject(cardID, reason string) {
	e.sink.Record(context.Background(), events.Event{
		Kind:   events.KindPurchaseRejected,
		CardID: cardID,
		Reason: reason,
	})
}

func distinctItemIDs(lines []Line) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ItemID]; ok {
			continue
		}
		seen[line.ItemID] = struct{}{}
		ids = append(ids, line.ItemID)
	}
	return ids
}

// mulInt64 multiplies non-negative operands, reporting overflow
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// addInt64 adds non-negative operands, reporting overflow
func addInt64(a, b int64) (int64, bool) {
	s := a + b
	if s < a {
		return 0, false
	}
	return s, true
}
