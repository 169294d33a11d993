package ledger

import (
	"context"
	"database/sql"
	"math"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/campuspay/ledger/internal/events"
	"github.com/campuspay/ledger/internal/models"
	"github.com/stretchr/testify/assert"
)

// stubStore's debit mirrors the production semantics: check and decrement as
// one atomic step.
type stubStore struct {
	mu         sync.Mutex
	account    *models.Account
	accountErr error
	balance    int64
	debits     []int64
	appended   []models.TransactionRecord
}

func (s *stubStore) GetAccount(cardID string) (*models.Account, error) {
	if s.accountErr != nil {
		return nil, s.accountErr
	}
	return s.account, nil
}

func (s *stubStore) ConditionalDebit(tx *sql.Tx, cardID string, amount int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balance < amount {
		return 0, false, nil
	}
	s.balance -= amount
	s.debits = append(s.debits, amount)
	return s.balance, true, nil
}

func (s *stubStore) AppendRecords(tx *sql.Tx, records []models.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appended = append(s.appended, records...)
	return nil
}

type stubCatalog struct {
	items map[string]models.PricedItem
}

func (c *stubCatalog) GetItems(ids []string) (map[string]models.PricedItem, error) {
	out := make(map[string]models.PricedItem, len(ids))
	for _, id := range ids {
		if it, ok := c.items[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingSink) Record(_ context.Context, ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// newTestTx mints a transaction handle the stubs ignore
func newTestTx(t *testing.T) *sql.Tx {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)
	return tx
}

func activeAccount(balance int64) *models.Account {
	return &models.Account{CardID: "card123", Name: "John Doe", Balance: balance, Active: true}
}

func TestEngine_PurchaseInTx(t *testing.T) {
	coffee := models.PricedItem{ID: "coffee", Price: 1500, Active: true}
	soda := models.PricedItem{ID: "soda", Price: 1000, Active: true}
	retired := models.PricedItem{ID: "retired", Price: 500, Active: false}

	t.Run("successful purchase", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee, "soda": soda}}, sink)

		result, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 2}, {ItemID: "soda", Quantity: 1}},
			Mode:   AllOrNothing,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(4000), result.Total)
		assert.Equal(t, int64(46000), result.NewBalance)
		assert.Equal(t, 3, result.Units)
		assert.False(t, result.Timestamp.IsZero())

		// One record per charged unit, amount locked to the unit price
		assert.Len(t, store.appended, 3)
		assert.Equal(t, int64(1500), store.appended[0].Amount)
		assert.Equal(t, int64(1500), store.appended[1].Amount)
		assert.Equal(t, int64(1000), store.appended[2].Amount)
		assert.Equal(t, "card123", store.appended[0].CardID)
		assert.Empty(t, sink.events)
	})

	t.Run("insufficient funds leaves balance untouched", func(t *testing.T) {
		store := &stubStore{account: activeAccount(1000), balance: 1000}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee}}, sink)

		result, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 2}},
			Mode:   AllOrNothing,
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, int64(1000), store.balance)
		assert.Empty(t, store.appended)

		var insufficientErr *InsufficientFundsError
		assert.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, int64(3000), insufficientErr.Requested)

		assert.Len(t, sink.events, 1)
		assert.Equal(t, events.KindPurchaseRejected, sink.events[0].Kind)
		assert.Equal(t, "insufficient funds", sink.events[0].Reason)
	})

	t.Run("unknown item aborts all_or_nothing purchase", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee}}, sink)

		result, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 1}, {ItemID: "ghost", Quantity: 1}},
			Mode:   AllOrNothing,
		})

		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidLine)
		// Nothing debited, nothing logged
		assert.Empty(t, store.debits)
		assert.Empty(t, store.appended)
		assert.Equal(t, int64(50000), store.balance)

		var lineErr *InvalidLineError
		assert.ErrorAs(t, err, &lineErr)
		assert.Equal(t, "ghost", lineErr.ItemID)
	})

	t.Run("inactive item aborts all_or_nothing purchase", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"retired": retired}}, &recordingSink{})

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "retired", Quantity: 1}},
			Mode:   AllOrNothing,
		})

		assert.ErrorIs(t, err, ErrInvalidLine)
		var lineErr *InvalidLineError
		assert.ErrorAs(t, err, &lineErr)
		assert.Equal(t, "not active", lineErr.Reason)
	})

	t.Run("partial mode drops failing lines", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee, "retired": retired}}, sink)

		result, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines: []Line{
				{ItemID: "coffee", Quantity: 2},
				{ItemID: "ghost", Quantity: 1},
				{ItemID: "retired", Quantity: 3},
			},
			Mode: Partial,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(3000), result.Total)
		assert.Equal(t, 2, result.Units)
		assert.Len(t, store.appended, 2)
		assert.Empty(t, sink.events)
	})

	t.Run("partial mode with no chargeable lines succeeds with zero charge", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{}}, sink)

		result, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "ghost", Quantity: 1}, {ItemID: "phantom", Quantity: 2}},
			Mode:   Partial,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(0), result.Total)
		assert.Equal(t, 0, result.Units)
		assert.Equal(t, int64(50000), result.NewBalance)
		assert.Empty(t, store.debits)
		assert.Empty(t, store.appended)
		assert.Empty(t, sink.events)
	})

	t.Run("bad quantity rejected in partial mode too", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee}}, &recordingSink{})

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 0}},
			Mode:   Partial,
		})

		assert.ErrorIs(t, err, ErrInvalidLine)
		assert.Empty(t, store.debits)
	})

	t.Run("inactive account", func(t *testing.T) {
		acct := activeAccount(50000)
		acct.Active = false
		store := &stubStore{account: acct, balance: 50000}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee}}, sink)

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 1}},
			Mode:   AllOrNothing,
		})

		assert.ErrorIs(t, err, ErrAccountInactive)
		assert.Len(t, sink.events, 1)
		assert.Equal(t, "account not active", sink.events[0].Reason)
	})

	t.Run("unknown account", func(t *testing.T) {
		store := &stubStore{accountErr: ErrAccountNotFound}
		sink := &recordingSink{}
		engine := NewEngine(store, &stubCatalog{}, sink)

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "nonexistent",
			Lines:  []Line{{ItemID: "coffee", Quantity: 1}},
			Mode:   AllOrNothing,
		})

		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.Len(t, sink.events, 1)
		assert.Equal(t, "account not found", sink.events[0].Reason)
	})

	t.Run("empty purchase", func(t *testing.T) {
		engine := NewEngine(&stubStore{}, &stubCatalog{}, &recordingSink{})

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{CardID: "card123", Mode: AllOrNothing})

		assert.ErrorIs(t, err, ErrInvalidLine)
	})

	t.Run("unknown mode", func(t *testing.T) {
		engine := NewEngine(&stubStore{}, &stubCatalog{}, &recordingSink{})

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 1}},
			Mode:   Mode("best_effort"),
		})

		assert.ErrorIs(t, err, ErrInvalidLine)
	})

	t.Run("line total overflow", func(t *testing.T) {
		huge := models.PricedItem{ID: "huge", Price: math.MaxInt64, Active: true}
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"huge": huge}}, &recordingSink{})

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "huge", Quantity: 2}},
			Mode:   AllOrNothing,
		})

		assert.ErrorIs(t, err, ErrArithmeticOverflow)
		assert.Empty(t, store.debits)
	})

	t.Run("order total overflow across lines", func(t *testing.T) {
		a := models.PricedItem{ID: "a", Price: math.MaxInt64, Active: true}
		b := models.PricedItem{ID: "b", Price: math.MaxInt64, Active: true}
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"a": a, "b": b}}, &recordingSink{})

		_, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "a", Quantity: 1}, {ItemID: "b", Quantity: 1}},
			Mode:   AllOrNothing,
		})

		assert.ErrorIs(t, err, ErrArithmeticOverflow)
	})

	t.Run("repeated lines for the same item all charge", func(t *testing.T) {
		store := &stubStore{account: activeAccount(50000), balance: 50000}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee}}, &recordingSink{})

		result, err := engine.PurchaseInTx(newTestTx(t), &Request{
			CardID: "card123",
			Lines:  []Line{{ItemID: "coffee", Quantity: 1}, {ItemID: "coffee", Quantity: 2}},
			Mode:   AllOrNothing,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(4500), result.Total)
		assert.Equal(t, 3, result.Units)
		assert.Len(t, store.appended, 3)
	})

	t.Run("record amounts account for the full balance movement", func(t *testing.T) {
		store := &stubStore{account: activeAccount(10000), balance: 10000}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"coffee": coffee, "soda": soda}}, &recordingSink{})

		requests := []*Request{
			{CardID: "card123", Lines: []Line{{ItemID: "coffee", Quantity: 2}}, Mode: AllOrNothing},
			{CardID: "card123", Lines: []Line{{ItemID: "soda", Quantity: 5}}, Mode: AllOrNothing},
			{CardID: "card123", Lines: []Line{{ItemID: "coffee", Quantity: 2}}, Mode: AllOrNothing},
			{CardID: "card123", Lines: []Line{{ItemID: "soda", Quantity: 2}}, Mode: AllOrNothing},
		}
		var failures int
		for _, req := range requests {
			if _, err := engine.PurchaseInTx(newTestTx(t), req); err != nil {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
				failures++
			}
		}

		// 3000 + 5000 succeed, the second coffee pair bounces, 2000 drains it
		assert.Equal(t, 1, failures)
		assert.Equal(t, int64(0), store.balance)

		var recorded int64
		for _, rec := range store.appended {
			recorded += rec.Amount
		}
		assert.Equal(t, int64(10000), recorded)
		assert.Len(t, store.appended, 9)
	})

	t.Run("racing debits never double-spend", func(t *testing.T) {
		meal := models.PricedItem{ID: "meal", Price: 300, Active: true}
		store := &stubStore{account: activeAccount(500), balance: 500}
		engine := NewEngine(store, &stubCatalog{items: map[string]models.PricedItem{"meal": meal}}, &recordingSink{})

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			tx := newTestTx(t)
			wg.Add(1)
			go func(tx *sql.Tx) {
				defer wg.Done()
				_, err := engine.PurchaseInTx(tx, &Request{
					CardID: "card123",
					Lines:  []Line{{ItemID: "meal", Quantity: 1}},
					Mode:   AllOrNothing,
				})
				errs <- err
			}(tx)
		}
		wg.Wait()
		close(errs)

		var failures int
		for err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
				failures++
			}
		}
		assert.Equal(t, 1, failures)
		assert.Equal(t, int64(200), store.balance)
		assert.Len(t, store.appended, 1)
		assert.Equal(t, int64(300), store.appended[0].Amount)
	})
}

func TestCheckedArithmetic(t *testing.T) {
	t.Run("multiply", func(t *testing.T) {
		p, ok := mulInt64(1500, 3)
		assert.True(t, ok)
		assert.Equal(t, int64(4500), p)

		_, ok = mulInt64(math.MaxInt64, 2)
		assert.False(t, ok)

		p, ok = mulInt64(math.MaxInt64, 0)
		assert.True(t, ok)
		assert.Equal(t, int64(0), p)
	})

	t.Run("add", func(t *testing.T) {
		s, ok := addInt64(4000, 500)
		assert.True(t, ok)
		assert.Equal(t, int64(4500), s)

		_, ok = addInt64(math.MaxInt64, 1)
		assert.False(t, ok)
	})
}

func TestResult_Receipt(t *testing.T) {
	result := &Result{CardID: "card123", Total: 4000, NewBalance: 46000, Units: 3}
	receipt := result.Receipt()

	assert.Equal(t, int64(4000), receipt.Total)
	assert.Equal(t, result.Timestamp, receipt.Timestamp)
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, AllOrNothing.Valid())
	assert.True(t, Partial.Valid())
	assert.False(t, Mode("").Valid())
	assert.False(t, Mode("best_effort").Valid())
}
