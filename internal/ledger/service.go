// Package ledger owns the in-memory working set of the application: the
// purchases, sales and expenses collections hydrated from the repository at
// startup, plus the write operations that recompute aggregates before
// persisting and the read operations that derive summaries from snapshots.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"mandi/internal/amqp"
	"mandi/internal/core"
	"mandi/internal/storage"
)

// Lifecycle of the working set. Writes and derived reads require StateReady.
const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

type State int

// Repository is the persistence collaborator, the document store. Errors
// from it propagate to callers unchanged; the in-memory state is only
// touched after a successful write.
type Repository interface {
	Create(ctx context.Context, collection string, record json.RawMessage) (string, error)
	Update(ctx context.Context, collection, id string, partial json.RawMessage) error
	SoftDelete(ctx context.Context, collection, id string) error
	ListAll(ctx context.Context, collection, orderByField string) ([]storage.Document, error)
}

// EventPublisher notifies the export worker about changed records. A nil
// publisher disables export; publish failures never fail the write.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error
}

type Service struct {
	repo   Repository
	events EventPublisher

	mu        sync.RWMutex
	state     State
	purchases []core.Purchase
	sales     []core.Sale
	expenses  []core.Expense
}

func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{
		repo:   repo,
		events: events,
		state:  StateUninitialized,
	}
}

func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Service) Ready() bool {
	return s.State() == StateReady
}

// Hydrate loads the three collections concurrently and normalizes every
// record to the canonical transaction-list shape. It is called once at
// startup; the service refuses writes until it succeeds.
func (s *Service) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	var (
		purchases []core.Purchase
		sales     []core.Sale
		expenses  []core.Expense
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.repo.ListAll(gctx, storage.CollectionPurchases, "date")
		if err != nil {
			return fmt.Errorf("hydrate purchases: %w", err)
		}
		purchases = make([]core.Purchase, 0, len(docs))
		for _, doc := range docs {
			var p core.Purchase
			if err := json.Unmarshal(doc.Data, &p); err != nil {
				return fmt.Errorf("decode purchase %s: %w", doc.ID, err)
			}
			p.ID = doc.ID
			purchases = append(purchases, p.Normalize())
		}
		return nil
	})
	g.Go(func() error {
		docs, err := s.repo.ListAll(gctx, storage.CollectionSales, "date")
		if err != nil {
			return fmt.Errorf("hydrate sales: %w", err)
		}
		sales = make([]core.Sale, 0, len(docs))
		for _, doc := range docs {
			var sl core.Sale
			if err := json.Unmarshal(doc.Data, &sl); err != nil {
				return fmt.Errorf("decode sale %s: %w", doc.ID, err)
			}
			sl.ID = doc.ID
			sales = append(sales, sl.Normalize())
		}
		return nil
	})
	g.Go(func() error {
		docs, err := s.repo.ListAll(gctx, storage.CollectionExpenses, "date")
		if err != nil {
			return fmt.Errorf("hydrate expenses: %w", err)
		}
		expenses = make([]core.Expense, 0, len(docs))
		for _, doc := range docs {
			var e core.Expense
			if err := json.Unmarshal(doc.Data, &e); err != nil {
				return fmt.Errorf("decode expense %s: %w", doc.ID, err)
			}
			e.ID = doc.ID
			expenses = append(expenses, e)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.state = StateUninitialized
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.purchases = purchases
	s.sales = sales
	s.expenses = expenses
	s.state = StateReady
	s.mu.Unlock()

	slog.InfoContext(ctx, "Ledger hydrated",
		"purchases", len(purchases),
		"sales", len(sales),
		"expenses", len(expenses))

	return nil
}

// AddPurchase validates, recomputes and persists a new purchase, then adds
// it to the working set.
func (s *Service) AddPurchase(ctx context.Context, p core.Purchase) (core.Purchase, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return core.Purchase{}, err
	}

	p.ID = ""
	record, err := json.Marshal(p)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("encode purchase: %w", err)
	}

	id, err := s.repo.Create(ctx, storage.CollectionPurchases, record)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}
	p.ID = id

	s.mu.Lock()
	s.purchases = append([]core.Purchase{p}, s.purchases...)
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionPurchases, id, amqp.ActionCreated)
	return p, nil
}

// UpdatePurchase replaces a stored purchase's fields wholesale after
// recomputing its aggregates.
func (s *Service) UpdatePurchase(ctx context.Context, id string, p core.Purchase) (core.Purchase, error) {
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return core.Purchase{}, err
	}

	p.ID = ""
	record, err := json.Marshal(p)
	if err != nil {
		return core.Purchase{}, fmt.Errorf("encode purchase: %w", err)
	}

	if err := s.repo.Update(ctx, storage.CollectionPurchases, id, record); err != nil {
		return core.Purchase{}, fmt.Errorf("update purchase: %w", err)
	}
	p.ID = id

	s.mu.Lock()
	for i := range s.purchases {
		if s.purchases[i].ID == id {
			s.purchases[i] = p
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionPurchases, id, amqp.ActionUpdated)
	return p, nil
}

// DeletePurchase soft-deletes the record and drops it from the working set.
func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, storage.CollectionPurchases, id); err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}

	s.mu.Lock()
	s.purchases = removePurchase(s.purchases, id)
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionPurchases, id, amqp.ActionDeleted)
	return nil
}

func (s *Service) AddSale(ctx context.Context, sale core.Sale) (core.Sale, error) {
	sale = sale.Normalize()
	if err := sale.Validate(); err != nil {
		return core.Sale{}, err
	}

	sale.ID = ""
	record, err := json.Marshal(sale)
	if err != nil {
		return core.Sale{}, fmt.Errorf("encode sale: %w", err)
	}

	id, err := s.repo.Create(ctx, storage.CollectionSales, record)
	if err != nil {
		return core.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	sale.ID = id

	s.mu.Lock()
	s.sales = append([]core.Sale{sale}, s.sales...)
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionSales, id, amqp.ActionCreated)
	return sale, nil
}

func (s *Service) UpdateSale(ctx context.Context, id string, sale core.Sale) (core.Sale, error) {
	sale = sale.Normalize()
	if err := sale.Validate(); err != nil {
		return core.Sale{}, err
	}

	sale.ID = ""
	record, err := json.Marshal(sale)
	if err != nil {
		return core.Sale{}, fmt.Errorf("encode sale: %w", err)
	}

	if err := s.repo.Update(ctx, storage.CollectionSales, id, record); err != nil {
		return core.Sale{}, fmt.Errorf("update sale: %w", err)
	}
	sale.ID = id

	s.mu.Lock()
	for i := range s.sales {
		if s.sales[i].ID == id {
			s.sales[i] = sale
			break
		}
	}
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionSales, id, amqp.ActionUpdated)
	return sale, nil
}

func (s *Service) DeleteSale(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, storage.CollectionSales, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}

	s.mu.Lock()
	s.sales = removeSale(s.sales, id)
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionSales, id, amqp.ActionDeleted)
	return nil
}

func (s *Service) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	e.ID = ""
	record, err := json.Marshal(e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("encode expense: %w", err)
	}

	id, err := s.repo.Create(ctx, storage.CollectionExpenses, record)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID = id

	s.mu.Lock()
	s.expenses = append([]core.Expense{e}, s.expenses...)
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionExpenses, id, amqp.ActionCreated)
	return e, nil
}

func (s *Service) DeleteExpense(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, storage.CollectionExpenses, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.mu.Lock()
	s.expenses = removeExpense(s.expenses, id)
	s.mu.Unlock()

	s.publish(ctx, storage.CollectionExpenses, id, amqp.ActionDeleted)
	return nil
}

// Purchases returns a snapshot copy of the working set, newest first.
func (s *Service) Purchases() []core.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Purchase, len(s.purchases))
	copy(out, s.purchases)
	return out
}

func (s *Service) Sales() []core.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Sale, len(s.sales))
	copy(out, s.sales)
	return out
}

func (s *Service) Expenses() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// DailySummary derives the profit/loss snapshot plus collection status for
// one calendar day.
func (s *Service) DailySummary(date string) (core.DailySummary, core.CollectionStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(date, s.purchases, s.sales, s.expenses),
		core.Collection(date, s.sales)
}

// Feed builds the unified transaction feed for one day.
func (s *Service) Feed(date string) []core.FeedEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.BuildFeed(date, s.purchases, s.sales, s.expenses)
}

// Farmers groups the purchase history by farmer mobile.
func (s *Service) Farmers() []core.PartyGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.GroupFarmers(s.purchases)
}

// Buyers groups the sale history by buyer mobile.
func (s *Service) Buyers() []core.PartyGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.GroupBuyers(s.sales)
}

// Outstanding is the carry-forward figure for the sale workflow.
type Outstanding struct {
	Mobile          string  `json:"mobile"`
	PreviousPending float64 `json:"previousPending"`
	CurrentPending  float64 `json:"currentPending"`
	TotalOutstanding float64 `json:"totalOutstanding"`
	HistoryCount    int     `json:"historyCount"`
}

// BuyerOutstanding computes a returning buyer's previous pending balance,
// optionally excluding the record being edited, and the total outstanding
// once the current transaction's pending amount is added.
func (s *Service) BuyerOutstanding(mobile, excludeID string, currentPending float64) Outstanding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prev := core.PreviousPending(s.sales, mobile, excludeID)
	return Outstanding{
		Mobile:           mobile,
		PreviousPending:  prev,
		CurrentPending:   currentPending,
		TotalOutstanding: core.TotalOutstanding(prev, currentPending),
		HistoryCount:     len(core.BuyerHistory(s.sales, mobile, excludeID)),
	}
}

func (s *Service) publish(ctx context.Context, collection, id, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordEvent(ctx, amqp.NewRecordEvent(collection, id, action)); err != nil {
		// The write already succeeded; export catches up later.
		slog.ErrorContext(ctx, "Failed to publish record event",
			"collection", collection,
			"id", id,
			"action", action,
			"error", err)
	}
}

func removePurchase(list []core.Purchase, id string) []core.Purchase {
	out := list[:0]
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func removeSale(list []core.Sale, id string) []core.Sale {
	out := list[:0]
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func removeExpense(list []core.Expense, id string) []core.Expense {
	out := list[:0]
	for _, e := range list {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}
