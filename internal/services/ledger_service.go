// Package services orchestrates ledger operations across the persistence
// store and the event queue. Every mutation follows the same shape: load the
// user's snapshot, mutate the in-memory ledger, save the snapshot back, then
// publish a change event.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"moneta/internal/amqp"
	"moneta/internal/analytics"
	"moneta/internal/core"
	"moneta/internal/ledger"
	"moneta/internal/log"
	"moneta/internal/persist"
	"moneta/internal/session"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, userID, kind string) error
}

// LedgerService serializes mutations per user so concurrent requests never
// interleave a load/save pair for the same ledger.
type LedgerService struct {
	store  persist.Store
	events EventPublisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLedgerService wires the store and an optional event publisher. A nil
// publisher disables events, matching deployments without a broker.
func NewLedgerService(store persist.Store, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *LedgerService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *LedgerService) load(ctx context.Context, userID string) (*ledger.Store, error) {
	snap, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger.FromSnapshot(snap), nil
}

// mutate runs fn against the user's ledger under the per-user lock and saves
// the result only when fn succeeds. A failed mutation leaves the persisted
// state untouched.
func (s *LedgerService) mutate(ctx context.Context, userID, kind string, fn func(*ledger.Store) error) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	st, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	if err := s.store.Save(ctx, userID, st.Snapshot()); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	s.publish(ctx, userID, kind)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, userID, kind string) {
	if s.events == nil {
		return
	}
	// Events are best effort; the snapshot is already saved.
	if err := s.events.PublishLedgerEvent(ctx, userID, kind); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldUserID, userID, "kind", kind, log.FieldError, err)
	}
}

// Ledger loads a read-only view of the user's ledger.
func (s *LedgerService) Ledger(ctx context.Context, userID string) (*ledger.Store, error) {
	return s.load(ctx, userID)
}

// UpsertRecord saves a new or edited record and returns it with its id set.
func (s *LedgerService) UpsertRecord(ctx context.Context, userID string, r core.Record) (core.Record, error) {
	var saved core.Record
	err := s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		var err error
		saved, err = st.UpsertRecord(r)
		return err
	})
	if err != nil {
		return core.Record{}, err
	}
	slog.InfoContext(ctx, "Record saved", log.FieldUserID, userID, log.FieldRecordID, saved.ID)
	return saved, nil
}

// DeleteRecord removes a record; deleting an unknown id succeeds.
func (s *LedgerService) DeleteRecord(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		st.DeleteRecord(id)
		return nil
	})
}

// AddCategory creates a category and returns it with its id set.
func (s *LedgerService) AddCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	var saved core.Category
	err := s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		var err error
		saved, err = st.AddCategory(c)
		return err
	})
	if err != nil {
		return core.Category{}, err
	}
	return saved, nil
}

// DeleteCategory removes a category unless records still reference it.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		return st.DeleteCategory(id)
	})
}

// AddAccount creates an account and returns it with its id set.
func (s *LedgerService) AddAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	var saved core.Account
	err := s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		var err error
		saved, err = st.AddAccount(a)
		return err
	})
	if err != nil {
		return core.Account{}, err
	}
	return saved, nil
}

// DeleteAccount removes an account unless records still reference it.
func (s *LedgerService) DeleteAccount(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		return st.DeleteAccount(id)
	})
}

// SetBudget creates or updates the single budget for a category.
func (s *LedgerService) SetBudget(ctx context.Context, userID, categoryID string, amount core.Money) (core.Budget, error) {
	var saved core.Budget
	err := s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		var err error
		saved, err = st.UpsertBudget(categoryID, amount)
		return err
	})
	if err != nil {
		return core.Budget{}, err
	}
	return saved, nil
}

// RemoveBudget deletes a budget; unknown ids succeed.
func (s *LedgerService) RemoveBudget(ctx context.Context, userID, id string) error {
	return s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		st.RemoveBudget(id)
		return nil
	})
}

// Import parses an exported document and merges its records into the user's
// ledger, skipping ids already present. A malformed payload fails before any
// mutation. Returns the number of records added.
func (s *LedgerService) Import(ctx context.Context, userID string, raw []byte) (int, error) {
	doc, err := ledger.ParseImportDocument(raw)
	if err != nil {
		return 0, err
	}
	added := 0
	err = s.mutate(ctx, userID, amqp.KindImportMerged, func(st *ledger.Store) error {
		added = st.MergeImport(doc.Records)
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Import merged",
		log.FieldUserID, userID, "incoming", len(doc.Records), log.FieldAdded, added)
	return added, nil
}

// Backup returns the user's full ledger encoded as a JSON snapshot.
func (s *LedgerService) Backup(ctx context.Context, userID string) ([]byte, error) {
	st, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return st.Snapshot().Encode()
}

// Restore replaces the user's entire ledger with a previously exported
// snapshot. A malformed payload fails before any mutation.
func (s *LedgerService) Restore(ctx context.Context, userID string, raw []byte) error {
	snap, err := ledger.DecodeSnapshot(raw)
	if err != nil {
		return err
	}
	return s.mutate(ctx, userID, amqp.KindLedgerChanged, func(st *ledger.Store) error {
		*st = *ledger.FromSnapshot(snap)
		return nil
	})
}

// RecordsInPeriod returns the session's current period view of records.
func (s *LedgerService) RecordsInPeriod(ctx context.Context, state session.State) ([]core.Record, error) {
	st, err := s.load(ctx, state.UserID)
	if err != nil {
		return nil, err
	}
	return analytics.InPeriod(st, state.Granularity, state.Anchor, state.Search), nil
}

// Analyze computes the aggregate views for the session's period.
func (s *LedgerService) Analyze(ctx context.Context, state session.State) (analytics.Analysis, error) {
	st, err := s.load(ctx, state.UserID)
	if err != nil {
		return analytics.Analysis{}, err
	}
	return analytics.Analyze(st, state.Granularity, state.Anchor, state.Search), nil
}

// Budgets evaluates every budget against the session's period.
func (s *LedgerService) Budgets(ctx context.Context, state session.State) ([]analytics.BudgetStatus, error) {
	st, err := s.load(ctx, state.UserID)
	if err != nil {
		return nil, err
	}
	return analytics.EvaluateBudgets(st, state.Granularity, state.Anchor), nil
}

// Close releases the store and the event publisher.
func (s *LedgerService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := s.events.(interface{ Close() error }); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
