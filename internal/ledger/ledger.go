// Package ledger is the bookkeeping engine: transactions, savings goals and
// their synthesized categories, debts, and the reports derived from them.
//
// Every mutating operation runs under one write lock for its whole
// multi-collection cycle and, once it has persisted, publishes exactly one
// change signal on the bus.
package ledger

import (
	"context"
	"sync"
	"time"

	"finly/internal/core"
	"finly/internal/events"
	"finly/internal/log"
	"finly/internal/storage"
)

type Ledger struct {
	store  *storage.Store
	bus    *events.Bus
	logger *log.Logger
	now    func() time.Time

	mu sync.RWMutex
}

type Option func(*Ledger)

// WithClock replaces time.Now, which decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) { l.logger = logger.WithComponent(log.ComponentLedger) }
}

// WithBus shares an existing bus instead of creating one.
func WithBus(bus *events.Bus) Option {
	return func(l *Ledger) { l.bus = bus }
}

func New(store *storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		logger: log.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.bus == nil {
		l.bus = events.NewBus(l.logger)
	}
	return l
}

// Bus is where change signals are published.
func (l *Ledger) Bus() *events.Bus { return l.bus }

// Store exposes the underlying collections.
func (l *Ledger) Store() *storage.Store { return l.store }

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time { return l.now() }

// Today is the current calendar date in the clock's location.
func (l *Ledger) Today() core.Date { return core.DateOf(l.now()) }

// mutate runs fn under the write lock and signals after unlocking, so
// subscribers can read straight away. On a backend shared with other
// processes fn also holds the store's exclusive lock and must use the
// context it is given.
func (l *Ledger) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	err := l.store.Exclusive(ctx, fn)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	l.bus.Publish()
	return nil
}

// Snapshot is a consistent copy of every collection.
type Snapshot struct {
	Today        core.Date
	Transactions []core.Transaction
	Categories   []core.Category
	Goals        []core.SavingsGoal
	Debts        []core.DebtRecord
}

// Snapshot first picks up writes other processes made to a shared backend.
func (l *Ledger) Snapshot(ctx context.Context) (Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if err := l.store.Refresh(ctx); err != nil {
		return Snapshot{}, err
	}
	return l.snapshotLocked(ctx)
}

func (l *Ledger) snapshotLocked(ctx context.Context) (Snapshot, error) {
	txs, err := l.store.Transactions.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	cats, err := l.store.Categories.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	goals, err := l.store.Goals.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	debts, err := l.store.Debts.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Today:        l.Today(),
		Transactions: txs,
		Categories:   cats,
		Goals:        goals,
		Debts:        debts,
	}, nil
}
