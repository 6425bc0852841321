package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"finly/internal/banks"
	"finly/internal/core"
)

// Store groups every persisted collection over one backend.
type Store struct {
	kv    KV
	newID func() string

	Transactions *Collection[core.Transaction]
	Categories   *Collection[core.Category]
	Goals        *Collection[core.SavingsGoal]
	Debts        *Collection[core.DebtRecord]
	ActiveBanks  *Value[[]string]
	Dismissed    *Value[[]string]
}

type StoreOption func(*storeOptions)

type storeOptions struct {
	newID func() string
}

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) StoreOption {
	return func(o *storeOptions) { o.newID = fn }
}

func NewStore(kv KV, opts ...StoreOption) *Store {
	o := storeOptions{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		kv:    kv,
		newID: o.newID,
		Transactions: NewCollection(kv, KeyTransactions, o.newID,
			func(t *core.Transaction, id string) { t.ID = id }),
		Categories: NewCollection(kv, KeyCategories, o.newID,
			func(c *core.Category, id string) { c.ID = id },
			WithSeed(DefaultCategories),
			WithUpgrader[core.Category](upgradeCategories)),
		Goals: NewCollection(kv, KeyGoals, o.newID,
			func(g *core.SavingsGoal, id string) { g.ID = id }),
		Debts: NewCollection(kv, KeyDebts, o.newID,
			func(d *core.DebtRecord, id string) { d.ID = id }),
		ActiveBanks: NewValue(kv, KeyActiveBanks, func() []string {
			return append([]string(nil), banks.DefaultActive...)
		}),
		Dismissed: NewValue(kv, KeyDismissed, func() []string { return []string{} }),
	}
}

// NewID returns a fresh record id from the store's generator.
func (s *Store) NewID() string { return s.newID() }

// Exclusive runs fn as one read-modify-write cycle across processes. On a
// backend no one else writes it just calls fn.
func (s *Store) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	return exclusive(ctx, s.kv, fn)
}

// Refresh picks up changes other processes made to the backend.
func (s *Store) Refresh(ctx context.Context) error {
	if r, ok := s.kv.(Refresher); ok {
		return r.Refresh(ctx)
	}
	return nil
}

// KV exposes the backend, e.g. for readiness checks.
func (s *Store) KV() KV { return s.kv }

func (s *Store) Close() error {
	return s.kv.Close()
}

// DefaultCategories is the category set a fresh install starts with.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "1", Name: "Gaji", Type: core.IncomeCategory, IsActive: true},
		{ID: "2", Name: "Bonus", Type: core.IncomeCategory, IsActive: true},
		{ID: "3", Name: "Lainnya", Type: core.IncomeCategory, IsActive: true},
		{ID: "4", Name: "Makan", Type: core.ExpenseCategory, IsActive: true},
		{ID: "5", Name: "Transportasi", Type: core.ExpenseCategory, IsActive: true},
		{ID: "6", Name: "Tagihan", Type: core.ExpenseCategory, IsActive: true},
		{ID: "7", Name: "Hiburan", Type: core.ExpenseCategory, IsActive: true},
		{ID: "8", Name: "Belanja", Type: core.ExpenseCategory, IsActive: true},
		{ID: "9", Name: "Lainnya", Type: core.ExpenseCategory, IsActive: true},
	}
}

// upgradeCategories fills in is_active, which version 0 records could omit
// and which was read as true.
func upgradeCategories(from int, records []json.RawMessage) ([]json.RawMessage, error) {
	if from > 0 {
		return records, nil
	}
	out := make([]json.RawMessage, 0, len(records))
	for i, rec := range records {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(rec, &fields); err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		if v, ok := fields["is_active"]; !ok || string(v) == "null" {
			fields["is_active"] = json.RawMessage("true")
		}
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("category %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}
