package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"finly/internal/core"
)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestCollectionAppendListRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV(), WithIDGenerator(sequentialIDs()))

	tx, err := store.Transactions.Append(ctx, core.Transaction{
		ID: "ignored", Date: core.NewDate(2025, 1, 2), Type: core.Income, Category: "Gaji", Amount: 100,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if tx.ID != "id-1" {
		t.Fatalf("append must assign a fresh id, got %q", tx.ID)
	}
	if _, err := store.Transactions.Append(ctx, core.Transaction{Type: core.Expense, Amount: 5}); err != nil {
		t.Fatalf("append: %v", err)
	}

	list, err := store.Transactions.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %v", list, err)
	}
	if list[0].Date != core.NewDate(2025, 1, 2) {
		t.Fatalf("date did not round-trip: %v", list[0].Date)
	}

	removed, err := store.Transactions.Remove(ctx, "id-1")
	if err != nil || !removed {
		t.Fatalf("remove: %v %v", removed, err)
	}
	removed, err = store.Transactions.Remove(ctx, "id-1")
	if err != nil || removed {
		t.Fatalf("second remove should report miss: %v %v", removed, err)
	}
	if _, found, _ := store.Transactions.Find(ctx, "id-2"); !found {
		t.Fatal("id-2 should remain")
	}
}

func TestCollectionUpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())
	if err := store.Goals.Insert(ctx, core.SavingsGoal{ID: "g1", Name: "Motor", IsActive: true}); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	err := store.Goals.Update(ctx, func(gs []core.SavingsGoal) ([]core.SavingsGoal, error) {
		gs[0].Name = "changed"
		return gs, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	g, _, _ := store.Goals.Find(ctx, "g1")
	if g.Name != "Motor" {
		t.Fatalf("update should not persist on error, got %q", g.Name)
	}
}

func TestCategoriesSeedOnFirstRead(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	store := NewStore(kv)

	cats, err := store.Categories.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cats) != 9 || cats[0].ID != "1" || cats[8].Name != "Lainnya" {
		t.Fatalf("unexpected defaults %+v", cats)
	}
	if _, found, _ := kv.Get(ctx, KeyCategories); !found {
		t.Fatal("defaults should be persisted")
	}

	// An explicitly empty collection is not reseeded.
	if err := store.Categories.Update(ctx, func([]core.Category) ([]core.Category, error) {
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	cats, _ = store.Categories.List(ctx)
	if len(cats) != 0 {
		t.Fatalf("expected empty list, got %d", len(cats))
	}
}

func TestLegacyArrayIsUpgraded(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	legacy := `[{"id":"1","name":"Gaji","type":"income"},{"id":"2","name":"Lama","type":"expense","is_active":false}]`
	if err := kv.Put(ctx, KeyCategories, []byte(legacy)); err != nil {
		t.Fatal(err)
	}
	store := NewStore(kv)

	cats, err := store.Categories.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !cats[0].IsActive {
		t.Fatal("missing is_active should read as active")
	}
	if cats[1].IsActive {
		t.Fatal("explicit is_active=false must be kept")
	}

	// The next write stores the envelope.
	if err := store.Categories.Insert(ctx, core.Category{ID: "x", Name: "Baru", Type: core.ExpenseCategory, IsActive: true}); err != nil {
		t.Fatal(err)
	}
	raw, _, _ := kv.Get(ctx, KeyCategories)
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("expected envelope, got %s", raw)
	}
	if env.SchemaVersion != SchemaVersion || len(env.Records) != 3 {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestFutureSchemaRejected(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Put(ctx, KeyDebts, []byte(`{"schema_version": 99, "records": []}`))
	store := NewStore(kv)
	if _, err := store.Debts.List(ctx); !errors.Is(err, ErrFutureSchema) {
		t.Fatalf("expected ErrFutureSchema, got %v", err)
	}
}

func TestValueDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())
	active, err := store.ActiveBanks.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(active, ",") != "cash,bca,bni,bri,mandiri" {
		t.Fatalf("unexpected defaults %v", active)
	}
	active[0] = "mutated"
	again, _ := store.ActiveBanks.Get(ctx)
	if again[0] != "cash" {
		t.Fatal("default must not be shared")
	}

	if err := store.ActiveBanks.Set(ctx, []string{"jago"}); err != nil {
		t.Fatal(err)
	}
	got, _ := store.ActiveBanks.Get(ctx)
	if len(got) != 1 || got[0] != "jago" {
		t.Fatalf("got %v", got)
	}
}

func TestCollectionConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewStore(NewMemoryKV())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Debts.Append(ctx, core.DebtRecord{PartyName: "x"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	debts, _ := store.Debts.List(ctx)
	if len(debts) != 20 {
		t.Fatalf("lost updates: got %d", len(debts))
	}
}
