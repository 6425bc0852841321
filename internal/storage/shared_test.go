package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"finly/internal/core"
)

func TestFileKVSharedWritesKeepBoth(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finly.json")

	// Both handles are open before either writes, like finlyctl started
	// while the server is running.
	serverKV, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("open server: %v", err)
	}
	cliKV, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("open cli: %v", err)
	}
	server, cli := NewStore(serverKV), NewStore(cliKV)

	if _, err := cli.Transactions.Append(ctx, core.Transaction{Category: "Gaji", Type: core.Income, Amount: 10}); err != nil {
		t.Fatal(err)
	}
	if _, err := server.Transactions.Append(ctx, core.Transaction{Category: "Makan", Type: core.Expense, Amount: 5}); err != nil {
		t.Fatal(err)
	}
	if err := server.ActiveBanks.Set(ctx, []string{"bca"}); err != nil {
		t.Fatal(err)
	}
	_ = serverKV.Close()
	_ = cliKV.Close()

	reopened, err := NewFileKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	txs, err := NewStore(reopened).Transactions.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions on disk, got %d: %+v", len(txs), txs)
	}
}

func TestFileKVExclusiveConcurrent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finly.json")

	var stores []*Store
	for i := 0; i < 2; i++ {
		kv, err := NewFileKV(path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer kv.Close()
		stores = append(stores, NewStore(kv))
	}

	const perStore = 10
	var wg sync.WaitGroup
	errs := make(chan error, 2*perStore)
	for _, s := range stores {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			for i := 0; i < perStore; i++ {
				if _, err := s.Goals.Append(ctx, core.SavingsGoal{Name: "g", IsActive: true}); err != nil {
					errs <- err
				}
			}
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	if err := stores[0].Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	goals, err := stores[0].Goals.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 2*perStore {
		t.Fatalf("expected %d goals, got %d", 2*perStore, len(goals))
	}
}

func TestFileKVExclusiveNested(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "finly.json"))
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	store := NewStore(kv)

	// Collection calls inside Exclusive reuse the held lock.
	err = store.Exclusive(ctx, func(ctx context.Context) error {
		if _, err := store.Goals.Append(ctx, core.SavingsGoal{Name: "a"}); err != nil {
			return err
		}
		return store.Dismissed.Set(ctx, []string{"n1"})
	})
	if err != nil {
		t.Fatal(err)
	}
	if goals, _ := store.Goals.List(ctx); len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
}

func TestFileKVRefresh(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finly.json")
	a, err := NewFileKV(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewFileKV(path)
	if err != nil {
		t.Fatal(err)
	}
	reader, writer := NewStore(a), NewStore(b)
	if _, err := writer.Debts.Append(ctx, core.DebtRecord{PartyName: "Budi", IsActive: true}); err != nil {
		t.Fatal(err)
	}

	if debts, _ := reader.Debts.List(ctx); len(debts) != 0 {
		t.Fatalf("reader should still hold its old copy, got %d", len(debts))
	}
	if err := reader.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if debts, _ := reader.Debts.List(ctx); len(debts) != 1 {
		t.Fatalf("expected refreshed debt, got %d", len(debts))
	}

	// A corrupt file refuses writes instead of overwriting it.
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := reader.Goals.Append(ctx, core.SavingsGoal{Name: "x"}); err == nil {
		t.Fatal("expected the write to fail on a corrupt snapshot")
	}
}

func TestSQLiteKVExclusive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "finly.db")
	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer kv.Close()
	other, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("open other: %v", err)
	}
	defer other.Close()

	a, b := NewStore(kv), NewStore(other)
	if _, err := a.Transactions.Append(ctx, core.Transaction{Category: "Gaji", Amount: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Transactions.Append(ctx, core.Transaction{Category: "Makan", Amount: 1}); err != nil {
		t.Fatal(err)
	}
	if txs, _ := a.Transactions.List(ctx); len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}

	// A failed cycle commits nothing.
	boom := errors.New("boom")
	err = a.Exclusive(ctx, func(ctx context.Context) error {
		if _, err := a.Goals.Append(ctx, core.SavingsGoal{Name: "Motor"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if goals, _ := b.Goals.List(ctx); len(goals) != 0 {
		t.Fatalf("rolled back goal is visible: %+v", goals)
	}
}
