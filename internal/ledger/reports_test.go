package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"finly/internal/core"
)

func TestMonthlyData(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 5, 31), Type: core.Income, Category: "Gaji", Amount: 100})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 6, 1), Type: core.Income, Category: "Gaji", Amount: 1_000})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 6, 15), Type: core.Expense, Category: "Makan", Amount: 300})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 6, 20), Type: core.DebtTx, Category: "Hutang", Amount: 50})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2024, 6, 20), Type: core.Expense, Category: "Makan", Amount: 7})

	m, err := l.MonthlyData(ctx, 2025, time.June)
	if err != nil {
		t.Fatal(err)
	}
	if m.Income != 1_000 || m.Expense != 300 || m.Difference != 700 || len(m.Transactions) != 3 {
		t.Fatalf("unexpected monthly data %+v", m)
	}

	empty, _ := l.MonthlyData(ctx, 2030, time.January)
	if empty.Transactions == nil || len(empty.Transactions) != 0 {
		t.Fatal("empty month should have an empty, non-nil list")
	}
}

func TestSavingsMonthlyData(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	goal, _ := l.CreateGoal(ctx, core.GoalInput{Name: "Motor", TargetAmount: 100})
	_, _ = l.Deposit(ctx, goal.ID, 40, "")
	mustSave(t, l, core.Transaction{Type: core.Expense, Category: "Makan", Amount: 60})

	today := l.Today()
	d, _ := l.SavingsMonthlyData(ctx, today.Year(), today.Month())
	if d.SavingsDeposits != 40 || d.NonSavingsExpenses != 60 || d.TotalExpenses != 100 {
		t.Fatalf("unexpected split %+v", d)
	}
}

func TestBalanceByBank(t *testing.T) {
	l, _ := newTestLedger(t)
	mustSave(t, l, core.Transaction{Type: core.Income, Category: "Gaji", Amount: 1_000, BankID: "bca"})
	mustSave(t, l, core.Transaction{Type: core.Expense, Category: "Makan", Amount: 200, BankID: "bca"})
	mustSave(t, l, core.Transaction{Type: core.Expense, Category: "Makan", Amount: 50})
	mustSave(t, l, core.Transaction{Type: core.LoanTx, Category: "Pinjaman", Amount: 25})

	got, _ := l.BalanceByBank(context.Background())
	if got["bca"] != (core.BankBalance{Income: 1_000, Expense: 200, Balance: 800}) {
		t.Fatalf("bca: %+v", got["bca"])
	}
	if got["cash"] != (core.BankBalance{Income: 0, Expense: 75, Balance: -75}) {
		t.Fatalf("cash: %+v", got["cash"])
	}
}

func TestHistoryFilters(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 4, 2), Type: core.Expense, Category: "Makan", Amount: 1})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 6, 3), Type: core.Expense, Category: "Makan", Amount: 2})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 6, 9), Type: core.Income, Category: "Gaji", Amount: 3})
	mustSave(t, l, core.Transaction{Date: core.NewDate(2025, 5, 1), Type: core.Expense, Category: "Tagihan", Amount: 4})

	tests := []struct {
		name   string
		filter HistoryFilter
		want   []core.Money
	}{
		{"all newest first", HistoryFilter{}, []core.Money{3, 2, 4, 1}},
		{"by month", HistoryFilter{Month: "2025-06"}, []core.Money{3, 2}},
		{"by type", HistoryFilter{Type: core.Expense}, []core.Money{2, 4, 1}},
		{"by category", HistoryFilter{Category: "Makan"}, []core.Money{2, 1}},
		{"combined", HistoryFilter{Month: "2025-06", Type: core.Income}, []core.Money{3}},
		{"nothing", HistoryFilter{Month: "2020-01"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := l.History(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d results, got %d", len(tc.want), len(got))
			}
			for i, tx := range got {
				if tx.Amount != tc.want[i] {
					t.Fatalf("position %d: expected %d, got %d", i, tc.want[i], tx.Amount)
				}
			}
		})
	}

	months, _ := l.HistoryMonths(ctx)
	if strings.Join(months, ",") != "2025-06,2025-05,2025-04" {
		t.Fatalf("unexpected months %v", months)
	}
}
