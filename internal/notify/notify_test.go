package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"finly/internal/core"
	"finly/internal/ledger"
	"finly/internal/storage"
)

var tuesday = core.NewDate(2025, 6, 10)

func tx(id string, d core.Date, typ core.TransactionType, cat string, amount core.Money) core.Transaction {
	return core.Transaction{ID: id, Date: d, Type: typ, Category: cat, Amount: amount}
}

func ids(list []Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}

func find(list []Notification, typ Type) (Notification, bool) {
	for _, n := range list {
		if n.Type == typ {
			return n, true
		}
	}
	return Notification{}, false
}

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(ledger.Snapshot{Today: tuesday}, tuesday.Time, nil); len(got) != 0 {
		t.Fatalf("expected no notifications, got %v", ids(got))
	}
}

func TestGenerateIncomeToday(t *testing.T) {
	snap := ledger.Snapshot{
		Today: tuesday,
		Transactions: []core.Transaction{
			tx("a", tuesday, core.Income, "Gaji", 5_000_000),
			tx("b", tuesday.AddDays(-1), core.Income, "Bonus", 1_000_000),
		},
	}
	got := Generate(snap, tuesday.Time, nil)
	if len(got) != 1 || got[0].ID != "income-a" || got[0].Priority != Low {
		t.Fatalf("unexpected %v", got)
	}
	if !strings.Contains(got[0].Message, "Rp5.000.000") {
		t.Fatalf("message should carry the amount: %q", got[0].Message)
	}
}

func TestGenerateExpenseWarning(t *testing.T) {
	old := tuesday.AddDays(-30)
	tests := []struct {
		name     string
		income   core.Money
		expense  core.Money
		want     bool
		priority Priority
	}{
		{"under threshold", 1_000_000, 500_000, false, ""},
		{"exactly eighty percent", 1_000_000, 800_000, false, ""},
		{"over eighty percent", 1_000_000, 850_000, true, Medium},
		{"over income", 1_000_000, 1_200_000, true, High},
		{"no income", 0, 10_000, true, High},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Income from an earlier month keeps the all-time balance healthy.
			txs := []core.Transaction{tx("old", old, core.Income, "Gaji", 100_000_000)}
			if tc.income > 0 {
				txs = append(txs, tx("i", tuesday.AddDays(-2), core.Income, "Gaji", tc.income))
			}
			txs = append(txs, tx("e", tuesday, core.Expense, "Makan", tc.expense))

			got := Generate(ledger.Snapshot{Today: tuesday, Transactions: txs}, tuesday.Time, nil)
			n, ok := find(got, ExpenseWarning)
			if ok != tc.want {
				t.Fatalf("expected warning=%v, got %v", tc.want, ids(got))
			}
			if ok && (n.Priority != tc.priority || n.ID != "expense_warning-2025-06") {
				t.Fatalf("unexpected %+v", n)
			}
		})
	}
}

func TestGenerateLowBalance(t *testing.T) {
	snap := ledger.Snapshot{
		Today: tuesday,
		Transactions: []core.Transaction{
			tx("i", tuesday.AddDays(-40), core.Income, "Gaji", 1_000_000),
			tx("e", tuesday.AddDays(-40), core.Expense, "Sewa", 950_000),
		},
	}
	n, ok := find(Generate(snap, tuesday.Time, nil), LowBalance)
	if !ok || n.Priority != High || n.ID != "low_balance-2025-06-10" {
		t.Fatalf("expected low balance warning, got %+v", n)
	}

	snap.Transactions[1].Amount = 500_000
	if _, ok := find(Generate(snap, tuesday.Time, nil), LowBalance); ok {
		t.Fatal("half the income left is not low")
	}
}

func TestGenerateDebts(t *testing.T) {
	snap := ledger.Snapshot{
		Today: tuesday,
		Debts: []core.DebtRecord{
			{ID: "d1", PartyName: "Budi", Type: core.Debt, Amount: 1_000_000, DueDate: tuesday.AddDays(2), IsActive: true},
			{ID: "d2", PartyName: "Sari", Type: core.Loan, Amount: 300_000, DueDate: tuesday.AddDays(-1), IsActive: true},
			{ID: "d3", PartyName: "Andi", Type: core.Debt, Amount: 300_000, DueDate: tuesday.AddDays(-5), IsActive: false},
		},
	}
	got := Generate(snap, tuesday.Time, nil)
	want := []string{"debt_payment-d2", "debt_due-d1-2025-06-12"}
	if fmt.Sprint(ids(got)) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, ids(got))
	}
	if !strings.Contains(got[0].Message, "Piutang dari Sari") {
		t.Fatalf("loan wording expected: %q", got[0].Message)
	}
	if !strings.Contains(got[1].Message, "Hutang ke Budi") {
		t.Fatalf("debt wording expected: %q", got[1].Message)
	}
}

func TestGenerateWeeklyReportOnMonday(t *testing.T) {
	monday := core.NewDate(2025, 6, 9)
	snap := ledger.Snapshot{
		Today: monday,
		Transactions: []core.Transaction{
			tx("i", monday.AddDays(-3), core.Income, "Gaji", 2_000_000),
			tx("e", monday.AddDays(-1), core.Expense, "Makan", 150_000),
			tx("x", monday.AddDays(-8), core.Expense, "Makan", 999_000),
		},
	}
	n, ok := find(Generate(snap, monday.Time, nil), WeeklyReport)
	if !ok || n.ID != "weekly_report-2025-06-09" {
		t.Fatalf("expected weekly report, got %+v", n)
	}
	if !strings.Contains(n.Message, "Rp2.000.000") || !strings.Contains(n.Message, "Rp150.000") {
		t.Fatalf("unexpected summary %q", n.Message)
	}

	snap.Today = tuesday
	if _, ok := find(Generate(snap, tuesday.Time, nil), WeeklyReport); ok {
		t.Fatal("weekly report only on Mondays")
	}
}

func TestGenerateSkipsDismissed(t *testing.T) {
	snap := ledger.Snapshot{
		Today:        tuesday,
		Transactions: []core.Transaction{tx("a", tuesday, core.Income, "Gaji", 5_000_000)},
	}
	if got := Generate(snap, tuesday.Time, []string{"income-a"}); len(got) != 0 {
		t.Fatalf("dismissed notification returned: %v", ids(got))
	}
}

func TestServiceDismissSticks(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	l := ledger.New(storage.NewStore(storage.NewMemoryKV()), ledger.WithClock(func() time.Time { return now }))
	if _, err := l.SaveTransaction(ctx, tx("", l.Today(), core.Income, "Gaji", 5_000_000)); err != nil {
		t.Fatal(err)
	}

	svc := NewService(l)
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one notification, got %v", ids(list))
	}
	if err := svc.Dismiss(ctx, list[0].ID); err != nil {
		t.Fatal(err)
	}
	list, err = svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", list)
	}
	if err := svc.Dismiss(ctx, ""); err == nil {
		t.Fatal("expected error for empty id")
	}
}
