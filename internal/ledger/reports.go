package ledger

import (
	"context"
	"time"

	"finly/internal/banks"
	"finly/internal/core"
)

// Balance is income minus expense across all time. Debt-related
// transaction types are left out.
func (l *Ledger) Balance(ctx context.Context) (core.Balance, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return core.Balance{}, err
	}
	return snap.Balance(), nil
}

func (s Snapshot) Balance() core.Balance {
	var b core.Balance
	for _, tx := range s.Transactions {
		switch tx.Type {
		case core.Income:
			b.TotalIncome += tx.Amount
		case core.Expense:
			b.TotalExpense += tx.Amount
		}
	}
	b.Balance = b.TotalIncome - b.TotalExpense
	return b
}

// MonthlyData reports one calendar month; month is 1-12.
func (l *Ledger) MonthlyData(ctx context.Context, year int, month time.Month) (core.MonthlyData, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return core.MonthlyData{}, err
	}
	return snap.MonthlyData(year, month), nil
}

func (s Snapshot) MonthlyData(year int, month time.Month) core.MonthlyData {
	data := core.MonthlyData{Transactions: []core.Transaction{}}
	for _, tx := range s.monthTransactions(year, month) {
		data.Transactions = append(data.Transactions, tx)
		switch tx.Type {
		case core.Income:
			data.Income += tx.Amount
		case core.Expense:
			data.Expense += tx.Amount
		}
	}
	data.Difference = data.Income - data.Expense
	return data
}

func (s Snapshot) monthTransactions(year int, month time.Month) []core.Transaction {
	var out []core.Transaction
	for _, tx := range s.Transactions {
		if tx.Date.Year() == year && tx.Date.Month() == month {
			out = append(out, tx)
		}
	}
	return out
}

// CategoryExpenses totals expense transactions per expense category name,
// leaving out categories with nothing recorded.
func (l *Ledger) CategoryExpenses(ctx context.Context) ([]core.CategoryAmount, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.CategoryTotals(core.ExpenseCategory), nil
}

// CategoryIncome is CategoryExpenses for income.
func (l *Ledger) CategoryIncome(ctx context.Context) ([]core.CategoryAmount, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.CategoryTotals(core.IncomeCategory), nil
}

func (s Snapshot) CategoryTotals(kind core.CategoryType) []core.CategoryAmount {
	txType := core.Expense
	if kind == core.IncomeCategory {
		txType = core.Income
	}
	out := []core.CategoryAmount{}
	for _, c := range s.Categories {
		if c.Type != kind {
			continue
		}
		var sum core.Money
		for _, tx := range s.Transactions {
			if tx.Type == txType && tx.Category == c.Name {
				sum += tx.Amount
			}
		}
		if sum > 0 {
			out = append(out, core.CategoryAmount{Name: c.Name, Value: sum})
		}
	}
	return out
}

// BalanceByBank groups transactions by bank; no bank means cash. Every
// type other than income counts as money out.
func (l *Ledger) BalanceByBank(ctx context.Context) (map[string]core.BankBalance, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.BalanceByBank(), nil
}

func (s Snapshot) BalanceByBank() map[string]core.BankBalance {
	out := make(map[string]core.BankBalance)
	for _, tx := range s.Transactions {
		id := tx.BankID
		if id == "" {
			id = banks.Cash
		}
		b := out[id]
		if tx.Type == core.Income {
			b.Income += tx.Amount
		} else {
			b.Expense += tx.Amount
		}
		b.Balance = b.Income - b.Expense
		out[id] = b
	}
	return out
}

// SavingsMonthlyData splits a month's expenses into savings deposits and
// everything else.
func (l *Ledger) SavingsMonthlyData(ctx context.Context, year int, month time.Month) (core.SavingsMonthlyData, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return core.SavingsMonthlyData{}, err
	}
	return snap.SavingsMonthlyData(year, month), nil
}

func (s Snapshot) SavingsMonthlyData(year int, month time.Month) core.SavingsMonthlyData {
	return s.savingsSplit(s.monthTransactions(year, month))
}

// SavingsTotals is SavingsMonthlyData over all time.
func (s Snapshot) SavingsTotals() core.SavingsMonthlyData {
	return s.savingsSplit(s.Transactions)
}

func (s Snapshot) savingsSplit(txs []core.Transaction) core.SavingsMonthlyData {
	savings := make(map[string]bool)
	for _, c := range s.Categories {
		if c.IsSavings {
			savings[c.Name] = true
		}
	}
	var d core.SavingsMonthlyData
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if savings[tx.Category] {
			d.SavingsDeposits += tx.Amount
		} else {
			d.NonSavingsExpenses += tx.Amount
		}
	}
	d.TotalExpenses = d.SavingsDeposits + d.NonSavingsExpenses
	return d
}
