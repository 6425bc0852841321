package ledger

import (
	"context"
	"sort"

	"finly/internal/core"
)

// HistoryFilter narrows the transaction history. Empty fields match everything.
type HistoryFilter struct {
	Month    string // YYYY-MM
	Type     core.TransactionType
	Category string
}

func (f HistoryFilter) match(tx core.Transaction) bool {
	if f.Month != "" && tx.Date.MonthKey() != f.Month {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	return true
}

// History returns matching transactions, newest first.
func (l *Ledger) History(ctx context.Context, f HistoryFilter) ([]core.Transaction, error) {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// HistoryMonths lists the distinct YYYY-MM months with transactions, newest first.
func (l *Ledger) HistoryMonths(ctx context.Context) ([]string, error) {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	months := []string{}
	for _, tx := range txs {
		key := tx.Date.MonthKey()
		if !seen[key] {
			seen[key] = true
			months = append(months, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months)))
	return months, nil
}
