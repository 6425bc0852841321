package ledger

import (
	"context"
	"fmt"

	"finly/internal/core"
	"finly/internal/log"
)

// SaveTransaction validates tx, assigns it an id and stores it.
func (l *Ledger) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	var saved core.Transaction
	err := l.mutate(ctx, func(ctx context.Context) error {
		var err error
		saved, err = l.appendTransactionLocked(ctx, tx)
		return err
	})
	return saved, err
}

func (l *Ledger) appendTransactionLocked(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	saved, err := l.store.Transactions.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	l.logger.InfoContext(ctx, "Transaction saved",
		log.FieldTransactionID, saved.ID,
		log.FieldTxType, string(saved.Type),
		log.FieldCategory, saved.Category,
		log.FieldAmount, int64(saved.Amount))
	return saved, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	return l.mutate(ctx, func(ctx context.Context) error {
		removed, err := l.store.Transactions.Remove(ctx, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if !removed {
			return fmt.Errorf("delete transaction %s: %w", id, core.ErrTransactionNotFound)
		}
		l.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
		return nil
	})
}

func (l *Ledger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Transactions.List(ctx)
}
