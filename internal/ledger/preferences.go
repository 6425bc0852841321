package ledger

import (
	"context"
	"fmt"

	"finly/internal/banks"
	"finly/internal/core"
	"finly/internal/log"
)

// ActiveBanks returns the bank ids the user chose to show.
func (l *Ledger) ActiveBanks(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.ActiveBanks.Get(ctx)
}

// SetActiveBanks replaces the selection. Every id must be in the catalog.
func (l *Ledger) SetActiveBanks(ctx context.Context, ids []string) error {
	if bad, ok := banks.Known(ids); !ok {
		return fmt.Errorf("set active banks: %w: %q", core.ErrUnknownBank, bad)
	}
	return l.mutate(ctx, func(ctx context.Context) error {
		if err := l.store.ActiveBanks.Set(ctx, ids); err != nil {
			return err
		}
		l.logger.InfoContext(ctx, "Active banks updated", "count", len(ids))
		return nil
	})
}

// DismissedNotifications returns ids of notifications the user hid.
func (l *Ledger) DismissedNotifications(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Dismissed.Get(ctx)
}

// DismissNotification remembers id. Dismissing twice is harmless.
func (l *Ledger) DismissNotification(ctx context.Context, id string) error {
	return l.mutate(ctx, func(ctx context.Context) error {
		ids, err := l.store.Dismissed.Get(ctx)
		if err != nil {
			return err
		}
		for _, v := range ids {
			if v == id {
				return nil
			}
		}
		if err := l.store.Dismissed.Set(ctx, append(ids, id)); err != nil {
			return err
		}
		l.logger.DebugContext(ctx, "Notification dismissed", log.FieldOperation, log.OpUpdate, "notification_id", id)
		return nil
	})
}
