// Package storage persists the Finly collections.
//
// Every collection is one serialized value under a fixed key, the same
// shape the browser build kept in local storage. A KV backend only moves
// bytes; typing, versioning and seeding live in Collection and Value.
package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by a backend used after Close.
var ErrClosed = errors.New("storage closed")

// KV is the byte-level backend behind every collection.
type KV interface {
	// Get returns the value under key; found is false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Exclusive is implemented by backends another process can write to, such
// as a data file shared with finlyctl. Exclusive runs fn holding a
// cross-process write lock, after loading whatever was written elsewhere.
// Calls made with fn's ctx reuse the lock instead of waiting on it.
type Exclusive interface {
	Exclusive(ctx context.Context, fn func(ctx context.Context) error) error
}

// Refresher is implemented by backends that cache another process's data.
type Refresher interface {
	Refresh(ctx context.Context) error
}

func exclusive(ctx context.Context, kv KV, fn func(ctx context.Context) error) error {
	if x, ok := kv.(Exclusive); ok {
		return x.Exclusive(ctx, fn)
	}
	return fn(ctx)
}

// Persisted keys.
const (
	KeyTransactions = "finly_transactions"
	KeyCategories   = "finly_categories"
	KeyGoals        = "finly_savings_goals"
	KeyDebts        = "finly_debts"
	KeyActiveBanks  = "activeBanks"
	KeyDismissed    = "finly_dismissed_notifications"
)
