package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Value is a single JSON value under a key, with a default for unset keys.
type Value[T any] struct {
	kv  KV
	key string
	def func() T
	mu  sync.Mutex
}

func NewValue[T any](kv KV, key string, def func() T) *Value[T] {
	return &Value[T]{kv: kv, key: key, def: def}
}

func (v *Value[T]) Get(ctx context.Context) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out T
	raw, found, err := v.kv.Get(ctx, v.key)
	if err != nil {
		return out, fmt.Errorf("read %s: %w", v.key, err)
	}
	if !found {
		if v.def != nil {
			return v.def(), nil
		}
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", v.key, err)
	}
	return out, nil
}

func (v *Value[T]) Set(ctx context.Context, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", v.key, err)
	}
	return exclusive(ctx, v.kv, func(ctx context.Context) error {
		v.mu.Lock()
		defer v.mu.Unlock()
		if err := v.kv.Put(ctx, v.key, raw); err != nil {
			return fmt.Errorf("write %s: %w", v.key, err)
		}
		return nil
	})
}
