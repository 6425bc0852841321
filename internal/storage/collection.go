package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// SchemaVersion is the envelope version written by this build.
const SchemaVersion = 1

// ErrFutureSchema means the stored data was written by a newer build.
var ErrFutureSchema = errors.New("stored schema version is newer than supported")

// Record is anything stored in a Collection.
type Record interface {
	RecordID() string
}

// Upgrader rewrites records persisted under an older schema version.
type Upgrader func(from int, records []json.RawMessage) ([]json.RawMessage, error)

type envelope struct {
	SchemaVersion int               `json:"schema_version"`
	Records       []json.RawMessage `json:"records"`
}

// Collection is a typed list persisted as a single value under key.
// Each call holds the collection lock for its whole read-modify-write cycle.
type Collection[T Record] struct {
	kv      KV
	key     string
	newID   func() string
	setID   func(*T, string)
	seed    func() []T
	upgrade Upgrader

	mu sync.Mutex
}

type CollectionOption[T Record] func(*Collection[T])

// WithSeed persists fn's records the first time an empty key is read.
func WithSeed[T Record](fn func() []T) CollectionOption[T] {
	return func(c *Collection[T]) { c.seed = fn }
}

func WithUpgrader[T Record](u Upgrader) CollectionOption[T] {
	return func(c *Collection[T]) { c.upgrade = u }
}

func NewCollection[T Record](kv KV, key string, newID func() string, setID func(*T, string), opts ...CollectionOption[T]) *Collection[T] {
	c := &Collection[T]{kv: kv, key: key, newID: newID, setID: setID}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the persisted key.
func (c *Collection[T]) Key() string { return c.key }

func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	records, found, err := c.load(ctx)
	c.mu.Unlock()
	if err != nil || found || c.seed == nil {
		return records, err
	}
	// The first read of an empty key persists the seed.
	err = c.modify(ctx, func(current []T) ([]T, error) {
		records = current
		return current, nil
	})
	return records, err
}

// Find returns the record with id, if any.
func (c *Collection[T]) Find(ctx context.Context, id string) (T, bool, error) {
	var zero T
	records, err := c.List(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, r := range records {
		if r.RecordID() == id {
			return r, true, nil
		}
	}
	return zero, false, nil
}

// Append assigns rec a fresh id, stores it, and returns the stored copy.
func (c *Collection[T]) Append(ctx context.Context, rec T) (T, error) {
	err := c.modify(ctx, func(records []T) ([]T, error) {
		c.setID(&rec, c.newID())
		return append(records, rec), nil
	})
	return rec, err
}

// Insert stores rec under the id it already carries.
func (c *Collection[T]) Insert(ctx context.Context, rec T) error {
	return c.modify(ctx, func(records []T) ([]T, error) {
		return append(records, rec), nil
	})
}

// errUnchanged stops modify without writing.
var errUnchanged = errors.New("unchanged")

// Remove deletes the first record with id and reports whether one existed.
func (c *Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	err := c.modify(ctx, func(records []T) ([]T, error) {
		for i, r := range records {
			if r.RecordID() == id {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, errUnchanged
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	return err == nil, err
}

// Update replaces the whole collection with fn's result.
// Nothing is written when fn returns an error.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	return c.modify(ctx, fn)
}

// modify is one read-modify-write cycle, exclusive across processes when
// the backend is shared.
func (c *Collection[T]) modify(ctx context.Context, fn func([]T) ([]T, error)) error {
	return exclusive(ctx, c.kv, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		records, found, err := c.load(ctx)
		if err != nil {
			return err
		}
		if !found && c.seed != nil {
			records = c.seed()
		}
		next, err := fn(records)
		if err != nil {
			return err
		}
		return c.save(ctx, next)
	})
}

// load reads the stored records; found is false for a key never written.
func (c *Collection[T]) load(ctx context.Context) ([]T, bool, error) {
	raw, found, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", c.key, err)
	}
	if !found || len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, false, nil
	}

	version, items, err := decodeEnvelope(raw)
	if err != nil {
		return nil, true, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if version > SchemaVersion {
		return nil, true, fmt.Errorf("%s at version %d: %w", c.key, version, ErrFutureSchema)
	}
	if version < SchemaVersion && c.upgrade != nil {
		if items, err = c.upgrade(version, items); err != nil {
			return nil, true, fmt.Errorf("upgrade %s from version %d: %w", c.key, version, err)
		}
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var rec T
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, true, fmt.Errorf("decode %s record %d: %w", c.key, i, err)
		}
		out = append(out, rec)
	}
	return out, true, nil
}

func (c *Collection[T]) save(ctx context.Context, records []T) error {
	env := envelope{SchemaVersion: SchemaVersion, Records: make([]json.RawMessage, 0, len(records))}
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode %s record %s: %w", c.key, r.RecordID(), err)
		}
		env.Records = append(env.Records, b)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.kv.Put(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

// decodeEnvelope accepts the current envelope or a bare JSON array, which
// is what the browser build wrote and counts as version 0.
func decodeEnvelope(raw []byte) (int, []json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0, nil, err
		}
		return 0, items, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return 0, nil, err
	}
	return env.SchemaVersion, env.Records, nil
}
