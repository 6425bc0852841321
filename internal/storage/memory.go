package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// lockRetry is how often a blocked Exclusive retries the file lock.
const lockRetry = 20 * time.Millisecond

// MemoryKV keeps values in a map. When created with NewFileKV every Put
// also rewrites a JSON snapshot, so state survives restarts.
type MemoryKV struct {
	mu     sync.Mutex
	path   string
	data   map[string]json.RawMessage
	closed bool
	// onDisk is the snapshot content last read or written by this process.
	onDisk []byte

	// Cross-process lock on path+".lock"; lockMu serializes its holders
	// inside this process.
	lock   *flock.Flock
	lockMu sync.Mutex
}

type heldKey struct{}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]json.RawMessage)}
}

// NewFileKV opens (or starts) a snapshot file at path.
func NewFileKV(path string) (*MemoryKV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	kv := &MemoryKV{
		path: path,
		data: make(map[string]json.RawMessage),
		lock: flock.New(path + ".lock"),
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return kv, nil
	case err != nil:
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return kv, nil
	}
	if err := json.Unmarshal(raw, &kv.data); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	kv.onDisk = raw
	return kv, nil
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("put %s: value is not valid JSON", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	prev, had := m.data[key]
	m.data[key] = append(json.RawMessage(nil), value...)
	if m.path == "" {
		return nil
	}
	if err := m.flush(); err != nil {
		if had {
			m.data[key] = prev
		} else {
			delete(m.data, key)
		}
		return err
	}
	return nil
}

// flush writes the snapshot through a temp file and rename.
func (m *MemoryKV) flush() error {
	raw, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	m.onDisk = raw
	return nil
}

// Exclusive holds the snapshot's file lock while fn runs, so finlyctl and
// the server never rewrite the file from stale copies. The snapshot is
// reloaded first when another process changed it.
func (m *MemoryKV) Exclusive(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.path == "" || ctx.Value(heldKey{}) == m {
		return fn(ctx)
	}
	m.lockMu.Lock()
	defer m.lockMu.Unlock()

	locked, err := m.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("lock snapshot: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock snapshot: %w", ctx.Err())
	}
	defer m.lock.Unlock()

	if _, err := m.Reload(); err != nil {
		return err
	}
	return fn(context.WithValue(ctx, heldKey{}, m))
}

// Refresh reloads the snapshot if another process rewrote it.
func (m *MemoryKV) Refresh(context.Context) error {
	_, err := m.Reload()
	return err
}

func (m *MemoryKV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.lock != nil {
		return m.lock.Close()
	}
	return nil
}
