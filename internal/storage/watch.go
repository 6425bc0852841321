package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"finly/internal/log"
)

// reloadDebounce is how long the snapshot must stay quiet before a reload.
const reloadDebounce = 300 * time.Millisecond

// Reload re-reads the snapshot file. It reports whether the content differs
// from what this process last saw; its own writes never count as a change.
// A file that does not decode leaves the current state in place.
func (m *MemoryKV) Reload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	if bytes.Equal(raw, m.onDisk) {
		return false, nil
	}
	data := make(map[string]json.RawMessage)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return false, fmt.Errorf("decode snapshot %s: %w", m.path, err)
		}
	}
	m.data = data
	m.onDisk = raw
	return true, nil
}

// Watch reloads the snapshot whenever another process rewrites it, such as
// finlyctl editing the file the server has open, and calls onChange after
// every reload that changed something. It blocks until ctx ends. A KV
// without a file returns at once.
func (m *MemoryKV) Watch(ctx context.Context, logger *log.Logger, onChange func()) error {
	if m.path == "" {
		return nil
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch snapshot: %w", err)
	}
	defer w.Close()
	// The snapshot is replaced by rename, so watch the directory.
	if err := w.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("watch snapshot: %w", err)
	}
	logger.InfoContext(ctx, "Watching data file for external changes", "path", m.path)

	name := filepath.Clean(m.path)
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(reloadDebounce)
			}
		case <-pending:
			pending = nil
			changed, err := m.Reload()
			if err != nil {
				logger.WarnContext(ctx, "Failed to reload data file", log.FieldError, err)
				continue
			}
			if changed {
				logger.InfoContext(ctx, "Data file changed on disk, reloaded", "path", m.path)
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "Data file watch error", log.FieldError, err)
		}
	}
}
