// apps/go-server/internal/store/memory.go
//
// Key/value persistence for progress records.
//
// Two implementations share the KV interface:
//   - memory (this file): map guarded by an RWMutex; lost on restart.
//     Used by tests and when no database is configured.
//   - SQLite (sqlite.go): the kv table, durable across restarts.
//
// Values are opaque bytes; callers (internal/progress) store JSON.

package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: not found")

// KV is a durable string-keyed byte store.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// memory is an in-memory map-based KV implementation.
type memory struct {
	mu   sync.RWMutex      // guards data
	data map[string][]byte // values are private copies
}

// NewMemory constructs an empty in-memory KV.
func NewMemory() KV {
	return &memory{data: make(map[string][]byte)}
}

func (m *memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memory) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
