package db

import (
	"context"
	"sync"
)

// MemKV is a thread-safe in-memory KV
type MemKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemKV creates a new empty in-memory KV
func NewMemKV() *MemKV {
	return &MemKV{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value
func (m *MemKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value
func (m *MemKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Close is a no-op
func (m *MemKV) Close() error {
	return nil
}
