// internal/services/store/memory_store.go - in-process durable store
package store

import (
	"context"
	"sync"
)

// MemoryStore map-backed store used in tests and as the degradation
// target when Redis is unreachable at startup. Not durable across
// restarts, but it keeps the cache layer fully functional.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Get fetches the value for key; returns ErrMiss when absent
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	value, ok := ms.data[key]
	if !ok {
		return nil, ErrMiss
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Set stores value at key
func (ms *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data[key] = cp
	return nil
}

// Remove deletes key
func (ms *MemoryStore) Remove(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.data, key)
	return nil
}

// Ping always succeeds for the in-memory store
func (ms *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close drops the stored data
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.data = make(map[string][]byte)
	ms.closed = true
	return nil
}

// Len number of stored keys (test helper)
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.data)
}
