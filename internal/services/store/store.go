// internal/services/store/store.go - durable key-value store contract
package store

import (
	"context"
	"errors"
)

// ErrMiss signals that a key does not exist in the store.
// Callers use it to tell a cache miss apart from a transport error.
var ErrMiss = errors.New("store: miss")

// DurableStore persistent key-value storage backing the caches across
// restarts. The cache layer owns every key it writes; no other component
// touches them. Implementations must be concurrency-safe.
type DurableStore interface {
	// Get fetches the value for key; returns ErrMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value at key
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
