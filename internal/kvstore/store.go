// ABOUTME: Key-value persistence boundary for components that survive restarts.
// ABOUTME: Defines the Store interface and its sentinel errors.

package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested key does not exist.
var ErrNotFound = errors.New("key not found")

// Store is a minimal string key-value boundary. Callers must treat a missing
// key as a normal condition, and must not assume stored payloads are
// well-formed on read.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any existing value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying resources.
	Close() error
}
