package ports

import (
	"context"
)

// KeyValueStore is the browser-local style key-value store that holds the
// serialized todo list under a namespaced key.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists the stored keys.
	Keys(ctx context.Context) ([]string, error)
}
