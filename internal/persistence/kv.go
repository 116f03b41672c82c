package persistence

import "context"

// KeyValueStore is the durable storage boundary consumed by the rule store
// and the backup service. Values are opaque serialized documents; the store
// never interprets them.
type KeyValueStore interface {
	// Get returns the value stored under key. The boolean reports whether
	// the key exists; a missing key is not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// All returns every stored key/value pair.
	All(ctx context.Context) (map[string]string, error)
	// ReplaceAll atomically swaps the entire contents of the store for the
	// provided pairs. Used by backup restore.
	ReplaceAll(ctx context.Context, values map[string]string) error
}
