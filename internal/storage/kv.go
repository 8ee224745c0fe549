// Package storage provides the persistent key-value slot store backing
// the per-user financial document and the auth records.
package storage

import "context"

// KV is the port for a persistent string slot store. Implementations
// must treat Put as a full overwrite of the slot.
type KV interface {
	// Get returns the stored value for key. The boolean reports whether
	// the slot exists; a missing slot is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put overwrites the slot for key with value.
	Put(ctx context.Context, key string, value string) error
}
