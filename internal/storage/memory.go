package storage

import (
	"context"
	"sync"
)

// MemoryKV is an in-process slot store used for tests and for running
// without a database, e.g. during demos.
type MemoryKV struct {
	mu    sync.Mutex
	slots map[string]string

	// FailPuts makes every Put report an error. Used by tests to
	// exercise the storage-unavailable path.
	FailPuts error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{slots: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.slots[key]
	return v, ok, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts != nil {
		return m.FailPuts
	}
	m.slots[key] = value
	return nil
}

var _ KV = (*MemoryKV)(nil)
