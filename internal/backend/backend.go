// Package backend selects and builds the key-value slot store the
// ledger and auth layers persist into.
package backend

import (
	"fmt"
	"log/slog"

	"laplata/internal/config"
	applog "laplata/internal/log"
	"laplata/internal/storage"
)

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles the store with its optional cleanup.
type Result struct {
	KV      storage.KV
	Cleanup CleanupFunc
}

// Open builds the configured slot store.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(applog.FieldComponent, applog.ComponentStorage)

	backendType := BackendType(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite slot store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{KV: kv, Cleanup: kv.Close}, nil
	default:
		logger.Info("Initialized memory backend")
		return &Result{KV: storage.NewMemoryKV()}, nil
	}
}
