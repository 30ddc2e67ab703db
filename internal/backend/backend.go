// Package backend selects and constructs the persistence store from
// configuration.
package backend

import (
	"fmt"

	"moneta/internal/log"
	"moneta/internal/persist"
)

// Type names a persistence backend.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// Config holds what each backend needs to start.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
}

// Open constructs the store named by the config. The caller owns Close.
func Open(cfg Config, logger *log.Logger) (persist.Store, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentBackend)
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.Type)
	}

	switch cfg.Type {
	case SQLite:
		store, err := persist.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return store, nil
	case Memory:
		logger.Info("Initialized memory backend")
		return persist.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
