// Package persist stores one ledger snapshot per user. Backends load and
// save the encoded snapshot as a unit; a load for a user that never saved
// returns a fresh empty snapshot rather than an error.
package persist

import (
	"context"
	"sync"

	"moneta/internal/ledger"
)

// Store is the persistence boundary the service layer talks to.
type Store interface {
	// Load returns the user's snapshot, or an empty one for unknown users.
	Load(ctx context.Context, userID string) (ledger.Snapshot, error)
	// Save replaces the user's snapshot atomically.
	Save(ctx context.Context, userID string, s ledger.Snapshot) error
	Close() error
}

// MemoryStore keeps snapshots in process memory, for tests and local runs.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, userID string) (ledger.Snapshot, error) {
	m.mu.RLock()
	raw := m.snapshots[userID]
	m.mu.RUnlock()
	return ledger.DecodeSnapshot(raw)
}

func (m *MemoryStore) Save(ctx context.Context, userID string, s ledger.Snapshot) error {
	raw, err := s.Encode()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.snapshots[userID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
