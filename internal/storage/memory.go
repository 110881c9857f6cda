package storage

import (
	"context"
	"sync"

	"financas/internal/core"
)

// MemorySnapshots keeps snapshots for the lifetime of the process. Used
// when no SQLite database is configured.
type MemorySnapshots struct {
	mu    sync.RWMutex
	snaps map[string]Snapshot
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{snaps: make(map[string]Snapshot)}
}

func (m *MemorySnapshots) SaveSnapshot(_ context.Context, owner string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := Snapshot{FetchedAt: snap.FetchedAt, Transactions: append([]core.Transaction(nil), snap.Transactions...)}
	m.snaps[owner] = cp
	return nil
}

func (m *MemorySnapshots) LoadSnapshot(_ context.Context, owner string) (Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snaps[owner]
	return snap, ok, nil
}

func (m *MemorySnapshots) DeleteSnapshot(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, owner)
	return nil
}
