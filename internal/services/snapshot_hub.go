package services

import (
	"sync"

	"finanzas/internal/core"
)

// SnapshotHub holds the current live transaction set in memory. Writers
// replace the whole set after every mutation; readers get a consistent copy
// plus a version number that invalidates memoized aggregates.
type SnapshotHub struct {
	mu      sync.RWMutex
	records []core.Transaction
	version uint64
}

func NewSnapshotHub() *SnapshotHub {
	return &SnapshotHub{}
}

// SetRecords replaces the snapshot and bumps the version.
func (h *SnapshotHub) SetRecords(records []core.Transaction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = make([]core.Transaction, len(records))
	copy(h.records, records)
	h.version++
}

// Records returns a copy of the current snapshot.
func (h *SnapshotHub) Records() []core.Transaction {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]core.Transaction, len(h.records))
	copy(out, h.records)
	return out
}

// Version returns the snapshot version. It changes on every SetRecords.
func (h *SnapshotHub) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}
