// Package memory holds a fixed historical record set, used in tests and when
// no external source is configured.
package memory

import (
	"context"
	"sync"

	"finanzas/internal/core"
	"finanzas/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	records []core.Transaction
	err     error
}

var _ sheets.HistoricalReader = (*Store)(nil)

func New(records []core.Transaction) *Store {
	return &Store{records: records}
}

// FetchTransactions returns a copy of the stored records.
func (s *Store) FetchTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]core.Transaction, len(s.records))
	copy(out, s.records)
	return out, nil
}

// SetRecords replaces the stored record set.
func (s *Store) SetRecords(records []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

// FailWith makes subsequent fetches return err. Used to exercise degraded
// historical behavior in tests.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
