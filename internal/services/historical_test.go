package services

import (
	"context"
	"errors"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/log"
)

type countingReader struct {
	records []core.Transaction
	err     error
	calls   int
}

func (r *countingReader) FetchTransactions(_ context.Context) ([]core.Transaction, error) {
	r.calls++
	return r.records, r.err
}

func TestHistoricalCache_FetchesOnce(t *testing.T) {
	reader := &countingReader{records: []core.Transaction{{ID: "hist-1"}}}
	cache := NewHistoricalCache(reader, log.New(log.DefaultConfig()))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		records, degraded := cache.Records(ctx)
		if degraded {
			t.Fatal("should not be degraded")
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
	}
	if reader.calls != 1 {
		t.Errorf("source fetched %d times, want 1", reader.calls)
	}
}

func TestHistoricalCache_CachesFailure(t *testing.T) {
	reader := &countingReader{err: errors.New("source down")}
	cache := NewHistoricalCache(reader, log.New(log.DefaultConfig()))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		records, degraded := cache.Records(ctx)
		if !degraded {
			t.Fatal("should be degraded after fetch failure")
		}
		if records != nil {
			t.Fatalf("degraded fetch should return no records, got %d", len(records))
		}
	}
	// Failure is cached too: no retry storm against a dead source.
	if reader.calls != 1 {
		t.Errorf("source fetched %d times, want 1", reader.calls)
	}
	if !cache.Degraded() {
		t.Error("Degraded() should report true")
	}
}

func TestHistoricalCache_DegradedBeforeFetch(t *testing.T) {
	cache := NewHistoricalCache(&countingReader{}, log.New(log.DefaultConfig()))
	if cache.Degraded() {
		t.Error("Degraded() should be false before the first fetch")
	}
}
