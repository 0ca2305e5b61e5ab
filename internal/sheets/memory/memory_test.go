package memory

import (
	"context"
	"errors"
	"testing"

	"finanzas/internal/core"
)

func TestFetchTransactions_ReturnsCopy(t *testing.T) {
	store := New([]core.Transaction{{ID: "hist-1", Description: "uno"}})

	records, err := store.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("FetchTransactions() error = %v", err)
	}
	records[0].Description = "mutated"

	again, _ := store.FetchTransactions(context.Background())
	if again[0].Description != "uno" {
		t.Error("store contents should not be mutable through returned slice")
	}
}

func TestFailWith(t *testing.T) {
	store := New(nil)
	sentinel := errors.New("source unavailable")
	store.FailWith(sentinel)

	if _, err := store.FetchTransactions(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("FetchTransactions() error = %v, want sentinel", err)
	}
}
