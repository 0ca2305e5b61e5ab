package localkv

import (
	"errors"
	"path/filepath"
	"testing"

	"finanzas/internal/core"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "kv.json"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return store
}

func TestSetGet(t *testing.T) {
	store := testStore(t)

	snapshot := core.BankAccountSnapshot{
		BankName:    "Banco Norte",
		Balance:     core.Money{Cents: 1250000},
		BalanceDate: core.NewDate(2026, 1, 31),
	}
	if err := store.Set(KeyReconciliationAnchor, snapshot); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got core.BankAccountSnapshot
	if err := store.Get(KeyReconciliationAnchor, &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.BankName != "Banco Norte" || got.Balance.Cents != 1250000 {
		t.Errorf("Get() = %+v, want stored snapshot", got)
	}
}

func TestGet_MissingKey(t *testing.T) {
	store := testStore(t)
	var out string
	if err := store.Get("missing", &out); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestSet_Overwrite(t *testing.T) {
	store := testStore(t)
	store.Set("k", "first")
	store.Set("k", "second")

	var got string
	if err := store.Get("k", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "second" {
		t.Errorf("Get() = %q, want second", got)
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	store.Set("k", 1)

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	var out int
	if err := store.Get("k", &out); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrKeyNotFound", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Errorf("Delete() of missing key error = %v, want nil", err)
	}
}
