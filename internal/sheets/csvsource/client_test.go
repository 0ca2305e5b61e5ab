package csvsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.DefaultConfig())
}

const sampleCSV = `Fecha,Tipo,Categoría,Centro de Costo,Proyecto,Descripción,Monto
15/01/2025,Ingreso,Ventas,Norte,P-001 Web,Factura 12,"3,000.00"
20/01/2025,Egreso,Nómina,,,Planilla enero,1250.50
bad-date,Egreso,,,,roto,100.00
`

func TestFetchTransactions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	client := New(srv.URL, testLogger())
	records, err := client.FetchTransactions(context.Background())
	if err != nil {
		t.Fatalf("FetchTransactions() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (malformed row dropped)", len(records))
	}
	if records[0].Amount.Cents != 300000 {
		t.Errorf("Amount = %d, want 300000", records[0].Amount.Cents)
	}
	if records[0].Source != core.SourceHistorical {
		t.Errorf("Source = %q, want historical", records[0].Source)
	}
	if records[1].Type != core.Expense {
		t.Errorf("Type = %q, want expense", records[1].Type)
	}
}

func TestFetchTransactions_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, testLogger())
	if _, err := client.FetchTransactions(context.Background()); err == nil {
		t.Error("expected error on HTTP 500")
	}
}

func TestFetchTransactions_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := New(srv.URL, testLogger())
	_, err := client.FetchTransactions(context.Background())
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("error = %v, want ErrEmptySource", err)
	}
}

func TestFetchTransactions_MissingRequiredColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Fecha,Categoría\n15/01/2025,Ventas\n"))
	}))
	defer srv.Close()

	client := New(srv.URL, testLogger())
	if _, err := client.FetchTransactions(context.Background()); err == nil {
		t.Error("expected error when required columns are missing")
	}
}
