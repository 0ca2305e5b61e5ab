package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"finanzas/internal/core"
)

func sampleRecords() []core.Transaction {
	return []core.Transaction{
		{
			ID:          "tx-1",
			Date:        core.NewDate(2026, 1, 15),
			Type:        core.Income,
			Amount:      core.Money{Cents: 300000},
			Status:      core.StatusPaid,
			Description: "Factura 12",
			Category:    "Ventas",
			Project:     "P-001 Web",
		},
		{
			ID:          "tx-2",
			Date:        core.NewDate(2026, 1, 20),
			Type:        core.Expense,
			Amount:      core.Money{Cents: 125050},
			Status:      core.StatusPending,
			Description: "Planilla, enero", // embedded comma must survive quoting
			Category:    "Nómina",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(Headers, ",") {
		t.Errorf("header = %v, want %v", rows[0], Headers)
	}
	if rows[1][0] != "2026-01-15" || rows[1][2] != "3000.00" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][1] != "Planilla, enero" {
		t.Errorf("description with comma mangled: %q", rows[2][1])
	}
	if rows[2][5] != "pending" {
		t.Errorf("status = %q, want pending", rows[2][5])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if len(rows) != 1 {
		t.Errorf("empty export should still carry the header row, got %d rows", len(rows))
	}
}

func TestFileExporter(t *testing.T) {
	exporter, err := NewFileExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileExporter() error = %v", err)
	}

	if err := exporter.Export(sampleRecords()); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	blob, err := os.ReadFile(exporter.Path())
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if !strings.HasPrefix(string(blob), strings.Join(Headers, ",")) {
		t.Errorf("snapshot missing header: %q", string(blob)[:40])
	}

	// A second export replaces the snapshot.
	if err := exporter.Export(nil); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	blob, _ = os.ReadFile(exporter.Path())
	if lines := strings.Count(strings.TrimSpace(string(blob)), "\n"); lines != 0 {
		t.Errorf("replaced snapshot should only hold the header, got %d extra lines", lines)
	}
}
