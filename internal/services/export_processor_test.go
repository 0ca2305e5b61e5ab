package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/export"
	"finanzas/internal/log"
	"finanzas/internal/storage"
)

func testExportProcessor(t *testing.T) (*ExportProcessor, *storage.SQLiteRepository, *export.FileExporter) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	exporter, err := export.NewFileExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileExporter() error = %v", err)
	}

	proc := NewExportProcessor(repo, exporter, DefaultExportProcessorConfig(), log.New(log.DefaultConfig()))
	return proc, repo, exporter
}

func TestProcessPending(t *testing.T) {
	proc, repo, exporter := testExportProcessor(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, core.Transaction{
		Date:        core.NewDate(2026, 1, 15),
		Type:        core.Expense,
		Amount:      core.Money{Cents: 100000},
		Status:      core.StatusPending,
		Description: "factura proveedor",
	}, "ana")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := proc.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}

	blob, err := os.ReadFile(exporter.Path())
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if !strings.Contains(string(blob), "factura proveedor") {
		t.Errorf("snapshot missing record: %q", string(blob))
	}

	pending, _ := repo.ListExportPending(ctx, 10)
	if len(pending) != 0 {
		t.Errorf("pending flags not cleared: %d left", len(pending))
	}
}

func TestProcessPending_NothingToDo(t *testing.T) {
	proc, _, exporter := testExportProcessor(t)

	if err := proc.ProcessPending(context.Background()); err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if _, err := os.Stat(exporter.Path()); !os.IsNotExist(err) {
		t.Error("no snapshot should be written when nothing is pending")
	}
}

func TestHandleEvent(t *testing.T) {
	proc, repo, exporter := testExportProcessor(t)
	ctx := context.Background()

	if _, err := repo.Create(ctx, core.Transaction{
		Date:        core.NewDate(2026, 1, 15),
		Type:        core.Income,
		Amount:      core.Money{Cents: 5000},
		Status:      core.StatusPaid,
		Description: "venta mostrador",
	}, "ana"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	msg := amqp.NewTransactionEventMessage("ignored", "create")
	if err := proc.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if _, err := os.Stat(exporter.Path()); err != nil {
		t.Errorf("snapshot not written after event: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	proc, _, _ := testExportProcessor(t)
	ctx := context.Background()

	if err := proc.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !proc.IsRunning() {
		t.Error("IsRunning() should be true after Start")
	}
	if err := proc.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := proc.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if proc.IsRunning() {
		t.Error("IsRunning() should be false after Stop")
	}
}
