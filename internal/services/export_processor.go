package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/export"
	"finanzas/internal/log"
	"finanzas/internal/storage"
)

// ExportProcessorConfig holds configuration for the export processor
type ExportProcessorConfig struct {
	// PollInterval is how often to sweep for pending records (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of records cleared per sweep (default: 50)
	BatchSize int
}

// DefaultExportProcessorConfig returns sensible defaults
func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    50,
	}
}

// ExportProcessor regenerates the CSV snapshot whenever transactions change.
// It reacts to AMQP events and also sweeps periodically, which catches
// mutations whose event publish failed.
type ExportProcessor struct {
	storage  *storage.SQLiteRepository
	exporter *export.FileExporter
	config   ExportProcessorConfig
	logger   *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewExportProcessor creates a new export processor
func NewExportProcessor(storage *storage.SQLiteRepository, exporter *export.FileExporter, config ExportProcessorConfig, logger *log.Logger) *ExportProcessor {
	return &ExportProcessor{
		storage:  storage,
		exporter: exporter,
		config:   config,
		logger:   logger.WithComponent(log.ComponentExport),
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		p.logger.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Sweep immediately on startup to flush anything left over from a
	// previous crash.
	if err := p.ProcessPending(ctx); err != nil {
		p.logger.ErrorContext(ctx, "startup export sweep failed", log.FieldError, err)
	}

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ProcessPending(ctx); err != nil {
				p.logger.ErrorContext(ctx, "export sweep failed", log.FieldError, err)
			}
		}
	}
}

// HandleEvent reacts to a transaction change event from AMQP. An error keeps
// the delivery on the queue for redelivery.
func (p *ExportProcessor) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	p.logger.InfoContext(ctx, "processing transaction event",
		log.FieldTransactionID, msg.ID,
		log.FieldOperation, msg.Op)
	return p.ProcessPending(ctx)
}

// ProcessPending regenerates the snapshot if any records await export, then
// clears their pending flags. The snapshot always holds the full record set;
// the flags only tell us whether work is needed.
func (p *ExportProcessor) ProcessPending(ctx context.Context) error {
	pending, err := p.storage.ListExportPending(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("list export pending: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	all, err := p.storage.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load records for export: %w", err)
	}
	if err := p.exporter.Export(all); err != nil {
		return fmt.Errorf("write export snapshot: %w", err)
	}

	ids := make([]string, len(pending))
	for i, tx := range pending {
		ids[i] = tx.ID
	}
	if err := p.storage.ClearExportPending(ctx, ids); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "export snapshot written",
		"records", len(all),
		"cleared", len(ids))
	return nil
}
