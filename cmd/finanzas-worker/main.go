package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	"finanzas/internal/export"
	"finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: log.DefaultConfig().Level, Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting finanzas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	exporter, err := export.NewFileExporter(cfg.ExportDir)
	if err != nil {
		logger.Error("Failed to initialize file exporter", log.FieldError, err, "dir", cfg.ExportDir)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	proc := services.NewExportProcessor(repo, exporter, services.ExportProcessorConfig{
		PollInterval: cfg.ExportInterval,
		BatchSize:    cfg.ExportBatchSize,
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Start sweeps immediately, flushing flags left over from a previous run.
	if err := proc.Start(ctx); err != nil {
		logger.Error("Failed to start export processor", log.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(gctx, func(msg *amqp.TransactionEventMessage) error {
			return proc.HandleEvent(gctx, msg)
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		return gctx.Err()
	})

	logger.Info("Worker running", "queue", cfg.AMQPQueue, "export_dir", cfg.ExportDir, "poll_interval", cfg.ExportInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := proc.Stop(shutdownCtx); err != nil {
		logger.Error("Export processor shutdown error", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete")
}
