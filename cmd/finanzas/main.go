package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finanzas/internal/amqp"
	"finanzas/internal/config"
	apphttp "finanzas/internal/http"
	"finanzas/internal/localkv"
	"finanzas/internal/log"
	"finanzas/internal/services"
	ports "finanzas/internal/sheets"
	"finanzas/internal/sheets/csvsource"
	gsheet "finanzas/internal/sheets/google"
	mem "finanzas/internal/sheets/memory"
	"finanzas/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	// AMQP is optional for the API process: without it mutations are still
	// served and the worker catches up through its periodic sweep.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	hub := services.NewSnapshotHub()
	txService := services.NewTransactionService(repo, amqpClient, hub, logger)
	defer txService.Close()

	if err := txService.RefreshSnapshot(context.Background()); err != nil {
		logger.Error("Failed to load initial snapshot", log.FieldError, err)
		os.Exit(1)
	}

	var historical ports.HistoricalReader
	switch cfg.HistoricalBackend {
	case "sheets":
		historical, err = gsheet.New(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Initialized Google Sheets historical backend", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "csv":
		historical = csvsource.New(cfg.HistoricalCSVURL, logger)
		logger.Info("Initialized CSV historical backend", "url", cfg.HistoricalCSVURL)
	default:
		historical = mem.New(nil)
		logger.Info("Initialized empty memory historical backend")
	}

	kv, err := localkv.New(cfg.LocalKVPath)
	if err != nil {
		logger.Error("Failed to initialize local KV store", log.FieldError, err, "path", cfg.LocalKVPath)
		os.Exit(1)
	}

	dashboard := services.NewDashboardService(hub, services.NewHistoricalCache(historical, logger), kv, logger)

	srv := apphttp.NewServer(":"+cfg.Port, txService, dashboard, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting finanzas server", "port", cfg.Port, "historical_backend", cfg.HistoricalBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
