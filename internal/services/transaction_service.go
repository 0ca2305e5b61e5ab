package services

import (
	"context"
	"fmt"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/storage"
)

// TransactionService orchestrates transaction mutations across SQLite, the
// in-memory snapshot, and AMQP.
type TransactionService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	hub        *SnapshotHub
	logger     *log.Logger
}

func NewTransactionService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, hub *SnapshotHub, logger *log.Logger) *TransactionService {
	return &TransactionService{
		storage:    storage,
		amqpClient: amqpClient,
		hub:        hub,
		logger:     logger.WithComponent(log.ComponentApp),
	}
}

// List returns all live transactions from the snapshot.
func (s *TransactionService) List(ctx context.Context) []core.Transaction {
	return s.hub.Records()
}

// Get returns a single transaction.
func (s *TransactionService) Get(ctx context.Context, id string) (core.Transaction, error) {
	return s.storage.Get(ctx, id)
}

// Create saves a transaction and publishes a change event.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction, author string) (core.Transaction, error) {
	created, err := s.storage.Create(ctx, tx, author)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.afterMutation(ctx, created.ID, log.OpCreate)
	return created, nil
}

// Update applies a partial update and publishes a change event.
func (s *TransactionService) Update(ctx context.Context, id string, fields storage.UpdateFields, author string) (core.Transaction, error) {
	updated, err := s.storage.Update(ctx, id, fields, author)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterMutation(ctx, id, log.OpUpdate)
	return updated, nil
}

// Delete removes a transaction and publishes a change event.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, id, log.OpDelete)
	return nil
}

// ToggleStatus flips the paid state and publishes a change event.
func (s *TransactionService) ToggleStatus(ctx context.Context, id, author string) (core.Transaction, error) {
	toggled, err := s.storage.ToggleStatus(ctx, id, author)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterMutation(ctx, id, log.OpToggle)
	return toggled, nil
}

// RegisterPayment records a partial payment and publishes a change event.
func (s *TransactionService) RegisterPayment(ctx context.Context, id string, payment core.Money, author string) (core.Transaction, error) {
	after, err := s.storage.RegisterPartialPayment(ctx, id, payment, author)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterMutation(ctx, id, log.OpPayment)
	return after, nil
}

// AddNote appends a comment and publishes a change event.
func (s *TransactionService) AddNote(ctx context.Context, id string, note core.Note) (core.Transaction, error) {
	after, err := s.storage.AddNote(ctx, id, note)
	if err != nil {
		return core.Transaction{}, err
	}
	s.afterMutation(ctx, id, log.OpNote)
	return after, nil
}

// MarkRead clears the unread flag. No event: nothing changed for consumers.
func (s *TransactionService) MarkRead(ctx context.Context, id string) error {
	if err := s.storage.MarkRead(ctx, id); err != nil {
		return err
	}
	s.refreshSnapshot(ctx)
	return nil
}

// RefreshSnapshot reloads the hub from storage. Called at startup and after
// every mutation.
func (s *TransactionService) RefreshSnapshot(ctx context.Context) error {
	records, err := s.storage.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	s.hub.SetRecords(records)
	return nil
}

func (s *TransactionService) afterMutation(ctx context.Context, id, op string) {
	s.refreshSnapshot(ctx)
	s.publishEvent(ctx, id, op)
}

func (s *TransactionService) refreshSnapshot(ctx context.Context) {
	if err := s.RefreshSnapshot(ctx); err != nil {
		s.logger.ErrorContext(ctx, "snapshot refresh failed", log.FieldError, err)
	}
}

func (s *TransactionService) publishEvent(ctx context.Context, id, op string) {
	if s.amqpClient == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping event",
			log.FieldTransactionID, id,
			log.FieldOperation, op)
		return
	}
	if err := s.amqpClient.PublishTransactionEvent(ctx, id, op); err != nil {
		// The mutation is already durable in SQLite; the worker catches up
		// through its periodic sweep.
		s.logger.ErrorContext(ctx, "failed to publish transaction event",
			log.FieldTransactionID, id,
			log.FieldOperation, op,
			log.FieldError, err)
	}
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
