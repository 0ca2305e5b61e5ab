// Package storage persists live transactions in SQLite. Historical records
// never enter this store; they come from the sheets adapters.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finanzas/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound    = errors.New("transaction not found")
	ErrOverpayment = errors.New("payment exceeds remaining balance")
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, date, type, amount_cents, status, paid_amount_cents,
	description, category, project, cost_center, is_recurring,
	recurring_frequency, recurring_end_date, has_unread_updates`

// ListAll returns every live transaction with its notes, newest date first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Transaction, error) {
	query := fmt.Sprintf("SELECT %s FROM transactions ORDER BY date DESC, id", transactionColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var records []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	for i := range records {
		notes, err := r.listNotes(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Notes = notes
	}
	return records, nil
}

// Get returns a single transaction with its notes.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	query := fmt.Sprintf("SELECT %s FROM transactions WHERE id = ?", transactionColumns)
	row := r.db.QueryRowContext(ctx, query, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	notes, err := r.listNotes(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Notes = notes
	return tx, nil
}

// Create validates and inserts a new transaction, seeding a system note.
func (r *SQLiteRepository) Create(ctx context.Context, tx core.Transaction, author string) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	// Cost centers are an expense-only attribute.
	if tx.Type == core.Expense && tx.CostCenter == "" {
		tx.CostCenter = core.CostCenterUnassigned
	}
	tx.Source = core.SourceLive
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, date, type, amount_cents, status, paid_amount_cents,
			description, category, project, cost_center, is_recurring,
			recurring_frequency, recurring_end_date, has_unread_updates,
			export_pending, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?, ?)`,
		tx.ID, tx.Date.ISO(), string(tx.Type), tx.Amount.Cents, string(tx.Status),
		tx.PaidAmount.Cents, tx.Description, tx.Category, tx.Project, tx.CostCenter,
		boolToInt(tx.IsRecurring), tx.RecurringFrequency, tx.RecurringEndDate.ISO(),
		now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := r.insertNote(ctx, tx.ID, core.Note{
		Text:      "Registro creado",
		Author:    author,
		Timestamp: time.Now().UTC(),
		Kind:      core.NoteSystem,
	}); err != nil {
		return core.Transaction{}, err
	}

	return r.Get(ctx, tx.ID)
}

// UpdateFields carries the mutable transaction fields. Nil pointers leave the
// stored value untouched.
type UpdateFields struct {
	Date        *core.Date
	Amount      *core.Money
	Description *string
	Category    *string
	Project     *string
	CostCenter  *string
}

// Update applies a partial update, marks the record for export, and flags it
// as having unread changes.
func (r *SQLiteRepository) Update(ctx context.Context, id string, fields UpdateFields, author string) (core.Transaction, error) {
	set := []string{"updated_at = ?", "export_pending = 1", "has_unread_updates = 1"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if fields.Date != nil {
		if err := fields.Date.Validate(); err != nil {
			return core.Transaction{}, err
		}
		set = append(set, "date = ?")
		args = append(args, fields.Date.ISO())
	}
	if fields.Amount != nil {
		if err := fields.Amount.Validate(); err != nil {
			return core.Transaction{}, err
		}
		set = append(set, "amount_cents = ?")
		args = append(args, fields.Amount.Cents)
	}
	if fields.Description != nil {
		if strings.TrimSpace(*fields.Description) == "" {
			return core.Transaction{}, core.ErrEmptyDescription
		}
		set = append(set, "description = ?")
		args = append(args, *fields.Description)
	}
	if fields.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *fields.Category)
	}
	if fields.Project != nil {
		set = append(set, "project = ?")
		args = append(args, *fields.Project)
	}
	if fields.CostCenter != nil {
		cc := *fields.CostCenter
		if cc == "" {
			cc = core.CostCenterUnassigned
		}
		set = append(set, "cost_center = ?")
		args = append(args, cc)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE transactions SET %s WHERE id = ?", strings.Join(set, ", "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, ErrNotFound
	}

	if err := r.insertNote(ctx, id, core.Note{
		Text:      "Registro actualizado",
		Author:    author,
		Timestamp: time.Now().UTC(),
		Kind:      core.NoteSystem,
	}); err != nil {
		return core.Transaction{}, err
	}

	return r.Get(ctx, id)
}

// ToggleStatus flips paid to pending and pending or partial to paid. Marking
// paid clears the partial balance.
func (r *SQLiteRepository) ToggleStatus(ctx context.Context, id, author string) (core.Transaction, error) {
	tx, err := r.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}

	newStatus := core.StatusPaid
	if tx.Status == core.StatusPaid {
		newStatus = core.StatusPending
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, paid_amount_cents = 0, export_pending = 1, has_unread_updates = 1, updated_at = ?
		WHERE id = ?`,
		string(newStatus), now, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("toggle status %s: %w", id, err)
	}

	noteText := "Marcado como pagado"
	if newStatus == core.StatusPending {
		noteText = "Marcado como pendiente"
	}
	if err := r.insertNote(ctx, id, core.Note{
		Text:      noteText,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Kind:      core.NoteSystem,
	}); err != nil {
		return core.Transaction{}, err
	}

	return r.Get(ctx, id)
}

// RegisterPartialPayment records a payment against a pending or partial
// transaction. The record moves to partial, and to paid once the balance
// reaches zero.
func (r *SQLiteRepository) RegisterPartialPayment(ctx context.Context, id string, payment core.Money, author string) (core.Transaction, error) {
	if err := payment.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.Get(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Status == core.StatusPaid {
		return core.Transaction{}, core.ErrInvalidStatus
	}
	if payment.Cents > tx.Remaining().Cents {
		return core.Transaction{}, ErrOverpayment
	}

	newPaid := tx.PaidAmount.Cents + payment.Cents
	newStatus := core.StatusPartial
	if newPaid >= tx.Amount.Cents {
		newStatus = core.StatusPaid
		newPaid = 0
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, paid_amount_cents = ?, export_pending = 1, has_unread_updates = 1, updated_at = ?
		WHERE id = ?`,
		string(newStatus), newPaid, now, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("register payment %s: %w", id, err)
	}

	noteText := fmt.Sprintf("Abono registrado: %.2f", payment.Euros())
	if newStatus == core.StatusPaid {
		noteText = fmt.Sprintf("Abono registrado: %.2f (saldado)", payment.Euros())
	}
	if err := r.insertNote(ctx, id, core.Note{
		Text:      noteText,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Kind:      core.NoteSystem,
	}); err != nil {
		return core.Transaction{}, err
	}

	return r.Get(ctx, id)
}

// Delete removes a transaction and, through the cascade, its notes.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddNote appends a comment and flags the record as having unread updates.
func (r *SQLiteRepository) AddNote(ctx context.Context, id string, note core.Note) (core.Transaction, error) {
	if strings.TrimSpace(note.Text) == "" {
		return core.Transaction{}, errors.New("note text cannot be empty")
	}
	if _, err := r.Get(ctx, id); err != nil {
		return core.Transaction{}, err
	}
	if note.Kind == "" {
		note.Kind = core.NoteComment
	}
	if note.Timestamp.IsZero() {
		note.Timestamp = time.Now().UTC()
	}
	if err := r.insertNote(ctx, id, note); err != nil {
		return core.Transaction{}, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET has_unread_updates = 1, updated_at = ? WHERE id = ?", now, id); err != nil {
		return core.Transaction{}, fmt.Errorf("flag unread %s: %w", id, err)
	}
	return r.Get(ctx, id)
}

// MarkRead clears the unread-updates flag.
func (r *SQLiteRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET has_unread_updates = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExportPending returns up to limit transactions awaiting export.
func (r *SQLiteRepository) ListExportPending(ctx context.Context, limit int) ([]core.Transaction, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM transactions WHERE export_pending = 1 ORDER BY updated_at LIMIT ?",
		transactionColumns)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list export pending: %w", err)
	}
	defer rows.Close()

	var records []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		records = append(records, tx)
	}
	return records, rows.Err()
}

// ClearExportPending marks the given transactions as exported.
func (r *SQLiteRepository) ClearExportPending(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("UPDATE transactions SET export_pending = 0 WHERE id IN (%s)", placeholders)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear export pending: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) listNotes(ctx context.Context, transactionID string) ([]core.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT text, author, kind, created_at
		FROM notes WHERE transaction_id = ? ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list notes for %s: %w", transactionID, err)
	}
	defer rows.Close()

	var notes []core.Note
	for rows.Next() {
		var n core.Note
		var kind, createdAt string
		if err := rows.Scan(&n.Text, &n.Author, &kind, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.Kind = core.NoteKind(kind)
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			n.Timestamp = ts
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *SQLiteRepository) insertNote(ctx context.Context, transactionID string, note core.Note) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (transaction_id, text, author, kind, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		transactionID, note.Text, note.Author, string(note.Kind),
		note.Timestamp.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert note for %s: %w", transactionID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var tx core.Transaction
	var date, txType, status, recurringEnd string
	var isRecurring, hasUnread int
	err := row.Scan(&tx.ID, &date, &txType, &tx.Amount.Cents, &status,
		&tx.PaidAmount.Cents, &tx.Description, &tx.Category, &tx.Project,
		&tx.CostCenter, &isRecurring, &tx.RecurringFrequency, &recurringEnd,
		&hasUnread)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(txType)
	tx.Status = core.Status(status)
	tx.Source = core.SourceLive
	tx.IsRecurring = isRecurring != 0
	tx.HasUnreadUpdates = hasUnread != 0
	if t, err := time.Parse("2006-01-02", date); err == nil {
		tx.Date = core.DateOf(t)
	}
	if recurringEnd != "" {
		if t, err := time.Parse("2006-01-02", recurringEnd); err == nil {
			tx.RecurringEndDate = core.DateOf(t)
		}
	}
	return tx, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
