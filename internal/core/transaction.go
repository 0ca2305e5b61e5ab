package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusPartial Status = "partial"

	SourceLive       Source = "live"
	SourceHistorical Source = "historical"

	NoteComment NoteKind = "comment"
	NoteSystem  NoteKind = "system"

	// CostCenterUnassigned is the sentinel for expenses without a cost center.
	CostCenterUnassigned = "Sin asignar"
)

type (
	TransactionType string
	Status          string
	Source          string
	NoteKind        string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Note is one entry of a transaction's append-only audit/comment log.
	// Consumers must never rewrite or reorder existing notes, only append.
	Note struct {
		Text      string    `json:"text"`
		Author    string    `json:"author"`
		Timestamp time.Time `json:"timestamp"`
		Kind      NoteKind  `json:"kind"`
	}

	// Transaction is the canonical record every aggregation consumes,
	// regardless of whether it came from the live store or the historical
	// spreadsheet.
	Transaction struct {
		ID          string          `json:"id"`
		Date        Date            `json:"date"`
		Type        TransactionType `json:"type"`
		Amount      Money           `json:"amount"`
		Status      Status          `json:"status"`
		PaidAmount  Money           `json:"paidAmount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Project     string          `json:"project"`
		CostCenter  string          `json:"costCenter"`
		Notes       []Note          `json:"notes,omitempty"`

		IsRecurring        bool   `json:"isRecurring,omitempty"`
		RecurringFrequency string `json:"recurringFrequency,omitempty"`
		RecurringEndDate   Date   `json:"recurringEndDate,omitempty"`

		Source           Source `json:"source"`
		HasUnreadUpdates bool   `json:"hasUnreadUpdates"`
	}

	// BankAccountSnapshot is a manually entered balance used only as a
	// reconciliation anchor. It is not a ledger.
	BankAccountSnapshot struct {
		BankName        string `json:"bankName"`
		Balance         Money  `json:"balance"`
		BalanceDate     Date   `json:"balanceDate"`
		CreditLineLimit Money  `json:"creditLineLimit"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidPaidAmount = errors.New("invalid paid amount")
	ErrEmptyDescription  = errors.New("empty description")
)

// NewDate creates a Date from year, month, day at UTC midnight.
// Comparisons are by calendar day; there is no time-of-day semantics.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Month returns the calendar month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// ISO returns the canonical YYYY-MM-DD form, or "" for a zero date.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MonthKey returns the YYYY-MM bucket key, or "" for a zero date.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusPending || s == StatusPartial
}

// Remaining returns the outstanding balance: the full amount for pending
// records, amount minus paidAmount for partial ones, zero once paid.
func (t Transaction) Remaining() Money {
	switch t.Status {
	case StatusPending:
		return t.Amount
	case StatusPartial:
		return Money{Cents: t.Amount.Cents - t.PaidAmount.Cents}
	default:
		return Money{}
	}
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	// PaidAmount is defined only for partial records and must leave a
	// positive remaining balance.
	switch t.Status {
	case StatusPartial:
		if t.PaidAmount.Cents <= 0 || t.PaidAmount.Cents >= t.Amount.Cents {
			return ErrInvalidPaidAmount
		}
	default:
		if t.PaidAmount.Cents != 0 {
			return ErrInvalidPaidAmount
		}
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

// ProjectGroupKey returns the grouping key for a project label: the first
// whitespace-delimited token. Labels follow the convention
// "<CODE> (<Name>) | <Client>" and only the leading code is significant for
// grouping. Centralized here so every aggregation truncates the same way.
func ProjectGroupKey(project string) string {
	project = strings.TrimSpace(project)
	if project == "" {
		return ""
	}
	if i := strings.IndexFunc(project, func(r rune) bool { return r == ' ' || r == '\t' }); i >= 0 {
		return project[:i]
	}
	return project
}
