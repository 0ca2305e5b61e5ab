package sheets

import (
	"context"

	"finanzas/internal/core"
)

// Ports for historical record sources.
type (
	// HistoricalReader fetches the immutable historical transaction set from
	// an external tabular source (published CSV, Google Sheet, or an
	// in-memory fixture).
	HistoricalReader interface {
		FetchTransactions(ctx context.Context) ([]core.Transaction, error)
	}
)
