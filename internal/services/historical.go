package services

import (
	"context"
	"sync"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/sheets"
)

// HistoricalCache fetches the historical record set once per process. The
// outcome is cached either way: when the source is down the dashboard keeps
// serving live data and reports itself degraded instead of retrying on every
// request.
type HistoricalCache struct {
	reader sheets.HistoricalReader
	logger *log.Logger

	mu      sync.Mutex
	fetched bool
	records []core.Transaction
	err     error
}

func NewHistoricalCache(reader sheets.HistoricalReader, logger *log.Logger) *HistoricalCache {
	return &HistoricalCache{
		reader: reader,
		logger: logger.WithComponent(log.ComponentHistorical),
	}
}

// Records returns the cached historical set and whether the source failed.
// The first call performs the fetch.
func (c *HistoricalCache) Records(ctx context.Context) ([]core.Transaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetched {
		c.records, c.err = c.reader.FetchTransactions(ctx)
		c.fetched = true
		if c.err != nil {
			c.logger.ErrorContext(ctx, "historical fetch failed, continuing degraded",
				log.FieldError, c.err)
		}
	}

	if c.err != nil {
		return nil, true
	}
	out := make([]core.Transaction, len(c.records))
	copy(out, c.records)
	return out, false
}

// Degraded reports whether the last fetch failed without triggering one.
func (c *HistoricalCache) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetched && c.err != nil
}
