// Package csvsource reads historical transactions from a published CSV
// endpoint, typically a spreadsheet exported with output=csv.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/sheets"
)

type Client struct {
	url        string
	httpClient *http.Client
	logger     *log.Logger
}

var _ sheets.HistoricalReader = (*Client)(nil)

// ErrEmptySource indicates the CSV had no header row.
var ErrEmptySource = errors.New("csv source is empty")

// New creates a CSV client for the given URL.
func New(url string, logger *log.Logger) *Client {
	return &Client{
		url:        url,
		httpClient: newHTTPClientWithPooling(),
		logger:     logger.WithComponent(log.ComponentHistorical),
	}
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling,
// proper timeouts, and keep-alive settings for the CSV endpoint.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableKeepAlives: false,
		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// FetchTransactions downloads and parses the CSV. Malformed rows are dropped
// and logged; a malformed header or transport failure is an error.
func (c *Client) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build csv request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch csv: unexpected status %d", resp.StatusCode)
	}

	reader := csv.NewReader(resp.Body)
	reader.FieldsPerRecord = -1 // sheets pad short rows inconsistently

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, ErrEmptySource
	}

	records, dropped, err := sheets.ParseRows(all[0], all[1:])
	if err != nil {
		return nil, fmt.Errorf("parse csv rows: %w", err)
	}

	c.logger.InfoContext(ctx, "historical csv fetched",
		log.FieldRowsParsed, len(records),
		log.FieldRowsDropped, dropped)

	return records, nil
}
