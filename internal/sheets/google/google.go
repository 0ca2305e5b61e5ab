// Package google reads historical transactions straight from a Google Sheet
// through the Sheets API.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"finanzas/internal/config"
	"finanzas/internal/core"
	"finanzas/internal/log"
	"finanzas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ sheets.HistoricalReader = (*Client)(nil)

// New creates a Sheets client from configuration. Credentials come either
// inline (GoogleOAuthClientJSON) or from a file path.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheetName := cfg.GoogleSheetName
	if sheetName == "" {
		sheetName = "Historico"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentHistorical),
	}, nil
}

func loadCredentials(cfg *config.Config) ([]byte, error) {
	switch {
	case cfg.GoogleOAuthClientJSON != "":
		return []byte(cfg.GoogleOAuthClientJSON), nil
	case cfg.GoogleOAuthClientFile != "":
		data, err := os.ReadFile(cfg.GoogleOAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing Google credentials (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
}

// FetchTransactions reads the whole sheet and parses it with the shared row
// parser. The first row must carry the column headers.
func (c *Client) FetchTransactions(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:J", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", c.sheetName, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", c.sheetName)
	}

	headers := toStringRow(resp.Values[0])
	rows := make([][]string, 0, len(resp.Values)-1)
	for _, raw := range resp.Values[1:] {
		rows = append(rows, toStringRow(raw))
	}

	records, dropped, err := sheets.ParseRows(headers, rows)
	if err != nil {
		return nil, fmt.Errorf("parse sheet rows: %w", err)
	}

	c.logger.InfoContext(ctx, "historical sheet fetched",
		log.FieldRowsParsed, len(records),
		log.FieldRowsDropped, dropped)

	return records, nil
}

func toStringRow(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
