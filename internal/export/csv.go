// Package export renders transactions as CSV for spreadsheet consumers. The
// header set is fixed: downstream sheets reference columns by name.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"finanzas/internal/core"
)

// Headers is the stable CSV column order.
var Headers = []string{"date", "description", "amount", "category", "project", "status"}

// WriteCSV renders the records to w, header row first.
func WriteCSV(w io.Writer, records []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range records {
		row := []string{
			tx.Date.ISO(),
			tx.Description,
			fmt.Sprintf("%.2f", tx.Amount.Euros()),
			tx.Category,
			tx.Project,
			string(tx.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileExporter writes CSV snapshots into a directory.
type FileExporter struct {
	dir string
}

func NewFileExporter(dir string) (*FileExporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FileExporter{dir: dir}, nil
}

// Path returns the location of the exported snapshot.
func (e *FileExporter) Path() string {
	return filepath.Join(e.dir, "transactions.csv")
}

// Export writes the full record set, replacing the previous snapshot
// atomically.
func (e *FileExporter) Export(records []core.Transaction) error {
	tmp := e.Path() + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp, e.Path()); err != nil {
		return fmt.Errorf("replace export file: %w", err)
	}
	return nil
}
