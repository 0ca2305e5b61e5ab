package sheets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"finanzas/internal/core"
)

// Logical column names for historical tabular sources. Header matching is
// case- and accent-insensitive so "Categoría" and "categoria" resolve to the
// same column.
const (
	ColFecha       = "fecha"
	ColTipo        = "tipo"
	ColCategoria   = "categoria"
	ColCentroCosto = "centro de costo"
	ColProyecto    = "proyecto"
	ColDescripcion = "descripcion"
	ColMonto       = "monto"
	ColMetodoPago  = "metodo de pago"
	ColReferencia  = "referencia"
	ColUsuario     = "usuario"
)

// ErrMissingColumn indicates a required header is absent from the source.
var ErrMissingColumn = errors.New("missing required column")

var headerAliases = map[string]string{
	"fecha":           ColFecha,
	"date":            ColFecha,
	"tipo":            ColTipo,
	"type":            ColTipo,
	"categoria":       ColCategoria,
	"category":        ColCategoria,
	"centro de costo": ColCentroCosto,
	"centro de costos": ColCentroCosto,
	"cost center":     ColCentroCosto,
	"proyecto":        ColProyecto,
	"project":         ColProyecto,
	"descripcion":     ColDescripcion,
	"description":     ColDescripcion,
	"concepto":        ColDescripcion,
	"monto":           ColMonto,
	"importe":         ColMonto,
	"amount":          ColMonto,
	"metodo de pago":  ColMetodoPago,
	"forma de pago":   ColMetodoPago,
	"referencia":      ColReferencia,
	"usuario":         ColUsuario,
}

var accentReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
)

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	return accentReplacer.Replace(h)
}

// ResolveColumns maps logical column names to indexes in the header row.
// It fails when fecha, tipo, or monto cannot be resolved; the rest are
// optional and simply absent from the returned map.
func ResolveColumns(headers []string) (map[string]int, error) {
	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		if logical, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, exists := cols[logical]; !exists {
				cols[logical] = i
			}
		}
	}
	for _, required := range []string{ColFecha, ColTipo, ColMonto} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	return cols, nil
}

// ParseRows converts data rows into historical transactions. Rows that fail
// to parse are dropped rather than aborting the whole fetch; the count of
// dropped rows is returned for logging.
func ParseRows(headers []string, rows [][]string) ([]core.Transaction, int, error) {
	cols, err := ResolveColumns(headers)
	if err != nil {
		return nil, 0, err
	}

	records := make([]core.Transaction, 0, len(rows))
	dropped := 0
	for i, row := range rows {
		tx, ok := parseRow(cols, row, i+1)
		if !ok {
			dropped++
			continue
		}
		records = append(records, tx)
	}
	return records, dropped, nil
}

func parseRow(cols map[string]int, row []string, rowNum int) (core.Transaction, bool) {
	cell := func(logical string) string {
		idx, ok := cols[logical]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, err := ParseDate(cell(ColFecha))
	if err != nil {
		return core.Transaction{}, false
	}

	cents, err := core.ParseLocaleAmount(cell(ColMonto))
	if err != nil {
		return core.Transaction{}, false
	}

	// A missing type drops the row; only a present-but-unrecognized keyword
	// falls back to expense.
	typeCell := cell(ColTipo)
	if typeCell == "" {
		return core.Transaction{}, false
	}
	txType := core.Expense
	if strings.EqualFold(typeCell, "ingreso") {
		txType = core.Income
	}

	// Cost centers are an expense-only attribute.
	costCenter := ""
	if txType == core.Expense {
		costCenter = cell(ColCentroCosto)
		if costCenter == "" {
			costCenter = core.CostCenterUnassigned
		}
	}

	description := cell(ColDescripcion)
	if description == "" {
		description = "Registro histórico"
	}

	return core.Transaction{
		ID:          fmt.Sprintf("hist-%d", rowNum),
		Date:        date,
		Type:        txType,
		Amount:      core.Money{Cents: cents},
		Status:      core.StatusPaid,
		Description: description,
		Category:    cell(ColCategoria),
		Project:     cell(ColProyecto),
		CostCenter:  costCenter,
		Source:      core.SourceHistorical,
	}, true
}

// ParseDate accepts DD/MM/YYYY (the spreadsheet's display format) or ISO
// YYYY-MM-DD.
func ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, core.ErrInvalidDate
	}
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}
