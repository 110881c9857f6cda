// Package export writes transaction lists to a Google Sheets tab.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"financas/internal/categories"
	"financas/internal/core"
	"financas/internal/log"
)

const DefaultSheetName = "Transações"

// Header is the first row written when a tab is replaced.
var Header = []any{"Data", "Tipo", "Descrição", "Categoria", "Valor", "Status"}

// ValuesWriter is the spreadsheet surface the exporter needs.
type ValuesWriter interface {
	AppendRows(ctx context.Context, rng string, rows [][]any) (updatedRange string, err error)
	ClearRange(ctx context.Context, rng string) error
}

// Options controls one export run.
type Options struct {
	// Replace clears the tab and writes the header before the rows.
	Replace bool
}

// Result summarizes an export run.
type Result struct {
	Rows  int    `json:"rows" yaml:"rows"`
	Range string `json:"range" yaml:"range"`
}

type Exporter struct {
	sheet  ValuesWriter
	tab    string
	logger *log.Logger
}

func NewExporter(w ValuesWriter, tab string, logger *log.Logger) *Exporter {
	if strings.TrimSpace(tab) == "" {
		tab = DefaultSheetName
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Exporter{sheet: w, tab: tab, logger: logger.WithComponent(log.ComponentSheets)}
}

// Export appends one row per transaction, in the given order.
func (e *Exporter) Export(ctx context.Context, txs []core.Transaction, opts Options) (Result, error) {
	if e.sheet == nil {
		return Result{}, errors.New("sheets client not initialized")
	}
	rng := quoteTab(e.tab) + "!A:F"

	rows := Rows(txs)
	if opts.Replace {
		if err := e.sheet.ClearRange(ctx, rng); err != nil {
			return Result{}, err
		}
		rows = append([][]any{Header}, rows...)
	}
	if len(rows) == 0 {
		return Result{}, nil
	}

	updated, err := e.sheet.AppendRows(ctx, rng, rows)
	if err != nil {
		e.logger.ErrorContext(ctx, "Export failed", log.FieldError, err, log.FieldOperation, log.OpExport)
		return Result{}, fmt.Errorf("export transactions: %w", err)
	}

	e.logger.InfoContext(ctx, "Transactions exported",
		log.FieldCount, len(txs), "range", updated, log.FieldOperation, log.OpExport)
	return Result{Rows: len(txs), Range: updated}, nil
}

// Rows renders txs as date, type, description, category, value, status.
// Values are numbers so the sheet can sum them.
func Rows(txs []core.Transaction) [][]any {
	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		date := ""
		if !tx.Date.IsZero() {
			date = core.FormDate(tx.Date.Time)
		}
		rows = append(rows, []any{
			date,
			tx.TypeID.String(),
			tx.Description,
			categories.Resolve(tx).Name,
			tx.Value.InexactFloat64(),
			tx.Status.Label(),
		})
	}
	return rows
}

// quoteTab quotes a tab name for A1 notation.
func quoteTab(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
