// =============================================================================
// Order Invoicer - Batch Summary Report
// =============================================================================
//
// Writes the outcome of a generation pass as an Excel workbook so the shop
// can reconcile invoices against payments.
//
// WORKBOOK LAYOUT:
//   Sheet "Invoices": one row per processed order, in row order
//     | No | Order ID | Nama | Qty | Total | Dibayar | Sisa | Status | File | Error |
//   Sheet "Summary": totals for the pass
//
// Amounts are written as numbers so spreadsheet formulas keep working.
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-invoicer/internal/converter"
)

const (
	SheetInvoices = "Invoices"
	SheetSummary  = "Summary"
)

// Columns are the headings of the Invoices sheet.
var Columns = []string{"No", "Order ID", "Nama", "Qty", "Total", "Dibayar", "Sisa", "Status", "File", "Error"}

// line is one row of the Invoices sheet.
type line struct {
	position int
	cells    []interface{}
}

// Build creates the summary workbook for result. The caller closes it.
func Build(result *converter.BatchResult, source string, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeInvoices(f, result); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := writeSummary(f, result, source, generatedAt); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, result *converter.BatchResult, source string, generatedAt time.Time) error {
	f, err := Build(result, source, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteFile saves the workbook as invoice_report_YYYYMMDD_HHMMSS.xlsx in dir
// and returns its path.
func WriteFile(dir string, result *converter.BatchResult, source string, generatedAt time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := Build(result, source, generatedAt)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, fmt.Sprintf("invoice_report_%s.xlsx", generatedAt.Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", path, err)
	}
	return path, nil
}

func writeInvoices(f *excelize.File, result *converter.BatchResult) error {
	lines := make([]line, 0, len(result.Outputs)+len(result.Failures))

	for _, out := range result.Outputs {
		rec := out.Record
		lines = append(lines, line{out.Position, []interface{}{
			out.Position,
			out.OrderID,
			rec.CustomerName,
			rec.Quantity,
			number(rec.TotalAmount),
			number(rec.AmountPaid),
			number(rec.AmountDue),
			rec.PaymentStatusText,
			out.FileName,
			"",
		}})
	}
	for _, fail := range result.Failures {
		lines = append(lines, line{fail.Position, []interface{}{
			fail.Position, fail.OrderID, "", "", "", "", "", "", "", fail.Err.Error(),
		}})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].position < lines[j].position })

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetInvoices, "A1", &header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for i, l := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetInvoices, cell, &l.cells); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", l.position, err)
		}
	}

	if err := f.SetColWidth(SheetInvoices, "B", "C", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetInvoices, "I", "J", 36); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetInvoices, "A1", lastHeader, bold)
}

func writeSummary(f *excelize.File, result *converter.BatchResult, source string, generatedAt time.Time) error {
	total, paid, due := decimal.Zero, decimal.Zero, decimal.Zero
	for _, out := range result.Outputs {
		total = total.Add(out.Record.TotalAmount)
		paid = paid.Add(out.Record.AmountPaid)
		due = due.Add(out.Record.AmountDue)
	}

	rows := [][]interface{}{
		{"Source", source},
		{"Generated", generatedAt.Format("2006-01-02 15:04:05")},
		{"Rows", result.Total},
		{"Invoices", result.Succeeded()},
		{"Errors", len(result.Failures)},
		{"Total", number(total)},
		{"Dibayar", number(paid)},
		{"Sisa", number(due)},
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 24)
}

// number converts an amount for a numeric cell.
func number(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
