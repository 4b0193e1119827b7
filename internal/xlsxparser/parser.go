// =============================================================================
// Order Invoicer - XLSX Parser
// =============================================================================
//
// This module reads order sheets saved as Excel workbooks into the same
// types.Table the CSV parser produces, so the rest of the pipeline does not
// care which format the shop exported.
//
// SHEET SELECTION:
//   The first sheet whose name does not start with "_" is used. Prefixing a
//   sheet with "_" (e.g. "_pivot", "_notes") keeps helper sheets out of the
//   invoice run.
//
// SHEET STRUCTURE:
//   | Row 1    | ORDER-ID | Nama Lengkap | Jumlah (QTY) | ... |   <- header
//   | Row 2..n | A1       | Budi         | 2            | ... |   <- orders
//
//   Header cleanup matches the CSV parser (trim, Column_N, ".1" suffixes).
//   Cell values are read as displayed in Excel.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-invoicer/internal/csvparser"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// EncodingXLSX is recorded as the table encoding for workbook input.
const EncodingXLSX = "XLSX"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads the workbook at path.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be opened, has no usable sheet, or no header
//     row (csvparser.ErrEmptyInput).
func ParseFile(path string) (*types.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, path)
}

// Parse reads a workbook from r. The name is recorded on the table.
func Parse(r io.Reader, name string) (*types.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	defer f.Close()

	return parseWorkbook(f, name)
}

// parseWorkbook converts the order sheet of an open workbook into a Table.
func parseWorkbook(f *excelize.File, name string) (*types.Table, error) {
	sheetName := orderSheet(f)
	if sheetName == "" {
		return nil, fmt.Errorf("%s: workbook has no order sheet: %w", name, csvparser.ErrEmptyInput)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheetName, err)
	}

	if len(rows) == 0 || isRowEmpty(rows[0]) {
		return nil, fmt.Errorf("%s: %w", name, csvparser.ErrEmptyInput)
	}

	headers := csvparser.CleanHeaders(rows[0])

	table := &types.Table{
		Headers:    headers,
		Rows:       make([]types.RawRow, 0, len(rows)-1),
		SourceFile: name,
		Encoding:   EncodingXLSX,
	}

	for _, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, parseRow(row, headers))
	}

	return table, nil
}

// orderSheet returns the first sheet not prefixed with "_", or "".
func orderSheet(f *excelize.File) string {
	for _, sheetName := range f.GetSheetList() {
		if !strings.HasPrefix(sheetName, "_") {
			return sheetName
		}
	}
	return ""
}

// parseRow maps a sheet row onto the headers. excelize trims trailing empty
// cells, so short rows are padded with empty strings.
func parseRow(row []string, headers []string) types.RawRow {
	getCell := func(index int) string {
		if index < len(row) {
			return row[index]
		}
		return ""
	}

	rawRow := make(types.RawRow, len(headers))
	for i, header := range headers {
		rawRow[header] = getCell(i)
	}
	return rawRow
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
