package converter

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/csvparser"
	"github.com/ginjaninja78/order-invoicer/internal/resolver"
	"github.com/ginjaninja78/order-invoicer/internal/types"
	"github.com/ginjaninja78/order-invoicer/internal/xlsxparser"
)

var (
	// ErrUnsupportedFormat is returned for input files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrNoSelection is returned when a generation request selects no rows.
	ErrNoSelection = errors.New("no rows selected")

	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = csvparser.ErrEmptyInput
)

// =============================================================================
// INPUT LOADING
// =============================================================================

// LoadTable reads an order file, choosing the parser by extension
// (.csv, .xlsx, .xlsm).
func LoadTable(path string) (*types.Table, error) {
	switch format(path) {
	case ".csv":
		return csvparser.ParseFile(path)
	case ".xlsx", ".xlsm":
		return xlsxparser.ParseFile(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// ReadTable is LoadTable for uploaded content; name supplies the extension.
func ReadTable(r io.Reader, name string) (*types.Table, error) {
	switch format(name) {
	case ".csv":
		return csvparser.Parse(r, name)
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(r, name)
	default:
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
}

func format(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// Select returns the rows at the given 0-based indexes, in the order given.
//
// RETURNS:
//   - ErrNoSelection when indexes is empty.
//   - An error naming the first index outside rows.
func Select(rows []types.RawRow, indexes []int) ([]types.RawRow, error) {
	if len(indexes) == 0 {
		return nil, ErrNoSelection
	}

	selected := make([]types.RawRow, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(rows) {
			return nil, fmt.Errorf("row index %d out of range (0..%d)", i, len(rows)-1)
		}
		selected = append(selected, rows[i])
	}
	return selected, nil
}

// =============================================================================
// TABLE STATISTICS
// =============================================================================

// Stats summarizes an order table before generation.
type Stats struct {
	Rows           int             `json:"rows"`
	TotalQuantity  int             `json:"total_quantity"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
}

// ComputeStats totals the resolved quantities of rows and prices them at
// the branding unit price.
func ComputeStats(rows []types.RawRow, res *resolver.Resolver, branding config.Branding) Stats {
	stats := Stats{Rows: len(rows)}
	for _, row := range rows {
		qty, _ := res.Quantity(row)
		stats.TotalQuantity += qty
	}
	stats.EstimatedTotal = decimal.NewFromInt(branding.UnitPrice).Mul(decimal.NewFromInt(int64(stats.TotalQuantity)))
	return stats
}
