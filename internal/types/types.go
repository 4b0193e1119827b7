// =============================================================================
// Order Invoicer - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (Table, RawRow)
//   - resolver (RawRow -> InvoiceRecord)
//   - pdfwriter, converter, report, server (InvoiceRecord)
//
// =============================================================================

package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is the value shown for any text field the order row does not provide.
const Placeholder = "-"

// =============================================================================
// INPUT TYPES
// =============================================================================

// RawRow is one order row keyed by its (trimmed) column label.
// A missing key means the column is absent from the source file.
type RawRow map[string]string

// Table is a parsed order intake file.
type Table struct {
	// Headers contains the column labels in source order.
	Headers []string

	// Rows contains the non-blank data rows.
	Rows []RawRow

	// SourceFile is the path or upload name the table was read from.
	SourceFile string

	// Encoding is the text encoding the file was decoded with
	// ("UTF-8", "ISO-8859-1", or "XLSX" for workbooks).
	Encoding string
}

// =============================================================================
// INVOICE RECORD
// =============================================================================

// InvoiceRecord is the canonical order derived from one RawRow.
// It is built fresh per row, rendered, and discarded.
type InvoiceRecord struct {
	// Position is the 1-based position of the row in the processed set.
	Position int

	OrderID         string
	CustomerName    string
	ShippingAddress string
	Phone           string
	Size            string

	// Quantity is always >= 1.
	Quantity int

	PaymentMethod     string
	PaymentStatusText string

	// Timestamp is copied verbatim from the row, or the wall clock at build time.
	Timestamp string

	// UnitPrice is in whole currency units.
	UnitPrice int64

	TotalAmount   decimal.Decimal
	IsDownPayment bool
	AmountPaid    decimal.Decimal
	AmountDue     decimal.Decimal

	// Warnings lists values that were defaulted or flagged during resolution.
	Warnings []string
}

// IsPaidInFull reports whether the payment status text marks the order as settled ("lunas").
func (r InvoiceRecord) IsPaidInFull() bool {
	return strings.Contains(strings.ToLower(r.PaymentStatusText), "lunas")
}

// HasAmountDue reports whether anything remains to be paid.
func (r InvoiceRecord) HasAmountDue() bool {
	return r.AmountDue.IsPositive()
}
