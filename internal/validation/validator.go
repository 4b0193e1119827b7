// =============================================================================
// Order Invoicer - Validation
// =============================================================================
//
// Two levels of checks:
//   1. Header-level: which semantic fields the uploaded sheet can supply.
//      Missing columns are never fatal (every field has a fallback), but the
//      operator should know, for example, that every order will be billed
//      for a quantity of 1.
//   2. Record-level: the amount invariants of a resolved record. A violation
//      fails that row only.
//
// ERROR HANDLING:
//   - Header findings are collected as warnings
//   - Record findings are returned as a single error for the row
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/order-invoicer/internal/resolver"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityWarning or SeverityError.
	Severity string

	// Field is the semantic field concerned (e.g. "quantity").
	Field string

	// Value is the offending value, if any.
	Value string

	// Rule names the check that produced the finding.
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-based row position, or 0 for header findings.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := "header"
	if e.RowNumber > 0 {
		location = fmt.Sprintf("row %d", e.RowNumber)
	}
	if e.Value != "" {
		return fmt.Sprintf("[%s] %s, field '%s': %s (value: '%s')",
			strings.ToUpper(e.Severity), location, e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("[%s] %s, field '%s': %s",
		strings.ToUpper(e.Severity), location, e.Field, e.Message)
}

// =============================================================================
// HEADER COVERAGE
// =============================================================================

// fallbackNotes describes what happens to every invoice when a field's column
// is missing.
var fallbackNotes = map[resolver.Field]string{
	resolver.FieldOrderID:       "order ids will be numbered ORDER1, ORDER2, ...",
	resolver.FieldName:          "customer names will show '-' and files will be named Unknown",
	resolver.FieldAddress:       "shipping addresses will show '-'",
	resolver.FieldSize:          "sizes will show '-'",
	resolver.FieldQuantity:      "every order will be billed for a quantity of 1",
	resolver.FieldPaymentMethod: "no order will be treated as a down payment",
	resolver.FieldPaymentStatus: "orders without a down payment will be billed as unpaid",
	resolver.FieldTimestamp:     "invoices will be dated at generation time",
	resolver.FieldPhone:         "phone numbers will show '-'",
}

// CheckHeaders reports every semantic field that none of the headers can supply.
//
// PARAMETERS:
//   - headers: The cleaned table headers.
//   - aliases: The labels accepted per field.
//
// RETURNS:
//   - One warning per uncovered field, in invoice field order.
func CheckHeaders(headers []string, aliases resolver.Aliases) []*ValidationError {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var findings []*ValidationError
	for _, field := range resolver.AllFields {
		if covered(present, aliases.Labels(field)) {
			continue
		}
		findings = append(findings, &ValidationError{
			Severity: SeverityWarning,
			Field:    string(field),
			Rule:     "column_missing",
			Message:  fmt.Sprintf("no column found (%s)", fallbackNotes[field]),
		})
	}

	return findings
}

func covered(present map[string]bool, labels []string) bool {
	for _, label := range labels {
		if present[label] {
			return true
		}
	}
	return false
}

// =============================================================================
// RECORD INVARIANTS
// =============================================================================

// CheckRecord verifies the amount invariants of a resolved record:
// quantity >= 1, nothing negative, and paid + due == total.
// It returns nil when the record is consistent.
func CheckRecord(rec types.InvoiceRecord) error {
	var errs []error
	fail := func(field, value, rule, message string) {
		errs = append(errs, &ValidationError{
			Severity:  SeverityError,
			Field:     field,
			Value:     value,
			Rule:      rule,
			Message:   message,
			RowNumber: rec.Position,
		})
	}

	if rec.Quantity < 1 {
		fail("quantity", fmt.Sprint(rec.Quantity), "min_quantity", "quantity must be at least 1")
	}
	if rec.UnitPrice < 0 {
		fail("unit_price", fmt.Sprint(rec.UnitPrice), "non_negative", "unit price must not be negative")
	}
	if rec.AmountPaid.IsNegative() {
		fail("amount_paid", rec.AmountPaid.String(), "non_negative", "amount paid must not be negative")
	}
	if rec.AmountDue.IsNegative() {
		fail("amount_due", rec.AmountDue.String(), "non_negative", "amount due must not be negative")
	}
	if !rec.AmountPaid.Add(rec.AmountDue).Equal(rec.TotalAmount) {
		fail("total_amount", rec.TotalAmount.String(), "balance", "amount paid plus amount due must equal the total")
	}

	return errors.Join(errs...)
}

// FormatErrors formats findings for display, one per line.
func FormatErrors(findings []*ValidationError) string {
	if len(findings) == 0 {
		return "No validation findings."
	}

	var sb strings.Builder
	for i, f := range findings {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, f.Error()))
	}
	return sb.String()
}
