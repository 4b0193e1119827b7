package resolver

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// TimestampLayout is used when a row carries no timestamp of its own.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	downPaymentShare = decimal.RequireFromString("0.5")
	fifty            = decimal.NewFromInt(50)
	percentPattern   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)
)

// defaultResolver serves the package-level helpers.
var defaultResolver = New(nil)

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver builds InvoiceRecords from raw rows. It is safe for concurrent use.
type Resolver struct {
	aliases Aliases
	now     func() time.Time
}

// New creates a Resolver using the built-in labels, extended by extra
// (typically MainConfig.ColumnAliases; nil is fine).
func New(extra map[string][]string) *Resolver {
	return &Resolver{
		aliases: DefaultAliases().WithExtra(extra),
		now:     time.Now,
	}
}

// WithClock returns a copy of r that uses now for missing timestamps.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	clone := *r
	clone.now = now
	return &clone
}

// Aliases returns the labels r accepts.
func (r *Resolver) Aliases() Aliases {
	return r.aliases
}

// BuildInvoiceRecord resolves row with the built-in labels and the wall clock.
func BuildInvoiceRecord(row types.RawRow, rowIndex int, branding config.Branding) types.InvoiceRecord {
	return defaultResolver.Build(row, rowIndex, branding)
}

// Build converts one raw row into an InvoiceRecord.
//
// PARAMETERS:
//   - row: The raw order row.
//   - rowIndex: 0-based position of the row in the processed set.
//   - branding: Supplies the unit price.
//
// RETURNS:
//   - The record. Build never fails; defaulted values are listed in Warnings.
func (r *Resolver) Build(row types.RawRow, rowIndex int, branding config.Branding) types.InvoiceRecord {
	field := func(f Field, def string) string {
		return ResolveField(row, r.aliases.Labels(f), def)
	}

	rec := types.InvoiceRecord{
		Position:          rowIndex + 1,
		OrderID:           field(FieldOrderID, fmt.Sprintf("ORDER%d", rowIndex+1)),
		CustomerName:      field(FieldName, types.Placeholder),
		ShippingAddress:   field(FieldAddress, types.Placeholder),
		Phone:             field(FieldPhone, types.Placeholder),
		Size:              field(FieldSize, types.Placeholder),
		PaymentMethod:     field(FieldPaymentMethod, types.Placeholder),
		PaymentStatusText: field(FieldPaymentStatus, types.Placeholder),
		Timestamp:         field(FieldTimestamp, ""),
		UnitPrice:         branding.UnitPrice,
	}

	if rec.Timestamp == "" {
		rec.Timestamp = r.now().Format(TimestampLayout)
	}

	qty, warning := r.Quantity(row)
	rec.Quantity = qty
	if warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}

	if warning := percentageWarning(rec.PaymentMethod); warning != "" {
		rec.Warnings = append(rec.Warnings, warning)
	}

	applyPayment(&rec)
	return rec
}

// =============================================================================
// PAYMENT RULES
// =============================================================================

// IsDownPayment reports whether a payment method describes a 50% down payment.
// Matching is a case-insensitive substring test for "dp" or "50%".
func IsDownPayment(method string) bool {
	m := strings.ToLower(method)
	return strings.Contains(m, "dp") || strings.Contains(m, "50%")
}

// applyPayment fills the amount fields from quantity, price and payment text.
//
//	down payment   -> paid = total / 2
//	status "lunas" -> paid = total
//	otherwise      -> paid = 0
//
// The down payment rule wins over the status text.
func applyPayment(rec *types.InvoiceRecord) {
	rec.TotalAmount = decimal.NewFromInt(rec.UnitPrice).Mul(decimal.NewFromInt(int64(rec.Quantity)))
	rec.IsDownPayment = IsDownPayment(rec.PaymentMethod)

	switch {
	case rec.IsDownPayment:
		rec.AmountPaid = rec.TotalAmount.Mul(downPaymentShare)
	case rec.IsPaidInFull():
		rec.AmountPaid = rec.TotalAmount
	default:
		rec.AmountPaid = decimal.Zero
	}

	rec.AmountDue = rec.TotalAmount.Sub(rec.AmountPaid)
}

// percentageWarning flags a payment method that names a percentage other than
// 50%. Such orders are still billed with the fixed down payment rule.
func percentageWarning(method string) string {
	for _, m := range percentPattern.FindAllStringSubmatch(method, -1) {
		pct, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
		if err != nil || pct.Equal(fifty) {
			continue
		}
		return fmt.Sprintf("payment method %q mentions %s%%; down payments are billed at 50%%", method, m[1])
	}
	return ""
}
