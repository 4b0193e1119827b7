// Package money formats whole-unit currency amounts for invoices.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultLabel is the currency label used when none is configured.
const DefaultLabel = "Rp"

// Format renders amount as "<label> 1.500.000": period thousands grouping,
// no decimal places. Half units (a 50% down payment of an odd total) are
// rounded half-to-even.
func Format(amount decimal.Decimal, label string) string {
	if label == "" {
		label = DefaultLabel
	}
	return label + " " + Group(amount)
}

// FormatInt is Format for an integer amount.
func FormatInt(amount int64, label string) string {
	return Format(decimal.NewFromInt(amount), label)
}

// Group returns the rounded amount with period thousands separators.
func Group(amount decimal.Decimal) string {
	digits := amount.RoundBank(0).StringFixed(0)

	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if digits == "0" {
		sign = ""
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	return sign + b.String()
}
