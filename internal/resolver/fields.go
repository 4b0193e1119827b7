package resolver

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// =============================================================================
// FIELD LOOKUP
// =============================================================================

// ResolveField returns the trimmed value of the first candidate label that is
// present in row and not blank. It returns def when no candidate matches.
//
// PARAMETERS:
//   - row: The raw order row.
//   - candidates: Acceptable column labels, highest priority first.
//   - def: The value returned when every candidate is absent or blank.
func ResolveField(row types.RawRow, candidates []string, def string) string {
	for _, label := range candidates {
		value, ok := row[label]
		if !ok {
			continue
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return def
}

// =============================================================================
// QUANTITY
// =============================================================================

// ResolveQuantity resolves the quantity of row using the built-in labels.
// See Resolver.Quantity.
func ResolveQuantity(row types.RawRow) (int, string) {
	return defaultResolver.Quantity(row)
}

// Quantity resolves the quantity column and normalizes it to an integer >= 1.
//
// RETURNS:
//   - The quantity. Fractional text ("2.0", "2.7") is truncated toward zero.
//   - A warning describing the fallback, or "" when the value was usable or
//     the column was simply absent.
func (r *Resolver) Quantity(row types.RawRow) (int, string) {
	raw := ResolveField(row, r.aliases.Labels(FieldQuantity), "1")

	qty, ok := parseQuantity(raw)
	if !ok {
		return 1, fmt.Sprintf("quantity %q is not a number; using 1", raw)
	}
	if qty < 1 {
		return 1, fmt.Sprintf("quantity %q is below 1; using 1", raw)
	}

	return qty, ""
}

// maxQuantity bounds parsed quantities so UnitPrice * Quantity stays in int64.
const maxQuantity = 1_000_000

// parseQuantity parses numeric text, truncating fractions toward zero.
// ok is false for anything that is not a finite number within maxQuantity.
func parseQuantity(raw string) (qty int, ok bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	f = math.Trunc(f)
	if math.Abs(f) > maxQuantity {
		return 0, false
	}

	return int(f), true
}
