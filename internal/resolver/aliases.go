// =============================================================================
// Order Invoicer - Record Resolver
// =============================================================================
//
// This package maps a loosely-labelled order row onto a canonical
// types.InvoiceRecord. Source spreadsheets name the same column in many ways
// (language, casing, punctuation), so every semantic field carries an
// ordered list of accepted labels and one generic lookup walks that list.
//
// RESOLUTION PIPELINE (per row):
//   1. Resolve each text field against its label list, with a default
//   2. Resolve and normalize the quantity (never fails, defaults to 1)
//   3. Classify the payment (down payment, paid in full, unpaid)
//   4. Compute total, paid and remaining amounts
//
// Nothing in this package returns an error: malformed values are defaulted
// and described in InvoiceRecord.Warnings.
//
// =============================================================================

package resolver

// =============================================================================
// SEMANTIC FIELDS
// =============================================================================

// Field names a semantic column of an order row.
type Field string

const (
	FieldOrderID       Field = "order_id"
	FieldName          Field = "name"
	FieldAddress       Field = "address"
	FieldSize          Field = "size"
	FieldQuantity      Field = "quantity"
	FieldPaymentMethod Field = "payment_method"
	FieldPaymentStatus Field = "payment_status"
	FieldTimestamp     Field = "timestamp"
	FieldPhone         Field = "phone"
)

// AllFields lists every semantic field in invoice order.
var AllFields = []Field{
	FieldOrderID,
	FieldName,
	FieldAddress,
	FieldSize,
	FieldQuantity,
	FieldPaymentMethod,
	FieldPaymentStatus,
	FieldTimestamp,
	FieldPhone,
}

// Aliases maps each field to its accepted column labels, highest priority first.
type Aliases map[Field][]string

// DefaultAliases returns the built-in column labels.
// The labels follow the Google Form export the shop uses, plus English names.
func DefaultAliases() Aliases {
	return Aliases{
		FieldOrderID:       {"ORDER-ID", "Order ID", "ORDER ID", "order-id", "OrderID"},
		FieldName:          {"Nama Lengkap", "Nama", "Name", "NAMA LENGKAP"},
		FieldAddress:       {"Alamat Pengiriman", "Alamat", "Address", "ALAMAT PENGIRIMAN"},
		FieldSize:          {"Ukuran Kaos (size)", "Ukuran", "Size", "UKURAN KAOS", "Ukuran Kaos"},
		FieldQuantity:      {"Jumlah (QTY)", "Jumlah", "QTY", "Qty", "JUMLAH (QTY)"},
		FieldPaymentMethod: {"Metode Pembayaran", "Metode", "Payment Method", "METODE PEMBAYARAN"},
		FieldPaymentStatus: {"STATUS PEMBAYARAN", "Status Pembayaran", "Status", "Payment Status"},
		FieldTimestamp:     {"Timestamp", "Tanggal", "Date", "TIMESTAMP"},
		FieldPhone:         {"No HP", "No. HP", "Phone", "Telepon", "NO HP", "Nomor HP"},
	}
}

// WithExtra returns a copy of a where the configured labels for each field are
// tried before the existing ones. Keys that are not a known Field are ignored.
//
// PARAMETERS:
//   - extra: labels keyed by field name (e.g. "quantity"), as found in config.yaml.
func (a Aliases) WithExtra(extra map[string][]string) Aliases {
	merged := make(Aliases, len(a))
	for field, labels := range a {
		merged[field] = append([]string(nil), labels...)
	}

	for key, labels := range extra {
		field := Field(key)
		if _, known := merged[field]; !known {
			continue
		}
		merged[field] = append(append([]string(nil), labels...), merged[field]...)
	}

	return merged
}

// Labels returns the labels accepted for field.
func (a Aliases) Labels(field Field) []string {
	return a[field]
}
