// =============================================================================
// Order Invoicer - PDF Invoice Writer
// =============================================================================
//
// This module turns one resolved order into a one-page A4 invoice.
//
// The work is split in two steps:
//   1. Compose: a pure function that decides WHAT goes on the invoice
//      (texts, amounts, which blocks exist, what is highlighted).
//   2. Render: draws a composed Document with gofpdf.
//
// DOCUMENT STRUCTURE (top to bottom):
//
//   +---------------------------------------------------------------+
//   | [logo | initials]                      COMPANY NAME / contact  |
//   |===============================================================|
//   | INVOICE / NOTA                                      #ORDER-ID |
//   | Tanggal: 2025-01-02 10:00:00                                  |
//   | INFORMASI PELANGGAN   Nama / Alamat / No. HP                  |
//   | DETAIL PESANAN        No | Deskripsi | Ukuran | Qty | ...     |
//   |                                      Total Harga:  Rp ...     |
//   |                                     SISA TAGIHAN:  Rp ...     |
//   | [              STATUS: BELUM LUNAS                          ] |
//   | METODE PEMBAYARAN                                             |
//   | [ Transfer ke: bank / account / holder ]   (only when due > 0)|
//   |---------------------------------------------------------------|
//   |                 Terima kasih atas pesanan Anda!               |
//   +---------------------------------------------------------------+
//
// =============================================================================

package pdfwriter

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/money"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// DefaultWrapWidth is the address wrap width in characters.
const DefaultWrapWidth = 50

// Invoice labels.
const (
	labelTitle         = "INVOICE / NOTA"
	labelDate          = "Tanggal:"
	labelCustomer      = "INFORMASI PELANGGAN"
	labelOrderDetails  = "DETAIL PESANAN"
	labelTotal         = "Total Harga:"
	labelDownPayment   = "DP 50% Dibayar:"
	labelPaid          = "Jumlah Dibayar:"
	labelRemaining     = "SISA TAGIHAN:"
	labelPaymentMethod = "METODE PEMBAYARAN"
	labelTransferTo    = "Transfer ke:"
	footerThanks       = "Terima kasih atas pesanan Anda!"
	footerValidity     = "Invoice ini sah sebagai bukti pemesanan. Harap simpan untuk referensi."
	statusPrefix       = "STATUS: "
	initialsLength     = 2
)

// ItemColumns are the headings of the order detail table.
var ItemColumns = []string{"No", "Deskripsi", "Ukuran", "Qty", "Harga Satuan", "Subtotal"}

// Options controls rendering details that are not part of the branding.
type Options struct {
	// LogoPath is an optional PNG, JPEG or GIF image. When it is empty,
	// missing or not a decodable image, the company initials are shown.
	LogoPath string

	// WrapWidth is the address wrap width in characters (DefaultWrapWidth when <= 0).
	WrapWidth int
}

// =============================================================================
// DOCUMENT MODEL
// =============================================================================

// Document is a fully composed invoice, ready to render.
type Document struct {
	OrderID       string
	Header        Header
	Date          string
	Customer      []CustomerField
	Items         []LineItem
	Summary       []SummaryLine
	Status        StatusBanner
	PaymentMethod string

	// Bank is nil when nothing remains to be paid.
	Bank *BankBlock

	Footer []string
}

// Header is the company block at the top of the page.
type Header struct {
	// LogoPath is set only when the logo was readable.
	LogoPath   string
	LogoType   string
	LogoWidth  int
	LogoHeight int

	// Initials replace the logo when LogoPath is empty.
	Initials string

	CompanyName string
	Tagline     string
	Address     string
	Phone       string
	Email       string
}

// CustomerField is one labelled row of the customer block.
type CustomerField struct {
	Label string
	Lines []string
}

// LineItem is one row of the order detail table, already formatted.
type LineItem struct {
	No          int
	Description string
	Size        string
	Quantity    int
	UnitPrice   string
	Subtotal    string
}

// SummaryLine is one row of the payment summary.
type SummaryLine struct {
	Label  string
	Amount string

	// Emphasized lines are drawn larger in the accent color.
	Emphasized bool
}

// StatusBanner is the boxed payment status line.
type StatusBanner struct {
	Text string

	// Paid selects the success color; otherwise the accent color is used.
	Paid bool
}

// BankBlock holds the transfer instructions.
type BankBlock struct {
	BankName string
	Account  string
	Holder   string
}

// Lines returns the block text, heading first.
func (b *BankBlock) Lines() []string {
	return []string{
		labelTransferTo,
		"Bank: " + b.BankName,
		"No. Rekening: " + b.Account,
		"Atas Nama: " + b.Holder,
	}
}

// =============================================================================
// COMPOSITION
// =============================================================================

// Compose lays out the content of the invoice for rec.
//
// PARAMETERS:
//   - rec: The resolved order.
//   - branding: Company, bank and currency details.
//   - opts: Logo and wrapping options.
//
// RETURNS:
//   - The composed document. Compose only touches the filesystem to probe
//     the logo file.
func Compose(rec types.InvoiceRecord, branding config.Branding, opts Options) *Document {
	label := branding.CurrencyLabel
	wrapWidth := opts.WrapWidth
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}

	doc := &Document{
		OrderID: rec.OrderID,
		Header:  composeHeader(branding, opts.LogoPath),
		Date:    rec.Timestamp,
		Customer: []CustomerField{
			{Label: "Nama", Lines: []string{rec.CustomerName}},
			{Label: "Alamat", Lines: WrapText(rec.ShippingAddress, wrapWidth)},
			{Label: "No. HP", Lines: []string{rec.Phone}},
		},
		Items: []LineItem{{
			No:          1,
			Description: branding.ProductName,
			Size:        rec.Size,
			Quantity:    rec.Quantity,
			UnitPrice:   money.FormatInt(rec.UnitPrice, label),
			Subtotal:    money.Format(rec.TotalAmount, label),
		}},
		Summary: composeSummary(rec, label),
		Status: StatusBanner{
			Text: statusPrefix + strings.ToUpper(rec.PaymentStatusText),
			Paid: rec.IsPaidInFull(),
		},
		PaymentMethod: rec.PaymentMethod,
		Footer:        composeFooter(branding.CompanyWebsite),
	}

	if rec.HasAmountDue() {
		doc.Bank = &BankBlock{
			BankName: branding.BankName,
			Account:  branding.BankAccount,
			Holder:   branding.BankHolder,
		}
	}

	return doc
}

// composeSummary returns the payment summary rows. The remaining amount is
// always listed for a down payment, and otherwise only when something is due.
func composeSummary(rec types.InvoiceRecord, label string) []SummaryLine {
	lines := []SummaryLine{{Label: labelTotal, Amount: money.Format(rec.TotalAmount, label)}}

	paidLabel := labelPaid
	if rec.IsDownPayment {
		paidLabel = labelDownPayment
	}
	lines = append(lines, SummaryLine{Label: paidLabel, Amount: money.Format(rec.AmountPaid, label)})

	if rec.IsDownPayment || rec.HasAmountDue() {
		lines = append(lines, SummaryLine{
			Label:      labelRemaining,
			Amount:     money.Format(rec.AmountDue, label),
			Emphasized: true,
		})
	}

	return lines
}

func composeHeader(branding config.Branding, logoPath string) Header {
	h := Header{
		CompanyName: branding.CompanyName,
		Tagline:     branding.CompanyTagline,
		Address:     branding.CompanyAddress,
		Phone:       branding.CompanyPhone,
		Email:       branding.CompanyEmail,
	}

	if format, width, height, ok := probeLogo(logoPath); ok {
		h.LogoPath = logoPath
		h.LogoType = format
		h.LogoWidth = width
		h.LogoHeight = height
	} else {
		h.Initials = Initials(branding.CompanyName)
	}

	return h
}

func composeFooter(website string) []string {
	thanks := footerThanks
	if website = strings.TrimSpace(website); website != "" {
		thanks = fmt.Sprintf("%s | %s", footerThanks, website)
	}
	return []string{thanks, footerValidity}
}

// Initials returns the first two characters of the company name.
func Initials(companyName string) string {
	runes := []rune(strings.TrimSpace(companyName))
	if len(runes) > initialsLength {
		runes = runes[:initialsLength]
	}
	return string(runes)
}

// probeLogo reports whether path holds a decodable image, and its format
// and pixel size.
func probeLogo(path string) (format string, width, height int, ok bool) {
	if path == "" {
		return "", 0, 0, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, 0, false
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return "", 0, 0, false
	}

	return format, cfg.Width, cfg.Height, true
}

// =============================================================================
// CONVENIENCE
// =============================================================================

// Generate composes and renders the invoice for rec.
//
// RETURNS:
//   - The PDF bytes.
//   - An error if the layout engine fails.
func Generate(rec types.InvoiceRecord, branding config.Branding, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Compose(rec, branding, opts).Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", rec.OrderID, err)
	}
	return buf.Bytes(), nil
}
