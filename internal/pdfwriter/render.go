package pdfwriter

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// =============================================================================
// PAGE GEOMETRY (millimetres)
// =============================================================================

const (
	marginLeft   = 20.0
	marginRight  = 20.0
	marginTop    = 15.0
	marginBottom = 20.0

	fontFamily = "Helvetica"
	creator    = "order-invoicer"

	logoBox = 30.0
)

// itemWidths are the order detail column widths; they add up to the
// content width of an A4 page with the margins above.
var itemWidths = []float64{10, 50, 25, 15, 35, 35}

var itemAligns = []string{"C", "L", "C", "C", "R", "R"}

// =============================================================================
// COLORS
// =============================================================================

type rgb struct{ r, g, b int }

var (
	colorPrimary     = rgb{0x2C, 0x3E, 0x50}
	colorSecondary   = rgb{0x34, 0x98, 0xDB}
	colorAccent      = rgb{0xE7, 0x4C, 0x3C}
	colorSuccess     = rgb{0x27, 0xAE, 0x60}
	colorMuted       = rgb{0x80, 0x80, 0x80}
	colorText        = rgb{0x00, 0x00, 0x00}
	colorWhite       = rgb{0xFF, 0xFF, 0xFF}
	colorPanel       = rgb{0xF8, 0xF9, 0xFA}
	colorNoticeFill  = rgb{0xFF, 0xF3, 0xCD}
	colorNoticeFrame = rgb{0xFF, 0xC1, 0x07}
)

// =============================================================================
// RENDERING
// =============================================================================

// renderer wraps a gofpdf document with the invoice drawing helpers.
type renderer struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	width float64
}

// Render draws the document as a single A4 PDF and writes it to w.
// Content that does not fit continues on a new page.
func (d *Document) Render(w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle("Invoice #"+d.OrderID, true)
	pdf.SetCreator(creator, true)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	r := &renderer{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		width: pageWidth - marginLeft - marginRight,
	}

	r.header(d.Header)
	r.title(d.OrderID, d.Date)
	r.customer(d.Customer)
	r.items(d.Items)
	r.summary(d.Summary)
	r.status(d.Status)
	r.paymentMethod(d.PaymentMethod)
	if d.Bank != nil {
		r.bank(d.Bank)
	}
	r.footer(d.Footer)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func (r *renderer) font(style string, size float64, c rgb) {
	r.pdf.SetFont(fontFamily, style, size)
	r.pdf.SetTextColor(c.r, c.g, c.b)
}

func (r *renderer) cell(w, h float64, text, border string, ln int, align string, fill bool) {
	r.pdf.CellFormat(w, h, r.tr(text), border, ln, align, fill, 0, "")
}

func (r *renderer) heading(text string) {
	r.font("B", 14, colorPrimary)
	r.cell(0, 8, text, "", 1, "L", false)
}

// header draws the logo (or initials) on the left and the company details
// right-aligned next to it.
func (r *renderer) header(h Header) {
	pdf := r.pdf
	top := pdf.GetY()

	if h.LogoPath != "" {
		w, hgt := fitBox(h.LogoWidth, h.LogoHeight, logoBox)
		pdf.ImageOptions(h.LogoPath, marginLeft, top, w, hgt, false,
			gofpdf.ImageOptions{ImageType: h.LogoType, ReadDpi: true}, 0, "")
	} else {
		pdf.SetXY(marginLeft, top+logoBox/2-5)
		r.font("B", 18, colorPrimary)
		r.cell(logoBox+10, 10, h.Initials, "", 0, "L", false)
	}

	infoX := marginLeft + logoBox + 10
	infoW := r.width - logoBox - 10

	pdf.SetXY(infoX, top)
	r.font("B", 16, colorPrimary)
	r.cell(infoW, 8, h.CompanyName, "", 2, "R", false)
	r.font("", 8, colorMuted)
	r.cell(infoW, 5, h.Tagline, "", 2, "R", false)
	pdf.Ln(2)
	pdf.SetX(infoX)
	r.font("", 9, colorText)
	for _, line := range []string{h.Address, "Telp: " + h.Phone, "Email: " + h.Email} {
		r.cell(infoW, 4.5, line, "", 2, "R", false)
	}

	bottom := pdf.GetY()
	if logoBottom := top + logoBox; bottom < logoBottom {
		bottom = logoBottom
	}
	pdf.SetXY(marginLeft, bottom+5)
}

// title draws the divider, the invoice title with the order id and the date.
func (r *renderer) title(orderID, date string) {
	pdf := r.pdf
	y := pdf.GetY()

	pdf.SetDrawColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	pdf.SetLineWidth(0.7)
	pdf.Line(marginLeft, y, marginLeft+r.width, y)
	pdf.Ln(3)

	r.font("B", 20, colorPrimary)
	r.cell(r.width*10/17, 10, labelTitle, "", 0, "L", false)
	r.font("B", 12, colorSecondary)
	r.cell(0, 10, "#"+orderID, "", 1, "R", false)
	pdf.Ln(3)

	r.font("", 10, colorMuted)
	r.cell(0, 6, labelDate+" "+date, "", 1, "L", false)
	pdf.Ln(5)
}

func (r *renderer) customer(fields []CustomerField) {
	r.heading(labelCustomer)

	for _, f := range fields {
		r.font("B", 10, colorText)
		r.cell(30, 5.5, f.Label, "", 0, "L", false)
		r.font("", 10, colorText)
		r.cell(5, 5.5, ":", "", 0, "L", false)
		for i, line := range f.Lines {
			if i > 0 {
				r.pdf.SetX(marginLeft + 35)
			}
			r.cell(r.width-35, 5.5, line, "", 1, "L", false)
		}
	}
	r.pdf.Ln(5)
}

// items draws the order detail table: a filled header row and one row per item.
func (r *renderer) items(items []LineItem) {
	pdf := r.pdf
	r.heading(labelOrderDetails)

	pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.SetLineWidth(0.2)

	pdf.SetFillColor(colorPrimary.r, colorPrimary.g, colorPrimary.b)
	r.font("B", 10, colorWhite)
	for i, heading := range ItemColumns {
		r.cell(itemWidths[i], 10, heading, "1", 0, "C", true)
	}
	pdf.Ln(-1)

	pdf.SetFillColor(colorPanel.r, colorPanel.g, colorPanel.b)
	r.font("", 10, colorText)
	for _, item := range items {
		values := []string{
			fmt.Sprint(item.No),
			item.Description,
			item.Size,
			fmt.Sprint(item.Quantity),
			item.UnitPrice,
			item.Subtotal,
		}
		for i, v := range values {
			r.cell(itemWidths[i], 10, v, "1", 0, itemAligns[i], true)
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

// summary draws the right-aligned payment summary.
func (r *renderer) summary(lines []SummaryLine) {
	amountW := 35.0
	labelW := 35.0
	indent := r.width - labelW - amountW

	for _, line := range lines {
		size, color := 10.0, colorText
		if line.Emphasized {
			size, color = 12, colorAccent
		}
		r.font("B", size, color)
		r.cell(indent, 7, "", "", 0, "L", false)
		r.cell(labelW, 7, line.Label, "", 0, "R", false)
		r.cell(amountW, 7, line.Amount, "", 1, "R", false)
	}
	r.pdf.Ln(5)
}

func (r *renderer) status(s StatusBanner) {
	color := colorAccent
	if s.Paid {
		color = colorSuccess
	}

	pdf := r.pdf
	pdf.SetFillColor(colorPanel.r, colorPanel.g, colorPanel.b)
	pdf.SetDrawColor(color.r, color.g, color.b)
	pdf.SetLineWidth(0.35)
	r.font("B", 12, color)
	r.cell(r.width, 12, s.Text, "1", 1, "C", true)
	pdf.Ln(5)
}

func (r *renderer) paymentMethod(method string) {
	r.heading(labelPaymentMethod)
	r.font("", 10, colorText)
	r.pdf.MultiCell(0, 5, r.tr(method), "", "L", false)
	r.pdf.Ln(3)
}

// bank draws the boxed transfer instructions. The box is moved to a new page
// as a whole when it would not fit.
func (r *renderer) bank(b *BankBlock) {
	pdf := r.pdf
	lines := b.Lines()
	const lineH, pad = 5.5, 3.5
	boxH := float64(len(lines))*lineH + 2*pad

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+boxH > pageH-marginBottom {
		pdf.AddPage()
	}

	y := pdf.GetY()
	pdf.SetFillColor(colorNoticeFill.r, colorNoticeFill.g, colorNoticeFill.b)
	pdf.SetDrawColor(colorNoticeFrame.r, colorNoticeFrame.g, colorNoticeFrame.b)
	pdf.SetLineWidth(0.35)
	pdf.Rect(marginLeft, y, r.width, boxH, "FD")

	pdf.SetXY(marginLeft+5, y+pad)
	for i, line := range lines {
		style := ""
		if i == 0 {
			style = "B"
		}
		r.font(style, 10, colorText)
		r.cell(r.width-10, lineH, line, "", 2, "L", false)
	}
	pdf.SetXY(marginLeft, y+boxH)
}

func (r *renderer) footer(lines []string) {
	pdf := r.pdf
	pdf.Ln(10)

	y := pdf.GetY()
	pdf.SetDrawColor(colorMuted.r, colorMuted.g, colorMuted.b)
	pdf.SetLineWidth(0.35)
	pdf.Line(marginLeft, y, marginLeft+r.width, y)
	pdf.Ln(3)

	r.font("", 8, colorMuted)
	for _, line := range lines {
		r.cell(0, 4, line, "", 1, "C", false)
	}
}

// fitBox scales a w x h pixel image to fit a square of side box millimetres.
func fitBox(w, h int, box float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return box, box
	}
	if w >= h {
		return box, box * float64(h) / float64(w)
	}
	return box * float64(w) / float64(h), box
}
