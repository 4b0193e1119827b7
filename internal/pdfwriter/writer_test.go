package pdfwriter

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

func record(qty int, method, status string) types.InvoiceRecord {
	total := decimal.NewFromInt(100000 * int64(qty))
	rec := types.InvoiceRecord{
		Position:          1,
		OrderID:           "A1",
		CustomerName:      "Budi Santoso",
		ShippingAddress:   "Jl. Mawar No. 1, Bandung",
		Phone:             "0812",
		Size:              "L",
		Quantity:          qty,
		PaymentMethod:     method,
		PaymentStatusText: status,
		Timestamp:         "2025-01-02 10:00:00",
		UnitPrice:         100000,
		TotalAmount:       total,
	}
	switch {
	case strings.Contains(strings.ToLower(method), "dp"):
		rec.IsDownPayment = true
		rec.AmountPaid = total.Div(decimal.NewFromInt(2))
	case strings.Contains(strings.ToLower(status), "lunas"):
		rec.AmountPaid = total
	default:
		rec.AmountPaid = decimal.Zero
	}
	rec.AmountDue = total.Sub(rec.AmountPaid)
	return rec
}

func summaryLabels(doc *Document) []string {
	labels := make([]string, len(doc.Summary))
	for i, l := range doc.Summary {
		labels[i] = l.Label
	}
	return labels
}

func TestComposeSummary(t *testing.T) {
	b := config.DefaultBranding()

	t.Run("down payment", func(t *testing.T) {
		doc := Compose(record(3, "DP 50%", "Belum Lunas"), b, Options{})

		assert.Equal(t, []string{labelTotal, labelDownPayment, labelRemaining}, summaryLabels(doc))
		assert.Equal(t, "Rp 300.000", doc.Summary[0].Amount)
		assert.Equal(t, "Rp 150.000", doc.Summary[1].Amount)
		assert.Equal(t, "Rp 150.000", doc.Summary[2].Amount)
		assert.False(t, doc.Summary[1].Emphasized)
		assert.True(t, doc.Summary[2].Emphasized)
		require.NotNil(t, doc.Bank)
	})

	t.Run("paid in full", func(t *testing.T) {
		doc := Compose(record(2, "Transfer", "Lunas"), b, Options{})

		assert.Equal(t, []string{labelTotal, labelPaid}, summaryLabels(doc))
		assert.Equal(t, "Rp 200.000", doc.Summary[1].Amount)
		for _, l := range doc.Summary {
			assert.False(t, l.Emphasized)
		}
		assert.Nil(t, doc.Bank)
		assert.True(t, doc.Status.Paid)
		assert.Equal(t, "STATUS: LUNAS", doc.Status.Text)
	})

	t.Run("unpaid", func(t *testing.T) {
		doc := Compose(record(1, "Transfer", "Menunggu"), b, Options{})

		assert.Equal(t, []string{labelTotal, labelPaid, labelRemaining}, summaryLabels(doc))
		assert.Equal(t, "Rp 0", doc.Summary[1].Amount)
		assert.Equal(t, "Rp 100.000", doc.Summary[2].Amount)
		assert.False(t, doc.Status.Paid)
		require.NotNil(t, doc.Bank)
		assert.Equal(t, []string{
			"Transfer ke:",
			"Bank: Bank BCA",
			"No. Rekening: 1234567890",
			"Atas Nama: PT TOKO KAOS KEREN",
		}, doc.Bank.Lines())
	})
}

func TestComposeContent(t *testing.T) {
	b := config.DefaultBranding()
	b.CurrencyLabel = "IDR"
	b.ProductName = "Kaos Polos"
	rec := record(2, "Transfer", "Lunas")
	rec.ShippingAddress = "Jl. Kenanga Raya No. 12 RT 03 RW 05 Kelurahan Sukamaju Kecamatan Cibeunying"

	doc := Compose(rec, b, Options{WrapWidth: 30})

	assert.Equal(t, "A1", doc.OrderID)
	assert.Equal(t, "2025-01-02 10:00:00", doc.Date)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, LineItem{No: 1, Description: "Kaos Polos", Size: "L", Quantity: 2, UnitPrice: "IDR 100.000", Subtotal: "IDR 200.000"}, doc.Items[0])

	require.Len(t, doc.Customer, 3)
	assert.Equal(t, "Alamat", doc.Customer[1].Label)
	assert.Greater(t, len(doc.Customer[1].Lines), 1)
	for _, line := range doc.Customer[1].Lines {
		assert.LessOrEqual(t, len(line), 30)
	}

	assert.Equal(t, []string{
		"Terima kasih atas pesanan Anda! | www.tokokaoskeren.com",
		"Invoice ini sah sebagai bukti pemesanan. Harap simpan untuk referensi.",
	}, doc.Footer)
}

func TestComposeLogo(t *testing.T) {
	b := config.DefaultBranding()

	t.Run("missing logo uses initials", func(t *testing.T) {
		doc := Compose(record(1, "-", "-"), b, Options{LogoPath: filepath.Join(t.TempDir(), "logo.png")})

		assert.Empty(t, doc.Header.LogoPath)
		assert.Equal(t, "TO", doc.Header.Initials)
	})

	t.Run("unreadable logo uses initials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logo.png")
		require.NoError(t, os.WriteFile(path, []byte("not an image"), 0644))

		doc := Compose(record(1, "-", "-"), b, Options{LogoPath: path})

		assert.Empty(t, doc.Header.LogoPath)
		assert.Equal(t, "TO", doc.Header.Initials)
	})

	t.Run("valid logo is used", func(t *testing.T) {
		path := writePNG(t, 40, 20)

		doc := Compose(record(1, "-", "-"), b, Options{LogoPath: path})

		assert.Equal(t, path, doc.Header.LogoPath)
		assert.Equal(t, "png", doc.Header.LogoType)
		assert.Empty(t, doc.Header.Initials)
	})
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "TO", Initials("TOKO KAOS KEREN"))
	assert.Equal(t, "K", Initials("K"))
	assert.Equal(t, "", Initials(""))
	assert.Equal(t, "Ké", Initials("Kéren"))
}

func TestGenerate(t *testing.T) {
	b := config.DefaultBranding()

	t.Run("produces a pdf", func(t *testing.T) {
		data, err := Generate(record(3, "DP 50%", "Belum Lunas"), b, Options{})

		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})

	t.Run("with logo and non-latin text", func(t *testing.T) {
		rec := record(1, "Transfer", "Lunas")
		rec.CustomerName = "José Åström"
		rec.ShippingAddress = strings.Repeat("Jalan panjang sekali ", 20)

		data, err := Generate(rec, b, Options{LogoPath: writePNG(t, 10, 30)})

		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	})
}

func TestWrapText(t *testing.T) {
	t.Run("blank yields placeholder", func(t *testing.T) {
		assert.Equal(t, []string{"-"}, WrapText("", 10))
		assert.Equal(t, []string{"-"}, WrapText("   \n ", 10))
	})

	t.Run("greedy packing", func(t *testing.T) {
		assert.Equal(t, []string{"aaa bbb", "ccc"}, WrapText("aaa bbb ccc", 7))
	})

	t.Run("long word on its own line", func(t *testing.T) {
		assert.Equal(t, []string{"a", "abcdefghij", "b"}, WrapText("a abcdefghij b", 5))
	})

	t.Run("words are preserved in order", func(t *testing.T) {
		text := "Jl. Kenanga Raya No. 12 RT 03 RW 05 Kelurahan Sukamaju Kecamatan Cibeunying Kota Bandung"

		for _, width := range []int{1, 5, 12, 50, 200} {
			lines := WrapText(text, width)
			assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
			for _, line := range lines {
				if strings.Contains(line, " ") {
					assert.LessOrEqual(t, len(line), width)
				}
			}
		}
	})
}

func TestFitBox(t *testing.T) {
	w, h := fitBox(200, 100, 30)
	assert.Equal(t, 30.0, w)
	assert.Equal(t, 15.0, h)

	w, h = fitBox(50, 100, 30)
	assert.Equal(t, 15.0, w)
	assert.Equal(t, 30.0, h)
}

// writePNG writes a solid w x h PNG into a temp dir and returns its path.
func writePNG(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0x2C, 0x3E, 0x50, 0xFF})
		}
	}

	path := filepath.Join(t.TempDir(), "logo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}
