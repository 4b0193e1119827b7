package converter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/order-invoicer/internal/config"
	"github.com/ginjaninja78/order-invoicer/internal/pdfwriter"
	"github.com/ginjaninja78/order-invoicer/internal/resolver"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

const ordersCSV = `Timestamp,ORDER-ID,Nama Lengkap,Alamat Pengiriman,No HP,Ukuran Kaos (size),Jumlah (QTY),Metode Pembayaran,STATUS PEMBAYARAN
2025-01-02 10:00:00,A1,Budi Santoso,Jl. Mawar 1,0812,L,3,DP 50%,Belum Lunas
2025-01-02 11:00:00,A2,Sari,Jl. Melati 2,0813,M,2,Transfer,Lunas
2025-01-02 12:00:00,A3,Joko,Jl. Kenanga 3,0814,XL,banyak,Transfer,Menunggu
`

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func newGenerator(t *testing.T, options ...Option) *Generator {
	t.Helper()
	return New(config.DefaultBranding(), resolver.New(nil).WithClock(fixedClock), pdfwriter.Options{}, options...)
}

func writeOrders(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersCSV), 0644))
	return path
}

func TestRunEndToEnd(t *testing.T) {
	table, err := LoadTable(writeOrders(t))
	require.NoError(t, err)

	outDir := filepath.Join(t.TempDir(), "output_invoices")
	sink, err := NewDirSink(outDir)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	var progressLines []int
	result := newGenerator(t, WithLogger(zap.New(core))).Run(context.Background(), table.Rows, sink,
		func(done, total int, out *Output, fail *Failure) {
			assert.Equal(t, 3, total)
			assert.True(t, (out == nil) != (fail == nil))
			progressLines = append(progressLines, done)
		})

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 3, result.Succeeded())
	assert.Empty(t, result.Failures)
	assert.Equal(t, []int{1, 2, 3}, progressLines)

	names := []string{
		"Invoice_A1_Budi_Santoso.pdf",
		"Invoice_A2_Sari.pdf",
		"Invoice_A3_Joko.pdf",
	}
	for i, out := range result.Outputs {
		assert.Equal(t, i+1, out.Position)
		assert.Equal(t, names[i], out.FileName)
		data, err := os.ReadFile(filepath.Join(outDir, names[i]))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	}

	dp := result.Outputs[0].Record
	assert.True(t, dp.AmountPaid.Equal(decimal.NewFromInt(150000)))
	assert.True(t, dp.AmountDue.Equal(decimal.NewFromInt(150000)))

	paid := result.Outputs[1].Record
	assert.True(t, paid.AmountDue.IsZero())

	malformed := result.Outputs[2].Record
	assert.Equal(t, 1, malformed.Quantity)
	assert.Equal(t, 1, logs.FilterMessage("Row value defaulted").Len())
}

func TestRunDuplicateNames(t *testing.T) {
	rows := []types.RawRow{
		{"ORDER-ID": "A1", "Nama": "Budi"},
		{"ORDER-ID": "A1", "Nama": "Budi"},
		{"Nama": "Budi"},
	}
	sink := NewMemorySink()

	result := newGenerator(t, WithConcurrency(3)).Run(context.Background(), rows, sink, nil)

	require.Equal(t, 3, result.Succeeded())
	assert.Equal(t, "Invoice_A1_Budi.pdf", result.Outputs[0].FileName)
	assert.Equal(t, "Invoice_A1_Budi_2.pdf", result.Outputs[1].FileName)
	assert.Equal(t, "Invoice_ORDER3_Budi.pdf", result.Outputs[2].FileName)
	assert.Equal(t, 3, sink.Len())
}

func TestRunConcurrentKeepsOrder(t *testing.T) {
	var rows []types.RawRow
	for i := 0; i < 12; i++ {
		rows = append(rows, types.RawRow{"Nama": "Pelanggan", "Jumlah": "2"})
	}

	result := newGenerator(t, WithConcurrency(4)).Run(context.Background(), rows, NewMemorySink(), nil)

	require.Len(t, result.Outputs, 12)
	for i, out := range result.Outputs {
		assert.Equal(t, i+1, out.Position)
	}
}

type failingSink struct{ failOn string }

func (s failingSink) Put(name string, data []byte) (string, error) {
	if strings.Contains(name, s.failOn) {
		return "", errors.New("disk full")
	}
	return name, nil
}

func TestRunSinkFailureIsPerRow(t *testing.T) {
	rows := []types.RawRow{
		{"ORDER-ID": "A1", "Nama": "Budi"},
		{"ORDER-ID": "A2", "Nama": "Sari"},
		{"ORDER-ID": "A3", "Nama": "Joko"},
	}

	result := newGenerator(t).Run(context.Background(), rows, failingSink{failOn: "A2"}, nil)

	assert.Equal(t, 2, result.Succeeded())
	require.Len(t, result.Failures, 1)
	f := result.Failures[0]
	assert.Equal(t, 2, f.Position)
	assert.Equal(t, "A2", f.OrderID)
	assert.Equal(t, "A2: disk full", f.Message())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newGenerator(t).Run(ctx, []types.RawRow{{"ORDER-ID": "A1"}, {"ORDER-ID": "A2"}}, NewMemorySink(), nil)

	assert.Zero(t, result.Succeeded())
	require.Len(t, result.Failures, 2)
	assert.ErrorIs(t, result.Failures[0].Err, context.Canceled)
}

func TestRunDryRun(t *testing.T) {
	sink := NewMemorySink()

	result := newGenerator(t, WithDryRun(true)).Run(context.Background(), []types.RawRow{{"ORDER-ID": "A1"}}, sink, nil)

	assert.Equal(t, 1, result.Succeeded())
	assert.Zero(t, sink.Len())
}

func TestRunEmpty(t *testing.T) {
	result := newGenerator(t).Run(context.Background(), nil, NewMemorySink(), nil)

	assert.Zero(t, result.Total)
	assert.Empty(t, result.Outputs)
	assert.Empty(t, result.Failures)
}

func TestLoadTable(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "orders.json"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = LoadTable(empty)
	assert.ErrorIs(t, err, ErrEmptyInput)

	table, err := ReadTable(strings.NewReader(ordersCSV), "upload.CSV")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
}

func TestSelect(t *testing.T) {
	rows := []types.RawRow{{"n": "0"}, {"n": "1"}, {"n": "2"}}

	selected, err := Select(rows, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []types.RawRow{{"n": "2"}, {"n": "0"}}, selected)

	_, err = Select(rows, nil)
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = Select(rows, []int{3})
	assert.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	table, err := ReadTable(strings.NewReader(ordersCSV), "orders.csv")
	require.NoError(t, err)

	stats := ComputeStats(table.Rows, resolver.New(nil), config.DefaultBranding())

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 6, stats.TotalQuantity)
	assert.True(t, stats.EstimatedTotal.Equal(decimal.NewFromInt(600000)))
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	_, _ = sink.Put("a.pdf", []byte("1"))
	_, _ = sink.Put("b.pdf", []byte("2"))
	_, _ = sink.Put("a.pdf", []byte("3"))

	data, ok := sink.Get("a.pdf")
	assert.True(t, ok)
	assert.Equal(t, "3", string(data))
	_, ok = sink.Get("c.pdf")
	assert.False(t, ok)

	files := sink.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.pdf", files[0].Name)
}
