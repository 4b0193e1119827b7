package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-invoicer/internal/report"
)

const ordersCSV = `Timestamp,ORDER-ID,Nama Lengkap,Alamat Pengiriman,No HP,Ukuran Kaos (size),Jumlah (QTY),Metode Pembayaran,STATUS PEMBAYARAN
2025-01-02 10:00:00,A1,Budi Santoso,Jl. Mawar 1,0812,L,3,DP 50%,Belum Lunas
2025-01-02 11:00:00,A2,Sari,Jl. Melati 2,0813,M,2,Transfer,Lunas
2025-01-02 12:00:00,A3,Joko,Jl. Kenanga 3,0814,XL,1,Transfer,Menunggu
`

// resetFlags restores every flag of c to its default so runs in one process
// do not leak into each other.
func resetFlags(t *testing.T, c *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)
}

// runCLI executes the root command with args, pointing the config and .env
// lookups at files that do not exist so only built-in defaults apply.
func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(t, generateCmd)
	t.Cleanup(func() { resetFlags(t, generateCmd) })

	dir := t.TempDir()
	base := []string{
		"--config", filepath.Join(dir, "absent.yaml"),
		"--env-file", filepath.Join(dir, "absent.env"),
	}
	rootCmd.SetArgs(append(args, base...))
	rootCmd.SetOut(&bytes.Buffer{})
	return rootCmd.Execute()
}

func writeOrders(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(ordersCSV), 0644))
	return path
}

func TestGenerateCommand(t *testing.T) {
	input := writeOrders(t)
	outDir := filepath.Join(t.TempDir(), "invoices")

	err := runCLI(t, "generate",
		"--input", input,
		"--output", outDir,
		"--branding", filepath.Join(t.TempDir(), "branding.json"),
		"--logo", "",
		"--price", "50000",
		"--concurrency", "2",
		"--report",
	)
	require.NoError(t, err)

	pdfs, err := filepath.Glob(filepath.Join(outDir, "*.pdf"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(outDir, "Invoice_A1_Budi_Santoso.pdf"),
		filepath.Join(outDir, "Invoice_A2_Sari.pdf"),
		filepath.Join(outDir, "Invoice_A3_Joko.pdf"),
	}, pdfs)

	errorLogs, err := filepath.Glob(filepath.Join(outDir, "error_log_*.txt"))
	require.NoError(t, err)
	assert.Empty(t, errorLogs)

	// With no report_dir configured the report follows --output.
	reports, err := filepath.Glob(filepath.Join(outDir, "invoice_report_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, reports, 1)

	f, err := excelize.OpenFile(reports[0])
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows(report.SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Invoices", "3"}, summary[3])
	assert.Equal(t, []string{"Errors", "0"}, summary[4])
	assert.Equal(t, []string{"Total", "300000"}, summary[5])
}

func TestGenerateCommandDryRun(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "invoices")

	err := runCLI(t, "generate",
		"--input", writeOrders(t),
		"--output", outDir,
		"--branding", filepath.Join(t.TempDir(), "branding.json"),
		"--logo", "",
		"--dry-run",
	)
	require.NoError(t, err)

	_, err = os.Stat(outDir)
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateCommandErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		err := runCLI(t, "generate",
			"--input", filepath.Join(t.TempDir(), "absent.csv"),
			"--output", t.TempDir(),
		)
		assert.ErrorContains(t, err, "failed to load orders")
	})

	t.Run("negative price", func(t *testing.T) {
		err := runCLI(t, "generate", "--input", writeOrders(t), "--price", "-1")
		assert.ErrorContains(t, err, "price must not be negative")
	})
}
