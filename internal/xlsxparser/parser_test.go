package xlsxparser

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/order-invoicer/internal/csvparser"
	"github.com/ginjaninja78/order-invoicer/internal/types"
)

// newWorkbook builds a workbook whose default sheet holds rows.
func newWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	return f
}

func TestParseFile(t *testing.T) {
	f := newWorkbook(t, [][]interface{}{
		{"ORDER-ID", " Nama Lengkap ", "Jumlah (QTY)", "Nama Lengkap"},
		{"A1", "Budi", 2},
		{},
		{"A2", "Sari", 1, "dup"},
	})
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := ParseFile(path)

	require.NoError(t, err)
	assert.Equal(t, EncodingXLSX, table.Encoding)
	assert.Equal(t, []string{"ORDER-ID", "Nama Lengkap", "Jumlah (QTY)", "Nama Lengkap.1"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, types.RawRow{"ORDER-ID": "A1", "Nama Lengkap": "Budi", "Jumlah (QTY)": "2", "Nama Lengkap.1": ""}, table.Rows[0])
	assert.Equal(t, "dup", table.Rows[1]["Nama Lengkap.1"])
}

func TestParseSkipsHelperSheets(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "_notes"))
	_, err := f.NewSheet("Orders")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("_notes", "A1", "ignore me"))
	require.NoError(t, f.SetCellValue("Orders", "A1", "ORDER-ID"))
	require.NoError(t, f.SetCellValue("Orders", "A2", "X9"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := Parse(&buf, "upload.xlsx")

	require.NoError(t, err)
	assert.Equal(t, "upload.xlsx", table.SourceFile)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "X9", table.Rows[0]["ORDER-ID"])
}

func TestParseEmptyWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, excelize.NewFile().Write(&buf))

	_, err := Parse(&buf, "empty.xlsx")

	assert.True(t, errors.Is(err, csvparser.ErrEmptyInput))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("not a workbook")), "bad.xlsx")

	assert.Error(t, err)
}
