package csvparser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/order-invoicer/internal/types"
)

func TestParse(t *testing.T) {
	t.Run("utf8 with bom", func(t *testing.T) {
		input := "\xEF\xBB\xBFORDER-ID , Nama Lengkap,Jumlah (QTY)\nA1,Budi,2\nA2,Sari,1\n"

		table, err := Parse(strings.NewReader(input), "orders.csv")

		require.NoError(t, err)
		assert.Equal(t, []string{"ORDER-ID", "Nama Lengkap", "Jumlah (QTY)"}, table.Headers)
		assert.Equal(t, EncodingUTF8, table.Encoding)
		assert.Equal(t, "orders.csv", table.SourceFile)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, types.RawRow{"ORDER-ID": "A1", "Nama Lengkap": "Budi", "Jumlah (QTY)": "2"}, table.Rows[0])
	})

	t.Run("latin1 fallback", func(t *testing.T) {
		// "José" and "Jl. Açaí" encoded as ISO-8859-1.
		input := []byte("Nama,Alamat\nJos\xE9,Jl. A\xE7a\xED\n")

		table, err := Parse(strings.NewReader(string(input)), "legacy.csv")

		require.NoError(t, err)
		assert.Equal(t, EncodingLatin1, table.Encoding)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "José", table.Rows[0]["Nama"])
		assert.Equal(t, "Jl. Açaí", table.Rows[0]["Alamat"])
	})

	t.Run("blank rows skipped and short rows padded", func(t *testing.T) {
		input := "a,b,c\n1,2,3\n,,\n\n4\n"

		table, err := Parse(strings.NewReader(input), "x.csv")

		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, types.RawRow{"a": "4", "b": "", "c": ""}, table.Rows[1])
	})

	t.Run("quoted multiline address", func(t *testing.T) {
		input := "Nama,Alamat\nBudi,\"Jl. Mawar 1\nRT 02\"\n"

		table, err := Parse(strings.NewReader(input), "x.csv")

		require.NoError(t, err)
		require.Len(t, table.Rows, 1)
		assert.Equal(t, "Jl. Mawar 1\nRT 02", table.Rows[0]["Alamat"])
	})

	t.Run("semicolon delimiter", func(t *testing.T) {
		input := "Nama;Alamat;QTY\nBudi;Jl. Mawar, Bandung;3\n"

		table, err := Parse(strings.NewReader(input), "x.csv")

		require.NoError(t, err)
		assert.Equal(t, []string{"Nama", "Alamat", "QTY"}, table.Headers)
		assert.Equal(t, "Jl. Mawar, Bandung", table.Rows[0]["Alamat"])
	})

	t.Run("header only", func(t *testing.T) {
		table, err := Parse(strings.NewReader("Nama,Alamat\n"), "x.csv")

		require.NoError(t, err)
		assert.Empty(t, table.Rows)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""), "x.csv")

		assert.True(t, errors.Is(err, ErrEmptyInput))
	})
}

func TestCleanHeaders(t *testing.T) {
	got := CleanHeaders([]string{"Nama ", "", "Nama", "Nama", "  "})

	assert.Equal(t, []string{"Nama", "Column_2", "Nama.1", "Nama.2", "Column_5"}, got)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte("ORDER-ID\nA1\n"), 0644))

	table, err := ParseFile(path)

	require.NoError(t, err)
	assert.Equal(t, path, table.SourceFile)
	assert.Len(t, table.Rows, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
