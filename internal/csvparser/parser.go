// =============================================================================
// Order Invoicer - CSV Parser Module
// =============================================================================
//
// This module reads order exports (typically a Google Form "Responses" sheet
// downloaded as CSV) into a types.Table. It handles:
//   - UTF-8 input, with or without a byte order mark
//   - Legacy ISO-8859-1 (Latin-1) input when the bytes are not valid UTF-8
//   - Comma or semicolon delimiters (spreadsheet exports in some locales
//     use semicolons)
//   - Ragged rows, lazy quotes and fully blank rows
//
// HEADER RULES:
//   - Labels are trimmed
//   - A blank label becomes Column_N (1-based column position)
//   - A repeated label gets a numeric suffix: "Nama", "Nama.1", "Nama.2"
//
// =============================================================================

package csvparser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/order-invoicer/internal/types"
)

const (
	EncodingUTF8   = "UTF-8"
	EncodingLatin1 = "ISO-8859-1"
)

// ErrEmptyInput is returned when the input has no header row.
var ErrEmptyInput = errors.New("input contains no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads the CSV file at path.
func ParseFile(path string) (*types.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file, path)
}

// Parse reads CSV data from r and returns the parsed table.
//
// PARAMETERS:
//   - r: The CSV bytes. The whole input is read so the encoding can be
//     decided before parsing.
//   - name: The source name recorded on the table (path or upload name).
//
// RETURNS:
//   - The parsed table. Rows may be empty when the file only has a header.
//   - ErrEmptyInput when there is no header row, or a wrapped read error.
//
// PARSING PROCESS:
//   1. Read all bytes and strip a UTF-8 byte order mark
//   2. Decode as Latin-1 when the bytes are not valid UTF-8
//   3. Detect the delimiter from the header line
//   4. Clean the header row, then map each non-blank row by label
func Parse(r io.Reader, name string) (*types.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	text, encoding, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}

	csvReader := csv.NewReader(strings.NewReader(text))
	configureReader(csvReader, detectDelimiter(text))

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", name, err)
	}

	if len(allRows) == 0 || isRowEmpty(allRows[0]) {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyInput)
	}

	headers := CleanHeaders(allRows[0])

	return &types.Table{
		Headers:    headers,
		Rows:       extractDataRows(allRows[1:], headers),
		SourceFile: name,
		Encoding:   encoding,
	}, nil
}

// decode returns data as UTF-8 text along with the encoding it was read as.
func decode(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}

	// Every byte sequence is valid Latin-1, so this cannot fail on content.
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(decoded), EncodingLatin1, nil
}

// detectDelimiter picks ';' when the header line has more semicolons than
// commas, and ',' otherwise.
func detectDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}

	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}

// configureReader applies the reader settings used for every order export.
func configureReader(reader *csv.Reader, delimiter rune) {
	reader.Comma = delimiter

	// Form exports regularly contain ragged rows and stray quotes in
	// free-text answers such as addresses.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// CleanHeaders trims header labels, names blank ones Column_N and suffixes
// repeated ones with ".1", ".2", ...
//
// EXAMPLE:
//
//	["Nama ", "", "Nama", "Nama"] -> ["Nama", "Column_2", "Nama.1", "Nama.2"]
func CleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		label := header
		for n := 1; seen[label]; n++ {
			label = fmt.Sprintf("%s.%d", header, n)
		}

		seen[label] = true
		cleaned[i] = label
	}

	return cleaned
}

// extractDataRows converts rows to RawRows keyed by header, skipping blank
// rows. Cells beyond the header width are dropped; missing trailing cells
// become empty strings.
func extractDataRows(rows [][]string, headers []string) []types.RawRow {
	dataRows := make([]types.RawRow, 0, len(rows))

	for _, row := range rows {
		if isRowEmpty(row) {
			continue
		}

		rawRow := make(types.RawRow, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				rawRow[header] = row[colIndex]
			} else {
				rawRow[header] = ""
			}
		}

		dataRows = append(dataRows, rawRow)
	}

	return dataRows
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
