package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile is returned when an upload has no header row
var ErrEmptyFile = errors.New("file has no header row")

// Record is one data row keyed by normalised header name
type Record struct {
	Line   int
	Values map[string]string
}

// Get returns the trimmed value for header key
func (r Record) Get(key string) string {
	return strings.TrimSpace(r.Values[NormalizeHeader(key)])
}

// NormalizeHeader lowercases and strips spaces, dashes and underscores ("Index Number" => "indexnumber")
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// FormatFromFileName picks the format from a file extension
func FormatFromFileName(name string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ReadRecords parses a CSV or XLSX upload whose first row is the header.
// Blank rows are skipped; Line is the 1-based row number in the file.
func ReadRecords(r io.Reader, f Format) ([]Record, error) {
	var rows [][]string
	var err error

	switch f {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err = cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
	case FormatXLSX:
		rows, err = readXLSX(r)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = NormalizeHeader(strings.TrimPrefix(h, "\ufeff"))
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(row) {
				values[h] = row[j]
			}
		}
		records = append(records, Record{Line: i + 2, Values: values})
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return rows, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
