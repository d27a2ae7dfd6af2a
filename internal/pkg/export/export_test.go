package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := NewTable("Students", "Index Number", "First Name", "Last Name")
	t.Append("NPR240001", "Ama", "Mensah")
	t.Append("NPR240002", "Kofi")
	return t
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"CSV", FormatCSV, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "students-20250109.xlsx", FileName("students", FormatXLSX, now))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().Write(&buf, FormatCSV))
	assert.True(t, strings.HasPrefix(buf.String(), "Index Number,First Name,Last Name\n"))

	records, err := ReadRecords(&buf, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "NPR240001", records[0].Get("index_number"))
	assert.Equal(t, "", records[1].Get("Last Name"))
	assert.Equal(t, 3, records[1].Line)
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleTable().Write(&buf, FormatXLSX))

	records, err := ReadRecords(bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Mensah", records[0].Get("lastName"))
	assert.Equal(t, "Kofi", records[1].Get("first name"))
}

func TestReadRecords_SkipsBlankRows(t *testing.T) {
	in := "firstName,lastName\n,\nAma,Mensah\n"
	records, err := ReadRecords(strings.NewReader(in), FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].Line)

	_, err = ReadRecords(strings.NewReader(""), FormatCSV)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestFormatFromFileName(t *testing.T) {
	f, err := FormatFromFileName("upload.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatFromFileName("upload.txt")
	assert.Error(t, err)
}
