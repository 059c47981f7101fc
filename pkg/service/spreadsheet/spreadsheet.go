// Package spreadsheet reads framework source files into a header and data rows.
package spreadsheet

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for files other than csv, tsv and xlsx
	ErrUnsupportedFormat = goerr.New("unsupported spreadsheet format")

	// ErrEmptySheet is returned when the file has no header row
	ErrEmptySheet = goerr.New("spreadsheet has no header row")
)

const fileNameKey = "file_name"

// Sheet is a parsed spreadsheet. Rows may be shorter than Header.
type Sheet struct {
	Header []string
	Rows   [][]string
}

// Sample returns at most n data rows
func (s *Sheet) Sample(n int) [][]string {
	if n >= len(s.Rows) {
		return s.Rows
	}
	return s.Rows[:n]
}

// ContentType returns the MIME type for a supported file name, or "" otherwise
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".tsv":
		return "text/tab-separated-values"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return ""
	}
}

// Parse reads r according to the extension of name. xlsx files are read from
// their first sheet.
func Parse(name string, r io.Reader) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		records, err = readDelimited(r, ',')
	case ".tsv":
		records, err = readDelimited(r, '\t')
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "cannot parse file", goerr.V(fileNameKey, name))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read spreadsheet", goerr.V(fileNameKey, name))
	}

	return newSheet(records, name)
}

func readDelimited(r io.Reader, comma rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse delimited file")
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open xlsx")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read xlsx rows", goerr.V("sheet", sheets[0]))
	}
	return rows, nil
}

func newSheet(records [][]string, name string) (*Sheet, error) {
	start := -1
	for i, rec := range records {
		if !isBlank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, goerr.Wrap(ErrEmptySheet, "no header row found", goerr.V(fileNameKey, name))
	}

	header := make([]string, len(records[start]))
	for i, h := range records[start] {
		header[i] = strings.TrimSpace(h)
	}
	// UTF-8 BOM left by spreadsheet exports
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	sheet := &Sheet{Header: header}
	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		sheet.Rows = append(sheet.Rows, rec)
	}
	return sheet, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
