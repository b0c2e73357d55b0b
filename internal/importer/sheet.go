package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// RawRow is one data row of an uploaded sheet. Cells are keyed by the
// header text. Number is the position in the file counting the header
// as row 1, so the first data row is 2; diagnostics use this numbering.
type RawRow struct {
	Number int               `json:"rowNumber"`
	Cells  map[string]string `json:"cells"`
}

// Table is the parsed form of an uploaded sheet.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []RawRow `json:"rows"`
}

// ParseSheet turns raw file bytes into a header row and ordered data
// rows. The format is chosen by the declared filename's extension.
func ParseSheet(fileName string, payload []byte) (Table, error) {
	if len(payload) == 0 {
		return Table{}, errors.New("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(payload)
	case ".xlsx":
		return parseExcel(payload)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parseCSV(payload []byte) (Table, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}

	return normalizeTable(records)
}

func parseExcel(payload []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return Table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("excel file has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return normalizeTable(records)
}

// normalizeTable takes raw records and produces a Table: the first
// non-empty row becomes the header, later empty rows are dropped, and
// short rows are padded so every row covers every header.
func normalizeTable(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, errors.New("no rows found in file")
	}

	var headerRow []string
	headerIndex := -1
	var dataStart int
	for idx, row := range records {
		if rowIsEmpty(row) {
			continue
		}
		headerRow = row
		headerIndex = idx
		dataStart = idx + 1
		break
	}
	if headerRow == nil {
		return Table{}, errors.New("no header row detected")
	}

	headers := make([]string, len(headerRow))
	for i, value := range headerRow {
		name := strings.TrimSpace(value)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = name
	}

	var rows []RawRow
	for idx := dataStart; idx < len(records); idx++ {
		row := records[idx]
		if rowIsEmpty(row) {
			continue
		}
		cells := make(map[string]string, len(headers))
		for col, header := range headers {
			if col < len(row) {
				cells[header] = row[col]
			} else {
				cells[header] = ""
			}
		}
		rows = append(rows, RawRow{
			// Header counts as row 1, so the first data row is 2.
			Number: idx - headerIndex + 1,
			Cells:  cells,
		})
	}

	return Table{Headers: headers, Rows: rows}, nil
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
