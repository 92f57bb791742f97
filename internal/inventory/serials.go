package inventory

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseSerialsCSV takes the first column of every non-empty line.
// A first line whose first cell mentions "serial" is treated as a header.
func ParseSerialsCSV(r io.Reader) ([]string, error) {
	rows, err := readCSV(r)
	if err != nil {
		return nil, &ValidationError{Field: "serials", Reason: err.Error()}
	}
	return firstColumn(rows), nil
}

// ParseSerialsXLSX reads the first column of the workbook's first sheet.
func ParseSerialsXLSX(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: "not a readable xlsx workbook"}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ValidationError{Field: "file", Reason: err.Error()}
	}
	return firstColumn(rows), nil
}

func firstColumn(rows [][]string) []string {
	out := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(row[0])
		if cell == "" {
			continue
		}
		if i == 0 && strings.Contains(strings.ToLower(cell), "serial") {
			continue
		}
		out = append(out, cell)
	}
	return out
}

// readCSV accepts lines with any number of fields.
func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}
