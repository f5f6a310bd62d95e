package core

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is the content of one uploaded worksheet.
type Sheet struct {
	Name    string
	Headers []string // Header row in column order, blank headers dropped
	Rows    []RawRow
}

// ReadFirstSheet parses the first worksheet of an XLSX upload. The first row
// holds the headers; every following row becomes a RawRow keyed by header.
// Empty cells are left out of the row and rows without any value are skipped.
// When a header repeats, the first column wins.
func ReadFirstSheet(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidSpreadsheet)
	}

	rows, err := f.GetRows(names[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpreadsheet, err)
	}

	sheet := &Sheet{Name: names[0]}
	if len(rows) == 0 {
		return sheet, nil
	}

	columns := make([]string, len(rows[0]))
	seen := make(map[string]bool, len(rows[0]))
	for i, h := range rows[0] {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		columns[i] = h
		sheet.Headers = append(sheet.Headers, h)
	}

	for _, cells := range rows[1:] {
		row := make(RawRow)
		for i, v := range cells {
			if i >= len(columns) || columns[i] == "" || v == "" {
				continue
			}
			row[columns[i]] = v
		}
		if len(row) > 0 {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	return sheet, nil
}
