package core

// workbook.go builds multi-sheet XLSX exports.
//
// Each sheet is declared once by a SheetSpec; its header row is written
// immediately and records are then appended one at a time. Sheets appear in
// the order they were added. Cells for fields a record does not have are left
// empty.

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Workbook is an XLSX document under construction.
type Workbook struct {
	file   *excelize.File
	sheets []*SheetWriter
	names  map[string]bool
}

// SheetWriter appends records to one sheet of a Workbook.
type SheetWriter struct {
	file *excelize.File
	spec SheetSpec
	next int // 1-based row index of the next record
}

// SheetData pairs a sheet layout with its records.
type SheetData struct {
	Spec    SheetSpec
	Records []Fields
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{
		file:  excelize.NewFile(),
		names: make(map[string]bool),
	}
}

// AddSheet appends a sheet and writes its header row.
func (w *Workbook) AddSheet(spec SheetSpec) (*SheetWriter, error) {
	if err := checkSheetSpec(spec); err != nil {
		return nil, err
	}

	folded := strings.ToLower(spec.Name)
	if w.names[folded] {
		return nil, fmt.Errorf("workbook: duplicate sheet name %q", spec.Name)
	}

	if len(w.sheets) == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), spec.Name); err != nil {
			return nil, fmt.Errorf("workbook: sheet %q: %w", spec.Name, err)
		}
	} else if _, err := w.file.NewSheet(spec.Name); err != nil {
		return nil, fmt.Errorf("workbook: sheet %q: %w", spec.Name, err)
	}

	for i, h := range spec.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := w.file.SetCellValue(spec.Name, cell, h); err != nil {
			return nil, fmt.Errorf("workbook: header %q: %w", h, err)
		}
	}

	sw := &SheetWriter{file: w.file, spec: spec, next: 2}
	w.sheets = append(w.sheets, sw)
	w.names[folded] = true
	return sw, nil
}

// Append writes one record as the next row of the sheet.
func (s *SheetWriter) Append(fields Fields) error {
	for i, h := range s.spec.Headers {
		v, ok := fields[s.spec.Fields[h]]
		if !ok || v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, s.next)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(s.spec.Name, cell, cellValue(v)); err != nil {
			return fmt.Errorf("workbook: sheet %q cell %s: %w", s.spec.Name, cell, err)
		}
	}
	s.next++
	return nil
}

// Rows returns the number of records appended so far.
func (s *SheetWriter) Rows() int {
	return s.next - 2
}

// Bytes serializes the workbook. A workbook without sheets still holds the
// default empty sheet.
func (w *Workbook) Bytes() ([]byte, error) {
	w.file.SetActiveSheet(0)
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("workbook: write: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// BuildWorkbook writes every sheet with its records and returns the XLSX bytes.
func BuildWorkbook(sheets []SheetData) ([]byte, error) {
	wb := NewWorkbook()
	defer wb.Close()

	for _, sd := range sheets {
		sw, err := wb.AddSheet(sd.Spec)
		if err != nil {
			return nil, err
		}
		for _, rec := range sd.Records {
			if err := sw.Append(rec); err != nil {
				return nil, err
			}
		}
	}
	return wb.Bytes()
}

func checkSheetSpec(spec SheetSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("workbook: sheet name is empty")
	}
	for _, h := range spec.Headers {
		if _, ok := spec.Fields[h]; !ok {
			return fmt.Errorf("workbook: sheet %q: header %q has no field mapping", spec.Name, h)
		}
	}
	return nil
}

// cellValue passes through the types excelize writes natively and renders
// anything else (nested JSON values) as text.
func cellValue(v any) any {
	switch v.(type) {
	case string, float64, float32, int, int64, bool, time.Time:
		return v
	default:
		return CellString(v)
	}
}
