// Package workbook abstracts "a file with named sheets of string rows".
//
// The import engine consumes the Source interface only; ExcelSource is the
// xlsx-backed implementation used in production. Export goes through Writer,
// which produces a workbook with a styled header row per sheet.
package workbook

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

// ErrSheetMissing is returned by Source.Rows when the workbook has no sheet
// under either the localized or the ASCII name.
var ErrSheetMissing = errors.New("sheet not found")

// Source yields the raw string rows of one logical sheet.
type Source interface {
	// Rows returns all rows of the sheet, header row included.
	Rows(sheet schema.Sheet) ([][]string, error)
	Close() error
}

// ExcelSource reads sheets from an xlsx workbook.
type ExcelSource struct {
	f *excelize.File
}

// Open opens an xlsx file from disk.
func Open(path string) (*ExcelSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &ExcelSource{f: f}, nil
}

// OpenReader opens an xlsx workbook from a stream.
func OpenReader(r io.Reader) (*ExcelSource, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &ExcelSource{f: f}, nil
}

// Rows returns every row of the sheet. The localized sheet name is tried
// first, then the ASCII one.
func (s *ExcelSource) Rows(sheet schema.Sheet) ([][]string, error) {
	for _, name := range []string{schema.Label(sheet), schema.LabelEn(sheet)} {
		idx, err := s.f.GetSheetIndex(name)
		if err != nil || idx < 0 {
			continue
		}
		rows, err := s.f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSheetMissing, schema.Label(sheet))
}

func (s *ExcelSource) Close() error {
	return s.f.Close()
}

// Writer builds an export workbook sheet by sheet.
type Writer struct {
	f           *excelize.File
	headerStyle int
	sheets      int
}

// NewWriter creates an empty workbook with the shared header style prepared.
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	return &Writer{f: f, headerStyle: style}, nil
}

// AddSheet appends a sheet with a styled header row followed by data rows.
func (w *Writer) AddSheet(name string, header []string, rows [][]string) error {
	if w.sheets == 0 {
		// excelize starts with a default "Sheet1"; rename it for the first sheet.
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %q: %w", name, err)
		}
	}
	w.sheets++

	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", name, err)
	}
	endCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return fmt.Errorf("header width of %q: %w", name, err)
	}
	if err := w.f.SetCellStyle(name, "A1", endCol+"1", w.headerStyle); err != nil {
		return fmt.Errorf("style header of %q: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row address in %q: %w", name, err)
		}
		r := row
		if err := w.f.SetSheetRow(name, cell, &r); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}

// Write serializes the workbook to a stream.
func (w *Writer) Write(out io.Writer) error {
	if err := w.f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveTo serializes the workbook to a file on disk.
func (w *Writer) SaveTo(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file resources.
func (w *Writer) Close() error {
	return w.f.Close()
}
