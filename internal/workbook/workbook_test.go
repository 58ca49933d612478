package workbook

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

func buildWorkbook(t *testing.T, sheets map[string][][]string) *ExcelSource {
	t.Helper()

	w, err := NewWriter()
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for name, rows := range sheets {
		if len(rows) == 0 {
			t.Fatalf("sheet %q needs at least a header row", name)
		}
		if err := w.AddSheet(name, rows[0], rows[1:]); err != nil {
			t.Fatalf("AddSheet(%q): %v", name, err)
		}
	}

	var buf bytes.Buffer
	if err := w.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	src, err := OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestRoundTripLocalizedSheetName(t *testing.T) {
	src := buildWorkbook(t, map[string][][]string{
		schema.Label(schema.SheetMedia): {
			{"Артикул", "Тип", "Путь", "Порядок"},
			{"SCU-1", "image", "/img/1.png", "1"},
		},
	})

	rows, err := src.Rows(schema.SheetMedia)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][0] != "SCU-1" || rows[1][3] != "1" {
		t.Errorf("unexpected data row: %v", rows[1])
	}
}

func TestRowsAcceptsAsciiSheetName(t *testing.T) {
	src := buildWorkbook(t, map[string][][]string{
		schema.LabelEn(schema.SheetAttributes): {
			{"SCU", "Attribute name", "Value (text)", "Value (number)"},
		},
	})

	if _, err := src.Rows(schema.SheetAttributes); err != nil {
		t.Fatalf("Rows by ascii name: %v", err)
	}
}

func TestRowsMissingSheet(t *testing.T) {
	src := buildWorkbook(t, map[string][][]string{
		schema.Label(schema.SheetMedia): {{"Артикул", "Тип", "Путь", "Порядок"}},
	})

	_, err := src.Rows(schema.SheetProducts)
	if !errors.Is(err, ErrSheetMissing) {
		t.Fatalf("err = %v, want ErrSheetMissing", err)
	}
}
