package core

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
	"github.com/Faxeron/back-home-new-sub000/internal/workbook"
)

func exportProduct() ExportProduct {
	return ExportProduct{
		SCU:           "P-1",
		Name:          "Котел газовый",
		ProductTypeID: 1,
		ProductKindID: 2,
		UnitID:        3,
		CategoryID:    4,
		SubcategoryID: optInt(5),
		IsVisible:     true,
		Prices: Prices{
			Price: decimal.RequireFromString("45000.5"),
			Sale:  dec("42000"),
		},
		Description: DescriptionRow{SCU: "P-1", Short: "краткое", Long: "полное"},
		Attributes: []ExportAttribute{
			{Name: "Мощность", Value: NumberValue(decimal.RequireFromString("24"))},
			{Name: "Цвет", Value: TextValue("белый")},
		},
		Media: []MediaRow{
			{SCU: "P-1", Type: "image", Path: "p1.jpg", Sort: optInt(1)},
		},
	}
}

// exportToSource runs Export and reopens the produced workbook for reading.
func exportToSource(t *testing.T, store *fakeStore) *workbook.ExcelSource {
	t.Helper()
	svc := NewService(store)

	var buf bytes.Buffer
	if err := svc.Export(context.Background(), 1, 1, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	src, err := workbook.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { src.Close() })
	return src
}

func TestExport_SheetLayout(t *testing.T) {
	store := newFakeStore()
	store.products = []ExportProduct{exportProduct()}
	store.lookupRows = []LookupRow{
		{Table: "units", ID: 3, Name: "шт"},
	}

	src := exportToSource(t, store)

	rows, err := src.Rows(schema.SheetProducts)
	if err != nil {
		t.Fatalf("Rows(products) error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("products rows = %d, want header + 1", len(rows))
	}
	if rows[0][0] != "Действие" || rows[0][1] != "Артикул" {
		t.Errorf("header = %v, want localized labels", rows[0][:2])
	}
	if rows[1][0] != "UPDATE" {
		t.Errorf("action cell = %q, want prefilled UPDATE", rows[1][0])
	}
	if rows[1][1] != "P-1" || rows[1][12] != "45000.5" {
		t.Errorf("data row = scu %q price %q, want P-1 / 45000.5", rows[1][1], rows[1][12])
	}

	attrs, err := src.Rows(schema.SheetAttributes)
	if err != nil {
		t.Fatalf("Rows(attributes) error = %v", err)
	}
	if len(attrs) != 3 {
		t.Fatalf("attribute rows = %d, want header + 2", len(attrs))
	}
	// Numeric values land in the number column, text in the text column.
	if attrs[1][3] != "24" {
		t.Errorf("numeric attribute cell = %q, want 24", attrs[1][3])
	}
	if attrs[2][2] != "белый" {
		t.Errorf("text attribute cell = %q, want белый", attrs[2][2])
	}

	lookups, err := src.Rows(schema.SheetLookups)
	if err != nil {
		t.Fatalf("Rows(lookups) error = %v", err)
	}
	if len(lookups) != 2 || lookups[1][0] != "units" {
		t.Errorf("lookup rows = %v, want the units entry", lookups)
	}
}

// workExportProduct is the installation-work sibling as the export emits it:
// a plain product row, the tag living only in storage.
func workExportProduct() ExportProduct {
	return ExportProduct{
		SCU:           "W-1",
		Name:          "Монтаж котла",
		ProductTypeID: 10,
		ProductKindID: 2,
		UnitID:        3,
		CategoryID:    40,
		IsVisible:     true,
		Prices:        Prices{Price: decimal.RequireFromString("5000")},
	}
}

// The export contract: an untouched export must re-import cleanly as a
// no-op-shaped UPDATE batch.
func TestExport_RoundTripsThroughImport(t *testing.T) {
	parent := exportProduct()
	parent.WorkSCU = "W-1"

	store := newFakeStore()
	store.products = []ExportProduct{parent, workExportProduct()}
	store.existing = map[string]ExistingProduct{
		"P-1": {ID: 11, SCU: "P-1"},
		"W-1": {ID: 12, SCU: "W-1", WorkKind: WorkKindInstallationLinked},
	}
	store.defs = []AttributeDef{
		{ID: 1, Name: "Мощность", KindID: optInt(2), ValueKind: ValueNumber},
		{ID: 2, Name: "Цвет", ValueKind: ValueText},
	}

	src := exportToSource(t, store)

	svc := NewService(store, WithSourceOpener(func(string) (workbook.Source, error) {
		return src, nil
	}))
	sum, err := svc.Import(context.Background(), 1, 1, 42, "roundtrip.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(sum.Errors) != 0 {
		t.Fatalf("Errors = %v, want clean re-import", sum.Errors)
	}
	if sum.Updated != 2 || sum.Created != 0 {
		t.Errorf("Summary = %+v, want updated 2", sum)
	}

	id := int64(11)
	if _, ok := store.lastTx.updated[id]; !ok {
		t.Error("re-import did not update the stored product")
	}
	if got := len(store.lastTx.attrValues[id]); got != 2 {
		t.Errorf("attribute values = %d, want 2", got)
	}
	if got := len(store.lastTx.media[id]); got != 1 {
		t.Errorf("media rows = %d, want 1", got)
	}

	// The sibling comes back as a plain row; its stored tag must survive
	// the round trip.
	work, ok := store.lastTx.updated[12]
	if !ok {
		t.Fatal("re-import did not update the stored work product")
	}
	if work.WorkKind != WorkKindInstallationLinked {
		t.Errorf("work.WorkKind = %q, want installation tag preserved", work.WorkKind)
	}
	edges := store.lastTx.relations[id]
	if len(edges) != 1 || edges[0].Type != RelationInstallationWork || edges[0].RelatedID != 12 {
		t.Errorf("edges = %+v, want INSTALLATION_WORK to stored id 12", edges)
	}
}

func TestTemplate_WritesHeaderOnlyWorkbook(t *testing.T) {
	store := newFakeStore()
	path := filepath.Join(t.TempDir(), "pricebook.xlsx")
	svc := NewService(store, WithTemplatePath(path))

	got, err := svc.Template()
	if err != nil {
		t.Fatalf("Template() error = %v", err)
	}
	if got != path {
		t.Errorf("Template() = %q, want %q", got, path)
	}

	src, err := workbook.Open(path)
	if err != nil {
		t.Fatalf("Open(template) error = %v", err)
	}
	defer src.Close()

	for _, s := range schema.DataSheets {
		rows, err := src.Rows(s)
		if err != nil {
			t.Fatalf("Rows(%s) error = %v", s, err)
		}
		if len(rows) != 1 {
			t.Errorf("sheet %s rows = %d, want header only", s, len(rows))
		}
		want := schema.HeadersRu(s)
		for i, h := range want {
			if rows[0][i] != h {
				t.Errorf("sheet %s header[%d] = %q, want %q", s, i, rows[0][i], h)
				break
			}
		}
	}
	if _, err := src.Rows(schema.SheetLookups); err != nil {
		t.Errorf("Rows(lookups) error = %v, template must include the reference sheet", err)
	}
}
