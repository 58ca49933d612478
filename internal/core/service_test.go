package core

import (
	"context"
	"strings"
	"testing"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
	"github.com/Faxeron/back-home-new-sub000/internal/workbook"
)

// fakeStore serves canned reference data and counts opened transactions.
type fakeStore struct {
	lookups    LookupSets
	existing   map[string]ExistingProduct
	defs       []AttributeDef
	products   []ExportProduct
	lookupRows []LookupRow

	txCount int
	lastTx  *fakeTx
}

func (f *fakeStore) LoadLookups(context.Context, int64, int64) (LookupSets, error) {
	return f.lookups, nil
}

func (f *fakeStore) LoadProductsBySCU(context.Context, int64) (map[string]ExistingProduct, error) {
	if f.existing == nil {
		return map[string]ExistingProduct{}, nil
	}
	return f.existing, nil
}

func (f *fakeStore) LoadAttributeDefs(context.Context, int64, int64) ([]AttributeDef, error) {
	return f.defs, nil
}

func (f *fakeStore) ListProducts(context.Context, int64, int64) ([]ExportProduct, error) {
	return f.products, nil
}

func (f *fakeStore) ListLookupRows(context.Context, int64, int64) ([]LookupRow, error) {
	return f.lookupRows, nil
}

func (f *fakeStore) InTx(_ context.Context, _, _ int64, fn func(tx Tx) error) error {
	f.txCount++
	f.lastTx = newFakeTx()
	return fn(f.lastTx)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lookups: LookupSets{
			Types:         idSet(1, 10),
			Kinds:         idSet(2),
			Units:         idSet(3),
			Categories:    idSet(4, 40),
			Subcategories: idSet(5),
			Brands:        idSet(6),
		},
	}
}

// fakeSource serves raw sheet rows from memory.
type fakeSource struct {
	sheets map[schema.Sheet][][]string
}

func (f *fakeSource) Rows(s schema.Sheet) ([][]string, error) {
	rows, ok := f.sheets[s]
	if !ok {
		return nil, workbook.ErrSheetMissing
	}
	return rows, nil
}

func (f *fakeSource) Close() error { return nil }

// rawRow lays cell values out in the sheet's canonical column order.
func rawRow(sheet schema.Sheet, cells map[string]string) []string {
	keys := schema.Columns(sheet)
	row := make([]string, len(keys))
	for i, k := range keys {
		row[i] = cells[k]
	}
	return row
}

// emptySheets builds a workbook skeleton: every data sheet with just its
// localized header row.
func emptySheets() map[schema.Sheet][][]string {
	m := make(map[schema.Sheet][][]string, len(schema.DataSheets))
	for _, s := range schema.DataSheets {
		m[s] = [][]string{schema.HeadersRu(s)}
	}
	return m
}

func addRow(m map[schema.Sheet][][]string, sheet schema.Sheet, cells map[string]string) {
	m[sheet] = append(m[sheet], rawRow(sheet, cells))
}

func serviceOver(store *fakeStore, src *fakeSource) *Service {
	return NewService(store, WithSourceOpener(func(string) (workbook.Source, error) {
		return src, nil
	}))
}

func TestImport_AppliesCleanWorkbook(t *testing.T) {
	sheets := emptySheets()
	addRow(sheets, schema.SheetProducts, map[string]string{
		"action": "CREATE", "scu": "P-1", "name": "Котел",
		"product_type_id": "1", "product_kind_id": "2", "unit_id": "3",
		"category_id": "4", "price": "45 000,50",
	})
	addRow(sheets, schema.SheetDescriptions, map[string]string{
		"scu": "P-1", "short": "краткое",
	})
	addRow(sheets, schema.SheetAttributes, map[string]string{
		"scu": "P-1", "name": "Цвет", "value_string": "белый",
	})
	addRow(sheets, schema.SheetMedia, map[string]string{
		"scu": "P-1", "type": "image", "path": "p1.jpg", "sort": "1",
	})

	store := newFakeStore()
	svc := serviceOver(store, &fakeSource{sheets: sheets})

	sum, err := svc.Import(context.Background(), 1, 1, 42, "upload.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(sum.Errors) != 0 {
		t.Fatalf("Errors = %v, want none", sum.Errors)
	}
	if sum.Created != 1 {
		t.Errorf("Created = %d, want 1", sum.Created)
	}
	if store.txCount != 1 {
		t.Errorf("txCount = %d, want exactly 1", store.txCount)
	}

	id := store.lastTx.inserted["P-1"]
	if got := store.lastTx.pricing[id].Price.String(); got != "45000.5" {
		t.Errorf("price = %s, want locale-normalized 45000.5", got)
	}
	if len(store.lastTx.media[id]) != 1 {
		t.Errorf("media rows = %d, want 1", len(store.lastTx.media[id]))
	}
}

func TestImport_RejectsWithoutPersisting(t *testing.T) {
	sheets := emptySheets()
	addRow(sheets, schema.SheetProducts, map[string]string{
		"action": "CREATE", "scu": "P-1", "name": "Котел",
		"product_type_id": "999", // unknown reference
		"product_kind_id": "2", "unit_id": "3",
		"category_id": "4", "price": "100",
	})

	store := newFakeStore()
	svc := serviceOver(store, &fakeSource{sheets: sheets})

	sum, err := svc.Import(context.Background(), 1, 1, 42, "upload.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(sum.Errors) == 0 {
		t.Fatal("Errors empty, want validation issues")
	}
	if store.txCount != 0 {
		t.Errorf("txCount = %d, want 0 (nothing persists on a dirty report)", store.txCount)
	}
	if sum.Created != 0 || sum.Updated != 0 || sum.Archived != 0 {
		t.Errorf("Summary counts = %+v, want all zero", sum)
	}
}

func TestImport_HeaderMismatchSkipsRowValidation(t *testing.T) {
	sheets := emptySheets()
	// Drop the price column from the products header and its rows.
	hdr := schema.HeadersRu(schema.SheetProducts)
	sheets[schema.SheetProducts] = [][]string{hdr[:len(hdr)-1]}

	store := newFakeStore()
	svc := serviceOver(store, &fakeSource{sheets: sheets})

	sum, err := svc.Import(context.Background(), 1, 1, 42, "upload.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(sum.Errors) != 1 {
		t.Fatalf("Errors = %v, want the single header issue", sum.Errors)
	}
	if !strings.Contains(sum.Errors[0], "header row does not match") {
		t.Errorf("error = %q, want header mismatch", sum.Errors[0])
	}
	if store.txCount != 0 {
		t.Errorf("txCount = %d, want 0", store.txCount)
	}
}

func TestImport_MissingSheet(t *testing.T) {
	sheets := emptySheets()
	delete(sheets, schema.SheetMedia)

	store := newFakeStore()
	svc := serviceOver(store, &fakeSource{sheets: sheets})

	sum, err := svc.Import(context.Background(), 1, 1, 42, "upload.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	found := false
	for _, e := range sum.Errors {
		if strings.Contains(e, "Медиа") && strings.Contains(e, "sheet is missing") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want missing-sheet issue for Медиа", sum.Errors)
	}
}

func TestImport_EnglishHeadersAccepted(t *testing.T) {
	sheets := emptySheets()
	// Swap every header row for its ASCII form.
	for _, s := range schema.DataSheets {
		defs := schema.ColumnDefs(s)
		hdr := make([]string, len(defs))
		for i, c := range defs {
			hdr[i] = c.LabelEn
		}
		sheets[s] = [][]string{hdr}
	}
	addRow(sheets, schema.SheetProducts, map[string]string{
		"action": "create", "scu": "P-1", "name": "Boiler",
		"product_type_id": "1", "product_kind_id": "2", "unit_id": "3",
		"category_id": "4", "price": "100",
	})
	addRow(sheets, schema.SheetDescriptions, map[string]string{
		"scu": "P-1", "short": "short text",
	})

	store := newFakeStore()
	svc := serviceOver(store, &fakeSource{sheets: sheets})

	sum, err := svc.Import(context.Background(), 1, 1, 42, "upload.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(sum.Errors) != 0 {
		t.Fatalf("Errors = %v, want none", sum.Errors)
	}
	if sum.Created != 1 {
		t.Errorf("Created = %d, want 1", sum.Created)
	}
}

func TestImport_EmptyRowsSkipped(t *testing.T) {
	sheets := emptySheets()
	addRow(sheets, schema.SheetProducts, map[string]string{
		"action": "CREATE", "scu": "P-1", "name": "Котел",
		"product_type_id": "1", "product_kind_id": "2", "unit_id": "3",
		"category_id": "4", "price": "100",
	})
	sheets[schema.SheetProducts] = append(sheets[schema.SheetProducts],
		make([]string, len(schema.Columns(schema.SheetProducts))))
	addRow(sheets, schema.SheetDescriptions, map[string]string{
		"scu": "P-1", "short": "краткое",
	})

	store := newFakeStore()
	svc := serviceOver(store, &fakeSource{sheets: sheets})

	sum, err := svc.Import(context.Background(), 1, 1, 42, "upload.xlsx")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(sum.Errors) != 0 {
		t.Fatalf("Errors = %v, want none (blank row is not an error)", sum.Errors)
	}
	if sum.Created != 1 {
		t.Errorf("Created = %d, want 1", sum.Created)
	}
}
