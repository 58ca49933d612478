package core

// export.go is the read-only inverse of the import engine: current catalog
// state re-emitted in the exact sheet/column layout the importer accepts, so
// an exported workbook can be edited and fed straight back in.

import (
	"context"
	"fmt"
	"strings"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
	"github.com/Faxeron/back-home-new-sub000/internal/workbook"
)

// ExportAttribute is one attribute value with its definition's name.
type ExportAttribute struct {
	Name  string
	Value AttributeValue
}

// ExportProduct is the full read-side projection of one catalog product.
type ExportProduct struct {
	SCU  string
	Name string

	ProductTypeID int64
	ProductKindID int64
	UnitID        int64
	CategoryID    int64
	SubcategoryID OptInt
	BrandID       OptInt

	IsVisible bool
	IsTop     bool
	IsNew     bool

	Prices Prices

	RelatedSCUs []string
	WorkSCU     string // SCU behind the INSTALLATION_WORK edge, "" if none

	Description DescriptionRow
	Attributes  []ExportAttribute
	Media       []MediaRow
}

// LookupRow is one entry of the export's reference sheet.
type LookupRow struct {
	Table string
	ID    int64
	Name  string
}

// ExportReader loads the read-side projection for one tenant/company.
type ExportReader interface {
	ListProducts(ctx context.Context, tenant, company int64) ([]ExportProduct, error)
	ListLookupRows(ctx context.Context, tenant, company int64) ([]LookupRow, error)
}

// Exporter emits the pricebook workbook from current catalog state.
type Exporter struct {
	reader ExportReader
}

// NewExporter creates an exporter over a catalog projection.
func NewExporter(reader ExportReader) *Exporter {
	return &Exporter{reader: reader}
}

// Export writes the four data sheets plus the lookups sheet. The action
// column is pre-filled with UPDATE: the export is meant to be re-imported
// after edits.
func (e *Exporter) Export(ctx context.Context, tenant, company int64, w *workbook.Writer) error {
	products, err := e.reader.ListProducts(ctx, tenant, company)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	productRows := make([][]string, 0, len(products))
	var descRows, attrRows, mediaRows [][]string

	for _, p := range products {
		productRows = append(productRows, productSheetRow(p))
		descRows = append(descRows, []string{
			p.SCU,
			p.Description.Short,
			p.Description.Long,
			p.Description.SellingPoints,
			p.Description.StructureNotes,
			p.Description.MarketplaceTitle,
			p.Description.MarketplaceText,
		})
		for _, a := range p.Attributes {
			row := []string{p.SCU, a.Name, "", ""}
			switch a.Value.Kind {
			case ValueNumber:
				row[3] = a.Value.Number.String()
			default:
				row[2] = a.Value.Text
			}
			attrRows = append(attrRows, row)
		}
		for _, m := range p.Media {
			mediaRows = append(mediaRows, []string{
				p.SCU, m.Type, m.Path, fmt.Sprintf("%d", m.Sort.Int64),
			})
		}
	}

	sheets := []struct {
		sheet schema.Sheet
		rows  [][]string
	}{
		{schema.SheetProducts, productRows},
		{schema.SheetDescriptions, descRows},
		{schema.SheetAttributes, attrRows},
		{schema.SheetMedia, mediaRows},
	}
	for _, s := range sheets {
		if err := w.AddSheet(schema.Label(s.sheet), schema.HeadersRu(s.sheet), s.rows); err != nil {
			return err
		}
	}

	lookups, err := e.reader.ListLookupRows(ctx, tenant, company)
	if err != nil {
		return fmt.Errorf("load lookup rows: %w", err)
	}
	lookupRows := make([][]string, 0, len(lookups))
	for _, l := range lookups {
		lookupRows = append(lookupRows, []string{l.Table, fmt.Sprintf("%d", l.ID), l.Name})
	}
	return w.AddSheet(schema.Label(schema.SheetLookups), schema.HeadersRu(schema.SheetLookups), lookupRows)
}

// WriteTemplate emits the workbook shape with header rows only.
func WriteTemplate(w *workbook.Writer) error {
	for _, s := range schema.DataSheets {
		if err := w.AddSheet(schema.Label(s), schema.HeadersRu(s), nil); err != nil {
			return err
		}
	}
	return w.AddSheet(schema.Label(schema.SheetLookups), schema.HeadersRu(schema.SheetLookups), nil)
}

// productSheetRow renders one product in the canonical products-sheet column
// order.
func productSheetRow(p ExportProduct) []string {
	return []string{
		string(ActionUpdate),
		p.SCU,
		p.Name,
		formatInt(p.ProductTypeID),
		formatInt(p.ProductKindID),
		formatInt(p.UnitID),
		formatInt(p.CategoryID),
		formatOptInt(p.SubcategoryID),
		formatOptInt(p.BrandID),
		formatBool(p.IsVisible),
		formatBool(p.IsTop),
		formatBool(p.IsNew),
		p.Prices.Price.String(),
		formatOptDec(p.Prices.Sale),
		formatOptDec(p.Prices.Vendor),
		formatOptDec(p.Prices.VendorMin),
		formatOptDec(p.Prices.Zakup),
		formatOptDec(p.Prices.Delivery),
		formatOptDec(p.Prices.Montaj),
		formatOptDec(p.Prices.MontajSebest),
		strings.Join(p.RelatedSCUs, ","),
		p.WorkSCU,
		"", "", "", "", "", "", "", "", // work detail columns stay blank on export
	}
}

func formatInt(v int64) string {
	return fmt.Sprintf("%d", v)
}

func formatOptInt(v OptInt) string {
	if !v.Valid {
		return ""
	}
	return formatInt(v.Int64)
}

func formatOptDec(v OptDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
