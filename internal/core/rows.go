package core

// rows.go turns raw sheet rows into typed per-sheet row structs. Each sheet
// gets an explicit record with named fields; no generic maps travel past
// this point.
//
// Cell coercion failures are recorded against the row and mark it Bad, which
// excludes it from payload building without stopping the sheet scan.

import (
	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

// ProductRow is one parsed row of the products sheet.
type ProductRow struct {
	Line int
	Bad  bool // a cell failed coercion; issues already recorded

	ActionRaw string
	SCU       string
	Name      string

	ProductTypeID OptInt
	ProductKindID OptInt
	UnitID        OptInt
	CategoryID    OptInt
	SubcategoryID OptInt
	BrandID       OptInt

	IsVisible OptBool
	IsTop     OptBool
	IsNew     OptBool

	Price        OptDecimal
	PriceSale    OptDecimal
	PriceVendor  OptDecimal
	PriceVendMin OptDecimal
	PriceZakup   OptDecimal
	PriceDeliv   OptDecimal
	Montaj       OptDecimal
	MontajSebest OptDecimal

	RelatedSCUs []string

	WorkSCU         string
	WorkName        string
	WorkTypeID      OptInt
	WorkCategoryID  OptInt
	WorkPrice       OptDecimal
	WorkPriceSale   OptDecimal
	WorkPriceVendor OptDecimal
	WorkPriceVMin   OptDecimal
	WorkPriceZakup  OptDecimal
}

// DescriptionRow is one parsed row of the descriptions sheet.
type DescriptionRow struct {
	Line int

	SCU              string
	Short            string
	Long             string
	SellingPoints    string
	StructureNotes   string
	MarketplaceTitle string
	MarketplaceText  string
}

// AttributeRow is one parsed row of the attributes sheet.
type AttributeRow struct {
	Line int
	Bad  bool

	SCU         string
	Name        string
	ValueString string
	ValueNumber OptDecimal
}

// MediaRow is one parsed row of the media sheet.
type MediaRow struct {
	Line int
	Bad  bool

	SCU  string
	Type string
	Path string
	Sort OptInt
}

// ParsedSheets carries every parsed data sheet into reconciliation.
type ParsedSheets struct {
	Products     []ProductRow
	Descriptions []DescriptionRow
	Attributes   []AttributeRow
	Media        []MediaRow
}

// rowReader reads cells of one raw row by canonical key, recording coercion
// issues against the row's workbook line.
type rowReader struct {
	sheet schema.Sheet
	idx   HeaderIndex
	row   []string
	line  int
	rep   *Report
	bad   bool
}

func (r *rowReader) cell(key string) string {
	pos, ok := r.idx[key]
	if !ok || pos >= len(r.row) {
		return ""
	}
	return CleanCell(r.row[pos])
}

func (r *rowReader) decimal(key string) OptDecimal {
	raw := r.cell(key)
	if raw == "" {
		return OptDecimal{}
	}
	d, ok := ParseDecimal(raw)
	if !ok {
		r.rep.Addf(r.sheet, r.line, "field %q: invalid number %q", key, raw)
		r.bad = true
		return OptDecimal{}
	}
	return Dec(d)
}

func (r *rowReader) boolean(key string) OptBool {
	// Unrecognized boolean text is absent, not an immediate error; the
	// required-field check downstream reports it when the field matters.
	b, ok := ParseBool(r.cell(key))
	if !ok {
		return OptBool{}
	}
	return OptBool{Bool: b, Valid: true}
}

func (r *rowReader) integer(key string) OptInt {
	raw := r.cell(key)
	if raw == "" {
		return OptInt{}
	}
	i, ok := ParseInt(raw)
	if !ok {
		r.rep.Addf(r.sheet, r.line, "field %q: invalid integer %q", key, raw)
		r.bad = true
		return OptInt{}
	}
	return OptInt{Int64: i, Valid: true}
}

// ParseProductRows parses the products sheet's data rows. All-empty rows are
// skipped silently.
func ParseProductRows(idx HeaderIndex, rows [][]string, firstLine int, rep *Report) []ProductRow {
	out := make([]ProductRow, 0, len(rows))
	for i, raw := range rows {
		if IsEmptyRow(raw) {
			continue
		}
		r := rowReader{sheet: schema.SheetProducts, idx: idx, row: raw, line: firstLine + i, rep: rep}
		p := ProductRow{
			Line:      r.line,
			ActionRaw: r.cell("action"),
			SCU:       r.cell("scu"),
			Name:      r.cell("name"),

			ProductTypeID: r.integer("product_type_id"),
			ProductKindID: r.integer("product_kind_id"),
			UnitID:        r.integer("unit_id"),
			CategoryID:    r.integer("category_id"),
			SubcategoryID: r.integer("subcategory_id"),
			BrandID:       r.integer("brand_id"),

			IsVisible: r.boolean("is_visible"),
			IsTop:     r.boolean("is_top"),
			IsNew:     r.boolean("is_new"),

			Price:        r.decimal("price"),
			PriceSale:    r.decimal("price_sale"),
			PriceVendor:  r.decimal("price_vendor"),
			PriceVendMin: r.decimal("price_vendor_min"),
			PriceZakup:   r.decimal("price_zakup"),
			PriceDeliv:   r.decimal("price_delivery"),
			Montaj:       r.decimal("montaj"),
			MontajSebest: r.decimal("montaj_sebest"),

			RelatedSCUs: SplitSCUList(r.cell("related_scu")),

			WorkSCU:         r.cell("work_scu"),
			WorkName:        r.cell("work_name"),
			WorkTypeID:      r.integer("work_product_type_id"),
			WorkCategoryID:  r.integer("work_category_id"),
			WorkPrice:       r.decimal("work_price"),
			WorkPriceSale:   r.decimal("work_price_sale"),
			WorkPriceVendor: r.decimal("work_price_vendor"),
			WorkPriceVMin:   r.decimal("work_price_vendor_min"),
			WorkPriceZakup:  r.decimal("work_price_zakup"),
		}
		p.Bad = r.bad
		out = append(out, p)
	}
	return out
}

// ParseDescriptionRows parses the descriptions sheet's data rows.
func ParseDescriptionRows(idx HeaderIndex, rows [][]string, firstLine int) []DescriptionRow {
	out := make([]DescriptionRow, 0, len(rows))
	for i, raw := range rows {
		if IsEmptyRow(raw) {
			continue
		}
		r := rowReader{sheet: schema.SheetDescriptions, idx: idx, row: raw, line: firstLine + i}
		out = append(out, DescriptionRow{
			Line:             r.line,
			SCU:              r.cell("scu"),
			Short:            r.cell("short"),
			Long:             r.cell("long"),
			SellingPoints:    r.cell("selling_points"),
			StructureNotes:   r.cell("structure_notes"),
			MarketplaceTitle: r.cell("marketplace_title"),
			MarketplaceText:  r.cell("marketplace_text"),
		})
	}
	return out
}

// ParseAttributeRows parses the attributes sheet's data rows.
func ParseAttributeRows(idx HeaderIndex, rows [][]string, firstLine int, rep *Report) []AttributeRow {
	out := make([]AttributeRow, 0, len(rows))
	for i, raw := range rows {
		if IsEmptyRow(raw) {
			continue
		}
		r := rowReader{sheet: schema.SheetAttributes, idx: idx, row: raw, line: firstLine + i, rep: rep}
		a := AttributeRow{
			Line:        r.line,
			SCU:         r.cell("scu"),
			Name:        r.cell("name"),
			ValueString: r.cell("value_string"),
			ValueNumber: r.decimal("value_number"),
		}
		a.Bad = r.bad
		out = append(out, a)
	}
	return out
}

// ParseMediaRows parses the media sheet's data rows.
func ParseMediaRows(idx HeaderIndex, rows [][]string, firstLine int, rep *Report) []MediaRow {
	out := make([]MediaRow, 0, len(rows))
	for i, raw := range rows {
		if IsEmptyRow(raw) {
			continue
		}
		r := rowReader{sheet: schema.SheetMedia, idx: idx, row: raw, line: firstLine + i, rep: rep}
		m := MediaRow{
			Line: r.line,
			SCU:  r.cell("scu"),
			Type: r.cell("type"),
			Path: r.cell("path"),
			Sort: r.integer("sort"),
		}
		m.Bad = r.bad
		out = append(out, m)
	}
	return out
}
