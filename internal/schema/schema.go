// Package schema is the static registry of the pricebook workbook layout.
//
// Each logical sheet has an ordered list of canonical column keys and a
// bilingual (russian/english) label per key. Headers in an uploaded workbook
// are matched against the alias table, so a sheet edited with either the
// localized or the ASCII header set resolves to the same canonical keys.
// The package is pure data: no errors, no side effects.
package schema

import "strings"

// Sheet identifies one logical sheet of the pricebook workbook.
type Sheet string

const (
	SheetProducts     Sheet = "products"
	SheetDescriptions Sheet = "descriptions"
	SheetAttributes   Sheet = "attributes"
	SheetMedia        Sheet = "media"

	// SheetLookups is export-only: it enumerates valid reference ids and is
	// ignored on import.
	SheetLookups Sheet = "lookups"
)

// Column describes one canonical column of a sheet.
type Column struct {
	Key     string // canonical key, stable across locales
	LabelRu string // localized header, written on export
	LabelEn string // ASCII header, accepted on import
}

type sheetDef struct {
	labelRu string
	labelEn string
	columns []Column
}

// DataSheets lists the sheets the import engine consumes, in processing order.
var DataSheets = []Sheet{SheetProducts, SheetDescriptions, SheetAttributes, SheetMedia}

// Columns returns the ordered canonical column keys for a sheet.
func Columns(s Sheet) []string {
	def := sheets[s]
	keys := make([]string, len(def.columns))
	for i, c := range def.columns {
		keys[i] = c.Key
	}
	return keys
}

// ColumnDefs returns the full column definitions for a sheet.
func ColumnDefs(s Sheet) []Column {
	return sheets[s].columns
}

// Label returns the localized display name of a sheet. This is the sheet
// name written on export.
func Label(s Sheet) string {
	return sheets[s].labelRu
}

// LabelEn returns the ASCII display name of a sheet, accepted as an
// alternative sheet name on import.
func LabelEn(s Sheet) string {
	return sheets[s].labelEn
}

// HeadersRu returns the localized header row for a sheet, in canonical order.
func HeadersRu(s Sheet) []string {
	def := sheets[s]
	hs := make([]string, len(def.columns))
	for i, c := range def.columns {
		hs[i] = c.LabelRu
	}
	return hs
}

// Aliases returns the header-alias lookup for a sheet: normalized header
// text to canonical key. Both labels and the key itself are accepted.
func Aliases(s Sheet) map[string]string {
	def := sheets[s]
	m := make(map[string]string, len(def.columns)*3)
	for _, c := range def.columns {
		m[NormalizeHeader(c.Key)] = c.Key
		m[NormalizeHeader(c.LabelRu)] = c.Key
		m[NormalizeHeader(c.LabelEn)] = c.Key
	}
	return m
}

// NormalizeHeader canonicalizes free-text header cells for alias lookup:
// lower-cased, NBSP converted, inner whitespace collapsed.
func NormalizeHeader(h string) string {
	h = strings.ReplaceAll(h, " ", " ")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), " ")
}

var sheets = map[Sheet]sheetDef{
	SheetProducts: {
		labelRu: "Товары",
		labelEn: "Products",
		columns: []Column{
			{Key: "action", LabelRu: "Действие", LabelEn: "Action"},
			{Key: "scu", LabelRu: "Артикул", LabelEn: "SCU"},
			{Key: "name", LabelRu: "Наименование", LabelEn: "Name"},
			{Key: "product_type_id", LabelRu: "ID типа товара", LabelEn: "Product type ID"},
			{Key: "product_kind_id", LabelRu: "ID вида товара", LabelEn: "Product kind ID"},
			{Key: "unit_id", LabelRu: "ID ед. измерения", LabelEn: "Unit ID"},
			{Key: "category_id", LabelRu: "ID категории", LabelEn: "Category ID"},
			{Key: "subcategory_id", LabelRu: "ID подкатегории", LabelEn: "Subcategory ID"},
			{Key: "brand_id", LabelRu: "ID бренда", LabelEn: "Brand ID"},
			{Key: "is_visible", LabelRu: "Видимость", LabelEn: "Visible"},
			{Key: "is_top", LabelRu: "Топ", LabelEn: "Top"},
			{Key: "is_new", LabelRu: "Новинка", LabelEn: "New"},
			{Key: "price", LabelRu: "Цена", LabelEn: "Price"},
			{Key: "price_sale", LabelRu: "Цена со скидкой", LabelEn: "Sale price"},
			{Key: "price_vendor", LabelRu: "Цена поставщика", LabelEn: "Vendor price"},
			{Key: "price_vendor_min", LabelRu: "Мин. цена поставщика", LabelEn: "Vendor min price"},
			{Key: "price_zakup", LabelRu: "Закупочная цена", LabelEn: "Purchase cost"},
			{Key: "price_delivery", LabelRu: "Стоимость доставки", LabelEn: "Delivery cost"},
			{Key: "montaj", LabelRu: "Монтаж", LabelEn: "Installation"},
			{Key: "montaj_sebest", LabelRu: "Себестоимость монтажа", LabelEn: "Installation cost basis"},
			{Key: "related_scu", LabelRu: "Связанные артикулы", LabelEn: "Related SCU"},
			{Key: "work_scu", LabelRu: "Артикул монтажа", LabelEn: "Work SCU"},
			{Key: "work_name", LabelRu: "Наименование монтажа", LabelEn: "Work name"},
			{Key: "work_product_type_id", LabelRu: "ID типа монтажа", LabelEn: "Work product type ID"},
			{Key: "work_category_id", LabelRu: "ID категории монтажа", LabelEn: "Work category ID"},
			{Key: "work_price", LabelRu: "Цена монтажа", LabelEn: "Work price"},
			{Key: "work_price_sale", LabelRu: "Цена монтажа со скидкой", LabelEn: "Work sale price"},
			{Key: "work_price_vendor", LabelRu: "Цена монтажа поставщика", LabelEn: "Work vendor price"},
			{Key: "work_price_vendor_min", LabelRu: "Мин. цена монтажа поставщика", LabelEn: "Work vendor min price"},
			{Key: "work_price_zakup", LabelRu: "Закупочная цена монтажа", LabelEn: "Work purchase cost"},
		},
	},
	SheetDescriptions: {
		labelRu: "Описания",
		labelEn: "Descriptions",
		columns: []Column{
			{Key: "scu", LabelRu: "Артикул", LabelEn: "SCU"},
			{Key: "short", LabelRu: "Краткое описание", LabelEn: "Short description"},
			{Key: "long", LabelRu: "Полное описание", LabelEn: "Long description"},
			{Key: "selling_points", LabelRu: "Преимущества", LabelEn: "Selling points"},
			{Key: "structure_notes", LabelRu: "Состав и структура", LabelEn: "Structure notes"},
			{Key: "marketplace_title", LabelRu: "Заголовок для маркетплейса", LabelEn: "Marketplace title"},
			{Key: "marketplace_text", LabelRu: "Текст для маркетплейса", LabelEn: "Marketplace text"},
		},
	},
	SheetAttributes: {
		labelRu: "Характеристики",
		labelEn: "Attributes",
		columns: []Column{
			{Key: "scu", LabelRu: "Артикул", LabelEn: "SCU"},
			{Key: "name", LabelRu: "Название характеристики", LabelEn: "Attribute name"},
			{Key: "value_string", LabelRu: "Значение (текст)", LabelEn: "Value (text)"},
			{Key: "value_number", LabelRu: "Значение (число)", LabelEn: "Value (number)"},
		},
	},
	SheetMedia: {
		labelRu: "Медиа",
		labelEn: "Media",
		columns: []Column{
			{Key: "scu", LabelRu: "Артикул", LabelEn: "SCU"},
			{Key: "type", LabelRu: "Тип", LabelEn: "Type"},
			{Key: "path", LabelRu: "Путь", LabelEn: "Path"},
			{Key: "sort", LabelRu: "Порядок", LabelEn: "Sort"},
		},
	},
	SheetLookups: {
		labelRu: "Справочники",
		labelEn: "Lookups",
		columns: []Column{
			{Key: "table", LabelRu: "Справочник", LabelEn: "Table"},
			{Key: "id", LabelRu: "ID", LabelEn: "ID"},
			{Key: "name", LabelRu: "Название", LabelEn: "Name"},
		},
	},
}
