package schema

import (
	"testing"
)

func TestColumnsOrderStable(t *testing.T) {
	want := []string{
		"action", "scu", "name", "product_type_id", "product_kind_id",
		"unit_id", "category_id", "subcategory_id", "brand_id",
		"is_visible", "is_top", "is_new",
		"price", "price_sale", "price_vendor", "price_vendor_min",
		"price_zakup", "price_delivery", "montaj", "montaj_sebest",
		"related_scu",
		"work_scu", "work_name", "work_product_type_id", "work_category_id",
		"work_price", "work_price_sale", "work_price_vendor",
		"work_price_vendor_min", "work_price_zakup",
	}
	got := Columns(SheetProducts)
	if len(got) != len(want) {
		t.Fatalf("Columns(products) has %d keys, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAliasesResolveBothLocales(t *testing.T) {
	tests := []struct {
		sheet  Sheet
		header string
		want   string
	}{
		{SheetProducts, "Артикул", "scu"},
		{SheetProducts, "SCU", "scu"},
		{SheetProducts, "scu", "scu"},
		{SheetProducts, "  ДЕЙСТВИЕ ", "action"},
		{SheetProducts, "Цена со скидкой", "price_sale"},
		{SheetProducts, "Work purchase cost", "work_price_zakup"},
		{SheetDescriptions, "Краткое описание", "short"},
		{SheetAttributes, "Значение (число)", "value_number"},
		{SheetMedia, "Path", "path"},
	}

	for _, tt := range tests {
		aliases := Aliases(tt.sheet)
		got, ok := aliases[NormalizeHeader(tt.header)]
		if !ok {
			t.Errorf("%s: header %q not resolved", tt.sheet, tt.header)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: header %q = %q, want %q", tt.sheet, tt.header, got, tt.want)
		}
	}
}

func TestAliasesCoverEveryColumn(t *testing.T) {
	for _, s := range DataSheets {
		aliases := Aliases(s)
		for _, c := range ColumnDefs(s) {
			if aliases[NormalizeHeader(c.LabelRu)] != c.Key {
				t.Errorf("%s: ru label %q does not resolve to %q", s, c.LabelRu, c.Key)
			}
			if aliases[NormalizeHeader(c.LabelEn)] != c.Key {
				t.Errorf("%s: en label %q does not resolve to %q", s, c.LabelEn, c.Key)
			}
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Price  ", "price"},
		{"Цена поставщика", "цена поставщика"},
		{"Work   SCU", "work scu"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
