package core

import (
	"strings"
	"testing"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

func TestResolveHeaders_RussianAndEnglish(t *testing.T) {
	// Media has a small header set: scu, type, path, sort.
	raw := []string{"Артикул", "type", "Путь", "SORT"}

	var rep Report
	resolved := ResolveHeaders(schema.SheetMedia, raw, &rep)

	if !rep.Empty() {
		t.Fatalf("Report.Issues = %v, want none", rep.Strings())
	}
	want := []string{"scu", "type", "path", "sort"}
	for i, key := range want {
		if resolved[i] != key {
			t.Errorf("resolved[%d] = %q, want %q", i, resolved[i], key)
		}
	}
}

func TestResolveHeaders_UnknownColumn(t *testing.T) {
	raw := []string{"Артикул", "Тип", "Путь", "Бонус"}

	var rep Report
	resolved := ResolveHeaders(schema.SheetMedia, raw, &rep)

	if len(rep.Issues) != 1 {
		t.Fatalf("len(Issues) = %d, want 1", len(rep.Issues))
	}
	if !strings.Contains(rep.Issues[0].Message, `unknown column "Бонус"`) {
		t.Errorf("issue = %q, want unknown column mention", rep.Issues[0].Message)
	}
	if resolved[3] != "" {
		t.Errorf("resolved[3] = %q, want empty for unknown header", resolved[3])
	}
}

func TestValidateHeaderSet(t *testing.T) {
	canonical := schema.Columns(schema.SheetMedia)

	t.Run("exact match", func(t *testing.T) {
		var rep Report
		idx, ok := ValidateHeaderSet(schema.SheetMedia, canonical, &rep)
		if !ok {
			t.Fatalf("ValidateHeaderSet ok = false, issues %v", rep.Strings())
		}
		if idx["path"] != 2 {
			t.Errorf(`idx["path"] = %d, want 2`, idx["path"])
		}
	})

	t.Run("reordered", func(t *testing.T) {
		shuffled := []string{"type", "scu", "path", "sort"}
		var rep Report
		_, ok := ValidateHeaderSet(schema.SheetMedia, shuffled, &rep)
		if ok {
			t.Fatal("ValidateHeaderSet ok = true for reordered headers")
		}
		if len(rep.Issues) != 1 {
			t.Errorf("len(Issues) = %d, want single sheet-level issue", len(rep.Issues))
		}
	})

	t.Run("missing column", func(t *testing.T) {
		var rep Report
		_, ok := ValidateHeaderSet(schema.SheetMedia, canonical[:3], &rep)
		if ok {
			t.Fatal("ValidateHeaderSet ok = true for truncated headers")
		}
	})
}
