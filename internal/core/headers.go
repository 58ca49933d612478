package core

// headers.go resolves a sheet's raw header row to canonical column keys.
//
// Header matching is alias-based: the registry accepts the localized label,
// the ASCII label, or the canonical key itself, all case/whitespace
// insensitively. The resolved header set must equal the canonical column
// sequence exactly, in order; a reordered or incomplete sheet is rejected
// with a single sheet-level issue and its rows are not validated further.

import (
	"strings"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

// HeaderIndex maps canonical column keys to their cell position.
type HeaderIndex map[string]int

// ResolveHeaders maps each raw header cell to its canonical key through the
// sheet's alias table. Unresolved headers are reported as unknown-column
// issues and yield an empty key; resolution of the remaining headers
// continues.
func ResolveHeaders(sheet schema.Sheet, raw []string, rep *Report) []string {
	aliases := schema.Aliases(sheet)
	resolved := make([]string, len(raw))
	for i, h := range raw {
		key, ok := aliases[schema.NormalizeHeader(h)]
		if !ok {
			rep.Addf(sheet, 1, "unknown column %q", CleanCell(h))
			continue
		}
		resolved[i] = key
	}
	return resolved
}

// ValidateHeaderSet checks the resolved header keys against the canonical
// column order. This is an equality check, not a subset check. On mismatch a
// single issue is recorded and false is returned; the caller skips the
// sheet's rows.
func ValidateHeaderSet(sheet schema.Sheet, resolved []string, rep *Report) (HeaderIndex, bool) {
	want := schema.Columns(sheet)
	ok := len(resolved) == len(want)
	if ok {
		for i := range want {
			if resolved[i] != want[i] {
				ok = false
				break
			}
		}
	}
	if !ok {
		rep.Addf(sheet, 1, "header row does not match the expected columns (%s)",
			strings.Join(want, ", "))
		return nil, false
	}

	idx := make(HeaderIndex, len(want))
	for i, key := range want {
		idx[key] = i
	}
	return idx, true
}
