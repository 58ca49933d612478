package core

// convert.go handles the messy reality of human-edited spreadsheet cells:
// thousands separators (spaces, non-breaking spaces, commas), comma decimal
// separators, and localized boolean vocabulary.

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CleanCell trims whitespace (including NBSP) from a cell value.
func CleanCell(s string) string {
	return strings.Trim(s, " \t\r\n ")
}

// ParseDecimal parses a numeric cell.
//
// Spaces and non-breaking spaces are stripped as digit grouping. A comma is
// treated as the decimal separator only when the value carries no dot and a
// single comma; otherwise commas are thousands separators and are stripped.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = CleanCell(s)
	if s == "" {
		return decimal.Decimal{}, false
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseBool parses a boolean cell against the accepted vocabulary
// (1/0, true/false, yes/no, да/нет, case-insensitive). Anything else is
// reported as absent, which trips the required-field check downstream.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(CleanCell(s)) {
	case "1", "true", "yes", "да":
		return true, true
	case "0", "false", "no", "нет":
		return false, true
	}
	return false, false
}

// ParseInt parses an integer cell (lookup ids, sort order).
func ParseInt(s string) (int64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// IsEmptyRow reports whether every cell of the row is blank. Such rows are
// silently skipped, not errors.
func IsEmptyRow(row []string) bool {
	for _, c := range row {
		if CleanCell(c) != "" {
			return false
		}
	}
	return true
}

// NormalizeName canonicalizes attribute names for case/whitespace-insensitive
// matching against existing definitions.
func NormalizeName(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}

// SplitSCUList splits a delimited related-SCU cell. Commas and semicolons
// are both accepted; blanks are dropped.
func SplitSCUList(s string) []string {
	if CleanCell(s) == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = CleanCell(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
