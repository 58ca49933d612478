package core

import (
	"fmt"

	"github.com/Faxeron/back-home-new-sub000/internal/schema"
)

// Issue is a single validation problem found during import.
type Issue struct {
	Sheet   schema.Sheet
	Row     int // 1-based workbook row; 0 for sheet-level problems
	Message string
}

func (i Issue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("%s, row %d: %s", schema.Label(i.Sheet), i.Row, i.Message)
	}
	return fmt.Sprintf("%s: %s", schema.Label(i.Sheet), i.Message)
}

// Report accumulates validation issues across all import passes.
//
// Issues are collected, never thrown: every pass records what it finds and
// keeps scanning, so a single run reports as many problems as possible. Any
// issue present at the end of validation blocks persistence entirely.
type Report struct {
	Issues []Issue
}

// Add records a sheet-level issue (row 0) or a row-level one.
func (r *Report) Add(sheet schema.Sheet, row int, message string) {
	r.Issues = append(r.Issues, Issue{Sheet: sheet, Row: row, Message: message})
}

// Addf records an issue with a formatted message.
func (r *Report) Addf(sheet schema.Sheet, row int, format string, args ...any) {
	r.Add(sheet, row, fmt.Sprintf(format, args...))
}

// Merge appends another report's issues, preserving order.
func (r *Report) Merge(other Report) {
	r.Issues = append(r.Issues, other.Issues...)
}

// Empty reports whether no issues were recorded.
func (r *Report) Empty() bool {
	return len(r.Issues) == 0
}

// Strings renders every issue in the "<Sheet>, row <N>: <message>" format.
func (r *Report) Strings() []string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.String()
	}
	return out
}
