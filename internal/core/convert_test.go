package core

import (
	"reflect"
	"testing"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{" padded ", "padded"},
		{"\t tab \n", "tab"},
		{"", ""},
		{"inner  space", "inner  space"},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"1234.56", "1234.56", true},
		// decimal comma
		{"1234,56", "1234.56", true},
		// thousands separators
		{"1 234,56", "1234.56", true},
		{"1 234,56", "1234.56", true},
		{"1,234.56", "1234.56", true},
		{"0", "0", true},
		{"-15,5", "-15.5", true},
		// multiple commas are all grouping
		{"12,34,56", "123456", true},
		{"", "", false},
		{"abc", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseDecimal(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseDecimal(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("ParseDecimal(%q) = %s, want %s", tt.input, got.String(), tt.want)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		ok    bool
	}{
		{"1", true, true},
		{"0", false, true},
		{"true", true, true},
		{"FALSE", false, true},
		{"yes", true, true},
		{"No", false, true},
		{"да", true, true},
		{"Нет", false, true},
		{"", false, false},
		{"maybe", false, false},
	}

	for _, tt := range tests {
		got, ok := ParseBool(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseBool(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"-3", -3, true},
		{"", 0, false},
		{"4.2", 0, false},
		{"x", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseInt(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseInt(%q) = (%d, %v), want (%d, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestIsEmptyRow(t *testing.T) {
	if !IsEmptyRow([]string{"", "  ", " "}) {
		t.Error("IsEmptyRow = false for whitespace-only row")
	}
	if IsEmptyRow([]string{"", "x"}) {
		t.Error("IsEmptyRow = true for row with content")
	}
	if !IsEmptyRow(nil) {
		t.Error("IsEmptyRow = false for nil row")
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Мощность", "мощность"},
		{"  Screen   Size ", "screen size"},
		{"ЦВЕТ", "цвет"},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.input); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitSCUList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"A-1,B-2", []string{"A-1", "B-2"}},
		{"A-1; B-2 ;C-3", []string{"A-1", "B-2", "C-3"}},
		{" A-1 ", []string{"A-1"}},
		{"A-1,,B-2", []string{"A-1", "B-2"}},
		{"", nil},
		{" , ; ", []string{}},
	}

	for _, tt := range tests {
		got := SplitSCUList(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitSCUList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
