package extraction

import (
	"testing"

	"github.com/uwdash/uwextract/internal/workbook"
)

func TestParseCellAddress(t *testing.T) {
	tests := []struct {
		address string
		want    workbook.CellRef
	}{
		{"D6", workbook.CellRef{Address: "D6", Row: 6, Col: 4}},
		{"$G$6", workbook.CellRef{Address: "G6", Row: 6, Col: 7}},
		{"a1", workbook.CellRef{Address: "A1", Row: 1, Col: 1}},
		{"Z99", workbook.CellRef{Address: "Z99", Row: 99, Col: 26}},
		{"AA1", workbook.CellRef{Address: "AA1", Row: 1, Col: 27}},
		{"AB12", workbook.CellRef{Address: "AB12", Row: 12, Col: 28}},
		{"AAA1", workbook.CellRef{Address: "AAA1", Row: 1, Col: 703}},
		{" $C$5 ", workbook.CellRef{Address: "C5", Row: 5, Col: 3}},
	}

	for _, tt := range tests {
		got, err := ParseCellAddress(tt.address)
		if err != nil {
			t.Errorf("ParseCellAddress(%q) returned error: %v", tt.address, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCellAddress(%q) = %+v, want %+v", tt.address, got, tt.want)
		}
	}
}

func TestParseCellAddressInvalid(t *testing.T) {
	for _, address := range []string{"", "D", "6", "6D", "D6A", "D 6", "Sheet1!D6"} {
		if _, err := ParseCellAddress(address); err == nil {
			t.Errorf("ParseCellAddress(%q) expected error, got none", address)
		}
	}
}
