package mapping

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/uwdash/uwextract/internal/domain"
)

// writeReferenceFile builds a reference workbook with the fixed column layout:
// category in B, description in C, sheet name in D, cell address in G.
func writeReferenceFile(t *testing.T, rows [][4]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ReferenceSheet); err != nil {
		t.Fatalf("failed to rename sheet: %v", err)
	}

	header := [4]string{"Category", "Description", "Sheet", "Cell"}
	all := append([][4]string{header}, rows...)
	for i, row := range all {
		rowNum := i + 1
		set := func(col, value string) {
			if err := f.SetCellValue(ReferenceSheet, col+strconv.Itoa(rowNum), value); err != nil {
				t.Fatalf("failed to set cell: %v", err)
			}
		}
		set("B", row[0])
		set("C", row[1])
		set("D", row[2])
		set("G", row[3])
	}

	path := filepath.Join(t.TempDir(), "reference.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save reference file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeReferenceFile(t, [][4]string{
		{"Property", "Units", "Summary", "$G$6"},
		{"Returns", "Going-In Cap Rate", "Assumptions", "d2"},
		{"", "Skipped (no category)", "Summary", "A1"},
		{"Property", "", "Summary", "A2"},
	})

	table, err := NewLoader(path, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2 (incomplete rows skipped)", table.Len())
	}

	units, ok := table.Get("UNITS")
	if !ok {
		t.Fatal("UNITS missing")
	}
	if units.CellAddress != "G6" {
		t.Errorf("UNITS address = %q, want dollar signs stripped", units.CellAddress)
	}
	if units.Category != "Property" || units.SheetName != "Summary" {
		t.Errorf("UNITS = %+v", units)
	}

	capRate, ok := table.Get("GOING_IN_CAP_RATE")
	if !ok {
		t.Fatal("GOING_IN_CAP_RATE missing")
	}
	if capRate.CellAddress != "D2" {
		t.Errorf("cap rate address = %q, want uppercased D2", capRate.CellAddress)
	}
}

func TestLoaderCollision(t *testing.T) {
	path := writeReferenceFile(t, [][4]string{
		{"Property", "Units", "Summary", "G6"},
		{"Property", "Units", "Assumptions", "B9"},
	})

	table, err := NewLoader(path, nil).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if table.Len() != 1 {
		t.Fatalf("Len = %d, want 1", table.Len())
	}
	m, _ := table.Get("UNITS")
	if m.SheetName != "Assumptions" {
		t.Errorf("collision winner = %+v, want the later row", m)
	}
	if len(table.Collisions()) != 1 {
		t.Errorf("got %d collisions, want 1", len(table.Collisions()))
	}
}

func TestLoaderMissingFile(t *testing.T) {
	if _, err := NewLoader(filepath.Join(t.TempDir(), "missing.xlsx"), nil).Load(); err == nil {
		t.Error("Load of missing file returned no error")
	}
}

func TestLoaderMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "wrong.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	_ = f.Close()

	if _, err := NewLoader(path, nil).Load(); err == nil {
		t.Error("Load without the reference sheet returned no error")
	}
}

func TestExportSummary(t *testing.T) {
	table := NewTable([]domain.FieldMapping{
		{Category: "Property", Description: "Units", FieldName: "UNITS", SheetName: "Summary", CellAddress: "G6"},
	})

	path := filepath.Join(t.TempDir(), "summary.csv")
	if err := ExportSummary(table, path); err != nil {
		t.Fatalf("ExportSummary failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open summary: %v", err)
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse summary: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(records))
	}
	if records[1][0] != "UNITS" || records[1][4] != "G6" {
		t.Errorf("summary row = %v", records[1])
	}
}
