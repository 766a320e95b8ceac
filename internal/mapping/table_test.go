package mapping

import (
	"testing"

	"github.com/uwdash/uwextract/internal/domain"
)

func TestDeriveFieldName(t *testing.T) {
	tests := []struct {
		description string
		want        string
	}{
		{"Units", "UNITS"},
		{"Avg. NRSF (Units)", "AVG_NRSF_UNITS"},
		{"Going-In Cap Rate", "GOING_IN_CAP_RATE"},
		{"Year 1 NOI", "YEAR_1_NOI"},
		{"  Exit Value  ", "EXIT_VALUE"},
		{"$ / Unit", "UNIT"},
		{"%%%", ""},
	}

	for _, tt := range tests {
		if got := DeriveFieldName(tt.description); got != tt.want {
			t.Errorf("DeriveFieldName(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestNewTableCollisions(t *testing.T) {
	table := NewTable([]domain.FieldMapping{
		{Category: "Property", Description: "Units", FieldName: "UNITS", SheetName: "Summary", CellAddress: "G6"},
		{Category: "Returns", Description: "Cap Rate", FieldName: "CAP_RATE", SheetName: "Summary", CellAddress: "D2"},
		{Category: "Property", Description: "Units!", FieldName: "UNITS", SheetName: "Assumptions", CellAddress: "B9"},
	})

	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after collision", table.Len())
	}

	// The later row wins, at the original position.
	m, ok := table.Get("UNITS")
	if !ok {
		t.Fatal("UNITS missing from table")
	}
	if m.SheetName != "Assumptions" || m.CellAddress != "B9" {
		t.Errorf("UNITS = %+v, want the later row", m)
	}
	if table.Mappings()[0].FieldName != "UNITS" {
		t.Errorf("collision must not reorder the table: %+v", table.Mappings())
	}

	collisions := table.Collisions()
	if len(collisions) != 1 {
		t.Fatalf("got %d collisions, want 1", len(collisions))
	}
	if collisions[0].FieldName != "UNITS" ||
		collisions[0].KeptDescription != "Units!" ||
		collisions[0].DroppedDescription != "Units" {
		t.Errorf("collision = %+v", collisions[0])
	}
}

func TestTableLookups(t *testing.T) {
	table := NewTable([]domain.FieldMapping{
		{Category: "Property", Description: "Units", FieldName: "UNITS", SheetName: "Summary", CellAddress: "G6"},
		{Category: "Returns", Description: "Cap Rate", FieldName: "CAP_RATE", SheetName: "Summary", CellAddress: "D2"},
	})

	if _, ok := table.Get("MISSING"); ok {
		t.Error("Get of unknown field name reported ok")
	}
	if table.Categories() != 2 {
		t.Errorf("Categories = %d, want 2", table.Categories())
	}
}
