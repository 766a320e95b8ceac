package extraction

import (
	"testing"

	"github.com/uwdash/uwextract/internal/domain"
	"github.com/uwdash/uwextract/internal/workbook"
)

// fakeWorkbook emulates the legacy binary container: cells are stored sparsely
// under native 0-based (rowx, colx) coordinates, and a miss reports the scan
// extent.
type fakeWorkbook struct {
	names   []string
	cells   map[string]map[[2]int]any
	panicOn string
	closed  bool
}

func (f *fakeWorkbook) SheetNames() []string { return f.names }

func (f *fakeWorkbook) HasSheet(name string) bool {
	for _, n := range f.names {
		if n == name {
			return true
		}
	}
	return false
}

func (f *fakeWorkbook) CellValue(sheet string, ref workbook.CellRef) (any, error) {
	if ref.Address == f.panicOn {
		panic("corrupt record")
	}
	rowx, colx := ref.Row-1, ref.Col-1
	if value, ok := f.cells[sheet][[2]int{rowx, colx}]; ok {
		return value, nil
	}
	rows := 0
	seen := map[int]bool{}
	for coord := range f.cells[sheet] {
		if !seen[coord[0]] {
			seen[coord[0]] = true
			rows++
		}
	}
	return nil, &workbook.NotFoundError{RowsScanned: rows, Column: ref.Col}
}

func (f *fakeWorkbook) Close() error {
	f.closed = true
	return nil
}

func newFakeWorkbook() *fakeWorkbook {
	return &fakeWorkbook{
		names: []string{"Summary", "Assumptions"},
		cells: map[string]map[[2]int]any{
			// "Summary" holds 154 at native (rowx=5, colx=6), i.e. cell G6.
			"Summary": {
				{5, 6}: float64(154),
				{0, 0}: "Project Alpha",
			},
			"Assumptions": {
				{1, 3}: "#DIV/0!",
			},
		},
	}
}

func TestResolveValue(t *testing.T) {
	c := NewClassifier(nil)
	r := NewResolver(c)
	wb := newFakeWorkbook()

	got := r.Resolve(wb, domain.FieldMapping{
		FieldName:   "UNITS",
		SheetName:   "Summary",
		CellAddress: "$G$6",
	})
	if got != float64(154) {
		t.Errorf("Resolve(G6) = %v, want 154", got)
	}
	if len(c.Diagnostics()) != 0 {
		t.Errorf("successful resolve recorded diagnostics: %+v", c.Diagnostics())
	}
}

func TestResolveMissingSheet(t *testing.T) {
	c := NewClassifier(nil)
	r := NewResolver(c)
	wb := newFakeWorkbook()

	got := r.Resolve(wb, domain.FieldMapping{
		FieldName:   "NOI",
		SheetName:   "summary",
		CellAddress: "B2",
	})
	if got != nil {
		t.Errorf("Resolve = %v, want nil", got)
	}
	diags := c.Diagnostics()
	if len(diags) != 1 || diags[0].Category != domain.CategoryMissingSheet {
		t.Fatalf("diagnostics = %+v, want one missing_sheet", diags)
	}
	if diags[0].SuggestedFix != "similar sheets found: Summary" {
		t.Errorf("suggested fix = %q", diags[0].SuggestedFix)
	}
}

func TestResolveInvalidAddress(t *testing.T) {
	c := NewClassifier(nil)
	r := NewResolver(c)
	wb := newFakeWorkbook()

	if got := r.Resolve(wb, domain.FieldMapping{
		FieldName:   "NOI",
		SheetName:   "Summary",
		CellAddress: "not-a-cell",
	}); got != nil {
		t.Errorf("Resolve = %v, want nil", got)
	}
	if c.Count(domain.CategoryInvalidCellAddress) != 1 {
		t.Errorf("invalid_cell_address count = %d, want 1", c.Count(domain.CategoryInvalidCellAddress))
	}
}

func TestResolveCellNotFound(t *testing.T) {
	c := NewClassifier(nil)
	r := NewResolver(c)
	wb := newFakeWorkbook()

	if got := r.Resolve(wb, domain.FieldMapping{
		FieldName:   "NOI",
		SheetName:   "Summary",
		CellAddress: "Z500",
	}); got != nil {
		t.Errorf("Resolve = %v, want nil", got)
	}
	if c.Count(domain.CategoryCellNotFound) != 1 {
		t.Errorf("cell_not_found count = %d, want 1", c.Count(domain.CategoryCellNotFound))
	}
}

func TestResolveFormulaError(t *testing.T) {
	c := NewClassifier(nil)
	r := NewResolver(c)
	wb := newFakeWorkbook()

	if got := r.Resolve(wb, domain.FieldMapping{
		FieldName:   "CAP_RATE",
		SheetName:   "Assumptions",
		CellAddress: "D2",
	}); got != nil {
		t.Errorf("formula error resolved to %v, want nil", got)
	}
	if c.Count(domain.CategoryFormulaError) != 1 {
		t.Errorf("formula_error count = %d, want 1", c.Count(domain.CategoryFormulaError))
	}
}

func TestResolveRecoversFromPanic(t *testing.T) {
	c := NewClassifier(nil)
	r := NewResolver(c)
	wb := newFakeWorkbook()
	wb.panicOn = "A1"

	if got := r.Resolve(wb, domain.FieldMapping{
		FieldName:   "PROPERTY_NAME",
		SheetName:   "Summary",
		CellAddress: "A1",
	}); got != nil {
		t.Errorf("Resolve = %v, want nil", got)
	}
	if c.Count(domain.CategoryUnknownError) != 1 {
		t.Errorf("unknown_error count = %d, want 1", c.Count(domain.CategoryUnknownError))
	}
}
