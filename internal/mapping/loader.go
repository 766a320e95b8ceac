package mapping

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/uwdash/uwextract/internal/domain"
)

// ReferenceSheet is the sheet inside the reference workbook that holds the
// cell reference table.
const ReferenceSheet = "UW Model - Cell Reference Table"

// Fixed column positions within the reference sheet (0-based): category in B,
// description in C, sheet name in D, cell address in G.
const (
	categoryColumn    = 1
	descriptionColumn = 2
	sheetColumn       = 3
	addressColumn     = 6
)

// Loader parses the reference workbook into a Table. Unlike per-cell
// resolution, a reference table that cannot be loaded is fatal: there is no
// meaningful per-file fallback when the whole run depends on it.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader returns a loader for the reference workbook at path.
func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{path: path, logger: logger}
}

// Load reads the reference sheet and builds the mapping table. Rows missing
// any of the four required fields are skipped. Cell addresses are uppercased
// with dollar signs stripped. When two rows derive the same field name the
// later row overwrites the earlier one and the collision is recorded.
func (l *Loader) Load() (*Table, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file %s: %w", l.path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(ReferenceSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from reference file: %w", ReferenceSheet, err)
	}

	var entries []domain.FieldMapping
	for i, row := range rows {
		if i == 0 {
			// Header row.
			continue
		}

		category := cellAt(row, categoryColumn)
		description := cellAt(row, descriptionColumn)
		sheetName := cellAt(row, sheetColumn)
		address := cellAt(row, addressColumn)
		if category == "" || description == "" || sheetName == "" || address == "" {
			continue
		}

		entry := domain.FieldMapping{
			Category:    category,
			Description: description,
			FieldName:   DeriveFieldName(description),
			SheetName:   sheetName,
			CellAddress: strings.ToUpper(strings.ReplaceAll(address, "$", "")),
		}
		if entry.FieldName == "" {
			continue
		}
		entries = append(entries, entry)
	}

	table := NewTable(entries)
	for _, collision := range table.collisions {
		l.logger.Warn("duplicate_field_name",
			"field_name", collision.FieldName,
			"kept_description", collision.KeptDescription,
			"dropped_description", collision.DroppedDescription,
		)
	}

	l.logger.Info("mappings_loaded",
		"file_path", l.path,
		"count", table.Len(),
		"categories", table.Categories(),
		"collisions", len(table.collisions),
	)

	return table, nil
}

// ExportSummary writes a CSV summary of the loaded table for documentation.
func ExportSummary(table *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mapping summary: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Field Name", "Category", "Description", "Sheet", "Cell"}); err != nil {
		return fmt.Errorf("failed to write mapping summary header: %w", err)
	}
	for _, m := range table.Mappings() {
		if err := w.Write([]string{m.FieldName, m.Category, m.Description, m.SheetName, m.CellAddress}); err != nil {
			return fmt.Errorf("failed to write mapping summary row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush mapping summary: %w", err)
	}
	return nil
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
