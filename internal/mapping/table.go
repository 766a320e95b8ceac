// Package mapping loads the cell reference table that drives extraction: one
// FieldMapping per extractable data point, keyed by a field name derived from
// the row's description.
package mapping

import (
	"regexp"
	"strings"

	"github.com/uwdash/uwextract/internal/domain"
)

// Collision records two reference rows whose descriptions derived the same
// field name. The later row wins; the earlier description is kept here so the
// overwrite is loud instead of silent.
type Collision struct {
	FieldName          string `json:"field_name"`
	KeptDescription    string `json:"kept_description"`
	DroppedDescription string `json:"dropped_description"`
}

// Table is the loaded mapping table. It is immutable after Load and safe to
// share across concurrent workbook extractions.
type Table struct {
	mappings   []domain.FieldMapping
	byName     map[string]int
	collisions []Collision
}

// NewTable builds a table from already-derived mappings. Entries sharing a
// field name follow the same last-writer-wins rule as Load.
func NewTable(mappings []domain.FieldMapping) *Table {
	table := &Table{byName: make(map[string]int, len(mappings))}
	for _, m := range mappings {
		if idx, exists := table.byName[m.FieldName]; exists {
			table.collisions = append(table.collisions, Collision{
				FieldName:          m.FieldName,
				KeptDescription:    m.Description,
				DroppedDescription: table.mappings[idx].Description,
			})
			table.mappings[idx] = m
			continue
		}
		table.byName[m.FieldName] = len(table.mappings)
		table.mappings = append(table.mappings, m)
	}
	return table
}

// Mappings returns the entries in table order.
func (t *Table) Mappings() []domain.FieldMapping {
	return t.mappings
}

// Len returns the number of distinct field mappings.
func (t *Table) Len() int {
	return len(t.mappings)
}

// Get looks up a mapping by derived field name.
func (t *Table) Get(fieldName string) (domain.FieldMapping, bool) {
	idx, ok := t.byName[fieldName]
	if !ok {
		return domain.FieldMapping{}, false
	}
	return t.mappings[idx], true
}

// Collisions returns the duplicate-name overwrites observed during load.
func (t *Table) Collisions() []Collision {
	return t.collisions
}

// Categories returns the number of distinct category labels.
func (t *Table) Categories() int {
	seen := make(map[string]struct{})
	for _, m := range t.mappings {
		seen[m.Category] = struct{}{}
	}
	return len(seen)
}

var nonAlnumRun = regexp.MustCompile(`[^A-Z0-9]+`)

// DeriveFieldName converts a reference-row description into its canonical
// field identifier: uppercased, with every run of non-alphanumeric characters
// collapsed to a single underscore.
func DeriveFieldName(description string) string {
	upper := strings.ToUpper(strings.TrimSpace(description))
	return strings.Trim(nonAlnumRun.ReplaceAllString(upper, "_"), "_")
}
