package domain

// FieldMapping is one row of the cell reference table. It identifies a single
// extractable data point by the sheet and cell it lives in.
//
// Mappings are immutable once loaded; the table as a whole is shared read-only
// across every workbook processed in a batch.
type FieldMapping struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	FieldName   string `json:"field_name"`
	SheetName   string `json:"sheet_name"`
	CellAddress string `json:"cell_address"`
}
