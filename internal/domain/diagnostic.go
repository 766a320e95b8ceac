package domain

import "time"

// ErrorCategory classifies a single failed cell resolution. The set is closed;
// anything that cannot be classified lands in CategoryUnknownError.
type ErrorCategory string

const (
	CategoryMissingSheet       ErrorCategory = "missing_sheet"
	CategoryInvalidCellAddress ErrorCategory = "invalid_cell_address"
	CategoryCellNotFound       ErrorCategory = "cell_not_found"
	CategoryFormulaError       ErrorCategory = "formula_error"
	CategoryDataTypeError      ErrorCategory = "data_type_error"
	CategoryEmptyValue         ErrorCategory = "empty_value"
	CategoryFileAccessError    ErrorCategory = "file_access_error"
	CategoryParsingError       ErrorCategory = "parsing_error"
	CategoryUnknownError       ErrorCategory = "unknown_error"
)

// AllCategories returns every category in a stable order, for counters and
// report breakdowns.
func AllCategories() []ErrorCategory {
	return []ErrorCategory{
		CategoryMissingSheet,
		CategoryInvalidCellAddress,
		CategoryCellNotFound,
		CategoryFormulaError,
		CategoryDataTypeError,
		CategoryEmptyValue,
		CategoryFileAccessError,
		CategoryParsingError,
		CategoryUnknownError,
	}
}

// Diagnostic describes one categorized field-level failure. Diagnostics are
// append-only; they are never mutated after creation.
type Diagnostic struct {
	Category      ErrorCategory `json:"category"`
	FieldName     string        `json:"field_name"`
	SheetName     string        `json:"sheet_name"`
	CellAddress   string        `json:"cell_address"`
	Message       string        `json:"message"`
	SuggestedFix  string        `json:"suggested_fix,omitempty"`
	OriginalValue any           `json:"original_value,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}
