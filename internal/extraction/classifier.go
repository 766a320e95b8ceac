package extraction

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/uwdash/uwextract/internal/domain"
)

// formulaErrorCodes are checked in this order so diagnostics are stable.
var formulaErrorCodes = []string{"#REF!", "#VALUE!", "#DIV/0!", "#NAME?", "#N/A", "#NULL!", "#NUM!"}

var formulaErrorMeanings = map[string]string{
	"#REF!":   "invalid cell reference",
	"#VALUE!": "wrong data type for operation",
	"#DIV/0!": "division by zero",
	"#NAME?":  "unrecognized function or name",
	"#N/A":    "value not available",
	"#NULL!":  "incorrect range operator",
	"#NUM!":   "invalid numeric value",
}

// missingSentinels are text values treated as intentionally absent data,
// compared case-insensitively after trimming.
var missingSentinels = map[string]struct{}{
	"n/a":  {},
	"na":   {},
	"null": {},
	"none": {},
	"":     {},
	"-":    {},
	"tbd":  {},
	"tba":  {},
}

// Classifier normalizes every raw cell read into either a usable value or nil,
// recording one categorized diagnostic per abnormal case. It never returns an
// error and never panics; a nil result always has a matching diagnostic.
//
// A Classifier belongs to a single workbook pass and is not safe for
// concurrent use.
type Classifier struct {
	logger      *slog.Logger
	diagnostics []domain.Diagnostic
	counts      map[domain.ErrorCategory]int
}

// NewClassifier returns a classifier that reports through logger. A nil logger
// discards log output; diagnostics are still accumulated.
func NewClassifier(logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	counts := make(map[domain.ErrorCategory]int, len(domain.AllCategories()))
	for _, category := range domain.AllCategories() {
		counts[category] = 0
	}
	return &Classifier{logger: logger, counts: counts}
}

// MissingSheet records a lookup against a sheet the workbook does not have,
// suggesting up to three similarly named sheets.
func (c *Classifier) MissingSheet(field, sheet string, available []string) any {
	var fix string
	if similar := similarSheets(sheet, available); len(similar) > 0 {
		if len(similar) > 3 {
			similar = similar[:3]
		}
		fix = "similar sheets found: " + strings.Join(similar, ", ")
	}
	c.record(domain.Diagnostic{
		Category:     domain.CategoryMissingSheet,
		FieldName:    field,
		SheetName:    sheet,
		CellAddress:  "N/A",
		Message:      fmt.Sprintf("sheet %q not found in workbook", sheet),
		SuggestedFix: fix,
	})
	return nil
}

// InvalidCellAddress records an address that failed to parse.
func (c *Classifier) InvalidCellAddress(field, sheet, address string, cause error) any {
	c.record(domain.Diagnostic{
		Category:     domain.CategoryInvalidCellAddress,
		FieldName:    field,
		SheetName:    sheet,
		CellAddress:  address,
		Message:      fmt.Sprintf("invalid cell address: %v", cause),
		SuggestedFix: "check the cell address format in the reference table (e.g. A1, B10, $C$5)",
	})
	return nil
}

// CellNotFound records an address that parsed but matched no cell in the
// container, along with the observed scan extent.
func (c *Classifier) CellNotFound(field, sheet, address string, rowsScanned, column int) any {
	fix := "check whether the cell address is within the sheet bounds"
	if rowsScanned > 0 {
		fix = fmt.Sprintf("sheet has %d populated rows; target column was %d", rowsScanned, column)
	}
	c.record(domain.Diagnostic{
		Category:     domain.CategoryCellNotFound,
		FieldName:    field,
		SheetName:    sheet,
		CellAddress:  address,
		Message:      fmt.Sprintf("cell %s not found or outside sheet bounds", address),
		SuggestedFix: fix,
	})
	return nil
}

// DataTypeError records a value that could not be coerced to the expected type.
func (c *Classifier) DataTypeError(field, sheet, address string, value any, expected string) any {
	c.record(domain.Diagnostic{
		Category:      domain.CategoryDataTypeError,
		FieldName:     field,
		SheetName:     sheet,
		CellAddress:   address,
		Message:       fmt.Sprintf("cannot convert %v to %s", value, expected),
		OriginalValue: value,
		SuggestedFix:  fmt.Sprintf("ensure the cell contains valid %s data", expected),
	})
	return nil
}

// EmptyValue records a blank cell or a recognized null-text sentinel.
func (c *Classifier) EmptyValue(field, sheet, address string, original any) any {
	c.record(domain.Diagnostic{
		Category:      domain.CategoryEmptyValue,
		FieldName:     field,
		SheetName:     sheet,
		CellAddress:   address,
		Message:       "cell is empty or contains a null value",
		OriginalValue: original,
	})
	return nil
}

// FileAccessError records a container that could not be opened at all. This is
// reported once per file, not per field.
func (c *Classifier) FileAccessError(field, message string) any {
	c.record(domain.Diagnostic{
		Category:     domain.CategoryFileAccessError,
		FieldName:    field,
		SheetName:    "N/A",
		CellAddress:  "N/A",
		Message:      "file access error: " + message,
		SuggestedFix: "check the file path, permissions, and format",
	})
	return nil
}

// ParsingError records any other failure raised while reading a cell.
func (c *Classifier) ParsingError(field, sheet, address string, cause error) any {
	c.record(domain.Diagnostic{
		Category:     domain.CategoryParsingError,
		FieldName:    field,
		SheetName:    sheet,
		CellAddress:  address,
		Message:      fmt.Sprintf("parsing error: %v", cause),
		SuggestedFix: "check the cell content format and data validity",
	})
	return nil
}

// UnknownError is the catch-all for anything the other categories miss.
func (c *Classifier) UnknownError(field, sheet, address, message string) any {
	c.record(domain.Diagnostic{
		Category:    domain.CategoryUnknownError,
		FieldName:   field,
		SheetName:   sheet,
		CellAddress: address,
		Message:     "unexpected error: " + message,
	})
	return nil
}

func (c *Classifier) formulaError(field, sheet, address, code string) any {
	c.record(domain.Diagnostic{
		Category:      domain.CategoryFormulaError,
		FieldName:     field,
		SheetName:     sheet,
		CellAddress:   address,
		Message:       fmt.Sprintf("formula error %s: %s", code, formulaErrorMeanings[code]),
		OriginalValue: code,
		SuggestedFix:  fmt.Sprintf("fix the formula causing the %s error", code),
	})
	return nil
}

// ProcessValue normalizes a raw cell value. Strings are trimmed; formula error
// codes, null-text sentinels, blanks, and non-finite numbers collapse to nil
// with a diagnostic. Booleans and timestamps pass through unchanged; anything
// else is stringified best-effort.
func (c *Classifier) ProcessValue(value any, field, sheet, address string) any {
	switch v := value.(type) {
	case nil:
		return c.EmptyValue(field, sheet, address, nil)
	case string:
		for _, code := range formulaErrorCodes {
			if strings.Contains(v, code) {
				return c.formulaError(field, sheet, address, code)
			}
		}
		trimmed := strings.TrimSpace(v)
		if _, ok := missingSentinels[strings.ToLower(trimmed)]; ok {
			return c.EmptyValue(field, sheet, address, v)
		}
		return trimmed
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return c.EmptyValue(field, sheet, address, v)
		}
		return v
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return c.EmptyValue(field, sheet, address, v)
		}
		return f
	case int, int32, int64, bool, time.Time:
		return v
	default:
		text, err := stringify(value)
		if err != nil {
			return c.DataTypeError(field, sheet, address, value, "string")
		}
		return text
	}
}

// Diagnostics returns the accumulated diagnostics in record order.
func (c *Classifier) Diagnostics() []domain.Diagnostic {
	out := make([]domain.Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Count returns how many diagnostics were recorded for the category.
func (c *Classifier) Count(category domain.ErrorCategory) int {
	return c.counts[category]
}

func (c *Classifier) record(diag domain.Diagnostic) {
	diag.Timestamp = time.Now()
	c.diagnostics = append(c.diagnostics, diag)
	c.counts[diag.Category]++

	c.logger.Warn("extraction_error",
		"category", string(diag.Category),
		"field_name", diag.FieldName,
		"sheet_name", diag.SheetName,
		"cell_address", diag.CellAddress,
		"message", diag.Message,
		"suggested_fix", diag.SuggestedFix,
	)
}

// Report builds the aggregate error report: totals, per-category breakdown
// with percentages, the ten most frequent (category, message) pairs, and
// recommendations keyed off which categories occurred.
func (c *Classifier) Report() domain.ErrorReport {
	total := len(c.diagnostics)
	report := domain.ErrorReport{
		TotalErrors:     total,
		Categories:      map[domain.ErrorCategory]domain.CategoryBreakdown{},
		MostCommon:      []domain.CommonError{},
		Recommendations: []string{},
		Diagnostics:     c.Diagnostics(),
	}

	if total == 0 {
		report.Summary = "no errors encountered during extraction"
		return report
	}

	for category, count := range c.counts {
		if count == 0 {
			continue
		}
		report.Categories[category] = domain.CategoryBreakdown{
			Count:      count,
			Percentage: math.Round(float64(count)/float64(total)*1000) / 10,
		}
	}

	grouped := make(map[string]*domain.CommonError)
	var keys []string
	for _, diag := range c.diagnostics {
		key := string(diag.Category) + "|" + diag.Message
		entry, ok := grouped[key]
		if !ok {
			entry = &domain.CommonError{
				Category:     diag.Category,
				Message:      diag.Message,
				ExampleField: diag.FieldName,
				SuggestedFix: diag.SuggestedFix,
			}
			grouped[key] = entry
			keys = append(keys, key)
		}
		entry.Count++
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return grouped[keys[i]].Count > grouped[keys[j]].Count
	})
	for i, key := range keys {
		if i == 10 {
			break
		}
		report.MostCommon = append(report.MostCommon, *grouped[key])
	}

	report.Recommendations = c.recommendations()
	return report
}

func (c *Classifier) recommendations() []string {
	var recs []string
	if c.counts[domain.CategoryMissingSheet] > 0 {
		recs = append(recs, "missing sheets: verify sheet names in the reference table match those in the workbooks")
	}
	if c.counts[domain.CategoryFormulaError] > 0 {
		recs = append(recs, "formula errors: review workbook formulas producing errors like #REF!, #VALUE!, #DIV/0!")
	}
	if c.counts[domain.CategoryInvalidCellAddress] > 0 {
		recs = append(recs, "invalid addresses: check the cell address format in the reference table (e.g. A1, B10)")
	}
	if c.counts[domain.CategoryEmptyValue] > 5 {
		recs = append(recs, "many empty values: confirm whether missing data is expected or indicates a data quality issue")
	}
	if c.counts[domain.CategoryDataTypeError] > 0 {
		recs = append(recs, "data type issues: ensure cells contain the expected data types (numbers, text, dates)")
	}
	if len(c.diagnostics) > 0 {
		recs = append(recs, "review the detailed diagnostic list for field level fixes")
	}
	return recs
}

// similarSheets finds candidate sheets for a name that was not found. An exact
// case-insensitive match wins outright; otherwise substring containment and
// word-level Jaccard similarity (at 0.6 or above) both qualify, in sheet
// order.
func similarSheets(target string, available []string) []string {
	targetLower := strings.ToLower(target)
	var similar []string

	for _, sheet := range available {
		sheetLower := strings.ToLower(sheet)

		if sheetLower == targetLower {
			return []string{sheet}
		}

		if strings.Contains(sheetLower, targetLower) || strings.Contains(targetLower, sheetLower) {
			similar = append(similar, sheet)
			continue
		}

		if jaccard(strings.Fields(targetLower), strings.Fields(sheetLower)) >= 0.6 {
			similar = append(similar, sheet)
		}
	}

	return similar
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, word := range a {
		setA[word] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, word := range b {
		setB[word] = struct{}{}
	}
	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func stringify(value any) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("stringify panic: %v", p)
		}
	}()
	return fmt.Sprint(value), nil
}
