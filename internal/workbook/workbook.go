// Package workbook abstracts the two spreadsheet container formats the
// extractor reads: the legacy BIFF binary format (.xls) and the OOXML format
// (.xlsx/.xlsm). The two differ in native cell addressing. BIFF enumerates
// sparse cells with 0-based row/column indices, while OOXML supports direct
// lookup by conventional 1-based addresses like "D6". Callers always work in
// conventional coordinates; the translation happens behind this interface.
package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a file extension maps to neither
// container kind.
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// CellRef is a parsed cell address on the conventional 1-based grid.
type CellRef struct {
	// Address is the cleaned form with dollar signs stripped, e.g. "D6".
	Address string
	// Row is the 1-based row number.
	Row int
	// Col is the 1-based column number (A=1, Z=26, AA=27).
	Col int
}

// NotFoundError reports a lookup that exhausted the sheet without finding a
// cell at the target position. It carries the observed scan extent so the
// caller can report how far the search went.
type NotFoundError struct {
	RowsScanned int
	Column      int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cell not found after scanning %d rows (target column %d)", e.RowsScanned, e.Column)
}

// Workbook is one open spreadsheet container. Implementations are not safe for
// concurrent use; a handle is owned by exactly one worker and must be closed
// on every exit path.
type Workbook interface {
	// SheetNames returns the workbook's sheet display names in file order.
	SheetNames() []string
	// HasSheet reports whether a sheet with the exact name exists.
	HasSheet(name string) bool
	// CellValue returns the raw value at ref on the named sheet. A position
	// with no cell is reported as *NotFoundError.
	CellValue(sheet string, ref CellRef) (any, error)
	Close() error
}

// Open selects the container implementation from the file extension. The
// choice is made once here, never by probing the handle at lookup time.
func Open(path string) (Workbook, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xls":
		return openBIFF(path)
	case ".xlsx", ".xlsm":
		return openOOXML(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// OpenReader opens an in-memory workbook, such as a payload downloaded by the
// file acquisition layer. The name is used only to pick the container kind.
func OpenReader(name string, payload []byte) (Workbook, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xls":
		return openBIFFReader(payload)
	case ".xlsx", ".xlsm":
		return openOOXMLReader(payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
