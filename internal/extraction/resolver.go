package extraction

import (
	"errors"
	"fmt"

	"github.com/uwdash/uwextract/internal/domain"
	"github.com/uwdash/uwextract/internal/workbook"
)

// Resolver locates the raw value for one field mapping in an open workbook.
// Every outcome, successful or not, flows through the classifier; no failure
// from cell-level resolution ever escapes as an error or panic.
type Resolver struct {
	classifier *Classifier
}

// NewResolver returns a resolver that reports through classifier.
func NewResolver(classifier *Classifier) *Resolver {
	return &Resolver{classifier: classifier}
}

// Resolve returns the value at the mapping's position, or nil with an attached
// diagnostic when no usable value could be read.
func (r *Resolver) Resolve(wb workbook.Workbook, m domain.FieldMapping) (value any) {
	defer func() {
		if p := recover(); p != nil {
			value = r.classifier.UnknownError(m.FieldName, m.SheetName, m.CellAddress, fmt.Sprintf("%v", p))
		}
	}()

	if !wb.HasSheet(m.SheetName) {
		return r.classifier.MissingSheet(m.FieldName, m.SheetName, wb.SheetNames())
	}

	ref, err := ParseCellAddress(m.CellAddress)
	if err != nil {
		return r.classifier.InvalidCellAddress(m.FieldName, m.SheetName, m.CellAddress, err)
	}

	raw, err := wb.CellValue(m.SheetName, ref)
	if err != nil {
		var notFound *workbook.NotFoundError
		if errors.As(err, &notFound) {
			return r.classifier.CellNotFound(m.FieldName, m.SheetName, m.CellAddress, notFound.RowsScanned, notFound.Column)
		}
		return r.classifier.ParsingError(m.FieldName, m.SheetName, m.CellAddress, err)
	}

	return r.classifier.ProcessValue(raw, m.FieldName, m.SheetName, m.CellAddress)
}
