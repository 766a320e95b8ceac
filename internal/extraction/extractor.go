package extraction

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/uwdash/uwextract/internal/domain"
	"github.com/uwdash/uwextract/internal/mapping"
	"github.com/uwdash/uwextract/internal/workbook"
)

// Extractor applies a mapping table to open workbooks, producing one
// ExtractionRecord per workbook. The table is shared read-only; each call to
// Extract gets its own classifier, so extractors are safe to use from
// concurrent workers as long as each workbook handle stays with one worker.
type Extractor struct {
	table  *mapping.Table
	logger *slog.Logger
}

// NewExtractor returns an extractor over the loaded mapping table.
func NewExtractor(table *mapping.Table, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Extractor{table: table, logger: logger}
}

// Extract resolves every mapping entry against wb, in table order. Every field
// ends up in the record's value map: either a value or nil with a diagnostic.
// A field's failure never affects any other field.
func (e *Extractor) Extract(wb workbook.Workbook, filePath string) domain.ExtractionRecord {
	start := time.Now()

	classifier := NewClassifier(e.logger.With("file_path", filePath))
	resolver := NewResolver(classifier)

	record := domain.ExtractionRecord{
		ID:          uuid.New(),
		FilePath:    filePath,
		ExtractedAt: start.UTC(),
		Values:      make(map[string]any, e.table.Len()),
	}

	succeeded := 0
	for _, m := range e.table.Mappings() {
		value := resolver.Resolve(wb, m)
		record.Values[m.FieldName] = value
		if value != nil {
			succeeded++
		}
	}

	record.Diagnostics = classifier.Diagnostics()
	record.Report = classifier.Report()
	record.Summary = domain.ExtractionSummary{
		TotalFields: e.table.Len(),
		Succeeded:   succeeded,
		Failed:      e.table.Len() - succeeded,
		Duration:    time.Since(start),
	}

	e.logger.Info("file_extraction_complete",
		"file_path", filePath,
		"successful", succeeded,
		"failed", record.Summary.Failed,
		"duration", record.Summary.Duration,
	)

	return record
}
