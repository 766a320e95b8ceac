package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionRecord is the output of resolving one workbook against one mapping
// table. Values holds an entry for every mapped field: the resolved value, or
// nil when no usable value could be read. Failure detail travels on the
// diagnostic list, never on the value itself.
//
// A record is fully populated in one pass and handed off; it is never updated
// in place afterward.
type ExtractionRecord struct {
	ID          uuid.UUID         `json:"id"`
	FilePath    string            `json:"file_path"`
	DealName    string            `json:"deal_name,omitempty"`
	DealStage   string            `json:"deal_stage,omitempty"`
	ExtractedAt time.Time         `json:"extracted_at"`
	Values      map[string]any    `json:"values"`
	Diagnostics []Diagnostic      `json:"diagnostics"`
	Report      ErrorReport       `json:"error_report"`
	Summary     ExtractionSummary `json:"summary"`
}

// ExtractionSummary carries per-workbook counts.
type ExtractionSummary struct {
	TotalFields int           `json:"total_fields"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Duration    time.Duration `json:"duration"`
}

// FileFailure records a workbook that could not be processed at all, as
// opposed to a per-field diagnostic.
type FileFailure struct {
	FilePath string        `json:"file_path"`
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
	FailedAt time.Time     `json:"failed_at"`
}

// BatchSummary aggregates a multi-workbook run.
type BatchSummary struct {
	TotalFiles           int      `json:"total_files"`
	Processed            int      `json:"processed"`
	Failed               int      `json:"failed"`
	TotalFieldsExtracted int      `json:"total_fields_extracted"`
	AvgDurationSeconds   float64  `json:"avg_duration_seconds"`
	FailedFiles          []string `json:"failed_files"`
}
