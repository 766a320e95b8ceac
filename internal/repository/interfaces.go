package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/uwdash/uwextract/internal/domain"
)

// ExtractionRepository persists extraction results for the dashboard.
type ExtractionRepository interface {
	// SaveRecord stores one extraction record along with its diagnostics.
	SaveRecord(ctx context.Context, record domain.ExtractionRecord) error
	// RecordFileFailure stores a workbook that could not be processed at all.
	RecordFileFailure(ctx context.Context, failure domain.FileFailure) error
	// ListDiagnostics returns the diagnostics attached to one extraction.
	ListDiagnostics(ctx context.Context, extractionID uuid.UUID, limit, offset int) ([]domain.Diagnostic, error)
	// LatestRecords returns the most recent extraction summaries.
	LatestRecords(ctx context.Context, limit int) ([]domain.ExtractionRecord, error)
}
