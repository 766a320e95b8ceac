package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uwdash/uwextract/internal/domain"
)

type extractionRepository struct {
	pool *pgxpool.Pool
}

// NewExtractionRepository wires a repository backed by pgxpool.
func NewExtractionRepository(pool *pgxpool.Pool) ExtractionRepository {
	return &extractionRepository{pool: pool}
}

func (r *extractionRepository) SaveRecord(ctx context.Context, record domain.ExtractionRecord) error {
	if r.pool == nil {
		return fmt.Errorf("extraction repository not initialized")
	}

	values, err := json.Marshal(record.Values)
	if err != nil {
		return fmt.Errorf("failed to encode field values: %w", err)
	}

	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO extractions (id, file_path, deal_name, deal_stage, extracted_at, total_fields, succeeded, failed, duration_ms, field_values)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID,
		record.FilePath,
		record.DealName,
		record.DealStage,
		record.ExtractedAt,
		record.Summary.TotalFields,
		record.Summary.Succeeded,
		record.Summary.Failed,
		record.Summary.Duration.Milliseconds(),
		values,
	)
	if err != nil {
		return fmt.Errorf("failed to insert extraction: %w", err)
	}

	for _, diag := range record.Diagnostics {
		var original any
		if diag.OriginalValue != nil {
			original = fmt.Sprint(diag.OriginalValue)
		}
		_, err = r.pool.Exec(
			ctx,
			`INSERT INTO extraction_diagnostics (extraction_id, category, field_name, sheet_name, cell_address, message, suggested_fix, original_value, recorded_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			record.ID,
			string(diag.Category),
			diag.FieldName,
			diag.SheetName,
			diag.CellAddress,
			diag.Message,
			diag.SuggestedFix,
			original,
			diag.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert diagnostic for %s: %w", diag.FieldName, err)
		}
	}

	return nil
}

func (r *extractionRepository) RecordFileFailure(ctx context.Context, failure domain.FileFailure) error {
	if r.pool == nil {
		return fmt.Errorf("extraction repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO file_failures (file_path, category, error_message, failed_at)
		 VALUES ($1, $2, $3, $4)`,
		failure.FilePath,
		string(failure.Category),
		failure.Message,
		failure.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record file failure: %w", err)
	}

	return nil
}

func (r *extractionRepository) ListDiagnostics(ctx context.Context, extractionID uuid.UUID, limit, offset int) ([]domain.Diagnostic, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("extraction repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT category, field_name, sheet_name, cell_address, message, suggested_fix, original_value, recorded_at
		 FROM extraction_diagnostics
		 WHERE extraction_id = $1
		 ORDER BY id
		 LIMIT $2 OFFSET $3`,
		extractionID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnostics: %w", err)
	}
	defer rows.Close()

	diagnostics := []domain.Diagnostic{}
	for rows.Next() {
		var (
			diag       domain.Diagnostic
			category   string
			fix        pgtype.Text
			original   pgtype.Text
			recordedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&category,
			&diag.FieldName,
			&diag.SheetName,
			&diag.CellAddress,
			&diag.Message,
			&fix,
			&original,
			&recordedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", scanErr)
		}

		diag.Category = domain.ErrorCategory(category)
		if fix.Valid {
			diag.SuggestedFix = fix.String
		}
		if original.Valid {
			diag.OriginalValue = original.String
		}
		if recordedAt.Valid {
			diag.Timestamp = recordedAt.Time
		}

		diagnostics = append(diagnostics, diag)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate diagnostics: %w", rowsErr)
	}

	return diagnostics, nil
}

func (r *extractionRepository) LatestRecords(ctx context.Context, limit int) ([]domain.ExtractionRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("extraction repository not initialized")
	}

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, file_path, deal_name, deal_stage, extracted_at, total_fields, succeeded, failed, duration_ms, field_values
		 FROM extractions
		 ORDER BY extracted_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	defer rows.Close()

	records := []domain.ExtractionRecord{}
	for rows.Next() {
		var (
			record      domain.ExtractionRecord
			dealName    pgtype.Text
			dealStage   pgtype.Text
			extractedAt pgtype.Timestamptz
			durationMS  int64
			values      []byte
		)
		if scanErr := rows.Scan(
			&record.ID,
			&record.FilePath,
			&dealName,
			&dealStage,
			&extractedAt,
			&record.Summary.TotalFields,
			&record.Summary.Succeeded,
			&record.Summary.Failed,
			&durationMS,
			&values,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", scanErr)
		}

		if dealName.Valid {
			record.DealName = dealName.String
		}
		if dealStage.Valid {
			record.DealStage = dealStage.String
		}
		if extractedAt.Valid {
			record.ExtractedAt = extractedAt.Time
		}
		record.Summary.Duration = time.Duration(durationMS) * time.Millisecond
		if len(values) > 0 {
			if err := json.Unmarshal(values, &record.Values); err != nil {
				return nil, fmt.Errorf("failed to decode field values: %w", err)
			}
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate extractions: %w", rowsErr)
	}

	return records, nil
}
