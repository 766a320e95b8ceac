// Package batch runs the extractor across many workbooks with bounded
// parallelism. A single workbook's failure is recorded and never stops the
// run.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/uwdash/uwextract/internal/domain"
	"github.com/uwdash/uwextract/internal/extraction"
	"github.com/uwdash/uwextract/internal/workbook"
)

// FileInfo describes one workbook to process. Content, when set, is an
// already-downloaded payload; otherwise Path is opened from disk.
type FileInfo struct {
	Path       string    `json:"file_path"`
	Content    []byte    `json:"-"`
	DealName   string    `json:"deal_name,omitempty"`
	DealStage  string    `json:"deal_stage,omitempty"`
	ModifiedAt time.Time `json:"modified_date,omitempty"`
}

// Result collects everything a batch produced. Records arrive in completion
// order, not submission order.
type Result struct {
	Records  []domain.ExtractionRecord `json:"records"`
	Failures []domain.FileFailure      `json:"failures"`
	Summary  domain.BatchSummary       `json:"summary"`
}

// Processor dispatches workbook extractions to a bounded worker pool, in
// fixed-size groups. Each worker opens, resolves, and closes one workbook end
// to end.
type Processor struct {
	extractor *extraction.Extractor
	workers   int
	batchSize int
	logger    *slog.Logger
}

// NewProcessor returns a processor running at most workers extractions at
// once, taking files in groups of batchSize. Non-positive values fall back to
// 4 workers and groups of 10.
func NewProcessor(extractor *extraction.Extractor, workers, batchSize int, logger *slog.Logger) *Processor {
	if workers <= 0 {
		workers = 4
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{extractor: extractor, workers: workers, batchSize: batchSize, logger: logger}
}

// Process runs the batch. Cancelling ctx stops dispatching new workbooks;
// in-flight workbooks still close their handles before returning.
func (p *Processor) Process(ctx context.Context, files []FileInfo) Result {
	p.logger.Info("starting_batch_processing",
		"total_files", len(files),
		"batch_size", p.batchSize,
		"max_workers", p.workers,
	)

	var mu sync.Mutex
	var records []domain.ExtractionRecord
	var failures []domain.FileFailure

	for start := 0; start < len(files); start += p.batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(start+p.batchSize, len(files))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for _, file := range files[start:end] {
			file := file
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				record, failure := p.processOne(file)
				mu.Lock()
				defer mu.Unlock()
				if failure != nil {
					p.logger.Error("file_processing_failed",
						"file_path", file.Path,
						"category", string(failure.Category),
						"error", failure.Message,
					)
					failures = append(failures, *failure)
					return nil
				}
				records = append(records, record)
				return nil
			})
		}
		_ = g.Wait()
	}

	result := Result{Records: records, Failures: failures, Summary: summarize(len(files), records, failures)}

	p.logger.Info("batch_processing_complete",
		"total_processed", result.Summary.Processed,
		"total_failed", result.Summary.Failed,
		"total_fields_extracted", result.Summary.TotalFieldsExtracted,
		"avg_duration_seconds", result.Summary.AvgDurationSeconds,
	)

	return result
}

// processOne owns the workbook handle for its whole lifetime, including the
// panic path: the deferred Close runs before the recover converts the panic
// into a whole-file failure. A container that cannot be opened is classified
// as a file access error; a panic lands in the unknown category.
func (p *Processor) processOne(file FileInfo) (record domain.ExtractionRecord, failure *domain.FileFailure) {
	defer func() {
		if r := recover(); r != nil {
			failure = &domain.FileFailure{
				FilePath: file.Path,
				Category: domain.CategoryUnknownError,
				Message:  fmt.Sprintf("extraction panicked: %v", r),
				FailedAt: time.Now().UTC(),
			}
		}
	}()

	var wb workbook.Workbook
	var err error
	if file.Content != nil {
		wb, err = workbook.OpenReader(file.Path, file.Content)
	} else {
		wb, err = workbook.Open(file.Path)
	}
	if err != nil {
		classifier := extraction.NewClassifier(p.logger.With("file_path", file.Path))
		classifier.FileAccessError("N/A", err.Error())
		diag := classifier.Diagnostics()[0]
		return domain.ExtractionRecord{}, &domain.FileFailure{
			FilePath: file.Path,
			Category: diag.Category,
			Message:  diag.Message,
			FailedAt: diag.Timestamp,
		}
	}
	defer func() { _ = wb.Close() }()

	record = p.extractor.Extract(wb, file.Path)
	record.DealName = file.DealName
	record.DealStage = file.DealStage
	return record, nil
}

func summarize(total int, records []domain.ExtractionRecord, failures []domain.FileFailure) domain.BatchSummary {
	summary := domain.BatchSummary{
		TotalFiles:  total,
		Processed:   len(records),
		Failed:      len(failures),
		FailedFiles: []string{},
	}
	var totalDuration time.Duration
	for _, record := range records {
		summary.TotalFieldsExtracted += record.Summary.Succeeded
		totalDuration += record.Summary.Duration
	}
	if len(records) > 0 {
		summary.AvgDurationSeconds = totalDuration.Seconds() / float64(len(records))
	}
	for _, failure := range failures {
		summary.FailedFiles = append(summary.FailedFiles, failure.FilePath)
	}
	return summary
}
