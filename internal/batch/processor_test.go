package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/uwdash/uwextract/internal/domain"
	"github.com/uwdash/uwextract/internal/extraction"
	"github.com/uwdash/uwextract/internal/mapping"
)

func modelPayload(t *testing.T, units int) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		t.Fatalf("failed to rename sheet: %v", err)
	}
	if err := f.SetCellValue("Summary", "G6", units); err != nil {
		t.Fatalf("failed to set cell: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to serialize workbook: %v", err)
	}
	return buf.Bytes()
}

func testExtractor() *extraction.Extractor {
	table := mapping.NewTable([]domain.FieldMapping{
		{Category: "Property", Description: "Units", FieldName: "UNITS", SheetName: "Summary", CellAddress: "G6"},
	})
	return extraction.NewExtractor(table, nil)
}

func TestProcessMixedBatch(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "alpha.xlsx")
	if err := os.WriteFile(good, modelPayload(t, 154), 0o644); err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	bad := filepath.Join(dir, "beta.xlsx")
	if err := os.WriteFile(bad, []byte("not a workbook"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	files := []FileInfo{
		{Path: good, DealName: "Alpha", DealStage: "Active UW"},
		{Path: bad, DealName: "Beta"},
		{Path: "gamma.xlsx", Content: modelPayload(t, 200), DealName: "Gamma"},
	}

	p := NewProcessor(testExtractor(), 2, 2, nil)
	result := p.Process(context.Background(), files)

	if len(result.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(result.Records))
	}
	if len(result.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(result.Failures))
	}
	if result.Failures[0].FilePath != bad {
		t.Errorf("failure path = %q, want %q", result.Failures[0].FilePath, bad)
	}
	if result.Failures[0].Category != domain.CategoryFileAccessError {
		t.Errorf("failure category = %q, want %q", result.Failures[0].Category, domain.CategoryFileAccessError)
	}
	if !strings.HasPrefix(result.Failures[0].Message, "file access error:") {
		t.Errorf("failure message = %q, want a classified file access error", result.Failures[0].Message)
	}
	if result.Failures[0].FailedAt.IsZero() {
		t.Error("failure should carry a timestamp")
	}

	byDeal := map[string]domain.ExtractionRecord{}
	for _, r := range result.Records {
		byDeal[r.DealName] = r
	}
	if byDeal["Alpha"].Values["UNITS"] != float64(154) {
		t.Errorf("Alpha UNITS = %v, want 154", byDeal["Alpha"].Values["UNITS"])
	}
	if byDeal["Alpha"].DealStage != "Active UW" {
		t.Errorf("Alpha stage = %q", byDeal["Alpha"].DealStage)
	}
	if byDeal["Gamma"].Values["UNITS"] != float64(200) {
		t.Errorf("Gamma UNITS = %v, want 200", byDeal["Gamma"].Values["UNITS"])
	}

	s := result.Summary
	if s.TotalFiles != 3 || s.Processed != 2 || s.Failed != 1 {
		t.Errorf("summary = %+v, want 3 total / 2 processed / 1 failed", s)
	}
	if s.TotalFieldsExtracted != 2 {
		t.Errorf("TotalFieldsExtracted = %d, want 2", s.TotalFieldsExtracted)
	}
	if len(s.FailedFiles) != 1 || s.FailedFiles[0] != bad {
		t.Errorf("FailedFiles = %v", s.FailedFiles)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	p := NewProcessor(testExtractor(), 0, 0, nil)
	result := p.Process(context.Background(), nil)

	if len(result.Records) != 0 || len(result.Failures) != 0 {
		t.Errorf("empty batch produced %+v", result)
	}
	if result.Summary.TotalFiles != 0 || result.Summary.AvgDurationSeconds != 0 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestProcessCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []FileInfo{{Path: "alpha.xlsx", Content: modelPayload(t, 1)}}
	result := NewProcessor(testExtractor(), 1, 1, nil).Process(ctx, files)

	if len(result.Records) != 0 {
		t.Errorf("cancelled batch still produced %d records", len(result.Records))
	}
}
