// Package report exposes the latest batch results over a small read-only HTTP
// API for the dashboard to poll.
package report

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/uwdash/uwextract/internal/batch"
	"github.com/uwdash/uwextract/internal/domain"
)

// Handler serves the most recent batch result. SetBatch swaps the snapshot
// atomically; readers never see a half-updated batch.
type Handler struct {
	logger *slog.Logger

	mu      sync.RWMutex
	summary *domain.BatchSummary
	records map[string]domain.ExtractionRecord
	order   []string
}

// NewHandler returns a handler with no batch loaded yet.
func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{logger: logger, records: map[string]domain.ExtractionRecord{}}
}

// SetBatch publishes a finished batch result.
func (h *Handler) SetBatch(result batch.Result) {
	records := make(map[string]domain.ExtractionRecord, len(result.Records))
	order := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		records[record.FilePath] = record
		order = append(order, record.FilePath)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	summary := result.Summary
	h.summary = &summary
	h.records = records
	h.order = order
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/summary"):
		h.handleSummary(w, r)
	case strings.HasSuffix(r.URL.Path, "/records"):
		h.handleListRecords(w, r)
	case strings.HasSuffix(r.URL.Path, "/report"):
		h.handleFileReport(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (h *Handler) handleSummary(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	summary := h.summary
	h.mu.RUnlock()

	if summary == nil {
		http.Error(w, "no batch has completed yet", http.StatusNotFound)
		return
	}
	writeJSON(w, summary)
}

type recordListing struct {
	FilePath    string                   `json:"file_path"`
	DealName    string                   `json:"deal_name,omitempty"`
	DealStage   string                   `json:"deal_stage,omitempty"`
	Summary     domain.ExtractionSummary `json:"summary"`
	TotalErrors int                      `json:"total_errors"`
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	h.mu.RLock()
	listings := make([]recordListing, 0, len(h.order))
	for _, path := range h.order {
		record := h.records[path]
		listings = append(listings, recordListing{
			FilePath:    record.FilePath,
			DealName:    record.DealName,
			DealStage:   record.DealStage,
			Summary:     record.Summary,
			TotalErrors: record.Report.TotalErrors,
		})
	}
	h.mu.RUnlock()

	if limit > 0 && limit < len(listings) {
		listings = listings[:limit]
	}
	writeJSON(w, listings)
}

func (h *Handler) handleFileReport(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("file")
	if path == "" {
		http.Error(w, "file query parameter is required", http.StatusBadRequest)
		return
	}

	h.mu.RLock()
	record, ok := h.records[path]
	h.mu.RUnlock()

	if !ok {
		http.Error(w, "no record for file", http.StatusNotFound)
		return
	}
	writeJSON(w, record.Report)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
