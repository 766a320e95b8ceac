package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/uwdash/uwextract/internal/batch"
	"github.com/uwdash/uwextract/internal/config"
	"github.com/uwdash/uwextract/internal/db"
	"github.com/uwdash/uwextract/internal/extraction"
	"github.com/uwdash/uwextract/internal/mapping"
	"github.com/uwdash/uwextract/internal/middleware"
	"github.com/uwdash/uwextract/internal/report"
	"github.com/uwdash/uwextract/internal/repository"
)

func main() {
	var (
		configPath    = flag.String("config", ".", "directory containing config.yaml")
		referenceFile = flag.String("reference-file", "", "path to the cell reference workbook (overrides config)")
		inputDir      = flag.String("input-dir", "", "directory to scan for underwriting models")
		fileList      = flag.String("file-list", "", "JSON file listing workbooks to process")
		outputDir     = flag.String("output-dir", "", "directory for output files (overrides config)")
		serve         = flag.Bool("serve", false, "serve the report API after the batch completes")
		skipDB        = flag.Bool("skip-db", false, "do not persist results to the database")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, "failed to load config", err)
	}
	if *referenceFile != "" {
		cfg.Extraction.ReferenceFile = *referenceFile
	}
	if *outputDir != "" {
		cfg.Extraction.OutputDir = *outputDir
	}
	if cfg.Extraction.ReferenceFile == "" {
		fatal(logger, "no reference file configured", fmt.Errorf("set extraction.reference_file or pass -reference-file"))
	}
	if err := os.MkdirAll(cfg.Extraction.OutputDir, 0o755); err != nil {
		fatal(logger, "failed to create output directory", err)
	}

	// The mapping table is the one load that is allowed to halt the run.
	table, err := mapping.NewLoader(cfg.Extraction.ReferenceFile, logger).Load()
	if err != nil {
		fatal(logger, "failed to load cell mappings", err)
	}
	summaryPath := filepath.Join(cfg.Extraction.OutputDir, "mapping_summary.csv")
	if err := mapping.ExportSummary(table, summaryPath); err != nil {
		logger.Error("failed to export mapping summary", "error", err)
	}

	files, err := collectFiles(*fileList, *inputDir)
	if err != nil {
		fatal(logger, "failed to build file list", err)
	}
	if len(files) == 0 {
		fatal(logger, "no workbooks to process", fmt.Errorf("pass -input-dir or -file-list"))
	}

	extractor := extraction.NewExtractor(table, logger)
	processor := batch.NewProcessor(extractor, cfg.Extraction.Workers, cfg.Extraction.BatchSize, logger)
	result := processor.Process(ctx, files)

	resultsPath := filepath.Join(
		cfg.Extraction.OutputDir,
		fmt.Sprintf("extraction_results_%s.json", time.Now().Format("20060102_150405")),
	)
	if err := writeJSONFile(resultsPath, result); err != nil {
		logger.Error("failed to write batch results", "error", err)
	} else {
		logger.Info("batch_results_written", "path", resultsPath)
	}

	if !*skipDB {
		persist(ctx, logger, cfg.Database, result)
	}

	if *serve {
		serveReports(ctx, logger, cfg.Report, result)
	}
}

// collectFiles builds the batch input, either from a discovery JSON file or by
// walking a directory for workbook extensions. Lock files (~$ prefix) are
// skipped.
func collectFiles(fileList, inputDir string) ([]batch.FileInfo, error) {
	if fileList != "" {
		payload, err := os.ReadFile(fileList)
		if err != nil {
			return nil, fmt.Errorf("failed to read file list: %w", err)
		}
		var files []batch.FileInfo
		if err := json.Unmarshal(payload, &files); err != nil {
			return nil, fmt.Errorf("failed to parse file list: %w", err)
		}
		return files, nil
	}

	if inputDir == "" {
		return nil, nil
	}

	var files []batch.FileInfo
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), "~$") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(d.Name())) {
		case ".xls", ".xlsx", ".xlsm":
			files = append(files, batch.FileInfo{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}
	return files, nil
}

// persist writes the batch to the database. Persistence problems are logged,
// not fatal; the JSON outputs already hold the full result.
func persist(ctx context.Context, logger *slog.Logger, dbCfg db.Config, result batch.Result) {
	conn, err := db.NewConnection(ctx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database, skipping persistence", "error", err)
		return
	}
	defer conn.Close()

	if err := db.RunMigrations(ctx, conn.Pool, "./migrations"); err != nil {
		logger.Error("failed to run migrations, skipping persistence", "error", err)
		return
	}

	repo := repository.NewExtractionRepository(conn.Pool)
	saved := 0
	for _, record := range result.Records {
		if err := repo.SaveRecord(ctx, record); err != nil {
			logger.Error("failed to save extraction", "file_path", record.FilePath, "error", err)
			continue
		}
		saved++
	}
	for _, failure := range result.Failures {
		if err := repo.RecordFileFailure(ctx, failure); err != nil {
			logger.Error("failed to record file failure", "file_path", failure.FilePath, "error", err)
		}
	}
	logger.Info("extractions_persisted", "saved", saved, "failures_recorded", len(result.Failures))
}

func serveReports(ctx context.Context, logger *slog.Logger, cfg config.ReportConfig, result batch.Result) {
	handler := report.NewHandler(logger)
	handler.SetBatch(result)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	mux := http.NewServeMux()
	mux.Handle("/", corsHandler.Handler(middleware.LoggingMiddleware(logger, handler)))

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("report_server_listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(logger, "report server failed", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down report server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("report server forced to shut down", "error", err)
	}
}

func writeJSONFile(path string, payload any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
