package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"smartfill/internal/extract"
	"smartfill/internal/logger"
	"smartfill/internal/ocr"
	"smartfill/internal/report"
	"smartfill/pkg/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Extract fields from every document in a folder into an XLSX report",
	Long: `Read all supported documents in a folder (PDF, TIFF, GIF, JPEG, PNG and
plain text), extract their fields concurrently and write one row per file to
an Excel workbook.

A file that cannot be read is reported in its row and does not stop the batch.

Environment variables:
  BATCH_CONCURRENCY  Number of documents processed at once (default 4)`,
	Example: `  # Process a folder of receipts
  smartfill batch ./receipts -o receipts.xlsx

  # Include subfolders and use 8 workers
  smartfill batch ./archive --recursive --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "smartfill-report.xlsx", "Report file path")
	batchCmd.Flags().BoolP("recursive", "r", false, "Include subfolders")
	batchCmd.Flags().Int("workers", 0, "Concurrent documents (default: $BATCH_CONCURRENCY)")
	batchCmd.Flags().Int("timeout", 1800, "Timeout for the whole batch in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	// Get flags
	folderPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	recursive, _ := cmd.Flags().GetBool("recursive")
	workers, _ := cmd.Flags().GetInt("workers")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	// Validate folder
	info, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	// Load configuration
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if workers <= 0 {
		workers = cfg.BatchConcurrency
	}
	extractor, err := newExtractor(cfg, log)
	if err != nil {
		return err
	}

	// Collect documents
	files, err := findDocuments(folderPath, recursive)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No supported documents found in folder.")
		return nil
	}

	log.Info().
		Str("folder", folderPath).
		Int("files", len(files)).
		Int("workers", workers).
		Msg("Starting batch extraction")

	// Create context with timeout and signal handling
	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	reader := newDocumentReader(cfg, log)
	defer reader.Close()

	// Process documents
	start := time.Now()
	rows, err := extractAll(ctx, files, workers, reader, extractor, log)
	if err != nil {
		return err
	}

	// Write report
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := report.Write(out, rows); err != nil {
		out.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	// Summarize
	failed := 0
	for _, r := range rows {
		if r.Err != nil {
			failed++
		}
	}
	log.Info().
		Int("files", len(rows)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Str("report", outputPath).
		Msg("Batch extraction completed")

	fmt.Printf("Processed %d documents (%d failed) in %s\n", len(rows), failed, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Report written to %s\n", outputPath)
	return nil
}

// textReader is the part of documentReader used by extractAll.
type textReader interface {
	Read(ctx context.Context, path string) (*ocr.Result, error)
}

// extractAll reads and extracts files with at most workers in flight. Rows
// keep the order of files. Per-file failures are recorded in the row; only
// cancellation of ctx fails the batch.
func extractAll(ctx context.Context, files []string, workers int, reader textReader, extractor *extract.Extractor, log zerolog.Logger) ([]report.Row, error) {
	rows := make([]report.Row, len(files))

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			row := report.Row{File: path}
			doc, err := reader.Read(gctx, path)
			if err != nil {
				row.Err = err
			} else {
				row.Fields = extractor.Extract(doc.Text)
			}
			rows[i] = row

			mu.Lock()
			done++
			n := done
			mu.Unlock()

			ev := log.Info()
			if row.Err != nil {
				ev = log.Warn().Err(row.Err)
			}
			ev.
				Str("file", filepath.Base(path)).
				Str("progress", fmt.Sprintf("%d/%d", n, len(files))).
				Str("amount", models.Value(row.Fields.Amount)).
				Msg("Document processed")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch canceled: %w", err)
	}
	return rows, nil
}

// findDocuments lists the files in folderPath that a text source can read,
// sorted by path.
func findDocuments(folderPath string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(folderPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != folderPath && (!recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if ocr.Supported(ocr.DetectMimeType(d.Name(), nil)) {
			files = append(files, path)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}
