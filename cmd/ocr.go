package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"smartfill/internal/logger"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [file]",
	Short: "Print the raw text of a scanned document",
	Long: `Run the configured OCR engine on a document and print the recognised text.

This is the text the extract and fill commands work on. PDFs (up to 5 pages),
TIFF, GIF, JPEG and PNG files are sent to the engine; plain text files are
printed as-is.

Environment variables:
  OCR_ENGINE                      vision (default) or documentai
  GOOGLE_APPLICATION_CREDENTIALS  Path to service account JSON file, OR
  GOOGLE_CREDENTIALS              Inline JSON credentials string
  GOOGLE_CLOUD_PROJECT            Project ID (documentai)
  GOOGLE_CLOUD_LOCATION           Processor location, e.g. us or eu (documentai)
  DOCUMENT_AI_PROCESSOR_ID        Processor ID (documentai)`,
	Example: `  # Print the text of invoice.pdf
  smartfill ocr invoice.pdf

  # Save text and metadata as JSON
  smartfill ocr invoice.pdf --json -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

// OCROutput is the --json output of the ocr command.
type OCROutput struct {
	FileName           string    `json:"file_name"`
	Engine             string    `json:"engine"`
	Text               string    `json:"text"`
	PageCount          int       `json:"page_count,omitempty"`
	Confidence         float32   `json:"confidence,omitempty"`
	LanguageCodes      []string  `json:"language_codes,omitempty"`
	ProcessedAt        time.Time `json:"processed_at"`
	ProcessingDuration string    `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().BoolP("metadata", "m", false, "Print a metadata header before the text")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	// Get flags
	outputPath, _ := cmd.Flags().GetString("output")
	includeMetadata, _ := cmd.Flags().GetBool("metadata")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	path := args[0]

	// Load configuration
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	// Create context with timeout and signal handling
	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	reader := newDocumentReader(cfg, log)
	defer reader.Close()

	// Process document
	log.Info().Str("file", path).Str("engine", cfg.OCREngine).Msg("Starting OCR")
	result, err := reader.Read(ctx, path)
	if err != nil {
		return handleOCRError(err, log)
	}
	log.Info().
		Int("page_count", result.PageCount).
		Float32("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Int("text_length", len(result.Text)).
		Msg("OCR completed")

	if jsonOutput {
		return writeJSON(OCROutput{
			FileName:           filepath.Base(path),
			Engine:             result.Engine,
			Text:               result.Text,
			PageCount:          result.PageCount,
			Confidence:         result.Confidence,
			LanguageCodes:      result.LanguageCodes,
			ProcessedAt:        result.ProcessedAt,
			ProcessingDuration: result.ProcessingDuration.String(),
		}, outputPath, log)
	}

	// Format and output results
	var out strings.Builder
	if includeMetadata {
		fmt.Fprintf(&out, "=== OCR Results for %s ===\n", filepath.Base(path))
		fmt.Fprintf(&out, "Engine: %s\n", result.Engine)
		fmt.Fprintf(&out, "Pages processed: %d\n", result.PageCount)
		if result.Confidence > 0 {
			fmt.Fprintf(&out, "Confidence: %.1f%%\n", result.Confidence*100)
		}
		if len(result.LanguageCodes) > 0 {
			fmt.Fprintf(&out, "Languages: %s\n", strings.Join(result.LanguageCodes, ", "))
		}
		fmt.Fprintf(&out, "Processing time: %v\n", result.ProcessingDuration)
		out.WriteString("\n=== Extracted Text ===\n\n")
	}
	out.WriteString(result.Text)
	if !strings.HasSuffix(result.Text, "\n") {
		out.WriteString("\n")
	}

	if outputPath == "" {
		_, err = os.Stdout.WriteString(out.String())
		return err
	}
	if err := os.WriteFile(outputPath, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output_file", outputPath).Msg("OCR text written to file")
	return nil
}
