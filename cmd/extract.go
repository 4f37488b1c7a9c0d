package cmd

import (
	"github.com/spf13/cobra"

	"smartfill/internal/logger"
	"smartfill/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract expense fields from an invoice, receipt or statement",
	Long: `Read a document and print the fields that could be inferred from its text:
document type, invoice number, dates, amount, currency, vendor, address,
country, VAT number and rate, reverse charge and a description.

Fields without a usable signal are left out. Plain text files are read
directly; PDFs and images go through the configured OCR engine.`,
	Example: `  # Extract fields from a scanned receipt
  smartfill extract receipt.jpg

  # Extract from text that was already recognised
  smartfill extract invoice.txt -o fields.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractOutput is the output of the extract command.
type ExtractOutput struct {
	File   string                 `json:"file"`
	Engine string                 `json:"engine"`
	Fields models.ExtractedFields `json:"fields"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	// Get flags
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	path := args[0]

	// Load configuration
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	extractor, err := newExtractor(cfg, log)
	if err != nil {
		return err
	}

	// Create context with timeout and signal handling
	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	reader := newDocumentReader(cfg, log)
	defer reader.Close()

	// Read document text
	doc, err := reader.Read(ctx, path)
	if err != nil {
		return handleOCRError(err, log)
	}

	// Extract fields
	fields := extractor.Extract(doc.Text)
	if fields.IsEmpty() {
		log.Warn().Str("file", path).Msg("No fields could be extracted")
	}
	log.Info().
		Str("file", path).
		Str("vendor", models.Value(fields.Vendor)).
		Str("amount", models.Value(fields.Amount)).
		Bool("date_ambiguous", fields.DateAmbiguous).
		Msg("Extraction completed")

	return writeJSON(ExtractOutput{File: path, Engine: doc.Engine, Fields: fields}, outputPath, log)
}
