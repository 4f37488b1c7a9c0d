package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"smartfill/internal/logger"
	"smartfill/internal/reconcile"
	"smartfill/internal/vendors"
	"smartfill/pkg/models"
)

var fillCmd = &cobra.Command{
	Use:   "fill [file]",
	Short: "Fill an expense form from a document without overwriting entered values",
	Long: `Extract fields from a document and merge them into an expense form.

Only fields that are still unset are written: empty text, a zero amount,
today's date, the home country, the default currency or an "open" payment
status. The vendor directory is searched by invoice number and name; a
matched profile fills in its address, VAT number, chamber of commerce number
and payment method where the document did not provide them.

With --learn the resulting form is recorded in the vendor directory.

Environment variables:
  HOME_COUNTRY      Country a new form starts with (default NL)
  DEFAULT_CURRENCY  Currency a new form starts with (default EUR)
  VENDOR_DIRECTORY  Vendor profile file (default vendors.json)`,
	Example: `  # Fill an empty form
  smartfill fill invoice.pdf

  # Merge into a form that was partly typed in, and remember the vendor
  smartfill fill invoice.pdf --form expense.json --learn -o expense.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

// FillOutput is the output of the fill command.
type FillOutput struct {
	File       string                `json:"file"`
	Form       models.FormState      `json:"form"`
	Match      *models.VendorProfile `json:"match,omitempty"`
	Score      int                   `json:"score,omitempty"`
	Applied    []string              `json:"applied"`
	Suggestion *vendors.Update       `json:"vendorUpdate,omitempty"`
}

func init() {
	rootCmd.AddCommand(fillCmd)

	fillCmd.Flags().String("form", "", "Current form as JSON (default: empty form)")
	fillCmd.Flags().String("vendors", "", "Vendor directory file (default: $VENDOR_DIRECTORY)")
	fillCmd.Flags().Bool("learn", false, "Record the filled form in the vendor directory")
	fillCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	fillCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runFill(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("fill")

	// Get flags
	formPath, _ := cmd.Flags().GetString("form")
	vendorPath, _ := cmd.Flags().GetString("vendors")
	learn, _ := cmd.Flags().GetBool("learn")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	path := args[0]

	// Load configuration
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if vendorPath == "" {
		vendorPath = cfg.VendorDirectory
	}

	// Load current form and vendor directory
	current, err := readForm(formPath)
	if err != nil {
		return err
	}
	profiles, err := vendors.Load(vendorPath)
	if err != nil {
		return handleDirectoryError(err, log)
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

	// Reconcile extracted fields into the form
	reconciler := &reconcile.Reconciler{
		HomeCountry:     cfg.HomeCountry,
		DefaultCurrency: cfg.DefaultCurrency,
		Log:             log,
	}
	res := reconciler.Reconcile(current, extractor.Extract(doc.Text), vendors.NewDirectory(profiles))

	out := FillOutput{File: path, Form: res.Form, Match: res.Match, Score: res.Score, Applied: res.Applied}
	if res.Match != nil {
		u := vendors.SuggestUpdate(*res.Match, res.Form)
		out.Suggestion = &u
	}

	log.Info().
		Str("file", path).
		Strs("applied", res.Applied).
		Bool("vendor_matched", res.Match != nil).
		Msg("Form filled")

	// Record vendor
	if learn {
		if res.Form.Vendor == "" {
			log.Warn().Msg("Form has no vendor, nothing to learn")
		} else {
			updated, p := vendors.Learn(profiles, res.Form, time.Now())
			if err := vendors.Save(vendorPath, updated); err != nil {
				return handleDirectoryError(err, log)
			}
			out.Form.VendorID = p.ID
			log.Info().Str("vendor_id", p.ID).Int("usage_count", p.UsageCount).Msg("Vendor recorded")
		}
	}

	return writeJSON(out, outputPath, log)
}

// readForm reads a FormState JSON file. An empty path is an empty form.
func readForm(path string) (models.FormState, error) {
	var form models.FormState
	if path == "" {
		return form, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return form, fmt.Errorf("failed to read form: %w", err)
	}
	if err := json.Unmarshal(data, &form); err != nil {
		return form, fmt.Errorf("invalid form JSON in %s: %w", path, err)
	}
	return form, nil
}
