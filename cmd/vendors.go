package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"smartfill/internal/logger"
	"smartfill/internal/vendors"
)

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Inspect and maintain the vendor directory",
	Long: `The vendor directory is a JSON file of supplier profiles learned from
confirmed expenses. It is used by fill to recognise vendors and complete
their details.`,
}

var vendorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved vendor profiles",
	Args:  cobra.NoArgs,
	RunE:  runVendorsList,
}

var vendorsMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the saved vendor matching the given details",
	Example: `  smartfill vendors match --name "Acme B.V." --country NL
  smartfill vendors match --invoice INV-2024-001`,
	Args: cobra.NoArgs,
	RunE: runVendorsMatch,
}

var vendorsLearnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Record a confirmed form in the vendor directory",
	Long: `Update the profile matching the form (usage count, invoice number, new
names, currencies, countries and addresses) or create a new profile.`,
	Example: `  smartfill vendors learn --form expense.json
  smartfill vendors learn --form expense.json --dry-run`,
	Args: cobra.NoArgs,
	RunE: runVendorsLearn,
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
	vendorsCmd.AddCommand(vendorsListCmd, vendorsMatchCmd, vendorsLearnCmd)

	vendorsCmd.PersistentFlags().String("vendors", "", "Vendor directory file (default: $VENDOR_DIRECTORY)")

	vendorsListCmd.Flags().Bool("json", false, "Output as JSON")

	vendorsMatchCmd.Flags().String("name", "", "Vendor name")
	vendorsMatchCmd.Flags().String("invoice", "", "Invoice number")
	vendorsMatchCmd.Flags().String("country", "", "Vendor country code")
	vendorsMatchCmd.Flags().String("currency", "", "Currency code")
	vendorsMatchCmd.Flags().String("address", "", "Vendor address")

	vendorsLearnCmd.Flags().String("form", "", "Confirmed form as JSON [REQUIRED]")
	vendorsLearnCmd.Flags().Bool("dry-run", false, "Show the change without writing the directory")
	_ = vendorsLearnCmd.MarkFlagRequired("form")
}

func directoryPath(cmd *cobra.Command, log zerolog.Logger) (string, error) {
	if p, _ := cmd.Flags().GetString("vendors"); p != "" {
		return p, nil
	}
	cfg, err := loadConfig(log)
	if err != nil {
		return "", err
	}
	return cfg.VendorDirectory, nil
}

func runVendorsList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("vendors")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	path, err := directoryPath(cmd, log)
	if err != nil {
		return err
	}
	profiles, err := vendors.Load(path)
	if err != nil {
		return handleDirectoryError(err, log)
	}
	if jsonOutput {
		return writeJSON(profiles, "", log)
	}
	if len(profiles) == 0 {
		fmt.Printf("No vendors saved in %s\n", path)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOUNTRY\tCURRENCY\tUSES\tLAST INVOICE")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.Name, p.Country, p.PreferredCurrency, p.UsageCount, p.LastInvoiceNumber)
	}
	return w.Flush()
}

func runVendorsMatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("vendors")

	// Get flags
	var d vendors.Details
	d.Name, _ = cmd.Flags().GetString("name")
	d.InvoiceNumber, _ = cmd.Flags().GetString("invoice")
	d.Country, _ = cmd.Flags().GetString("country")
	d.Currency, _ = cmd.Flags().GetString("currency")
	d.Address, _ = cmd.Flags().GetString("address")
	if strings.TrimSpace(d.Name+d.InvoiceNumber+d.Country+d.Currency+d.Address) == "" {
		return fmt.Errorf("give at least one of --name, --invoice, --country, --currency or --address")
	}

	path, err := directoryPath(cmd, log)
	if err != nil {
		return err
	}
	// Load directory
	dir, err := vendors.LoadDirectory(path)
	if err != nil {
		return handleDirectoryError(err, log)
	}

	m := dir.Match(d)
	if m == nil {
		log.Info().Str("name", d.Name).Str("invoice", d.InvoiceNumber).Msg("No vendor matched")
		fmt.Println("No matching vendor")
		return nil
	}
	return writeJSON(m, "", log)
}

func runVendorsLearn(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("vendors")

	// Get flags
	formPath, _ := cmd.Flags().GetString("form")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	form, err := readForm(formPath)
	if err != nil {
		return err
	}
	if strings.TrimSpace(form.Vendor) == "" {
		return fmt.Errorf("form has no vendor name")
	}

	path, err := directoryPath(cmd, log)
	if err != nil {
		return err
	}
	profiles, err := vendors.Load(path)
	if err != nil {
		return handleDirectoryError(err, log)
	}

	// Merge the confirmed form
	updated, p := vendors.Learn(profiles, form, time.Now())
	created := len(updated) > len(profiles)
	log.Info().
		Str("vendor_id", p.ID).
		Bool("created", created).
		Int("usage_count", p.UsageCount).
		Bool("dry_run", dryRun).
		Msg("Vendor learned")

	if !dryRun {
		if err := vendors.Save(path, updated); err != nil {
			return handleDirectoryError(err, log)
		}
	}
	return writeJSON(p, "", log)
}

// handleDirectoryError explains vendor directory failures.
func handleDirectoryError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Vendor directory failed")

	var dirErr *vendors.DirectoryError
	switch {
	case errors.Is(err, vendors.ErrInvalidDirectory) && errors.As(err, &dirErr):
		return fmt.Errorf("vendor directory %s is not valid, fix or remove it: %w", dirErr.Path, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("permission denied on vendor directory: %w", err)
	default:
		return fmt.Errorf("vendor directory: %w", err)
	}
}
