package commands

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/report"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/spf13/cobra"
)

var (
	normalizeCatalog     string
	normalizeFormat      string
	normalizeOut         string
	normalizeFilteredOut string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Convert a catalog to JSON",
	Long: `Read a catalog and write it as a JSON object of tier name to item list,
once in full and once without the skipped tiers.

Examples:
  # Writes AllPokemons_normalized.json and AllPokemons_filtered.json
  altar normalize --catalog AllPokemons.txt`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeCatalog, "catalog", "", "Catalog file (text or JSON)")
	normalizeCmd.Flags().StringVar(&normalizeFormat, "format", "", "Catalog format: text or json (default: from extension)")
	normalizeCmd.Flags().StringVar(&normalizeOut, "out", "", "Full catalog output (default: <catalog>_normalized.json)")
	normalizeCmd.Flags().StringVar(&normalizeFilteredOut, "filtered-out", "", "Catalog without skipped tiers (default: <catalog>_filtered.json)")
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Load with nothing skipped; the filtered copy is derived below.
	skip := cfg.Tiers.Skip
	cfg.Tiers.Skip = nil
	full, err := loadCatalog(cfg, normalizeCatalog, normalizeFormat)
	if err != nil {
		return err
	}

	printer.Info("Item counts by tier:\n")
	report.FormatTierCounts(printer.Out, full, skip)

	stem := strings.TrimSuffix(normalizeCatalog, filepath.Ext(normalizeCatalog))
	outPath := normalizeOut
	if outPath == "" {
		outPath = stem + "_normalized.json"
	}
	filteredPath := normalizeFilteredOut
	if filteredPath == "" {
		filteredPath = stem + "_filtered.json"
	}

	if err := writeCatalog(outPath, full); err != nil {
		return err
	}
	if err := writeCatalog(filteredPath, full.Without(skip...)); err != nil {
		return err
	}

	printer.Info("\n")
	printer.Success("Saved normalized catalog to %s\n", outPath)
	printer.Success("Saved filtered catalog to %s\n", filteredPath)
	return nil
}

func writeCatalog(path string, cat *pattern.Catalog) error {
	data, err := catalog.EncodeJSON(cat, "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return printer.Error("could not write catalog", err.Error(), nil)
	}
	return nil
}
