package commands

import (
	"encoding/json"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/report"
	"github.com/spf13/cobra"
)

var (
	statsCatalog string
	statsFormat  string
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-tier counts and pattern capacity",
	Long: `Count the items of each tier after skipped tiers are dropped, and compare
the number of items needing each kind of pattern with how many distinct
patterns of that kind exist over the palette.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsCatalog, "catalog", "", "Catalog file (text or JSON)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "", "Catalog format: text or json (default: from extension)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg, statsCatalog, statsFormat)
	if err != nil {
		return err
	}

	stats, err := catalog.Summarize(cat, cfg.Policy(), cfg.PaletteValues())
	if err != nil {
		return printer.Error("could not size pattern spaces", err.Error(), nil)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		printer.Info("%s\n", data)
		return nil
	}

	report.FormatStats(printer.Out, stats)
	return nil
}
