package commands

import (
	"fmt"

	"github.com/dyluth/altar/internal/config"
	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

var (
	configPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "altar",
	Short: "Altar - unique summoning patterns for every item in a catalog",
	Long: `Altar assigns every item of a tiered catalog a pattern of values placed
around eight compass slots, such that no two items ever share a pattern.

High tiers get patterns filling all eight slots; every other tier gets
between three and seven. Patterns can be generated from scratch, extended
when the catalog grows, audited for collisions and repaired in place.`,
	Version: version,
	// Unknown flags on the bare command are an error, not silent success
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to altar.yml (built-in defaults if missing)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write structured run events to stderr")
}
