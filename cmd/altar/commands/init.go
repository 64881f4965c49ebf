package commands

import (
	"fmt"

	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/scaffold"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
)

var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Create altar.yml and a sample catalog",
	Long: `Initialize a new altar project in DIR (default: the current directory).

Creates:
  • altar.yml   - configuration with every default spelled out
  • catalog.txt - a small sample catalog in the text format

Use --force to overwrite existing files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing altar.yml and catalog.txt")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	if !forceInit {
		if err := scaffold.CheckExisting(dir); err != nil {
			return printer.Error(
				"project already initialized",
				err.Error(),
				[]string{"Use 'altar init --force' to overwrite the existing files"},
			)
		}
	}

	if err := scaffold.Initialize(dir, forceInit); err != nil {
		return printer.Error("initialization failed", fmt.Sprintf("%v", err), nil)
	}

	printer.Success("Initialized altar project in %s\n", dir)
	printer.Info("\nCreated:\n")
	for _, name := range scaffold.CreatedFiles() {
		printer.Info("  ✓ %s\n", name)
	}
	printer.Info("\nNext steps:\n")
	printer.Info("  1. Replace catalog.txt with your own tiers and items\n")
	printer.Info("  2. Run 'altar stats --catalog catalog.txt' to check capacity\n")
	printer.Info("  3. Run 'altar generate --catalog catalog.txt'\n")
	return nil
}
