package commands

import (
	"context"

	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/report"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	repairOut       string
	repairSeed      uint64
	repairPublish   bool
	repairNamespace string
	repairDryRun    bool
)

var repairCmd = &cobra.Command{
	Use:   "repair ASSIGNMENT",
	Short: "Regenerate the patterns of duplicate items",
	Long: `Find every item whose pattern was already used by an earlier item and
give it a fresh random pattern that no other item uses. The first owner of
each pattern is never changed, nor is any item without a collision.

The assignment is rewritten in place when anything was fixed. With --out
the result is always written, even when nothing needed fixing.

Examples:
  altar repair patterns.json
  altar repair patterns.json --out fixed.json --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().StringVarP(&repairOut, "out", "o", "", "Output file, or - for stdout (default: overwrite the input)")
	repairCmd.Flags().Uint64Var(&repairSeed, "seed", 0, "Random seed (default: from config, 0 = clock)")
	repairCmd.Flags().BoolVar(&repairPublish, "publish", false, "Also publish the repaired assignment to Redis")
	repairCmd.Flags().StringVarP(&repairNamespace, "namespace", "n", "", "Redis namespace (default: registry.namespace, else \"default\")")
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "Report the fixes without writing anything")
	rootCmd.AddCommand(repairCmd)
}

func runRepair(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	input := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if repairSeed != 0 {
		cfg.Generation.Seed = repairSeed
	}

	a, err := loadAssignment(input)
	if err != nil {
		return err
	}

	namespace, err := resolveNamespace(cfg, repairNamespace)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	reg, cleanup, err := openRegistry(ctx, cfg, namespace, runID)
	if err != nil {
		return err
	}
	defer cleanup()

	eng, err := engine.NewEngine(reg, engine.Options{
		Palette:     cfg.PaletteValues(),
		Policy:      cfg.Policy(),
		MaxAttempts: *cfg.Generation.MaxAttempts,
		Rand:        newRand(cfg.Generation.Seed),
		Logger:      engineLogger(),
		RunID:       runID,
	})
	if err != nil {
		return printer.Error("could not start engine", err.Error(), nil)
	}

	result, runErr := eng.Repair(ctx, a)

	// Rewriting the input in place is skipped when nothing changed; an
	// explicit --out is always written.
	out := repairOut
	if out == "" {
		out = input
	}
	write := !repairDryRun && (repairOut != "" || len(result.Fixes) > 0)

	if out != stdoutPath {
		report.FormatFixes(printer.Out, result.Fixes)
	}

	if write {
		if err := writeAssignment(out, result.Assignment); err != nil {
			return printer.Error("could not write assignment", err.Error(), nil)
		}
	}
	if runErr != nil {
		return engineError(runErr)
	}
	if err := reportFailures(result.Failures); err != nil {
		return err
	}

	if repairPublish && !repairDryRun {
		if err := publish(ctx, cfg, namespace, result.Assignment, runID); err != nil {
			return err
		}
	}

	if out != stdoutPath {
		switch {
		case len(result.Fixes) == 0 && write:
			printer.Success("No duplicates in %s, wrote %s\n", input, out)
		case len(result.Fixes) == 0:
			printer.Success("No duplicates in %s\n", input)
		case repairDryRun:
			printer.Success("Would repair %d item(s) (dry run, nothing written)\n", len(result.Fixes))
		default:
			printer.Success("Repaired %d item(s), wrote %s\n", len(result.Fixes), out)
		}
	}

	return nil
}
