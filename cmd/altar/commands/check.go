package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/report"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/spf13/cobra"
)

var (
	checkOutputFormat string
	checkFromRedis    bool
	checkNamespace    string
)

var checkCmd = &cobra.Command{
	Use:   "check [ASSIGNMENT]",
	Short: "Audit an assignment for duplicate patterns and arity violations",
	Long: `Scan an assignment in tier then item order and report:

  • duplicates - items whose pattern was already used by an earlier item
  • violations - items whose slot count breaks their tier's rule

The first item to use a pattern is its owner; every later item using it is
reported as a duplicate of that owner. Exits non-zero when anything is found.

Output Formats:
  default - Human-readable tables
  jsonl   - Line-delimited JSON, one finding per line

Examples:
  altar check patterns.json
  altar check --from-redis --namespace pokemon -o jsonl | jq .owner`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	checkCmd.Flags().BoolVar(&checkFromRedis, "from-redis", false, "Audit the assignment published to Redis")
	checkCmd.Flags().StringVarP(&checkNamespace, "namespace", "n", "", "Redis namespace (default: registry.namespace, else \"default\")")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if checkOutputFormat != "default" && checkOutputFormat != "jsonl" {
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", checkOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}
	if checkFromRedis == (len(args) == 1) {
		return printer.Error(
			"nothing to check",
			"Give exactly one of an assignment file or --from-redis.",
			[]string{"altar check patterns.json", "altar check --from-redis --namespace <name>"},
		)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var a *pattern.Assignment
	if checkFromRedis {
		namespace, err := resolveNamespace(cfg, checkNamespace)
		if err != nil {
			return err
		}
		s, err := openStore(ctx, cfg, namespace)
		if err != nil {
			return err
		}
		defer s.Close()

		if a, err = s.Load(ctx); err != nil {
			return printer.Error("could not read published assignment", err.Error(), nil)
		}
	} else {
		if a, err = loadAssignment(args[0]); err != nil {
			return err
		}
	}

	dups := engine.ScanDuplicates(a)
	violations := engine.Audit(a, cfg.Policy())

	if checkOutputFormat == "jsonl" {
		if err := report.FormatJSONL(printer.Out, dups, violations, nil); err != nil {
			return err
		}
	} else {
		printer.Info("Checked %d item(s) in %d tier(s)\n\n", a.Len(), len(a.Tiers()))
		report.FormatDuplicates(printer.Out, dups)
		printer.Info("\n")
		report.FormatViolations(printer.Out, violations)
	}

	if len(dups) > 0 || len(violations) > 0 {
		return printer.Error(
			"check failed",
			fmt.Sprintf("Found %d duplicate(s) and %d arity violation(s).", len(dups), len(violations)),
			[]string{"Regenerate the duplicates:\n  altar repair <file>"},
		)
	}

	if checkOutputFormat != "jsonl" {
		printer.Success("All patterns are unique\n")
	}
	return nil
}
