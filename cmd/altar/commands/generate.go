package commands

import (
	"context"
	"fmt"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/config"
	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	generateCatalog     string
	generateFormat      string
	generateStrategy    string
	generateSeed        uint64
	generateMaxAttempts int
	generateOut         string
	generateBase        string
	generatePublish     bool
	generateBackend     string
	generateNamespace   string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Assign a unique pattern to every catalog item",
	Long: `Assign every item of the catalog a pattern no other item shares.

Strategies:
  enumerate - walk a shuffled pool of every possible pattern (default)
  random    - draw random patterns, retrying on collision up to
              generation.max_attempts times per item

With --base, the patterns of an existing assignment are kept and only
items without one are assigned. The base must be free of collisions.

Examples:
  # Generate from a text catalog
  altar generate --catalog catalog.txt --out patterns.json

  # Reproducible run
  altar generate --catalog catalog.txt --seed 42

  # Assign only items added since the last run, then publish to Redis
  altar generate --catalog catalog.txt --base patterns.json --out patterns.json --publish`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateCatalog, "catalog", "", "Catalog file (text or JSON)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "", "Catalog format: text or json (default: from extension)")
	generateCmd.Flags().StringVar(&generateStrategy, "strategy", "", "Strategy: enumerate or random (default: from config)")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Random seed (default: from config, 0 = clock)")
	generateCmd.Flags().IntVar(&generateMaxAttempts, "max-attempts", 0, "Per-item attempt bound of the random strategy (default: from config)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "patterns.json", "Output file, or - for stdout")
	generateCmd.Flags().StringVar(&generateBase, "base", "", "Existing assignment whose patterns are kept")
	generateCmd.Flags().BoolVar(&generatePublish, "publish", false, "Also publish the assignment to Redis")
	generateCmd.Flags().StringVar(&generateBackend, "registry", "", "Registry backend: memory or redis (default: from config)")
	generateCmd.Flags().StringVarP(&generateNamespace, "namespace", "n", "", "Redis namespace (default: registry.namespace, else \"default\")")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyGenerationFlags(cfg); err != nil {
		return err
	}

	cat, err := loadCatalog(cfg, generateCatalog, generateFormat)
	if err != nil {
		return err
	}

	stats, err := catalog.Summarize(cat, cfg.Policy(), cfg.PaletteValues())
	if err != nil {
		return printer.Error("could not size pattern spaces", err.Error(), nil)
	}
	for _, r := range stats.Rules {
		if !r.Fits() {
			printer.Warning("%d items need a %s pattern but only %d exist\n", r.Demand, r.Kind, r.Capacity)
		}
	}

	base := pattern.NewAssignment()
	if generateBase != "" {
		if base, err = loadAssignment(generateBase); err != nil {
			return err
		}
	}

	namespace, err := resolveNamespace(cfg, generateNamespace)
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

	result, runErr := eng.Extend(ctx, base, cat, engine.Strategy(cfg.Generation.Strategy))

	// Partial progress is written even when the run failed.
	if result != nil {
		if err := writeAssignment(generateOut, result.Assignment); err != nil {
			return printer.Error("could not write assignment", err.Error(), nil)
		}
	}
	if runErr != nil {
		return engineError(runErr)
	}

	if generatePublish {
		if err := publish(ctx, cfg, namespace, result.Assignment, runID); err != nil {
			return err
		}
	}

	if generateOut != stdoutPath {
		printer.Success("Assigned %d pattern(s), kept %d, wrote %s\n", result.Assigned, result.Kept, generateOut)
	}

	return reportFailures(result.Failures)
}

// applyGenerationFlags lets flags override the generation and registry
// settings of the config.
func applyGenerationFlags(cfg *config.AltarConfig) error {
	if generateStrategy != "" {
		if err := engine.Strategy(generateStrategy).Validate(); err != nil {
			return printer.Error("invalid strategy", err.Error(), []string{"Valid strategies: enumerate, random"})
		}
		cfg.Generation.Strategy = generateStrategy
	}
	if generateSeed != 0 {
		cfg.Generation.Seed = generateSeed
	}
	if generateMaxAttempts != 0 {
		if generateMaxAttempts < 0 {
			return printer.Error("invalid max attempts", fmt.Sprintf("--max-attempts must be >= 1, got %d", generateMaxAttempts), nil)
		}
		attempts := generateMaxAttempts
		cfg.Generation.MaxAttempts = &attempts
	}
	if generateBackend != "" {
		if generateBackend != config.BackendMemory && generateBackend != config.BackendRedis {
			return printer.Error("invalid registry backend", fmt.Sprintf("Unknown backend: %s", generateBackend), []string{"Valid backends: memory, redis"})
		}
		cfg.Registry.Backend = generateBackend
	}
	return nil
}

// publish saves a to the Redis store of namespace.
func publish(ctx context.Context, cfg *config.AltarConfig, namespace string, a *pattern.Assignment, runID string) error {
	s, err := openStore(ctx, cfg, namespace)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Save(ctx, a, runID); err != nil {
		return printer.Error("publish failed", err.Error(), nil)
	}
	printer.Success("Published %d pattern(s) to namespace '%s'\n", a.Len(), namespace)
	return nil
}
