package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/config"
	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/internal/instance"
	"github.com/dyluth/altar/internal/printer"
	"github.com/dyluth/altar/internal/registry"
	"github.com/dyluth/altar/internal/store"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/redis/go-redis/v9"
)

// stdoutPath makes an output flag write to standard output.
const stdoutPath = "-"

// loadConfig reads --config, falling back to defaults when it is missing.
func loadConfig() (*config.AltarConfig, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			fmt.Sprintf("Could not load %s: %v", configPath, err),
			[]string{"Create a fresh configuration:\n  altar init --force"},
		)
	}
	return cfg, nil
}

// engineLogger returns the logger for structured run events.
func engineLogger() *log.Logger {
	if verbose {
		return log.New(printer.Err, "", 0)
	}
	return log.New(io.Discard, "", 0)
}

// newRand returns a generator for seed, or nil to let the engine seed from
// the clock.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// resolveNamespace picks the flag, then registry.namespace, then
// instance.DefaultNamespace. Every command touching Redis resolves it here.
func resolveNamespace(cfg *config.AltarConfig, flag string) (string, error) {
	ns := flag
	if ns == "" {
		ns = cfg.Registry.Namespace
	}
	if ns == "" {
		ns = instance.DefaultNamespace
	}
	if err := instance.ValidateName(ns); err != nil {
		return "", printer.Error(
			"invalid namespace",
			err.Error(),
			[]string{"Use a lowercase DNS-style name:\n  --namespace pokemon"},
		)
	}
	return ns, nil
}

func redisOptions(cfg *config.AltarConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.Registry.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return opts, nil
}

// openRegistry builds the run's registry. The returned cleanup discards a
// Redis-backed key set and closes its connection.
func openRegistry(ctx context.Context, cfg *config.AltarConfig, namespace, runID string) (registry.Registry, func(), error) {
	if cfg.Registry.Backend != config.BackendRedis {
		return registry.NewMemory(), func() {}, nil
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	reg, err := registry.NewRedis(opts, namespace, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Redis registry: %w", err)
	}
	if err := reg.Ping(ctx); err != nil {
		reg.Close()
		return nil, nil, redisUnavailable(cfg, err)
	}

	cleanup := func() {
		if err := reg.Discard(context.Background()); err != nil {
			printer.Warning("failed to discard registry %s: %v\n", reg.Key(), err)
		}
		reg.Close()
	}
	return reg, cleanup, nil
}

// openStore connects to the Redis store of namespace.
func openStore(ctx context.Context, cfg *config.AltarConfig, namespace string) (*store.Redis, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	s, err := store.NewRedis(opts, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis store: %w", err)
	}
	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, redisUnavailable(cfg, err)
	}
	return s, nil
}

func redisUnavailable(cfg *config.AltarConfig, err error) error {
	return printer.ErrorWithContext(
		"Redis connection failed",
		fmt.Sprintf("Could not connect to Redis at %s", cfg.Registry.RedisURL),
		map[string]string{"Error": err.Error()},
		[]string{
			"Start Redis:\n  docker run -d -p 6379:6379 redis:7-alpine",
			"Use the in-memory registry:\n  registry.backend: memory",
		},
	)
}

// loadCatalog reads a catalog and drops the configured skip tiers.
func loadCatalog(cfg *config.AltarConfig, path, formatName string) (*pattern.Catalog, error) {
	if path == "" {
		return nil, printer.Error(
			"no catalog given",
			"A catalog of tiers and items is required.",
			[]string{"Pass one:\n  --catalog catalog.txt"},
		)
	}

	format, err := catalog.ParseFormat(formatName, path)
	if err != nil {
		return nil, printer.Error("invalid catalog format", err.Error(), []string{"Valid formats: text, json"})
	}

	cat, err := catalog.LoadFile(path, format, cfg.Tiers.Known)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, printer.Error(
				"catalog not found",
				fmt.Sprintf("No file at %s", path),
				[]string{"Create a sample project:\n  altar init"},
			)
		}
		return nil, printer.Error("could not read catalog", err.Error(), nil)
	}

	return cat.Without(cfg.Tiers.Skip...), nil
}

// loadAssignment reads an assignment document.
func loadAssignment(path string) (*pattern.Assignment, error) {
	a, err := store.LoadFile(path)
	if err != nil {
		return nil, printer.Error("could not read assignment", err.Error(), nil)
	}
	return a, nil
}

// writeAssignment writes a to path, or to standard output for "-".
func writeAssignment(path string, a *pattern.Assignment) error {
	if path == stdoutPath {
		data, err := store.EncodeJSON(a)
		if err != nil {
			return err
		}
		_, err = printer.Out.Write(data)
		return err
	}
	return store.SaveFile(path, a)
}

// engineError turns a fatal engine error into a printed report.
func engineError(err error) error {
	var exhausted *engine.ExhaustedEnumerationError
	var dup *registry.DuplicateKeyError
	var incomplete *engine.RepairIncompleteError

	switch {
	case errors.As(err, &exhausted):
		return printer.ErrorWithContext(
			"pattern pool exhausted",
			fmt.Sprintf("Every %s pattern over the palette is already in use.", exhausted.Rule),
			map[string]string{
				"Item":      exhausted.Owner.String(),
				"Pool size": fmt.Sprintf("%d", exhausted.Size),
			},
			[]string{
				"Add values to the palette in altar.yml",
				"Mark fewer tiers as full (tiers.full)",
			},
		)
	case errors.As(err, &dup):
		ctx := map[string]string{"Key": string(dup.Key)}
		if dup.Owner != nil {
			ctx["Item"] = dup.Owner.String()
		}
		if dup.FirstOwner != nil {
			ctx["First owner"] = dup.FirstOwner.String()
		}
		return printer.ErrorWithContext(
			"duplicate pattern",
			"Two items ended up with the same pattern.",
			ctx,
			[]string{"Repair the base assignment first:\n  altar repair <file>"},
		)
	case errors.As(err, &incomplete):
		ctx := make(map[string]string, len(incomplete.Remaining))
		for _, d := range incomplete.Remaining {
			ctx[d.Colliding.String()] = "collides with " + d.First.String()
		}
		return printer.ErrorWithContext(
			"repair incomplete",
			fmt.Sprintf("%d collision(s) remain after repair.", len(incomplete.Remaining)),
			ctx,
			[]string{"Raise generation.max_attempts and run repair again"},
		)
	default:
		return printer.Error("run failed", err.Error(), nil)
	}
}

// reportFailures prints per-item failures and returns an error if any.
func reportFailures(failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	for _, f := range failures {
		printer.Warning("%v\n", f)
	}
	return printer.Error(
		fmt.Sprintf("%d item(s) could not be assigned", len(failures)),
		"The random strategy ran out of attempts. Assigned items were still written.",
		[]string{
			"Raise generation.max_attempts",
			"Use the enumerate strategy:\n  --strategy enumerate",
		},
	)
}
