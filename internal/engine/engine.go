// Package engine assigns a unique pattern to every catalog item.
//
// Two interchangeable strategies are offered. The randomized strategy draws
// candidates until one is absent from the registry, bounded by a per-item
// attempt limit. The enumeration strategy walks shuffled pools of every
// possible pattern, one pool per arity rule. Repair re-assigns only the
// colliding subset of an existing assignment.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/dyluth/altar/internal/registry"
	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/google/uuid"
)

// DefaultMaxAttempts bounds the randomized strategy per item.
const DefaultMaxAttempts = 10000

// Strategy selects how candidate patterns are produced.
type Strategy string

const (
	// StrategyRandom draws random candidates and retries on collision.
	StrategyRandom Strategy = "random"

	// StrategyEnumerate consumes shuffled pools of every possible pattern.
	StrategyEnumerate Strategy = "enumerate"
)

// Validate checks if the Strategy is a valid enum value.
func (s Strategy) Validate() error {
	switch s {
	case StrategyRandom, StrategyEnumerate:
		return nil
	default:
		return fmt.Errorf("unknown strategy: %q (must be 'random' or 'enumerate')", s)
	}
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Palette     pattern.Palette // default pattern.DefaultPalette
	Policy      *tier.Policy    // default tier.DefaultPolicy()
	MaxAttempts int             // default DefaultMaxAttempts
	Rand        *rand.Rand      // default time-seeded PCG
	Logger      *log.Logger     // default log.Default()
	RunID       string          // default random UUID
}

// Engine runs one assignment pass against an explicitly owned registry.
// It is not safe for concurrent use.
type Engine struct {
	registry    registry.Registry
	palette     pattern.Palette
	policy      *tier.Policy
	maxAttempts int
	rng         *rand.Rand
	logger      *log.Logger
	runID       string
	poolLimit   uint64
}

// NewEngine creates an engine that commits keys to reg.
// The palette is validated up front so a token colliding with the absent
// marker fails before any pattern is produced.
func NewEngine(reg registry.Registry, opts Options) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}

	palette := opts.Palette
	if palette == nil {
		palette = pattern.DefaultPalette
	}
	if err := palette.Validate(); err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}

	policy := opts.Policy
	if policy == nil {
		policy = tier.DefaultPolicy()
	}

	maxAttempts := opts.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if maxAttempts < 0 {
		return nil, fmt.Errorf("max attempts must be >= 1, got %d", maxAttempts)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	return &Engine{
		registry:    reg,
		palette:     palette,
		policy:      policy,
		maxAttempts: maxAttempts,
		rng:         rng,
		logger:      logger,
		runID:       runID,
		poolLimit:   materializeLimit,
	}, nil
}

// RunID returns the identifier attached to this engine's log events.
func (e *Engine) RunID() string {
	return e.runID
}

// Result is the outcome of a generation run. Assignment always holds every
// item committed before the run ended, even when it ended in error.
type Result struct {
	RunID      string
	Strategy   Strategy
	Assignment *pattern.Assignment
	Assigned   int     // items that received a new pattern
	Kept       int     // items carried over from the base assignment
	Failures   []error // per-item failures that did not abort the run
}

// Err joins the per-item failures, or returns nil if there were none.
func (r *Result) Err() error {
	return errors.Join(r.Failures...)
}

// Generate assigns a pattern to every item of cat using strategy.
func (e *Engine) Generate(ctx context.Context, cat *pattern.Catalog, strategy Strategy) (*Result, error) {
	return e.Extend(ctx, pattern.NewAssignment(), cat, strategy)
}

// Extend seeds the registry with base and assigns patterns only to catalog
// items base does not already cover. Existing patterns are kept as they are.
// Seeding fails with a *registry.DuplicateKeyError if base already holds a
// collision; run Repair on it first.
//
// The returned error is fatal (registry failure, exhausted enumeration,
// duplicate key). Per-item exhaustion of the randomized strategy is
// reported through Result.Failures instead.
func (e *Engine) Extend(ctx context.Context, base *pattern.Assignment, cat *pattern.Catalog, strategy Strategy) (*Result, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	if err := registry.Seed(ctx, e.registry, base); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      e.runID,
		Strategy:   strategy,
		Assignment: base.Clone(),
		Kept:       base.Len(),
	}

	e.logEvent("run_started", map[string]interface{}{
		"strategy": string(strategy),
		"items":    cat.Len(),
		"kept":     result.Kept,
	})

	var commit func(ctx context.Context, owner pattern.Owner, rule tier.Rule) error
	switch strategy {
	case StrategyRandom:
		commit = func(ctx context.Context, owner pattern.Owner, rule tier.Rule) error {
			p, _, err := e.assignRandom(ctx, owner, rule)
			if err != nil {
				if IsExhaustedAttempts(err) {
					result.Failures = append(result.Failures, err)
					e.logEvent("item_exhausted", map[string]interface{}{
						"level": "error",
						"tier":  owner.Tier,
						"item":  owner.Item,
						"error": err.Error(),
					})
					return nil
				}
				return err
			}
			result.Assignment.Set(owner.Tier, owner.Item, p)
			result.Assigned++
			return nil
		}
	case StrategyEnumerate:
		ps := newPools(e.palette, e.rng, e.poolLimit)
		commit = func(ctx context.Context, owner pattern.Owner, rule tier.Rule) error {
			p, err := e.assignEnumerated(ctx, ps, owner, rule)
			if err != nil {
				return err
			}
			result.Assignment.Set(owner.Tier, owner.Item, p)
			result.Assigned++
			return nil
		}
	}

	for _, t := range cat.Tiers {
		rule := e.policy.Rule(t.Name)
		result.Assignment.EnsureTier(t.Name)

		e.logEvent("tier_started", map[string]interface{}{
			"tier":  t.Name,
			"items": len(t.Items),
			"rule":  rule.String(),
		})

		for _, item := range t.Items {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if _, ok := result.Assignment.Get(t.Name, item); ok {
				continue
			}

			owner := pattern.Owner{Tier: t.Name, Item: item}
			if err := commit(ctx, owner, rule); err != nil {
				e.logEvent("run_aborted", map[string]interface{}{
					"level": "error",
					"tier":  owner.Tier,
					"item":  owner.Item,
					"error": err.Error(),
				})
				return result, err
			}
		}
	}

	// Final rescan: a collision here means an invariant broke somewhere.
	if dups := ScanDuplicates(result.Assignment); len(dups) > 0 {
		d := dups[0]
		return result, &registry.DuplicateKeyError{Key: d.Key, Owner: &d.Colliding, FirstOwner: &d.First}
	}

	e.logEvent("run_completed", map[string]interface{}{
		"assigned": result.Assigned,
		"kept":     result.Kept,
		"failures": len(result.Failures),
	})

	return result, nil
}

// logEvent logs a structured event in JSON format.
func (e *Engine) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	data["component"] = "engine"
	data["event_type"] = eventType
	data["run_id"] = e.runID

	jsonData, err := json.Marshal(data)
	if err != nil {
		e.logger.Printf("[Engine] Failed to marshal log event: %v", err)
		return
	}

	e.logger.Println(string(jsonData))
}
