package engine

import (
	"context"
	"errors"

	"github.com/dyluth/altar/pkg/pattern"
)

// Fix records one pattern replaced by Repair.
type Fix struct {
	Owner pattern.Owner
	Old   pattern.Pattern
	New   pattern.Pattern
}

// RepairResult is the outcome of Repair. Assignment is a copy of the input
// with every applied fix substituted in place.
type RepairResult struct {
	RunID      string
	Assignment *pattern.Assignment
	Duplicates []Duplicate // collisions found before repair
	Fixes      []Fix
	Failures   []error // items whose fix exhausted its attempts
}

// Repair regenerates the pattern of every colliding item in a, leaving
// first-seen owners untouched. The input is not modified.
//
// The engine's registry is seeded with the distinct keys of a; keys already
// present in it are left alone, so a caller may pre-seed keys that must also
// be avoided. Each replacement is drawn with the randomized strategy under
// the item's tier rule and inserted before the next fix. If a rescan still
// finds collisions the result is returned with a *RepairIncompleteError.
func (e *Engine) Repair(ctx context.Context, a *pattern.Assignment) (*RepairResult, error) {
	result := &RepairResult{
		RunID:      e.runID,
		Assignment: a.Clone(),
		Duplicates: ScanDuplicates(a),
	}

	e.logEvent("repair_started", map[string]interface{}{
		"items":      a.Len(),
		"duplicates": len(result.Duplicates),
	})

	var seedErr error
	a.Each(func(_ pattern.Owner, p pattern.Pattern) bool {
		key := pattern.Canonicalize(p)
		taken, err := e.registry.Contains(ctx, key)
		if err != nil {
			seedErr = err
			return false
		}
		if taken {
			return true
		}
		if err := e.registry.Insert(ctx, key); err != nil {
			seedErr = err
			return false
		}
		return true
	})
	if seedErr != nil {
		return result, seedErr
	}

	for _, d := range result.Duplicates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		owner := d.Colliding
		rule := e.policy.Rule(owner.Tier)

		p, key, err := e.assignRandom(ctx, owner, rule)
		if err != nil {
			if IsExhaustedAttempts(err) {
				result.Failures = append(result.Failures, err)
				continue
			}
			return result, err
		}

		old, _ := result.Assignment.Get(owner.Tier, owner.Item)
		result.Assignment.Set(owner.Tier, owner.Item, p)
		result.Fixes = append(result.Fixes, Fix{Owner: owner, Old: old, New: p})

		e.logEvent("duplicate_fixed", map[string]interface{}{
			"tier":        owner.Tier,
			"item":        owner.Item,
			"first_owner": d.First.String(),
			"old_key":     string(d.Key),
			"new_key":     string(key),
		})
	}

	if remaining := ScanDuplicates(result.Assignment); len(remaining) > 0 {
		err := &RepairIncompleteError{Remaining: remaining}
		e.logEvent("repair_incomplete", map[string]interface{}{
			"level":     "error",
			"remaining": len(remaining),
		})
		return result, err
	}

	e.logEvent("repair_completed", map[string]interface{}{
		"fixed":    len(result.Fixes),
		"failures": len(result.Failures),
	})

	return result, nil
}

// Err joins the per-item failures, or returns nil if there were none.
func (r *RepairResult) Err() error {
	return errors.Join(r.Failures...)
}
