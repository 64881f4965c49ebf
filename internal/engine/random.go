package engine

import (
	"context"
	"errors"

	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

// drawRandom returns a candidate consistent with rule: a uniform slot count
// in [rule.Min, rule.Max], that many distinct slots chosen uniformly, and a
// uniform palette value for each.
func (e *Engine) drawRandom(rule tier.Rule) pattern.Pattern {
	arity := rule.Min + e.rng.IntN(rule.Max-rule.Min+1)
	slots := e.rng.Perm(pattern.SlotCount)[:arity]

	p := make(pattern.Pattern, arity)
	for _, i := range slots {
		p[pattern.Slots[i]] = e.palette[e.rng.IntN(len(e.palette))]
	}
	return p
}

// assignRandom draws candidates for owner until one is absent from the
// registry, then inserts its key. After maxAttempts rejections it returns an
// *ExhaustedAttemptsError.
func (e *Engine) assignRandom(ctx context.Context, owner pattern.Owner, rule tier.Rule) (pattern.Pattern, pattern.Key, error) {
	type candidate struct {
		pattern pattern.Pattern
		key     pattern.Key
	}

	c, attempts, err := Retry(e.maxAttempts, func(int) (candidate, bool, error) {
		p := e.drawRandom(rule)
		key := pattern.Canonicalize(p)

		taken, err := e.registry.Contains(ctx, key)
		if err != nil || taken {
			return candidate{}, false, err
		}
		if err := e.registry.Insert(ctx, key); err != nil {
			return candidate{}, false, err
		}
		return candidate{pattern: p, key: key}, true, nil
	})
	if err != nil {
		if errors.Is(err, errRetryLimit) {
			return nil, "", &ExhaustedAttemptsError{Owner: owner, Rule: rule, Attempts: attempts}
		}
		return nil, "", err
	}

	return c.pattern, c.key, nil
}
