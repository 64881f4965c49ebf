package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dyluth/altar/internal/registry"
	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

// assignEnumerated takes the next pattern from the pool of rule. Pool
// entries are distinct by construction; an entry is only skipped when a
// seeded registry already holds its key. The key is still inserted so a
// broken disjointness precondition surfaces as a DuplicateKeyError.
func (e *Engine) assignEnumerated(ctx context.Context, ps *pools, owner pattern.Owner, rule tier.Rule) (pattern.Pattern, error) {
	pl, err := ps.get(rule)
	if err != nil {
		return nil, err
	}

	for {
		p, ok := pl.next()
		if !ok {
			return nil, &ExhaustedEnumerationError{Owner: owner, Rule: rule, Size: pl.space.Size()}
		}
		if !rule.Allows(p.Arity()) {
			return nil, fmt.Errorf("pool for %s produced a pattern of arity %d", rule, p.Arity())
		}

		key := pattern.Canonicalize(p)
		taken, err := e.registry.Contains(ctx, key)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		if err := e.registry.Insert(ctx, key); err != nil {
			var dup *registry.DuplicateKeyError
			if errors.As(err, &dup) {
				o := owner
				dup.Owner = &o
			}
			return nil, err
		}
		return p, nil
	}
}
