package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

// pool hands out every pattern of a space exactly once, in an order
// shuffled per run.
type pool struct {
	space  *Space
	order  permutation
	cursor uint64
}

func newPool(space *Space, rng *rand.Rand, limit uint64) *pool {
	return &pool{
		space: space,
		order: newPermutation(space.Size(), rng, limit),
	}
}

// next returns the pattern under the cursor and advances it. It returns
// false once the pool is exhausted.
func (p *pool) next() (pattern.Pattern, bool) {
	if p.cursor >= p.space.Size() {
		return nil, false
	}
	pat := p.space.At(p.order.At(p.cursor))
	p.cursor++
	return pat, true
}

// remaining returns how many patterns are left.
func (p *pool) remaining() uint64 {
	return p.space.Size() - p.cursor
}

// pools holds one cursor per arity rule, built on first use and shared by
// every tier with that rule.
type pools struct {
	palette pattern.Palette
	rng     *rand.Rand
	limit   uint64
	byRule  map[tier.Rule]*pool
}

func newPools(palette pattern.Palette, rng *rand.Rand, limit uint64) *pools {
	return &pools{
		palette: palette,
		rng:     rng,
		limit:   limit,
		byRule:  make(map[tier.Rule]*pool),
	}
}

// get returns the pool for rule, creating it if needed. Pools of different
// rules must cover disjoint arities, otherwise two cursors could hand out
// the same pattern.
func (ps *pools) get(rule tier.Rule) (*pool, error) {
	if p, ok := ps.byRule[rule]; ok {
		return p, nil
	}

	for other := range ps.byRule {
		if rule.Min <= other.Max && other.Min <= rule.Max {
			return nil, fmt.Errorf("pattern spaces %s and %s overlap", rule, other)
		}
	}

	space, err := NewSpace(ps.palette, rule)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s space: %w", rule, err)
	}

	p := newPool(space, ps.rng, ps.limit)
	ps.byRule[rule] = p
	return p, nil
}
