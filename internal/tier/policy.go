// Package tier maps tier names to the arity rule their patterns must obey.
package tier

import (
	"fmt"

	"github.com/dyluth/altar/pkg/pattern"
)

// Rule bounds how many slots a pattern may populate.
type Rule struct {
	Min int
	Max int
}

var (
	// Full patterns populate every slot.
	Full = Rule{Min: pattern.SlotCount, Max: pattern.SlotCount}

	// Partial patterns populate between three and seven slots.
	Partial = Rule{Min: 3, Max: pattern.SlotCount - 1}
)

// DefaultFullTiers are the tiers whose items receive full patterns.
var DefaultFullTiers = []string{"LEGENDARIES", "MYTHICALS", "ULTRA_BEASTS", "PARADOX", "ULTRA_RARE"}

// IsFull reports whether the rule demands every slot.
func (r Rule) IsFull() bool {
	return r.Min == pattern.SlotCount && r.Max == pattern.SlotCount
}

// Allows reports whether a pattern of the given arity satisfies the rule.
func (r Rule) Allows(arity int) bool {
	return arity >= r.Min && arity <= r.Max
}

// String renders the rule as "full" or "partial(min-max)".
func (r Rule) String() string {
	if r.IsFull() {
		return "full"
	}
	return fmt.Sprintf("partial(%d-%d)", r.Min, r.Max)
}

// Validate checks that the bounds are within [1, SlotCount] and ordered.
func (r Rule) Validate() error {
	if r.Min < 1 || r.Max > pattern.SlotCount || r.Min > r.Max {
		return fmt.Errorf("invalid arity rule %d-%d (must satisfy 1 <= min <= max <= %d)", r.Min, r.Max, pattern.SlotCount)
	}
	return nil
}

// Policy is a static table of Full tiers. Every other tier, including names
// the table has never seen, is Partial.
type Policy struct {
	full map[string]bool
}

// NewPolicy builds a policy that marks the named tiers Full.
func NewPolicy(fullTiers []string) *Policy {
	full := make(map[string]bool, len(fullTiers))
	for _, name := range fullTiers {
		full[name] = true
	}
	return &Policy{full: full}
}

// DefaultPolicy returns the policy built from DefaultFullTiers.
func DefaultPolicy() *Policy {
	return NewPolicy(DefaultFullTiers)
}

// Rule returns the arity rule for a tier. It never fails.
func (p *Policy) Rule(tierName string) Rule {
	if p != nil && p.full[tierName] {
		return Full
	}
	return Partial
}

// FullTiers returns the names marked Full, in no particular order.
func (p *Policy) FullTiers() []string {
	names := make([]string, 0, len(p.full))
	for name := range p.full {
		names = append(names, name)
	}
	return names
}
