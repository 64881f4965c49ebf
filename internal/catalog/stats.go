package catalog

import (
	"fmt"

	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

// TierStats describes one tier of a catalog.
type TierStats struct {
	Name  string    `json:"name"`
	Items int       `json:"items"`
	Rule  tier.Rule `json:"-"`
	Kind  string    `json:"rule"`
}

// RuleStats compares how many items need a pattern of a rule against how
// many distinct patterns the rule admits. Tiers sharing a rule draw from
// the same space.
type RuleStats struct {
	Rule     tier.Rule `json:"-"`
	Kind     string    `json:"rule"`
	Demand   int       `json:"demand"`
	Capacity uint64    `json:"capacity"`
}

// Fits reports whether every item of the rule can get a distinct pattern.
func (r RuleStats) Fits() bool {
	return uint64(r.Demand) <= r.Capacity
}

// Stats summarizes a catalog under a policy and palette.
type Stats struct {
	Tiers []TierStats `json:"tiers"`
	Rules []RuleStats `json:"rules"`
	Total int         `json:"total"`
}

// Summarize counts items per tier and per rule, and computes the capacity
// of each rule's pattern space.
func Summarize(cat *pattern.Catalog, policy *tier.Policy, palette pattern.Palette) (*Stats, error) {
	stats := &Stats{}
	ruleIndex := make(map[tier.Rule]int)

	for _, t := range cat.Tiers {
		rule := policy.Rule(t.Name)
		stats.Tiers = append(stats.Tiers, TierStats{
			Name:  t.Name,
			Items: len(t.Items),
			Rule:  rule,
			Kind:  rule.String(),
		})
		stats.Total += len(t.Items)

		i, ok := ruleIndex[rule]
		if !ok {
			space, err := engine.NewSpace(palette, rule)
			if err != nil {
				return nil, fmt.Errorf("failed to size %s space: %w", rule, err)
			}
			i = len(stats.Rules)
			ruleIndex[rule] = i
			stats.Rules = append(stats.Rules, RuleStats{Rule: rule, Kind: rule.String(), Capacity: space.Size()})
		}
		stats.Rules[i].Demand += len(t.Items)
	}

	return stats, nil
}
