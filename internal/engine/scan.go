package engine

import (
	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

// Duplicate is one colliding pair found by ScanDuplicates. First is the
// owner that held Key earlier in scan order and is never altered by repair.
type Duplicate struct {
	Key       pattern.Key
	First     pattern.Owner
	Colliding pattern.Owner
}

// ScanDuplicates walks a in tier then item order and reports every item
// whose key was already seen. Each colliding item appears once, paired with
// the first owner of its key.
func ScanDuplicates(a *pattern.Assignment) []Duplicate {
	firstOwners := make(map[pattern.Key]pattern.Owner, a.Len())

	var dups []Duplicate
	a.Each(func(owner pattern.Owner, p pattern.Pattern) bool {
		key := pattern.Canonicalize(p)
		if first, ok := firstOwners[key]; ok {
			dups = append(dups, Duplicate{Key: key, First: first, Colliding: owner})
			return true
		}
		firstOwners[key] = owner
		return true
	})

	return dups
}

// Violation is an item whose pattern arity does not satisfy its tier rule.
type Violation struct {
	Owner pattern.Owner
	Arity int
	Rule  tier.Rule
}

// Audit reports every item in a whose arity breaks the policy.
func Audit(a *pattern.Assignment, policy *tier.Policy) []Violation {
	var violations []Violation
	a.Each(func(owner pattern.Owner, p pattern.Pattern) bool {
		rule := policy.Rule(owner.Tier)
		if !rule.Allows(p.Arity()) {
			violations = append(violations, Violation{Owner: owner, Arity: p.Arity(), Rule: rule})
		}
		return true
	})
	return violations
}
