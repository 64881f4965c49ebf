package engine

import (
	"fmt"
	"math/bits"

	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
)

// Space is the ranked set of every pattern a rule admits over a palette.
// Index i maps to a pattern without materializing the set: blocks are
// ordered by arity, then by slot combination in lexicographic order, then by
// the values written as base-len(palette) digits, most significant first.
type Space struct {
	palette pattern.Palette
	rule    tier.Rule
	blocks  []spaceBlock
	size    uint64
}

type spaceBlock struct {
	arity    int
	combos   [][]int
	perCombo uint64
	size     uint64
}

// NewSpace builds the space of rule over palette. It fails if the space
// cannot be indexed by a uint64.
func NewSpace(palette pattern.Palette, rule tier.Rule) (*Space, error) {
	if err := palette.Validate(); err != nil {
		return nil, fmt.Errorf("invalid palette: %w", err)
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	s := &Space{palette: palette, rule: rule}
	for arity := rule.Min; arity <= rule.Max; arity++ {
		perCombo, ok := pow(uint64(len(palette)), arity)
		if !ok {
			return nil, fmt.Errorf("%s space over %d values overflows", rule, len(palette))
		}

		combos := combinations(pattern.SlotCount, arity)
		hi, size := bits.Mul64(uint64(len(combos)), perCombo)
		if hi != 0 {
			return nil, fmt.Errorf("%s space over %d values overflows", rule, len(palette))
		}

		total, carry := bits.Add64(s.size, size, 0)
		if carry != 0 {
			return nil, fmt.Errorf("%s space over %d values overflows", rule, len(palette))
		}

		s.size = total
		s.blocks = append(s.blocks, spaceBlock{arity: arity, combos: combos, perCombo: perCombo, size: size})
	}

	return s, nil
}

// Size returns the number of patterns in the space.
func (s *Space) Size() uint64 {
	return s.size
}

// Rule returns the arity rule the space enumerates.
func (s *Space) Rule() tier.Rule {
	return s.rule
}

// At returns the pattern with rank i. It panics if i is out of range.
func (s *Space) At(i uint64) pattern.Pattern {
	if i >= s.size {
		panic(fmt.Sprintf("pattern index %d out of range [0, %d)", i, s.size))
	}

	for _, b := range s.blocks {
		if i >= b.size {
			i -= b.size
			continue
		}

		slots := b.combos[i/b.perCombo]
		digits := i % b.perCombo
		base := uint64(len(s.palette))

		p := make(pattern.Pattern, b.arity)
		for j := b.arity - 1; j >= 0; j-- {
			p[pattern.Slots[slots[j]]] = s.palette[digits%base]
			digits /= base
		}
		return p
	}

	panic("unreachable: index within size but outside every block")
}

// pow returns base^exp and false on overflow.
func pow(base uint64, exp int) (uint64, bool) {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		hi, lo := bits.Mul64(result, base)
		if hi != 0 {
			return 0, false
		}
		result = lo
	}
	return result, true
}

// combinations lists the k-element subsets of [0, n) in lexicographic order.
func combinations(n, k int) [][]int {
	var out [][]int
	current := make([]int, 0, k)

	var walk func(start int)
	walk = func(start int) {
		if len(current) == k {
			combo := make([]int, k)
			copy(combo, current)
			out = append(out, combo)
			return
		}
		for i := start; i <= n-(k-len(current)); i++ {
			current = append(current, i)
			walk(i + 1)
			current = current[:len(current)-1]
		}
	}
	walk(0)

	return out
}
