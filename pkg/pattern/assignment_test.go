package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentOrdering(t *testing.T) {
	a := NewAssignment()
	a.Set("RARE", "b", Pattern{North: "p"})
	a.Set("LEGENDARIES", "z", Pattern{North: "q"})
	a.Set("RARE", "a", Pattern{East: "p"})

	assert.Equal(t, []string{"RARE", "LEGENDARIES"}, a.Tiers())
	entries := a.Entries("RARE")
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Item)
	assert.Equal(t, "a", entries[1].Item)
	assert.Equal(t, 3, a.Len())
}

func TestAssignmentSetReplacesInPlace(t *testing.T) {
	a := NewAssignment()
	a.Set("RARE", "x", Pattern{North: "p"})
	a.Set("RARE", "y", Pattern{North: "q"})
	a.Set("RARE", "x", Pattern{South: "p"})

	entries := a.Entries("RARE")
	require.Len(t, entries, 2)
	assert.Equal(t, "x", entries[0].Item)
	assert.Equal(t, Pattern{South: "p"}, entries[0].Pattern)

	p, ok := a.Get("RARE", "x")
	require.True(t, ok)
	assert.Equal(t, Pattern{South: "p"}, p)

	_, ok = a.Get("RARE", "missing")
	assert.False(t, ok)
	_, ok = a.Get("MISSING", "x")
	assert.False(t, ok)
}

func TestAssignmentEnsureTier(t *testing.T) {
	a := NewAssignment()
	a.EnsureTier("EMPTY")
	assert.Equal(t, []string{"EMPTY"}, a.Tiers())
	assert.Empty(t, a.Entries("EMPTY"))
	assert.Equal(t, 0, a.Len())
}

func TestAssignmentEach(t *testing.T) {
	a := NewAssignment()
	a.Set("A", "x", Pattern{North: "p"})
	a.Set("A", "y", Pattern{North: "q"})
	a.Set("B", "z", Pattern{East: "p"})

	var owners []string
	a.Each(func(owner Owner, p Pattern) bool {
		owners = append(owners, owner.String())
		return true
	})
	assert.Equal(t, []string{"A:x", "A:y", "B:z"}, owners)

	var first []string
	a.Each(func(owner Owner, p Pattern) bool {
		first = append(first, owner.String())
		return false
	})
	assert.Equal(t, []string{"A:x"}, first)
}

func TestAssignmentClone(t *testing.T) {
	a := NewAssignment()
	a.Set("A", "x", Pattern{North: "p"})

	c := a.Clone()
	c.Set("A", "x", Pattern{North: "q"})
	c.Set("B", "y", Pattern{North: "p"})

	p, _ := a.Get("A", "x")
	assert.Equal(t, Value("p"), p[North])
	assert.Equal(t, []string{"A"}, a.Tiers())
}
