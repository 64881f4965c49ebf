package pattern

// Owner identifies an item by its (tier, name) pair.
type Owner struct {
	Tier string `json:"tier"`
	Item string `json:"item"`
}

// String renders the owner as TIER:item.
func (o Owner) String() string {
	return o.Tier + ":" + o.Item
}

// Entry is one item of a tier together with its pattern.
type Entry struct {
	Item    string
	Pattern Pattern
}

type tierEntries struct {
	name    string
	entries []Entry
	index   map[string]int
}

// Assignment maps tier → item → pattern, preserving insertion order of
// tiers and items. Replacing an item's pattern keeps its position.
//
// Assignment is not safe for concurrent use.
type Assignment struct {
	tiers []*tierEntries
	index map[string]int
}

// NewAssignment returns an empty assignment.
func NewAssignment() *Assignment {
	return &Assignment{index: make(map[string]int)}
}

// EnsureTier registers a tier so it appears in the output even when none of
// its items end up assigned.
func (a *Assignment) EnsureTier(tier string) {
	a.tier(tier)
}

func (a *Assignment) tier(name string) *tierEntries {
	if a.index == nil {
		a.index = make(map[string]int)
	}
	if i, ok := a.index[name]; ok {
		return a.tiers[i]
	}
	t := &tierEntries{name: name, index: make(map[string]int)}
	a.index[name] = len(a.tiers)
	a.tiers = append(a.tiers, t)
	return t
}

// Set records the pattern for an item. An existing item keeps its position.
func (a *Assignment) Set(tier, item string, p Pattern) {
	t := a.tier(tier)
	if i, ok := t.index[item]; ok {
		t.entries[i].Pattern = p
		return
	}
	t.index[item] = len(t.entries)
	t.entries = append(t.entries, Entry{Item: item, Pattern: p})
}

// Get returns the pattern of an item.
func (a *Assignment) Get(tier, item string) (Pattern, bool) {
	i, ok := a.index[tier]
	if !ok {
		return nil, false
	}
	t := a.tiers[i]
	j, ok := t.index[item]
	if !ok {
		return nil, false
	}
	return t.entries[j].Pattern, true
}

// Tiers returns the tier names in insertion order.
func (a *Assignment) Tiers() []string {
	names := make([]string, len(a.tiers))
	for i, t := range a.tiers {
		names[i] = t.name
	}
	return names
}

// Entries returns the items of a tier in insertion order.
func (a *Assignment) Entries(tier string) []Entry {
	i, ok := a.index[tier]
	if !ok {
		return nil
	}
	out := make([]Entry, len(a.tiers[i].entries))
	copy(out, a.tiers[i].entries)
	return out
}

// Len returns the number of assigned items.
func (a *Assignment) Len() int {
	n := 0
	for _, t := range a.tiers {
		n += len(t.entries)
	}
	return n
}

// Each visits every assigned item in stable order until fn returns false.
func (a *Assignment) Each(fn func(owner Owner, p Pattern) bool) {
	for _, t := range a.tiers {
		for _, e := range t.entries {
			if !fn(Owner{Tier: t.name, Item: e.Item}, e.Pattern) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the assignment.
func (a *Assignment) Clone() *Assignment {
	out := NewAssignment()
	for _, t := range a.tiers {
		out.EnsureTier(t.name)
		for _, e := range t.entries {
			out.Set(t.name, e.Item, e.Pattern.Clone())
		}
	}
	return out
}
