package pattern

import "fmt"

// Tier is a named bucket of items sharing one arity rule.
type Tier struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// Catalog maps tier names to ordered item names. Tiers keep the order in
// which they were loaded.
type Catalog struct {
	Tiers []Tier `json:"tiers"`
}

// Validate checks that tier names are non-empty and unique, and that item
// names are non-empty and unique within their tier.
func (c *Catalog) Validate() error {
	tiersSeen := make(map[string]bool, len(c.Tiers))
	for i, t := range c.Tiers {
		if t.Name == "" {
			return fmt.Errorf("tier %d: name cannot be empty", i)
		}
		if tiersSeen[t.Name] {
			return fmt.Errorf("duplicate tier '%s'", t.Name)
		}
		tiersSeen[t.Name] = true

		itemsSeen := make(map[string]bool, len(t.Items))
		for j, item := range t.Items {
			if item == "" {
				return fmt.Errorf("tier '%s': item %d has an empty name", t.Name, j)
			}
			if itemsSeen[item] {
				return fmt.Errorf("tier '%s': duplicate item '%s'", t.Name, item)
			}
			itemsSeen[item] = true
		}
	}
	return nil
}

// Len returns the number of items across all tiers.
func (c *Catalog) Len() int {
	n := 0
	for _, t := range c.Tiers {
		n += len(t.Items)
	}
	return n
}

// Tier looks up a tier by name.
func (c *Catalog) Tier(name string) (Tier, bool) {
	for _, t := range c.Tiers {
		if t.Name == name {
			return t, true
		}
	}
	return Tier{}, false
}

// Add appends an item to the named tier, creating the tier if needed.
func (c *Catalog) Add(tier, item string) {
	for i := range c.Tiers {
		if c.Tiers[i].Name == tier {
			c.Tiers[i].Items = append(c.Tiers[i].Items, item)
			return
		}
	}
	c.Tiers = append(c.Tiers, Tier{Name: tier, Items: []string{item}})
}

// Without returns a copy of the catalog with the named tiers removed.
func (c *Catalog) Without(names ...string) *Catalog {
	skip := make(map[string]bool, len(names))
	for _, name := range names {
		skip[name] = true
	}

	out := &Catalog{}
	for _, t := range c.Tiers {
		if skip[t.Name] {
			continue
		}
		items := make([]string, len(t.Items))
		copy(items, t.Items)
		out.Tiers = append(out.Tiers, Tier{Name: t.Name, Items: items})
	}
	return out
}
