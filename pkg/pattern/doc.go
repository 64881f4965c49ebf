// Package pattern provides the domain types shared by every altar component:
// slots, palette values, patterns, canonical keys, catalogs and assignments.
//
// # Overview
//
// A Pattern is a partial or full mapping from the eight compass Slots to
// Values drawn from a Palette. Every item in a Catalog receives exactly one
// Pattern, and no two items of an Assignment may share the same Pattern.
//
// Patterns are compared through their canonical Key: for each Slot in the
// fixed order of Slots the key holds either the assigned Value or the
// AbsentMarker, joined by KeySeparator. Two Patterns are equal in the domain
// sense iff their Keys are equal, regardless of how the maps were built.
//
// # Usage Example
//
//	p := pattern.Pattern{
//		pattern.North: "poke_ball",
//		pattern.South: "great_ball",
//		pattern.West:  "dusk_ball",
//	}
//	if err := p.Validate(); err != nil {
//		log.Fatal(err)
//	}
//
//	key := pattern.Canonicalize(p)
//	// key = "poke_ball|empty|great_ball|dusk_ball|empty|empty|empty|empty"
//
// # Ordering
//
// Catalogs and Assignments keep their tiers and items in insertion order.
// The deterministic-enumeration strategy consumes items in catalog order and
// duplicate scans report the first-seen owner of a key, so order is part of
// the data model rather than an artifact of serialization.
package pattern
