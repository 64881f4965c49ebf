package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Slot is one of the eight fixed positions a pattern may populate.
type Slot string

const (
	North     Slot = "north"
	East      Slot = "east"
	South     Slot = "south"
	West      Slot = "west"
	Northeast Slot = "northeast"
	Southeast Slot = "southeast"
	Southwest Slot = "southwest"
	Northwest Slot = "northwest"
)

// SlotCount is the number of slots a full pattern populates.
const SlotCount = 8

// Slots lists every slot in canonical order. The order defines the layout of
// a Key and carries no meaning beyond that.
var Slots = [SlotCount]Slot{North, East, South, West, Northeast, Southeast, Southwest, Northwest}

// Index returns the canonical position of the slot, or -1 if it is unknown.
func (s Slot) Index() int {
	for i, slot := range Slots {
		if slot == s {
			return i
		}
	}
	return -1
}

// Validate checks that the slot is one of Slots.
func (s Slot) Validate() error {
	if s.Index() < 0 {
		return fmt.Errorf("unknown slot: %q", s)
	}
	return nil
}

const (
	// AbsentMarker stands for an unpopulated slot inside a Key.
	AbsentMarker = "empty"

	// KeySeparator joins the slot positions of a Key.
	KeySeparator = "|"
)

// Value is a palette token assignable to a slot.
type Value string

// Validate checks that the value can be represented unambiguously in a Key.
func (v Value) Validate() error {
	if v == "" {
		return fmt.Errorf("value cannot be empty")
	}
	if string(v) == AbsentMarker {
		return fmt.Errorf("value %q collides with the absent marker", v)
	}
	if strings.Contains(string(v), KeySeparator) {
		return fmt.Errorf("value %q contains the key separator %q", v, KeySeparator)
	}
	return nil
}

// Palette is the ordered set of values patterns are drawn from.
type Palette []Value

// DefaultPalette holds the 28 pokeball identifiers.
var DefaultPalette = Palette{
	"poke_ball", "great_ball", "ultra_ball", "master_ball", "timer_ball",
	"dusk_ball", "quick_ball", "repeat_ball", "luxury_ball", "net_ball",
	"nest_ball", "dive_ball", "heal_ball", "premier_ball", "safari_ball",
	"sport_ball", "park_ball", "cherish_ball", "gs_ball", "beast_ball",
	"dream_ball", "moon_ball", "love_ball", "friend_ball", "lure_ball",
	"heavy_ball", "level_ball", "fast_ball",
}

// Validate checks that the palette is non-empty, holds no duplicates and
// that no token collides with the absent marker.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("palette cannot be empty")
	}

	seen := make(map[Value]int, len(p))
	for i, v := range p {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("palette entry %d: %w", i, err)
		}
		if first, ok := seen[v]; ok {
			return fmt.Errorf("palette entry %d: duplicate value %q (first at %d)", i, v, first)
		}
		seen[v] = i
	}

	return nil
}

// Contains reports whether v is part of the palette.
func (p Palette) Contains(v Value) bool {
	for _, candidate := range p {
		if candidate == v {
			return true
		}
	}
	return false
}

// Pattern maps a subset of slots to values. A slot missing from the map is
// absent, which is distinct from every Value.
type Pattern map[Slot]Value

// Arity returns the number of populated slots.
func (p Pattern) Arity() int {
	return len(p)
}

// IsFull reports whether every slot is populated.
func (p Pattern) IsFull() bool {
	return len(p) == SlotCount
}

// Validate checks slot names and values. Arity is governed by the tier
// policy and is not checked here.
func (p Pattern) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("pattern cannot be empty")
	}
	for slot, value := range p {
		if err := slot.Validate(); err != nil {
			return err
		}
		if err := value.Validate(); err != nil {
			return fmt.Errorf("slot %s: %w", slot, err)
		}
	}
	return nil
}

// Clone returns an independent copy of the pattern.
func (p Pattern) Clone() Pattern {
	out := make(Pattern, len(p))
	for slot, value := range p {
		out[slot] = value
	}
	return out
}

// MarshalJSON writes the populated slots in canonical slot order, so the
// same pattern always serializes to the same bytes.
func (p Pattern) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, slot := range Slots {
		value, ok := p[slot]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(string(slot))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(string(value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
