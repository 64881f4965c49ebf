package pattern

import (
	"fmt"
	"strings"
)

// Key is the canonical, comparable form of a Pattern.
type Key string

// Canonicalize returns the Key of p. For each slot in canonical order it
// emits the assigned value or AbsentMarker. Slots outside Slots are not
// represented, so callers holding untrusted patterns should Validate first.
func Canonicalize(p Pattern) Key {
	parts := make([]string, SlotCount)
	for i, slot := range Slots {
		if value, ok := p[slot]; ok {
			parts[i] = string(value)
		} else {
			parts[i] = AbsentMarker
		}
	}
	return Key(strings.Join(parts, KeySeparator))
}

// Pattern decodes the key back into a Pattern.
func (k Key) Pattern() (Pattern, error) {
	parts := strings.Split(string(k), KeySeparator)
	if len(parts) != SlotCount {
		return nil, fmt.Errorf("malformed key %q: expected %d positions, got %d", k, SlotCount, len(parts))
	}

	p := make(Pattern, SlotCount)
	for i, part := range parts {
		if part == AbsentMarker {
			continue
		}
		value := Value(part)
		if err := value.Validate(); err != nil {
			return nil, fmt.Errorf("malformed key %q: %w", k, err)
		}
		p[Slots[i]] = value
	}
	return p, nil
}

// Arity returns the number of populated positions in the key.
func (k Key) Arity() int {
	n := 0
	for _, part := range strings.Split(string(k), KeySeparator) {
		if part != AbsentMarker {
			n++
		}
	}
	return n
}

// IsFull reports whether the key has no absent positions.
func (k Key) IsFull() bool {
	return k.Arity() == SlotCount
}
