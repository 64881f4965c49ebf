// Package store persists assignments as JSON documents or Redis hashes.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dyluth/altar/pkg/pattern"
	"github.com/tidwall/gjson"
)

// Indent is the indentation of encoded assignment documents.
const Indent = "    "

// EncodeJSON renders a as {tier: {item: {slot: value}}}, keeping tier and
// item order and writing slots in canonical order.
func EncodeJSON(a *pattern.Assignment) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tierName := range a.Tiers() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, tierName); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for j, entry := range a.Entries(tierName) {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, entry.Item); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			p, err := entry.Pattern.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("failed to encode pattern of %s:%s: %w", tierName, entry.Item, err)
			}
			buf.Write(p)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", Indent); err != nil {
		return nil, fmt.Errorf("failed to format assignment JSON: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// DecodeJSON parses a document produced by EncodeJSON. Tier and item order
// is taken from the document. Every pattern must name known slots and hold
// non-empty values; arity is not checked here.
func DecodeJSON(data []byte) (*pattern.Assignment, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("expected an object of tier name to items")
	}

	a := pattern.NewAssignment()
	var decodeErr error
	root.ForEach(func(tierName, items gjson.Result) bool {
		if !items.IsObject() {
			decodeErr = fmt.Errorf("tier %s: expected an object of item name to pattern", tierName.String())
			return false
		}
		a.EnsureTier(tierName.String())

		items.ForEach(func(item, slots gjson.Result) bool {
			p, err := decodePattern(slots)
			if err != nil {
				decodeErr = fmt.Errorf("%s:%s: %w", tierName.String(), item.String(), err)
				return false
			}
			if _, exists := a.Get(tierName.String(), item.String()); exists {
				decodeErr = fmt.Errorf("%s:%s: item listed twice", tierName.String(), item.String())
				return false
			}
			a.Set(tierName.String(), item.String(), p)
			return true
		})
		return decodeErr == nil
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	return a, nil
}

func decodePattern(slots gjson.Result) (pattern.Pattern, error) {
	if !slots.IsObject() {
		return nil, fmt.Errorf("expected an object of slot to value")
	}

	p := pattern.Pattern{}
	var err error
	slots.ForEach(func(slot, value gjson.Result) bool {
		if value.Type != gjson.String {
			err = fmt.Errorf("slot %s: value %s is not a string", slot.String(), value.Raw)
			return false
		}
		s := pattern.Slot(slot.String())
		if _, dup := p[s]; dup {
			err = fmt.Errorf("slot %s listed twice", s)
			return false
		}
		p[s] = pattern.Value(value.String())
		return true
	})
	if err != nil {
		return nil, err
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads an assignment document from path.
func LoadFile(path string) (*pattern.Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment: %w", err)
	}

	a, err := DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return a, nil
}

// SaveFile writes a to path, replacing any existing file.
func SaveFile(path string, a *pattern.Assignment) error {
	data, err := EncodeJSON(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write assignment: %w", err)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
