// Package catalog loads item catalogs and summarizes them.
//
// Two input formats are accepted. The text format is a list of lines where
// a line naming a known tier starts that tier and every other line is an
// item of the current tier. The JSON format is an object mapping tier names
// to arrays of item names; tier order is taken from the document.
package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dyluth/altar/pkg/pattern"
	"github.com/tidwall/gjson"
)

var (
	// DefaultKnownTiers are the tier headers recognised in text catalogs.
	DefaultKnownTiers = []string{
		"LEGENDARIES", "MYTHICALS", "ULTRA_BEASTS", "PARADOX",
		"ULTRA_RARE", "RARE", "UNCOMMON", "COMMON",
	}

	// DefaultSkipTiers are dropped before assignment.
	DefaultSkipTiers = []string{"COMMON"}
)

// ErrParse is wrapped by ParseError.
var ErrParse = errors.New("catalog parse error")

// ParseError reports malformed catalog input. Line is zero when the
// position is not meaningful (JSON input).
type ParseError struct {
	Source string
	Line   int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Format identifies a catalog serialization.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// DetectFormat picks a format from the file extension. Anything that is not
// .json is read as text.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatText
}

// ParseFormat validates a user-supplied format name. An empty name means
// detect from the path.
func ParseFormat(name, path string) (Format, error) {
	switch Format(name) {
	case "":
		return DetectFormat(path), nil
	case FormatText, FormatJSON:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown catalog format: %q (must be 'text' or 'json')", name)
	}
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// LoadFile reads a catalog from path in the given format.
func LoadFile(path string, format Format, knownTiers []string) (*pattern.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	switch format {
	case FormatJSON:
		return ParseJSON(path, data)
	default:
		return ParseText(path, bytes.NewReader(data), knownTiers)
	}
}

// ParseText reads the line-oriented format. Blank lines and lines starting
// with '#' are ignored. A tier header seen twice continues that tier.
// Items before the first header are rejected.
func ParseText(source string, r io.Reader, knownTiers []string) (*pattern.Catalog, error) {
	known := make(map[string]bool, len(knownTiers))
	for _, name := range knownTiers {
		known[name] = true
	}

	cat := &pattern.Catalog{}
	current := ""
	seen := make(map[string]map[string]bool)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, string(bom))
		}
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if known[line] {
			current = line
			if _, ok := seen[current]; !ok {
				seen[current] = make(map[string]bool)
				cat.Tiers = append(cat.Tiers, pattern.Tier{Name: current})
			}
			continue
		}

		if current == "" {
			return nil, &ParseError{Source: source, Line: lineNo, Msg: fmt.Sprintf("item %q appears before any tier header", line)}
		}
		if seen[current][line] {
			return nil, &ParseError{Source: source, Line: lineNo, Msg: fmt.Sprintf("duplicate item %q in tier %s", line, current)}
		}
		seen[current][line] = true
		cat.Add(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	return cat, nil
}

// ParseJSON reads an object of tier name to item array, keeping document
// order for tiers and items.
func ParseJSON(source string, data []byte) (*pattern.Catalog, error) {
	data = bytes.TrimPrefix(data, bom)
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Source: source, Msg: "invalid JSON"}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Source: source, Msg: "expected an object of tier name to item list"}
	}

	cat := &pattern.Catalog{}
	var parseErr error
	root.ForEach(func(name, items gjson.Result) bool {
		if !items.IsArray() {
			parseErr = &ParseError{Source: source, Msg: fmt.Sprintf("tier %s: expected an array of item names", name.String())}
			return false
		}

		t := pattern.Tier{Name: name.String()}
		items.ForEach(func(_, item gjson.Result) bool {
			if item.Type != gjson.String {
				parseErr = &ParseError{Source: source, Msg: fmt.Sprintf("tier %s: item %s is not a string", t.Name, item.Raw)}
				return false
			}
			t.Items = append(t.Items, item.String())
			return true
		})
		if parseErr != nil {
			return false
		}

		cat.Tiers = append(cat.Tiers, t)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if err := cat.Validate(); err != nil {
		return nil, &ParseError{Source: source, Msg: err.Error()}
	}

	return cat, nil
}

// EncodeJSON renders cat as an indented JSON object in catalog order.
func EncodeJSON(cat *pattern.Catalog, indent string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, t := range cat.Tiers {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, t.Name); err != nil {
			return nil, err
		}
		buf.WriteString(":[")
		for j, item := range t.Items {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(&buf, item); err != nil {
				return nil, err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return nil, fmt.Errorf("failed to format catalog JSON: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
