// Package report renders audit findings and catalog statistics as tables
// for people or JSONL for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/pkg/pattern"
)

// Record is one line of JSONL output.
type Record struct {
	Kind      string `json:"kind"` // duplicate, violation or fix
	Key       string `json:"key,omitempty"`
	Owner     string `json:"owner"`
	FirstSeen string `json:"first_owner,omitempty"`
	Arity     int    `json:"arity,omitempty"`
	Rule      string `json:"rule,omitempty"`
	OldKey    string `json:"old_key,omitempty"`
	NewKey    string `json:"new_key,omitempty"`
}

// FormatDuplicates writes colliding pairs as a table. Returns the number
// of duplicates formatted.
func FormatDuplicates(w io.Writer, dups []engine.Duplicate) int {
	if len(dups) == 0 {
		fmt.Fprintf(w, "No duplicate patterns found\n")
		return 0
	}

	fmt.Fprintf(w, "%-28s %-28s %s\n", "FIRST OWNER", "DUPLICATE", "KEY")
	fmt.Fprintf(w, "%-28s %-28s %s\n",
		"----------------------------", "----------------------------", "----------------------------------------")

	for _, d := range dups {
		fmt.Fprintf(w, "%-28s %-28s %s\n",
			formatOwner(d.First),
			formatOwner(d.Colliding),
			formatKey(d.Key),
		)
	}

	fmt.Fprintf(w, "\n%d %s found\n", len(dups), plural(len(dups), "duplicate", "duplicates"))
	return len(dups)
}

// FormatViolations writes items whose arity breaks their tier rule.
// Returns the number of violations formatted.
func FormatViolations(w io.Writer, violations []engine.Violation) int {
	if len(violations) == 0 {
		fmt.Fprintf(w, "No arity violations found\n")
		return 0
	}

	fmt.Fprintf(w, "%-28s %-6s %s\n", "ITEM", "SLOTS", "EXPECTED")
	fmt.Fprintf(w, "%-28s %-6s %s\n", "----------------------------", "------", "------------")

	for _, v := range violations {
		fmt.Fprintf(w, "%-28s %-6d %s\n", formatOwner(v.Owner), v.Arity, v.Rule)
	}

	fmt.Fprintf(w, "\n%d %s found\n", len(violations), plural(len(violations), "violation", "violations"))
	return len(violations)
}

// FormatFixes writes the patterns replaced by a repair.
func FormatFixes(w io.Writer, fixes []engine.Fix) int {
	if len(fixes) == 0 {
		fmt.Fprintf(w, "Nothing to repair\n")
		return 0
	}

	fmt.Fprintf(w, "%-28s %-40s %s\n", "ITEM", "OLD", "NEW")
	fmt.Fprintf(w, "%-28s %-40s %s\n",
		"----------------------------", "----------------------------------------", "----------------------------------------")

	for _, f := range fixes {
		fmt.Fprintf(w, "%-28s %-40s %s\n",
			formatOwner(f.Owner),
			formatKey(pattern.Canonicalize(f.Old)),
			formatKey(pattern.Canonicalize(f.New)),
		)
	}

	fmt.Fprintf(w, "\n%d %s repaired\n", len(fixes), plural(len(fixes), "item", "items"))
	return len(fixes)
}

// FormatStats writes per-tier counts followed by per-rule capacity.
func FormatStats(w io.Writer, stats *catalog.Stats) {
	fmt.Fprintf(w, "%-16s %-14s %s\n", "TIER", "RULE", "ITEMS")
	fmt.Fprintf(w, "%-16s %-14s %s\n", "----------------", "--------------", "-----")
	for _, t := range stats.Tiers {
		fmt.Fprintf(w, "%-16s %-14s %d\n", t.Name, t.Kind, t.Items)
	}
	fmt.Fprintf(w, "\nTotal: %d\n\n", stats.Total)

	fmt.Fprintf(w, "%-14s %-8s %-16s %s\n", "RULE", "DEMAND", "CAPACITY", "STATUS")
	fmt.Fprintf(w, "%-14s %-8s %-16s %s\n", "--------------", "--------", "----------------", "------")
	for _, r := range stats.Rules {
		status := "ok"
		if !r.Fits() {
			status = "OVERFULL"
		}
		fmt.Fprintf(w, "%-14s %-8d %-16d %s\n", r.Kind, r.Demand, r.Capacity, status)
	}
}

// FormatTierCounts writes "  TIER: n" lines and a total that leaves out
// the skipped tiers.
func FormatTierCounts(w io.Writer, cat *pattern.Catalog, skip []string) {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	total := 0
	for _, t := range cat.Tiers {
		fmt.Fprintf(w, "  %s: %d\n", t.Name, len(t.Items))
		if !skipped[t.Name] {
			total += len(t.Items)
		}
	}

	if len(skip) > 0 {
		fmt.Fprintf(w, "\nTotal (excluding %s): %d\n", strings.Join(skip, ", "), total)
	} else {
		fmt.Fprintf(w, "\nTotal: %d\n", total)
	}
}

// FormatJSONL writes findings as line-delimited JSON, one object per line.
func FormatJSONL(w io.Writer, dups []engine.Duplicate, violations []engine.Violation, fixes []engine.Fix) error {
	var records []Record
	for _, d := range dups {
		records = append(records, Record{
			Kind:      "duplicate",
			Key:       string(d.Key),
			Owner:     d.Colliding.String(),
			FirstSeen: d.First.String(),
		})
	}
	for _, v := range violations {
		records = append(records, Record{
			Kind:  "violation",
			Owner: v.Owner.String(),
			Arity: v.Arity,
			Rule:  v.Rule.String(),
		})
	}
	for _, f := range fixes {
		records = append(records, Record{
			Kind:   "fix",
			Owner:  f.Owner.String(),
			OldKey: string(pattern.Canonicalize(f.Old)),
			NewKey: string(pattern.Canonicalize(f.New)),
		})
	}

	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// formatOwner renders TIER:item, truncated to fit the owner columns.
func formatOwner(o pattern.Owner) string {
	s := o.String()
	if len(s) > 28 {
		return s[:25] + "..."
	}
	return s
}

// formatKey drops trailing absent positions, which carry no information
// once the arity is visible, and truncates to 40 characters.
func formatKey(k pattern.Key) string {
	s := string(k)
	suffix := pattern.KeySeparator + pattern.AbsentMarker
	for strings.HasSuffix(s, suffix) {
		s = strings.TrimSuffix(s, suffix)
	}
	if len(s) > 40 {
		return s[:37] + "..."
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
