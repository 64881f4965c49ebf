// Package instance names the Redis namespaces altar publishes under.
package instance

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// DefaultNamespace is used when neither config nor flags name one.
	DefaultNamespace = "default"

	// MaxNameLength is the maximum length for a namespace (DNS-compatible)
	MaxNameLength = 63
)

var (
	// NamePattern is the regex pattern for valid namespaces
	// Must be DNS-compatible: lowercase alphanumeric, hyphens allowed (but not at start/end)
	// Allows single character or multiple characters with optional hyphens in between
	NamePattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

	invalidRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidateName checks if a namespace is valid according to DNS naming rules.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("namespace cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("namespace too long: %d characters (max: %d)", len(name), MaxNameLength)
	}

	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid namespace '%s': must be lowercase alphanumeric with hyphens (not at start/end)", name)
	}

	return nil
}

// NameFromPath derives a namespace from a file name, e.g.
// "data/AllPokemons.json" becomes "allpokemons". Runs of other characters
// collapse to a single hyphen. It falls back to DefaultNamespace when
// nothing usable remains.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	name := invalidRun.ReplaceAllString(strings.ToLower(base), "-")
	name = strings.Trim(name, "-")
	if len(name) > MaxNameLength {
		name = strings.TrimRight(name[:MaxNameLength], "-")
	}

	if ValidateName(name) != nil {
		return DefaultNamespace
	}
	return name
}
