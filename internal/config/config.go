package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/engine"
	"github.com/dyluth/altar/internal/instance"
	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where altar looks for its configuration.
const DefaultPath = "altar.yml"

// Registry backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// AltarConfig represents the top-level altar.yml configuration
type AltarConfig struct {
	Version    string            `yaml:"version"`
	Palette    []string          `yaml:"palette,omitempty"` // Value tokens (default: the 28 pokeball ids)
	Tiers      *TiersConfig      `yaml:"tiers,omitempty"`
	Generation *GenerationConfig `yaml:"generation,omitempty"`
	Registry   *RegistryConfig   `yaml:"registry,omitempty"`
}

// TiersConfig controls how tiers are recognised and which arity rule they get
type TiersConfig struct {
	Full  []string `yaml:"full,omitempty"`  // Tiers whose items get full patterns
	Known []string `yaml:"known,omitempty"` // Header lines recognised in text catalogs
	Skip  []string `yaml:"skip,omitempty"`  // Tiers dropped before assignment
}

// GenerationConfig selects the assignment strategy
type GenerationConfig struct {
	Strategy    string `yaml:"strategy,omitempty"`     // random or enumerate (default: enumerate)
	MaxAttempts *int   `yaml:"max_attempts,omitempty"` // Per-item bound of the random strategy (default: 10000)
	Seed        uint64 `yaml:"seed,omitempty"`         // 0 = seed from the clock
}

// RegistryConfig selects where the uniqueness registry and published
// assignments live
type RegistryConfig struct {
	Backend   string `yaml:"backend,omitempty"`   // memory or redis (default: memory)
	RedisURL  string `yaml:"redis_url,omitempty"` // Required by the redis backend
	Namespace string `yaml:"namespace,omitempty"` // Redis key namespace (default: derived from the catalog name)
}

// Default returns a validated configuration holding every default.
func Default() *AltarConfig {
	c := &AltarConfig{Version: "1.0"}
	if err := c.Validate(); err != nil {
		panic(fmt.Sprintf("default configuration is invalid: %v", err))
	}
	return c
}

// Validate performs strict validation on the configuration and fills in
// defaults for omitted sections.
func (c *AltarConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if len(c.Palette) == 0 {
		c.Palette = make([]string, len(pattern.DefaultPalette))
		for i, v := range pattern.DefaultPalette {
			c.Palette[i] = string(v)
		}
	}
	if err := c.PaletteValues().Validate(); err != nil {
		return fmt.Errorf("palette: %w", err)
	}

	if c.Tiers == nil {
		c.Tiers = &TiersConfig{}
	}
	if err := c.Tiers.Validate(); err != nil {
		return err
	}

	if c.Generation == nil {
		c.Generation = &GenerationConfig{}
	}
	if err := c.Generation.Validate(); err != nil {
		return err
	}

	if c.Registry == nil {
		c.Registry = &RegistryConfig{}
	}
	if err := c.Registry.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate applies tier defaults and checks that full tiers are known.
func (t *TiersConfig) Validate() error {
	if t.Full == nil {
		t.Full = append([]string(nil), tier.DefaultFullTiers...)
	}
	if t.Known == nil {
		t.Known = append([]string(nil), catalog.DefaultKnownTiers...)
	}
	if t.Skip == nil {
		t.Skip = append([]string(nil), catalog.DefaultSkipTiers...)
	}

	known := make(map[string]bool, len(t.Known))
	for _, name := range t.Known {
		if name == "" {
			return fmt.Errorf("tiers.known: tier name cannot be empty")
		}
		if known[name] {
			return fmt.Errorf("tiers.known: duplicate tier '%s'", name)
		}
		known[name] = true
	}

	for _, name := range t.Full {
		if !known[name] {
			return fmt.Errorf("tiers.full: '%s' is not listed in tiers.known", name)
		}
	}

	return nil
}

// Validate applies generation defaults.
func (g *GenerationConfig) Validate() error {
	if g.Strategy == "" {
		g.Strategy = string(engine.StrategyEnumerate)
	}
	if err := engine.Strategy(g.Strategy).Validate(); err != nil {
		return fmt.Errorf("generation.strategy: %w", err)
	}

	if g.MaxAttempts == nil {
		defaultAttempts := engine.DefaultMaxAttempts
		g.MaxAttempts = &defaultAttempts
	}
	if *g.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1, got %d", *g.MaxAttempts)
	}

	return nil
}

// Validate applies registry defaults and checks the Redis settings.
func (r *RegistryConfig) Validate() error {
	if r.Backend == "" {
		r.Backend = BackendMemory
	}
	if r.Backend != BackendMemory && r.Backend != BackendRedis {
		return fmt.Errorf("registry.backend: unknown backend '%s' (must be 'memory' or 'redis')", r.Backend)
	}

	if r.RedisURL == "" {
		r.RedisURL = instance.GetRedisURL(instance.DefaultRedisPort)
	}
	if u, err := url.Parse(r.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		return fmt.Errorf("registry.redis_url: '%s' is not a redis:// URL", r.RedisURL)
	}

	if r.Namespace != "" {
		if err := instance.ValidateName(r.Namespace); err != nil {
			return fmt.Errorf("registry.namespace: %w", err)
		}
	}

	return nil
}

// PaletteValues returns the palette as pattern values.
func (c *AltarConfig) PaletteValues() pattern.Palette {
	palette := make(pattern.Palette, len(c.Palette))
	for i, v := range c.Palette {
		palette[i] = pattern.Value(v)
	}
	return palette
}

// Policy returns the tier policy built from tiers.full.
func (c *AltarConfig) Policy() *tier.Policy {
	return tier.NewPolicy(c.Tiers.Full)
}

// Load reads altar.yml from path.
func Load(path string) (*AltarConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config AltarConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path, or returns the defaults if the file does not
// exist. Any other read or validation failure is returned.
func LoadOrDefault(path string) (*AltarConfig, error) {
	config, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}
