package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/altar/internal/tier"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "altar.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MinimalConfigGetsDefaults(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0", config.Version)
	assert.Equal(t, pattern.DefaultPalette, config.PaletteValues())
	assert.Equal(t, tier.DefaultFullTiers, config.Tiers.Full)
	assert.Len(t, config.Tiers.Known, 8)
	assert.Equal(t, []string{"COMMON"}, config.Tiers.Skip)
	assert.Equal(t, "enumerate", config.Generation.Strategy)
	assert.Equal(t, 10000, *config.Generation.MaxAttempts)
	assert.Equal(t, uint64(0), config.Generation.Seed)
	assert.Equal(t, BackendMemory, config.Registry.Backend)
	assert.Contains(t, config.Registry.RedisURL, ":6379")
	assert.Empty(t, config.Registry.Namespace)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
palette: [red, green, blue]
tiers:
  known: [GOLD, SILVER, BRONZE]
  full: [GOLD]
  skip: []
generation:
  strategy: random
  max_attempts: 50
  seed: 1234
registry:
  backend: redis
  redis_url: redis://cache:6380/2
  namespace: medals
`)

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, pattern.Palette{"red", "green", "blue"}, config.PaletteValues())
	assert.Equal(t, []string{"GOLD"}, config.Tiers.Full)
	assert.Empty(t, config.Tiers.Skip, "an explicit empty list disables skipping")
	assert.Equal(t, "random", config.Generation.Strategy)
	assert.Equal(t, 50, *config.Generation.MaxAttempts)
	assert.Equal(t, uint64(1234), config.Generation.Seed)
	assert.Equal(t, BackendRedis, config.Registry.Backend)
	assert.Equal(t, "redis://cache:6380/2", config.Registry.RedisURL)
	assert.Equal(t, "medals", config.Registry.Namespace)

	assert.Equal(t, tier.Full, config.Policy().Rule("GOLD"))
	assert.Equal(t, tier.Partial, config.Policy().Rule("SILVER"))
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/altar.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
palette:
  - a
   b: [
`)

	config, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	config, err := LoadOrDefault(filepath.Join(t.TempDir(), "altar.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), config)

	path := writeConfig(t, `version: "2.0"`)
	_, err = LoadOrDefault(path)
	assert.Error(t, err, "an invalid file is not replaced by defaults")
}

func TestValidate_Errors(t *testing.T) {
	attempts := 0

	testCases := []struct {
		name   string
		config AltarConfig
		errMsg string
	}{
		{
			name:   "unsupported version",
			config: AltarConfig{Version: "2.0"},
			errMsg: "unsupported version",
		},
		{
			name:   "palette value is the absent marker",
			config: AltarConfig{Version: "1.0", Palette: []string{"p", "empty"}},
			errMsg: "absent marker",
		},
		{
			name:   "palette value contains the separator",
			config: AltarConfig{Version: "1.0", Palette: []string{"a|b"}},
			errMsg: "separator",
		},
		{
			name:   "duplicate palette value",
			config: AltarConfig{Version: "1.0", Palette: []string{"p", "p"}},
			errMsg: "duplicate value",
		},
		{
			name:   "full tier not known",
			config: AltarConfig{Version: "1.0", Tiers: &TiersConfig{Known: []string{"RARE"}, Full: []string{"GOLD"}}},
			errMsg: "not listed in tiers.known",
		},
		{
			name:   "duplicate known tier",
			config: AltarConfig{Version: "1.0", Tiers: &TiersConfig{Known: []string{"RARE", "RARE"}}},
			errMsg: "duplicate tier",
		},
		{
			name:   "unknown strategy",
			config: AltarConfig{Version: "1.0", Generation: &GenerationConfig{Strategy: "shuffle"}},
			errMsg: "generation.strategy",
		},
		{
			name:   "zero max attempts",
			config: AltarConfig{Version: "1.0", Generation: &GenerationConfig{MaxAttempts: &attempts}},
			errMsg: "max_attempts must be >= 1",
		},
		{
			name:   "unknown backend",
			config: AltarConfig{Version: "1.0", Registry: &RegistryConfig{Backend: "etcd"}},
			errMsg: "unknown backend",
		},
		{
			name:   "bad redis url",
			config: AltarConfig{Version: "1.0", Registry: &RegistryConfig{RedisURL: "http://localhost:6379"}},
			errMsg: "not a redis:// URL",
		},
		{
			name:   "bad namespace",
			config: AltarConfig{Version: "1.0", Registry: &RegistryConfig{Namespace: "Ultra_Rare"}},
			errMsg: "registry.namespace",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
