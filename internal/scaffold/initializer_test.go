package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyluth/altar/internal/catalog"
	"github.com/dyluth/altar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Gen9_Catalog")

	require.NoError(t, Initialize(dir, false))

	cfg, err := config.Load(filepath.Join(dir, config.DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, "gen9-catalog", cfg.Registry.Namespace)
	assert.Equal(t, "enumerate", cfg.Generation.Strategy)
	assert.Equal(t, []string{"COMMON"}, cfg.Tiers.Skip)

	cat, err := catalog.LoadFile(filepath.Join(dir, CatalogFile), catalog.FormatText, cfg.Tiers.Known)
	require.NoError(t, err)
	assert.Len(t, cat.Tiers, 5)
	assert.Equal(t, 10, cat.Len())
}

func TestInitializeRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("old"), 0644))

	err := Initialize(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")

	content, err := os.ReadFile(filepath.Join(dir, config.DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestInitializeForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, CatalogFile), []byte("old"), 0644))

	require.NoError(t, Initialize(dir, true))

	content, err := os.ReadFile(filepath.Join(dir, config.DefaultPath))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), `version: "1.0"`))
}
