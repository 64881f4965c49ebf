package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyluth/altar/pkg/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "\xEF\xBB\xBFLEGENDARIES\n" +
	"Mewtwo\n" +
	"Lugia\n" +
	"\n" +
	"# starters are common\n" +
	"COMMON\n" +
	"Bulbasaur\n" +
	"RARE\n" +
	"  Dratini  \n" +
	"LEGENDARIES\n" +
	"Ho-Oh\n"

func TestParseText(t *testing.T) {
	cat, err := ParseText("sample.txt", strings.NewReader(sampleText), DefaultKnownTiers)
	require.NoError(t, err)

	assert.Equal(t, []pattern.Tier{
		{Name: "LEGENDARIES", Items: []string{"Mewtwo", "Lugia", "Ho-Oh"}},
		{Name: "COMMON", Items: []string{"Bulbasaur"}},
		{Name: "RARE", Items: []string{"Dratini"}},
	}, cat.Tiers)
	assert.Equal(t, 5, cat.Len())
}

func TestParseTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		message string
	}{
		{"item before header", "\nMewtwo\nLEGENDARIES\n", 2, "before any tier header"},
		{"duplicate item", "RARE\nDratini\nDratini\n", 3, "duplicate item"},
		{"duplicate across repeated header", "RARE\nDratini\nUNCOMMON\nPikachu\nRARE\nDratini\n", 6, "duplicate item"},
		{"unknown header is an item", "Eevee\n", 1, "before any tier header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseText("bad.txt", strings.NewReader(tt.input), DefaultKnownTiers)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Contains(t, err.Error(), tt.message)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestParseTextEmptyHeader(t *testing.T) {
	cat, err := ParseText("empty.txt", strings.NewReader("MYTHICALS\nRARE\nEevee\n"), DefaultKnownTiers)
	require.NoError(t, err)
	require.Len(t, cat.Tiers, 2)
	assert.Empty(t, cat.Tiers[0].Items)
}

func TestParseJSON(t *testing.T) {
	t.Run("keeps document order", func(t *testing.T) {
		data := []byte("\xEF\xBB\xBF{\"UNCOMMON\": [\"Pikachu\", \"Eevee\"], \"LEGENDARIES\": [\"Mew\"], \"RARE\": []}")
		cat, err := ParseJSON("cat.json", data)
		require.NoError(t, err)

		assert.Equal(t, []pattern.Tier{
			{Name: "UNCOMMON", Items: []string{"Pikachu", "Eevee"}},
			{Name: "LEGENDARIES", Items: []string{"Mew"}},
			{Name: "RARE"},
		}, cat.Tiers)
	})

	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"invalid", `{"RARE": [`, "invalid JSON"},
		{"not an object", `["RARE"]`, "expected an object"},
		{"tier not an array", `{"RARE": "Dratini"}`, "expected an array"},
		{"item not a string", `{"RARE": ["Dratini", 7]}`, "is not a string"},
		{"duplicate item", `{"RARE": ["Dratini", "Dratini"]}`, "duplicate item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON("bad.json", []byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	cat := &pattern.Catalog{Tiers: []pattern.Tier{
		{Name: "RARE", Items: []string{"Flabébé", "Mr. Mime"}},
		{Name: "LEGENDARIES", Items: []string{"Mew"}},
	}}

	data, err := EncodeJSON(cat, "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"RARE\": [\n    \"Flabébé\",\n    \"Mr. Mime\"\n  ],\n  \"LEGENDARIES\": [\n    \"Mew\"\n  ]\n}\n", string(data))

	back, err := ParseJSON("round.json", data)
	require.NoError(t, err)
	assert.Equal(t, cat.Tiers, back.Tiers)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "AllPokemons.txt")
	require.NoError(t, os.WriteFile(textPath, []byte(sampleText), 0644))
	cat, err := LoadFile(textPath, DetectFormat(textPath), DefaultKnownTiers)
	require.NoError(t, err)
	assert.Equal(t, 5, cat.Len())

	jsonPath := filepath.Join(dir, "catalog.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"RARE": ["Dratini"]}`), 0644))
	assert.Equal(t, FormatJSON, DetectFormat(jsonPath))
	cat, err = LoadFile(jsonPath, FormatJSON, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.txt"), FormatText, DefaultKnownTiers)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("", "x.json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("text", "x.json")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("yaml", "x.yml")
	assert.Error(t, err)
}
