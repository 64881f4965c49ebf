package instance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
		errMsg  string
	}{
		{name: "simple", input: "pokemon"},
		{name: "with hyphens", input: "gen-9-catalog"},
		{name: "single character", input: "a"},
		{name: "exactly max length", input: strings.Repeat("a", MaxNameLength)},
		{name: "empty", input: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "uppercase", input: "Pokemon", wantErr: true, errMsg: "must be lowercase"},
		{name: "leading hyphen", input: "-pokemon", wantErr: true, errMsg: "not at start/end"},
		{name: "trailing hyphen", input: "pokemon-", wantErr: true, errMsg: "not at start/end"},
		{name: "underscore", input: "ultra_rare", wantErr: true, errMsg: "must be lowercase alphanumeric"},
		{name: "colon breaks key layout", input: "a:b", wantErr: true, errMsg: "must be lowercase alphanumeric"},
		{name: "too long", input: strings.Repeat("a", MaxNameLength+1), wantErr: true, errMsg: "too long"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNameFromPath(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{"AllPokemons.json", "allpokemons"},
		{"data/Summonable Pokemons.txt", "summonable-pokemons"},
		{"/tmp/__gen_9__.txt", "gen-9"},
		{"___.json", DefaultNamespace},
		{"", DefaultNamespace},
		{strings.Repeat("x", 70) + ".txt", strings.Repeat("x", MaxNameLength)},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got := NameFromPath(tc.path)
			assert.Equal(t, tc.want, got)
			assert.NoError(t, ValidateName(got))
		})
	}
}

func TestGetRedisURL(t *testing.T) {
	url := GetRedisURL(DefaultRedisPort)
	assert.True(t, strings.HasPrefix(url, "redis://"))
	assert.True(t, strings.HasSuffix(url, ":6379"))
}
