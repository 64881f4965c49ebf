package pattern

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotIndex(t *testing.T) {
	for i, slot := range Slots {
		assert.Equal(t, i, slot.Index(), "slot %s", slot)
		assert.NoError(t, slot.Validate())
	}

	assert.Equal(t, -1, Slot("up").Index())
	assert.Error(t, Slot("up").Validate())
}

func TestValueValidate(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		wantErr string
	}{
		{name: "valid token", value: "poke_ball"},
		{name: "empty", value: "", wantErr: "cannot be empty"},
		{name: "absent marker", value: AbsentMarker, wantErr: "absent marker"},
		{name: "separator", value: "poke|ball", wantErr: "key separator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPaletteValidate(t *testing.T) {
	t.Run("default palette is valid", func(t *testing.T) {
		require.NoError(t, DefaultPalette.Validate())
		assert.Len(t, DefaultPalette, 28)
	})

	t.Run("rejects empty palette", func(t *testing.T) {
		err := Palette{}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "palette cannot be empty")
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		err := Palette{"p", "q", "p"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate value")
	})

	t.Run("rejects absent marker token", func(t *testing.T) {
		err := Palette{"p", "empty"}.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent marker")
	})

	t.Run("contains", func(t *testing.T) {
		assert.True(t, DefaultPalette.Contains("gs_ball"))
		assert.False(t, DefaultPalette.Contains("rock"))
	})
}

func TestPatternValidate(t *testing.T) {
	assert.NoError(t, Pattern{North: "p", South: "q", West: "p"}.Validate())

	err := Pattern{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pattern cannot be empty")

	err = Pattern{"up": "p"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown slot")

	err = Pattern{North: "empty"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot north")
}

func TestPatternArity(t *testing.T) {
	p := Pattern{North: "p", East: "q", South: "p"}
	assert.Equal(t, 3, p.Arity())
	assert.False(t, p.IsFull())

	full := Pattern{}
	for _, slot := range Slots {
		full[slot] = "p"
	}
	assert.True(t, full.IsFull())
}

func TestPatternClone(t *testing.T) {
	p := Pattern{North: "p", East: "q", South: "p"}
	c := p.Clone()
	c[North] = "q"
	assert.Equal(t, Value("p"), p[North])
}

func TestPatternMarshalJSON(t *testing.T) {
	p := Pattern{Northwest: "c", North: "a", West: "b"}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"north":"a","west":"b","northwest":"c"}`, string(data))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, map[string]string{"north": "a", "west": "b", "northwest": "c"}, decoded)
}
