package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []string{
		"Option+`",
		"Option+1",
		"Ctrl+Shift+F5",
		"Cmd+Option+Ctrl+Shift+Space",
		"Escape",
	}

	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			c, err := Parse(in)
			require.NoError(t, err)
			assert.True(t, c.IsSet())
			assert.Equal(t, in, c.String())
		})
	}
}

func TestParseAliases(t *testing.T) {
	a, err := Parse("alt+shift+esc")
	require.NoError(t, err)
	b, err := Parse("Option+Shift+Escape")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.Modifiers.Has(ModOption|ModShift))
	assert.False(t, a.Modifiers.Has(ModControl))
}

func TestParsePlusKey(t *testing.T) {
	c, err := Parse("Ctrl+Key99")
	require.NoError(t, err)
	assert.Equal(t, uint16(99), c.KeyCode)
	assert.Equal(t, ModControl, c.Modifiers)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrUnsetCombination)

	_, err = Parse("Hyper+Space")
	assert.ErrorIs(t, err, ErrUnknownModifier)

	_, err = Parse("Ctrl+NoSuchKey")
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = Parse("Ctrl+Key0")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestUnsetCombinationString(t *testing.T) {
	assert.Equal(t, "None", Combination{}.String())
	assert.False(t, Combination{Modifiers: ModShift}.IsSet())
}

func TestKeyNameFallback(t *testing.T) {
	assert.Equal(t, "Key4321", KeyName(4321))
}
