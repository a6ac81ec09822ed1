package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLastWriteWins(t *testing.T) {
	r := NewRegistry[string](1)
	k := New(12, ModOption)

	require.NoError(t, r.Register(k, "first"))
	require.NoError(t, r.Register(k, "second"))

	got, ok := r.Lookup(k)
	require.True(t, ok)
	assert.Equal(t, "second", got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsUnsetCombination(t *testing.T) {
	r := NewRegistry[int](0)

	err := r.Register(Combination{Modifiers: ModShift}, 1)
	assert.ErrorIs(t, err, ErrUnsetCombination)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryLookupIsStructural(t *testing.T) {
	r := NewRegistry[int](0)
	require.NoError(t, r.Register(New(18, ModOption, ModShift), 7))

	_, ok := r.Lookup(Combination{KeyCode: 18, Modifiers: ModShift | ModOption})
	assert.True(t, ok)

	_, ok = r.Lookup(New(18, ModOption))
	assert.False(t, ok, "different modifier set must not match")

	_, ok = r.Lookup(New(19, ModOption, ModShift))
	assert.False(t, ok, "different key must not match")
}

func TestRegistryUnregisterAndClear(t *testing.T) {
	r := NewRegistry[int](3)
	a, b := New(12), New(13, ModControl)
	require.NoError(t, r.Register(a, 1))
	require.NoError(t, r.Register(b, 2))

	r.Unregister(a)
	_, ok := r.Lookup(a)
	assert.False(t, ok)
	assert.Equal(t, []Combination{b}, r.Combinations())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	_, ok = r.Lookup(b)
	assert.False(t, ok)
	assert.Equal(t, uint64(3), r.Generation())
}

func TestRegistryCombinationsSorted(t *testing.T) {
	r := NewRegistry[int](0)
	require.NoError(t, r.Register(New(20, ModShift), 1))
	require.NoError(t, r.Register(New(5), 2))
	require.NoError(t, r.Register(New(20, ModCommand), 3))

	assert.Equal(t, []Combination{
		New(5),
		New(20, ModCommand),
		New(20, ModShift),
	}, r.Combinations())
}
