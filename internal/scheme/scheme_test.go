package scheme

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/snapclick/internal/hotkey"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		duration float64
		want     error
	}{
		{"ten clicks in a second", 10, 1.0, nil},
		{"exactly at the cap", 200, 1.0, nil},
		{"over the cap", 201, 1.0, ErrTooFast},
		{"single click", 1, 0.5, nil},
		{"zero clicks", 0, 1.0, ErrInvalidClickCount},
		{"zero duration", 5, 0, ErrInvalidDuration},
		{"NaN duration", 5, math.NaN(), ErrInvalidDuration},
		{"infinite duration", 5, math.Inf(1), ErrTooLong},
		{"a full minute", 60, 60, nil},
		{"longer than a minute", 60, 60.5, ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("s", ButtonPrimary, tt.count, tt.duration, hotkey.New(18, hotkey.ModOption))
			err := s.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestInterval(t *testing.T) {
	s := New("s", ButtonPrimary, 10, 1.0, hotkey.Combination{})
	assert.Equal(t, 100*time.Millisecond, s.Interval())

	s.ClickCount = 1
	assert.Equal(t, time.Duration(0), s.Interval())

	s.ClickCount = 4
	s.TotalDuration = 2
	assert.Equal(t, 500*time.Millisecond, s.Interval())
}

func TestButtonJSON(t *testing.T) {
	s := New("right", ButtonSecondary, 3, 1.5, hotkey.New(18, hotkey.ModOption))
	s.Enabled = true

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"button":"right"`)

	var back Scheme
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	var b Button
	assert.Error(t, b.UnmarshalText([]byte("middle")))
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	require.Len(t, defaults, 2)

	for _, s := range defaults {
		assert.NoError(t, s.Validate())
		assert.True(t, s.Hotkey.IsSet())
		assert.False(t, s.Enabled)
		assert.NotEqual(t, uuid.Nil, s.ID)
	}
	assert.NotEqual(t, defaults[0].Hotkey, defaults[1].Hotkey)
	assert.Equal(t, ButtonSecondary, defaults[1].Button)
}

func TestEnabledAndIndexOf(t *testing.T) {
	a := New("a", ButtonPrimary, 1, 1, hotkey.Combination{})
	b := New("b", ButtonPrimary, 1, 1, hotkey.Combination{})
	b.Enabled = true

	list := []Scheme{a, b}
	assert.Equal(t, []Scheme{b}, Enabled(list))
	assert.Equal(t, 1, IndexOf(list, b.ID))
	assert.Equal(t, -1, IndexOf(list, uuid.New()))
}

func TestSummary(t *testing.T) {
	s := New("Left Click x10", ButtonPrimary, 10, 1.0, hotkey.Combination{})
	assert.Equal(t, "Left Click x10 - 10x/1.0s", s.Summary())
}
