package audio

import (
	"math"
	"testing"
	"time"

	"github.com/petems/snapclick/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToneLength(t *testing.T) {
	got := Tone(440, 100*time.Millisecond, 0.5, 8000)
	assert.Len(t, got, 800)
}

func TestToneFadesAndStaysWithinVolume(t *testing.T) {
	got := Tone(1000, 50*time.Millisecond, 0.25, 44100)
	require.NotEmpty(t, got)

	assert.Equal(t, float32(0), got[0], "fade in starts silent")
	assert.Equal(t, float32(0), got[len(got)-1], "fade out ends silent")
	for i, s := range got {
		if math.Abs(float64(s)) > 0.25+1e-6 {
			t.Fatalf("sample %d exceeds volume: %f", i, s)
		}
	}
}

func TestToneEmptyForZeroDuration(t *testing.T) {
	assert.Nil(t, Tone(440, 0, 1, 44100))
}

func TestNewDisabledIsNop(t *testing.T) {
	cue, err := New(config.CueConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, Nop{}, cue)
	cue.Play()
	assert.NoError(t, cue.Close())
}
