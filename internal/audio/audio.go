package audio

import (
	"math"
	"time"
)

// Cue defines the interface for the one-shot start sound
type Cue interface {
	// Play starts the sound and returns immediately.
	Play()
	Close() error
}

// Nop is a silent Cue.
type Nop struct{}

func (Nop) Play()        {}
func (Nop) Close() error { return nil }

// Tone renders a mono sine at freq with a linear fade in and out over the
// first and last 10% of the samples, so the cue does not click.
func Tone(freq float64, d time.Duration, volume float64, sampleRate int) []float32 {
	n := int(d.Seconds() * float64(sampleRate))
	if n <= 0 {
		return nil
	}

	out := make([]float32, n)
	fade := n / 10
	for i := range out {
		gain := volume
		if fade > 0 {
			if i < fade {
				gain *= float64(i) / float64(fade)
			} else if i >= n-fade {
				gain *= float64(n-1-i) / float64(fade)
			}
		}
		out[i] = float32(gain * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}
