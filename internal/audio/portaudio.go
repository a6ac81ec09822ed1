package audio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
	"github.com/petems/snapclick/internal/config"
	"github.com/rs/zerolog"
)

const (
	sampleRate       = 44100
	framesPerBuffer  = 256
	defaultCueLength = 60 * time.Millisecond
)

type portAudioCue struct {
	samples []float32
	log     zerolog.Logger
	playing atomic.Bool
}

// New creates a PortAudio-backed start cue on the default output device.
// A disabled cue config yields Nop.
func New(cfg config.CueConfig, log zerolog.Logger) (Cue, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	d := time.Duration(cfg.DurationMs) * time.Millisecond
	if d <= 0 {
		d = defaultCueLength
	}

	return &portAudioCue{
		samples: Tone(cfg.FrequencyHz, d, cfg.Volume, sampleRate),
		log:     log,
	}, nil
}

// Play writes the tone on its own goroutine. A cue that is still sounding
// swallows the new request.
func (p *portAudioCue) Play() {
	if !p.playing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer p.playing.Store(false)
		if err := p.play(); err != nil {
			p.log.Debug().Err(err).Msg("Start cue failed")
		}
	}()
}

func (p *portAudioCue) play() error {
	buffer := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(buffer), buffer)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(p.samples); off += len(buffer) {
		n := copy(buffer, p.samples[off:])
		clear(buffer[n:])
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write cue: %w", err)
		}
	}
	return nil
}

func (p *portAudioCue) Close() error {
	return portaudio.Terminate()
}
