package tray

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/petems/snapclick/internal/app"
	"github.com/petems/snapclick/internal/hotkey"
	"github.com/petems/snapclick/internal/scheme"
)

func TestEmojiForState(t *testing.T) {
	tests := []struct {
		name  string
		state app.State
		want  string
	}{
		{name: "running", state: app.Running, want: "🟢"},
		{name: "paused", state: app.Paused, want: "🟡"},
		{name: "stopped", state: app.Stopped, want: "⚪️"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, emojiForState(tt.state))
		})
	}
}

func TestStatusTitles(t *testing.T) {
	assert.Equal(t, "🖱️ 🟢 2", statusTitle(app.Running, 2))
	assert.Equal(t, "Start Monitoring", startStopTitle(app.Stopped))
	assert.Equal(t, "Stop Monitoring", startStopTitle(app.Running))
	assert.Equal(t, "Stop Monitoring", startStopTitle(app.Paused))
}

func TestHotkeySummary(t *testing.T) {
	left := scheme.New("Left Click x10", scheme.ButtonPrimary, 10, 1.0, hotkey.MustParse("Option+`"))
	left.Enabled = true
	right := scheme.New("Right Click x5", scheme.ButtonSecondary, 5, 2.5, hotkey.Combination{})

	got := hotkeySummary([]scheme.Scheme{left, right})

	assert.Equal(t,
		"[x] Option+`     Left Click x10 - 10x/1.0s left click\n"+
			"[ ] None         Right Click x5 - 5x/2.5s right click\n",
		got)
	assert.Empty(t, hotkeySummary(nil))
}

func TestSchemeTitle(t *testing.T) {
	s := scheme.New("Burst", scheme.ButtonPrimary, 3, 0.3, hotkey.MustParse("Option+1"))
	assert.Equal(t, "Burst - 3x/0.3s  [Option+1]", schemeTitle(s))
}

type fakeSink struct {
	mu    sync.Mutex
	notes [][2]string
}

func (f *fakeSink) Notify(title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, [2]string{title, message})
}

func TestToggleWithoutHotkeyNotifies(t *testing.T) {
	sink := &fakeSink{}
	u := &UI{log: zerolog.Nop(), notify: sink}
	s := scheme.New("Burst", scheme.ButtonPrimary, 5, 1.0, hotkey.Combination{})

	u.reportToggleError(s, app.ErrHotkeyRequired)
	assert.Equal(t, [][2]string{{"Hotkey Required", "Record a hotkey for Burst before enabling it"}}, sink.notes)

	// Other failures are only logged.
	u.reportToggleError(s, errors.New("disk full"))
	assert.Len(t, sink.notes, 1)

	// No notifier configured.
	(&UI{log: zerolog.Nop()}).reportToggleError(s, app.ErrHotkeyRequired)
}
