//go:build !darwin

package intercept

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petems/snapclick/internal/hotkey"
)

// fakeEvents stands in for libuiohook's event channel.
type fakeEvents struct {
	mu     sync.Mutex
	events chan hook.Event
	starts int
	ends   atomic.Int32
}

func useFakeEvents(t *testing.T) *fakeEvents {
	t.Helper()
	f := &fakeEvents{}
	prevStart, prevEnd := startEvents, endEvents
	startEvents = func() chan hook.Event {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.starts++
		f.events = make(chan hook.Event, 1)
		return f.events
	}
	endEvents = func() { f.ends.Add(1) }
	t.Cleanup(func() { startEvents, endEvents = prevStart, prevEnd })
	return f
}

func (f *fakeEvents) send(ev hook.Event) {
	f.mu.Lock()
	ch := f.events
	f.mu.Unlock()
	ch <- ev
}

func waitOrFail(t *testing.T, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not return", what)
	}
}

func TestGohookTapDeliversKeyHold(t *testing.T) {
	f := useFakeEvents(t)
	tap := &gohookTap{}

	got := make(chan KeyEvent, 1)
	require.NoError(t, tap.Start(func(ev KeyEvent) bool {
		got <- ev
		return true
	}, func() {}))

	f.send(hook.Event{Kind: hook.KeyHold, Keycode: 41, Mask: maskAltL})
	select {
	case ev := <-got:
		assert.Equal(t, KeyEvent{Code: 41, Modifiers: hotkey.ModOption}, ev)
	case <-time.After(time.Second):
		t.Fatal("no key event")
	}

	waitOrFail(t, "Stop", tap.Stop)
	assert.Equal(t, int32(1), f.ends.Load())
}

func TestGohookTapDisabledRacingStop(t *testing.T) {
	f := useFakeEvents(t)
	tap := &gohookTap{}

	for n := 0; n < 200; n++ {
		require.NoError(t, tap.Start(func(KeyEvent) bool { return false }, func() {}))
		go f.send(hook.Event{Kind: hook.HookDisabled})
		waitOrFail(t, "Stop", tap.Stop)
	}
}

func TestGohookTapRestartsAfterDisabled(t *testing.T) {
	f := useFakeEvents(t)
	tap := &gohookTap{}

	lost := make(chan struct{}, 1)
	require.NoError(t, tap.Start(func(KeyEvent) bool { return false }, func() { lost <- struct{}{} }))
	f.send(hook.Event{Kind: hook.HookDisabled})
	select {
	case <-lost:
	case <-time.After(time.Second):
		t.Fatal("disabled callback not called")
	}

	// A lost tap is reinstalled rather than treated as running.
	waitOrFail(t, "Start", func() {
		require.NoError(t, tap.Start(func(KeyEvent) bool { return false }, func() {}))
	})
	assert.Equal(t, 2, f.starts)
	waitOrFail(t, "Stop", tap.Stop)

	// The lost session never called End; the second one did.
	assert.Equal(t, int32(1), f.ends.Load())
}

func TestGohookTapStopAfterDisabledSkipsEnd(t *testing.T) {
	f := useFakeEvents(t)
	tap := &gohookTap{}

	lost := make(chan struct{}, 1)
	require.NoError(t, tap.Start(func(KeyEvent) bool { return false }, func() { lost <- struct{}{} }))
	f.send(hook.Event{Kind: hook.HookDisabled})
	<-lost

	waitOrFail(t, "Stop", tap.Stop)
	assert.Zero(t, f.ends.Load())
}

func TestModifiersFromMask(t *testing.T) {
	assert.Equal(t, hotkey.ModCommand|hotkey.ModShift, modifiersFromMask(maskMetaR|maskShiftL))
	assert.Equal(t, hotkey.ModControl, modifiersFromMask(maskCtrlR))
	assert.Zero(t, modifiersFromMask(0))
}
